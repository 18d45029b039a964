package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/data/repos/learning"
	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/apierr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

// AchievementDef is a catalog entry. Requirements are alternatives (overall
// progress is the max); DomainCounts is a compound requirement averaged across
// its domains. A def uses one or the other.
type AchievementDef struct {
	Type        string                     `json:"type"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Icon        string                     `json:"icon"`
	Category    domain.AchievementCategory `json:"category"`
	Rarity      domain.AchievementRarity   `json:"rarity"`

	Requirements []StatRequirement `json:"requirements,omitempty"`
	DomainCounts map[string]int    `json:"domain_counts,omitempty"`
}

type StatRequirement struct {
	Stat      string  `json:"stat"`
	Threshold float64 `json:"threshold"`
}

const (
	StatCompletedConcepts  = "completed_concepts"
	StatTotalTimeMinutes   = "total_time_minutes"
	StatQuizzesCompleted   = "quizzes_completed"
	StatPerfectQuizScores  = "perfect_quiz_scores"
	StatLearningStreakDays = "learning_streak_days"
)

// achievementCatalog is fixed at build time. Types are stable identifiers;
// renaming one would orphan earned rows.
var achievementCatalog = []AchievementDef{
	{
		Type: "first_concept_completion", Name: "First Steps",
		Description: "Complete your first concept", Icon: "🎯",
		Category: domain.AchievementMilestone, Rarity: domain.RarityCommon,
		Requirements: []StatRequirement{{Stat: StatCompletedConcepts, Threshold: 1}},
	},
	{
		Type: "concept_master", Name: "Concept Master",
		Description: "Complete 10 concepts", Icon: "🧠",
		Category: domain.AchievementMilestone, Rarity: domain.RarityUncommon,
		Requirements: []StatRequirement{{Stat: StatCompletedConcepts, Threshold: 10}},
	},
	{
		Type: "knowledge_seeker", Name: "Knowledge Seeker",
		Description: "Complete 25 concepts", Icon: "📚",
		Category: domain.AchievementMilestone, Rarity: domain.RarityRare,
		Requirements: []StatRequirement{{Stat: StatCompletedConcepts, Threshold: 25}},
	},
	{
		Type: "time_investor", Name: "Time Investor",
		Description: "Spend 10 hours learning", Icon: "⏳",
		Category: domain.AchievementDedication, Rarity: domain.RarityUncommon,
		Requirements: []StatRequirement{{Stat: StatTotalTimeMinutes, Threshold: 600}},
	},
	{
		Type: "consistent_learner", Name: "Consistent Learner",
		Description: "Learn 7 days in a row", Icon: "🔥",
		Category: domain.AchievementConsistency, Rarity: domain.RarityRare,
		Requirements: []StatRequirement{{Stat: StatLearningStreakDays, Threshold: 7}},
	},
	{
		Type: "perfect_scorer", Name: "Perfect Scorer",
		Description: "Score 100% on a quiz", Icon: "💯",
		Category: domain.AchievementExcellence, Rarity: domain.RarityUncommon,
		Requirements: []StatRequirement{{Stat: StatPerfectQuizScores, Threshold: 1}},
	},
	{
		Type: "quiz_champion", Name: "Quiz Champion",
		Description: "Complete 10 quizzes", Icon: "🏆",
		Category: domain.AchievementAssessment, Rarity: domain.RarityRare,
		Requirements: []StatRequirement{{Stat: StatQuizzesCompleted, Threshold: 10}},
	},
	{
		Type: "programming_specialist", Name: "Programming Specialist",
		Description: "Complete 5 programming concepts", Icon: "💻",
		Category: domain.AchievementDomain, Rarity: domain.RarityRare,
		DomainCounts: map[string]int{"programming": 5},
	},
	{
		Type: "mathematics_specialist", Name: "Mathematics Specialist",
		Description: "Complete 5 mathematics concepts", Icon: "➗",
		Category: domain.AchievementDomain, Rarity: domain.RarityRare,
		DomainCounts: map[string]int{"mathematics": 5},
	},
	{
		Type: "data_science_specialist", Name: "Data Science Specialist",
		Description: "Complete 5 data science concepts", Icon: "📊",
		Category: domain.AchievementDomain, Rarity: domain.RarityEpic,
		DomainCounts: map[string]int{"data-science": 5},
	},
}

// AchievementCatalog returns the fixed catalog.
func AchievementCatalog() []AchievementDef {
	out := make([]AchievementDef, len(achievementCatalog))
	copy(out, achievementCatalog)
	return out
}

func statValue(stats *domain.UserStats, name string) float64 {
	switch name {
	case StatCompletedConcepts:
		return float64(stats.CompletedConcepts)
	case StatTotalTimeMinutes:
		return float64(stats.TotalTimeMinutes)
	case StatQuizzesCompleted:
		return float64(stats.QuizzesCompleted)
	case StatPerfectQuizScores:
		return float64(stats.PerfectQuizScores)
	case StatLearningStreakDays:
		return float64(stats.LearningStreakDays)
	}
	return 0
}

// achievementProgress is the earned fraction in [0,1]: max over scalar
// alternatives, mean over compound per-domain counts.
func achievementProgress(def AchievementDef, stats *domain.UserStats) float64 {
	if len(def.DomainCounts) > 0 {
		var sum float64
		for d, want := range def.DomainCounts {
			if want <= 0 {
				sum += 1
				continue
			}
			frac := float64(stats.DomainConcepts[d]) / float64(want)
			if frac > 1 {
				frac = 1
			}
			sum += frac
		}
		return sum / float64(len(def.DomainCounts))
	}
	var best float64
	for _, req := range def.Requirements {
		if req.Threshold <= 0 {
			best = 1
			break
		}
		frac := statValue(stats, req.Stat) / req.Threshold
		if frac > 1 {
			frac = 1
		}
		if frac > best {
			best = frac
		}
	}
	return best
}

// EarnedAchievement pairs a catalog def with its earned row.
type EarnedAchievement struct {
	AchievementDef
	EarnedAt string `json:"earned_at"`
}

// AchievementStatus is one catalog entry with the user's standing on it.
type AchievementStatus struct {
	AchievementDef
	Earned   bool    `json:"earned"`
	EarnedAt string  `json:"earned_at,omitempty"`
	Progress float64 `json:"progress"`
}

// AchievementSummary covers the full catalog; CompletionPercent is earned
// count over catalog size.
type AchievementSummary struct {
	Achievements      []AchievementStatus `json:"achievements"`
	EarnedCount       int                 `json:"earned_count"`
	TotalCount        int                 `json:"total_count"`
	CompletionPercent float64             `json:"completion_percent"`
}

type AchievementService interface {
	// CheckAndAward evaluates the catalog against current stats and inserts
	// newly earned rows. Repeat calls with unchanged stats award nothing.
	CheckAndAward(ctx context.Context, userID uuid.UUID) ([]EarnedAchievement, error)
	ListUserAchievements(ctx context.Context, userID uuid.UUID) (*AchievementSummary, error)
}

type achievementService struct {
	log      *logger.Logger
	earned   learning.UserAchievementRepo
	progress ProgressService
	clock    Clock
}

func NewAchievementService(
	baseLog *logger.Logger,
	earned learning.UserAchievementRepo,
	progress ProgressService,
	clock Clock,
) AchievementService {
	if clock == nil {
		clock = SystemClock()
	}
	return &achievementService{
		log:      baseLog.With("service", "AchievementService"),
		earned:   earned,
		progress: progress,
		clock:    clock,
	}
}

func (s *achievementService) CheckAndAward(ctx context.Context, userID uuid.UUID) ([]EarnedAchievement, error) {
	if userID == uuid.Nil {
		return nil, apierr.InvalidArgument("user_id is required")
	}
	stats, err := s.progress.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.earned.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load achievements")
	}
	have := map[string]bool{}
	for _, r := range rows {
		have[r.AchievementType] = true
	}

	var awarded []EarnedAchievement
	now := s.clock.Now()
	for _, def := range achievementCatalog {
		if have[def.Type] {
			continue
		}
		if achievementProgress(def, stats) < 1.0 {
			continue
		}
		created, err := s.earned.Insert(ctx, nil, &domain.UserAchievement{
			UserID:          userID,
			AchievementType: def.Type,
			EarnedAt:        now,
		})
		if err != nil {
			return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "record achievement")
		}
		// A concurrent evaluator may have inserted first; only the winner reports it.
		if !created {
			continue
		}
		s.log.Info("achievement earned", "user_id", userID, "achievement_type", def.Type)
		awarded = append(awarded, EarnedAchievement{AchievementDef: def, EarnedAt: now.UTC().Format("2006-01-02T15:04:05Z07:00")})
	}
	return awarded, nil
}

func (s *achievementService) ListUserAchievements(ctx context.Context, userID uuid.UUID) (*AchievementSummary, error) {
	if userID == uuid.Nil {
		return nil, apierr.InvalidArgument("user_id is required")
	}
	stats, err := s.progress.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.earned.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load achievements")
	}
	earnedAt := map[string]string{}
	for _, r := range rows {
		earnedAt[r.AchievementType] = r.EarnedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}

	out := &AchievementSummary{TotalCount: len(achievementCatalog)}
	for _, def := range achievementCatalog {
		st := AchievementStatus{AchievementDef: def, Progress: achievementProgress(def, stats)}
		if at, ok := earnedAt[def.Type]; ok {
			st.Earned = true
			st.EarnedAt = at
			st.Progress = 1
			out.EarnedCount++
		}
		out.Achievements = append(out.Achievements, st)
	}
	if out.TotalCount > 0 {
		out.CompletionPercent = 100 * float64(out.EarnedCount) / float64(out.TotalCount)
	}
	return out, nil
}
