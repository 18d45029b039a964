package services

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/data/repos/learning"
	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/apierr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

// ConceptProgressDelta carries one observation about a user's work on a
// concept. Zero-valued fields mean "no claim".
type ConceptProgressDelta struct {
	Status          domain.ProgressStatus `json:"status,omitempty"`
	ProgressPercent *float64              `json:"progress_percent,omitempty"`
	TimeSpentDelta  int                   `json:"time_spent_delta,omitempty"`
	Notes           string                `json:"notes,omitempty"`
}

type ContentProgressDelta struct {
	Status          domain.ProgressStatus `json:"status,omitempty"`
	ProgressPercent *float64              `json:"progress_percent,omitempty"`
	TimeSpentDelta  int                   `json:"time_spent_delta,omitempty"`
	Score           *float64              `json:"score,omitempty"`
}

type ProgressService interface {
	UpdateConceptProgress(ctx context.Context, userID, conceptID uuid.UUID, delta ConceptProgressDelta) (*domain.ConceptProgress, error)
	UpdateContentProgress(ctx context.Context, userID, contentID uuid.UUID, delta ContentProgressDelta) (*domain.ContentProgress, error)
	GetUserConceptProgress(ctx context.Context, userID uuid.UUID) ([]*domain.ConceptProgress, error)
	GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)
	Subscribe(fn ProgressSubscriber)
}

type progressService struct {
	db  *gorm.DB
	log *logger.Logger

	conceptProgress learning.ConceptProgressRepo
	contentProgress learning.ContentProgressRepo
	concepts        learning.ConceptRepo
	attempts        learning.QuizAttemptRepo

	clock     Clock
	streakLoc *time.Location
	notifier  progressNotifier

	// locks serializes writers per (user, concept/content) so concurrent
	// deltas merge one at a time instead of clobbering each other. Striped,
	// so the table stays bounded no matter how many pairs are touched.
	locks [lockStripes]sync.Mutex
}

const lockStripes = 64

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	conceptProgress learning.ConceptProgressRepo,
	contentProgress learning.ContentProgressRepo,
	concepts learning.ConceptRepo,
	attempts learning.QuizAttemptRepo,
	clock Clock,
	streakLoc *time.Location,
) ProgressService {
	if clock == nil {
		clock = SystemClock()
	}
	if streakLoc == nil {
		streakLoc = time.UTC
	}
	return &progressService{
		db:              db,
		log:             baseLog.With("service", "ProgressService"),
		conceptProgress: conceptProgress,
		contentProgress: contentProgress,
		concepts:        concepts,
		attempts:        attempts,
		clock:           clock,
		streakLoc:       streakLoc,
	}
}

func (s *progressService) Subscribe(fn ProgressSubscriber) { s.notifier.subscribe(fn) }

func (s *progressService) lockKey(kind string, userID, objectID uuid.UUID) func() {
	h := fnv.New32a()
	h.Write([]byte(kind))
	h.Write(userID[:])
	h.Write(objectID[:])
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func validProgressStatus(st domain.ProgressStatus) bool {
	return domain.StatusRank(st) >= 0
}

func (d ConceptProgressDelta) validate() error {
	if d.Status != "" && (!validProgressStatus(d.Status) || d.Status == domain.StatusMastered) {
		return apierr.InvalidArgument("invalid progress status")
	}
	if d.ProgressPercent != nil && (*d.ProgressPercent < 0 || *d.ProgressPercent > 100) {
		return apierr.InvalidArgument("progress_percent must be within [0,100]")
	}
	if d.TimeSpentDelta < 0 {
		return apierr.InvalidArgument("time_spent_delta must be non-negative")
	}
	return nil
}

func (d ContentProgressDelta) validate() error {
	if d.Status != "" && !validProgressStatus(d.Status) {
		return apierr.InvalidArgument("invalid progress status")
	}
	if d.ProgressPercent != nil && (*d.ProgressPercent < 0 || *d.ProgressPercent > 100) {
		return apierr.InvalidArgument("progress_percent must be within [0,100]")
	}
	if d.TimeSpentDelta < 0 {
		return apierr.InvalidArgument("time_spent_delta must be non-negative")
	}
	if d.Score != nil && (*d.Score < 0 || *d.Score > 1) {
		return apierr.InvalidArgument("score must be within [0,1]")
	}
	return nil
}

// mergeConceptProgress folds a delta into the current row. Status and percent
// only move forward; time accumulates. Completion forces percent to 100 and
// vice versa.
func mergeConceptProgress(cur domain.ConceptProgress, delta ConceptProgressDelta, now time.Time) domain.ConceptProgress {
	next := cur

	if delta.Status != "" && domain.StatusRank(delta.Status) > domain.StatusRank(next.Status) {
		next.Status = delta.Status
	}
	if delta.ProgressPercent != nil && *delta.ProgressPercent > next.ProgressPercent {
		next.ProgressPercent = *delta.ProgressPercent
	}
	next.TimeSpentMinutes += delta.TimeSpentDelta
	if delta.Notes != "" {
		next.Notes = delta.Notes
	}

	if next.Status == domain.StatusCompleted && next.ProgressPercent < 100 {
		next.ProgressPercent = 100
	}
	if next.ProgressPercent >= 100 && domain.StatusRank(next.Status) < domain.StatusRank(domain.StatusCompleted) {
		next.Status = domain.StatusCompleted
	}
	if next.Status == domain.StatusNotStarted && (next.ProgressPercent > 0 || next.TimeSpentMinutes > 0) {
		next.Status = domain.StatusInProgress
	}

	next.LastAccessedAt = &now
	next.UpdatedAt = now
	return next
}

func (s *progressService) UpdateConceptProgress(ctx context.Context, userID, conceptID uuid.UUID, delta ConceptProgressDelta) (*domain.ConceptProgress, error) {
	if userID == uuid.Nil || conceptID == uuid.Nil {
		return nil, apierr.InvalidArgument("user_id and concept_id are required")
	}
	if err := delta.validate(); err != nil {
		return nil, err
	}

	concept, err := s.concepts.GetByID(ctx, nil, conceptID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load concept")
	}
	if concept == nil {
		return nil, apierr.NotFound("concept not found")
	}

	unlock := s.lockKey("concept", userID, conceptID)
	defer unlock()

	now := s.clock.Now()
	var old, next domain.ConceptProgress
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := s.conceptProgress.GetByUserAndConcept(ctx, tx, userID, conceptID)
		if err != nil {
			return err
		}
		if cur == nil {
			cur = &domain.ConceptProgress{
				UserID:    userID,
				ConceptID: conceptID,
				Status:    domain.StatusNotStarted,
				CreatedAt: now,
			}
		}
		old = *cur
		next = mergeConceptProgress(*cur, delta, now)
		return s.conceptProgress.Upsert(ctx, tx, &next)
	})
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "persist concept progress")
	}

	s.log.Debug("concept progress updated",
		"user_id", userID, "concept_id", conceptID,
		"status", next.Status, "progress_percent", next.ProgressPercent)
	s.notifier.publish(ctx, domain.ConceptProgressChanged{
		UserID:    userID,
		ConceptID: conceptID,
		Old:       old,
		New:       next,
	})
	out := next
	return &out, nil
}

func mergeContentProgress(cur domain.ContentProgress, delta ContentProgressDelta, now time.Time) domain.ContentProgress {
	next := cur

	if delta.Status != "" && domain.StatusRank(delta.Status) > domain.StatusRank(next.Status) {
		next.Status = delta.Status
	}
	if delta.ProgressPercent != nil && *delta.ProgressPercent > next.ProgressPercent {
		next.ProgressPercent = *delta.ProgressPercent
	}
	next.TimeSpentMinutes += delta.TimeSpentDelta
	if delta.Score != nil {
		next.Attempts++
		if *delta.Score > next.BestScore {
			next.BestScore = *delta.Score
		}
	}

	if next.ProgressPercent >= 100 && domain.StatusRank(next.Status) < domain.StatusRank(domain.StatusCompleted) {
		next.Status = domain.StatusCompleted
	}
	if next.Status == domain.StatusNotStarted && (next.ProgressPercent > 0 || next.TimeSpentMinutes > 0 || next.Attempts > 0) {
		next.Status = domain.StatusInProgress
	}

	if next.FirstAccessedAt == nil {
		next.FirstAccessedAt = &now
	}
	next.LastAccessedAt = &now
	if domain.StatusRank(next.Status) >= domain.StatusRank(domain.StatusCompleted) && cur.LastCompletedAt == nil {
		next.LastCompletedAt = &now
	}
	next.UpdatedAt = now
	return next
}

func (s *progressService) UpdateContentProgress(ctx context.Context, userID, contentID uuid.UUID, delta ContentProgressDelta) (*domain.ContentProgress, error) {
	if userID == uuid.Nil || contentID == uuid.Nil {
		return nil, apierr.InvalidArgument("user_id and content_id are required")
	}
	if err := delta.validate(); err != nil {
		return nil, err
	}

	unlock := s.lockKey("content", userID, contentID)
	defer unlock()

	now := s.clock.Now()
	var next domain.ContentProgress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := s.contentProgress.GetByUserAndContent(ctx, tx, userID, contentID)
		if err != nil {
			return err
		}
		if cur == nil {
			cur = &domain.ContentProgress{
				UserID:    userID,
				ContentID: contentID,
				Status:    domain.StatusNotStarted,
				CreatedAt: now,
			}
		}
		next = mergeContentProgress(*cur, delta, now)
		return s.contentProgress.Upsert(ctx, tx, &next)
	})
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "persist content progress")
	}
	out := next
	return &out, nil
}

func (s *progressService) GetUserConceptProgress(ctx context.Context, userID uuid.UUID) ([]*domain.ConceptProgress, error) {
	if userID == uuid.Nil {
		return nil, apierr.InvalidArgument("user_id is required")
	}
	rows, err := s.conceptProgress.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load concept progress")
	}
	return rows, nil
}

func (s *progressService) GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	if userID == uuid.Nil {
		return nil, apierr.InvalidArgument("user_id is required")
	}

	rows, err := s.conceptProgress.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load concept progress")
	}

	stats := &domain.UserStats{DomainConcepts: map[string]int{}}
	var completedIDs []uuid.UUID
	var activity []time.Time
	for _, r := range rows {
		stats.TotalTimeMinutes += r.TimeSpentMinutes
		if domain.StatusRank(r.Status) >= domain.StatusRank(domain.StatusCompleted) {
			stats.CompletedConcepts++
			completedIDs = append(completedIDs, r.ConceptID)
		}
		if r.LastAccessedAt != nil {
			activity = append(activity, *r.LastAccessedAt)
		}
	}

	if len(completedIDs) > 0 {
		concepts, err := s.concepts.GetByIDs(ctx, nil, completedIDs)
		if err != nil {
			return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load completed concepts")
		}
		for _, c := range concepts {
			if c.Domain != "" {
				stats.DomainConcepts[c.Domain]++
			}
		}
	}

	attempts, err := s.attempts.GetCompletedByUser(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load quiz attempts")
	}
	completedQuizzes := map[uuid.UUID]bool{}
	perfectQuizzes := map[uuid.UUID]bool{}
	for _, a := range attempts {
		completedQuizzes[a.QuizID] = true
		if a.Percentage == 1.0 {
			perfectQuizzes[a.QuizID] = true
		}
	}
	stats.QuizzesCompleted = len(completedQuizzes)
	stats.PerfectQuizScores = len(perfectQuizzes)

	stats.LearningStreakDays = computeStreak(activity, s.clock.Now(), s.streakLoc)
	return stats, nil
}

// computeStreak counts the run of consecutive calendar days with activity
// ending today in the given location. No activity today means streak zero.
func computeStreak(activity []time.Time, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	days := map[string]bool{}
	for _, t := range activity {
		days[t.In(loc).Format("2006-01-02")] = true
	}
	streak := 0
	day := now.In(loc)
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
