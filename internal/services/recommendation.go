package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/data/graph"
	"github.com/pathwise/pathwise-backend/internal/data/repos/learning"
	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/apierr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

const (
	RecommendationBeginnerFriendly = "beginner_friendly"
	RecommendationGraphBased       = "graph_based"
	RecommendationSequential       = "sequential"

	// minReadiness is the prerequisite-readiness cut below which a candidate
	// is not worth surfacing.
	minReadiness = 50.0

	// sequentialReadiness is the sentinel score attached to fallback
	// recommendations, which carry no prerequisite signal.
	sequentialReadiness = 75.0

	defaultRecommendationLimit = 5
)

type Recommendation struct {
	ConceptID  uuid.UUID         `json:"concept_id"`
	Name       string            `json:"title"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Reason     string            `json:"reason"`
	MatchScore float64           `json:"match_score"`
}

type RecommendationResult struct {
	Recommendations    []Recommendation `json:"recommendations"`
	RecommendationType string           `json:"recommendation_type"`
	CompletedConcepts  int              `json:"completed_concepts"`
}

type RecommendationService interface {
	RecommendNext(ctx context.Context, userID uuid.UUID, limit int) (*RecommendationResult, error)
}

type recommendationService struct {
	log      *logger.Logger
	graph    GraphService
	concepts learning.ConceptRepo
	progress learning.ConceptProgressRepo
}

func NewRecommendationService(
	baseLog *logger.Logger,
	graphSvc GraphService,
	concepts learning.ConceptRepo,
	progress learning.ConceptProgressRepo,
) RecommendationService {
	return &recommendationService{
		log:      baseLog.With("service", "RecommendationService"),
		graph:    graphSvc,
		concepts: concepts,
		progress: progress,
	}
}

func (s *recommendationService) RecommendNext(ctx context.Context, userID uuid.UUID, limit int) (*RecommendationResult, error) {
	if userID == uuid.Nil {
		return nil, apierr.InvalidArgument("user_id is required")
	}
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	rows, err := s.progress.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load progress")
	}
	var completed []uuid.UUID
	started := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		started = append(started, r.ConceptID)
		if domain.StatusRank(r.Status) >= domain.StatusRank(domain.StatusCompleted) {
			completed = append(completed, r.ConceptID)
		}
	}

	if len(completed) == 0 {
		return s.beginnerFriendly(ctx, limit, started)
	}

	candidates, err := s.graph.FindNextCandidates(ctx, completed)
	if err != nil {
		s.log.Warn("candidate lookup failed, using sequential fallback", "error", err, "user_id", userID)
		return s.sequential(ctx, limit, started, len(completed))
	}

	ready := readyCandidates(candidates)
	if len(ready) == 0 {
		return s.sequential(ctx, limit, started, len(completed))
	}

	ids := make([]uuid.UUID, 0, len(ready))
	for _, r := range ready {
		ids = append(ids, r.ConceptID)
	}
	concepts, err := s.concepts.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load candidate concepts")
	}
	byID := map[uuid.UUID]*domain.Concept{}
	for _, c := range concepts {
		byID[c.ID] = c
	}

	out := make([]Recommendation, 0, len(ready))
	for _, cand := range ready {
		c := byID[cand.ConceptID]
		if c == nil {
			continue
		}
		out = append(out, Recommendation{
			ConceptID:  c.ID,
			Name:       c.Name,
			Difficulty: c.Difficulty,
			Reason:     fmt.Sprintf("You've completed %d of %d prerequisites", cand.PrereqsMet, cand.PrereqsTotal),
			MatchScore: readiness(cand),
		})
	}
	// Ties on readiness break toward easier, then alphabetical.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchScore != out[j].MatchScore {
			return out[i].MatchScore > out[j].MatchScore
		}
		di, dj := domain.DifficultyRank(out[i].Difficulty), domain.DifficultyRank(out[j].Difficulty)
		if di != dj {
			return di < dj
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return &RecommendationResult{
		Recommendations:    out,
		RecommendationType: RecommendationGraphBased,
		CompletedConcepts:  len(completed),
	}, nil
}

// readiness is the share of a candidate's prerequisites the user has
// completed, on a 0..100 scale. A candidate with no prerequisites on record
// is fully ready.
func readiness(c graph.NextCandidate) float64 {
	if c.PrereqsTotal <= 0 {
		return 100
	}
	return 100 * float64(c.PrereqsMet) / float64(c.PrereqsTotal)
}

func readyCandidates(candidates []graph.NextCandidate) []graph.NextCandidate {
	out := make([]graph.NextCandidate, 0, len(candidates))
	for _, c := range candidates {
		if readiness(c) >= minReadiness {
			out = append(out, c)
		}
	}
	return out
}

func (s *recommendationService) beginnerFriendly(ctx context.Context, limit int, started []uuid.UUID) (*RecommendationResult, error) {
	concepts, err := s.concepts.ListByDifficulty(ctx, nil, domain.DifficultyBeginner, limit)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "list beginner concepts")
	}
	if len(concepts) == 0 {
		concepts, err = s.concepts.ListExcluding(ctx, nil, started, limit)
		if err != nil {
			return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "list concepts")
		}
	}
	out := make([]Recommendation, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, Recommendation{
			ConceptID:  c.ID,
			Name:       c.Name,
			Difficulty: c.Difficulty,
			Reason:     "beginner-friendly",
			MatchScore: 100,
		})
	}
	return &RecommendationResult{
		Recommendations:    out,
		RecommendationType: RecommendationBeginnerFriendly,
		CompletedConcepts:  0,
	}, nil
}

// sequential recommends popular concepts the user has not touched yet. Used
// when graph traversal yields nothing workable.
func (s *recommendationService) sequential(ctx context.Context, limit int, started []uuid.UUID, completedCount int) (*RecommendationResult, error) {
	concepts, err := s.concepts.ListExcluding(ctx, nil, started, limit)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "list concepts")
	}
	out := make([]Recommendation, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, Recommendation{
			ConceptID:  c.ID,
			Name:       c.Name,
			Difficulty: c.Difficulty,
			Reason:     "continue your journey",
			MatchScore: sequentialReadiness,
		})
	}
	return &RecommendationResult{
		Recommendations:    out,
		RecommendationType: RecommendationSequential,
		CompletedConcepts:  completedCount,
	}, nil
}
