package services

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/data/repos/learning"
	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/apierr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/redisdb"
)

// PathConceptView is one path step overlaid with the user's progress.
type PathConceptView struct {
	ConceptID       uuid.UUID             `json:"concept_id"`
	Name            string                `json:"name"`
	Difficulty      domain.Difficulty     `json:"difficulty"`
	SequenceOrder   int                   `json:"sequence_order"`
	RequiredMastery float64               `json:"required_mastery"`
	Status          domain.ProgressStatus `json:"status"`
	ProgressPercent float64               `json:"progress_percent"`
	Completed       bool                  `json:"completed"`
}

// PathView is a path joined with one user's progress. ProgressPercent is the
// completed-concept share rounded to the nearest integer.
type PathView struct {
	PathID            uuid.UUID         `json:"path_id"`
	Name              string            `json:"name"`
	Category          string            `json:"category"`
	Difficulty        domain.Difficulty `json:"difficulty"`
	ConceptsCount     int               `json:"concepts_count"`
	CompletedConcepts int               `json:"completed_concepts"`
	ProgressPercent   int               `json:"progress_percent"`
	NextConceptID     *uuid.UUID        `json:"next_concept_id,omitempty"`
	Concepts          []PathConceptView `json:"concepts"`
}

type PathComposerService interface {
	ComposeUserPathView(ctx context.Context, userID, pathID uuid.UUID) (*PathView, error)
	ListPathsWithProgress(ctx context.Context, userID uuid.UUID) ([]*PathView, error)
	InvalidateUser(ctx context.Context, userID uuid.UUID)
}

type pathComposer struct {
	log   *logger.Logger
	cache *redisdb.Client

	paths    learning.LearningPathRepo
	concepts learning.ConceptRepo
	progress learning.ConceptProgressRepo

	cacheTTL time.Duration
}

func NewPathComposer(
	baseLog *logger.Logger,
	cache *redisdb.Client,
	paths learning.LearningPathRepo,
	concepts learning.ConceptRepo,
	progress learning.ConceptProgressRepo,
	cacheTTL time.Duration,
) PathComposerService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &pathComposer{
		log:      baseLog.With("service", "PathComposer"),
		cache:    cache,
		paths:    paths,
		concepts: concepts,
		progress: progress,
		cacheTTL: cacheTTL,
	}
}

func pathViewKey(userID, pathID uuid.UUID) string {
	return "pathview:" + userID.String() + ":" + pathID.String()
}

func pathViewIndexKey(userID uuid.UUID) string {
	return "pathview-index:" + userID.String()
}

func (s *pathComposer) cachedView(ctx context.Context, userID, pathID uuid.UUID) *PathView {
	if !s.cache.Available() {
		return nil
	}
	raw, err := s.cache.RDB.Get(ctx, pathViewKey(userID, pathID)).Bytes()
	if err != nil {
		return nil
	}
	var v PathView
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

func (s *pathComposer) storeView(ctx context.Context, userID uuid.UUID, v *PathView) {
	if !s.cache.Available() || v == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	key := pathViewKey(userID, v.PathID)
	if err := s.cache.RDB.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.log.Debug("path view cache write failed", "error", err)
		return
	}
	pipe := s.cache.RDB.Pipeline()
	pipe.SAdd(ctx, pathViewIndexKey(userID), key)
	pipe.Expire(ctx, pathViewIndexKey(userID), s.cacheTTL)
	_, _ = pipe.Exec(ctx)
}

// InvalidateUser drops every cached view for the user. Called on progress
// change; a miss is harmless.
func (s *pathComposer) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	if !s.cache.Available() || userID == uuid.Nil {
		return
	}
	idx := pathViewIndexKey(userID)
	keys, err := s.cache.RDB.SMembers(ctx, idx).Result()
	if err != nil {
		s.log.Debug("path view invalidation read failed", "error", err)
		return
	}
	keys = append(keys, idx)
	if err := s.cache.RDB.Del(ctx, keys...).Err(); err != nil {
		s.log.Debug("path view invalidation delete failed", "error", err)
	}
}

func (s *pathComposer) ComposeUserPathView(ctx context.Context, userID, pathID uuid.UUID) (*PathView, error) {
	if userID == uuid.Nil || pathID == uuid.Nil {
		return nil, apierr.InvalidArgument("user_id and path_id are required")
	}
	if v := s.cachedView(ctx, userID, pathID); v != nil {
		return v, nil
	}

	path, err := s.paths.GetByID(ctx, nil, pathID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load path")
	}
	if path == nil {
		return nil, apierr.NotFound("learning path not found")
	}
	members, err := s.paths.GetPathConcepts(ctx, nil, pathID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load path concepts")
	}

	view, err := s.composeOne(ctx, userID, path, members)
	if err != nil {
		return nil, err
	}
	s.storeView(ctx, userID, view)
	return view, nil
}

// ListPathsWithProgress composes every public path with two batched queries
// instead of one pair per path.
func (s *pathComposer) ListPathsWithProgress(ctx context.Context, userID uuid.UUID) ([]*PathView, error) {
	if userID == uuid.Nil {
		return nil, apierr.InvalidArgument("user_id is required")
	}
	paths, err := s.paths.ListPublic(ctx, nil)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "list paths")
	}
	if len(paths) == 0 {
		return []*PathView{}, nil
	}

	pathIDs := make([]uuid.UUID, 0, len(paths))
	for _, p := range paths {
		pathIDs = append(pathIDs, p.ID)
	}
	allMembers, err := s.paths.GetPathConceptsByPathIDs(ctx, nil, pathIDs)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load path concepts")
	}
	byPath := map[uuid.UUID][]*domain.LearningPathConcept{}
	for _, m := range allMembers {
		byPath[m.PathID] = append(byPath[m.PathID], m)
	}

	out := make([]*PathView, 0, len(paths))
	for _, p := range paths {
		view, err := s.composeOne(ctx, userID, p, byPath[p.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *pathComposer) composeOne(ctx context.Context, userID uuid.UUID, path *domain.LearningPath, members []*domain.LearningPathConcept) (*PathView, error) {
	conceptIDs := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		conceptIDs = append(conceptIDs, m.ConceptID)
	}
	concepts, err := s.concepts.GetByIDs(ctx, nil, conceptIDs)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load concepts")
	}
	byID := map[uuid.UUID]*domain.Concept{}
	for _, c := range concepts {
		byID[c.ID] = c
	}
	progressRows, err := s.progress.GetByUserAndConceptIDs(ctx, nil, userID, conceptIDs)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load progress")
	}
	progressBy := map[uuid.UUID]*domain.ConceptProgress{}
	for _, r := range progressRows {
		progressBy[r.ConceptID] = r
	}

	view := &PathView{
		PathID:        path.ID,
		Name:          path.Name,
		Category:      path.Category,
		Difficulty:    path.Difficulty,
		ConceptsCount: len(members),
		Concepts:      make([]PathConceptView, 0, len(members)),
	}
	for _, m := range members {
		cv := PathConceptView{
			ConceptID:       m.ConceptID,
			SequenceOrder:   m.SequenceOrder,
			RequiredMastery: m.RequiredMastery,
			Status:          domain.StatusNotStarted,
		}
		if c := byID[m.ConceptID]; c != nil {
			cv.Name = c.Name
			cv.Difficulty = c.Difficulty
		}
		if p := progressBy[m.ConceptID]; p != nil {
			cv.Status = p.Status
			cv.ProgressPercent = p.ProgressPercent
		}
		cv.Completed = domain.StatusRank(cv.Status) >= domain.StatusRank(domain.StatusCompleted)
		if cv.Completed {
			view.CompletedConcepts++
		} else if view.NextConceptID == nil {
			id := m.ConceptID
			view.NextConceptID = &id
		}
		view.Concepts = append(view.Concepts, cv)
	}
	if view.ConceptsCount > 0 {
		view.ProgressPercent = int(math.Round(100 * float64(view.CompletedConcepts) / float64(view.ConceptsCount)))
	}
	return view, nil
}
