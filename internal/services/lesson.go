package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pathwise/pathwise-backend/internal/data/repos/learning"
	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/apierr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type LessonService interface {
	// GetOrGenerateLesson returns the cached lesson for (concept, difficulty)
	// or generates, stores, and returns a new one. Concurrent misses on the
	// same key share a single generation.
	GetOrGenerateLesson(ctx context.Context, conceptID uuid.UUID, difficulty domain.Difficulty) (*domain.ConceptLesson, error)

	// RegenerateLesson bypasses the cache and replaces the stored artifact.
	RegenerateLesson(ctx context.Context, conceptID uuid.UUID, difficulty domain.Difficulty) (*domain.ConceptLesson, error)
}

type lessonService struct {
	log       *logger.Logger
	lessons   learning.ConceptLessonRepo
	graph     GraphService
	generator LessonGenerator
	clock     Clock

	flight       singleflight.Group
	generateWait time.Duration
}

func NewLessonService(
	baseLog *logger.Logger,
	lessons learning.ConceptLessonRepo,
	graphSvc GraphService,
	generator LessonGenerator,
	clock Clock,
	generateWait time.Duration,
) LessonService {
	if clock == nil {
		clock = SystemClock()
	}
	if generateWait <= 0 {
		generateWait = 30 * time.Second
	}
	return &lessonService{
		log:          baseLog.With("service", "LessonService"),
		lessons:      lessons,
		graph:        graphSvc,
		generator:    generator,
		clock:        clock,
		generateWait: generateWait,
	}
}

func normalizeLessonDifficulty(d domain.Difficulty) (domain.Difficulty, error) {
	if d == "" {
		return domain.DifficultyBeginner, nil
	}
	if domain.DifficultyRank(d) > domain.DifficultyRank(domain.DifficultyExpert) {
		return "", apierr.InvalidArgument("unknown difficulty %q", d)
	}
	return d, nil
}

func (s *lessonService) GetOrGenerateLesson(ctx context.Context, conceptID uuid.UUID, difficulty domain.Difficulty) (*domain.ConceptLesson, error) {
	if conceptID == uuid.Nil {
		return nil, apierr.InvalidArgument("concept_id is required")
	}
	difficulty, err := normalizeLessonDifficulty(difficulty)
	if err != nil {
		return nil, err
	}

	cached, err := s.lessons.Get(ctx, nil, conceptID, difficulty)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "load lesson")
	}
	if cached != nil {
		return cached, nil
	}

	key := conceptID.String() + ":" + string(difficulty)
	ch := s.flight.DoChan(key, func() (interface{}, error) {
		// Detached from the caller: a canceled requester must not kill the
		// generation other waiters share.
		genCtx, cancel := context.WithTimeout(context.Background(), s.generateWait)
		defer cancel()
		// Another flight may have landed between the cache miss and this call.
		if cached, err := s.lessons.Get(genCtx, nil, conceptID, difficulty); err == nil && cached != nil {
			return cached, nil
		}
		return s.generateAndStore(genCtx, conceptID, difficulty)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.ConceptLesson), nil
	case <-ctx.Done():
		return nil, apierr.Wrap(apierr.KindTimeout, ctx.Err(), "lesson generation wait")
	case <-time.After(s.generateWait):
		// Waited long enough on the shared flight. Generate independently;
		// duplicate work is tolerated and the last writer wins.
		s.log.Warn("shared lesson generation slow, generating independently",
			"concept_id", conceptID, "difficulty", difficulty)
		return s.generateAndStore(ctx, conceptID, difficulty)
	}
}

func (s *lessonService) RegenerateLesson(ctx context.Context, conceptID uuid.UUID, difficulty domain.Difficulty) (*domain.ConceptLesson, error) {
	if conceptID == uuid.Nil {
		return nil, apierr.InvalidArgument("concept_id is required")
	}
	difficulty, err := normalizeLessonDifficulty(difficulty)
	if err != nil {
		return nil, err
	}
	return s.generateAndStore(ctx, conceptID, difficulty)
}

func (s *lessonService) generateAndStore(ctx context.Context, conceptID uuid.UUID, difficulty domain.Difficulty) (*domain.ConceptLesson, error) {
	concept, err := s.graph.GetConcept(ctx, conceptID)
	if err != nil {
		return nil, err
	}

	in := LessonInput{
		ConceptName: concept.Name,
		Domain:      concept.Domain,
		Category:    concept.Category,
		Difficulty:  difficulty,
		Description: concept.Description,
	}
	if related, err := s.graph.RelatedOf(ctx, conceptID); err == nil {
		for _, r := range related {
			in.RelatedTo = append(in.RelatedTo, r.Name)
		}
	}

	content, model, genErr := "", FallbackModel, error(nil)
	if s.generator != nil {
		content, model, genErr = s.generator.Generate(ctx, in)
	} else {
		genErr = fmt.Errorf("no lesson generator configured")
	}
	if genErr != nil {
		// GenerationFailed is logged, never surfaced: readers get the template.
		s.log.Warn("lesson generation failed, using fallback template",
			"concept_id", conceptID, "difficulty", difficulty, "error", genErr)
		content = FallbackLesson(in)
		model = FallbackModel
	}

	row := &domain.ConceptLesson{
		ConceptID:   conceptID,
		Difficulty:  difficulty,
		Content:     content,
		ModelUsed:   model,
		GeneratedAt: s.clock.Now(),
	}
	if err := s.lessons.Upsert(ctx, nil, row); err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, err, "store lesson")
	}
	return row, nil
}
