package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type ConceptLessonRepo interface {
	Get(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, difficulty domain.Difficulty) (*domain.ConceptLesson, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *domain.ConceptLesson) error
	Delete(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, difficulty domain.Difficulty) error
}

type conceptLessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptLessonRepo(db *gorm.DB, baseLog *logger.Logger) ConceptLessonRepo {
	return &conceptLessonRepo{db: db, log: baseLog.With("repo", "ConceptLessonRepo")}
}

func (r *conceptLessonRepo) Get(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, difficulty domain.Difficulty) (*domain.ConceptLesson, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if conceptID == uuid.Nil || difficulty == "" {
		return nil, nil
	}
	var out []*domain.ConceptLesson
	if err := t.WithContext(ctx).
		Where("concept_id = ? AND difficulty = ?", conceptID, difficulty).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// Upsert makes the generation path last-writer-wins on the (concept, difficulty) key.
func (r *conceptLessonRepo) Upsert(ctx context.Context, tx *gorm.DB, row *domain.ConceptLesson) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "concept_id"}, {Name: "difficulty"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"content", "model_used", "generated_at", "updated_at",
			}),
		}).
		Create(row).Error
}

func (r *conceptLessonRepo) Delete(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, difficulty domain.Difficulty) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if conceptID == uuid.Nil || difficulty == "" {
		return nil
	}
	return t.WithContext(ctx).
		Where("concept_id = ? AND difficulty = ?", conceptID, difficulty).
		Delete(&domain.ConceptLesson{}).Error
}
