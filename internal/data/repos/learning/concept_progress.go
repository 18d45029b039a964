package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type ConceptProgressRepo interface {
	GetByUserAndConcept(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*domain.ConceptProgress, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.ConceptProgress, error)
	GetByUserAndConceptIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []uuid.UUID) ([]*domain.ConceptProgress, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *domain.ConceptProgress) error
}

type conceptProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptProgressRepo(db *gorm.DB, baseLog *logger.Logger) ConceptProgressRepo {
	return &conceptProgressRepo{db: db, log: baseLog.With("repo", "ConceptProgressRepo")}
}

func (r *conceptProgressRepo) GetByUserAndConcept(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*domain.ConceptProgress, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || conceptID == uuid.Nil {
		return nil, nil
	}
	var out []*domain.ConceptProgress
	if err := t.WithContext(ctx).
		Where("user_id = ? AND concept_id = ?", userID, conceptID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *conceptProgressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.ConceptProgress, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.ConceptProgress
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptProgressRepo) GetByUserAndConceptIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []uuid.UUID) ([]*domain.ConceptProgress, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.ConceptProgress
	if userID == uuid.Nil || len(conceptIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ? AND concept_id IN ?", userID, conceptIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert resolves races on the unique (user_id, concept_id) key to a single row.
func (r *conceptProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *domain.ConceptProgress) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "concept_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "progress_percent", "time_spent_minutes", "last_accessed_at", "notes", "updated_at",
			}),
		}).
		Create(row).Error
}
