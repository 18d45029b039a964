package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type LearningPathRepo interface {
	Create(ctx context.Context, tx *gorm.DB, path *domain.LearningPath, concepts []*domain.LearningPathConcept) error

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.LearningPath, error)
	ListPublic(ctx context.Context, tx *gorm.DB) ([]*domain.LearningPath, error)

	GetPathConcepts(ctx context.Context, tx *gorm.DB, pathID uuid.UUID) ([]*domain.LearningPathConcept, error)
	GetPathConceptsByPathIDs(ctx context.Context, tx *gorm.DB, pathIDs []uuid.UUID) ([]*domain.LearningPathConcept, error)
}

type learningPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	return &learningPathRepo{db: db, log: baseLog.With("repo", "LearningPathRepo")}
}

func (r *learningPathRepo) Create(ctx context.Context, tx *gorm.DB, path *domain.LearningPath, concepts []*domain.LearningPathConcept) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if path == nil {
		return nil
	}
	return t.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if err := inner.Create(path).Error; err != nil {
			return err
		}
		if len(concepts) == 0 {
			return nil
		}
		for _, pc := range concepts {
			pc.PathID = path.ID
		}
		return inner.Create(&concepts).Error
	})
}

func (r *learningPathRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.LearningPath, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*domain.LearningPath
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *learningPathRepo) ListPublic(ctx context.Context, tx *gorm.DB) ([]*domain.LearningPath, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.LearningPath
	if err := t.WithContext(ctx).
		Where("is_public = ?", true).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningPathRepo) GetPathConcepts(ctx context.Context, tx *gorm.DB, pathID uuid.UUID) ([]*domain.LearningPathConcept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.LearningPathConcept
	if pathID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("path_id = ?", pathID).
		Order("sequence_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningPathRepo) GetPathConceptsByPathIDs(ctx context.Context, tx *gorm.DB, pathIDs []uuid.UUID) ([]*domain.LearningPathConcept, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.LearningPathConcept
	if len(pathIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("path_id IN ?", pathIDs).
		Order("path_id ASC, sequence_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
