package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type ConceptEdgeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*domain.ConceptEdge) ([]*domain.ConceptEdge, error)

	GetAllByKind(ctx context.Context, tx *gorm.DB, kind domain.EdgeKind) ([]*domain.ConceptEdge, error)
	GetByFromIDs(ctx context.Context, tx *gorm.DB, fromIDs []uuid.UUID, kind domain.EdgeKind) ([]*domain.ConceptEdge, error)
	GetByToIDs(ctx context.Context, tx *gorm.DB, toIDs []uuid.UUID, kind domain.EdgeKind) ([]*domain.ConceptEdge, error)
}

type conceptEdgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptEdgeRepo(db *gorm.DB, baseLog *logger.Logger) ConceptEdgeRepo {
	return &conceptEdgeRepo{db: db, log: baseLog.With("repo", "ConceptEdgeRepo")}
}

func (r *conceptEdgeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*domain.ConceptEdge) ([]*domain.ConceptEdge, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*domain.ConceptEdge{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *conceptEdgeRepo) GetAllByKind(ctx context.Context, tx *gorm.DB, kind domain.EdgeKind) ([]*domain.ConceptEdge, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.ConceptEdge
	if kind == "" {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("kind = ?", kind).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptEdgeRepo) GetByFromIDs(ctx context.Context, tx *gorm.DB, fromIDs []uuid.UUID, kind domain.EdgeKind) ([]*domain.ConceptEdge, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.ConceptEdge
	if len(fromIDs) == 0 || kind == "" {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("from_concept_id IN ? AND kind = ?", fromIDs, kind).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptEdgeRepo) GetByToIDs(ctx context.Context, tx *gorm.DB, toIDs []uuid.UUID, kind domain.EdgeKind) ([]*domain.ConceptEdge, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.ConceptEdge
	if len(toIDs) == 0 || kind == "" {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("to_concept_id IN ? AND kind = ?", toIDs, kind).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
