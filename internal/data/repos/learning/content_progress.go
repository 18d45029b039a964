package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type ContentProgressRepo interface {
	GetByUserAndContent(ctx context.Context, tx *gorm.DB, userID, contentID uuid.UUID) (*domain.ContentProgress, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.ContentProgress, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *domain.ContentProgress) error
}

type contentProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentProgressRepo(db *gorm.DB, baseLog *logger.Logger) ContentProgressRepo {
	return &contentProgressRepo{db: db, log: baseLog.With("repo", "ContentProgressRepo")}
}

func (r *contentProgressRepo) GetByUserAndContent(ctx context.Context, tx *gorm.DB, userID, contentID uuid.UUID) (*domain.ContentProgress, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || contentID == uuid.Nil {
		return nil, nil
	}
	var out []*domain.ContentProgress
	if err := t.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *contentProgressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.ContentProgress, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.ContentProgress
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

func (r *contentProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *domain.ContentProgress) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "progress_percent", "time_spent_minutes", "attempts", "best_score",
				"first_accessed_at", "last_accessed_at", "last_completed_at", "updated_at",
			}),
		}).
		Create(row).Error
}
