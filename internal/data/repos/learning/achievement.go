package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type UserAchievementRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.UserAchievement, error)
	// Insert returns true when the row was newly created; false when the
	// (user, type) pair was already earned.
	Insert(ctx context.Context, tx *gorm.DB, row *domain.UserAchievement) (bool, error)
}

type userAchievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return &userAchievementRepo{db: db, log: baseLog.With("repo", "UserAchievementRepo")}
}

func (r *userAchievementRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.UserAchievement, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.UserAchievement
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userAchievementRepo) Insert(ctx context.Context, tx *gorm.DB, row *domain.UserAchievement) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return false, nil
	}
	res := t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_type"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
