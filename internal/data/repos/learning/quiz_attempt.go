package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type QuizAttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *domain.QuizAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.QuizAttempt, error)
	GetByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uuid.UUID) ([]*domain.QuizAttempt, error)
	GetCompletedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.QuizAttempt, error)
	GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) ([]*domain.QuizAttempt, error)
	Update(ctx context.Context, tx *gorm.DB, row *domain.QuizAttempt) error
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return &quizAttemptRepo{db: db, log: baseLog.With("repo", "QuizAttemptRepo")}
}

func (r *quizAttemptRepo) Create(ctx context.Context, tx *gorm.DB, row *domain.QuizAttempt) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *quizAttemptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.QuizAttempt, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*domain.QuizAttempt
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *quizAttemptRepo) GetByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uuid.UUID) ([]*domain.QuizAttempt, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.QuizAttempt
	if userID == uuid.Nil || quizID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempt_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizAttemptRepo) GetCompletedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.QuizAttempt, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.QuizAttempt
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.AttemptCompleted).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizAttemptRepo) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) ([]*domain.QuizAttempt, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.QuizAttempt
	if quizID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizAttemptRepo) Update(ctx context.Context, tx *gorm.DB, row *domain.QuizAttempt) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).Save(row).Error
}
