package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type QuizRepo interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *domain.Quiz, questions []*domain.QuizQuestion) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Quiz, error)
	GetQuestions(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) ([]*domain.QuizQuestion, error)
	UpdateAggregates(ctx context.Context, tx *gorm.DB, quizID uuid.UUID, averageScore, completionRate float64) error
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) Create(ctx context.Context, tx *gorm.DB, quiz *domain.Quiz, questions []*domain.QuizQuestion) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if quiz == nil {
		return nil
	}
	return t.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if err := inner.Create(quiz).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		for _, q := range questions {
			q.QuizID = quiz.ID
		}
		return inner.Create(&questions).Error
	})
}

func (r *quizRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Quiz, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*domain.Quiz
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *quizRepo) GetQuestions(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) ([]*domain.QuizQuestion, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*domain.QuizQuestion
	if quizID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("sort_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizRepo) UpdateAggregates(ctx context.Context, tx *gorm.DB, quizID uuid.UUID, averageScore, completionRate float64) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if quizID == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).
		Model(&domain.Quiz{}).
		Where("id = ?", quizID).
		Updates(map[string]interface{}{
			"average_score":   averageScore,
			"completion_rate": completionRate,
		}).Error
}
