package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Quiz struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	ConceptID *uuid.UUID `gorm:"type:uuid;index" json:"concept_id,omitempty"`
	Title     string     `gorm:"column:title;not null" json:"title"`

	// PassingScore is a fraction in [0,1].
	PassingScore float64 `gorm:"column:passing_score;not null;default:0.7" json:"passing_score"`
	MaxAttempts  int     `gorm:"column:max_attempts;not null;default:3" json:"max_attempts"`

	// Aggregates recomputed from completed attempts after every submit.
	AverageScore   float64 `gorm:"column:average_score;not null;default:0" json:"average_score"`
	CompletionRate float64 `gorm:"column:completion_rate;not null;default:0" json:"completion_rate"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Quiz) TableName() string { return "quizzes" }

type QuizQuestion struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	QuizID uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`

	Prompt        string         `gorm:"column:prompt;type:text;not null" json:"prompt"`
	Options       datatypes.JSON `gorm:"column:options;type:jsonb" json:"options,omitempty"`
	CorrectAnswer string         `gorm:"column:correct_answer;not null" json:"-"`
	SortIndex     int            `gorm:"column:sort_index;not null;default:0" json:"sort_index"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuizQuestion) TableName() string { return "quiz_questions" }

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

// QuizAttempt numbers are 1-based and monotone per (user, quiz); a completed
// attempt is immutable.
type QuizAttempt struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_quiz_attempt,unique,priority:1" json:"user_id"`
	QuizID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_quiz_attempt,unique,priority:2" json:"quiz_id"`

	AttemptNumber int           `gorm:"column:attempt_number;not null;index:idx_user_quiz_attempt,unique,priority:3" json:"attempt_number"`
	Status        AttemptStatus `gorm:"column:status;not null;default:'in_progress'" json:"status"`

	Responses  datatypes.JSON `gorm:"column:responses;type:jsonb" json:"responses,omitempty"`
	Score      int            `gorm:"column:score;not null;default:0" json:"score"`
	MaxScore   int            `gorm:"column:max_score;not null;default:0" json:"max_score"`
	Percentage float64        `gorm:"column:percentage;not null;default:0" json:"percentage"`
	Passed     bool           `gorm:"column:passed;not null;default:false" json:"passed"`

	StartedAt   time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempts" }
