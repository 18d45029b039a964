package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
	// StatusMastered applies to content progress only and is never auto-derived.
	StatusMastered ProgressStatus = "mastered"
)

// StatusRank orders statuses along the forward-only state machine.
func StatusRank(s ProgressStatus) int {
	switch s {
	case StatusNotStarted:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	case StatusMastered:
		return 3
	}
	return -1
}

// ConceptProgress is the authoritative per-(user, concept) record. ProgressPercent
// and Status are monotone: replaying an older delta never moves them backwards.
type ConceptProgress struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_concept_progress,unique,priority:1" json:"user_id"`
	ConceptID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_concept_progress,unique,priority:2" json:"concept_id"`

	Status           ProgressStatus `gorm:"column:status;not null;default:'not_started'" json:"status"`
	ProgressPercent  float64        `gorm:"column:progress_percent;not null;default:0" json:"progress_percent"`
	TimeSpentMinutes int            `gorm:"column:time_spent_minutes;not null;default:0" json:"time_spent_minutes"`

	LastAccessedAt *time.Time `gorm:"column:last_accessed_at;index" json:"last_accessed_at,omitempty"`
	Notes          string     `gorm:"column:notes;type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ConceptProgress) TableName() string { return "user_concept_progress" }

// ContentProgress tracks a user against one content piece. Time and attempts
// accumulate; BestScore is the max over attempts.
type ContentProgress struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_content_progress,unique,priority:1" json:"user_id"`
	ContentID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_content_progress,unique,priority:2" json:"content_id"`

	Status           ProgressStatus `gorm:"column:status;not null;default:'not_started'" json:"status"`
	ProgressPercent  float64        `gorm:"column:progress_percent;not null;default:0" json:"progress_percent"`
	TimeSpentMinutes int            `gorm:"column:time_spent_minutes;not null;default:0" json:"time_spent_minutes"`
	Attempts         int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	BestScore        float64        `gorm:"column:best_score;not null;default:0" json:"best_score"`

	FirstAccessedAt *time.Time `gorm:"column:first_accessed_at" json:"first_accessed_at,omitempty"`
	LastAccessedAt  *time.Time `gorm:"column:last_accessed_at" json:"last_accessed_at,omitempty"`
	LastCompletedAt *time.Time `gorm:"column:last_completed_at" json:"last_completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ContentProgress) TableName() string { return "user_content_progress" }

// UserStats are derived aggregates; never stored.
type UserStats struct {
	CompletedConcepts  int            `json:"completed_concepts"`
	TotalTimeMinutes   int            `json:"total_time_minutes"`
	QuizzesCompleted   int            `json:"quizzes_completed"`
	PerfectQuizScores  int            `json:"perfect_quiz_scores"`
	LearningStreakDays int            `json:"learning_streak_days"`
	DomainConcepts     map[string]int `json:"domain_concepts"`
}
