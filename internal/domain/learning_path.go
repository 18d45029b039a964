package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LearningPath struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Name       string     `gorm:"column:name;not null" json:"name"`
	Category   string     `gorm:"column:category;index" json:"category"`
	Difficulty Difficulty `gorm:"column:difficulty;not null;default:'beginner'" json:"difficulty"`

	EstimatedDurationMinutes int  `gorm:"column:estimated_duration_minutes;not null;default:0" json:"estimated_duration_minutes"`
	IsPublic                 bool `gorm:"column:is_public;not null;default:true" json:"is_public"`
	IsAdaptive               bool `gorm:"column:is_adaptive;not null;default:false" json:"is_adaptive"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LearningPath) TableName() string { return "learning_paths" }

// LearningPathConcept orders a concept inside a path. SequenceOrder values within
// a path are dense 1..N; writes renormalize before persisting.
type LearningPathConcept struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	PathID    uuid.UUID `gorm:"type:uuid;not null;index:idx_path_concept,unique,priority:1;index" json:"path_id"`
	ConceptID uuid.UUID `gorm:"type:uuid;not null;index:idx_path_concept,unique,priority:2" json:"concept_id"`

	SequenceOrder            int     `gorm:"column:sequence_order;not null" json:"sequence_order"`
	EstimatedDurationMinutes int     `gorm:"column:estimated_duration_minutes;not null;default:0" json:"estimated_duration_minutes"`
	RequiredMastery          float64 `gorm:"column:required_mastery;not null;default:0.8" json:"required_mastery"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (LearningPathConcept) TableName() string { return "learning_path_concepts" }
