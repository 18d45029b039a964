package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConceptContent is an individual educational piece under a concept
// (article, video, exercise set).
type ConceptContent struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	ConceptID uuid.UUID `gorm:"type:uuid;not null;index" json:"concept_id"`

	Title           string `gorm:"column:title;not null" json:"title"`
	Kind            string `gorm:"column:kind;not null;default:'article'" json:"kind"`
	DurationMinutes int    `gorm:"column:duration_minutes;not null;default:0" json:"duration_minutes"`
	SortIndex       int    `gorm:"column:sort_index;not null;default:0" json:"sort_index"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ConceptContent) TableName() string { return "concept_contents" }
