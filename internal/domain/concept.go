package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// DifficultyRank orders difficulties for sorting; unknown values sort last.
func DifficultyRank(d Difficulty) int {
	switch d {
	case DifficultyBeginner:
		return 0
	case DifficultyIntermediate:
		return 1
	case DifficultyAdvanced:
		return 2
	case DifficultyExpert:
		return 3
	}
	return 4
}

type Concept struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Slug       string     `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Name       string     `gorm:"column:name;not null" json:"name"`
	Category   string     `gorm:"column:category;index" json:"category"`
	Domain     string     `gorm:"column:domain;index" json:"domain"`
	Difficulty Difficulty `gorm:"column:difficulty;not null;default:'beginner';index" json:"difficulty"`

	Description string         `gorm:"column:description;type:text" json:"description,omitempty"`
	Tags        datatypes.JSON `gorm:"column:tags;type:jsonb" json:"tags,omitempty"`

	// How often the concept appears across published paths; drives the
	// beginner-friendly ranking for users with no completions.
	UsageFrequency int `gorm:"column:usage_frequency;not null;default:0" json:"usage_frequency"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Concept) TableName() string { return "concepts" }

// ConceptLesson is the cached AI-generated lesson artifact keyed on
// (concept, difficulty). A stored row is authoritative until regenerated.
type ConceptLesson struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	ConceptID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_concept_lesson,unique,priority:1" json:"concept_id"`
	Difficulty Difficulty `gorm:"column:difficulty;not null;index:idx_concept_lesson,unique,priority:2" json:"difficulty"`

	Content     string    `gorm:"column:content;type:text;not null" json:"content"`
	ModelUsed   string    `gorm:"column:model_used;not null" json:"model_used"`
	GeneratedAt time.Time `gorm:"column:generated_at;not null" json:"generated_at"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ConceptLesson) TableName() string { return "concept_lessons" }
