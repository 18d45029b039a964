package domain

import (
	"time"

	"github.com/google/uuid"
)

type EdgeKind string

const (
	// EdgePrerequisite means the source concept depends on the target being
	// completed first. The prerequisite subgraph must stay acyclic.
	EdgePrerequisite EdgeKind = "PREREQUISITE"
	EdgeRelatedTo    EdgeKind = "RELATED_TO"
	EdgeBuildsUpon   EdgeKind = "BUILDS_UPON"
	EdgePartOf       EdgeKind = "PART_OF"
)

func ValidEdgeKind(k EdgeKind) bool {
	switch k {
	case EdgePrerequisite, EdgeRelatedTo, EdgeBuildsUpon, EdgePartOf:
		return true
	}
	return false
}

type ConceptEdge struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	FromConceptID uuid.UUID `gorm:"type:uuid;not null;index:idx_concept_edge,unique,priority:1;index" json:"from_concept_id"`
	ToConceptID   uuid.UUID `gorm:"type:uuid;not null;index:idx_concept_edge,unique,priority:2;index" json:"to_concept_id"`
	Kind          EdgeKind  `gorm:"column:kind;not null;index:idx_concept_edge,unique,priority:3" json:"kind"`
	Strength      float64   `gorm:"column:strength;not null;default:1" json:"strength"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ConceptEdge) TableName() string { return "concept_edges" }
