package domain

import "github.com/google/uuid"

// ConceptProgressChanged is emitted at most once per successful concept-progress
// write. Consumers must be idempotent.
type ConceptProgressChanged struct {
	UserID    uuid.UUID
	ConceptID uuid.UUID
	Old       ConceptProgress
	New       ConceptProgress
}
