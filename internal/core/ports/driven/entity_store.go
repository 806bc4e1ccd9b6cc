package driven

import (
	"context"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
)

// EntityStore persists extracted entities. Entities are written once at
// extraction time and never mutated.
type EntityStore interface {
	// FindByDocuments retrieves entities for the given documents in one
	// bulk read. An empty types slice means all types.
	FindByDocuments(ctx context.Context, documentIDs []string, types []domain.EntityType) ([]*domain.Entity, error)

	// Save stores the extracted entities for a document.
	// The DocumentID of each entity is set to documentID.
	Save(ctx context.Context, documentID string, entities []domain.Entity) error

	// DocumentIDsWithoutEntities returns the subset of documentIDs that
	// have no stored entities yet. Used by the extraction backfill.
	DocumentIDsWithoutEntities(ctx context.Context, documentIDs []string) ([]string, error)
}
