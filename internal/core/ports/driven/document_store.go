package driven

import (
	"context"
	"time"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
)

// DocumentFilter narrows a document query. Zero values mean "no filter".
type DocumentFilter struct {
	// PublishedAfter restricts to documents published at or after this time
	PublishedAfter time.Time

	// Sources restricts to the given source slugs (empty = all sources)
	Sources []string

	// Limit caps the number of documents returned (0 = no cap)
	Limit int
}

// DocumentStore provides read access to the externally-owned document
// corpus. The core never writes documents.
type DocumentStore interface {
	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Find retrieves documents matching the filter, newest first.
	Find(ctx context.Context, filter DocumentFilter) ([]*domain.Document, error)

	// GetBatch retrieves documents by ID in one round trip.
	// Missing IDs are silently omitted from the result.
	GetBatch(ctx context.Context, ids []string) ([]*domain.Document, error)
}
