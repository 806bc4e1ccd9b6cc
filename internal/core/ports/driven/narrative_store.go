package driven

import (
	"context"
	"time"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
)

// NarrativeStore persists narratives and their document links.
// Narratives are created by the clusterer and never deleted by the core.
type NarrativeStore interface {
	// Get retrieves a narrative with its document links.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Narrative, error)

	// Create persists a new narrative together with its document links.
	// ID, CreatedAt and UpdatedAt are assigned by the store if unset.
	Create(ctx context.Context, narrative *domain.Narrative) error

	// FindLinkedTo retrieves every narrative linked to at least one of
	// the given documents, with full link sets. Used by the idempotent
	// upsert check.
	FindLinkedTo(ctx context.Context, documentIDs []string) ([]*domain.Narrative, error)

	// FindCreatedAfter retrieves narratives created at or after the
	// given time, newest first. Drives the active-narrative scan of the
	// metrics calculator.
	FindCreatedAfter(ctx context.Context, t time.Time) ([]*domain.Narrative, error)

	// FindRecent retrieves the most recently updated narratives.
	FindRecent(ctx context.Context, limit int) ([]*domain.Narrative, error)

	// IsFollowed reports whether the user follows the narrative.
	// Follower records are owned externally; the core only reads them.
	IsFollowed(ctx context.Context, narrativeID, userID string) (bool, error)
}
