package driving

import (
	"context"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
)

// FeedOptions scopes a feed request
type FeedOptions struct {
	// ActiveSources is the whitelist of source slugs to include.
	// An empty whitelist degrades every output to an empty collection.
	ActiveSources []string

	// UserID resolves is_followed on narrative items (empty = anonymous)
	UserID string

	// Limit caps the number of items returned
	Limit int
}

// FeedService assembles read-only, explainable feed projections.
// It has no persistent side effects.
type FeedService interface {
	// NarrativeFeed builds ranked narrative feed items for the most
	// recently updated narratives.
	NarrativeFeed(ctx context.Context, opts FeedOptions) ([]*domain.NarrativeFeedItem, error)

	// NarrativeDetail builds the full feed item for one narrative.
	// Returns domain.ErrNotFound if the narrative does not exist.
	NarrativeDetail(ctx context.Context, narrativeID string, opts FeedOptions) (*domain.NarrativeFeedItem, error)

	// SocialFeed merges recent documents, narratives and a system status
	// post into one recency-ranked feed.
	SocialFeed(ctx context.Context, opts FeedOptions) ([]*domain.FeedPost, error)
}
