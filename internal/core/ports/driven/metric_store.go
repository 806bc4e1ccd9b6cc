package driven

import (
	"context"
	"time"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
)

// MetricStore persists narrative metric snapshots. The table is
// append-only: snapshots are never updated in place, and read paths take
// the most recent snapshot per (narrative, period).
type MetricStore interface {
	// Append stores a new immutable snapshot.
	Append(ctx context.Context, metric *domain.NarrativeMetric) error

	// Latest retrieves the most recent snapshot per period for a
	// narrative. Periods with no snapshots are absent from the map.
	Latest(ctx context.Context, narrativeID string) (map[domain.MetricPeriod]*domain.NarrativeMetric, error)

	// CalculatedSince retrieves all snapshots calculated at or after the
	// given time, most recent first. Feeds the trending and
	// most-mentioned rankings.
	CalculatedSince(ctx context.Context, t time.Time) ([]*domain.NarrativeMetric, error)

	// DeleteOlderThan removes snapshots calculated before the given time
	// and returns how many were deleted.
	DeleteOlderThan(ctx context.Context, t time.Time) (int, error)
}
