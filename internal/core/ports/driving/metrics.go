package driving

import (
	"context"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
)

// MetricsService computes and serves time-windowed engagement metrics
type MetricsService interface {
	// Calculate computes mention count and velocity for every active
	// narrative and period, appending one snapshot per pair. Per-pair
	// failures are logged and skipped.
	Calculate(ctx context.Context) (*domain.CalculationResult, error)

	// Trending returns the top narratives by velocity (then mention
	// count), one snapshot per narrative, from snapshots calculated in
	// the trailing two hours.
	Trending(ctx context.Context, limit int) ([]*domain.NarrativeMetric, error)

	// MostMentioned returns the top narratives by mention count (then
	// velocity), with the same dedup and freshness window as Trending.
	MostMentioned(ctx context.Context, limit int) ([]*domain.NarrativeMetric, error)

	// Cleanup deletes snapshots older than the configured retention and
	// returns how many were removed.
	Cleanup(ctx context.Context) (int, error)
}
