package driving

import (
	"context"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
)

// ClusterService detects narratives by grouping documents that share
// significant entities
type ClusterService interface {
	// Run executes one detection pass over the configured trailing
	// window and persists new narratives. A failure to create one
	// narrative never aborts the batch; the result reports how many
	// candidates were detected vs actually created.
	Run(ctx context.Context) (*domain.DetectionResult, error)
}

// ExtractionService backfills entities for documents the ingestion
// pipeline stored without extraction
type ExtractionService interface {
	// Backfill extracts and saves entities for every document in the
	// window that has none. Per-document failures are logged and
	// skipped.
	Backfill(ctx context.Context) (*domain.BackfillResult, error)
}
