package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driven"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driving"
)

// Ensure metricsService implements MetricsService
var _ driving.MetricsService = (*metricsService)(nil)

// activeNarrativeWindow scopes the calculator to recently created
// narratives; older ones keep their last snapshots.
const activeNarrativeWindow = 7 * 24 * time.Hour

// rankingFreshness limits trending/most-mentioned reads to snapshots
// calculated recently, so stale runs never surface.
const rankingFreshness = 2 * time.Hour

// metricsService computes mention counts and velocity per narrative
type metricsService struct {
	narrativeStore driven.NarrativeStore
	documentStore  driven.DocumentStore
	metricStore    driven.MetricStore
	logger         *slog.Logger

	retention time.Duration
}

// MetricsConfig holds dependencies and tuning for the metrics calculator.
type MetricsConfig struct {
	NarrativeStore driven.NarrativeStore
	DocumentStore  driven.DocumentStore
	MetricStore    driven.MetricStore
	Logger         *slog.Logger

	// RetentionDays is how long snapshots are kept before Cleanup
	// removes them (default: 7)
	RetentionDays int
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(cfg MetricsConfig) driving.MetricsService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	retentionDays := cfg.RetentionDays
	if retentionDays <= 0 {
		retentionDays = 7
	}

	return &metricsService{
		narrativeStore: cfg.NarrativeStore,
		documentStore:  cfg.DocumentStore,
		metricStore:    cfg.MetricStore,
		logger:         logger,
		retention:      time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Calculate appends one snapshot per active narrative and period.
// A failure on one (narrative, period) pair is logged and skipped; the
// remaining pairs still compute.
func (s *metricsService) Calculate(ctx context.Context) (*domain.CalculationResult, error) {
	now := time.Now()

	narratives, err := s.narrativeStore.FindCreatedAfter(ctx, now.Add(-activeNarrativeWindow))
	if err != nil {
		return nil, fmt.Errorf("fetch active narratives: %w", err)
	}

	result := &domain.CalculationResult{}
	for _, narrative := range narratives {
		docs, err := s.documentStore.GetBatch(ctx, narrative.DocumentIDs)
		if err != nil {
			s.logger.Error("failed to load linked documents",
				"narrative_id", narrative.ID,
				"error", err,
			)
			continue
		}

		for _, period := range domain.MetricPeriods {
			result.Calculated++

			snapshot, err := buildSnapshot(narrative.ID, period, docs, now)
			if err != nil {
				s.logger.Error("failed to calculate metric",
					"narrative_id", narrative.ID,
					"period", period,
					"error", err,
				)
				continue
			}
			if err := s.metricStore.Append(ctx, snapshot); err != nil {
				s.logger.Error("failed to store metric snapshot",
					"narrative_id", narrative.ID,
					"period", period,
					"error", err,
				)
				continue
			}
			result.Stored++
		}
	}

	s.logger.Info("metrics calculation finished",
		"narratives", len(narratives),
		"calculated", result.Calculated,
		"stored", result.Stored,
	)
	return result, nil
}

// buildSnapshot computes the mention count and velocity for one period.
func buildSnapshot(narrativeID string, period domain.MetricPeriod, docs []*domain.Document, now time.Time) (*domain.NarrativeMetric, error) {
	window, err := period.Duration()
	if err != nil {
		return nil, err
	}

	current := countInWindow(docs, now.Add(-window), now)
	previous := countInWindow(docs, now.Add(-2*window), now.Add(-window))

	return &domain.NarrativeMetric{
		NarrativeID:  narrativeID,
		Period:       period,
		MentionCount: current,
		Velocity:     velocity(current, previous),
		CalculatedAt: now,
	}, nil
}

// countInWindow counts documents published in (from, to].
func countInWindow(docs []*domain.Document, from, to time.Time) int {
	count := 0
	for _, doc := range docs {
		if doc.PublishedAt.After(from) && !doc.PublishedAt.After(to) {
			count++
		}
	}
	return count
}

// velocity is the percentage rate of change between two consecutive
// equal-length windows, rounded to two decimals. A narrative appearing
// from nothing reads as 100; a dead one as 0.
func velocity(current, previous int) float64 {
	switch {
	case previous == 0 && current > 0:
		return 100
	case previous == 0:
		return 0
	default:
		change := float64(current-previous) / float64(previous) * 100
		return math.Round(change*100) / 100
	}
}

// Trending returns the freshest snapshot per narrative, ranked by
// velocity desc then mention count desc.
func (s *metricsService) Trending(ctx context.Context, limit int) ([]*domain.NarrativeMetric, error) {
	snapshots, err := s.recentRanked(ctx, func(a, b *domain.NarrativeMetric) bool {
		if a.Velocity != b.Velocity {
			return a.Velocity > b.Velocity
		}
		return a.MentionCount > b.MentionCount
	})
	if err != nil {
		return nil, err
	}
	return capMetrics(snapshots, limit), nil
}

// MostMentioned returns the freshest snapshot per narrative, ranked by
// mention count desc then velocity desc.
func (s *metricsService) MostMentioned(ctx context.Context, limit int) ([]*domain.NarrativeMetric, error) {
	snapshots, err := s.recentRanked(ctx, func(a, b *domain.NarrativeMetric) bool {
		if a.MentionCount != b.MentionCount {
			return a.MentionCount > b.MentionCount
		}
		return a.Velocity > b.Velocity
	})
	if err != nil {
		return nil, err
	}
	return capMetrics(snapshots, limit), nil
}

// recentRanked loads fresh snapshots, keeps the most recent one per
// narrative and sorts with the given ordering.
func (s *metricsService) recentRanked(ctx context.Context, less func(a, b *domain.NarrativeMetric) bool) ([]*domain.NarrativeMetric, error) {
	snapshots, err := s.metricStore.CalculatedSince(ctx, time.Now().Add(-rankingFreshness))
	if err != nil {
		return nil, fmt.Errorf("fetch recent snapshots: %w", err)
	}

	// CalculatedSince returns most recent first, so the first snapshot
	// seen per narrative is the one to keep.
	seen := make(map[string]struct{}, len(snapshots))
	var deduped []*domain.NarrativeMetric
	for _, snapshot := range snapshots {
		if _, ok := seen[snapshot.NarrativeID]; ok {
			continue
		}
		seen[snapshot.NarrativeID] = struct{}{}
		deduped = append(deduped, snapshot)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return less(deduped[i], deduped[j])
	})
	return deduped, nil
}

func capMetrics(snapshots []*domain.NarrativeMetric, limit int) []*domain.NarrativeMetric {
	if limit > 0 && len(snapshots) > limit {
		return snapshots[:limit]
	}
	return snapshots
}

// Cleanup prunes snapshots past retention.
func (s *metricsService) Cleanup(ctx context.Context) (int, error) {
	deleted, err := s.metricStore.DeleteOlderThan(ctx, time.Now().Add(-s.retention))
	if err != nil {
		return 0, fmt.Errorf("delete old snapshots: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("pruned metric snapshots", "deleted", deleted)
	}
	return deleted, nil
}
