package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.MetricStore = (*MetricStore)(nil)

// MetricStore implements driven.MetricStore using PostgreSQL.
// The narrative_metrics table is append-only.
type MetricStore struct {
	db *DB
}

// NewMetricStore creates a new MetricStore
func NewMetricStore(db *DB) *MetricStore {
	return &MetricStore{db: db}
}

// Append stores a new immutable snapshot
func (s *MetricStore) Append(ctx context.Context, metric *domain.NarrativeMetric) error {
	if metric.CalculatedAt.IsZero() {
		metric.CalculatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO narrative_metrics (narrative_id, period, mention_count, velocity, calculated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		metric.NarrativeID,
		metric.Period,
		metric.MentionCount,
		metric.Velocity,
		metric.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("append metric snapshot: %w", err)
	}
	return nil
}

// Latest retrieves the most recent snapshot per period for a narrative
func (s *MetricStore) Latest(ctx context.Context, narrativeID string) (map[domain.MetricPeriod]*domain.NarrativeMetric, error) {
	query := `SELECT DISTINCT ON (period) narrative_id, period, mention_count, velocity, calculated_at
		FROM narrative_metrics
		WHERE narrative_id = $1
		ORDER BY period, calculated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, narrativeID)
	if err != nil {
		return nil, fmt.Errorf("latest metric snapshots: %w", err)
	}
	defer rows.Close()

	latest := make(map[domain.MetricPeriod]*domain.NarrativeMetric)
	for rows.Next() {
		var m domain.NarrativeMetric
		if err := rows.Scan(&m.NarrativeID, &m.Period, &m.MentionCount, &m.Velocity, &m.CalculatedAt); err != nil {
			return nil, fmt.Errorf("scan metric snapshot: %w", err)
		}
		latest[m.Period] = &m
	}
	return latest, rows.Err()
}

// CalculatedSince retrieves snapshots calculated at or after t, most
// recent first
func (s *MetricStore) CalculatedSince(ctx context.Context, t time.Time) ([]*domain.NarrativeMetric, error) {
	query := `SELECT narrative_id, period, mention_count, velocity, calculated_at
		FROM narrative_metrics
		WHERE calculated_at >= $1
		ORDER BY calculated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, t)
	if err != nil {
		return nil, fmt.Errorf("recent metric snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*domain.NarrativeMetric
	for rows.Next() {
		var m domain.NarrativeMetric
		if err := rows.Scan(&m.NarrativeID, &m.Period, &m.MentionCount, &m.Velocity, &m.CalculatedAt); err != nil {
			return nil, fmt.Errorf("scan metric snapshot: %w", err)
		}
		snapshots = append(snapshots, &m)
	}
	return snapshots, rows.Err()
}

// DeleteOlderThan removes snapshots calculated before t
func (s *MetricStore) DeleteOlderThan(ctx context.Context, t time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM narrative_metrics WHERE calculated_at < $1`, t)
	if err != nil {
		return 0, fmt.Errorf("delete metric snapshots: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted snapshots: %w", err)
	}
	return int(affected), nil
}
