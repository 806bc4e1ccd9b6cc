package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
)

// MockMetricStore is an in-memory append-only MetricStore for testing
type MockMetricStore struct {
	mu        sync.RWMutex
	snapshots []*domain.NarrativeMetric

	// AppendErr, when set, is returned by every Append call.
	// FailAppendFor fails appends for one narrative ID only.
	AppendErr     error
	FailAppendFor string
}

// NewMockMetricStore creates a new MockMetricStore
func NewMockMetricStore() *MockMetricStore {
	return &MockMetricStore{}
}

// All returns every stored snapshot in append order (test helper)
func (m *MockMetricStore) All() []*domain.NarrativeMetric {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.NarrativeMetric, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

func (m *MockMetricStore) Append(ctx context.Context, metric *domain.NarrativeMetric) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	if m.FailAppendFor != "" && metric.NarrativeID == m.FailAppendFor {
		return domain.ErrInvalidInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if metric.CalculatedAt.IsZero() {
		metric.CalculatedAt = time.Now()
	}
	m.snapshots = append(m.snapshots, metric)
	return nil
}

func (m *MockMetricStore) Latest(ctx context.Context, narrativeID string) (map[domain.MetricPeriod]*domain.NarrativeMetric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make(map[domain.MetricPeriod]*domain.NarrativeMetric)
	for _, s := range m.snapshots {
		if s.NarrativeID != narrativeID {
			continue
		}
		cur, ok := latest[s.Period]
		if !ok || s.CalculatedAt.After(cur.CalculatedAt) {
			latest[s.Period] = s
		}
	}
	return latest, nil
}

func (m *MockMetricStore) CalculatedSince(ctx context.Context, t time.Time) ([]*domain.NarrativeMetric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.NarrativeMetric
	for _, s := range m.snapshots {
		if !s.CalculatedAt.Before(t) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CalculatedAt.After(out[j].CalculatedAt)
	})
	return out, nil
}

func (m *MockMetricStore) DeleteOlderThan(ctx context.Context, t time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []*domain.NarrativeMetric
	deleted := 0
	for _, s := range m.snapshots {
		if s.CalculatedAt.Before(t) {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	m.snapshots = kept
	return deleted, nil
}
