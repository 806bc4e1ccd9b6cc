package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
)

// MockNarrativeStore is an in-memory NarrativeStore for testing
type MockNarrativeStore struct {
	mu         sync.RWMutex
	narratives map[string]*domain.Narrative
	followers  map[string]map[string]struct{} // narrativeID -> userIDs

	// CreateErr, when set, is returned by every Create call.
	// FailCreateContaining fails only creations linking the given
	// document ID, for failure isolation tests.
	CreateErr            error
	FailCreateContaining string
}

// NewMockNarrativeStore creates a new MockNarrativeStore
func NewMockNarrativeStore() *MockNarrativeStore {
	return &MockNarrativeStore{
		narratives: make(map[string]*domain.Narrative),
		followers:  make(map[string]map[string]struct{}),
	}
}

// Follow seeds a follower record (test setup helper; follower records
// are owned externally in production)
func (m *MockNarrativeStore) Follow(narrativeID, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.followers[narrativeID] == nil {
		m.followers[narrativeID] = make(map[string]struct{})
	}
	m.followers[narrativeID][userID] = struct{}{}
}

// All returns every stored narrative (test assertion helper)
func (m *MockNarrativeStore) All() []*domain.Narrative {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Narrative, 0, len(m.narratives))
	for _, n := range m.narratives {
		out = append(out, n)
	}
	return out
}

func (m *MockNarrativeStore) Get(ctx context.Context, id string) (*domain.Narrative, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.narratives[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return n, nil
}

func (m *MockNarrativeStore) Create(ctx context.Context, narrative *domain.Narrative) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if m.FailCreateContaining != "" {
		for _, id := range narrative.DocumentIDs {
			if id == m.FailCreateContaining {
				return domain.ErrInvalidInput
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if narrative.ID == "" {
		narrative.ID = domain.GenerateID()
	}
	now := time.Now()
	if narrative.CreatedAt.IsZero() {
		narrative.CreatedAt = now
	}
	if narrative.UpdatedAt.IsZero() {
		narrative.UpdatedAt = now
	}

	m.narratives[narrative.ID] = narrative
	return nil
}

func (m *MockNarrativeStore) FindLinkedTo(ctx context.Context, documentIDs []string) ([]*domain.Narrative, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idSet := make(map[string]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		idSet[id] = struct{}{}
	}

	var linked []*domain.Narrative
	for _, n := range m.narratives {
		for _, docID := range n.DocumentIDs {
			if _, ok := idSet[docID]; ok {
				linked = append(linked, n)
				break
			}
		}
	}
	return linked, nil
}

func (m *MockNarrativeStore) FindCreatedAfter(ctx context.Context, t time.Time) ([]*domain.Narrative, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.Narrative
	for _, n := range m.narratives {
		if !n.CreatedAt.Before(t) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MockNarrativeStore) FindRecent(ctx context.Context, limit int) ([]*domain.Narrative, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Narrative, 0, len(m.narratives))
	for _, n := range m.narratives {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockNarrativeStore) IsFollowed(ctx context.Context, narrativeID, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.followers[narrativeID][userID]
	return ok, nil
}
