package mocks

import (
	"context"
	"sync"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
)

// MockEntityStore is an in-memory EntityStore for testing
type MockEntityStore struct {
	mu         sync.RWMutex
	byDocument map[string][]*domain.Entity

	// SaveErr, when set, is returned by every Save call
	SaveErr error
}

// NewMockEntityStore creates a new MockEntityStore
func NewMockEntityStore() *MockEntityStore {
	return &MockEntityStore{
		byDocument: make(map[string][]*domain.Entity),
	}
}

// Add seeds an entity into the store (test setup helper)
func (m *MockEntityStore) Add(entity domain.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := entity
	m.byDocument[e.DocumentID] = append(m.byDocument[e.DocumentID], &e)
}

func (m *MockEntityStore) FindByDocuments(ctx context.Context, documentIDs []string, types []domain.EntityType) ([]*domain.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	typeSet := make(map[domain.EntityType]struct{}, len(types))
	for _, t := range types {
		typeSet[t] = struct{}{}
	}

	var entities []*domain.Entity
	for _, docID := range documentIDs {
		for _, e := range m.byDocument[docID] {
			if len(typeSet) > 0 {
				if _, ok := typeSet[e.Type]; !ok {
					continue
				}
			}
			entities = append(entities, e)
		}
	}
	return entities, nil
}

func (m *MockEntityStore) Save(ctx context.Context, documentID string, entities []domain.Entity) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entity := range entities {
		e := entity
		e.DocumentID = documentID
		m.byDocument[documentID] = append(m.byDocument[documentID], &e)
	}
	return nil
}

func (m *MockEntityStore) DocumentIDsWithoutEntities(ctx context.Context, documentIDs []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var missing []string
	for _, id := range documentIDs {
		if len(m.byDocument[id]) == 0 {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
