package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driven"
)

// MockDocumentStore is an in-memory DocumentStore for testing
type MockDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents: make(map[string]*domain.Document),
	}
}

// Add seeds a document into the store (test setup helper)
func (m *MockDocumentStore) Add(doc *domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[doc.ID] = doc
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *MockDocumentStore) Find(ctx context.Context, filter driven.DocumentFilter) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sourceSet := make(map[string]struct{}, len(filter.Sources))
	for _, s := range filter.Sources {
		sourceSet[s] = struct{}{}
	}

	var docs []*domain.Document
	for _, doc := range m.documents {
		if !filter.PublishedAfter.IsZero() && doc.PublishedAt.Before(filter.PublishedAfter) {
			continue
		}
		if len(sourceSet) > 0 {
			if _, ok := sourceSet[doc.Source]; !ok {
				continue
			}
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].PublishedAt.After(docs[j].PublishedAt)
	})

	if filter.Limit > 0 && len(docs) > filter.Limit {
		docs = docs[:filter.Limit]
	}
	return docs, nil
}

func (m *MockDocumentStore) GetBatch(ctx context.Context, ids []string) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []*domain.Document
	for _, id := range ids {
		if doc, ok := m.documents[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
