package services

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driven/mocks"
)

func seedClusterFixture(docs *mocks.MockDocumentStore, entities *mocks.MockEntityStore) {
	now := time.Now()

	// Three documents about the same story, one unrelated.
	related := []string{"doc-1", "doc-2", "doc-3"}
	for i, id := range related {
		docs.Add(&domain.Document{
			ID:          id,
			Source:      "newswire",
			Title:       "Nvidia keeps climbing",
			Body:        "Chips rally continues",
			URL:         "https://example.com/" + id,
			PublishedAt: now.Add(-time.Duration(i+1) * time.Hour),
		})
		entities.Add(domain.Entity{DocumentID: id, Type: domain.EntityTypeTicker, Value: "$NVDA"})
		entities.Add(domain.Entity{DocumentID: id, Type: domain.EntityTypeOrg, Value: "Nvidia Corp"})
	}

	docs.Add(&domain.Document{
		ID:          "doc-other",
		Source:      "newswire",
		Title:       "Unrelated utility filing",
		PublishedAt: now.Add(-30 * time.Minute),
	})
	entities.Add(domain.Entity{DocumentID: "doc-other", Type: domain.EntityTypeTicker, Value: "$DUK"})
}

func TestClusterService_Run_DetectsNarrative(t *testing.T) {
	documentStore := mocks.NewMockDocumentStore()
	entityStore := mocks.NewMockEntityStore()
	narrativeStore := mocks.NewMockNarrativeStore()
	seedClusterFixture(documentStore, entityStore)

	svc := NewClusterService(ClusterConfig{
		DocumentStore:  documentStore,
		EntityStore:    entityStore,
		NarrativeStore: narrativeStore,
	})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Detected != 1 || result.Created != 1 {
		t.Fatalf("expected 1 detected / 1 created, got %+v", result)
	}

	narratives := narrativeStore.All()
	if len(narratives) != 1 {
		t.Fatalf("expected 1 narrative, got %d", len(narratives))
	}

	n := narratives[0]
	if len(n.DocumentIDs) != 3 {
		t.Errorf("expected 3 linked documents, got %v", n.DocumentIDs)
	}
	// Both shared entities touch all three documents; the tie resolves
	// on key order, which puts the org first.
	if n.Title != "Nvidia Corp News" {
		t.Errorf("unexpected title %q", n.Title)
	}
	if n.Summary == "" {
		t.Error("expected a derived summary")
	}
	if n.Sentiment != domain.SentimentNeutral {
		t.Errorf("expected neutral sentiment from derived text, got %s", n.Sentiment)
	}
}

func TestClusterService_Run_Idempotent(t *testing.T) {
	documentStore := mocks.NewMockDocumentStore()
	entityStore := mocks.NewMockEntityStore()
	narrativeStore := mocks.NewMockNarrativeStore()
	seedClusterFixture(documentStore, entityStore)

	svc := NewClusterService(ClusterConfig{
		DocumentStore:  documentStore,
		EntityStore:    entityStore,
		NarrativeStore: narrativeStore,
	})

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if result.Detected != 1 || result.Created != 0 {
		t.Errorf("expected the re-detected cluster to be skipped, got %+v", result)
	}
	if got := len(narrativeStore.All()); got != 1 {
		t.Errorf("expected exactly 1 narrative after two runs, got %d", got)
	}
}

func TestClusterService_Run_MinArticlesFilter(t *testing.T) {
	documentStore := mocks.NewMockDocumentStore()
	entityStore := mocks.NewMockEntityStore()
	narrativeStore := mocks.NewMockNarrativeStore()

	now := time.Now()
	for _, id := range []string{"doc-1", "doc-2"} {
		documentStore.Add(&domain.Document{ID: id, Source: "newswire", PublishedAt: now.Add(-time.Hour)})
		entityStore.Add(domain.Entity{DocumentID: id, Type: domain.EntityTypeTicker, Value: "$TSLA"})
		entityStore.Add(domain.Entity{DocumentID: id, Type: domain.EntityTypePerson, Value: "Elon Musk"})
	}

	svc := NewClusterService(ClusterConfig{
		DocumentStore:  documentStore,
		EntityStore:    entityStore,
		NarrativeStore: narrativeStore,
	})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Detected != 0 || result.Created != 0 {
		t.Errorf("two-document cluster should not pass the article minimum, got %+v", result)
	}
}

func TestClusterService_Run_OverlapCreatesNewNarrative(t *testing.T) {
	documentStore := mocks.NewMockDocumentStore()
	entityStore := mocks.NewMockEntityStore()
	narrativeStore := mocks.NewMockNarrativeStore()
	seedClusterFixture(documentStore, entityStore)

	// An older narrative already links a strict subset of the window.
	_ = narrativeStore.Create(context.Background(), &domain.Narrative{
		Title:       "Nvidia Corp News",
		Sentiment:   domain.SentimentNeutral,
		DocumentIDs: []string{"doc-1", "doc-2"},
	})

	svc := NewClusterService(ClusterConfig{
		DocumentStore:  documentStore,
		EntityStore:    entityStore,
		NarrativeStore: narrativeStore,
	})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 1 {
		t.Errorf("overlapping but not set-equal cluster should create a new narrative, got %+v", result)
	}
	if got := len(narrativeStore.All()); got != 2 {
		t.Errorf("expected 2 narratives, got %d", got)
	}
}

func TestClusterService_Run_DedupeOnOverlap(t *testing.T) {
	documentStore := mocks.NewMockDocumentStore()
	entityStore := mocks.NewMockEntityStore()
	narrativeStore := mocks.NewMockNarrativeStore()
	seedClusterFixture(documentStore, entityStore)

	_ = narrativeStore.Create(context.Background(), &domain.Narrative{
		Title:       "Nvidia Corp News",
		Sentiment:   domain.SentimentNeutral,
		DocumentIDs: []string{"doc-1", "doc-2"},
	})

	svc := NewClusterService(ClusterConfig{
		DocumentStore:   documentStore,
		EntityStore:     entityStore,
		NarrativeStore:  narrativeStore,
		DedupeOnOverlap: true,
	})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 0 {
		t.Errorf("dedupe on overlap should suppress creation, got %+v", result)
	}
}

func TestClusterService_Run_FailureIsolation(t *testing.T) {
	documentStore := mocks.NewMockDocumentStore()
	entityStore := mocks.NewMockEntityStore()
	narrativeStore := mocks.NewMockNarrativeStore()
	seedClusterFixture(documentStore, entityStore)

	// Second independent cluster.
	now := time.Now()
	for _, id := range []string{"doc-a", "doc-b", "doc-c"} {
		documentStore.Add(&domain.Document{ID: id, Source: "social", PublishedAt: now.Add(-2 * time.Hour)})
		entityStore.Add(domain.Entity{DocumentID: id, Type: domain.EntityTypeTicker, Value: "$AAPL"})
		entityStore.Add(domain.Entity{DocumentID: id, Type: domain.EntityTypeOrg, Value: "Apple Inc"})
	}

	narrativeStore.FailCreateContaining = "doc-a"

	svc := NewClusterService(ClusterConfig{
		DocumentStore:  documentStore,
		EntityStore:    entityStore,
		NarrativeStore: narrativeStore,
	})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("a single failed narrative must not abort the run: %v", err)
	}
	if result.Detected != 2 {
		t.Errorf("expected 2 detected, got %+v", result)
	}
	if result.Created != 1 {
		t.Errorf("expected the healthy cluster to still be created, got %+v", result)
	}
}

func TestDetectClusters_Deterministic(t *testing.T) {
	now := time.Now()
	var documents []*domain.Document
	var entities []*domain.Entity
	for i, id := range []string{"d1", "d2", "d3", "d4", "d5"} {
		documents = append(documents, &domain.Document{
			ID:          id,
			PublishedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	for _, id := range []string{"d1", "d2", "d3"} {
		entities = append(entities,
			&domain.Entity{DocumentID: id, Type: domain.EntityTypeTicker, Value: "$NVDA"},
			&domain.Entity{DocumentID: id, Type: domain.EntityTypeOrg, Value: "Nvidia Corp"},
		)
	}
	for _, id := range []string{"d4", "d5"} {
		entities = append(entities,
			&domain.Entity{DocumentID: id, Type: domain.EntityTypeTicker, Value: "$AMD"},
			&domain.Entity{DocumentID: id, Type: domain.EntityTypeKeyword, Value: "chips"},
		)
	}

	first := detectClusters(documents, entities, 2)
	for i := 0; i < 10; i++ {
		next := detectClusters(documents, entities, 2)
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("clustering not deterministic on iteration %d: %+v vs %+v", i, first, next)
		}
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{
			name: "ticker cluster",
			keys: []string{"ticker:$NVDA", "ticker:$AMD", "org:Nvidia Corp"},
			want: "$NVDA, $AMD Market Movement",
		},
		{
			name: "person cluster",
			keys: []string{"person:Jerome Powell", "org:Federal Reserve"},
			want: "Jerome Powell Developments",
		},
		{
			name: "org cluster",
			keys: []string{"org:Apple Inc", "ticker:$AAPL"},
			want: "Apple Inc News",
		},
		{
			name: "fallback",
			keys: []string{"keyword:semiconductor", "keyword:shortage"},
			want: "semiconductor, shortage Updates",
		},
		{
			name: "no shared entities",
			keys: nil,
			want: "Market Narrative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveTitle(tt.keys); got != tt.want {
				t.Errorf("deriveTitle(%v) = %q, want %q", tt.keys, got, tt.want)
			}
		})
	}
}

func TestSpanPhrase(t *testing.T) {
	tests := []struct {
		span time.Duration
		want string
	}{
		{30 * time.Minute, "in the last hour"},
		{90 * time.Minute, "over the last hour"},
		{6 * time.Hour, "over the last 6 hours"},
		{25 * time.Hour, "over the last day"},
		{3 * 24 * time.Hour, "over the last 3 days"},
	}

	for _, tt := range tests {
		if got := spanPhrase(tt.span); got != tt.want {
			t.Errorf("spanPhrase(%v) = %q, want %q", tt.span, got, tt.want)
		}
	}
}
