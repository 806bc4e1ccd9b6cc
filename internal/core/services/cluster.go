package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driven"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driving"
	"github.com/marketpulse-labs/narrative-core/internal/sentiment"
)

// Ensure clusterService implements ClusterService
var _ driving.ClusterService = (*clusterService)(nil)

// clusterService implements narrative detection over shared entities
type clusterService struct {
	documentStore  driven.DocumentStore
	entityStore    driven.EntityStore
	narrativeStore driven.NarrativeStore
	logger         *slog.Logger

	timeWindow        time.Duration
	minSharedEntities int
	minArticles       int
	dedupeOnOverlap   bool
}

// ClusterConfig holds dependencies and tuning for the clusterer.
type ClusterConfig struct {
	DocumentStore  driven.DocumentStore
	EntityStore    driven.EntityStore
	NarrativeStore driven.NarrativeStore
	Logger         *slog.Logger

	// TimeWindowHours is the trailing document window (default: 24)
	TimeWindowHours int

	// MinSharedEntities is the minimum number of shared entities for a
	// cluster (default: 2)
	MinSharedEntities int

	// MinArticles is the minimum number of documents for a detected
	// cluster to become a narrative (default: 3)
	MinArticles int

	// DedupeOnOverlap suppresses creation when a cluster shares any
	// document with an existing narrative. The default (false) keeps the
	// historical behavior: skip only when the document sets are exactly
	// equal, otherwise create a new narrative even on partial overlap.
	DedupeOnOverlap bool
}

// NewClusterService creates a new ClusterService
func NewClusterService(cfg ClusterConfig) driving.ClusterService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	windowHours := cfg.TimeWindowHours
	if windowHours <= 0 {
		windowHours = 24
	}
	minShared := cfg.MinSharedEntities
	if minShared <= 0 {
		minShared = 2
	}
	minArticles := cfg.MinArticles
	if minArticles <= 0 {
		minArticles = 3
	}

	return &clusterService{
		documentStore:     cfg.DocumentStore,
		entityStore:       cfg.EntityStore,
		narrativeStore:    cfg.NarrativeStore,
		logger:            logger,
		timeWindow:        time.Duration(windowHours) * time.Hour,
		minSharedEntities: minShared,
		minArticles:       minArticles,
		dedupeOnOverlap:   cfg.DedupeOnOverlap,
	}
}

// Run executes one detection pass: bulk-load the window, cluster on
// shared significant entities, then persist new narratives idempotently.
func (s *clusterService) Run(ctx context.Context) (*domain.DetectionResult, error) {
	since := time.Now().Add(-s.timeWindow)

	documents, err := s.documentStore.Find(ctx, driven.DocumentFilter{PublishedAfter: since})
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}
	if len(documents) == 0 {
		return &domain.DetectionResult{}, nil
	}

	docIDs := make([]string, len(documents))
	for i, doc := range documents {
		docIDs[i] = doc.ID
	}

	// One bulk read for all entities in the window, keywords excluded.
	entities, err := s.entityStore.FindByDocuments(ctx, docIDs, domain.SignificantEntityTypes)
	if err != nil {
		return nil, fmt.Errorf("fetch entities: %w", err)
	}

	clusters := detectClusters(documents, entities, s.minSharedEntities)

	result := &domain.DetectionResult{}
	for _, cluster := range clusters {
		if len(cluster.Documents) < s.minArticles {
			continue
		}
		result.Detected++

		created, err := s.persist(ctx, cluster)
		if err != nil {
			// One bad narrative never aborts the batch.
			s.logger.Error("failed to persist narrative",
				"entities", cluster.SharedEntities,
				"documents", len(cluster.Documents),
				"error", err,
			)
			continue
		}
		if created {
			result.Created++
		}
	}

	s.logger.Info("narrative detection finished",
		"documents", len(documents),
		"detected", result.Detected,
		"created", result.Created,
	)
	return result, nil
}

// detectClusters groups documents by shared entity keys. Deterministic:
// entity keys are walked in descending mention count (ties by key), each
// document joins at most one cluster per run, first claimed wins. The
// processed set is local so concurrent runs over separate inputs never
// interfere.
func detectClusters(documents []*domain.Document, entities []*domain.Entity, minShared int) []*domain.Cluster {
	docsByID := make(map[string]*domain.Document, len(documents))
	for _, doc := range documents {
		docsByID[doc.ID] = doc
	}

	// Inverted index: entity key -> documents mentioning it.
	index := make(map[string]map[string]struct{})
	for _, e := range entities {
		if _, ok := docsByID[e.DocumentID]; !ok {
			continue
		}
		key := e.Key()
		if index[key] == nil {
			index[key] = make(map[string]struct{})
		}
		index[key][e.DocumentID] = struct{}{}
	}

	keys := make([]string, 0, len(index))
	for key := range index {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := len(index[keys[i]]), len(index[keys[j]])
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})

	processed := make(map[string]struct{})
	var clusters []*domain.Cluster

	for _, key := range keys {
		var unprocessed []string
		for docID := range index[key] {
			if _, done := processed[docID]; !done {
				unprocessed = append(unprocessed, docID)
			}
		}
		if len(unprocessed) < minShared {
			continue
		}

		shared := sharedEntities(index, unprocessed)
		if len(shared) < minShared {
			continue
		}

		docs := make([]*domain.Document, 0, len(unprocessed))
		for _, docID := range unprocessed {
			docs = append(docs, docsByID[docID])
			processed[docID] = struct{}{}
		}
		sort.Slice(docs, func(i, j int) bool {
			if !docs[i].PublishedAt.Equal(docs[j].PublishedAt) {
				return docs[i].PublishedAt.After(docs[j].PublishedAt)
			}
			return docs[i].ID < docs[j].ID
		})

		clusters = append(clusters, &domain.Cluster{
			SharedEntities: shared,
			Documents:      docs,
		})
	}

	return clusters
}

// sharedEntities returns every entity key mentioned by at least two of
// the given documents, ordered by descending mention count within the
// group, ties by key.
func sharedEntities(index map[string]map[string]struct{}, docIDs []string) []string {
	counts := make(map[string]int)
	for key, docs := range index {
		for _, docID := range docIDs {
			if _, ok := docs[docID]; ok {
				counts[key]++
			}
		}
	}

	var shared []string
	for key, count := range counts {
		if count >= 2 {
			shared = append(shared, key)
		}
	}
	sort.Slice(shared, func(i, j int) bool {
		if counts[shared[i]] != counts[shared[j]] {
			return counts[shared[i]] > counts[shared[j]]
		}
		return shared[i] < shared[j]
	})
	return shared
}

// persist applies the idempotent upsert: a cluster whose document set
// exactly matches an existing narrative is skipped, anything else is
// created as a new record. Existing narratives are never updated in
// place.
func (s *clusterService) persist(ctx context.Context, cluster *domain.Cluster) (bool, error) {
	docIDs := make([]string, len(cluster.Documents))
	for i, doc := range cluster.Documents {
		docIDs[i] = doc.ID
	}

	existing, err := s.narrativeStore.FindLinkedTo(ctx, docIDs)
	if err != nil {
		return false, fmt.Errorf("lookup linked narratives: %w", err)
	}
	for _, narrative := range existing {
		if narrative.HasSameDocuments(docIDs) {
			return false, nil
		}
		if s.dedupeOnOverlap {
			return false, nil
		}
	}

	title := deriveTitle(cluster.SharedEntities)
	summary := deriveSummary(cluster)

	narrative := &domain.Narrative{
		Title:       title,
		Summary:     summary,
		Sentiment:   sentiment.ClassifyNarrative(title, summary),
		DocumentIDs: docIDs,
	}
	if err := s.narrativeStore.Create(ctx, narrative); err != nil {
		return false, fmt.Errorf("create narrative: %w", err)
	}
	return true, nil
}

// deriveTitle renders a title from the top shared entities. The leading
// entity's type picks the template.
func deriveTitle(sharedKeys []string) string {
	top := sharedKeys
	if len(top) > 3 {
		top = top[:3]
	}
	if len(top) == 0 {
		return "Market Narrative"
	}

	leadType, leadValue := splitEntityKey(top[0])
	switch leadType {
	case domain.EntityTypeTicker:
		var tickers []string
		for _, key := range top {
			if t, v := splitEntityKey(key); t == domain.EntityTypeTicker {
				tickers = append(tickers, v)
			}
		}
		return strings.Join(tickers, ", ") + " Market Movement"
	case domain.EntityTypePerson:
		return leadValue + " Developments"
	case domain.EntityTypeOrg:
		return leadValue + " News"
	default:
		values := make([]string, 0, 2)
		for _, key := range top {
			_, v := splitEntityKey(key)
			values = append(values, v)
			if len(values) == 2 {
				break
			}
		}
		return strings.Join(values, ", ") + " Updates"
	}
}

// deriveSummary builds a one-sentence description naming document count,
// up to five entities and the elapsed span of the cluster.
func deriveSummary(cluster *domain.Cluster) string {
	names := make([]string, 0, 5)
	for _, key := range cluster.SharedEntities {
		_, value := splitEntityKey(key)
		names = append(names, value)
		if len(names) == 5 {
			break
		}
	}

	newest := cluster.Documents[0].PublishedAt
	oldest := cluster.Documents[len(cluster.Documents)-1].PublishedAt

	return fmt.Sprintf("%d articles covering %s %s.",
		len(cluster.Documents),
		strings.Join(names, ", "),
		spanPhrase(newest.Sub(oldest)),
	)
}

// spanPhrase renders an elapsed duration the way the feed shows it.
func spanPhrase(span time.Duration) string {
	hours := int(span.Hours())
	switch {
	case hours < 1:
		return "in the last hour"
	case hours < 24:
		if hours == 1 {
			return "over the last hour"
		}
		return fmt.Sprintf("over the last %d hours", hours)
	default:
		days := hours / 24
		if days == 1 {
			return "over the last day"
		}
		return fmt.Sprintf("over the last %d days", days)
	}
}

func splitEntityKey(key string) (domain.EntityType, string) {
	if i := strings.Index(key, ":"); i >= 0 {
		return domain.EntityType(key[:i]), key[i+1:]
	}
	return "", key
}
