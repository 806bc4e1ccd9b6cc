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
	"github.com/marketpulse-labs/narrative-core/internal/sentiment"
)

// Ensure feedService implements FeedService
var _ driving.FeedService = (*feedService)(nil)

const (
	defaultFeedLimit = 20
	maxHeadlines     = 5
	maxSources       = 5
	changeWindow     = 24 * time.Hour
)

// feedService assembles explainable feed projections on read
type feedService struct {
	narrativeStore driven.NarrativeStore
	documentStore  driven.DocumentStore
	entityStore    driven.EntityStore
	metricStore    driven.MetricStore
	logger         *slog.Logger
}

// FeedConfig holds dependencies for the feed assembler.
type FeedConfig struct {
	NarrativeStore driven.NarrativeStore
	DocumentStore  driven.DocumentStore
	EntityStore    driven.EntityStore
	MetricStore    driven.MetricStore
	Logger         *slog.Logger
}

// NewFeedService creates a new FeedService
func NewFeedService(cfg FeedConfig) driving.FeedService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &feedService{
		narrativeStore: cfg.NarrativeStore,
		documentStore:  cfg.DocumentStore,
		entityStore:    cfg.EntityStore,
		metricStore:    cfg.MetricStore,
		logger:         logger,
	}
}

// NarrativeFeed builds feed items for the most recently updated
// narratives. An empty source whitelist yields an empty feed, not an
// error.
func (s *feedService) NarrativeFeed(ctx context.Context, opts driving.FeedOptions) ([]*domain.NarrativeFeedItem, error) {
	if len(opts.ActiveSources) == 0 {
		return []*domain.NarrativeFeedItem{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	narratives, err := s.narrativeStore.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch narratives: %w", err)
	}

	items := make([]*domain.NarrativeFeedItem, 0, len(narratives))
	for _, narrative := range narratives {
		items = append(items, s.buildItem(ctx, narrative, opts))
	}
	return items, nil
}

// NarrativeDetail builds the full feed item for one narrative.
func (s *feedService) NarrativeDetail(ctx context.Context, narrativeID string, opts driving.FeedOptions) (*domain.NarrativeFeedItem, error) {
	narrative, err := s.narrativeStore.Get(ctx, narrativeID)
	if err != nil {
		return nil, err
	}
	return s.buildItem(ctx, narrative, opts), nil
}

// buildItem computes every derived field for one narrative. Broken
// cross-references and failed enrichment lookups degrade to defaults
// instead of failing the item.
func (s *feedService) buildItem(ctx context.Context, narrative *domain.Narrative, opts driving.FeedOptions) *domain.NarrativeFeedItem {
	now := time.Now()
	docs := s.linkedDocuments(ctx, narrative, opts.ActiveSources)

	currentCount := countInWindow(docs, now.Add(-changeWindow), now)
	previousCount := countInWindow(docs, now.Add(-2*changeWindow), now.Add(-changeWindow))

	sources := rankSources(docs)
	vel := s.latestVelocity(ctx, narrative.ID)

	status := domain.NarrativeStatusStale
	if now.Sub(narrative.UpdatedAt) <= 24*time.Hour {
		status = domain.NarrativeStatusActive
	}

	followed := false
	if opts.UserID != "" {
		ok, err := s.narrativeStore.IsFollowed(ctx, narrative.ID, opts.UserID)
		if err != nil {
			s.logger.Warn("failed to resolve follow state",
				"narrative_id", narrative.ID,
				"error", err,
			)
		} else {
			followed = ok
		}
	}

	return &domain.NarrativeFeedItem{
		ID:         narrative.ID,
		Title:      narrative.Title,
		Sentiment:  narrative.Sentiment,
		Velocity:   vel,
		Status:     status,
		UpdatedAt:  narrative.UpdatedAt,
		IsFollowed: followed,
		Assets:     s.tickerAssets(ctx, docs),
		Insights: domain.Insights{
			Reason:    reasonFrom(docs),
			Headlines: headlinesFrom(docs),
			Sources:   sources,
			Bullets:   bulletsFrom(narrative, currentCount, len(sources)),
			Change: domain.Change{
				Current:    currentCount,
				Previous:   previousCount,
				Multiplier: multiplier(currentCount, previousCount),
			},
			Impact:     impactFrom(len(sources), currentCount, vel),
			Confidence: confidenceFrom(len(sources), currentCount),
			Scenarios:  scenariosFor(narrative.Sentiment),
			Next:       nextOutlook(narrative.Sentiment),
		},
	}
}

// linkedDocuments resolves the narrative's links restricted to active
// sources, newest first. Dangling document IDs are dropped silently.
func (s *feedService) linkedDocuments(ctx context.Context, narrative *domain.Narrative, activeSources []string) []*domain.Document {
	docs, err := s.documentStore.GetBatch(ctx, narrative.DocumentIDs)
	if err != nil {
		s.logger.Warn("failed to load linked documents",
			"narrative_id", narrative.ID,
			"error", err,
		)
		return nil
	}

	allowed := make(map[string]struct{}, len(activeSources))
	for _, src := range activeSources {
		allowed[src] = struct{}{}
	}

	var filtered []*domain.Document
	for _, doc := range docs {
		if _, ok := allowed[doc.Source]; ok {
			filtered = append(filtered, doc)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].PublishedAt.After(filtered[j].PublishedAt)
	})
	return filtered
}

func (s *feedService) latestVelocity(ctx context.Context, narrativeID string) float64 {
	latest, err := s.metricStore.Latest(ctx, narrativeID)
	if err != nil {
		s.logger.Warn("failed to load metric snapshots",
			"narrative_id", narrativeID,
			"error", err,
		)
		return 0
	}
	if snapshot, ok := latest[domain.MetricPeriod24h]; ok {
		return snapshot.Velocity
	}
	return 0
}

func (s *feedService) tickerAssets(ctx context.Context, docs []*domain.Document) []string {
	if len(docs) == 0 {
		return nil
	}
	docIDs := make([]string, len(docs))
	for i, doc := range docs {
		docIDs[i] = doc.ID
	}

	entities, err := s.entityStore.FindByDocuments(ctx, docIDs, []domain.EntityType{domain.EntityTypeTicker})
	if err != nil {
		s.logger.Warn("failed to load ticker entities", "error", err)
		return nil
	}

	seen := make(map[string]struct{}, len(entities))
	var assets []string
	for _, e := range entities {
		if _, ok := seen[e.Value]; ok {
			continue
		}
		seen[e.Value] = struct{}{}
		assets = append(assets, e.Value)
	}
	sort.Strings(assets)
	return assets
}

// multiplier compares the two 24h windows. A narrative appearing from
// nothing reads as 2x, a dead one as 0.
func multiplier(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 2
		}
		return 0
	}
	return math.Round(float64(current)/float64(previous)*10) / 10
}

// reasonFrom builds the explanation line from the one or two most
// recent document titles.
func reasonFrom(docs []*domain.Document) string {
	switch {
	case len(docs) >= 2:
		return fmt.Sprintf("Latest coverage: %q and %q.", docs[0].Title, docs[1].Title)
	case len(docs) == 1:
		return fmt.Sprintf("Latest coverage: %q.", docs[0].Title)
	default:
		return "Multiple sources are tracking this story."
	}
}

// headlinesFrom picks up to five most recent headlines that have both a
// title and a URL.
func headlinesFrom(docs []*domain.Document) []domain.Headline {
	var headlines []domain.Headline
	for _, doc := range docs {
		if doc.Title == "" || doc.URL == "" {
			continue
		}
		headlines = append(headlines, domain.Headline{Title: doc.Title, URL: doc.URL})
		if len(headlines) == maxHeadlines {
			break
		}
	}
	return headlines
}

// rankSources returns up to five sources ordered by document count
// descending, ties alphabetical.
func rankSources(docs []*domain.Document) []string {
	counts := make(map[string]int)
	for _, doc := range docs {
		counts[doc.Source]++
	}

	sources := make([]string, 0, len(counts))
	for src := range counts {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool {
		if counts[sources[i]] != counts[sources[j]] {
			return counts[sources[i]] > counts[sources[j]]
		}
		return sources[i] < sources[j]
	})

	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}
	return sources
}

func bulletsFrom(narrative *domain.Narrative, currentCount, sourceCount int) []string {
	return []string{
		narrative.Summary,
		fmt.Sprintf("%d mentions across %d sources in the last 24 hours", currentCount, sourceCount),
		fmt.Sprintf("Overall tone reads %s", narrative.Sentiment),
	}
}

// impactFrom renders the impact triplet: source breadth, 24h activity
// and a volatility label thresholded from velocity.
func impactFrom(sourceCount, currentCount int, vel float64) []string {
	return []string{
		fmt.Sprintf("Coverage across %d sources", sourceCount),
		fmt.Sprintf("%d articles in the last 24 hours", currentCount),
		fmt.Sprintf("Mention velocity is %s", volatilityLabel(vel)),
	}
}

func volatilityLabel(vel float64) string {
	switch {
	case vel < 10:
		return "stable"
	case vel < 50:
		return "rising"
	case vel < 150:
		return "accelerating"
	default:
		return "spiking"
	}
}

// confidenceFrom buckets min(5, round((sources+current)/4)) into
// low/medium/high with two driver phrases.
func confidenceFrom(sourceCount, currentCount int) domain.Confidence {
	score := math.Min(5, math.Round(float64(sourceCount+currentCount)/4))

	level := domain.ConfidenceLow
	switch {
	case score >= 4:
		level = domain.ConfidenceHigh
	case score >= 2:
		level = domain.ConfidenceMedium
	}

	return domain.Confidence{
		Level: level,
		Drivers: []string{
			fmt.Sprintf("%d independent sources", sourceCount),
			fmt.Sprintf("%d mentions in the last 24 hours", currentCount),
		},
	}
}

func scenariosFor(s domain.Sentiment) domain.Scenarios {
	switch s {
	case domain.SentimentBullish:
		return domain.Scenarios{
			Continues: "If the story continues, buying interest in the linked assets likely builds.",
			Fades:     "If the story fades, the recent gains may retrace as attention moves on.",
		}
	case domain.SentimentBearish:
		return domain.Scenarios{
			Continues: "If the story continues, selling pressure on the linked assets likely persists.",
			Fades:     "If the story fades, the affected assets may stabilize and recover.",
		}
	default:
		return domain.Scenarios{
			Continues: "If the story continues, expect sustained attention without a clear directional bias.",
			Fades:     "If the story fades, activity likely returns to baseline.",
		}
	}
}

func nextOutlook(s domain.Sentiment) string {
	switch s {
	case domain.SentimentBullish:
		return "Watch for follow-through coverage confirming the positive momentum."
	case domain.SentimentBearish:
		return "Watch for further negative headlines or signs the pressure is easing."
	default:
		return "Watch for a catalyst that pushes this story in either direction."
	}
}

// SocialFeed merges re-classified documents, recent narratives and one
// synthetic status post into a single recency-ranked feed.
func (s *feedService) SocialFeed(ctx context.Context, opts driving.FeedOptions) ([]*domain.FeedPost, error) {
	if len(opts.ActiveSources) == 0 {
		return []*domain.FeedPost{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	now := time.Now()

	docs, err := s.documentStore.Find(ctx, driven.DocumentFilter{
		PublishedAfter: now.Add(-changeWindow),
		Sources:        opts.ActiveSources,
		Limit:          limit,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	narratives, err := s.narrativeStore.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch narratives: %w", err)
	}

	posts := make([]*domain.FeedPost, 0, len(docs)+len(narratives)+1)
	for _, doc := range docs {
		posts = append(posts, &domain.FeedPost{
			ID:        doc.ID,
			Type:      domain.FeedPostNewsInsight,
			CreatedAt: doc.PublishedAt,
			Source:    doc.Source,
			Title:     doc.Title,
			URL:       doc.URL,
			Sentiment: sentiment.Classify(doc.Title + " " + doc.Body),
		})
	}
	for _, narrative := range narratives {
		posts = append(posts, &domain.FeedPost{
			ID:             narrative.ID,
			Type:           domain.FeedPostNarrativeEvent,
			CreatedAt:      narrative.UpdatedAt,
			NarrativeID:    narrative.ID,
			NarrativeTitle: narrative.Title,
			Summary:        narrative.Summary,
			ArticleCount:   len(narrative.DocumentIDs),
		})
	}
	posts = append(posts, &domain.FeedPost{
		ID:        "system-status",
		Type:      domain.FeedPostSystemStatus,
		CreatedAt: now,
		Message:   fmt.Sprintf("Narrative engine is live, tracking %d active narratives.", len(narratives)),
	})

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}
