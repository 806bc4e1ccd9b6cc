package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driving"
)

// Mock services for testing

type mockClusterService struct {
	runFn func(ctx context.Context) (*domain.DetectionResult, error)
}

func (m *mockClusterService) Run(ctx context.Context) (*domain.DetectionResult, error) {
	if m.runFn != nil {
		return m.runFn(ctx)
	}
	return nil, errors.New("not implemented")
}

type mockExtractionService struct {
	backfillFn func(ctx context.Context) (*domain.BackfillResult, error)
}

func (m *mockExtractionService) Backfill(ctx context.Context) (*domain.BackfillResult, error) {
	if m.backfillFn != nil {
		return m.backfillFn(ctx)
	}
	return nil, errors.New("not implemented")
}

type mockMetricsService struct {
	calculateFn     func(ctx context.Context) (*domain.CalculationResult, error)
	trendingFn      func(ctx context.Context, limit int) ([]*domain.NarrativeMetric, error)
	mostMentionedFn func(ctx context.Context, limit int) ([]*domain.NarrativeMetric, error)
}

func (m *mockMetricsService) Calculate(ctx context.Context) (*domain.CalculationResult, error) {
	if m.calculateFn != nil {
		return m.calculateFn(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMetricsService) Trending(ctx context.Context, limit int) ([]*domain.NarrativeMetric, error) {
	if m.trendingFn != nil {
		return m.trendingFn(ctx, limit)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMetricsService) MostMentioned(ctx context.Context, limit int) ([]*domain.NarrativeMetric, error) {
	if m.mostMentionedFn != nil {
		return m.mostMentionedFn(ctx, limit)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMetricsService) Cleanup(ctx context.Context) (int, error) {
	return 0, nil
}

type mockFeedService struct {
	narrativeFeedFn   func(ctx context.Context, opts driving.FeedOptions) ([]*domain.NarrativeFeedItem, error)
	narrativeDetailFn func(ctx context.Context, id string, opts driving.FeedOptions) (*domain.NarrativeFeedItem, error)
	socialFeedFn      func(ctx context.Context, opts driving.FeedOptions) ([]*domain.FeedPost, error)
}

func (m *mockFeedService) NarrativeFeed(ctx context.Context, opts driving.FeedOptions) ([]*domain.NarrativeFeedItem, error) {
	if m.narrativeFeedFn != nil {
		return m.narrativeFeedFn(ctx, opts)
	}
	return nil, errors.New("not implemented")
}

func (m *mockFeedService) NarrativeDetail(ctx context.Context, id string, opts driving.FeedOptions) (*domain.NarrativeFeedItem, error) {
	if m.narrativeDetailFn != nil {
		return m.narrativeDetailFn(ctx, id, opts)
	}
	return nil, errors.New("not implemented")
}

func (m *mockFeedService) SocialFeed(ctx context.Context, opts driving.FeedOptions) ([]*domain.FeedPost, error) {
	if m.socialFeedFn != nil {
		return m.socialFeedFn(ctx, opts)
	}
	return nil, errors.New("not implemented")
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

func TestHealthHandler(t *testing.T) {
	server := &Server{version: "test"}

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	server.handleHealth(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("expected status 'ok', got %s", response["status"])
	}
}

func TestReadyHandler(t *testing.T) {
	server := &Server{
		version:     "test",
		db:          &mockPinger{},
		redisClient: &mockPinger{},
	}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestReadyHandler_DatabaseDown(t *testing.T) {
	server := &Server{
		version: "test",
		db:      &mockPinger{err: errors.New("connection refused")},
	}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()

	server.handleReady(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
}

func TestVersionHandler(t *testing.T) {
	server := &Server{version: "1.2.3"}

	req := httptest.NewRequest("GET", "/version", nil)
	rr := httptest.NewRecorder()

	server.handleVersion(rr, req)

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["version"] != "1.2.3" {
		t.Errorf("expected version '1.2.3', got %s", response["version"])
	}
}

func TestNarrativeFeedHandler(t *testing.T) {
	var gotOpts driving.FeedOptions
	server := &Server{
		defaultSources: []string{"newswire", "social"},
		feedService: &mockFeedService{
			narrativeFeedFn: func(ctx context.Context, opts driving.FeedOptions) ([]*domain.NarrativeFeedItem, error) {
				gotOpts = opts
				return []*domain.NarrativeFeedItem{
					{ID: "narr-1", Title: "Nvidia Corp News", Sentiment: domain.SentimentBullish},
				}, nil
			},
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/feed/narratives?user_id=user-1&limit=5", nil)
	rr := httptest.NewRecorder()

	server.handleNarrativeFeed(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	// No ?sources= means the configured default whitelist applies.
	if !reflect.DeepEqual(gotOpts.ActiveSources, []string{"newswire", "social"}) {
		t.Errorf("expected default sources, got %v", gotOpts.ActiveSources)
	}
	if gotOpts.UserID != "user-1" {
		t.Errorf("expected user_id 'user-1', got %s", gotOpts.UserID)
	}
	if gotOpts.Limit != 5 {
		t.Errorf("expected limit 5, got %d", gotOpts.Limit)
	}

	var items []*domain.NarrativeFeedItem
	if err := json.NewDecoder(rr.Body).Decode(&items); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(items) != 1 || items[0].ID != "narr-1" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestNarrativeFeedHandler_SourcesQuery(t *testing.T) {
	var gotOpts driving.FeedOptions
	server := &Server{
		defaultSources: []string{"newswire"},
		feedService: &mockFeedService{
			narrativeFeedFn: func(ctx context.Context, opts driving.FeedOptions) ([]*domain.NarrativeFeedItem, error) {
				gotOpts = opts
				return nil, nil
			},
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/feed/narratives?sources=social,%20blogs", nil)
	rr := httptest.NewRecorder()

	server.handleNarrativeFeed(rr, req)

	if !reflect.DeepEqual(gotOpts.ActiveSources, []string{"social", "blogs"}) {
		t.Errorf("expected query sources to override defaults, got %v", gotOpts.ActiveSources)
	}
}

func TestNarrativeDetailHandler(t *testing.T) {
	server := &Server{
		feedService: &mockFeedService{
			narrativeDetailFn: func(ctx context.Context, id string, opts driving.FeedOptions) (*domain.NarrativeFeedItem, error) {
				if id != "narr-1" {
					return nil, domain.ErrNotFound
				}
				return &domain.NarrativeFeedItem{ID: "narr-1"}, nil
			},
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/feed/narratives/narr-1", nil)
	req.SetPathValue("id", "narr-1")
	rr := httptest.NewRecorder()

	server.handleNarrativeDetail(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestNarrativeDetailHandler_NotFound(t *testing.T) {
	server := &Server{
		feedService: &mockFeedService{
			narrativeDetailFn: func(ctx context.Context, id string, opts driving.FeedOptions) (*domain.NarrativeFeedItem, error) {
				return nil, domain.ErrNotFound
			},
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/feed/narratives/missing", nil)
	req.SetPathValue("id", "missing")
	rr := httptest.NewRecorder()

	server.handleNarrativeDetail(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestSocialFeedHandler(t *testing.T) {
	server := &Server{
		defaultSources: []string{"newswire"},
		feedService: &mockFeedService{
			socialFeedFn: func(ctx context.Context, opts driving.FeedOptions) ([]*domain.FeedPost, error) {
				return []*domain.FeedPost{
					{ID: "post-1", Type: domain.FeedPostNewsInsight},
				}, nil
			},
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/feed/social", nil)
	rr := httptest.NewRecorder()

	server.handleSocialFeed(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var posts []*domain.FeedPost
	if err := json.NewDecoder(rr.Body).Decode(&posts); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(posts) != 1 || posts[0].Type != domain.FeedPostNewsInsight {
		t.Errorf("unexpected posts: %+v", posts)
	}
}

func TestTrendingHandler(t *testing.T) {
	var gotLimit int
	server := &Server{
		metricsService: &mockMetricsService{
			trendingFn: func(ctx context.Context, limit int) ([]*domain.NarrativeMetric, error) {
				gotLimit = limit
				return []*domain.NarrativeMetric{
					{NarrativeID: "narr-1", Period: domain.MetricPeriod1h, MentionCount: 12, Velocity: 140},
				}, nil
			},
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/metrics/trending?limit=3", nil)
	rr := httptest.NewRecorder()

	server.handleTrending(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if gotLimit != 3 {
		t.Errorf("expected limit 3, got %d", gotLimit)
	}
}

func TestTrendingHandler_DefaultLimit(t *testing.T) {
	var gotLimit int
	server := &Server{
		metricsService: &mockMetricsService{
			trendingFn: func(ctx context.Context, limit int) ([]*domain.NarrativeMetric, error) {
				gotLimit = limit
				return nil, nil
			},
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/metrics/trending?limit=bogus", nil)
	rr := httptest.NewRecorder()

	server.handleTrending(rr, req)

	if gotLimit != 10 {
		t.Errorf("expected fallback limit 10, got %d", gotLimit)
	}
}

func TestMostMentionedHandler_Error(t *testing.T) {
	server := &Server{
		metricsService: &mockMetricsService{
			mostMentionedFn: func(ctx context.Context, limit int) ([]*domain.NarrativeMetric, error) {
				return nil, errors.New("store down")
			},
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/metrics/most-mentioned", nil)
	rr := httptest.NewRecorder()

	server.handleMostMentioned(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

func TestClusterJobHandler(t *testing.T) {
	server := &Server{
		clusterService: &mockClusterService{
			runFn: func(ctx context.Context) (*domain.DetectionResult, error) {
				return &domain.DetectionResult{Detected: 4, Created: 2}, nil
			},
		},
	}

	req := httptest.NewRequest("POST", "/api/v1/jobs/cluster", nil)
	rr := httptest.NewRecorder()

	server.handleClusterJob(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var result domain.DetectionResult
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Detected != 4 || result.Created != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestMetricsJobHandler(t *testing.T) {
	server := &Server{
		metricsService: &mockMetricsService{
			calculateFn: func(ctx context.Context) (*domain.CalculationResult, error) {
				return &domain.CalculationResult{Calculated: 6, Stored: 6}, nil
			},
		},
	}

	req := httptest.NewRequest("POST", "/api/v1/jobs/metrics", nil)
	rr := httptest.NewRecorder()

	server.handleMetricsJob(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestBackfillJobHandler_Error(t *testing.T) {
	server := &Server{
		extractionService: &mockExtractionService{
			backfillFn: func(ctx context.Context) (*domain.BackfillResult, error) {
				return nil, errors.New("store down")
			},
		},
	}

	req := httptest.NewRequest("POST", "/api/v1/jobs/backfill", nil)
	rr := httptest.NewRecorder()

	server.handleBackfillJob(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

func TestRouting(t *testing.T) {
	server := NewServer(
		DefaultConfig(),
		&mockClusterService{runFn: func(ctx context.Context) (*domain.DetectionResult, error) {
			return &domain.DetectionResult{}, nil
		}},
		&mockExtractionService{},
		&mockMetricsService{},
		&mockFeedService{
			narrativeDetailFn: func(ctx context.Context, id string, opts driving.FeedOptions) (*domain.NarrativeFeedItem, error) {
				return &domain.NarrativeFeedItem{ID: id}, nil
			},
		},
		&mockPinger{},
		nil,
	)

	// Path value extraction goes through the mux.
	req := httptest.NewRequest("GET", "/api/v1/feed/narratives/narr-9", nil)
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var item domain.NarrativeFeedItem
	if err := json.NewDecoder(rr.Body).Decode(&item); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if item.ID != "narr-9" {
		t.Errorf("expected path id to reach the service, got %s", item.ID)
	}

	// Method mismatch is rejected by the mux.
	req = httptest.NewRequest("GET", "/api/v1/jobs/cluster", nil)
	rr = httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rr.Code)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"foo": "bar"})

	if rr.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
	}
}
