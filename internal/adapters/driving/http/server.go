package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Default source whitelist used when the request carries no
	// ?sources= filter
	defaultSources []string

	// Services
	clusterService    driving.ClusterService
	extractionService driving.ExtractionService
	metricsService    driving.MetricsService
	feedService       driving.FeedService

	// Infrastructure
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	DefaultSources []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		DefaultSources: []string{"newswire", "social"},
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	clusterService driving.ClusterService,
	extractionService driving.ExtractionService,
	metricsService driving.MetricsService,
	feedService driving.FeedService,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:            http.NewServeMux(),
		version:           cfg.Version,
		defaultSources:    cfg.DefaultSources,
		clusterService:    clusterService,
		extractionService: extractionService,
		metricsService:    metricsService,
		feedService:       feedService,
		db:                db,
		redisClient:       redisClient,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Feed endpoints
	s.router.HandleFunc("GET /api/v1/feed/narratives", s.handleNarrativeFeed)
	s.router.HandleFunc("GET /api/v1/feed/narratives/{id}", s.handleNarrativeDetail)
	s.router.HandleFunc("GET /api/v1/feed/social", s.handleSocialFeed)

	// Metrics endpoints
	s.router.HandleFunc("GET /api/v1/metrics/trending", s.handleTrending)
	s.router.HandleFunc("GET /api/v1/metrics/most-mentioned", s.handleMostMentioned)

	// Batch job triggers
	s.router.HandleFunc("POST /api/v1/jobs/cluster", s.handleClusterJob)
	s.router.HandleFunc("POST /api/v1/jobs/metrics", s.handleMetricsJob)
	s.router.HandleFunc("POST /api/v1/jobs/backfill", s.handleBackfillJob)
}

// Start starts the HTTP server. It blocks until the listener fails or
// the server is shut down via Stop.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
