package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"narrative not found"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks database and Redis connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backing store is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Feed endpoints

// handleNarrativeFeed godoc
// @Summary      Narrative feed
// @Description  Returns ranked narrative feed items with full insight payloads
// @Tags         Feed
// @Produce      json
// @Param        sources  query     string  false  "Comma-separated source whitelist"
// @Param        user_id  query     string  false  "Resolve is_followed for this user"
// @Param        limit    query     int     false  "Maximum items to return"
// @Success      200      {array}   domain.NarrativeFeedItem
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /feed/narratives [get]
func (s *Server) handleNarrativeFeed(w http.ResponseWriter, r *http.Request) {
	items, err := s.feedService.NarrativeFeed(r.Context(), s.feedOptions(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build narrative feed")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// handleNarrativeDetail godoc
// @Summary      Narrative detail
// @Description  Returns the full feed item for one narrative
// @Tags         Feed
// @Produce      json
// @Param        id       path      string  true   "Narrative ID"
// @Param        sources  query     string  false  "Comma-separated source whitelist"
// @Param        user_id  query     string  false  "Resolve is_followed for this user"
// @Success      200      {object}  domain.NarrativeFeedItem
// @Failure      400      {object}  ErrorResponse  "Missing narrative ID"
// @Failure      404      {object}  ErrorResponse  "Narrative not found"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /feed/narratives/{id} [get]
func (s *Server) handleNarrativeDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing narrative id")
		return
	}

	item, err := s.feedService.NarrativeDetail(r.Context(), id, s.feedOptions(r))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "narrative not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to build narrative detail")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// handleSocialFeed godoc
// @Summary      Social feed
// @Description  Returns the merged recency-ranked feed of documents, narratives and status posts
// @Tags         Feed
// @Produce      json
// @Param        sources  query     string  false  "Comma-separated source whitelist"
// @Param        limit    query     int     false  "Maximum posts to return"
// @Success      200      {array}   domain.FeedPost
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /feed/social [get]
func (s *Server) handleSocialFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := s.feedService.SocialFeed(r.Context(), s.feedOptions(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build social feed")
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// Metrics endpoints

// handleTrending godoc
// @Summary      Trending narratives
// @Description  Returns the freshest metric snapshot per narrative, ranked by velocity
// @Tags         Metrics
// @Produce      json
// @Param        limit  query     int  false  "Maximum snapshots to return"
// @Success      200    {array}   domain.NarrativeMetric
// @Failure      500    {object}  ErrorResponse  "Internal server error"
// @Router       /metrics/trending [get]
func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.metricsService.Trending(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rank trending narratives")
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

// handleMostMentioned godoc
// @Summary      Most mentioned narratives
// @Description  Returns the freshest metric snapshot per narrative, ranked by mention count
// @Tags         Metrics
// @Produce      json
// @Param        limit  query     int  false  "Maximum snapshots to return"
// @Success      200    {array}   domain.NarrativeMetric
// @Failure      500    {object}  ErrorResponse  "Internal server error"
// @Router       /metrics/most-mentioned [get]
func (s *Server) handleMostMentioned(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.metricsService.MostMentioned(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rank most mentioned narratives")
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

// Batch job triggers

// handleClusterJob godoc
// @Summary      Run narrative detection
// @Description  Runs one narrative detection pass over the trailing window
// @Tags         Jobs
// @Produce      json
// @Success      200  {object}  domain.DetectionResult
// @Failure      500  {object}  ErrorResponse  "Detection pass failed"
// @Router       /jobs/cluster [post]
func (s *Server) handleClusterJob(w http.ResponseWriter, r *http.Request) {
	result, err := s.clusterService.Run(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "detection pass failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleMetricsJob godoc
// @Summary      Run metric calculation
// @Description  Computes and appends one metric snapshot per active narrative and period
// @Tags         Jobs
// @Produce      json
// @Success      200  {object}  domain.CalculationResult
// @Failure      500  {object}  ErrorResponse  "Calculation pass failed"
// @Router       /jobs/metrics [post]
func (s *Server) handleMetricsJob(w http.ResponseWriter, r *http.Request) {
	result, err := s.metricsService.Calculate(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "calculation pass failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleBackfillJob godoc
// @Summary      Run entity backfill
// @Description  Extracts and saves entities for window documents that have none
// @Tags         Jobs
// @Produce      json
// @Success      200  {object}  domain.BackfillResult
// @Failure      500  {object}  ErrorResponse  "Backfill pass failed"
// @Router       /jobs/backfill [post]
func (s *Server) handleBackfillJob(w http.ResponseWriter, r *http.Request) {
	result, err := s.extractionService.Backfill(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "backfill pass failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// feedOptions builds FeedOptions from the request query, falling back
// to the configured default whitelist when ?sources= is absent.
func (s *Server) feedOptions(r *http.Request) driving.FeedOptions {
	sources := s.defaultSources
	if raw := r.URL.Query().Get("sources"); raw != "" {
		sources = nil
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				sources = append(sources, part)
			}
		}
	}

	return driving.FeedOptions{
		ActiveSources: sources,
		UserID:        r.URL.Query().Get("user_id"),
		Limit:         queryInt(r, "limit", 0),
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
