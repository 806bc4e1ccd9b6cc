package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driven"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driving"
	"github.com/marketpulse-labs/narrative-core/internal/extract"
)

// Ensure extractionService implements ExtractionService
var _ driving.ExtractionService = (*extractionService)(nil)

// extractionService backfills entities for documents stored without them
type extractionService struct {
	documentStore driven.DocumentStore
	entityStore   driven.EntityStore
	logger        *slog.Logger

	timeWindow  time.Duration
	maxKeywords int
}

// ExtractionConfig holds dependencies and tuning for the backfill.
type ExtractionConfig struct {
	DocumentStore driven.DocumentStore
	EntityStore   driven.EntityStore
	Logger        *slog.Logger

	// TimeWindowHours is the trailing document window to scan (default: 24)
	TimeWindowHours int

	// MaxKeywords caps keyword entities per document (default: 10)
	MaxKeywords int
}

// NewExtractionService creates a new ExtractionService
func NewExtractionService(cfg ExtractionConfig) driving.ExtractionService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	windowHours := cfg.TimeWindowHours
	if windowHours <= 0 {
		windowHours = 24
	}
	maxKeywords := cfg.MaxKeywords
	if maxKeywords <= 0 {
		maxKeywords = extract.DefaultKeywordLimit
	}

	return &extractionService{
		documentStore: cfg.DocumentStore,
		entityStore:   cfg.EntityStore,
		logger:        logger,
		timeWindow:    time.Duration(windowHours) * time.Hour,
		maxKeywords:   maxKeywords,
	}
}

// Backfill extracts entities for every document in the window that has
// none stored. Extraction itself is pure and total; only the save can
// fail, and a failed save skips just that document.
func (s *extractionService) Backfill(ctx context.Context) (*domain.BackfillResult, error) {
	since := time.Now().Add(-s.timeWindow)

	documents, err := s.documentStore.Find(ctx, driven.DocumentFilter{PublishedAfter: since})
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	result := &domain.BackfillResult{Scanned: len(documents)}
	if len(documents) == 0 {
		return result, nil
	}

	docIDs := make([]string, len(documents))
	byID := make(map[string]*domain.Document, len(documents))
	for i, doc := range documents {
		docIDs[i] = doc.ID
		byID[doc.ID] = doc
	}

	missing, err := s.entityStore.DocumentIDsWithoutEntities(ctx, docIDs)
	if err != nil {
		return nil, fmt.Errorf("find unextracted documents: %w", err)
	}

	for _, docID := range missing {
		doc := byID[docID]
		entities := extract.All(doc.Title, doc.Body, s.maxKeywords)
		if len(entities) == 0 {
			continue
		}

		if err := s.entityStore.Save(ctx, docID, entities); err != nil {
			s.logger.Error("failed to save entities",
				"document_id", docID,
				"error", err,
			)
			continue
		}
		result.Extracted++
	}

	s.logger.Info("entity backfill finished",
		"scanned", result.Scanned,
		"missing", len(missing),
		"extracted", result.Extracted,
	)
	return result, nil
}
