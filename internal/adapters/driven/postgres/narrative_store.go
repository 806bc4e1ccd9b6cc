package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.NarrativeStore = (*NarrativeStore)(nil)

// NarrativeStore implements driven.NarrativeStore using PostgreSQL
type NarrativeStore struct {
	db *DB
}

// NewNarrativeStore creates a new NarrativeStore
func NewNarrativeStore(db *DB) *NarrativeStore {
	return &NarrativeStore{db: db}
}

// Get retrieves a narrative with its document links
func (s *NarrativeStore) Get(ctx context.Context, id string) (*domain.Narrative, error) {
	query := `SELECT n.id, n.title, n.summary, n.sentiment, n.created_at, n.updated_at,
			COALESCE(array_agg(nd.document_id) FILTER (WHERE nd.document_id IS NOT NULL), '{}')
		FROM narratives n
		LEFT JOIN narrative_documents nd ON nd.narrative_id = n.id
		WHERE n.id = $1
		GROUP BY n.id`

	narrative, err := scanNarrative(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get narrative: %w", err)
	}
	return narrative, nil
}

// Create persists a new narrative and its document links in one
// transaction
func (s *NarrativeStore) Create(ctx context.Context, narrative *domain.Narrative) error {
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

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO narratives (id, title, summary, sentiment, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			narrative.ID,
			narrative.Title,
			narrative.Summary,
			narrative.Sentiment,
			narrative.CreatedAt,
			narrative.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert narrative: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO narrative_documents (narrative_id, document_id) VALUES ($1, $2)`)
		if err != nil {
			return fmt.Errorf("prepare link insert: %w", err)
		}
		defer stmt.Close()

		for _, docID := range narrative.DocumentIDs {
			if _, err := stmt.ExecContext(ctx, narrative.ID, docID); err != nil {
				return fmt.Errorf("insert document link %s: %w", docID, err)
			}
		}
		return nil
	})
}

// FindLinkedTo retrieves narratives linked to at least one of the given
// documents, with full link sets
func (s *NarrativeStore) FindLinkedTo(ctx context.Context, documentIDs []string) ([]*domain.Narrative, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	query := `SELECT n.id, n.title, n.summary, n.sentiment, n.created_at, n.updated_at,
			COALESCE(array_agg(nd.document_id) FILTER (WHERE nd.document_id IS NOT NULL), '{}')
		FROM narratives n
		LEFT JOIN narrative_documents nd ON nd.narrative_id = n.id
		WHERE n.id IN (
			SELECT DISTINCT narrative_id FROM narrative_documents WHERE document_id = ANY($1)
		)
		GROUP BY n.id`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(documentIDs))
	if err != nil {
		return nil, fmt.Errorf("find linked narratives: %w", err)
	}
	defer rows.Close()

	return collectNarratives(rows)
}

// FindCreatedAfter retrieves narratives created at or after t, newest
// first
func (s *NarrativeStore) FindCreatedAfter(ctx context.Context, t time.Time) ([]*domain.Narrative, error) {
	query := `SELECT n.id, n.title, n.summary, n.sentiment, n.created_at, n.updated_at,
			COALESCE(array_agg(nd.document_id) FILTER (WHERE nd.document_id IS NOT NULL), '{}')
		FROM narratives n
		LEFT JOIN narrative_documents nd ON nd.narrative_id = n.id
		WHERE n.created_at >= $1
		GROUP BY n.id
		ORDER BY n.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, t)
	if err != nil {
		return nil, fmt.Errorf("find narratives by creation: %w", err)
	}
	defer rows.Close()

	return collectNarratives(rows)
}

// FindRecent retrieves the most recently updated narratives
func (s *NarrativeStore) FindRecent(ctx context.Context, limit int) ([]*domain.Narrative, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT n.id, n.title, n.summary, n.sentiment, n.created_at, n.updated_at,
			COALESCE(array_agg(nd.document_id) FILTER (WHERE nd.document_id IS NOT NULL), '{}')
		FROM narratives n
		LEFT JOIN narrative_documents nd ON nd.narrative_id = n.id
		GROUP BY n.id
		ORDER BY n.updated_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("find recent narratives: %w", err)
	}
	defer rows.Close()

	return collectNarratives(rows)
}

// IsFollowed reports whether the user follows the narrative.
// Follower records are owned by the community service.
func (s *NarrativeStore) IsFollowed(ctx context.Context, narrativeID, userID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM narrative_followers WHERE narrative_id = $1 AND user_id = $2
	)`

	var followed bool
	if err := s.db.QueryRowContext(ctx, query, narrativeID, userID).Scan(&followed); err != nil {
		return false, fmt.Errorf("check follower: %w", err)
	}
	return followed, nil
}

func scanNarrative(row rowScanner) (*domain.Narrative, error) {
	var n domain.Narrative
	var docIDs pq.StringArray
	err := row.Scan(&n.ID, &n.Title, &n.Summary, &n.Sentiment, &n.CreatedAt, &n.UpdatedAt, &docIDs)
	if err != nil {
		return nil, err
	}
	n.DocumentIDs = []string(docIDs)
	return &n, nil
}

func collectNarratives(rows *sql.Rows) ([]*domain.Narrative, error) {
	var narratives []*domain.Narrative
	for rows.Next() {
		n, err := scanNarrative(rows)
		if err != nil {
			return nil, fmt.Errorf("scan narrative: %w", err)
		}
		narratives = append(narratives, n)
	}
	return narratives, rows.Err()
}
