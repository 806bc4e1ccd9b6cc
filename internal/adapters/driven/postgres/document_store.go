package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
	"github.com/marketpulse-labs/narrative-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL.
// Documents are owned by the ingestion pipeline; this adapter only reads.
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = "id, source, title, body, url, published_at"

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Find retrieves documents matching the filter, newest first
func (s *DocumentStore) Find(ctx context.Context, filter driven.DocumentFilter) ([]*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE ($1::timestamptz IS NULL OR published_at >= $1)
		AND (cardinality($2::text[]) = 0 OR source = ANY($2))
		ORDER BY published_at DESC`

	var after sql.NullTime
	if !filter.PublishedAfter.IsZero() {
		after = sql.NullTime{Time: filter.PublishedAfter, Valid: true}
	}

	args := []any{after, pq.Array(filter.Sources)}
	if filter.Limit > 0 {
		query += ` LIMIT $3`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// GetBatch retrieves documents by ID in one round trip.
// Missing IDs are omitted from the result.
func (s *DocumentStore) GetBatch(ctx context.Context, ids []string) ([]*domain.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ANY($1) ORDER BY published_at DESC`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get documents batch: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	err := row.Scan(&doc.ID, &doc.Source, &doc.Title, &doc.Body, &doc.URL, &doc.PublishedAt)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]*domain.Document, error) {
	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
