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
var _ driven.EntityStore = (*EntityStore)(nil)

// EntityStore implements driven.EntityStore using PostgreSQL
type EntityStore struct {
	db *DB
}

// NewEntityStore creates a new EntityStore
func NewEntityStore(db *DB) *EntityStore {
	return &EntityStore{db: db}
}

// FindByDocuments retrieves entities for the given documents in one read
func (s *EntityStore) FindByDocuments(ctx context.Context, documentIDs []string, types []domain.EntityType) ([]*domain.Entity, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	typeStrings := make([]string, len(types))
	for i, t := range types {
		typeStrings[i] = string(t)
	}

	query := `SELECT document_id, type, value FROM entities
		WHERE document_id = ANY($1)
		AND (cardinality($2::text[]) = 0 OR type = ANY($2))
		ORDER BY document_id, type, value`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(documentIDs), pq.Array(typeStrings))
	if err != nil {
		return nil, fmt.Errorf("find entities: %w", err)
	}
	defer rows.Close()

	var entities []*domain.Entity
	for rows.Next() {
		var e domain.Entity
		if err := rows.Scan(&e.DocumentID, &e.Type, &e.Value); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		entities = append(entities, &e)
	}
	return entities, rows.Err()
}

// Save stores the extracted entities for a document in one transaction.
// Re-extraction of the same entity is a no-op.
func (s *EntityStore) Save(ctx context.Context, documentID string, entities []domain.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO entities (document_id, type, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (document_id, type, value) DO NOTHING`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare entity insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entities {
			if _, err := stmt.ExecContext(ctx, documentID, e.Type, e.Value); err != nil {
				return fmt.Errorf("insert entity %s:%s: %w", e.Type, e.Value, err)
			}
		}
		return nil
	})
}

// DocumentIDsWithoutEntities returns the subset of documentIDs with no
// stored entities
func (s *EntityStore) DocumentIDsWithoutEntities(ctx context.Context, documentIDs []string) ([]string, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	query := `SELECT d.id FROM unnest($1::text[]) AS d(id)
		WHERE NOT EXISTS (SELECT 1 FROM entities e WHERE e.document_id = d.id)`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(documentIDs))
	if err != nil {
		return nil, fmt.Errorf("find unextracted documents: %w", err)
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan document id: %w", err)
		}
		missing = append(missing, id)
	}
	return missing, rows.Err()
}
