package domain

import "time"

// Sentiment is a deterministic keyword-derived sentiment label
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// Narrative is a persisted cluster of documents that share significant
// entities, with a derived title, summary and sentiment. Narratives are
// created by the clusterer and never deleted by the core.
type Narrative struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Sentiment Sentiment `json:"sentiment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// DocumentIDs are the linked documents (many-to-many, no weight).
	// A narrative always has at least the configured minimum number of
	// documents at creation time.
	DocumentIDs []string `json:"document_ids"`
}

// HasSameDocuments reports whether the narrative links exactly the given
// document set. Used by the idempotent upsert check: a re-detected cluster
// with an identical document set is skipped, anything else is created anew.
func (n *Narrative) HasSameDocuments(docIDs []string) bool {
	if len(n.DocumentIDs) != len(docIDs) {
		return false
	}
	linked := make(map[string]struct{}, len(n.DocumentIDs))
	for _, id := range n.DocumentIDs {
		linked[id] = struct{}{}
	}
	for _, id := range docIDs {
		if _, ok := linked[id]; !ok {
			return false
		}
	}
	return true
}

// Cluster is an in-memory candidate narrative: a group of documents that
// share at least the configured number of entities, before the minimum
// article filter and before persistence.
type Cluster struct {
	// SharedEntities are the entity keys (type:value) shared by at least
	// two documents in the cluster, ordered by descending mention count.
	SharedEntities []string `json:"shared_entities"`

	// Documents in the cluster, newest first.
	Documents []*Document `json:"documents"`
}

// DetectionResult is the outcome of one clusterer run
type DetectionResult struct {
	// Detected is the number of candidate narratives found in the window
	Detected int `json:"detected"`

	// Created is the number of new narrative records persisted.
	// Created < Detected when clusters were already stored or failed to save.
	Created int `json:"created"`
}

// BackfillResult is the outcome of one entity extraction backfill run
type BackfillResult struct {
	// Scanned is the number of documents examined in the window
	Scanned int `json:"scanned"`

	// Extracted is the number of documents that had entities saved
	Extracted int `json:"extracted"`
}
