package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Document is a unit of ingested text (news article or social post).
// Documents are written by the external ingestion pipeline and are
// immutable once stored.
type Document struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"` // Provider slug, e.g. "reuters", "x"
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}
