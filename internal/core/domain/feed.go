package domain

import "time"

// NarrativeStatus marks whether a narrative has seen recent activity
type NarrativeStatus string

const (
	NarrativeStatusActive NarrativeStatus = "active"
	NarrativeStatusStale  NarrativeStatus = "stale"
)

// ConfidenceLevel buckets the confidence score of a feed item
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// NarrativeFeedItem is the read-only projection of a narrative for client
// consumption. All derived fields are computed on read; nothing is cached.
type NarrativeFeedItem struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Sentiment  Sentiment       `json:"sentiment"`
	Velocity   float64         `json:"velocity"`
	Status     NarrativeStatus `json:"status"`
	UpdatedAt  time.Time       `json:"updated_at"`
	IsFollowed bool            `json:"is_followed"`
	Assets     []string        `json:"assets"` // Ticker entities across linked documents
	Insights   Insights        `json:"insights"`
}

// Insights carries the explainability block of a narrative feed item
type Insights struct {
	Reason     string     `json:"reason"`
	Headlines  []Headline `json:"headlines"` // Up to 5, most recent first
	Sources    []string   `json:"sources"`   // Top 5 by document count
	Bullets    []string   `json:"bullets"`
	Change     Change     `json:"change"`
	Impact     []string   `json:"impact"` // Source breadth, 24h activity, volatility label
	Confidence Confidence `json:"confidence"`
	Scenarios  Scenarios  `json:"scenarios"`
	Next       string     `json:"next"`
}

// Headline is a linked document title shown in a feed item
type Headline struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Change compares mention counts of the trailing 24h window against the
// 24h window before it
type Change struct {
	Current    int     `json:"current"`
	Previous   int     `json:"previous"`
	Multiplier float64 `json:"multiplier"`
}

// Confidence is a bucketed score with human-readable drivers
type Confidence struct {
	Level   ConfidenceLevel `json:"level"`
	Drivers []string        `json:"drivers"`
}

// Scenarios gives the two templated outlooks for a narrative
type Scenarios struct {
	Continues string `json:"continues"`
	Fades     string `json:"fades"`
}

// FeedPostType discriminates the social feed union
type FeedPostType string

const (
	FeedPostNewsInsight    FeedPostType = "news_insight"
	FeedPostNarrativeEvent FeedPostType = "narrative_event"
	FeedPostSystemStatus   FeedPostType = "system_status"
)

// FeedPost is one element of the merged social feed. Exactly one of the
// type-specific blocks is populated, matching Type.
type FeedPost struct {
	ID        string       `json:"id"`
	Type      FeedPostType `json:"type"`
	CreatedAt time.Time    `json:"created_at"`

	// news_insight fields
	Source    string    `json:"source,omitempty"`
	Title     string    `json:"title,omitempty"`
	URL       string    `json:"url,omitempty"`
	Sentiment Sentiment `json:"sentiment,omitempty"`

	// narrative_event fields
	NarrativeID    string `json:"narrative_id,omitempty"`
	NarrativeTitle string `json:"narrative_title,omitempty"`
	Summary        string `json:"summary,omitempty"`
	ArticleCount   int    `json:"article_count,omitempty"`

	// system_status fields
	Message string `json:"message,omitempty"`
}
