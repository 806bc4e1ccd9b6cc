// Package sentiment assigns deterministic bullish/bearish/neutral labels
// from fixed keyword lexicons. Pure functions, safe for concurrent use.
package sentiment

import (
	"strings"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
)

// bullishKeywords and bearishKeywords are price-action and tone words.
// Matching is substring-based on lowercased text, so "surged" and
// "surges" both count for "surge".
var bullishKeywords = []string{
	"surge", "rally", "rallies", "soar", "jump", "gain", "climb",
	"beat", "upgrade", "outperform", "bullish", "breakout", "record high",
	"strong", "boost", "momentum", "recover", "rebound", "optimis",
}

var bearishKeywords = []string{
	"plunge", "crash", "tumble", "slump", "drop", "fall", "sink",
	"miss", "downgrade", "underperform", "bearish", "selloff", "record low",
	"weak", "cut", "warning", "fear", "recession", "pessimis",
}

// Classify labels text by comparing how many distinct bullish vs bearish
// keywords appear anywhere in it. A tie, including zero matches on both
// sides, is neutral.
func Classify(text string) domain.Sentiment {
	bullish, bearish := matchCounts(text)
	switch {
	case bullish > bearish:
		return domain.SentimentBullish
	case bearish > bullish:
		return domain.SentimentBearish
	default:
		return domain.SentimentNeutral
	}
}

// ClassifyNarrative labels a narrative from its title and summary.
// The title is concatenated twice so its tone carries more weight than
// the summary's.
func ClassifyNarrative(title, summary string) domain.Sentiment {
	return Classify(title + " " + title + " " + summary)
}

// Match is the diagnostic output of ClassifyDetailed
type Match struct {
	Sentiment domain.Sentiment `json:"sentiment"`
	Bullish   []string         `json:"bullish"` // Matched bullish keywords
	Bearish   []string         `json:"bearish"` // Matched bearish keywords
}

// ClassifyDetailed returns the label together with the literal matched
// keyword lists. Intended for explainability and debugging, not for
// classification decisions.
func ClassifyDetailed(text string) Match {
	lowered := strings.ToLower(text)

	m := Match{}
	for _, kw := range bullishKeywords {
		if strings.Contains(lowered, kw) {
			m.Bullish = append(m.Bullish, kw)
		}
	}
	for _, kw := range bearishKeywords {
		if strings.Contains(lowered, kw) {
			m.Bearish = append(m.Bearish, kw)
		}
	}

	switch {
	case len(m.Bullish) > len(m.Bearish):
		m.Sentiment = domain.SentimentBullish
	case len(m.Bearish) > len(m.Bullish):
		m.Sentiment = domain.SentimentBearish
	default:
		m.Sentiment = domain.SentimentNeutral
	}
	return m
}

func matchCounts(text string) (bullish, bearish int) {
	lowered := strings.ToLower(text)
	for _, kw := range bullishKeywords {
		if strings.Contains(lowered, kw) {
			bullish++
		}
	}
	for _, kw := range bearishKeywords {
		if strings.Contains(lowered, kw) {
			bearish++
		}
	}
	return bullish, bearish
}
