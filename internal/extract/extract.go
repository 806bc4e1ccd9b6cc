// Package extract turns raw document text into typed entities.
// All functions are pure and deterministic: no I/O, no shared mutable
// state, safe to call concurrently across documents.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/marketpulse-labs/narrative-core/internal/core/domain"
)

// DefaultKeywordLimit caps how many keywords All extracts per document.
const DefaultKeywordLimit = 10

var (
	// tickerPattern matches cashtags: $ followed by 1-5 uppercase letters.
	// The trailing boundary rejects longer runs like $TOOLONG outright
	// instead of truncating them.
	tickerPattern = regexp.MustCompile(`\$[A-Z]{1,5}\b`)

	// capitalizedWord matches a single capitalized word.
	capitalizedWord = regexp.MustCompile(`^[A-Z][a-z]+$`)

	// punctuation strips everything that is not a letter, digit or
	// whitespace before keyword tokenization.
	punctuation = regexp.MustCompile(`[^a-z0-9\s]+`)
)

// Tickers extracts cashtag tickers from text, deduplicated and sorted
// lexicographically. Empty input yields an empty slice.
func Tickers(text string) []string {
	matches := tickerPattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	var tickers []string
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		tickers = append(tickers, m)
	}
	sort.Strings(tickers)
	return tickers
}

// NamedEntities extracts people and organizations from runs of 2-4
// consecutive capitalized words. A run containing an organization
// indicator, or longer than 2 words, is an org; an exact 2-word run is a
// person. Single-word and overlong runs are discarded. Both result sets
// are deduplicated and sorted.
func NamedEntities(text string) (people, orgs []string) {
	personSet := make(map[string]struct{})
	orgSet := make(map[string]struct{})

	for _, run := range capitalizedRuns(text) {
		switch {
		case len(run) < 2 || len(run) > 4:
			continue
		case len(run) > 2 || hasOrgIndicator(run):
			orgSet[strings.Join(run, " ")] = struct{}{}
		default:
			personSet[strings.Join(run, " ")] = struct{}{}
		}
	}

	return sortedKeys(personSet), sortedKeys(orgSet)
}

// capitalizedRuns splits text into whitespace tokens and returns every
// maximal run of consecutive capitalized words.
func capitalizedRuns(text string) [][]string {
	var runs [][]string
	var current []string
	for _, token := range strings.Fields(text) {
		word := strings.Trim(token, ".,;:!?'\"()[]")
		if capitalizedWord.MatchString(word) {
			current = append(current, word)
			continue
		}
		if len(current) > 0 {
			runs = append(runs, current)
			current = nil
		}
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}

func hasOrgIndicator(run []string) bool {
	for _, word := range run {
		for _, ind := range orgIndicators {
			if strings.Contains(word, ind) {
				return true
			}
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Keywords extracts the top-limit keywords from text by term frequency.
// Tokens shorter than 4 characters, stop words, generic finance terms and
// all-digit tokens are discarded. Ties are broken by first appearance.
// A limit <= 0 falls back to DefaultKeywordLimit.
func Keywords(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}

	cleaned := punctuation.ReplaceAllString(strings.ToLower(text), " ")

	counts := make(map[string]int)
	var order []string // first-seen order for stable tie-breaking
	for _, token := range strings.Fields(cleaned) {
		if !keepKeyword(token) {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

func keepKeyword(token string) bool {
	if len(token) < 4 {
		return false
	}
	if _, ok := stopWords[token]; ok {
		return false
	}
	if _, ok := genericTerms[token]; ok {
		return false
	}
	return !allDigits(token)
}

func allDigits(token string) bool {
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// All extracts every entity type from a document. The title is weighted
// double for keyword frequency; tickers, people and orgs are extracted
// from title and body once. Entities are returned in the order tickers,
// people, orgs, keywords, without document attribution (the caller owns
// that).
func All(title, body string, maxKeywords int) []domain.Entity {
	combined := title + " " + body
	weighted := title + " " + title + " " + body

	var entities []domain.Entity
	for _, t := range Tickers(combined) {
		entities = append(entities, domain.Entity{Type: domain.EntityTypeTicker, Value: t})
	}

	people, orgs := NamedEntities(combined)
	for _, p := range people {
		entities = append(entities, domain.Entity{Type: domain.EntityTypePerson, Value: p})
	}
	for _, o := range orgs {
		entities = append(entities, domain.Entity{Type: domain.EntityTypeOrg, Value: o})
	}

	for _, k := range Keywords(weighted, maxKeywords) {
		entities = append(entities, domain.Entity{Type: domain.EntityTypeKeyword, Value: k})
	}
	return entities
}
