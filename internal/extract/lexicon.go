package extract

// Static lexicons for keyword filtering and named entity classification.
// Built once at process start; treated as immutable.

// stopWords are common English tokens that carry no signal on their own.
var stopWords = toSet([]string{
	"that", "this", "with", "from", "have", "been", "were", "will",
	"would", "could", "should", "about", "after", "before", "their",
	"there", "these", "those", "which", "while", "where", "when",
	"what", "than", "then", "them", "they", "your", "also", "into",
	"over", "under", "more", "most", "some", "such", "only", "other",
	"just", "like", "very", "said", "says", "being", "because",
	"between", "during", "through", "against", "amid", "among",
})

// genericTerms are finance words so common in market coverage that they
// never distinguish one story from another.
var genericTerms = toSet([]string{
	"stock", "stocks", "share", "shares", "market", "markets",
	"trading", "trader", "traders", "price", "prices", "investor",
	"investors", "investment", "company", "companies", "business",
	"report", "reports", "quarter", "quarterly", "earnings",
	"revenue", "billion", "million", "percent", "year", "week",
	"today", "news", "analyst", "analysts", "wall", "street",
})

// orgIndicators are substrings that mark a capitalized run as an
// organization rather than a person.
var orgIndicators = []string{
	"Corp", "Inc", "Ltd", "LLC", "Group", "Holdings", "Bank",
	"Federal", "Reserve", "Capital", "Partners", "Fund", "Exchange",
	"Commission", "Department", "Ministry", "Agency", "Association",
	"Technologies", "Systems", "Industries", "Motors", "Airlines",
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
