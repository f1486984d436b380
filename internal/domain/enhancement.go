package domain

import "fmt"

// Intent classifies what the user is trying to do with a query.
type Intent string

const (
	IntentSearch     Intent = "search"
	IntentBrowse     Intent = "browse"
	IntentSpecific   Intent = "specific"
	IntentComparison Intent = "comparison"
)

// Valid reports whether the intent is one of the known classes.
func (i Intent) Valid() bool {
	switch i {
	case IntentSearch, IntentBrowse, IntentSpecific, IntentComparison:
		return true
	}
	return false
}

// Enhancement is the reasoner's structured reading of a free-text query.
// Query must be non-empty; callers that get a failure substitute
// PassthroughEnhancement instead of carrying a nil.
type Enhancement struct {
	Query      string            `json:"enhancedQuery"`
	Categories []string          `json:"categories,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Intent     Intent            `json:"intent"`
}

// PassthroughEnhancement is the degraded stand-in when enhancement fails:
// the original query, nothing derived, intent search.
func PassthroughEnhancement(query string) Enhancement {
	return Enhancement{Query: query, Intent: IntentSearch}
}

// RankingCandidate is the slimmed product view submitted for re-ranking.
type RankingCandidate struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

// Ranking is one reasoner relevance judgement, scored 0-100.
type Ranking struct {
	ProductID string `json:"productId"`
	Score     int    `json:"relevanceScore"`
}

// ValidateRanking checks that rankings cover exactly the submitted ids:
// same count, every id known, no id twice. A ranking that fails any of
// these is unusable and must be discarded whole.
func ValidateRanking(rankings []Ranking, submitted []string) error {
	if len(rankings) != len(submitted) {
		return fmt.Errorf("ranking covers %d of %d products", len(rankings), len(submitted))
	}
	known := make(map[string]bool, len(submitted))
	for _, id := range submitted {
		known[id] = true
	}
	seen := make(map[string]bool, len(rankings))
	for _, r := range rankings {
		if !known[r.ProductID] {
			return fmt.Errorf("ranking names unknown product %q", r.ProductID)
		}
		if seen[r.ProductID] {
			return fmt.Errorf("ranking names product %q twice", r.ProductID)
		}
		seen[r.ProductID] = true
	}
	return nil
}
