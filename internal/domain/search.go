package domain

// PriceRange bounds the price filter, inclusive on both ends. A nil
// bound leaves that side unrestricted.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Filters are the structured restrictions a caller may add to a search.
// The zero value means no filtering.
type Filters struct {
	Category   string      `json:"category,omitempty"`
	InStock    *bool       `json:"inStock,omitempty"`
	PriceRange *PriceRange `json:"priceRange,omitempty"`
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.Category == "" && f.InStock == nil && f.PriceRange == nil
}

// SearchRequest is the full input to one search. Two requests with equal
// field values are the same cache subject.
type SearchRequest struct {
	Query   string
	Filters Filters
	UseAI   bool
	NoCache bool
}

// SearchPage is what the lexical engine returns for one query: ranked
// hits, the total match count, and the engine-reported latency in ms.
type SearchPage struct {
	Products []RankedProduct `json:"products"`
	Total    int             `json:"total"`
	Took     int64           `json:"took"`
}

// EnhancementRecord documents a successful query enhancement for the
// caller: what was asked, what was searched, and what was derived.
type EnhancementRecord struct {
	Original   string   `json:"original"`
	Enhanced   string   `json:"enhanced"`
	Categories []string `json:"categories,omitempty"`
	Intent     Intent   `json:"intent"`
}

// EnhancedSearchResult is the final response of the search pipeline, and
// the value cached under the search namespace. Enhanced reports whether
// AI assist was requested; QueryEnhancement is present only when the
// enhancement step actually succeeded.
type EnhancedSearchResult struct {
	Products         []RankedProduct    `json:"products"`
	Total            int                `json:"total"`
	Took             int64              `json:"took"`
	Enhanced         bool               `json:"enhanced"`
	QueryEnhancement *EnhancementRecord `json:"queryEnhancement,omitempty"`
}
