// Package domain holds the catalog and search pipeline value types shared
// by the storage, transport and use case layers.
package domain

// Product is one catalog record as stored in the search index.
type Product struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	Subcategory   string         `json:"subcategory,omitempty"`
	Brand         string         `json:"brand"`
	Price         float64        `json:"price"`
	Attributes    map[string]any `json:"attributes,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	InStock       bool           `json:"inStock"`
	EAN           string         `json:"ean,omitempty"`
	ArticleNumber string         `json:"articleNumber,omitempty"`
}

// RankedProduct is a product with its retrieval score and, when AI
// re-ranking ran, the relevance score the reasoner assigned.
type RankedProduct struct {
	Product
	Score      float64             `json:"score"`
	Highlights map[string][]string `json:"highlights,omitempty"`
	AIScore    *int                `json:"aiScore,omitempty"`
}
