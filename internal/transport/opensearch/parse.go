package opensearch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/svbuh/product-search-with-cache/internal/domain"
)

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

type searchHit struct {
	ID        string              `json:"_id"`
	Score     float64             `json:"_score"`
	Source    domain.Product      `json:"_source"`
	Highlight map[string][]string `json:"highlight"`
}

// parseSearchResponse converts an engine response into a SearchPage,
// preserving the engine's ranking order.
func parseSearchResponse(r io.Reader) (domain.SearchPage, error) {
	var resp searchResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return domain.SearchPage{}, fmt.Errorf("decode response: %w", err)
	}

	products := make([]domain.RankedProduct, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		products = append(products, domain.RankedProduct{
			Product:    hit.Source,
			Score:      hit.Score,
			Highlights: hit.Highlight,
		})
	}

	return domain.SearchPage{
		Products: products,
		Total:    resp.Hits.Total.Value,
		Took:     resp.Took,
	}, nil
}

// parseSuggestResponse extracts distinct product names in engine order.
func parseSuggestResponse(r io.Reader) ([]string, error) {
	var resp searchResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	seen := make(map[string]struct{}, len(resp.Hits.Hits))
	names := make([]string, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		name := hit.Source.Name
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}
