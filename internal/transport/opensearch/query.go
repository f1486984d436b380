package opensearch

import (
	"github.com/svbuh/product-search-with-cache/internal/domain"
)

// suggestionLimit caps the number of distinct name suggestions.
const suggestionLimit = 10

// buildSearchBody assembles the query DSL: a disjunctive multi-field match
// over analyzed text (name weighted highest) plus two high-boost clauses on
// the exact code fields, so literal article-number or EAN lookups outrank
// fuzzy text matches. Filters are additive restrictions on top.
func buildSearchBody(query string, filters domain.Filters, maxResults int) map[string]any {
	boolQuery := map[string]any{
		"should": []any{
			map[string]any{
				"multi_match": map[string]any{
					"query":     query,
					"fields":    []string{"name^3", "description^2", "tags.text", "category.text", "brand"},
					"type":      "best_fields",
					"operator":  "or",
					"fuzziness": "AUTO",
				},
			},
			map[string]any{
				"match": map[string]any{
					"articleNumber": map[string]any{"query": query, "boost": 5},
				},
			},
			map[string]any{
				"match": map[string]any{
					"ean": map[string]any{"query": query, "boost": 5},
				},
			},
		},
		"minimum_should_match": 1,
	}

	if clauses := filterClauses(filters); len(clauses) > 0 {
		boolQuery["filter"] = clauses
	}

	return map[string]any{
		"size":  maxResults,
		"query": map[string]any{"bool": boolQuery},
		"highlight": map[string]any{
			"fields": map[string]any{
				"name":        map[string]any{},
				"description": map[string]any{},
			},
		},
	}
}

func filterClauses(filters domain.Filters) []any {
	var clauses []any
	if filters.Category != "" {
		clauses = append(clauses, map[string]any{
			"term": map[string]any{"category": filters.Category},
		})
	}
	if filters.InStock != nil {
		clauses = append(clauses, map[string]any{
			"term": map[string]any{"inStock": *filters.InStock},
		})
	}
	if pr := filters.PriceRange; pr != nil && (pr.Min != nil || pr.Max != nil) {
		bounds := map[string]any{}
		if pr.Min != nil {
			bounds["gte"] = *pr.Min
		}
		if pr.Max != nil {
			bounds["lte"] = *pr.Max
		}
		clauses = append(clauses, map[string]any{
			"range": map[string]any{"price": bounds},
		})
	}
	return clauses
}

// buildSuggestBody assembles a prefix-phrase query over product names.
func buildSuggestBody(prefix string) map[string]any {
	return map[string]any{
		"size":    suggestionLimit,
		"_source": []string{"name"},
		"query": map[string]any{
			"match_phrase_prefix": map[string]any{
				"name": map[string]any{
					"query":          prefix,
					"max_expansions": suggestionLimit,
				},
			},
		},
	}
}

// indexMapping is the products index definition: German-analyzed text for
// names and descriptions, keyword fields for the exact-match codes.
func indexMapping() map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"german_analyzer": map[string]any{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "german_stop", "german_stemmer"},
					},
				},
				"filter": map[string]any{
					"german_stop": map[string]any{
						"type":      "stop",
						"stopwords": "_german_",
					},
					"german_stemmer": map[string]any{
						"type":     "stemmer",
						"language": "german",
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":   map[string]any{"type": "keyword"},
				"name": map[string]any{
					"type":     "text",
					"analyzer": "german_analyzer",
					"fields":   map[string]any{"keyword": map[string]any{"type": "keyword"}},
				},
				"description": map[string]any{
					"type":     "text",
					"analyzer": "german_analyzer",
				},
				"category": map[string]any{
					"type":   "keyword",
					"fields": map[string]any{"text": map[string]any{"type": "text", "analyzer": "german_analyzer"}},
				},
				"subcategory": map[string]any{
					"type":   "keyword",
					"fields": map[string]any{"text": map[string]any{"type": "text", "analyzer": "german_analyzer"}},
				},
				"brand":      map[string]any{"type": "keyword"},
				"price":      map[string]any{"type": "float"},
				"attributes": map[string]any{"type": "object"},
				"tags": map[string]any{
					"type":   "keyword",
					"fields": map[string]any{"text": map[string]any{"type": "text", "analyzer": "german_analyzer"}},
				},
				"inStock":       map[string]any{"type": "boolean"},
				"ean":           map[string]any{"type": "keyword"},
				"articleNumber": map[string]any{"type": "keyword"},
			},
		},
	}
}
