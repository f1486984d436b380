package opensearch

import (
	"testing"

	"github.com/svbuh/product-search-with-cache/internal/domain"
)

func TestBuildSearchBody_NoFilters(t *testing.T) {
	body := buildSearchBody("hammer", domain.Filters{}, 50)

	if body["size"] != 50 {
		t.Errorf("expected size 50, got %v", body["size"])
	}

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	if _, ok := boolQuery["filter"]; ok {
		t.Error("empty filters must not produce a filter clause")
	}
	if boolQuery["minimum_should_match"] != 1 {
		t.Errorf("expected minimum_should_match 1, got %v", boolQuery["minimum_should_match"])
	}

	should := boolQuery["should"].([]any)
	if len(should) != 3 {
		t.Fatalf("expected 3 should clauses, got %d", len(should))
	}

	mm := should[0].(map[string]any)["multi_match"].(map[string]any)
	if mm["query"] != "hammer" {
		t.Errorf("expected query text in multi_match, got %v", mm["query"])
	}
	fields := mm["fields"].([]string)
	if fields[0] != "name^3" {
		t.Errorf("name must carry the highest boost, got %q", fields[0])
	}
	if mm["fuzziness"] != "AUTO" {
		t.Errorf("expected AUTO fuzziness, got %v", mm["fuzziness"])
	}

	article := should[1].(map[string]any)["match"].(map[string]any)["articleNumber"].(map[string]any)
	if article["boost"] != 5 {
		t.Errorf("articleNumber clause must boost 5, got %v", article["boost"])
	}
	ean := should[2].(map[string]any)["match"].(map[string]any)["ean"].(map[string]any)
	if ean["boost"] != 5 {
		t.Errorf("ean clause must boost 5, got %v", ean["boost"])
	}
}

func TestBuildSearchBody_AllFilters(t *testing.T) {
	inStock := true
	filters := domain.Filters{
		Category:   "Werkzeuge",
		InStock:    &inStock,
		PriceRange: &domain.PriceRange{Min: f64(10), Max: f64(100)},
	}

	body := buildSearchBody("hammer", filters, 50)
	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	clauses := boolQuery["filter"].([]any)
	if len(clauses) != 3 {
		t.Fatalf("expected 3 filter clauses, got %d", len(clauses))
	}

	category := clauses[0].(map[string]any)["term"].(map[string]any)
	if category["category"] != "Werkzeuge" {
		t.Errorf("expected category term filter, got %v", category)
	}
	stock := clauses[1].(map[string]any)["term"].(map[string]any)
	if stock["inStock"] != true {
		t.Errorf("expected inStock term filter, got %v", stock)
	}
	price := clauses[2].(map[string]any)["range"].(map[string]any)["price"].(map[string]any)
	if price["gte"] != 10.0 || price["lte"] != 100.0 {
		t.Errorf("expected price range 10..100, got %v", price)
	}
}

func f64(v float64) *float64 { return &v }

func TestBuildSearchBody_OpenEndedPriceRange(t *testing.T) {
	cases := []struct {
		name     string
		pr       domain.PriceRange
		wantKeys map[string]float64
	}{
		{"min only", domain.PriceRange{Min: f64(5)}, map[string]float64{"gte": 5}},
		{"max only", domain.PriceRange{Max: f64(80)}, map[string]float64{"lte": 80}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pr := tc.pr
			body := buildSearchBody("hammer", domain.Filters{PriceRange: &pr}, 50)
			boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
			clauses := boolQuery["filter"].([]any)
			if len(clauses) != 1 {
				t.Fatalf("expected one price clause, got %d", len(clauses))
			}
			price := clauses[0].(map[string]any)["range"].(map[string]any)["price"].(map[string]any)
			if len(price) != len(tc.wantKeys) {
				t.Fatalf("absent bounds must emit no clause key, got %v", price)
			}
			for key, want := range tc.wantKeys {
				if price[key] != want {
					t.Errorf("bound %s: got %v, want %v", key, price[key], want)
				}
			}
		})
	}
}

func TestBuildSearchBody_EmptyPriceRangeIgnored(t *testing.T) {
	body := buildSearchBody("hammer", domain.Filters{PriceRange: &domain.PriceRange{}}, 50)
	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	if _, ok := boolQuery["filter"]; ok {
		t.Fatal("a price range with no bounds must not filter at all")
	}
}

func TestBuildSearchBody_PartialFilters(t *testing.T) {
	body := buildSearchBody("hammer", domain.Filters{Category: "Garten"}, 50)
	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	clauses := boolQuery["filter"].([]any)
	if len(clauses) != 1 {
		t.Fatalf("expected only the category clause, got %d", len(clauses))
	}
}

func TestBuildSuggestBody(t *testing.T) {
	body := buildSuggestBody("bohr")

	if body["size"] != suggestionLimit {
		t.Errorf("expected size %d, got %v", suggestionLimit, body["size"])
	}
	source := body["_source"].([]string)
	if len(source) != 1 || source[0] != "name" {
		t.Errorf("suggest must fetch only name, got %v", source)
	}
	prefix := body["query"].(map[string]any)["match_phrase_prefix"].(map[string]any)["name"].(map[string]any)
	if prefix["query"] != "bohr" {
		t.Errorf("expected prefix in query, got %v", prefix["query"])
	}
}
