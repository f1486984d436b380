package opensearch

import (
	"strings"
	"testing"
)

const searchFixture = `{
	"took": 12,
	"hits": {
		"total": {"value": 42},
		"hits": [
			{
				"_id": "p-1",
				"_score": 8.5,
				"_source": {
					"id": "p-1",
					"name": "Hammer 300g",
					"category": "Werkzeuge",
					"brand": "Stanley",
					"price": 12.99,
					"inStock": true
				},
				"highlight": {"name": ["<em>Hammer</em> 300g"]}
			},
			{
				"_id": "p-2",
				"_score": 4.2,
				"_source": {"id": "p-2", "name": "Vorschlaghammer", "price": 39.99}
			}
		]
	}
}`

func TestParseSearchResponse(t *testing.T) {
	page, err := parseSearchResponse(strings.NewReader(searchFixture))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Total != 42 {
		t.Errorf("expected total 42, got %d", page.Total)
	}
	if page.Took != 12 {
		t.Errorf("expected took 12, got %d", page.Took)
	}
	if len(page.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(page.Products))
	}

	first := page.Products[0]
	if first.ID != "p-1" || first.Name != "Hammer 300g" {
		t.Errorf("unexpected first product: %+v", first.Product)
	}
	if first.Score != 8.5 {
		t.Errorf("expected score 8.5, got %v", first.Score)
	}
	if got := first.Highlights["name"]; len(got) != 1 || got[0] != "<em>Hammer</em> 300g" {
		t.Errorf("unexpected highlights: %v", first.Highlights)
	}
	if first.AIScore != nil {
		t.Error("engine results must not carry an AI score")
	}

	if page.Products[1].Highlights != nil {
		t.Error("hit without highlight must decode to nil highlights")
	}
}

func TestParseSearchResponse_Empty(t *testing.T) {
	page, err := parseSearchResponse(strings.NewReader(`{"took":3,"hits":{"total":{"value":0},"hits":[]}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 0 || len(page.Products) != 0 {
		t.Errorf("expected empty page, got %+v", page)
	}
	if page.Products == nil {
		t.Error("products must be an empty slice, not nil")
	}
}

func TestParseSearchResponse_Malformed(t *testing.T) {
	if _, err := parseSearchResponse(strings.NewReader(`{"took":`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestParseSuggestResponse_Dedup(t *testing.T) {
	fixture := `{"hits":{"hits":[
		{"_source":{"name":"Bohrmaschine"}},
		{"_source":{"name":"Bohrhammer"}},
		{"_source":{"name":"Bohrmaschine"}},
		{"_source":{"name":""}},
		{"_source":{"name":"Bohrer-Set"}}
	]}}`

	names, err := parseSuggestResponse(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Bohrmaschine", "Bohrhammer", "Bohrer-Set"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("position %d: expected %q, got %q", i, name, names[i])
		}
	}
}
