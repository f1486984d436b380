package domain

import "testing"

func TestValidateRanking_Valid(t *testing.T) {
	rankings := []Ranking{
		{ProductID: "b", Score: 90},
		{ProductID: "a", Score: 70},
		{ProductID: "c", Score: 10},
	}
	if err := ValidateRanking(rankings, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRanking_WrongCount(t *testing.T) {
	rankings := []Ranking{
		{ProductID: "a", Score: 90},
		{ProductID: "b", Score: 70},
	}
	if err := ValidateRanking(rankings, []string{"a", "b", "c"}); err == nil {
		t.Fatal("expected error for missing entry")
	}
}

func TestValidateRanking_UnknownID(t *testing.T) {
	rankings := []Ranking{
		{ProductID: "a", Score: 90},
		{ProductID: "x", Score: 70},
	}
	if err := ValidateRanking(rankings, []string{"a", "b"}); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestValidateRanking_DuplicateID(t *testing.T) {
	rankings := []Ranking{
		{ProductID: "a", Score: 90},
		{ProductID: "a", Score: 70},
	}
	if err := ValidateRanking(rankings, []string{"a", "b"}); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func TestValidateRanking_Empty(t *testing.T) {
	if err := ValidateRanking(nil, nil); err != nil {
		t.Fatalf("unexpected error for empty ranking: %v", err)
	}
}

func TestPassthroughEnhancement(t *testing.T) {
	e := PassthroughEnhancement("Bosch Akkuschrauber")
	if e.Query != "Bosch Akkuschrauber" {
		t.Errorf("expected original query, got %q", e.Query)
	}
	if len(e.Categories) != 0 || len(e.Attributes) != 0 {
		t.Error("passthrough enhancement must derive nothing")
	}
	if e.Intent != IntentSearch {
		t.Errorf("expected intent %q, got %q", IntentSearch, e.Intent)
	}
}

func TestIntentValid(t *testing.T) {
	for _, i := range []Intent{IntentSearch, IntentBrowse, IntentSpecific, IntentComparison} {
		if !i.Valid() {
			t.Errorf("intent %q should be valid", i)
		}
	}
	if Intent("recommendation").Valid() {
		t.Error("unknown intent should be invalid")
	}
}
