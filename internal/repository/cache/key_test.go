package cache

import "testing"

func TestDeriveKey_MapOrderIndependent(t *testing.T) {
	a := map[string]any{"query": "hammer", "useAI": true, "category": "tools"}
	b := map[string]any{"category": "tools", "useAI": true, "query": "hammer"}

	ka, err := deriveKey("p:", "search", a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kb, err := deriveKey("p:", "search", b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ka != kb {
		t.Errorf("structurally equal params must derive the same key:\n%s\n%s", ka, kb)
	}
}

func TestDeriveKey_StructAndMapAgree(t *testing.T) {
	type params struct {
		Query string `json:"query"`
		UseAI bool   `json:"useAI"`
	}

	ks, err := deriveKey("p:", "search", params{Query: "hammer", UseAI: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	km, err := deriveKey("p:", "search", map[string]any{"useAI": true, "query": "hammer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ks != km {
		t.Errorf("struct and equivalent map must derive the same key:\n%s\n%s", ks, km)
	}
}

func TestDeriveKey_DifferentParamsDiffer(t *testing.T) {
	ka, _ := deriveKey("p:", "search", map[string]any{"query": "hammer"})
	kb, _ := deriveKey("p:", "search", map[string]any{"query": "hammer "})
	if ka == kb {
		t.Error("different params must derive different keys")
	}
}

func TestDeriveKey_NamespaceScoping(t *testing.T) {
	ka, _ := deriveKey("p:", "search", map[string]any{"query": "hammer"})
	kb, _ := deriveKey("p:", "suggestions", map[string]any{"query": "hammer"})
	if ka == kb {
		t.Error("same params in different namespaces must derive different keys")
	}
}

func TestDeriveKey_UnmarshalableParams(t *testing.T) {
	if _, err := deriveKey("p:", "search", make(chan int)); err == nil {
		t.Fatal("expected error for unmarshalable params")
	}
}
