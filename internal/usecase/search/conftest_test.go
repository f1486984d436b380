package search

import (
	"context"
	"encoding/json"

	"github.com/svbuh/product-search-with-cache/internal/domain"
	"github.com/svbuh/product-search-with-cache/internal/repository/cache"
)

type fakeCatalog struct {
	searchFunc  func(ctx context.Context, query string, filters domain.Filters) (domain.SearchPage, error)
	suggestFunc func(ctx context.Context, prefix string) ([]string, error)
	productFunc func(ctx context.Context, id string) (domain.Product, error)

	searchCalls  int
	suggestCalls int
	productCalls int
}

func (f *fakeCatalog) Search(ctx context.Context, query string, filters domain.Filters) (domain.SearchPage, error) {
	f.searchCalls++
	return f.searchFunc(ctx, query, filters)
}

func (f *fakeCatalog) Suggest(ctx context.Context, prefix string) ([]string, error) {
	f.suggestCalls++
	return f.suggestFunc(ctx, prefix)
}

func (f *fakeCatalog) Product(ctx context.Context, id string) (domain.Product, error) {
	f.productCalls++
	return f.productFunc(ctx, id)
}

type fakeReasoner struct {
	enhanceFunc func(ctx context.Context, query string) (domain.Enhancement, error)
	rerankFunc  func(ctx context.Context, query string, candidates []domain.RankingCandidate) ([]domain.Ranking, error)

	enhanceCalls int
	rerankCalls  int
}

func (f *fakeReasoner) EnhanceQuery(ctx context.Context, query string) (domain.Enhancement, error) {
	f.enhanceCalls++
	if f.enhanceFunc == nil {
		return domain.PassthroughEnhancement(query), nil
	}
	return f.enhanceFunc(ctx, query)
}

func (f *fakeReasoner) Rerank(ctx context.Context, query string, candidates []domain.RankingCandidate) ([]domain.Ranking, error) {
	f.rerankCalls++
	if f.rerankFunc == nil {
		return nil, domain.ErrReasoningFailed
	}
	return f.rerankFunc(ctx, query, candidates)
}

// memCache is an in-memory ResultCache keyed by namespace plus the
// canonical JSON of the params, close enough for pipeline tests.
type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (m *memCache) key(namespace string, params any) string {
	raw, _ := json.Marshal(params)
	return namespace + ":" + string(raw)
}

func (m *memCache) Get(_ context.Context, namespace string, params any) ([]byte, bool) {
	raw, ok := m.entries[m.key(namespace, params)]
	return raw, ok
}

func (m *memCache) Set(_ context.Context, namespace string, params any, payload []byte) {
	m.entries[m.key(namespace, params)] = payload
}

func (m *memCache) Invalidate(_ context.Context, namespace string, params any) {
	if params != nil {
		delete(m.entries, m.key(namespace, params))
		return
	}
	prefix := namespace + ":"
	for k := range m.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(m.entries, k)
		}
	}
}

func (m *memCache) Stats(context.Context) (cache.Stats, error) {
	return cache.Stats{TotalKeys: len(m.entries)}, nil
}

// nilCache misses every read and drops every write.
type nilCache struct{}

func (nilCache) Get(context.Context, string, any) ([]byte, bool) { return nil, false }
func (nilCache) Set(context.Context, string, any, []byte)        {}
func (nilCache) Invalidate(context.Context, string, any)         {}
func (nilCache) Stats(context.Context) (cache.Stats, error)      { return cache.Stats{}, nil }

func enginePage(ids ...string) domain.SearchPage {
	products := make([]domain.RankedProduct, len(ids))
	for i, id := range ids {
		products[i] = domain.RankedProduct{
			Product: domain.Product{ID: id, Name: "Produkt " + id, Price: float64(i + 1)},
			Score:   float64(len(ids) - i),
		}
	}
	return domain.SearchPage{Products: products, Total: len(ids), Took: 7}
}

func productIDs(products []domain.RankedProduct) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
