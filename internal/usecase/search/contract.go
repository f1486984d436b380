package search

import (
	"context"

	"github.com/svbuh/product-search-with-cache/internal/domain"
	"github.com/svbuh/product-search-with-cache/internal/repository/cache"
)

// Catalog defines the lexical engine contract for search operations.
type Catalog interface {
	Search(ctx context.Context, query string, filters domain.Filters) (domain.SearchPage, error)
	Suggest(ctx context.Context, prefix string) ([]string, error)
	Product(ctx context.Context, id string) (domain.Product, error)
}

// Reasoner enhances queries and re-ranks candidates. Both operations are
// advisory: callers recover from any failure with a local fallback.
type Reasoner interface {
	EnhanceQuery(ctx context.Context, query string) (domain.Enhancement, error)
	Rerank(ctx context.Context, query string, candidates []domain.RankingCandidate) ([]domain.Ranking, error)
}

// ResultCache is the keyed result cache over canonicalized parameters.
// Implementations never fail the caller: reads degrade to misses, writes
// to no-ops.
type ResultCache interface {
	Get(ctx context.Context, namespace string, params any) ([]byte, bool)
	Set(ctx context.Context, namespace string, params any, payload []byte)
	Invalidate(ctx context.Context, namespace string, params any)
	Stats(ctx context.Context) (cache.Stats, error)
}
