// Package search implements the search pipeline: cache check, optional
// query enhancement, lexical retrieval, optional re-ranking, cache write.
// The AI steps are advisory; only the lexical engine is required.
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/svbuh/product-search-with-cache/internal/domain"
	"github.com/svbuh/product-search-with-cache/internal/logger"
	"github.com/svbuh/product-search-with-cache/internal/metrics"
	"github.com/svbuh/product-search-with-cache/internal/repository/cache"
)

// Cache namespaces owned by this service.
const (
	nsSearch      = "search"
	nsSuggestions = "suggestions"
	nsProduct     = "product"
)

// defaultRerankDepth bounds how many head results are re-ranked.
const defaultRerankDepth = 20

// attempt is the outcome of an advisory step: the value on success, or a
// degradation reason when the fallback was substituted. Call sites branch
// on ok explicitly instead of letting failures propagate.
type attempt[T any] struct {
	value  T
	ok     bool
	reason string
}

func succeeded[T any](v T) attempt[T]          { return attempt[T]{value: v, ok: true} }
func degraded[T any](reason string) attempt[T] { return attempt[T]{reason: reason} }

// searchKey is the cache subject of one search: the raw query, the
// caller's filters and the AI flag. Derived once per request and reused
// for the write, so read and write always address the same entry.
type searchKey struct {
	Query   string         `json:"query"`
	Filters domain.Filters `json:"filters"`
	UseAI   bool           `json:"useAI"`
}

type suggestKey struct {
	Prefix string `json:"prefix"`
}

type productKey struct {
	ID string `json:"id"`
}

// Service orchestrates the search pipeline.
type Service struct {
	catalog     Catalog
	reasoner    Reasoner
	cache       ResultCache
	rerankDepth int
}

// New creates the search service. reasoner may be nil when no reasoning
// provider is configured; every request then runs lexical-only.
func New(catalog Catalog, reasoner Reasoner, resultCache ResultCache) *Service {
	return &Service{
		catalog:     catalog,
		reasoner:    reasoner,
		cache:       resultCache,
		rerankDepth: defaultRerankDepth,
	}
}

// WithRerankDepth overrides how many head results are submitted for
// re-ranking.
func (s *Service) WithRerankDepth(n int) *Service {
	if n > 0 {
		s.rerankDepth = n
	}
	return s
}

// Search runs the full pipeline for one request.
func (s *Service) Search(ctx context.Context, req domain.SearchRequest) (domain.EnhancedSearchResult, error) {
	if req.Query == "" {
		return domain.EnhancedSearchResult{}, fmt.Errorf("empty query: %w", domain.ErrInvalidRequest)
	}

	useAI := req.UseAI && s.reasoner != nil
	start := time.Now()
	aiLabel := boolLabel(useAI)

	key := searchKey{Query: req.Query, Filters: req.Filters, UseAI: useAI}

	if !req.NoCache {
		if result, ok := cacheGet[domain.EnhancedSearchResult](ctx, s.cache, nsSearch, key); ok {
			metrics.SearchRequestsTotal.WithLabelValues("cached", aiLabel).Inc()
			return result, nil
		}
	}

	searchText := req.Query
	filters := req.Filters
	enhancement := degraded[domain.Enhancement]("disabled")
	if useAI {
		enhancement = s.enhance(ctx, req.Query)
		searchText = enhancement.value.Query
		if filters.Category == "" && len(enhancement.value.Categories) > 0 {
			filters.Category = enhancement.value.Categories[0]
		}
	}

	page, err := s.catalog.Search(ctx, searchText, filters)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error", aiLabel).Inc()
		return domain.EnhancedSearchResult{}, fmt.Errorf("lexical search: %w", err)
	}

	products := page.Products
	if useAI && len(products) > 0 {
		// Relevance is judged against what the user typed, not the
		// rewritten search string.
		products = s.rerank(ctx, req.Query, products)
	}

	result := domain.EnhancedSearchResult{
		Products: products,
		Total:    page.Total,
		Took:     page.Took,
		Enhanced: useAI,
	}
	if enhancement.ok {
		result.QueryEnhancement = &domain.EnhancementRecord{
			Original:   req.Query,
			Enhanced:   enhancement.value.Query,
			Categories: enhancement.value.Categories,
			Intent:     enhancement.value.Intent,
		}
	}

	if !req.NoCache {
		cachePut(ctx, s.cache, nsSearch, key, result)
	}

	metrics.SearchRequestsTotal.WithLabelValues("success", aiLabel).Inc()
	metrics.SearchDuration.WithLabelValues(aiLabel).Observe(time.Since(start).Seconds())
	return result, nil
}

// enhance calls the reasoner and substitutes the pass-through enhancement
// on any failure. The pipeline never sees an absent enhancement.
func (s *Service) enhance(ctx context.Context, query string) attempt[domain.Enhancement] {
	enhancement, err := s.reasoner.EnhanceQuery(ctx, query)
	if err != nil {
		logger.FromContext(ctx).Warn("Query enhancement degraded", zap.String("query", query), zap.Error(err))
		metrics.ReasoningFallbacksTotal.WithLabelValues("enhance", "error").Inc()
		out := degraded[domain.Enhancement](err.Error())
		out.value = domain.PassthroughEnhancement(query)
		return out
	}
	if enhancement.Query == "" {
		logger.FromContext(ctx).Warn("Discarding enhancement with empty query", zap.String("query", query))
		metrics.ReasoningFallbacksTotal.WithLabelValues("enhance", "invalid").Inc()
		out := degraded[domain.Enhancement]("empty enhanced query")
		out.value = domain.PassthroughEnhancement(query)
		return out
	}
	return succeeded(enhancement)
}

// rerank re-orders the head slice by reasoner relevance. Any failure
// leaves the lexical order entirely unchanged. The tail past the rerank
// depth keeps its position in all cases.
func (s *Service) rerank(ctx context.Context, query string, products []domain.RankedProduct) []domain.RankedProduct {
	depth := s.rerankDepth
	if depth > len(products) {
		depth = len(products)
	}
	head := products[:depth]

	candidates := make([]domain.RankingCandidate, depth)
	for i, p := range head {
		candidates[i] = domain.RankingCandidate{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Price:       p.Price,
		}
	}

	rankings, err := s.reasoner.Rerank(ctx, query, candidates)
	if err != nil {
		logger.FromContext(ctx).Warn("Re-ranking degraded", zap.String("query", query), zap.Error(err))
		metrics.ReasoningFallbacksTotal.WithLabelValues("rerank", "error").Inc()
		return products
	}

	ids := make([]string, depth)
	for i, c := range candidates {
		ids[i] = c.ID
	}
	if err := domain.ValidateRanking(rankings, ids); err != nil {
		logger.FromContext(ctx).Warn("Discarding invalid ranking", zap.String("query", query), zap.Error(err))
		metrics.ReasoningFallbacksTotal.WithLabelValues("rerank", "invalid").Inc()
		return products
	}

	scores := make(map[string]int, len(rankings))
	for _, r := range rankings {
		scores[r.ProductID] = r.Score
	}

	reordered := make([]domain.RankedProduct, len(products))
	copy(reordered, products)
	for i := range reordered[:depth] {
		score := scores[reordered[i].ID]
		reordered[i].AIScore = &score
	}
	// Stable: equal scores keep their lexical relative order.
	sort.SliceStable(reordered[:depth], func(i, j int) bool {
		return *reordered[i].AIScore > *reordered[j].AIScore
	})
	return reordered
}

// Suggestions returns name completions for a prefix, cache-aside.
func (s *Service) Suggestions(ctx context.Context, prefix string) ([]string, error) {
	if prefix == "" {
		return nil, fmt.Errorf("empty prefix: %w", domain.ErrInvalidRequest)
	}

	key := suggestKey{Prefix: prefix}
	if names, ok := cacheGet[[]string](ctx, s.cache, nsSuggestions, key); ok {
		return names, nil
	}

	names, err := s.catalog.Suggest(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}

	cachePut(ctx, s.cache, nsSuggestions, key, names)
	return names, nil
}

// Product returns one catalog record by id, cache-aside. A missing
// product is never cached.
func (s *Service) Product(ctx context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, fmt.Errorf("empty product id: %w", domain.ErrInvalidRequest)
	}

	key := productKey{ID: id}
	if product, ok := cacheGet[domain.Product](ctx, s.cache, nsProduct, key); ok {
		return product, nil
	}

	product, err := s.catalog.Product(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}

	cachePut(ctx, s.cache, nsProduct, key, product)
	return product, nil
}

// CacheStats reports the cache key space summary.
func (s *Service) CacheStats(ctx context.Context) (cache.Stats, error) {
	return s.cache.Stats(ctx)
}

// InvalidateCache drops every cached entry under a namespace.
func (s *Service) InvalidateCache(ctx context.Context, namespace string) error {
	switch namespace {
	case nsSearch, nsSuggestions, nsProduct:
	default:
		return fmt.Errorf("unknown cache namespace %q: %w", namespace, domain.ErrInvalidRequest)
	}
	s.cache.Invalidate(ctx, namespace, nil)
	return nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
