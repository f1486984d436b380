// Package opensearch adapts the OpenSearch engine to the catalog contract:
// multi-field boosted retrieval, name suggestions, and id lookups. The
// engine is the only source of ground-truth results, so its failures are
// surfaced to the caller instead of being masked.
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"go.uber.org/zap"

	"github.com/svbuh/product-search-with-cache/internal/domain"
	"github.com/svbuh/product-search-with-cache/internal/metrics"
)

// Config holds the engine connection settings.
type Config struct {
	Addresses  []string
	Username   string
	Password   string
	Index      string
	MaxResults int
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Client is the lexical search client over an OpenSearch products index.
type Client struct {
	es         *opensearchgo.Client
	index      string
	maxResults int
	timeout    time.Duration
	logger     *zap.Logger
}

// New creates an OpenSearch-backed catalog client.
func New(cfg Config) (*Client, error) {
	es, err := opensearchgo.NewClient(opensearchgo.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}

	c := &Client{
		es:         es,
		index:      cfg.Index,
		maxResults: cfg.MaxResults,
		timeout:    cfg.Timeout,
		logger:     cfg.Logger,
	}
	if c.index == "" {
		c.index = "products"
	}
	if c.maxResults <= 0 {
		c.maxResults = 50
	}
	if c.timeout <= 0 {
		c.timeout = 5 * time.Second
	}
	return c, nil
}

// Search executes the disjunctive multi-field query with additive filters.
// Any engine failure is fatal: wrapped in domain.ErrSearchEngineUnavailable.
func (c *Client) Search(ctx context.Context, query string, filters domain.Filters) (domain.SearchPage, error) {
	body, err := json.Marshal(buildSearchBody(query, filters, c.maxResults))
	if err != nil {
		return domain.SearchPage{}, fmt.Errorf("encode search body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	res, err := opensearchapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, c.es)
	metrics.EngineRequestDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.SearchPage{}, fmt.Errorf("search request: %v: %w", err, domain.ErrSearchEngineUnavailable)
	}
	defer res.Body.Close()

	if res.IsError() {
		return domain.SearchPage{}, fmt.Errorf("search returned %s: %w", res.Status(), domain.ErrSearchEngineUnavailable)
	}

	page, err := parseSearchResponse(res.Body)
	if err != nil {
		return domain.SearchPage{}, fmt.Errorf("parse search response: %v: %w", err, domain.ErrSearchEngineUnavailable)
	}
	return page, nil
}

// Suggest returns up to suggestionLimit distinct product names matching
// the prefix, in engine order.
func (c *Client) Suggest(ctx context.Context, prefix string) ([]string, error) {
	body, err := json.Marshal(buildSuggestBody(prefix))
	if err != nil {
		return nil, fmt.Errorf("encode suggest body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	res, err := opensearchapi.SearchRequest{
		Index: []string{c.index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, c.es)
	metrics.EngineRequestDuration.WithLabelValues("suggest").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("suggest request: %v: %w", err, domain.ErrSearchEngineUnavailable)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("suggest returned %s: %w", res.Status(), domain.ErrSearchEngineUnavailable)
	}

	names, err := parseSuggestResponse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse suggest response: %v: %w", err, domain.ErrSearchEngineUnavailable)
	}
	return names, nil
}

// Product fetches one catalog record by id. A missing record is
// domain.ErrProductNotFound, not an engine failure.
func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	res, err := opensearchapi.GetRequest{
		Index:      c.index,
		DocumentID: id,
	}.Do(ctx, c.es)
	metrics.EngineRequestDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.Product{}, fmt.Errorf("get request: %v: %w", err, domain.ErrSearchEngineUnavailable)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if res.IsError() {
		return domain.Product{}, fmt.Errorf("get returned %s: %w", res.Status(), domain.ErrSearchEngineUnavailable)
	}

	var doc struct {
		Source domain.Product `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return domain.Product{}, fmt.Errorf("parse get response: %v: %w", err, domain.ErrSearchEngineUnavailable)
	}
	return doc.Source, nil
}

// EnsureIndex creates the products index when it does not exist yet.
func (c *Client) EnsureIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := opensearchapi.IndicesExistsRequest{Index: []string{c.index}}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("index exists request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("index exists returned %s", res.Status())
	}

	body, err := json.Marshal(indexMapping())
	if err != nil {
		return fmt.Errorf("encode index mapping: %w", err)
	}

	createRes, err := opensearchapi.IndicesCreateRequest{
		Index: c.index,
		Body:  bytes.NewReader(body),
	}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("create index request: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("create index returned %s", createRes.Status())
	}

	c.logger.Info("Created products index", zap.String("index", c.index))
	return nil
}

// IndexProduct adds or replaces a single product document.
func (c *Client) IndexProduct(ctx context.Context, p domain.Product) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := opensearchapi.IndexRequest{
		Index:      c.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index returned %s", res.Status())
	}
	return nil
}

// BulkIndex adds or replaces many product documents in one request.
func (c *Client) BulkIndex(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, p := range products {
		action := map[string]any{"index": map[string]any{"_index": c.index, "_id": p.ID}}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return fmt.Errorf("encode bulk action: %w", err)
		}
		if err := json.NewEncoder(&buf).Encode(p); err != nil {
			return fmt.Errorf("encode bulk document: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := opensearchapi.BulkRequest{
		Body:    bytes.NewReader(buf.Bytes()),
		Refresh: "true",
	}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk returned %s", res.Status())
	}
	return nil
}

// HealthCheck verifies engine reachability.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := opensearchapi.PingRequest{}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ping returned %s", res.Status())
	}
	return nil
}
