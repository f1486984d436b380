// Package chi is the HTTP transport: request parsing, error mapping and
// routing over the search and health services.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/svbuh/product-search-with-cache/internal/domain"
	healthuc "github.com/svbuh/product-search-with-cache/internal/usecase/health"
	searchuc "github.com/svbuh/product-search-with-cache/internal/usecase/search"
)

// maxQueryLength bounds free-text inputs at the edge.
const maxQueryLength = 200

// Error codes returned to API clients.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeProductNotFound   = "product_not_found"
	codeEngineUnavailable = "search_engine_unavailable"
	codeInternalError     = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API over the search pipeline.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, codeProductNotFound),
		sentinelHandler(domain.ErrSearchEngineUnavailable, http.StatusBadGateway, codeEngineUnavailable),
	}
	return s
}

// Routes mounts every API endpoint on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/v1/search", s.Search)
	r.Get("/v1/search/suggestions", s.Suggestions)
	r.Get("/v1/products/{id}", s.Product)
	r.Get("/v1/cache/stats", s.CacheStats)
	r.Delete("/v1/cache/{namespace}", s.InvalidateCache)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// Search handles GET /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	result, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Suggestions handles GET /v1/search/suggestions.
func (s *Server) Suggestions(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("q"))
	if prefix == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query parameter q is required")
		return
	}
	if len(prefix) > maxQueryLength {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query parameter q is too long")
		return
	}

	names, err := s.search.Suggestions(r.Context(), prefix)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"suggestions": names})
}

// Product handles GET /v1/products/{id}.
func (s *Server) Product(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := s.search.Product(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// CacheStats handles GET /v1/cache/stats.
func (s *Server) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.search.CacheStats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// InvalidateCache handles DELETE /v1/cache/{namespace}.
func (s *Server) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")

	if err := s.search.InvalidateCache(r.Context(), namespace); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, report)
}

// parseSearchRequest reads and validates the search query parameters.
func parseSearchRequest(r *http.Request) (domain.SearchRequest, error) {
	q := r.URL.Query()

	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		return domain.SearchRequest{}, errors.New("query parameter q is required")
	}
	if len(query) > maxQueryLength {
		return domain.SearchRequest{}, errors.New("query parameter q is too long")
	}

	req := domain.SearchRequest{Query: query}
	req.Filters.Category = strings.TrimSpace(q.Get("category"))

	if v := q.Get("in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			return domain.SearchRequest{}, errors.New("in_stock must be a boolean")
		}
		req.Filters.InStock = &inStock
	}

	var pr domain.PriceRange
	if v := q.Get("min_price"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil || min < 0 {
			return domain.SearchRequest{}, errors.New("min_price must be a non-negative number")
		}
		pr.Min = &min
	}
	if v := q.Get("max_price"); v != "" {
		max, err := strconv.ParseFloat(v, 64)
		if err != nil || max < 0 {
			return domain.SearchRequest{}, errors.New("max_price must be a non-negative number")
		}
		pr.Max = &max
	}
	if pr.Min != nil && pr.Max != nil && *pr.Min > *pr.Max {
		return domain.SearchRequest{}, errors.New("min_price must not exceed max_price")
	}
	if pr.Min != nil || pr.Max != nil {
		req.Filters.PriceRange = &pr
	}

	if v := q.Get("ai"); v != "" {
		useAI, err := strconv.ParseBool(v)
		if err != nil {
			return domain.SearchRequest{}, errors.New("ai must be a boolean")
		}
		req.UseAI = useAI
	}

	if v := q.Get("no_cache"); v != "" {
		noCache, err := strconv.ParseBool(v)
		if err != nil {
			return domain.SearchRequest{}, errors.New("no_cache must be a boolean")
		}
		req.NoCache = noCache
	}

	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrProductNotFound,
		domain.ErrSearchEngineUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
