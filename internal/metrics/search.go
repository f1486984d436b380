package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodsearch",
			Name:      "search_requests_total",
			Help:      "Total number of search pipeline executions",
		},
		[]string{"status", "ai"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prodsearch",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search pipeline duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"ai"},
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodsearch",
			Name:      "cache_total",
			Help:      "Cache hits and misses per namespace",
		},
		[]string{"namespace", "result"}, // "hit" / "miss"
	)

	ReasoningRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodsearch",
			Name:      "reasoning_requests_total",
			Help:      "Total reasoning service calls",
		},
		[]string{"operation", "status"},
	)

	ReasoningFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodsearch",
			Name:      "reasoning_fallbacks_total",
			Help:      "Reasoning failures converted to deterministic fallbacks",
		},
		[]string{"operation", "reason"},
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prodsearch",
			Name:      "engine_request_duration_seconds",
			Help:      "Lexical engine request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search pipeline metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(CacheTotal)
	prometheus.MustRegister(ReasoningRequestsTotal)
	prometheus.MustRegister(ReasoningFallbacksTotal)
	prometheus.MustRegister(EngineRequestDuration)
	searchMetricsRegistered = true
}
