package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/svbuh/product-search-with-cache/internal/config"
	"github.com/svbuh/product-search-with-cache/internal/db"
	dbRedis "github.com/svbuh/product-search-with-cache/internal/db/redis"
	logpkg "github.com/svbuh/product-search-with-cache/internal/logger"
	"github.com/svbuh/product-search-with-cache/internal/metrics"
	"github.com/svbuh/product-search-with-cache/internal/repository/cache"
	chiTransport "github.com/svbuh/product-search-with-cache/internal/transport/chi"
	openaiReason "github.com/svbuh/product-search-with-cache/internal/transport/openai"
	osTransport "github.com/svbuh/product-search-with-cache/internal/transport/opensearch"
	healthuc "github.com/svbuh/product-search-with-cache/internal/usecase/health"
	searchuc "github.com/svbuh/product-search-with-cache/internal/usecase/search"
	"github.com/svbuh/product-search-with-cache/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting product search API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("opensearch_addrs", cfg.OpenSearch.Addresses),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
	)

	metrics.RegisterSearchMetrics()

	// Cache store. The cache is optional: when Redis is absent or never
	// comes up, the pipeline runs uncached instead of failing.
	var store db.Store
	if len(cfg.Redis.Addrs) > 0 {
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Redis.Addrs,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer redisStore.Close()

		readiness := time.Duration(cfg.Redis.ReadinessTimeout) * time.Second
		if err := redisStore.WaitForReady(context.Background(), readiness); err != nil {
			logger.Warn("Cache store not ready, continuing without guarantees", zap.Error(err))
		} else {
			logger.Info("Connected to cache store")
		}
		store = redisStore
	} else {
		logger.Warn("No cache store configured, running uncached")
	}

	// Lexical engine
	catalog, err := osTransport.New(osTransport.Config{
		Addresses:  cfg.OpenSearch.Addresses,
		Username:   cfg.OpenSearch.Username,
		Password:   cfg.OpenSearch.Password,
		Index:      cfg.OpenSearch.Index,
		MaxResults: cfg.Search.MaxResults,
		Timeout:    time.Duration(cfg.OpenSearch.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("Failed to create search engine client", zap.Error(err))
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := catalog.EnsureIndex(bootCtx); err != nil {
		logger.Warn("Index bootstrap failed", zap.Error(err))
	}
	bootCancel()

	// Reasoning client. No API key means AI assist is off for every request.
	var reasoner searchuc.Reasoner
	var reasonerCheck healthuc.ReasonerChecker
	if cfg.Reasoning.APIKey != "" {
		base := openaiReason.NewReasoner(openaiReason.Config{
			APIKey:      cfg.Reasoning.APIKey,
			BaseURL:     cfg.Reasoning.BaseURL,
			Model:       cfg.Reasoning.Model,
			Temperature: cfg.Reasoning.Temperature,
			Timeout:     time.Duration(cfg.Reasoning.TimeoutSec) * time.Second,
			Logger:      logger,
		})
		reasoner = openaiReason.NewBreaker(base, openaiReason.BreakerConfig{}, logger)
		reasonerCheck = base
		logger.Info("Reasoning client created", zap.String("model", cfg.Reasoning.Model))
	} else {
		logger.Warn("No reasoning API key configured, AI assist disabled")
	}

	// Result cache
	var resultCache searchuc.ResultCache = disabledCache{}
	var storePinger healthuc.StorePinger
	if store != nil {
		resultCache = cache.New(
			store,
			cfg.Cache.KeyPrefix,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.CacheTotal,
			logger,
		).WithOpTimeout(time.Duration(cfg.Cache.OpTimeoutMS) * time.Millisecond)
		storePinger = store
	}

	// Use case services
	searchSvc := searchuc.New(catalog, reasoner, resultCache).
		WithRerankDepth(cfg.Search.RerankDepth)
	healthSvc := healthuc.New(storePinger, catalog, reasonerCheck)

	// HTTP server
	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// disabledCache is the stand-in when no cache store is configured:
// every read misses, every write is dropped.
type disabledCache struct{}

func (disabledCache) Get(context.Context, string, any) ([]byte, bool) { return nil, false }
func (disabledCache) Set(context.Context, string, any, []byte)        {}
func (disabledCache) Invalidate(context.Context, string, any)         {}
func (disabledCache) Stats(context.Context) (cache.Stats, error)      { return cache.Stats{}, nil }

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
