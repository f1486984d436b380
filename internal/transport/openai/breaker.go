package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/svbuh/product-search-with-cache/internal/domain"
)

type reasoner interface {
	EnhanceQuery(ctx context.Context, query string) (domain.Enhancement, error)
	Rerank(ctx context.Context, query string, candidates []domain.RankingCandidate) ([]domain.Ranking, error)
}

// BreakerConfig tunes the circuit breaker around the reasoning client.
type BreakerConfig struct {
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

func (c BreakerConfig) normalize() BreakerConfig {
	if c.MinRequests == 0 {
		c.MinRequests = 5
	}
	if c.FailureRatio <= 0 {
		c.FailureRatio = 0.6
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.HalfOpenMaxCalls == 0 {
		c.HalfOpenMaxCalls = 1
	}
	return c
}

// Breaker short-circuits reasoning calls when the provider keeps failing,
// so a dead provider costs nothing instead of a timeout per search. Each
// operation trips independently. An open circuit reports
// domain.ErrReasoningFailed like any other reasoning failure.
type Breaker struct {
	next    reasoner
	enhance *gobreaker.CircuitBreaker[domain.Enhancement]
	rerank  *gobreaker.CircuitBreaker[[]domain.Ranking]
}

// NewBreaker wraps a reasoning client with per-operation circuit breakers.
func NewBreaker(next reasoner, cfg BreakerConfig, logger *zap.Logger) *Breaker {
	cfg = cfg.normalize()
	return &Breaker{
		next:    next,
		enhance: newBreaker[domain.Enhancement]("enhance", cfg, logger),
		rerank:  newBreaker[[]domain.Ranking]("rerank", cfg, logger),
	}
}

func newBreaker[T any](operation string, cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        operation,
		MaxRequests: cfg.HalfOpenMaxCalls,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Reasoning circuit state change",
				zap.String("operation", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func (b *Breaker) EnhanceQuery(ctx context.Context, query string) (domain.Enhancement, error) {
	result, err := b.enhance.Execute(func() (domain.Enhancement, error) {
		return b.next.EnhanceQuery(ctx, query)
	})
	if err != nil {
		return domain.Enhancement{}, wrapBreakerErr(err)
	}
	return result, nil
}

func (b *Breaker) Rerank(ctx context.Context, query string, candidates []domain.RankingCandidate) ([]domain.Ranking, error) {
	result, err := b.rerank.Execute(func() ([]domain.Ranking, error) {
		return b.next.Rerank(ctx, query, candidates)
	})
	if err != nil {
		return nil, wrapBreakerErr(err)
	}
	return result, nil
}

func wrapBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("reasoning circuit open: %w", domain.ErrReasoningFailed)
	}
	return err
}
