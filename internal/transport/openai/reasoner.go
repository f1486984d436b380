// Package openai is the query reasoning client over an OpenAI-compatible
// chat completion API. Both operations are advisory: every failure is
// wrapped in domain.ErrReasoningFailed and the caller falls back to a
// deterministic local substitute.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/svbuh/product-search-with-cache/internal/domain"
	"github.com/svbuh/product-search-with-cache/internal/metrics"
)

// Config holds the reasoning provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	Logger      *zap.Logger
}

// Reasoner enhances queries and re-ranks product candidates.
type Reasoner struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewReasoner creates a chat-completion-backed reasoning client.
func NewReasoner(cfg Config) *Reasoner {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	r := &Reasoner{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      cfg.Logger,
	}
	if r.model == "" {
		r.model = openai.GPT4oMini
	}
	if r.temperature == 0 {
		r.temperature = 0.7
	}
	if r.timeout <= 0 {
		r.timeout = 10 * time.Second
	}
	return r
}

// EnhanceQuery rewrites a free-text query and derives categories,
// attributes and intent from it.
func (r *Reasoner) EnhanceQuery(ctx context.Context, query string) (domain.Enhancement, error) {
	raw, err := r.complete(ctx, "enhance", enhanceSystemPrompt, enhancePrompt(query), true)
	if err != nil {
		return domain.Enhancement{}, err
	}

	var enhancement domain.Enhancement
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &enhancement); err != nil {
		metrics.ReasoningRequestsTotal.WithLabelValues("enhance", "malformed").Inc()
		return domain.Enhancement{}, fmt.Errorf("parse enhancement: %v: %w", err, domain.ErrReasoningFailed)
	}
	if enhancement.Query == "" {
		metrics.ReasoningRequestsTotal.WithLabelValues("enhance", "malformed").Inc()
		return domain.Enhancement{}, fmt.Errorf("empty enhanced query: %w", domain.ErrReasoningFailed)
	}
	if !enhancement.Intent.Valid() {
		enhancement.Intent = domain.IntentSearch
	}

	metrics.ReasoningRequestsTotal.WithLabelValues("enhance", "success").Inc()
	return enhancement, nil
}

// Rerank scores the candidates 0-100 against the query. The returned
// rankings are validated to cover exactly the submitted candidates.
func (r *Reasoner) Rerank(ctx context.Context, query string, candidates []domain.RankingCandidate) ([]domain.Ranking, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	raw, err := r.complete(ctx, "rerank", rerankSystemPrompt, rerankPrompt(query, candidates), false)
	if err != nil {
		return nil, err
	}

	var rankings []domain.Ranking
	if err := json.Unmarshal([]byte(extractJSONArray(raw)), &rankings); err != nil {
		metrics.ReasoningRequestsTotal.WithLabelValues("rerank", "malformed").Inc()
		return nil, fmt.Errorf("parse rankings: %v: %w", err, domain.ErrReasoningFailed)
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	if err := domain.ValidateRanking(rankings, ids); err != nil {
		metrics.ReasoningRequestsTotal.WithLabelValues("rerank", "malformed").Inc()
		return nil, fmt.Errorf("%v: %w", err, domain.ErrReasoningFailed)
	}

	metrics.ReasoningRequestsTotal.WithLabelValues("rerank", "success").Inc()
	return rankings, nil
}

// HealthCheck verifies API availability via ListModels.
func (r *Reasoner) HealthCheck(ctx context.Context) error {
	if _, err := r.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (r *Reasoner) complete(ctx context.Context, operation, system, user string, jsonObject bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: r.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	if jsonObject {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := r.client.CreateChatCompletion(ctx, req)
	if err != nil {
		metrics.ReasoningRequestsTotal.WithLabelValues(operation, "error").Inc()
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.ReasoningRequestsTotal.WithLabelValues(operation, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrReasoningFailed)
	}
	return resp.Choices[0].Message.Content, nil
}

// parseAPIError extracts a readable message from the API response. All
// errors carry domain.ErrReasoningFailed so callers can degrade uniformly.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("reasoning API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), domain.ErrReasoningFailed)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("reasoning API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrReasoningFailed)
	}

	return fmt.Errorf("reasoning request failed: %v: %w", err, domain.ErrReasoningFailed)
}
