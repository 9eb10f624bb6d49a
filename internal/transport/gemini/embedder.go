package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/metrics"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-embedding-001"
)

// Config holds the Gemini embedding settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Embedder is an embedding provider backed by the Gemini API.
type Embedder struct {
	client     *genai.Client // nil when no API key is configured
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewEmbedder creates a Gemini embedder. Without an API key the embedder is
// still returned and reports domain.ErrEmbeddingNotConfigured on use.
func NewEmbedder(ctx context.Context, cfg *Config) (*Embedder, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Embedder{model: model, dimensions: cfg.Dimensions, logger: logger}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return e, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	e.client = client
	return e, nil
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if e.client == nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%s: api key is not set: %w", providerName, domain.ErrEmbeddingNotConfigured)
	}
	if domain.IsBlank(text) {
		return domain.EmbeddingResult{Embedding: []float32{}}, nil
	}

	var embedCfg *genai.EmbedContentConfig
	if e.dimensions > 0 {
		dims := int32(e.dimensions) //nolint:gosec // validated in config
		embedCfg = &genai.EmbedContentConfig{OutputDimensionality: &dims}
	}

	start := time.Now()

	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), embedCfg)

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "api_error").Inc()
		return domain.EmbeddingResult{}, parseAPIError(err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "empty_response").Inc()
		return domain.EmbeddingResult{Embedding: []float32{}}, nil
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(duration.Seconds())

	values := resp.Embeddings[0].Values
	if values == nil {
		values = []float32{}
	}
	return domain.EmbeddingResult{Embedding: values}, nil
}

// HealthCheck reports whether the embedder has credentials.
// Gemini has no free metadata endpoint, so no request is made.
func (e *Embedder) HealthCheck(context.Context) error {
	if e.client == nil {
		return domain.ErrEmbeddingNotConfigured
	}
	return nil
}

func parseAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewProviderError(providerName, apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return domain.NewProviderError(providerName, apiErrPtr.Code, apiErrPtr.Message)
	}
	return fmt.Errorf("embedding request failed: %w: %w", domain.ErrEmbeddingProviderError, err)
}
