// Package openai embeds text with the OpenAI embeddings endpoint.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"github.com/custodia-labs/lexis/internal/adapters/driven/openaiapi"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = openaiapi.DefaultBaseURL
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	fallbackDimensions = 1536
)

// Config configures the service. Only APIKey is required.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client

	// Dimensions shortens vectors on models that support it
	// (text-embedding-3-*). Other models ignore it.
	Dimensions int
}

// EmbeddingService sends whole batches in one request. The SDK never
// retries; resilient.Wrap owns retry and rate limiting.
type EmbeddingService struct {
	client     openai.Client
	model      string
	dimensions int
	shorten    bool
}

func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	client, err := openaiapi.NewClient(openaiapi.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	s := &EmbeddingService{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		shorten:    cfg.Dimensions > 0 && strings.HasPrefix(cfg.Model, "text-embedding-3"),
	}
	if s.dimensions == 0 {
		s.dimensions = domain.EmbeddingDimensions()[cfg.Model]
	}
	if s.dimensions == 0 {
		s.dimensions = fallbackDimensions
	}
	return s, nil
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one vector per text in input order. The API reports an
// index per vector; a missing, repeated or out-of-range index fails the
// whole batch.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openai.EmbeddingNewParams{
		Model:          openai.EmbeddingModel(s.model),
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if s.shorten {
		params.Dimensions = openai.Int(int64(s.dimensions))
	}

	resp, err := s.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, openaiapi.Classify(err)
	}
	if got := len(resp.Data); got != len(texts) {
		return nil, fmt.Errorf("openai: expected %d embeddings, got %d", len(texts), got)
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		i := int(d.Index)
		switch {
		case i < 0 || i >= len(out) || out[i] != nil:
			return nil, fmt.Errorf("openai: invalid embedding index %d", d.Index)
		case len(d.Embedding) == 0:
			return nil, fmt.Errorf("openai: empty embedding at index %d", i)
		}
		vec := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			vec[j] = float32(f)
		}
		out[i] = vec
	}
	return out, nil
}

func (s *EmbeddingService) Dimensions() int   { return s.dimensions }
func (s *EmbeddingService) ModelName() string { return s.model }
func (s *EmbeddingService) Close() error      { return nil }

func (s *EmbeddingService) Ping(ctx context.Context) error {
	return openaiapi.Ping(ctx, s.client)
}
