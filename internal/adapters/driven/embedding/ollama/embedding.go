// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/lexis/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultModel       = "nomic-embed-text"
	DefaultTimeout     = 30 * time.Second
	DefaultDimensions  = 768
	DefaultConcurrency = 4
	DefaultBatchSize   = 16
)

// Config holds configuration for the Ollama embedding service.
// Zero values take the defaults above.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int

	// Concurrency bounds how many /api/embed calls EmbedBatch has in flight.
	Concurrency int

	// BatchSize is how many texts go into one /api/embed call.
	BatchSize int

	HTTPClient *http.Client
}

// EmbeddingService calls Ollama's /api/embed endpoint.
type EmbeddingService struct {
	api         *ollamaapi.Client
	model       string
	dimensions  int
	concurrency int
	batchSize   int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewEmbeddingService creates an Ollama embedding service. Dimensions fall
// back to the known size of the model, then to DefaultDimensions.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
		if d, ok := domain.EmbeddingDimensions()[cfg.Model]; ok {
			cfg.Dimensions = d
		}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &EmbeddingService{
		api:         ollamaapi.New(cfg.BaseURL, cfg.Timeout, cfg.HTTPClient),
		model:       cfg.Model,
		dimensions:  cfg.Dimensions,
		concurrency: cfg.Concurrency,
		batchSize:   cfg.BatchSize,
	}
}

// Embed returns the vector for one text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch splits texts into batches and embeds them concurrently.
// Output order matches input order and any failed batch fails the call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))
		g.Go(func() error {
			vectors, err := s.embed(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("texts %d-%d: %w", start, end-1, err)
			}
			copy(out[start:end], vectors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *EmbeddingService) embed(ctx context.Context, input []string) ([][]float32, error) {
	var resp embedResponse
	if err := s.api.Post(ctx, "/api/embed", embedRequest{Model: s.model, Input: input}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(input) {
		return nil, fmt.Errorf("ollama: %s returned %d vectors for %d texts",
			s.model, len(resp.Embeddings), len(input))
	}
	for i, v := range resp.Embeddings {
		if len(v) == 0 {
			return nil, fmt.Errorf("ollama: %s returned an empty vector for text %d", s.model, i)
		}
	}
	return resp.Embeddings, nil
}

// Dimensions returns the expected vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the embedding model.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the server is reachable.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx)
}

// Close is a no-op.
func (s *EmbeddingService) Close() error {
	return nil
}
