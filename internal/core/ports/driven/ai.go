package driven

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// EmbeddingService turns text into vectors. Ingestion embeds every chunk
// and retrieval embeds the query with the same service, so stored and query
// vectors are comparable.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order. A failure for
	// any text fails the batch.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length the model is expected to produce.
	Dimensions() int

	ModelName() string

	// Ping checks reachability without running the model where the
	// provider allows it.
	Ping(ctx context.Context) error

	Close() error
}

// ChatService completes a single system and user turn. It is optional:
// without one, answering is disabled and retrieval still works.
type ChatService interface {
	Complete(ctx context.Context, system, user string, opts ChatOptions) (string, error)
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// ChatOptions tunes a completion. Zero values leave the provider default.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}

// AIConfigValidator checks provider settings against the live service
// before they are saved. Unconfigured settings are valid.
type AIConfigValidator interface {
	ValidateEmbedding(settings *domain.EmbeddingSettings) error
	ValidateLLM(settings *domain.LLMSettings) error
}
