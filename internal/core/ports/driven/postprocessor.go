package driven

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// PostProcessor is one stage of the chunk pipeline. The first stage gets nil
// chunks and splits doc.Content; later stages annotate the chunks they are
// given and must return the same number.
type PostProcessor interface {
	Name() string
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline turns a document into its final chunks.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
