package driving

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// IngestionService turns uploaded files into stored, embedded documents.
type IngestionService interface {
	// Ingest extracts, chunks, embeds and persists an upload.
	// Either the document and all its chunks are stored, or nothing is.
	Ingest(ctx context.Context, upload domain.Upload) (*IngestResult, error)
}

// IngestResult describes a successfully ingested document.
type IngestResult struct {
	// Document is the stored document.
	Document domain.Document

	// ChunkCount is the number of chunks stored.
	ChunkCount int
}
