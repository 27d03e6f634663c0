package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// DocumentService manages stored documents.
type DocumentService interface {
	// List returns the documents visible under the filter.
	List(ctx context.Context, filter domain.CorpusFilter) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetContent rebuilds the document text from its chunks.
	GetContent(ctx context.Context, documentID string) (string, error)

	// GetDetails returns metadata for display.
	GetDetails(ctx context.Context, documentID string) (*DocumentDetails, error)

	// Delete removes a document and its chunks.
	Delete(ctx context.Context, documentID string) error
}

// DocumentDetails provides a display view of document metadata.
type DocumentDetails struct {
	ID         string
	Title      string
	Type       domain.DocumentType
	Citation   string
	Public     bool
	OwnerID    string
	ChunkCount int
	CreatedAt  time.Time

	// Metadata contains flattened key-value pairs for display.
	Metadata map[string]string
}
