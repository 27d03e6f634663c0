package driven

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
// Deleting a document must remove its chunks in the same operation.
type DocumentStore interface {
	// CreateDocument stores a new document and returns its ID.
	// An empty doc.ID is assigned by the store.
	CreateDocument(ctx context.Context, doc *domain.Document) (string, error)

	// CreateChunks stores all chunks of a document atomically.
	CreateChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// DeleteDocument removes a document and its chunks.
	// Deleting a missing document is not an error.
	DeleteDocument(ctx context.Context, id string) error

	// ListCandidateDocuments returns the documents visible under the filter.
	ListCandidateDocuments(ctx context.Context, filter domain.CorpusFilter) ([]domain.Document, error)

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}
