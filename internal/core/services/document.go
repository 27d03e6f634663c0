package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/postprocessors/chunker"
)

var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService reads and deletes stored documents. It does not check
// visibility; callers apply a CorpusFilter to what they show.
type DocumentService struct {
	store driven.DocumentStore
}

// NewDocumentService creates a document service over store.
func NewDocumentService(store driven.DocumentStore) *DocumentService {
	return &DocumentService{store: store}
}

// List returns the documents the filter can see, oldest first.
func (s *DocumentService) List(ctx context.Context, filter domain.CorpusFilter) ([]domain.Document, error) {
	docs, err := s.store.ListCandidateDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return docs, nil
}

// Get returns one document or an error wrapping domain.ErrNotFound.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.lookup(ctx, id)
}

// GetContent rebuilds the text from the stored chunks, dropping the overlap
// between neighbours, so it shows exactly what retrieval searches. Chunks
// without offsets are joined with newlines.
func (s *DocumentService) GetContent(ctx context.Context, id string) (string, error) {
	if _, err := s.lookup(ctx, id); err != nil {
		return "", err
	}
	chunks, err := s.store.GetChunks(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	segments := make([]chunker.Segment, len(chunks))
	texts := make([]string, len(chunks))
	withOffsets := true
	for i, c := range chunks {
		texts[i] = c.Content
		start, okStart := domain.MetadataInt(c.Metadata, domain.MetaStartOffset)
		end, okEnd := domain.MetadataInt(c.Metadata, domain.MetaEndOffset)
		withOffsets = withOffsets && okStart && okEnd
		segments[i] = chunker.Segment{Text: c.Content, Start: start, End: end}
	}

	if !withOffsets {
		return strings.Join(texts, "\n"), nil
	}
	return chunker.Reassemble(segments), nil
}

// GetDetails returns a display view of a document. The chunk count comes
// from metadata written at ingestion, or from the stored chunks.
func (s *DocumentService) GetDetails(ctx context.Context, id string) (*driving.DocumentDetails, error) {
	doc, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	count, ok := domain.MetadataInt(doc.Metadata, domain.MetaChunkCount)
	if !ok {
		if chunks, err := s.store.GetChunks(ctx, id); err == nil {
			count = len(chunks)
		}
	}

	meta := make(map[string]string, len(doc.Metadata))
	for k, v := range doc.Metadata {
		meta[k] = fmt.Sprint(v)
	}

	return &driving.DocumentDetails{
		ID:         doc.ID,
		Title:      doc.Title,
		Type:       doc.Type,
		Citation:   doc.Citation,
		Public:     doc.Public,
		OwnerID:    doc.OwnerID,
		ChunkCount: count,
		CreatedAt:  doc.CreatedAt,
		Metadata:   meta,
	}, nil
}

// Delete removes a document and its chunks.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if _, err := s.lookup(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// lookup fetches a document, tagging store failures other than a missing
// document as persistence errors.
func (s *DocumentService) lookup(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.store.GetDocument(ctx, id)
	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, domain.ErrNotFound):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
}
