// Package memory keeps documents and configuration in process memory. It
// backs the "memory" storage setting and the service tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*DocumentStore)(nil)

// record is one stored document with its chunks in index order.
type record struct {
	doc    domain.Document
	chunks []domain.Chunk
}

// DocumentStore holds clones of everything it is given and hands out
// clones, so callers never share state with it.
type DocumentStore struct {
	mu      sync.RWMutex
	records map[string]*record
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{records: make(map[string]*record)}
}

// CreateDocument fills in a missing ID and creation time on doc before
// storing it. Reusing an ID is an error.
func (s *DocumentStore) CreateDocument(_ context.Context, doc *domain.Document) (string, error) {
	if doc == nil {
		return "", domain.ErrInvalidInput
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.records[doc.ID]; taken {
		return "", fmt.Errorf("document %s already exists", doc.ID)
	}
	s.records[doc.ID] = &record{doc: cloneDocument(*doc)}
	return doc.ID, nil
}

// CreateChunks replaces the chunks of an existing document. Chunk indexes
// must be distinct.
func (s *DocumentStore) CreateChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	stored := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.DocumentID = documentID
		stored[i] = cloneChunk(c)
	}
	slices.SortFunc(stored, func(a, b domain.Chunk) int { return cmp.Compare(a.Index, b.Index) })
	for i := 1; i < len(stored); i++ {
		if stored[i].Index == stored[i-1].Index {
			return fmt.Errorf("duplicate chunk index %d", stored[i].Index)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[documentID]
	if !ok {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	rec.chunks = stored
	return nil
}

// DeleteDocument is a no-op for unknown IDs.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}

// ListCandidateDocuments returns matching documents oldest first, ties
// broken by ID.
func (s *DocumentStore) ListCandidateDocuments(_ context.Context, filter domain.CorpusFilter) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Document
	for _, rec := range s.records {
		if filter.Matches(&rec.doc) {
			out = append(out, cloneDocument(rec.doc))
		}
	}
	slices.SortFunc(out, func(a, b domain.Document) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := cloneDocument(rec.doc)
	return &doc, nil
}

// GetChunks returns nil for unknown documents.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[documentID]
	if !ok || rec.chunks == nil {
		return nil, nil
	}
	out := make([]domain.Chunk, len(rec.chunks))
	for i, c := range rec.chunks {
		out[i] = cloneChunk(c)
	}
	return out, nil
}

func cloneDocument(d domain.Document) domain.Document {
	d.Metadata = maps.Clone(d.Metadata)
	return d
}

func cloneChunk(c domain.Chunk) domain.Chunk {
	c.Embedding = slices.Clone(c.Embedding)
	c.Metadata = maps.Clone(c.Metadata)
	return c
}
