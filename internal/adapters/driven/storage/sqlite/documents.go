package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

const documentColumns = "id, title, type, content, citation, is_public, owner_id, metadata, created_at"

const chunkColumns = "id, document_id, chunk_index, content, embedding, metadata"

// CreateDocument inserts doc, assigning an ID and creation time when unset.
func (s *Store) CreateDocument(ctx context.Context, doc *domain.Document) (string, error) {
	if doc == nil {
		return "", domain.ErrInvalidInput
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	meta, err := encodeMetadata(doc.Metadata)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents ("+documentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		doc.ID, doc.Title, string(doc.Type), doc.Content, doc.Citation,
		doc.Public, doc.OwnerID, meta, doc.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("inserting document %s: %w", doc.ID, err)
	}
	return doc.ID, nil
}

// CreateChunks inserts all chunks in one transaction; either all are stored
// or none.
func (s *Store) CreateChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks ("+chunkColumns+") VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range chunks {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		meta, err := encodeMetadata(c.Metadata)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, id, documentID, c.Index, c.Content, encodeVector(c.Embedding), meta); err != nil {
			return fmt.Errorf("inserting chunk %d of %s: %w", c.Index, documentID, err)
		}
	}
	return tx.Commit()
}

// DeleteDocument removes a document and, by cascade, its chunks.
// Deleting a missing document is not an error.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	return nil
}

// ListCandidateDocuments returns the documents the filter can see, oldest
// first.
func (s *Store) ListCandidateDocuments(ctx context.Context, filter domain.CorpusFilter) ([]domain.Document, error) {
	query, args := candidateQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// GetDocument returns domain.ErrNotFound for an unknown ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return doc, err
}

// GetChunks returns a document's chunks by ascending index.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE document_id = ? ORDER BY chunk_index", documentID)
	if err != nil {
		return nil, fmt.Errorf("listing chunks of %s: %w", documentID, err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var (
			c      domain.Chunk
			vector []byte
			meta   string
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Content, &vector, &meta); err != nil {
			return nil, err
		}
		c.Embedding = decodeVector(vector)
		if c.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// candidateQuery selects public documents, plus the owner's private ones
// unless PublicOnly is set, narrowed by type and ID lists.
func candidateQuery(filter domain.CorpusFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	if filter.OwnerID != "" && !filter.PublicOnly {
		where = append(where, "(is_public = 1 OR owner_id = ?)")
		args = append(args, filter.OwnerID)
	} else {
		where = append(where, "is_public = 1")
	}

	if n := len(filter.Types); n > 0 {
		where = append(where, "type IN ("+placeholders(n)+")")
		for _, t := range filter.Types {
			args = append(args, string(t))
		}
	}
	if n := len(filter.DocumentIDs); n > 0 {
		where = append(where, "id IN ("+placeholders(n)+")")
		for _, id := range filter.DocumentIDs {
			args = append(args, id)
		}
	}

	return "SELECT " + documentColumns + " FROM documents WHERE " +
		strings.Join(where, " AND ") + " ORDER BY created_at, id", args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument reads a row selected with documentColumns. sql.ErrNoRows
// comes back unwrapped.
func scanDocument(row rowScanner) (*domain.Document, error) {
	var (
		doc     domain.Document
		docType string
		meta    string
	)
	if err := row.Scan(&doc.ID, &doc.Title, &docType, &doc.Content, &doc.Citation,
		&doc.Public, &doc.OwnerID, &meta, &doc.CreatedAt); err != nil {
		return nil, err
	}
	doc.Type = domain.DocumentType(docType)

	var err error
	if doc.Metadata, err = decodeMetadata(meta); err != nil {
		return nil, err
	}
	return &doc, nil
}
