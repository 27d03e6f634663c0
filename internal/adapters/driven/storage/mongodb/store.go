// Package mongodb provides a MongoDB implementation of the DocumentStore port.
//
// Documents and chunks live in two collections keyed by string IDs.
// Chunk vectors are stored as float arrays and scored in process, so a plain
// MongoDB deployment works without Atlas Vector Search.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Collection names.
const (
	DocumentsCollection = "documents"
	ChunksCollection    = "chunks"
)

const connectTimeout = 10 * time.Second

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Config holds MongoDB connection settings.
type Config struct {
	// URI is the connection string, e.g. mongodb://localhost:27017.
	URI string

	// Database is the database name (default: lexis).
	Database string
}

// Store is a MongoDB-backed DocumentStore.
type Store struct {
	client    *mongo.Client
	documents *mongo.Collection
	chunks    *mongo.Collection
}

type documentRecord struct {
	ID        string         `bson:"_id"`
	Title     string         `bson:"title"`
	Type      string         `bson:"type"`
	Content   string         `bson:"content"`
	Citation  string         `bson:"citation"`
	Public    bool           `bson:"is_public"`
	OwnerID   string         `bson:"owner_id"`
	Metadata  map[string]any `bson:"metadata,omitempty"`
	CreatedAt time.Time      `bson:"created_at"`
}

type chunkRecord struct {
	ID         string         `bson:"_id"`
	DocumentID string         `bson:"document_id"`
	Index      int            `bson:"chunk_index"`
	Content    string         `bson:"content"`
	Embedding  []float32      `bson:"embedding"`
	Metadata   map[string]any `bson:"metadata,omitempty"`
}

// NewStore connects to MongoDB, verifies the connection and ensures indexes.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb: %w: connection URI is required", domain.ErrInvalidInput)
	}
	if cfg.Database == "" {
		cfg.Database = "lexis"
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:    client,
		documents: db.Collection(DocumentsCollection),
		chunks:    db.Collection(ChunksCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Debug("connected to MongoDB database %s", cfg.Database)
	return s, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.chunks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "document_id", Value: 1}, {Key: "chunk_index", Value: 1}},
		Options: options.Index().SetName("document_chunk").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongodb: creating chunk index: %w", err)
	}

	_, err = s.documents.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "is_public", Value: 1}, {Key: "type", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongodb: creating document indexes: %w", err)
	}
	return nil
}

// CreateDocument stores a new document. An empty ID is assigned here.
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

	if _, err := s.documents.InsertOne(ctx, toDocumentRecord(doc)); err != nil {
		return "", fmt.Errorf("saving document: %w", err)
	}
	return doc.ID, nil
}

// CreateChunks inserts all chunks. Standalone servers have no multi-document
// transactions, so a failed insert removes whatever was written.
func (s *Store) CreateChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	records := make([]any, len(chunks))
	for i := range chunks {
		records[i] = toChunkRecord(documentID, chunks[i])
	}

	if _, err := s.chunks.InsertMany(ctx, records); err != nil {
		if _, cleanupErr := s.chunks.DeleteMany(context.WithoutCancel(ctx), bson.M{"document_id": documentID}); cleanupErr != nil {
			logger.Warn("mongodb: removing partial chunks for %s: %v", documentID, cleanupErr)
		}
		return fmt.Errorf("saving chunks: %w", err)
	}
	return nil
}

// DeleteDocument removes the chunks first so a failure never leaves
// chunks without a document.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.chunks.DeleteMany(ctx, bson.M{"document_id": id}); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := s.documents.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListCandidateDocuments returns the documents visible under the filter,
// oldest first.
func (s *Store) ListCandidateDocuments(ctx context.Context, filter domain.CorpusFilter) ([]domain.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.documents.Find(ctx, candidateFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer cursor.Close(ctx)

	var records []documentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}

	docs := make([]domain.Document, len(records))
	for i := range records {
		docs[i] = records[i].toDomain()
	}
	return docs, nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	var record documentRecord
	err := s.documents.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	doc := record.toDomain()
	return &doc, nil
}

// GetChunks retrieves all chunks for a document ordered by index.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	opts := options.Find().SetSort(bson.D{{Key: "chunk_index", Value: 1}})

	cursor, err := s.chunks.Find(ctx, bson.M{"document_id": documentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer cursor.Close(ctx)

	var records []chunkRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decoding chunks: %w", err)
	}

	chunks := make([]domain.Chunk, len(records))
	for i := range records {
		chunks[i] = records[i].toDomain()
	}
	return chunks, nil
}

// candidateFilter translates the visibility rules into a query document.
func candidateFilter(filter domain.CorpusFilter) bson.M {
	query := bson.M{}

	if filter.OwnerID != "" && !filter.PublicOnly {
		query["$or"] = bson.A{
			bson.M{"is_public": true},
			bson.M{"owner_id": filter.OwnerID},
		}
	} else {
		query["is_public"] = true
	}

	if len(filter.Types) > 0 {
		types := make(bson.A, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		query["type"] = bson.M{"$in": types}
	}

	if len(filter.DocumentIDs) > 0 {
		query["_id"] = bson.M{"$in": filter.DocumentIDs}
	}

	return query
}

func toDocumentRecord(doc *domain.Document) documentRecord {
	return documentRecord{
		ID:        doc.ID,
		Title:     doc.Title,
		Type:      string(doc.Type),
		Content:   doc.Content,
		Citation:  doc.Citation,
		Public:    doc.Public,
		OwnerID:   doc.OwnerID,
		Metadata:  doc.Metadata,
		CreatedAt: doc.CreatedAt,
	}
}

func (r documentRecord) toDomain() domain.Document {
	return domain.Document{
		ID:        r.ID,
		Title:     r.Title,
		Type:      domain.DocumentType(r.Type),
		Content:   r.Content,
		Citation:  r.Citation,
		Public:    r.Public,
		OwnerID:   r.OwnerID,
		Metadata:  r.Metadata,
		CreatedAt: r.CreatedAt,
	}
}

func toChunkRecord(documentID string, c domain.Chunk) chunkRecord {
	id := c.ID
	if id == "" {
		id = uuid.New().String()
	}
	return chunkRecord{
		ID:         id,
		DocumentID: documentID,
		Index:      c.Index,
		Content:    c.Content,
		Embedding:  c.Embedding,
		Metadata:   c.Metadata,
	}
}

func (r chunkRecord) toDomain() domain.Chunk {
	return domain.Chunk{
		ID:         r.ID,
		DocumentID: r.DocumentID,
		Index:      r.Index,
		Content:    r.Content,
		Embedding:  r.Embedding,
		Metadata:   r.Metadata,
	}
}
