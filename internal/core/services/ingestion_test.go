package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/extractors"
	"github.com/custodia-labs/lexis/internal/postprocessors"
	"github.com/custodia-labs/lexis/internal/postprocessors/chunker"
	"github.com/custodia-labs/lexis/internal/postprocessors/stats"
)

func newTestPipeline(store driven.DocumentStore, embedder driven.EmbeddingService) *IngestionPipeline {
	return NewIngestionPipeline(
		store,
		extractors.NewDefaultRegistry(),
		postprocessors.NewPipeline(chunker.New(), stats.New()),
		embedder,
		time.Minute,
	)
}

func TestIngestionPipeline_ShortTextIsOneChunk(t *testing.T) {
	store := memory.NewDocumentStore()
	pipeline := newTestPipeline(store, newKeywordEmbedder("hello", "world"))
	ctx := context.Background()

	result, err := pipeline.Ingest(ctx, domain.Upload{
		FileName: "greeting.txt",
		Content:  []byte("  Hello world.  \n"),
		OwnerID:  "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ChunkCount)
	assert.Equal(t, "greeting", result.Document.Title)
	assert.Equal(t, domain.DocumentTypeCase, result.Document.Type)
	assert.False(t, result.Document.Public)
	assert.Equal(t, "Hello world.", result.Document.Content)

	meta := result.Document.Metadata
	assert.Equal(t, "greeting.txt", meta[domain.MetaFileName])
	assert.Equal(t, "txt", meta[domain.MetaFileType])
	assert.Equal(t, 17, meta[domain.MetaFileSize])
	assert.Equal(t, 1, meta[domain.MetaChunkCount])
	assert.NotEmpty(t, meta[domain.MetaProcessedAt])

	chunks, err := store.GetChunks(ctx, result.Document.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hello world.", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, result.Document.ID, chunks[0].DocumentID)
	assert.Equal(t, []float32{1, 1}, chunks[0].Embedding)
	assert.Equal(t, 2, chunks[0].Metadata[domain.MetaWordCount])
}

func TestIngestionPipeline_UsesUploadFields(t *testing.T) {
	store := memory.NewDocumentStore()
	pipeline := newTestPipeline(store, newKeywordEmbedder("act"))

	result, err := pipeline.Ingest(context.Background(), domain.Upload{
		FileName: "companies_act.txt",
		Content:  []byte("Companies Act 2006."),
		Title:    "Companies Act 2006",
		Type:     domain.DocumentTypeStatute,
		Citation: "2006 c. 46",
		Public:   true,
	})
	require.NoError(t, err)

	stored, err := store.GetDocument(context.Background(), result.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, "Companies Act 2006", stored.Title)
	assert.Equal(t, domain.DocumentTypeStatute, stored.Type)
	assert.Equal(t, "2006 c. 46", stored.Citation)
	assert.True(t, stored.Public)
}

func TestIngestionPipeline_LongTextProducesOrderedChunks(t *testing.T) {
	store := memory.NewDocumentStore()
	pipeline := newTestPipeline(store, newKeywordEmbedder("a"))

	result, err := pipeline.Ingest(context.Background(), domain.Upload{
		FileName: "long.txt",
		Content:  []byte(strings.Repeat("a", 2500)),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.ChunkCount)

	chunks, err := store.GetChunks(context.Background(), result.Document.ID)
	require.NoError(t, err)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestIngestionPipeline_Failures(t *testing.T) {
	pdfRegistry := extractors.NewRegistry(stubExtractor{fileType: domain.FileTypePDF, text: " \n\t "})
	brokenRegistry := extractors.NewRegistry(stubExtractor{
		fileType: domain.FileTypeDOCX,
		err:      errors.New("zip: not a valid zip file"),
	})

	tests := []struct {
		name       string
		upload     domain.Upload
		registry   driven.ExtractorRegistry
		processors driven.PostProcessorPipeline
		embedErr   error
		wantErr    error
		wantEmbeds bool
	}{
		{
			name:    "unsupported file type",
			upload:  domain.Upload{FileName: "brief.rtf", Content: []byte("text")},
			wantErr: domain.ErrUnsupportedFileType,
		},
		{
			name:     "pdf without text",
			upload:   domain.Upload{FileName: "scan.pdf", Content: []byte("%PDF-1.4")},
			registry: pdfRegistry,
			wantErr:  domain.ErrNoExtractableText,
		},
		{
			name:    "whitespace text file",
			upload:  domain.Upload{FileName: "blank.txt", Content: []byte("   \n\n  ")},
			wantErr: domain.ErrNoExtractableText,
		},
		{
			name:     "corrupt docx",
			upload:   domain.Upload{FileName: "broken.docx", Content: []byte("nope")},
			registry: brokenRegistry,
			wantErr:  domain.ErrExtractionFailed,
		},
		{
			name:       "invalid chunk parameters",
			upload:     domain.Upload{FileName: "a.txt", Content: []byte("Some text.")},
			processors: postprocessors.NewPipeline(chunker.New(chunker.WithChunkSize(10), chunker.WithOverlap(10))),
			wantErr:    domain.ErrInvalidChunkParameters,
		},
		{
			name:       "embedding failure",
			upload:     domain.Upload{FileName: "a.txt", Content: []byte("Some text.")},
			embedErr:   errors.New("connection refused"),
			wantErr:    domain.ErrEmbeddingService,
			wantEmbeds: true,
		},
		{
			name:    "invalid document type",
			upload:  domain.Upload{FileName: "a.txt", Content: []byte("Some text."), Type: "opinion"},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewDocumentStore()
			embedder := newKeywordEmbedder("text")
			embedder.err = tt.embedErr

			registry := tt.registry
			if registry == nil {
				registry = extractors.NewDefaultRegistry()
			}
			processors := tt.processors
			if processors == nil {
				processors = postprocessors.NewPipeline(chunker.New())
			}

			pipeline := NewIngestionPipeline(store, registry, processors, embedder, time.Minute)
			result, err := pipeline.Ingest(context.Background(), tt.upload)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)
			assert.Equal(t, tt.wantEmbeds, embedder.callCount() > 0)

			docs, err := store.ListCandidateDocuments(context.Background(), domain.CorpusFilter{})
			require.NoError(t, err)
			assert.Empty(t, docs)
		})
	}
}

func TestIngestionPipeline_ChunkWriteFailureRemovesDocument(t *testing.T) {
	store := &faultyStore{DocumentStore: memory.NewDocumentStore(), chunksErr: errors.New("disk full")}
	pipeline := newTestPipeline(store, newKeywordEmbedder("text"))

	_, err := pipeline.Ingest(context.Background(), domain.Upload{
		FileName: "a.txt",
		Content:  []byte("Some text."),
		Public:   true,
	})
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, domain.CodePersistence, domain.ErrorCode(err))

	docs, err := store.ListCandidateDocuments(context.Background(), domain.CorpusFilter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngestionPipeline_TimeoutRemovesDocument(t *testing.T) {
	store := &faultyStore{DocumentStore: memory.NewDocumentStore(), blockChunks: true}
	pipeline := NewIngestionPipeline(
		store,
		extractors.NewDefaultRegistry(),
		postprocessors.NewPipeline(chunker.New()),
		newKeywordEmbedder("text"),
		20*time.Millisecond,
	)

	_, err := pipeline.Ingest(context.Background(), domain.Upload{
		FileName: "a.txt",
		Content:  []byte("Some text."),
		Public:   true,
	})
	require.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, domain.CodeTimeout, domain.ErrorCode(err))

	docs, err := store.ListCandidateDocuments(context.Background(), domain.CorpusFilter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngestionPipeline_CreateDocumentTimeoutRemovesDocument(t *testing.T) {
	store := &faultyStore{DocumentStore: memory.NewDocumentStore(), createErr: context.DeadlineExceeded}
	pipeline := NewIngestionPipeline(
		store,
		extractors.NewDefaultRegistry(),
		postprocessors.NewPipeline(chunker.New()),
		newKeywordEmbedder("text"),
		time.Minute,
	)

	_, err := pipeline.Ingest(context.Background(), domain.Upload{
		FileName: "a.txt",
		Content:  []byte("Some text."),
		Public:   true,
	})
	require.ErrorIs(t, err, domain.ErrTimeout)

	docs, err := store.ListCandidateDocuments(context.Background(), domain.CorpusFilter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngestionPipeline_NoEmbeddingService(t *testing.T) {
	pipeline := newTestPipeline(memory.NewDocumentStore(), nil)

	_, err := pipeline.Ingest(context.Background(), domain.Upload{FileName: "a.txt", Content: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
