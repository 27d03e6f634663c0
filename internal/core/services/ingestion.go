package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure IngestionPipeline implements the interface.
var _ driving.IngestionService = (*IngestionPipeline)(nil)

// Stage names an ingestion state.
type Stage string

// Ingestion states, in order. A failure at any stage ends in StageFailed.
const (
	StageReceived  Stage = "received"
	StageExtracted Stage = "extracted"
	StageChunked   Stage = "chunked"
	StageEmbedded  Stage = "embedded"
	StagePersisted Stage = "persisted"
	StageFailed    Stage = "failed"
)

// IngestionPipeline extracts, chunks, embeds and stores uploaded files.
type IngestionPipeline struct {
	docStore         driven.DocumentStore
	extractors       driven.ExtractorRegistry
	pipeline         driven.PostProcessorPipeline
	embeddingService driven.EmbeddingService
	timeout          time.Duration
	now              func() time.Time
}

// NewIngestionPipeline creates a new ingestion pipeline.
// A zero timeout leaves deadlines to the caller's context.
func NewIngestionPipeline(
	docStore driven.DocumentStore,
	extractors driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	embeddingService driven.EmbeddingService,
	timeout time.Duration,
) *IngestionPipeline {
	return &IngestionPipeline{
		docStore:         docStore,
		extractors:       extractors,
		pipeline:         pipeline,
		embeddingService: embeddingService,
		timeout:          timeout,
		now:              time.Now,
	}
}

// Ingest runs an upload through every stage. The document row is written
// before its chunks; if anything fails after that write the document is
// removed again, so either everything is stored or nothing is.
func (p *IngestionPipeline) Ingest(ctx context.Context, upload domain.Upload) (*driving.IngestResult, error) {
	logger.Section("Ingest " + upload.FileName)
	logStage(StageReceived, "%d bytes", len(upload.Content))

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	result, err := p.ingest(ctx, upload)
	if err != nil {
		logStage(StageFailed, "%s: %v", domain.ErrorCode(err), err)
		return nil, err
	}
	logStage(StagePersisted, "document %s with %d chunks", result.Document.ID, result.ChunkCount)
	return result, nil
}

func (p *IngestionPipeline) ingest(ctx context.Context, upload domain.Upload) (*driving.IngestResult, error) {
	if p.embeddingService == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	docType := upload.Type
	if docType == "" {
		docType = domain.DocumentTypeCase
	}
	if !docType.IsValid() {
		return nil, fmt.Errorf("%w: document type %q", domain.ErrInvalidInput, docType)
	}

	fileType, err := domain.FileTypeFromName(upload.FileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, upload.FileName)
	}

	// Extract
	text, err := p.extractors.Extract(ctx, upload.Content, fileType)
	if err != nil {
		return nil, stageError(ctx, StageExtracted, nil, err)
	}
	logStage(StageExtracted, "%d characters of %s", len(text), fileType)

	title := upload.Title
	if title == "" {
		title = domain.TitleFromFileName(upload.FileName)
	}
	doc := &domain.Document{
		ID:        uuid.New().String(),
		Title:     title,
		Type:      docType,
		Content:   text,
		Citation:  upload.Citation,
		Public:    upload.Public,
		OwnerID:   upload.OwnerID,
		CreatedAt: p.now(),
	}

	// Chunk
	chunks, err := p.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, stageError(ctx, StageChunked, nil, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: chunking produced no chunks", domain.ErrNoExtractableText)
	}
	logStage(StageChunked, "%d chunks", len(chunks))

	// Embed
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := p.embeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, stageError(ctx, StageEmbedded, domain.ErrEmbeddingService, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingService, len(vectors), len(chunks))
	}
	for i := range chunks {
		if chunks[i].ID == "" {
			chunks[i].ID = uuid.New().String()
		}
		chunks[i].DocumentID = doc.ID
		chunks[i].Embedding = vectors[i]
	}
	logStage(StageEmbedded, "%d vectors from %s", len(vectors), p.embeddingService.ModelName())

	doc.Metadata = map[string]any{
		domain.MetaFileName:    upload.FileName,
		domain.MetaFileSize:    len(upload.Content),
		domain.MetaFileType:    fileType.String(),
		domain.MetaChunkCount:  len(chunks),
		domain.MetaProcessedAt: p.now().UTC().Format(time.RFC3339),
	}

	// Persist
	if err := ctx.Err(); err != nil {
		return nil, stageError(ctx, StagePersisted, domain.ErrPersistence, err)
	}
	if _, err := p.docStore.CreateDocument(ctx, doc); err != nil {
		// The write may have landed before the error surfaced.
		p.cleanup(ctx, doc.ID)
		return nil, stageError(ctx, StagePersisted, domain.ErrPersistence, err)
	}
	if err := p.docStore.CreateChunks(ctx, doc.ID, chunks); err != nil {
		p.cleanup(ctx, doc.ID)
		return nil, stageError(ctx, StagePersisted, domain.ErrPersistence, err)
	}

	return &driving.IngestResult{Document: *doc, ChunkCount: len(chunks)}, nil
}

// cleanup removes a partially stored document. It runs even when ctx has
// been cancelled or has timed out.
func (p *IngestionPipeline) cleanup(ctx context.Context, documentID string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := p.docStore.DeleteDocument(cleanupCtx, documentID); err != nil {
		logger.Warn("failed to remove partial document %s: %v", documentID, err)
		return
	}
	logger.Debug("removed partial document %s", documentID)
}

// stageError tags err for the stage it happened in. Deadlines always become
// domain.ErrTimeout. A nil tag keeps err as it is; the extractor registry
// and the chunker already tag their own failures.
func stageError(ctx context.Context, stage Stage, tag, err error) error {
	if errors.Is(err, domain.ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", domain.ErrTimeout, stage, err)
	}
	if tag == nil || errors.Is(err, tag) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", tag, err)
}

func logStage(stage Stage, format string, args ...any) {
	logger.Debug("[%s] "+format, append([]any{stage}, args...)...)
}
