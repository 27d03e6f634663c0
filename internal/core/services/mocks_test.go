package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// keywordEmbedder maps text to a vector of keyword counts, so similarity
// between texts follows the keywords they share.
type keywordEmbedder struct {
	keywords []string
	err      error

	mu    sync.Mutex
	calls int
}

func newKeywordEmbedder(keywords ...string) *keywordEmbedder {
	return &keywordEmbedder{keywords: keywords}
}

func (e *keywordEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(e.keywords))
	for i, k := range e.keywords {
		v[i] = float32(strings.Count(lower, k))
	}
	return v
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *keywordEmbedder) Dimensions() int            { return len(e.keywords) }
func (e *keywordEmbedder) ModelName() string          { return "keywords" }
func (e *keywordEmbedder) Ping(context.Context) error { return nil }
func (e *keywordEmbedder) Close() error               { return nil }

func (e *keywordEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// faultyStore wraps the memory store and fails selected operations.
type faultyStore struct {
	*memory.DocumentStore
	createErr error
	chunksErr error
	listErr   error
	getErr    error
	// blockChunks makes CreateChunks wait until its context is done.
	blockChunks bool
}

// CreateDocument stores the document and then reports createErr, like a
// write that commits before its acknowledgement is lost.
func (s *faultyStore) CreateDocument(ctx context.Context, doc *domain.Document) (string, error) {
	id, err := s.DocumentStore.CreateDocument(ctx, doc)
	if err != nil {
		return "", err
	}
	if s.createErr != nil {
		return "", s.createErr
	}
	return id, nil
}

func (s *faultyStore) CreateChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if s.blockChunks {
		<-ctx.Done()
		return ctx.Err()
	}
	if s.chunksErr != nil {
		return s.chunksErr
	}
	return s.DocumentStore.CreateChunks(ctx, documentID, chunks)
}

func (s *faultyStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.DocumentStore.GetDocument(ctx, id)
}

func (s *faultyStore) ListCandidateDocuments(ctx context.Context, filter domain.CorpusFilter) ([]domain.Document, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.DocumentStore.ListCandidateDocuments(ctx, filter)
}

// stubExtractor returns fixed text for one file type.
type stubExtractor struct {
	fileType domain.FileType
	text     string
	err      error
}

func (e stubExtractor) FileType() domain.FileType { return e.fileType }

func (e stubExtractor) Extract(context.Context, []byte) (string, error) {
	return e.text, e.err
}

// mockChat records the prompts it receives.
type mockChat struct {
	reply  string
	err    error
	system string
	user   string
}

func (m *mockChat) Complete(_ context.Context, system, user string, _ driven.ChatOptions) (string, error) {
	m.system = system
	m.user = user
	return m.reply, m.err
}

func (m *mockChat) ModelName() string          { return "mock-chat" }
func (m *mockChat) Ping(context.Context) error { return nil }
func (m *mockChat) Close() error               { return nil }

// mapPrompts serves prompts from a map.
type mapPrompts map[string]string

func (p mapPrompts) Load(name string) (string, error) {
	if prompt, ok := p[name]; ok {
		return prompt, nil
	}
	return "", errors.New("unknown prompt")
}

func (p mapPrompts) Reload() {}

var testPrompts = mapPrompts{
	driven.PromptAnswerSystem:     "Answer from these sources:\n%s",
	driven.PromptAnswerUngrounded: "No sources matched.",
}
