package cli

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// mockIngestionService records uploads and fails for names in failFor.
type mockIngestionService struct {
	mu      sync.Mutex
	uploads []domain.Upload
	failFor map[string]error
}

func (m *mockIngestionService) Ingest(_ context.Context, upload domain.Upload) (*driving.IngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[upload.FileName]; ok {
		return nil, err
	}
	m.uploads = append(m.uploads, upload)
	return &driving.IngestResult{
		Document:   domain.Document{ID: "doc-" + upload.FileName, Title: upload.Title},
		ChunkCount: 2,
	}, nil
}

func (m *mockIngestionService) received() []domain.Upload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Upload(nil), m.uploads...)
}

type mockRetrievalService struct {
	results  []domain.RetrievalCandidate
	err      error
	query    string
	lastOpts domain.RetrievalOptions
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context, query string, opts domain.RetrievalOptions,
) ([]domain.RetrievalCandidate, error) {
	m.query = query
	m.lastOpts = opts
	return m.results, m.err
}

type mockAnswerService struct {
	answer   *driving.Answer
	err      error
	lastOpts domain.RetrievalOptions
}

func (m *mockAnswerService) Ask(_ context.Context, _ string, opts domain.RetrievalOptions) (*driving.Answer, error) {
	m.lastOpts = opts
	return m.answer, m.err
}

type mockDocumentService struct {
	deleted    []string
	lastFilter domain.CorpusFilter
}

var testDocuments = []domain.Document{
	{
		ID: "doc-1", Title: "Test Document 1", Type: domain.DocumentTypeCase,
		Citation: "[2020] UKSC 1", Public: true, CreatedAt: testTime,
	},
	{
		ID: "doc-2", Title: "Test Document 2", Type: domain.DocumentTypeStatute,
		OwnerID: "alice", CreatedAt: testTime,
	},
}

func (m *mockDocumentService) List(_ context.Context, filter domain.CorpusFilter) ([]domain.Document, error) {
	m.lastFilter = filter
	var out []domain.Document
	for i := range testDocuments {
		if filter.Matches(&testDocuments[i]) {
			out = append(out, testDocuments[i])
		}
	}
	return out, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range testDocuments {
		if testDocuments[i].ID == id {
			doc := testDocuments[i]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) GetContent(ctx context.Context, id string) (string, error) {
	if _, err := m.Get(ctx, id); err != nil {
		return "", err
	}
	return "Full content of " + id, nil
}

func (m *mockDocumentService) GetDetails(ctx context.Context, id string) (*driving.DocumentDetails, error) {
	doc, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &driving.DocumentDetails{
		ID:         doc.ID,
		Title:      doc.Title,
		Type:       doc.Type,
		Citation:   doc.Citation,
		Public:     doc.Public,
		OwnerID:    doc.OwnerID,
		ChunkCount: 4,
		CreatedAt:  doc.CreatedAt,
		Metadata:   map[string]string{"file_type": "pdf", "chunk_count": "4"},
	}, nil
}

func (m *mockDocumentService) Delete(ctx context.Context, id string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	embedding   []string
	llm         []string
	pingErr     error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.embedding = []string{string(p), model, apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.llm = []string{string(p), model, apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error                   { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings   { return domain.DefaultAppSettings() }
func (m *mockSettingsService) GetPipelineConfig() domain.PipelineConfig {
	return domain.DefaultPipelineConfig()
}
func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }
func (m *mockSettingsService) ValidateLLMConfig() error       { return m.pingErr }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingestion *mockIngestionService
	retrieval *mockRetrievalService
	answer    *mockAnswerService
	document  *mockDocumentService
	settings  *mockSettingsService
	config    *memory.ConfigStore
}

// setupTestServices installs mock services and resets command flags.
// The returned function restores the previous state.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ingestion: &mockIngestionService{},
		retrieval: &mockRetrievalService{},
		answer:    &mockAnswerService{},
		document:  &mockDocumentService{},
		settings:  &mockSettingsService{settings: domain.DefaultAppSettings()},
		config:    memory.NewConfigStore(),
	}

	SetServices(Services{
		Ingestion:   ts.ingestion,
		Retrieval:   ts.retrieval,
		Answer:      ts.answer,
		Document:    ts.document,
		Settings:    ts.settings,
		ConfigStore: ts.config,
	})
	resetFlags()

	return ts, func() {
		SetServices(Services{})
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

func resetFlags() {
	ingestFlags = uploadFlags{docType: string(domain.DocumentTypeCase)}
	watchFlags = uploadFlags{docType: string(domain.DocumentTypeCase)}
	retrieveFlags = retrievalFlags{}
	askFlags = retrievalFlags{}
	retrieveJSON = false
	documentListUser = ""
	documentListType = ""
	serveAddr = ""
	versionShort = false
	mcpPort = 0
	serveMCP = false
}

// execute runs the root command with args and returns its combined output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// safeBuffer is a bytes.Buffer safe for concurrent writers.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
