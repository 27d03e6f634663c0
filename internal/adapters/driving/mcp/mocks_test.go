package mcp

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.RetrievalCandidate
	err     error

	lastQuery string
	lastOpts  domain.RetrievalOptions
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context,
	query string,
	opts domain.RetrievalOptions,
) ([]domain.RetrievalCandidate, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *driving.Answer
	err    error
}

func (m *mockAnswerService) Ask(_ context.Context, _ string, _ domain.RetrievalOptions) (*driving.Answer, error) {
	return m.answer, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents  []domain.Document
	document   *domain.Document
	content    string
	details    *driving.DocumentDetails
	err        error
	lastFilter domain.CorpusFilter
}

func (m *mockDocumentService) List(_ context.Context, filter domain.CorpusFilter) ([]domain.Document, error) {
	m.lastFilter = filter
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) GetDetails(_ context.Context, _ string) (*driving.DocumentDetails, error) {
	return m.details, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}
