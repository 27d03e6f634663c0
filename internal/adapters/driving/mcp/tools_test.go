package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
)

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ranked excerpts", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{
			results: []domain.RetrievalCandidate{
				{
					ID:         "chunk-1",
					DocumentID: "doc-1",
					ChunkIndex: 2,
					Title:      "Carlill v Carbolic",
					Type:       domain.DocumentTypeCase,
					Citation:   "[1893] 1 QB 256",
					Score:      0.91,
					Excerpt:    "The offer was made to the world.",
				},
			},
		}

		server, err := New(mockRetrieval)
		require.NoError(t, err)

		minScore := 0.5
		input := RetrieveInput{
			Query:       "unilateral offer",
			UserID:      "alice",
			Types:       []string{"case"},
			TopK:        3,
			MinScore:    &minScore,
			Granularity: "document",
		}
		_, output, err := server.handleRetrieve(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "chunk-1", output.Results[0].ID)
		assert.Equal(t, "doc-1", output.Results[0].DocumentID)
		assert.Equal(t, 2, output.Results[0].ChunkIndex)
		assert.Equal(t, "case", output.Results[0].Type)
		assert.Equal(t, "[1893] 1 QB 256", output.Results[0].Citation)
		assert.Equal(t, 0.91, output.Results[0].Score)

		assert.Equal(t, "unilateral offer", mockRetrieval.lastQuery)
		assert.Equal(t, "alice", mockRetrieval.lastOpts.Filter.OwnerID)
		assert.Equal(t, []domain.DocumentType{domain.DocumentTypeCase}, mockRetrieval.lastOpts.Filter.Types)
		assert.Equal(t, 3, mockRetrieval.lastOpts.TopK)
		assert.InDelta(t, 0.5, mockRetrieval.lastOpts.MinScore, 1e-9)
		assert.True(t, mockRetrieval.lastOpts.MinScoreSet)
		assert.Equal(t, domain.GranularityDocument, mockRetrieval.lastOpts.Granularity)
	})

	t.Run("explicit zero min score", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{}
		server, err := New(mockRetrieval)
		require.NoError(t, err)

		zero := 0.0
		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: "offer", MinScore: &zero})
		require.NoError(t, err)
		assert.Equal(t, 0.0, mockRetrieval.lastOpts.MinScore)
		assert.True(t, mockRetrieval.lastOpts.MinScoreSet)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: "offer"})
		require.NoError(t, err)
		assert.False(t, mockRetrieval.lastOpts.MinScoreSet)
	})

	t.Run("empty result", func(t *testing.T) {
		server, err := New(&mockRetrievalService{})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "test"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Results)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{err: errors.New("persistence error: disk")}
		server, err := New(mockRetrieval)
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: "test"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "persistence error")
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	mockAnswer := &mockAnswerService{answer: &driving.Answer{
		Text:    "Yes, the offer was accepted by performance.",
		Sources: []domain.RetrievalCandidate{{DocumentID: "doc-1", Title: "Carlill v Carbolic"}},
	}}
	server, err := New(&mockRetrievalService{}, WithAnswers(mockAnswer))
	require.NoError(t, err)

	_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "Was there a contract?"})
	require.NoError(t, err)
	assert.Equal(t, "Yes, the offer was accepted by performance.", output.Answer)
	require.Len(t, output.Sources, 1)
	assert.Equal(t, "doc-1", output.Sources[0].DocumentID)

	mockAnswer.err = domain.ErrLLMUnavailable
	_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "x"})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestServer_ToolsOverTransport(t *testing.T) {
	ctx := context.Background()

	mockRetrieval := &mockRetrievalService{
		results: []domain.RetrievalCandidate{{ID: "c1", DocumentID: "d1", Title: "Donoghue v Stevenson", Score: 0.8}},
	}
	server, err := New(mockRetrieval)
	require.NoError(t, err)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.mcp.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "retrieve",
		Arguments: map[string]any{"query": "duty of care"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "duty of care", mockRetrieval.lastQuery)
}
