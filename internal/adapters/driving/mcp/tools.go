package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query       string   `json:"query" jsonschema:"the legal question or topic to find excerpts for"`
	UserID      string   `json:"user_id,omitempty" jsonschema:"include this user's private documents"`
	Types       []string `json:"types,omitempty" jsonschema:"limit to document types: case, statute, regulation, practice_note, template"`
	TopK        int      `json:"top_k,omitempty" jsonschema:"maximum number of excerpts to return (default 5)"`
	MinScore    *float64 `json:"min_score,omitempty" jsonschema:"exclusive minimum cosine similarity (default 0.7; 0 keeps any positive match)"`
	Granularity string   `json:"granularity,omitempty" jsonschema:"chunk (default) or document"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []CandidateOutput `json:"results"`
	Count   int               `json:"count"`
}

// CandidateOutput represents a single ranked excerpt.
type CandidateOutput struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Title      string  `json:"title"`
	Type       string  `json:"type"`
	Citation   string  `json:"citation,omitempty"`
	Score      float64 `json:"score"`
	Excerpt    string  `json:"excerpt"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the legal question to answer"`
	UserID   string `json:"user_id,omitempty" jsonschema:"include this user's private documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string            `json:"answer"`
	Sources []CandidateOutput `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the most relevant excerpts from the legal document library",
	}, s.handleRetrieve)

	if s.answers != nil {
		mcp.AddTool(s.mcp, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a legal question grounded in the document library",
		}, s.handleAsk)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	types := make([]domain.DocumentType, 0, len(input.Types))
	for _, t := range input.Types {
		types = append(types, domain.DocumentType(t))
	}

	opts := domain.RetrievalOptions{
		Filter:      domain.CorpusFilter{OwnerID: input.UserID, Types: types},
		TopK:        input.TopK,
		Granularity: domain.Granularity(input.Granularity),
	}
	if input.MinScore != nil {
		opts.MinScore, opts.MinScoreSet = *input.MinScore, true
	}
	results, err := s.retrieval.Retrieve(ctx, input.Query, opts)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{Results: toOutputs(results), Count: len(results)}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	opts := domain.RetrievalOptions{Filter: domain.CorpusFilter{OwnerID: input.UserID}}
	answer, err := s.answers.Ask(ctx, input.Question, opts)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer.Text, Sources: toOutputs(answer.Sources)}, nil
}

func toOutputs(candidates []domain.RetrievalCandidate) []CandidateOutput {
	out := make([]CandidateOutput, len(candidates))
	for i, c := range candidates {
		out[i] = CandidateOutput{
			ID:         c.ID,
			DocumentID: c.DocumentID,
			ChunkIndex: c.ChunkIndex,
			Title:      c.Title,
			Type:       c.Type.String(),
			Citation:   c.Citation,
			Score:      c.Score,
			Excerpt:    c.Excerpt,
		}
	}
	return out
}
