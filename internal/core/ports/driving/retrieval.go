package driving

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// RetrievalService ranks stored chunks or documents against a query.
type RetrievalService interface {
	// Retrieve returns at most opts.TopK candidates scoring above opts.MinScore.
	// An embedding failure yields an empty result, not an error.
	Retrieve(ctx context.Context, query string, opts domain.RetrievalOptions) ([]domain.RetrievalCandidate, error)
}

// AnswerService answers questions grounded in retrieved excerpts.
type AnswerService interface {
	// Ask retrieves context for the question and asks the chat model.
	Ask(ctx context.Context, question string, opts domain.RetrievalOptions) (*Answer, error)
}

// Answer is a generated reply with the sources it was grounded on.
type Answer struct {
	// Text is the model's reply.
	Text string

	// Sources are the candidates used as grounding context.
	// Empty when the answer is ungrounded.
	Sources []domain.RetrievalCandidate
}
