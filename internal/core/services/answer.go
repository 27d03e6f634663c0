package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// answerMaxTokens bounds generated answers.
const answerMaxTokens = 1024

// AnswerService answers questions from retrieved excerpts.
type AnswerService struct {
	retrieval   driving.RetrievalService
	chatService driven.ChatService
	prompts     driven.PromptStore
}

// NewAnswerService creates a new answer service.
// The chatService parameter is optional; without it Ask fails with
// domain.ErrLLMUnavailable.
func NewAnswerService(
	retrieval driving.RetrievalService,
	chatService driven.ChatService,
	prompts driven.PromptStore,
) *AnswerService {
	return &AnswerService{
		retrieval:   retrieval,
		chatService: chatService,
		prompts:     prompts,
	}
}

// Ask retrieves excerpts for the question and asks the chat model to answer
// from them. With no matching excerpts the model answers ungrounded and
// Sources is empty.
func (s *AnswerService) Ask(ctx context.Context, question string, opts domain.RetrievalOptions) (*driving.Answer, error) {
	if s.chatService == nil {
		return nil, domain.ErrLLMUnavailable
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	sources, err := s.retrieval.Retrieve(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	var system string
	if len(sources) == 0 {
		logger.Debug("no sources found, answering ungrounded")
		system, err = s.prompts.Load(driven.PromptAnswerUngrounded)
		if err != nil {
			return nil, fmt.Errorf("load prompt: %w", err)
		}
	} else {
		template, err := s.prompts.Load(driven.PromptAnswerSystem)
		if err != nil {
			return nil, fmt.Errorf("load prompt: %w", err)
		}
		system = fmt.Sprintf(template, FormatContext(sources))
	}

	logger.Debug("asking %s with %d sources", s.chatService.ModelName(), len(sources))
	text, err := s.chatService.Complete(ctx, system, question, driven.ChatOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	return &driving.Answer{Text: text, Sources: sources}, nil
}
