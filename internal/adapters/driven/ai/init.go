package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

const pingTimeout = 5 * time.Second

// InitResult holds the services Init could build. Warnings lists what was
// left out and why.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	ChatService      driven.ChatService
	Warnings         []string
}

func (r *InitResult) Close() {
	for _, c := range []interface{ Close() error }{r.EmbeddingService, r.ChatService} {
		if c != nil {
			_ = c.Close()
		}
	}
}

// Init builds both services. The embedder is mandatory and any failure is
// reported as domain.ErrEmbeddingUnavailable; chat problems only add a
// warning. With ping set, each service must answer within pingTimeout.
func Init(ctx context.Context, settings *domain.AppSettings, ping bool) (*InitResult, error) {
	embedder, err := CreateEmbeddingService(&settings.Embedding)
	switch {
	case err != nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	case embedder == nil:
		return nil, fmt.Errorf("%w: no embedding provider configured. Run 'lexis config set embedding.provider ollama' to fix",
			domain.ErrEmbeddingUnavailable)
	}
	if ping {
		if err := pingWithin(ctx, embedder.Ping); err != nil {
			_ = embedder.Close()
			return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
		}
	}

	result := &InitResult{EmbeddingService: embedder}
	result.ChatService, err = initChat(ctx, &settings.LLM, ping)
	if err != nil {
		result.Warnings = append(result.Warnings, "chat disabled: "+err.Error())
	}
	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result, nil
}

func initChat(ctx context.Context, settings *domain.LLMSettings, ping bool) (driven.ChatService, error) {
	chat, err := CreateChatService(settings)
	if err != nil || chat == nil || !ping {
		return chat, err
	}
	if err := pingWithin(ctx, chat.Ping); err != nil {
		_ = chat.Close()
		return nil, fmt.Errorf("service unreachable (%w)", err)
	}
	return chat, nil
}

func pingWithin(ctx context.Context, ping func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return ping(ctx)
}
