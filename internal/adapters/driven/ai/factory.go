// Package ai builds the embedding and chat adapters named by settings.
package ai

import (
	"fmt"

	ollamaembed "github.com/custodia-labs/lexis/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/lexis/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/lexis/internal/adapters/driven/embedding/resilient"
	"github.com/custodia-labs/lexis/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/lexis/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/lexis/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

var embedders = map[domain.AIProvider]func(*domain.EmbeddingSettings) (driven.EmbeddingService, error){
	domain.AIProviderOllama: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:     s.BaseURL,
			Model:       s.Model,
			Dimensions:  s.Dimensions,
			Concurrency: s.Concurrency,
		}), nil
	},
	domain.AIProviderOpenAI: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     s.APIKey,
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Dimensions: s.Dimensions,
		})
	},
}

var chats = map[domain.AIProvider]func(*domain.LLMSettings) (driven.ChatService, error){
	domain.AIProviderOllama: func(s *domain.LLMSettings) (driven.ChatService, error) {
		return ollamallm.NewChatService(ollamallm.Config{BaseURL: s.BaseURL, Model: s.Model}), nil
	},
	domain.AIProviderOpenAI: func(s *domain.LLMSettings) (driven.ChatService, error) {
		return openaillm.NewChatService(openaillm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
	domain.AIProviderAnthropic: func(s *domain.LLMSettings) (driven.ChatService, error) {
		return anthropic.NewChatService(anthropic.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
}

// CreateEmbeddingService returns the configured embedder behind rate
// limiting and retries, or nil when no usable provider is set.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	build, ok := embedders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
	svc, err := build(settings)
	if err != nil {
		return nil, err
	}
	return resilient.Wrap(svc, resilient.Config{
		RequestsPerSecond: settings.RequestsPerSecond,
		MaxRetries:        settings.MaxRetries,
	}), nil
}

// CreateChatService returns the configured chat model, or nil when no
// usable provider is set.
func CreateChatService(settings *domain.LLMSettings) (driven.ChatService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	build, ok := chats[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: chat provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
	return build(settings)
}
