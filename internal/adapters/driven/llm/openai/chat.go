// Package openai answers questions with the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"github.com/custodia-labs/lexis/internal/adapters/driven/openaiapi"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

var _ driven.ChatService = (*ChatService)(nil)

const (
	DefaultBaseURL    = openaiapi.DefaultBaseURL
	DefaultModel      = "gpt-4o-mini"
	DefaultTimeout    = 120 * time.Second
	DefaultMaxRetries = 2
)

// Config configures the service. Only APIKey is required. MaxRetries is
// handed to the SDK: zero means DefaultMaxRetries, negative disables.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

type ChatService struct {
	client openai.Client
	model  string
}

func NewChatService(cfg Config) (*ChatService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	client, err := openaiapi.NewClient(openaiapi.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, err
	}
	return &ChatService{client: client, model: cfg.Model}, nil
}

// Complete returns the first choice with surrounding whitespace removed.
func (s *ChatService) Complete(ctx context.Context, system, user string, opts driven.ChatOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", openaiapi.Classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no response choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (s *ChatService) ModelName() string { return s.model }
func (s *ChatService) Close() error      { return nil }

func (s *ChatService) Ping(ctx context.Context) error {
	return openaiapi.Ping(ctx, s.client)
}
