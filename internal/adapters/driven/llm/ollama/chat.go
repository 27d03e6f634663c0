// Package ollama answers questions with a chat model served by Ollama.
package ollama

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/lexis/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

var _ driven.ChatService = (*ChatService)(nil)

const (
	DefaultModel = "llama3.2"

	// DefaultTimeout is generous because local models answer slowly on CPU.
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama chat service.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// ChatService calls Ollama's non-streaming /api/chat endpoint.
type ChatService struct {
	api   *ollamaapi.Client
	model string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generation struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type chatRequest struct {
	Model    string      `json:"model"`
	Messages []message   `json:"messages"`
	Stream   bool        `json:"stream"`
	Options  *generation `json:"options,omitempty"`
}

type chatResponse struct {
	Message message `json:"message"`
	Done    bool    `json:"done"`
}

// NewChatService creates an Ollama chat service.
func NewChatService(cfg Config) *ChatService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &ChatService{
		api:   ollamaapi.New(cfg.BaseURL, cfg.Timeout, cfg.HTTPClient),
		model: cfg.Model,
	}
}

// Complete sends one system and one user message and returns the trimmed
// reply.
func (s *ChatService) Complete(ctx context.Context, system, user string, opts driven.ChatOptions) (string, error) {
	req := chatRequest{
		Model:    s.model,
		Messages: []message{{Role: "system", Content: system}, {Role: "user", Content: user}},
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		req.Options = &generation{NumPredict: opts.MaxTokens, Temperature: opts.Temperature}
	}

	var resp chatResponse
	if err := s.api.Post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}

	reply := strings.TrimSpace(resp.Message.Content)
	if reply == "" {
		return "", errors.New("ollama: empty reply")
	}
	return reply, nil
}

// ModelName returns the chat model.
func (s *ChatService) ModelName() string {
	return s.model
}

// Ping checks the server is reachable.
func (s *ChatService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx)
}

// Close is a no-op.
func (s *ChatService) Close() error {
	return nil
}
