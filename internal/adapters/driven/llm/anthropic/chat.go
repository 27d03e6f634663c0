// Package anthropic answers questions with the Anthropic Messages API.
// Anthropic serves no embedding models, so it is a chat-only provider.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

var _ driven.ChatService = (*ChatService)(nil)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	apiVersion   = "2023-06-01"
	maxErrorBody = 4096
)

// Config configures the service. Only APIKey is required.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type ChatService struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// StatusError is a non-200 reply. Rate limits and overload are temporary.
type StatusError struct {
	Status  int
	Type    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("anthropic: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("anthropic: status %d: %s: %s", e.Status, e.Type, e.Message)
}

func (e *StatusError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

func NewChatService(cfg Config) (*ChatService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w: API key is required", domain.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &ChatService{
		http:    hc,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Complete joins the text blocks of the reply. The API insists on a token
// limit, so DefaultMaxTokens stands in when opts has none.
func (s *ChatService) Complete(ctx context.Context, system, user string, opts driven.ChatOptions) (string, error) {
	req := messagesRequest{
		Model:       s.model,
		System:      system,
		Messages:    []message{{Role: "user", Content: user}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: encode request: %w", err)
	}

	var resp messagesResponse
	if err := s.do(ctx, http.MethodPost, "/v1/messages", bytes.NewReader(body), &resp); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	reply := strings.TrimSpace(b.String())
	if reply == "" {
		return "", errors.New("anthropic: empty reply")
	}
	return reply, nil
}

func (s *ChatService) ModelName() string { return s.model }
func (s *ChatService) Close() error      { return nil }

// Ping lists models, which checks the key without spending tokens.
func (s *ChatService) Ping(ctx context.Context) error {
	if err := s.do(ctx, http.MethodGet, "/v1/models", http.NoBody, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *ChatService) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("anthropic: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := &StatusError{Status: resp.StatusCode}
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error.Message != "" {
			se.Type, se.Message = e.Error.Type, e.Error.Message
		} else {
			se.Message = strings.TrimSpace(string(raw))
		}
		if se.Status == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %w", domain.ErrRateLimited, se)
		}
		return se
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("anthropic: decode response: %w", err)
	}
	return nil
}
