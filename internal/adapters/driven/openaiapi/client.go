// Package openaiapi builds the OpenAI SDK client shared by the embedding and
// chat adapters and turns SDK failures into errors the rest of lexis
// understands.
package openaiapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// DefaultBaseURL is the public OpenAI endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config selects the endpoint and transport. Any OpenAI-compatible server
// works as BaseURL.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

// NewClient returns an SDK client for cfg. The API key is mandatory.
func NewClient(cfg Config) (openai.Client, error) {
	if cfg.APIKey == "" {
		return openai.Client{}, fmt.Errorf("openai: %w: API key is required", domain.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(max(cfg.MaxRetries, 0)),
	), nil
}

// StatusError is an HTTP failure reported by the API.
type StatusError struct {
	Status int
	err    error
}

func (e *StatusError) Error() string { return fmt.Sprintf("openai: status %d: %v", e.Status, e.err) }
func (e *StatusError) Unwrap() error { return e.err }

// Temporary is true for rate limits and server errors.
func (e *StatusError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// Classify wraps an SDK error. Rate limits also match domain.ErrRateLimited.
func Classify(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("openai: %w", err)
	}
	se := &StatusError{Status: apiErr.StatusCode, err: err}
	if se.Status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, se)
	}
	return se
}

// Ping lists models, which checks the key without running inference.
func Ping(ctx context.Context, c openai.Client) error {
	if _, err := c.Models.List(ctx); err != nil {
		return fmt.Errorf("ping: %w", Classify(err))
	}
	return nil
}
