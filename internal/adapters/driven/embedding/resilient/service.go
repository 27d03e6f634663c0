// Package resilient decorates an EmbeddingService with client-side rate
// limiting and bounded retries with exponential backoff.
package resilient

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// Default retry settings.
const (
	DefaultMaxRetries = 2
	DefaultBaseDelay  = 200 * time.Millisecond
	DefaultMaxDelay   = 5 * time.Second
)

// Config configures the decorator.
type Config struct {
	// RequestsPerSecond caps calls to the wrapped service. Zero disables the cap.
	RequestsPerSecond float64

	// Burst is the token bucket size (default: 1).
	Burst int

	// MaxRetries is the number of retries after the first attempt.
	// Negative disables retries.
	MaxRetries int

	// BaseDelay is the first backoff delay; it doubles per attempt.
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration
}

// Service wraps an EmbeddingService.
type Service struct {
	next       driven.EmbeddingService
	limiter    *RateLimiter
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// Wrap decorates next with rate limiting and retries.
func Wrap(next driven.EmbeddingService, cfg Config) *Service {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	return &Service{
		next:       next,
		limiter:    NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		maxDelay:   cfg.MaxDelay,
	}
}

// Embed generates a vector embedding for the given text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.next.Embed(ctx, text)
		return err
	})
	return out, err
}

// EmbedBatch retries the whole batch, keeping the all-or-nothing contract.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.next.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}

// Dimensions returns the wrapped service's vector size.
func (s *Service) Dimensions() int {
	return s.next.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *Service) ModelName() string {
	return s.next.ModelName()
}

// Ping is passed through without retries.
func (s *Service) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped service.
func (s *Service) Close() error {
	return s.next.Close()
}

func (s *Service) do(ctx context.Context, call func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if werr := s.limiter.Wait(ctx); werr != nil {
			if err != nil {
				return errors.Join(err, werr)
			}
			return werr
		}

		err = call(ctx)
		if err == nil || !retryable(err) || attempt == s.maxRetries {
			return err
		}

		delay := s.delay(attempt)
		if errors.Is(err, domain.ErrRateLimited) {
			s.limiter.Backoff(delay)
		}
		logger.Warn("embedding attempt %d failed, retrying in %s: %v", attempt+1, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}

// delay returns base * 2^attempt, capped at maxDelay.
func (s *Service) delay(attempt int) time.Duration {
	d := s.baseDelay << attempt
	if d <= 0 || d > s.maxDelay {
		return s.maxDelay
	}
	return d
}

// temporary is implemented by provider errors that know whether a retry
// could help.
type temporary interface {
	Temporary() bool
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	var t temporary
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, domain.ErrInvalidInput):
		return false
	case errors.As(err, &t):
		return t.Temporary()
	default:
		return true
	}
}
