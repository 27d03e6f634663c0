package extractors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry holds one extractor per file type.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.FileType]driven.TextExtractor
}

// NewRegistry creates a registry with the given extractors.
func NewRegistry(extractors ...driven.TextExtractor) *Registry {
	r := &Registry{extractors: make(map[domain.FileType]driven.TextExtractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor, replacing any for the same file type.
func (r *Registry) Register(e driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[e.FileType()] = e
}

// FileTypes returns the registered file types, sorted.
func (r *Registry) FileTypes() []domain.FileType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]domain.FileType, 0, len(r.extractors))
	for ft := range r.extractors {
		types = append(types, ft)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Extract runs the extractor for fileType. Parsers are not context-aware,
// so extraction runs in its own goroutine and the caller is released as
// soon as ctx is done.
func (r *Registry) Extract(ctx context.Context, content []byte, fileType domain.FileType) (string, error) {
	r.mu.RLock()
	e, ok := r.extractors[fileType]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, fileType)
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := e.Extract(ctx, content)
		done <- result{text: text, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return "", contextError(ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) || errors.Is(res.err, context.Canceled) {
			return "", contextError(res.err)
		}
		if errors.Is(res.err, domain.ErrExtractionFailed) || errors.Is(res.err, domain.ErrNoExtractableText) {
			return "", res.err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrExtractionFailed, res.err)
	}

	text := strings.TrimSpace(res.text)
	if text == "" {
		return "", fmt.Errorf("%w: %s file contained no text", domain.ErrNoExtractableText, fileType)
	}

	logger.Debug("extracted %d characters from %s", len(text), fileType)
	return text, nil
}

// contextError maps a deadline to domain.ErrTimeout and keeps cancellation as is.
func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: extraction: %w", domain.ErrTimeout, err)
	}
	return err
}
