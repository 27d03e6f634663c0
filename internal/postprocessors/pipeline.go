// Package postprocessors turns extracted document text into chunks through
// a configurable chain of processors.
package postprocessors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs one splitting processor followed by any annotators.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a pipeline that runs processors in order.
// Build is the checked way to assemble one from configuration.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Process runs the document through every processor. The first receives
// nil chunks and creates them. Errors keep their tags for errors.Is.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, processor := range p.processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		out, err := processor.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
		if chunks != nil && len(out) != len(chunks) {
			return nil, fmt.Errorf("processor %s changed the chunk count from %d to %d",
				processor.Name(), len(chunks), len(out))
		}
		chunks = out
		logger.Debug("processor %s: %d chunks in %s", processor.Name(), len(chunks), time.Since(start))
	}

	return chunks, nil
}

// Names returns the processor names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}

// String renders the pipeline as "chunker -> stats".
func (p *Pipeline) String() string {
	return strings.Join(p.Names(), " -> ")
}

// Build assembles the configured pipeline. It must name exactly one
// splitting processor, first, and no processor twice.
// Unknown names fail with domain.ErrUnsupportedType.
func Build(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	if len(cfg.Processors) == 0 {
		return nil, fmt.Errorf("%w: pipeline has no processors", domain.ErrInvalidInput)
	}

	processors := make([]driven.PostProcessor, 0, len(cfg.Processors))
	seen := make(map[string]bool, len(cfg.Processors))
	for i, name := range cfg.Processors {
		role, ok := r.Role(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown processor: %s", domain.ErrUnsupportedType, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: processor %s listed twice", domain.ErrInvalidInput, name)
		}
		seen[name] = true

		switch {
		case i == 0 && role != RoleSplit:
			return nil, fmt.Errorf("%w: pipeline must start with a splitting processor, not %s",
				domain.ErrInvalidInput, name)
		case i > 0 && role == RoleSplit:
			return nil, fmt.Errorf("%w: splitting processor %s must come first",
				domain.ErrInvalidInput, name)
		}

		proc, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		processors = append(processors, proc)
	}

	return NewPipeline(processors...), nil
}
