// Package chunker splits document text into overlapping, sentence-aware chunks.
package chunker

import (
	"context"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Defaults, in characters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Name is the key the chunker is registered under.
const Name = "chunker"

var _ driven.PostProcessor = (*Processor)(nil)

// Processor is the splitting stage of the chunk pipeline.
type Processor struct {
	size, overlap int
}

type Option func(*Processor)

func WithChunkSize(size int) Option {
	return func(p *Processor) { p.size = size }
}

func WithOverlap(overlap int) Option {
	return func(p *Processor) { p.overlap = overlap }
}

// New returns a chunker with the default window. The size/overlap pair is
// checked on every Process call, never adjusted.
func New(opts ...Option) *Processor {
	p := &Processor{size: DefaultChunkSize, overlap: DefaultChunkOverlap}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Processor) Name() string   { return Name }
func (p *Processor) ChunkSize() int { return p.size }
func (p *Processor) Overlap() int   { return p.overlap }

// Process discards incoming chunks and splits doc.Content afresh. Every
// chunk records the rune offsets it was cut from.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	segments, err := Split(doc.Content, p.size, p.overlap)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Chunk, len(segments))
	for i, seg := range segments {
		out[i] = domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Index:      i,
			Content:    seg.Text,
			Metadata: map[string]any{
				domain.MetaStartOffset: seg.Start,
				domain.MetaEndOffset:   seg.End,
			},
		}
	}
	return out, nil
}
