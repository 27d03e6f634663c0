// Package stats annotates chunks with character and word counts.
package stats

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

var _ driven.PostProcessor = (*Processor)(nil)

// Processor records char_count and word_count on every chunk.
type Processor struct{}

// New creates a stats processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "stats"
}

// Process annotates the incoming chunks in place and returns them.
func (p *Processor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]any)
		}
		chunks[i].Metadata[domain.MetaCharCount] = utf8.RuneCountInString(chunks[i].Content)
		chunks[i].Metadata[domain.MetaWordCount] = len(strings.Fields(chunks[i].Content))
	}
	return chunks, nil
}
