package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
	"github.com/custodia-labs/lexis/internal/similarity"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService ranks stored chunks or documents against a query by
// cosine similarity of their embeddings.
type RetrievalService struct {
	docStore         driven.DocumentStore
	embeddingService driven.EmbeddingService
	defaults         domain.RetrievalSettings
}

// NewRetrievalService creates a new retrieval service.
// Zero-valued options passed to Retrieve are filled from defaults.
func NewRetrievalService(
	docStore driven.DocumentStore,
	embeddingService driven.EmbeddingService,
	defaults domain.RetrievalSettings,
) *RetrievalService {
	if defaults.ExcerptLength <= 0 {
		defaults.ExcerptLength = domain.DefaultExcerptLength
	}
	return &RetrievalService{
		docStore:         docStore,
		embeddingService: embeddingService,
		defaults:         defaults,
	}
}

// Retrieve returns the best matching candidates for query.
// If the query cannot be embedded the result is empty rather than an error,
// so callers can fall back to ungrounded behaviour.
func (s *RetrievalService) Retrieve(
	ctx context.Context, query string, opts domain.RetrievalOptions,
) ([]domain.RetrievalCandidate, error) {
	logger.Section("Retrieval")

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.RetrievalCandidate{}, nil
	}
	opts = s.applyDefaults(opts)
	logger.Debug("Query: %q (top_k=%d min_score=%.2f granularity=%s)",
		query, opts.TopK, opts.MinScore, opts.Granularity)

	if s.embeddingService == nil {
		logger.Warn("retrieval skipped: no embedding service configured")
		return []domain.RetrievalCandidate{}, nil
	}
	queryVector, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		logger.Warn("retrieval degraded to empty result: embedding query failed: %v", err)
		return []domain.RetrievalCandidate{}, nil
	}

	docs, err := s.docStore.ListCandidateDocuments(ctx, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list candidate documents: %w", domain.ErrPersistence, err)
	}
	logger.Debug("%d candidate documents", len(docs))

	var candidates []similarity.Candidate[domain.RetrievalCandidate]
	for i := range docs {
		chunks, err := s.docStore.GetChunks(ctx, docs[i].ID)
		if err != nil {
			return nil, fmt.Errorf("%w: chunks of %s: %w", domain.ErrPersistence, docs[i].ID, err)
		}
		if opts.Granularity == domain.GranularityDocument {
			if c, ok := s.documentCandidate(&docs[i], chunks); ok {
				candidates = append(candidates, c)
			}
			continue
		}
		candidates = append(candidates, s.chunkCandidates(&docs[i], chunks)...)
	}

	ranked := similarity.Rank(queryVector, candidates, opts.MinScore, opts.TopK)
	results := make([]domain.RetrievalCandidate, len(ranked))
	for i, r := range ranked {
		results[i] = r.Payload
		results[i].Score = r.Score
	}
	logger.Debug("%d of %d candidates above threshold", len(results), len(candidates))
	return results, nil
}

func (s *RetrievalService) applyDefaults(opts domain.RetrievalOptions) domain.RetrievalOptions {
	if opts.TopK == 0 {
		opts.TopK = s.defaults.TopK
	}
	if opts.MinScore == 0 && !opts.MinScoreSet {
		opts.MinScore = s.defaults.MinScore
		opts.MinScoreSet = true
	}
	if !opts.Granularity.IsValid() {
		opts.Granularity = s.defaults.Granularity
	}
	return opts.WithDefaults()
}

func (s *RetrievalService) chunkCandidates(
	doc *domain.Document, chunks []domain.Chunk,
) []similarity.Candidate[domain.RetrievalCandidate] {
	out := make([]similarity.Candidate[domain.RetrievalCandidate], 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		out = append(out, similarity.Candidate[domain.RetrievalCandidate]{
			ID:     c.ID,
			Vector: c.Embedding,
			Payload: domain.RetrievalCandidate{
				ID:         c.ID,
				DocumentID: doc.ID,
				ChunkIndex: c.Index,
				Excerpt:    excerpt(c.Content, s.defaults.ExcerptLength),
				Title:      doc.Title,
				Type:       doc.Type,
				Citation:   doc.Citation,
			},
		})
	}
	return out
}

// documentCandidate uses the first embedded chunk as the document's vector.
func (s *RetrievalService) documentCandidate(
	doc *domain.Document, chunks []domain.Chunk,
) (similarity.Candidate[domain.RetrievalCandidate], bool) {
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		return similarity.Candidate[domain.RetrievalCandidate]{
			ID:     doc.ID,
			Vector: c.Embedding,
			Payload: domain.RetrievalCandidate{
				ID:         doc.ID,
				DocumentID: doc.ID,
				ChunkIndex: -1,
				Excerpt:    excerpt(doc.Content, s.defaults.ExcerptLength),
				Title:      doc.Title,
				Type:       doc.Type,
				Citation:   doc.Citation,
			},
		}, true
	}
	return similarity.Candidate[domain.RetrievalCandidate]{}, false
}

// excerpt returns the first n runes of s.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// FormatContext renders candidates as numbered sources for a grounding prompt.
//
//	[1] Smith v Jones ([2020] UKSC 1), case, score 0.91
//	<excerpt>
func FormatContext(candidates []domain.RetrievalCandidate) string {
	var b strings.Builder
	for i, c := range candidates {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s", i+1, sourceLabel(c))
		fmt.Fprintf(&b, ", %s, score %.2f\n", c.Type, c.Score)
		b.WriteString(strings.TrimSpace(c.Excerpt))
	}
	return b.String()
}

// FormatSources renders the numbered source list shown alongside an answer.
func FormatSources(candidates []domain.RetrievalCandidate) string {
	var b strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, sourceLabel(c))
	}
	return b.String()
}

func sourceLabel(c domain.RetrievalCandidate) string {
	if c.Citation == "" {
		return c.Title
	}
	return fmt.Sprintf("%s (%s)", c.Title, c.Citation)
}
