package domain

import "slices"

// Granularity selects what a retrieval candidate represents.
type Granularity string

// Available granularities.
const (
	// GranularityChunk ranks individual chunks.
	GranularityChunk Granularity = "chunk"

	// GranularityDocument ranks whole documents by a representative vector.
	GranularityDocument Granularity = "document"
)

// IsValid returns true if the granularity is recognised.
func (g Granularity) IsValid() bool {
	return g == GranularityChunk || g == GranularityDocument
}

// Retrieval defaults.
const (
	DefaultTopK          = 5
	DefaultMinScore      = 0.7
	DefaultExcerptLength = 300
)

// CorpusFilter restricts which documents are searchable for a request.
type CorpusFilter struct {
	// OwnerID adds the user's private documents to the public corpus.
	OwnerID string

	// PublicOnly excludes private documents even when OwnerID is set.
	PublicOnly bool

	// Types limits candidates to the given document types.
	Types []DocumentType

	// DocumentIDs limits candidates to specific documents.
	DocumentIDs []string
}

// Matches reports whether a document belongs to the filtered corpus.
// Public documents are visible to everyone; private ones only to their owner.
func (f CorpusFilter) Matches(doc *Document) bool {
	if doc == nil {
		return false
	}
	visible := doc.Public || (!f.PublicOnly && f.OwnerID != "" && doc.OwnerID == f.OwnerID)
	if !visible {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, doc.Type) {
		return false
	}
	if len(f.DocumentIDs) > 0 && !slices.Contains(f.DocumentIDs, doc.ID) {
		return false
	}
	return true
}

// RetrievalOptions configures a retrieval query.
type RetrievalOptions struct {
	// Filter selects the searchable corpus.
	Filter CorpusFilter

	// TopK is the maximum number of results. Defaults to 5.
	TopK int

	// MinScore is the exclusive lower bound on similarity. Defaults to 0.7
	// unless MinScoreSet is true.
	MinScore float64

	// MinScoreSet marks MinScore as explicit, so a zero threshold is kept.
	MinScoreSet bool

	// Granularity selects chunk or document ranking. Defaults to chunk.
	Granularity Granularity
}

// WithDefaults fills unset fields with retrieval defaults.
// A negative MinScore is kept, so callers can disable the threshold.
func (o RetrievalOptions) WithDefaults() RetrievalOptions {
	if o.TopK == 0 {
		o.TopK = DefaultTopK
	}
	if o.MinScore == 0 && !o.MinScoreSet {
		o.MinScore = DefaultMinScore
	}
	o.MinScoreSet = true
	if !o.Granularity.IsValid() {
		o.Granularity = GranularityChunk
	}
	return o
}

// RetrievalCandidate is a ranked excerpt returned by retrieval.
type RetrievalCandidate struct {
	// ID is the chunk ID, or the document ID at document granularity.
	ID string `json:"id"`

	// DocumentID links to the source document.
	DocumentID string `json:"document_id"`

	// ChunkIndex is the chunk position, or -1 at document granularity.
	ChunkIndex int `json:"chunk_index"`

	// Score is the cosine similarity to the query.
	Score float64 `json:"score"`

	// Excerpt is the leading text of the chunk or document.
	Excerpt string `json:"excerpt"`

	// Title is the document title.
	Title string `json:"title"`

	// Type is the document type.
	Type DocumentType `json:"type"`

	// Citation is the document citation.
	Citation string `json:"citation,omitempty"`
}
