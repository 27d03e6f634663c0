package domain

import "time"

// DocumentType classifies a legal document.
type DocumentType string

// Supported document types.
const (
	DocumentTypeCase         DocumentType = "case"
	DocumentTypeStatute      DocumentType = "statute"
	DocumentTypeRegulation   DocumentType = "regulation"
	DocumentTypePracticeNote DocumentType = "practice_note"
	DocumentTypeTemplate     DocumentType = "template"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeCase, DocumentTypeStatute, DocumentTypeRegulation,
		DocumentTypePracticeNote, DocumentTypeTemplate:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// AllDocumentTypes returns every supported document type.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeCase,
		DocumentTypeStatute,
		DocumentTypeRegulation,
		DocumentTypePracticeNote,
		DocumentTypeTemplate,
	}
}

// Metadata keys recorded on documents and chunks.
const (
	MetaFileName    = "file_name"
	MetaFileSize    = "file_size"
	MetaFileType    = "file_type"
	MetaChunkCount  = "chunk_count"
	MetaProcessedAt = "processed_at"

	MetaCharCount   = "char_count"
	MetaWordCount   = "word_count"
	MetaStartOffset = "start_offset"
	MetaEndOffset   = "end_offset"
)

// Document represents an ingested legal document.
// Content is the full extracted text and is never empty once stored.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title.
	Title string

	// Type is the legal document classification.
	Type DocumentType

	// Content is the full extracted text before chunking.
	Content string

	// Citation is the formal citation, if any (e.g. "[2020] UKSC 1").
	Citation string

	// Public marks the document as visible to every user.
	Public bool

	// OwnerID is the user that uploaded the document.
	OwnerID string

	// Metadata contains file and processing details.
	Metadata map[string]any

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Chunk is a contiguous span of a document's text with its embedding.
// Chunks are the unit of retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the 0-based position within the document.
	Index int

	// Content is the text of this chunk.
	Content string

	// Embedding is the vector representation used for ranking.
	Embedding []float32

	// Metadata contains chunk statistics and offsets.
	Metadata map[string]any
}

// MetadataInt reads an integer metadata value regardless of how it was decoded.
// JSON and BSON round-trips turn ints into float64 or int32/int64.
func MetadataInt(m map[string]any, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	default:
		return 0, false
	}
}
