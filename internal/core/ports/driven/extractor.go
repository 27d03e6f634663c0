package driven

import (
	"context"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// TextExtractor turns the bytes of one file format into plain text.
type TextExtractor interface {
	// FileType returns the format this extractor handles.
	FileType() domain.FileType

	// Extract returns the document text. Parse failures are reported
	// as domain.ErrExtractionFailed.
	Extract(ctx context.Context, content []byte) (string, error)
}

// ExtractorRegistry dispatches extraction by file type.
type ExtractorRegistry interface {
	// Register adds an extractor, replacing any for the same file type.
	Register(e TextExtractor)

	// Extract runs the extractor registered for fileType.
	// Returns domain.ErrUnsupportedFileType if none is registered and
	// domain.ErrNoExtractableText if the text is empty after trimming.
	Extract(ctx context.Context, content []byte, fileType domain.FileType) (string, error)

	// FileTypes returns the registered file types.
	FileTypes() []domain.FileType
}
