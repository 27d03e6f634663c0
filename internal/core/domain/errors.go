package domain

import (
	"context"
	"errors"
)

// Domain errors represent business logic failures.
// Infrastructure errors are wrapped with one of these tags so callers can
// branch with errors.Is while the cause stays inspectable.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown processor or extractor type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the chat completion service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline Errors.

	// ErrUnsupportedFileType indicates the file extension is not txt, pdf or docx.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrNoExtractableText indicates extraction produced only whitespace.
	ErrNoExtractableText = errors.New("no extractable text")

	// ErrExtractionFailed indicates the file could not be parsed.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrInvalidChunkParameters indicates overlap >= chunk size or a non-positive size.
	ErrInvalidChunkParameters = errors.New("invalid chunk parameters")

	// ErrEmbeddingService indicates the embedding provider failed or returned a bad response.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrPersistence indicates the document store rejected a read or write.
	ErrPersistence = errors.New("persistence error")

	// ErrTimeout indicates an operation exceeded its deadline.
	ErrTimeout = errors.New("timeout")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// Error codes are stable tags exposed to API clients.
const (
	CodeUnsupportedFileType    = "unsupported_file_type"
	CodeNoExtractableText      = "no_extractable_text"
	CodeExtractionFailed       = "extraction_failed"
	CodeInvalidChunkParameters = "invalid_chunk_parameters"
	CodeEmbeddingService       = "embedding_service_error"
	CodePersistence            = "persistence_error"
	CodeTimeout                = "timeout"
	CodeNotFound               = "not_found"
	CodeInvalidInput           = "invalid_input"
	CodeInternal               = "internal"
)

// ErrorCode maps an error to its stable tag. Untagged errors are "internal".
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, ErrUnsupportedFileType):
		return CodeUnsupportedFileType
	case errors.Is(err, ErrNoExtractableText):
		return CodeNoExtractableText
	case errors.Is(err, ErrExtractionFailed):
		return CodeExtractionFailed
	case errors.Is(err, ErrInvalidChunkParameters):
		return CodeInvalidChunkParameters
	case errors.Is(err, ErrEmbeddingService), errors.Is(err, ErrEmbeddingUnavailable):
		return CodeEmbeddingService
	case errors.Is(err, ErrPersistence):
		return CodePersistence
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	default:
		return CodeInternal
	}
}
