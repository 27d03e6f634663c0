package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrUnsupportedFileType", ErrUnsupportedFileType},
		{"ErrNoExtractableText", ErrNoExtractableText},
		{"ErrExtractionFailed", ErrExtractionFailed},
		{"ErrInvalidChunkParameters", ErrInvalidChunkParameters},
		{"ErrEmbeddingService", ErrEmbeddingService},
		{"ErrPersistence", ErrPersistence},
		{"ErrTimeout", ErrTimeout},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrorCode tests mapping errors to stable tags
func TestErrorCode(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unsupported file type", ErrUnsupportedFileType, CodeUnsupportedFileType},
		{"no text", ErrNoExtractableText, CodeNoExtractableText},
		{"parse failure", fmt.Errorf("%w: %w", ErrExtractionFailed, cause), CodeExtractionFailed},
		{"chunk params", ErrInvalidChunkParameters, CodeInvalidChunkParameters},
		{"embedding", fmt.Errorf("%w: %w", ErrEmbeddingService, cause), CodeEmbeddingService},
		{"persistence", fmt.Errorf("saving chunks: %w", ErrPersistence), CodePersistence},
		{"timeout tag", ErrTimeout, CodeTimeout},
		{"raw deadline", context.DeadlineExceeded, CodeTimeout},
		{"timeout wins over stage tag", fmt.Errorf("%w: %w", ErrEmbeddingService, ErrTimeout), CodeTimeout},
		{"not found", ErrNotFound, CodeNotFound},
		{"invalid input", ErrInvalidInput, CodeInvalidInput},
		{"untagged", cause, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

// TestErrors_WrapKeepsCause tests that tag wrapping preserves the cause
func TestErrors_WrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("%w: %w", ErrPersistence, cause)

	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrTimeout))
}
