// Package plaintext extracts text from UTF-8 .txt files.
package plaintext

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extractor handles plain text files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// FileType returns the format this extractor handles.
func (e *Extractor) FileType() domain.FileType {
	return domain.FileTypeText
}

// Extract decodes content as UTF-8. Invalid byte sequences are replaced
// with U+FFFD, a leading byte order mark is dropped and CRLF line endings
// become LF.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	text := string(content)
	if !utf8.Valid(content) {
		logger.Warn("plain text upload contains invalid UTF-8; replacing invalid bytes")
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}

	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}
