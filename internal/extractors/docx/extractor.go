// Package docx extracts paragraph text from Office Open XML documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

const documentPart = "word/document.xml"

// maxPartSize caps how much of document.xml is read.
const maxPartSize = 64 << 20

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// FileType returns the format this extractor handles.
func (e *Extractor) FileType() domain.FileType {
	return domain.FileTypeDOCX
}

// Extract returns the text of every paragraph in word/document.xml,
// including paragraphs inside tables, separated by newlines.
func (e *Extractor) Extract(ctx context.Context, content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: not a zip archive: %w", domain.ErrExtractionFailed, err)
	}

	part, err := readPart(reader, documentPart)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	text, err := parseDocumentXML(ctx, part)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	return text, nil
}

// readPart reads a named part from the archive.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(io.LimitReader(rc, maxPartSize))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("missing %s", name)
}

// parseDocumentXML walks the WordprocessingML token stream. Text runs
// (w:t) are collected per paragraph (w:p); w:tab and w:br become a tab and
// a newline. Unknown elements are skipped, so tables, hyperlinks and
// content controls contribute their nested paragraphs.
func parseDocumentXML(ctx context.Context, content []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))

	var (
		out       strings.Builder
		para      strings.Builder
		inText    bool
		paraCount int
	)

	flush := func() {
		line := strings.TrimRight(para.String(), " \t")
		para.Reset()
		if paraCount > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(line)
		paraCount++
	}

	for tokens := 0; ; tokens++ {
		if tokens%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}

		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if paraCount > 0 {
				logger.Warn("docx: truncated document.xml after %d paragraphs: %v", paraCount, err)
				break
			}
			return "", fmt.Errorf("parsing document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}

	if para.Len() > 0 {
		flush()
	}

	return strings.TrimSpace(out.String()), nil
}
