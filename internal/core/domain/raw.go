package domain

import (
	"path/filepath"
	"strings"
)

// FileType identifies the format of an uploaded file.
type FileType string

// Supported file types.
const (
	FileTypeText FileType = "txt"
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
)

// IsValid returns true if the file type is supported.
func (f FileType) IsValid() bool {
	switch f {
	case FileTypeText, FileTypePDF, FileTypeDOCX:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f FileType) String() string {
	return string(f)
}

// FileTypeFromName derives the file type from a file name's extension.
// Matching is case-insensitive.
func FileTypeFromName(name string) (FileType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	ft := FileType(ext)
	if !ft.IsValid() {
		return "", ErrUnsupportedFileType
	}
	return ft, nil
}

// TitleFromFileName builds a display title from a file name:
// the extension is dropped and separators become spaces.
func TitleFromFileName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Untitled"
	}
	return base
}

// Upload is a file submitted for ingestion, before extraction.
type Upload struct {
	// FileName is the original file name, used to infer the file type.
	FileName string

	// Content is the raw file bytes.
	Content []byte

	// OwnerID is the uploading user.
	OwnerID string

	// Title overrides the title derived from FileName.
	Title string

	// Type is the legal classification. Defaults to DocumentTypeCase.
	Type DocumentType

	// Citation is the formal citation, if known.
	Citation string

	// Public makes the document visible to all users.
	Public bool
}
