package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDocumentType_IsValid tests valid and invalid document types
func TestDocumentType_IsValid(t *testing.T) {
	for _, dt := range AllDocumentTypes() {
		t.Run(string(dt), func(t *testing.T) {
			assert.True(t, dt.IsValid())
		})
	}

	assert.False(t, DocumentType("").IsValid())
	assert.False(t, DocumentType("opinion").IsValid())
}

// TestAllDocumentTypes tests the full list of document types
func TestAllDocumentTypes(t *testing.T) {
	types := AllDocumentTypes()
	assert.Len(t, types, 5)
	assert.Contains(t, types, DocumentTypePracticeNote)
}

// TestMetadataInt tests reading integers from decoded metadata
func TestMetadataInt(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   int
		wantOK bool
	}{
		{"int", 3, 3, true},
		{"int32", int32(4), 4, true},
		{"int64", int64(5), 5, true},
		{"float64 from json", float64(6), 6, true},
		{"string", "7", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MetadataInt(map[string]any{"k": tt.value}, "k")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := MetadataInt(nil, "missing")
	assert.False(t, ok)
}
