package extractors

import (
	"github.com/custodia-labs/lexis/internal/extractors/docx"
	"github.com/custodia-labs/lexis/internal/extractors/pdf"
	"github.com/custodia-labs/lexis/internal/extractors/plaintext"
)

// NewDefaultRegistry returns a registry with the txt, pdf and docx extractors.
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		plaintext.New(),
		pdf.New(),
		docx.New(),
	)
}
