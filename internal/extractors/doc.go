// Package extractors turns uploaded file bytes into plain text.
//
// Each sub-package handles one file format (txt, pdf, docx). The Registry
// dispatches on domain.FileType and enforces the shared contract: the
// result is never whitespace-only, parse failures are tagged
// domain.ErrExtractionFailed, and a context deadline is reported as
// domain.ErrTimeout.
package extractors
