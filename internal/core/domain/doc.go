// Package domain holds the types every layer shares: documents and their
// chunks, uploads, retrieval filters and results, settings, and the error
// sentinels that map to stable error codes.
//
// It imports only the standard library.
package domain
