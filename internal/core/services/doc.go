// Package services holds the use cases behind the CLI, HTTP and MCP
// adapters.
//
// IngestionPipeline turns an upload into a stored, embedded document.
// RetrievalService ranks stored chunks, or whole documents, against a
// query by cosine similarity. AnswerService asks a chat model to answer
// from those excerpts. DocumentService and SettingsService cover
// management.
package services
