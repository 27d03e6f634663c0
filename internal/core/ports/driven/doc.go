// Package driven declares what the core needs from the outside world:
// storage, text extraction, chunking, embeddings, chat, configuration and
// prompts.
//
// DocumentStore, ExtractorRegistry, PostProcessorPipeline and
// EmbeddingService are needed to ingest and retrieve. ChatService may be
// nil, in which case answering is unavailable.
//
// This package imports only domain.
package driven
