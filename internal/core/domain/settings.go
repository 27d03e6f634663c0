package domain

import "time"

// StorageBackend selects where documents and chunks are kept.
type StorageBackend string

const (
	StorageSQLite  StorageBackend = "sqlite"
	StorageMemory  StorageBackend = "memory"
	StorageMongoDB StorageBackend = "mongodb"
)

// IsValid reports whether b is a supported backend.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StorageMemory, StorageMongoDB:
		return true
	default:
		return false
	}
}

// EmbeddingSettings configures the model that embeds chunks and queries.
// Empty strings and zeros take adapter defaults.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string

	// Dimensions requests a vector size from providers that support it.
	Dimensions int

	// Concurrency bounds parallel requests within one batch.
	Concurrency int

	// RequestsPerSecond caps the request rate; zero is unlimited.
	RequestsPerSecond float64

	// MaxRetries bounds retries of transient failures; negative disables
	// retrying.
	MaxRetries int
}

// IsConfigured reports whether a provider is chosen and usable. Chat-only
// providers never are.
func (e EmbeddingSettings) IsConfigured() bool {
	return providerReady(e.Provider, e.APIKey) && e.Provider.SupportsEmbeddings()
}

// LLMSettings configures the optional chat model used to answer questions.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

// IsConfigured reports whether a provider is chosen and usable.
func (l LLMSettings) IsConfigured() bool {
	return providerReady(l.Provider, l.APIKey)
}

// StorageSettings selects and configures the document store.
type StorageSettings struct {
	Backend       StorageBackend
	DataDir       string
	MongoURI      string
	MongoDatabase string
}

// IngestionSettings configures the ingestion pipeline.
type IngestionSettings struct {
	// ChunkSize is the window size in characters.
	ChunkSize int

	// Overlap is the number of characters shared by consecutive chunks.
	Overlap int

	// Timeout bounds a single ingestion.
	Timeout time.Duration
}

// RetrievalSettings configures default retrieval behaviour.
type RetrievalSettings struct {
	TopK          int
	MinScore      float64
	ExcerptLength int
	Granularity   Granularity
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Storage   StorageSettings
	Ingestion IngestionSettings
	Retrieval RetrievalSettings
	Server    ServerSettings
}

// DefaultAppSettings returns the settings used for unset keys. No AI
// provider is chosen until the user picks one.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Backend:       StorageSQLite,
			MongoDatabase: "lexis",
		},
		Ingestion: IngestionSettings{
			ChunkSize: 1000,
			Overlap:   200,
			Timeout:   2 * time.Minute,
		},
		Retrieval: RetrievalSettings{
			TopK:          DefaultTopK,
			MinScore:      DefaultMinScore,
			ExcerptLength: DefaultExcerptLength,
			Granularity:   GranularityChunk,
		},
		Server: ServerSettings{
			Addr: ":8080",
		},
	}
}

// PipelineConfig names the chunk processors to run, in order, with a free
// form table per processor.
type PipelineConfig struct {
	Processors       []string
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns the table for name, or nil.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration:
// a 1000/200 chunker followed by chunk statistics.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "stats"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": 1000,
				"overlap":    200,
			},
		},
	}
}
