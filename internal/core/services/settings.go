package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedDimensions  = "embedding.dimensions"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedConcurrency = "embedding.concurrency"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyEmbedMaxRetries  = "embedding.max_retries"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keyStorageBackend = "storage.backend"
	keyStorageDataDir = "storage.data_dir"
	keyMongoURI       = "storage.mongo_uri"
	keyMongoDatabase  = "storage.mongo_database"

	keyChunkSize        = "ingestion.chunk_size"
	keyOverlap          = "ingestion.overlap"
	keyIngestionTimeout = "ingestion.timeout"

	keyTopK          = "retrieval.top_k"
	keyMinScore      = "retrieval.min_score"
	keyExcerptLength = "retrieval.excerpt_length"
	keyGranularity   = "retrieval.granularity"

	keyServerAddr = "server.addr"
	keyProcessors = "pipeline.processors"
)

// Environment variables that take precedence over the config file.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvMongoURI        = "LEXIS_MONGO_URI"
)

// envAPIKey returns the key the environment holds for provider, if any.
func envAPIKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return os.Getenv(EnvOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return os.Getenv(EnvAnthropicAPIKey)
	}
	return ""
}

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings, applying defaults for
// missing keys and environment overrides.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getEmbeddingProvider(defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			Dimensions:        s.configStore.GetInt(keyEmbedDimensions),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Concurrency:       s.configStore.GetInt(keyEmbedConcurrency),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
			MaxRetries:        s.configStore.GetInt(keyEmbedMaxRetries),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Storage: domain.StorageSettings{
			Backend:       s.getBackend(defaults.Storage.Backend),
			DataDir:       s.configStore.GetString(keyStorageDataDir),
			MongoURI:      s.configStore.GetString(keyMongoURI),
			MongoDatabase: s.getString(keyMongoDatabase, defaults.Storage.MongoDatabase),
		},
		Ingestion: domain.IngestionSettings{
			ChunkSize: s.getInt(keyChunkSize, defaults.Ingestion.ChunkSize),
			Overlap:   s.getIntAllowZero(keyOverlap, defaults.Ingestion.Overlap),
			Timeout:   s.getDuration(keyIngestionTimeout, defaults.Ingestion.Timeout),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:          s.getInt(keyTopK, defaults.Retrieval.TopK),
			MinScore:      s.getFloat(keyMinScore, defaults.Retrieval.MinScore),
			ExcerptLength: s.getInt(keyExcerptLength, defaults.Retrieval.ExcerptLength),
			Granularity:   s.getGranularity(defaults.Retrieval.Granularity),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
	}

	applyEnv(settings)
	return settings, nil
}

// applyEnv lets secrets come from the environment instead of the config file.
func applyEnv(settings *domain.AppSettings) {
	if key := envAPIKey(settings.Embedding.Provider); key != "" {
		settings.Embedding.APIKey = key
	}
	if key := envAPIKey(settings.LLM.Provider); key != "" {
		settings.LLM.APIKey = key
	}
	if uri := os.Getenv(EnvMongoURI); uri != "" {
		settings.Storage.MongoURI = uri
	}
}

// Save persists application settings. Empty API keys are not written so a
// key supplied through the environment is never copied to disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyStorageBackend, string(settings.Storage.Backend)},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyMongoDatabase, settings.Storage.MongoDatabase},
		{keyChunkSize, settings.Ingestion.ChunkSize},
		{keyOverlap, settings.Ingestion.Overlap},
		{keyIngestionTimeout, settings.Ingestion.Timeout.String()},
		{keyTopK, settings.Retrieval.TopK},
		{keyMinScore, settings.Retrieval.MinScore},
		{keyExcerptLength, settings.Retrieval.ExcerptLength},
		{keyGranularity, string(settings.Retrieval.Granularity)},
		{keyServerAddr, settings.Server.Addr},
	}

	optional := []struct {
		key   string
		value any
		set   bool
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey != ""},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey != ""},
		{keyEmbedDimensions, settings.Embedding.Dimensions, settings.Embedding.Dimensions > 0},
		{keyEmbedConcurrency, settings.Embedding.Concurrency, settings.Embedding.Concurrency > 0},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond, settings.Embedding.RequestsPerSecond > 0},
		{keyEmbedMaxRetries, settings.Embedding.MaxRetries, settings.Embedding.MaxRetries != 0},
		{keyMongoURI, settings.Storage.MongoURI, settings.Storage.MongoURI != "" && os.Getenv(EnvMongoURI) == ""},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	for _, v := range optional {
		if !v.set {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: %s serves no embedding models", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && envAPIKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the chat provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && envAPIKey(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that current settings are usable for ingestion and retrieval.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider is not configured", domain.ErrEmbeddingUnavailable)
	}

	ing := settings.Ingestion
	if ing.ChunkSize <= 0 || ing.Overlap < 0 || ing.Overlap >= ing.ChunkSize {
		return fmt.Errorf("%w: chunk_size=%d overlap=%d", domain.ErrInvalidChunkParameters, ing.ChunkSize, ing.Overlap)
	}

	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, settings.Storage.Backend)
	}
	if settings.Storage.Backend == domain.StorageMongoDB && settings.Storage.MongoURI == "" {
		return fmt.Errorf("%w: storage.mongo_uri or %s is required for mongodb", domain.ErrInvalidInput, EnvMongoURI)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetPipelineConfig returns the chunk pipeline configuration.
// The chunker takes its window from the ingestion settings.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyProcessors); len(processors) > 0 {
		cfg.Processors = processors
	}

	settings, err := s.Get()
	if err != nil {
		return cfg
	}
	cfg.ProcessorConfigs["chunker"] = map[string]any{
		"chunk_size": settings.Ingestion.ChunkSize,
		"overlap":    settings.Ingestion.Overlap,
	}
	return cfg
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current chat configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a custom endpoint for local providers and clears it for
// cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if provider != domain.AIProviderOllama {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero distinguishes an explicit 0 from a missing key.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// getDuration accepts "90s"-style strings or whole seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if secs := s.configStore.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getEmbeddingProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := s.getProvider(keyEmbedProvider, defaultVal)
	if !provider.SupportsEmbeddings() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getGranularity(defaultVal domain.Granularity) domain.Granularity {
	g := domain.Granularity(s.configStore.GetString(keyGranularity))
	if !g.IsValid() {
		return defaultVal
	}
	return g
}
