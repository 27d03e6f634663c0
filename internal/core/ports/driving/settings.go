package driving

import "github.com/custodia-labs/lexis/internal/core/domain"

// SettingsService reads and writes lexis configuration. Unset keys take
// the values of GetDefaults.
type SettingsService interface {
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error
	GetDefaults() domain.AppSettings

	// SetEmbeddingProvider switches the embedding provider. An empty model
	// selects the provider default.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate fails when ingestion could not run with the stored settings.
	Validate() error

	GetPipelineConfig() domain.PipelineConfig

	// ValidateEmbeddingConfig and ValidateLLMConfig contact the configured
	// providers.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
