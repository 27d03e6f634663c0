package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// probeText is embedded to confirm the model loads and to measure its
// vector size.
const probeText = "The court held that the contract was void."

// ConfigValidator checks provider settings against the live service before
// they are saved.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator that gives each check pingTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// ValidateEmbedding pings the provider and embeds a probe sentence. When
// settings fix the dimensions, the probe vector must have that length.
// Unconfigured settings are valid.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return err
	}
	vec, err := svc.Embed(ctx, probeText)
	if err != nil {
		return fmt.Errorf("embedding model %s: %w", svc.ModelName(), err)
	}
	if settings.Dimensions > 0 && len(vec) != settings.Dimensions {
		return fmt.Errorf("%w: model %s produces %d dimensions, settings say %d",
			domain.ErrInvalidInput, svc.ModelName(), len(vec), settings.Dimensions)
	}
	return nil
}

// ValidateLLM pings the chat provider. Unconfigured settings are valid.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	svc, err := CreateChatService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return svc.Ping(ctx)
}
