package domain

// AIProvider names a service that serves embedding or chat models.
type AIProvider string

const (
	// AIProviderOllama is a local Ollama server. It needs no API key.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI API or a compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic serves chat models only.
	AIProviderAnthropic AIProvider = "anthropic"
)

// AIProviders lists every supported provider in menu order.
func AIProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}
}

// IsValid reports whether p is a supported provider.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	}
	return false
}

// RequiresAPIKey reports whether p refuses requests without a key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// SupportsEmbeddings reports whether p has an embedding model lexis knows.
func (p AIProvider) SupportsEmbeddings() bool {
	_, ok := DefaultEmbeddingModels()[p]
	return ok
}

func (p AIProvider) String() string {
	return string(p)
}

// Description is the name shown in menus.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	}
	return "Unknown"
}

// ModelKind separates embedding models from chat models.
type ModelKind int

const (
	ModelEmbedding ModelKind = iota
	ModelChat
)

// KnownModel describes a model lexis has defaults for.
type KnownModel struct {
	Provider AIProvider
	Name     string
	Kind     ModelKind

	// Dimensions is the vector length of an embedding model.
	Dimensions int

	// Default marks the model picked when the user names none.
	Default bool
}

var knownModels = []KnownModel{
	{Provider: AIProviderOllama, Name: "nomic-embed-text", Kind: ModelEmbedding, Dimensions: 768, Default: true},
	{Provider: AIProviderOllama, Name: "mxbai-embed-large", Kind: ModelEmbedding, Dimensions: 1024},
	{Provider: AIProviderOllama, Name: "all-minilm", Kind: ModelEmbedding, Dimensions: 384},
	{Provider: AIProviderOpenAI, Name: "text-embedding-3-small", Kind: ModelEmbedding, Dimensions: 1536, Default: true},
	{Provider: AIProviderOpenAI, Name: "text-embedding-3-large", Kind: ModelEmbedding, Dimensions: 3072},
	{Provider: AIProviderOpenAI, Name: "text-embedding-ada-002", Kind: ModelEmbedding, Dimensions: 1536},
	{Provider: AIProviderOllama, Name: "llama3.2", Kind: ModelChat, Default: true},
	{Provider: AIProviderOpenAI, Name: "gpt-4o-mini", Kind: ModelChat, Default: true},
	{Provider: AIProviderAnthropic, Name: "claude-3-5-haiku-latest", Kind: ModelChat, Default: true},
}

// KnownModels returns the catalogue of models with defaults.
func KnownModels() []KnownModel {
	return append([]KnownModel(nil), knownModels...)
}

// DefaultEmbeddingModels maps each provider to its default embedding model.
func DefaultEmbeddingModels() map[AIProvider]string {
	return defaultModels(ModelEmbedding)
}

// DefaultLLMModels maps each provider to its default chat model.
func DefaultLLMModels() map[AIProvider]string {
	return defaultModels(ModelChat)
}

// EmbeddingDimensions maps known embedding model names to vector lengths.
func EmbeddingDimensions() map[string]int {
	dims := make(map[string]int)
	for _, m := range knownModels {
		if m.Kind == ModelEmbedding {
			dims[m.Name] = m.Dimensions
		}
	}
	return dims
}

func defaultModels(kind ModelKind) map[AIProvider]string {
	out := make(map[AIProvider]string)
	for _, m := range knownModels {
		if m.Kind == kind && m.Default {
			out[m.Provider] = m.Name
		}
	}
	return out
}

// providerReady reports whether a provider can be called with the given key.
func providerReady(p AIProvider, apiKey string) bool {
	return p.IsValid() && (apiKey != "" || !p.RequiresAPIKey())
}
