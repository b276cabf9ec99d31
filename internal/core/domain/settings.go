package domain

// Supported AI providers.
const (
	AIProviderOpenAI = "openai"
	AIProviderOllama = "ollama"
)

// LLMSettings configures the generation/summarisation service.
type LLMSettings struct {
	// Provider is "openai" or "ollama".
	Provider string

	// APIKey authenticates hosted providers. Unused by ollama.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Model is the chat model name.
	Model string
}

// IsConfigured reports whether enough is set to create the service.
func (s *LLMSettings) IsConfigured() bool {
	if s == nil {
		return false
	}
	switch s.Provider {
	case AIProviderOllama:
		return true
	case AIProviderOpenAI:
		return s.APIKey != ""
	default:
		return false
	}
}

// EmbeddingSettings configures the embedding service.
type EmbeddingSettings struct {
	// Provider is "openai" or "ollama".
	Provider string

	// APIKey authenticates hosted providers. Unused by ollama.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Model is the embedding model name.
	Model string
}

// IsConfigured reports whether enough is set to create the service.
func (s *EmbeddingSettings) IsConfigured() bool {
	if s == nil {
		return false
	}
	switch s.Provider {
	case AIProviderOllama:
		return true
	case AIProviderOpenAI:
		return s.APIKey != ""
	default:
		return false
	}
}
