package driven

import "context"

// LLMService provides text generation for descriptions and answers.
// Scanning and asking require it; operations fail up front when nil.
//
// Implementations may include:
//   - OpenAI (gpt-4o-mini)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// DescribeImage produces a text description of raw image bytes,
	// guided by the given instruction. Implementations without a
	// multimodal path return an error; callers degrade to the
	// filename fallback.
	DescribeImage(ctx context.Context, mimeType string, image []byte, instruction string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// System is an optional system message.
	System string
}
