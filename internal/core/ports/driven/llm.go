package driven

import "context"

// LLMService provides text generation. The core hands it one assembled
// prompt per ask; a failure here is folded into the answer rather than
// propagated, so implementations should return honest errors and let the
// synthesis layer decide presentation.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT-4, GPT-4o-mini)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup to fail fast on bad credentials.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
