package providers

import (
	"context"
	"time"
)

// Name identifies a provider in the closed capability set.
type Name string

const (
	// Anthropic is the Anthropic Messages API provider.
	Anthropic Name = "anthropic"

	// OpenAI is the OpenAI Chat Completions API provider.
	OpenAI Name = "openai"

	// Cursor is the Cursor API provider (OpenAI-compatible wire format).
	Cursor Name = "cursor"
)

// All returns the closed set of supported provider names.
func All() []Name {
	return []Name{Anthropic, OpenAI, Cursor}
}

// Valid reports whether n is a supported provider name.
func (n Name) Valid() bool {
	switch n {
	case Anthropic, OpenAI, Cursor:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (n Name) String() string {
	return string(n)
}

// Settings shape a single completion request.
type Settings struct {
	// Provider selects the adapter. Selection happens once, at
	// construction time; settings passed to an adapter must name
	// the adapter's own provider.
	Provider Name `json:"provider" validate:"required,oneof=anthropic openai cursor"`

	// Model identifier in the provider's namespace
	// (e.g., "claude-sonnet-4-20250514", "gpt-4o")
	Model string `json:"model" validate:"required"`

	// Temperature controls randomness (0.0 to 2.0)
	Temperature float64 `json:"temperature" validate:"gte=0,lte=2"`

	// MaxTokens caps the response length
	MaxTokens int `json:"max_tokens" validate:"gte=1"`
}

// Usage holds the token counts a provider reported for one completion.
type Usage struct {
	// InputTokens consumed by the prompt
	InputTokens int `json:"input_tokens"`

	// OutputTokens produced in the answer
	OutputTokens int `json:"output_tokens"`
}

// Total returns the combined token count.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Completion is the normalized result of one successful provider call.
type Completion struct {
	// Answer is the model's text, extracted from the provider-specific
	// response path (first content block, first choice, ...)
	Answer string `json:"answer"`

	// Model that produced the answer, as echoed by the provider
	Model string `json:"model"`

	// Provider that handled the request
	Provider Name `json:"provider"`

	// Usage statistics, zero when the provider omitted them
	Usage Usage `json:"usage"`

	// Latency of the round trip
	Latency time.Duration `json:"latency"`
}

// Adapter is the unified contract every provider implements.
//
// Complete performs exactly one outbound HTTP call per invocation;
// retrying is the caller's responsibility (see the retry package).
// Failures are always *Error, distinguishable by Kind alone.
type Adapter interface {
	// Name returns the provider this adapter speaks to.
	Name() Name

	// Complete sends a single prompt and returns the normalized answer.
	Complete(ctx context.Context, prompt string, settings Settings) (*Completion, error)
}

// Config holds construction-time adapter configuration. The API key is
// injected here by the caller; adapters never read the process
// environment themselves.
type Config struct {
	// APIKey for authentication. An adapter constructed with an empty
	// key returns an auth failure before any network attempt.
	APIKey string

	// BaseURL for the API (optional override)
	BaseURL string

	// Timeout for a single HTTP attempt
	Timeout time.Duration

	// Headers added to every request
	Headers map[string]string
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout: 60 * time.Second,
		Headers: make(map[string]string),
	}
}
