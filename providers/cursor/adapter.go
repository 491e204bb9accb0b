package cursor

import (
	"context"
	"net/http"

	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers"
	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers/openai"
)

const defaultBaseURL = "https://api.cursor.com/v1"

// Adapter implements providers.Adapter for the Cursor API, which
// exposes the OpenAI chat completion wire format on its own host.
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
}

// New creates a Cursor adapter. The API key in config is the only
// credential source; the adapter never consults the environment.
func New(config providers.Config) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = providers.DefaultConfig().Timeout
	}

	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider name.
func (a *Adapter) Name() providers.Name {
	return providers.Cursor
}

// Complete performs a single chat completion call in the OpenAI wire
// format: one system message framing the reviewer role, one user
// message carrying the prompt.
func (a *Adapter) Complete(ctx context.Context, prompt string, settings providers.Settings) (*providers.Completion, error) {
	return openai.Do(ctx, a.httpClient, a.config, a.Name(), prompt, settings)
}
