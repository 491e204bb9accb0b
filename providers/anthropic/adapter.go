package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	messagesPath   = "/v1/messages"

	// apiVersion is the Messages API revision sent with every request.
	apiVersion = "2023-06-01"
)

// Adapter implements providers.Adapter for the Anthropic Messages API.
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
}

// New creates an Anthropic adapter. The API key in config is the only
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
	return providers.Anthropic
}

// Complete performs a single Messages API call. The prompt travels as
// one user-role message; this provider gets no system role.
func (a *Adapter) Complete(ctx context.Context, prompt string, settings providers.Settings) (*providers.Completion, error) {
	if a.config.APIKey == "" {
		return nil, providers.NewError(providers.KindAuth, a.Name(), "missing API key", 0, nil)
	}

	startTime := time.Now()

	anthropicReq := &anthropicRequest{
		Model:       settings.Model,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	reqBody, err := json.Marshal(anthropicReq)
	if err != nil {
		return nil, providers.NewError(providers.KindTransport, a.Name(), "failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+messagesPath, bytes.NewReader(reqBody))
	if err != nil {
		return nil, providers.NewError(providers.KindTransport, a.Name(), "failed to create request", 0, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.config.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)
	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewError(providers.KindTransport, a.Name(), "HTTP request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewError(providers.KindTransport, a.Name(), "failed to read response", httpResp.StatusCode, err)
	}

	var anthropicResp anthropicResponse
	if err := json.Unmarshal(respBody, &anthropicResp); err != nil {
		return nil, providers.NewError(providers.KindTransport, a.Name(), "failed to decode response", httpResp.StatusCode, err)
	}

	// The API reports failures through a top-level error object; that
	// wins over the HTTP status. Rejected credentials are fatal.
	if anthropicResp.Error != nil {
		kind := providers.KindProvider
		if httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden {
			kind = providers.KindAuth
		}
		return nil, providers.NewError(kind, a.Name(), anthropicResp.Error.Message, httpResp.StatusCode, nil)
	}

	if len(anthropicResp.Content) == 0 {
		return nil, providers.NewError(providers.KindTransport, a.Name(), "response contained no content blocks", httpResp.StatusCode, nil)
	}

	return &providers.Completion{
		Answer:   anthropicResp.Content[0].Text,
		Model:    anthropicResp.Model,
		Provider: a.Name(),
		Usage: providers.Usage{
			InputTokens:  anthropicResp.Usage.InputTokens,
			OutputTokens: anthropicResp.Usage.OutputTokens,
		},
		Latency: time.Since(startTime),
	}, nil
}

// Anthropic-specific request/response types

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Content []anthropicContent `json:"content"`
	Usage   anthropicUsage     `json:"usage"`
	Error   *anthropicAPIError `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicAPIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
