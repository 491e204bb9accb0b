package openai

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
	defaultBaseURL = "https://api.openai.com/v1"
	chatPath       = "/chat/completions"

	// systemPrompt frames every conversation; the reviewed file and
	// the review instructions travel in the user message.
	systemPrompt = "You are an expert Salesforce developer performing a code review of Apex source files."
)

// Adapter implements providers.Adapter for the OpenAI Chat Completions API.
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
}

// New creates an OpenAI adapter. The API key in config is the only
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
	return providers.OpenAI
}

// Complete performs a single chat completion call: one system message
// framing the reviewer role, one user message carrying the prompt.
func (a *Adapter) Complete(ctx context.Context, prompt string, settings providers.Settings) (*providers.Completion, error) {
	return Do(ctx, a.httpClient, a.config, a.Name(), prompt, settings)
}

// Do performs one chat completion round trip in the OpenAI wire format.
// The cursor adapter reuses it against a different host.
func Do(ctx context.Context, client *http.Client, config providers.Config, name providers.Name, prompt string, settings providers.Settings) (*providers.Completion, error) {
	if config.APIKey == "" {
		return nil, providers.NewError(providers.KindAuth, name, "missing API key", 0, nil)
	}

	startTime := time.Now()

	chatReq := &ChatRequest{
		Model: settings.Model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: settings.Temperature,
		MaxTokens:   settings.MaxTokens,
	}

	reqBody, err := json.Marshal(chatReq)
	if err != nil {
		return nil, providers.NewError(providers.KindTransport, name, "failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, config.BaseURL+chatPath, bytes.NewReader(reqBody))
	if err != nil {
		return nil, providers.NewError(providers.KindTransport, name, "failed to create request", 0, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+config.APIKey)
	for k, v := range config.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, providers.NewError(providers.KindTransport, name, "HTTP request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewError(providers.KindTransport, name, "failed to read response", httpResp.StatusCode, err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, providers.NewError(providers.KindTransport, name, "failed to decode response", httpResp.StatusCode, err)
	}

	// A top-level error object wins over the HTTP status. Rejected
	// credentials are fatal.
	if chatResp.Error != nil {
		kind := providers.KindProvider
		if httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden {
			kind = providers.KindAuth
		}
		return nil, providers.NewError(kind, name, chatResp.Error.Message, httpResp.StatusCode, nil)
	}

	if len(chatResp.Choices) == 0 {
		return nil, providers.NewError(providers.KindTransport, name, "response contained no choices", httpResp.StatusCode, nil)
	}

	return &providers.Completion{
		Answer:   chatResp.Choices[0].Message.Content,
		Model:    chatResp.Model,
		Provider: name,
		Usage: providers.Usage{
			InputTokens:  chatResp.Usage.PromptTokens,
			OutputTokens: chatResp.Usage.CompletionTokens,
		},
		Latency: time.Since(startTime),
	}, nil
}

// OpenAI-specific request/response types. Exported because the cursor
// adapter and its tests reuse the same wire format.

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
	Error   *APIError    `json:"error,omitempty"`
}

type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}
