package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// mockAdapter is a test implementation of the Adapter interface.
type mockAdapter struct {
	name       Name
	completion *Completion
	err        error
	calls      int
}

func newMockAdapter(name Name) *mockAdapter {
	return &mockAdapter{
		name: name,
		completion: &Completion{
			Answer:   "mock answer",
			Model:    "mock-model",
			Provider: name,
			Usage:    Usage{InputTokens: 10, OutputTokens: 20},
		},
	}
}

func (m *mockAdapter) Name() Name {
	return m.name
}

func (m *mockAdapter) Complete(ctx context.Context, prompt string, settings Settings) (*Completion, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.completion, nil
}

func TestName_Valid(t *testing.T) {
	tests := []struct {
		name  Name
		valid bool
	}{
		{Anthropic, true},
		{OpenAI, true},
		{Cursor, true},
		{Name("gemini"), false},
		{Name(""), false},
	}

	for _, tt := range tests {
		if got := tt.name.Valid(); got != tt.valid {
			t.Errorf("Valid(%q) = %v, want %v", tt.name, got, tt.valid)
		}
	}
}

func TestAll(t *testing.T) {
	names := All()
	if len(names) != 3 {
		t.Fatalf("All() returned %d names, want 3", len(names))
	}

	for _, name := range names {
		if !name.Valid() {
			t.Errorf("All() contains invalid name %q", name)
		}
	}
}

func TestUsage_Total(t *testing.T) {
	u := Usage{InputTokens: 7, OutputTokens: 13}
	if u.Total() != 20 {
		t.Errorf("Total() = %d, want 20", u.Total())
	}
}

func TestKind_Retryable(t *testing.T) {
	tests := []struct {
		kind      Kind
		retryable bool
	}{
		{KindAuth, false},
		{KindTransport, true},
		{KindProvider, true},
		{KindParse, true},
	}

	for _, tt := range tests {
		if got := tt.kind.Retryable(); got != tt.retryable {
			t.Errorf("Retryable(%s) = %v, want %v", tt.kind, got, tt.retryable)
		}
	}
}

func TestError_Error(t *testing.T) {
	err := NewError(KindProvider, OpenAI, "model overloaded", 503, nil)

	want := "openai: provider_error: model overloaded"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	cause := errors.New("connection reset")
	wrapped := NewError(KindTransport, Anthropic, "HTTP request failed", 0, cause)

	if !errors.Is(wrapped, cause) {
		t.Error("Unwrap() does not expose the cause")
	}
}

func TestError_Is(t *testing.T) {
	authErr := NewError(KindAuth, Cursor, "missing API key", 0, nil)

	if !errors.Is(authErr, &Error{Kind: KindAuth}) {
		t.Error("errors.Is should match on kind")
	}

	if errors.Is(authErr, &Error{Kind: KindTransport}) {
		t.Error("errors.Is should not match a different kind")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", NewError(KindParse, OpenAI, "no JSON found", 0, nil), KindParse},
		{"wrapped", fmt.Errorf("reviewing file: %w", NewError(KindAuth, Anthropic, "missing API key", 0, nil)), KindAuth},
		{"foreign", errors.New("plain error"), Kind("")},
		{"nil", nil, Kind("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(NewError(KindAuth, OpenAI, "missing API key", 0, nil)) {
		t.Error("auth errors must not be retryable")
	}

	if !IsRetryable(NewError(KindTransport, OpenAI, "timeout", 0, nil)) {
		t.Error("transport errors must be retryable")
	}

	if IsRetryable(errors.New("not a provider error")) {
		t.Error("foreign errors must not be retryable")
	}
}

func TestKindPredicates(t *testing.T) {
	if !IsAuthError(NewError(KindAuth, OpenAI, "", 0, nil)) {
		t.Error("IsAuthError failed")
	}
	if !IsTransportError(NewError(KindTransport, OpenAI, "", 0, nil)) {
		t.Error("IsTransportError failed")
	}
	if !IsProviderError(NewError(KindProvider, OpenAI, "", 0, nil)) {
		t.Error("IsProviderError failed")
	}
	if !IsParseError(NewError(KindParse, OpenAI, "", 0, nil)) {
		t.Error("IsParseError failed")
	}
	if IsAuthError(NewError(KindParse, OpenAI, "", 0, nil)) {
		t.Error("IsAuthError matched a parse error")
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	t.Run("Register", func(t *testing.T) {
		if err := registry.Register(newMockAdapter(OpenAI)); err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		if err := registry.Register(newMockAdapter(Anthropic)); err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		if err := registry.Register(newMockAdapter(OpenAI)); !errors.Is(err, ErrAlreadyRegistered) {
			t.Errorf("duplicate Register() error = %v, want ErrAlreadyRegistered", err)
		}

		if err := registry.Register(nil); err == nil {
			t.Error("Register(nil) expected error")
		}

		if err := registry.Register(newMockAdapter(Name("gemini"))); err == nil {
			t.Error("Register() expected error for name outside the provider set")
		}
	})

	t.Run("Get", func(t *testing.T) {
		adapter, err := registry.Get(OpenAI)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}

		if adapter.Name() != OpenAI {
			t.Errorf("Get() returned adapter %s, want %s", adapter.Name(), OpenAI)
		}

		if _, err := registry.Get(Cursor); !errors.Is(err, ErrNotRegistered) {
			t.Errorf("Get() error = %v, want ErrNotRegistered", err)
		}
	})

	t.Run("Names", func(t *testing.T) {
		names := registry.Names()
		if len(names) != 2 {
			t.Fatalf("Names() returned %d names, want 2", len(names))
		}

		// Stable order: anthropic before openai.
		if names[0] != Anthropic || names[1] != OpenAI {
			t.Errorf("Names() = %v, want [anthropic openai]", names)
		}
	})

	t.Run("Len", func(t *testing.T) {
		if registry.Len() != 2 {
			t.Errorf("Len() = %d, want 2", registry.Len())
		}
	})
}
