package providers

import (
	"errors"
	"fmt"
)

// Kind classifies a failed provider call. Callers branch on the kind
// alone; message text is for humans and logs.
type Kind string

const (
	// KindAuth means the credential is missing or rejected. Fatal,
	// never retried.
	KindAuth Kind = "auth_error"

	// KindTransport means a network failure or a malformed/unusable
	// response body.
	KindTransport Kind = "transport_error"

	// KindProvider means the remote API itself reported an error.
	KindProvider Kind = "provider_error"

	// KindParse means the model's answer did not contain valid
	// structured data. Raised by callers that decode answers, not by
	// adapters.
	KindParse Kind = "parse_error"
)

// Retryable reports whether another attempt can change the outcome.
// Credential problems never heal by retrying; everything else might.
func (k Kind) Retryable() bool {
	return k != KindAuth
}

// Error is the structured failure for a provider call.
type Error struct {
	// Kind is the failure class
	Kind Kind

	// Provider that the call targeted
	Provider Name

	// Message describes the failure; for provider errors it carries
	// the remote API's message verbatim
	Message string

	// StatusCode is the HTTP status when a response was received, else 0
	StatusCode int

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s (%v)", e.Provider, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same kind, so
// errors.Is(err, &Error{Kind: KindAuth}) holds for any auth failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError creates a provider call error.
func NewError(kind Kind, provider Name, message string, statusCode int, cause error) *Error {
	return &Error{
		Kind:       kind,
		Provider:   provider,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// KindOf extracts the failure kind from err, or "" when err carries no
// provider error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable reports whether a retrying caller may attempt err again.
// Errors that carry no kind are treated as programming errors and are
// never retried.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.Retryable()
	}
	return false
}

// IsAuthError reports whether err is a credential failure.
func IsAuthError(err error) bool {
	return KindOf(err) == KindAuth
}

// IsTransportError reports whether err is a network or decoding failure.
func IsTransportError(err error) bool {
	return KindOf(err) == KindTransport
}

// IsProviderError reports whether err carries an error the remote API
// reported.
func IsProviderError(err error) bool {
	return KindOf(err) == KindProvider
}

// IsParseError reports whether err means the answer held no valid
// structured data.
func IsParseError(err error) bool {
	return KindOf(err) == KindParse
}
