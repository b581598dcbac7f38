package llm

import (
	"context"
	"errors"
	"fmt"
)

// LLMError represents an error from a remote completion backend.
type LLMError struct {
	// Type categorizes the error
	Type string

	// Message is a human-readable error message
	Message string

	// Code is the HTTP status code (if applicable)
	Code int

	// Err is the underlying error
	Err error
}

// Error types.
const (
	ErrorTypeNetwork   = "network"
	ErrorTypeAPI       = "api"
	ErrorTypeTimeout   = "timeout"
	ErrorTypeMalformed = "malformed"
)

// Error implements the error interface.
func (e *LLMError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("LLM %s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("LLM %s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *LLMError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a network error.
func NewNetworkError(err error) *LLMError {
	return &LLMError{
		Type:    ErrorTypeNetwork,
		Message: "Failed to reach the completion backend. Check your network connection.",
		Err:     err,
	}
}

// NewAPIError creates an API error with status code.
func NewAPIError(code int, message string) *LLMError {
	return &LLMError{
		Type:    ErrorTypeAPI,
		Code:    code,
		Message: fmt.Sprintf("backend rejected request: %s", message),
	}
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *LLMError {
	return &LLMError{
		Type:    ErrorTypeTimeout,
		Message: "Request timed out. The model may be under heavy load.",
		Err:     err,
	}
}

// NewMalformedError creates an error for a response without usable content.
func NewMalformedError(message string, err error) *LLMError {
	return &LLMError{
		Type:    ErrorTypeMalformed,
		Message: fmt.Sprintf("malformed response: %s", message),
		Err:     err,
	}
}

// ErrorType returns the category of err. Errors that are not an *LLMError
// are classified as timeouts when they come from a deadline and as network
// failures otherwise.
func ErrorType(err error) string {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}
	return ErrorTypeNetwork
}

// transportError wraps a failed HTTP round trip.
func transportError(ctx context.Context, err error) *LLMError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewTimeoutError(err)
	}
	return NewNetworkError(err)
}
