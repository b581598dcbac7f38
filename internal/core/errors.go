package core

import "fmt"

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BackendError reports a remote backend that could not be constructed.
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
