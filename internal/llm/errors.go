package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyCompletion is returned when the provider answers without any choice.
var ErrEmptyCompletion = errors.New("model returned no completion")

// OptionsError is raised before any network call when request options are invalid.
type OptionsError struct {
	Field  string
	Reason string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("invalid model option %s: %s", e.Field, e.Reason)
}

// NetworkError wraps a failure to reach the model endpoint, including timeouts.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("model endpoint unreachable: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError means the credential is missing or was rejected (HTTP 401/403).
type AuthError struct {
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("model credential: %v", e.Err)
	}
	return fmt.Sprintf("model credential rejected (HTTP %d): %v", e.StatusCode, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// APIError is any other rejection by the model provider.
type APIError struct {
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("model provider error (HTTP %d): %v", e.StatusCode, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }
