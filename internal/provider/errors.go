package provider

import (
	"errors"
	"fmt"
)

// ErrModelNotFound reports that no model in the provider's catalog matches
// the requested name or id.
var ErrModelNotFound = errors.New("model not found")

// APIError represents a non-2xx response from the simulation cloud.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider api error (status %d): %s", e.StatusCode, e.Message)
}

// NetworkError represents a transport-level failure reaching the provider.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("provider network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
