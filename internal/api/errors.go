package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes the CLI branches on.
var (
	// ErrUnauthorized means the backend rejected or expired the bearer token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the requested resource does not exist or does not
	// belong to the current user.
	ErrNotFound = errors.New("not found")

	// ErrMissingAuthorizationCode means the OAuth redirect landed without a
	// code parameter.
	ErrMissingAuthorizationCode = errors.New("no authorization code found in callback")
)

// ValidationError is a client-side input failure. It is always produced
// before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with a user-facing message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// BackendError is a non-2xx response from the backend. Detail carries the
// human-readable message from the response body and is shown to the user
// verbatim.
type BackendError struct {
	StatusCode int
	Detail     string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend request failed with status %d: %s", e.StatusCode, e.Detail)
}

// NetworkError is a request that could not complete at the transport level.
// The underlying cause is logged; users get a generic try-again message.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UserMessage converts any error from this package into the string that
// should be surfaced to the user. Backend detail is passed through verbatim;
// network failures collapse to a generic message.
func UserMessage(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Detail
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Unable to reach the server. Please try again later."
	}

	if errors.Is(err, ErrUnauthorized) {
		return "Your session has expired. Please log in again."
	}

	if errors.Is(err, ErrNotFound) {
		return "The requested conversation could not be found."
	}

	return err.Error()
}
