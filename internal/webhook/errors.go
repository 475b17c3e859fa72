package webhook

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the backend rejects login credentials.
	ErrUnauthorized = errors.New("webhook: unauthorized")
	// ErrNotFound is returned when the backend reports a missing record.
	ErrNotFound = errors.New("webhook: not found")
	// ErrUnexpectedShape is returned when a response body cannot be normalized
	// into the expected record or list.
	ErrUnexpectedShape = errors.New("webhook: unexpected response shape")
)

// StatusError describes a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook: backend responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook: backend responded with status %d: %s", e.StatusCode, e.Body)
}

// Is lets errors.Is match ErrNotFound against 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}
