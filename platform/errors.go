package platform

import (
	"fmt"
	"net/http"

	"github.com/go-playground/errors/v5"
)

// Error is a platform API failure: the HTTP status the platform responded
// with and the failure message extracted from the response body. It unwraps
// to the session sentinel matching the endpoint's failure semantics, so
// callers classify with errors.Is.
type Error struct {
	Status  int
	Message string

	sentinel error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("platform responded %d: %s", e.Status, e.Message)
	}

	return fmt.Sprintf("platform responded %d", e.Status)
}

// Unwrap exposes the sentinel for errors.Is classification.
func (e *Error) Unwrap() error {
	return e.sentinel
}

// IsUnauthorized reports whether err is a platform response with status 401.
// It marks a stale access token: callers refresh once and retry.
func IsUnauthorized(err error) bool {
	var apiErr *Error

	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a platform response with status 404.
func IsNotFound(err error) bool {
	var apiErr *Error

	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// ErrorMessage returns the displayable failure message the platform attached
// to err, or "" when err carries none.
func ErrorMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	return ""
}
