package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every error returned by Send matches exactly one of these
// with errors.Is.
var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrUnexpected   = errors.New("unexpected response")
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// Unwrap maps the status code onto an error kind.
func (e *HTTPError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusBadRequest, e.Status == http.StatusConflict, e.Status == http.StatusUnprocessableEntity:
		return ErrBadRequest
	case e.Status >= 500:
		return ErrUnavailable
	default:
		return ErrUnexpected
	}
}

// StatusOf returns the HTTP status carried by err, or 0 when err did not
// come from a server response.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}
