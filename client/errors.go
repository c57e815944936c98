package client

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a package or version is not found.
var ErrNotFound = errors.New("not found")

// HTTPError represents an HTTP error response.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error represents a 404 response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == 404
}

// NotFoundError wraps ErrNotFound with additional context.
type NotFoundError struct {
	Ecosystem string
	Name      string
	Version   string
}

func (e *NotFoundError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("%s: package %s version %s not found", e.Ecosystem, e.Name, e.Version)
	}
	return fmt.Sprintf("%s: package %s not found", e.Ecosystem, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// RateLimitError is returned when the registry keeps rate limiting requests
// after all retries are spent.
type RateLimitError struct {
	URL        string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: %s (retry after %s)", e.URL, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited: %s", e.URL)
}

// DecodeError is returned when a registry response is not the JSON document
// the caller expected.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
