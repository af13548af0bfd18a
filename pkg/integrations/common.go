package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the HTTP timeout for upstream requests. Overpass clients
// raise it to cover the server-side query timeout.
const DefaultTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when the upstream service reports that a
	// resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors,
	// non-2xx responses). When a response was received the chain also holds a
	// [*StatusError].
	ErrNetwork = errors.New("network error")

	// ErrEmptyResult is returned when a query succeeds but matches nothing.
	ErrEmptyResult = errors.New("empty result")
)

// StatusError records the HTTP status of a failed upstream response.
//
//	var se *integrations.StatusError
//	if errors.As(err, &se) && se.StatusCode == http.StatusGatewayTimeout {
//	    // Overpass is overloaded
//	}
type StatusError struct {
	StatusCode int
	Status     string // e.g. "504 Gateway Timeout"; may be empty
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return "status " + e.Status
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

// NewHTTPClient creates an HTTP client with the given timeout. A zero timeout
// uses [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }
