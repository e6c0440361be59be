package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is raised before any network call when an
	// authenticated request is attempted with no token present.
	ErrUnauthenticated = errors.New("apiclient: no session token present")
	// ErrSessionExpired is raised when the backend rejects the credential
	// with a 401 response.
	ErrSessionExpired = errors.New("apiclient: session expired")
	// ErrInvalidBaseURL is returned when constructing a client with an
	// unusable base URL.
	ErrInvalidBaseURL = errors.New("apiclient: invalid base URL")
	// ErrDecodeResponse wraps failures to decode a JSON-labeled response body.
	ErrDecodeResponse = errors.New("apiclient: failed to decode response body")
)

// APIError is any non-2xx backend response other than 401. It carries the
// status code and a best-effort parsed error body for call-site-specific
// handling (e.g. form validation display).
type APIError struct {
	Status int
	// Body holds the parsed JSON error payload when the backend sent one,
	// otherwise the raw response text.
	Body any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("apiclient: request failed with status %d", e.Status)
}

// Message extracts a human-readable message from the error body, falling
// back to the HTTP status text representation.
func (e *APIError) Message() string {
	switch body := e.Body.(type) {
	case string:
		if body != "" {
			return body
		}
	case map[string]any:
		for _, key := range []string{"message", "error", "detail"} {
			if msg, ok := body[key].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return e.Error()
}
