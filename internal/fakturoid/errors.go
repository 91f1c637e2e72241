package fakturoid

import (
	"errors"
	"fmt"
)

// Common Fakturoid client errors
var (
	// ErrUnauthorized is returned when the API rejects the client credentials or token.
	ErrUnauthorized = errors.New("fakturoid authorization failed")

	// ErrRequestFailed is returned for any other non-2xx response.
	ErrRequestFailed = errors.New("fakturoid request failed")

	// ErrCacheUnavailable is returned when the local expense cache cannot be read.
	ErrCacheUnavailable = errors.New("expense cache unavailable")
)

// APIError describes a non-2xx response from the API.
type APIError struct {
	// Op is the client operation that failed (e.g., "ListInvoices").
	Op string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Body is the response body, trimmed for logging.
	Body string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("fakturoid: %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("fakturoid: %s failed with status %d", e.Op, e.StatusCode)
}

// Is matches ErrUnauthorized for 401/403 and ErrRequestFailed otherwise.
func (e *APIError) Is(target error) bool {
	if target == ErrUnauthorized {
		return e.StatusCode == 401 || e.StatusCode == 403
	}
	return target == ErrRequestFailed
}

func newAPIError(op string, status int, body string) *APIError {
	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return &APIError{Op: op, StatusCode: status, Body: body}
}
