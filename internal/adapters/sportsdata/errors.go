package sportsdata

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable causes for upstream failures. Every *Error unwraps to exactly one.
var (
	ErrInvalidCredentials = errors.New("API key invalid or expired")
	ErrForbidden          = errors.New("Access forbidden. Check API subscription") //nolint:revive,stylecheck // user-facing text
	ErrNotFound           = errors.New("Resource not found")                       //nolint:revive,stylecheck // user-facing text
	ErrRateLimited        = errors.New("Rate limit exceeded")                      //nolint:revive,stylecheck // user-facing text
	ErrTimeout            = errors.New("upstream request timed out")
	ErrUpstream           = errors.New("upstream error")

	// ErrNotConfigured is returned without a network call when no API key is set.
	ErrNotConfigured = errors.New("sports data API key not configured")
	// ErrInvalidArgument rejects malformed path parameters before any call.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error describes a failed upstream call.
type Error struct {
	Endpoint   string
	StatusCode int
	Kind       error
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the stable cause and the underlying error.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Cause returns a short label for the stable cause, e.g. "not_found".
func (e *Error) Cause() string {
	return outcome(e.Kind)
}

// kindForStatus maps a non-2xx status to its stable cause.
func kindForStatus(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrInvalidCredentials
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrTimeout
	default:
		return ErrUpstream
	}
}

// outcome is the metrics label for err.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	default:
		return "error"
	}
}
