package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/gridiron/internal/adapters/sportsdata"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)

// KindError tags a failure with the operation that saw it and a stable kind.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Kind == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *KindError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// WrapKind attaches op and kind to err.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// Wrap attaches op to err, keeping whatever kind err already carries.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Op: op, Err: err}
}

// statusFor maps an error to the HTTP status and code reported to clients.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, sportsdata.ErrInvalidArgument):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, sportsdata.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, sportsdata.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, sportsdata.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, sportsdata.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, sportsdata.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream_timeout"
	case errors.Is(err, sportsdata.ErrNotConfigured):
		return http.StatusServiceUnavailable, "not_configured"
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, "internal_error"
	default:
		return http.StatusBadGateway, "upstream_error"
	}
}
