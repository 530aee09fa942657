package billing

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingConfig     = errors.New("missing configuration")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrDuplicateEvent    = errors.New("event already processed")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrEmailNotConfirmed = errors.New("email not confirmed")
	ErrForbidden         = errors.New("forbidden")
	ErrUnknownPrice      = errors.New("unknown price")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNoSubscription    = errors.New("no subscription")
)

// SkipError marks a webhook that cannot be acted on, e.g. no user mapping.
// It is logged and acknowledged, never retried.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skipped: %s", e.Reason)
}

func skip(reason string) error {
	return &SkipError{Reason: reason}
}

// IsSkip reports whether err is a SkipError.
func IsSkip(err error) bool {
	var s *SkipError
	return errors.As(err, &s)
}

// HTTPStatus maps a billing error to a response status and a client-safe
// message. Unknown errors are 500 "internal error".
func HTTPStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingConfig):
		return http.StatusInternalServerError, ErrMissingConfig.Error()
	case errors.Is(err, ErrInvalidSignature):
		return http.StatusBadRequest, ErrInvalidSignature.Error()
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, ErrUnauthenticated.Error()
	case errors.Is(err, ErrEmailNotConfirmed):
		return http.StatusForbidden, ErrEmailNotConfirmed.Error()
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, ErrForbidden.Error()
	case errors.Is(err, ErrUnknownPrice):
		return http.StatusBadRequest, ErrUnknownPrice.Error()
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrNoSubscription):
		return http.StatusNotFound, ErrNoSubscription.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
