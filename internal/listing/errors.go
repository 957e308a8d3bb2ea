package listing

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/roach88/vitrine/internal/store"
)

// ErrorCode categorizes listing failures.
type ErrorCode string

const (
	// ErrCodeUnavailable means the store could not be reached.
	ErrCodeUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// ErrCodeQueryFailed means the store answered but the query failed.
	ErrCodeQueryFailed ErrorCode = "QUERY_FAILED"

	// ErrCodeNotFound is used for unknown routes.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeRateLimited is used when a client exceeds its request budget.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Error wraps an underlying failure with an HTTP status and a message that
// is safe to show to callers.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error.
func NewError(code ErrorCode, status int, message string, err error) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// wrapStore classifies a store failure. op names the operation for the
// caller-facing message.
func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if store.IsUnavailable(err) {
		return NewError(ErrCodeUnavailable, http.StatusServiceUnavailable, "database unavailable", fmt.Errorf("%s: %w", op, err))
	}
	return NewError(ErrCodeQueryFailed, http.StatusInternalServerError, "failed to "+op, err)
}

// IsUnavailable reports whether err means the store could not be reached.
func IsUnavailable(err error) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Code == ErrCodeUnavailable
	}
	return store.IsUnavailable(err)
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var le *Error
	if errors.As(err, &le) && le.Status != 0 {
		return le.Status
	}
	if store.IsUnavailable(err) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// CodeOf returns the code carried by err, or QUERY_FAILED.
func CodeOf(err error) ErrorCode {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	if store.IsUnavailable(err) {
		return ErrCodeUnavailable
	}
	return ErrCodeQueryFailed
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var le *Error
	if errors.As(err, &le) {
		return le.Message
	}
	return "internal server error"
}
