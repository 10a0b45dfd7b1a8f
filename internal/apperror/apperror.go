package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUpstreamAuth    = errors.New("upstream auth failure")
	ErrUpstreamTimeout = errors.New("upstream timeout")
	ErrPersistence     = errors.New("persistence failure")
	ErrSyncFailed      = errors.New("sync failed")
)

type AppError struct {
	Err     error  // sentinel classifying the error
	Cause   error  // optional underlying error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns both the sentinel and the cause, so errors.Is matches
// either. Go 1.20+ walks the []error form of Unwrap.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthenticated marks a request with a missing or invalid session.
// HTTP handlers map this to 401 Unauthorized.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// UpstreamAuth wraps a failure from the OAuth provider or identity endpoint.
// The cause is kept for logs; handlers respond with a generic message so
// provider error internals never reach the client.
func UpstreamAuth(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrUpstreamAuth,
		Cause:   cause,
		Message: message,
	}
}

// UpstreamTimeout marks an outbound call that exceeded its deadline.
func UpstreamTimeout(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrUpstreamTimeout,
		Cause:   cause,
		Message: message,
	}
}

// Persistence wraps a storage read/write failure.
func Persistence(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrPersistence,
		Cause:   cause,
		Message: message,
	}
}

// SyncFailed wraps any failure inside the contact sync pipeline. The cause
// chain stays intact, so errors.Is still finds the original class.
func SyncFailed(cause error) *AppError {
	return &AppError{
		Err:     ErrSyncFailed,
		Cause:   cause,
		Message: "contact sync failed",
	}
}
