// Package errors provides error code definitions for the core-UI boundary.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code that can be bridged to the UI layer.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrInvalid    ErrorCode = "INVALID_INPUT"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// Storage errors
	ErrStorage ErrorCode = "STORAGE_ERROR"

	// Remote API errors
	ErrNetwork   ErrorCode = "NETWORK_ERROR"
	ErrCancelled ErrorCode = "REQUEST_CANCELLED"
	ErrAPI       ErrorCode = "API_ERROR"

	// Offline sync errors
	ErrQueueFailed   ErrorCode = "QUEUE_FAILED"
	ErrSyncFailed    ErrorCode = "SYNC_FAILED"
	ErrUnknownAction ErrorCode = "UNKNOWN_SYNC_ACTION"

	// Cache errors
	ErrCacheFailed ErrorCode = "CACHE_FAILED"

	// Export errors
	ErrExportFailed ErrorCode = "EXPORT_FAILED"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is checks if an error carries a specific code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	for stderrors.As(err, &appErr) {
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
		appErr = nil
	}
	return false
}

// IsNetwork reports whether the error is a transient network-class failure.
// These are the only remote-call failures that fall back to offline queueing.
func IsNetwork(err error) bool {
	return Is(err, ErrNetwork)
}

// IsCancelled reports whether the error is a cooperative cancellation.
// Cancellation is an expected outcome, not an error: callers skip error UI
// and never queue the request for replay.
func IsCancelled(err error) bool {
	return Is(err, ErrCancelled) || stderrors.Is(err, context.Canceled)
}
