package apperror

import (
	"errors"
	"net/http"
)

// AppError is a custom error type that includes an HTTP status code.
// Domain packages declare their sentinels as AppErrors so the HTTP layer
// can map them without knowing every module.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation reports malformed input or a request the current state cannot satisfy.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

// Unauthenticated reports a missing or invalid credential.
func Unauthenticated(message string) *AppError {
	return New(http.StatusUnauthorized, message)
}

// Forbidden reports an authenticated caller without rights on the resource.
func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message)
}

// NotFound reports an absent resource.
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}

// StatusOf returns the HTTP status carried by err, or 500 if err is not an AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
