// pkg/errors/errors.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error types
const (
	ErrValidation      = "VALIDATION_ERROR"
	ErrNotFound        = "NOT_FOUND"
	ErrUserNotFound    = "USER_NOT_FOUND"
	ErrHistoryNotFound = "HISTORY_NOT_FOUND"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrForbidden       = "FORBIDDEN"
	ErrConflict        = "CONFLICT"
	ErrRateLimited     = "RATE_LIMITED"
	ErrPayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrGeneration      = "GENERATION_ERROR"
	ErrInternalServer  = "INTERNAL_SERVER_ERROR"
	ErrBadRequest      = "BAD_REQUEST"
)

// AppError represents a custom application error
type AppError struct {
	Type       string   `json:"type"`
	StatusCode int      `json:"status_code"`
	Message    string   `json:"message"`
	Details    string   `json:"details,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	cause      error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *AppError) Unwrap() error {
	return e.cause
}

// NewAppError creates a new AppError
func NewAppError(errorType string, statusCode int, message string, details ...string) *AppError {
	var detail string
	if len(details) > 0 {
		detail = details[0]
	}

	return &AppError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Details:    detail,
	}
}

// Wrap creates an AppError that keeps err as its cause.
func Wrap(err error, errorType string, statusCode int, message string) *AppError {
	return &AppError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Details:    err.Error(),
		cause:      err,
	}
}

// NewValidationError aggregates every violation into one error. The message
// joins all problems so callers that only print Error() still see them all.
func NewValidationError(problems []string) *AppError {
	return &AppError{
		Type:       ErrValidation,
		StatusCode: http.StatusBadRequest,
		Message:    strings.Join(problems, "; "),
		Errors:     append([]string(nil), problems...),
	}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetErrorType extracts the error type from an error
func GetErrorType(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// GetStatusCode extracts the status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Helper functions to create common errors
func NewUserNotFoundError() *AppError {
	return NewAppError(ErrUserNotFound, http.StatusNotFound, "User not found")
}

func NewHistoryNotFoundError() *AppError {
	return NewAppError(ErrHistoryNotFound, http.StatusNotFound, "History record not found")
}

func NewUnauthorizedError(message string) *AppError {
	return NewAppError(ErrUnauthorized, http.StatusUnauthorized, message)
}

func NewForbiddenError(message string) *AppError {
	return NewAppError(ErrForbidden, http.StatusForbidden, message)
}

func NewConflictError(message string) *AppError {
	return NewAppError(ErrConflict, http.StatusConflict, message)
}
