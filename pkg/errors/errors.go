package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Standard error codes
const (
	CodeUnauthenticated      = "UNAUTHENTICATED"
	CodeForbidden            = "FORBIDDEN"
	CodeInvalidPayload       = "INVALID_PAYLOAD"
	CodeValidation           = "VALIDATION"
	CodeNotFound             = "NOT_FOUND"
	CodeOverConsumption      = "OVER_CONSUMPTION"
	CodeTimeout              = "TIMEOUT"
	CodeStorageCleanupFailed = "STORAGE_CLEANUP_FAILED"
	CodeServerError          = "SERVER_ERROR"
)

// AppError represents an application error with HTTP status and error code
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// WithDetail adds a single detail to the error
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Wrap wraps an existing error
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// NewAppError creates a new AppError
func NewAppError(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// ErrUnauthenticated creates an error for requests without caller identity
func ErrUnauthenticated(message string) *AppError {
	if message == "" {
		message = "caller identity is required"
	}
	return NewAppError(CodeUnauthenticated, message, http.StatusUnauthorized)
}

// ErrForbidden creates an error for callers lacking permission
func ErrForbidden(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return NewAppError(CodeForbidden, message, http.StatusForbidden)
}

// ErrInvalidPayload creates an error for malformed or empty top-level requests
func ErrInvalidPayload(message string) *AppError {
	return NewAppError(CodeInvalidPayload, message, http.StatusBadRequest)
}

// ErrValidation creates an error for a row or entry failing sanitization checks
func ErrValidation(message string) *AppError {
	return NewAppError(CodeValidation, message, http.StatusBadRequest)
}

// ErrValidationWithFields creates a validation error with field details
func ErrValidationWithFields(message string, fields map[string]string) *AppError {
	return ErrValidation(message).WithDetails(fields)
}

// ErrNotFound creates a not found error
func ErrNotFound(resource string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// ErrNotFoundWithID creates a not found error with ID
func ErrNotFoundWithID(resource, id string) *AppError {
	return ErrNotFound(resource).WithDetail("id", id)
}

// ErrOverConsumption creates an error for a consumption request exceeding the
// remaining case balance
func ErrOverConsumption(caseNumber string, requested, remaining int) *AppError {
	return NewAppError(
		CodeOverConsumption,
		fmt.Sprintf("requested %d lines exceeds remaining balance %d for case %s", requested, remaining, caseNumber),
		http.StatusConflict,
	)
}

// ErrTimeout creates an error for an exceeded processing budget
func ErrTimeout(operation string) *AppError {
	return NewAppError(CodeTimeout, fmt.Sprintf("%s exceeded its processing budget", operation), http.StatusGatewayTimeout)
}

// ErrStorageCleanupFailed creates an error for a failed blob deletion
func ErrStorageCleanupFailed(path string) *AppError {
	return NewAppError(CodeStorageCleanupFailed, fmt.Sprintf("failed to delete stored object %s", path), http.StatusInternalServerError)
}

// ErrInternal creates a server error
func ErrInternal(message string) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	return NewAppError(CodeServerError, message, http.StatusInternalServerError)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromError converts a standard error to an AppError
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	return ErrInternal("").Wrap(err)
}

// MapDomainError maps common domain error messages to AppErrors
func MapDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "not found"):
		return ErrNotFound("resource").Wrap(err)
	case strings.Contains(msg, "exceeds remaining"):
		return NewAppError(CodeOverConsumption, err.Error(), http.StatusConflict).Wrap(err)
	case strings.Contains(msg, "invalid"), strings.Contains(msg, "required"):
		return ErrValidation(err.Error()).Wrap(err)
	case strings.Contains(msg, "forbidden"), strings.Contains(msg, "permission denied"):
		return ErrForbidden(err.Error()).Wrap(err)
	case strings.Contains(msg, "timeout"):
		return ErrTimeout("operation").Wrap(err)
	default:
		return ErrInternal("").Wrap(err)
	}
}
