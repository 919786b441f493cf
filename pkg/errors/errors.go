package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"mergington-be/internal/domain"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeAlreadyRegistered ErrorType = "already_registered"
	ErrorTypeActivityFull      ErrorType = "activity_full"
	ErrorTypeNotRegistered     ErrorType = "not_registered"
	ErrorTypeLockTimeout       ErrorType = "lock_timeout"
	ErrorTypeInternal          ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"detail"`
	StatusCode int       `json:"-"`
	Internal   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// IsClientError reports whether the error is a rejection rather than a fault
func (e *AppError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

func newBadRequest(t ErrorType, message string) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// FromDomain maps service errors onto HTTP-facing application errors.
// Unknown errors become internal errors that keep the cause for logging only.
func FromDomain(err error) *AppError {
	var appErr *AppError
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, domain.ErrActivityNotFound):
		return NewNotFoundError("Activity not found")
	case stderrors.Is(err, domain.ErrAlreadyRegistered):
		return newBadRequest(ErrorTypeAlreadyRegistered, "Student is already signed up")
	case stderrors.Is(err, domain.ErrActivityFull):
		return newBadRequest(ErrorTypeActivityFull, "Activity is full")
	case stderrors.Is(err, domain.ErrNotRegistered):
		return newBadRequest(ErrorTypeNotRegistered, "Student is not signed up for this activity")
	case stderrors.Is(err, domain.ErrLockTimeout):
		return &AppError{
			Type:       ErrorTypeLockTimeout,
			Message:    "Activity is busy, please retry",
			StatusCode: http.StatusServiceUnavailable,
			Internal:   err,
		}
	default:
		return NewInternalError("Internal server error", err)
	}
}

// WriteJSON writes the error as {"detail": ..., "type": ...}
func WriteJSON(w http.ResponseWriter, appErr *AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(appErr)
}
