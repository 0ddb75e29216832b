// Package errors provides the error taxonomy shared by the mind-map graph model,
// the layout engine, the remote clients and the resource service.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Graph and editing errors
	ErrorTypeValidation     ErrorType = "VALIDATION"
	ErrorTypeMalformedGraph ErrorType = "MALFORMED_GRAPH"
	ErrorTypeGeneration     ErrorType = "GENERATION"
	ErrorTypePersistence    ErrorType = "PERSISTENCE"

	// Ambient errors
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeInternal     ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code,omitempty"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	Cause      error     `json:"-"`
	HTTPStatus int       `json:"-"`
	File       string    `json:"-"`
	Line       int       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError of the same type and code, so sentinel
// errors declared with these constructors work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code != "" && e.Code == t.Code
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func newError(errType ErrorType, status int, message string) *AppError {
	_, file, line, _ := runtime.Caller(2)
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: status,
		File:       file,
		Line:       line,
	}
}

// NewValidationError reports a local precondition failure. It never reaches
// the network.
func NewValidationError(message string) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message)
}

// NewMalformedGraphError reports an ingested graph that references unknown or
// duplicate ids.
func NewMalformedGraphError(message string) *AppError {
	return newError(ErrorTypeMalformedGraph, http.StatusUnprocessableEntity, message)
}

// NewGenerationError reports a failed generation round-trip.
func NewGenerationError(message string) *AppError {
	return newError(ErrorTypeGeneration, http.StatusBadGateway, message)
}

// NewPersistenceError reports a failed save.
func NewPersistenceError(message string) *AppError {
	return newError(ErrorTypePersistence, http.StatusBadGateway, message)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", resource))
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return newError(ErrorTypeConflict, http.StatusConflict, message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return newError(ErrorTypeUnauthorized, http.StatusUnauthorized, message)
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return newError(ErrorTypeForbidden, http.StatusForbidden, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message).WithCause(cause)
}

// ============================================================================
// PREDICATES
// ============================================================================

// IsType checks whether any error in the chain is an *AppError of errType.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

func IsValidation(err error) bool     { return IsType(err, ErrorTypeValidation) }
func IsMalformedGraph(err error) bool { return IsType(err, ErrorTypeMalformedGraph) }
func IsGeneration(err error) bool     { return IsType(err, ErrorTypeGeneration) }
func IsPersistence(err error) bool    { return IsType(err, ErrorTypePersistence) }
func IsNotFound(err error) bool       { return IsType(err, ErrorTypeNotFound) }
func IsConflict(err error) bool       { return IsType(err, ErrorTypeConflict) }
func IsUnauthorized(err error) bool   { return IsType(err, ErrorTypeUnauthorized) }
func IsForbidden(err error) bool      { return IsType(err, ErrorTypeForbidden) }

// HTTPStatus returns the status code to answer with for err.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// UserMessage turns err into the text shown next to the control that
// triggered the operation.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Details != "" {
			return appErr.Message + ": " + appErr.Details
		}
		return appErr.Message
	}
	return "An unknown error occurred."
}
