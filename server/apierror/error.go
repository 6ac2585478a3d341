// Package apierror maps domain errors to HTTP error responses.
package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nnnkkk7/sqlpager/pkg/connection"
	"github.com/nnnkkk7/sqlpager/pkg/foreignkey"
	"github.com/nnnkkk7/sqlpager/pkg/query"
)

// Error codes
const (
	CodeInvalidParameter  = "INVALID_PARAMETER"
	CodeInvalidIdentifier = "INVALID_IDENTIFIER"
	CodeConnectionError   = "CONNECTION_ERROR"
	CodeSQLExecutionError = "SQL_EXECUTION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeTimeout           = "TIMEOUT"
	CodeInternalError     = "INTERNAL_ERROR"
)

// StatusFor returns the HTTP status for a given error code
func StatusFor(code string) int {
	mapping := map[string]int{
		CodeInvalidParameter:  http.StatusBadRequest,
		CodeInvalidIdentifier: http.StatusBadRequest,
		CodeConnectionError:   http.StatusBadGateway,
		CodeSQLExecutionError: http.StatusUnprocessableEntity,
		CodeNotFound:          http.StatusNotFound,
		CodeTimeout:           http.StatusGatewayTimeout,
	}

	if status, ok := mapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// APIError is an error carrying a stable code for API clients.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithData adds data to the error.
func (e *APIError) WithData(key string, value any) *APIError {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[key] = value
	return e
}

// Is checks if this error matches another error by code.
func (e *APIError) Is(target error) bool {
	var apiErr *APIError
	if errors.As(target, &apiErr) {
		return e.Code == apiErr.Code
	}
	return false
}

// ErrorResponse represents the JSON response structure for errors.
// This is the unified response type used by all handlers.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Data    map[string]any `json:"data,omitempty"`
}

// ToResponse converts the APIError to an ErrorResponse.
func (e *APIError) ToResponse() *ErrorResponse {
	data := make(map[string]any, len(e.Data))
	for k, v := range e.Data {
		data[k] = v
	}

	return &ErrorResponse{
		Success: false,
		Message: e.Message,
		Code:    e.Code,
		Data:    data,
	}
}

// New creates an APIError with the given code and message.
func New(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Status:  StatusFor(code),
		Data:    make(map[string]any),
	}
}

// NewInvalidParameterError creates an invalid parameter error.
func NewInvalidParameterError(paramName, reason string) *APIError {
	return New(CodeInvalidParameter, fmt.Sprintf("Invalid parameter '%s': %s", paramName, reason)).
		WithData("paramName", paramName)
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(objectType, objectName string) *APIError {
	return New(CodeNotFound, fmt.Sprintf("%s not found: %s", objectType, objectName)).
		WithData("objectType", objectType).
		WithData("objectName", objectName)
}

// NewInternalError creates an internal error.
func NewInternalError(message string) *APIError {
	return New(CodeInternalError, message)
}

// WrapError wraps a standard Go error into an APIError.
func WrapError(code, message string, err error) *APIError {
	return New(code, message).WithData("originalError", err.Error())
}

// FromError converts a standard error to an APIError.
// An APIError is returned as-is and nil stays nil. Known domain errors get
// their own code; anything else is an internal error.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var connErr *connection.ConnectionError
	switch {
	case errors.Is(err, connection.ErrInvalidIdentifier):
		return New(CodeInvalidIdentifier, err.Error())
	case errors.Is(err, query.ErrInvalidPageRequest),
		errors.Is(err, query.ErrEmptyStatement),
		errors.Is(err, foreignkey.ErrEmptyValue):
		return New(CodeInvalidParameter, err.Error())
	case errors.Is(err, connection.ErrDatabaseNotFound),
		errors.Is(err, foreignkey.ErrTableNotFound),
		errors.Is(err, foreignkey.ErrUnknownColumn),
		errors.Is(err, foreignkey.ErrRecordNotFound):
		return New(CodeNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return New(CodeTimeout, err.Error())
	case errors.As(err, &connErr):
		return New(CodeConnectionError, err.Error()).WithData("database", connErr.Database)
	}

	return NewInternalError(err.Error())
}
