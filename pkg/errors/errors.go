package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
	CodeUnauthenticated     ErrorCode = "UNAUTHENTICATED"
	CodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	CodeForbidden           ErrorCode = "FORBIDDEN"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeConflict            ErrorCode = "CONFLICT"
	CodeIdempotencyConflict ErrorCode = "IDEMPOTENCY_CONFLICT"
	CodeBadRequest          ErrorCode = "BAD_REQUEST"
	CodeInternalError       ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable  ErrorCode = "SERVICE_UNAVAILABLE"
)

// HTTPStatusMap maps error codes to HTTP status codes
var HTTPStatusMap = map[ErrorCode]int{
	CodeValidation:          http.StatusBadRequest,
	CodeUnauthenticated:     http.StatusUnauthorized,
	CodeInvalidCredentials:  http.StatusUnauthorized,
	CodeForbidden:           http.StatusForbidden,
	CodeNotFound:            http.StatusNotFound,
	CodeConflict:            http.StatusConflict,
	CodeIdempotencyConflict: http.StatusConflict,
	CodeBadRequest:          http.StatusBadRequest,
	CodeInternalError:       http.StatusInternalServerError,
	CodeServiceUnavailable:  http.StatusServiceUnavailable,
}

// ErrorResponse represents the standardized error response structure
type ErrorResponse struct {
	Error struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
		TraceID string    `json:"trace_id,omitempty"`
	} `json:"error"`
}

// AppError represents an application error with code and message
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Validation, Unauthenticated, ... are shorthands for the taxonomy used by services.
func Validation(message string) *AppError {
	return NewAppError(CodeValidation, message, nil)
}

func Unauthenticated(message string, cause error) *AppError {
	return NewAppError(CodeUnauthenticated, message, cause)
}

func Forbidden(message string) *AppError {
	return NewAppError(CodeForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return NewAppError(CodeNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return NewAppError(CodeConflict, message, nil)
}

func Internal(message string, cause error) *AppError {
	return NewAppError(CodeInternalError, message, cause)
}

// ToErrorResponse converts AppError to ErrorResponse
func (e *AppError) ToErrorResponse(traceID string) ErrorResponse {
	resp := ErrorResponse{}
	resp.Error.Code = e.Code
	resp.Error.Message = e.Message
	resp.Error.TraceID = traceID
	return resp
}

// HTTPStatus returns the HTTP status code for this error
func (e *AppError) HTTPStatus() int {
	if status, exists := HTTPStatusMap[e.Code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// As extracts an AppError from err. Anything that is not an AppError is
// reported as an internal error wrapping the original.
func As(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error", err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return NewAppError(appErr.Code, message, err)
	}
	return NewAppError(CodeInternalError, message, err)
}
