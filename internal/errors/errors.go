package errors

import (
	"fmt"
	"net/http"
)

// APIError is an error raised by the HTTP layer itself, as opposed to the
// data pipeline's AppError. ErrorCode is stable and machine readable.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// FieldError describes one invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an APIError
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

// API error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidParameter   = "INVALID_PARAMETER"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeRefreshInProgress  = "REFRESH_IN_PROGRESS"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeInternalServer     = "INTERNAL_SERVER_ERROR"
	CodeExportFailed       = "EXPORT_FAILED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

var (
	ErrInvalidRequest     = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrInvalidParameter   = New(http.StatusBadRequest, CodeInvalidParameter, "Invalid parameter value")
	ErrNotFound           = New(http.StatusNotFound, CodeNotFound, "Resource not found")
	ErrRefreshInProgress  = New(http.StatusConflict, CodeRefreshInProgress, "A data refresh is already running")
	ErrRateLimitExceeded  = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")
	ErrInternalServer     = New(http.StatusInternalServerError, CodeInternalServer, "Internal server error")
	ErrExportFailed       = New(http.StatusInternalServerError, CodeExportFailed, "Export failed")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "Service temporarily unavailable")
)

// InvalidParameterError reports a query parameter that could not be parsed
func InvalidParameterError(param string, err error) *APIError {
	e := New(http.StatusBadRequest, CodeInvalidParameter, fmt.Sprintf("Invalid value for parameter %q", param))
	e.Details = err.Error()
	return e
}

// NewFieldErrors reports every field that failed validation
func NewFieldErrors(fields []FieldError) *APIError {
	e := New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	e.Details = fields
	return e
}

// ExportFailedError reports a download that could not be produced
func ExportFailedError(what string, err error) *APIError {
	e := New(http.StatusInternalServerError, CodeExportFailed, "Failed to build "+what)
	e.Details = err.Error()
	return e
}
