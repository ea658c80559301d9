package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMissingFile       ErrorType = "MISSING_FILE"
	ErrTypeSchema            ErrorType = "SCHEMA"
	ErrTypeNotLoaded         ErrorType = "NOT_LOADED"
	ErrTypeValidation        ErrorType = "VALIDATION"
	ErrTypeColumnUnavailable ErrorType = "COLUMN_UNAVAILABLE"
	ErrTypeParsing           ErrorType = "PARSING"
	ErrTypeStorage           ErrorType = "STORAGE"
	ErrTypeConfig            ErrorType = "CONFIG"
)

// Sentinels for errors.Is matching. Any AppError of the same type matches.
var (
	ErrMissingFile       = &AppError{Type: ErrTypeMissingFile, Message: "required data file missing"}
	ErrSchema            = &AppError{Type: ErrTypeSchema, Message: "required column missing"}
	ErrNotLoaded         = &AppError{Type: ErrTypeNotLoaded, Message: "data not loaded"}
	ErrValidation        = &AppError{Type: ErrTypeValidation, Message: "validation failed"}
	ErrColumnUnavailable = &AppError{Type: ErrTypeColumnUnavailable, Message: "column unavailable"}
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError of the same type
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewMissingFileError reports a required source file that cannot be located
func NewMissingFileError(path string) *AppError {
	return NewAppError(ErrTypeMissingFile, fmt.Sprintf("required data file not found: %s", path), nil).
		WithContext("path", path)
}

// NewSchemaError reports a loaded table lacking required columns
func NewSchemaError(table string, missing []string) *AppError {
	return NewAppError(ErrTypeSchema,
		fmt.Sprintf("table %s is missing required columns: %s", table, strings.Join(missing, ", ")), nil).
		WithContext("table", table).
		WithContext("missing_columns", missing)
}

// NewNotLoadedError reports an operation requested before its input was loaded
func NewNotLoadedError(what string) *AppError {
	return NewAppError(ErrTypeNotLoaded, fmt.Sprintf("%s has not been loaded", what), nil).
		WithContext("resource", what)
}

// NewValidationError reports a dataset missing mandatory columns
func NewValidationError(missing []string) *AppError {
	return NewAppError(ErrTypeValidation,
		fmt.Sprintf("missing mandatory columns: %s", strings.Join(missing, ", ")), nil).
		WithContext("missing_columns", missing)
}

// NewAppValidationError creates a validation error for bad input values
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewColumnUnavailableError reports an optional column an analysis needs
func NewColumnUnavailableError(column string) *AppError {
	return NewAppError(ErrTypeColumnUnavailable, fmt.Sprintf("column unavailable: %s", column), nil).
		WithContext("column", column)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
