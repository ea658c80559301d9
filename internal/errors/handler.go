package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
)

// Problem types
const (
	TypeValidation  = "/errors/validation"
	TypeNotFound    = "/errors/not-found"
	TypeRateLimit   = "/errors/rate-limit"
	TypeInternal    = "/errors/internal"
	TypeServiceDown = "/errors/service-unavailable"
	TypeTimeout     = "/errors/timeout"
	TypeConflict    = "/errors/conflict"
	TypeMethod      = "/errors/method-not-allowed"

	TypeDataNotFound        = "/errors/data/not-found"
	TypeDataCorrupted       = "/errors/data/corrupted"
	TypeDataNotLoaded       = "/errors/data/not-loaded"
	TypeColumnUnavailable   = "/errors/data/column-unavailable"
	TypeExportFailed        = "/errors/export/failed"
	TypeConfigurationFailed = "/errors/config"
)

type problemKind struct {
	status int
	typ    string
	title  string
}

var appErrorKinds = map[ErrorType]problemKind{
	ErrTypeValidation:        {http.StatusBadRequest, TypeValidation, "Validation Failed"},
	ErrTypeNotLoaded:         {http.StatusServiceUnavailable, TypeDataNotLoaded, "Data Not Loaded"},
	ErrTypeMissingFile:       {http.StatusInternalServerError, TypeDataNotFound, "Data File Missing"},
	ErrTypeSchema:            {http.StatusInternalServerError, TypeDataCorrupted, "Data Corrupted"},
	ErrTypeParsing:           {http.StatusInternalServerError, TypeDataCorrupted, "Data Corrupted"},
	ErrTypeColumnUnavailable: {http.StatusUnprocessableEntity, TypeColumnUnavailable, "Column Unavailable"},
	ErrTypeStorage:           {http.StatusInternalServerError, TypeExportFailed, "Export Failed"},
	ErrTypeConfig:            {http.StatusInternalServerError, TypeConfigurationFailed, "Configuration Error"},
}

var apiErrorTypes = map[string]string{
	CodeInvalidRequest:     TypeValidation,
	CodeInvalidParameter:   TypeValidation,
	CodeValidationFailed:   TypeValidation,
	CodeNotFound:           TypeNotFound,
	CodeRefreshInProgress:  TypeConflict,
	CodeRateLimitExceeded:  TypeRateLimit,
	CodeServiceUnavailable: TypeServiceDown,
	CodeExportFailed:       TypeExportFailed,
}

// ErrorHandler renders every failure of the API as a problem document and
// logs it once
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an error handler. includeStack adds the goroutine
// stack to 5xx documents and is meant for development.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError writes the problem document for err. A nil err writes nothing.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
		if h.includeStack {
			problem.WithExtension("stack", stackTrace())
		}
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	h.write(w, r, problem)
}

// ErrorToProblem maps err onto a problem document. Unknown errors become a
// generic 500 that does not echo the error text.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", r.URL.Path)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		typ, ok := apiErrorTypes[apiErr.ErrorCode]
		if !ok {
			typ = TypeInternal
		}
		problem := NewProblemDetails(apiErr.StatusCode, typ, http.StatusText(apiErr.StatusCode), apiErr.Message, r.URL.Path).
			WithExtension("error_code", apiErr.ErrorCode)
		if apiErr.Details != nil {
			problem.WithExtension("details", apiErr.Details)
		}
		return problem
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		kind, ok := appErrorKinds[appErr.Type]
		if !ok {
			kind = problemKind{http.StatusInternalServerError, TypeInternal, "Internal Server Error"}
		}
		problem := NewProblemDetails(kind.status, kind.typ, kind.title, appErr.Message, r.URL.Path).
			WithExtension("error_type", string(appErr.Type))
		for k, v := range appErr.Context {
			problem.WithExtension(k, v)
		}
		return problem
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred while processing your request", r.URL.Path)
}

// HandlePanic logs a recovered panic with its stack and writes a 500
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred", r.URL.Path)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprint(recovered))
		problem.WithExtension("stack", stackTrace())
	}
	h.write(w, r, problem)
}

// NotFound is the router's 404 handler
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r.URL.Path))
}

// MethodNotAllowed is the router's 405 handler
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, NewProblemDetails(http.StatusMethodNotAllowed, TypeMethod, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path))
}

func (h *ErrorHandler) write(w http.ResponseWriter, r *http.Request, problem *ProblemDetails) {
	problem.WithExtension("trace_id", middleware.GetReqID(r.Context()))
	if err := problem.Write(w); err != nil {
		h.logger.DebugContext(r.Context(), "problem response not written", slog.String("error", err.Error()))
	}
}

func stackTrace() string {
	buf := make([]byte, 8<<10)
	return string(buf[:runtime.Stack(buf, false)])
}
