package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"shopmetrics/internal/config"
)

// Process-wide logger set up once by InitializeLogger
var (
	loggerMu   sync.Mutex
	appLogger  *slog.Logger
	appLogFile *os.File
)

// InitializeLogger builds the process logger from cfg and installs it as
// slog's default. Later calls return the logger from the first call.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if appLogger != nil {
		return appLogger, nil
	}

	logger, file, err := buildLogger(cfg)
	if err != nil {
		return nil, err
	}
	appLogger = logger
	if file != nil {
		appLogFile = file
	}
	slog.SetDefault(logger)
	return logger, nil
}

// GetLogger returns the process logger, or slog.Default before initialization
func GetLogger() *slog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if appLogger == nil {
		return slog.Default()
	}
	return appLogger
}

// NewLogger builds a logger for cfg without installing it. A file it opens
// is closed by CloseLogFile.
func NewLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	logger, file, err := buildLogger(cfg)
	if err != nil {
		return nil, err
	}
	if file != nil {
		loggerMu.Lock()
		if appLogFile != nil {
			appLogFile.Close()
		}
		appLogFile = file
		loggerMu.Unlock()
	}
	return logger, nil
}

// NewLoggerWithWriter builds a trace-aware JSON logger writing to w
func NewLoggerWithWriter(w io.Writer, level string, addSource bool) *slog.Logger {
	return newLogger(w, "json", level, addSource)
}

func newLogger(w io.Writer, format, level string, addSource bool) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: addSource, Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(&traceHandler{Handler: handler})
}

func buildLogger(cfg config.LoggingConfig) (*slog.Logger, *os.File, error) {
	var (
		out  io.Writer
		file *os.File
		err  error
	)

	switch strings.ToLower(cfg.Output) {
	case "stderr":
		out = os.Stderr
	case "file", "both":
		file, err = openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		out = file
		if strings.EqualFold(cfg.Output, "both") {
			out = io.MultiWriter(os.Stdout, file)
		}
	default:
		out = os.Stdout
	}

	return newLogger(out, cfg.Format, cfg.Level, cfg.Development), file, nil
}

// traceHandler adds trace_id to every record whose context carries one
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// ParseLevel maps a configured level name to slog.Level. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CloseLogFile closes the log file opened for file or both output
func CloseLogFile() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if appLogFile == nil {
		return nil
	}
	err := appLogFile.Close()
	appLogFile = nil
	return err
}

// ResetLoggerForTesting drops the process logger so InitializeLogger runs again
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	loggerMu.Lock()
	appLogger = nil
	loggerMu.Unlock()
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file, nil
}
