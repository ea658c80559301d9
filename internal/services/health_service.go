package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"shopmetrics/internal/files"
	"shopmetrics/pkg/contracts"
	"shopmetrics/pkg/contracts/domain"
)

// Health states
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// DataState reports whether sales data is loaded. ReportService implements it.
type DataState interface {
	Loaded() (bool, time.Time)
}

// HealthService provides health check functionality
type HealthService struct {
	dataDir   string
	data      DataState
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Since   string `json:"since,omitempty"`
}

// NewHealthService creates a health service reporting on dataDir and data
func NewHealthService(dataDir string, data DataState, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		dataDir:   dataDir,
		data:      data,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services: map[string]ServiceHealth{
			"data_files": hs.checkDataFiles(),
		},
	}
}

// ReadinessCheck reports ready once the data directory exists and the
// sales data has been loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services: map[string]ServiceHealth{
			"data_dir": hs.checkDataDir(),
			"sales":    hs.checkSales(),
		},
	}

	for name, svc := range status.Services {
		if svc.Status != StatusReady {
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "service not ready",
				slog.String("service", name),
				slog.String("message", svc.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      info.Version,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"data_format":  info.DataFormat,
		"api_version":  info.APIVersion,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDataDir() ServiceHealth {
	info, err := os.Stat(hs.dataDir)
	switch {
	case err != nil:
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("data directory not accessible: %v", err),
		}
	case !info.IsDir():
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("data path is not a directory: %s", hs.dataDir),
		}
	}
	return ServiceHealth{Status: StatusReady}
}

// checkDataFiles reports the source files on disk. A missing required file
// is reported but does not change the overall health status.
func (hs *HealthService) checkDataFiles() ServiceHealth {
	inv, err := files.NewDiscovery(hs.dataDir).Inventory(domain.RequiredFiles, domain.OptionalFiles)
	if err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: err.Error()}
	}
	if !inv.Complete() {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: "missing required files: " + strings.Join(inv.MissingRequired, ", "),
		}
	}
	health := ServiceHealth{Status: StatusReady}
	if len(inv.MissingOptional) > 0 {
		health.Message = "optional files absent: " + strings.Join(inv.MissingOptional, ", ")
	}
	if at, ok := inv.LastModified(); ok {
		health.Since = at.UTC().Format(time.RFC3339)
	}
	return health
}

func (hs *HealthService) checkSales() ServiceHealth {
	if hs.data == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "report service not configured"}
	}
	loaded, at := hs.data.Loaded()
	if !loaded {
		return ServiceHealth{Status: StatusNotReady, Message: "sales data not loaded"}
	}
	return ServiceHealth{Status: StatusReady, Since: at.Format(time.RFC3339)}
}
