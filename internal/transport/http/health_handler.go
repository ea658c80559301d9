package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"shopmetrics/internal/services"
)

// HealthReporter is the part of services.HealthService the probes need
type HealthReporter interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

// HealthHandler serves the probes and the version endpoint
type HealthHandler struct {
	health HealthReporter
}

func NewHealthHandler(health HealthReporter) *HealthHandler {
	return &HealthHandler{health: health}
}

// Routes mounts /health, /health/ready, /health/live and /version on r
func (h *HealthHandler) Routes(r chi.Router) {
	r.Get("/health", h.probe(h.health.HealthCheck))
	r.Get("/health/ready", h.probe(h.health.ReadinessCheck))
	r.Get("/health/live", h.probe(h.health.LivenessCheck))
	r.Get("/version", h.Version)
}

// probe renders a health status, answering 503 for not_ready
func (h *HealthHandler) probe(check func(context.Context) services.HealthStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := check(r.Context())
		w.Header().Set("Cache-Control", "no-store")
		if status.Status == services.StatusNotReady {
			render.Status(r, http.StatusServiceUnavailable)
		}
		render.JSON(w, r, status)
	}
}

func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.health.Version())
}
