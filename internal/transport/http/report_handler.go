package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "shopmetrics/internal/errors"
	"shopmetrics/internal/exporter"
	mw "shopmetrics/internal/middleware"
	"shopmetrics/internal/services"
	api "shopmetrics/pkg/contracts/api/v1"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportHandler serves reports, KPIs, filter options and exports
type ReportHandler struct {
	service      ReportServiceInterface
	validator    *mw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportServiceInterface, validator *mw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = mw.NewValidator(logger)
	}
	return &ReportHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/report", h.GetReport)
		r.Get("/kpis", h.GetKPIs)
		r.Get("/filters", h.GetFilters)
		r.Post("/refresh", h.Refresh)
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/sales.csv", h.ExportSalesCSV)
		r.Get("/report.xlsx", h.ExportReportXLSX)
	})

	return r
}

// GetReport handles GET /api/report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	var req api.ReportRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.Report(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, report)
}

// GetKPIs handles GET /api/kpis
func (h *ReportHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	var req api.ReportRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	kpis, err := h.service.KPIs(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, kpis)
}

// GetFilters handles GET /api/filters
func (h *ReportHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	var req api.FiltersRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filters, err := h.service.Filters(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, filters)
}

// Refresh handles POST /api/refresh
func (h *ReportHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "data refresh requested",
		slog.String("request_id", middleware.GetReqID(r.Context())))

	resp, err := h.service.Refresh(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}

// ExportSalesCSV handles GET /api/export/sales.csv
func (h *ReportHandler) ExportSalesCSV(w http.ResponseWriter, r *http.Request) {
	var req api.ReportRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ds, err := h.service.Sales(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeCSV)
	w.Header().Set("Content-Disposition", attachment("sales", "csv"))
	if err := exporter.WriteSales(w, ds, true); err != nil {
		// Headers are gone once rows are streamed, so only log
		h.logger.ErrorContext(r.Context(), "sales export failed",
			slog.String("error", err.Error()),
			slog.Int("rows", ds.Len()))
		return
	}

	h.logger.InfoContext(r.Context(), "sales exported", slog.Int("rows", ds.Len()))
}

// ExportReportXLSX handles GET /api/export/report.xlsx
func (h *ReportHandler) ExportReportXLSX(w http.ResponseWriter, r *http.Request) {
	var req api.ReportRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.Report(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	wb, err := exporter.BuildReportWorkbook(report)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ExportFailedError("workbook", err))
		return
	}
	defer wb.Close()

	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", attachment(fmt.Sprintf("report_%d", report.AnalysisPeriod), "xlsx"))
	if err := wb.Write(w); err != nil {
		h.logger.ErrorContext(r.Context(), "report export failed", slog.String("error", err.Error()))
	}
}

// handleServiceError maps service sentinels onto API errors before delegating
// to the shared error handler
func (h *ReportHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrRefreshInProgress) {
		err = apierrors.ErrRefreshInProgress
	}
	h.errorHandler.HandleError(w, r, err)
}

func attachment(name, ext string) string {
	return fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s_%s.%s", name, time.Now().Format("20060102"), ext))
}
