package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"shopmetrics/internal/analytics"
	"shopmetrics/internal/config"
	"shopmetrics/internal/dataprocessing"
	apperrors "shopmetrics/internal/errors"
	"shopmetrics/internal/infrastructure"
	api "shopmetrics/pkg/contracts/api/v1"
	"shopmetrics/pkg/contracts/domain"
)

// StatusAll disables the order status filter when passed as a request status
const StatusAll = "all"

// ReportService serves reports over the currently loaded sales data
type ReportService struct {
	dataDir  string
	defaults config.ReportConfig
	metrics  *infrastructure.ReportMetrics
	base     *slog.Logger
	logger   *slog.Logger

	refreshing atomic.Bool

	mu       sync.RWMutex
	loader   *dataprocessing.Loader
	loadedAt time.Time
}

// NewReportService creates a report service over dataDir. No data is loaded
// until Refresh succeeds. A nil metrics records nothing.
func NewReportService(dataDir string, defaults config.ReportConfig, metrics *infrastructure.ReportMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infrastructure.NewNoopReportMetrics()
	}
	if defaults.TopN <= 0 {
		defaults.TopN = analytics.DefaultTopN
	}
	return &ReportService{
		dataDir:  dataDir,
		defaults: defaults,
		metrics:  metrics,
		base:     logger,
		logger:   logger.With(slog.String("component", "report_service")),
	}
}

// Refresh loads and processes every source file. The previous data stays in
// service until the new load has fully succeeded. Concurrent refreshes fail
// fast with ErrRefreshInProgress.
func (s *ReportService) Refresh(ctx context.Context) (*api.RefreshResponse, error) {
	if !s.refreshing.CompareAndSwap(false, true) {
		return nil, ErrRefreshInProgress
	}
	defer s.refreshing.Store(false)

	ctx, span := infrastructure.StartSpan(ctx, "report.refresh",
		attribute.String("data_dir", s.dataDir))
	defer span.End()

	start := time.Now()
	loader, sales, err := s.load(ctx)
	duration := time.Since(start)
	rows := 0
	if sales != nil {
		rows = sales.Len()
	}
	s.metrics.RecordDataLoad(ctx, duration, rows, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "data refresh failed",
			slog.String("data_dir", s.dataDir),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return nil, err
	}

	loadedAt := time.Now().UTC()
	s.mu.Lock()
	s.loader = loader
	s.loadedAt = loadedAt
	s.mu.Unlock()

	tables := loader.ProcessedData().Counts()
	s.logger.InfoContext(ctx, "data refreshed",
		slog.String("data_dir", s.dataDir),
		slog.Int("sales_rows", rows),
		slog.Any("tables", tables),
		slog.Duration("duration", duration))

	return &api.RefreshResponse{
		LoadedAt:  loadedAt,
		Tables:    tables,
		SalesRows: rows,
		Duration:  duration.String(),
	}, nil
}

func (s *ReportService) load(ctx context.Context) (*dataprocessing.Loader, *domain.SalesDataset, error) {
	loader, _, err := dataprocessing.LoadAndProcessData(ctx, s.dataDir, s.base)
	if err != nil {
		return nil, nil, err
	}
	sales, err := loader.CreateSalesDataset(dataprocessing.SalesFilter{})
	if err != nil {
		return nil, nil, err
	}
	return loader, sales, nil
}

// Loaded reports whether data has been loaded and when
func (s *ReportService) Loaded() (bool, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loader != nil, s.loadedAt
}

// sales builds the sales dataset of the current snapshot
func (s *ReportService) sales(filter dataprocessing.SalesFilter) (*domain.SalesDataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loader == nil {
		return nil, apperrors.NewNotLoadedError("sales data")
	}
	return s.loader.CreateSalesDataset(filter)
}

// statusFilter applies the configured default status when the request has
// none. An empty status or StatusAll selects every status.
func (s *ReportService) statusFilter(status *string) *string {
	if status == nil {
		if s.defaults.StatusFilter == "" {
			return nil
		}
		def := s.defaults.StatusFilter
		return &def
	}
	if *status == "" || strings.EqualFold(*status, StatusAll) {
		return nil
	}
	return status
}

// period resolves the analysis year and comparison year. A missing year
// falls back to the configured default when the data has it, otherwise the
// latest year. A missing previous year compares against the year before
// when the data has rows for it.
func (s *ReportService) period(ds *domain.SalesDataset, year, previous *int) (int, *int) {
	y := ds.DefaultYear(s.defaults.DefaultYear)
	if year != nil {
		y = *year
	}
	if previous != nil {
		return y, previous
	}
	for _, available := range ds.AvailableYears() {
		if available == y-1 {
			p := y - 1
			return y, &p
		}
	}
	return y, nil
}

func (s *ReportService) calculator(ds *domain.SalesDataset, topN *int) (*analytics.Calculator, error) {
	cfg := analytics.Config{TopN: s.defaults.TopN, Logger: s.base}
	if topN != nil {
		cfg.TopN = *topN
	}
	return analytics.NewCalculator(ds, cfg)
}

// Report generates the comprehensive report for req
func (s *ReportService) Report(ctx context.Context, req api.ReportRequest) (*domain.Report, error) {
	ctx, span := infrastructure.StartSpan(ctx, "report.generate")
	defer span.End()

	start := time.Now()
	ds, err := s.sales(dataprocessing.SalesFilter{Month: req.Month, Status: s.statusFilter(req.Status)})
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	year, previous := s.period(ds, req.Year, req.PreviousYear)
	span.SetAttributes(attribute.Int("year", year), attribute.Int("rows", ds.Len()))

	calc, err := s.calculator(ds, req.TopN)
	if err != nil {
		s.metrics.RecordReport(ctx, year, time.Since(start), err)
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	report := calc.GenerateComprehensiveReport(&year, previous)
	duration := time.Since(start)
	s.metrics.RecordReport(ctx, year, duration, nil)

	attrs := []any{
		slog.Int("year", year),
		slog.Int("rows", ds.Len()),
		slog.Duration("duration", duration),
	}
	if previous != nil {
		attrs = append(attrs, slog.Int("previous_year", *previous))
	}
	if unavailable := report.UnavailableSections(); len(unavailable) > 0 {
		attrs = append(attrs, slog.Int("unavailable_sections", len(unavailable)))
	}
	s.logger.InfoContext(ctx, "report generated", attrs...)

	return report, nil
}

// KPIs builds the headline cards for req: revenue, orders, average order
// value and items sold, plus review score and delivery time when the data
// carries them. Trends compare against the resolved previous year.
func (s *ReportService) KPIs(ctx context.Context, req api.ReportRequest) (*api.KPIResponse, error) {
	_, span := infrastructure.StartSpan(ctx, "report.kpis")
	defer span.End()

	ds, err := s.sales(dataprocessing.SalesFilter{Month: req.Month, Status: s.statusFilter(req.Status)})
	if err != nil {
		return nil, err
	}
	year, previous := s.period(ds, req.Year, req.PreviousYear)

	calc, err := s.calculator(ds, req.TopN)
	if err != nil {
		return nil, err
	}
	revenue, err := calc.CalculateRevenueMetrics(&year, previous)
	if err != nil {
		return nil, err
	}

	trend := func(cur, prev float64) *domain.Trend {
		if previous == nil {
			return nil
		}
		t := analytics.NewTrend(cur, prev)
		return &t
	}

	var cmp domain.RevenueComparison
	if revenue.Comparison != nil {
		cmp = *revenue.Comparison
	}
	cards := []api.KPICard{
		{
			Key: "total_revenue", Label: "Total Revenue",
			Value: analytics.FormatCurrency(revenue.TotalRevenue), Raw: revenue.TotalRevenue,
			Trend: trend(revenue.TotalRevenue, cmp.PreviousRevenue),
		},
		{
			Key: "total_orders", Label: "Total Orders",
			Value: analytics.FormatCount(revenue.TotalOrders), Raw: float64(revenue.TotalOrders),
			Trend: trend(float64(revenue.TotalOrders), float64(cmp.PreviousOrders)),
		},
		{
			Key: "average_order_value", Label: "Average Order Value",
			Value: analytics.FormatCurrencyPrecise(revenue.AverageOrderValue), Raw: revenue.AverageOrderValue,
			Trend: trend(revenue.AverageOrderValue, cmp.PreviousAverageOrderValue),
		},
		{
			Key: "total_items_sold", Label: "Items Sold",
			Value: analytics.FormatCount(revenue.TotalItemsSold), Raw: float64(revenue.TotalItemsSold),
			Trend: trend(float64(revenue.TotalItemsSold), float64(cmp.PreviousItemsSold)),
		},
	}

	if sat, err := calc.AnalyzeCustomerSatisfaction(year); err == nil && sat.HasData {
		card := api.KPICard{
			Key: "avg_review_score", Label: "Review Score",
			Value: fmt.Sprintf("%.2f/5", sat.AvgReviewScore), Raw: sat.AvgReviewScore,
		}
		if previous != nil {
			if prev, err := calc.AnalyzeCustomerSatisfaction(*previous); err == nil && prev.HasData {
				card.Trend = trend(sat.AvgReviewScore, prev.AvgReviewScore)
			}
		}
		cards = append(cards, card)
	}
	if del, err := calc.AnalyzeDeliveryPerformance(year); err == nil && del.HasData {
		card := api.KPICard{
			Key: "avg_delivery_days", Label: "Average Delivery Time",
			Value: fmt.Sprintf("%.1f days", del.AvgDeliveryDays),
			Raw:   del.AvgDeliveryDays,
		}
		if previous != nil {
			if prev, err := calc.AnalyzeDeliveryPerformance(*previous); err == nil && prev.HasData {
				card.Trend = trend(del.AvgDeliveryDays, prev.AvgDeliveryDays)
			}
		}
		cards = append(cards, card)
	}

	return &api.KPIResponse{Year: year, PreviousYear: previous, Cards: cards}, nil
}

// Filters lists the years, months and statuses present in the loaded data
func (s *ReportService) Filters(ctx context.Context, req api.FiltersRequest) (*api.FiltersResponse, error) {
	ds, err := s.sales(dataprocessing.SalesFilter{})
	if err != nil {
		return nil, err
	}

	def := ds.DefaultYear(s.defaults.DefaultYear)
	year := def
	if req.Year != nil {
		year = *req.Year
	}

	s.logger.DebugContext(ctx, "filters resolved", slog.Int("year", year))

	return &api.FiltersResponse{
		Years:       ds.AvailableYears(),
		Year:        year,
		Months:      ds.AvailableMonths(year),
		DefaultYear: def,
		Statuses:    ds.AvailableStatuses(),
	}, nil
}

// Sales returns the sales rows selected by req for export. Unlike Report,
// the year filter applies to the rows themselves. Without a requested year
// the default year is used; rows with no purchase year are never exported.
func (s *ReportService) Sales(ctx context.Context, req api.ReportRequest) (*domain.SalesDataset, error) {
	_, span := infrastructure.StartSpan(ctx, "report.sales")
	defer span.End()

	status := s.statusFilter(req.Status)
	ds, err := s.sales(dataprocessing.SalesFilter{Month: req.Month, Status: status})
	if err != nil {
		return nil, err
	}
	year, _ := s.period(ds, req.Year, nil)
	if year <= 0 {
		return ds.Where(func(domain.SalesRecord) bool { return false }), nil
	}
	return ds.ForYear(year), nil
}
