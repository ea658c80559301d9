package analytics

import (
	"errors"
	"log/slog"
	"time"

	apperrors "shopmetrics/internal/errors"
	"shopmetrics/pkg/contracts/domain"
)

// GenerateComprehensiveReport computes every metric group for current and
// compares revenue against previous when set. Sections are isolated: one
// that cannot be computed is marked unavailable with its reason and the
// rest still populate.
func (c *Calculator) GenerateComprehensiveReport(current, previous *int) *domain.Report {
	start := time.Now()
	year := c.resolveYear(current)

	report := &domain.Report{
		AnalysisPeriod: year,
		GeneratedAt:    time.Now().UTC(),
	}
	if previous != nil {
		prev := *previous
		report.ComparisonPeriod = &prev
	}

	report.RevenueMetrics = section(c.CalculateRevenueMetrics(&year, previous))
	report.MonthlyTrends = section(c.CalculateMonthlyTrends(year))
	report.ProductPerformance = section(c.AnalyzeProductPerformance(year, c.topN))
	report.GeographicPerformance = section(c.AnalyzeGeographicPerformance(year))
	report.CustomerSatisfaction = section(c.AnalyzeCustomerSatisfaction(year))
	report.DeliveryPerformance = section(c.AnalyzeDeliveryPerformance(year))
	report.ReviewDistribution = section(c.AnalyzeReviewDistribution(year))
	report.DeliverySatisfaction = section(c.AnalyzeDeliverySatisfaction(year))

	attrs := []any{
		slog.Int("year", year),
		slog.Duration("duration", time.Since(start)),
	}
	if previous != nil {
		attrs = append(attrs, slog.Int("previous_year", *previous))
	}
	if unavailable := report.UnavailableSections(); len(unavailable) > 0 {
		attrs = append(attrs, slog.Any("unavailable", unavailable))
	}
	c.logger.Debug("report generated", attrs...)

	return report
}

func section[T any](v T, err error) domain.Section[T] {
	if err != nil {
		return domain.UnavailableSection[T](reasonOf(err))
	}
	return domain.AvailableSection(v)
}

func reasonOf(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
