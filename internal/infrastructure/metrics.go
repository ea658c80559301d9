package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// ReportMetrics are the instruments recorded by the report pipeline and the
// HTTP layer. A nil *ReportMetrics records nothing.
type ReportMetrics struct {
	ReportGenerations metric.Int64Counter
	ReportDuration    metric.Float64Histogram
	DataLoads         metric.Int64Counter
	DataLoadDuration  metric.Float64Histogram
	SalesRows         metric.Int64Gauge

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter
}

// Histogram bucket bounds in seconds
var (
	reportBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}
	loadBuckets   = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
)

// NewReportMetrics creates the instruments on meter. A nil meter gets a noop one.
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(InstrumentationName)
	}

	m := &ReportMetrics{}
	var err error
	counter := func(dst *metric.Int64Counter, name, desc string) {
		if err == nil {
			*dst, err = meter.Int64Counter(name, metric.WithDescription(desc))
		}
	}
	histogram := func(dst *metric.Float64Histogram, name, desc string, bounds []float64) {
		if err == nil {
			*dst, err = meter.Float64Histogram(name,
				metric.WithDescription(desc),
				metric.WithUnit("s"),
				metric.WithExplicitBucketBoundaries(bounds...))
		}
	}

	counter(&m.ReportGenerations, "report_generations_total", "Reports generated")
	histogram(&m.ReportDuration, "report_generation_duration_seconds", "Report generation time", reportBuckets)
	counter(&m.DataLoads, "data_loads_total", "Raw data loads")
	histogram(&m.DataLoadDuration, "data_load_duration_seconds", "Raw data load and processing time", loadBuckets)
	counter(&m.HTTPRequestsTotal, "http_requests_total", "HTTP requests served")
	histogram(&m.HTTPRequestDuration, "http_request_duration_seconds", "HTTP request latency", reportBuckets)
	if err != nil {
		return nil, err
	}

	if m.SalesRows, err = meter.Int64Gauge("sales_rows",
		metric.WithDescription("Rows in the unfiltered sales dataset")); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter("http_active_requests",
		metric.WithDescription("In-flight HTTP requests")); err != nil {
		return nil, err
	}
	return m, nil
}

// NewNoopReportMetrics returns instruments that record nothing
func NewNoopReportMetrics() *ReportMetrics {
	m, _ := NewReportMetrics(nil)
	return m
}

// RecordReport counts one report build for year
func (m *ReportMetrics) RecordReport(ctx context.Context, year int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.Int("year", year),
		attribute.String("status", statusOf(err)),
	)
	m.ReportGenerations.Add(ctx, 1, attrs)
	m.ReportDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordDataLoad counts one raw data load. The row gauge only moves on success.
func (m *ReportMetrics) RecordDataLoad(ctx context.Context, duration time.Duration, salesRows int, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", statusOf(err)))
	m.DataLoads.Add(ctx, 1, attrs)
	m.DataLoadDuration.Record(ctx, duration.Seconds(), attrs)
	if err == nil {
		m.SalesRows.Record(ctx, int64(salesRows))
	}
}

func statusOf(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
