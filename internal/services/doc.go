// Package services implements the business logic layer between the HTTP
// handlers and the data pipeline.
//
// ReportService owns the currently loaded sales data. Refresh reloads every
// source file into a new loader and swaps it in only after the whole load
// succeeded, so readers keep the previous snapshot until then. Report, KPIs,
// Filters and Sales read the snapshot under a read lock and never block each
// other.
//
// HealthService reports liveness, readiness (the data has been loaded) and
// build information.
//
// Services receive a *slog.Logger through their constructors and tag it with
// their component name. Request contexts flow into spans and log records.
package services
