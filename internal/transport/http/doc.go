// Package http implements the HTTP handlers of the shopmetrics API. Handlers
// are a thin layer over the services package: they bind and validate query
// parameters, call a service, and render JSON or a file download.
//
// # Endpoints
//
//	GET  /api/report              full business metrics report
//	GET  /api/kpis                headline KPI cards with trends
//	GET  /api/filters             years, months and statuses present in the data
//	POST /api/refresh             reload and reprocess the source CSV files
//	GET  /api/export/sales.csv    filtered sales rows as CSV
//	GET  /api/export/report.xlsx  the report as an Excel workbook
//	GET  /api/health              liveness summary
//	GET  /api/health/ready        503 until sales data is loaded
//	GET  /api/health/live         runtime details
//	GET  /api/version             build information
//
// # Query parameters
//
// Report, KPI and export endpoints accept year, previous_year, month, status
// and top_n. Omitted parameters fall back to the configured defaults. The
// status "all" disables the order status filter.
//
// # Errors
//
// Every failure is rendered through errors.ErrorHandler as an RFC 7807
// problem document. Service sentinels such as services.ErrRefreshInProgress
// are mapped to their API errors first.
package http
