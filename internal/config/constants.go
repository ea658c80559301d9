package config

import "time"

// Application constants
const (
	AppName   = "shopmetrics"
	EnvPrefix = "SHOPMETRICS"

	DefaultPort    = 8080
	DefaultDataDir = "ecommerce_data"
	DefaultLogFile = "logs/shopmetrics.log"

	// Report defaults
	DefaultReportYear   = 2023
	DefaultTopN         = 10
	DefaultStatusFilter = "delivered"
	DefaultExportDir    = "exports"

	// Query parameter bounds
	MinYear = 1900
	MaxYear = 2100
	MaxTopN = 100
)

// API endpoints
const (
	APIBasePath     = "/api"
	ReportEndpoint  = "/api/report"
	FiltersEndpoint = "/api/filters"
	KPIsEndpoint    = "/api/kpis"
	ExportEndpoint  = "/api/export"
	RefreshEndpoint = "/api/refresh"
	HealthEndpoint  = "/api/health"
	VersionEndpoint = "/api/version"
	MetricsEndpoint = "/metrics"
)

// Timeouts
const (
	DataLoadTimeout         = 5 * time.Minute
	ReportGenerationTimeout = 30 * time.Second
)
