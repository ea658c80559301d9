// Package config loads and validates the shopmetrics configuration.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//	1. Defaults (Default)
//	2. config.yaml (or the file named by SHOPMETRICS_CONFIG_FILE)
//	3. Environment variables with the SHOPMETRICS_ prefix, optionally seeded from .env
//
// # Environment Variables
//
//	SHOPMETRICS_SERVER_PORT=8080
//	SHOPMETRICS_DATA_DIR=ecommerce_data
//	SHOPMETRICS_REPORT_DEFAULT_YEAR=2023
//	SHOPMETRICS_REPORT_STATUS_FILTER=delivered
//	SHOPMETRICS_LOGGING_LEVEL=debug
//	SHOPMETRICS_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
