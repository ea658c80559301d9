// Package dataprocessing loads the e-commerce CSV exports, cleans them into
// typed tables and joins them into the denormalized sales dataset the
// analytics package consumes.
//
// # Data Flow
//
//	CSV files → LoadRawData → RawTables → ProcessAllData → ProcessedTables → CreateSalesDataset → SalesDataset
//
// # Usage
//
//	loader, _, err := dataprocessing.LoadAndProcessData(ctx, "ecommerce_data", logger)
//	if err != nil {
//	    return err
//	}
//	year := 2023
//	status := "delivered"
//	sales, err := loader.CreateSalesDataset(dataprocessing.SalesFilter{Year: &year, Status: &status})
//
// # Error Handling
//
// Structural problems fail fast with typed errors from internal/errors:
//
//   - a required file is absent: MISSING_FILE
//   - a table lacks a required column: SCHEMA
//   - a numeric cell cannot be parsed: PARSING
//   - a cleaner or join runs before its input was loaded: NOT_LOADED
//
// Unparseable timestamps are not errors. They become nil and are counted in
// a debug log line per table.
//
// # Concurrency
//
// A Loader is not safe for concurrent mutation. LoadRawData reads the files
// concurrently but swaps its state in only after every read succeeded;
// callers that share a Loader across goroutines guard it themselves.
package dataprocessing
