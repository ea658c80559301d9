// Package app wires the shopmetrics web service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. The caller loads configuration (config.Load)
//	2. NewApplication initializes logging and OpenTelemetry
//	3. The report and health services are created over the data directory
//	4. The chi router is built with the middleware chain and API routes
//	5. Start loads the sales data (when data.load_on_startup is set) and serves
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	application, err := app.NewApplication(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// server.shutdown_timeout and flushes telemetry. A missing required data
// file at startup is returned from Start; the package never calls os.Exit.
package app
