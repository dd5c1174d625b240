// Package app wires the macrodash web service: configuration, logging,
// OpenTelemetry, the dataset store, the services, the HTTP router and the
// websocket hub.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config.yaml, .env and MACRO_* variables
//	2. Initialize logging and observability
//	3. Pick the workbook source (xlsx file or Google spreadsheet)
//	4. Create the dataset store and the services
//	5. Set up HTTP handlers and middleware
//	6. Load the dataset and start the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(ctx)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run waits for SIGINT or SIGTERM, drains active requests, disconnects the
// websocket clients and flushes telemetry. Errors are returned to the
// caller; the package never calls os.Exit.
package app
