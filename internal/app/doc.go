// Package app provides application initialization and lifecycle management
// for the espressod daemon. It wires configuration loading, service
// construction, the HTTP router and graceful shutdown into one container.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and observability
//	3. Resolve data directories and create them
//	4. Initialize the WebSocket hub, pipeline manager and services
//	5. Set up HTTP handlers and middleware
//	6. Configure the HTTP server
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then ensures:
//
//	- Active requests are completed within the shutdown timeout
//	- WebSocket connections are closed cleanly
//	- OpenTelemetry providers flush their final batches
//
// # Error Handling
//
// All initialization errors are returned to the caller for proper
// handling. The app does not call os.Exit() directly, allowing
// the main function to control the exit process.
package app
