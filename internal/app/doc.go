// Package app wires the registration report service together and manages
// its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from .env, the optional YAML file and the environment
//	2. Initialize logging and OpenTelemetry
//	3. Build the report pipeline and health services
//	4. Set up the router, middleware and handlers
//	5. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests get
// Server.ShutdownTimeout to complete, then telemetry is flushed.
//
// Initialization errors are returned to the caller; the package never
// calls os.Exit.
package app
