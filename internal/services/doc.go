// Package services implements the business logic layer between the HTTP
// handlers and the pipeline components.
//
// ReportService runs the registration pipeline (load, aggregate, chart,
// compose) for a single upload. Each stage runs in its own span and reports
// its duration to ReportMetrics. Known input errors from the loader and
// aggregator are returned unchanged; any other failure is wrapped in a
// ProcessingError naming the stage.
//
// HealthService backs the health and version endpoints.
package services
