// Package middleware holds the HTTP middleware chain of the web server:
// request ids, structured request logging, panic recovery, rate limiting,
// per-request deadlines, CORS, security headers, response compression
// (brotli, gzip, deflate), OpenTelemetry instrumentation and upload
// validation.
package middleware
