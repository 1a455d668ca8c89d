// Package config provides centralized configuration management for the report generator.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority, .env is loaded first)
//	2. YAML configuration file (REGREPORT_CONFIG_FILE or config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern REGREPORT_<SECTION>_<FIELD>:
//
//	REGREPORT_SERVER_PORT=8080
//	REGREPORT_SERVER_MAX_UPLOAD_MB=20
//	REGREPORT_LOGGING_LEVEL=debug
//	REGREPORT_REPORT_TIME_ZONE=America/Bogota
//	REGREPORT_DISPLAY_PREVIEW_ROWS=10
//
// # Validation
//
// The loaded configuration is checked with go-playground/validator struct tags;
// Load fails with a message naming every offending field.
package config
