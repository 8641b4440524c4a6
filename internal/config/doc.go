// Package config provides centralized configuration management for the
// ESPRESSO toolkit. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration
// values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ESPRESSO_* for namespacing,
// with nested sections joined by underscores:
//
//	ESPRESSO_SERVER_PORT=8077
//	ESPRESSO_SERVER_LOAD_TIMEOUT=10m
//	ESPRESSO_LOGGING_LEVEL=info
//	ESPRESSO_LOGGING_OUTPUT=both
//	ESPRESSO_DATA_INPUT_DIR=data/input
//	ESPRESSO_SECURITY_RATE_LIMIT_ENABLED=true
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which resolves all file system paths relative to the executable location:
//
//	paths := config.GetPaths()
//	bundlePath := paths.GetBundlePath("experiment")
//	exportPath := paths.GetExportPath("feeds.csv")
//
// # Validation
//
// Configuration is validated at load time: ports and timeouts must be in
// range, and logging settings are coerced to supported values so a typo in
// an environment variable cannot silence the log pipeline.
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
