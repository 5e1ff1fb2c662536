// Package config provides configuration management for museumreport.
// It handles loading configuration from multiple sources, validation, and
// resolution of report paths.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values from struct tags (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern MUSEUM_<SECTION>_<FIELD>:
//
//	MUSEUM_API_OBJECT_LIMIT=15
//	MUSEUM_RETRY_MAX_ATTEMPTS=3
//	MUSEUM_REPORT_DIR=reports
//	MUSEUM_LOGGING_LEVEL=debug
//	MUSEUM_EMAIL_ENABLED=true
//	MUSEUM_SCHEDULE="0 6 * * *"
//
// EMAIL_REPORTS, SENDER_EMAIL and PASSWORD are still read when their
// MUSEUM_EMAIL_* counterparts are unset. They rank with the environment, so
// they override the file.
//
// # Configuration File
//
// The file is given explicitly, through MUSEUM_CONFIG, or found at
// config.yaml or configs/config.yaml:
//
//	api:
//	  object_limit: 30
//	  fetch_workers: 4
//	report:
//	  dir: /var/lib/museumreport
//	  pdf: false
//	email:
//	  enabled: true
//	  recipients: [curator@example.org]
//
// # Validation
//
// Load validates the result with go-playground/validator; error messages
// use the YAML key names.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := config.ResolvePaths(cfg, "")
package config
