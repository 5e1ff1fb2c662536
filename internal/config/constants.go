package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "museumreport"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. MUSEUM_API_TIMEOUT
	EnvPrefix = "MUSEUM"

	// Report files
	DefaultReportsDir = "reports"
	DefaultBaseName   = "museum_data"

	// Log Settings
	DefaultLogsDir  = "logs"
	DefaultLogLevel = "info"

	// Network Timeouts
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultRenderTimeout = 60 * time.Second

	// Run limits
	DefaultObjectLimit  = 15
	DefaultMaxAttempts  = 3
	ShutdownGracePeriod = 30 * time.Second

	// Notification text
	DefaultSubject = "Museum API Reports"
	DefaultBody    = "Please take a look at the generated reports."
)

// DefaultConfigFiles are searched in order when no config file is given
var DefaultConfigFiles = []string{
	"config.yaml",
	"configs/config.yaml",
}
