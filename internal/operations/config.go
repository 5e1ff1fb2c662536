package operations

import (
	appconfig "museumreport/internal/config"
)

// Config represents the report run configuration
type Config struct {
	// ObjectLimit caps how many listed ids are fetched. Zero fetches all.
	ObjectLimit int `json:"object_limit"`

	// FetchWorkers bounds concurrent object fetches; 1 is sequential
	FetchWorkers int `json:"fetch_workers"`

	// Retry configuration for collection API calls
	RetryConfig RetryConfig `json:"retry_config"`

	// RepeatedGroups are flattened in order
	RepeatedGroups []string `json:"repeated_groups"`

	// StrictFlatten fails records that lack a repeated group
	StrictFlatten bool `json:"strict_flatten"`

	// ReportDir is created when missing
	ReportDir string `json:"report_dir"`
	BaseName  string `json:"base_name"`

	// Whether to run every exporter after one fails
	ContinueOnError bool `json:"continue_on_error"`

	// VerifyReports re-reads every written report and fails it when the
	// file does not parse as its format
	VerifyReports bool `json:"verify_reports"`

	// Notification settings
	Notify  bool   `json:"notify"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewConfig returns the default run configuration
func NewConfig() *Config {
	return &Config{
		ObjectLimit:    DefaultObjectLimit,
		FetchWorkers:   DefaultFetchWorkers,
		RetryConfig:    NewRetryConfig(),
		RepeatedGroups: []string{"constituents", "measurements", "tags"},
		ReportDir:      DefaultReportDir,
		BaseName:       DefaultBaseName,
		Subject:        DefaultSubject,
		Body:           DefaultBody,
	}
}

// ConfigFromApp builds the run configuration from the application
// configuration. reportDir is the resolved report directory.
func ConfigFromApp(cfg *appconfig.Config, reportDir string) *Config {
	return &Config{
		ObjectLimit:  cfg.API.ObjectLimit,
		FetchWorkers: cfg.API.FetchWorkers,
		RetryConfig: RetryConfig{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialDelay: cfg.Retry.InitialDelay,
			MaxDelay:     cfg.Retry.MaxDelay,
			Multiplier:   cfg.Retry.Multiplier,
		},
		RepeatedGroups:  append([]string(nil), cfg.Flatten.RepeatedGroups...),
		StrictFlatten:   cfg.Flatten.Strict,
		ReportDir:       reportDir,
		BaseName:        cfg.Report.BaseName,
		ContinueOnError: cfg.Report.ContinueOnError,
		VerifyReports:   cfg.Report.Verify,
		Notify:          cfg.Email.Enabled,
		Subject:         cfg.Email.Subject,
		Body:            cfg.Email.Body,
	}
}

// ConfigBuilder provides a fluent interface for building run configurations
type ConfigBuilder struct {
	config *Config
}

// NewConfigBuilder creates a new configuration builder
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: NewConfig()}
}

// WithObjectLimit sets how many ids are fetched
func (b *ConfigBuilder) WithObjectLimit(limit int) *ConfigBuilder {
	b.config.ObjectLimit = limit
	return b
}

// WithFetchWorkers sets the fetch concurrency
func (b *ConfigBuilder) WithFetchWorkers(workers int) *ConfigBuilder {
	b.config.FetchWorkers = workers
	return b
}

// WithRetryConfig sets the retry configuration
func (b *ConfigBuilder) WithRetryConfig(config RetryConfig) *ConfigBuilder {
	b.config.RetryConfig = config
	return b
}

// WithReportDir sets the output directory
func (b *ConfigBuilder) WithReportDir(dir string) *ConfigBuilder {
	b.config.ReportDir = dir
	return b
}

// WithContinueOnError sets whether to continue on export errors
func (b *ConfigBuilder) WithContinueOnError(continueOnError bool) *ConfigBuilder {
	b.config.ContinueOnError = continueOnError
	return b
}

// WithVerifyReports sets whether written reports are checked
func (b *ConfigBuilder) WithVerifyReports(verify bool) *ConfigBuilder {
	b.config.VerifyReports = verify
	return b
}

// WithStrictFlatten sets whether missing repeated groups fail a record
func (b *ConfigBuilder) WithStrictFlatten(strict bool) *ConfigBuilder {
	b.config.StrictFlatten = strict
	return b
}

// WithNotification enables the notifier with a subject and body
func (b *ConfigBuilder) WithNotification(subject, body string) *ConfigBuilder {
	b.config.Notify = true
	if subject != "" {
		b.config.Subject = subject
	}
	if body != "" {
		b.config.Body = body
	}
	return b
}

// Build returns the built configuration
func (b *ConfigBuilder) Build() *Config {
	return b.config
}
