package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	API      APIConfig     `yaml:"api" envconfig:"API"`
	Retry    RetryConfig   `yaml:"retry" envconfig:"RETRY"`
	Flatten  FlattenConfig `yaml:"flatten" envconfig:"FLATTEN"`
	Report   ReportConfig  `yaml:"report" envconfig:"REPORT"`
	Logging  LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Email    EmailConfig   `yaml:"email" envconfig:"EMAIL"`
	Metrics  MetricsConfig `yaml:"metrics" envconfig:"METRICS"`
	Tracing  TracingConfig `yaml:"tracing" envconfig:"TRACING"`
	Schedule string        `yaml:"schedule" envconfig:"SCHEDULE" validate:"omitempty,cronspec"`
}

// APIConfig contains collection API client configuration
type APIConfig struct {
	BaseURL      string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://collectionapi.metmuseum.org" validate:"required,url"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s" validate:"gt=0"`
	RateLimit    float64       `yaml:"rate_limit" envconfig:"RATE_LIMIT" default:"80" validate:"gte=0"`
	Burst        int           `yaml:"burst" envconfig:"BURST" default:"10" validate:"gte=0"`
	UserAgent    string        `yaml:"user_agent" envconfig:"USER_AGENT" default:"museumreport/1.0"`
	ObjectLimit  int           `yaml:"object_limit" envconfig:"OBJECT_LIMIT" default:"15" validate:"gte=0"`
	FetchWorkers int           `yaml:"fetch_workers" envconfig:"FETCH_WORKERS" default:"1" validate:"min=1,max=32"`
}

// RetryConfig contains the fetch retry policy
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS" default:"3" validate:"min=1,max=10"`
	InitialDelay time.Duration `yaml:"initial_delay" envconfig:"INITIAL_DELAY" default:"1s" validate:"gte=0"`
	MaxDelay     time.Duration `yaml:"max_delay" envconfig:"MAX_DELAY" default:"30s" validate:"gtefield=InitialDelay"`
	Multiplier   float64       `yaml:"multiplier" envconfig:"MULTIPLIER" default:"2" validate:"gte=1"`
}

// FlattenConfig contains flattening configuration
type FlattenConfig struct {
	RepeatedGroups []string `yaml:"repeated_groups" envconfig:"REPEATED_GROUPS" default:"constituents,measurements,tags" validate:"min=1,dive,required"`
	Strict         bool     `yaml:"strict" envconfig:"STRICT" default:"false"`
}

// ReportConfig contains report generation configuration
type ReportConfig struct {
	Dir             string        `yaml:"dir" envconfig:"DIR" default:"reports" validate:"required"`
	BaseName        string        `yaml:"base_name" envconfig:"BASE_NAME" default:"museum_data" validate:"required,excludesall=/\\"`
	Title           string        `yaml:"title" envconfig:"TITLE" default:"Museum Collection Report"`
	SheetName       string        `yaml:"sheet_name" envconfig:"SHEET_NAME" default:"Sheet1" validate:"required,max=31"`
	BOM             bool          `yaml:"bom" envconfig:"BOM" default:"false"`
	ContinueOnError bool          `yaml:"continue_on_error" envconfig:"CONTINUE_ON_ERROR" default:"false"`
	Verify          bool          `yaml:"verify" envconfig:"VERIFY" default:"true"`
	PDF             bool          `yaml:"pdf" envconfig:"PDF" default:"true"`
	PageWidth       float64       `yaml:"page_width" envconfig:"PAGE_WIDTH" default:"1270" validate:"gt=0"`
	PageHeight      float64       `yaml:"page_height" envconfig:"PAGE_HEIGHT" default:"2500" validate:"gt=0"`
	ChromePath      string        `yaml:"chrome_path" envconfig:"CHROME_PATH"`
	RenderTimeout   time.Duration `yaml:"render_timeout" envconfig:"RENDER_TIMEOUT" default:"60s" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/museumreport.log"`
}

// EmailConfig contains report notification configuration
type EmailConfig struct {
	Enabled    bool     `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	Host       string   `yaml:"host" envconfig:"HOST" default:"smtp.gmail.com" validate:"required_if=Enabled true"`
	Port       int      `yaml:"port" envconfig:"PORT" default:"587" validate:"min=1,max=65535"`
	Sender     string   `yaml:"sender" envconfig:"SENDER" validate:"required_if=Enabled true"`
	Password   string   `yaml:"password" envconfig:"PASSWORD"`
	Recipients []string `yaml:"recipients" envconfig:"RECIPIENTS" validate:"required_if=Enabled true,dive,email"`
	Subject    string   `yaml:"subject" envconfig:"SUBJECT" default:"Museum API Reports"`
	Body       string   `yaml:"body" envconfig:"BODY" default:"Please take a look at the generated reports."`
	Archive    bool     `yaml:"archive" envconfig:"ARCHIVE" default:"false"`
}

// MetricsConfig contains run metrics configuration
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" envconfig:"TEXTFILE_PATH"`
}

// TracingConfig contains tracing configuration
type TracingConfig struct {
	Enabled    bool   `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	OutputPath string `yaml:"output_path" envconfig:"OUTPUT_PATH"`
}

// Load loads configuration from environment variables and an optional
// config file. An empty path searches DefaultConfigFiles.
//
// Precedence is environment, then file, then defaults. The unprefixed
// legacy email variables count as environment: they beat the file but lose
// to their MUSEUM_EMAIL_* replacements.
func Load(path string) (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		fileConfig, present, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
		mergeConfigs(reflect.ValueOf(&cfg).Elem(), reflect.ValueOf(fileConfig).Elem(), EnvPrefix, "", present)
	}
	applyLegacyEnv(&cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration built from defaults alone, ignoring the
// environment
func Default() *Config {
	var cfg Config
	setDefaults(reflect.ValueOf(&cfg).Elem())
	return &cfg
}

// findConfigFile returns the explicit path, or the first default file that
// exists, or "" when there is none
func findConfigFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}
	if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
		return findConfigFile(env)
	}
	for _, candidate := range DefaultConfigFiles {
		if FileExists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

// loadFromFile loads configuration from YAML file. The returned set holds
// the dotted YAML path of every key the file sets.
func loadFromFile(filePath string) (*Config, map[string]bool, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, nil, err
	}

	var raw map[interface{}]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	present := make(map[string]bool)
	collectKeys(raw, "", present)

	return cfg, present, nil
}

func collectKeys(m map[interface{}]interface{}, prefix string, present map[string]bool) {
	for k, v := range m {
		key := fmt.Sprint(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		present[key] = true
		if nested, ok := v.(map[interface{}]interface{}); ok {
			collectKeys(nested, key, present)
		}
	}
}

// mergeConfigs copies every value the file sets into dst unless the matching
// environment variable is set
func mergeConfigs(dst, file reflect.Value, envPrefix, yamlPrefix string, present map[string]bool) {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		envKey := envPrefix + "_" + field.Tag.Get("envconfig")
		yamlKey := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if yamlPrefix != "" {
			yamlKey = yamlPrefix + "." + yamlKey
		}

		if field.Type.Kind() == reflect.Struct {
			mergeConfigs(dst.Field(i), file.Field(i), envKey, yamlKey, present)
			continue
		}
		if _, set := os.LookupEnv(envKey); set {
			continue
		}
		if present[yamlKey] {
			dst.Field(i).Set(file.Field(i))
		}
	}
}

// setDefaults fills fields from their default tags
func setDefaults(v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		if field.Type.Kind() == reflect.Struct {
			setDefaults(fv)
			continue
		}
		def, ok := field.Tag.Lookup("default")
		if !ok {
			continue
		}
		switch fv.Interface().(type) {
		case time.Duration:
			d, _ := time.ParseDuration(def)
			fv.SetInt(int64(d))
		case string:
			fv.SetString(def)
		case bool:
			b, _ := strconv.ParseBool(def)
			fv.SetBool(b)
		case int:
			n, _ := strconv.Atoi(def)
			fv.SetInt(int64(n))
		case float64:
			f, _ := strconv.ParseFloat(def, 64)
			fv.SetFloat(f)
		case []string:
			fv.Set(reflect.ValueOf(strings.Split(def, ",")))
		}
	}
}

// applyLegacyEnv honors the unprefixed variables older deployments used to
// configure email
func applyLegacyEnv(cfg *Config) {
	if v, ok := legacyEnv("EMAIL_REPORTS", "EMAIL_ENABLED"); ok {
		cfg.Email.Enabled = isTruthy(v)
	}
	if v, ok := legacyEnv("SENDER_EMAIL", "EMAIL_SENDER"); ok && v != "" {
		cfg.Email.Sender = v
	}
	if v, ok := legacyEnv("PASSWORD", "EMAIL_PASSWORD"); ok && v != "" {
		cfg.Email.Password = v
	}
}

// legacyEnv looks up an unprefixed variable unless its prefixed
// replacement is set
func legacyEnv(name, replacement string) (string, bool) {
	if _, set := os.LookupEnv(EnvPrefix + "_" + replacement); set {
		return "", false
	}
	return os.LookupEnv(name)
}

// isTruthy accepts the boolean-like values used by shell environments
func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

// Validate validates the configuration
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterValidation("cronspec", isCronSpec)

	// Use YAML tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func isCronSpec(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}
