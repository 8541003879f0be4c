// Package config provides configuration management for iasoimport.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Iaso: url, username, password, timeout, rate_limit, rate_burst, max_retries
//   - Ledger: driver, host, port, user, password, database, ssl_mode
//   - Artifacts: endpoint, access_key, secret_key, bucket, use_ssl
//   - Log: level, format, destination
//   - General: with_progress
//
// Runtime-only fields (CLI flags only):
//   - Import.ProjectID, FormID, InputFile, Strategy, OutputDir,
//     StrictValidation (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use IASOIMPORT_ prefix with underscores for nesting:
//
//	IASOIMPORT_IASO_URL=https://iaso.bluesquare.org
//	IASOIMPORT_IASO_USERNAME=pipeline
//	IASOIMPORT_LEDGER_DRIVER=sqlite
//	IASOIMPORT_LOG_LEVEL=info
package config

import "time"

// Config represents the complete iasoimport configuration.
type Config struct {
	// Iaso contains connection settings of the remote platform.
	Iaso IasoConfig `mapstructure:"iaso" yaml:"iaso"`

	// Import contains settings of a single import run.
	Import ImportConfig `mapstructure:"import" yaml:"import"`

	// Ledger configures where per-row outcomes are recorded.
	Ledger LedgerConfig `mapstructure:"ledger" yaml:"ledger"`

	// Artifacts configures an optional S3-compatible mirror of rendered
	// XML submissions.
	Artifacts ArtifactsConfig `mapstructure:"artifacts" yaml:"artifacts"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// WithProgress shows progress bars during row processing.
	WithProgress bool `mapstructure:"with_progress" yaml:"with_progress"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// IasoConfig contains the remote platform connection parameters.
type IasoConfig struct {
	// URL is the base URL of the platform, for example
	// https://iaso.bluesquare.org.
	URL string `mapstructure:"url" yaml:"url"`

	// Username of the account used by the pipeline.
	Username string `mapstructure:"username" yaml:"username"`

	// Password of the account used by the pipeline.
	Password string `mapstructure:"password" yaml:"password"`

	// Timeout of a single HTTP request.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// RateLimit is the maximum number of requests per second.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`

	// RateBurst is the size of the token bucket of the rate limiter.
	RateBurst int `mapstructure:"rate_burst" yaml:"rate_burst"`

	// MaxRetries is how many times idempotent GET requests are retried
	// after transport errors. Non-GET requests are never retried.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// ImportConfig contains settings of one import run. All of them are
// runtime-only and come from CLI flags.
type ImportConfig struct {
	// ProjectID is the platform project the submissions belong to.
	ProjectID int `mapstructure:"project_id" yaml:"project_id"`

	// FormID is the platform id of the form.
	FormID int `mapstructure:"form_id" yaml:"form_id"`

	// InputFile is the path to the CSV, XLSX or Parquet file with submissions.
	InputFile string `mapstructure:"input_file" yaml:"input_file"`

	// Strategy is one of CREATE, UPDATE, CREATE_AND_UPDATE, DELETE.
	Strategy string `mapstructure:"strategy" yaml:"strategy"`

	// OutputDir receives rendered XML artifacts, the summary and the
	// ledger. Empty means
	// <home>/iaso-pipelines/import-submissions/<form_name>.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// StrictValidation aborts on structural errors and skips rows that
	// fail constraint or choice validation.
	StrictValidation bool `mapstructure:"strict_validation" yaml:"strict_validation"`
}

// LedgerConfig configures the run ledger.
type LedgerConfig struct {
	// Driver is 'sqlite' (file in the output directory), 'postgres' or
	// 'none'.
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Host is the PostgreSQL server hostname, used by 'postgres' driver.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// ArtifactsConfig configures the S3-compatible artifact mirror.
// The mirror is disabled when Endpoint is empty.
type ArtifactsConfig struct {
	Endpoint  string `mapstructure:"endpoint"   yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	Bucket    string `mapstructure:"bucket"     yaml:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"    yaml:"use_ssl"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Iaso: IasoConfig{
			URL:        "https://iaso.bluesquare.org",
			Timeout:    30 * time.Second,
			RateLimit:  10,
			RateBurst:  5,
			MaxRetries: 2,
		},
		Import: ImportConfig{
			Strategy: "CREATE",
		},
		Ledger: LedgerConfig{
			Driver:   "sqlite",
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Database: "iaso_imports",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		WithProgress: true,
	}

	return res
}
