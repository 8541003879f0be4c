package config

import (
	"strings"
	"time"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptIasoURL sets the base URL of the remote platform.
func OptIasoURL(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "/")
	return func(c *Config) {
		if isValidURL("Iaso URL", s) {
			c.Iaso.URL = s
		}
	}
}

// OptIasoUsername sets the account name used for authentication.
func OptIasoUsername(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Iaso Username", s) {
			c.Iaso.Username = s
		}
	}
}

// OptIasoPassword sets the account password used for authentication.
func OptIasoPassword(s string) Option {
	return func(c *Config) {
		if isValidString("Iaso Password", s) {
			c.Iaso.Password = s
		}
	}
}

// OptIasoTimeout sets the timeout of a single HTTP request.
func OptIasoTimeout(d time.Duration) Option {
	return func(c *Config) {
		if isValidInt("Iaso Timeout", int(d)) {
			c.Iaso.Timeout = d
		}
	}
}

// OptIasoRateLimit sets the maximum number of requests per second.
func OptIasoRateLimit(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Iaso Rate Limit", f) {
			c.Iaso.RateLimit = f
		}
	}
}

// OptIasoRateBurst sets the burst size of the rate limiter.
func OptIasoRateBurst(i int) Option {
	return func(c *Config) {
		if isValidInt("Iaso Rate Burst", i) {
			c.Iaso.RateBurst = i
		}
	}
}

// OptIasoMaxRetries sets how many times GET requests are retried.
// Zero disables retries.
func OptIasoMaxRetries(i int) Option {
	return func(c *Config) {
		if isValidNonNegative("Iaso Max Retries", i) {
			c.Iaso.MaxRetries = i
		}
	}
}

// OptImportProjectID sets the platform project id.
// Runtime-only field - not in ToOptions().
func OptImportProjectID(i int) Option {
	return func(c *Config) {
		if isValidInt("Project ID", i) {
			c.Import.ProjectID = i
		}
	}
}

// OptImportFormID sets the platform form id.
// Runtime-only field - not in ToOptions().
func OptImportFormID(i int) Option {
	return func(c *Config) {
		if isValidInt("Form ID", i) {
			c.Import.FormID = i
		}
	}
}

// OptImportInputFile sets the path of the submissions file.
// Runtime-only field - not in ToOptions().
func OptImportInputFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Input File", s) {
			c.Import.InputFile = s
		}
	}
}

// OptImportStrategy sets the import strategy.
// Valid values: "CREATE", "UPDATE", "CREATE_AND_UPDATE", "DELETE".
// Runtime-only field - not in ToOptions().
func OptImportStrategy(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToUpper(s)
	return func(c *Config) {
		if isValidEnum("Import.Strategy", s) {
			c.Import.Strategy = s
		}
	}
}

// OptImportOutputDir sets the directory for artifacts and reports.
// Runtime-only field - not in ToOptions().
func OptImportOutputDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Output Directory", s) {
			c.Import.OutputDir = s
		}
	}
}

// OptImportStrictValidation toggles strict validation.
// Runtime-only field - not in ToOptions().
func OptImportStrictValidation(b bool) Option {
	return func(c *Config) {
		c.Import.StrictValidation = b
	}
}

// OptLedgerDriver sets the ledger backend.
// Valid values: "sqlite", "postgres", "none".
func OptLedgerDriver(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Ledger.Driver", s) {
			c.Ledger.Driver = s
		}
	}
}

// OptLedgerHost sets the PostgreSQL server hostname of the ledger.
func OptLedgerHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Ledger Host", s) {
			c.Ledger.Host = s
		}
	}
}

// OptLedgerPort sets the PostgreSQL server port of the ledger.
func OptLedgerPort(i int) Option {
	return func(c *Config) {
		if isValidInt("Ledger Port", i) {
			c.Ledger.Port = i
		}
	}
}

// OptLedgerUser sets the PostgreSQL user of the ledger.
func OptLedgerUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Ledger User", s) {
			c.Ledger.User = s
		}
	}
}

// OptLedgerPassword sets the PostgreSQL password of the ledger.
func OptLedgerPassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Ledger Password", s) {
			c.Ledger.Password = s
		}
	}
}

// OptLedgerDatabase sets the PostgreSQL database of the ledger.
func OptLedgerDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Ledger Database", s) {
			c.Ledger.Database = s
		}
	}
}

// OptLedgerSSLMode sets the SSL connection mode of the ledger.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptLedgerSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Ledger.SSLMode", s) {
			c.Ledger.SSLMode = s
		}
	}
}

// OptArtifactsEndpoint sets the S3-compatible endpoint (host:port).
func OptArtifactsEndpoint(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Artifacts Endpoint", s) {
			c.Artifacts.Endpoint = s
		}
	}
}

// OptArtifactsAccessKey sets the S3 access key.
func OptArtifactsAccessKey(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Artifacts Access Key", s) {
			c.Artifacts.AccessKey = s
		}
	}
}

// OptArtifactsSecretKey sets the S3 secret key.
func OptArtifactsSecretKey(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Artifacts Secret Key", s) {
			c.Artifacts.SecretKey = s
		}
	}
}

// OptArtifactsBucket sets the bucket receiving XML artifacts.
func OptArtifactsBucket(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Artifacts Bucket", s) {
			c.Artifacts.Bucket = s
		}
	}
}

// OptArtifactsUseSSL toggles TLS for the S3 endpoint.
func OptArtifactsUseSSL(b bool) Option {
	return func(c *Config) {
		c.Artifacts.UseSSL = b
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptWithProgress toggles progress bars.
func OptWithProgress(b bool) Option {
	return func(c *Config) {
		c.WithProgress = b
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
