package config

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir and everything in Import).
// Boolean fields are always included because their zero value is
// meaningful.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int

	s = c.Iaso.URL
	if s != "" {
		res = append(res, OptIasoURL(s))
	}
	s = c.Iaso.Username
	if s != "" {
		res = append(res, OptIasoUsername(s))
	}
	s = c.Iaso.Password
	if s != "" {
		res = append(res, OptIasoPassword(s))
	}
	if c.Iaso.Timeout > 0 {
		res = append(res, OptIasoTimeout(c.Iaso.Timeout))
	}
	if c.Iaso.RateLimit > 0 {
		res = append(res, OptIasoRateLimit(c.Iaso.RateLimit))
	}
	i = c.Iaso.RateBurst
	if i > 0 {
		res = append(res, OptIasoRateBurst(i))
	}
	res = append(res, OptIasoMaxRetries(c.Iaso.MaxRetries))

	s = c.Ledger.Driver
	if s != "" {
		res = append(res, OptLedgerDriver(s))
	}
	s = c.Ledger.Host
	if s != "" {
		res = append(res, OptLedgerHost(s))
	}
	i = c.Ledger.Port
	if i > 0 {
		res = append(res, OptLedgerPort(i))
	}
	s = c.Ledger.User
	if s != "" {
		res = append(res, OptLedgerUser(s))
	}
	s = c.Ledger.Password
	if s != "" {
		res = append(res, OptLedgerPassword(s))
	}
	s = c.Ledger.Database
	if s != "" {
		res = append(res, OptLedgerDatabase(s))
	}
	s = c.Ledger.SSLMode
	if s != "" {
		res = append(res, OptLedgerSSLMode(s))
	}

	s = c.Artifacts.Endpoint
	if s != "" {
		res = append(res, OptArtifactsEndpoint(s))
	}
	s = c.Artifacts.AccessKey
	if s != "" {
		res = append(res, OptArtifactsAccessKey(s))
	}
	s = c.Artifacts.SecretKey
	if s != "" {
		res = append(res, OptArtifactsSecretKey(s))
	}
	s = c.Artifacts.Bucket
	if s != "" {
		res = append(res, OptArtifactsBucket(s))
	}
	res = append(res, OptArtifactsUseSSL(c.Artifacts.UseSSL))

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	res = append(res, OptWithProgress(c.WithProgress))
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidNonNegative(name string, i int) bool {
	res := i >= 0
	if !res {
		gn.Warn("<em>%s</em> cannot be negative, ignoring %d", name, i)
	}
	return res
}

func isValidFloat(name string, f float64) bool {
	res := f > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %v", name, f)
	}
	return res
}

func isValidURL(name, s string) bool {
	u, err := url.Parse(s)
	res := err == nil && (u.Scheme == "http" || u.Scheme == "https") &&
		u.Host != ""
	if !res {
		gn.Warn("<em>%s</em> is not a valid http(s) URL, ignoring '%s'", name, s)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Import.Strategy": {"CREATE": s, "UPDATE": s,
			"CREATE_AND_UPDATE": s, "DELETE": s},
		"Ledger.Driver": {"sqlite": s, "postgres": s, "none": s},
		"Ledger.SSLMode": {"disable": s, "require": s,
			"verify-ca": s, "verify-full": s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s, "tint": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	} else {
		gn.Warn(
			"<em>%s</em> does not support '%s' as a value. "+
				"Valid values are: \n%s\nIgnoring...",
			name, val, strings.Join(lines, "\n"),
		)
		return false
	}
}
