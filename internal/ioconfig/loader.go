// Package ioconfig loads configuration from the config file and
// environment variables.
package ioconfig

import (
	"strings"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
	"github.com/spf13/viper"
)

// persistentKeys are config keys that can be set by environment
// variables. They match the fields of config.ToOptions().
var persistentKeys = []string{
	"iaso.url",
	"iaso.username",
	"iaso.password",
	"iaso.timeout",
	"iaso.rate_limit",
	"iaso.rate_burst",
	"iaso.max_retries",

	"ledger.driver",
	"ledger.host",
	"ledger.port",
	"ledger.user",
	"ledger.password",
	"ledger.database",
	"ledger.ssl_mode",

	"artifacts.endpoint",
	"artifacts.access_key",
	"artifacts.secret_key",
	"artifacts.bucket",
	"artifacts.use_ssl",

	"log.level",
	"log.format",
	"log.destination",

	"with_progress",
}

// Load reads ~/.config/iasoimport/config.yaml under homeDir. Environment
// variables with IASOIMPORT_ prefix override file values. The result is
// meant to be applied to config.New() through ToOptions().
func Load(homeDir string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(homeDir)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, ConfigLoadError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, ConfigLoadError(cfgPath, err)
	}

	return &res, nil
}

// EnvVar returns the environment variable name of a config key.
func EnvVar(key string) string {
	key = strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	return config.EnvPrefix + "_" + key
}

func initEnvVars(v *viper.Viper) {
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, k := range persistentKeys {
		_ = v.BindEnv(k, EnvVar(k))
	}

	v.AutomaticEnv()
}

// RequireImport checks the settings an import run cannot do without.
// The project id is only needed when instances are pushed.
func RequireImport(cfg *config.Config, withProject bool) error {
	switch {
	case cfg.Iaso.Username == "":
		return MissingValueError("iaso.username", "config file",
			EnvVar("iaso.username"))
	case cfg.Iaso.Password == "":
		return MissingValueError("iaso.password", "config file",
			EnvVar("iaso.password"))
	case cfg.Import.FormID == 0:
		return MissingValueError("form id", "--form-id", "the flag")
	case cfg.Import.InputFile == "":
		return MissingValueError("input file", "--input-file", "the flag")
	case withProject && cfg.Import.ProjectID == 0:
		return MissingValueError("project id", "--project-id", "the flag")
	}
	return nil
}
