package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "iasoimport"
	// EnvPrefix is the prefix of environment variables.
	EnvPrefix = "IASOIMPORT"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/iasoimport by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/iasoimport by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/iasoimport/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/iasoimport/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// DefaultOutputDir returns the directory used when no output directory
// is given: <home>/iaso-pipelines/import-submissions/<formName>.
func DefaultOutputDir(homeDir, formName string) string {
	return filepath.Join(
		homeDir, "iaso-pipelines", "import-submissions", formName,
	)
}
