// Package iologger sets up the process-wide slog logger of iasoimport.
package iologger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
)

// LogFile returns the path of the log file in logDir.
func LogFile(logDir string) string {
	return filepath.Join(logDir, config.AppName+".log")
}

// Init installs the default slog logger described by cfg. With the "file"
// destination the log goes to LogFile(logDir), appended when append is
// true and truncated otherwise. Every record carries the application name.
func Init(logDir string, cfg config.LogConfig, append bool) error {
	w, err := openWriter(logDir, cfg.Destination, append)
	if err != nil {
		return err
	}
	h := newHandler(w, cfg)
	slog.SetDefault(slog.New(h).With("app", config.AppName))
	return nil
}

func openWriter(logDir, dest string, append bool) (io.Writer, error) {
	switch dest {
	case "stdout":
		return os.Stdout, nil
	case "file":
	default:
		return os.Stderr, nil
	}

	path := LogFile(logDir)
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, CreateLogFileError(path, err)
	}
	return f, nil
}

// newHandler returns a JSON handler unless text output is asked for.
// "tint" is rendered as plain text.
func newHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "text" || cfg.Format == "tint" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func parseLevel(level string) slog.Level {
	var res slog.Level
	// slog understands DEBUG, INFO, WARN and ERROR in any case.
	if err := res.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return res
}
