/*
Copyright © 2025 The openhexa-pipelines-iaso authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aanoble/openhexa-pipelines-iaso/internal/ioconfig"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/iofs"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/iologger"
	app "github.com/aanoble/openhexa-pipelines-iaso/pkg"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
	"github.com/gnames/gn"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
)

var rootCmd = getRootCmd()

func getRootCmd() *cobra.Command {
	res := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "iasoimport",
		Short:   "Imports tabular submissions into an IASO form",
		Long: `iasoimport pushes rows of a CSV, XLSX or Parquet file to an IASO
platform as form submissions.

Every row is validated against the form definition, rendered as an XML
instance and sent with one of the strategies:
  - CREATE: new instances
  - UPDATE: edit existing instances (needs id and instanceID columns)
  - CREATE_AND_UPDATE: rows with id are updated, others created
  - DELETE: remove instances by id

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (IASOIMPORT_*), also read from ./.env
  3. Config file (~/.config/iasoimport/config.yaml)
  4. Built-in defaults

Nested fields use underscores (iaso.url → IASOIMPORT_IASO_URL).`,
		PersistentPreRunE: bootstrap,
		RunE:              runRoot,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	res.SetVersionTemplate("{{.Version}}\n")
	res.Flags().BoolP("version", "V", false, "version for iasoimport")

	res.AddCommand(getPushCmd())
	res.AddCommand(getValidateCmd())
	return res
}

// bootstrap prepares directories, logging and configuration for every
// subcommand. Errors are printed once, here.
func bootstrap(cmd *cobra.Command, args []string) error {
	err := loadConfig()
	if err != nil {
		gn.PrintErrorMessage(err)
	}
	return err
}

func loadConfig() error {
	var err error
	if homeDir, err = os.UserHomeDir(); err != nil {
		return err
	}

	// .env is optional
	_ = godotenv.Load()

	if err = iofs.EnsureDirs(homeDir); err != nil {
		return err
	}

	// file logging until the user's settings are known
	startLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), startLog, false); err != nil {
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		return err
	}
	gn.Info(
		"Configuration files are available at <em>%s</em>",
		config.ConfigDir(homeDir),
	)

	loaded, err := ioconfig.Load(homeDir)
	if err != nil {
		return err
	}
	opts = append(loaded.ToOptions(), config.OptHomeDir(homeDir))
	cfg = config.New()
	cfg.Update(opts)

	if err = reconfigureLogging(cfg); err != nil {
		return err
	}
	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"iaso_url", cfg.Iaso.URL,
		"ledger", cfg.Ledger.Driver,
	)
	return nil
}

// reconfigureLogging reinitializes the logger with the loaded configuration.
func reconfigureLogging(cfg *config.Config) error {
	logDir := config.LogDir(cfg.HomeDir)
	return iologger.Init(logDir, cfg.Log, true)
}

func runRoot(cmd *cobra.Command, args []string) error {
	versionFlag(cmd)
	return cmd.Help()
}

// Execute runs the iasoimport command line and exits with status 1 on
// failure.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
