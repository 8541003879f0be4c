package cmd

import (
	"fmt"
	"os"

	app "github.com/aanoble/openhexa-pipelines-iaso/pkg"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
	"github.com/spf13/cobra"
)

func versionFlag(cmd *cobra.Command) {
	hasVersionFlag, _ := cmd.Flags().GetBool("version")
	if hasVersionFlag {
		fmt.Printf("\nversion: %s\nbuild: %s\n\n", app.Version, app.Build)
		os.Exit(0)
	}
}

// importFlags are flags shared by commands that read a submissions file.
type importFlags struct {
	projectID int
	formID    int
	inputFile string
	strategy  string
	outputDir string
	strict    bool
}

func addImportFlags(cmd *cobra.Command, f *importFlags) {
	cmd.Flags().IntVarP(
		&f.projectID, "project-id", "p", 0,
		"platform project ID",
	)
	cmd.Flags().IntVarP(
		&f.formID, "form-id", "f", 0,
		"platform form ID",
	)
	cmd.Flags().StringVarP(
		&f.inputFile, "input-file", "i", "",
		"CSV, XLSX or Parquet file with one submission per row",
	)
	cmd.Flags().StringVarP(
		&f.strategy, "strategy", "s", "CREATE",
		"import strategy: CREATE, UPDATE, CREATE_AND_UPDATE or DELETE",
	)
	cmd.Flags().StringVarP(
		&f.outputDir, "output-dir", "o", "",
		"directory for rendered XML and reports",
	)
	cmd.Flags().BoolVar(
		&f.strict, "strict", false,
		"stop on structural validation errors, ignore invalid rows",
	)
}

// options converts explicitly set flags to config options.
func (f *importFlags) options(cmd *cobra.Command) []config.Option {
	var res []config.Option
	flags := cmd.Flags()
	if flags.Changed("project-id") {
		res = append(res, config.OptImportProjectID(f.projectID))
	}
	if flags.Changed("form-id") {
		res = append(res, config.OptImportFormID(f.formID))
	}
	if flags.Changed("input-file") {
		res = append(res, config.OptImportInputFile(f.inputFile))
	}
	if flags.Changed("strategy") {
		res = append(res, config.OptImportStrategy(f.strategy))
	}
	if flags.Changed("output-dir") {
		res = append(res, config.OptImportOutputDir(f.outputDir))
	}
	if flags.Changed("strict") {
		res = append(res, config.OptImportStrictValidation(f.strict))
	}
	return res
}
