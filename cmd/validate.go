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
	"context"

	"github.com/aanoble/openhexa-pipelines-iaso/internal/ioconfig"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/iodataset"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/ioiaso"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/iopush"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/ioschema"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getValidateCmd returns the validate command.
func getValidateCmd() *cobra.Command {
	var flags importFlags

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a submissions file without pushing it",
		Long: `Check a submissions file against the latest form definition.

The file is checked for the columns required by --strategy and for
column types, then constraints, choices and calculations of the form are
applied to every row. The enriched rows are written to
validation_report.csv in the output directory. Nothing is sent to the
platform.

Examples:
  iasoimport validate -f 512 -i households.csv
  iasoimport validate -f 512 -i edits.xlsx -s UPDATE -o ./report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runValidate(cmd, &flags)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	addImportFlags(validateCmd, &flags)
	return validateCmd
}

func runValidate(cmd *cobra.Command, flags *importFlags) error {
	ctx := context.Background()
	cfg.Update(flags.options(cmd))
	if err := ioconfig.RequireImport(cfg, false); err != nil {
		return err
	}

	ds, err := iodataset.Read(cfg.Import.InputFile)
	if err != nil {
		return err
	}

	client := ioiaso.New(cfg.Iaso)
	if err = client.Authenticate(ctx); err != nil {
		return err
	}

	prm, err := iopush.PrepareValidation(ctx, client, cfg)
	if err != nil {
		return err
	}

	schemas := ioschema.New(client, ioschema.NewCache())
	rep, err := iopush.Validate(ctx, schemas, ds, prm)
	if err != nil {
		return err
	}

	if !rep.Outcome.IsValid {
		for _, e := range rep.Outcome.Errors {
			gn.Warn("%s", e)
		}
	}
	return nil
}
