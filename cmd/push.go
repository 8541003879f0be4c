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
	"fmt"
	"log/slog"
	"strings"

	"github.com/aanoble/openhexa-pipelines-iaso/internal/ioartifact"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/ioconfig"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/iodataset"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/iodb"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/ioiaso"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/iopush"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/ioschema"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/artifact"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/ledger"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/push"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getPushCmd returns the push command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getPushCmd() *cobra.Command {
	var flags importFlags

	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Push submissions from a CSV, XLSX or Parquet file to an IASO form",
		Long: `Push rows of a submissions file to an IASO form.

This command:
  1. Authenticates with iaso.username and iaso.password
  2. Checks that the user may update submissions of the project
  3. Validates the file against the latest form definition
  4. Renders every row as an XML instance of its form version
  5. Creates, updates or deletes instances according to --strategy
  6. Writes import_summary.yaml and the rendered XML to the output
     directory and records every row outcome in the ledger

A failing row is counted as ignored, the import goes on.

Examples:
  # Create new submissions
  iasoimport push -p 3 -f 512 -i households.csv

  # Update existing submissions, stop on structural problems
  iasoimport push -p 3 -f 512 -i edits.xlsx -s UPDATE --strict

  # Delete submissions listed by id
  iasoimport push -p 3 -f 512 -i obsolete.csv -s DELETE`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runPush(cmd, &flags)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	addImportFlags(pushCmd, &flags)
	return pushCmd
}

func runPush(cmd *cobra.Command, flags *importFlags) error {
	ctx := context.Background()
	cfg.Update(flags.options(cmd))
	if err := ioconfig.RequireImport(cfg, true); err != nil {
		return err
	}

	ds, err := iodataset.Read(cfg.Import.InputFile)
	if err != nil {
		return err
	}
	gn.Info("Read <em>%d</em> rows from <em>%s</em>",
		ds.Len(), cfg.Import.InputFile)

	client := ioiaso.New(cfg.Iaso)
	if err = client.Authenticate(ctx); err != nil {
		return err
	}

	prm, err := iopush.Prepare(ctx, client, cfg)
	if err != nil {
		return err
	}

	led, err := iodb.Open(ctx, cfg.Ledger, prm.OutputDir)
	if err != nil {
		return err
	}
	defer led.Close()

	store, err := artifactStore(ctx, cfg, prm)
	if err != nil {
		return err
	}

	schemas := ioschema.New(client, ioschema.NewCache())
	pusher := iopush.New(cfg, client, schemas, led, store)
	res, err := pusher.Push(ctx, ds, prm)
	if err != nil {
		return err
	}
	if res.Ignored > 0 {
		reportIgnored(ctx, led, prm.RunID)
	}

	gn.Info("Results are saved in <em>%s</em>", prm.OutputDir)
	return nil
}

// artifactStore keeps rendered documents in the output directory and,
// when an endpoint is configured, in the S3 bucket under the run id.
func artifactStore(
	ctx context.Context,
	cfg *config.Config,
	prm push.Params,
) (artifact.Store, error) {
	fsStore := ioartifact.NewFS(prm.OutputDir)
	if cfg.Artifacts.Endpoint == "" {
		return fsStore, nil
	}
	s3Store, err := ioartifact.NewS3(ctx, cfg.Artifacts, prm.RunID)
	if err != nil {
		return nil, err
	}
	return artifact.Multi{fsStore, s3Store}, nil
}

// maxIgnoredShown limits the ignored rows listed after a push.
const maxIgnoredShown = 10

// reportIgnored lists ignored rows of a run with the reasons kept in the
// ledger.
func reportIgnored(ctx context.Context, led ledger.Ledger, runID string) {
	es, err := led.Entries(ctx, runID)
	if err != nil {
		slog.Warn("Cannot list ignored rows", "run_id", runID, "error", err)
		return
	}
	lines := ignoredRows(es, maxIgnoredShown)
	if len(lines) == 0 {
		return
	}
	gn.Warn("Ignored rows:\n%s", strings.Join(lines, "\n"))
}

// ignoredRows describes at most limit ignored entries, the rest are
// counted in a last line.
func ignoredRows(es []ledger.Entry, limit int) []string {
	var res []string
	var total int
	for _, e := range es {
		if e.Outcome != string(push.Ignored) {
			continue
		}
		total++
		if len(res) < limit {
			res = append(res, fmt.Sprintf("  row %d: %s", e.Row, e.Message))
		}
	}
	if total > len(res) {
		res = append(res, fmt.Sprintf("  ... and %d more", total-len(res)))
	}
	return res
}
