package iopush

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/aanoble/openhexa-pipelines-iaso/internal/iodataset"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/iofs"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/enrich"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/form"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/push"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/validation"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
)

// Report is the result of validating a dataset without pushing it.
type Report struct {
	Outcome validation.Outcome
	// Warnings come from enrichment.
	Warnings []string
	Rows     int
	// InvalidRows fail constraint or choice checks.
	InvalidRows int
	// Path is the location of the enriched dataset.
	Path string
}

// Validate checks the structure of a dataset against the latest form
// version and its rows against the version named in form_version, the
// latest one when the column is absent or empty. The enriched dataset with
// its summary columns is written to ValidationFile in the output
// directory. Structural problems are reported, in strict mode they are
// returned as an error.
func Validate(
	ctx context.Context,
	schemas form.Provider,
	ds *dataset.Frame,
	prm push.Params,
) (Report, error) {
	var res Report
	latest, err := form.Load(ctx, schemas, prm.FormID, "")
	if err != nil {
		return res, err
	}

	res.Outcome = validation.ValidateStructure(
		ds, latest.Questions, string(prm.Strategy),
	)
	work, err := gate(ds, res.Outcome, prm.Strict)
	if err != nil {
		return res, err
	}

	enriched, warns, err := enrichVersions(ctx, schemas, work, latest, prm.FormID)
	if err != nil {
		return res, err
	}
	for _, w := range warns {
		slog.Warn("Enrichment", "warning", w)
	}
	res.Warnings = warns
	res.Rows = enriched.Len()
	for _, rec := range enriched.Rows() {
		if !enrich.SummaryValid(rec) {
			res.InvalidRows++
		}
	}

	if err = iofs.EnsureDir(prm.OutputDir); err != nil {
		return res, err
	}
	res.Path = filepath.Join(prm.OutputDir, ValidationFile)
	if err = iodataset.WriteCSV(res.Path, enriched); err != nil {
		return res, err
	}

	slog.Info("Validation complete",
		"rows", res.Rows,
		"invalid_rows", res.InvalidRows,
		"is_valid", res.Outcome.IsValid,
		"report", res.Path,
	)
	gn.Info(`Validation complete
  <em>Rows:</em>         %s
  <em>Invalid rows:</em> %s
  <em>Report:</em>       %s`,
		humanize.Comma(int64(res.Rows)),
		humanize.Comma(int64(res.InvalidRows)),
		res.Path,
	)
	return res, nil
}

// enrichVersions enriches a dataset with the latest schema, or with the
// schema of each row's version when the dataset has a form_version column.
func enrichVersions(
	ctx context.Context,
	schemas form.Provider,
	ds *dataset.Frame,
	latest form.Schema,
	formID int,
) (*dataset.Frame, []string, error) {
	if !ds.Has(colFormVersion) {
		res, warns := enrich.EnrichAndValidate(ds, latest)
		return res, warns, nil
	}
	_, byKey, err := versionSchemas(ctx, schemas, ds, latest, formID)
	if err != nil {
		return nil, nil, err
	}
	res, warns := enrich.EnrichByVersion(ds, byKey, func(rec dataset.Record) string {
		return versionKey(rec[colFormVersion])
	})
	return res, warns, nil
}
