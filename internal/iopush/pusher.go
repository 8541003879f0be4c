// Package iopush implements the Pusher interface that sends a dataset of
// submissions to the platform.
// Rows are processed one at a time, a failing row is counted as ignored
// and never stops the run.
package iopush

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/aanoble/openhexa-pipelines-iaso/internal/ioartifact"
	"github.com/aanoble/openhexa-pipelines-iaso/internal/iofs"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/artifact"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/form"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/iaso"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/ledger"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/push"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/validation"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/xform"
	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
)

// pusher implements the Pusher interface.
type pusher struct {
	cfg     *config.Config
	api     iaso.API
	schemas form.Provider
	ledger  ledger.Ledger
	store   artifact.Store
}

// run is the state of one Push call.
type run struct {
	prm     push.Params
	vers    *versions
	store   artifact.Store
	scratch string
}

// part is a subset of the dataset processed with one strategy. rows holds
// the positions of its records in the full dataset, nil when the part is
// the whole dataset.
type part struct {
	strategy push.Strategy
	frame    *dataset.Frame
	rows     []int
}

func (pt part) row(j int) int {
	if pt.rows == nil {
		return j
	}
	return pt.rows[j]
}

// New creates a Pusher. A nil ledger records nothing, a nil store keeps
// rendered documents in the output directory of each run.
func New(
	cfg *config.Config,
	api iaso.API,
	schemas form.Provider,
	led ledger.Ledger,
	store artifact.Store,
) push.Pusher {
	if led == nil {
		led = ledger.Nop{}
	}
	return &pusher{
		cfg:     cfg,
		api:     api,
		schemas: schemas,
		ledger:  led,
		store:   store,
	}
}

// Push validates the dataset and applies the strategy to every row.
// Schema failures, strict validation failures and absent identifier
// columns stop the run before any row is sent.
func (p *pusher) Push(
	ctx context.Context,
	ds *dataset.Frame,
	prm push.Params,
) (push.Summary, error) {
	var res push.Summary
	startTime := time.Now()

	strategy, err := push.ParseStrategy(string(prm.Strategy))
	if err != nil {
		return res, UnsupportedStrategyError(err)
	}
	prm.Strategy = strategy
	if err = iofs.EnsureDir(prm.OutputDir); err != nil {
		return res, err
	}

	slog.Info("Starting push",
		"run_id", prm.RunID,
		"form_id", prm.FormID,
		"strategy", strategy,
		"strict", prm.Strict,
		"rows", ds.Len(),
	)
	gn.Info("Pushing <em>%s</em> rows with strategy <em>%s</em>",
		humanize.Comma(int64(ds.Len())), strategy)

	latest, err := form.Load(ctx, p.schemas, prm.FormID, "")
	if err != nil {
		return res, err
	}

	outcome := validation.ValidateStructure(ds, latest.Questions, string(strategy))
	work, err := gate(ds, outcome, prm.Strict)
	if err != nil {
		return res, err
	}
	if err = checkColumns(work, strategy); err != nil {
		return res, err
	}

	r := &run{prm: prm, store: p.store}
	if r.store == nil {
		r.store = ioartifact.NewFS(prm.OutputDir)
	}

	if strategy != push.Delete {
		meta, err := p.api.FormMeta(ctx, prm.FormID)
		if err != nil {
			return res, err
		}
		r.vers, work, err = p.buildVersions(ctx, work, meta, latest, prm.FormID)
		if err != nil {
			return res, err
		}

		r.scratch, err = os.MkdirTemp("", "iasoimport-")
		if err != nil {
			return res, ScratchDirError(err)
		}
		defer func() {
			if err := os.RemoveAll(r.scratch); err != nil {
				slog.Warn("Cannot remove scratch directory",
					"dir", r.scratch, "error", err)
			}
		}()
	}

	res, err = p.processRows(ctx, r, split(work, strategy))
	if err != nil {
		return res, err
	}

	duration := time.Since(startTime)
	err = writeReport(
		filepath.Join(prm.OutputDir, SummaryFile),
		newReport(prm, ds.Len(), startTime, duration, res, outcome),
	)
	if err != nil {
		return res, err
	}

	slog.Info("Push complete",
		"run_id", prm.RunID,
		"imported", res.Imported,
		"updated", res.Updated,
		"ignored", res.Ignored,
		"deleted", res.Deleted,
		"duration", gnfmt.TimeString(duration.Seconds()),
	)
	gn.Info(`Push complete
  <em>Rows:</em>     %s
  <em>Imported:</em> %s
  <em>Updated:</em>  %s
  <em>Ignored:</em>  %s
  <em>Deleted:</em>  %s
  <em>Duration:</em> %s`,
		humanize.Comma(int64(res.Total())),
		humanize.Comma(int64(res.Imported)),
		humanize.Comma(int64(res.Updated)),
		humanize.Comma(int64(res.Ignored)),
		humanize.Comma(int64(res.Deleted)),
		gnfmt.TimeString(duration.Seconds()),
	)
	return res, nil
}

// gate stops strict runs on invalid structure and coerces mismatched
// column types otherwise.
func gate(
	ds *dataset.Frame,
	outcome validation.Outcome,
	strict bool,
) (*dataset.Frame, error) {
	for _, w := range outcome.Warnings {
		slog.Warn("Validation warning", "warning", w)
	}
	if !outcome.IsValid {
		if strict {
			return nil, StructureInvalidError(outcome.Errors)
		}
		for _, e := range outcome.Errors {
			slog.Warn("Validation error", "error", e)
		}
		gn.Warn("Dataset has <em>%d</em> structural problems, "+
			"continuing without strict validation", len(outcome.Errors))
	}
	return coerce(ds, outcome), nil
}

// coerce casts columns with mismatched types to their expected type.
// Values that cannot be cast become nil.
func coerce(ds *dataset.Frame, outcome validation.Outcome) *dataset.Frame {
	if len(outcome.InvalidTypes) == 0 {
		return ds
	}
	res := ds.Clone()
	cols := make([]string, 0, len(outcome.InvalidTypes))
	for col := range outcome.InvalidTypes {
		cols = append(cols, col)
	}
	slices.Sort(cols)

	for _, col := range cols {
		t := outcome.InvalidTypes[col].ExpectedType()
		if t == "" {
			continue
		}
		n, err := res.Cast(col, t)
		if err != nil {
			slog.Warn("Cannot cast column", "column", col, "error", err)
			continue
		}
		slog.Info("Column cast", "column", col, "type", t)
		if n > 0 {
			gn.Warn("<em>%d</em> values of <em>%s</em> are not %s, "+
				"they are left empty", n, col, t)
		}
	}
	return res
}

// checkColumns enforces identifier columns of strategies that address
// existing instances.
func checkColumns(ds *dataset.Frame, strategy push.Strategy) error {
	switch strategy {
	case push.Update:
		if !ds.Has(colID) {
			return MissingIDColumnError(string(strategy))
		}
		if !ds.Has(colInstanceID) {
			return MissingInstanceIDColumnError()
		}
	case push.Delete:
		if !ds.Has(colID) {
			return MissingIDColumnError(string(strategy))
		}
	}
	return nil
}

// split partitions CREATE_AND_UPDATE datasets. Rows with id are updated,
// rows with only org_unit_id are created, rows with neither are ignored.
// Other strategies process the dataset as one part.
func split(ds *dataset.Frame, strategy push.Strategy) []part {
	if strategy != push.CreateAndUpdate {
		return []part{{strategy: strategy, frame: ds}}
	}
	creates, createRows := ds.Filter(func(rec dataset.Record) bool {
		return isNull(rec[colID]) && !isNull(rec[colOrgUnitID])
	})
	updates, updateRows := ds.Filter(func(rec dataset.Record) bool {
		return !isNull(rec[colID])
	})
	rest, restRows := ds.Filter(func(rec dataset.Record) bool {
		return isNull(rec[colID]) && isNull(rec[colOrgUnitID])
	})
	return []part{
		{strategy: push.Create, frame: creates, rows: createRows},
		{strategy: push.Update, frame: updates, rows: updateRows},
		{strategy: push.CreateAndUpdate, frame: rest, rows: restRows},
	}
}

// processRows pushes parts in order and merges their summaries.
// Cancellation is checked between rows.
func (p *pusher) processRows(
	ctx context.Context,
	r *run,
	parts []part,
) (push.Summary, error) {
	var res push.Summary
	var bar *pb.ProgressBar
	if p.cfg.WithProgress {
		var total int
		for _, pt := range parts {
			total += pt.frame.Len()
		}
		bar = pb.Full.Start(total)
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
	}

	for _, pt := range parts {
		var sum push.Summary
		for j, rec := range pt.frame.Rows() {
			if err := ctx.Err(); err != nil {
				return res.Merge(sum), err
			}
			rr := p.processRow(ctx, r, pt.strategy, pt.row(j), rec)
			sum.Add(rr.Outcome)
			p.record(ctx, r, rr)
			if bar != nil {
				bar.Increment()
			}
		}
		if len(parts) > 1 {
			slog.Info("Part complete",
				"strategy", pt.strategy,
				"rows", pt.frame.Len(),
				"summary", sum.String(),
			)
		}
		res = res.Merge(sum)
	}
	return res, nil
}

func (p *pusher) processRow(
	ctx context.Context,
	r *run,
	strategy push.Strategy,
	i int,
	rec dataset.Record,
) push.RowResult {
	switch strategy {
	case push.Create:
		return p.create(ctx, r, i, rec)
	case push.Update:
		return p.update(ctx, r, i, rec)
	case push.Delete:
		return p.delete(ctx, i, rec)
	case push.CreateAndUpdate:
		return ignored(i, "row has neither id nor org_unit_id")
	}
	return ignored(i, fmt.Sprintf("unsupported strategy %s", strategy))
}

func (p *pusher) record(ctx context.Context, r *run, res push.RowResult) {
	slog.Debug("Row processed",
		"row", res.Row,
		"status", res.Outcome,
		"instance_id", res.InstanceID,
		"instance_uuid", res.InstanceUUID,
		"message", res.Message,
	)
	e := ledger.NewEntry(r.prm.RunID, r.prm.Strategy, res)
	if err := p.ledger.Record(ctx, e); err != nil {
		slog.Error("Cannot record row outcome", "row", res.Row, "error", err)
	}
}

// template returns the template of a row, or nil and the reason the row
// has to be ignored.
func (r *run) template(i int, rec dataset.Record) (*xform.Template, string) {
	tpl := r.vers.template(rec)
	if tpl == nil {
		return nil, fmt.Sprintf("no template for form version %s",
			r.vers.key(rec))
	}
	if !r.vers.valid(rec) {
		if r.prm.Strict {
			return nil, "row fails constraint or choice validation"
		}
		slog.Warn("Row fails constraint or choice validation", "row", i)
	}
	return tpl, ""
}

// saveDoc writes a rendered document to the scratch directory and to the
// artifact store. The store location is returned, the scratch path when
// the store fails.
func (p *pusher) saveDoc(
	ctx context.Context,
	r *run,
	name string,
	doc []byte,
) (string, error) {
	path := filepath.Join(r.scratch, name)
	if err := os.WriteFile(path, doc, 0644); err != nil {
		return "", err
	}
	loc, err := r.store.Save(ctx, name, doc)
	if err != nil {
		slog.Warn("Cannot save rendered document", "name", name, "error", err)
		return path, nil
	}
	return loc, nil
}

func ignored(i int, msg string) push.RowResult {
	slog.Info("Row ignored", "row", i, "reason", msg)
	return push.RowResult{Row: i, Outcome: push.Ignored, Message: msg}
}

func failed(res push.RowResult, msg string, err error) push.RowResult {
	slog.Error(msg,
		"row", res.Row,
		"instance_id", res.InstanceID,
		"instance_uuid", res.InstanceUUID,
		"error", err,
	)
	res.Outcome = push.Ignored
	res.Message = fmt.Sprintf("%s: %v", msg, err)
	return res
}
