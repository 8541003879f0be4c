package iopush

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/enrich"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/form"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/iaso"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/xform"
	"github.com/gnames/gn"
)

// LatestVersion is the template key of datasets without a form_version
// column and of rows with an empty version.
const LatestVersion = "latest_version"

// versions maps version identifiers to compiled templates and row rules.
type versions struct {
	templates map[string]*xform.Template
	rules     map[string]*enrich.Rules
	// enriched is true when validity comes from summary columns computed
	// for the whole dataset.
	enriched bool
}

// buildVersions prepares templates of a dataset. Without form_version
// column the dataset is enriched once with the latest schema and the
// enriched copy is returned. Otherwise every distinct version gets its own
// schema, template and rules, rows without version use the latest one.
func (p *pusher) buildVersions(
	ctx context.Context,
	ds *dataset.Frame,
	meta iaso.FormMeta,
	latest form.Schema,
	formID int,
) (*versions, *dataset.Frame, error) {
	res := &versions{
		templates: make(map[string]*xform.Template),
		rules:     make(map[string]*enrich.Rules),
	}

	if !ds.Has(colFormVersion) {
		enriched, warns := enrich.EnrichAndValidate(ds, latest)
		for _, w := range warns {
			slog.Warn("Enrichment", "warning", w)
		}
		res.enriched = true
		err := res.add(LatestVersion, latest, enriched.Columns(),
			meta.FormID, meta.LatestVersionID)
		if err != nil {
			return nil, nil, err
		}
		return res, enriched, nil
	}

	keys, byKey, err := versionSchemas(ctx, p.schemas, ds, latest, formID)
	if err != nil {
		return nil, nil, err
	}
	for _, key := range keys {
		version := key
		if key == LatestVersion {
			version = meta.LatestVersionID
		}
		err = res.add(key, byKey[key], ds.Columns(), meta.FormID, version)
		if err != nil {
			return nil, nil, err
		}
	}
	return res, ds, nil
}

// versionSchemas loads the schema of every version found in the
// form_version column. Keys come in order of first appearance,
// LatestVersion is always the first one.
func versionSchemas(
	ctx context.Context,
	schemas form.Provider,
	ds *dataset.Frame,
	latest form.Schema,
	formID int,
) ([]string, map[string]form.Schema, error) {
	keys := []string{LatestVersion}
	res := map[string]form.Schema{LatestVersion: latest}
	vals, err := ds.Unique(colFormVersion)
	if err != nil {
		return nil, nil, err
	}
	for _, v := range vals {
		key := versionKey(v)
		if _, ok := res[key]; ok {
			continue
		}
		schema, err := form.Load(ctx, schemas, formID, key)
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		res[key] = schema
	}
	return keys, res, nil
}

func (v *versions) add(
	key string,
	schema form.Schema,
	columns []string,
	formID, version string,
) error {
	v.rules[key] = enrich.Compile(schema)
	tpl, err := xform.BuildTemplate(schema.Questions, columns, formID, version)
	if errors.Is(err, xform.ErrNoQuestions) {
		gn.Warn("Form version <em>%s</em> has no questions, its rows "+
			"are ignored", version)
		return nil
	}
	if err != nil {
		return err
	}
	v.templates[key] = tpl
	slog.Info("Template created",
		"version_key", key,
		"version", version,
		"fields", len(tpl.Fields),
	)
	return nil
}

// template returns the template of a record, nil when there is none.
func (v *versions) template(rec dataset.Record) *xform.Template {
	return v.templates[v.key(rec)]
}

// valid reports whether a record passed constraint and choice checks.
func (v *versions) valid(rec dataset.Record) bool {
	if v.enriched {
		return enrich.SummaryValid(rec)
	}
	r, ok := v.rules[v.key(rec)]
	if !ok {
		return false
	}
	return r.Valid(rec)
}

func (v *versions) key(rec dataset.Record) string {
	if v.enriched {
		return LatestVersion
	}
	return versionKey(rec[colFormVersion])
}

func versionKey(v any) string {
	s := dataset.Format(v)
	if s == "" {
		return LatestVersion
	}
	return s
}
