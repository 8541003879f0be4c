// Package ioschema implements form.Provider on top of the remote platform.
// Definitions are XLSForm spreadsheets, the first sheet holds questions
// and the sheet "choices" holds choice lists.
package ioschema

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/form"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/iaso"
	"github.com/xuri/excelize/v2"
)

// ChoicesSheet is the name of the sheet with choice lists.
const ChoicesSheet = "choices"

type provider struct {
	forms iaso.Forms
	cache *Cache
}

// New creates a provider that reads definitions through forms and keeps
// them in cache. A nil cache creates a new one.
func New(forms iaso.Forms, cache *Cache) form.Provider {
	if cache == nil {
		cache = NewCache()
	}
	return &provider{forms: forms, cache: cache}
}

// Schema returns a sheet of the definition of a form version.
func (p *provider) Schema(
	ctx context.Context,
	formID int,
	version string,
	kind form.Kind,
) (form.Sheet, error) {
	key := form.NewSchemaKey(formID, version, kind)
	if res, ok := p.cache.Sheet(key); ok {
		return res, nil
	}

	data, err := p.definition(ctx, formID, key.Version)
	if err != nil {
		return form.Sheet{}, err
	}

	var res form.Sheet
	if data != nil {
		res, err = parseSheet(data, kind)
		if err != nil {
			return res, SchemaParseError(formID, key.Version, err)
		}
	}
	p.cache.SetSheet(key, res)
	return res, nil
}

func (p *provider) definition(
	ctx context.Context,
	formID int,
	version string,
) ([]byte, error) {
	if res, ok := p.cache.Definition(formID, version); ok {
		return res, nil
	}

	v := version
	if v == form.Latest {
		v = ""
	}
	u, err := p.forms.DefinitionURL(ctx, formID, v)
	if err != nil {
		return nil, SchemaFetchError(formID, version, err)
	}
	if u == "" {
		slog.Warn("Form has no definition file",
			"form_id", formID, "version", version)
		p.cache.SetDefinition(formID, version, nil)
		return nil, nil
	}

	slog.Info("Downloading form definition",
		"form_id", formID, "version", version, "url", u)
	res, err := p.forms.Download(ctx, u)
	if err != nil {
		return nil, SchemaFetchError(formID, version, err)
	}
	if res == nil {
		res = []byte{}
	}
	p.cache.SetDefinition(formID, version, res)
	return res, nil
}

func parseSheet(data []byte, kind form.Kind) (form.Sheet, error) {
	var res form.Sheet
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return res, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var name string
	switch kind {
	case form.Questions:
		if len(sheets) > 0 {
			name = sheets[0]
		}
	case form.Choices:
		if slices.Contains(sheets, ChoicesSheet) {
			name = ChoicesSheet
		}
	}
	if name == "" {
		return res, nil
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return res, err
	}
	return toSheet(rows), nil
}

// toSheet trims every cell and drops rows without any value. Short rows
// are padded to the header width.
func toSheet(rows [][]string) form.Sheet {
	var res form.Sheet
	if len(rows) == 0 {
		return res
	}
	header := trimAll(rows[0])
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}
	res.Header = header

	for _, row := range rows[1:] {
		row = trimAll(row)
		if isEmpty(row) {
			continue
		}
		cells := make([]string, len(header))
		copy(cells, row)
		res.Rows = append(res.Rows, cells)
	}
	return res
}

func trimAll(row []string) []string {
	res := make([]string, len(row))
	for i, v := range row {
		res[i] = strings.TrimSpace(v)
	}
	return res
}

func isEmpty(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
