package enrich

import (
	"fmt"
	"maps"
	"slices"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/form"
)

// EnrichByVersion enriches a dataset whose rows belong to different form
// versions. Rows are grouped by versionOf, and every group is enriched
// with its own schema by EnrichAndValidate. A column derived for one group
// is empty in the others, summary columns are true for groups without
// checks. Rows of versions absent from schemas keep empty summaries and
// fail SummaryValid.
func EnrichByVersion(
	ds *dataset.Frame,
	schemas map[string]form.Schema,
	versionOf func(dataset.Record) string,
) (*dataset.Frame, []string) {
	var warns []string
	res := ds.Clone()
	n := ds.Len()
	known := make([]bool, n)
	derived := make(map[string][]any)
	types := make(map[string]dataset.Type)
	var order []string

	for _, key := range slices.Sorted(maps.Keys(schemas)) {
		part, pos := ds.Filter(func(rec dataset.Record) bool {
			return versionOf(rec) == key
		})
		if part.Len() == 0 {
			continue
		}
		enriched, ws := EnrichAndValidate(part, schemas[key])
		for _, w := range ws {
			warns = append(warns, fmt.Sprintf("version %s: %s", key, w))
		}
		for _, i := range pos {
			known[i] = true
		}

		for _, col := range enriched.Columns() {
			if ds.Has(col) {
				continue
			}
			if _, ok := derived[col]; !ok {
				derived[col] = make([]any, n)
				types[col], _ = enriched.Type(col)
				order = append(order, col)
			}
			vals, _ := enriched.Column(col)
			for j, v := range vals {
				derived[col][pos[j]] = v
			}
		}
	}

	var unknown int
	for _, ok := range known {
		if !ok {
			unknown++
		}
	}
	if unknown > 0 {
		warns = append(warns, fmt.Sprintf(
			"%d rows belong to versions without schema; they are invalid",
			unknown,
		))
	}

	for _, col := range order {
		vals := derived[col]
		if col == ConstraintsSummary || col == ChoicesSummary {
			for i := range vals {
				if vals[i] == nil && known[i] {
					vals[i] = true
				}
			}
		}
		// lengths always match
		_ = res.SetColumn(col, types[col], vals)
	}
	if unknown > 0 && !res.Has(ConstraintsSummary) {
		vals := make([]any, n)
		for i := range vals {
			vals[i] = known[i]
		}
		_ = res.SetColumn(ConstraintsSummary, dataset.Boolean, vals)
	}
	return res, warns
}
