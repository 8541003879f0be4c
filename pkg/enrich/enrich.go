// Package enrich derives calculated columns and evaluates constraint and
// choice validity of submissions.
package enrich

import (
	"fmt"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/calc"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/form"
)

const (
	// ConstraintsSummary is true when all constrained fields of a row hold.
	ConstraintsSummary = "constraints_validation_summary"
	// ChoicesSummary is true when all select fields of a row hold a known
	// choice.
	ChoicesSummary = "choices_validation_summary"
	// ChoiceSuffix is appended to a field name to get its choice column.
	ChoiceSuffix = "_choices_valid"
)

// EnrichAndValidate returns a copy of the dataset with calculated columns
// and validity summary columns added. The returned warnings describe
// skipped checks and failed calculations, they are never fatal.
func EnrichAndValidate(
	ds *dataset.Frame,
	schema form.Schema,
) (*dataset.Frame, []string) {
	var warns []string
	res := ds.Clone()

	warns = append(warns, addCalculated(res, schema.Questions)...)
	warns = append(warns, addConstraints(res, schema.Questions)...)
	warns = append(warns, addChoices(res, schema)...)

	return res, warns
}

func addCalculated(ds *dataset.Frame, questions []form.Question) []string {
	var warns []string
	for _, q := range questions {
		if !q.IsCalculate() || q.Calculation == "" || ds.Has(q.Name) {
			continue
		}
		vals, err := calculate(ds, q.Calculation)
		if err != nil {
			warns = append(warns, fmt.Sprintf(
				"Failed to compute calculated column '%s': %s; filling with 0",
				q.Name, err,
			))
			vals = make([]any, ds.Len())
			for i := range vals {
				vals[i] = 0.0
			}
		}
		// lengths always match
		_ = ds.SetColumn(q.Name, dataset.Float64, vals)
	}
	return warns
}

func calculate(ds *dataset.Frame, src string) ([]any, error) {
	e, err := calc.Parse(src)
	if err != nil {
		return nil, err
	}
	res := make([]any, ds.Len())
	for i := range res {
		v, err := e.Eval(ds.Row(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		f, ok := dataset.Convert(v, dataset.Float64)
		if !ok {
			return nil, fmt.Errorf("row %d: %w: %v", i, calc.ErrNotNumber, v)
		}
		res[i] = f
	}
	return res, nil
}

func addConstraints(ds *dataset.Frame, questions []form.Question) []string {
	var warns []string
	rules := compileConstraints(questions)
	var checked bool
	summary := make([]any, ds.Len())
	for i := range summary {
		summary[i] = true
	}

	for _, q := range questions {
		r, ok := rules[q.Name]
		if !ok {
			continue
		}
		if !ds.Has(q.Name) {
			warns = append(warns, fmt.Sprintf(
				"Constraint for missing column '%s' skipped", q.Name,
			))
			continue
		}
		checked = true
		vals, _ := ds.Column(q.Name)
		for i, v := range vals {
			summary[i] = summary[i].(bool) && r.Check(v)
		}
	}

	if checked {
		_ = ds.SetColumn(ConstraintsSummary, dataset.Boolean, summary)
	}
	return warns
}

func addChoices(ds *dataset.Frame, schema form.Schema) []string {
	if !schema.HasChoiceLists {
		return []string{
			"Choices metadata missing expected column 'list name' or " +
				"'list_name'; skipping choices validation",
		}
	}

	allowed := compileChoices(schema)
	var checked bool
	summary := make([]any, ds.Len())
	for i := range summary {
		summary[i] = true
	}

	for _, q := range schema.Questions {
		if !q.IsSelect() || !ds.Has(q.Name) {
			continue
		}
		checked = true
		vals, _ := ds.Column(q.Name)
		col := make([]any, len(vals))
		for i, v := range vals {
			ok := isMember(allowed[q.Name], v)
			col[i] = ok
			summary[i] = summary[i].(bool) && ok
		}
		_ = ds.SetColumn(q.Name+ChoiceSuffix, dataset.Boolean, col)
	}

	if checked {
		_ = ds.SetColumn(ChoicesSummary, dataset.Boolean, summary)
	}
	return nil
}

// SummaryValid reports whether an enriched row passed validation. Rows
// without summary columns are valid.
func SummaryValid(rec dataset.Record) bool {
	for _, col := range []string{ConstraintsSummary, ChoicesSummary} {
		v, ok := rec[col]
		if !ok {
			continue
		}
		if b, _ := v.(bool); !b {
			return false
		}
	}
	return true
}
