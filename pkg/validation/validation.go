// Package validation checks that a dataset satisfies the column contract
// of an import strategy and of the form questions.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/form"
)

// TypeMismatch describes a column whose type differs from the expected
// one.
type TypeMismatch struct {
	Expected string `yaml:"expected"`
	Actual   string `yaml:"actual"`
}

// Outcome is the result of a structural validation.
type Outcome struct {
	IsValid                bool                    `yaml:"is_valid"`
	Errors                 []string                `yaml:"errors"`
	Warnings               []string                `yaml:"warnings"`
	MissingColumns         []string                `yaml:"missing_columns"`
	InvalidTypes           map[string]TypeMismatch `yaml:"invalid_types"`
	RequiredColumnsPresent []string                `yaml:"required_columns_present"`
}

// ExpectedType returns the single target type of a mismatch, the first one
// when several are accepted.
func (m TypeMismatch) ExpectedType() dataset.Type {
	s, _, _ := strings.Cut(m.Expected, " or ")
	t, _ := dataset.ParseType(s)
	return t
}

// ValidateStructure checks a dataset against a strategy and questions.
// It has no side effects. An unknown strategy gives an invalid outcome.
func ValidateStructure(
	ds *dataset.Frame,
	questions []form.Question,
	strategy string,
) Outcome {
	res := Outcome{
		IsValid:      true,
		InvalidTypes: make(map[string]TypeMismatch),
	}

	req, ok := StrategyRequirements[strategy]
	if !ok {
		res.IsValid = false
		res.Errors = append(res.Errors,
			fmt.Sprintf("Unsupported strategy: %s", strategy))
		return res
	}

	required := slices.Clone(req.Required)
	for _, q := range questions {
		if q.Required && !slices.Contains(required, q.Name) {
			required = append(required, q.Name)
		}
	}

	for _, col := range required {
		if !ds.Has(col) {
			res.MissingColumns = append(res.MissingColumns, col)
		}
	}
	if len(res.MissingColumns) > 0 {
		res.IsValid = false
		res.Errors = append(res.Errors, fmt.Sprintf(
			"Strategy %s: required columns missing: %s",
			strategy, strings.Join(res.MissingColumns, ", "),
		))
	}

	types := expectedTypes(req, questions, strategy)
	for _, col := range ds.Columns() {
		exp, ok := types[col]
		if !ok {
			continue
		}
		act, _ := ds.Type(col)
		if slices.Contains(exp, act) {
			continue
		}
		m := TypeMismatch{Expected: joinTypes(exp), Actual: string(act)}
		res.InvalidTypes[col] = m
		res.IsValid = false
		res.Errors = append(res.Errors, fmt.Sprintf(
			"Invalid type for column '%s': expected %s, got %s",
			col, m.Expected, m.Actual,
		))
	}

	for _, col := range req.Required {
		if ds.Has(col) {
			res.RequiredColumnsPresent = append(res.RequiredColumnsPresent, col)
		}
	}

	known := make(map[string]struct{})
	for _, v := range slices.Concat(req.Required, req.Optional) {
		known[v] = struct{}{}
	}
	for _, q := range questions {
		known[q.Name] = struct{}{}
	}
	for _, col := range ds.Columns() {
		if _, ok := known[col]; !ok {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("Unexpected column found: '%s'", col))
		}
	}

	return res
}

// expectedTypes merges strategy types with types implied by questions.
// Question types win. DELETE checks only its own columns.
func expectedTypes(
	req Requirements,
	questions []form.Question,
	strategy string,
) map[string][]dataset.Type {
	res := make(map[string][]dataset.Type)
	for k, v := range req.Types {
		res[k] = v
	}
	if strategy == "DELETE" {
		return res
	}
	for _, q := range questions {
		if t, ok := questionTypes[q.Type]; ok {
			res[q.Name] = []dataset.Type{t}
		}
	}
	return res
}

func joinTypes(ts []dataset.Type) string {
	ss := make([]string, len(ts))
	for i, v := range ts {
		ss[i] = string(v)
	}
	return strings.Join(ss, " or ")
}
