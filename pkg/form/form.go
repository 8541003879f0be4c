// Package form describes form definitions: questions, choices and the
// keys under which schema snapshots are cached.
package form

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Kind selects a sheet of a form definition.
type Kind string

const (
	Questions Kind = "questions"
	Choices   Kind = "choices"
)

// Latest addresses the current version of a form.
const Latest = "latest"

// SchemaKey identifies a cached sheet.
type SchemaKey struct {
	FormID  int
	Version string
	Kind    Kind
}

// NewSchemaKey creates a key, an empty version means Latest.
func NewSchemaKey(formID int, version string, kind Kind) SchemaKey {
	if version == "" {
		version = Latest
	}
	return SchemaKey{FormID: formID, Version: version, Kind: kind}
}

func (k SchemaKey) String() string {
	return fmt.Sprintf("%d/%s/%s", k.FormID, k.Version, k.Kind)
}

// Sheet is a generic table parsed from a form definition. Every cell is
// text, empty text means a missing value.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of rows.
func (s Sheet) Len() int {
	return len(s.Rows)
}

// Index returns the position of a column or -1.
func (s Sheet) Index(name string) int {
	return slices.Index(s.Header, name)
}

// HasColumn reports whether the sheet has a column.
func (s Sheet) HasColumn(name string) bool {
	return s.Index(name) >= 0
}

// Value returns the cell of the row i in the column name.
func (s Sheet) Value(i int, name string) string {
	j := s.Index(name)
	if j < 0 || j >= len(s.Rows[i]) {
		return ""
	}
	return s.Rows[i][j]
}

// Question is the definition of one form field.
type Question struct {
	Name        string
	Type        string
	Label       string
	Required    bool
	Constraint  string
	Calculation string
	ListName    string
}

// IsSelect reports whether the question takes its values from a choice
// list.
func (q Question) IsSelect() bool {
	return strings.Contains(q.Type, "select")
}

// IsBeginGroup reports whether the question opens a group.
func (q Question) IsBeginGroup() bool {
	return q.Type == "begin group" || q.Type == "begin_group"
}

// IsCalculate reports whether the question holds a calculation.
func (q Question) IsCalculate() bool {
	return q.Type == "calculate"
}

// Choice is one allowed option of a select question.
type Choice struct {
	ListName string
	Value    string
	Label    string
}

// Schema is a snapshot of a form at one version.
type Schema struct {
	Questions []Question
	Choices   []Choice
	// HasChoiceLists is false when the choices sheet has no list column.
	HasChoiceLists bool
}

// Provider returns parsed sheets of form definitions.
type Provider interface {
	// Schema returns a sheet of the form at the given version, empty
	// version means Latest. A form without definition gives an empty
	// sheet.
	Schema(ctx context.Context, formID int, version string, kind Kind) (Sheet, error)
}

// Load fetches both sheets of a form version and parses them.
func Load(
	ctx context.Context,
	p Provider,
	formID int,
	version string,
) (Schema, error) {
	var res Schema
	qs, err := p.Schema(ctx, formID, version, Questions)
	if err != nil {
		return res, err
	}
	cs, err := p.Schema(ctx, formID, version, Choices)
	if err != nil {
		return res, err
	}
	res.Questions = ParseQuestions(qs)
	res.Choices, res.HasChoiceLists = ParseChoices(cs)
	return res, nil
}
