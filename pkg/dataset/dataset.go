// Package dataset provides a small typed in-memory table used to hold
// submissions. Columns keep their insertion order, every column has one
// type, and a missing value is represented by nil.
package dataset

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNoColumn is returned when a column does not exist in a Frame.
var ErrNoColumn = errors.New("column not found")

// Type is the type of a column.
type Type string

const (
	String  Type = "String"
	Int64   Type = "Int64"
	Float64 Type = "Float64"
	Boolean Type = "Boolean"
)

// Types lists all supported column types.
var Types = []Type{String, Int64, Float64, Boolean}

// ParseType converts a type name into a Type.
func ParseType(s string) (Type, bool) {
	for _, v := range Types {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// Record is one row of a Frame. Values are nil, string, int64, float64 or
// bool.
type Record map[string]any

// Frame is an ordered, typed table of records.
type Frame struct {
	columns []string
	types   map[string]Type
	rows    []Record
}

// New creates a Frame from raw text cells. Column types are inferred from
// non-empty cells, empty cells become nil. Rows shorter than the header are
// padded with nil.
func New(columns []string, cells [][]string) *Frame {
	res := &Frame{
		columns: slices.Clone(columns),
		types:   make(map[string]Type, len(columns)),
		rows:    make([]Record, len(cells)),
	}
	for i := range cells {
		res.rows[i] = make(Record, len(columns))
	}

	for j, col := range columns {
		vals := make([]string, len(cells))
		for i, row := range cells {
			if j < len(row) {
				vals[i] = row[j]
			}
		}
		t := Infer(vals)
		res.types[col] = t
		for i, v := range vals {
			if v == "" {
				res.rows[i][col] = nil
				continue
			}
			// inference guarantees success
			res.rows[i][col], _ = ParseValue(v, t)
		}
	}
	return res
}

// FromRecords creates a Frame from already typed records. Columns absent
// from types are String.
func FromRecords(
	columns []string,
	types map[string]Type,
	rows []Record,
) *Frame {
	res := &Frame{
		columns: slices.Clone(columns),
		types:   make(map[string]Type, len(columns)),
		rows:    make([]Record, len(rows)),
	}
	for _, col := range columns {
		t, ok := types[col]
		if !ok {
			t = String
		}
		res.types[col] = t
	}
	for i, row := range rows {
		rec := make(Record, len(columns))
		for _, col := range columns {
			rec[col] = row[col]
		}
		res.rows[i] = rec
	}
	return res
}

// Columns returns column names in order.
func (f *Frame) Columns() []string {
	return slices.Clone(f.columns)
}

// Has reports whether the column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.types[name]
	return ok
}

// Type returns the type of a column.
func (f *Frame) Type(name string) (Type, error) {
	t, ok := f.types[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoColumn, name)
	}
	return t, nil
}

// Schema returns a copy of column types.
func (f *Frame) Schema() map[string]Type {
	res := make(map[string]Type, len(f.types))
	for k, v := range f.types {
		res[k] = v
	}
	return res
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Row returns a copy of the i-th row.
func (f *Frame) Row(i int) Record {
	res := make(Record, len(f.columns))
	for _, col := range f.columns {
		res[col] = f.rows[i][col]
	}
	return res
}

// Rows returns copies of all rows.
func (f *Frame) Rows() []Record {
	res := make([]Record, len(f.rows))
	for i := range f.rows {
		res[i] = f.Row(i)
	}
	return res
}

// Column returns all values of a column.
func (f *Frame) Column(name string) ([]any, error) {
	if !f.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrNoColumn, name)
	}
	res := make([]any, len(f.rows))
	for i, row := range f.rows {
		res[i] = row[name]
	}
	return res, nil
}

// SetColumn adds a column to the end of the Frame or replaces an existing
// one in place. The number of values must match the number of rows.
func (f *Frame) SetColumn(name string, t Type, values []any) error {
	if len(values) != len(f.rows) {
		return fmt.Errorf(
			"column %s has %d values, frame has %d rows",
			name, len(values), len(f.rows),
		)
	}
	if !f.Has(name) {
		f.columns = append(f.columns, name)
	}
	f.types[name] = t
	for i, v := range values {
		f.rows[i][name] = v
	}
	return nil
}

// Drop removes columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) {
	for _, name := range names {
		if !f.Has(name) {
			continue
		}
		delete(f.types, name)
		f.columns = slices.DeleteFunc(f.columns, func(s string) bool {
			return s == name
		})
		for _, row := range f.rows {
			delete(row, name)
		}
	}
}

// Cast converts a column to another type. Values that cannot be converted
// become nil; their number is returned.
func (f *Frame) Cast(name string, t Type) (int, error) {
	if !f.Has(name) {
		return 0, fmt.Errorf("%w: %s", ErrNoColumn, name)
	}
	var failed int
	for _, row := range f.rows {
		v := row[name]
		if v == nil {
			continue
		}
		res, ok := Convert(v, t)
		if !ok {
			failed++
		}
		row[name] = res
	}
	f.types[name] = t
	return failed, nil
}

// Unique returns distinct non-nil values of a column in order of first
// appearance.
func (f *Frame) Unique(name string) ([]any, error) {
	vals, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	var res []any
	seen := make(map[any]struct{})
	for _, v := range vals {
		if v == nil {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	return res, nil
}

// Clone returns a deep copy of the Frame.
func (f *Frame) Clone() *Frame {
	return FromRecords(f.columns, f.types, f.rows)
}

// Filter returns a new Frame with the rows for which keep returns true,
// and the positions of these rows in f.
func (f *Frame) Filter(keep func(Record) bool) (*Frame, []int) {
	var rows []Record
	var pos []int
	for i := range f.rows {
		rec := f.Row(i)
		if keep(rec) {
			rows = append(rows, rec)
			pos = append(pos, i)
		}
	}
	return FromRecords(f.columns, f.types, rows), pos
}
