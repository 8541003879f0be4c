package dataset_test

import (
	"math"
	"testing"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		msg  string
		vals []string
		res  dataset.Type
	}{
		{"ints", []string{"1", "", "-3"}, dataset.Int64},
		{"floats", []string{"1", "2.5"}, dataset.Float64},
		{"bools", []string{"true", "False"}, dataset.Boolean},
		{"strings", []string{"1", "abc"}, dataset.String},
		{"empty", []string{"", ""}, dataset.String},
	}

	for _, v := range tests {
		assert.Equal(t, v.res, dataset.Infer(v.vals), v.msg)
	}
}

func TestNew(t *testing.T) {
	assert := assert.New(t)
	f := dataset.New(
		[]string{"org_unit_id", "name", "age"},
		[][]string{
			{"10", "Ann", "3.5"},
			{"11", "", ""},
			{"12"},
		},
	)
	assert.Equal(3, f.Len())
	assert.Equal([]string{"org_unit_id", "name", "age"}, f.Columns())

	tp, err := f.Type("org_unit_id")
	require.NoError(t, err)
	assert.Equal(dataset.Int64, tp)
	tp, _ = f.Type("age")
	assert.Equal(dataset.Float64, tp)

	row := f.Row(0)
	assert.Equal(int64(10), row["org_unit_id"])
	assert.Equal("Ann", row["name"])
	assert.Equal(3.5, row["age"])

	row = f.Row(2)
	assert.Nil(row["name"])
	assert.Nil(row["age"])

	_, err = f.Type("nope")
	assert.ErrorIs(err, dataset.ErrNoColumn)
}

func TestSetColumnDrop(t *testing.T) {
	assert := assert.New(t)
	f := dataset.New([]string{"a"}, [][]string{{"1"}, {"2"}})

	err := f.SetColumn("b", dataset.Boolean, []any{true, false})
	require.NoError(t, err)
	assert.Equal([]string{"a", "b"}, f.Columns())
	assert.Equal(false, f.Row(1)["b"])

	err = f.SetColumn("c", dataset.Boolean, []any{true})
	assert.Error(err)

	f.Drop("a", "unknown")
	assert.Equal([]string{"b"}, f.Columns())
	assert.False(f.Has("a"))
	_, ok := f.Row(0)["a"]
	assert.False(ok)
}

func TestCast(t *testing.T) {
	assert := assert.New(t)
	f := dataset.New(
		[]string{"id", "org_unit_id"},
		[][]string{{"101", "5"}, {"102", "x"}, {"103", "7.0"}},
	)

	failed, err := f.Cast("id", dataset.String)
	require.NoError(t, err)
	assert.Equal(0, failed)
	assert.Equal("101", f.Row(0)["id"])

	failed, err = f.Cast("org_unit_id", dataset.Int64)
	require.NoError(t, err)
	assert.Equal(1, failed)
	assert.Equal(int64(5), f.Row(0)["org_unit_id"])
	assert.Nil(f.Row(1)["org_unit_id"])
	assert.Equal(int64(7), f.Row(2)["org_unit_id"])

	_, err = f.Cast("nope", dataset.String)
	assert.ErrorIs(err, dataset.ErrNoColumn)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		msg string
		val any
		tp  dataset.Type
		res any
		ok  bool
	}{
		{"float to int", 3.0, dataset.Int64, int64(3), true},
		{"fraction to int", 3.5, dataset.Int64, nil, false},
		{"int to float", int64(2), dataset.Float64, 2.0, true},
		{"bool to int", true, dataset.Int64, int64(1), true},
		{"float to string", 2.5, dataset.String, "2.5", true},
		{"text to bool", "TRUE", dataset.Boolean, true, true},
		{"bad text to float", "abc", dataset.Float64, nil, false},
		{"nil", nil, dataset.Int64, nil, true},
		{"exponent text to int", "2e1", dataset.Int64, int64(20), true},
		{"infinite text to int", "Inf", dataset.Int64, nil, false},
		{"huge text to int", "1e30", dataset.Int64, nil, false},
		{"overflow text to int", "9999999999999999999", dataset.Int64, nil, false},
		{"two to 63 to int", math.Pow(2, 63), dataset.Int64, nil, false},
		{"min int float", -math.Pow(2, 63), dataset.Int64, int64(math.MinInt64), true},
		{"infinity to int", math.Inf(-1), dataset.Int64, nil, false},
	}

	for _, v := range tests {
		res, ok := dataset.Convert(v.val, v.tp)
		assert.Equal(t, v.ok, ok, v.msg)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestUniqueFilter(t *testing.T) {
	assert := assert.New(t)
	f := dataset.New(
		[]string{"form_version"},
		[][]string{{"v2"}, {""}, {"v1"}, {"v2"}},
	)
	vals, err := f.Unique("form_version")
	require.NoError(t, err)
	assert.Equal([]any{"v2", "v1"}, vals)

	v2, pos := f.Filter(func(r dataset.Record) bool {
		return r["form_version"] == "v2"
	})
	assert.Equal(2, v2.Len())
	assert.Equal([]int{0, 3}, pos)
	assert.Equal([]string{"form_version"}, v2.Columns())
	assert.Equal(4, f.Len())
}
