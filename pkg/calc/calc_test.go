package calc_test

import (
	"testing"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/calc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	tests := []struct {
		msg  string
		expr string
		rec  map[string]any
		res  any
	}{
		{"addition", "${a} + ${b}", map[string]any{"a": int64(2), "b": int64(3)}, 5.0},
		{"round zero digits", "round(${x},0)", map[string]any{"x": 2.6}, 3.0},
		{"round one digit", "round(${x}, 1)", map[string]any{"x": 2.64}, 2.6},
		{"round no digits", "round(${x})", map[string]any{"x": 2.4}, 2.0},
		{"div", "${a} div ${b}", map[string]any{"a": 9.0, "b": int64(2)}, 4.5},
		{"div by zero", "${a} div ${b}", map[string]any{"a": 9.0, "b": int64(0)}, nil},
		{"precedence", "1 + 2 * 3", nil, 7.0},
		{"parens", "(1 + 2) * 3", nil, 9.0},
		{"unary minus", "abs(-${a})", map[string]any{"a": 4.0}, 4.0},
		{"coalesce", "coalesce(${a}, ${b}, 0)", map[string]any{"a": nil, "b": int64(7)}, int64(7)},
		{"coalesce empty", "coalesce(${a}, 0)", map[string]any{"a": ""}, 0.0},
		{"null propagates", "${a} + 1", map[string]any{"a": nil}, nil},
		{"numeric text", "${a} * 2", map[string]any{"a": "1.5"}, 3.0},
		{"mod", "${a} mod 3", map[string]any{"a": int64(7)}, 1.0},
		{"if", "if(${a} > 1, 'big', 'small')", map[string]any{"a": int64(2)}, "big"},
		{"and", "${a} >= 1 and ${a} <= 3", map[string]any{"a": int64(2)}, true},
		{"string equality", "${s} = 'yes'", map[string]any{"s": "yes"}, true},
		{"int", "int(${a})", map[string]any{"a": 3.9}, 3.0},
	}

	for _, v := range tests {
		e, err := calc.Parse(v.expr)
		require.NoError(t, err, v.msg)
		res, err := e.Eval(v.rec)
		require.NoError(t, err, v.msg)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestEvalErrors(t *testing.T) {
	e, err := calc.Parse("${a} + ${missing}")
	require.NoError(t, err)
	_, err = e.Eval(map[string]any{"a": 1.0})
	assert.ErrorIs(t, err, calc.ErrUnknownField)

	e, err = calc.Parse("${a} + 1")
	require.NoError(t, err)
	_, err = e.Eval(map[string]any{"a": "abc"})
	assert.ErrorIs(t, err, calc.ErrNotNumber)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		msg  string
		expr string
	}{
		{"unclosed field", "${a + 1"},
		{"unknown function", "sqrt(${a})"},
		{"dangling operator", "${a} +"},
		{"unbalanced paren", "(${a} + 1"},
		{"bad character", "${a} ^ 2"},
		{"too many args", "abs(1, 2)"},
		{"trailing tokens", "1 2"},
	}

	for _, v := range tests {
		_, err := calc.Parse(v.expr)
		assert.ErrorIs(t, err, calc.ErrSyntax, v.msg)
	}
}

func TestString(t *testing.T) {
	src := "coalesce(${b}, ${a}) + ${b} div ${c}"
	e, err := calc.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, src, e.String())
}
