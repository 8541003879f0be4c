package calc

import (
	"fmt"
	"math"
	"strings"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
)

func (f Field) eval(rec map[string]any) (any, error) {
	v, ok := rec[f.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, f.Name)
	}
	return v, nil
}

func (l Literal) eval(map[string]any) (any, error) {
	return l.Value, nil
}

func (u Unary) eval(rec map[string]any) (any, error) {
	x, err := number(u.X, rec)
	if err != nil || x == nil {
		return nil, err
	}
	return -*x, nil
}

func (b Binary) eval(rec map[string]any) (any, error) {
	switch b.Op {
	case "and", "or":
		return b.logical(rec)
	case "=", "!=", "<", "<=", ">", ">=":
		return b.compare(rec)
	}

	l, err := number(b.Left, rec)
	if err != nil {
		return nil, err
	}
	r, err := number(b.Right, rec)
	if err != nil {
		return nil, err
	}
	if l == nil || r == nil {
		return nil, nil
	}
	x, y := *l, *r
	switch b.Op {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "div":
		if y == 0 {
			return nil, nil
		}
		return x / y, nil
	case "mod":
		if y == 0 {
			return nil, nil
		}
		return math.Mod(x, y), nil
	}
	return nil, fmt.Errorf("%w: operator %s", ErrSyntax, b.Op)
}

func (b Binary) logical(rec map[string]any) (any, error) {
	l, err := b.Left.eval(rec)
	if err != nil {
		return nil, err
	}
	r, err := b.Right.eval(rec)
	if err != nil {
		return nil, err
	}
	if b.Op == "and" {
		return truthy(l) && truthy(r), nil
	}
	return truthy(l) || truthy(r), nil
}

func (b Binary) compare(rec map[string]any) (any, error) {
	l, err := b.Left.eval(rec)
	if err != nil {
		return nil, err
	}
	r, err := b.Right.eval(rec)
	if err != nil {
		return nil, err
	}
	if l == nil || r == nil {
		return nil, nil
	}

	var c int
	x, okx := dataset.ToFloat(l)
	y, oky := dataset.ToFloat(r)
	if okx && oky {
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	} else {
		c = strings.Compare(dataset.Format(l), dataset.Format(r))
	}

	switch b.Op {
	case "=":
		return c == 0, nil
	case "!=":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	}
	return c >= 0, nil
}

func (c Call) eval(rec map[string]any) (any, error) {
	switch c.Name {
	case "coalesce":
		for _, a := range c.Args {
			v, err := a.eval(rec)
			if err != nil {
				return nil, err
			}
			if v != nil && v != "" {
				return v, nil
			}
		}
		return nil, nil
	case "if":
		cond, err := c.Args[0].eval(rec)
		if err != nil {
			return nil, err
		}
		if truthy(cond) {
			return c.Args[1].eval(rec)
		}
		return c.Args[2].eval(rec)
	}

	x, err := number(c.Args[0], rec)
	if err != nil || x == nil {
		return nil, err
	}
	switch c.Name {
	case "abs":
		return math.Abs(*x), nil
	case "int":
		return math.Trunc(*x), nil
	case "number":
		return *x, nil
	case "round":
		digits := 0.0
		if len(c.Args) == 2 {
			d, err := number(c.Args[1], rec)
			if err != nil || d == nil {
				return nil, err
			}
			digits = math.Trunc(*d)
		}
		p := math.Pow(10, digits)
		return math.Round(*x*p) / p, nil
	}
	return nil, fmt.Errorf("%w: function %s", ErrSyntax, c.Name)
}

// number evaluates a node and converts the result to float64. A nil
// result stays nil.
func number(n Node, rec map[string]any) (*float64, error) {
	v, err := n.eval(rec)
	if err != nil || v == nil {
		return nil, err
	}
	f, ok := dataset.ToFloat(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %v", ErrNotNumber, n, v)
	}
	return &f, nil
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	}
	f, ok := dataset.ToFloat(v)
	return ok && f != 0
}
