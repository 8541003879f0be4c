// Package calc parses form calculation expressions into an expression tree
// and evaluates them against one record.
//
// Supported syntax: field references ${name}, numbers, quoted strings,
// parentheses, unary minus, the operators + - * div mod, comparisons
// = != < <= > >=, the logical operators and/or, and the functions
// round, abs, coalesce, if, int and number.
package calc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSyntax is returned for expressions that cannot be parsed.
	ErrSyntax = errors.New("syntax error")
	// ErrUnknownField is returned when a referenced field is absent from a
	// record.
	ErrUnknownField = errors.New("unknown field")
	// ErrNotNumber is returned when arithmetic gets a non-numeric value.
	ErrNotNumber = errors.New("not a number")
)

// Node is an element of an expression tree.
type Node interface {
	fmt.Stringer
	eval(rec map[string]any) (any, error)
}

// Field references a record value.
type Field struct {
	Name string
}

// Literal is a number or a string constant.
type Literal struct {
	Value any
}

// Unary is a negation.
type Unary struct {
	Op string
	X  Node
}

// Binary is an arithmetic, comparison or logical operation.
type Binary struct {
	Op          string
	Left, Right Node
}

// Call is a named function application.
type Call struct {
	Name string
	Args []Node
}

func (f Field) String() string { return "${" + f.Name + "}" }

func (l Literal) String() string {
	if s, ok := l.Value.(string); ok {
		return "'" + s + "'"
	}
	return fmt.Sprint(l.Value)
}

func (u Unary) String() string { return u.Op + u.X.String() }

func (b Binary) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, v := range c.Args {
		args[i] = v.String()
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

// Expr is a compiled calculation.
type Expr struct {
	src  string
	root Node
}

// Parse compiles a calculation expression.
func Parse(src string) (*Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxError(t.pos, fmt.Sprintf("unexpected %q", t.text))
	}
	return &Expr{src: src, root: root}, nil
}

// String returns the source text.
func (e *Expr) String() string {
	return e.src
}

// Eval evaluates the expression against a record. Nil operands propagate
// to a nil result, division by zero gives nil.
func (e *Expr) Eval(rec map[string]any) (any, error) {
	return e.root.eval(rec)
}
