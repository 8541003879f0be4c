package calc

import (
	"fmt"
	"strconv"
)

var functions = map[string][2]int{
	// name: {min args, max args}, -1 is unbounded
	"round":    {1, 2},
	"abs":      {1, 1},
	"coalesce": {1, -1},
	"if":       {3, 3},
	"int":      {1, 1},
	"number":   {1, 1},
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, v := range ops {
		if t.text == v {
			return v, true
		}
	}
	return "", false
}

func (p *parser) parseOr() (Node, error) {
	return p.binary(p.parseAnd, "or")
}

func (p *parser) parseAnd() (Node, error) {
	return p.binary(p.parseCmp, "and")
}

func (p *parser) parseCmp() (Node, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	if op, ok := p.isOp("=", "!=", "<", "<=", ">", ">="); ok {
		p.next()
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		return Binary{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *parser) parseAdd() (Node, error) {
	return p.binary(p.parseMul, "+", "-")
}

func (p *parser) parseMul() (Node, error) {
	return p.binary(p.parseUnary, "*", "div", "mod")
}

func (p *parser) binary(
	operand func() (Node, error),
	ops ...string,
) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp(ops...)
		if !ok {
			return left, nil
		}
		p.next()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	if _, ok := p.isOp("-"); ok {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Op: "-", X: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, syntaxError(t.pos, "bad number "+t.text)
		}
		return Literal{Value: f}, nil
	case tokString:
		return Literal{Value: t.text}, nil
	case tokField:
		return Field{Name: t.text}, nil
	case tokLParen:
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if t := p.next(); t.kind != tokRParen {
			return nil, syntaxError(t.pos, "expected ')'")
		}
		return n, nil
	case tokIdent:
		return p.parseCall(t)
	case tokEOF:
		return nil, syntaxError(t.pos, "unexpected end of expression")
	}
	return nil, syntaxError(t.pos, fmt.Sprintf("unexpected %q", t.text))
}

func (p *parser) parseCall(name token) (Node, error) {
	limits, ok := functions[name.text]
	if !ok {
		return nil, syntaxError(name.pos, "unknown function "+name.text)
	}
	if t := p.next(); t.kind != tokLParen {
		return nil, syntaxError(t.pos, "expected '(' after "+name.text)
	}
	var args []Node
	if p.peek().kind == tokRParen {
		p.next()
	} else {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			t := p.next()
			if t.kind == tokRParen {
				break
			}
			if t.kind != tokComma {
				return nil, syntaxError(t.pos, "expected ',' or ')'")
			}
		}
	}
	if len(args) < limits[0] || (limits[1] >= 0 && len(args) > limits[1]) {
		return nil, syntaxError(name.pos,
			fmt.Sprintf("wrong number of arguments for %s: %d", name.text, len(args)))
	}
	return Call{Name: name.text, Args: args}, nil
}
