package calc

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokField
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var keywords = map[string]struct{}{
	"div": {}, "mod": {}, "and": {}, "or": {},
}

func tokenize(src string) ([]token, error) {
	var res []token
	rs := []rune(src)
	i := 0
	for i < len(rs) {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '$':
			if i+1 >= len(rs) || rs[i+1] != '{' {
				return nil, syntaxError(i, "expected '{' after '$'")
			}
			end := indexRune(rs, '}', i+2)
			if end < 0 {
				return nil, syntaxError(i, "unclosed field reference")
			}
			name := strings.TrimSpace(string(rs[i+2 : end]))
			if name == "" {
				return nil, syntaxError(i, "empty field reference")
			}
			res = append(res, token{kind: tokField, text: name, pos: i})
			i = end + 1
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			start := i
			var dot bool
			for i < len(rs) && (unicode.IsDigit(rs[i]) || (rs[i] == '.' && !dot)) {
				if rs[i] == '.' {
					dot = true
				}
				i++
			}
			res = append(res, token{kind: tokNumber, text: string(rs[start:i]), pos: start})
		case r == '\'' || r == '"':
			end := indexRune(rs, r, i+1)
			if end < 0 {
				return nil, syntaxError(i, "unclosed string literal")
			}
			res = append(res, token{kind: tokString, text: string(rs[i+1 : end]), pos: i})
			i = end + 1
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) ||
				rs[i] == '_' || rs[i] == ':') {
				i++
			}
			word := string(rs[start:i])
			kind := tokIdent
			if _, ok := keywords[word]; ok {
				kind = tokOp
			}
			res = append(res, token{kind: kind, text: word, pos: start})
		case r == '(':
			res = append(res, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			res = append(res, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			res = append(res, token{kind: tokComma, text: ",", pos: i})
			i++
		case r == '!' || r == '<' || r == '>':
			op := string(r)
			if i+1 < len(rs) && rs[i+1] == '=' {
				op += "="
				i++
			} else if r == '!' {
				return nil, syntaxError(i, "expected '=' after '!'")
			}
			res = append(res, token{kind: tokOp, text: op, pos: i})
			i++
		case strings.ContainsRune("+-*=", r):
			res = append(res, token{kind: tokOp, text: string(r), pos: i})
			i++
		default:
			return nil, syntaxError(i, fmt.Sprintf("unexpected character %q", r))
		}
	}
	res = append(res, token{kind: tokEOF, pos: len(rs)})
	return res, nil
}

func indexRune(rs []rune, r rune, from int) int {
	for i := from; i < len(rs); i++ {
		if rs[i] == r {
			return i
		}
	}
	return -1
}

func syntaxError(pos int, msg string) error {
	return fmt.Errorf("%w at %d: %s", ErrSyntax, pos, msg)
}
