// Package constraint interprets the subset of form constraint expressions
// produced by the form-authoring tool.
//
//	regex(., 'pattern')  value matches pattern from its start
//	.<=N                 numeric value is at most N
//	.>=N                 numeric value is at least N
//
// Any other expression is Unsupported and always holds. A recognised form
// whose pattern or bound cannot be compiled is Malformed and never holds.
package constraint

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
)

// Kind is the variant of a parsed constraint.
type Kind int

const (
	// Unsupported constraints are not interpreted and always hold.
	Unsupported Kind = iota
	Regex
	LessOrEqual
	GreaterOrEqual
	// Malformed constraints look supported but cannot be compiled, they
	// never hold.
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Regex:
		return "regex"
	case LessOrEqual:
		return "less_or_equal"
	case GreaterOrEqual:
		return "greater_or_equal"
	case Malformed:
		return "malformed"
	}
	return "unsupported"
}

// Rule is a constraint parsed once and checked for many values.
type Rule struct {
	Kind      Kind
	Source    string
	Pattern   *regexp.Regexp
	Threshold float64
}

var regexPattern = regexp.MustCompile(`regex\(.,\s*'(.+)'\)`)

// Parse converts constraint text into a Rule.
func Parse(src string) Rule {
	res := Rule{Kind: Unsupported, Source: src}
	s := strings.TrimSpace(src)

	switch {
	case strings.HasPrefix(s, "regex"):
		m := regexPattern.FindStringSubmatch(s)
		if m == nil {
			return res
		}
		re, err := regexp.Compile(`^(?:` + m[1] + `)`)
		if err != nil {
			res.Kind = Malformed
			return res
		}
		res.Kind = Regex
		res.Pattern = re
	case strings.HasPrefix(s, ".<="), strings.HasPrefix(s, ".>="):
		f, err := strconv.ParseFloat(strings.TrimSpace(s[3:]), 64)
		if err != nil {
			res.Kind = Malformed
			return res
		}
		res.Kind = GreaterOrEqual
		if s[1] == '<' {
			res.Kind = LessOrEqual
		}
		res.Threshold = f
	}
	return res
}

// Check reports whether a value satisfies the rule. A nil value never
// satisfies it.
func (r Rule) Check(v any) bool {
	if v == nil {
		return false
	}
	switch r.Kind {
	case Regex:
		return r.Pattern.MatchString(dataset.Format(v))
	case LessOrEqual, GreaterOrEqual:
		if _, ok := v.(bool); ok {
			return false
		}
		f, ok := dataset.ToFloat(v)
		if !ok {
			return false
		}
		if r.Kind == LessOrEqual {
			return f <= r.Threshold
		}
		return f >= r.Threshold
	case Malformed:
		return false
	}
	return true
}

// Set holds parsed rules by field name.
type Set map[string]Rule

// Check reports whether a field value satisfies its rule. Fields without
// a rule always pass.
func (s Set) Check(field string, v any) bool {
	r, ok := s[field]
	if !ok {
		return true
	}
	return r.Check(v)
}
