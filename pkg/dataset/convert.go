package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Infer returns the narrowest type that can hold every non-empty value.
// Int64 is preferred over Float64, Float64 over Boolean, and String is the
// fallback. A column without values is String.
func Infer(vals []string) Type {
	candidates := []Type{Int64, Float64, Boolean}
	var seen bool
	for _, v := range vals {
		if v == "" {
			continue
		}
		seen = true
		var keep []Type
		for _, t := range candidates {
			if _, ok := ParseValue(v, t); ok {
				keep = append(keep, t)
			}
		}
		candidates = keep
		if len(candidates) == 0 {
			return String
		}
	}
	if !seen {
		return String
	}
	return candidates[0]
}

// ParseValue converts text into a value of the given type.
func ParseValue(s string, t Type) (any, bool) {
	switch t {
	case String:
		return s, true
	case Int64:
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, false
		}
		return i, true
	case Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return f, true
	case Boolean:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return nil, false
}

// Convert changes the type of a single value. A failed conversion returns
// nil and false.
func Convert(v any, t Type) (any, bool) {
	if v == nil {
		return nil, true
	}
	if s, ok := v.(string); ok {
		res, ok := ParseValue(s, t)
		if !ok && t == Int64 {
			// "12.0" is a valid integer
			if f, fok := ParseValue(s, Float64); fok {
				return floatToInt(f.(float64))
			}
		}
		return res, ok
	}
	if t == String {
		return Format(v), true
	}

	switch val := v.(type) {
	case int64:
		switch t {
		case Int64:
			return val, true
		case Float64:
			return float64(val), true
		case Boolean:
			return val != 0, true
		}
	case float64:
		switch t {
		case Int64:
			return floatToInt(val)
		case Float64:
			return val, true
		case Boolean:
			return val != 0, true
		}
	case bool:
		n := int64(0)
		if val {
			n = 1
		}
		switch t {
		case Int64:
			return n, true
		case Float64:
			return float64(n), true
		case Boolean:
			return val, true
		}
	}
	return nil, false
}

// floatToInt accepts integral values in [MinInt64, MaxInt64).
// float64(math.MaxInt64) is 2^63, which does not fit.
func floatToInt(f float64) (any, bool) {
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return nil, false
	}
	return int64(f), true
}

// TypeOf returns the column type matching a Go value, or an empty string
// for nil.
func TypeOf(v any) Type {
	switch v.(type) {
	case string:
		return String
	case int64, int:
		return Int64
	case float64:
		return Float64
	case bool:
		return Boolean
	}
	return ""
}

// Format renders a value as text. Nil is an empty string.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}

// ToFloat converts a numeric or numeric-looking value to float64.
func ToFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case float64:
		return val, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		f, ok := ParseValue(val, Float64)
		if !ok {
			return 0, false
		}
		return f.(float64), true
	}
	return 0, false
}
