package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberPrefix matches the leading float a lenient numeric parse accepts
// once every character other than digits, '-' and '.' has been stripped.
var numberPrefix = regexp.MustCompile(`^[-]?(\d+\.?\d*|\.\d+)`)

// ParseNumber converts a field value to a float64.
//
// Numbers are returned as-is. Anything else is rendered as text, stripped of
// every character that is not a digit, '-' or '.', and the longest leading
// float is parsed. Unparsable input yields 0; the function never fails.
func ParseNumber(v any) float64 {
	if n, ok := AsNumber(v); ok {
		return n
	}
	stripped := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			return r
		}
		return -1
	}, Text(v))

	prefix := numberPrefix.FindString(stripped)
	if prefix == "" {
		return 0
	}
	n, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(n) {
		return 0
	}
	return n
}

// AsNumber reports whether v holds a Go numeric type and returns it as float64.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Text renders a field value as a string. Nil renders as the empty string
// and numbers use the shortest representation that round-trips.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	}
	if n, ok := AsNumber(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

// Normalize converts a decoded value to one of the scalar shapes the engine
// works with: nil, string, bool or float64. Composite values collapse to
// their text form.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil, string, bool, float64:
		return t
	}
	if n, ok := AsNumber(v); ok {
		return n
	}
	return Text(v)
}

// truthy mirrors the loose truthiness used by exact matching: nil, "", 0,
// NaN and false are falsy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	}
	if n, ok := AsNumber(v); ok {
		return n != 0 && !math.IsNaN(n)
	}
	return true
}

// valuesEqual compares two scalars: numerically when both are numbers,
// otherwise by their text form.
func valuesEqual(a, b any) bool {
	na, aNum := AsNumber(a)
	nb, bNum := AsNumber(b)
	if aNum && bNum {
		return na == nb
	}
	return Text(a) == Text(b)
}

// roundHalfUp rounds half-way cases toward positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// parseStrictFloat parses s as a whole number literal.
func parseStrictFloat(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}
