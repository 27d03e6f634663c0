// Package config holds the value conversions shared by the ConfigStore
// adapters. Each helper takes the (value, ok) pair returned by a store's
// Get so callers can write config.Int(s.Get(key)).
//
// Numbers and booleans may also arrive as strings, for example when set
// from the command line or quoted in a hand-edited file.
package config

import (
	"math"
	"strconv"
	"strings"
)

// String returns v if it is a string, otherwise "".
func String(v any, ok bool) string {
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Int converts integer, integral float and numeric string values.
func Int(v any, ok bool) int {
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}

// Float converts float, integer and numeric string values.
func Float(v any, ok bool) float64 {
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return 0
}

// Bool converts bool and "true"/"false" style string values.
func Bool(v any, ok bool) bool {
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(b))
		return parsed
	}
	return false
}

// StringSlice converts string arrays and comma-separated strings.
// Non-string array elements are skipped.
func StringSlice(v any, ok bool) []string {
	if !ok {
		return nil
	}
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return nil
}
