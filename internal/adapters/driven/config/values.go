// Package config holds the value coercion shared by the configuration
// stores. TOML decodes integers as int64 and arrays as []any, while values
// set programmatically keep their Go types; both read the same way here.
package config

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Values is a flat set of configuration values keyed by dot path.
type Values map[string]any

// String returns the value as a string, or "" when absent or not a string.
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Int returns integral values, truncating floats.
func (v Values) Int(key string) int {
	switch n := v[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// Float returns numeric values as float64.
func (v Values) Float(key string) float64 {
	switch n := v[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Bool returns boolean values. The strings "true"/"false" are accepted.
func (v Values) Bool(key string) bool {
	switch b := v[key].(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	default:
		return false
	}
}

// Duration reads Go duration strings, time.Duration values, or a bare
// number of seconds.
func (v Values) Duration(key string) time.Duration {
	switch d := v[key].(type) {
	case time.Duration:
		return d
	case string:
		s := strings.TrimSpace(d)
		if parsed, err := time.ParseDuration(s); err == nil {
			return parsed
		}
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
		return 0
	case int, int64, float64:
		return time.Duration(v.Float(key) * float64(time.Second))
	default:
		return 0
	}
}

// StringSlice returns string lists. A single string becomes a one-element
// list; non-string elements are skipped.
func (v Values) StringSlice(key string) []string {
	switch s := v[key].(type) {
	case []string:
		return s
	case []any:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	case string:
		if s == "" {
			return nil
		}
		return []string{s}
	default:
		return nil
	}
}

// Flatten converts nested tables to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func Flatten(m map[string]any) Values {
	out := make(Values)
	flattenInto(out, m, "")
	return out
}

func flattenInto(out Values, m map[string]any, prefix string) {
	for key, value := range m {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenInto(out, nested, full)
			continue
		}
		out[full] = value
	}
}

// Nest is the inverse of Flatten, so saved files use TOML tables
// ("[sync]\nworkers = 4") rather than quoted dotted keys. When a key is
// both a value and a table prefix, the value is kept under its full
// dotted name.
func (v Values) Nest() map[string]any {
	root := make(map[string]any)
	for _, key := range sortedKeys(v) {
		parts := strings.Split(key, ".")
		node := root
		ok := true
		for _, part := range parts[:len(parts)-1] {
			child, exists := node[part]
			if !exists {
				next := make(map[string]any)
				node[part] = next
				node = next
				continue
			}
			next, isTable := child.(map[string]any)
			if !isTable {
				ok = false
				break
			}
			node = next
		}
		leaf := parts[len(parts)-1]
		if _, clash := node[leaf].(map[string]any); !ok || clash {
			root[key] = v[key]
			continue
		}
		node[leaf] = v[key]
	}
	return root
}

// Clone returns an independent copy.
func (v Values) Clone() Values {
	if v == nil {
		return make(Values)
	}
	return maps.Clone(v)
}

// sortedKeys orders a plain key before the keys it prefixes.
func sortedKeys(v Values) []string {
	return slices.Sorted(maps.Keys(v))
}
