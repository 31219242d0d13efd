package model

import (
	"fmt"
	"strconv"
)

// Placeholder stands in for any absent display value.
const Placeholder = "N/A"

// Intervention is one raw GTA record as decoded from the data API. Every key
// is optional; the accessors below never fail on missing or mistyped values.
type Intervention map[string]any

// Str returns the value at key rendered as a string, or def if absent or null.
// Whole numbers render without a decimal point (JSON numbers decode as float64).
func (r Intervention) Str(key, def string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// List returns the JSON array at key, or nil if absent or not an array.
func (r Intervention) List(key string) []any {
	arr, _ := r[key].([]any)
	return arr
}

// Len is the length of the array at key, zero if absent.
func (r Intervention) Len(key string) int { return len(r.List(key)) }

// Names collects the "name" of every object in the array at key. Entries
// without a usable name contribute Placeholder so the count is preserved.
func (r Intervention) Names(key string) []string {
	arr := r.List(key)
	if len(arr) == 0 {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, it := range arr {
		name := Placeholder
		if obj, ok := it.(map[string]any); ok {
			if v, ok := obj["name"]; ok && v != nil {
				name = fmt.Sprint(v)
			}
		}
		out = append(out, name)
	}
	return out
}

// Truthy reports whether the value at key is set in the loose sense the API
// uses for flags: true, any non-zero number, a non-empty string or a
// non-empty collection.
func (r Intervention) Truthy(key string) bool {
	switch t := r[key].(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// ID is the intervention id for logs and labels, empty if absent.
func (r Intervention) ID() string { return r.Str("intervention_id", "") }
