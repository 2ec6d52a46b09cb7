// ABOUTME: Record type for loosely shaped backend rows
// ABOUTME: Provides dotted-path accessors for the fields analytics reads
package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Record is one backend row. Relationship fields arrive as nested maps
// (for example Account.Industry is Record{"Account": map{"Industry": ...}}).
type Record map[string]any

// Lookup resolves a dotted path such as "Account.Industry".
func (r Record) Lookup(path string) (any, bool) {
	var current any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

// String returns the value at path as a string, or "" when absent.
func (r Record) String(path string) string {
	v, ok := r.Lookup(path)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// Float returns the numeric value at path. ok is false for missing or non-numeric values.
func (r Record) Float(path string) (float64, bool) {
	v, ok := r.Lookup(path)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func (r Record) Bool(path string) bool {
	v, ok := r.Lookup(path)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Time parses the value at path as a Salesforce date or datetime.
func (r Record) Time(path string) (time.Time, bool) {
	return ParseTime(r.String(path))
}

// Children returns the rows of a nested subquery result ({"records": [...]}).
func (r Record) Children(path string) []Record {
	v, ok := r.Lookup(path)
	if !ok {
		return nil
	}
	m, ok := asMap(v)
	if !ok {
		return nil
	}
	raw, _ := m["records"].([]any)
	out := make([]Record, 0, len(raw))
	for _, item := range raw {
		if child, ok := asMap(item); ok {
			out = append(out, Record(child))
		}
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02",
}

// ParseTime accepts the date and datetime formats the REST API emits.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	}
	return nil, false
}
