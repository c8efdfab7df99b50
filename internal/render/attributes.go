package render

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Attributes is the attribute set of one block instance. Values come from
// JSON, so numbers arrive as float64 and lists as []interface{}.
type Attributes map[string]interface{}

// String returns the value at key as a string, or "" when absent.
func (a Attributes) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	}
	return ""
}

// Int returns the value at key as an int, or 0 when absent or not numeric.
func (a Attributes) Int(key string) int {
	switch v := a[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n
		}
	}
	return 0
}

// Bool returns the value at key as a bool.
func (a Attributes) Bool(key string) bool {
	v, _ := a[key].(bool)
	return v
}

// Strings returns a list of strings; non-string items are skipped.
func (a Attributes) Strings(key string) []string {
	switch v := a[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Records returns a list of structured records; non-object items are skipped.
func (a Attributes) Records(key string) []Attributes {
	switch v := a[key].(type) {
	case []Attributes:
		return v
	case []map[string]interface{}:
		out := make([]Attributes, 0, len(v))
		for _, item := range v {
			out = append(out, Attributes(item))
		}
		return out
	case []interface{}:
		out := make([]Attributes, 0, len(v))
		for _, item := range v {
			switch rec := item.(type) {
			case map[string]interface{}:
				out = append(out, Attributes(rec))
			case Attributes:
				out = append(out, rec)
			}
		}
		return out
	}
	return nil
}
