package plugin

import (
	"fmt"
	"strconv"
)

// Helpers for reading a step's opaque config map. YAML decoding hands us
// interface values, so numeric options may arrive as int, float64 or a
// templated string.

// ConfigString reads a string option. Missing or empty values return ok=false.
func ConfigString(cfg map[string]any, key string) (string, bool) {
	v, ok := cfg[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// ConfigStringDefault reads a string option with a fallback.
func ConfigStringDefault(cfg map[string]any, key, def string) string {
	if s, ok := ConfigString(cfg, key); ok {
		return s
	}
	return def
}

// ConfigInt reads an integer option, tolerating YAML's int/float/string forms.
func ConfigInt(cfg map[string]any, key string) (int, bool) {
	v, ok := cfg[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// ConfigBool reads a boolean option, tolerating string forms.
func ConfigBool(cfg map[string]any, key string, def bool) bool {
	v, ok := cfg[key]
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return def
		}
		return parsed
	}
	return def
}

// ConfigStringSlice reads a list-of-strings option.
func ConfigStringSlice(cfg map[string]any, key string) []string {
	v, ok := cfg[key]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}
