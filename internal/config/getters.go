package config

import (
	"fmt"
	"time"
)

// nested walks a dotted path ("risk.r_per_trade") through a settings map,
// returning the raw value and whether every segment resolved.
func nested(m map[string]any, path []string) (any, bool) {
	cur := any(m)
	for _, seg := range path {
		cm, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		v, ok := cm[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func getString(m map[string]any, path ...string) (string, bool, error) {
	v, ok := nested(m, path)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", true, fmt.Errorf("expected string, got %T", v)
	}
	return s, true, nil
}

func getFloat(m map[string]any, path ...string) (float64, bool, error) {
	v, ok := nested(m, path)
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return n, true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	default:
		return 0, true, fmt.Errorf("expected number, got %T", v)
	}
}

func getInt(m map[string]any, path ...string) (int, bool, error) {
	f, ok, err := getFloat(m, path...)
	return int(f), ok, err
}

func getBool(m map[string]any, path ...string) (bool, bool, error) {
	v, ok := nested(m, path)
	if !ok {
		return false, false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, true, fmt.Errorf("expected bool, got %T", v)
	}
	return b, true, nil
}

func getStringSlice(m map[string]any, path ...string) ([]string, bool, error) {
	v, ok := nested(m, path)
	if !ok {
		return nil, false, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, true, fmt.Errorf("expected list, got %T", v)
	}
	out := make([]string, len(arr))
	for i, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, true, fmt.Errorf("expected string list element, got %T", e)
		}
		out[i] = s
	}
	return out, true, nil
}

func getMap(m map[string]any, path ...string) (map[string]any, bool) {
	v, ok := nested(m, path)
	if !ok {
		return nil, false
	}
	cm, ok := asMap(v)
	return cm, ok
}

func getTime(m map[string]any, path ...string) (time.Time, bool, error) {
	s, ok, err := getString(m, path...)
	if !ok || err != nil {
		return time.Time{}, ok, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), true, nil
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
