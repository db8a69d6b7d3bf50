package config

import (
	"bytes"
	"fmt"

	"github.com/spf13/viper"
)

// Overlay is one named layer of config YAML, in application order: base,
// fees defaults, slippage defaults, each user override, then local override.
type Overlay struct {
	Name string
	YAML []byte
}

// parseOverlay decodes one overlay's YAML into a plain settings map via
// viper, matching this codebase's existing per-file config decoder.
func parseOverlay(o Overlay) (map[string]any, error) {
	if len(bytes.TrimSpace(o.YAML)) == 0 {
		return map[string]any{}, nil
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(o.YAML)); err != nil {
		return nil, fmt.Errorf("overlay %q: %w", o.Name, err)
	}
	return v.AllSettings(), nil
}

// deepMerge combines dst and src per the spec's merge semantics: mapping
// values merge recursively key by key; any other value (scalar or sequence)
// is replaced wholesale by src's value. The result shares no references with
// either input — every nested map/slice is deep-copied.
func deepMerge(dst, src map[string]any) map[string]any {
	out := deepCopyMap(dst)
	for k, v := range src {
		if existing, ok := out[k]; ok {
			if existingMap, ok1 := asMap(existing); ok1 {
				if srcMap, ok2 := asMap(v); ok2 {
					out[k] = deepMerge(existingMap, srcMap)
					continue
				}
			}
		}
		out[k] = deepCopyValue(v)
	}
	return out
}

// asMap normalizes viper's map[string]any / map[any]any decode variance into
// map[string]any so deepMerge can recurse uniformly.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprintf("%v", k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return deepCopyMap(x)
	case map[any]any:
		m, _ := asMap(x)
		return deepCopyMap(m)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return x
	}
}

// MergeAll merges a list of overlays in order, left to right, each later
// overlay taking precedence per deepMerge's rules.
func MergeAll(overlays []Overlay) (map[string]any, error) {
	merged := map[string]any{}
	for _, o := range overlays {
		parsed, err := parseOverlay(o)
		if err != nil {
			return nil, err
		}
		merged = deepMerge(merged, parsed)
	}
	return merged, nil
}
