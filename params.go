package biostream

import (
	"encoding/json"
	"fmt"
)

// Params maps parameter names to scalar values (string, float64 or bool).
type Params map[string]any

// Clone returns a copy of p. Values are scalars, so a shallow copy suffices.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// NormalizeParams converts Go integer and float32 values to float64, which is
// what a JSON decode produces, and rejects non-scalar values. An empty map
// normalises to nil.
func NormalizeParams(p Params) (Params, error) {
	if len(p) == 0 {
		return nil, nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		nv, err := normalizeScalar(v)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func normalizeScalar(v any) (any, error) {
	switch x := v.(type) {
	case string, bool, float64:
		return x, nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// NormalizeData returns d in the shape a JSON decode produces: numbers
// become float64, slices []any and nested objects map[string]any. Values
// that cannot be encoded as JSON are an error. An empty map normalises to
// nil.
func NormalizeData(d map[string]any) (map[string]any, error) {
	if len(d) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("edge data: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("edge data: %w", err)
	}
	return out, nil
}

// CloneData deep-copies opaque edge data made of JSON-shaped values.
func CloneData(d map[string]any) map[string]any {
	if d == nil {
		return nil
	}
	return copyValue(d).(map[string]any)
}

// copyValue deep-copies maps and slices produced by JSON decoding.
func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = copyValue(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = copyValue(e)
		}
		return s
	default:
		return v
	}
}
