package vector

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Normalize converts a stored embedding into a numeric vector.
// Unrecognized shapes yield an empty vector; the dimension check at scoring
// time rejects them.
func Normalize(r Raw) []float32 {
	switch r.kind {
	case KindVector:
		return r.vec
	case KindDelimited:
		return parseDelimited(r.text)
	case KindBuffer:
		return coerceElements(r.elems)
	default:
		return []float32{}
	}
}

func parseDelimited(s string) []float32 {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "([{")
	s = strings.TrimRight(s, ")]}")
	if strings.TrimSpace(s) == "" {
		return []float32{}
	}

	parts := strings.Split(s, ",")
	out := make([]float32, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			continue
		}
		if v, ok := toFloat32(f); ok {
			out = append(out, v)
		}
	}
	return out
}

func coerceElements(elems []any) []float32 {
	out := make([]float32, 0, len(elems))
	for _, e := range elems {
		f, ok := toFloat(e)
		if !ok {
			continue
		}
		if v, ok := toFloat32(f); ok {
			out = append(out, v)
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// toFloat32 narrows f, rejecting values that are not finite after the
// conversion: 1e39 fits a float64 but overflows a float32.
func toFloat32(f float64) (float32, bool) {
	if !finite(f) {
		return 0, false
	}
	v := float32(f)
	if !finite(float64(v)) {
		return 0, false
	}
	return v, true
}
