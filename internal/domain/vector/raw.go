// Package vector holds embedding values as they come back from storage and
// the numeric operations the search ranking relies on.
package vector

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Kind tags the serialized shape of a stored embedding.
type Kind int

// Stored embedding shapes.
const (
	KindUnknown Kind = iota
	KindVector
	KindDelimited
	KindBuffer
)

func (k Kind) String() string {
	switch k {
	case KindVector:
		return "vector"
	case KindDelimited:
		return "delimited"
	case KindBuffer:
		return "buffer"
	default:
		return "unknown"
	}
}

// Raw is a stored embedding in one of several serialized shapes.
// The zero value is an absent embedding.
type Raw struct {
	kind  Kind
	vec   []float32
	text  string
	elems []any
}

// FromVector wraps an already-numeric embedding.
func FromVector(v []float32) Raw {
	if v == nil {
		return Raw{}
	}
	return Raw{kind: KindVector, vec: v}
}

// FromDelimited wraps a delimited string such as "[0.1, 0.2]" or "(1,2,3)".
func FromDelimited(s string) Raw {
	return Raw{kind: KindDelimited, text: s}
}

// FromBuffer wraps a raw buffer-like sequence whose elements still need coercion.
func FromBuffer(elems []any) Raw {
	return Raw{kind: KindBuffer, elems: elems}
}

// Kind returns the shape tag.
func (r Raw) Kind() Kind { return r.kind }

// IsZero reports whether no embedding is stored.
func (r Raw) IsZero() bool { return r.kind == KindUnknown }

// FromJSON classifies a stored JSON value. Unrecognized shapes map to KindUnknown.
func FromJSON(data []byte) Raw {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Raw{}
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return Raw{}
	}
	return classify(v)
}

func classify(v any) Raw {
	switch t := v.(type) {
	case string:
		return FromDelimited(t)
	case []any:
		if vec, ok := numericArray(t); ok {
			return FromVector(vec)
		}
		return FromBuffer(t)
	case map[string]any:
		return classifyObject(t)
	default:
		return Raw{}
	}
}

// classifyObject handles buffer wrappers ({"type":"Buffer","data":[...]},
// {"values":[...]}) and typed arrays serialized as {"0":x,"1":y}.
func classifyObject(m map[string]any) Raw {
	for _, key := range []string{"data", "values", "embedding"} {
		if arr, ok := m[key].([]any); ok {
			return FromBuffer(arr)
		}
	}

	if len(m) == 0 {
		return Raw{}
	}
	idx := make([]int, 0, len(m))
	for k := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return Raw{}
		}
		idx = append(idx, i)
	}
	sort.Ints(idx)
	elems := make([]any, len(idx))
	for n, i := range idx {
		elems[n] = m[strconv.Itoa(i)]
	}
	return FromBuffer(elems)
}

func numericArray(arr []any) ([]float32, bool) {
	out := make([]float32, len(arr))
	for i, e := range arr {
		n, ok := e.(json.Number)
		if !ok {
			return nil, false
		}
		f, err := n.Float64()
		if err != nil {
			return nil, false
		}
		v, ok := toFloat32(f)
		if !ok {
			// the buffer path drops the bad element
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// MarshalJSON writes vectors as arrays, delimited strings as strings, and
// buffers as arrays of their original elements.
func (r Raw) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case KindVector:
		return json.Marshal(r.vec) //nolint:wrapcheck // plain value encoding
	case KindDelimited:
		return json.Marshal(r.text) //nolint:wrapcheck // plain value encoding
	case KindBuffer:
		return json.Marshal(r.elems) //nolint:wrapcheck // plain value encoding
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON classifies the stored value. It never fails.
func (r *Raw) UnmarshalJSON(data []byte) error {
	*r = FromJSON(data)
	return nil
}
