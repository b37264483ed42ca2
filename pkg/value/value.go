// Package value implements the neutral dynamic Value type that crosses the
// script ↔ native boundary (spec.md §3, §4.10): null, bool, i64, u64, f64,
// string, seq(Value), map(string, Value).
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind identifies which alternative of Value is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindI64
	KindU64
	KindF64
	KindString
	KindSeq
	KindMap
)

// Value is a recursive dynamic value. The zero Value is KindNull.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	seq  []Value
	m    map[string]Value
}

func Null() Value             { return Value{kind: KindNull} }
func Bool(b bool) Value       { return Value{kind: KindBool, b: b} }
func I64(i int64) Value       { return Value{kind: KindI64, i: i} }
func U64(u uint64) Value      { return Value{kind: KindU64, u: u} }
func F64(f float64) Value     { return Value{kind: KindF64, f: f} }
func String(s string) Value   { return Value{kind: KindString, s: s} }
func Seq(vs []Value) Value    { return Value{kind: KindSeq, seq: vs} }
func Map(m map[string]Value) Value {
	return Value{kind: KindMap, m: m}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool)       { return v.b, v.kind == KindBool }
func (v Value) I64() (int64, bool)       { return v.i, v.kind == KindI64 }
func (v Value) U64() (uint64, bool)      { return v.u, v.kind == KindU64 }
func (v Value) F64() (float64, bool)     { return v.f, v.kind == KindF64 }
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindI64:
		return fmt.Sprintf("%d", v.i)
	case KindU64:
		return fmt.Sprintf("%d", v.u)
	case KindF64:
		return fmt.Sprintf("%v", v.f)
	case KindNull:
		return ""
	default:
		return ""
	}
}
func (v Value) Seq() ([]Value, bool)        { return v.seq, v.kind == KindSeq }
func (v Value) Map() (map[string]Value, bool) { return v.m, v.kind == KindMap }

// Get looks up a key on a KindMap Value. Returns Null, false for any other
// kind or a missing key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Null(), false
	}
	got, ok := v.m[key]
	return got, ok
}

// Merge overlays `other` onto `v`, recursing into nested maps (used to build
// the layout context site-data ∪ page-data per spec.md §4.5). Scalars and
// sequences in `other` replace those in `v` outright.
func Merge(base, overlay Value) Value {
	if base.kind != KindMap || overlay.kind != KindMap {
		if overlay.kind == KindNull {
			return base
		}
		return overlay
	}
	out := make(map[string]Value, len(base.m)+len(overlay.m))
	for k, v := range base.m {
		out[k] = v
	}
	for k, v := range overlay.m {
		if existing, ok := out[k]; ok {
			out[k] = Merge(existing, v)
		} else {
			out[k] = v
		}
	}
	return Map(out)
}

// FromGo converts an ordinary Go value (as produced by encoding/json,
// gopkg.in/yaml.v3, or github.com/BurntSushi/toml unmarshaling into `any`)
// into a Value.
func FromGo(in any) Value {
	switch t := in.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return I64(int64(t))
	case int64:
		return I64(t)
	case uint64:
		return U64(t)
	case float64:
		return F64(t)
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = FromGo(e)
		}
		return Seq(out)
	case []Value:
		return Seq(t)
	case map[string]any:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			out[k] = FromGo(e)
		}
		return Map(out)
	case map[any]any: // yaml.v3 sometimes yields this for nested maps
		out := make(map[string]Value, len(t))
		for k, e := range t {
			out[fmt.Sprintf("%v", k)] = FromGo(e)
		}
		return Map(out)
	case Value:
		return t
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// ToGo converts a Value back into the ordinary Go `any` shape that
// encoding/json, yaml.v3, and html/template all already know how to handle.
func (v Value) ToGo() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindI64:
		return v.i
	case KindU64:
		return v.u
	case KindF64:
		return v.f
	case KindString:
		return v.s
	case KindSeq:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.ToGo()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.ToGo()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON makes Value a round-trip-safe JSON citizen (spec.md §8:
// "Value → JSON → Value is identity over Value's serializable subset").
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToGo())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var out any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return err
	}
	*v = fromJSONAny(out)
	return nil
}

func fromJSONAny(in any) Value {
	switch t := in.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return I64(i)
		}
		f, _ := t.Float64()
		return F64(f)
	case map[string]any:
		out := make(map[string]Value, len(t))
		for k, e := range t {
			out[k] = fromJSONAny(e)
		}
		return Map(out)
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = fromJSONAny(e)
		}
		return Seq(out)
	default:
		return FromGo(t)
	}
}

// Keys returns the sorted keys of a KindMap Value, or nil otherwise.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
