// Package metadata models document metadata as a closed tagged variant and
// provides the filter predicates applied before ranking.
package metadata

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the variants of a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindObject
)

// Value is a single metadata value: string, number, bool, null, or a nested
// list/object of the same. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	obj  Map
}

// Map is an unordered mapping from string keys to metadata values.
type Map map[string]Value

// Constructors for each variant.

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// String wraps a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List wraps a sequence of values.
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

// Object wraps a nested map.
func Object(m Map) Value { return Value{kind: KindObject, obj: m} }

// Kind returns the variant discriminator.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload (valid for KindString).
func (v Value) Str() string { return v.str }

// Num returns the numeric payload (valid for KindNumber).
func (v Value) Num() float64 { return v.num }

// B returns the boolean payload (valid for KindBool).
func (v Value) B() bool { return v.b }

// Items returns the list payload (valid for KindList).
func (v Value) Items() []Value { return v.list }

// Fields returns the object payload (valid for KindObject).
func (v Value) Fields() Map { return v.obj }

// IsScalar reports whether the value is a filterable scalar
// (string, number, bool, or null).
func (v Value) IsScalar() bool {
	switch v.kind {
	case KindString, KindNumber, KindBool, KindNull:
		return true
	case KindList, KindObject:
		return false
	default:
		return false
	}
}

// Equal compares two values structurally. Numbers compare as float64.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, vv := range v.obj {
			ov, ok := o.obj[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders a scalar for index storage: numbers in shortest float form,
// bools as "true"/"false", null as empty.
func (v Value) scalarString() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNull:
		return ""
	default:
		return ""
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		return json.Marshal(v.list)
	case KindObject:
		return json.Marshal(v.obj)
	default:
		return nil, fmt.Errorf("metadata: unknown kind %d", v.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("metadata: decode value: %w", err)
	}
	parsed, err := fromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func fromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("metadata: parse number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case float64:
		return Number(t), nil
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			v, err := fromAny(e)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return List(items...), nil
	case map[string]any:
		m := make(Map, len(t))
		for k, e := range t {
			v, err := fromAny(e)
			if err != nil {
				return Value{}, err
			}
			m[k] = v
		}
		return Object(m), nil
	default:
		return Value{}, fmt.Errorf("metadata: unsupported value type %T", raw)
	}
}

// FromAny converts a plain Go value (string, bool, number, nil, []any,
// map[string]any) into a Value. Integer kinds convert to float64.
func FromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case int:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case float32:
		return Number(float64(t)), nil
	default:
		return fromAny(raw)
	}
}

// FromAnyMap converts a plain map into a Map.
func FromAnyMap(raw map[string]any) (Map, error) {
	if raw == nil {
		return nil, nil
	}
	m := make(Map, len(raw))
	for k, v := range raw {
		parsed, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("metadata key %q: %w", k, err)
		}
		m[k] = parsed
	}
	return m, nil
}

// ToAny converts the value back to plain Go types (inverse of FromAny).
func (v Value) ToAny() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.ToAny()
		}
		return out
	case KindObject:
		return v.obj.ToAnyMap()
	default:
		return nil
	}
}

// ToAnyMap converts the map back to plain Go types.
func (m Map) ToAnyMap() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.ToAny()
	}
	return out
}

// FromJSON parses a JSON object into a Map.
func FromJSON(data []byte) (Map, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	if v.kind == KindNull {
		return nil, nil
	}
	if v.kind != KindObject {
		return nil, fmt.Errorf("metadata: expected JSON object, got kind %d", v.kind)
	}
	return v.obj, nil
}

// ToJSON serializes a Map; nil maps serialize to empty.
func (m Map) ToJSON() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Clone returns a shallow copy of the map (values are immutable).
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	c := make(Map, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// lookup resolves a dotted path into nested objects. The second return is
// false when any segment is missing or traverses a non-object.
func (m Map) lookup(path string) (Value, bool) {
	cur := m
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		v, ok := cur[seg]
		if !ok {
			return Value{}, false
		}
		if i == len(segments)-1 {
			return v, true
		}
		if v.kind != KindObject {
			return Value{}, false
		}
		cur = v.obj
	}
	return Value{}, false
}

// FlatField is a scalar projection of one metadata path, used by backends
// that index flattened fields.
type FlatField struct {
	Path string
	// Values holds the scalar renderings: one element for scalars, one per
	// element for lists of scalars.
	Values []string
	// Numeric is set for number values (single-valued only).
	Numeric *float64
}

// Flatten projects the map into indexable fields: top-level and nested
// scalars under their dotted path, lists of scalars as multi-valued fields.
// Lists containing non-scalars and empty objects are skipped (they remain
// reachable only through the stored JSON).
func (m Map) Flatten() []FlatField {
	var out []FlatField
	flattenInto(&out, "", m)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func flattenInto(out *[]FlatField, prefix string, m Map) {
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch v.kind {
		case KindString, KindBool, KindNull:
			*out = append(*out, FlatField{Path: path, Values: []string{v.scalarString()}})
		case KindNumber:
			n := v.num
			*out = append(*out, FlatField{Path: path, Values: []string{v.scalarString()}, Numeric: &n})
		case KindList:
			var vals []string
			ok := true
			for _, e := range v.list {
				if !e.IsScalar() {
					ok = false
					break
				}
				vals = append(vals, e.scalarString())
			}
			if ok && len(vals) > 0 {
				*out = append(*out, FlatField{Path: path, Values: vals})
			}
		case KindObject:
			flattenInto(out, path, v.obj)
		}
	}
}
