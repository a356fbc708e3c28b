package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ValueKind discriminates the variants of a configuration Value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueString
	ValueNumber
	ValueBool
	ValueList
	ValueObject
)

// Value is one operation configuration value: a tagged union of scalar,
// list and object variants with explicit serialization. Configuration is
// never assembled by string interpolation.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	list []Value
	obj  map[string]Value
}

func String(s string) Value  { return Value{kind: ValueString, str: s} }
func Number(n float64) Value { return Value{kind: ValueNumber, num: n} }
func Bool(b bool) Value      { return Value{kind: ValueBool, b: b} }

func List(items ...Value) Value {
	return Value{kind: ValueList, list: items}
}

func Object(fields map[string]Value) Value {
	return Value{kind: ValueObject, obj: fields}
}

// Kind returns the variant of the value.
func (v Value) Kind() ValueKind { return v.kind }

// MarshalJSON serializes the value into its provider wire form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueNull:
		return []byte("null"), nil
	case ValueString:
		return json.Marshal(v.str)
	case ValueNumber:
		return json.Marshal(v.num)
	case ValueBool:
		return json.Marshal(v.b)
	case ValueList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case ValueObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.obj)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}

// FromAny converts a decoded YAML/JSON scalar, list or map into a Value.
func FromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case float64:
		return Number(t), nil
	case []any:
		items := make([]Value, 0, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("list index %d: %w", i, err)
			}
			items = append(items, v)
		}
		return List(items...), nil
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for key, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("field %s: %w", key, err)
			}
			fields[key] = v
		}
		return Object(fields), nil
	default:
		return Value{}, fmt.Errorf("unsupported config value type %T", raw)
	}
}

// Params is the open-ended operation configuration mapping (prompt text,
// recognition settings, feature lists, ...).
type Params map[string]Value

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParamsFromAny converts a decoded map into Params.
func ParamsFromAny(raw map[string]any) (Params, error) {
	if len(raw) == 0 {
		return Params{}, nil
	}
	out := make(Params, len(raw))
	for key, item := range raw {
		v, err := FromAny(item)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}
