package scalar

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is a sealed interface over the scalar types a filter condition may
// carry as its operand. Only Null, String, Int, Float, Bool, and List
// implement it, which keeps type switches in the compiler exhaustive.
//
// List is included because membership operators (in, notIn, between) take a
// list of scalars; nested lists are rejected at decode time.
type Value interface {
	scalarValue()
}

// Null represents an absent operand. Legal only for isNull/notNull.
type Null struct{}

func (Null) scalarValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String is a text operand.
type String string

func (String) scalarValue() {}

// Int is an integer operand. Always int64.
type Int int64

func (Int) scalarValue() {}

// Float is a floating-point operand (numeric/real/double columns).
type Float float64

func (Float) scalarValue() {}

// Bool is a boolean operand.
type Bool bool

func (Bool) scalarValue() {}

// List is a flat list of scalar operands.
type List []Value

func (List) scalarValue() {}

// IsNull reports whether v is the Null value (or a nil interface).
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// FromAny converts a loosely-typed Go value (typically the result of decoding
// JSON, YAML, or CUE) into a Value. Unsupported types are an error; nil maps
// to Null. Lists are flattened one level only - a list inside a list is
// rejected.
func FromAny(v any) (Value, error) {
	val, err := fromAny(v, false)
	if err != nil {
		return nil, err
	}
	return val, nil
}

func fromAny(v any, inList bool) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number out of range: %s", val)
		}
		return Float(f), nil
	case []any:
		if inList {
			return nil, fmt.Errorf("nested lists are not supported as filter operands")
		}
		list := make(List, len(val))
		for i, elem := range val {
			sv, err := fromAny(elem, true)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = sv
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unsupported operand type: %T", v)
	}
}

// FromJSON decodes a single JSON value into a Value. Numbers without a
// fractional part decode as Int, everything else as Float.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromAny(raw)
}

// ToAny converts a Value back to a plain Go value, for callers that need to
// hand operands to database/sql or encoding/json.
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	default:
		return nil
	}
}
