// Package value defines the tagged Value union carried by ValueConnectors.
//
// A Value is either Unset — the distinguished "no value has ever been
// assigned" sentinel — or one of a fixed set of scalar payloads. Only
// Unset→set and set→set transitions occur; callers observe whether a value
// has ever been assigned independently of its current payload.
package value

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which payload, if any, a Value carries.
type Kind int

const (
	KindUnset Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

// notsetLiteral is the wire encoding of Unset, per the manifest contract.
const notsetLiteral = "NOTSET"

// Value is a closed sum type: Unset, or one of {string, int64, float64, bool}.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// Unset is the distinguished "no value has ever been assigned" sentinel.
var Unset = Value{kind: KindUnset}

func String(s string) Value  { return Value{kind: KindString, s: s} }
func Int(i int64) Value      { return Value{kind: KindInt, i: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsUnset reports whether v is the Unset sentinel.
func (v Value) IsUnset() bool { return v.kind == KindUnset }

// Equal reports whether two Values carry the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindUnset:
		return true
	case KindString:
		return v.s == other.s
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBool:
		return v.b == other.b
	default:
		return false
	}
}

// Raw returns the payload as an any, or nil for Unset. Useful for logging
// and for constructing manifest records.
func (v Value) Raw() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	default:
		return nil
	}
}

func (v Value) String() string {
	if v.kind == KindUnset {
		return notsetLiteral
	}
	return fmt.Sprintf("%v", v.Raw())
}

// MarshalJSON encodes Unset as the literal string "NOTSET" and every other
// variant as its natural JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindUnset {
		return json.Marshal(notsetLiteral)
	}
	return json.Marshal(v.Raw())
}

// UnmarshalJSON decodes the literal string "NOTSET" back to Unset and any
// other scalar into the matching variant.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding value: %w", err)
	}
	*v = FromRaw(raw)
	return nil
}

// FromRaw converts a decoded JSON scalar (or the "NOTSET" literal) into a Value.
func FromRaw(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Unset
	case string:
		if x == notsetLiteral {
			return Unset
		}
		return String(x)
	case float64:
		if x == float64(int64(x)) {
			return Int(int64(x))
		}
		return Float(x)
	case bool:
		return Bool(x)
	default:
		return Unset
	}
}
