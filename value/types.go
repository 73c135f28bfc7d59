package value

import (
	"bytes"
	"math"
	"reflect"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid is the kind of the zero Value.
	KindInvalid Kind = iota
	// KindNull represents a null value.
	KindNull
	// KindBool represents a boolean value.
	KindBool
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a float value.
	KindFloat
	// KindString represents a string value.
	KindString
	// KindArray represents an array value.
	KindArray
	// KindObject represents an ordered mapping.
	KindObject
	// KindExtended represents a runtime value without a native JSON form.
	KindExtended
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindArray:    "array",
	KindObject:   "object",
	KindExtended: "extended",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Value is a node of a JSON document graph.
//
// The zero Value has KindInvalid and is rejected by the encoder.
type Value struct {
	Kind Kind
	I64  int64
	F64  float64
	S    string
	B    bool
	A    []Value
	O    *Object
	X    any
}

// Null returns a null Value.
func Null() Value { return Value{Kind: KindNull} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBool, B: v} }

// Int returns an int64 Value.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Float returns a float64 Value.
func Float(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, S: v} }

// Array returns an array Value.
func Array(v ...Value) Value {
	if v == nil {
		v = []Value{}
	}
	return Value{Kind: KindArray, A: v}
}

// Obj returns an object Value. A nil object is treated as empty.
func Obj(o *Object) Value {
	if o == nil {
		o = NewObject(0)
	}
	return Value{Kind: KindObject, O: o}
}

// Ext returns an extended Value wrapping x. A nil x yields Null.
func Ext(x any) Value {
	if x == nil {
		return Null()
	}
	return Value{Kind: KindExtended, X: x}
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsBool returns the boolean value if Kind is KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.B, true
}

// AsInt returns the int64 value if Kind is KindInt.
func (v Value) AsInt() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.I64, true
}

// AsFloat returns the float64 value if Kind is KindFloat.
func (v Value) AsFloat() (float64, bool) {
	if v.Kind != KindFloat {
		return 0, false
	}
	return v.F64, true
}

// AsString returns the string value if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.S, true
}

// AsArray returns the array value if Kind is KindArray.
func (v Value) AsArray() ([]Value, bool) {
	if v.Kind != KindArray {
		return nil, false
	}
	return v.A, true
}

// AsObject returns the object if Kind is KindObject.
func (v Value) AsObject() (*Object, bool) {
	if v.Kind != KindObject {
		return nil, false
	}
	return v.O, true
}

// AsExtended returns the wrapped runtime value if Kind is KindExtended.
func (v Value) AsExtended() (any, bool) {
	if v.Kind != KindExtended {
		return nil, false
	}
	return v.X, true
}

// Equaler is implemented by extended types that define their own identity.
type Equaler interface {
	EqualValue(other any) bool
}

// Validator is implemented by extended types that can hold values their
// canonical text cannot express. Typed encoding refuses values whose
// Validate method fails.
type Validator interface {
	Validate() error
}

// Equal reports whether v and o are the same document.
//
// Arrays compare element-wise, objects compare key sets and values
// regardless of insertion order. Extended values must be identical
// including representation details: 1.0 and 1.00 are different decimals.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInvalid, KindNull:
		return true
	case KindBool:
		return v.B == o.B
	case KindInt:
		return v.I64 == o.I64
	case KindFloat:
		return v.F64 == o.F64 || (math.IsNaN(v.F64) && math.IsNaN(o.F64))
	case KindString:
		return v.S == o.S
	case KindArray:
		if len(v.A) != len(o.A) {
			return false
		}
		for i := range v.A {
			if !v.A[i].Equal(o.A[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.O.Equal(o.O)
	case KindExtended:
		return extendedEqual(v.X, o.X)
	default:
		return false
	}
}

func extendedEqual(a, b any) bool {
	switch x := a.(type) {
	case *apd.Decimal:
		y, ok := b.(*apd.Decimal)
		if !ok || x == nil || y == nil {
			return ok && x == y
		}
		return x.Text('G') == y.Text('G')
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case HexBytes:
		y, ok := b.(HexBytes)
		return ok && bytes.Equal(x, y)
	case uuid.UUID:
		y, ok := b.(uuid.UUID)
		return ok && x == y
	case Equaler:
		return x.EqualValue(b)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// Clone returns a deep copy of v.
//
// Builtin extended values are copied; other extended values are shared.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindArray:
		arrayCopy := make([]Value, len(v.A))
		for i := range v.A {
			arrayCopy[i] = v.A[i].Clone()
		}
		return Value{Kind: KindArray, A: arrayCopy}
	case KindObject:
		return Value{Kind: KindObject, O: v.O.Clone()}
	case KindExtended:
		return Value{Kind: KindExtended, X: cloneExtended(v.X)}
	default:
		return v
	}
}

func cloneExtended(x any) any {
	switch t := x.(type) {
	case *apd.Decimal:
		return new(apd.Decimal).Set(t)
	case []byte:
		return append([]byte(nil), t...)
	case HexBytes:
		return append(HexBytes(nil), t...)
	default:
		return x
	}
}
