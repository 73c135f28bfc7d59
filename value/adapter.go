package value

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// FromAny converts a Go value into a Value.
//
// Maps are converted with their keys sorted, since Go map order carries no
// meaning. time.Time becomes an aware date-time and apd.Decimal is copied
// into a *apd.Decimal. Types without a JSON form are kept as extended
// values; it is up to the codec's registry to encode them.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case *Object:
		return Obj(x), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(float64(x)), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x)
	case time.Time:
		return DateTime(x), nil
	case apd.Decimal:
		return Decimal(new(apd.Decimal).Set(&x)), nil
	case *apd.Decimal:
		if x == nil {
			return Null(), nil
		}
		return Decimal(x), nil
	case []Value:
		return Array(x...), nil
	case []any:
		arr := make([]Value, len(x))
		for i := range x {
			vv, err := FromAny(x[i])
			if err != nil {
				return Value{}, err
			}
			arr[i] = vv
		}
		return Array(arr...), nil
	case []string:
		arr := make([]Value, len(x))
		for i := range x {
			arr[i] = String(x[i])
		}
		return Array(arr...), nil
	case []int:
		arr := make([]Value, len(x))
		for i := range x {
			arr[i] = Int(int64(x[i]))
		}
		return Array(arr...), nil
	case []float64:
		arr := make([]Value, len(x))
		for i := range x {
			arr[i] = Float(x[i])
		}
		return Array(arr...), nil
	case map[string]Value:
		o := NewObject(len(x))
		for _, k := range sortedKeys(x) {
			o.Set(k, x[k])
		}
		return Obj(o), nil
	case map[string]any:
		return ObjectFromAny(x)
	default:
		return Ext(v), nil
	}
}

// ObjectFromAny converts a map[string]any document to an object Value.
func ObjectFromAny(m map[string]any) (Value, error) {
	o := NewObject(len(m))
	for _, k := range sortedKeys(m) {
		vv, err := FromAny(m[k])
		if err != nil {
			return Value{}, fmt.Errorf("key %q: %w", k, err)
		}
		o.Set(k, vv)
	}
	return Obj(o), nil
}

// ToAny converts v into plain Go values: nil, bool, int64, float64, string,
// []any and map[string]any. Extended values are returned as their runtime
// value. Object order is lost.
func ToAny(v Value) any {
	switch v.Kind {
	case KindBool:
		return v.B
	case KindInt:
		return v.I64
	case KindFloat:
		return v.F64
	case KindString:
		return v.S
	case KindArray:
		out := make([]any, len(v.A))
		for i := range v.A {
			out[i] = ToAny(v.A[i])
		}
		return out
	case KindObject:
		out := make(map[string]any, v.O.Len())
		v.O.Range(func(k string, vv Value) bool {
			out[k] = ToAny(vv)
			return true
		})
		return out
	case KindExtended:
		return v.X
	default:
		return nil
	}
}

func fromUint(x uint64) (Value, error) {
	if x > math.MaxInt64 {
		// Avoid silently wrapping into a negative number.
		return Value{}, fmt.Errorf("uint64 out of range: %d", x)
	}
	return Int(int64(x)), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
