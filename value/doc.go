// Package value provides the universal in-memory representation of a JSON
// document handled by typedjson.
//
// A Value is one of:
//
//   - Null: value.Null()
//   - Bool: value.Bool(true)
//   - Int: value.Int(42)
//   - Float: value.Float(3.14)
//   - String: value.String("tech")
//   - Array: value.Array(value.Int(1), value.String("a"))
//   - Object: value.Obj(obj), an insertion-ordered mapping
//   - Extended: value.Ext(x), a runtime value without a native JSON form
//
// Integers and floats are kept apart so that numbers do not drift through
// float64 on the way in or out.
//
// # Extended values
//
// The builtin extended types are:
//
//   - *apd.Decimal (value.Decimal, value.MustDecimal)
//   - Temporal (value.Date, value.TimeOfDay, value.DateTime)
//   - []byte (value.Bytes)
//   - HexBytes (value.Hex)
//   - uuid.UUID (value.UUID)
//
// Any other runtime type may be stored with Ext. Whether it can be encoded
// losslessly is decided by the registry passed to the codec, not by this
// package.
//
// Example:
//
//	doc := value.NewObject(2)
//	doc.Set("amount", value.MustDecimal("22.38"))
//	doc.Set("seen_at", value.DateTime(time.Now()))
//	root := value.Obj(doc)
package value
