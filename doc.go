// Package typedjson serializes dynamically typed documents to JSON and back.
//
// Documents are value.Value graphs: nulls, booleans, integers, floats,
// strings, arrays, insertion-ordered objects and extended values. Extended
// values are types JSON cannot express natively, such as arbitrary
// precision decimals, dates and times, byte blobs and UUIDs.
//
// # Modes
//
// Plain mode (Dump, Dumps, Dumpb) projects extended values to JSON-native
// approximations. A decimal becomes its positional string, a UTC date-time
// an ISO string ending in Z, a byte blob its base64 text. The projection is
// one-way; Load reads any JSON without attempting to restore types.
//
// Typed mode (TypedDump, TypedDumps, TypedDumpb) writes every extended
// value as a string that starts with an invisible tag marker taken from
// the private use area U+F000..U+F07F, followed by the value's canonical
// text. TypedLoad restores the exact value: the same decimal scale, the
// same sub-second precision and UTC offset, the same octets.
//
//	doc := map[string]any{
//	    "amount": value.MustDecimal("22.38"),
//	    "at":     time.Now().UTC(),
//	}
//	s, _ := typedjson.TypedDumps(doc)
//	v, _ := typedjson.TypedLoads(s) // amount is *apd.Decimal again
//
// # Limitations
//
// A plain string whose first rune lies inside the reserved block cannot be
// distinguished from a tagged value. Such strings are not escaped; typed
// decoding rejects or misreads them.
//
// # Persisted State
//
// Package state builds pipeline state persistence on top of typed mode,
// with compression and versioned storage on any blobstore.Store.
package typedjson
