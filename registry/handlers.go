package registry

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/hupe1980/typedjson/value"
)

// Builtin tags.
const (
	TagDecimal  byte = 'd'
	TagTemporal byte = 't'
	TagBytes    byte = 'b'
	TagHexBytes byte = 'h'
	TagUUID     byte = 'u'
)

// DecimalHandler handles *apd.Decimal.
//
// Typed text is the scientific string form, which keeps coefficient and
// exponent: 1.50 stays 1.50 and 1E+2 stays 1E+2. Plain mode renders the
// reduced positional form as a string, so 1E+2 becomes "100".
func DecimalHandler() Handler {
	return NewHandler(TagDecimal,
		func(d *apd.Decimal) value.Value {
			if d == nil {
				return value.Null()
			}
			reduced, _ := new(apd.Decimal).Reduce(d)
			return value.String(reduced.Text('f'))
		},
		func(d *apd.Decimal) string { return d.Text('G') },
		func(s string) (*apd.Decimal, error) {
			d, _, err := apd.NewFromString(s)
			return d, err
		},
	)
}

// TemporalHandler handles value.Temporal.
func TemporalHandler() Handler {
	return NewHandler(TagTemporal,
		func(t value.Temporal) value.Value { return value.String(t.ISO()) },
		value.Temporal.String,
		value.ParseTemporal,
	)
}

// BytesHandler handles []byte as standard padded base64.
func BytesHandler() Handler {
	return NewHandler(TagBytes,
		func(b []byte) value.Value { return value.String(base64.StdEncoding.EncodeToString(b)) },
		base64.StdEncoding.EncodeToString,
		base64.StdEncoding.Strict().DecodeString,
	)
}

// HexBytesHandler handles value.HexBytes as lowercase hex. Plain mode adds
// a 0x prefix.
func HexBytesHandler() Handler {
	return NewHandler(TagHexBytes,
		func(h value.HexBytes) value.Value { return value.String("0x" + h.String()) },
		value.HexBytes.String,
		func(s string) (value.HexBytes, error) {
			b, err := hex.DecodeString(s)
			return value.HexBytes(b), err
		},
	)
}

// UUIDHandler handles uuid.UUID in the hyphenated lowercase form.
func UUIDHandler() Handler {
	return NewHandler(TagUUID,
		func(u uuid.UUID) value.Value { return value.String(u.String()) },
		uuid.UUID.String,
		uuid.Parse,
	)
}
