package value

import (
	"encoding/hex"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// HexBytes is a binary blob whose preferred text form is hexadecimal
// rather than base64. Hashes and chain addresses are typical HexBytes.
type HexBytes []byte

// String returns the lowercase hex encoding without a prefix.
func (h HexBytes) String() string { return hex.EncodeToString(h) }

// Decimal returns an extended Value holding d. The caller must not modify d
// afterwards.
func Decimal(d *apd.Decimal) Value { return Ext(d) }

// MustDecimal parses s as a decimal and panics if it is malformed.
// Trailing zeros are significant: "1.50" keeps an exponent of -2.
func MustDecimal(s string) Value {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		panic("value: invalid decimal " + s + ": " + err.Error())
	}
	return Ext(d)
}

// Bytes returns an extended Value holding b.
func Bytes(b []byte) Value { return Ext(b) }

// Hex returns an extended Value holding b rendered as hex.
func Hex(b []byte) Value { return Ext(HexBytes(b)) }

// UUID returns an extended Value holding u.
func UUID(u uuid.UUID) Value { return Ext(u) }

// Time returns an extended Value holding t.
func Time(t Temporal) Value { return Ext(t) }

// DateTime returns an aware date-time Value for t.
func DateTime(t time.Time) Value { return Ext(DateTimeOf(t)) }
