package testutil

import (
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/hupe1980/typedjson/value"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	r.rand.Read(b)
	return b
}

// alphabet mixes ASCII, characters JSON must escape, HTML-sensitive
// characters and multi-byte runes. It never contains reserved marker runes.
var alphabet = []rune("abcXYZ019 _-./\"\\\n\t\x01<>&'äöüß€日本語🙂 ")

// String returns a random string of up to maxLen runes.
func (r *RNG) String(maxLen int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringLocked(maxLen)
}

func (r *RNG) stringLocked(maxLen int) string {
	n := r.rand.Intn(maxLen + 1)
	out := make([]rune, n)
	for i := range out {
		out[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return string(out)
}

// Decimal returns a random finite decimal with up to 30 coefficient digits
// and an exponent in [-12, 12]. Trailing zeros are kept.
func (r *RNG) Decimal() *apd.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decimalLocked()
}

func (r *RNG) decimalLocked() *apd.Decimal {
	digits := 1 + r.rand.Intn(30)
	coeff := make([]byte, digits)
	for i := range coeff {
		coeff[i] = byte('0' + r.rand.Intn(10))
	}
	sign := ""
	if r.rand.Intn(2) == 0 {
		sign = "-"
	}
	d, _, err := apd.NewFromString(sign + string(coeff) + "E" + strconv.Itoa(r.rand.Intn(25)-12))
	if err != nil {
		panic(err)
	}
	return d
}

// Temporal returns a random date, time of day or date-time. Times and
// date-times may be naive or carry an offset, with 0 to 9 fractional digits.
func (r *RNG) Temporal() value.Temporal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.temporalLocked()
}

func (r *RNG) temporalLocked() value.Temporal {
	year := 1 + r.rand.Intn(9999)
	month := time.Month(1 + r.rand.Intn(12))
	day := 1 + r.rand.Intn(28)
	hour, minute, sec := r.rand.Intn(24), r.rand.Intn(60), r.rand.Intn(60)
	nsec := r.rand.Intn(1_000_000_000)
	precision := r.rand.Intn(10)

	var t value.Temporal
	switch r.rand.Intn(3) {
	case 0:
		return value.Date(year, month, day)
	case 1:
		t = value.TimeOfDay(hour, minute, sec, nsec, precision)
	default:
		t = value.NaiveDateTime(year, month, day, hour, minute, sec, nsec, precision)
	}
	if r.rand.Intn(2) == 0 {
		// Offsets up to +-18h in whole minutes, occasionally with seconds.
		off := (r.rand.Intn(2*18*60+1) - 18*60) * 60
		if r.rand.Intn(8) == 0 {
			off += r.rand.Intn(60)
		}
		t = t.WithOffset(off)
	}
	return t
}

// UUID returns a random version 4 UUID.
func (r *RNG) UUID() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uuidLocked()
}

func (r *RNG) uuidLocked() uuid.UUID {
	var u uuid.UUID
	r.rand.Read(u[:])
	u[6] = (u[6] & 0x0f) | 0x40
	u[8] = (u[8] & 0x3f) | 0x80
	return u
}

// Extended returns a random extended Value of one of the builtin types.
func (r *RNG) Extended() value.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.extendedLocked()
}

func (r *RNG) extendedLocked() value.Value {
	switch r.rand.Intn(5) {
	case 0:
		return value.Decimal(r.decimalLocked())
	case 1:
		return value.Time(r.temporalLocked())
	case 2:
		b := make([]byte, r.rand.Intn(64))
		r.rand.Read(b)
		return value.Bytes(b)
	case 3:
		b := make([]byte, r.rand.Intn(32))
		r.rand.Read(b)
		return value.Hex(b)
	default:
		return value.UUID(r.uuidLocked())
	}
}

// Scalar returns a random null, bool, int, finite float or string Value.
func (r *RNG) Scalar() value.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scalarLocked()
}

func (r *RNG) scalarLocked() value.Value {
	switch r.rand.Intn(6) {
	case 0:
		return value.Null()
	case 1:
		return value.Bool(r.rand.Intn(2) == 0)
	case 2:
		return value.Int(r.rand.Int63() - r.rand.Int63())
	case 3:
		return value.Int(int64(r.rand.Intn(2000) - 1000))
	case 4:
		f := r.rand.NormFloat64() * math.Pow(10, float64(r.rand.Intn(40)-20))
		return value.Float(f)
	default:
		return value.String(r.stringLocked(16))
	}
}

// Value returns a random Value nested at most depth containers deep, with
// at most width children per container.
func (r *RNG) Value(depth, width int) value.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.valueLocked(depth, width)
}

func (r *RNG) valueLocked(depth, width int) value.Value {
	n := 4
	if depth > 0 {
		n = 6
	}
	switch r.rand.Intn(n) {
	case 0, 1:
		return r.scalarLocked()
	case 2, 3:
		return r.extendedLocked()
	case 4:
		arr := make([]value.Value, r.rand.Intn(width+1))
		for i := range arr {
			arr[i] = r.valueLocked(depth-1, width)
		}
		return value.Array(arr...)
	default:
		return r.objectLocked(depth-1, width)
	}
}

// Document returns a random object Value nested at most depth levels deep.
func (r *RNG) Document(depth, width int) value.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.objectLocked(depth, width)
}

func (r *RNG) objectLocked(depth, width int) value.Value {
	n := r.rand.Intn(width + 1)
	o := value.NewObject(n)
	for i := range n {
		// Random prefix plus index keeps keys unique.
		o.Set(r.stringLocked(6)+strconv.Itoa(i), r.valueLocked(depth, width))
	}
	return value.Obj(o)
}
