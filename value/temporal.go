package value

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TemporalKind distinguishes calendar dates, times of day and date-times.
type TemporalKind uint8

const (
	// TemporalDate is a calendar date without a time of day.
	TemporalDate TemporalKind = iota + 1
	// TemporalTime is a time of day without a date.
	TemporalTime
	// TemporalDateTime is a date combined with a time of day.
	TemporalDateTime
)

func (k TemporalKind) String() string {
	switch k {
	case TemporalDate:
		return "date"
	case TemporalTime:
		return "time"
	case TemporalDateTime:
		return "datetime"
	default:
		return "invalid"
	}
}

// ErrInvalidTemporal is returned when text is not a canonical temporal.
var ErrInvalidTemporal = errors.New("invalid temporal text")

// Temporal is a calendar value: a date, a time of day or a date-time.
//
// Times may be naive (no UTC offset) or aware. The number of fractional
// second digits is part of the value, so 12:00:00.500 and 12:00:00.5 are
// different temporals even though they denote the same instant.
type Temporal struct {
	kind      TemporalKind
	wall      time.Time
	aware     bool
	offset    int
	precision uint8
}

// Date returns a calendar date.
func Date(year int, month time.Month, day int) Temporal {
	return Temporal{
		kind: TemporalDate,
		wall: time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
	}
}

// TimeOfDay returns a naive time of day with precision fractional digits.
// nsec is truncated to the requested precision.
func TimeOfDay(hour, minute, sec, nsec, precision int) Temporal {
	p := clampPrecision(precision)
	return Temporal{
		kind:      TemporalTime,
		wall:      time.Date(1, time.January, 1, hour, minute, sec, truncateNanos(nsec, p), time.UTC),
		precision: p,
	}
}

// NaiveDateTime returns a date-time without a UTC offset.
func NaiveDateTime(year int, month time.Month, day, hour, minute, sec, nsec, precision int) Temporal {
	p := clampPrecision(precision)
	return Temporal{
		kind:      TemporalDateTime,
		wall:      time.Date(year, month, day, hour, minute, sec, truncateNanos(nsec, p), time.UTC),
		precision: p,
	}
}

// DateTimeOf returns an aware date-time carrying t's wall clock and offset.
// The precision is the smallest number of digits that represents t's
// nanoseconds exactly.
func DateTimeOf(t time.Time) Temporal {
	_, off := t.Zone()
	return Temporal{
		kind:      TemporalDateTime,
		wall:      wallClock(t),
		aware:     true,
		offset:    off,
		precision: minimalPrecision(t.Nanosecond()),
	}
}

// WithOffset returns a copy of t that is aware with the given offset in
// seconds east of UTC. The wall clock fields are kept. Dates are returned
// unchanged.
func (t Temporal) WithOffset(seconds int) Temporal {
	if t.kind == TemporalDate {
		return t
	}
	t.aware = true
	t.offset = seconds
	return t
}

// Naive returns a copy of t without a UTC offset.
func (t Temporal) Naive() Temporal {
	t.aware = false
	t.offset = 0
	return t
}

// WithPrecision returns a copy of t with precision fractional digits,
// truncating sub-second digits that do not fit.
func (t Temporal) WithPrecision(precision int) Temporal {
	if t.kind == TemporalDate {
		return t
	}
	p := clampPrecision(precision)
	t.precision = p
	t.wall = t.wall.Add(time.Duration(truncateNanos(t.wall.Nanosecond(), p) - t.wall.Nanosecond()))
	return t
}

// Validate reports whether t can be written as canonical text and parsed
// back: the kind must be set, years must lie in 0000..9999 and offsets
// within ±23:59:59.
func (t Temporal) Validate() error {
	switch t.kind {
	case TemporalDate, TemporalDateTime:
		if y := t.wall.Year(); y < 0 || y > 9999 {
			return fmt.Errorf("%w: year %d outside 0000..9999", ErrInvalidTemporal, y)
		}
	case TemporalTime:
	default:
		return fmt.Errorf("%w: zero temporal", ErrInvalidTemporal)
	}
	if t.aware && (t.offset <= -maxOffset || t.offset >= maxOffset) {
		return fmt.Errorf("%w: UTC offset %ds out of range", ErrInvalidTemporal, t.offset)
	}
	return nil
}

const maxOffset = 24 * 3600

// Kind returns the temporal kind. The zero Temporal has an invalid kind.
func (t Temporal) Kind() TemporalKind { return t.kind }

// Aware reports whether t carries a UTC offset.
func (t Temporal) Aware() bool { return t.aware }

// Offset returns the UTC offset in seconds and whether t is aware.
func (t Temporal) Offset() (int, bool) { return t.offset, t.aware }

// Precision returns the number of fractional second digits.
func (t Temporal) Precision() int { return int(t.precision) }

// Time returns t as a time.Time. Naive values are placed in UTC; times of
// day are placed on January 1st of year 1.
func (t Temporal) Time() time.Time {
	if !t.aware {
		return t.wall
	}
	y, mo, d := t.wall.Date()
	h, mi, s := t.wall.Clock()
	return time.Date(y, mo, d, h, mi, s, t.wall.Nanosecond(), time.FixedZone("", t.offset))
}

// EqualValue implements Equaler.
func (t Temporal) EqualValue(other any) bool {
	o, ok := other.(Temporal)
	return ok && t.Equal(o)
}

// Equal reports whether t and o are identical, including kind, offset and
// precision.
func (t Temporal) Equal(o Temporal) bool {
	return t.kind == o.kind &&
		t.aware == o.aware &&
		t.offset == o.offset &&
		t.precision == o.precision &&
		t.wall.Equal(o.wall)
}

// String returns the canonical text of t. The UTC offset is always written
// numerically, never as Z.
func (t Temporal) String() string {
	var b strings.Builder
	b.Grow(32)
	t.appendCanonical(&b)
	return b.String()
}

// ISO returns an ISO 8601 rendering for JSON consumers. It equals String
// except that aware date-times in UTC end in Z.
func (t Temporal) ISO() string {
	s := t.String()
	if t.kind == TemporalDateTime && t.aware && t.offset == 0 {
		return strings.TrimSuffix(s, "+00:00") + "Z"
	}
	return s
}

func (t Temporal) appendCanonical(b *strings.Builder) {
	switch t.kind {
	case TemporalDate:
		b.WriteString(t.wall.Format(time.DateOnly))
	case TemporalTime:
		t.appendClock(b)
	case TemporalDateTime:
		b.WriteString(t.wall.Format(time.DateOnly))
		b.WriteByte('T')
		t.appendClock(b)
	default:
		b.WriteString("invalid")
	}
}

func (t Temporal) appendClock(b *strings.Builder) {
	b.WriteString(t.wall.Format(time.TimeOnly))
	if t.precision > 0 {
		frac := fmt.Sprintf("%09d", t.wall.Nanosecond())
		b.WriteByte('.')
		b.WriteString(frac[:t.precision])
	}
	if !t.aware {
		return
	}
	off := t.offset
	sign := byte('+')
	if off < 0 {
		sign = '-'
		off = -off
	}
	b.WriteByte(sign)
	fmt.Fprintf(b, "%02d:%02d", off/3600, off/60%60)
	if off%60 != 0 {
		fmt.Fprintf(b, ":%02d", off%60)
	}
}

// ParseTemporal parses the canonical text produced by Temporal.String.
// Any other spelling of the same value is rejected.
func ParseTemporal(s string) (Temporal, error) {
	t, err := parseTemporal(s)
	if err != nil {
		return Temporal{}, fmt.Errorf("%w: %q: %w", ErrInvalidTemporal, s, err)
	}
	if t.String() != s {
		return Temporal{}, fmt.Errorf("%w: %q is not canonical", ErrInvalidTemporal, s)
	}
	return t, nil
}

func parseTemporal(s string) (Temporal, error) {
	if len(s) >= 10 && s[4] == '-' {
		d, err := time.Parse(time.DateOnly, s[:10])
		if err != nil {
			return Temporal{}, err
		}
		if len(s) == 10 {
			return Temporal{kind: TemporalDate, wall: d}, nil
		}
		if s[10] != 'T' {
			return Temporal{}, errors.New("missing date-time separator")
		}
		t, err := parseClock(s[11:])
		if err != nil {
			return Temporal{}, err
		}
		t.kind = TemporalDateTime
		t.wall = time.Date(d.Year(), d.Month(), d.Day(), t.wall.Hour(), t.wall.Minute(), t.wall.Second(), t.wall.Nanosecond(), time.UTC)
		return t, nil
	}
	t, err := parseClock(s)
	if err != nil {
		return Temporal{}, err
	}
	t.kind = TemporalTime
	return t, nil
}

// parseClock parses HH:MM:SS[.fffffffff][±HH:MM[:SS]].
func parseClock(s string) (Temporal, error) {
	if len(s) < 8 || s[2] != ':' || s[5] != ':' {
		return Temporal{}, errors.New("malformed time of day")
	}
	hour, err1 := digits(s[0:2])
	minute, err2 := digits(s[3:5])
	sec, err3 := digits(s[6:8])
	if err := errors.Join(err1, err2, err3); err != nil {
		return Temporal{}, err
	}
	if hour > 23 || minute > 59 || sec > 59 {
		return Temporal{}, errors.New("time of day out of range")
	}
	rest := s[8:]

	var nsec int
	var precision uint8
	if strings.HasPrefix(rest, ".") {
		end := 1
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		frac := rest[1:end]
		if len(frac) == 0 || len(frac) > 9 {
			return Temporal{}, errors.New("fractional seconds must have 1 to 9 digits")
		}
		n, err := digits(frac)
		if err != nil {
			return Temporal{}, err
		}
		for i := len(frac); i < 9; i++ {
			n *= 10
		}
		nsec = n
		precision = uint8(len(frac))
		rest = rest[end:]
	}

	t := Temporal{
		wall:      time.Date(1, time.January, 1, hour, minute, sec, nsec, time.UTC),
		precision: precision,
	}
	if rest == "" {
		return t, nil
	}

	off, err := parseOffset(rest)
	if err != nil {
		return Temporal{}, err
	}
	t.aware = true
	t.offset = off
	return t, nil
}

func parseOffset(s string) (int, error) {
	if len(s) != 6 && len(s) != 9 {
		return 0, errors.New("malformed UTC offset")
	}
	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, errors.New("malformed UTC offset")
	}
	if s[3] != ':' || (len(s) == 9 && s[6] != ':') {
		return 0, errors.New("malformed UTC offset")
	}
	h, err1 := digits(s[1:3])
	m, err2 := digits(s[4:6])
	var sec int
	var err3 error
	if len(s) == 9 {
		sec, err3 = digits(s[7:9])
	}
	if err := errors.Join(err1, err2, err3); err != nil {
		return 0, err
	}
	if h > 23 || m > 59 || sec > 59 {
		return 0, errors.New("UTC offset out of range")
	}
	return sign * (h*3600 + m*60 + sec), nil
}

func digits(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("unexpected %q", s[i])
		}
	}
	return strconv.Atoi(s)
}

func wallClock(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
}

func clampPrecision(p int) uint8 {
	switch {
	case p < 0:
		return 0
	case p > 9:
		return 9
	default:
		return uint8(p)
	}
}

func truncateNanos(nsec int, precision uint8) int {
	div := 1
	for i := precision; i < 9; i++ {
		div *= 10
	}
	return nsec / div * div
}

func minimalPrecision(nsec int) uint8 {
	if nsec == 0 {
		return 0
	}
	p := uint8(9)
	for nsec%10 == 0 {
		nsec /= 10
		p--
	}
	return p
}
