package codec

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/typedjson/internal/escape"
	"github.com/hupe1980/typedjson/value"
)

// Encoder renders Value graphs as JSON. It is safe for concurrent use.
type Encoder struct {
	opts Options
}

// NewEncoder returns an Encoder for opts.
func NewEncoder(opts Options) *Encoder {
	return &Encoder{opts: opts.withDefaults()}
}

// Append encodes v and appends the JSON text to dst. On error nothing is
// appended and dst is returned unchanged.
func (e *Encoder) Append(dst []byte, v value.Value) ([]byte, error) {
	s := encodeState{opts: &e.opts, buf: dst}
	if err := s.value(v, 0); err != nil {
		return dst, err
	}
	return s.buf, nil
}

// Encode writes the JSON text of v to w. The document is rendered in full
// before the first write, so a failed encode never writes partial output.
func (e *Encoder) Encode(w io.Writer, v value.Value) error {
	b, err := e.Append(nil, v)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return &WriteError{cause: err}
	}
	return nil
}

type encodeState struct {
	opts *Options
	buf  []byte
}

func (s *encodeState) value(v value.Value, depth int) error {
	switch v.Kind {
	case value.KindNull:
		s.buf = append(s.buf, "null"...)
	case value.KindBool:
		s.buf = strconv.AppendBool(s.buf, v.B)
	case value.KindInt:
		s.buf = strconv.AppendInt(s.buf, v.I64, 10)
	case value.KindFloat:
		return s.float(v.F64)
	case value.KindString:
		return s.string(v.S)
	case value.KindArray:
		return s.array(v.A, depth+1)
	case value.KindObject:
		return s.object(v.O, depth+1)
	case value.KindExtended:
		return s.extended(v.X, depth)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedValue, v.Kind)
	}
	return nil
}

// float writes f in the shortest form that parses back to f. Integral
// values keep a fractional part so they decode as floats again.
func (s *encodeState) float(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %s", ErrUnsupportedValue, strconv.FormatFloat(f, 'g', -1, 64))
	}
	start := len(s.buf)
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s.buf = strconv.AppendFloat(s.buf, f, format, -1, 64)
	if format == 'e' {
		// Clean up e-09 to e-9.
		n := len(s.buf)
		if n-start >= 4 && s.buf[n-4] == 'e' && s.buf[n-3] == '-' && s.buf[n-2] == '0' {
			s.buf[n-2] = s.buf[n-1]
			s.buf = s.buf[:n-1]
		}
	}
	for _, c := range s.buf[start:] {
		if c == '.' || c == 'e' {
			return nil
		}
	}
	s.buf = append(s.buf, ".0"...)
	return nil
}

// string rejects invalid UTF-8 rather than letting it be replaced with
// U+FFFD.
func (s *encodeState) string(str string) error {
	if !utf8.ValidString(str) {
		return fmt.Errorf("%w: string %q is not valid UTF-8", ErrUnsupportedValue, str)
	}
	b, err := gojson.MarshalWithOption(str, gojson.DisableHTMLEscape())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}
	s.buf = append(s.buf, b...)
	return nil
}

func (s *encodeState) array(a []value.Value, depth int) error {
	if s.opts.tooDeep(depth) {
		return ErrDepthExceeded
	}
	if len(a) == 0 {
		s.buf = append(s.buf, "[]"...)
		return nil
	}
	s.buf = append(s.buf, '[')
	for i := range a {
		if i > 0 {
			s.buf = append(s.buf, ',')
		}
		s.newline(depth)
		if err := s.value(a[i], depth); err != nil {
			return err
		}
	}
	s.newline(depth - 1)
	s.buf = append(s.buf, ']')
	return nil
}

func (s *encodeState) object(o *value.Object, depth int) error {
	if s.opts.tooDeep(depth) {
		return ErrDepthExceeded
	}
	if o.Len() == 0 {
		s.buf = append(s.buf, "{}"...)
		return nil
	}
	keys := o.Keys()
	if s.opts.SortKeys {
		sort.Strings(keys)
	}
	s.buf = append(s.buf, '{')
	for i, k := range keys {
		if i > 0 {
			s.buf = append(s.buf, ',')
		}
		s.newline(depth)
		if err := s.string(k); err != nil {
			return err
		}
		s.buf = append(s.buf, ':')
		v, _ := o.Get(k)
		if err := s.value(v, depth); err != nil {
			return err
		}
	}
	s.newline(depth - 1)
	s.buf = append(s.buf, '}')
	return nil
}

func (s *encodeState) newline(depth int) {
	if !s.opts.Pretty {
		return
	}
	s.buf = append(s.buf, '\n')
	for range depth {
		s.buf = append(s.buf, "  "...)
	}
}

func (s *encodeState) extended(x any, depth int) error {
	if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
		s.buf = append(s.buf, "null"...)
		return nil
	}
	h, ok := s.opts.Registry.Lookup(x)
	if s.opts.Mode == ModeTyped {
		if !ok {
			return &UnsupportedTypeError{Type: reflect.TypeOf(x)}
		}
		if vv, ok := x.(value.Validator); ok {
			if err := vv.Validate(); err != nil {
				return fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
			}
		}
		return s.string(escape.Wrap(h.Tag(), h.Text(x)))
	}
	if !ok {
		return s.string(fmt.Sprint(x))
	}
	p := h.Plain(x)
	if p.Kind == value.KindExtended {
		// A projection must not loop back into the registry.
		return s.string(fmt.Sprint(p.X))
	}
	return s.value(p, depth)
}
