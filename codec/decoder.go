package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/typedjson/internal/escape"
	"github.com/hupe1980/typedjson/registry"
	"github.com/hupe1980/typedjson/value"
)

// Decoder parses JSON into Value graphs. It is safe for concurrent use.
//
// Integers that fit into int64 decode as Int, all other numbers as Float.
// Object keys keep their document order; a repeated key keeps its first
// position and its last value.
type Decoder struct {
	opts Options
}

// NewDecoder returns a Decoder for opts. Only Mode, MaxDepth and Registry
// are used.
func NewDecoder(opts Options) *Decoder {
	return &Decoder{opts: opts.withDefaults()}
}

// Decode parses a complete JSON document. Trailing data other than
// whitespace is a syntax error.
func (d *Decoder) Decode(data []byte) (value.Value, error) {
	if !utf8.Valid(data) {
		return value.Value{}, &SyntaxError{Offset: invalidUTF8Offset(data), Msg: "invalid UTF-8"}
	}

	p := parser{data: data, opts: &d.opts}
	v, err := p.value(0)
	if err != nil {
		return value.Value{}, err
	}
	p.skipSpace()
	if p.pos != len(data) {
		return value.Value{}, p.errorf("trailing data after document")
	}

	if d.opts.Mode == ModeTyped {
		return Untag(v, d.opts.Registry)
	}
	return v, nil
}

// DecodeReader reads r to EOF and decodes the result.
func (d *Decoder) DecodeReader(r io.Reader) (value.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return value.Value{}, fmt.Errorf("read: %w", err)
	}
	return d.Decode(data)
}

// Untag returns a copy of v in which every tagged string is replaced by the
// extended value it encodes. Object keys are left alone. Strings starting
// with a reserved marker rune that is not followed by the separator are
// reported as malformed.
func Untag(v value.Value, reg *registry.Registry) (value.Value, error) {
	if reg == nil {
		reg = registry.Default()
	}
	return untag(v, reg)
}

func untag(v value.Value, reg *registry.Registry) (value.Value, error) {
	switch v.Kind {
	case value.KindString:
		return untagString(v.S, reg)
	case value.KindArray:
		out := make([]value.Value, len(v.A))
		for i := range v.A {
			u, err := untag(v.A[i], reg)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = u
		}
		return value.Array(out...), nil
	case value.KindObject:
		o := value.NewObject(v.O.Len())
		var err error
		v.O.Range(func(k string, vv value.Value) bool {
			var u value.Value
			u, err = untag(vv, reg)
			if err != nil {
				return false
			}
			o.Set(k, u)
			return true
		})
		if err != nil {
			return value.Value{}, err
		}
		return value.Obj(o), nil
	default:
		return v, nil
	}
}

func untagString(s string, reg *registry.Registry) (value.Value, error) {
	if !escape.Marked(s) {
		return value.String(s), nil
	}
	tag, text, ok := escape.Unwrap(s)
	if !ok {
		r, n := utf8.DecodeRuneInString(s)
		return value.Value{}, &MalformedValueError{
			Tag:     byte(r - escape.Base),
			Preview: preview(s[n:]),
			cause:   errors.New("missing tag separator"),
		}
	}
	h, ok := reg.LookupTag(tag)
	if !ok {
		return value.Value{}, &UnknownTagError{Tag: tag, Preview: preview(text)}
	}
	x, err := h.Parse(text)
	if err != nil {
		return value.Value{}, &MalformedValueError{Tag: tag, Preview: preview(text), cause: err}
	}
	return value.Ext(x), nil
}

func invalidUTF8Offset(data []byte) int64 {
	for i := 0; i < len(data); {
		r, n := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && n == 1 {
			return int64(i)
		}
		i += n
	}
	return int64(len(data))
}

// parser is a strict RFC 8259 recursive descent parser. Escaped string
// literals are validated here and unquoted by go-json.
type parser struct {
	data []byte
	pos  int
	opts *Options
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: int64(p.pos), Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) unexpected(context string) error {
	if p.pos >= len(p.data) {
		return p.errorf("unexpected end of input %s", context)
	}
	return p.errorf("unexpected character %q %s", p.data[p.pos], context)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.pos < len(p.data) {
		return p.data[p.pos]
	}
	return 0
}

func (p *parser) value(depth int) (value.Value, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '{':
		return p.object(depth + 1)
	case c == '[':
		return p.array(depth + 1)
	case c == '"':
		s, err := p.string()
		if err != nil {
			return value.Value{}, err
		}
		return value.String(s), nil
	case c == 't':
		return value.Bool(true), p.literal("true")
	case c == 'f':
		return value.Bool(false), p.literal("false")
	case c == 'n':
		return value.Null(), p.literal("null")
	case c == '-' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return value.Value{}, p.unexpected("looking for beginning of value")
	}
}

func (p *parser) literal(word string) error {
	if !bytes.HasPrefix(p.data[p.pos:], []byte(word)) {
		return p.errorf("invalid literal, expected %s", word)
	}
	p.pos += len(word)
	return nil
}

func (p *parser) object(depth int) (value.Value, error) {
	if p.opts.tooDeep(depth) {
		return value.Value{}, fmt.Errorf("%w at offset %d", ErrDepthExceeded, p.pos)
	}
	p.pos++ // {
	o := value.NewObject(0)
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return value.Obj(o), nil
	}
	for {
		p.skipSpace()
		if p.peek() != '"' {
			return value.Value{}, p.unexpected("looking for object key")
		}
		k, err := p.string()
		if err != nil {
			return value.Value{}, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			return value.Value{}, p.unexpected("after object key")
		}
		p.pos++
		v, err := p.value(depth)
		if err != nil {
			return value.Value{}, err
		}
		o.Set(k, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return value.Obj(o), nil
		default:
			return value.Value{}, p.unexpected("after object value")
		}
	}
}

func (p *parser) array(depth int) (value.Value, error) {
	if p.opts.tooDeep(depth) {
		return value.Value{}, fmt.Errorf("%w at offset %d", ErrDepthExceeded, p.pos)
	}
	p.pos++ // [
	a := make([]value.Value, 0, 4)
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return value.Array(a...), nil
	}
	for {
		v, err := p.value(depth)
		if err != nil {
			return value.Value{}, err
		}
		a = append(a, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return value.Array(a...), nil
		default:
			return value.Value{}, p.unexpected("after array element")
		}
	}
}

func (p *parser) string() (string, error) {
	start := p.pos
	escaped := false
	p.pos++ // opening quote
	for {
		if p.pos >= len(p.data) {
			return "", &SyntaxError{Offset: int64(start), Msg: "unterminated string"}
		}
		c := p.data[p.pos]
		switch {
		case c == '"':
			p.pos++
			raw := p.data[start:p.pos]
			if !escaped {
				return string(raw[1 : len(raw)-1]), nil
			}
			var s string
			if err := gojson.Unmarshal(raw, &s); err != nil {
				return "", &SyntaxError{Offset: int64(start), Msg: err.Error(), cause: err}
			}
			return s, nil
		case c == '\\':
			escaped = true
			if err := p.escape(); err != nil {
				return "", err
			}
		case c < 0x20:
			return "", p.errorf("invalid control character %q in string", c)
		default:
			p.pos++
		}
	}
}

// escape consumes one escape sequence starting at the backslash.
func (p *parser) escape() error {
	p.pos++
	switch p.peek() {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		p.pos++
		return nil
	case 'u':
		p.pos++
		for range 4 {
			if !isHex(p.peek()) {
				return p.unexpected("in \\u escape")
			}
			p.pos++
		}
		return nil
	default:
		return p.unexpected("in string escape")
	}
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (p *parser) digits() int {
	n := 0
	for c := p.peek(); c >= '0' && c <= '9'; c = p.peek() {
		p.pos++
		n++
	}
	return n
}

// number consumes -?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (p *parser) number() (value.Value, error) {
	start := p.pos
	isFloat := false
	if p.peek() == '-' {
		p.pos++
	}
	switch c := p.peek(); {
	case c == '0':
		p.pos++
		if c := p.peek(); c >= '0' && c <= '9' {
			return value.Value{}, p.errorf("leading zero in number")
		}
	case c >= '1' && c <= '9':
		p.digits()
	default:
		return value.Value{}, p.unexpected("in number")
	}
	if p.peek() == '.' {
		isFloat = true
		p.pos++
		if p.digits() == 0 {
			return value.Value{}, p.unexpected("after decimal point")
		}
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		isFloat = true
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		if p.digits() == 0 {
			return value.Value{}, p.unexpected("in exponent")
		}
	}

	text := string(p.data[start:p.pos])
	if !isFloat {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return value.Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return value.Value{}, &SyntaxError{Offset: int64(start), Msg: fmt.Sprintf("number %s out of range", text), cause: err}
	}
	return value.Float(f), nil
}
