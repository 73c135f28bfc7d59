package codec

import (
	"errors"
	"fmt"
	"reflect"
	"unicode/utf8"
)

var (
	// ErrDepthExceeded is returned when a document nests deeper than the
	// configured maximum.
	ErrDepthExceeded = errors.New("maximum nesting depth exceeded")
	// ErrUnsupportedValue is returned for values JSON cannot represent,
	// such as NaN or an invalid Value.
	ErrUnsupportedValue = errors.New("unsupported value")
)

// previewRunes bounds the payload excerpt carried by decode errors.
const previewRunes = 32

// WriteError indicates that the output sink failed.
//
// The original underlying error can be accessed via errors.Unwrap.
type WriteError struct {
	cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed: %v", e.cause)
}

func (e *WriteError) Unwrap() error { return e.cause }

// SyntaxError indicates malformed JSON input.
type SyntaxError struct {
	// Offset is the byte offset at which the problem was detected.
	Offset int64
	Msg    string
	cause  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.cause }

// UnknownTagError indicates a tagged string whose tag is not registered.
type UnknownTagError struct {
	Tag     byte
	Preview string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown extended tag %q (payload %q)", e.Tag, e.Preview)
}

// MalformedValueError indicates a tagged string whose payload does not
// match the grammar of its tag.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type MalformedValueError struct {
	Tag     byte
	Preview string
	cause   error
}

func (e *MalformedValueError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("malformed extended value for tag %q (payload %q)", e.Tag, e.Preview)
	}
	return fmt.Sprintf("malformed extended value for tag %q (payload %q): %v", e.Tag, e.Preview, e.cause)
}

func (e *MalformedValueError) Unwrap() error { return e.cause }

// UnsupportedTypeError indicates that typed mode met an extended value
// without a registered handler.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("no handler registered for type %v", e.Type)
}

// preview returns at most previewRunes runes of s.
func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == previewRunes {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
