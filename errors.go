package typedjson

import (
	"errors"

	"github.com/hupe1980/typedjson/codec"
)

var (
	// ErrDepthExceeded is returned when a document nests deeper than the
	// configured maximum.
	ErrDepthExceeded = codec.ErrDepthExceeded
	// ErrUnsupportedValue is returned for inputs JSON cannot represent.
	ErrUnsupportedValue = codec.ErrUnsupportedValue
	// ErrNilWriter is returned when Dump is called without a writer.
	ErrNilWriter = errors.New("nil writer")
	// ErrNilReader is returned when Load is called without a reader.
	ErrNilReader = errors.New("nil reader")
)

type (
	// WriteError indicates that the output sink failed.
	WriteError = codec.WriteError
	// SyntaxError indicates malformed JSON input.
	SyntaxError = codec.SyntaxError
	// UnknownTagError indicates a tagged string whose tag is not registered.
	UnknownTagError = codec.UnknownTagError
	// MalformedValueError indicates a tagged string with an invalid payload.
	MalformedValueError = codec.MalformedValueError
	// UnsupportedTypeError indicates an extended type without a handler.
	UnsupportedTypeError = codec.UnsupportedTypeError
)
