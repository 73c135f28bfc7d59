package typedjson

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/typedjson/codec"
	"github.com/hupe1980/typedjson/value"
)

// Dump writes v to w as plain JSON.
func Dump(w io.Writer, v any, opts ...Option) error {
	return dump(w, v, codec.ModePlain, opts)
}

// Dumps returns v as a plain JSON string.
func Dumps(v any, opts ...Option) (string, error) {
	b, err := dumpb(v, codec.ModePlain, opts)
	return string(b), err
}

// Dumpb returns v as plain JSON bytes.
func Dumpb(v any, opts ...Option) ([]byte, error) {
	return dumpb(v, codec.ModePlain, opts)
}

// TypedDump writes v to w as typed JSON.
func TypedDump(w io.Writer, v any, opts ...Option) error {
	return dump(w, v, codec.ModeTyped, opts)
}

// TypedDumps returns v as a typed JSON string.
func TypedDumps(v any, opts ...Option) (string, error) {
	b, err := dumpb(v, codec.ModeTyped, opts)
	return string(b), err
}

// TypedDumpb returns v as typed JSON bytes.
func TypedDumpb(v any, opts ...Option) ([]byte, error) {
	return dumpb(v, codec.ModeTyped, opts)
}

// Load parses the JSON document read from r without restoring extended
// values.
func Load(r io.Reader, opts ...Option) (value.Value, error) {
	return load(r, codec.ModePlain, opts)
}

// Loads parses the JSON document s without restoring extended values.
func Loads(s string, opts ...Option) (value.Value, error) {
	return loadb([]byte(s), codec.ModePlain, opts)
}

// Loadb parses the JSON document b without restoring extended values.
func Loadb(b []byte, opts ...Option) (value.Value, error) {
	return loadb(b, codec.ModePlain, opts)
}

// TypedLoad parses the JSON document read from r and restores tagged
// extended values.
func TypedLoad(r io.Reader, opts ...Option) (value.Value, error) {
	return load(r, codec.ModeTyped, opts)
}

// TypedLoads parses s and restores tagged extended values.
func TypedLoads(s string, opts ...Option) (value.Value, error) {
	return loadb([]byte(s), codec.ModeTyped, opts)
}

// TypedLoadb parses b and restores tagged extended values.
func TypedLoadb(b []byte, opts ...Option) (value.Value, error) {
	return loadb(b, codec.ModeTyped, opts)
}

func toValue(v any) (value.Value, error) {
	val, err := value.FromAny(v)
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}
	return val, nil
}

func dumpb(v any, mode codec.Mode, optFns []Option) ([]byte, error) {
	o := applyOptions(optFns)
	start := time.Now()

	b, err := encode(v, mode, &o)

	o.metricsCollector.RecordEncode(mode, len(b), time.Since(start), err)
	o.logger.LogEncode(context.Background(), mode, len(b), err)
	return b, err
}

func encode(v any, mode codec.Mode, o *options) ([]byte, error) {
	val, err := toValue(v)
	if err != nil {
		return nil, err
	}
	return codec.NewEncoder(o.codecOptions(mode)).Append(nil, val)
}

func dump(w io.Writer, v any, mode codec.Mode, optFns []Option) error {
	if w == nil {
		return ErrNilWriter
	}
	o := applyOptions(optFns)
	start := time.Now()

	cw := &countingWriter{w: w}
	err := func() error {
		val, err := toValue(v)
		if err != nil {
			return err
		}
		return codec.NewEncoder(o.codecOptions(mode)).Encode(cw, val)
	}()

	o.metricsCollector.RecordEncode(mode, cw.n, time.Since(start), err)
	o.logger.LogEncode(context.Background(), mode, cw.n, err)
	return err
}

func load(r io.Reader, mode codec.Mode, optFns []Option) (value.Value, error) {
	if r == nil {
		return value.Value{}, ErrNilReader
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return value.Value{}, fmt.Errorf("read: %w", err)
	}
	return loadb(b, mode, optFns)
}

func loadb(b []byte, mode codec.Mode, optFns []Option) (value.Value, error) {
	o := applyOptions(optFns)
	start := time.Now()

	v, err := codec.NewDecoder(o.codecOptions(mode)).Decode(b)

	o.metricsCollector.RecordDecode(mode, len(b), time.Since(start), err)
	o.logger.LogDecode(context.Background(), mode, len(b), err)
	return v, err
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
