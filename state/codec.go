package state

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/typedjson/codec"
	"github.com/hupe1980/typedjson/value"
)

// Compression selects the algorithm used by Compress.
type Compression uint8

const (
	// Zlib compresses at level 9. It is the default.
	Zlib Compression = iota
	// Zstd uses Zstandard at the default level.
	Zstd
	// LZ4 uses LZ4 frames.
	LZ4
	// None base64 encodes the typed JSON as is.
	None
)

func (c Compression) String() string {
	switch c {
	case Zlib:
		return "zlib"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	case None:
		return "none"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ErrUnknownCompression is returned for Compression values outside the
// declared constants.
var ErrUnknownCompression = errors.New("unknown compression")

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// Serialize encodes a state as compact typed JSON.
func Serialize(v value.Value) ([]byte, error) {
	return codec.Typed{}.Marshal(v)
}

// Deserialize decodes typed JSON produced by Serialize.
func Deserialize(data []byte) (value.Value, error) {
	return codec.Typed{}.Unmarshal(data)
}

// Compress serializes v, compresses it with c and returns the result base64
// encoded.
func Compress(v value.Value, c Compression) (string, error) {
	data, err := Serialize(v)
	if err != nil {
		return "", err
	}
	packed, err := compressBytes(data, c)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(packed), nil
}

// Decompress reverses Compress. The algorithm is detected from the payload.
// Text starting like a JSON value is parsed as typed JSON directly, so
// states stored uncompressed remain readable. Compress output never starts
// that way: the first base64 character of every supported header (and of
// uncompressed JSON) lies outside the JSON value openers.
func Decompress(s string) (value.Value, error) {
	s = strings.TrimSpace(s)
	if isRawJSON(s) {
		return Deserialize([]byte(s))
	}
	packed, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return value.Value{}, fmt.Errorf("%w: neither JSON nor base64: %w", ErrInvalidState, err)
	}
	data, err := decompressBytes(packed)
	if err != nil {
		return value.Value{}, err
	}
	return Deserialize(data)
}

// isRawJSON reports whether s starts with a byte that opens a JSON value.
func isRawJSON(s string) bool {
	if s == "" {
		return false
	}
	switch c := s[0]; {
	case c == '{', c == '[', c == '"', c == '-', c == 't', c == 'f', c == 'n':
		return true
	default:
		return c >= '0' && c <= '9'
	}
}

func compressBytes(data []byte, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	switch c {
	case Zlib:
		w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case Zstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	case LZ4:
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case None:
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
	return buf.Bytes(), nil
}

// detect reports the algorithm that produced packed.
func detect(packed []byte) Compression {
	switch {
	case bytes.HasPrefix(packed, zstdMagic):
		return Zstd
	case bytes.HasPrefix(packed, lz4Magic):
		return LZ4
	case isZlibHeader(packed):
		return Zlib
	default:
		return None
	}
}

// isZlibHeader checks the RFC 1950 header: deflate method and a check
// value that makes the first two bytes a multiple of 31.
func isZlibHeader(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	return b[0]&0x0F == 8 && b[0]>>4 <= 7 && (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}

func decompressBytes(packed []byte) ([]byte, error) {
	switch detect(packed) {
	case Zlib:
		r, err := zlib.NewReader(bytes.NewReader(packed))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case Zstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(packed, nil)
	case LZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(packed)))
	default:
		return packed, nil
	}
}
