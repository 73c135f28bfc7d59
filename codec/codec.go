// Package codec encodes value.Value graphs as JSON and decodes them back.
//
// Two modes exist. Plain mode projects extended values (decimals,
// temporals, byte blobs, UUIDs) to JSON-native approximations and is
// one-way. Typed mode writes every extended value as a string carrying an
// invisible tag marker, so decoding in typed mode restores the exact type
// and value.
//
// Choosing a mode is a compatibility boundary: documents written in typed
// mode must be read in typed mode to recover their extended values.
package codec

import (
	"fmt"

	"github.com/hupe1980/typedjson/value"
)

// Codec encodes and decodes Value graphs.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v value.Value) ([]byte, error)
	Unmarshal(data []byte) (value.Value, error)
	Name() string
}

// ByName returns a built-in codec by its stable name.
//
// Persisted formats can record the codec name next to the payload and
// select the codec by name when reading it back.
func ByName(name string) (Codec, bool) {
	switch name {
	case Plain{}.Name():
		return Plain{}, true
	case Typed{}.Name():
		return Typed{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for tests and benchmarks.
func MustMarshal(c Codec, v value.Value) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

var (
	plainEncoder = NewEncoder(Options{Mode: ModePlain})
	plainDecoder = NewDecoder(Options{Mode: ModePlain})
	typedEncoder = NewEncoder(Options{Mode: ModeTyped})
	typedDecoder = NewDecoder(Options{Mode: ModeTyped})
)

// Plain is the compact plain-mode codec with the default registry.
type Plain struct{}

// Marshal encodes v in plain mode.
func (Plain) Marshal(v value.Value) ([]byte, error) { return plainEncoder.Append(nil, v) }

// Unmarshal parses data without untagging.
func (Plain) Unmarshal(data []byte) (value.Value, error) { return plainDecoder.Decode(data) }

// Name returns the unique name of the codec ("json").
func (Plain) Name() string { return "json" }

// Typed is the compact typed-mode codec with the default registry.
type Typed struct{}

// Marshal encodes v in typed mode.
func (Typed) Marshal(v value.Value) ([]byte, error) { return typedEncoder.Append(nil, v) }

// Unmarshal parses data and restores tagged extended values.
func (Typed) Unmarshal(data []byte) (value.Value, error) { return typedDecoder.Decode(data) }

// Name returns the unique name of the codec ("typed-json").
func (Typed) Name() string { return "typed-json" }

// Default is the codec used for persisted state.
var Default Codec = Typed{}
