package codec

import "github.com/hupe1980/typedjson/registry"

// Mode selects how extended values are written and read.
type Mode uint8

const (
	// ModePlain projects extended values to JSON-native approximations.
	// Decoding in plain mode performs no untagging.
	ModePlain Mode = iota
	// ModeTyped writes extended values as tagged strings and restores them
	// on decode.
	ModeTyped
)

func (m Mode) String() string {
	if m == ModeTyped {
		return "typed"
	}
	return "plain"
}

// DefaultMaxDepth is the nesting limit used when Options.MaxDepth is zero.
const DefaultMaxDepth = 1000

// Options configures an Encoder or a Decoder.
type Options struct {
	Mode Mode
	// SortKeys emits object keys in lexicographic byte order instead of
	// insertion order. Decoding ignores it.
	SortKeys bool
	// Pretty emits newlines and two-space indentation. Decoding ignores it.
	Pretty bool
	// MaxDepth bounds the number of nested containers. Zero means
	// DefaultMaxDepth; a negative value disables the limit.
	MaxDepth int
	// Registry resolves extended types. Nil means registry.Default().
	Registry *registry.Registry
}

func (o Options) withDefaults() Options {
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Registry == nil {
		o.Registry = registry.Default()
	}
	return o
}

func (o Options) tooDeep(depth int) bool {
	return o.MaxDepth > 0 && depth > o.MaxDepth
}
