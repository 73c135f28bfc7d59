// Package registry maps extended runtime types to the tags and projections
// the codec uses to encode them.
//
// A Registry is immutable once built and safe for concurrent use. The
// process-wide Default registry knows decimals, temporals, byte blobs, hex
// blobs and UUIDs.
package registry

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/hupe1980/typedjson/internal/escape"
	"github.com/hupe1980/typedjson/value"
)

var (
	// ErrInvalidTag is returned for tags outside printable ASCII.
	ErrInvalidTag = errors.New("invalid tag")
	// ErrDuplicateTag is returned when two handlers share a tag.
	ErrDuplicateTag = errors.New("duplicate tag")
	// ErrDuplicateType is returned when two handlers share a runtime type.
	ErrDuplicateType = errors.New("duplicate type")
	// ErrNotCanonical is returned by Parse when the text decodes to a value
	// whose canonical text differs from the input.
	ErrNotCanonical = errors.New("text is not canonical")
)

// Handler converts values of one runtime type.
type Handler interface {
	// Tag returns the tag character written in front of typed text.
	Tag() byte
	// Type returns the runtime type the handler is registered for.
	Type() reflect.Type
	// Plain returns a JSON-native approximation of x. It never fails.
	Plain(x any) value.Value
	// Text returns the canonical lossless text of x.
	Text(x any) string
	// Parse reconstructs a value from its canonical text.
	Parse(text string) (any, error)
}

type handler[T any] struct {
	tag   byte
	typ   reflect.Type
	plain func(T) value.Value
	text  func(T) string
	parse func(string) (T, error)
}

// NewHandler returns a Handler for values of type T.
//
// plain may be nil, in which case plain mode renders the value with
// fmt.Sprint. Parse rejects any text that does not survive a
// parse-then-format round trip unchanged.
func NewHandler[T any](tag byte, plain func(T) value.Value, text func(T) string, parse func(string) (T, error)) Handler {
	return &handler[T]{
		tag:   tag,
		typ:   reflect.TypeFor[T](),
		plain: plain,
		text:  text,
		parse: parse,
	}
}

func (h *handler[T]) Tag() byte          { return h.tag }
func (h *handler[T]) Type() reflect.Type { return h.typ }

func (h *handler[T]) Plain(x any) value.Value {
	t, ok := x.(T)
	if !ok || h.plain == nil {
		return value.String(fmt.Sprint(x))
	}
	return h.plain(t)
}

func (h *handler[T]) Text(x any) string {
	return h.text(x.(T))
}

func (h *handler[T]) Parse(text string) (any, error) {
	t, err := h.parse(text)
	if err != nil {
		return nil, err
	}
	if h.text(t) != text {
		return nil, ErrNotCanonical
	}
	return t, nil
}

// Registry is an immutable set of handlers indexed by runtime type and tag.
type Registry struct {
	handlers []Handler
	byType   map[reflect.Type]Handler
	byTag    [128]Handler
}

// New builds a registry from handlers. Registration order is irrelevant.
func New(handlers ...Handler) (*Registry, error) {
	r := &Registry{
		handlers: make([]Handler, 0, len(handlers)),
		byType:   make(map[reflect.Type]Handler, len(handlers)),
	}
	for _, h := range handlers {
		tag := h.Tag()
		if !escape.ValidTag(tag) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
		}
		if prev := r.byTag[tag]; prev != nil {
			return nil, fmt.Errorf("%w: %q used by %v and %v", ErrDuplicateTag, tag, prev.Type(), h.Type())
		}
		if _, ok := r.byType[h.Type()]; ok {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateType, h.Type())
		}
		r.byTag[tag] = h
		r.byType[h.Type()] = h
		r.handlers = append(r.handlers, h)
	}
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(handlers ...Handler) *Registry {
	r, err := New(handlers...)
	if err != nil {
		panic(err)
	}
	return r
}

// With returns a new registry holding r's handlers plus hs. A handler in hs
// replaces any handler of r with the same tag or the same type.
func (r *Registry) With(hs ...Handler) (*Registry, error) {
	merged := make([]Handler, 0, len(r.handlers)+len(hs))
	for _, h := range r.handlers {
		if !overridden(h, hs) {
			merged = append(merged, h)
		}
	}
	merged = append(merged, hs...)
	return New(merged...)
}

func overridden(h Handler, hs []Handler) bool {
	for _, o := range hs {
		if o.Tag() == h.Tag() || o.Type() == h.Type() {
			return true
		}
	}
	return false
}

// Lookup returns the handler registered for x's runtime type.
func (r *Registry) Lookup(x any) (Handler, bool) {
	if r == nil {
		return nil, false
	}
	h, ok := r.byType[reflect.TypeOf(x)]
	return h, ok
}

// LookupTag returns the handler registered for tag.
func (r *Registry) LookupTag(tag byte) (Handler, bool) {
	if r == nil || tag >= byte(len(r.byTag)) {
		return nil, false
	}
	h := r.byTag[tag]
	return h, h != nil
}

// Handlers returns the registered handlers.
func (r *Registry) Handlers() []Handler {
	return append([]Handler(nil), r.handlers...)
}

var defaultRegistry = MustNew(
	DecimalHandler(),
	TemporalHandler(),
	BytesHandler(),
	HexBytesHandler(),
	UUIDHandler(),
)

// Default returns the process-wide registry with the builtin handlers.
func Default() *Registry { return defaultRegistry }
