package typedjson

import (
	"log/slog"

	"github.com/hupe1980/typedjson/codec"
	"github.com/hupe1980/typedjson/registry"
)

type options struct {
	sortKeys         bool
	pretty           bool
	maxDepth         int
	registry         *registry.Registry
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a dump or load call.
type Option func(*options)

// WithSortKeys emits object keys in lexicographic order instead of
// insertion order. Useful for hashing or diffing documents.
func WithSortKeys(sortKeys bool) Option {
	return func(o *options) {
		o.sortKeys = sortKeys
	}
}

// WithPretty emits newlines and two-space indentation.
func WithPretty(pretty bool) Option {
	return func(o *options) {
		o.pretty = pretty
	}
}

// WithMaxDepth bounds the nesting depth of encoded and decoded documents.
// Zero restores codec.DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithRegistry configures the handlers used for extended values.
//
// If nil is passed, registry.Default() is used.
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) {
		if r == nil {
			r = registry.Default()
		}
		o.registry = r
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &typedjson.BasicMetricsCollector{}
//	b, _ := typedjson.TypedDumpb(state, typedjson.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Encodes: %d, bytes: %d\n", stats.EncodeCount, stats.EncodeBytes)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := typedjson.NewJSONLogger(slog.LevelDebug)
//	s, _ := typedjson.Dumps(doc, typedjson.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = discardLogger
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

var discardLogger = NoopLogger()

func applyOptions(optFns []Option) options {
	o := options{
		registry:         registry.Default(),
		metricsCollector: NoopMetricsCollector{},
		logger:           discardLogger,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o *options) codecOptions(mode codec.Mode) codec.Options {
	return codec.Options{
		Mode:     mode,
		SortKeys: o.sortKeys,
		Pretty:   o.pretty,
		MaxDepth: o.maxDepth,
		Registry: o.registry,
	}
}
