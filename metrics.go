package typedjson

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/typedjson/codec"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    encodeBytes    *prometheus.CounterVec
//	    decodeLatency  prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordEncode(mode codec.Mode, size int, d time.Duration, err error) {
//	    p.encodeBytes.WithLabelValues(mode.String()).Add(float64(size))
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordEncode is called after each dump. size is the number of bytes
	// produced, err is nil if successful.
	RecordEncode(mode codec.Mode, size int, duration time.Duration, err error)

	// RecordDecode is called after each load. size is the number of input
	// bytes.
	RecordDecode(mode codec.Mode, size int, duration time.Duration, err error)

	// RecordStateSave is called after a state store persisted a document.
	RecordStateSave(size int, duration time.Duration, err error)

	// RecordStateLoad is called after a state store read a document.
	RecordStateLoad(size int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEncode(codec.Mode, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDecode(codec.Mode, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordStateSave(int, time.Duration, error)          {}
func (NoopMetricsCollector) RecordStateLoad(int, time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	EncodeCount      atomic.Int64
	EncodeErrors     atomic.Int64
	EncodeBytes      atomic.Int64
	EncodeTotalNanos atomic.Int64
	TypedEncodeCount atomic.Int64
	DecodeCount      atomic.Int64
	DecodeErrors     atomic.Int64
	DecodeBytes      atomic.Int64
	DecodeTotalNanos atomic.Int64
	TypedDecodeCount atomic.Int64
	StateSaveCount   atomic.Int64
	StateSaveErrors  atomic.Int64
	StateLoadCount   atomic.Int64
	StateLoadErrors  atomic.Int64
}

// RecordEncode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEncode(mode codec.Mode, size int, duration time.Duration, err error) {
	b.EncodeCount.Add(1)
	b.EncodeTotalNanos.Add(duration.Nanoseconds())
	if mode == codec.ModeTyped {
		b.TypedEncodeCount.Add(1)
	}
	if err != nil {
		b.EncodeErrors.Add(1)
		return
	}
	b.EncodeBytes.Add(int64(size))
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(mode codec.Mode, size int, duration time.Duration, err error) {
	b.DecodeCount.Add(1)
	b.DecodeTotalNanos.Add(duration.Nanoseconds())
	b.DecodeBytes.Add(int64(size))
	if mode == codec.ModeTyped {
		b.TypedDecodeCount.Add(1)
	}
	if err != nil {
		b.DecodeErrors.Add(1)
	}
}

// RecordStateSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStateSave(size int, duration time.Duration, err error) {
	b.StateSaveCount.Add(1)
	if err != nil {
		b.StateSaveErrors.Add(1)
	}
}

// RecordStateLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStateLoad(size int, duration time.Duration, err error) {
	b.StateLoadCount.Add(1)
	if err != nil {
		b.StateLoadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EncodeCount:      b.EncodeCount.Load(),
		EncodeErrors:     b.EncodeErrors.Load(),
		EncodeBytes:      b.EncodeBytes.Load(),
		EncodeAvgNanos:   avg(b.EncodeTotalNanos.Load(), b.EncodeCount.Load()),
		TypedEncodeCount: b.TypedEncodeCount.Load(),
		DecodeCount:      b.DecodeCount.Load(),
		DecodeErrors:     b.DecodeErrors.Load(),
		DecodeBytes:      b.DecodeBytes.Load(),
		DecodeAvgNanos:   avg(b.DecodeTotalNanos.Load(), b.DecodeCount.Load()),
		TypedDecodeCount: b.TypedDecodeCount.Load(),
		StateSaveCount:   b.StateSaveCount.Load(),
		StateSaveErrors:  b.StateSaveErrors.Load(),
		StateLoadCount:   b.StateLoadCount.Load(),
		StateLoadErrors:  b.StateLoadErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EncodeCount      int64
	EncodeErrors     int64
	EncodeBytes      int64
	EncodeAvgNanos   int64
	TypedEncodeCount int64
	DecodeCount      int64
	DecodeErrors     int64
	DecodeBytes      int64
	DecodeAvgNanos   int64
	TypedDecodeCount int64
	StateSaveCount   int64
	StateSaveErrors  int64
	StateLoadCount   int64
	StateLoadErrors  int64
}
