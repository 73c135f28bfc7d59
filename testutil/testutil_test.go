package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/typedjson/internal/escape"
	"github.com/hupe1980/typedjson/value"
)

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	d1 := rng.Document(3, 5)

	rng.Reset()
	d2 := rng.Document(3, 5)

	assert.True(t, d1.Equal(d2))
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestDocumentShape(t *testing.T) {
	rng := NewRNG(1)
	for range 50 {
		doc := rng.Document(3, 4)
		assert.Equal(t, value.KindObject, doc.Kind)
		assert.LessOrEqual(t, depthOf(doc), 4)
	}
}

func TestStringsAreNeverMarked(t *testing.T) {
	rng := NewRNG(2)
	for range 500 {
		assert.False(t, escape.Marked(rng.String(8)))
	}
}

func TestTemporalIsCanonical(t *testing.T) {
	rng := NewRNG(3)
	for range 200 {
		tm := rng.Temporal()
		parsed, err := value.ParseTemporal(tm.String())
		if assert.NoError(t, err) {
			assert.True(t, parsed.Equal(tm), "%s", tm)
		}
	}
}

func depthOf(v value.Value) int {
	switch v.Kind {
	case value.KindArray:
		d := 0
		for _, c := range v.A {
			d = max(d, depthOf(c))
		}
		return d + 1
	case value.KindObject:
		d := 0
		v.O.Range(func(_ string, c value.Value) bool {
			d = max(d, depthOf(c))
			return true
		})
		return d + 1
	default:
		return 0
	}
}
