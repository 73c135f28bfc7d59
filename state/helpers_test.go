package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/typedjson/value"
)

func mustValue(t testing.TB, v any) value.Value {
	t.Helper()
	val, err := value.FromAny(v)
	require.NoError(t, err)
	return val
}

func get(t testing.TB, v value.Value, path ...string) (value.Value, bool) {
	t.Helper()
	for _, p := range path {
		o, ok := v.AsObject()
		if !ok {
			return value.Value{}, false
		}
		if v, ok = o.Get(p); !ok {
			return value.Value{}, false
		}
	}
	return v, true
}

// pipelineState returns a state with two sources, the first holding two
// resources and a few extra keys.
func pipelineState(t testing.TB) value.Value {
	return mustValue(t, map[string]any{
		"sources": map[string]any{
			"github": map[string]any{
				"resources": map[string]any{
					"issues":        map[string]any{"cursor": value.MustDecimal("1024")},
					"pull_requests": map[string]any{"cursor": "abc"},
				},
				"token_refresh": map[string]any{"at": value.Date(2024, 5, 1)},
				"paging":        map[string]any{"page": 3, "size": 100},
			},
			"chess": map[string]any{
				"resources": map[string]any{
					"players": map[string]any{"seen": []byte{1, 2, 3}},
				},
			},
		},
		"pipeline": "demo",
	})
}
