package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/typedjson/internal/escape"
	"github.com/hupe1980/typedjson/testutil"
	"github.com/hupe1980/typedjson/value"
)

func TestTypedRoundTripProperty(t *testing.T) {
	rng := testutil.NewRNG(4711)
	for i := range 300 {
		in := rng.Value(4, 5)
		for _, pretty := range []bool{false, true} {
			data, err := NewEncoder(Options{Mode: ModeTyped, Pretty: pretty}).Append(nil, in)
			require.NoError(t, err, "case %d", i)

			out, err := Typed{}.Unmarshal(data)
			require.NoError(t, err, "case %d: %s", i, data)
			require.True(t, in.Equal(out), "case %d: %s", i, data)
		}
	}
}

func TestPlainIsTotalProperty(t *testing.T) {
	rng := testutil.NewRNG(42)
	for i := range 300 {
		in := rng.Value(4, 5)
		data, err := Plain{}.Marshal(in)
		require.NoError(t, err, "case %d", i)

		out, err := Plain{}.Unmarshal(data)
		require.NoError(t, err, "case %d: %s", i, data)
		assert.False(t, containsExtended(out))

		// Plain output never carries a tag that a typed decoder would act on.
		typed, err := Typed{}.Unmarshal(data)
		require.NoError(t, err, "case %d: %s", i, data)
		assert.True(t, out.Equal(typed))
	}
}

func TestFormattingOnlyChangesWhitespace(t *testing.T) {
	rng := testutil.NewRNG(7)
	for i := range 200 {
		in := rng.Document(3, 5)
		for _, mode := range []Mode{ModePlain, ModeTyped} {
			compact, err := NewEncoder(Options{Mode: mode}).Append(nil, in)
			require.NoError(t, err)
			pretty, err := NewEncoder(Options{Mode: mode, Pretty: true}).Append(nil, in)
			require.NoError(t, err)

			assert.Equal(t, string(compact), stripWhitespace(pretty), "case %d", i)

			a, err := NewDecoder(Options{Mode: mode}).Decode(compact)
			require.NoError(t, err)
			b, err := NewDecoder(Options{Mode: mode}).Decode(pretty)
			require.NoError(t, err)
			assert.True(t, a.Equal(b))
		}
	}
}

func TestSortKeysProperty(t *testing.T) {
	rng := testutil.NewRNG(99)
	for range 100 {
		in := rng.Document(2, 8)
		data, err := NewEncoder(Options{SortKeys: true}).Append(nil, in)
		require.NoError(t, err)

		out, err := Plain{}.Unmarshal(data)
		require.NoError(t, err)
		assertSortedKeys(t, out)
	}
}

func TestUserStringsDoNotCollide(t *testing.T) {
	rng := testutil.NewRNG(5)
	for range 1000 {
		s := rng.String(12)
		_, _, ok := escape.Unwrap(s)
		assert.False(t, ok)

		out, err := Typed{}.Unmarshal(MustMarshal(Plain{}, value.String(s)))
		require.NoError(t, err)
		assert.Equal(t, value.String(s), out)
	}
}

func FuzzDecode(f *testing.F) {
	f.Add([]byte(`{"a":[1,2.5,"x",null,true]}`))
	f.Add([]byte("[\"\uf064\uf0001.0\"]"))
	f.Add([]byte(`"\uf07a"`))
	f.Add([]byte("01"))
	f.Add([]byte("[1.e3]"))
	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := Typed{}.Unmarshal(data)
		if err != nil {
			return
		}
		if !json.Valid(data) {
			t.Fatalf("accepted invalid JSON %q", data)
		}
		// Anything that decodes must encode and decode to the same graph.
		again, err := Typed{}.Marshal(v)
		if err != nil {
			t.Fatalf("re-encode %q: %v", data, err)
		}
		w, err := Typed{}.Unmarshal(again)
		if err != nil {
			t.Fatalf("re-decode %q: %v", again, err)
		}
		if !v.Equal(w) {
			t.Fatalf("round trip changed %q into %q", data, again)
		}
	})
}

func containsExtended(v value.Value) bool {
	switch v.Kind {
	case value.KindExtended:
		return true
	case value.KindArray:
		for _, c := range v.A {
			if containsExtended(c) {
				return true
			}
		}
	case value.KindObject:
		found := false
		v.O.Range(func(_ string, c value.Value) bool {
			found = containsExtended(c)
			return !found
		})
		return found
	}
	return false
}

func assertSortedKeys(t *testing.T, v value.Value) {
	t.Helper()
	switch v.Kind {
	case value.KindArray:
		for _, c := range v.A {
			assertSortedKeys(t, c)
		}
	case value.KindObject:
		keys := v.O.Keys()
		for i := 1; i < len(keys); i++ {
			assert.Less(t, keys[i-1], keys[i])
		}
		v.O.Range(func(_ string, c value.Value) bool {
			assertSortedKeys(t, c)
			return true
		})
	}
}

// stripWhitespace removes JSON whitespace outside string literals.
func stripWhitespace(b []byte) string {
	out := make([]byte, 0, len(b))
	inString := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case inString && c == '\\':
			out = append(out, c, b[i+1])
			i++
			continue
		case c == '"':
			inString = !inString
		case !inString && (c == ' ' || c == '\n' || c == '\t' || c == '\r'):
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
