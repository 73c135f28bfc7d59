package codec

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/typedjson/value"
)

func obj(kv ...any) value.Value {
	o := value.NewObject(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1].(value.Value))
	}
	return value.Obj(o)
}

func TestByName(t *testing.T) {
	c, ok := ByName("json")
	require.True(t, ok)
	assert.Equal(t, Plain{}, c)

	c, ok = ByName("typed-json")
	require.True(t, ok)
	assert.Equal(t, Typed{}, c)

	_, ok = ByName("msgpack")
	assert.False(t, ok)

	assert.Equal(t, "typed-json", Default.Name())
}

func TestMustMarshal(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(MustMarshal(nil, obj("a", value.Int(1)))))
	assert.Panics(t, func() { MustMarshal(Plain{}, value.Float(nanValue())) })
}

func TestDecimalRoundTrip(t *testing.T) {
	in := obj("a", value.MustDecimal("22.38"))

	data, err := Typed{}.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":\"\uf064\uf00022.38\"}", string(data))

	out, err := Typed{}.Unmarshal(data)
	require.NoError(t, err)

	a, _ := out.AsObject()
	got, ok := a.Get("a")
	require.True(t, ok)
	d, ok := got.X.(*apd.Decimal)
	require.True(t, ok, "expected a decimal, got %v", got.Kind)
	assert.Equal(t, int32(-2), d.Exponent)
	assert.Equal(t, "22.38", d.String())
}

func TestBytesRoundTrip(t *testing.T) {
	in := value.Bytes([]byte("Hello World!"))

	data, err := Typed{}.Marshal(in)
	require.NoError(t, err)

	out, err := Typed{}.Unmarshal(data)
	require.NoError(t, err)
	b, ok := out.X.([]byte)
	require.True(t, ok)
	assert.Len(t, b, 12)
	assert.Equal(t, []byte("Hello World!"), b)
}

func TestDateTimeModes(t *testing.T) {
	ts := time.Date(2024, time.January, 2, 3, 4, 5, 123456000, time.UTC)
	in := obj("at", value.DateTime(ts))

	t.Run("typed", func(t *testing.T) {
		data, err := Typed{}.Marshal(in)
		require.NoError(t, err)
		assert.Contains(t, string(data), "2024-01-02T03:04:05.123456+00:00")

		out, err := Typed{}.Unmarshal(data)
		require.NoError(t, err)
		o, _ := out.AsObject()
		got, _ := o.Get("at")
		tm, ok := got.X.(value.Temporal)
		require.True(t, ok)

		off, aware := tm.Offset()
		assert.True(t, aware)
		assert.Equal(t, 0, off)
		assert.Equal(t, 6, tm.Precision())
		assert.Equal(t, 123456000, tm.Time().Nanosecond())
		assert.True(t, in.Equal(out))
	})

	t.Run("plain", func(t *testing.T) {
		data, err := Plain{}.Marshal(in)
		require.NoError(t, err)
		assert.Equal(t, `{"at":"2024-01-02T03:04:05.123456Z"}`, string(data))

		// Even a typed decoder sees nothing but a string.
		out, err := Typed{}.Unmarshal(data)
		require.NoError(t, err)
		o, _ := out.AsObject()
		got, _ := o.Get("at")
		assert.Equal(t, value.String("2024-01-02T03:04:05.123456Z"), got)
	})
}

func TestUnknownTag(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"raw runes", "{\"x\":\"\uf07a\uf000abc\"}"},
		{"escaped runes", `{"x":"\uf07a\uf000abc"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Typed{}.Unmarshal([]byte(tt.doc))
			var ute *UnknownTagError
			require.ErrorAs(t, err, &ute)
			assert.Equal(t, byte('z'), ute.Tag)
			assert.Equal(t, "abc", ute.Preview)
			assert.Contains(t, err.Error(), `'z'`)

			// Plain decoding keeps the string untouched.
			out, err := Plain{}.Unmarshal([]byte(tt.doc))
			require.NoError(t, err)
			o, _ := out.AsObject()
			got, _ := o.Get("x")
			assert.Equal(t, value.String("\uf07a\uf000abc"), got)
		})
	}
}

func TestEmptyContainers(t *testing.T) {
	for _, c := range []Codec{Plain{}, Typed{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(obj())
			require.NoError(t, err)
			assert.Equal(t, "{}", string(data))

			data, err = c.Marshal(value.Array())
			require.NoError(t, err)
			assert.Equal(t, "[]", string(data))

			out, err := c.Unmarshal([]byte("{}"))
			require.NoError(t, err)
			assert.True(t, obj().Equal(out))

			out, err = c.Unmarshal([]byte("[]"))
			require.NoError(t, err)
			assert.True(t, value.Array().Equal(out))
		})
	}

	for _, pretty := range []bool{false, true} {
		data, err := NewEncoder(Options{Pretty: pretty}).Append(nil, obj("a", obj(), "b", value.Array()))
		require.NoError(t, err)
		if pretty {
			assert.Equal(t, "{\n  \"a\":{},\n  \"b\":[]\n}", string(data))
		} else {
			assert.Equal(t, `{"a":{},"b":[]}`, string(data))
		}
	}
}

func TestDecoderRejectsTruncatedTag(t *testing.T) {
	_, err := Typed{}.Unmarshal([]byte("[\"\uf064x\"]"))
	var mve *MalformedValueError
	require.ErrorAs(t, err, &mve)
	assert.Equal(t, byte('d'), mve.Tag)
}

func TestDecoderMalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		tag     byte
		preview string
	}{
		{"decimal", "\uf064\uf000abc", 'd', "abc"},
		{"non canonical decimal", "\uf064\uf0001e2", 'd', "1e2"},
		{"temporal z", "\uf074\uf0002024-01-01T00:00:00Z", 't', "2024-01-01T00:00:00Z"},
		{"uuid upper", "\uf075\uf0006BA7B810-9DAD-11D1-80B4-00C04FD430C8", 'u', "6BA7B810-9DAD-11D1-80B4-00C04FD4..."},
		{"long bytes", "\uf062\uf000" + strings.Repeat("A", 101), 'b', strings.Repeat("A", 32) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Plain{}.Marshal(value.Array(value.String(tt.in)))
			require.NoError(t, err)

			_, err = Typed{}.Unmarshal(data)
			var mve *MalformedValueError
			require.ErrorAs(t, err, &mve)
			assert.Equal(t, tt.tag, mve.Tag)
			assert.Equal(t, tt.preview, mve.Preview)
			assert.NotNil(t, errors.Unwrap(mve))
		})
	}
}

func TestObjectKeysAreNotUntagged(t *testing.T) {
	key := "\uf064\uf0001.5"
	data, err := Plain{}.Marshal(obj(key, value.Int(1)))
	require.NoError(t, err)

	out, err := Typed{}.Unmarshal(data)
	require.NoError(t, err)
	o, _ := out.AsObject()
	assert.Equal(t, []string{key}, o.Keys())
}

func TestUntagDoesNotMutateInput(t *testing.T) {
	in := value.Array(value.String("\uf064\uf0001.5"))
	out, err := Untag(in, nil)
	require.NoError(t, err)

	assert.Equal(t, value.KindString, in.A[0].Kind)
	assert.Equal(t, value.KindExtended, out.A[0].Kind)
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}
