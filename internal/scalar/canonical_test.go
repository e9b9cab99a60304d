package scalar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"string", "shipped", String("shipped")},
		{"bool", true, Bool(true)},
		{"int", 42, Int(42)},
		{"int64", int64(42), Int(42)},
		{"float", 12.5, Float(12.5)},
		{"list", []any{"a", 1}, List{String("a"), Int(1)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromAny(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromAny_RejectsNestedLists(t *testing.T) {
	_, err := FromAny([]any{[]any{"nested"}})
	require.Error(t, err)
}

func TestFromAny_RejectsUnsupportedTypes(t *testing.T) {
	_, err := FromAny(struct{}{})
	require.Error(t, err)
}

func TestFromJSON_NumbersSplitIntFloat(t *testing.T) {
	v, err := FromJSON([]byte("42"))
	require.NoError(t, err)
	assert.Equal(t, Int(42), v)

	v, err = FromJSON([]byte("42.5"))
	require.NoError(t, err)
	assert.Equal(t, Float(42.5), v)
}

func TestToAny_RoundTrip(t *testing.T) {
	in := List{String("a"), Int(1), Float(2.5), Bool(false), Null{}}

	out := ToAny(in)

	assert.Equal(t, []any{"a", int64(1), 2.5, false, nil}, out)
}

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"zeta":  1,
		"alpha": 2,
		"mid":   3,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"alpha":2,"mid":3,"zeta":1}`, string(out))
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	m := map[string]any{
		"filters":  []string{`"status" = 'shipped'`},
		"page":     1,
		"pageSize": 100,
		"nested":   map[string]any{"columns": []string{"a", "b"}},
	}

	first, err := MarshalCanonical(m)
	require.NoError(t, err)

	// Map iteration order varies between runs; canonical output must not.
	for i := 0; i < 20; i++ {
		again, err := MarshalCanonical(m)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{"q": `a < b AND c > d & "e"`})
	require.NoError(t, err)

	assert.Contains(t, string(out), "<")
	assert.Contains(t, string(out), ">")
	assert.Contains(t, string(out), "&")
	assert.NotContains(t, string(out), `\u003c`)
}

func TestMarshalCanonical_WholeFloatsAsIntegers(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{"v": 3.0})
	require.NoError(t, err)
	assert.Equal(t, `{"v":3}`, string(out))

	out, err = MarshalCanonical(map[string]any{"v": 3.25})
	require.NoError(t, err)
	assert.Equal(t, `{"v":3.25}`, string(out))
}

func TestMarshalCanonical_ScalarValues(t *testing.T) {
	out, err := MarshalCanonical(List{String("x"), Int(1), Null{}})
	require.NoError(t, err)
	assert.Equal(t, `["x",1,null]`, string(out))
}

func TestMarshalCanonical_UnsupportedType(t *testing.T) {
	_, err := MarshalCanonical(make(chan int))
	require.Error(t, err)
}
