package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/schema"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		k        Kind
		expected string
	}{
		{KindBool, "Bool"},
		{KindInt, "Int"},
		{KindFloat, "Float"},
		{KindString, "String"},
		{Kind(99), "Invalid"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.k.String())
	}
}

func TestFormat_Plain(t *testing.T) {
	p := NewPlain([][]any{
		{1, 10.5, "a", true},
		{2, 11, "b", false},
	})

	n, err := Format(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"f0", "f1", "f2", "f3"}, n.Names())
	assert.Equal(t, []Field{
		{"f0", KindInt},
		{"f1", KindFloat},
		{"f2", KindString},
		{"f3", KindBool},
	}, n.Fields)
	assert.Equal(t, []int{2}, n.Shape)
	assert.Equal(t, []any{int64(2), 11.0, "b", false}, n.Rows[1])
}

func TestFormat_RoundTripValues(t *testing.T) {
	rows := [][]float64{
		{0.1, 0.2, 0.01, -0.02},
		{1.1, 1.2, 0.03, 0.04},
		{2.1, 2.2, -0.05, 0.06},
	}
	names := []string{"ra", "dec", "g1", "g2"}

	n, err := Format(NewPlainFloat(rows), WithFieldList(names))
	require.NoError(t, err)

	for j, name := range names {
		col, err := n.Float64s(name)
		require.NoError(t, err)
		for i := range rows {
			assert.Equal(t, rows[i][j], col[i])
		}
	}
}

func TestFormat_NamedIsNoop(t *testing.T) {
	n, err := NewNamed([]string{"ra", "dec"}, [][]any{{1.0, 2.0}})
	require.NoError(t, err)

	again, err := Format(n)
	require.NoError(t, err)
	assert.Same(t, n, again)
}

func TestFormat_NamedRenameCopies(t *testing.T) {
	n, err := NewNamed([]string{"a", "b"}, [][]any{{1.0, 2.0}})
	require.NoError(t, err)

	renamed, err := Format(n, WithFieldMap(map[string]int{"dec": 1}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "dec"}, renamed.Names())
	assert.Equal(t, []string{"a", "b"}, n.Names())
}

func TestFormat_OuterDimensions(t *testing.T) {
	vals := make([]any, 2*3*2)
	for i := range vals {
		vals[i] = i
	}
	n, err := Format(&Plain{Shape: []int{2, 3, 2}, Values: vals})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, n.Shape)
	assert.Equal(t, 6, n.Len())
	assert.Equal(t, []any{int64(10), int64(11)}, n.Rows[5])
}

func TestFormat_OneDimensional(t *testing.T) {
	n, err := Format(&Plain{Shape: []int{3}, Values: []any{1.0, 2.0, 3.0}})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, n.Shape)
	assert.Equal(t, 1, n.Len())
	assert.Len(t, n.Fields, 3)
}

func TestFormat_OnlyFloats(t *testing.T) {
	n, err := Format(NewPlain([][]any{{1, 2}, {3, 4}}), OnlyFloats())
	require.NoError(t, err)
	for _, f := range n.Fields {
		assert.Equal(t, KindFloat, f.Kind)
	}
	assert.Equal(t, []any{3.0, 4.0}, n.Rows[1])

	_, err = Format(NewPlain([][]any{{"x", 2}}), OnlyFloats())
	assert.ErrorIs(t, err, stile.ErrMalformedInput)
}

func TestFormat_FieldErrors(t *testing.T) {
	p := NewPlain([][]any{{1, 2, 3}})

	tests := []struct {
		name string
		opt  FormatOption
	}{
		{"ListTooShort", WithFieldList([]string{"ra", "dec"})},
		{"MapOutOfRange", WithFieldMap(map[string]int{"ra": 3})},
		{"DuplicateNames", WithFieldList([]string{"ra", "ra", "dec"})},
		{"MapRepeatsPosition", WithFieldMap(map[string]int{"ra": 0, "dec": 0})},
		{"MapNegativePosition", WithFieldMap(map[string]int{"ra": -1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Format(p, tt.opt)
			assert.ErrorIs(t, err, stile.ErrSchemaMismatch)
		})
	}
}

func TestFormat_MalformedShapes(t *testing.T) {
	tests := []struct {
		name string
		a    Array
	}{
		{"Nil", nil},
		{"NilPlain", (*Plain)(nil)},
		{"NoShape", &Plain{}},
		{"SizeMismatch", &Plain{Shape: []int{2, 2}, Values: []any{1, 2, 3}}},
		{"NoColumns", &Plain{Shape: []int{2, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Format(tt.a)
			assert.ErrorIs(t, err, stile.ErrMalformedInput)
		})
	}
}

func TestNamed_Project(t *testing.T) {
	n, err := NewNamed([]string{"ra", "dec", "g1"}, [][]any{
		{1.0, 2.0, 0.1},
		{3.0, 4.0, 0.2},
	})
	require.NoError(t, err)

	p, missing := n.Project([]string{"dec", "", "ra", "w"})
	assert.Equal(t, []string{"w"}, missing)
	assert.Equal(t, []string{"dec", "", "ra", "w"}, p.Names())
	assert.Equal(t, 2.0, p.Rows[0][0])
	assert.True(t, math.IsNaN(p.Rows[0][1].(float64)))
	assert.Equal(t, 3.0, p.Rows[1][2])
	assert.True(t, math.IsNaN(p.Rows[1][3].(float64)))

	assert.Equal(t, schema.Schema{"dec": 0, "ra": 2, "w": 3}, p.Schema())
}

func TestNamed_ColumnAccess(t *testing.T) {
	n, err := NewNamed([]string{"id", "flag"}, [][]any{{1, true}, {2, false}})
	require.NoError(t, err)

	col, ok := n.Column("flag")
	require.True(t, ok)
	assert.Equal(t, []any{true, false}, col)

	_, ok = n.Column("missing")
	assert.False(t, ok)

	ids, err := n.Float64s("id")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, ids)

	_, err = n.Float64s("flag")
	assert.Error(t, err)

	c := n.Clone()
	c.Rows[0][0] = int64(99)
	assert.Equal(t, int64(1), n.Rows[0][0])
}

func TestNewNamed_RaggedRows(t *testing.T) {
	_, err := NewNamed([]string{"a", "b"}, [][]any{{1, 2}, {3}})
	assert.Error(t, err)
}
