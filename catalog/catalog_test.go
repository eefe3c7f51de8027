package catalog

import (
	"math"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stile/table"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	tbl := NewTable(3)
	require.NoError(t, tbl.AddFloat64("ra", []float64{10, 20, 30}))
	require.NoError(t, tbl.AddInt64("classification.extendedness", []int64{1, 0, 1}))
	require.NoError(t, tbl.AddBool("calib.psf.used", []bool{true, true, false}, []bool{true, false, true}))
	return tbl
}

func TestTable(t *testing.T) {
	tbl := newTestTable(t)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"ra", "classification.extendedness", "calib.psf.used"}, tbl.Fields())

	c, ok := tbl.Column("classification.extendedness")
	require.True(t, ok)
	f, ok := c.Float64(0)
	assert.True(t, ok)
	assert.Equal(t, 1.0, f)

	psf, _ := tbl.Column("calib.psf.used")
	_, ok = psf.Bool(1)
	assert.False(t, ok, "null row")

	v, ok := tbl.Record(2).Get("ra")
	assert.True(t, ok)
	assert.Equal(t, 30.0, v)

	_, ok = tbl.Record(0).Get("missing")
	assert.False(t, ok)
}

func TestTable_AddErrors(t *testing.T) {
	tbl := NewTable(2)
	assert.Error(t, tbl.AddFloat64("ra", []float64{1}))
	require.NoError(t, tbl.AddFloat64("ra", []float64{1, 2}))
	assert.Error(t, tbl.AddFloat64("ra", []float64{1, 2}))
	assert.Error(t, tbl.AddBool("flag", []bool{true, false}, []bool{true}))
}

func TestRows(t *testing.T) {
	rows := Rows{
		{"flux.psf": 1.5, "calib.psf.used": true},
		{"flux.psf": int32(2), "calib.psf.used": nil},
	}

	assert.Equal(t, 2, rows.Len())

	f, ok := Float64(rows.Record(1), "flux.psf")
	assert.True(t, ok)
	assert.Equal(t, 2.0, f)

	_, ok = Bool(rows.Record(1), "calib.psf.used")
	assert.False(t, ok)

	b, ok := Bool(rows.Record(0), "flux.psf")
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = Float64(Rows{{"name": "x"}}.Record(0), "name")
	assert.False(t, ok)
}

func newTestRecord(t *testing.T) arrow.Record {
	t.Helper()
	mem := memory.NewGoAllocator()
	sch := arrow.NewSchema([]arrow.Field{
		{Name: "ra", Type: arrow.PrimitiveTypes.Float64},
		{Name: "classification.extendedness", Type: arrow.PrimitiveTypes.Int32},
		{Name: "calib.psf.used", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.String},
	}, nil)

	b := array.NewRecordBuilder(mem, sch)
	defer b.Release()

	b.Field(0).(*array.Float64Builder).AppendValues([]float64{10, 20, 30}, nil)
	b.Field(1).(*array.Int32Builder).AppendValues([]int32{1, 0, 1}, nil)
	b.Field(2).(*array.BooleanBuilder).AppendValues([]bool{true, true, false}, []bool{true, false, true})
	b.Field(3).(*array.StringBuilder).AppendValues([]string{"a", "b", "c"}, nil)

	rec := b.NewRecord()
	t.Cleanup(rec.Release)
	return rec
}

func TestArrow(t *testing.T) {
	cat := FromArrow(newTestRecord(t))

	assert.Equal(t, 3, cat.Len())
	assert.Equal(t, []string{"ra", "classification.extendedness", "calib.psf.used", "name"}, cat.Fields())

	ext, ok := cat.Column("classification.extendedness")
	require.True(t, ok)
	v, ok := ext.Value(1)
	assert.True(t, ok)
	assert.Equal(t, int64(0), v)

	psf, ok := cat.Column("calib.psf.used")
	require.True(t, ok)
	_, ok = psf.Bool(1)
	assert.False(t, ok)
	used, ok := psf.Bool(0)
	assert.True(t, ok)
	assert.True(t, used)

	_, ok = cat.Column("name")
	assert.False(t, ok, "string columns are not exposed")
	_, ok = cat.Column("missing")
	assert.False(t, ok)

	ra, ok := cat.Record(2).Get("ra")
	assert.True(t, ok)
	assert.Equal(t, 30.0, ra)
}

func TestSelect(t *testing.T) {
	sel := roaring.BitmapOf(0, 2)

	t.Run("Columnar", func(t *testing.T) {
		n, err := Select(newTestTable(t), sel, []string{"classification.extendedness", "ra"})
		require.NoError(t, err)
		assert.Equal(t, []string{"classification.extendedness", "ra"}, n.Names())
		assert.Equal(t, 2, n.Len())
		assert.Equal(t, []any{int64(1), 30.0}, n.Rows[1])

		_, err = Select(newTestTable(t), sel, []string{"nope"})
		assert.Error(t, err)
	})

	t.Run("Rows", func(t *testing.T) {
		rows := Rows{
			{"ra": 1.0, "g1": 0.1},
			{"ra": 2.0, "g1": 0.2},
			{"ra": 3.0},
		}
		n, err := Select(rows, sel, []string{"ra", "g1"})
		require.NoError(t, err)
		assert.Equal(t, 0.1, n.Rows[0][1])
		assert.True(t, math.IsNaN(n.Rows[1][1].(float64)))

		n, err = Select(rows, sel, []string{"nope"})
		require.NoError(t, err)
		for _, r := range n.Rows {
			assert.True(t, math.IsNaN(r[0].(float64)))
		}
	})

	t.Run("All", func(t *testing.T) {
		n, err := Select(FromArrow(newTestRecord(t)), nil, []string{"ra"})
		require.NoError(t, err)
		assert.Equal(t, 3, n.Len())
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := Select(newTestTable(t), roaring.BitmapOf(7), []string{"ra"})
		assert.Error(t, err)
	})
}

func TestFromNamed(t *testing.T) {
	n, err := table.NewNamed([]string{"ra", "classification.extendedness", "calib.psf.used"}, [][]any{
		{1.5, int64(1), int64(0)},
		{2.5, int64(0), math.NaN()},
	})
	require.NoError(t, err)

	cat := FromNamed(n)
	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, []string{"ra", "classification.extendedness", "calib.psf.used"}, cat.Fields())

	col, ok := cat.Column("calib.psf.used")
	require.True(t, ok)
	b, ok := col.Bool(0)
	assert.True(t, ok)
	assert.False(t, b)
	_, ok = col.Bool(1)
	assert.False(t, ok, "NaN is null")

	v, ok := Float64(cat.Record(1), "ra")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	_, ok = cat.Column("missing")
	assert.False(t, ok)

	sel, err := Select(cat, roaring.BitmapOf(1), []string{"ra"})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{2.5}}, sel.Rows)
}
