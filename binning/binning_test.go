package binning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stile/catalog"
	"github.com/hupe1980/stile/mask"
	"github.com/hupe1980/stile/testutil"
)

func TestList(t *testing.T) {
	l, err := NewList("ra", 0, 1, 3)
	require.NoError(t, err)

	bins := l.Bins()
	require.Len(t, bins, 2)
	assert.Equal(t, SimpleBin{Field: "ra", Low: 1, High: 3, Index: 1}, bins[1])
	assert.Equal(t, "ra_1", bins[1].Name())
	assert.Equal(t, "ra in [1, 3)", bins[1].String())

	_, err = NewList("ra", 1)
	assert.ErrorIs(t, err, ErrInvalidBins)
	_, err = NewList("ra", 0, 2, 2)
	assert.ErrorIs(t, err, ErrInvalidBins)
}

func TestStep(t *testing.T) {
	s, err := NewStep("dec", 0, 1, 4, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, s.Edges())
	assert.Len(t, s.Bins(), 4)

	lg, err := NewStep("flux", 1, 1000, 3, true)
	require.NoError(t, err)
	edges := lg.Edges()
	assert.Equal(t, 1.0, edges[0])
	assert.InDelta(t, 10, edges[1], 1e-9)
	assert.InDelta(t, 100, edges[2], 1e-9)
	assert.Equal(t, 1000.0, edges[3])

	for _, tc := range []struct {
		lo, hi float64
		n      int
		log    bool
	}{
		{0, 1, 0, false},
		{1, 1, 2, false},
		{0, 1, 2, true},
	} {
		_, err := NewStep("x", tc.lo, tc.hi, tc.n, tc.log)
		assert.ErrorIs(t, err, ErrInvalidBins)
	}
}

func TestExpand(t *testing.T) {
	a, err := NewList("a", 0, 1, 2)
	require.NoError(t, err)
	b, err := NewStep("b", 0, 3, 3, false)
	require.NoError(t, err)

	combos := Expand(a, b)
	require.Len(t, combos, 6)

	var got [][2]int
	for _, c := range combos {
		require.Len(t, c, 2)
		assert.Equal(t, "a", c[0].Field)
		assert.Equal(t, "b", c[1].Field)
		got = append(got, [2]int{c[0].Index, c[1].Index})
	}
	assert.Equal(t, [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}, got)

	assert.Nil(t, Expand())
	assert.Nil(t, Expand(a, &List{Field: "empty"}))
	assert.Len(t, Expand(b), 3)
}

func TestMask(t *testing.T) {
	rows := catalog.Rows{
		{"ra": 0.5},
		{"ra": 1.0},
		{"ra": 2.5},
		{},
	}
	b := SimpleBin{Field: "ra", Low: 1, High: 3}
	assert.Equal(t, mask.Mask{false, true, true, false}, b.Mask(rows))
	assert.Equal(t, mask.Mask{false, false, false, false}, SimpleBin{Field: "nope", Low: 0, High: 1}.Mask(rows))
}

func TestMask_LayoutsAgree(t *testing.T) {
	src := testutil.NewRNG(21).Sources(300)
	tbl, rows := testutil.TableOf(src), testutil.RowsOf(src)

	ra, err := NewStep("ra", 10, 11, 4, false)
	require.NoError(t, err)
	dec, err := NewStep("dec", -5, -4, 2, false)
	require.NoError(t, err)

	total := 0
	for _, combo := range Expand(ra, dec) {
		m := MaskAll(tbl, combo)
		assert.Equal(t, m, MaskAll(rows, combo))
		total += m.Count()
	}
	assert.Equal(t, 300, total, "bins partition the patch")
}
