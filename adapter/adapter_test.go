package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/mask"
	"github.com/hupe1980/stile/table"
	"github.com/hupe1980/stile/testutil"
)

func shearTest() *MockSysTest {
	st := &MockSysTest{}
	st.On("ShortName").Return("StarXGalaxyShear")
	st.On("ObjectsList").Return([]string{"star", "galaxy"})
	st.On("RequiredQuantities").Return([][]string{{"ra", "dec"}, {"ra", "dec", "g1", "g2", "w"}})
	return st
}

func TestBase_SetupMasks(t *testing.T) {
	st := shearTest()
	b := NewBase(st, Config{})

	require.NoError(t, b.SetupMasks())
	assert.Equal(t, []mask.ObjectType{mask.Star, mask.Galaxy}, b.ObjectTypes())
	assert.Equal(t, "StarXGalaxyShear", b.Name())

	require.NoError(t, b.SetupMasks("star PSF"))
	assert.Equal(t, []mask.ObjectType{mask.StarPSF}, b.ObjectTypes())

	err := b.SetupMasks("nonexistent-type")
	assert.ErrorIs(t, err, stile.ErrUnknownObjectType)
}

func TestBase_SetupMasks_NoObjects(t *testing.T) {
	st := &MockSysTest{}
	st.On("ShortName").Return("empty")
	st.On("ObjectsList").Return(nil)

	b := NewBase(st, Config{})
	assert.Error(t, b.SetupMasks())

	_, err := b.GetMasks(testutil.NewRNG(1).Catalog(3))
	assert.Error(t, err)
}

func TestBase_GetMasks(t *testing.T) {
	cat := testutil.NewRNG(11).Catalog(200)
	mc := &stile.BasicMetricsCollector{}
	b := NewBase(shearTest(), Config{Metrics: mc})
	require.NoError(t, b.SetupMasks())

	masks, err := b.GetMasks(cat)
	require.NoError(t, err)
	require.Len(t, masks, 2)

	assert.Equal(t, mask.MaskStar(cat), masks[0])
	assert.Equal(t, mask.MaskGalaxy(cat), masks[1])
	assert.Zero(t, masks[0].And(masks[1]).Count())

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.MaskCount)
	assert.Equal(t, int64(400), stats.MaskRows)
}

func TestExtractAndRun(t *testing.T) {
	src := testutil.NewRNG(5).Sources(100)
	tbl := testutil.TableOf(src)

	st := shearTest()
	st.On("Run", mock.Anything, Args(nil), mock.MatchedBy(func(data []*table.Named) bool {
		return len(data) == 2 &&
			assert.ObjectsAreEqual([]string{"ra", "dec"}, data[0].Names()) &&
			assert.ObjectsAreEqual([]string{"ra", "dec", "g1", "g2", "w"}, data[1].Names())
	})).Return("ok", nil).Once()

	a, err := NewStarXGalaxyShear(Config{Tests: providerFor(st)})
	require.NoError(t, err)

	data, err := Extract(a, tbl)
	require.NoError(t, err)
	masks, err := a.GetMasks(tbl)
	require.NoError(t, err)
	assert.Equal(t, masks[0].Count(), data[0].Len())
	assert.Equal(t, masks[1].Count(), data[1].Len())

	fromRows, err := Extract(a, testutil.RowsOf(src))
	require.NoError(t, err)
	assert.Equal(t, data, fromRows, "both catalog layouts extract the same data")

	out, err := Run(context.Background(), a, tbl, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	st.AssertExpectations(t)
}

func TestExtract_ColumnCountMismatch(t *testing.T) {
	st := &MockSysTest{}
	st.On("ShortName").Return("bad")
	st.On("ObjectsList").Return([]string{"star", "galaxy"})
	st.On("RequiredQuantities").Return([][]string{{"ra"}})

	b := NewBase(st, Config{})
	require.NoError(t, b.SetupMasks())
	_, err := Extract(b, testutil.NewRNG(1).Catalog(10))
	assert.ErrorIs(t, err, stile.ErrMalformedInput)
}

func providerFor(st SysTest) *MockProvider {
	p := &MockProvider{}
	p.On("StarXGalaxyDensity").Return(st)
	p.On("StarXGalaxyShear").Return(st)
	p.On("Stat", mock.Anything).Return(st)
	return p
}

func TestStarXGalaxyDensity_Unimplemented(t *testing.T) {
	st := shearTest()
	a, err := NewStarXGalaxyDensity(Config{Tests: providerFor(st)})
	require.NoError(t, err)

	_, err = a.Call(context.Background(), nil)
	var ue *stile.UnimplementedError
	require.ErrorAs(t, err, &ue)
	assert.ErrorIs(t, err, stile.ErrUnimplemented)
	st.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatsPSFFlux(t *testing.T) {
	st := &MockSysTest{}
	st.On("ShortName").Return("Stat")
	st.On("Run", mock.Anything, Args{"verbose": true, "bins": 4}, mock.Anything).Return(3.5, nil).Once()

	p := &MockProvider{}
	p.On("Stat", PSFFluxField).Return(st)

	a, err := NewStatsPSFFlux(Config{Tests: p})
	require.NoError(t, err)

	assert.Equal(t, "Statflux.psf", a.Name())
	assert.Equal(t, [][]string{{"flux.psf"}}, a.GetRequiredColumns())

	cat := testutil.NewRNG(9).Catalog(50)
	data, err := Extract(a, cat)
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.Equal(t, []string{"flux.psf"}, data[0].Names())
	assert.Equal(t, mask.MaskGalaxy(cat).Count(), data[0].Len())

	out, err := a.Call(context.Background(), Args{"bins": 4}, data...)
	require.NoError(t, err)
	assert.Equal(t, 3.5, out)
	p.AssertExpectations(t)
	st.AssertExpectations(t)
}
