// Package mask selects catalog rows belonging to named object classes.
//
// The five classes are a closed set:
//
//	galaxy       classification.extendedness == 1
//	star         classification.extendedness == 0
//	star bright  stars whose flux.psf exceeds the star-flux percentile
//	galaxy lens  same selection as galaxy
//	star PSF     calib.psf.used is true (missing or null counts as false)
//
// Every function accepts both catalog layouts and returns identical results
// for either.
package mask

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/catalog"
)

// Catalog field names read by the mask functions.
const (
	FieldExtendedness = "classification.extendedness"
	FieldPSFFlux      = "flux.psf"
	FieldPSFUsed      = "calib.psf.used"
)

// BrightPercentile is the percentile (on a 0-100 scale) of star fluxes that
// a bright star must exceed.
//
// NOTE: 0.9 selects nearly every star. A top-decile cut would be 90.
// NOTE: stars with a NaN or missing flux are left out of the percentile
// instead of turning the threshold into NaN.
const BrightPercentile = 0.9

// ObjectType names an object class.
type ObjectType uint8

const (
	// Galaxy selects extended sources.
	Galaxy ObjectType = iota + 1
	// Star selects point sources.
	Star
	// StarBright selects the brightest stars.
	StarBright
	// GalaxyLens selects galaxies usable as lenses.
	GalaxyLens
	// StarPSF selects stars used for PSF fitting.
	StarPSF
)

var typeNames = map[ObjectType]string{
	Galaxy:     "galaxy",
	Star:       "star",
	StarBright: "star bright",
	GalaxyLens: "galaxy lens",
	StarPSF:    "star PSF",
}

// Func computes a mask over a catalog.
type Func func(cat catalog.Catalog) Mask

var funcs = map[ObjectType]Func{
	Galaxy:     MaskGalaxy,
	Star:       MaskStar,
	StarBright: MaskBrightStar,
	GalaxyLens: MaskGalaxyLens,
	StarPSF:    MaskPSFStar,
}

// String returns the object type's catalog name, e.g. "star bright".
func (t ObjectType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// Valid reports whether t is one of the known classes.
func (t ObjectType) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// Func returns the mask function for t, or nil if t is not valid.
func (t ObjectType) Func() Func {
	return funcs[t]
}

// ObjectTypes returns all known classes in declaration order.
func ObjectTypes() []ObjectType {
	return []ObjectType{Galaxy, Star, StarBright, GalaxyLens, StarPSF}
}

// Parse maps an object type name onto its ObjectType.
func Parse(name string) (ObjectType, error) {
	for t, s := range typeNames {
		if s == name {
			return t, nil
		}
	}
	return 0, &stile.UnknownObjectTypeError{Name: name}
}

// Apply computes the mask of class t over cat.
func Apply(cat catalog.Catalog, t ObjectType) (Mask, error) {
	fn := t.Func()
	if fn == nil {
		return nil, &stile.UnknownObjectTypeError{Name: t.String()}
	}
	return fn(cat), nil
}

// ApplyName parses name and applies the corresponding mask.
func ApplyName(cat catalog.Catalog, name string) (Mask, error) {
	t, err := Parse(name)
	if err != nil {
		return nil, err
	}
	return Apply(cat, t)
}

// MaskGalaxy selects rows whose extendedness equals 1.
func MaskGalaxy(cat catalog.Catalog) Mask {
	return compare(cat, FieldExtendedness, 1)
}

// MaskStar selects rows whose extendedness equals 0.
func MaskStar(cat catalog.Catalog) Mask {
	return compare(cat, FieldExtendedness, 0)
}

// MaskGalaxyLens selects lens galaxies. Currently every galaxy qualifies.
func MaskGalaxyLens(cat catalog.Catalog) Mask {
	return MaskGalaxy(cat)
}

// MaskBrightStar selects stars brighter than the BrightPercentile of star
// fluxes. The threshold is computed over star rows only; the brightness cut
// is evaluated over all rows and then intersected with the star mask.
// Stars without a flux are ignored when computing the threshold.
func MaskBrightStar(cat catalog.Catalog) Mask {
	stars := MaskStar(cat)
	flux := floats(cat, FieldPSFFlux)

	var starFlux []float64
	for i, ok := range stars {
		if ok && !math.IsNaN(flux[i]) {
			starFlux = append(starFlux, flux[i])
		}
	}
	if len(starFlux) == 0 {
		return make(Mask, cat.Len())
	}

	threshold := Percentile(starFlux, BrightPercentile)
	bright := make(Mask, len(flux))
	for i, f := range flux {
		bright[i] = f > threshold
	}
	return stars.And(bright)
}

// MaskPSFStar selects rows flagged as used for PSF fitting.
func MaskPSFStar(cat catalog.Catalog) Mask {
	m := make(Mask, cat.Len())
	if col, ok := columnOf(cat, FieldPSFUsed); ok {
		for i := range m {
			b, ok := col.Bool(i)
			m[i] = ok && b
		}
		return m
	}
	for i := range m {
		b, ok := catalog.Bool(cat.Record(i), FieldPSFUsed)
		m[i] = ok && b
	}
	return m
}

// Percentile returns the q-th percentile (0-100) of vals using linear
// interpolation between closest ranks. vals is not modified.
func Percentile(vals []float64, q float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), vals...)
	sort.Float64s(s)

	rank := q / 100 * float64(len(s)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		return s[0]
	}
	if hi >= len(s) {
		return s[len(s)-1]
	}
	return s[lo] + (s[hi]-s[lo])*(rank-float64(lo))
}

func compare(cat catalog.Catalog, field string, want float64) Mask {
	m := make(Mask, cat.Len())
	if col, ok := columnOf(cat, field); ok {
		for i := range m {
			v, ok := col.Float64(i)
			m[i] = ok && v == want
		}
		return m
	}
	for i := range m {
		v, ok := catalog.Float64(cat.Record(i), field)
		m[i] = ok && v == want
	}
	return m
}

func floats(cat catalog.Catalog, field string) []float64 {
	out := make([]float64, cat.Len())
	if col, ok := columnOf(cat, field); ok {
		for i := range out {
			v, ok := col.Float64(i)
			if !ok {
				v = math.NaN()
			}
			out[i] = v
		}
		return out
	}
	for i := range out {
		v, ok := catalog.Float64(cat.Record(i), field)
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

func columnOf(cat catalog.Catalog, field string) (catalog.Column, bool) {
	col, ok := cat.(catalog.Columnar)
	if !ok {
		return nil, false
	}
	return col.Column(field)
}

// Mask is a per-row selection.
type Mask []bool

// Count returns the number of selected rows.
func (m Mask) Count() int {
	n := 0
	for _, b := range m {
		if b {
			n++
		}
	}
	return n
}

// And returns the intersection of m and o. Rows beyond the shorter mask are
// unselected.
func (m Mask) And(o Mask) Mask {
	out := make(Mask, max(len(m), len(o)))
	for i := range min(len(m), len(o)) {
		out[i] = m[i] && o[i]
	}
	return out
}

// SubsetOf reports whether every row selected by m is selected by o.
func (m Mask) SubsetOf(o Mask) bool {
	for i, b := range m {
		if b && (i >= len(o) || !o[i]) {
			return false
		}
	}
	return true
}

// Bitmap returns the selected row indices as a roaring bitmap.
func (m Mask) Bitmap() *roaring.Bitmap {
	bm := roaring.New()
	for i, b := range m {
		if b {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// FromBitmap expands a bitmap of row indices into a Mask of n rows.
// Indices at or beyond n are dropped.
func FromBitmap(bm *roaring.Bitmap, n int) Mask {
	m := make(Mask, n)
	it := bm.Iterator()
	for it.HasNext() {
		i := int(it.Next())
		if i >= n {
			break
		}
		m[i] = true
	}
	return m
}
