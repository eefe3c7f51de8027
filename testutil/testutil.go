package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/stile/catalog"
	"github.com/hupe1980/stile/table"
)

// Catalog field names produced by Catalog. They match the fields read by
// the mask package.
const (
	FieldID           = "id"
	FieldRA           = "ra"
	FieldDec          = "dec"
	FieldG1           = "g1"
	FieldG2           = "g2"
	FieldWeight       = "w"
	FieldExtendedness = "classification.extendedness"
	FieldPSFFlux      = "flux.psf"
	FieldPSFUsed      = "calib.psf.used"
)

// ShearFields are the columns of ShearTable, in order.
var ShearFields = []string{FieldRA, FieldDec, FieldG1, FieldG2, FieldWeight}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Source is one synthetic catalog entry.
type Source struct {
	ID           int64
	RA, Dec      float64
	G1, G2       float64
	Weight       float64
	Extendedness int64
	PSFFlux      float64
	// PSFUsed is nil when the flag is missing.
	PSFUsed *bool
}

// Sources draws n sources in a 1x1 degree patch. Roughly 60% are galaxies;
// a third of the stars were used for PSF fitting and one in ten has no
// PSF flag at all. Fluxes are log-normal, shears Gaussian with sigma 0.2
// (0.01 for stars).
func (r *RNG) Sources(n int) []Source {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Source, n)
	for i := range out {
		s := Source{
			ID:     int64(i),
			RA:     10 + r.rand.Float64(),
			Dec:    -5 + r.rand.Float64(),
			Weight: 0.5 + r.rand.Float64(),
		}
		sigma := 0.2
		if r.rand.Float64() < 0.6 {
			s.Extendedness = 1
		} else {
			sigma = 0.01
			if r.rand.Intn(10) > 0 {
				used := r.rand.Intn(3) == 0
				s.PSFUsed = &used
			}
		}
		s.G1 = r.rand.NormFloat64() * sigma
		s.G2 = r.rand.NormFloat64() * sigma
		s.PSFFlux = 1000 * (1 + r.rand.ExpFloat64())
		out[i] = s
	}
	return out
}

// Catalog returns n synthetic sources as a columnar catalog.Table.
func (r *RNG) Catalog(n int) *catalog.Table {
	return TableOf(r.Sources(n))
}

// TableOf builds a columnar catalog from sources.
func TableOf(src []Source) *catalog.Table {
	n := len(src)
	ids := make([]int64, n)
	ext := make([]int64, n)
	ra, dec := make([]float64, n), make([]float64, n)
	g1, g2, w := make([]float64, n), make([]float64, n), make([]float64, n)
	flux := make([]float64, n)
	used, valid := make([]bool, n), make([]bool, n)

	for i, s := range src {
		ids[i], ext[i] = s.ID, s.Extendedness
		ra[i], dec[i] = s.RA, s.Dec
		g1[i], g2[i], w[i] = s.G1, s.G2, s.Weight
		flux[i] = s.PSFFlux
		if s.PSFUsed != nil {
			used[i], valid[i] = *s.PSFUsed, true
		}
	}

	t := catalog.NewTable(n)
	must(t.AddInt64(FieldID, ids))
	must(t.AddFloat64(FieldRA, ra))
	must(t.AddFloat64(FieldDec, dec))
	must(t.AddFloat64(FieldG1, g1))
	must(t.AddFloat64(FieldG2, g2))
	must(t.AddFloat64(FieldWeight, w))
	must(t.AddInt64(FieldExtendedness, ext))
	must(t.AddFloat64(FieldPSFFlux, flux))
	must(t.AddBool(FieldPSFUsed, used, valid))
	return t
}

// RowsOf builds a row-only catalog from sources. Missing PSF flags are
// left out of the record.
func RowsOf(src []Source) catalog.Rows {
	rows := make(catalog.Rows, len(src))
	for i, s := range src {
		rec := map[string]any{
			FieldID:           s.ID,
			FieldRA:           s.RA,
			FieldDec:          s.Dec,
			FieldG1:           s.G1,
			FieldG2:           s.G2,
			FieldWeight:       s.Weight,
			FieldExtendedness: s.Extendedness,
			FieldPSFFlux:      s.PSFFlux,
		}
		if s.PSFUsed != nil {
			rec[FieldPSFUsed] = *s.PSFUsed
		}
		rows[i] = rec
	}
	return rows
}

// ShearTable returns n rows of ra, dec, g1, g2, w as a named array.
func (r *RNG) ShearTable(n int) *table.Named {
	src := r.Sources(n)
	rows := make([][]any, n)
	for i, s := range src {
		rows[i] = []any{s.RA, s.Dec, s.G1, s.G2, s.Weight}
	}
	named, err := table.NewNamed(ShearFields, rows)
	must(err)
	return named
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
