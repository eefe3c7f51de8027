// Package binning splits catalogs into bins of a field and steps through
// combinations of several binnings.
package binning

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/stile/catalog"
	"github.com/hupe1980/stile/mask"
)

// ErrInvalidBins is returned for bin definitions that select nothing sensible.
var ErrInvalidBins = errors.New("invalid bins")

// SimpleBin selects rows with Low <= field < High.
type SimpleBin struct {
	Field string
	Low   float64
	High  float64
	// Index is the bin's position within its binning.
	Index int
}

// Name identifies the bin in output file names, e.g. "ra_2".
func (b SimpleBin) Name() string {
	return fmt.Sprintf("%s_%d", b.Field, b.Index)
}

func (b SimpleBin) String() string {
	return fmt.Sprintf("%s in [%g, %g)", b.Field, b.Low, b.High)
}

// Contains reports whether v falls into the bin.
func (b SimpleBin) Contains(v float64) bool {
	return v >= b.Low && v < b.High
}

// Mask selects the rows of cat that fall into the bin. Rows without a
// numeric value are not selected.
func (b SimpleBin) Mask(cat catalog.Catalog) mask.Mask {
	m := make(mask.Mask, cat.Len())
	if col, ok := cat.(catalog.Columnar); ok {
		c, ok := col.Column(b.Field)
		if !ok {
			return m
		}
		for i := range m {
			v, ok := c.Float64(i)
			m[i] = ok && b.Contains(v)
		}
		return m
	}
	for i := range m {
		v, ok := catalog.Float64(cat.Record(i), b.Field)
		m[i] = ok && b.Contains(v)
	}
	return m
}

// Bin is a binning of one field.
type Bin interface {
	Bins() []SimpleBin
}

// List bins Field by explicit, strictly increasing edges.
type List struct {
	Field string
	Edges []float64
}

// NewList validates edges and returns the binning.
func NewList(field string, edges ...float64) (*List, error) {
	if len(edges) < 2 {
		return nil, fmt.Errorf("%w: %s needs at least two edges", ErrInvalidBins, field)
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return nil, fmt.Errorf("%w: %s edges not increasing at %d", ErrInvalidBins, field, i)
		}
	}
	return &List{Field: field, Edges: edges}, nil
}

// Bins returns one bin per pair of adjacent edges.
func (l *List) Bins() []SimpleBin {
	if len(l.Edges) < 2 {
		return nil
	}
	out := make([]SimpleBin, len(l.Edges)-1)
	for i := range out {
		out[i] = SimpleBin{Field: l.Field, Low: l.Edges[i], High: l.Edges[i+1], Index: i}
	}
	return out
}

// Step bins Field into N equal steps between Low and High, linear or in
// log space.
type Step struct {
	Field string
	Low   float64
	High  float64
	N     int
	Log   bool
}

// NewStep validates the range and returns the binning.
func NewStep(field string, low, high float64, n int, log bool) (*Step, error) {
	switch {
	case n < 1:
		return nil, fmt.Errorf("%w: %s needs at least one bin", ErrInvalidBins, field)
	case !(high > low):
		return nil, fmt.Errorf("%w: %s range [%g, %g) is empty", ErrInvalidBins, field, low, high)
	case log && low <= 0:
		return nil, fmt.Errorf("%w: %s log bins need a positive lower edge", ErrInvalidBins, field)
	}
	return &Step{Field: field, Low: low, High: high, N: n, Log: log}, nil
}

// Edges returns the N+1 bin edges.
func (s *Step) Edges() []float64 {
	if s.N < 1 {
		return nil
	}
	lo, hi := s.Low, s.High
	if s.Log {
		lo, hi = math.Log(lo), math.Log(hi)
	}
	width := (hi - lo) / float64(s.N)

	edges := make([]float64, s.N+1)
	for i := range edges {
		e := lo + float64(i)*width
		if s.Log {
			e = math.Exp(e)
		}
		edges[i] = e
	}
	edges[0], edges[s.N] = s.Low, s.High
	return edges
}

// Bins returns the N bins.
func (s *Step) Bins() []SimpleBin {
	return (&List{Field: s.Field, Edges: s.Edges()}).Bins()
}

// Expand returns every combination of one bin from each binning. The first
// binning varies slowest. No binnings, or any binning without bins, yields
// nil.
func Expand(bins ...Bin) [][]SimpleBin {
	if len(bins) == 0 {
		return nil
	}
	out := [][]SimpleBin{{}}
	for i := len(bins) - 1; i >= 0; i-- {
		b := bins[i].Bins()
		next := make([][]SimpleBin, 0, len(b)*len(out))
		for _, sb := range b {
			for _, rest := range out {
				combo := make([]SimpleBin, 0, len(rest)+1)
				combo = append(combo, sb)
				combo = append(combo, rest...)
				next = append(next, combo)
			}
		}
		out = next
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// MaskAll intersects the masks of a combination of bins.
func MaskAll(cat catalog.Catalog, combo []SimpleBin) mask.Mask {
	m := make(mask.Mask, cat.Len())
	for i := range m {
		m[i] = true
	}
	for _, b := range combo {
		m = m.And(b.Mask(cat))
	}
	return m
}
