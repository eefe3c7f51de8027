// Package corr2 captures the conventions of the corr2 two-point correlation
// tool: parameter defaults, column keywords and file arguments.
package corr2

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Params holds corr2 keyword arguments.
type Params map[string]any

// DefaultParams returns the parameters used unless overridden: angles in
// degrees, separations from 0.05 to 1 degree in 20 logarithmic bins.
func DefaultParams() Params {
	return Params{
		"ra_units":  "degrees",
		"dec_units": "degrees",
		"min_sep":   0.05,
		"max_sep":   1.0,
		"sep_units": "degrees",
		"nbins":     20,
	}
}

// Clone returns a copy of p.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	return maps.Clone(p)
}

// Merge returns a new Params with others applied over p in order.
func (p Params) Merge(others ...Params) Params {
	out := p.Clone()
	for _, o := range others {
		maps.Copy(out, o)
	}
	return out
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// Args renders p as sorted key=value command line arguments.
func (p Params) Args() []string {
	keys := p.Keys()
	args := make([]string, len(keys))
	for i, k := range keys {
		args[i] = k + "=" + formatValue(p[k])
	}
	return args
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case []string:
		return fmt.Sprint(x)
	default:
		return fmt.Sprint(v)
	}
}

// ColumnFields are the catalog fields corr2 reads by column number.
var ColumnFields = []string{"ra", "dec", "x", "y", "g1", "g2", "k", "w"}

// Columns maps ordered field names to corr2 column keywords. corr2 counts
// columns from 1, so the field at position i becomes "<field>_col" = i+1.
// Fields corr2 does not read are ignored.
func Columns(names []string) Params {
	p := Params{}
	for i, name := range names {
		if slices.Contains(ColumnFields, name) {
			p[name+"_col"] = i + 1
		}
	}
	return p
}
