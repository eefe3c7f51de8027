package catalog

import (
	"math"

	"github.com/hupe1980/stile/table"
)

// Named exposes a named array as a columnar catalog, e.g. a catalog read
// back from an ASCII table. NaN values count as null.
type Named struct {
	n *table.Named
}

// FromNamed wraps n without copying it.
func FromNamed(n *table.Named) *Named {
	return &Named{n: n}
}

// Len returns the number of rows.
func (c *Named) Len() int { return c.n.Len() }

// Fields returns the column names.
func (c *Named) Fields() []string { return c.n.Names() }

// Record returns row i.
func (c *Named) Record(i int) Record {
	return columnarRecord{cat: c, row: i}
}

// Column returns the named column.
func (c *Named) Column(field string) (Column, bool) {
	idx := c.n.Index(field)
	if idx < 0 {
		return nil, false
	}
	return namedColumn{rows: c.n.Rows, idx: idx}, true
}

type namedColumn struct {
	rows [][]any
	idx  int
}

func (c namedColumn) Len() int { return len(c.rows) }

func (c namedColumn) Value(i int) (any, bool) {
	v := c.rows[i][c.idx]
	if v == nil {
		return nil, false
	}
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return nil, false
	}
	return v, true
}

func (c namedColumn) Float64(i int) (float64, bool) {
	v, ok := c.Value(i)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func (c namedColumn) Bool(i int) (bool, bool) {
	v, ok := c.Value(i)
	if !ok {
		return false, false
	}
	if b, ok := v.(bool); ok {
		return b, true
	}
	f, ok := toFloat(v)
	if !ok {
		return false, false
	}
	return f != 0, true
}
