// Package catalog abstracts source catalogs: ordered records exposing named
// fields. Catalogs come in two physical layouts, a columnar one (fast, read
// column by column) and a row-iterable one; consumers should prefer the
// Columnar interface when a catalog implements it and fall back to records
// otherwise.
package catalog

import (
	"fmt"
	"slices"
)

// Record is a single catalog row.
type Record interface {
	// Get returns the value of field. ok is false if the field is absent or
	// null.
	Get(field string) (v any, ok bool)
}

// Catalog is an ordered, immutable sequence of records.
type Catalog interface {
	Len() int
	Record(i int) Record
}

// Column is a read-only view of one field across all rows.
type Column interface {
	Len() int
	// Value returns the raw value at row i; ok is false for nulls.
	Value(i int) (v any, ok bool)
	// Float64 returns row i as a float64; ok is false for nulls and
	// non-numeric values.
	Float64(i int) (v float64, ok bool)
	// Bool returns row i as a bool; numeric values are true when non-zero.
	Bool(i int) (v bool, ok bool)
}

// Columnar is implemented by catalogs that can hand out whole columns.
type Columnar interface {
	Catalog
	Column(field string) (Column, bool)
}

// Table is an in-memory columnar catalog.
type Table struct {
	n     int
	names []string
	cols  map[string]Column
}

// NewTable creates an empty table of n rows.
func NewTable(n int) *Table {
	return &Table{n: n, cols: make(map[string]Column)}
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.n }

// Fields returns the column names in insertion order.
func (t *Table) Fields() []string { return slices.Clone(t.names) }

// Column returns the named column.
func (t *Table) Column(field string) (Column, bool) {
	c, ok := t.cols[field]
	return c, ok
}

// Record returns a row view of the table.
func (t *Table) Record(i int) Record {
	return columnarRecord{cat: t, row: i}
}

// AddFloat64 adds a float64 column.
func (t *Table) AddFloat64(name string, vals []float64) error {
	return t.add(name, float64Column(vals))
}

// AddInt64 adds an int64 column.
func (t *Table) AddInt64(name string, vals []int64) error {
	return t.add(name, int64Column(vals))
}

// AddBool adds a bool column. valid marks non-null rows; nil means every row
// is valid.
func (t *Table) AddBool(name string, vals []bool, valid []bool) error {
	if valid != nil && len(valid) != len(vals) {
		return fmt.Errorf("column %q: %d validity flags for %d values", name, len(valid), len(vals))
	}
	return t.add(name, boolColumn{vals: vals, valid: valid})
}

func (t *Table) add(name string, c Column) error {
	if c.Len() != t.n {
		return fmt.Errorf("column %q has %d rows, table has %d", name, c.Len(), t.n)
	}
	if _, ok := t.cols[name]; ok {
		return fmt.Errorf("column %q already exists", name)
	}
	t.names = append(t.names, name)
	t.cols[name] = c
	return nil
}

type columnarRecord struct {
	cat Columnar
	row int
}

func (r columnarRecord) Get(field string) (any, bool) {
	c, ok := r.cat.Column(field)
	if !ok {
		return nil, false
	}
	return c.Value(r.row)
}

type float64Column []float64

func (c float64Column) Len() int                      { return len(c) }
func (c float64Column) Value(i int) (any, bool)       { return c[i], true }
func (c float64Column) Float64(i int) (float64, bool) { return c[i], true }
func (c float64Column) Bool(i int) (bool, bool)       { return c[i] != 0, true }

type int64Column []int64

func (c int64Column) Len() int                      { return len(c) }
func (c int64Column) Value(i int) (any, bool)       { return c[i], true }
func (c int64Column) Float64(i int) (float64, bool) { return float64(c[i]), true }
func (c int64Column) Bool(i int) (bool, bool)       { return c[i] != 0, true }

type boolColumn struct {
	vals  []bool
	valid []bool
}

func (c boolColumn) Len() int { return len(c.vals) }

func (c boolColumn) Value(i int) (any, bool) {
	if c.valid != nil && !c.valid[i] {
		return nil, false
	}
	return c.vals[i], true
}

func (c boolColumn) Float64(i int) (float64, bool) {
	b, ok := c.Bool(i)
	if !ok {
		return 0, false
	}
	if b {
		return 1, true
	}
	return 0, true
}

func (c boolColumn) Bool(i int) (bool, bool) {
	if c.valid != nil && !c.valid[i] {
		return false, false
	}
	return c.vals[i], true
}

// Rows is a row-only catalog of field maps. A nil value is treated as null.
type Rows []map[string]any

// Len returns the number of rows.
func (r Rows) Len() int { return len(r) }

// Record returns row i.
func (r Rows) Record(i int) Record { return mapRecord(r[i]) }

type mapRecord map[string]any

func (m mapRecord) Get(field string) (any, bool) {
	v, ok := m[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Float64 reads field from rec as a float64.
func Float64(rec Record, field string) (float64, bool) {
	v, ok := rec.Get(field)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Bool reads field from rec as a bool; numbers are true when non-zero.
func Bool(rec Record, field string) (bool, bool) {
	v, ok := rec.Get(field)
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

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
