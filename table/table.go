// Package table provides the array types exchanged between catalogs, the
// staging layer and the correlation tool: plain rectangular arrays and
// named-field ("structured") arrays, plus an ASCII table codec.
package table

import (
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/stile/schema"
)

// Kind identifies the scalar type of a column.
type Kind uint8

const (
	// KindInvalid represents an unset kind.
	KindInvalid Kind = iota
	// KindBool represents boolean columns.
	KindBool
	// KindInt represents int64 columns.
	KindInt
	// KindFloat represents float64 columns.
	KindFloat
	// KindString represents string columns.
	KindString
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	default:
		return "Invalid"
	}
}

// Field describes one named column.
type Field struct {
	Name string
	Kind Kind
}

// Array is implemented by *Plain and *Named.
type Array interface {
	isArray()
}

// Plain is a rectangular array without field names, stored row-major.
// The innermost dimension of Shape is the column axis.
type Plain struct {
	Shape  []int
	Values []any
}

func (*Plain) isArray() {}

// NewPlain builds a 2-D plain array from rows of equal length.
func NewPlain(rows [][]any) *Plain {
	p := &Plain{}
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	p.Shape = []int{len(rows), cols}
	for _, r := range rows {
		p.Values = append(p.Values, r...)
	}
	return p
}

// NewPlainFloat builds a 2-D plain array of float64 values.
func NewPlainFloat(rows [][]float64) *Plain {
	anyRows := make([][]any, len(rows))
	for i, r := range rows {
		anyRows[i] = make([]any, len(r))
		for j, v := range r {
			anyRows[i][j] = v
		}
	}
	return NewPlain(anyRows)
}

// Named is an array of records with named, typed fields.
//
// Shape holds the outer dimensions of the original array; the product of
// Shape equals len(Rows). Each row holds one value per field, typed
// according to the field's Kind (bool, int64, float64 or string).
type Named struct {
	Shape  []int
	Fields []Field
	Rows   [][]any
}

func (*Named) isArray() {}

// NewNamed builds a one-dimensional named array. Values are normalised and
// column kinds inferred the same way Format does.
func NewNamed(names []string, rows [][]any) (*Named, error) {
	for i, r := range rows {
		if len(r) != len(names) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(r), len(names))
		}
	}
	flat := make([]any, 0, len(rows)*len(names))
	for _, r := range rows {
		flat = append(flat, r...)
	}
	return Format(&Plain{Shape: []int{len(rows), len(names)}, Values: flat}, WithFieldList(names))
}

// Len returns the number of records.
func (n *Named) Len() int { return len(n.Rows) }

// Names returns the field names in column order.
func (n *Named) Names() []string {
	names := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		names[i] = f.Name
	}
	return names
}

// Schema returns the name to position mapping of n.
func (n *Named) Schema() schema.Schema {
	return schema.FromNames(n.Names())
}

// Index returns the column position of name, or -1.
func (n *Named) Index(name string) int {
	for i, f := range n.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the named field.
func (n *Named) Column(name string) ([]any, bool) {
	idx := n.Index(name)
	if idx < 0 {
		return nil, false
	}
	col := make([]any, len(n.Rows))
	for i, r := range n.Rows {
		col[i] = r[idx]
	}
	return col, true
}

// Float64s returns the named field converted to float64.
func (n *Named) Float64s(name string) ([]float64, error) {
	col, ok := n.Column(name)
	if !ok {
		return nil, fmt.Errorf("no field %q", name)
	}
	out := make([]float64, len(col))
	for i, v := range col {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("field %q row %d: %T is not numeric", name, i, v)
		}
		out[i] = f
	}
	return out, nil
}

// Clone returns a deep copy of n.
func (n *Named) Clone() *Named {
	out := &Named{
		Shape:  slices.Clone(n.Shape),
		Fields: slices.Clone(n.Fields),
		Rows:   make([][]any, len(n.Rows)),
	}
	for i, r := range n.Rows {
		out.Rows[i] = slices.Clone(r)
	}
	return out
}

// Project returns a copy of n whose columns follow names. A name absent from
// n, or an empty name marking a gap, yields a column of NaN; absent
// non-empty names are reported in missing.
func (n *Named) Project(names []string) (out *Named, missing []string) {
	idx := make([]int, len(names))
	out = &Named{
		Shape:  []int{len(n.Rows)},
		Fields: make([]Field, len(names)),
		Rows:   make([][]any, len(n.Rows)),
	}
	for j, name := range names {
		idx[j] = -1
		if name != "" {
			idx[j] = n.Index(name)
		}
		if idx[j] < 0 {
			if name != "" {
				missing = append(missing, name)
			}
			out.Fields[j] = Field{Name: name, Kind: KindFloat}
			continue
		}
		out.Fields[j] = n.Fields[idx[j]]
	}
	for i, r := range n.Rows {
		row := make([]any, len(names))
		for j, k := range idx {
			if k < 0 {
				row[j] = math.NaN()
				continue
			}
			row[j] = r[k]
		}
		out.Rows[i] = row
	}
	return out, missing
}
