package catalog

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Arrow is a columnar catalog backed by an Arrow record batch.
// It does not retain the record; callers keep ownership and must keep it
// alive while the catalog is in use.
type Arrow struct {
	rec arrow.Record
}

// FromArrow wraps rec as a Columnar catalog.
func FromArrow(rec arrow.Record) *Arrow {
	return &Arrow{rec: rec}
}

// Len returns the number of rows.
func (a *Arrow) Len() int { return int(a.rec.NumRows()) }

// Record returns a row view of the batch.
func (a *Arrow) Record(i int) Record {
	return columnarRecord{cat: a, row: i}
}

// Fields returns the column names in schema order.
func (a *Arrow) Fields() []string {
	fields := a.rec.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Column returns the first column named field. Only boolean, integer and
// floating point columns are exposed.
func (a *Arrow) Column(field string) (Column, bool) {
	idx := a.rec.Schema().FieldIndices(field)
	if len(idx) == 0 {
		return nil, false
	}
	arr := a.rec.Column(idx[0])
	switch arr.(type) {
	case *array.Boolean, *array.Float64, *array.Float32, *array.Int64, *array.Int32, *array.Int16, *array.Int8:
		return arrowColumn{arr: arr}, true
	default:
		return nil, false
	}
}

type arrowColumn struct {
	arr arrow.Array
}

func (c arrowColumn) Len() int { return c.arr.Len() }

func (c arrowColumn) Value(i int) (any, bool) {
	if c.arr.IsNull(i) {
		return nil, false
	}
	switch a := c.arr.(type) {
	case *array.Boolean:
		return a.Value(i), true
	case *array.Float64:
		return a.Value(i), true
	case *array.Float32:
		return float64(a.Value(i)), true
	case *array.Int64:
		return a.Value(i), true
	case *array.Int32:
		return int64(a.Value(i)), true
	case *array.Int16:
		return int64(a.Value(i)), true
	case *array.Int8:
		return int64(a.Value(i)), true
	}
	return nil, false
}

func (c arrowColumn) Float64(i int) (float64, bool) {
	v, ok := c.Value(i)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func (c arrowColumn) Bool(i int) (bool, bool) {
	v, ok := c.Value(i)
	if !ok {
		return false, false
	}
	if b, ok := v.(bool); ok {
		return b, true
	}
	f, _ := toFloat(v)
	return f != 0, true
}
