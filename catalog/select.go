package catalog

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/stile/table"
)

// Select copies the given fields of the rows in sel into a named array, in
// row order. A nil sel selects every row. Null values become NaN.
//
// The two layouts differ on absent fields: a Columnar catalog without the
// column is an error, while a row-only catalog has no column set, so a field
// missing from a record reads as a null value and becomes NaN. Selected
// values are otherwise identical for both layouts.
func Select(cat Catalog, sel *roaring.Bitmap, fields []string) (*table.Named, error) {
	var rows []uint32
	if sel == nil {
		rows = make([]uint32, cat.Len())
		for i := range rows {
			rows[i] = uint32(i)
		}
	} else {
		rows = sel.ToArray()
	}
	if len(rows) > 0 && int(rows[len(rows)-1]) >= cat.Len() {
		return nil, fmt.Errorf("selection row %d out of range for %d rows", rows[len(rows)-1], cat.Len())
	}

	out := make([][]any, len(rows))
	for i := range out {
		out[i] = make([]any, len(fields))
	}

	if col, ok := cat.(Columnar); ok {
		for j, f := range fields {
			c, ok := col.Column(f)
			if !ok {
				return nil, fmt.Errorf("catalog has no column %q", f)
			}
			for i, r := range rows {
				out[i][j] = valueOrNaN(c.Value(int(r)))
			}
		}
	} else {
		for i, r := range rows {
			rec := cat.Record(int(r))
			for j, f := range fields {
				out[i][j] = valueOrNaN(rec.Get(f))
			}
		}
	}

	return table.NewNamed(fields, out)
}

func valueOrNaN(v any, ok bool) any {
	if !ok {
		return math.NaN()
	}
	return v
}
