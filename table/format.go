package table

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/schema"
)

type formatOptions struct {
	fieldMap   map[string]int
	fieldList  []string
	onlyFloats bool
}

// FormatOption configures Format.
type FormatOption func(*formatOptions)

// WithFieldMap renames only the given positions: each key becomes the name of
// the field at its value.
func WithFieldMap(fields map[string]int) FormatOption {
	return func(o *formatOptions) {
		o.fieldMap = fields
		o.fieldList = nil
	}
}

// WithFieldList replaces all field names. The list length must equal the
// column count.
func WithFieldList(names []string) FormatOption {
	return func(o *formatOptions) {
		o.fieldList = names
		o.fieldMap = nil
	}
}

// OnlyFloats skips type inference and stores every column as float64.
func OnlyFloats() FormatOption {
	return func(o *formatOptions) {
		o.onlyFloats = true
	}
}

// Format turns a plain array into a named array whose fields are the
// innermost dimension of the input. Column kinds are inferred unless
// OnlyFloats is given, and default names are f0, f1, ...
//
// A named input is returned as is; when a rename option is supplied, a
// renamed copy is returned instead.
func Format(a Array, opts ...FormatOption) (*Named, error) {
	o := formatOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	var n *Named
	switch v := a.(type) {
	case *Named:
		if v == nil {
			return nil, stile.NewMalformedInputError("nil array")
		}
		if o.fieldMap == nil && o.fieldList == nil {
			return v, nil
		}
		n = &Named{Shape: v.Shape, Fields: slices.Clone(v.Fields), Rows: v.Rows}
	case *Plain:
		if v == nil {
			return nil, stile.NewMalformedInputError("nil array")
		}
		var err error
		if n, err = formatPlain(v, o.onlyFloats); err != nil {
			return nil, err
		}
	default:
		return nil, stile.NewMalformedInputError("unsupported array type %T", a)
	}

	if err := rename(n, o); err != nil {
		return nil, err
	}
	return n, nil
}

func formatPlain(p *Plain, onlyFloats bool) (*Named, error) {
	if len(p.Shape) == 0 {
		return nil, stile.NewMalformedInputError("array has no dimensions")
	}
	size := 1
	for _, d := range p.Shape {
		if d < 0 {
			return nil, stile.NewMalformedInputError("negative dimension in shape %v", p.Shape)
		}
		size *= d
	}
	if size != len(p.Values) {
		return nil, stile.NewMalformedInputError("shape %v needs %d values, got %d", p.Shape, size, len(p.Values))
	}
	cols := p.Shape[len(p.Shape)-1]
	if cols == 0 {
		return nil, stile.NewMalformedInputError("array has no columns")
	}
	rows := size / cols

	fields := make([]Field, cols)
	for j := range cols {
		fields[j].Name = "f" + strconv.Itoa(j)
		if onlyFloats {
			fields[j].Kind = KindFloat
			continue
		}
		col := make([]any, rows)
		for i := range rows {
			col[i] = p.Values[i*cols+j]
		}
		fields[j].Kind = inferKind(col)
	}

	out := &Named{Fields: fields, Rows: make([][]any, rows)}
	for i := range rows {
		row := make([]any, cols)
		for j := range cols {
			v, err := convert(p.Values[i*cols+j], fields[j].Kind)
			if err != nil {
				return nil, stile.WrapMalformedInput(err, fmt.Sprintf("row %d column %d", i, j))
			}
			row[j] = v
		}
		out.Rows[i] = row
	}

	if len(p.Shape) > 1 {
		out.Shape = slices.Clone(p.Shape[:len(p.Shape)-1])
	} else {
		out.Shape = []int{1}
	}
	return out, nil
}

func rename(n *Named, o formatOptions) error {
	switch {
	case o.fieldMap != nil:
		if err := schema.Schema(o.fieldMap).Validate(); err != nil {
			return err
		}
		for name, pos := range o.fieldMap {
			if pos < 0 || pos >= len(n.Fields) {
				return &stile.SchemaMismatchError{
					Field:     name,
					Positions: []int{pos},
					Reason:    fmt.Sprintf("array has %d fields", len(n.Fields)),
				}
			}
			n.Fields[pos].Name = name
		}
	case o.fieldList != nil:
		if len(o.fieldList) != len(n.Fields) {
			return &stile.SchemaMismatchError{
				Reason: fmt.Sprintf("cannot use %d field names for %d fields", len(o.fieldList), len(n.Fields)),
			}
		}
		for i, name := range o.fieldList {
			n.Fields[i].Name = name
		}
	default:
		return nil
	}

	seen := make(map[string]int, len(n.Fields))
	for i, f := range n.Fields {
		if j, ok := seen[f.Name]; ok {
			return &stile.SchemaMismatchError{Field: f.Name, Positions: []int{j, i}, Reason: "duplicate field name"}
		}
		seen[f.Name] = i
	}
	return nil
}

func inferKind(col []any) Kind {
	if len(col) == 0 {
		return KindFloat
	}
	allBool, allInt, allNum := true, true, true
	for _, v := range col {
		switch v.(type) {
		case bool:
			allInt, allNum = false, false
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			allBool = false
		case float32, float64:
			allBool, allInt = false, false
		default:
			return KindString
		}
	}
	switch {
	case allBool:
		return KindBool
	case allInt:
		return KindInt
	case allNum:
		return KindFloat
	default:
		return KindString
	}
}

func convert(v any, k Kind) (any, error) {
	switch k {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%T is not bool", v)
		}
		return b, nil
	case KindInt:
		i, ok := toInt(v)
		if !ok {
			return nil, fmt.Errorf("%T is not an integer", v)
		}
		return i, nil
	case KindFloat:
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%T is not numeric", v)
		}
		return f, nil
	case KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	}
	return nil, fmt.Errorf("invalid kind %s", k)
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}
