package table

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/schema"
)

// gapName stands in for an unnamed column in ASCII headers.
const gapName = "_"

// WriteASCII writes n as a whitespace-separated table: a "# name ..." header
// line followed by one line per record.
func WriteASCII(w io.Writer, n *Named) error {
	bw := bufio.NewWriter(w)

	header := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		name := f.Name
		if name == "" {
			name = gapName
		}
		if strings.ContainsAny(name, " \t\r\n") {
			return stile.NewMalformedInputError("field name %q contains whitespace", name)
		}
		header[i] = name
	}
	if _, err := bw.WriteString("# " + strings.Join(header, " ") + "\n"); err != nil {
		return err
	}

	buf := make([]byte, 0, 256)
	for i, r := range n.Rows {
		if len(r) != len(n.Fields) {
			return stile.NewMalformedInputError("row %d has %d values, want %d", i, len(r), len(n.Fields))
		}
		buf = buf[:0]
		for j, v := range r {
			if j > 0 {
				buf = append(buf, ' ')
			}
			var err error
			if buf, err = appendValue(buf, v); err != nil {
				return stile.WrapMalformedInput(err, fmt.Sprintf("row %d column %d", i, j))
			}
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func appendValue(dst []byte, v any) ([]byte, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return append(dst, '1'), nil
		}
		return append(dst, '0'), nil
	case string:
		if x == "" || strings.ContainsAny(x, " \t\r\n#") {
			return nil, fmt.Errorf("string %q cannot be written as a bare token", x)
		}
		return append(dst, x...), nil
	}
	if i, ok := toInt(v); ok {
		return strconv.AppendInt(dst, i, 10), nil
	}
	if f, ok := toFloat(v); ok {
		if math.IsNaN(f) {
			return append(dst, "nan"...), nil
		}
		return strconv.AppendFloat(dst, f, 'g', -1, 64), nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

// ReadASCII parses a table written by WriteASCII or any whitespace-separated
// numeric table. Field names come from s when given, otherwise from the
// first comment line when its token count matches the column count,
// otherwise they default to f0, f1, ...
func ReadASCII(r io.Reader, s schema.Schema) (*Named, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var header []string
	var rows [][]string
	width := -1
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "#") {
			if header == nil && rows == nil {
				header = strings.Fields(strings.TrimPrefix(text, "#"))
			}
			continue
		}
		tokens := strings.Fields(text)
		if width < 0 {
			width = len(tokens)
		} else if len(tokens) != width {
			return nil, stile.NewMalformedInputError("line %d has %d columns, want %d", line, len(tokens), width)
		}
		rows = append(rows, tokens)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if width < 0 {
		width = len(header)
	}

	names, err := columnNames(s, header, width)
	if err != nil {
		return nil, err
	}

	out := &Named{
		Shape:  []int{len(rows)},
		Fields: make([]Field, width),
		Rows:   make([][]any, len(rows)),
	}
	parsed := make([][]any, len(rows))
	for i, tokens := range rows {
		parsed[i] = make([]any, width)
		for j, tok := range tokens {
			parsed[i][j] = parseToken(tok)
		}
	}
	for j := range width {
		col := make([]any, len(rows))
		for i := range rows {
			col[i] = parsed[i][j]
		}
		out.Fields[j] = Field{Name: names[j], Kind: inferKind(col)}
	}
	for i := range rows {
		row := make([]any, width)
		for j := range width {
			v, err := convert(parsed[i][j], out.Fields[j].Kind)
			if err != nil {
				return nil, stile.WrapMalformedInput(err, fmt.Sprintf("row %d column %d", i, j))
			}
			row[j] = v
		}
		out.Rows[i] = row
	}
	return out, nil
}

// Width returns the column count of an ASCII table: the token count of its
// first data line, or of its header when the table has no rows. Reading
// stops at the first data line.
func Width(r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	header := -1
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "#") {
			if header < 0 {
				header = len(strings.Fields(strings.TrimPrefix(text, "#")))
			}
			continue
		}
		return len(strings.Fields(text)), nil
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return max(header, 0), nil
}

func columnNames(s schema.Schema, header []string, width int) ([]string, error) {
	names := make([]string, width)
	switch {
	case s != nil:
		for name, pos := range s {
			if pos < 0 || pos >= width {
				return nil, &stile.SchemaMismatchError{
					Field:     name,
					Positions: []int{pos},
					Reason:    fmt.Sprintf("file has %d columns", width),
				}
			}
			names[pos] = name
		}
	case len(header) == width:
		for i, h := range header {
			if h != gapName {
				names[i] = h
			}
		}
	default:
		for i := range names {
			names[i] = "f" + strconv.Itoa(i)
		}
	}
	return names, nil
}

func parseToken(tok string) any {
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f
	}
	return tok
}
