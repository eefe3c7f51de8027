// Package schema models field schemas: mappings from a column name to its
// integer position in a tabular file.
package schema

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/hupe1980/stile"
)

// DefaultNames is the column layout assumed when nothing better is known.
var DefaultNames = []string{"id", "ra", "dec", "z", "g1", "g2"}

// Schema maps a field name to its zero-based column position.
type Schema map[string]int

// Default returns the schema for DefaultNames.
func Default() Schema {
	return FromNames(DefaultNames)
}

// FromNames builds a schema from an ordered list of names.
// Empty names are skipped so that gaps survive a Names round trip.
func FromNames(names []string) Schema {
	s := make(Schema, len(names))
	for i, n := range names {
		if n == "" {
			continue
		}
		s[n] = i
	}
	return s
}

// Validate checks that no position is negative or used twice.
func (s Schema) Validate() error {
	seen := make(map[int]string, len(s))
	for _, name := range s.Fields() {
		pos := s[name]
		if pos < 0 {
			return &stile.SchemaMismatchError{Field: name, Positions: []int{pos}, Reason: "negative position"}
		}
		if other, ok := seen[pos]; ok {
			return &stile.SchemaMismatchError{
				Field:     name,
				Positions: []int{pos},
				Reason:    "position already used by " + other,
			}
		}
		seen[pos] = name
	}
	return nil
}

// Fields returns the field names in lexical order.
func (s Schema) Fields() []string {
	return slices.Sorted(maps.Keys(s))
}

// Fits checks that every position addresses one of width columns.
func (s Schema) Fits(width int) error {
	for _, name := range s.Fields() {
		if pos := s[name]; pos < 0 || pos >= width {
			return &stile.SchemaMismatchError{
				Field:     name,
				Positions: []int{pos},
				Reason:    fmt.Sprintf("file has %d columns", width),
			}
		}
	}
	return nil
}

// Width returns one past the highest position, i.e. the column count a file
// with this schema needs. It saturates at math.MaxInt.
func (s Schema) Width() int {
	w := 0
	for _, pos := range s {
		if pos == math.MaxInt {
			return math.MaxInt
		}
		if pos+1 > w {
			w = pos + 1
		}
	}
	return w
}

// Names returns the field names ordered by position. Positions without a
// field are returned as "".
func (s Schema) Names() []string {
	names := make([]string, s.Width())
	for name, pos := range s {
		if pos >= 0 {
			names[pos] = name
		}
	}
	return names
}

// Equal reports whether both schemas contain exactly the same assignments.
func (s Schema) Equal(other Schema) bool {
	return maps.Equal(s, other)
}

// Consistent reports whether every field present in both schemas has the
// same position in each.
func (s Schema) Consistent(other Schema) bool {
	for name, pos := range s {
		if p, ok := other[name]; ok && p != pos {
			return false
		}
	}
	return true
}

// Clone returns a copy of s.
func (s Schema) Clone() Schema {
	return maps.Clone(s)
}

func (s Schema) String() string {
	parts := make([]string, 0, len(s))
	for _, name := range s.Names() {
		if name == "" {
			parts = append(parts, "-")
			continue
		}
		parts = append(parts, name)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Conflicts returns, for every field assigned more than one distinct
// position across schemas, the sorted set of those positions.
// An empty result means the schemas are compatible.
func Conflicts(schemas ...Schema) map[string][]int {
	positions := make(map[string]map[int]struct{})
	for _, s := range schemas {
		for name, pos := range s {
			set, ok := positions[name]
			if !ok {
				set = make(map[int]struct{})
				positions[name] = set
			}
			set[pos] = struct{}{}
		}
	}

	out := make(map[string][]int)
	for name, set := range positions {
		if len(set) <= 1 {
			continue
		}
		out[name] = slices.Sorted(maps.Keys(set))
	}
	return out
}

// AllEqual reports whether every schema is identical to the first.
func AllEqual(schemas ...Schema) bool {
	for i := 1; i < len(schemas); i++ {
		if !schemas[0].Equal(schemas[i]) {
			return false
		}
	}
	return true
}

// Merge unions compatible schemas into one. It fails with a
// SchemaMismatchError if two schemas disagree on a field or if the union
// puts two fields on one position.
func Merge(schemas ...Schema) (Schema, error) {
	if c := Conflicts(schemas...); len(c) > 0 {
		names := slices.Sorted(maps.Keys(c))
		return nil, &stile.SchemaMismatchError{
			Field:     names[0],
			Positions: c[names[0]],
			Reason:    "schemas disagree",
		}
	}

	out := make(Schema)
	for _, s := range schemas {
		maps.Copy(out, s)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// ConflictingFields returns the sorted names of conflicting fields.
func ConflictingFields(c map[string][]int) []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collisions returns, for every position claimed by more than one distinct
// field across schemas, the sorted names claiming it. Such schemas have no
// per-field conflict but still cannot be merged.
func Collisions(schemas ...Schema) map[int][]string {
	fields := make(map[int]map[string]struct{})
	for _, s := range schemas {
		for name, pos := range s {
			set, ok := fields[pos]
			if !ok {
				set = make(map[string]struct{})
				fields[pos] = set
			}
			set[name] = struct{}{}
		}
	}

	out := make(map[int][]string)
	for pos, set := range fields {
		if len(set) > 1 {
			out[pos] = slices.Sorted(maps.Keys(set))
		}
	}
	return out
}
