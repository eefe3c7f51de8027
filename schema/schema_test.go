package schema

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stile"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, DefaultNames, s.Names())
	assert.Equal(t, 6, s.Width())
	assert.Equal(t, 1, s["ra"])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Schema
		wantErr bool
	}{
		{"Valid", Schema{"ra": 0, "dec": 1}, false},
		{"Empty", Schema{}, false},
		{"Duplicate", Schema{"ra": 0, "dec": 0}, true},
		{"Negative", Schema{"ra": -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, stile.ErrSchemaMismatch))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFits(t *testing.T) {
	s := Schema{"ra": 0, "dec": 2}
	assert.NoError(t, s.Fits(3))
	assert.NoError(t, Schema{}.Fits(0))

	err := s.Fits(2)
	assert.ErrorIs(t, err, stile.ErrSchemaMismatch)
	var sm *stile.SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "dec", sm.Field)

	huge := Schema{"ra": 0, "dec": math.MaxInt}
	assert.ErrorIs(t, huge.Fits(2), stile.ErrSchemaMismatch)
	assert.Equal(t, math.MaxInt, huge.Width())
}

func TestNamesWithGaps(t *testing.T) {
	s := Schema{"ra": 0, "g1": 3}
	assert.Equal(t, []string{"ra", "", "", "g1"}, s.Names())
	assert.Equal(t, s, FromNames(s.Names()))
	assert.Equal(t, "[ra - - g1]", s.String())
}

func TestConsistent(t *testing.T) {
	a := Schema{"ra": 0, "dec": 1}
	b := Schema{"ra": 0, "g1": 2}
	c := Schema{"ra": 0, "dec": 2}

	assert.True(t, a.Consistent(b))
	assert.True(t, b.Consistent(a))
	assert.False(t, a.Consistent(c))
}

func TestConflicts(t *testing.T) {
	a := Schema{"ra": 0, "dec": 1}
	b := Schema{"ra": 0, "dec": 2, "g1": 3}
	c := Schema{"ra": 5, "dec": 2}

	assert.Empty(t, Conflicts(a))
	assert.Empty(t, Conflicts(a, Schema{"ra": 0, "g1": 2}))

	got := Conflicts(a, b, c)
	want := map[string][]int{
		"ra":  {0, 5},
		"dec": {1, 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Conflicts mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"dec", "ra"}, ConflictingFields(got))
}

func TestAllEqual(t *testing.T) {
	assert.True(t, AllEqual())
	assert.True(t, AllEqual(Schema{"ra": 0}, Schema{"ra": 0}))
	assert.False(t, AllEqual(Schema{"ra": 0}, Schema{"ra": 0, "dec": 1}))
}

func TestMerge(t *testing.T) {
	t.Run("Compatible", func(t *testing.T) {
		got, err := Merge(Schema{"ra": 0, "dec": 1}, Schema{"ra": 0, "g1": 2})
		require.NoError(t, err)
		if diff := cmp.Diff(Schema{"ra": 0, "dec": 1, "g1": 2}, got); diff != "" {
			t.Errorf("Merge mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Conflict", func(t *testing.T) {
		_, err := Merge(Schema{"dec": 1}, Schema{"dec": 2})
		var sm *stile.SchemaMismatchError
		require.ErrorAs(t, err, &sm)
		assert.Equal(t, "dec", sm.Field)
		assert.Equal(t, []int{1, 2}, sm.Positions)
	})

	t.Run("PositionClash", func(t *testing.T) {
		_, err := Merge(Schema{"dec": 1}, Schema{"g1": 1})
		assert.ErrorIs(t, err, stile.ErrSchemaMismatch)
	})

	t.Run("DoesNotAlias", func(t *testing.T) {
		a := Schema{"ra": 0}
		got, err := Merge(a, Schema{"dec": 1})
		require.NoError(t, err)
		got["z"] = 9
		assert.NotContains(t, a, "z")
	})
}

func TestCollisions(t *testing.T) {
	got := Collisions(
		Schema{"ra": 0, "dec": 1},
		Schema{"ra": 0, "g1": 1},
		Schema{"id": 0, "dec": 1},
	)
	want := map[int][]string{
		0: {"id", "ra"},
		1: {"dec", "g1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collisions mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, Collisions(Schema{"ra": 0}, Schema{"ra": 0, "dec": 1}))
}
