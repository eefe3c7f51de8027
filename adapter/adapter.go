package adapter

import (
	"context"
	"fmt"
	"slices"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/catalog"
	"github.com/hupe1980/stile/mask"
	"github.com/hupe1980/stile/table"
)

// Args are keyword arguments passed through to a SysTest.
type Args map[string]any

// SysTest is a statistical test run on masked, column-selected data.
type SysTest interface {
	// ShortName identifies the test in output file names.
	ShortName() string
	// ObjectsList names the object classes the test expects, one per input.
	ObjectsList() []string
	// RequiredQuantities lists the columns needed for each input.
	RequiredQuantities() [][]string
	// Run executes the test with one array per object class.
	Run(ctx context.Context, args Args, data ...*table.Named) (any, error)
}

// Adapter exposes a SysTest to the pipeline.
type Adapter interface {
	SysTest() SysTest
	Name() string
	// Call runs the test on data prepared per GetMasks and GetRequiredColumns.
	Call(ctx context.Context, args Args, data ...*table.Named) (any, error)
	// GetMasks returns one mask per object class, in order.
	GetMasks(cat catalog.Catalog) ([]mask.Mask, error)
	// GetRequiredColumns returns the columns needed for each mask.
	GetRequiredColumns() [][]string
}

// Base implements the masking and column plumbing shared by all adapters.
// Adapters embed it and override what differs.
type Base struct {
	test    SysTest
	name    string
	types   []mask.ObjectType
	logger  *stile.Logger
	metrics stile.MetricsCollector
}

// NewBase wraps test. The name defaults to the test's short name.
func NewBase(test SysTest, cfg Config) *Base {
	b := &Base{
		test:    test,
		logger:  cfg.Logger.OrNoop(),
		metrics: cfg.Metrics,
	}
	if b.metrics == nil {
		b.metrics = stile.NoopMetricsCollector{}
	}
	if test != nil {
		b.name = test.ShortName()
	}
	return b
}

// SysTest returns the wrapped test.
func (b *Base) SysTest() SysTest { return b.test }

// Name returns the name used for output files.
func (b *Base) Name() string { return b.name }

// ObjectTypes returns the configured mask classes.
func (b *Base) ObjectTypes() []mask.ObjectType { return slices.Clone(b.types) }

// SetupMasks selects the mask functions for the given object class names.
// Without names the test's ObjectsList is used; it is an error if that is
// empty too.
func (b *Base) SetupMasks(objects ...string) error {
	if len(objects) == 0 && b.test != nil {
		objects = b.test.ObjectsList()
	}
	if len(objects) == 0 {
		return fmt.Errorf("adapter %s: no object types given and the test lists none", b.name)
	}

	types := make([]mask.ObjectType, len(objects))
	for i, name := range objects {
		t, err := mask.Parse(name)
		if err != nil {
			return fmt.Errorf("adapter %s: %w", b.name, err)
		}
		types[i] = t
	}
	b.types = types
	return nil
}

// GetMasks applies the configured masks to cat.
func (b *Base) GetMasks(cat catalog.Catalog) ([]mask.Mask, error) {
	if len(b.types) == 0 {
		return nil, fmt.Errorf("adapter %s: masks not set up", b.name)
	}
	masks := make([]mask.Mask, len(b.types))
	for i, t := range b.types {
		m, err := mask.Apply(cat, t)
		if err != nil {
			return nil, err
		}
		selected := m.Count()
		b.metrics.RecordMask(t.String(), selected, len(m))
		b.logger.LogMask(context.Background(), t.String(), selected, len(m))
		masks[i] = m
	}
	return masks, nil
}

// GetRequiredColumns returns the test's required quantities.
func (b *Base) GetRequiredColumns() [][]string {
	if b.test == nil {
		return nil
	}
	return b.test.RequiredQuantities()
}

// Call runs the test with args and data unchanged.
func (b *Base) Call(ctx context.Context, args Args, data ...*table.Named) (any, error) {
	return b.test.Run(ctx, args, data...)
}

// Extract masks cat with a's masks and copies the matching required columns
// of each selection into a named array.
func Extract(a Adapter, cat catalog.Catalog) ([]*table.Named, error) {
	masks, err := a.GetMasks(cat)
	if err != nil {
		return nil, err
	}
	cols := a.GetRequiredColumns()
	if len(cols) != len(masks) {
		return nil, stile.NewMalformedInputError("adapter %s: %d masks but %d column sets", a.Name(), len(masks), len(cols))
	}

	out := make([]*table.Named, len(masks))
	for i, m := range masks {
		n, err := catalog.Select(cat, m.Bitmap(), cols[i])
		if err != nil {
			return nil, fmt.Errorf("adapter %s: input %d: %w", a.Name(), i, err)
		}
		out[i] = n
	}
	return out, nil
}

// Run extracts a's inputs from cat and calls it.
func Run(ctx context.Context, a Adapter, cat catalog.Catalog, args Args) (any, error) {
	data, err := Extract(a, cat)
	if err != nil {
		return nil, err
	}
	return a.Call(ctx, args, data...)
}
