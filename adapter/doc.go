// Package adapter wraps systematics tests so a processing pipeline can drive
// them uniformly.
//
// A SysTest is the statistical test itself and is treated as opaque. An
// Adapter pairs it with the masks that pick its object classes out of a
// source catalog and the columns it needs for each class:
//
//	a, err := adapter.Default.New("StarXGalaxyShear", adapter.Config{Tests: provider})
//	if err != nil {
//	    return err
//	}
//	out, err := adapter.Run(ctx, a, cat, nil)
//
// Run masks the catalog, copies the required columns of every class into a
// named array and calls the adapter with those arrays in mask order.
package adapter
