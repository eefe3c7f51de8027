// Package testutil provides testing utilities for stile.
//
// This package is intended for use in tests only. It generates seeded
// synthetic source catalogs in both catalog layouts and named arrays with
// the usual shear columns.
//
// # Synthetic Catalogs
//
//	rng := testutil.NewRNG(seed)
//	tbl := rng.Catalog(1000)      // columnar catalog.Table
//	rows := testutil.AsRows(tbl)  // the same data as catalog.Rows
//
// # Named Arrays
//
//	n := rng.ShearTable(100)      // ra, dec, g1, g2, w
package testutil
