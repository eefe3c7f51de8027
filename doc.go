// Package stile is the glue between weak-lensing systematics tests and the
// tools they run on: it masks source catalogs by object class, reshapes
// arrays into named tables and stages catalogs as files for the corr2
// two-point correlation program.
//
// This root package holds what all parts share: the error taxonomy, the
// structured Logger and the MetricsCollector interface. The work happens in
// the subpackages.
//
// # Staging
//
// staging.Stage takes up to four datasets (primary, secondary and their
// random catalogs), each given as in-memory tables, existing files with a
// column schema, or temp file handles:
//
//	dh := handler.NewLocal("./data", "")
//	res, err := staging.Stage(ctx, dh,
//	    staging.File("stars.dat", schema.Schema{"ra": 0, "dec": 1}),
//	    staging.Array(galaxies),
//	    nil, nil,
//	)
//	if err != nil {
//	    return err
//	}
//	defer res.Close()
//	err = (&corr2.Runner{}).Run(ctx, res.Args())
//
// Files whose schemas agree are used in place. When they disagree the
// smallest conflicting file is rewritten in the unified column order until
// the rest agree; in-memory tables are always written. Result.Args holds
// the corr2 file arguments together with the column keywords derived from
// the unified schema.
//
// # Masks
//
//	m, err := mask.ApplyName(cat, "star bright")
//
// Catalogs can be columnar (catalog.Table, catalog.FromArrow) or row-only
// (catalog.Rows); every mask gives the same result for either.
//
// # Errors
//
// Failures carry one of the typed errors of this package and can be
// matched with errors.Is against ErrMissingFile, ErrMalformedInput,
// ErrSchemaMismatch, ErrUnknownObjectType and ErrUnimplemented.
package stile
