// Package staging prepares catalogs as files for the corr2 correlation tool.
//
// Each of the four roles (primary, secondary, random, random2) takes a
// Dataset: in-memory arrays, existing files with a declared schema, or temp
// file handles. Stage makes sure every role ends up as file paths sharing
// one column layout:
//
//   - existing files are trusted and passed through by path, unless their
//     schemas disagree; then the smallest disagreeing file is rewritten,
//     repeatedly, until the remaining schemas agree
//   - arrays and rewritten files are written to temp files in the unified
//     column order
//   - a role with several files is handed over as a list file
//
// The unified layout also yields corr2's column arguments (ra_col, ...).
package staging

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/corr2"
	"github.com/hupe1980/stile/handler"
	"github.com/hupe1980/stile/internal/fs"
	"github.com/hupe1980/stile/schema"
	"github.com/hupe1980/stile/table"
	"github.com/hupe1980/stile/tempfile"
)

// Stager stages datasets through a data handler.
type Stager struct {
	dh   handler.DataHandler
	opts options
}

// New creates a Stager. The handler supplies the temp directory and re-reads
// files that have to be rewritten.
func New(dh handler.DataHandler, opts ...Option) *Stager {
	o := options{
		fsys:    fs.Default,
		metrics: stile.NoopMetricsCollector{},
	}
	for _, fn := range opts {
		fn(&o)
	}
	o.logger = o.logger.OrNoop()
	if o.metrics == nil {
		o.metrics = stile.NoopMetricsCollector{}
	}
	return &Stager{dh: dh, opts: o}
}

// Stage is shorthand for New(dh, opts...).Stage.
func Stage(ctx context.Context, dh handler.DataHandler, primary, secondary, random, random2 Dataset, opts ...Option) (*Result, error) {
	return New(dh, opts...).Stage(ctx, primary, secondary, random, random2)
}

// refKey locates a reference by role and index within its Dataset.
type refKey struct {
	role  corr2.Role
	index int
}

// entry is an on-disk reference found during classification.
type entry struct {
	refKey
	path      string
	schema    schema.Schema
	size      int64
	conflicts []string
}

// Stage writes what has to be written and returns the file arguments per
// role together with the corr2 parameters. On error every temp file created
// so far is removed.
func (s *Stager) Stage(ctx context.Context, primary, secondary, random, random2 Dataset) (_ *Result, err error) {
	start := time.Now()
	runID := uuid.NewString()
	log := s.opts.logger.WithRun(runID)
	datasets := [...]Dataset{primary, secondary, random, random2}

	res := &Result{RunID: runID}
	defer func() {
		d := time.Since(start)
		log.LogStage(ctx, res.Written, res.Rewritten, d, err)
		s.opts.metrics.RecordStage(res.Written, res.Rewritten, d, err)
		if err != nil {
			_ = res.discard()
		}
	}()

	for _, role := range corr2.Roles() {
		if err := checkShape(role, datasets[role]); err != nil {
			return nil, err
		}
	}

	entries, err := s.classify(datasets)
	if err != nil {
		return nil, err
	}

	accepted, evicted := reconcile(entries)
	unified, err := unify(accepted, primary)
	if err != nil {
		return nil, err
	}
	fields := unified.Names()

	rewrite := make(map[refKey]entry, len(evicted))
	for _, e := range evicted {
		rewrite[e.refKey] = e
		res.Evicted = append(res.Evicted, e.path)
	}

	for _, role := range corr2.Roles() {
		paths, err := s.materialize(ctx, log.WithRole(role.String()), res, role, datasets[role], rewrite, fields)
		if err != nil {
			return nil, err
		}
		arg, err := s.collapse(res, role, paths)
		if err != nil {
			return nil, err
		}
		res.set(role, arg)
	}

	res.Schema = unified
	res.Fields = fields
	res.Params = corr2.DefaultParams().Merge(s.opts.params, corr2.Columns(fields))
	return res, nil
}

func kindOf(r Ref) string {
	switch r.(type) {
	case InMemory:
		return "array"
	case OnDisk:
		return "file"
	case Owned:
		return "handle"
	default:
		return fmt.Sprintf("%T", r)
	}
}

// checkShape rejects nil references, unknown reference types and sequences
// mixing reference kinds.
func checkShape(role corr2.Role, d Dataset) error {
	for i, r := range d {
		switch r := r.(type) {
		case InMemory:
			if r.Array == nil {
				return stile.NewMalformedInputError("%s[%d]: nil array", role, i)
			}
		case OnDisk:
			if r.Path == "" {
				return stile.NewMalformedInputError("%s[%d]: empty path", role, i)
			}
		case Owned:
			if r.File == nil {
				return stile.NewMalformedInputError("%s[%d]: nil handle", role, i)
			}
		case nil:
			return stile.NewMalformedInputError("%s[%d]: nil reference", role, i)
		default:
			return stile.NewMalformedInputError("%s[%d]: unsupported reference %T", role, i, r)
		}
		if i > 0 && kindOf(r) != kindOf(d[0]) {
			return stile.NewMalformedInputError("%s: sequence mixes %s and %s", role, kindOf(d[0]), kindOf(r))
		}
	}
	return nil
}

// classify records path, declared schema and size of every on-disk
// reference, in role then sequence order.
func (s *Stager) classify(datasets [4]Dataset) ([]entry, error) {
	var entries []entry
	for _, role := range corr2.Roles() {
		for i, r := range datasets[role] {
			var e entry
			switch r := r.(type) {
			case OnDisk:
				e = entry{path: r.Path, schema: r.Schema}
			case Owned:
				e = entry{path: r.File.Path(), schema: r.File.Schema()}
			default:
				continue
			}
			e.refKey = refKey{role: role, index: i}

			if err := e.schema.Validate(); err != nil {
				return nil, fmt.Errorf("%s[%d] %s: %w", role, i, e.path, err)
			}
			info, err := s.opts.fsys.Stat(e.path)
			if err != nil {
				if os.IsNotExist(err) {
					return nil, stile.NewMissingFileError(e.path, err)
				}
				return nil, err
			}
			if info.IsDir() {
				return nil, stile.NewMissingFileError(e.path, fmt.Errorf("%s is a directory", e.path))
			}
			e.size = info.Size()
			if err := s.checkWidth(e); err != nil {
				return nil, fmt.Errorf("%s[%d] %s: %w", role, i, e.path, err)
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// checkWidth verifies the declared schema against the file's column count.
func (s *Stager) checkWidth(e entry) error {
	if len(e.schema) == 0 {
		return nil
	}
	f, err := s.opts.fsys.Open(e.path)
	if err != nil {
		return err
	}
	defer f.Close()

	width, err := table.Width(f)
	if err != nil {
		return err
	}
	return e.schema.Fits(width)
}

// troubled returns the fields whose positions disagree across schemas,
// together with the fields sharing a position with a different field.
func troubled(schemas []schema.Schema) []string {
	var out []string
	for name := range schema.Conflicts(schemas...) {
		out = append(out, name)
	}
	for _, names := range schema.Collisions(schemas...) {
		out = append(out, names...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func schemasOf(entries []entry) []schema.Schema {
	out := make([]schema.Schema, len(entries))
	for i, e := range entries {
		out[i] = e.schema
	}
	return out
}

func touches(s schema.Schema, fields []string) []string {
	var hit []string
	for _, f := range fields {
		if _, ok := s[f]; ok {
			hit = append(hit, f)
		}
	}
	return hit
}

// reconcile evicts the smallest file involved in a disagreement until the
// remaining schemas can be merged. Ties go to the earliest entry. At least
// one entry always remains.
func reconcile(entries []entry) (accepted, evicted []entry) {
	pool := slices.Clone(entries)
	for len(pool) > 1 {
		schemas := schemasOf(pool)
		if schema.AllEqual(schemas...) {
			break
		}
		bad := troubled(schemas)
		if len(bad) == 0 {
			break
		}

		victim := -1
		for i, e := range pool {
			if len(touches(e.schema, bad)) == 0 {
				continue
			}
			if victim < 0 || e.size < pool[victim].size {
				victim = i
			}
		}
		out := pool[victim]
		out.conflicts = touches(out.schema, bad)
		evicted = append(evicted, out)
		pool = slices.Delete(pool, victim, victim+1)
	}
	return pool, evicted
}

// unify merges the accepted schemas. Without any file the primary array's
// names are used, then the default layout.
func unify(accepted []entry, primary Dataset) (schema.Schema, error) {
	if len(accepted) > 0 {
		return schema.Merge(schemasOf(accepted)...)
	}
	if len(primary) > 0 {
		if m, ok := primary[0].(InMemory); ok {
			if s := m.Array.Schema(); len(s) > 0 {
				return s, nil
			}
		}
	}
	return schema.Default(), nil
}

func (s *Stager) tempOptions(res *Result, log *stile.Logger) []tempfile.Option {
	opts := []tempfile.Option{
		tempfile.WithFileSystem(s.opts.fsys),
		tempfile.WithPrefix(tempfile.DefaultPrefix + res.RunID[:8] + "-"),
		tempfile.WithLogger(log),
		tempfile.WithMetrics(s.opts.metrics),
	}
	if s.opts.keep {
		opts = append(opts, tempfile.WithKeep())
	}
	return opts
}

func (s *Stager) write(res *Result, log *stile.Logger, data *table.Named, fields []string) (string, error) {
	opts := append(s.tempOptions(res, log), tempfile.WithFields(fields))
	f, err := tempfile.New(s.dh.TempDir(), data, opts...)
	if err != nil {
		return "", err
	}
	res.owned = append(res.owned, f)
	return f.Path(), nil
}

// materialize returns the file paths for one role, writing arrays and
// evicted files in the unified column order.
func (s *Stager) materialize(ctx context.Context, log *stile.Logger, res *Result, role corr2.Role, d Dataset, rewrite map[refKey]entry, fields []string) ([]string, error) {
	var paths []string
	for i, r := range d {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if m, ok := r.(InMemory); ok {
			path, err := s.write(res, log, m.Array, fields)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", role, i, err)
			}
			res.Written++
			paths = append(paths, path)
			continue
		}

		e, evicted := rewrite[refKey{role: role, index: i}]
		if !evicted {
			switch r := r.(type) {
			case OnDisk:
				paths = append(paths, r.Path)
			case Owned:
				paths = append(paths, r.File.Path())
			}
			continue
		}

		data, err := s.dh.LoadFile(ctx, e.path, e.schema)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: reload %s: %w", role, i, e.path, err)
		}
		path, err := s.write(res, log, data, fields)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: rewrite %s: %w", role, i, e.path, err)
		}
		log.LogRewrite(ctx, e.path, e.size, e.conflicts)
		res.Rewritten++
		paths = append(paths, path)
	}
	return paths, nil
}

// collapse turns a role's paths into a single file argument.
func (s *Stager) collapse(res *Result, role corr2.Role, paths []string) (*FileArg, error) {
	switch len(paths) {
	case 0:
		return nil, nil
	case 1:
		return &FileArg{Role: role, Kind: corr2.Name, Path: paths[0], Files: paths}, nil
	}

	f, err := tempfile.NewList(s.dh.TempDir(), paths, s.tempOptions(res, s.opts.logger)...)
	if err != nil {
		return nil, fmt.Errorf("%s: write file list: %w", role, err)
	}
	res.owned = append(res.owned, f)
	res.Manifests++
	return &FileArg{Role: role, Kind: corr2.List, Path: f.Path(), Files: paths}, nil
}
