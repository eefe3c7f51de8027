package staging

import (
	"errors"

	"github.com/hupe1980/stile/corr2"
	"github.com/hupe1980/stile/schema"
	"github.com/hupe1980/stile/tempfile"
)

// FileArg is the corr2 file argument of one role.
type FileArg struct {
	Role corr2.Role
	Kind corr2.Kind
	// Path is the catalog (Name) or the list file (List).
	Path string
	// Files are the catalogs behind the argument, in input order.
	Files []string
}

// Key returns the corr2 keyword, e.g. "rand_file_list".
func (a *FileArg) Key() string { return corr2.FileKey(a.Role, a.Kind) }

// Result is the outcome of a staging run. It owns every temp file it
// created until Close.
type Result struct {
	RunID string

	Primary   *FileArg
	Secondary *FileArg
	Random    *FileArg
	Random2   *FileArg

	// Schema is the unified column layout; Fields lists it by position with
	// "" for unused columns.
	Schema schema.Schema
	Fields []string
	// Params are corr2 defaults, overrides and column arguments.
	Params corr2.Params

	// Written counts arrays written, Rewritten counts files rewritten after
	// a schema conflict and Manifests counts list files.
	Written   int
	Rewritten int
	Manifests int
	// Evicted lists the rewritten files in eviction order.
	Evicted []string

	owned []*tempfile.File
}

func (r *Result) set(role corr2.Role, arg *FileArg) {
	switch role {
	case corr2.Primary:
		r.Primary = arg
	case corr2.Secondary:
		r.Secondary = arg
	case corr2.Random:
		r.Random = arg
	case corr2.Random2:
		r.Random2 = arg
	}
}

// Arg returns the file argument for role, or nil when the role is absent.
func (r *Result) Arg(role corr2.Role) *FileArg {
	switch role {
	case corr2.Primary:
		return r.Primary
	case corr2.Secondary:
		return r.Secondary
	case corr2.Random:
		return r.Random
	case corr2.Random2:
		return r.Random2
	default:
		return nil
	}
}

// Args returns Params plus the file argument of every present role.
func (r *Result) Args() corr2.Params {
	p := r.Params.Clone()
	for _, role := range corr2.Roles() {
		if a := r.Arg(role); a != nil {
			p[a.Key()] = a.Path
		}
	}
	return p
}

// TempFiles returns the paths of the temp files owned by r.
func (r *Result) TempFiles() []string {
	paths := make([]string, len(r.owned))
	for i, f := range r.owned {
		paths[i] = f.Path()
	}
	return paths
}

// Close releases every owned temp file. It is safe to call more than once.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, f := range r.owned {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

func (r *Result) discard() error {
	var errs []error
	for _, f := range r.owned {
		errs = append(errs, f.Discard())
	}
	r.owned = nil
	return errors.Join(errs...)
}
