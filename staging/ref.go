package staging

import (
	"github.com/hupe1980/stile/schema"
	"github.com/hupe1980/stile/table"
	"github.com/hupe1980/stile/tempfile"
)

// Ref is one staged data reference: InMemory, OnDisk or Owned.
type Ref interface {
	isRef()
}

// InMemory is a named array that has to be written before use.
type InMemory struct {
	Array *table.Named
}

// OnDisk is an existing file whose columns follow Schema.
type OnDisk struct {
	Path   string
	Schema schema.Schema
}

// Owned is a temp file handle held by the caller. Its fields give the schema.
type Owned struct {
	File *tempfile.File
}

func (InMemory) isRef() {}
func (OnDisk) isRef()   {}
func (Owned) isRef()    {}

// Dataset is the data for one role: a single reference or a sequence of
// references of the same kind. A nil or empty Dataset is absent.
type Dataset []Ref

// Array wraps a named array.
func Array(n *table.Named) Dataset { return Dataset{InMemory{Array: n}} }

// File wraps an existing file and its schema.
func File(path string, s schema.Schema) Dataset { return Dataset{OnDisk{Path: path, Schema: s}} }

// Handle wraps a temp file handle.
func Handle(f *tempfile.File) Dataset { return Dataset{Owned{File: f}} }

// Many combines references into one Dataset.
func Many(refs ...Ref) Dataset { return Dataset(refs) }

// Arrays wraps several named arrays.
func Arrays(ns ...*table.Named) Dataset {
	d := make(Dataset, len(ns))
	for i, n := range ns {
		d[i] = InMemory{Array: n}
	}
	return d
}

// Files wraps several existing files sharing nothing but their role.
func Files(refs ...OnDisk) Dataset {
	d := make(Dataset, len(refs))
	for i, r := range refs {
		d[i] = r
	}
	return d
}
