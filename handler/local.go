package handler

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hupe1980/stile/schema"
	"github.com/hupe1980/stile/table"
)

// Local reads catalogs stored as ASCII tables under a root directory.
type Local struct {
	root string
	temp string
}

// NewLocal creates a Local handler. An empty temp uses os.TempDir().
func NewLocal(root, temp string) *Local {
	if temp == "" {
		temp = os.TempDir()
	}
	return &Local{root: root, temp: temp}
}

// Name returns "local".
func (*Local) Name() string { return "local" }

// TempDir returns the temp directory.
func (l *Local) TempDir() string { return l.temp }

// Path resolves id against the root. Absolute ids are used as is.
func (l *Local) Path(id string) string {
	if filepath.IsAbs(id) {
		return id
	}
	return filepath.Join(l.root, id)
}

// Load reads the table stored at Path(id), naming columns from its header.
func (l *Local) Load(ctx context.Context, id string) (*table.Named, error) {
	return l.LoadFile(ctx, l.Path(id), nil)
}

// LoadFile reads the table at path.
func (l *Local) LoadFile(ctx context.Context, path string, s schema.Schema) (*table.Named, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadFile(path, s)
}
