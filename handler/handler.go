// Package handler loads catalogs for staging.
//
// A DataHandler turns an identifier into a named array and re-reads staged
// files under a declared schema. It also owns the directory where temporary
// files are created. Two implementations are provided: Local reads ASCII
// tables from a directory and Blob reads (optionally compressed) tables from
// a blobstore.BlobStore.
package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/internal/mmap"
	"github.com/hupe1980/stile/schema"
	"github.com/hupe1980/stile/table"
)

// DataHandler supplies data and a temp directory to staging.
type DataHandler interface {
	// Name identifies the handler in logs and temp file origins.
	Name() string
	// TempDir is where temporary files are created.
	TempDir() string
	// Load returns the catalog identified by id.
	Load(ctx context.Context, id string) (*table.Named, error)
	// LoadFile reads the table at path. A non-nil schema names the columns;
	// otherwise the file's header is used.
	LoadFile(ctx context.Context, path string, s schema.Schema) (*table.Named, error)
}

// ReadFile reads the ASCII table at path under schema s.
func ReadFile(path string, s schema.Schema) (*table.Named, error) {
	m, err := mmap.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, stile.NewMissingFileError(path, err)
		}
		return nil, err
	}
	defer m.Close()

	_ = m.Advise(mmap.AccessSequential)
	n, err := table.ReadASCII(bytes.NewReader(m.Bytes()), s)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return n, nil
}

// LoadMany loads ids through dh with at most limit loads in flight
// (unlimited when limit <= 0). Results keep the order of ids; the first
// error cancels the remaining loads.
func LoadMany(ctx context.Context, dh DataHandler, ids []string, limit int) ([]*table.Named, error) {
	out := make([]*table.Named, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, id := range ids {
		g.Go(func() error {
			n, err := dh.Load(ctx, id)
			if err != nil {
				return fmt.Errorf("load %s: %w", id, err)
			}
			out[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
