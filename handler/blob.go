package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/blobstore"
	"github.com/hupe1980/stile/codec"
	"github.com/hupe1980/stile/schema"
	"github.com/hupe1980/stile/table"
)

// SidecarSuffix names the schema document stored next to a catalog blob.
const SidecarSuffix = ".schema.json"

// Sidecar describes a stored catalog.
type Sidecar struct {
	Fields schema.Schema `json:"fields"`
	Rows   int           `json:"rows"`
}

// SidecarName returns the sidecar blob name for a catalog blob.
func SidecarName(id string) string {
	c := CompressionOf(id)
	return strings.TrimSuffix(id, c.Suffix()) + SidecarSuffix
}

type options struct {
	codec  codec.Codec
	logger *stile.Logger
}

// Option configures a Blob handler.
type Option func(*options)

// WithCodec sets the sidecar codec (codec.Default).
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithLogger configures structured logging.
func WithLogger(l *stile.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Blob reads catalogs from a blob store. Blobs ending in ".zst" or ".lz4"
// are decompressed; a sidecar, when present, names the columns.
type Blob struct {
	store  blobstore.BlobStore
	temp   string
	codec  codec.Codec
	logger *stile.Logger
}

// NewBlob creates a Blob handler. An empty temp uses os.TempDir().
func NewBlob(store blobstore.BlobStore, temp string, opts ...Option) *Blob {
	o := options{codec: codec.Default}
	for _, fn := range opts {
		fn(&o)
	}
	if temp == "" {
		temp = os.TempDir()
	}
	return &Blob{
		store:  store,
		temp:   temp,
		codec:  o.codec,
		logger: o.logger.OrNoop(),
	}
}

// Name returns "blob".
func (*Blob) Name() string { return "blob" }

// TempDir returns the temp directory.
func (b *Blob) TempDir() string { return b.temp }

// Store returns the underlying blob store.
func (b *Blob) Store() blobstore.BlobStore { return b.store }

// Load fetches, decompresses and parses the blob named id.
func (b *Blob) Load(ctx context.Context, id string) (*table.Named, error) {
	data, err := blobstore.ReadAll(ctx, b.store, id)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, stile.NewMissingFileError(id, err)
		}
		return nil, err
	}

	c := CompressionOf(id)
	if data, err = decompress(data, c); err != nil {
		return nil, stile.WrapMalformedInput(err, fmt.Sprintf("decompress %s (%s)", id, c))
	}

	sc, err := b.sidecar(ctx, id)
	if err != nil {
		return nil, err
	}
	var s schema.Schema
	if sc != nil {
		s = sc.Fields
	}

	n, err := table.ReadASCII(bytes.NewReader(data), s)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", id, err)
	}
	if sc != nil && sc.Rows != n.Len() {
		b.logger.Warn("row count differs from sidecar", "id", id, "rows", n.Len(), "sidecar_rows", sc.Rows)
	}
	b.logger.Debug("loaded blob", "id", id, "bytes", len(data), "rows", n.Len())
	return n, nil
}

// LoadFile reads a staged file from the local filesystem.
func (b *Blob) LoadFile(ctx context.Context, path string, s schema.Schema) (*table.Named, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadFile(path, s)
}

// Put stores n under id plus the compression suffix, with a sidecar
// recording its schema. It returns the catalog blob name.
func (b *Blob) Put(ctx context.Context, id string, n *table.Named, c Compression) (string, error) {
	var buf bytes.Buffer
	if err := table.WriteASCII(&buf, n); err != nil {
		return "", err
	}
	data, err := compress(buf.Bytes(), c)
	if err != nil {
		return "", err
	}

	name := id + c.Suffix()
	if err := b.store.Put(ctx, name, data); err != nil {
		return "", fmt.Errorf("put %s: %w", name, err)
	}

	sc, err := b.codec.Marshal(Sidecar{Fields: n.Schema(), Rows: n.Len()})
	if err != nil {
		return "", err
	}
	if err := b.store.Put(ctx, SidecarName(name), sc); err != nil {
		return "", fmt.Errorf("put %s: %w", SidecarName(name), err)
	}
	return name, nil
}

// List returns the catalog blobs under prefix, excluding sidecars.
func (b *Blob) List(ctx context.Context, prefix string) ([]string, error) {
	names, err := b.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := names[:0]
	for _, name := range names {
		if !strings.HasSuffix(name, SidecarSuffix) {
			out = append(out, name)
		}
	}
	return out, nil
}

func (b *Blob) sidecar(ctx context.Context, id string) (*Sidecar, error) {
	data, err := blobstore.ReadAll(ctx, b.store, SidecarName(id))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var sc Sidecar
	if err := b.codec.Unmarshal(data, &sc); err != nil {
		return nil, stile.WrapMalformedInput(err, "decode sidecar "+SidecarName(id))
	}
	if err := sc.Fields.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}
