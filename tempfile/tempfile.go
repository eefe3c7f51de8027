// Package tempfile provides a scoped handle owning one temporary file.
//
// A File is created by writing a table (or a list of paths) into a new,
// uniquely named file and is released by Close. Close removes the file
// unless the handle was created with WithKeep; releasing twice, or after
// the file was deleted by someone else, is not an error.
//
//	f, err := tempfile.New(dir, data)
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//	run(f.Path())
package tempfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/internal/fs"
	"github.com/hupe1980/stile/schema"
	"github.com/hupe1980/stile/table"
)

// DefaultPrefix starts the name of every temporary file.
const DefaultPrefix = "stile-"

// Source loads tables by identifier. handler.DataHandler implements it.
type Source interface {
	Name() string
	TempDir() string
	Load(ctx context.Context, id string) (*table.Named, error)
}

// Origin records where a handle's data came from. It does not keep the
// source alive.
type Origin struct {
	Handler string
	ID      string
}

type options struct {
	fields  []string
	keep    bool
	fsys    fs.FileSystem
	prefix  string
	origin  Origin
	logger  *stile.Logger
	metrics stile.MetricsCollector
}

// Option configures a File.
type Option func(*options)

// WithFields writes the columns in the given order. Columns missing from
// the data are written as NaN; empty names mark unused positions.
func WithFields(fields []string) Option {
	return func(o *options) {
		o.fields = fields
	}
}

// WithKeep leaves the file on disk when the handle is closed.
func WithKeep() Option {
	return func(o *options) {
		o.keep = true
	}
}

// WithFileSystem overrides the filesystem (fs.Default).
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}

// WithPrefix sets the file name prefix (DefaultPrefix).
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithLogger configures structured logging.
func WithLogger(l *stile.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics configures a metrics collector.
func WithMetrics(mc stile.MetricsCollector) Option {
	return func(o *options) {
		o.metrics = mc
	}
}

func withOrigin(origin Origin) Option {
	return func(o *options) {
		o.origin = origin
	}
}

func buildOptions(opts []Option) options {
	o := options{
		fsys:    fs.Default,
		prefix:  DefaultPrefix,
		metrics: stile.NoopMetricsCollector{},
	}
	for _, fn := range opts {
		fn(&o)
	}
	o.logger = o.logger.OrNoop()
	if o.metrics == nil {
		o.metrics = stile.NoopMetricsCollector{}
	}
	return o
}

// File owns a temporary file for its lifetime.
type File struct {
	path   string
	fields []string
	origin Origin
	keep   bool
	size   int64
	fsys   fs.FileSystem
	file   fs.File
	closed bool
}

// New writes data as an ASCII table to a new file in dir.
func New(dir string, data *table.Named, opts ...Option) (*File, error) {
	if data == nil {
		return nil, stile.NewMalformedInputError("nil table")
	}
	o := buildOptions(opts)

	out := data
	fields := data.Names()
	if o.fields != nil {
		var missing []string
		out, missing = data.Project(o.fields)
		fields = slices.Clone(o.fields)
		if len(missing) > 0 {
			o.logger.Warn("fields missing from data, writing NaN", "fields", missing)
		}
	}

	return create(dir, o, fields, func(f fs.File) error {
		return table.WriteASCII(f, out)
	}, out.Len())
}

// FromHandler loads id from src and writes it to a new file in the
// source's temp directory.
func FromHandler(ctx context.Context, src Source, id string, opts ...Option) (*File, error) {
	data, err := src.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load %s from %s: %w", id, src.Name(), err)
	}
	opts = append(opts, withOrigin(Origin{Handler: src.Name(), ID: id}))
	return New(src.TempDir(), data, opts...)
}

// NewList writes paths, one per line, to a new file in dir. Such list files
// are how multiple inputs for one role are handed to the correlation tool.
func NewList(dir string, paths []string, opts ...Option) (*File, error) {
	for _, p := range paths {
		if p == "" || strings.ContainsAny(p, "\r\n") {
			return nil, stile.NewMalformedInputError("invalid path %q in file list", p)
		}
	}
	o := buildOptions(opts)
	return create(dir, o, nil, func(f fs.File) error {
		_, err := f.Write([]byte(strings.Join(paths, "\n") + "\n"))
		return err
	}, len(paths))
}

func create(dir string, o options, fields []string, write func(fs.File) error, rows int) (*File, error) {
	f, err := o.fsys.CreateTemp(dir, o.prefix+"*.dat")
	if err != nil {
		o.metrics.RecordTempFile(0, err)
		o.logger.LogTempFile(context.Background(), dir, rows, err)
		return nil, fmt.Errorf("create temp file in %s: %w", dir, err)
	}

	tf := &File{
		path:   f.Name(),
		fields: fields,
		origin: o.origin,
		keep:   o.keep,
		fsys:   o.fsys,
		file:   f,
	}

	err = write(f)
	if err == nil {
		err = f.Sync()
	}
	if err == nil {
		var info os.FileInfo
		if info, err = f.Stat(); err == nil {
			tf.size = info.Size()
		}
	}
	if err != nil {
		tf.keep = false
		err = errors.Join(err, tf.Close())
		o.metrics.RecordTempFile(0, err)
		o.logger.LogTempFile(context.Background(), tf.path, rows, err)
		return nil, fmt.Errorf("write %s: %w", tf.path, err)
	}

	o.metrics.RecordTempFile(tf.size, nil)
	o.logger.LogTempFile(context.Background(), tf.path, rows, nil)
	return tf, nil
}

// Path returns the file's location.
func (f *File) Path() string { return f.path }

// String returns the file's location.
func (f *File) String() string { return f.path }

// Fields returns the column names written, in column order. List files
// have none.
func (f *File) Fields() []string { return slices.Clone(f.fields) }

// Schema returns the name to position mapping of the written columns.
func (f *File) Schema() schema.Schema { return schema.FromNames(f.fields) }

// Origin returns the handler and identifier the data was loaded from, if any.
func (f *File) Origin() Origin { return f.origin }

// Size returns the number of bytes written.
func (f *File) Size() int64 { return f.size }

// Closed reports whether Close has been called.
func (f *File) Closed() bool { return f.closed }

// Discard releases the handle and removes the file even if it was created
// with WithKeep.
func (f *File) Discard() error {
	if f == nil {
		return nil
	}
	if !f.closed {
		f.keep = false
		return f.Close()
	}
	exists, err := fs.Exists(f.fsys, f.path)
	if err != nil || !exists {
		return err
	}
	return f.fsys.Remove(f.path)
}

// Close releases the descriptor and, unless kept, removes the file if it
// still exists. Subsequent calls return nil.
func (f *File) Close() error {
	if f == nil || f.closed {
		return nil
	}
	f.closed = true

	var err error
	if f.file != nil {
		if cerr := f.file.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) {
			err = cerr
		}
		f.file = nil
	}
	if f.keep {
		return err
	}

	exists, serr := fs.Exists(f.fsys, f.path)
	if serr != nil {
		return errors.Join(err, serr)
	}
	if !exists {
		return err
	}
	if rerr := f.fsys.Remove(f.path); rerr != nil && !os.IsNotExist(rerr) {
		err = errors.Join(err, rerr)
	}
	return err
}
