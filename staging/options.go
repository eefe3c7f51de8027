package staging

import (
	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/corr2"
	"github.com/hupe1980/stile/internal/fs"
)

type options struct {
	logger  *stile.Logger
	metrics stile.MetricsCollector
	params  corr2.Params
	keep    bool
	fsys    fs.FileSystem
}

// Option configures a Stager.
type Option func(*options)

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

// WithParams overrides corr2 parameters. They are applied over
// corr2.DefaultParams and under the derived column and file arguments.
func WithParams(p corr2.Params) Option {
	return func(o *options) {
		o.params = p
	}
}

// WithKeepFiles leaves temp files on disk when a Result is closed.
func WithKeepFiles() Option {
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
