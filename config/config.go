// Package config loads the YAML configuration shared by the stile command
// and pipeline drivers.
package config

import (
	"bytes"
	"context"
	"errors"
	"io"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/adapter"
	"github.com/hupe1980/stile/blobstore"
	"github.com/hupe1980/stile/blobstore/minio"
	"github.com/hupe1980/stile/blobstore/s3"
	"github.com/hupe1980/stile/codec"
	"github.com/hupe1980/stile/corr2"
	"github.com/hupe1980/stile/handler"
)

// Storage backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendMinIO = "minio"
)

// ValidBackends lists the accepted store backends.
var ValidBackends = []string{BackendLocal, BackendS3, BackendMinIO}

// Config is the top-level configuration.
type Config struct {
	// TempDir receives staged files; empty means the OS temp directory.
	TempDir       string      `yaml:"temp_dir"`
	KeepTempFiles bool        `yaml:"keep_temp_files"`
	Log           LogConfig   `yaml:"log"`
	Corr2         Corr2Config `yaml:"corr2"`
	Store         StoreConfig `yaml:"store"`
	Adapters      []string    `yaml:"adapters"`
	// Codec names the sidecar codec of blob stores ("json" or "go-json").
	Codec string `yaml:"codec,omitempty"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Corr2Config configures the correlation tool.
type Corr2Config struct {
	Binary     string         `yaml:"binary"`
	ConfigFile string         `yaml:"config_file,omitempty"`
	Params     map[string]any `yaml:"params,omitempty"`
}

// StoreConfig selects where catalogs are read from.
type StoreConfig struct {
	Backend   string `yaml:"backend"`
	Root      string `yaml:"root,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Region    string `yaml:"region,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Secure    bool   `yaml:"secure,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Corr2: Corr2Config{
			Binary: corr2.DefaultBinary,
		},
		Store: StoreConfig{
			Backend: BackendLocal,
			Root:    ".",
		},
		Adapters: adapter.Default.Names(),
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// The environment variables STILE_TEMP_DIR, STILE_LOG_LEVEL,
// STILE_ACCESS_KEY and STILE_SECRET_KEY override the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Parse decodes YAML into cfg. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("STILE_TEMP_DIR"); v != "" {
		c.TempDir = v
	}
	if v := os.Getenv("STILE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STILE_ACCESS_KEY"); v != "" {
		c.Store.AccessKey = v
	}
	if v := os.Getenv("STILE_SECRET_KEY"); v != "" {
		c.Store.SecretKey = v
	}
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks the configuration for values no component would accept.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", c.Log.Format)
	}

	if c.Corr2.Binary == "" {
		return fmt.Errorf("corr2 binary not configured")
	}

	if !slices.Contains(ValidBackends, c.Store.Backend) {
		return fmt.Errorf("invalid store backend %q (want one of %s)", c.Store.Backend, strings.Join(ValidBackends, ", "))
	}
	if c.Store.Backend != BackendLocal && c.Store.Bucket == "" {
		return fmt.Errorf("store backend %s needs a bucket", c.Store.Backend)
	}
	if c.Store.Backend == BackendMinIO && c.Store.Endpoint == "" {
		return fmt.Errorf("store backend minio needs an endpoint")
	}

	for _, name := range c.Adapters {
		if _, ok := adapter.Default.Get(name); !ok {
			return fmt.Errorf("%w: %q", adapter.ErrUnknownAdapter, name)
		}
	}

	if c.Codec != "" {
		if _, ok := codec.ByName(c.Codec); !ok {
			return fmt.Errorf("unknown codec %q (want one of %s)", c.Codec, strings.Join(codec.Names(), ", "))
		}
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}

// Logger builds the configured logger.
func (c *Config) Logger() *stile.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if c.Log.Format == "json" {
		return stile.NewJSONLogger(level)
	}
	return stile.NewTextLogger(level)
}

// Corr2Params returns the corr2 defaults with the configured overrides.
func (c *Config) Corr2Params() corr2.Params {
	return corr2.DefaultParams().Merge(corr2.Params(c.Corr2.Params))
}

// Runner returns a corr2 runner for the configured binary.
func (c *Config) Runner(log *stile.Logger) *corr2.Runner {
	return &corr2.Runner{
		Binary:     c.Corr2.Binary,
		ConfigFile: c.Corr2.ConfigFile,
		Logger:     log,
	}
}

// OpenStore opens the configured blob store.
func (c *Config) OpenStore(ctx context.Context) (blobstore.BlobStore, error) {
	s := c.Store
	switch s.Backend {
	case BackendLocal, "":
		root := s.Root
		if root == "" {
			root = "."
		}
		return blobstore.NewLocalStore(root), nil
	case BackendS3:
		opts := []s3.Option{s3.WithPrefix(s.Prefix)}
		if s.Region != "" {
			opts = append(opts, s3.WithRegion(s.Region))
		}
		if s.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(s.Endpoint))
		}
		return s3.New(ctx, s.Bucket, opts...)
	case BackendMinIO:
		opts := []minio.Option{minio.WithPrefix(s.Prefix), minio.WithSecure(s.Secure)}
		if s.AccessKey != "" {
			opts = append(opts, minio.WithCredentials(s.AccessKey, s.SecretKey))
		}
		if s.Region != "" {
			opts = append(opts, minio.WithRegion(s.Region))
		}
		return minio.Dial(s.Endpoint, s.Bucket, opts...)
	default:
		return nil, fmt.Errorf("invalid store backend %q", s.Backend)
	}
}

// Handler returns the data handler for the configured store. Local stores
// read files directly; remote stores go through handler.Blob.
func (c *Config) Handler(ctx context.Context) (handler.DataHandler, error) {
	if c.Store.Backend == BackendLocal || c.Store.Backend == "" {
		root := c.Store.Root
		if root == "" {
			root = "."
		}
		return handler.NewLocal(root, c.TempDir), nil
	}

	store, err := c.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	opts := []handler.Option{handler.WithLogger(c.Logger())}
	if c.Codec != "" {
		cd, ok := codec.ByName(c.Codec)
		if !ok {
			return nil, fmt.Errorf("unknown codec %q", c.Codec)
		}
		opts = append(opts, handler.WithCodec(cd))
	}
	return handler.NewBlob(store, c.TempDir, opts...), nil
}
