package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stile/adapter"
	"github.com/hupe1980/stile/blobstore"
	"github.com/hupe1980/stile/handler"
)

const sample = `
temp_dir: /tmp/stile
keep_temp_files: true
log:
  level: debug
  format: json
corr2:
  binary: /opt/bin/corr2
  params:
    nbins: 12
    min_sep: 0.1
store:
  backend: local
  root: ./data
adapters: [StatsPSFFlux]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendLocal, cfg.Store.Backend)
	assert.Equal(t, adapter.Default.Names(), cfg.Adapters)
	assert.Equal(t, 20, cfg.Corr2Params()["nbins"])
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/tmp/stile", cfg.TempDir)
	assert.True(t, cfg.KeepTempFiles)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, "/opt/bin/corr2", cfg.Corr2.Binary)
	assert.Equal(t, []string{"StatsPSFFlux"}, cfg.Adapters)

	p := cfg.Corr2Params()
	assert.Equal(t, 12, p["nbins"])
	assert.Equal(t, 0.1, p["min_sep"])
	assert.Equal(t, 1.0, p["max_sep"])
	assert.Equal(t, "degrees", p["sep_units"])

	assert.NotNil(t, cfg.Logger())
	assert.Equal(t, "/opt/bin/corr2", cfg.Runner(nil).Binary)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, "log: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = Load(writeConfig(t, "no_such_key: 1\n"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STILE_TEMP_DIR", "/scratch")
	t.Setenv("STILE_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "/scratch", cfg.TempDir)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Save(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"level", func(c *Config) { c.Log.Level = "loud" }},
		{"format", func(c *Config) { c.Log.Format = "xml" }},
		{"binary", func(c *Config) { c.Corr2.Binary = "" }},
		{"backend", func(c *Config) { c.Store.Backend = "ftp" }},
		{"bucket", func(c *Config) { c.Store.Backend = BackendS3 }},
		{"endpoint", func(c *Config) { c.Store.Backend = BackendMinIO; c.Store.Bucket = "b" }},
		{"adapter", func(c *Config) { c.Adapters = []string{"StarXGalaxyDensity"} }},
		{"codec", func(c *Config) { c.Codec = "msgpack" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestOpenStoreAndHandler(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Store.Root = root
	cfg.TempDir = t.TempDir()

	store, err := cfg.OpenStore(context.Background())
	require.NoError(t, err)
	ls, ok := store.(*blobstore.LocalStore)
	require.True(t, ok)
	assert.Equal(t, root, ls.Root())

	dh, err := cfg.Handler(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &handler.Local{}, dh)
	assert.Equal(t, cfg.TempDir, dh.TempDir())

	cfg.Store.Backend = "ftp"
	_, err = cfg.OpenStore(context.Background())
	assert.Error(t, err)
}
