package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stile"
	"github.com/hupe1980/stile/codec"
	"github.com/hupe1980/stile/schema"
)

type env struct {
	data   string
	temp   string
	config string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{data: t.TempDir(), temp: t.TempDir()}
	e.config = filepath.Join(t.TempDir(), "stile.yaml")
	cfg := "temp_dir: " + e.temp + "\nstore:\n  backend: local\n  root: " + e.data + "\n"
	require.NoError(t, os.WriteFile(e.config, []byte(cfg), 0o600))
	return e
}

func (e *env) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.data, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStage_PassThrough(t *testing.T) {
	e := newEnv(t)
	a := e.write(t, "a.dat", "1 2\n")
	b := e.write(t, "b.dat", "3 4\n5 6\n")

	out, err := e.run(t, "stage", "--primary", a+":ra=0,dec=1", "--secondary", b+":ra=0,dec=1", "-p", "nbins=7")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines, "file_name="+a)
	assert.Contains(t, lines, "file_name2="+b)
	assert.Contains(t, lines, "ra_col=1")
	assert.Contains(t, lines, "dec_col=2")
	assert.Contains(t, lines, "nbins=7")
}

func TestStage_JSONWithConflict(t *testing.T) {
	e := newEnv(t)
	small := e.write(t, "small.dat", "# ra dec\n1 2\n")
	large := e.write(t, "large.dat", "# ra x dec\n1 0 2\n3 0 4\n")

	out, err := e.run(t, "stage", "--primary", small, "--secondary", large+":ra=0,dec=2", "--json")
	require.NoError(t, err)

	var sum stageSummary
	require.NoError(t, codec.GoJSON{}.Unmarshal([]byte(out), &sum))
	assert.Equal(t, []string{small}, sum.Evicted)
	assert.Equal(t, 1, sum.Rewritten)
	assert.Equal(t, []string{"ra", "", "dec"}, sum.Fields)
	require.Len(t, sum.TempFiles, 1)
	assert.Equal(t, e.temp, filepath.Dir(sum.TempFiles[0]))

	_, err = os.Stat(sum.TempFiles[0])
	assert.NoError(t, err, "staged files are kept without --run")
}

func TestStage_IDsBecomeList(t *testing.T) {
	e := newEnv(t)
	e.write(t, "v1.dat", "# ra dec g1 g2\n1 2 0.1 0.2\n")
	e.write(t, "v2.dat", "# ra dec g1 g2\n3 4 0.3 0.4\n")

	out, err := e.run(t, "stage", "--primary-id", "v1.dat", "--primary-id", "v2.dat", "--json")
	require.NoError(t, err)

	var sum stageSummary
	require.NoError(t, codec.GoJSON{}.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 2, sum.Written)
	assert.Equal(t, 1, sum.Manifests)
	assert.Contains(t, sum.Args, "file_list")
	assert.EqualValues(t, 3, sum.Args["g1_col"])
}

func TestStage_Errors(t *testing.T) {
	e := newEnv(t)
	a := e.write(t, "a.dat", "1 2\n")

	_, err := e.run(t, "stage", "--primary", filepath.Join(e.data, "missing.dat")+":ra=0")
	assert.ErrorIs(t, err, stile.ErrMissingFile)

	_, err = e.run(t, "stage", "--primary", a+":ra=0", "--primary-id", "a.dat")
	assert.ErrorIs(t, err, stile.ErrMalformedInput)

	_, err = e.run(t, "stage", "--primary", a+":ra=0,dec=0")
	assert.ErrorIs(t, err, stile.ErrSchemaMismatch)

	_, err = e.run(t, "stage", "--primary", a+":ra=0,dec=99999999999")
	assert.ErrorIs(t, err, stile.ErrSchemaMismatch)

	_, err = e.run(t, "stage", "-p", "novalue")
	assert.Error(t, err)
}

func TestMask(t *testing.T) {
	e := newEnv(t)
	cat := e.write(t, "cat.dat", "# ra classification.extendedness flux.psf\n1 1 5\n2 0 1\n3 0 9\n4 1 7\n")

	out, err := e.run(t, "mask", "--type", "star", cat)
	require.NoError(t, err)
	assert.Equal(t, "star: 2 of 4 rows\n", out)

	out, err = e.run(t, "mask", "-t", "galaxy", "--columns", "ra", cat)
	require.NoError(t, err)
	assert.Equal(t, "# ra\n1\n4\n", out)

	_, err = e.run(t, "mask", "-t", "nonexistent-type", cat)
	assert.ErrorIs(t, err, stile.ErrUnknownObjectType)
}

func TestAdapters(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "adapters")
	require.NoError(t, err)
	assert.Equal(t, "* StarXGalaxyShear\n* StatsPSFFlux\n", out)
}

func TestBins(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "bins", "--bin", "list:ra:0,1,2", "--bin", "step:dec:0:1:2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ra_0-dec_0\t"))
	assert.True(t, strings.HasPrefix(lines[3], "ra_1-dec_1\t"))

	_, err = e.run(t, "bins", "--bin", "grid:ra:0")
	assert.Error(t, err)
}

func TestParseFileSpec(t *testing.T) {
	path, s, err := parseFileSpec("/data/a.dat:ra=0,dec=2")
	require.NoError(t, err)
	assert.Equal(t, "/data/a.dat", path)
	assert.Equal(t, schema.Schema{"ra": 0, "dec": 2}, s)

	path, s, err = parseFileSpec("C:/data/a.dat")
	require.NoError(t, err)
	assert.Equal(t, "C:/data/a.dat", path)
	assert.Nil(t, s)

	for _, bad := range []string{"", ":ra=0", "a.dat:ra=x", "a.dat:=1", "a.dat:ra=0,dec=0"} {
		_, _, err := parseFileSpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseParams(t *testing.T) {
	p, err := parseParams([]string{"nbins=30", "min_sep=0.1", "sep_units=arcmin", "verbose=true", "empty="})
	require.NoError(t, err)
	assert.Equal(t, 30, p["nbins"])
	assert.Equal(t, 0.1, p["min_sep"])
	assert.Equal(t, "arcmin", p["sep_units"])
	assert.Equal(t, true, p["verbose"])
	assert.Equal(t, "", p["empty"])
}
