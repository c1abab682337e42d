package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-mds/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestHelp(t *testing.T) {
	for _, sub := range []string{"meta", "diagnostics", "open"} {
		out, err := execute(t, sub, "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
		assert.Contains(t, out, "mdsinfo "+sub)
	}
}

func TestMetaCommand(t *testing.T) {
	dir := testutil.BarotropicGyre().Write(t)

	out, err := execute(t, "meta", filepath.Join(dir, "XC.meta"), filepath.Join(dir, "T.0000000010"))
	require.NoError(t, err)
	assert.Contains(t, out, "Shape:      [60 60]")
	assert.Contains(t, out, "Type:       float32")
	assert.Contains(t, out, "Iteration:  10")

	_, err = execute(t, "meta")
	assert.Error(t, err)
	_, err = execute(t, "meta", filepath.Join(dir, "nope.meta"))
	assert.Error(t, err)
}

func TestDiagnosticsCommand(t *testing.T) {
	dir := testutil.GlobalOceLatLon().Write(t)
	log := filepath.Join(dir, "available_diagnostics.log")

	out, err := execute(t, "diagnostics", log, "--layer", "1RHO=31")
	require.NoError(t, err)
	assert.Regexp(t, `UVEL\s+15 UUR     MR\s+\(k,j,i_g\)\s+m/s`, out)
	assert.Regexp(t, `LaTs1RHO\s+29 .*\(l1_i,j,i\)`, out)

	out, err = execute(t, "diagnostics", log)
	require.NoError(t, err)
	assert.Regexp(t, `LaTs1RHO\s+29 .*\(_UNKNOWN_,j,i\)`, out)
}

func TestOpenCommand(t *testing.T) {
	dir := testutil.InternalWave().Write(t)

	out, err := execute(t, "open", dir, "--prefix", "T,Eta", "--ref-date", "1990-1-1 0:0:0", "--delta-t", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "Iterations: [0 100 200]")
	assert.Contains(t, out, "Times:      1990-01-01 00:00:00 .. 1990-01-01 03:20:00")
	assert.Contains(t, out, "Coordinates:")
	assert.Contains(t, out, "Data variables:")
	assert.Regexp(t, `\n  T\s+field\s+\(time, k, j, i\) \[3 20 1 30\] float32`, out)
	assert.Contains(t, out, "min=0 max=")

	out, err = execute(t, "open", dir, "--iters", "none", "--swap-dims", "--stats=false")
	require.NoError(t, err)
	assert.Regexp(t, `\n  XC\s+grid\s+\(XC\) \[30\]`, out)
	assert.NotContains(t, out, "min=")
	assert.NotContains(t, out, "Data variables:\n  T ")

	_, err = execute(t, "open", dir, "--iters", "x")
	assert.Error(t, err)
	_, err = execute(t, "open", dir, "--endian", "middle")
	assert.Error(t, err)
}

func TestOpenCommandConfig(t *testing.T) {
	dir := testutil.BarotropicGyre().Write(t)
	cfg := testutil.WriteFile(t, t.TempDir(), "mds.yaml", "iters: [10]\nprefixes: [Eta]\nread_grid: false\n")

	out, err := execute(t, "open", dir, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Iterations: [10]")
	assert.NotContains(t, out, "  XC ")

	out, err = execute(t, "open", dir, "--config", cfg, "--iters", "0,10")
	require.NoError(t, err)
	assert.Contains(t, out, "Iterations: [0 10]", "flags override the config file")
	assert.True(t, strings.Contains(out, "Eta"))
}
