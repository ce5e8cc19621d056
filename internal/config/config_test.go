package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into dir for the test so a stray .env is not picked up.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Arial", c.Font)
	assert.Equal(t, "Helvetica", c.FallbackFont)
	assert.Equal(t, 30, c.HistBins)
	assert.Equal(t, 6.4, c.PlotWidthIn)
	assert.Equal(t, "plot_var.png", c.HistogramPath)
	assert.Equal(t, "plot_two_vars.png", c.ScatterPath)
	assert.Equal(t, "html", c.ReportFormat)
	assert.True(t, c.Correlations)
	assert.Equal(t, 60, c.HTTPTimeoutSec)
	assert.Equal(t, "127.0.0.1:8080", c.ServeAddr)
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")

	c, err := Load(path)
	require.NoError(t, err)
	c.HistBins = 12
	c.ReportFormat = "pdf"
	c.Correlations = false
	require.NoError(t, Save(c, path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, again.HistBins)
	assert.Equal(t, "pdf", again.ReportFormat)
	assert.False(t, again.Correlations)
}

func TestSaveToHomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, t.TempDir())

	require.NoError(t, Save(&Global{Font: "Times"}, ""))
	_, err := os.Stat(filepath.Join(home, ".dfstats", "config.yaml"))
	require.NoError(t, err)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Times", c.Font)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hist_bins: 12\nlog_level: warn\n"), 0o644))
	t.Setenv("DFSTATS_HIST_BINS", "7")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, c.HistBins)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestDotEnvIsLoaded(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DFSTATS_SERVE_ADDR=0.0.0.0:9000\n"), 0o644))
	t.Setenv("DFSTATS_SERVE_ADDR", "")
	os.Unsetenv("DFSTATS_SERVE_ADDR")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", c.ServeAddr)
}

func TestDefaultsMatchLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), c)
}
