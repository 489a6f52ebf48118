package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/metascrape/internal/codec"
)

func TestLoadFromPath_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), Dir, FileName)
	want := Default()
	want.Output.Dir = "out"
	want.Output.Layout = string(codec.FlatLayout)
	want.Scrape.Workers = 2
	want.Scrape.CheckOverrides = []string{"SuppressWarningsHolder", "SuppressWithNearbyTextFilter"}

	require.NoError(t, Write(path, want))

	got, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadFromPath_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  dir: generated\n"), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "generated", cfg.Output.Dir)
	assert.Equal(t, string(codec.PackageLayout), cfg.Output.Layout)
	assert.Equal(t, 4, cfg.Scrape.Workers)
	assert.Equal(t, Default().Sources, cfg.Sources)
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	t.Setenv("METASCRAPE_SCRAPE_WORKERS", "9")
	t.Setenv("METASCRAPE_OUTPUT_LAYOUT", "flat")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Scrape.Workers)
	assert.Equal(t, codec.FlatLayout, cfg.RunnerOptions("").Layout)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"layout", "output:\n  layout: tree\n"},
		{"workers", "scrape:\n  workers: 0\n"},
		{"level", "logging:\n  level: loud\n"},
		{"yaml", "output: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := LoadFromPath(path)
			assert.Error(t, err)
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()

	sc := cfg.Scraper()
	assert.Equal(t, []string{"null", "the charset property of the parent"}, sc.NoDefaultSentinels)
	assert.Equal(t, []string{"SuppressWarningsHolder"}, sc.CheckOverrides)

	src := cfg.RunnerSources()
	assert.Equal(t, []string{"checks", "filters", "filefilters"}, src.Folders)

	opts := cfg.RunnerOptions("")
	assert.Equal(t, "meta", opts.OutputDir)
	assert.Equal(t, codec.PackageLayout, opts.Layout)
	assert.Equal(t, 4, opts.Workers)
	assert.Equal(t, "elsewhere", cfg.RunnerOptions("elsewhere").OutputDir)

	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
	cfg.Logging.Level = "debug"
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
}
