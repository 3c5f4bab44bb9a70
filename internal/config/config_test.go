package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
explorer:
  page_size: 25
  columns: 4
thumbnails:
  enabled: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 25, cfg.Explorer.PageSize)
	assert.Equal(t, 4, cfg.Explorer.Columns)
	assert.Equal(t, float32(96), cfg.Explorer.ItemSize)
	assert.False(t, cfg.Thumbnails.Enabled)
	assert.Equal(t, 512, cfg.Thumbnails.MemoryEntries)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "explorer: [",
		"zero page size": "explorer:\n  page_size: 0\n",
		"negative gap":   "explorer:\n  gap: -1\n",
		"auto no size":   "explorer:\n  item_size: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Explorer.ShowHidden = true
	cfg.Thumbnails.CacheDir = "/tmp/thumbs"

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	p, err := ExpandPath("~/thumbs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "thumbs"), p)

	p, err = ExpandPath("/abs")
	require.NoError(t, err)
	assert.Equal(t, "/abs", p)
}
