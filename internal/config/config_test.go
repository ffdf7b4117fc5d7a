package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Bloom.ExpectedItems, cfg.Bloom.ExpectedItems)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Bloom.ExpectedItems = 42
	cfg.Logging.Level = "debug"

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Bloom.ExpectedItems)
	assert.Equal(t, "debug", loaded.Logging.Level)
}

func TestLoad_OverlayPreservesUnspecifiedDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bloom:\n  expected_items: 500\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Bloom.ExpectedItems)
	assert.Equal(t, DefaultConfig().Query.SoftDeadline, cfg.Query.SoftDeadline)
}
