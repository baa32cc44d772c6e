package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 20, cfg.DefaultLimit)
	assert.Equal(t, 150, cfg.SmallSystemThreshold)
	assert.Equal(t, 500, cfg.BigSystemThreshold)
	assert.Equal(t, 2, cfg.FuzzyFloor)
	assert.InDelta(t, 0.34, cfg.FuzzyFactor, 1e-9)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.yaml")
	content := "default_limit: 10\nsmall_system_threshold: 50\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.DefaultLimit)
	assert.Equal(t, 50, cfg.SmallSystemThreshold)

	// Omitted fields fall back to defaults
	assert.Equal(t, 500, cfg.BigSystemThreshold)
	assert.Equal(t, 2, cfg.FuzzyFloor)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.yaml")
	require.NoError(t, os.WriteFile(path, []byte("small_system_threshold: 600\n"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FuzzyFactor = 1.5
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.SmallSystemThreshold = cfg.BigSystemThreshold + 1
	assert.Error(t, cfg.Validate())
}
