package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1.0, cfg.EV.BulkThreshold)
	assert.Equal(t, 20, cfg.EV.TopCardLimit)
	assert.Equal(t, "sealed-ev/1.0", cfg.Scryfall.UserAgent)
	assert.False(t, cfg.App.DebugMode)
	assert.NotEmpty(t, cfg.Data.DatabasePath)
	assert.NotEmpty(t, cfg.Data.MappingPath)
	assert.Empty(t, cfg.Data.RulesPath)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFromOverridesDefaults(t *testing.T) {
	data := `
[ev]
bulk_threshold = 0.5

[app]
debug_mode = true
`
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.EV.BulkThreshold)
	assert.True(t, cfg.App.DebugMode)
	// Untouched sections keep their defaults.
	assert.Equal(t, 20, cfg.EV.TopCardLimit)
	assert.Equal(t, "sealed-ev/1.0", cfg.Scryfall.UserAgent)
}

func TestLoadFromInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative bulk threshold", func(c *Config) { c.EV.BulkThreshold = -1 }},
		{"zero top card limit", func(c *Config) { c.EV.TopCardLimit = 0 }},
		{"empty database path", func(c *Config) { c.Data.DatabasePath = "" }},
		{"empty mapping path", func(c *Config) { c.Data.MappingPath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidateZeroBulkThresholdAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EV.BulkThreshold = 0
	assert.NoError(t, cfg.Validate())
}
