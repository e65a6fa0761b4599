// Package config loads and persists the sealed-ev configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Data locations
	Data DataConfig `toml:"data"`

	// EV calculation settings
	EV EVConfig `toml:"ev"`

	// Scryfall client settings
	Scryfall ScryfallConfig `toml:"scryfall"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// DataConfig contains file locations for local state.
type DataConfig struct {
	Dir          string `toml:"dir"`           // Base data directory
	DatabasePath string `toml:"database_path"` // SQLite card snapshot cache
	MappingPath  string `toml:"mapping_path"`  // Expansion mapping store
	RulesPath    string `toml:"rules_path"`    // Collation rule override (empty = embedded defaults)
}

// EVConfig contains EV calculation settings.
type EVConfig struct {
	BulkThreshold float64 `toml:"bulk_threshold"` // Minimum EUR price to count toward averages
	TopCardLimit  int     `toml:"top_card_limit"` // Entries in ranked card lists
}

// ScryfallConfig contains Scryfall API client settings.
type ScryfallConfig struct {
	UserAgent string `toml:"user_agent"` // User-Agent header for API requests
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Data: DataConfig{
			Dir:          dataDir,
			DatabasePath: filepath.Join(dataDir, "cards.db"),
			MappingPath:  filepath.Join(dataDir, "expansion_mapping.json"),
			RulesPath:    "",
		},
		EV: EVConfig{
			BulkThreshold: 1.0,
			TopCardLimit:  20,
		},
		Scryfall: ScryfallConfig{
			UserAgent: "sealed-ev/1.0",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// defaultDataDir returns the per-user data directory.
func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sealed-ev"
	}
	return filepath.Join(homeDir, ".sealed-ev")
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".sealed-ev")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.EV.BulkThreshold < 0 {
		return fmt.Errorf("bulk threshold cannot be negative: %v", c.EV.BulkThreshold)
	}
	if c.EV.TopCardLimit <= 0 {
		return fmt.Errorf("top card limit must be positive: %d", c.EV.TopCardLimit)
	}
	if c.Data.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.Data.MappingPath == "" {
		return fmt.Errorf("mapping path cannot be empty")
	}
	return nil
}
