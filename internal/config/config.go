// Package config handles global dya preferences and the alias
// definition file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// MaxHistorySize caps the configured command history length.
const MaxHistorySize = 1000

// DefaultHistorySize is used when no history size is configured.
const DefaultHistorySize = 20

// Config represents the global dya preferences from config.toml.
// Per-alias-file settings (the `config` document in the YAML file)
// override these.
type Config struct {
	// HistorySize bounds the interactive shell command history.
	HistorySize int `toml:"history_size"`

	// Verbose enables startup diagnostics (loaded paths, cache stats).
	Verbose bool `toml:"verbose"`

	// Shell controls whether running dya with no arguments opens the
	// interactive shell (default: true).
	Shell *bool `toml:"shell"`

	// Cache controls whether the encrypted result cache is used
	// (default: true).
	Cache *bool `toml:"cache"`

	// AliasFile overrides alias definition file discovery.
	AliasFile string `toml:"alias_file"`

	// CacheFile overrides cache file discovery.
	CacheFile string `toml:"cache_file"`
}

// ShellEnabled reports whether the interactive shell opens on a bare
// invocation (default: true).
func (c *Config) ShellEnabled() bool {
	return c.Shell == nil || *c.Shell
}

// CacheEnabled reports whether the result cache is in use (default: true).
func (c *Config) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}

// EffectiveHistorySize returns the configured history size clamped to
// [1, MaxHistorySize], falling back to DefaultHistorySize.
func (c *Config) EffectiveHistorySize() int {
	return ClampHistorySize(c.HistorySize)
}

// ClampHistorySize normalizes a configured history size. Zero and
// negative values fall back to the default; oversized values are capped.
func ClampHistorySize(n int) int {
	if n <= 0 {
		return DefaultHistorySize
	}
	if n > MaxHistorySize {
		return MaxHistorySize
	}
	return n
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/dya/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	// Prefer XDG-style ~/.config/dya/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "dya", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	// Fall back to XDG config dir or OS-specific location
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "dya", "config.toml")
	}

	// Last resort fallback
	return filepath.Join(".", "config.toml")
}

// CreateDefault creates a default config file if it doesn't exist.
func CreateDefault() (string, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil // Already exists
	}

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# dya Configuration

# Interactive shell history length (max 1000)
# history_size = 20

# Print startup diagnostics (loaded paths, cache stats)
# verbose = false

# Open the interactive shell when dya runs with no arguments
# shell = true

# Use the encrypted result cache for dynamic sources
# cache = true

# Override alias definition file discovery
# alias_file = "~/.dya.yaml"

# Override cache file discovery
# cache_file = "~/.dya.json"
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}
