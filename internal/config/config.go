package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/pdxmph/tasks-tui/internal/tracker"
)

// Environment variables that override the config file
const (
	EnvBackend  = "TASKS_TUI_BACKEND"
	EnvDBPath   = "TASKS_TUI_DB"
	EnvLogLevel = "TASKS_TUI_LOG_LEVEL"
	EnvMaxBytes = "TASKS_TUI_ATTACHMENT_MAX_BYTES"
)

// Config holds the application configuration
type Config struct {
	Database    DatabaseConfig   `toml:"database"`
	Log         LogConfig        `toml:"log"`
	View        ViewConfig       `toml:"view"`
	Attachments AttachmentConfig `toml:"attachments"`
	Defaults    DefaultsConfig   `toml:"defaults"`
}

// DatabaseConfig selects the storage backend
type DatabaseConfig struct {
	Backend string `toml:"backend"` // sqlite, file, memory; empty tries sqlite then file
	Path    string `toml:"path"`
}

// LogConfig configures the rotating log file
type LogConfig struct {
	Path       string `toml:"path"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// ViewConfig holds presentation defaults
type ViewConfig struct {
	Sort string `toml:"sort"`
}

// AttachmentConfig limits attachment size
type AttachmentConfig struct {
	MaxBytes int64 `toml:"max_bytes"`
}

// DefaultsConfig seeds the reference lists of an empty store
type DefaultsConfig struct {
	Areas         []string               `toml:"areas"`
	Collaborators []tracker.Collaborator `toml:"collaborators"`
}

// Dir returns the configuration directory
func Dir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "tasks-tui")
}

// Default returns the default configuration
func Default() *Config {
	dir := Dir()
	builtin := tracker.BuiltinDefaults()
	return &Config{
		Database: DatabaseConfig{
			Backend: "sqlite",
			Path:    filepath.Join(dir, "tasks.db"),
		},
		Log: LogConfig{
			Path:       filepath.Join(dir, "tasks.log"),
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		View: ViewConfig{
			Sort: string(tracker.Descending),
		},
		Attachments: AttachmentConfig{
			MaxBytes: tracker.DefaultAttachmentLimit,
		},
		Defaults: DefaultsConfig{
			Areas:         builtin.Areas,
			Collaborators: builtin.Collaborators,
		},
	}
}

// Path returns the standard config file location
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load loads configuration from the standard location
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom loads configuration from a specific path, then applies
// environment overrides (including a .env file in the working directory)
func LoadFrom(configPath string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("checking config file: %w", err)
	}

	// A missing .env is the common case
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.Path = expandPath(cfg.Log.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBackend); v != "" {
		c.Database.Backend = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvMaxBytes); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMaxBytes, err)
		}
		c.Attachments.MaxBytes = n
	}
	return nil
}

// Validate checks values that would otherwise fail later
func (c *Config) Validate() error {
	if _, err := tracker.ParseSortOrder(c.View.Sort); err != nil {
		return fmt.Errorf("view.sort: %w", err)
	}
	if c.Attachments.MaxBytes < 0 {
		return fmt.Errorf("attachments.max_bytes must not be negative")
	}
	return nil
}

// SortOrder returns the configured default sort order
func (c *Config) SortOrder() tracker.SortOrder {
	o, err := tracker.ParseSortOrder(c.View.Sort)
	if err != nil {
		return tracker.Descending
	}
	return o
}

// TrackerDefaults returns the reference lists for an empty store
func (c *Config) TrackerDefaults() tracker.Defaults {
	return tracker.Defaults{
		Areas:         c.Defaults.Areas,
		Collaborators: c.Defaults.Collaborators,
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves the configuration to the standard location
func (c *Config) Save() error {
	if err := os.MkdirAll(Dir(), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return c.SaveTo(Path())
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(configPath string) error {
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}

