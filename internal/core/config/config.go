// Package config handles configuration loading and validation for taskcal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/taskcal/internal/core/styles"
	"github.com/colonyops/taskcal/internal/transfer"
)

// Storage drivers.
const (
	DriverJSONFile = "jsonfile"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	Theme    string         `yaml:"theme"`
	Storage  StorageConfig  `yaml:"storage"`
	Transfer TransferConfig `yaml:"transfer"`
	Log      LogConfig      `yaml:"log"`
	Watch    WatchConfig    `yaml:"watch"`
	Auth     AuthConfig     `yaml:"auth"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// StorageConfig selects where tasks, bookings and the user are kept.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	// Path is the directory holding the data file. Defaults to DataDir.
	Path string `yaml:"path"`
}

// TransferConfig controls export and import.
type TransferConfig struct {
	ExportFile     string   `yaml:"export_file"`
	ImportPatterns []string `yaml:"import_patterns"`
}

// LogConfig bounds the rotating log file.
type LogConfig struct {
	MaxSizeMB  int `yaml:"max_size_mb"`
	MaxBackups int `yaml:"max_backups"`
	MaxAgeDays int `yaml:"max_age_days"`
}

// WatchConfig tunes `taskcal watch`.
type WatchConfig struct {
	Debounce      time.Duration `yaml:"debounce"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// AuthConfig controls the local sign-in.
type AuthConfig struct {
	// SessionTTL expires a sign-in. Zero keeps it until logout.
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Theme: styles.DefaultTheme,
		Storage: StorageConfig{
			Driver: DriverJSONFile,
		},
		Transfer: TransferConfig{
			ExportFile:     transfer.DefaultFileName,
			ImportPatterns: append([]string(nil), transfer.DefaultPatterns...),
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Watch: WatchConfig{
			Debounce:      50 * time.Millisecond,
			SweepInterval: time.Minute,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = defaults.Storage.Driver
	}
	if c.Storage.Path == "" {
		c.Storage.Path = c.DataDir
	}
	if c.Transfer.ExportFile == "" {
		c.Transfer.ExportFile = defaults.Transfer.ExportFile
	}
	if len(c.Transfer.ImportPatterns) == 0 {
		c.Transfer.ImportPatterns = defaults.Transfer.ImportPatterns
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = defaults.Log.MaxSizeMB
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = defaults.Watch.Debounce
	}
	if c.Watch.SweepInterval == 0 {
		c.Watch.SweepInterval = defaults.Watch.SweepInterval
	}
}

// StorageDir is the directory the data file lives in.
func (c *Config) StorageDir() string {
	return c.Storage.Path
}

// LogFile returns the default log file location.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "logs", "taskcal.log")
}
