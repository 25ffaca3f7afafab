package commands

import (
	"os"
	"path/filepath"

	"github.com/colonyops/taskcal/internal/board"
	"github.com/colonyops/taskcal/internal/core/auth"
	"github.com/colonyops/taskcal/internal/core/config"
	"github.com/colonyops/taskcal/internal/core/kv"
	"github.com/colonyops/taskcal/internal/store/jsonfile"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Store is the key-value store backing the board and the sign-in.
	Store kv.KV

	// Files is set when the jsonfile driver is in use. Watch reloads it
	// before refreshing the board.
	Files *jsonfile.Store

	Board *board.Board
	Auth  *auth.Service
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "taskcal", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "taskcal")
}
