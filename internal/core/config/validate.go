package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/colonyops/taskcal/internal/core/styles"
)

// Validate checks that the configuration is valid. Every failing field is
// reported as a criterio.FieldErrors entry.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, notBlank),
		criterio.Run("theme", c.Theme, knownTheme),
		criterio.Run("storage.driver", c.Storage.Driver, knownDriver),
		criterio.Run("storage.path", c.Storage.Path, isDirectoryOrNotExist),
		criterio.Run("transfer.export_file", c.Transfer.ExportFile, plainFileName),
		c.validateImportPatterns(),
		criterio.Run("log.max_size_mb", c.Log.MaxSizeMB, nonNegative),
		criterio.Run("log.max_backups", c.Log.MaxBackups, nonNegative),
		criterio.Run("log.max_age_days", c.Log.MaxAgeDays, nonNegative),
		criterio.Run("watch.debounce", c.Watch.Debounce, positiveDuration),
		criterio.Run("watch.sweep_interval", c.Watch.SweepInterval, positiveDuration),
		criterio.Run("auth.session_ttl", c.Auth.SessionTTL, nonNegativeDuration),
	)
}

func (c *Config) validateImportPatterns() error {
	var errs criterio.FieldErrorsBuilder
	for i, p := range c.Transfer.ImportPatterns {
		if !doublestar.ValidatePattern(p) {
			errs = errs.Append(fmt.Sprintf("transfer.import_patterns[%d]", i), fmt.Errorf("invalid glob %q", p))
		}
	}
	return errs.ToError()
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

func knownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}

func knownDriver(d string) error {
	if !slices.Contains([]string{DriverJSONFile, DriverSQLite}, d) {
		return fmt.Errorf("must be %q or %q, got %q", DriverJSONFile, DriverSQLite, d)
	}
	return nil
}

func plainFileName(name string) error {
	if strings.ContainsRune(name, os.PathSeparator) {
		return fmt.Errorf("must be a file name, not a path: %q", name)
	}
	return nil
}

func nonNegative(n int) error {
	if n < 0 {
		return fmt.Errorf("must not be negative, got %d", n)
	}
	return nil
}

func positiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", d)
	}
	return nil
}

func nonNegativeDuration(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("must not be negative, got %s", d)
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
