package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(dataDir, "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, DriverJSONFile, cfg.Storage.Driver)
	assert.Equal(t, dataDir, cfg.StorageDir())
	assert.Equal(t, "tasks-data.json", cfg.Transfer.ExportFile)
	assert.Equal(t, []string{"*.json"}, cfg.Transfer.ImportPatterns)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, time.Minute, cfg.Watch.SweepInterval)
	assert.Zero(t, cfg.Auth.SessionTTL)
	assert.Equal(t, filepath.Join(dataDir, "logs", "taskcal.log"), cfg.LogFile())
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "tokyo-night", cfg.Theme)
}

func TestLoad_FromYAML(t *testing.T) {
	dataDir := t.TempDir()
	storeDir := t.TempDir()
	path := writeConfig(t, `
theme: gruvbox
storage:
  driver: sqlite
  path: `+storeDir+`
transfer:
  export_file: backup.json
  import_patterns: ["tasks-*.json", "*.bak.json"]
log:
  max_size_mb: 5
  max_backups: 0
watch:
  debounce: 200ms
auth:
  session_ttl: 12h
`)

	cfg, err := Load(path, dataDir)
	require.NoError(t, err)

	assert.Equal(t, "gruvbox", cfg.Theme)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, storeDir, cfg.StorageDir())
	assert.Equal(t, "backup.json", cfg.Transfer.ExportFile)
	assert.Equal(t, []string{"tasks-*.json", "*.bak.json"}, cfg.Transfer.ImportPatterns)
	assert.Equal(t, 5, cfg.Log.MaxSizeMB)
	assert.Equal(t, 0, cfg.Log.MaxBackups)
	assert.Equal(t, 200*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, dataDir, cfg.DataDir)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "storage: [unclosed")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
theme: neon
storage:
  driver: postgres
transfer:
  import_patterns: ["[bad"]
log:
  max_backups: -1
`)

	_, err := Load(path, t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{
		"theme",
		"storage.driver",
		"transfer.import_patterns[0]",
		"log.max_backups",
	}, fields)
}

func validConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.applyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{"valid", func(c *Config) {}, ""},
		{"blank data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
		{"export path", func(c *Config) { c.Transfer.ExportFile = "out/tasks.json" }, "transfer.export_file"},
		{"zero debounce", func(c *Config) { c.Watch.Debounce = 0 }, "watch.debounce"},
		{"negative ttl", func(c *Config) { c.Auth.SessionTTL = -time.Second }, "auth.session_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.wantField, fieldErrs[0].Field)
		})
	}
}

func TestValidate_StoragePathIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.Storage.Path = file

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, cfg.Validate(), &fieldErrs)
	assert.Equal(t, "storage.path", fieldErrs[0].Field)
}
