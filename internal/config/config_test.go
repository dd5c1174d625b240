package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory so no config.yaml or .env
// from the repository is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(FileEnv, "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, ":8080", cfg.Server.Addr())

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)

	assert.Equal(t, SourceFile, cfg.Data.Source)
	assert.Equal(t, "Economic_Indicators.xlsx", cfg.Data.WorkbookPath)
	assert.Equal(t, "Data_Visualization.py", cfg.Data.ScriptName)
	assert.Equal(t, "Monthly", cfg.Data.DefaultSheet)
	assert.Equal(t, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Data.Start())
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), cfg.Data.End())

	assert.Equal(t, 1000, cfg.Charts.Width)
	assert.Equal(t, 500, cfg.Charts.Height)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)

	yamlDoc := `
server:
  port: 9090
  read_timeout: 5s
data:
  workbook_path: data/indicators.xlsx
  default_start: "2019-01-01"
charts:
  width: 640
`
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))
	t.Setenv(FileEnv, path)
	t.Setenv("MACRO_SERVER_PORT", "7070")
	t.Setenv("MACRO_SECURITY_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port, "env overrides file")
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout, "file overrides default")
	assert.Equal(t, 15*time.Second, Default().Server.ReadTimeout)
	assert.Equal(t, "data/indicators.xlsx", cfg.Data.WorkbookPath)
	assert.Equal(t, "2019-01-01", cfg.Data.DefaultStart)
	assert.Equal(t, 640, cfg.Charts.Width)
	assert.Equal(t, 500, cfg.Charts.Height, "keys absent from the file keep defaults")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.yaml"), []byte("logging:\n  level: debug\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MACRO_CHARTS_WORKERS=2\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MACRO_CHARTS_WORKERS") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Charts.Workers)
}

func TestLoadRejectsUnknownFileKeys(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  prot: 1\n"), 0o644))
	t.Setenv(FileEnv, path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format",
		},
		{
			name:    "file output without path",
			mutate:  func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" },
			wantErr: "file path is required",
		},
		{
			name:    "unknown source",
			mutate:  func(c *Config) { c.Data.Source = "ftp" },
			wantErr: "invalid data source",
		},
		{
			name:    "sheets without spreadsheet id",
			mutate:  func(c *Config) { c.Data.Source = SourceSheets },
			wantErr: "spreadsheet id is required",
		},
		{
			name: "sheets with spreadsheet id",
			mutate: func(c *Config) {
				c.Data.Source = SourceSheets
				c.Data.SpreadsheetID = "abc"
			},
		},
		{
			name:    "bad start date",
			mutate:  func(c *Config) { c.Data.DefaultStart = "01/01/2017" },
			wantErr: "invalid default start",
		},
		{
			name:    "end before start",
			mutate:  func(c *Config) { c.Data.DefaultEnd = "2016-12-31" },
			wantErr: "is before default start",
		},
		{
			name:    "zero chart size",
			mutate:  func(c *Config) { c.Charts.Width = 0 },
			wantErr: "chart size must be positive",
		},
		{
			name:    "cors without origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name:    "rate limit without burst",
			mutate:  func(c *Config) { c.Security.RateLimit.Burst = 0 },
			wantErr: "rate limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
