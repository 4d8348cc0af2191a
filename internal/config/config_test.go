package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 180, cfg.Signals.WindowDays)
	assert.Equal(t, SourceFile, cfg.Ledger.Source)
	assert.Empty(t, cfg.Export.GCSPrefix)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: true},
		{name: "unknown source", mutate: func(c *Config) { c.Ledger.Source = "postgres" }, wantErr: true},
		{name: "file without path", mutate: func(c *Config) { c.Ledger.Path = "" }, wantErr: true},
		{
			name:    "gcs without gs prefix",
			mutate:  func(c *Config) { c.Ledger.Source = SourceGCS; c.Ledger.GCSPrefix = "bucket/ledgers" },
			wantErr: true,
		},
		{
			name:   "gcs",
			mutate: func(c *Config) { c.Ledger.Source = SourceGCS; c.Ledger.GCSPrefix = "gs://bucket/ledgers" },
		},
		{
			name:    "bigquery without dataset",
			mutate:  func(c *Config) { c.Ledger.Source = SourceBigQuery; c.Ledger.Project = "p" },
			wantErr: true,
		},
		{
			name: "bigquery",
			mutate: func(c *Config) {
				c.Ledger.Source = SourceBigQuery
				c.Ledger.Project = "p"
				c.Ledger.Dataset = "spendsense"
			},
		},
		{name: "zero window", mutate: func(c *Config) { c.Signals.WindowDays = 0 }, wantErr: true},
		{name: "bad export prefix", mutate: func(c *Config) { c.Export.GCSPrefix = "/tmp/exports" }, wantErr: true},
		{
			name:    "export without workers",
			mutate:  func(c *Config) { c.Export.GCSPrefix = "gs://b/exports"; c.Export.Workers = 0 },
			wantErr: true,
		},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spendsense.yaml")
	content := `
server:
  port: "9090"
  read_timeout: 5s
ledger:
  source: bigquery
  project: demo-project
  dataset: spendsense
signals:
  window_days: 30
log:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout, "unset fields keep defaults")
	assert.Equal(t, SourceBigQuery, cfg.Ledger.Source)
	assert.Equal(t, "demo-project", cfg.Ledger.Project)
	assert.Equal(t, 30, cfg.Signals.WindowDays)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SPENDSENSE_PORT":          "7000",
		"SPENDSENSE_LEDGER_SOURCE": SourceGCS,
		"SPENDSENSE_GCS_PREFIX":    "gs://ledgers/users",
		"SPENDSENSE_WINDOW_DAYS":   "90",
		"SPENDSENSE_EXPORT_PREFIX": "gs://exports/archive",
		"LOG_LEVEL":                "debug",
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, SourceGCS, cfg.Ledger.Source)
	assert.Equal(t, "gs://ledgers/users", cfg.Ledger.GCSPrefix)
	assert.Equal(t, 90, cfg.Signals.WindowDays)
	assert.Equal(t, "gs://exports/archive", cfg.Export.GCSPrefix)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_BadWindow(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(func(k string) string {
		if k == "SPENDSENSE_WINDOW_DAYS" {
			return "half a year"
		}
		return ""
	})
	assert.Error(t, err)
}
