// Package config loads SpendSense configuration from a YAML file, a .env
// file and environment variables, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Ledger source kinds.
const (
	SourceFile     = "file"
	SourceGCS      = "gcs"
	SourceBigQuery = "bigquery"
)

// Config represents the complete SpendSense configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Signals SignalsConfig `yaml:"signals"`
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// LedgerConfig selects where user ledgers are read from.
type LedgerConfig struct {
	// Source is one of file, gcs or bigquery.
	Source string `yaml:"source"`
	// Path is the snapshot file for the file source.
	Path string `yaml:"path"`
	// GCSPrefix is the gs:// prefix holding <user_id>.json snapshots.
	GCSPrefix string `yaml:"gcs_prefix"`
	Project   string `yaml:"project"`
	Dataset   string `yaml:"dataset"`
}

// SignalsConfig configures signal detection.
type SignalsConfig struct {
	WindowDays int `yaml:"window_days"`
}

// ExportConfig configures archiving of scenario exports.
type ExportConfig struct {
	// GCSPrefix is the gs:// prefix for archived exports. Empty disables archiving.
	GCSPrefix  string `yaml:"gcs_prefix"`
	QueueSize  int    `yaml:"queue_size"`
	Workers    int    `yaml:"workers"`
	MaxRetries int    `yaml:"max_retries"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Ledger: LedgerConfig{
			Source: SourceFile,
			Path:   "data/ledger.json",
		},
		Signals: SignalsConfig{
			WindowDays: 180,
		},
		Export: ExportConfig{
			QueueSize:  100,
			Workers:    2,
			MaxRetries: 3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	switch c.Ledger.Source {
	case SourceFile:
		if c.Ledger.Path == "" {
			return fmt.Errorf("ledger.path is required for source %q", SourceFile)
		}
	case SourceGCS:
		if !strings.HasPrefix(c.Ledger.GCSPrefix, "gs://") {
			return fmt.Errorf("ledger.gcs_prefix must be a gs:// URI for source %q", SourceGCS)
		}
	case SourceBigQuery:
		if c.Ledger.Project == "" || c.Ledger.Dataset == "" {
			return fmt.Errorf("ledger.project and ledger.dataset are required for source %q", SourceBigQuery)
		}
	default:
		return fmt.Errorf("ledger.source must be one of %s, %s, %s; got %q",
			SourceFile, SourceGCS, SourceBigQuery, c.Ledger.Source)
	}

	if c.Signals.WindowDays <= 0 {
		return fmt.Errorf("signals.window_days must be positive")
	}

	if c.Export.GCSPrefix != "" {
		if !strings.HasPrefix(c.Export.GCSPrefix, "gs://") {
			return fmt.Errorf("export.gcs_prefix must be a gs:// URI")
		}
		if c.Export.QueueSize <= 0 || c.Export.Workers <= 0 {
			return fmt.Errorf("export.queue_size and export.workers must be positive")
		}
	}
	if c.Export.MaxRetries < 0 {
		return fmt.Errorf("export.max_retries must not be negative")
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json; got %q", c.Log.Format)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString("SPENDSENSE_PORT", &c.Server.Port)
	setString("SPENDSENSE_LEDGER_SOURCE", &c.Ledger.Source)
	setString("SPENDSENSE_LEDGER_PATH", &c.Ledger.Path)
	setString("SPENDSENSE_GCS_PREFIX", &c.Ledger.GCSPrefix)
	setString("GCP_PROJECT", &c.Ledger.Project)
	setString("BQ_DATASET", &c.Ledger.Dataset)
	setString("SPENDSENSE_EXPORT_PREFIX", &c.Export.GCSPrefix)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)

	if v := getenv("SPENDSENSE_WINDOW_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SPENDSENSE_WINDOW_DAYS: %w", err)
		}
		c.Signals.WindowDays = days
	}
	return nil
}

// Load builds the configuration: defaults, then the YAML file at path when
// path is non-empty, then .env, then the process environment. The result is
// validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("Load: %w", err)
		}
		cfg = fileCfg
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("Load: .env: %w", err)
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Load: invalid config: %w", err)
	}
	return cfg, nil
}
