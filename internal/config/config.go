// Package config loads pocket-ledger settings from TOML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/currency"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendGCS    = "gcs"
	BackendMemory = "memory"
)

// Config holds all configuration for pocket-ledger
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Rates    RatesConfig    `toml:"rates"`
	Ledger   LedgerConfig   `toml:"ledger"`
	Worker   WorkerConfig   `toml:"worker"`
	BigQuery BigQueryConfig `toml:"bigquery"`
	Logging  LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port for http.Server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig selects where the ledger snapshot lives.
type StorageConfig struct {
	Backend  string `toml:"backend"`
	Path     string `toml:"path"`     // file backend
	Versions int    `toml:"versions"` // previous snapshots kept by the file backend
	Bucket   string `toml:"bucket"`   // gcs backend
	Object   string `toml:"object"`   // gcs backend
}

// RatesConfig holds the exchange rate table, in units per US dollar. File,
// when set, is loaded first and Table entries override it.
type RatesConfig struct {
	File  string             `toml:"file"`
	Table map[string]float64 `toml:"table"`
}

// LedgerConfig tunes the ledger engine.
type LedgerConfig struct {
	UndoWindow string `toml:"undo_window"`
	MaxCatchUp int    `toml:"max_catch_up"`
}

// GetUndoWindow parses and returns the undo window
func (c *LedgerConfig) GetUndoWindow() time.Duration {
	d, err := time.ParseDuration(c.UndoWindow)
	if err != nil || d <= 0 {
		return 4 * time.Second
	}
	return d
}

// WorkerConfig holds the background worker schedule.
type WorkerConfig struct {
	Interval       string `toml:"interval"`
	BackupInterval string `toml:"backup_interval"`
	BackupBucket   string `toml:"backup_bucket"`
	BackupPrefix   string `toml:"backup_prefix"`
	QueueSize      int    `toml:"queue_size"`
	Workers        int    `toml:"workers"`
}

// GetInterval parses and returns the recurring run interval
func (c *WorkerConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// GetBackupInterval parses and returns the backup interval
func (c *WorkerConfig) GetBackupInterval() time.Duration {
	d, err := time.ParseDuration(c.BackupInterval)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// BigQueryConfig locates the transaction archive.
type BigQueryConfig struct {
	Project string `toml:"project"`
	Dataset string `toml:"dataset"`
	Table   string `toml:"table"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend:  BackendFile,
			Path:     "data/ledger.json",
			Versions: 5,
			Object:   "ledger.json",
		},
		Ledger: LedgerConfig{
			UndoWindow: "4s",
			MaxCatchUp: 1000,
		},
		Worker: WorkerConfig{
			Interval:       "1h",
			BackupInterval: "24h",
			BackupPrefix:   "backups",
			QueueSize:      100,
			Workers:        1,
		},
		BigQuery: BigQueryConfig{
			Dataset: "pocket_ledger",
			Table:   "transactions",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones and missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadConfig: reading %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("LoadConfig: parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}
	return config, nil
}

// applyEnvOverrides applies LEDGER_* environment variables to config
func applyEnvOverrides(config *Config) {
	if host := os.Getenv("LEDGER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("LEDGER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if v := os.Getenv("LEDGER_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("LEDGER_DATA_PATH"); v != "" {
		config.Storage.Path = v
	}
	if v := os.Getenv("LEDGER_BUCKET"); v != "" {
		config.Storage.Bucket = v
	}
	if v := os.Getenv("LEDGER_OBJECT"); v != "" {
		config.Storage.Object = v
	}
	if v := os.Getenv("LEDGER_RATES_FILE"); v != "" {
		config.Rates.File = v
	}

	if v := os.Getenv("LEDGER_WORKER_INTERVAL"); v != "" {
		config.Worker.Interval = v
	}
	if v := os.Getenv("LEDGER_BACKUP_BUCKET"); v != "" {
		config.Worker.BackupBucket = v
	}

	if v := os.Getenv("LEDGER_BQ_PROJECT"); v != "" {
		config.BigQuery.Project = v
	} else if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" && config.BigQuery.Project == "" {
		config.BigQuery.Project = v
	}

	if level := os.Getenv("LEDGER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the file backend")
		}
	case BackendGCS:
		if c.Storage.Bucket == "" || c.Storage.Object == "" {
			return errors.New("storage.bucket and storage.object are required for the gcs backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Worker.Workers < 1 {
		c.Worker.Workers = 1
	}
	return nil
}

// LoadRates builds the rate table: fallback constants, then the rates file,
// then the inline table.
func (c *Config) LoadRates() (currency.Rates, error) {
	rates := currency.Fallback()
	if c.Rates.File != "" {
		loaded, err := currency.LoadFile(c.Rates.File)
		if err != nil {
			return nil, fmt.Errorf("LoadRates: %w", err)
		}
		rates = rates.Merge(loaded)
	}

	inline := currency.Rates{}
	for code, v := range c.Rates.Table {
		inline[domain.Currency(code)] = decimal.NewFromFloat(v)
	}
	return rates.Merge(inline), nil
}
