// Package config loads the BioStream server configuration from a YAML file,
// an optional .env file and environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/bigyambat/BioStream/editor"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverNone     = "none"
)

// Environment variables that override the file.
const (
	EnvDatabaseURL  = "DATABASE_URL"
	EnvDriver       = "BIOSTREAM_DB_DRIVER"
	EnvAddr         = "BIOSTREAM_ADDR"
	EnvLogLevel     = "BIOSTREAM_LOG_LEVEL"
	EnvLogFormat    = "BIOSTREAM_LOG_FORMAT"
	EnvAutoConnect  = "BIOSTREAM_AUTO_CONNECT"
	EnvHistoryLimit = "BIOSTREAM_HISTORY_LIMIT"
	EnvAutosave     = "BIOSTREAM_AUTOSAVE"
)

// Config is the full server configuration.
type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		// EventBuffer is the per-subscriber queue length of the change stream.
		EventBuffer int `yaml:"event_buffer"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Editor struct {
		HistoryLimit int    `yaml:"history_limit"`
		AutoConnect  string `yaml:"auto_connect"`
		Author       string `yaml:"author"`
	} `yaml:"editor"`
	Autosave struct {
		// Schedule is a standard five-field cron expression or a descriptor
		// such as "@every 5m". Empty disables autosave.
		Schedule string `yaml:"schedule"`
	} `yaml:"autosave"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads path (skipped when empty), then any .env files (missing ones
// are ignored), then the environment. Defaults are applied and the result
// validated.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// godotenv.Load never overrides variables that are already set.
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() error {
	c.Database.DSN = envOrDefault(EnvDatabaseURL, c.Database.DSN)
	c.Database.Driver = envOrDefault(EnvDriver, c.Database.Driver)
	c.Server.Addr = envOrDefault(EnvAddr, c.Server.Addr)
	c.Log.Level = envOrDefault(EnvLogLevel, c.Log.Level)
	c.Log.Format = envOrDefault(EnvLogFormat, c.Log.Format)
	c.Editor.AutoConnect = envOrDefault(EnvAutoConnect, c.Editor.AutoConnect)
	c.Autosave.Schedule = envOrDefault(EnvAutosave, c.Autosave.Schedule)
	if v := strings.TrimSpace(os.Getenv(EnvHistoryLimit)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvHistoryLimit, err)
		}
		c.Editor.HistoryLimit = n
	}
	return nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.EventBuffer <= 0 {
		c.Server.EventBuffer = 64
	}

	if c.Database.Driver == "" {
		if isPostgresURL(c.Database.DSN) {
			c.Database.Driver = DriverPostgres
		} else {
			c.Database.Driver = DriverSQLite
		}
	}
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	if c.Database.Driver == DriverSQLite && c.Database.DSN == "" {
		c.Database.DSN = "biostream.db"
	}

	if c.Editor.HistoryLimit <= 0 {
		c.Editor.HistoryLimit = editor.DefaultHistoryLimit
	}
	if c.Editor.AutoConnect == "" {
		c.Editor.AutoConnect = editor.AutoConnectLatestLeaf.String()
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("config: database.dsn is required for postgres"))
		}
	case DriverSQLite, DriverNone:
	default:
		errs = append(errs, fmt.Errorf("config: unknown database.driver %q", c.Database.Driver))
	}
	if _, err := editor.ParseAutoConnect(c.Editor.AutoConnect); err != nil {
		errs = append(errs, fmt.Errorf("config: editor.auto_connect: %w", err))
	}
	if c.Autosave.Schedule != "" {
		if _, err := cron.ParseStandard(c.Autosave.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("config: autosave.schedule: %w", err))
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log.level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log.format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// EditorOptions returns the editor options the configuration describes.
func (c *Config) EditorOptions() []editor.Option {
	ac, _ := editor.ParseAutoConnect(c.Editor.AutoConnect)
	return []editor.Option{
		editor.WithAutoConnect(ac),
		editor.WithHistoryLimit(c.Editor.HistoryLimit),
	}
}

func isPostgresURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
