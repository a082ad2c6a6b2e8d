// Package config provides YAML-based configuration loading for taskyard.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config is the top-level taskyard configuration, loaded from taskyard.yaml.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	Recurrence RecurrenceConfig `yaml:"recurrence"`
	Log        LogConfig        `yaml:"log"`
	Breaker    BreakerConfig    `yaml:"breaker"`
}

// DatabaseConfig selects and addresses the backing store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Path     string `yaml:"path"` // sqlite file
	URI      string `yaml:"uri"`  // mongo connection string
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// RecurrenceConfig controls the scheduled instance generator.
type RecurrenceConfig struct {
	Schedule    string `yaml:"schedule"`
	HorizonDays int    `yaml:"horizon_days"`
}

// LogConfig controls logging output and rotation.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	JSON       bool   `yaml:"json"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// BreakerConfig tunes the circuit breaker around MongoDB calls.
type BreakerConfig struct {
	MaxFailures    uint32 `yaml:"max_failures"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Load reads a YAML config file from path and returns a validated Config.
// A .env file next to the config, if present, is loaded into the process
// environment first so TASKYARD_* variables can override file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", envPath, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config, applying
// environment overrides.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides secrets and endpoints from TASKYARD_* variables.
func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("TASKYARD_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := getenv("TASKYARD_DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := getenv("TASKYARD_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := getenv("TASKYARD_MONGO_URI"); v != "" {
		c.Database.URI = v
	}
	if v := getenv("TASKYARD_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: TASKYARD_SERVER_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := getenv("TASKYARD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			c.Database.Path = "taskyard.db"
		}
	case DriverMongo:
		if c.Database.URI == "" {
			c.Database.URI = "mongodb://127.0.0.1:27017"
		}
	}
	if c.Database.Name == "" {
		c.Database.Name = "taskyard"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Recurrence.Schedule == "" {
		c.Recurrence.Schedule = "0 * * * *"
	}
	if c.Recurrence.HorizonDays == 0 {
		c.Recurrence.HorizonDays = 30
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
	if c.Breaker.MaxFailures == 0 {
		c.Breaker.MaxFailures = 3
	}
	if c.Breaker.TimeoutSeconds == 0 {
		c.Breaker.TimeoutSeconds = 5
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite, DriverMongo:
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not one of mysql, sqlite, mongo", c.Database.Driver))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Recurrence.HorizonDays < 0 {
		errs = append(errs, "recurrence.horizon_days must not be negative")
	}
	if _, err := cron.ParseStandard(c.Recurrence.Schedule); err != nil {
		errs = append(errs, fmt.Sprintf("recurrence.schedule %q: %v", c.Recurrence.Schedule, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
