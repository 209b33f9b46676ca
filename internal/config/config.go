// Package config provides configuration management for the back-office loader.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"trading-backoffice/internal/logging"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Store StoreConfig       `mapstructure:"store"`
	Log   logging.LogConfig `mapstructure:"log"`
}

// StoreConfig holds storage backend configuration.
type StoreConfig struct {
	Driver              string         `mapstructure:"driver"` // "postgres" or "sqlite"
	Postgres            PostgresConfig `mapstructure:"postgres"`
	SQLite              SQLiteConfig   `mapstructure:"sqlite"`
	NetPositionsTable   string         `mapstructure:"net_positions_table"`
	IntradayTradesTable string         `mapstructure:"intraday_trades_table"`
}

// PostgresConfig holds Postgres connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MinConns int    `mapstructure:"min_conns"`
	MaxConns int    `mapstructure:"max_conns"`
}

// SQLiteConfig holds SQLite settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/backoffice"
	}
	return filepath.Join(home, ".config", "backoffice")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: DriverSQLite,
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Name:     "backoffice",
				User:     "backoffice",
				SSLMode:  "prefer",
				MinConns: 1,
				MaxConns: 4,
			},
			SQLite: SQLiteConfig{
				Path: filepath.Join(DefaultConfigDir(), "backoffice.db"),
			},
			NetPositionsTable:   "net_positions",
			IntradayTradesTable: "intraday_trades",
		},
		Log: logging.DefaultLogConfig(),
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// No config file: defaults plus env overrides.
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies BACKOFFICE_* environment variables on top of the
// file configuration. Credentials in particular normally arrive this way.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BACKOFFICE_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("BACKOFFICE_PG_HOST"); v != "" {
		cfg.Store.Postgres.Host = v
	}
	if v := os.Getenv("BACKOFFICE_PG_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Store.Postgres.Port = p
		}
	}
	if v := os.Getenv("BACKOFFICE_PG_NAME"); v != "" {
		cfg.Store.Postgres.Name = v
	}
	if v := os.Getenv("BACKOFFICE_PG_USER"); v != "" {
		cfg.Store.Postgres.User = v
	}
	if v := os.Getenv("BACKOFFICE_PG_PASSWORD"); v != "" {
		cfg.Store.Postgres.Password = v
	}
	if v := os.Getenv("BACKOFFICE_SQLITE_PATH"); v != "" {
		cfg.Store.SQLite.Path = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Store.NetPositionsTable == "" {
		return fmt.Errorf("net_positions_table must not be empty")
	}
	if c.Store.IntradayTradesTable == "" {
		return fmt.Errorf("intraday_trades_table must not be empty")
	}

	if c.Store.Driver == DriverPostgres {
		pg := c.Store.Postgres
		if pg.Host == "" || pg.Name == "" || pg.User == "" {
			return fmt.Errorf("postgres host, name and user must be set")
		}
		if pg.MinConns < 0 || pg.MaxConns < 1 || pg.MinConns > pg.MaxConns {
			return fmt.Errorf("invalid postgres pool bounds (min %d, max %d)", pg.MinConns, pg.MaxConns)
		}
	}
	if c.Store.Driver == DriverSQLite && c.Store.SQLite.Path == "" {
		return fmt.Errorf("sqlite path must not be empty")
	}

	return nil
}
