// Package config loads the steward runtime configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure for steward.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Actors   ActorsConfig   `yaml:"actors"`
	Accounts []AccountEntry `yaml:"accounts"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type AuthConfig struct {
	// JWTSecret is the HMAC secret for delegated-user bearer tokens.
	JWTSecret string `yaml:"jwt_secret"`
}

type StorageConfig struct {
	// Driver is "memory", "sqlite", or "postgres".
	Driver string `yaml:"driver"`

	// Path is the SQLite database file (sqlite driver).
	Path string `yaml:"path"`

	// DSN is the connection string (postgres driver).
	DSN string `yaml:"dsn"`
}

type ActorsConfig struct {
	// IdleEviction is how long an actor may sit idle before the sweeper
	// reclaims it.
	IdleEviction time.Duration `yaml:"idle_eviction"`

	// SweepInterval is how often the sweeper runs.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// AccountEntry declares one account served by the static directory.
type AccountEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the configuration file, expanding environment
// variables before decoding.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "memory"
	}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.Path == "" {
		cfg.Storage.Path = "steward.db"
	}
	if cfg.Actors.IdleEviction == 0 {
		cfg.Actors.IdleEviction = 15 * time.Minute
	}
	if cfg.Actors.SweepInterval == 0 {
		cfg.Actors.SweepInterval = time.Minute
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate rejects configurations that cannot serve.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	seen := map[string]bool{}
	for _, account := range c.Accounts {
		if account.ID == "" {
			return fmt.Errorf("account entries require an id")
		}
		if seen[account.ID] {
			return fmt.Errorf("duplicate account id %q", account.ID)
		}
		seen[account.ID] = true
	}
	return nil
}
