// Package config loads server configuration from a TOML file with
// environment variable overrides. A .env file in the working directory is
// honored before the environment is read.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`
	AMQP     AMQPConfig     `toml:"amqp"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	TokenTTL  string `toml:"token_ttl"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

type AMQPConfig struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Server:   ServerConfig{Host: "127.0.0.1", Port: 8080},
		Database: DatabaseConfig{Path: "./data/splitledger.db"},
		Auth:     AuthConfig{TokenTTL: "24h"},
		Log:      LogConfig{Level: "info"},
		Metrics:  MetricsConfig{Enabled: true},
		AMQP:     AMQPConfig{Exchange: "splitledger.settlements"},
	}
}

// Load reads the TOML file at path (skipped when empty or missing) and
// applies environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}
	cfg.applyEnv()

	if cfg.Auth.JWTSecret == "" {
		return cfg, fmt.Errorf("auth.jwt_secret (or JWT_SECRET) is required")
	}
	if _, err := cfg.TokenTTL(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TokenTTL parses the configured token lifetime.
func (c Config) TokenTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid auth.token_ttl %q: %w", c.Auth.TokenTTL, err)
	}
	return d, nil
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		c.Auth.TokenTTL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		c.AMQP.URL = v
		c.AMQP.Enabled = true
	}
	if v := os.Getenv("AMQP_EXCHANGE"); v != "" {
		c.AMQP.Exchange = v
	}
}
