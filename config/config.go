package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	LogLevel string         `mapstructure:"log_level"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int `mapstructure:"write_timeout"` // seconds
	IdleTimeout  int `mapstructure:"idle_timeout"`  // seconds
}

type DatabaseConfig struct {
	Path            string `mapstructure:"path"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // seconds
}

// Config keys and the environment variables that override them
var envBindings = map[string]string{
	"server.port":                "PORT",
	"server.read_timeout":        "READ_TIMEOUT",
	"server.write_timeout":       "WRITE_TIMEOUT",
	"server.idle_timeout":        "IDLE_TIMEOUT",
	"database.path":              "DB_PATH",
	"database.max_open_conns":    "DB_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DB_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DB_CONN_MAX_LIFETIME",
	"log_level":                  "LOG_LEVEL",
}

// New returns a viper instance with defaults and environment bindings set.
// Callers may bind command line flags on top of it before calling Decode.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("database.path", "books.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("log_level", "info")

	for key, env := range envBindings {
		// BindEnv only fails when called without a key
		_ = v.BindEnv(key, env)
	}
	return v
}

// ReadFile merges the config file at path into v. An empty path looks for
// bookshelf.{yaml,toml,json} in the working directory and is not an error
// when none exists.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("bookshelf")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Decode builds a Config from v
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Load creates a new Config from defaults, an optional config file and
// environment variables
func Load(path string) (*Config, error) {
	v := New()
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Default returns the built-in configuration, ignoring files and environment
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         3001,
			ReadTimeout:  15,
			WriteTimeout: 15,
			IdleTimeout:  60,
		},
		Database: DatabaseConfig{
			Path:            "books.db",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 300,
		},
		LogLevel: "info",
	}
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func (d DatabaseConfig) Lifetime() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}
