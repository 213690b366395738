// Package config loads store configuration from TOML files.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects a storage plugin and configures it
type Config struct {
	// Plugin is the name of the storage plugin: "memory",
	// "bbolt" or "sqlite".
	Plugin string `toml:"plugin"`

	// Options are handed to the plugin as-is. The durable
	// plugins require "path".
	Options map[string]interface{} `toml:"options"`

	// Log configures the logger built by Logger.
	Log LogConfig `toml:"log"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Development switches to human readable console output.
	Development bool `toml:"development"`
}

// Default returns the configuration of an in-memory store
// logging at info level
func Default() *Config {
	return &Config{
		Plugin:  "memory",
		Options: map[string]interface{}{},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration at path. Settings missing from
// the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	}

	return Parse(string(data))
}

// Parse decodes TOML configuration
func Parse(data string) (*Config, error) {
	cfg := Default()

	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}

	if cfg.Options == nil {
		cfg.Options = map[string]interface{}{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for errors
func (cfg *Config) Validate() error {
	if cfg.Plugin == "" {
		return errors.New("plugin must be set")
	}

	if _, err := cfg.level(); err != nil {
		return err
	}

	return nil
}

// Logger builds a zap logger as configured
func (cfg *Config) Logger() (*zap.Logger, error) {
	level, err := cfg.level()

	if err != nil {
		return nil, err
	}

	zapConfig := zap.NewProductionConfig()

	if cfg.Log.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.Level = zap.NewAtomicLevelAt(level)

	return zapConfig.Build()
}

func (cfg *Config) level() (zapcore.Level, error) {
	if cfg.Log.Level == "" {
		return zapcore.InfoLevel, nil
	}

	level, err := zapcore.ParseLevel(cfg.Log.Level)

	if err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}

	return level, nil
}
