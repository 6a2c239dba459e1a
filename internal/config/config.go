// Package config loads annoport configuration from defaults, an optional
// YAML config file, and ANNOPORT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/docuflow/annoport/internal/anchor"
)

// Config holds annoport configuration.
type Config struct {
	// AnchorPattern is the regular expression matching anchor tokens.
	AnchorPattern string `mapstructure:"anchor_pattern" yaml:"anchor_pattern"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// LogFile, when set, receives a copy of the log output.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AnchorPattern: anchor.DefaultPattern,
		LogLevel:      "info",
	}
}

// Load reads configuration. With an empty cfgFile the usual locations are
// searched (./config.yaml, ~/.annoport/config.yaml) and a missing file is
// fine; an explicit cfgFile that cannot be read is an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("anchor_pattern", def.AnchorPattern)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", "")

	v.SetEnvPrefix("ANNOPORT")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.annoport")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// SlogLevel converts LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
