package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

type LogConfig struct {
	Level string `mapstructure:"level"`
	// Format is "json" or "console".
	Format string `mapstructure:"format"`
	// File enables rotated file output next to stderr when set.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max-size-mb"`
	MaxBackups int    `mapstructure:"max-backups"`
	MaxAgeDays int    `mapstructure:"max-age-days"`
}

func (cfg *LogConfig) Validate() error {
	if cfg.Level == "" {
		cfg.Level = zerolog.InfoLevel.String()
	}
	if _, err := zerolog.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	switch cfg.Format {
	case "":
		cfg.Format = "json"
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", cfg.Format)
	}
	if cfg.File != "" && cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 100
	}
	return nil
}
