package config

import (
	"fmt"
	"time"
)

const (
	VenueKindHTTP   = "http"
	VenueKindMemory = "memory"
)

type VenueConfig struct {
	// Kind selects the venue gateway: "http" for a venue adapter or "memory"
	// for an in-process venue used in local development.
	Kind          string        `mapstructure:"kind"`
	URL           string        `mapstructure:"url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetryTimes uint          `mapstructure:"max-retry-times"`
	RetryInterval time.Duration `mapstructure:"retry-interval"`
}

func (cfg *VenueConfig) Validate() error {
	switch cfg.Kind {
	case VenueKindMemory:
		return nil
	case VenueKindHTTP:
	default:
		return fmt.Errorf("unknown venue kind %q", cfg.Kind)
	}

	if cfg.URL == "" {
		return fmt.Errorf("venue url is required")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("venue timeout must be positive")
	}
	if cfg.MaxRetryTimes == 0 {
		return fmt.Errorf("venue max-retry-times must be positive")
	}
	if cfg.RetryInterval <= 0 {
		return fmt.Errorf("venue retry-interval must be positive")
	}
	return nil
}
