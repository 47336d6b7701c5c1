package config

import (
	"errors"
	"time"
)

type QueueConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	// URL is host:port of the AMQP broker, without scheme or credentials.
	URL            string        `mapstructure:"url"`
	Exchange       string        `mapstructure:"exchange"`
	PublishTimeout time.Duration `mapstructure:"publish-timeout"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.User == "" {
		return errors.New("missing queue user")
	}
	if cfg.Password == "" {
		return errors.New("missing queue password")
	}
	if cfg.URL == "" {
		return errors.New("missing queue url")
	}
	if cfg.Exchange == "" {
		return errors.New("missing queue exchange")
	}
	if cfg.PublishTimeout <= 0 {
		return errors.New("publish-timeout must be positive")
	}
	return nil
}
