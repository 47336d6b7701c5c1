package config

import (
	"errors"
	"time"
)

const defaultStateLogInterval = 5 * time.Minute

type PollerConfig struct {
	StakeBatchInterval        time.Duration `mapstructure:"stake-batch-interval"`
	RedeemBatchInterval       time.Duration `mapstructure:"redeem-batch-interval"`
	PendingWithdrawalInterval time.Duration `mapstructure:"pending-withdrawal-interval"`
	StateLogInterval          time.Duration `mapstructure:"state-log-interval"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.StakeBatchInterval <= 0 {
		return errors.New("stake-batch-interval must be positive")
	}

	if cfg.RedeemBatchInterval <= 0 {
		return errors.New("redeem-batch-interval must be positive")
	}

	if cfg.PendingWithdrawalInterval <= 0 {
		return errors.New("pending-withdrawal-interval must be positive")
	}

	if cfg.StateLogInterval <= 0 {
		cfg.StateLogInterval = defaultStateLogInterval
	}

	return nil
}
