package config

import (
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
)

const defaultUnstakeDelayEpochs = 4

type LedgerConfig struct {
	// StorageEscrow is the reserve held back from an account at registration,
	// as a decimal string of base units.
	StorageEscrow      string `mapstructure:"storage-escrow"`
	UnstakeDelayEpochs uint64 `mapstructure:"unstake-delay-epochs"`
}

func (cfg *LedgerConfig) Validate() error {
	if _, err := cfg.StorageEscrowAmount(); err != nil {
		return err
	}
	if cfg.UnstakeDelayEpochs == 0 {
		cfg.UnstakeDelayEpochs = defaultUnstakeDelayEpochs
	}
	return nil
}

func (cfg *LedgerConfig) StorageEscrowAmount() (sdkmath.Uint, error) {
	if cfg.StorageEscrow == "" {
		return sdkmath.ZeroUint(), nil
	}
	amount, err := sdkmath.ParseUint(cfg.StorageEscrow)
	if err != nil {
		return sdkmath.ZeroUint(), fmt.Errorf("invalid storage-escrow %q: %w", cfg.StorageEscrow, err)
	}
	return amount, nil
}

// ChainConfig describes how block and epoch heights advance with time.
type ChainConfig struct {
	// GenesisTime is RFC 3339.
	GenesisTime string        `mapstructure:"genesis-time"`
	BlockTime   time.Duration `mapstructure:"block-time"`
	EpochLength uint64        `mapstructure:"epoch-length"`
}

func (cfg *ChainConfig) Validate() error {
	if cfg.GenesisTime == "" {
		return errors.New("genesis-time is required")
	}
	if _, err := cfg.Genesis(); err != nil {
		return err
	}
	if cfg.BlockTime <= 0 {
		return errors.New("block-time must be positive")
	}
	if cfg.EpochLength == 0 {
		return errors.New("epoch-length must be positive")
	}
	return nil
}

func (cfg *ChainConfig) Genesis() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, cfg.GenesisTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid genesis-time %q: %w", cfg.GenesisTime, err)
	}
	return t.UTC(), nil
}
