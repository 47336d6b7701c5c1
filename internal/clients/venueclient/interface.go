package venueclient

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

//go:generate mockery --name=StakingVenue --output=../../../tests/mocks --outpkg=mocks --filename=mock_staking_venue.go
type StakingVenue interface {
	GetAccount(ctx context.Context) (*Account, error)
	// DepositAndStake transfers amount from custody to the venue and stakes it.
	DepositAndStake(ctx context.Context, amount sdkmath.Uint) error
	// Stake restakes amount out of the venue's unstaked balance.
	Stake(ctx context.Context, amount sdkmath.Uint) error
	// Unstake starts unbonding amount. Any earlier unstaked balance has its
	// availability reset to the new delay.
	Unstake(ctx context.Context, amount sdkmath.Uint) error
	UnstakeAll(ctx context.Context) error
	// WithdrawAll moves the whole unstaked balance back to custody.
	WithdrawAll(ctx context.Context) error
}
