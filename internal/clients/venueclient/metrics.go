package venueclient

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/stakevault/stake-settlement/internal/observability/metrics"
)

type venueWithMetrics struct {
	venue StakingVenue
}

func NewVenueWithMetrics(venue StakingVenue) *venueWithMetrics {
	return &venueWithMetrics{venue: venue}
}

func (v *venueWithMetrics) GetAccount(ctx context.Context) (*Account, error) {
	return runVenueMethodWithMetrics("GetAccount", func() (*Account, error) {
		return v.venue.GetAccount(ctx)
	})
}

func (v *venueWithMetrics) DepositAndStake(ctx context.Context, amount sdkmath.Uint) error {
	return runVenueMutationWithMetrics("DepositAndStake", func() error {
		return v.venue.DepositAndStake(ctx, amount)
	})
}

func (v *venueWithMetrics) Stake(ctx context.Context, amount sdkmath.Uint) error {
	return runVenueMutationWithMetrics("Stake", func() error {
		return v.venue.Stake(ctx, amount)
	})
}

func (v *venueWithMetrics) Unstake(ctx context.Context, amount sdkmath.Uint) error {
	return runVenueMutationWithMetrics("Unstake", func() error {
		return v.venue.Unstake(ctx, amount)
	})
}

func (v *venueWithMetrics) UnstakeAll(ctx context.Context) error {
	return runVenueMutationWithMetrics("UnstakeAll", func() error {
		return v.venue.UnstakeAll(ctx)
	})
}

func (v *venueWithMetrics) WithdrawAll(ctx context.Context) error {
	return runVenueMutationWithMetrics("WithdrawAll", func() error {
		return v.venue.WithdrawAll(ctx)
	})
}

func runVenueMutationWithMetrics(method string, f func() error) error {
	// this is just auxiliary type in order to call runVenueMethodWithMetrics which always returns 2 values
	type zero struct{}
	_, err := runVenueMethodWithMetrics(method, func() (zero, error) {
		return zero{}, f()
	})
	return err
}

func runVenueMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	result, err := f()
	duration := time.Since(startTime)

	metrics.RecordVenueClientLatency(duration, method, err != nil)
	return result, err
}
