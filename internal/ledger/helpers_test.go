package ledger

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func u(v uint64) sdkmath.Uint {
	return sdkmath.NewUint(v)
}

func requireAmount(t *testing.T, expected uint64, actual sdkmath.Uint) {
	t.Helper()
	require.Equal(t, u(expected).String(), actual.String())
}

func newTestLedger(t *testing.T) (*Ledger, *ManualClock) {
	t.Helper()
	clock := NewManualClock(Checkpoint{
		BlockHeight: 1000,
		EpochHeight: 10,
		Timestamp:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	l := New(Config{StorageEscrow: u(10), UnstakeDelayEpochs: 4}, clock)
	return l, clock
}

func register(t *testing.T, l *Ledger, ids ...AccountID) {
	t.Helper()
	for _, id := range ids {
		_, err := l.RegisterAccount(id, u(10))
		require.NoError(t, err)
	}
}

func venue(staked, unstaked uint64) VenueBalance {
	return VenueBalance{Staked: u(staked), Unstaked: u(unstaked), CanWithdraw: true}
}

// stake runs the current stake batch against the given venue balance.
func stake(t *testing.T, l *Ledger, v VenueBalance) StakeResult {
	t.Helper()
	batch, err := l.BeginStakeBatch()
	require.NoError(t, err)
	plan := l.PlanStake(batch.ID, v)
	result := l.CompleteStakeBatch(plan)
	require.True(t, l.ReleaseStakeLock())
	return result
}

// unstake runs the current redeem batch up to PendingWithdrawal.
func unstake(t *testing.T, l *Ledger, v VenueBalance) RedeemResult {
	t.Helper()
	batch, err := l.BeginRedeemBatch()
	require.NoError(t, err)
	l.PrepareUnstake(batch.ID, v)
	return l.CompleteUnstake()
}
