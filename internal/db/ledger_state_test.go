//go:build integration

package db_test

import (
	"context"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakevault/stake-settlement/internal/db"
	"github.com/stakevault/stake-settlement/internal/ledger"
)

func newLedger() *ledger.Ledger {
	clock := ledger.NewManualClock(ledger.Checkpoint{
		BlockHeight: 100,
		EpochHeight: 10,
		Timestamp:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	return ledger.New(ledger.Config{
		StorageEscrow:      sdkmath.NewUint(10),
		UnstakeDelayEpochs: 4,
	}, clock)
}

func TestLedgerState(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("empty store", func(t *testing.T) {
		snap, err := testDB.LoadLedger(ctx)
		require.NoError(t, err)
		assert.Nil(t, snap.State)
		assert.Empty(t, snap.Accounts)

		_, err = testDB.GetContractState(ctx)
		assert.True(t, db.IsNotFoundError(err))
	})

	t.Run("nil changes are a no-op", func(t *testing.T) {
		require.NoError(t, testDB.SaveLedgerChanges(ctx, nil))
	})

	t.Run("save and reload", func(t *testing.T) {
		l := newLedger()
		_, err := l.RegisterAccount("alice", sdkmath.NewUint(10))
		require.NoError(t, err)
		_, err = l.Deposit("alice", sdkmath.NewUint(100))
		require.NoError(t, err)

		batch, err := l.BeginStakeBatch()
		require.NoError(t, err)
		plan := l.PlanStake(batch.ID, ledger.VenueBalance{
			Staked:   sdkmath.ZeroUint(),
			Unstaked: sdkmath.ZeroUint(),
		})
		l.CompleteStakeBatch(plan)
		l.ReleaseStakeLock()

		require.NoError(t, testDB.SaveLedgerChanges(ctx, l.PendingChanges()))
		l.ClearChanges()

		snap, err := testDB.LoadLedger(ctx)
		require.NoError(t, err)
		require.NotNil(t, snap.State)
		assert.Equal(t, ledger.BatchID(1), snap.State.StakeBatchSeq)
		assert.Equal(t, "100", snap.State.TotalShareSupply.Amount.String())
		require.Len(t, snap.Accounts, 1)
		require.Contains(t, snap.StakeReceipts, batch.ID)
		assert.Equal(t, "100", snap.StakeReceipts[batch.ID].UnclaimedShares.String())

		// claiming drains the receipt, which must disappear from storage
		restored := ledger.Restore(l.Config(), ledger.NewManualClock(l.Now()), *snap)
		claimed, err := restored.ClaimReceipts("alice")
		require.NoError(t, err)
		assert.True(t, claimed)
		require.NoError(t, testDB.SaveLedgerChanges(ctx, restored.PendingChanges()))

		snap, err = testDB.LoadLedger(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.StakeReceipts)

		acc, err := testDB.GetAccount(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "100", acc.ShareBalance().String())
	})

	t.Run("unregistered account is deleted", func(t *testing.T) {
		snap, err := testDB.LoadLedger(ctx)
		require.NoError(t, err)
		l := ledger.Restore(ledger.Config{StorageEscrow: sdkmath.NewUint(10)}, ledger.NewManualClock(snap.State.ShareValue.Checkpoint), *snap)

		_, err = l.RegisterAccount("bob", sdkmath.NewUint(10))
		require.NoError(t, err)
		require.NoError(t, testDB.SaveLedgerChanges(ctx, l.PendingChanges()))
		l.ClearChanges()

		_, err = l.UnregisterAccount("bob")
		require.NoError(t, err)
		require.NoError(t, testDB.SaveLedgerChanges(ctx, l.PendingChanges()))

		_, err = testDB.GetAccount(ctx, "bob")
		assert.True(t, db.IsNotFoundError(err))
	})
}
