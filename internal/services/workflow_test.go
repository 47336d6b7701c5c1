package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stakevault/stake-settlement/internal/clients/venueclient"
	"github.com/stakevault/stake-settlement/internal/ledger"
	"github.com/stakevault/stake-settlement/internal/services"
	"github.com/stakevault/stake-settlement/internal/types"
	"github.com/stakevault/stake-settlement/tests/mocks"
	"github.com/stakevault/stake-settlement/testutil"
)

func TestRunStakeBatch(t *testing.T) {
	t.Run("stakes the batch and mints shares", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice")
		env.deposit(t, "alice", 100)

		result, err := env.svc.RunStakeBatch(t.Context())
		require.NoError(t, err)
		requireAmount(t, 100, result.Staked)
		requireAmount(t, 100, result.Minted)

		acc, err := env.venue.GetAccount(t.Context())
		require.NoError(t, err)
		requireAmount(t, 100, acc.Staked)

		state := env.state(t)
		assert.False(t, state.StakeLock)
		assert.Nil(t, state.StakeBatch)
		requireAmount(t, 100, state.TotalShareSupply.Amount)

		requireAmount(t, 100, env.account(t, "alice").ShareBalance())
		assert.Contains(t, env.eventTypes(), types.EventStaked)
		assert.Contains(t, env.eventTypes(), types.EventDeposited)
	})

	t.Run("rewards raise the share value", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice", "bob")
		env.deposit(t, "alice", 300)
		_, err := env.svc.RunStakeBatch(t.Context())
		require.NoError(t, err)

		env.venue.AddRewards(u(100))
		env.deposit(t, "bob", 8)
		result, err := env.svc.RunStakeBatch(t.Context())
		require.NoError(t, err)
		requireAmount(t, 6, result.Minted)
	})

	t.Run("nothing to stake", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.RunStakeBatch(t.Context())
		requireErrorCode(t, err, types.Conflict)
		assert.True(t, services.IsPreconditionError(err))
	})

	t.Run("venue failure releases the lock", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice")
		env.deposit(t, "alice", 100)
		env.venue.SetFault(func(method string) error {
			if method == "DepositAndStake" {
				return errors.New("venue down")
			}
			return nil
		})

		_, err := env.svc.RunStakeBatch(t.Context())
		requireErrorCode(t, err, types.VenueUnavailable)
		assert.ErrorIs(t, err, services.ErrVenueCallFailed)

		state := env.state(t)
		assert.False(t, state.StakeLock)
		require.NotNil(t, state.StakeBatch)
		requireAmount(t, 100, state.StakeBatch.Amount())
		assert.True(t, state.TotalShareSupply.Amount.IsZero())

		env.venue.SetFault(nil)
		_, err = env.svc.RunStakeBatch(t.Context())
		require.NoError(t, err)
	})

	t.Run("deposit and stake", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice")
		result, err := env.svc.DepositAndStake(t.Context(), "alice", u(50))
		require.NoError(t, err)
		assert.Equal(t, ledger.BatchID(1), result.BatchID)
		require.NotNil(t, result.Staked)
		requireAmount(t, 50, result.Staked.Minted)
	})
}

func TestStakeBatchManyAccounts(t *testing.T) {
	env := newTestEnv(t)
	deposits := make(map[ledger.AccountID]uint64)
	total := uint64(0)
	for range 20 {
		id := testutil.AccountID()
		amount := testutil.Amount(1, 10_000).Uint64()
		env.register(t, id)
		env.deposit(t, id, amount)
		deposits[id] = amount
		total += amount
	}

	result, err := env.svc.RunStakeBatch(t.Context())
	require.NoError(t, err)
	requireAmount(t, total, result.Minted)

	for id, amount := range deposits {
		requireAmount(t, amount, env.account(t, id).ShareBalance())
	}
}

func TestRunRedeemBatch(t *testing.T) {
	t.Run("full redeem cycle", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice")
		env.deposit(t, "alice", 100)
		_, err := env.svc.RunStakeBatch(t.Context())
		require.NoError(t, err)
		env.venue.AddRewards(u(10))

		result, err := env.svc.RedeemAndUnstake(t.Context(), "alice", u(50))
		require.NoError(t, err)
		require.NotNil(t, result.Unstaked)
		requireAmount(t, 50, result.Unstaked.Burned)
		requireAmount(t, 55, result.Unstaked.Unstaked)
		assert.Equal(t, uint64(10+delayEpochs), result.Unstaked.WithdrawableEpoch)
		assert.Equal(t, ledger.RedeemLockPendingWithdrawal, env.state(t).RedeemLock)

		_, err = env.svc.ProcessPendingWithdrawal(t.Context())
		requireErrorCode(t, err, types.Conflict)
		assert.ErrorIs(t, err, ledger.ErrUnstakedFundsNotAvailable)

		pending, err := env.svc.GetPendingWithdrawal(t.Context())
		require.NoError(t, err)
		require.NotNil(t, pending)
		assert.False(t, pending.Available)

		env.clock.AdvanceEpochs(delayEpochs)
		withdrawn, err := env.svc.ProcessPendingWithdrawal(t.Context())
		require.NoError(t, err)
		requireAmount(t, 55, withdrawn)
		requireAmount(t, 55, env.venue.Withdrawn())

		state := env.state(t)
		assert.Equal(t, ledger.RedeemLockNone, state.RedeemLock)
		assert.Nil(t, state.RedeemBatch)

		claimed, err := env.svc.ClaimReceipts(t.Context(), "alice")
		require.NoError(t, err)
		assert.True(t, claimed)
		acc := env.account(t, "alice")
		requireAmount(t, 55, acc.ReserveBalance())
		requireAmount(t, 50, acc.ShareBalance())

		withdrawnReserve, err := env.svc.WithdrawAllReserve(t.Context(), "alice")
		require.NoError(t, err)
		requireAmount(t, 55, withdrawnReserve)
		assert.Contains(t, env.eventTypes(), types.EventUnstaked)
		assert.Contains(t, env.eventTypes(), types.EventWithdrawalCompleted)
		assert.Contains(t, env.eventTypes(), types.EventReserveWithdrawn)
	})

	t.Run("redeem is blocked while stake lock is held", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice")
		env.deposit(t, "alice", 100)
		_, err := env.svc.RunStakeBatch(t.Context())
		require.NoError(t, err)

		env.deposit(t, "alice", 5)
		env.venue.SetFault(func(method string) error {
			if method == "DepositAndStake" {
				// the redeem request lands while the stake run is between steps
				_, err := env.svc.Redeem(t.Context(), "alice", u(10))
				assert.ErrorIs(t, err, ledger.ErrRedeemBlockedByStakeBatch)
			}
			return nil
		})
		_, err = env.svc.RunStakeBatch(t.Context())
		require.NoError(t, err)
	})

	t.Run("unstake failure keeps the lock for reconciliation", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice")
		env.deposit(t, "alice", 100)
		_, err := env.svc.RunStakeBatch(t.Context())
		require.NoError(t, err)
		_, err = env.svc.Redeem(t.Context(), "alice", u(40))
		require.NoError(t, err)

		env.venue.SetFault(func(method string) error {
			if method == "Unstake" {
				return errors.New("venue down")
			}
			return nil
		})
		_, err = env.svc.RunRedeemBatch(t.Context())
		assert.ErrorIs(t, err, services.ErrVenueCallFailed)

		state := env.state(t)
		assert.Equal(t, ledger.RedeemLockUnstaking, state.RedeemLock)
		require.NotNil(t, state.UnstakeIntent)
		requireAmount(t, 40, state.UnstakeIntent.Amount)

		// new stake runs wait for the redeem run to settle
		env.deposit(t, "alice", 5)
		_, err = env.svc.RunStakeBatch(t.Context())
		assert.ErrorIs(t, err, ledger.ErrBatchRunning)

		env.venue.SetFault(nil)
		result, err := env.svc.RunRedeemBatch(t.Context())
		require.NoError(t, err)
		requireAmount(t, 40, result.Unstaked)

		acc, err := env.venue.GetAccount(t.Context())
		require.NoError(t, err)
		requireAmount(t, 40, acc.Unstaked)
	})

	t.Run("interrupted unstake that landed is completed from the intent", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice")
		env.deposit(t, "alice", 100)
		_, err := env.svc.RunStakeBatch(t.Context())
		require.NoError(t, err)
		_, err = env.svc.Redeem(t.Context(), "alice", u(40))
		require.NoError(t, err)

		flaky := services.NewService(testConfig(), env.db, landedThenFailed{env.venue}, env.publisher, env.clock)
		env.db.On("LoadLedger", mock.Anything).Return(snapshotFrom(t, env), nil).Once()
		require.NoError(t, flaky.Load(t.Context()))

		_, err = flaky.RunRedeemBatch(t.Context())
		require.Error(t, err)
		assert.Equal(t, ledger.RedeemLockUnstaking, stateOf(t, flaky).RedeemLock)

		result, err := flaky.RunRedeemBatch(t.Context())
		require.NoError(t, err)
		requireAmount(t, 40, result.Unstaked)

		// exactly one unstake reached the venue
		acc, err := env.venue.GetAccount(t.Context())
		require.NoError(t, err)
		requireAmount(t, 40, acc.Unstaked)
		requireAmount(t, 60, acc.Staked)
	})

	t.Run("unstaking is blocked by locked unstaked funds", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice")
		env.deposit(t, "alice", 100)
		_, err := env.svc.RunStakeBatch(t.Context())
		require.NoError(t, err)
		require.NoError(t, env.venue.Unstake(t.Context(), u(1)))
		_, err = env.svc.Redeem(t.Context(), "alice", u(10))
		require.NoError(t, err)

		_, err = env.svc.RunRedeemBatch(t.Context())
		assert.ErrorIs(t, err, ledger.ErrUnstakingBlocked)
		assert.Equal(t, ledger.RedeemLockNone, env.state(t).RedeemLock)
	})

	t.Run("withdrawable unstaked funds are withdrawn before unstaking", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice")
		env.deposit(t, "alice", 100)
		_, err := env.svc.RunStakeBatch(t.Context())
		require.NoError(t, err)
		require.NoError(t, env.venue.Unstake(t.Context(), u(10)))
		env.clock.AdvanceEpochs(delayEpochs)

		_, err = env.svc.Redeem(t.Context(), "alice", u(20))
		require.NoError(t, err)
		before := len(env.venue.Calls())
		result, err := env.svc.RunRedeemBatch(t.Context())
		require.NoError(t, err)
		requireAmount(t, 20, result.Unstaked)

		calls := env.venue.Calls()[before:]
		assert.Equal(t, []string{"GetAccount", "WithdrawAll", "GetAccount", "Unstake"}, calls)
		requireAmount(t, 10, env.venue.Withdrawn())
		assert.Equal(t, ledger.RedeemLockPendingWithdrawal, env.state(t).RedeemLock)
	})

	t.Run("unstaked funds that keep reappearing abort the run", func(t *testing.T) {
		clock := newTestClock()
		db := mocks.NewDbInterface(t)
		publisher := mocks.NewPublisher(t)
		venue := mocks.NewStakingVenue(t)
		db.On("LoadLedger", mock.Anything).Return(&ledger.Snapshot{}, nil).Once()
		db.On("SaveLedgerChanges", mock.Anything, mock.Anything).Return(nil).Maybe()
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

		svc := services.NewService(testConfig(), db, venue, publisher, clock)
		require.NoError(t, svc.Load(t.Context()))
		_, err := svc.RegisterAccount(t.Context(), "alice", u(10))
		require.NoError(t, err)
		_, err = svc.Deposit(t.Context(), "alice", u(100))
		require.NoError(t, err)

		venue.On("GetAccount", mock.Anything).
			Return(&venueclient.Account{Staked: u(0), Unstaked: u(0)}, nil).Once()
		venue.On("DepositAndStake", mock.Anything, mock.Anything).Return(nil).Once()
		_, err = svc.RunStakeBatch(t.Context())
		require.NoError(t, err)

		// the venue accepts every withdrawal but always reports a remainder
		venue.On("GetAccount", mock.Anything).
			Return(&venueclient.Account{Staked: u(100), Unstaked: u(5), CanWithdraw: true}, nil)
		venue.On("WithdrawAll", mock.Anything).Return(nil)

		_, err = svc.Redeem(t.Context(), "alice", u(20))
		require.NoError(t, err)
		_, err = svc.RunRedeemBatch(t.Context())
		requireErrorCode(t, err, types.VenueUnavailable)
		require.ErrorIs(t, err, services.ErrVenueCallFailed)

		venue.AssertNumberOfCalls(t, "WithdrawAll", 3)
		venue.AssertNumberOfCalls(t, "GetAccount", 5)
		venue.AssertNotCalled(t, "Unstake", mock.Anything, mock.Anything)
		assert.Equal(t, ledger.RedeemLockNone, stateOf(t, svc).RedeemLock)
	})
}

func TestLiquidity(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "bob")
	env.deposit(t, "alice", 100)
	_, err := env.svc.RunStakeBatch(t.Context())
	require.NoError(t, err)

	_, err = env.svc.RedeemAndUnstake(t.Context(), "alice", u(50))
	require.NoError(t, err)

	// bob's deposit is kept in custody and the venue restakes unstaked funds
	env.deposit(t, "bob", 30)
	result, err := env.svc.RunStakeBatch(t.Context())
	require.NoError(t, err)
	requireAmount(t, 30, result.LiquidityAdded)
	assert.False(t, result.PendingCleared)
	assert.Equal(t, []string{"DepositAndStake"}, filterCalls(env.venue.Calls(), "DepositAndStake"))
	assert.Len(t, filterCalls(env.venue.Calls(), "Stake"), 1)

	view, err := env.svc.GetState(t.Context())
	require.NoError(t, err)
	requireAmount(t, 30, view.State.LiquidityPool.Amount)
	assert.True(t, view.LiquidityNeeded)

	// alice is paid early from the pool, partially
	_, err = env.svc.ClaimReceipts(t.Context(), "alice")
	require.NoError(t, err)
	requireAmount(t, 30, env.account(t, "alice").ReserveBalance())

	env.clock.AdvanceEpochs(delayEpochs)
	withdrawn, err := env.svc.ProcessPendingWithdrawal(t.Context())
	require.NoError(t, err)
	requireAmount(t, 20, withdrawn)

	_, err = env.svc.ClaimReceipts(t.Context(), "alice")
	require.NoError(t, err)
	requireAmount(t, 50, env.account(t, "alice").ReserveBalance())
	assert.Contains(t, env.eventTypes(), types.EventLiquidityAdded)
}

func TestLiquidityWithdrawnBeforeClaim(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "bob")
	env.deposit(t, "alice", 100)
	_, err := env.svc.RunStakeBatch(t.Context())
	require.NoError(t, err)
	_, err = env.svc.RedeemAndUnstake(t.Context(), "alice", u(50))
	require.NoError(t, err)

	env.deposit(t, "bob", 30)
	_, err = env.svc.RunStakeBatch(t.Context())
	require.NoError(t, err)

	env.clock.AdvanceEpochs(delayEpochs)
	withdrawn, err := env.svc.ProcessPendingWithdrawal(t.Context())
	require.NoError(t, err)
	requireAmount(t, 20, withdrawn)

	// custody holds bob's retained deposit plus what left the venue
	custody := env.venue.Withdrawn().Add(u(30))
	state := env.state(t)
	require.Equal(t, custody.String(), state.TotalReserve.Amount.Add(state.LiquidityPool.Amount).String())
	requireAmount(t, 0, state.LiquidityPool.Amount)

	paid, err := env.svc.WithdrawAllReserve(t.Context(), "alice")
	require.NoError(t, err)
	requireAmount(t, 50, paid)
	requireAmount(t, 0, env.state(t).TotalReserve.Amount)
}

func TestServiceErrors(t *testing.T) {
	t.Run("unknown account", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Deposit(t.Context(), "nobody", u(1))
		requireErrorCode(t, err, types.NotFound)
	})

	t.Run("bad request", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice")
		_, err := env.svc.Redeem(t.Context(), "alice", u(1))
		requireErrorCode(t, err, types.BadRequest)
	})

	t.Run("failed save reloads from storage", func(t *testing.T) {
		clock := newTestClock()
		db := mocks.NewDbInterface(t)
		publisher := mocks.NewPublisher(t)
		db.On("LoadLedger", mock.Anything).Return(&ledger.Snapshot{}, nil).Times(2)
		db.On("SaveLedgerChanges", mock.Anything, mock.Anything).Return(nil).Once()
		db.On("SaveLedgerChanges", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

		svc := services.NewService(testConfig(), db, venueclient.NewMemoryVenue(clock, delayEpochs), publisher, clock)
		require.NoError(t, svc.Load(t.Context()))

		_, err := svc.RegisterAccount(t.Context(), "alice", u(10))
		requireErrorCode(t, err, types.InternalServiceError)

		_, err = svc.GetAccount(t.Context(), "alice")
		requireErrorCode(t, err, types.NotFound)
	})
}

func TestOperator(t *testing.T) {
	t.Run("release unstaking lock", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice")
		env.deposit(t, "alice", 100)
		_, err := env.svc.RunStakeBatch(t.Context())
		require.NoError(t, err)
		_, err = env.svc.Redeem(t.Context(), "alice", u(40))
		require.NoError(t, err)

		env.venue.SetFault(func(method string) error {
			if method == "Unstake" {
				return errors.New("venue down")
			}
			return nil
		})
		_, err = env.svc.RunRedeemBatch(t.Context())
		require.Error(t, err)

		released, err := env.svc.ReleaseUnstakingLock(t.Context())
		require.NoError(t, err)
		assert.True(t, released)
		state := env.state(t)
		assert.Equal(t, ledger.RedeemLockNone, state.RedeemLock)
		assert.Nil(t, state.UnstakeIntent)

		released, err = env.svc.ReleaseStakeLock(t.Context())
		require.NoError(t, err)
		assert.False(t, released)
	})

	t.Run("withdraw all from venue", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.venue.DepositAndStake(t.Context(), u(10)))
		require.NoError(t, env.venue.UnstakeAll(t.Context()))

		_, err := env.svc.WithdrawAllFromVenue(t.Context())
		assert.ErrorIs(t, err, ledger.ErrUnstakedFundsNotAvailable)

		env.clock.AdvanceEpochs(delayEpochs)
		amount, err := env.svc.WithdrawAllFromVenue(t.Context())
		require.NoError(t, err)
		requireAmount(t, 10, amount)
	})

	t.Run("receipts", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "alice")
		env.deposit(t, "alice", 100)
		result, err := env.svc.RunStakeBatch(t.Context())
		require.NoError(t, err)

		receipt, err := env.svc.GetStakeReceipt(t.Context(), result.BatchID)
		require.NoError(t, err)
		requireAmount(t, 100, receipt.UnclaimedShares)

		_, err = env.svc.GetRedeemReceipt(t.Context(), 1)
		requireErrorCode(t, err, types.NotFound)

		pending, err := env.svc.GetPendingWithdrawal(t.Context())
		require.NoError(t, err)
		assert.Nil(t, pending)
	})
}

func TestRedeemAndUnstakeWhileWithdrawalPending(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	env.deposit(t, "alice", 100)
	_, err := env.svc.RunStakeBatch(t.Context())
	require.NoError(t, err)
	first, err := env.svc.RedeemAndUnstake(t.Context(), "alice", u(50))
	require.NoError(t, err)
	require.NotNil(t, first.Unstaked)

	before := len(env.venue.Calls())
	result, err := env.svc.RedeemAndUnstake(t.Context(), "alice", u(20))
	require.NoError(t, err)
	assert.Nil(t, result.Unstaked)
	assert.NotEqual(t, first.BatchID, result.BatchID)
	assert.Empty(t, env.venue.Calls()[before:])

	assert.Equal(t, ledger.RedeemLockPendingWithdrawal, env.state(t).RedeemLock)
	requireAmount(t, 30, env.account(t, "alice").ShareBalance())
}

func TestStakePlanSaveFailure(t *testing.T) {
	env := &testEnv{
		clock:     newTestClock(),
		db:        mocks.NewDbInterface(t),
		publisher: mocks.NewPublisher(t),
	}
	env.venue = venueclient.NewMemoryVenue(env.clock, delayEpochs)

	failNextSave := false
	env.db.On("LoadLedger", mock.Anything).Return(&ledger.Snapshot{}, nil).Once()
	env.db.On("LoadLedger", mock.Anything).Return(func(context.Context) (*ledger.Snapshot, error) {
		return snapshotFrom(t, env), nil
	})
	env.db.On("SaveLedgerChanges", mock.Anything, mock.Anything).Return(func(_ context.Context, changes *ledger.Changes) error {
		if failNextSave {
			failNextSave = false
			return errors.New("db down")
		}
		env.mu.Lock()
		defer env.mu.Unlock()
		env.saved = append(env.saved, changes)
		return nil
	})
	env.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	env.svc = services.NewService(testConfig(), env.db, env.venue, env.publisher, env.clock)
	require.NoError(t, env.svc.Load(t.Context()))
	env.register(t, "alice")
	env.deposit(t, "alice", 100)

	env.venue.SetFault(func(method string) error {
		if method == "GetAccount" {
			// the plan is stored right after the balance is read
			failNextSave = true
		}
		return nil
	})
	_, err := env.svc.RunStakeBatch(t.Context())
	requireErrorCode(t, err, types.InternalServiceError)
	assert.Empty(t, filterCalls(env.venue.Calls(), "DepositAndStake"))

	state := env.state(t)
	assert.False(t, state.StakeLock)
	require.NotNil(t, state.StakeBatch)
	requireAmount(t, 100, state.StakeBatch.Amount())

	env.venue.SetFault(nil)
	result, err := env.svc.RunStakeBatch(t.Context())
	require.NoError(t, err)
	requireAmount(t, 100, result.Minted)
}

func filterCalls(calls []string, method string) []string {
	var out []string
	for _, c := range calls {
		if c == method {
			out = append(out, c)
		}
	}
	return out
}

func stateOf(t *testing.T, svc *services.Service) ledger.ContractState {
	t.Helper()
	view, err := svc.GetState(t.Context())
	require.NoError(t, err)
	return view.State
}

// snapshotFrom rebuilds a snapshot out of everything env has stored so far.
func snapshotFrom(t *testing.T, env *testEnv) *ledger.Snapshot {
	t.Helper()
	env.mu.Lock()
	defer env.mu.Unlock()

	snap := &ledger.Snapshot{
		StakeReceipts:  make(map[ledger.BatchID]*ledger.StakeBatchReceipt),
		RedeemReceipts: make(map[ledger.BatchID]*ledger.RedeemBatchReceipt),
	}
	accounts := make(map[ledger.AccountHash]*ledger.Account)
	for _, c := range env.saved {
		state := c.State
		snap.State = &state
		for _, acc := range c.Accounts {
			accounts[acc.Hash()] = acc
		}
		for _, h := range c.DeletedAccounts {
			delete(accounts, h)
		}
		for id, r := range c.StakeReceipts {
			snap.StakeReceipts[id] = r
		}
		for _, id := range c.DeletedStakeReceipts {
			delete(snap.StakeReceipts, id)
		}
		for id, r := range c.RedeemReceipts {
			snap.RedeemReceipts[id] = r
		}
		for _, id := range c.DeletedRedeemReceipts {
			delete(snap.RedeemReceipts, id)
		}
	}
	for _, acc := range accounts {
		snap.Accounts = append(snap.Accounts, acc.Clone())
	}
	return snap
}
