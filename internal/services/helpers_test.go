package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stakevault/stake-settlement/internal/clients/venueclient"
	"github.com/stakevault/stake-settlement/internal/config"
	"github.com/stakevault/stake-settlement/internal/ledger"
	"github.com/stakevault/stake-settlement/internal/queue"
	"github.com/stakevault/stake-settlement/internal/services"
	"github.com/stakevault/stake-settlement/internal/types"
	"github.com/stakevault/stake-settlement/tests/mocks"
)

const delayEpochs = 4

func u(v uint64) sdkmath.Uint {
	return sdkmath.NewUint(v)
}

func testConfig() *config.Config {
	return &config.Config{
		Ledger: config.LedgerConfig{
			StorageEscrow:      "10",
			UnstakeDelayEpochs: delayEpochs,
		},
		Poller: config.PollerConfig{
			StakeBatchInterval:        time.Second,
			RedeemBatchInterval:       time.Second,
			PendingWithdrawalInterval: time.Second,
			StateLogInterval:          time.Minute,
		},
	}
}

type testEnv struct {
	svc       *services.Service
	venue     *venueclient.MemoryVenue
	clock     *ledger.ManualClock
	db        *mocks.DbInterface
	publisher *mocks.Publisher

	mu        sync.Mutex
	saved     []*ledger.Changes
	published []*queue.SettlementEvent
}

func newTestClock() *ledger.ManualClock {
	return ledger.NewManualClock(ledger.Checkpoint{
		BlockHeight: 1000,
		EpochHeight: 10,
		Timestamp:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
}

// newTestEnv wires a service to an in-memory venue and storage mocks that
// accept every write.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		clock:     newTestClock(),
		db:        mocks.NewDbInterface(t),
		publisher: mocks.NewPublisher(t),
	}
	env.venue = venueclient.NewMemoryVenue(env.clock, delayEpochs)

	env.db.On("LoadLedger", mock.Anything).Return(&ledger.Snapshot{}, nil).Once()
	env.db.On("SaveLedgerChanges", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.saved = append(env.saved, args.Get(1).(*ledger.Changes))
		}).
		Return(nil).Maybe()
	env.publisher.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.published = append(env.published, args.Get(1).(*queue.SettlementEvent))
		}).
		Return(nil).Maybe()

	env.svc = services.NewService(testConfig(), env.db, env.venue, env.publisher, env.clock)
	require.NoError(t, env.svc.Load(t.Context()))
	return env
}

func (e *testEnv) eventTypes() []types.EventTypes {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []types.EventTypes
	for _, ev := range e.published {
		out = append(out, ev.EventType)
	}
	return out
}

func (e *testEnv) register(t *testing.T, ids ...ledger.AccountID) {
	t.Helper()
	for _, id := range ids {
		_, err := e.svc.RegisterAccount(t.Context(), id, u(10))
		require.NoError(t, err)
	}
}

func (e *testEnv) deposit(t *testing.T, id ledger.AccountID, amount uint64) {
	t.Helper()
	_, err := e.svc.Deposit(t.Context(), id, u(amount))
	require.NoError(t, err)
}

func (e *testEnv) state(t *testing.T) ledger.ContractState {
	t.Helper()
	view, err := e.svc.GetState(t.Context())
	require.NoError(t, err)
	return view.State
}

func (e *testEnv) account(t *testing.T, id ledger.AccountID) *ledger.Account {
	t.Helper()
	acc, err := e.svc.GetAccount(t.Context(), id)
	require.NoError(t, err)
	return acc
}

func requireAmount(t *testing.T, expected uint64, actual sdkmath.Uint) {
	t.Helper()
	require.Equal(t, u(expected).String(), actual.String())
}

func requireErrorCode(t *testing.T, err error, code types.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	typed := types.AsError(err)
	require.Equal(t, code, typed.ErrorCode, "unexpected error: %v", err)
}

// landedThenFailed applies an unstake at the venue but reports a failure, the
// way a timed out request that still went through looks to the caller.
type landedThenFailed struct {
	*venueclient.MemoryVenue
}

func (v landedThenFailed) Unstake(ctx context.Context, amount sdkmath.Uint) error {
	if err := v.MemoryVenue.Unstake(ctx, amount); err != nil {
		return err
	}
	return context.DeadlineExceeded
}
