package venueclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/stakevault/stake-settlement/internal/ledger"
)

var (
	ErrInsufficientStaked   = errors.New("insufficient staked balance")
	ErrInsufficientUnstaked = errors.New("insufficient unstaked balance")
	ErrWithdrawLocked       = errors.New("unstaked balance is not yet withdrawable")
	ErrZeroAmount           = errors.New("amount must be positive")
)

// FaultFunc is consulted before every MemoryVenue call. A non-nil error fails
// the call without applying it.
type FaultFunc func(method string) error

// MemoryVenue is an in-process staking venue. Unstaked funds become
// withdrawable after the configured number of epochs, and every new unstake
// restarts that delay for the whole unstaked balance.
type MemoryVenue struct {
	mu          sync.Mutex
	clock       ledger.Clock
	delayEpochs uint64

	staked         sdkmath.Uint
	unstaked       sdkmath.Uint
	availableEpoch uint64
	withdrawn      sdkmath.Uint

	fault FaultFunc
	calls []string
}

func NewMemoryVenue(clock ledger.Clock, delayEpochs uint64) *MemoryVenue {
	return &MemoryVenue{
		clock:       clock,
		delayEpochs: delayEpochs,
		staked:      sdkmath.ZeroUint(),
		unstaked:    sdkmath.ZeroUint(),
		withdrawn:   sdkmath.ZeroUint(),
	}
}

func (m *MemoryVenue) SetFault(f FaultFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fault = f
}

// AddRewards grows the staked balance the way staking rewards do.
func (m *MemoryVenue) AddRewards(amount sdkmath.Uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staked = m.staked.Add(amount)
}

// Withdrawn is the total moved back to custody so far.
func (m *MemoryVenue) Withdrawn() sdkmath.Uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.withdrawn
}

// Calls lists the methods invoked so far, including failed ones.
func (m *MemoryVenue) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MemoryVenue) GetAccount(ctx context.Context) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetAccount"); err != nil {
		return nil, err
	}
	return &Account{
		Staked:      m.staked,
		Unstaked:    m.unstaked,
		CanWithdraw: m.canWithdraw(),
	}, nil
}

func (m *MemoryVenue) DepositAndStake(ctx context.Context, amount sdkmath.Uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DepositAndStake"); err != nil {
		return err
	}
	if amount.IsZero() {
		return ErrZeroAmount
	}
	m.staked = m.staked.Add(amount)
	return nil
}

func (m *MemoryVenue) Stake(ctx context.Context, amount sdkmath.Uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("Stake"); err != nil {
		return err
	}
	if amount.IsZero() {
		return ErrZeroAmount
	}
	if m.unstaked.LT(amount) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientUnstaked, m.unstaked, amount)
	}
	m.unstaked = m.unstaked.Sub(amount)
	m.staked = m.staked.Add(amount)
	return nil
}

func (m *MemoryVenue) Unstake(ctx context.Context, amount sdkmath.Uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("Unstake"); err != nil {
		return err
	}
	if amount.IsZero() {
		return ErrZeroAmount
	}
	return m.unstake(amount)
}

func (m *MemoryVenue) UnstakeAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UnstakeAll"); err != nil {
		return err
	}
	if m.staked.IsZero() {
		return nil
	}
	return m.unstake(m.staked)
}

func (m *MemoryVenue) WithdrawAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("WithdrawAll"); err != nil {
		return err
	}
	if m.unstaked.IsZero() {
		return nil
	}
	if !m.canWithdraw() {
		return fmt.Errorf("%w: available at epoch %d", ErrWithdrawLocked, m.availableEpoch)
	}
	m.withdrawn = m.withdrawn.Add(m.unstaked)
	m.unstaked = sdkmath.ZeroUint()
	return nil
}

func (m *MemoryVenue) unstake(amount sdkmath.Uint) error {
	if m.staked.LT(amount) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientStaked, m.staked, amount)
	}
	m.staked = m.staked.Sub(amount)
	m.unstaked = m.unstaked.Add(amount)
	m.availableEpoch = m.clock.Now().EpochHeight + m.delayEpochs
	return nil
}

func (m *MemoryVenue) canWithdraw() bool {
	return !m.unstaked.IsZero() && m.clock.Now().EpochHeight >= m.availableEpoch
}

func (m *MemoryVenue) enter(method string) error {
	m.calls = append(m.calls, method)
	if m.fault != nil {
		return m.fault(method)
	}
	return nil
}
