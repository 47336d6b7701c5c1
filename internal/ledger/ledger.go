package ledger

import (
	sdkmath "cosmossdk.io/math"
)

// Config holds the ledger's economic parameters.
type Config struct {
	// StorageEscrow is the reserve an account leaves behind while registered.
	StorageEscrow sdkmath.Uint
	// UnstakeDelayEpochs is how long unstaked reserve stays locked at the venue.
	UnstakeDelayEpochs uint64
}

// UnstakeIntent is recorded before an unstake request leaves for the venue so
// an interrupted redeem run can tell whether the request landed.
type UnstakeIntent struct {
	BatchID    BatchID
	Amount     sdkmath.Uint
	ShareValue ShareValue
}

// ContractState is the ledger state outside of accounts and receipts.
type ContractState struct {
	StakeBatchSeq  BatchID
	RedeemBatchSeq BatchID

	StakeBatch      *Batch
	NextStakeBatch  *Batch
	RedeemBatch     *Batch
	NextRedeemBatch *Batch

	StakeLock     bool
	RedeemLock    RedeemLock
	UnstakeIntent *UnstakeIntent

	ShareValue       ShareValue
	TotalShareSupply TimestampedBalance
	// TotalReserve is the reserve in custody backing account reserve balances.
	TotalReserve  TimestampedBalance
	LiquidityPool TimestampedBalance
	// PendingUnstaked is unstaked reserve of redeemed batches still held by
	// the venue, less what was restaked as liquidity.
	PendingUnstaked TimestampedBalance
}

func NewContractState(cp Checkpoint) ContractState {
	return ContractState{
		RedeemLock:       RedeemLockNone,
		ShareValue:       EmptyShareValue(cp),
		TotalShareSupply: ZeroBalance(cp),
		TotalReserve:     ZeroBalance(cp),
		LiquidityPool:    ZeroBalance(cp),
		PendingUnstaked:  ZeroBalance(cp),
	}
}

func (s ContractState) clone() ContractState {
	c := s
	c.StakeBatch = s.StakeBatch.clone()
	c.NextStakeBatch = s.NextStakeBatch.clone()
	c.RedeemBatch = s.RedeemBatch.clone()
	c.NextRedeemBatch = s.NextRedeemBatch.clone()
	if s.UnstakeIntent != nil {
		i := *s.UnstakeIntent
		c.UnstakeIntent = &i
	}
	return c
}

// Snapshot is everything needed to rebuild a Ledger from storage.
type Snapshot struct {
	// State is nil when nothing has been stored yet.
	State          *ContractState
	Accounts       []*Account
	StakeReceipts  map[BatchID]*StakeBatchReceipt
	RedeemReceipts map[BatchID]*RedeemBatchReceipt
}

// Ledger is the in-memory settlement state. It is not safe for concurrent use;
// callers serialize access.
type Ledger struct {
	cfg   Config
	clock Clock

	state          ContractState
	accounts       map[AccountHash]*Account
	stakeReceipts  map[BatchID]*StakeBatchReceipt
	redeemReceipts map[BatchID]*RedeemBatchReceipt

	dirty  dirtySet
	events []Event
}

func New(cfg Config, clock Clock) *Ledger {
	return Restore(cfg, clock, Snapshot{})
}

func Restore(cfg Config, clock Clock, snap Snapshot) *Ledger {
	if cfg.StorageEscrow == (sdkmath.Uint{}) {
		cfg.StorageEscrow = sdkmath.ZeroUint()
	}
	l := &Ledger{
		cfg:            cfg,
		clock:          clock,
		accounts:       make(map[AccountHash]*Account, len(snap.Accounts)),
		stakeReceipts:  make(map[BatchID]*StakeBatchReceipt, len(snap.StakeReceipts)),
		redeemReceipts: make(map[BatchID]*RedeemBatchReceipt, len(snap.RedeemReceipts)),
		dirty:          newDirtySet(),
	}
	if snap.State != nil {
		l.state = snap.State.clone()
	} else {
		l.state = NewContractState(clock.Now())
		l.dirty.state = true
	}
	for _, acc := range snap.Accounts {
		l.accounts[acc.Hash()] = acc
	}
	for id, r := range snap.StakeReceipts {
		l.stakeReceipts[id] = r
	}
	for id, r := range snap.RedeemReceipts {
		l.redeemReceipts[id] = r
	}
	return l
}

func (l *Ledger) Config() Config {
	return l.cfg
}

func (l *Ledger) Now() Checkpoint {
	return l.clock.Now()
}

// State returns a copy of the contract state.
func (l *Ledger) State() ContractState {
	return l.state.clone()
}

func (l *Ledger) AccountCount() int {
	return len(l.accounts)
}

func (l *Ledger) StakeReceipt(id BatchID) (*StakeBatchReceipt, bool) {
	r, ok := l.stakeReceipts[id]
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

func (l *Ledger) RedeemReceipt(id BatchID) (*RedeemBatchReceipt, bool) {
	r, ok := l.redeemReceipts[id]
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

// CanRunBatch reports whether a stake or redeem run may start.
func (l *Ledger) CanRunBatch() bool {
	return !l.state.StakeLock && l.state.RedeemLock != RedeemLockUnstaking
}

// CanUnstake reports whether a redeem run would make progress right now.
func (l *Ledger) CanUnstake() bool {
	if !l.CanRunBatch() {
		return false
	}
	switch l.state.RedeemLock {
	case RedeemLockNone:
		return l.state.RedeemBatch != nil
	case RedeemLockPendingWithdrawal:
		r := l.pendingReceipt()
		return r != nil && r.UnstakedFundsAvailable(l.clock.Now(), l.cfg.UnstakeDelayEpochs)
	}
	return false
}

func (l *Ledger) transitionRedeemLock(next RedeemLock) {
	if !l.state.RedeemLock.canTransitionTo(next) {
		illegalState("redeem lock cannot move from %s to %s", l.state.RedeemLock, next)
	}
	l.state.RedeemLock = next
	l.dirty.state = true
}

// pendingReceipt is the receipt of the batch awaiting withdrawal, if any.
func (l *Ledger) pendingReceipt() *RedeemBatchReceipt {
	if l.state.RedeemLock != RedeemLockPendingWithdrawal {
		return nil
	}
	if l.state.RedeemBatch == nil {
		illegalState("redeem stake batch should exist")
	}
	r, ok := l.redeemReceipts[l.state.RedeemBatch.ID]
	if !ok {
		illegalState("redeem stake batch receipt should exist")
	}
	return r
}

// PendingWithdrawal returns the batch id and receipt awaiting withdrawal.
func (l *Ledger) PendingWithdrawal() (BatchID, *RedeemBatchReceipt, bool) {
	r := l.pendingReceipt()
	if r == nil {
		return 0, nil, false
	}
	return l.state.RedeemBatch.ID, r.clone(), true
}
