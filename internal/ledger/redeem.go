package ledger

import (
	sdkmath "cosmossdk.io/math"
)

// RedeemResult describes a redeem batch whose shares have been unstaked.
type RedeemResult struct {
	BatchID           BatchID
	Burned            sdkmath.Uint
	Unstaked          sdkmath.Uint
	WithdrawableEpoch uint64
	Receipt           *RedeemBatchReceipt
}

// BeginRedeemBatch moves the redeem lock to Unstaking for the current batch.
func (l *Ledger) BeginRedeemBatch() (*Batch, error) {
	if l.state.StakeLock {
		return nil, ErrRedeemBlockedByStakeBatch
	}
	if l.state.RedeemLock != RedeemLockNone {
		return nil, ErrBatchRunning
	}
	if l.state.RedeemBatch == nil {
		return nil, ErrNoRedeemBatch
	}
	l.transitionRedeemLock(RedeemLockUnstaking)
	return l.state.RedeemBatch.clone(), nil
}

// PrepareUnstake prices the running batch against the venue's staked balance
// and records the unstake about to be requested.
func (l *Ledger) PrepareUnstake(batchID BatchID, v VenueBalance) UnstakeIntent {
	batch := l.unstakingBatch(batchID)
	cp := l.clock.Now()
	l.state.ShareValue = NewShareValue(cp, v.Staked, l.state.TotalShareSupply.Amount)
	intent := UnstakeIntent{
		BatchID:    batchID,
		Amount:     l.state.ShareValue.ToReserve(batch.Amount()),
		ShareValue: l.state.ShareValue,
	}
	l.state.UnstakeIntent = &intent
	l.dirty.state = true
	return intent
}

// UnstakeIntent returns the recorded unstake request, if any.
func (l *Ledger) UnstakeIntent() (UnstakeIntent, bool) {
	if l.state.UnstakeIntent == nil {
		return UnstakeIntent{}, false
	}
	return *l.state.UnstakeIntent, true
}

// DiscardUnstakeIntent forgets an unstake request known not to have landed.
func (l *Ledger) DiscardUnstakeIntent() {
	if l.state.UnstakeIntent != nil {
		l.state.UnstakeIntent = nil
		l.dirty.state = true
	}
}

// CompleteUnstake records the receipt for the recorded unstake and moves the
// lock to PendingWithdrawal.
func (l *Ledger) CompleteUnstake() RedeemResult {
	intent := l.state.UnstakeIntent
	if intent == nil {
		illegalState("unstake intent should exist")
	}
	batch := l.unstakingBatch(intent.BatchID)
	cp := l.clock.Now()

	receipt := NewRedeemBatchReceipt(batch.Amount(), intent.Amount, intent.ShareValue)
	l.redeemReceipts[intent.BatchID] = receipt
	l.touchRedeemReceipt(intent.BatchID)

	burned := batch.Amount()
	if burned.GT(l.state.TotalShareSupply.Amount) {
		illegalState("redeem batch %d burns %s of %s shares", intent.BatchID, burned, l.state.TotalShareSupply.Amount)
	}
	l.state.TotalShareSupply.Debit(burned, cp)
	l.state.PendingUnstaked.Credit(intent.Amount, cp)
	l.state.ShareValue = intent.ShareValue.afterUnstake(cp, intent.Amount, burned)
	l.state.UnstakeIntent = nil
	l.transitionRedeemLock(RedeemLockPendingWithdrawal)

	l.emit(Event{
		Type:       EventUnstaked,
		BatchID:    intent.BatchID,
		Amount:     intent.Amount,
		Shares:     burned,
		Checkpoint: cp,
	})
	return RedeemResult{
		BatchID:           intent.BatchID,
		Burned:            burned,
		Unstaked:          intent.Amount,
		WithdrawableEpoch: receipt.WithdrawableEpoch(l.cfg.UnstakeDelayEpochs),
		Receipt:           receipt.clone(),
	}
}

// ReleaseUnstakingLock returns an Unstaking lock to None. It reports whether
// the lock was released.
func (l *Ledger) ReleaseUnstakingLock() bool {
	if l.state.RedeemLock != RedeemLockUnstaking {
		return false
	}
	l.state.UnstakeIntent = nil
	l.transitionRedeemLock(RedeemLockNone)
	return true
}

// CheckPendingWithdrawal returns the batch pending withdrawal once its unstaked
// reserve is due at the venue.
func (l *Ledger) CheckPendingWithdrawal() (BatchID, error) {
	if l.state.StakeLock {
		return 0, ErrRedeemBlockedByStakeBatch
	}
	receipt := l.pendingReceipt()
	if receipt == nil {
		return 0, ErrNoPendingWithdrawal
	}
	if !receipt.UnstakedFundsAvailable(l.clock.Now(), l.cfg.UnstakeDelayEpochs) {
		return 0, ErrUnstakedFundsNotAvailable
	}
	return l.state.RedeemBatch.ID, nil
}

// CompleteWithdrawal records the pending batch's unstaked reserve as withdrawn
// from the venue, credits the reserve still owed on its receipt to custody and
// closes the redeem run. It returns the reserve that left the venue. Liquidity
// restaked from the batch and not yet paid out moves from the pool to custody.
func (l *Ledger) CompleteWithdrawal(batchID BatchID) sdkmath.Uint {
	receipt := l.pendingReceipt()
	if receipt == nil {
		illegalState("redeem lock should be %s", RedeemLockPendingWithdrawal)
	}
	if l.state.RedeemBatch.ID != batchID {
		illegalState("pending withdrawal is for batch %d, expected %d", l.state.RedeemBatch.ID, batchID)
	}
	cp := l.clock.Now()
	owed := receipt.UnclaimedReserve
	withdrawn := l.state.PendingUnstaked.Amount
	if withdrawn.GTE(owed) {
		l.state.LiquidityPool.Credit(withdrawn.Sub(owed), cp)
	} else {
		l.state.LiquidityPool.Debit(owed.Sub(withdrawn), cp)
	}
	l.state.PendingUnstaked.Debit(withdrawn, cp)
	l.state.TotalReserve.Credit(owed, cp)
	l.transitionRedeemLock(RedeemLockNone)
	l.popRedeemBatch()
	l.emit(Event{
		Type:       EventWithdrawalCompleted,
		BatchID:    batchID,
		Amount:     owed,
		Checkpoint: cp,
	})
	return withdrawn
}

func (l *Ledger) unstakingBatch(id BatchID) *Batch {
	if l.state.RedeemLock != RedeemLockUnstaking {
		illegalState("redeem lock is %s, expected %s", l.state.RedeemLock, RedeemLockUnstaking)
	}
	batch := l.state.RedeemBatch
	if batch == nil {
		illegalState("redeem stake batch should exist")
	}
	if batch.ID != id {
		illegalState("running redeem batch is %d, expected %d", batch.ID, id)
	}
	return batch
}
