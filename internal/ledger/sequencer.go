package ledger

import (
	sdkmath "cosmossdk.io/math"
)

func (l *Ledger) nextStakeBatchID() BatchID {
	l.state.StakeBatchSeq++
	return l.state.StakeBatchSeq
}

func (l *Ledger) nextRedeemBatchID() BatchID {
	l.state.RedeemBatchSeq++
	return l.state.RedeemBatchSeq
}

// stakeDepositTarget returns the contract batch new deposits join, creating it
// when absent. While a stake run holds the lock that is the next batch.
func (l *Ledger) stakeDepositTarget(cp Checkpoint) (*Batch, bool) {
	if l.state.StakeLock {
		if l.state.NextStakeBatch == nil {
			l.state.NextStakeBatch = NewBatch(l.nextStakeBatchID(), sdkmath.ZeroUint(), cp)
		}
		return l.state.NextStakeBatch, true
	}
	if l.state.StakeBatch == nil {
		l.state.StakeBatch = NewBatch(l.nextStakeBatchID(), sdkmath.ZeroUint(), cp)
	}
	return l.state.StakeBatch, false
}

// redeemTarget mirrors stakeDepositTarget for the redeem lock.
func (l *Ledger) redeemTarget(cp Checkpoint) (*Batch, bool) {
	if l.state.RedeemLock != RedeemLockNone {
		if l.state.NextRedeemBatch == nil {
			l.state.NextRedeemBatch = NewBatch(l.nextRedeemBatchID(), sdkmath.ZeroUint(), cp)
		}
		return l.state.NextRedeemBatch, true
	}
	if l.state.RedeemBatch == nil {
		l.state.RedeemBatch = NewBatch(l.nextRedeemBatchID(), sdkmath.ZeroUint(), cp)
	}
	return l.state.RedeemBatch, false
}

// popStakeBatch promotes the next stake batch into the current slot.
func (l *Ledger) popStakeBatch() {
	l.state.StakeBatch = l.state.NextStakeBatch
	l.state.NextStakeBatch = nil
	l.dirty.state = true
}

func (l *Ledger) popRedeemBatch() {
	l.state.RedeemBatch = l.state.NextRedeemBatch
	l.state.NextRedeemBatch = nil
	l.dirty.state = true
}

func (l *Ledger) stakeBatchByID(id BatchID) *Batch {
	if b := l.state.StakeBatch; b != nil && b.ID == id {
		return b
	}
	if b := l.state.NextStakeBatch; b != nil && b.ID == id {
		return b
	}
	return nil
}

func (l *Ledger) redeemBatchByID(id BatchID) *Batch {
	if b := l.state.RedeemBatch; b != nil && b.ID == id {
		return b
	}
	if b := l.state.NextRedeemBatch; b != nil && b.ID == id {
		return b
	}
	return nil
}

// Deposit adds reserve to the stake batch that is accepting deposits and
// returns its id.
func (l *Ledger) Deposit(id AccountID, amount sdkmath.Uint) (BatchID, error) {
	if amount.IsZero() {
		return 0, ErrZeroDeposit
	}
	acc, err := l.account(id)
	if err != nil {
		return 0, err
	}
	l.claimReceipts(acc)

	cp := l.clock.Now()
	batch, next := l.stakeDepositTarget(cp)
	slot := &acc.StakeBatch
	if next {
		slot = &acc.NextStakeBatch
	}
	switch {
	case *slot == nil:
		*slot = NewBatch(batch.ID, amount, cp)
	case (*slot).ID != batch.ID:
		illegalState("account stake batch %d does not match contract batch %d", (*slot).ID, batch.ID)
	default:
		(*slot).Add(amount, cp)
	}
	batch.Add(amount, cp)

	l.touchAccount(acc)
	l.dirty.state = true
	return batch.ID, nil
}

// WithdrawFromStakeBatch moves reserve out of an unsettled stake batch back to
// the account's reserve balance. The next batch is drawn from first. The
// current batch can only be drawn from while no batch run holds a lock.
func (l *Ledger) WithdrawFromStakeBatch(id AccountID, amount sdkmath.Uint) error {
	if amount.IsZero() {
		return ErrZeroWithdrawAmount
	}
	acc, err := l.account(id)
	if err != nil {
		return err
	}
	l.claimReceipts(acc)

	slot, err := l.withdrawableStakeSlot(acc, amount)
	if err != nil {
		return err
	}
	l.withdrawFromStakeSlot(acc, slot, amount)
	return nil
}

// WithdrawAllFromStakeBatch withdraws every unsettled contribution the account
// may take back and returns the total.
func (l *Ledger) WithdrawAllFromStakeBatch(id AccountID) (sdkmath.Uint, error) {
	acc, err := l.account(id)
	if err != nil {
		return sdkmath.ZeroUint(), err
	}
	l.claimReceipts(acc)

	total := sdkmath.ZeroUint()
	if acc.NextStakeBatch != nil {
		amount := acc.NextStakeBatch.Amount()
		l.withdrawFromStakeSlot(acc, &acc.NextStakeBatch, amount)
		total = total.Add(amount)
	}
	if acc.StakeBatch != nil && l.CanRunBatch() {
		amount := acc.StakeBatch.Amount()
		l.withdrawFromStakeSlot(acc, &acc.StakeBatch, amount)
		total = total.Add(amount)
	}
	return total, nil
}

func (l *Ledger) withdrawableStakeSlot(acc *Account, amount sdkmath.Uint) (**Batch, error) {
	if acc.NextStakeBatch != nil && amount.LTE(acc.NextStakeBatch.Amount()) {
		return &acc.NextStakeBatch, nil
	}
	if acc.StakeBatch == nil {
		return nil, ErrInsufficientBatchBalance
	}
	if !l.CanRunBatch() {
		return nil, ErrBatchRunning
	}
	if amount.GT(acc.StakeBatch.Amount()) {
		return nil, ErrInsufficientBatchBalance
	}
	return &acc.StakeBatch, nil
}

func (l *Ledger) withdrawFromStakeSlot(acc *Account, slot **Batch, amount sdkmath.Uint) {
	cp := l.clock.Now()
	batchID := (*slot).ID
	contract := l.stakeBatchByID(batchID)
	if contract == nil {
		illegalState("stake batch %d should exist", batchID)
	}

	if (*slot).Remove(amount, cp).IsZero() {
		*slot = nil
	}
	if contract.Remove(amount, cp).IsZero() {
		switch contract {
		case l.state.StakeBatch:
			l.popStakeBatch()
		case l.state.NextStakeBatch:
			l.state.NextStakeBatch = nil
		}
	}
	acc.CreditReserve(amount, cp)
	l.state.TotalReserve.Credit(amount, cp)

	l.touchAccount(acc)
	l.dirty.state = true
}

// Redeem moves shares from the account's balance into the redeem batch that
// is accepting requests and returns its id.
func (l *Ledger) Redeem(id AccountID, shares sdkmath.Uint) (BatchID, error) {
	if shares.IsZero() {
		return 0, ErrZeroRedeemAmount
	}
	if l.state.StakeLock {
		return 0, ErrRedeemBlockedByStakeBatch
	}
	acc, err := l.account(id)
	if err != nil {
		return 0, err
	}
	l.claimReceipts(acc)
	if shares.GT(acc.ShareBalance()) {
		return 0, ErrInsufficientShares
	}

	cp := l.clock.Now()
	batch, next := l.redeemTarget(cp)
	slot := &acc.RedeemBatch
	if next {
		slot = &acc.NextRedeemBatch
	}
	switch {
	case *slot == nil:
		*slot = NewBatch(batch.ID, shares, cp)
	case (*slot).ID != batch.ID:
		illegalState("account redeem batch %d does not match contract batch %d", (*slot).ID, batch.ID)
	default:
		(*slot).Add(shares, cp)
	}
	batch.Add(shares, cp)
	acc.DebitShares(shares, cp)

	l.touchAccount(acc)
	l.dirty.state = true
	return batch.ID, nil
}

// RedeemAll redeems the account's entire share balance.
func (l *Ledger) RedeemAll(id AccountID) (BatchID, error) {
	acc, err := l.account(id)
	if err != nil {
		return 0, err
	}
	if l.state.StakeLock {
		return 0, ErrRedeemBlockedByStakeBatch
	}
	l.claimReceipts(acc)
	shares := acc.ShareBalance()
	if shares.IsZero() {
		return 0, ErrInsufficientShares
	}
	return l.Redeem(id, shares)
}

// CancelPendingRedeem returns shares from the redeem batch that has not yet
// been committed to a run and returns them. Zero means nothing was pending.
func (l *Ledger) CancelPendingRedeem(id AccountID) (sdkmath.Uint, error) {
	acc, err := l.account(id)
	if err != nil {
		return sdkmath.ZeroUint(), err
	}
	l.claimReceipts(acc)

	slot := &acc.RedeemBatch
	if l.state.RedeemLock != RedeemLockNone {
		slot = &acc.NextRedeemBatch
	}
	if *slot == nil {
		return sdkmath.ZeroUint(), nil
	}

	cp := l.clock.Now()
	batchID := (*slot).ID
	contract := l.redeemBatchByID(batchID)
	if contract == nil {
		illegalState("redeem stake batch %d should exist", batchID)
	}
	shares := (*slot).Amount()
	*slot = nil
	if contract.Remove(shares, cp).IsZero() {
		switch contract {
		case l.state.RedeemBatch:
			l.popRedeemBatch()
		case l.state.NextRedeemBatch:
			l.state.NextRedeemBatch = nil
		}
	}
	acc.CreditShares(shares, cp)

	l.touchAccount(acc)
	l.dirty.state = true
	return shares, nil
}
