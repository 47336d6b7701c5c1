package ledger

import (
	sdkmath "cosmossdk.io/math"
)

// IsLiquidityNeeded reports whether the pending withdrawal is owed more than
// the pool holds.
func (l *Ledger) IsLiquidityNeeded() bool {
	receipt := l.pendingReceipt()
	return receipt != nil && receipt.UnclaimedReserve.GT(l.state.LiquidityPool.Amount)
}

// addLiquidity moves amount of the pending batch's unstaked venue reserve into
// the pool and clears the pending withdrawal when the pool can cover it.
func (l *Ledger) addLiquidity(amount sdkmath.Uint, cp Checkpoint) bool {
	l.state.PendingUnstaked.Debit(amount, cp)
	l.state.LiquidityPool.Credit(amount, cp)
	l.dirty.state = true
	l.emit(Event{Type: EventLiquidityAdded, Amount: amount, Checkpoint: cp})

	receipt := l.pendingReceipt()
	if receipt == nil || receipt.UnclaimedReserve.GT(l.state.LiquidityPool.Amount) {
		return false
	}
	owed := receipt.UnclaimedReserve
	batchID := l.state.RedeemBatch.ID
	l.state.LiquidityPool.Debit(owed, cp)
	l.state.TotalReserve.Credit(owed, cp)
	l.transitionRedeemLock(RedeemLockNone)
	l.popRedeemBatch()
	l.emit(Event{
		Type:       EventPendingWithdrawalCleared,
		BatchID:    batchID,
		Amount:     owed,
		Checkpoint: cp,
	})
	return true
}

func (l *Ledger) isPendingWithdrawal(id BatchID) bool {
	return l.state.RedeemLock == RedeemLockPendingWithdrawal &&
		l.state.RedeemBatch != nil &&
		l.state.RedeemBatch.ID == id
}

// claimFromLiquidity pays a contribution to the batch pending withdrawal out of
// the liquidity pool, partially if the pool is short.
func (l *Ledger) claimFromLiquidity(acc *Account, slot **Batch, receipt *RedeemBatchReceipt) bool {
	pool := l.state.LiquidityPool.Amount
	if pool.IsZero() {
		return false
	}
	batch := *slot
	cp := l.clock.Now()
	shares, reserve := receipt.ClaimReserve(batch.Amount(), pool)
	if shares.IsZero() {
		return false
	}

	l.state.LiquidityPool.Debit(reserve, cp)
	l.state.TotalReserve.Credit(reserve, cp)
	acc.CreditReserve(reserve, cp)
	if batch.Remove(shares, cp).IsZero() {
		*slot = nil
	}
	l.touchRedeemReceipt(batch.ID)
	l.dirty.state = true

	if receipt.AllClaimed() {
		delete(l.redeemReceipts, batch.ID)
		l.emit(Event{
			Type:       EventPendingWithdrawalCleared,
			BatchID:    batch.ID,
			Amount:     reserve,
			Checkpoint: cp,
		})
		l.transitionRedeemLock(RedeemLockNone)
		l.popRedeemBatch()
	}
	return true
}
