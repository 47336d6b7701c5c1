package ledger

import (
	sdkmath "cosmossdk.io/math"
)

// VenueBalance is the contract's account at the staking venue.
type VenueBalance struct {
	Staked      sdkmath.Uint
	Unstaked    sdkmath.Uint
	CanWithdraw bool
}

// StakePlan is the venue work needed to settle the current stake batch.
type StakePlan struct {
	BatchID     BatchID
	BatchAmount sdkmath.Uint
	// ShareValue is the pre-stake rate shares are minted at.
	ShareValue ShareValue
	// Deposit is reserve to deposit and stake.
	Deposit sdkmath.Uint
	// Liquidity is unstaked venue reserve to restake; the batch reserve it
	// replaces joins the liquidity pool.
	Liquidity sdkmath.Uint
}

// StakeResult describes a settled stake batch.
type StakeResult struct {
	BatchID        BatchID
	Staked         sdkmath.Uint
	Minted         sdkmath.Uint
	LiquidityAdded sdkmath.Uint
	PendingCleared bool
	ShareValue     ShareValue
	Receipt        *StakeBatchReceipt
}

// BeginStakeBatch takes the stake lock for the current batch.
func (l *Ledger) BeginStakeBatch() (*Batch, error) {
	if !l.CanRunBatch() {
		return nil, ErrBatchRunning
	}
	if l.state.StakeBatch == nil {
		return nil, ErrNoStakeBatch
	}
	if l.state.StakeBatch.Amount().IsZero() {
		return nil, ErrNoFundsInStakeBatch
	}
	l.state.StakeLock = true
	l.dirty.state = true
	return l.state.StakeBatch.clone(), nil
}

// ReleaseStakeLock clears the stake lock. It reports whether the lock was held.
func (l *Ledger) ReleaseStakeLock() bool {
	if !l.state.StakeLock {
		return false
	}
	l.state.StakeLock = false
	l.dirty.state = true
	return true
}

// StakedReserveBalance is the reserve that backs the share supply. While a
// withdrawal is pending, the venue's unstaked balance is replaced by the
// ledger's record of it, pooled liquidity restaked from it is added back and
// reserve owed to redeemers is excluded.
func (l *Ledger) StakedReserveBalance(v VenueBalance) sdkmath.Uint {
	if v.Staked.IsZero() {
		return sdkmath.ZeroUint()
	}
	receipt := l.pendingReceipt()
	if receipt == nil {
		return v.Staked.Add(v.Unstaked)
	}
	total := v.Staked.Add(l.state.PendingUnstaked.Amount).Add(l.state.LiquidityPool.Amount)
	if receipt.UnclaimedReserve.GT(total) {
		return sdkmath.ZeroUint()
	}
	return total.Sub(receipt.UnclaimedReserve)
}

// RefreshShareValue recomputes the cached share value from the venue balance.
func (l *Ledger) RefreshShareValue(v VenueBalance) ShareValue {
	l.state.ShareValue = NewShareValue(l.clock.Now(), l.StakedReserveBalance(v), l.state.TotalShareSupply.Amount)
	l.dirty.state = true
	return l.state.ShareValue
}

// ShareValue returns the cached share value.
func (l *Ledger) ShareValue() ShareValue {
	return l.state.ShareValue
}

// PlanStake refreshes the share value and decides how the running batch
// reaches the venue.
func (l *Ledger) PlanStake(batchID BatchID, v VenueBalance) StakePlan {
	batch := l.runningStakeBatch(batchID)
	amount := batch.Amount()
	plan := StakePlan{
		BatchID:     batchID,
		BatchAmount: amount,
		ShareValue:  l.RefreshShareValue(v),
		Deposit:     amount,
		Liquidity:   sdkmath.ZeroUint(),
	}
	if !l.IsLiquidityNeeded() {
		return plan
	}
	// only reserve of the pending batch may be restaked; anything else the
	// venue holds unstaked is not ours to pool
	unstaked := sdkmath.MinUint(v.Unstaked, l.state.PendingUnstaked.Amount)
	plan.Liquidity = sdkmath.MinUint(unstaked, amount)
	plan.Deposit = amount.Sub(plan.Liquidity)
	return plan
}

// CompleteStakeBatch settles the running batch once the plan has been carried
// out at the venue.
func (l *Ledger) CompleteStakeBatch(plan StakePlan) StakeResult {
	batch := l.runningStakeBatch(plan.BatchID)
	if !batch.Amount().Equal(plan.BatchAmount) {
		illegalState("stake batch %d changed while running", plan.BatchID)
	}
	cp := l.clock.Now()
	result := StakeResult{
		BatchID:        plan.BatchID,
		Staked:         plan.BatchAmount,
		LiquidityAdded: plan.Liquidity,
	}

	if !plan.Liquidity.IsZero() {
		result.PendingCleared = l.addLiquidity(plan.Liquidity, cp)
	}

	receipt := NewStakeBatchReceipt(plan.BatchAmount, plan.ShareValue)
	result.Minted = receipt.UnclaimedShares
	l.state.TotalShareSupply.Credit(result.Minted, cp)
	l.stakeReceipts[plan.BatchID] = receipt
	l.touchStakeReceipt(plan.BatchID)

	l.state.ShareValue = plan.ShareValue.afterStake(cp, plan.BatchAmount, result.Minted)
	result.ShareValue = l.state.ShareValue
	result.Receipt = receipt.clone()

	l.popStakeBatch()
	l.emit(Event{
		Type:       EventStaked,
		BatchID:    plan.BatchID,
		Amount:     plan.BatchAmount,
		Shares:     result.Minted,
		Checkpoint: cp,
	})
	return result
}

func (l *Ledger) runningStakeBatch(id BatchID) *Batch {
	if !l.state.StakeLock {
		illegalState("stake batch %d is not locked", id)
	}
	batch := l.state.StakeBatch
	if batch == nil {
		illegalState("stake batch should exist")
	}
	if batch.ID != id {
		illegalState("running stake batch is %d, expected %d", batch.ID, id)
	}
	return batch
}
