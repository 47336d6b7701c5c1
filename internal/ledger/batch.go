package ledger

import (
	sdkmath "cosmossdk.io/math"
)

// BatchID identifies a stake or redeem batch. Stake and redeem ids come from
// separate sequences.
type BatchID uint64

// Batch aggregates reserve (stake batches) or shares (redeem batches) under one id.
type Batch struct {
	ID      BatchID
	Balance TimestampedBalance
}

func NewBatch(id BatchID, amount sdkmath.Uint, cp Checkpoint) *Batch {
	return &Batch{ID: id, Balance: NewTimestampedBalance(amount, cp)}
}

func (b *Batch) Amount() sdkmath.Uint {
	return b.Balance.Amount
}

func (b *Batch) Add(amount sdkmath.Uint, cp Checkpoint) {
	b.Balance.Credit(amount, cp)
}

// Remove debits amount and returns what is left.
func (b *Batch) Remove(amount sdkmath.Uint, cp Checkpoint) sdkmath.Uint {
	b.Balance.Debit(amount, cp)
	return b.Balance.Amount
}

func (b *Batch) clone() *Batch {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}
