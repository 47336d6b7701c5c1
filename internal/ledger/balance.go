package ledger

import (
	sdkmath "cosmossdk.io/math"
)

// TimestampedBalance is an amount stamped with the checkpoint of its last change.
type TimestampedBalance struct {
	Amount     sdkmath.Uint
	Checkpoint Checkpoint
}

func NewTimestampedBalance(amount sdkmath.Uint, cp Checkpoint) TimestampedBalance {
	return TimestampedBalance{Amount: amount, Checkpoint: cp}
}

func ZeroBalance(cp Checkpoint) TimestampedBalance {
	return NewTimestampedBalance(sdkmath.ZeroUint(), cp)
}

func (b *TimestampedBalance) Credit(amount sdkmath.Uint, cp Checkpoint) {
	b.Amount = b.Amount.Add(amount)
	b.Checkpoint = cp
}

// Debit panics if amount exceeds the balance; callers validate first.
func (b *TimestampedBalance) Debit(amount sdkmath.Uint, cp Checkpoint) {
	if amount.GT(b.Amount) {
		illegalState("debit %s exceeds balance %s", amount, b.Amount)
	}
	b.Amount = b.Amount.Sub(amount)
	b.Checkpoint = cp
}

func (b TimestampedBalance) IsZero() bool {
	return b.Amount.IsZero()
}

// amountOf returns zero for a missing balance.
func amountOf(b *TimestampedBalance) sdkmath.Uint {
	if b == nil {
		return sdkmath.ZeroUint()
	}
	return b.Amount
}
