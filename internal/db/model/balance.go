package model

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/stakevault/stake-settlement/internal/ledger"
)

// Amounts are stored as decimal strings since they exceed 64 bits.

type CheckpointDocument struct {
	BlockHeight uint64 `bson:"block_height"`
	EpochHeight uint64 `bson:"epoch_height"`
	Timestamp   int64  `bson:"timestamp"` // Unix milliseconds
}

func NewCheckpointDocument(cp ledger.Checkpoint) CheckpointDocument {
	return CheckpointDocument{
		BlockHeight: cp.BlockHeight,
		EpochHeight: cp.EpochHeight,
		Timestamp:   cp.Timestamp.UnixMilli(),
	}
}

func (d CheckpointDocument) ToCheckpoint() ledger.Checkpoint {
	return ledger.Checkpoint{
		BlockHeight: d.BlockHeight,
		EpochHeight: d.EpochHeight,
		Timestamp:   time.UnixMilli(d.Timestamp).UTC(),
	}
}

type BalanceDocument struct {
	Amount     string             `bson:"amount"`
	Checkpoint CheckpointDocument `bson:"checkpoint"`
}

func NewBalanceDocument(b ledger.TimestampedBalance) BalanceDocument {
	return BalanceDocument{
		Amount:     b.Amount.String(),
		Checkpoint: NewCheckpointDocument(b.Checkpoint),
	}
}

func newBalanceDocumentPtr(b *ledger.TimestampedBalance) *BalanceDocument {
	if b == nil {
		return nil
	}
	d := NewBalanceDocument(*b)
	return &d
}

func (d BalanceDocument) ToBalance() (ledger.TimestampedBalance, error) {
	amount, err := parseAmount(d.Amount)
	if err != nil {
		return ledger.TimestampedBalance{}, err
	}
	return ledger.NewTimestampedBalance(amount, d.Checkpoint.ToCheckpoint()), nil
}

func (d *BalanceDocument) toBalancePtr() (*ledger.TimestampedBalance, error) {
	if d == nil {
		return nil, nil
	}
	b, err := d.ToBalance()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

type BatchDocument struct {
	ID      uint64          `bson:"id"`
	Balance BalanceDocument `bson:"balance"`
}

func NewBatchDocument(b *ledger.Batch) *BatchDocument {
	if b == nil {
		return nil
	}
	return &BatchDocument{
		ID:      uint64(b.ID),
		Balance: NewBalanceDocument(b.Balance),
	}
}

func (d *BatchDocument) ToBatch() (*ledger.Batch, error) {
	if d == nil {
		return nil, nil
	}
	balance, err := d.Balance.ToBalance()
	if err != nil {
		return nil, fmt.Errorf("batch %d: %w", d.ID, err)
	}
	return &ledger.Batch{ID: ledger.BatchID(d.ID), Balance: balance}, nil
}

type ShareValueDocument struct {
	TotalStakedReserve string             `bson:"total_staked_reserve"`
	TotalShareSupply   string             `bson:"total_share_supply"`
	Checkpoint         CheckpointDocument `bson:"checkpoint"`
}

func NewShareValueDocument(v ledger.ShareValue) ShareValueDocument {
	return ShareValueDocument{
		TotalStakedReserve: v.TotalStakedReserve.String(),
		TotalShareSupply:   v.TotalShareSupply.String(),
		Checkpoint:         NewCheckpointDocument(v.Checkpoint),
	}
}

func (d ShareValueDocument) ToShareValue() (ledger.ShareValue, error) {
	staked, err := parseAmount(d.TotalStakedReserve)
	if err != nil {
		return ledger.ShareValue{}, err
	}
	supply, err := parseAmount(d.TotalShareSupply)
	if err != nil {
		return ledger.ShareValue{}, err
	}
	return ledger.NewShareValue(d.Checkpoint.ToCheckpoint(), staked, supply), nil
}

func parseAmount(s string) (sdkmath.Uint, error) {
	amount, err := ledger.ParseAmount(s)
	if err != nil {
		return sdkmath.ZeroUint(), fmt.Errorf("invalid stored amount %q: %w", s, err)
	}
	return amount, nil
}
