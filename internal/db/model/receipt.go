package model

import (
	"fmt"

	"github.com/stakevault/stake-settlement/internal/ledger"
)

type StakeReceiptDocument struct {
	BatchID         uint64             `bson:"_id"`
	StakedReserve   string             `bson:"staked_reserve"`
	UnclaimedShares string             `bson:"unclaimed_shares"`
	ShareValue      ShareValueDocument `bson:"share_value"`
}

func NewStakeReceiptDocument(id ledger.BatchID, r *ledger.StakeBatchReceipt) *StakeReceiptDocument {
	return &StakeReceiptDocument{
		BatchID:         uint64(id),
		StakedReserve:   r.StakedReserve.String(),
		UnclaimedShares: r.UnclaimedShares.String(),
		ShareValue:      NewShareValueDocument(r.ShareValue),
	}
}

func (d *StakeReceiptDocument) ToReceipt() (*ledger.StakeBatchReceipt, error) {
	staked, err := parseAmount(d.StakedReserve)
	if err != nil {
		return nil, fmt.Errorf("stake receipt %d: %w", d.BatchID, err)
	}
	unclaimed, err := parseAmount(d.UnclaimedShares)
	if err != nil {
		return nil, fmt.Errorf("stake receipt %d: %w", d.BatchID, err)
	}
	value, err := d.ShareValue.ToShareValue()
	if err != nil {
		return nil, fmt.Errorf("stake receipt %d: %w", d.BatchID, err)
	}
	return &ledger.StakeBatchReceipt{
		StakedReserve:   staked,
		UnclaimedShares: unclaimed,
		ShareValue:      value,
	}, nil
}

type RedeemReceiptDocument struct {
	BatchID          uint64             `bson:"_id"`
	RedeemedShares   string             `bson:"redeemed_shares"`
	UnclaimedReserve string             `bson:"unclaimed_reserve"`
	ShareValue       ShareValueDocument `bson:"share_value"`
}

func NewRedeemReceiptDocument(id ledger.BatchID, r *ledger.RedeemBatchReceipt) *RedeemReceiptDocument {
	return &RedeemReceiptDocument{
		BatchID:          uint64(id),
		RedeemedShares:   r.RedeemedShares.String(),
		UnclaimedReserve: r.UnclaimedReserve.String(),
		ShareValue:       NewShareValueDocument(r.ShareValue),
	}
}

func (d *RedeemReceiptDocument) ToReceipt() (*ledger.RedeemBatchReceipt, error) {
	redeemed, err := parseAmount(d.RedeemedShares)
	if err != nil {
		return nil, fmt.Errorf("redeem receipt %d: %w", d.BatchID, err)
	}
	unclaimed, err := parseAmount(d.UnclaimedReserve)
	if err != nil {
		return nil, fmt.Errorf("redeem receipt %d: %w", d.BatchID, err)
	}
	value, err := d.ShareValue.ToShareValue()
	if err != nil {
		return nil, fmt.Errorf("redeem receipt %d: %w", d.BatchID, err)
	}
	return ledger.NewRedeemBatchReceipt(redeemed, unclaimed, value), nil
}
