package model

import (
	"fmt"

	"github.com/stakevault/stake-settlement/internal/ledger"
)

type AccountDocument struct {
	// ID is the hex encoded account hash.
	ID              string           `bson:"_id"`
	AccountID       string           `bson:"account_id"`
	StorageEscrow   BalanceDocument  `bson:"storage_escrow"`
	Reserve         *BalanceDocument `bson:"reserve,omitempty"`
	Shares          *BalanceDocument `bson:"shares,omitempty"`
	StakeBatch      *BatchDocument   `bson:"stake_batch,omitempty"`
	NextStakeBatch  *BatchDocument   `bson:"next_stake_batch,omitempty"`
	RedeemBatch     *BatchDocument   `bson:"redeem_batch,omitempty"`
	NextRedeemBatch *BatchDocument   `bson:"next_redeem_batch,omitempty"`
}

func NewAccountDocument(acc *ledger.Account) *AccountDocument {
	return &AccountDocument{
		ID:              acc.Hash().String(),
		AccountID:       string(acc.ID),
		StorageEscrow:   NewBalanceDocument(acc.StorageEscrow),
		Reserve:         newBalanceDocumentPtr(acc.Reserve),
		Shares:          newBalanceDocumentPtr(acc.Shares),
		StakeBatch:      NewBatchDocument(acc.StakeBatch),
		NextStakeBatch:  NewBatchDocument(acc.NextStakeBatch),
		RedeemBatch:     NewBatchDocument(acc.RedeemBatch),
		NextRedeemBatch: NewBatchDocument(acc.NextRedeemBatch),
	}
}

func (d *AccountDocument) ToAccount() (*ledger.Account, error) {
	acc := &ledger.Account{ID: ledger.AccountID(d.AccountID)}
	if acc.Hash().String() != d.ID {
		return nil, fmt.Errorf("account %s is stored under mismatched hash %s", d.AccountID, d.ID)
	}

	var err error
	if acc.StorageEscrow, err = d.StorageEscrow.ToBalance(); err != nil {
		return nil, fmt.Errorf("account %s escrow: %w", d.AccountID, err)
	}
	if acc.Reserve, err = d.Reserve.toBalancePtr(); err != nil {
		return nil, fmt.Errorf("account %s reserve: %w", d.AccountID, err)
	}
	if acc.Shares, err = d.Shares.toBalancePtr(); err != nil {
		return nil, fmt.Errorf("account %s shares: %w", d.AccountID, err)
	}
	batches := []struct {
		doc  *BatchDocument
		dest **ledger.Batch
	}{
		{d.StakeBatch, &acc.StakeBatch},
		{d.NextStakeBatch, &acc.NextStakeBatch},
		{d.RedeemBatch, &acc.RedeemBatch},
		{d.NextRedeemBatch, &acc.NextRedeemBatch},
	}
	for _, b := range batches {
		if *b.dest, err = b.doc.ToBatch(); err != nil {
			return nil, fmt.Errorf("account %s: %w", d.AccountID, err)
		}
	}
	return acc, nil
}
