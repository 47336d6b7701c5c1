package model

import (
	"fmt"

	"github.com/stakevault/stake-settlement/internal/ledger"
)

const ContractStateID = "singleton"

type UnstakeIntentDocument struct {
	BatchID    uint64             `bson:"batch_id"`
	Amount     string             `bson:"amount"`
	ShareValue ShareValueDocument `bson:"share_value"`
}

type ContractStateDocument struct {
	ID               string                 `bson:"_id"`
	StakeBatchSeq    uint64                 `bson:"stake_batch_seq"`
	RedeemBatchSeq   uint64                 `bson:"redeem_batch_seq"`
	StakeBatch       *BatchDocument         `bson:"stake_batch,omitempty"`
	NextStakeBatch   *BatchDocument         `bson:"next_stake_batch,omitempty"`
	RedeemBatch      *BatchDocument         `bson:"redeem_batch,omitempty"`
	NextRedeemBatch  *BatchDocument         `bson:"next_redeem_batch,omitempty"`
	StakeLock        bool                   `bson:"stake_lock"`
	RedeemLock       string                 `bson:"redeem_lock"`
	UnstakeIntent    *UnstakeIntentDocument `bson:"unstake_intent,omitempty"`
	ShareValue       ShareValueDocument     `bson:"share_value"`
	TotalShareSupply BalanceDocument        `bson:"total_share_supply"`
	TotalReserve     BalanceDocument        `bson:"total_reserve"`
	LiquidityPool    BalanceDocument        `bson:"liquidity_pool"`
	PendingUnstaked  BalanceDocument        `bson:"pending_unstaked"`
}

func NewContractStateDocument(s ledger.ContractState) *ContractStateDocument {
	doc := &ContractStateDocument{
		ID:               ContractStateID,
		StakeBatchSeq:    uint64(s.StakeBatchSeq),
		RedeemBatchSeq:   uint64(s.RedeemBatchSeq),
		StakeBatch:       NewBatchDocument(s.StakeBatch),
		NextStakeBatch:   NewBatchDocument(s.NextStakeBatch),
		RedeemBatch:      NewBatchDocument(s.RedeemBatch),
		NextRedeemBatch:  NewBatchDocument(s.NextRedeemBatch),
		StakeLock:        s.StakeLock,
		RedeemLock:       s.RedeemLock.String(),
		ShareValue:       NewShareValueDocument(s.ShareValue),
		TotalShareSupply: NewBalanceDocument(s.TotalShareSupply),
		TotalReserve:     NewBalanceDocument(s.TotalReserve),
		LiquidityPool:    NewBalanceDocument(s.LiquidityPool),
		PendingUnstaked:  NewBalanceDocument(s.PendingUnstaked),
	}
	if s.UnstakeIntent != nil {
		doc.UnstakeIntent = &UnstakeIntentDocument{
			BatchID:    uint64(s.UnstakeIntent.BatchID),
			Amount:     s.UnstakeIntent.Amount.String(),
			ShareValue: NewShareValueDocument(s.UnstakeIntent.ShareValue),
		}
	}
	return doc
}

func (d *ContractStateDocument) ToContractState() (*ledger.ContractState, error) {
	lock, ok := ledger.ParseRedeemLock(d.RedeemLock)
	if !ok {
		return nil, fmt.Errorf("unknown redeem lock %q", d.RedeemLock)
	}
	s := &ledger.ContractState{
		StakeBatchSeq:  ledger.BatchID(d.StakeBatchSeq),
		RedeemBatchSeq: ledger.BatchID(d.RedeemBatchSeq),
		StakeLock:      d.StakeLock,
		RedeemLock:     lock,
	}

	var err error
	batches := []struct {
		doc  *BatchDocument
		dest **ledger.Batch
	}{
		{d.StakeBatch, &s.StakeBatch},
		{d.NextStakeBatch, &s.NextStakeBatch},
		{d.RedeemBatch, &s.RedeemBatch},
		{d.NextRedeemBatch, &s.NextRedeemBatch},
	}
	for _, b := range batches {
		if *b.dest, err = b.doc.ToBatch(); err != nil {
			return nil, err
		}
	}
	if s.ShareValue, err = d.ShareValue.ToShareValue(); err != nil {
		return nil, err
	}
	if s.TotalShareSupply, err = d.TotalShareSupply.ToBalance(); err != nil {
		return nil, err
	}
	if s.TotalReserve, err = d.TotalReserve.ToBalance(); err != nil {
		return nil, err
	}
	if s.LiquidityPool, err = d.LiquidityPool.ToBalance(); err != nil {
		return nil, err
	}
	if s.PendingUnstaked, err = d.PendingUnstaked.ToBalance(); err != nil {
		return nil, err
	}
	if d.UnstakeIntent != nil {
		amount, err := parseAmount(d.UnstakeIntent.Amount)
		if err != nil {
			return nil, err
		}
		value, err := d.UnstakeIntent.ShareValue.ToShareValue()
		if err != nil {
			return nil, err
		}
		s.UnstakeIntent = &ledger.UnstakeIntent{
			BatchID:    ledger.BatchID(d.UnstakeIntent.BatchID),
			Amount:     amount,
			ShareValue: value,
		}
	}
	return s, nil
}
