package model_test

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakevault/stake-settlement/internal/db/model"
	"github.com/stakevault/stake-settlement/internal/ledger"
)

var cp = ledger.Checkpoint{
	BlockHeight: 120,
	EpochHeight: 12,
	Timestamp:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
}

func TestAccountDocument(t *testing.T) {
	huge := sdkmath.NewUintFromString("340282366920938463463374607431768211455")

	acc := ledger.NewAccount("alice.near", sdkmath.NewUint(10), cp)
	acc.CreditShares(huge, cp)
	acc.StakeBatch = ledger.NewBatch(3, sdkmath.NewUint(50), cp)

	doc := model.NewAccountDocument(acc)
	assert.Equal(t, acc.Hash().String(), doc.ID)
	assert.Equal(t, "340282366920938463463374607431768211455", doc.Shares.Amount)
	assert.Nil(t, doc.Reserve)
	assert.Nil(t, doc.RedeemBatch)

	restored, err := doc.ToAccount()
	require.NoError(t, err)
	assert.Equal(t, acc.ShareBalance().String(), restored.ShareBalance().String())
	assert.Equal(t, ledger.BatchID(3), restored.StakeBatch.ID)
	assert.Equal(t, cp, restored.StakeBatch.Balance.Checkpoint)

	t.Run("mismatched hash", func(t *testing.T) {
		doc := model.NewAccountDocument(acc)
		doc.AccountID = "bob.near"
		_, err := doc.ToAccount()
		require.Error(t, err)
	})

	t.Run("corrupt amount", func(t *testing.T) {
		doc := model.NewAccountDocument(acc)
		doc.Shares.Amount = "-1"
		_, err := doc.ToAccount()
		require.Error(t, err)
	})
}

func TestContractStateDocument(t *testing.T) {
	state := ledger.NewContractState(cp)
	state.StakeBatchSeq = 4
	state.RedeemBatchSeq = 2
	state.RedeemLock = ledger.RedeemLockUnstaking
	state.RedeemBatch = ledger.NewBatch(2, sdkmath.NewUint(30), cp)
	state.UnstakeIntent = &ledger.UnstakeIntent{
		BatchID:    2,
		Amount:     sdkmath.NewUint(33),
		ShareValue: ledger.NewShareValue(cp, sdkmath.NewUint(110), sdkmath.NewUint(100)),
	}
	state.PendingUnstaked.Credit(sdkmath.NewUint(20), cp)

	doc := model.NewContractStateDocument(state)
	assert.Equal(t, model.ContractStateID, doc.ID)
	assert.Equal(t, ledger.RedeemLockUnstaking.String(), doc.RedeemLock)

	restored, err := doc.ToContractState()
	require.NoError(t, err)
	assert.Equal(t, ledger.BatchID(4), restored.StakeBatchSeq)
	assert.Equal(t, ledger.RedeemLockUnstaking, restored.RedeemLock)
	require.NotNil(t, restored.UnstakeIntent)
	assert.Equal(t, "33", restored.UnstakeIntent.Amount.String())
	assert.Equal(t, "110", restored.UnstakeIntent.ShareValue.TotalStakedReserve.String())
	assert.Equal(t, "20", restored.PendingUnstaked.Amount.String())
	assert.Nil(t, restored.StakeBatch)

	t.Run("unknown lock", func(t *testing.T) {
		doc.RedeemLock = "SOMETHING_ELSE"
		_, err := doc.ToContractState()
		require.Error(t, err)
	})
}

func TestRedeemReceiptDocument(t *testing.T) {
	value := ledger.NewShareValue(cp, sdkmath.NewUint(110), sdkmath.NewUint(100))
	receipt := ledger.NewRedeemBatchReceipt(sdkmath.NewUint(30), sdkmath.NewUint(33), value)

	doc := model.NewRedeemReceiptDocument(7, receipt)
	assert.Equal(t, uint64(7), doc.BatchID)

	restored, err := doc.ToReceipt()
	require.NoError(t, err)
	assert.Equal(t, "30", restored.RedeemedShares.String())
	assert.Equal(t, "33", restored.UnclaimedReserve.String())
	assert.Equal(t, cp.EpochHeight, restored.ShareValue.Checkpoint.EpochHeight)
}
