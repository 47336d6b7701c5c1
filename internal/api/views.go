package api

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/stakevault/stake-settlement/internal/ledger"
	"github.com/stakevault/stake-settlement/internal/services"
)

type BalanceView struct {
	Amount      string    `json:"amount"`
	BlockHeight uint64    `json:"block_height"`
	EpochHeight uint64    `json:"epoch_height"`
	Timestamp   time.Time `json:"timestamp"`
}

func balanceView(b *ledger.TimestampedBalance) *BalanceView {
	if b == nil {
		return nil
	}
	return &BalanceView{
		Amount:      b.Amount.String(),
		BlockHeight: b.Checkpoint.BlockHeight,
		EpochHeight: b.Checkpoint.EpochHeight,
		Timestamp:   b.Checkpoint.Timestamp,
	}
}

type BatchView struct {
	ID      uint64       `json:"id"`
	Balance *BalanceView `json:"balance"`
}

func batchView(b *ledger.Batch) *BatchView {
	if b == nil {
		return nil
	}
	return &BatchView{ID: uint64(b.ID), Balance: balanceView(&b.Balance)}
}

type ShareValueView struct {
	TotalStakedReserve string `json:"total_staked_reserve"`
	TotalShareSupply   string `json:"total_share_supply"`
	Price              string `json:"price"`
	EpochHeight        uint64 `json:"epoch_height"`
}

func shareValueView(v ledger.ShareValue) ShareValueView {
	return ShareValueView{
		TotalStakedReserve: v.TotalStakedReserve.String(),
		TotalShareSupply:   v.TotalShareSupply.String(),
		Price:              v.Price().String(),
		EpochHeight:        v.Checkpoint.EpochHeight,
	}
}

type AccountView struct {
	AccountID       string       `json:"account_id"`
	AccountHash     string       `json:"account_hash"`
	StorageEscrow   *BalanceView `json:"storage_escrow"`
	Reserve         *BalanceView `json:"reserve,omitempty"`
	Shares          *BalanceView `json:"shares,omitempty"`
	StakeBatch      *BatchView   `json:"stake_batch,omitempty"`
	NextStakeBatch  *BatchView   `json:"next_stake_batch,omitempty"`
	RedeemBatch     *BatchView   `json:"redeem_batch,omitempty"`
	NextRedeemBatch *BatchView   `json:"next_redeem_batch,omitempty"`
}

func accountView(a *ledger.Account) AccountView {
	return AccountView{
		AccountID:       string(a.ID),
		AccountHash:     a.Hash().String(),
		StorageEscrow:   balanceView(&a.StorageEscrow),
		Reserve:         balanceView(a.Reserve),
		Shares:          balanceView(a.Shares),
		StakeBatch:      batchView(a.StakeBatch),
		NextStakeBatch:  batchView(a.NextStakeBatch),
		RedeemBatch:     batchView(a.RedeemBatch),
		NextRedeemBatch: batchView(a.NextRedeemBatch),
	}
}

type UnstakeIntentView struct {
	BatchID uint64 `json:"batch_id"`
	Amount  string `json:"amount"`
}

type StateView struct {
	AccountCount     int                `json:"account_count"`
	StakeBatch       *BatchView         `json:"stake_batch,omitempty"`
	NextStakeBatch   *BatchView         `json:"next_stake_batch,omitempty"`
	RedeemBatch      *BatchView         `json:"redeem_batch,omitempty"`
	NextRedeemBatch  *BatchView         `json:"next_redeem_batch,omitempty"`
	StakeLock        bool               `json:"stake_lock"`
	RedeemLock       string             `json:"redeem_lock"`
	UnstakeIntent    *UnstakeIntentView `json:"unstake_intent,omitempty"`
	ShareValue       ShareValueView     `json:"share_value"`
	TotalShareSupply *BalanceView       `json:"total_share_supply"`
	TotalReserve     *BalanceView       `json:"total_reserve"`
	LiquidityPool    *BalanceView       `json:"liquidity_pool"`
	PendingUnstaked  *BalanceView       `json:"pending_unstaked"`
	LiquidityNeeded  bool               `json:"liquidity_needed"`
	CanRunBatch      bool               `json:"can_run_batch"`
	CanUnstake       bool               `json:"can_unstake"`
	StakeInFlight    bool               `json:"stake_in_flight"`
	RedeemInFlight   bool               `json:"redeem_in_flight"`
}

func stateView(v *services.StateView) StateView {
	st := v.State
	out := StateView{
		AccountCount:     v.AccountCount,
		StakeBatch:       batchView(st.StakeBatch),
		NextStakeBatch:   batchView(st.NextStakeBatch),
		RedeemBatch:      batchView(st.RedeemBatch),
		NextRedeemBatch:  batchView(st.NextRedeemBatch),
		StakeLock:        st.StakeLock,
		RedeemLock:       st.RedeemLock.String(),
		ShareValue:       shareValueView(st.ShareValue),
		TotalShareSupply: balanceView(&st.TotalShareSupply),
		TotalReserve:     balanceView(&st.TotalReserve),
		LiquidityPool:    balanceView(&st.LiquidityPool),
		PendingUnstaked:  balanceView(&st.PendingUnstaked),
		LiquidityNeeded:  v.LiquidityNeeded,
		CanRunBatch:      v.CanRunBatch,
		CanUnstake:       v.CanUnstake,
		StakeInFlight:    v.StakeInFlight,
		RedeemInFlight:   v.RedeemInFlight,
	}
	if st.UnstakeIntent != nil {
		out.UnstakeIntent = &UnstakeIntentView{
			BatchID: uint64(st.UnstakeIntent.BatchID),
			Amount:  st.UnstakeIntent.Amount.String(),
		}
	}
	return out
}

type StakeReceiptView struct {
	BatchID         uint64         `json:"batch_id"`
	StakedReserve   string         `json:"staked_reserve"`
	UnclaimedShares string         `json:"unclaimed_shares"`
	ShareValue      ShareValueView `json:"share_value"`
}

type RedeemReceiptView struct {
	BatchID          uint64         `json:"batch_id"`
	RedeemedShares   string         `json:"redeemed_shares"`
	UnclaimedReserve string         `json:"unclaimed_reserve"`
	ShareValue       ShareValueView `json:"share_value"`
}

func redeemReceiptView(id ledger.BatchID, r *ledger.RedeemBatchReceipt) RedeemReceiptView {
	return RedeemReceiptView{
		BatchID:          uint64(id),
		RedeemedShares:   r.RedeemedShares.String(),
		UnclaimedReserve: r.UnclaimedReserve.String(),
		ShareValue:       shareValueView(r.ShareValue),
	}
}

type PendingWithdrawalView struct {
	Receipt           RedeemReceiptView `json:"receipt"`
	WithdrawableEpoch uint64            `json:"withdrawable_epoch"`
	Available         bool              `json:"available"`
}

type StakeResultView struct {
	BatchID        uint64         `json:"batch_id"`
	Staked         string         `json:"staked"`
	Minted         string         `json:"minted"`
	LiquidityAdded string         `json:"liquidity_added"`
	PendingCleared bool           `json:"pending_withdrawal_cleared"`
	ShareValue     ShareValueView `json:"share_value"`
}

func stakeResultView(r *ledger.StakeResult) *StakeResultView {
	if r == nil {
		return nil
	}
	return &StakeResultView{
		BatchID:        uint64(r.BatchID),
		Staked:         r.Staked.String(),
		Minted:         r.Minted.String(),
		LiquidityAdded: amountString(r.LiquidityAdded),
		PendingCleared: r.PendingCleared,
		ShareValue:     shareValueView(r.ShareValue),
	}
}

type RedeemResultView struct {
	BatchID           uint64 `json:"batch_id"`
	Burned            string `json:"burned"`
	Unstaked          string `json:"unstaked"`
	WithdrawableEpoch uint64 `json:"withdrawable_epoch"`
}

func redeemResultView(r *ledger.RedeemResult) *RedeemResultView {
	if r == nil {
		return nil
	}
	return &RedeemResultView{
		BatchID:           uint64(r.BatchID),
		Burned:            r.Burned.String(),
		Unstaked:          r.Unstaked.String(),
		WithdrawableEpoch: r.WithdrawableEpoch,
	}
}

// BatchResponse answers commands that place funds into a batch.
type BatchResponse struct {
	BatchID  uint64            `json:"batch_id"`
	Staked   *StakeResultView  `json:"staked,omitempty"`
	Unstaked *RedeemResultView `json:"unstaked,omitempty"`
}

type AmountResponse struct {
	Amount string `json:"amount"`
}

type BoolResponse struct {
	Result bool `json:"result"`
}

func amountString(v sdkmath.Uint) string {
	if v == (sdkmath.Uint{}) {
		return "0"
	}
	return v.String()
}
