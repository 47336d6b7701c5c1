package services

import (
	"context"
	"errors"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/stakevault/stake-settlement/internal/ledger"
	"github.com/stakevault/stake-settlement/internal/queue"
	"github.com/stakevault/stake-settlement/internal/types"
)

// RegisterAccount registers id and returns the part of attached to refund.
func (s *Service) RegisterAccount(ctx context.Context, id ledger.AccountID, attached sdkmath.Uint) (sdkmath.Uint, error) {
	refund := sdkmath.ZeroUint()
	err := s.mutate(ctx, func(st *step) error {
		var err error
		refund, err = st.RegisterAccount(id, attached)
		return err
	})
	if err != nil {
		return sdkmath.ZeroUint(), err
	}
	log.Ctx(ctx).Info().Str("account", string(id)).Msg("account registered")
	return refund, nil
}

// UnregisterAccount removes id and returns its storage escrow.
func (s *Service) UnregisterAccount(ctx context.Context, id ledger.AccountID) (sdkmath.Uint, error) {
	escrow := sdkmath.ZeroUint()
	err := s.mutate(ctx, func(st *step) error {
		var err error
		if escrow, err = st.UnregisterAccount(id); err != nil {
			return err
		}
		st.publish(queue.NewAccountEvent(types.EventAccountUnregistered, id, 0, escrow, st.Now()))
		return nil
	})
	return escrow, err
}

// GetAccount returns the account as it would look with every settled receipt
// claimed.
func (s *Service) GetAccount(ctx context.Context, id ledger.AccountID) (*ledger.Account, error) {
	var acc *ledger.Account
	err := s.view(ctx, func(l *ledger.Ledger) error {
		var err error
		acc, err = l.AccountView(id)
		return err
	})
	return acc, err
}

func (s *Service) ClaimReceipts(ctx context.Context, id ledger.AccountID) (bool, error) {
	var claimed bool
	err := s.mutate(ctx, func(st *step) error {
		var err error
		claimed, err = st.ClaimReceipts(id)
		return err
	})
	return claimed, err
}

func (s *Service) Deposit(ctx context.Context, id ledger.AccountID, amount sdkmath.Uint) (ledger.BatchID, error) {
	var batchID ledger.BatchID
	err := s.mutate(ctx, func(st *step) error {
		var err error
		if batchID, err = st.Deposit(id, amount); err != nil {
			return err
		}
		st.publish(queue.NewAccountEvent(types.EventDeposited, id, batchID, amount, st.Now()))
		return nil
	})
	return batchID, err
}

type DepositAndStakeResult struct {
	BatchID ledger.BatchID
	// Staked is nil when the batch could not be run right away. The deposit
	// then waits for the next stake run.
	Staked *ledger.StakeResult
}

// DepositAndStake deposits and then runs the stake batch when no run blocks it.
func (s *Service) DepositAndStake(ctx context.Context, id ledger.AccountID, amount sdkmath.Uint) (*DepositAndStakeResult, error) {
	batchID, err := s.Deposit(ctx, id, amount)
	if err != nil {
		return nil, err
	}
	result := &DepositAndStakeResult{BatchID: batchID}

	staked, err := s.RunStakeBatch(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Uint64("batch_id", uint64(batchID)).
			Msg("deposit accepted, stake batch deferred")
		return result, nil
	}
	result.Staked = staked
	return result, nil
}

func (s *Service) WithdrawFromStakeBatch(ctx context.Context, id ledger.AccountID, amount sdkmath.Uint) error {
	return s.mutate(ctx, func(st *step) error {
		return st.WithdrawFromStakeBatch(id, amount)
	})
}

func (s *Service) WithdrawAllFromStakeBatch(ctx context.Context, id ledger.AccountID) (sdkmath.Uint, error) {
	amount := sdkmath.ZeroUint()
	err := s.mutate(ctx, func(st *step) error {
		var err error
		amount, err = st.WithdrawAllFromStakeBatch(id)
		return err
	})
	return amount, err
}

func (s *Service) Redeem(ctx context.Context, id ledger.AccountID, shares sdkmath.Uint) (ledger.BatchID, error) {
	var batchID ledger.BatchID
	err := s.mutate(ctx, func(st *step) error {
		var err error
		if batchID, err = st.Redeem(id, shares); err != nil {
			return err
		}
		st.publish(redeemEvent(st, id, batchID, shares))
		return nil
	})
	return batchID, err
}

func (s *Service) RedeemAll(ctx context.Context, id ledger.AccountID) (ledger.BatchID, error) {
	var batchID ledger.BatchID
	err := s.mutate(ctx, func(st *step) error {
		before, err := st.AccountView(id)
		if err != nil {
			return err
		}
		if batchID, err = st.RedeemAll(id); err != nil {
			return err
		}
		st.publish(redeemEvent(st, id, batchID, before.ShareBalance()))
		return nil
	})
	return batchID, err
}

func redeemEvent(st *step, id ledger.AccountID, batchID ledger.BatchID, shares sdkmath.Uint) *queue.SettlementEvent {
	ev := queue.NewAccountEvent(types.EventRedeemRequested, id, batchID, sdkmath.ZeroUint(), st.Now())
	ev.Shares = shares.String()
	return ev
}

type RedeemAndUnstakeResult struct {
	BatchID ledger.BatchID
	// Unstaked is nil when the redeem batch could not be run right away.
	Unstaked *ledger.RedeemResult
}

// RedeemAndUnstake redeems and then runs the redeem batch when no run blocks it.
func (s *Service) RedeemAndUnstake(ctx context.Context, id ledger.AccountID, shares sdkmath.Uint) (*RedeemAndUnstakeResult, error) {
	batchID, err := s.Redeem(ctx, id, shares)
	if err != nil {
		return nil, err
	}
	return s.unstakeAfterRedeem(ctx, batchID), nil
}

func (s *Service) RedeemAllAndUnstake(ctx context.Context, id ledger.AccountID) (*RedeemAndUnstakeResult, error) {
	batchID, err := s.RedeemAll(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.unstakeAfterRedeem(ctx, batchID), nil
}

func (s *Service) unstakeAfterRedeem(ctx context.Context, batchID ledger.BatchID) *RedeemAndUnstakeResult {
	result := &RedeemAndUnstakeResult{BatchID: batchID}

	unstaked, err := s.runRedeemBatch(ctx, true)
	if errors.Is(err, errNoRedeemProgress) || errors.Is(err, ErrChainInFlight) {
		return result
	}
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Uint64("batch_id", uint64(batchID)).
			Msg("redeem accepted, unstake deferred")
		return result
	}
	result.Unstaked = unstaked
	return result
}

// CancelPendingRedeem returns the account's shares from the redeem batch that
// has not been committed to a run yet.
func (s *Service) CancelPendingRedeem(ctx context.Context, id ledger.AccountID) (sdkmath.Uint, error) {
	shares := sdkmath.ZeroUint()
	err := s.mutate(ctx, func(st *step) error {
		var err error
		shares, err = st.CancelPendingRedeem(id)
		return err
	})
	return shares, err
}

func (s *Service) WithdrawReserve(ctx context.Context, id ledger.AccountID, amount sdkmath.Uint) error {
	return s.mutate(ctx, func(st *step) error {
		if err := st.WithdrawReserve(id, amount); err != nil {
			return err
		}
		st.publish(queue.NewAccountEvent(types.EventReserveWithdrawn, id, 0, amount, st.Now()))
		return nil
	})
}

func (s *Service) WithdrawAllReserve(ctx context.Context, id ledger.AccountID) (sdkmath.Uint, error) {
	amount := sdkmath.ZeroUint()
	err := s.mutate(ctx, func(st *step) error {
		var err error
		if amount, err = st.WithdrawAllReserve(id); err != nil {
			return err
		}
		if !amount.IsZero() {
			st.publish(queue.NewAccountEvent(types.EventReserveWithdrawn, id, 0, amount, st.Now()))
		}
		return nil
	})
	return amount, err
}
