package services

import (
	"context"
	"net/http"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/stakevault/stake-settlement/internal/ledger"
	"github.com/stakevault/stake-settlement/internal/types"
)

// ReleaseStakeLock clears a stake lock left behind by a failed run. It refuses
// while a stake run is active in this process.
func (s *Service) ReleaseStakeLock(ctx context.Context) (bool, error) {
	if s.stakeInFlight.Load() {
		return false, toServiceError(ErrChainInFlight)
	}
	var released bool
	err := s.mutate(ctx, func(st *step) error {
		released = st.ReleaseStakeLock()
		return nil
	})
	if released {
		log.Ctx(ctx).Warn().Msg("stake lock released by operator")
	}
	return released, err
}

// ReleaseUnstakingLock clears an Unstaking redeem lock. A PendingWithdrawal
// lock is never released this way since its reserve is owed to redeemers.
func (s *Service) ReleaseUnstakingLock(ctx context.Context) (bool, error) {
	if s.redeemInFlight.Load() {
		return false, toServiceError(ErrChainInFlight)
	}
	var released bool
	err := s.mutate(ctx, func(st *step) error {
		released = st.ReleaseUnstakingLock()
		return nil
	})
	if released {
		log.Ctx(ctx).Warn().Msg("unstaking lock released by operator")
	}
	return released, err
}

// WithdrawAllFromVenue moves every withdrawable unstaked venue balance back to
// custody without touching the ledger.
func (s *Service) WithdrawAllFromVenue(ctx context.Context) (sdkmath.Uint, error) {
	if !s.redeemInFlight.CompareAndSwap(false, true) {
		return sdkmath.ZeroUint(), toServiceError(ErrChainInFlight)
	}
	defer s.redeemInFlight.Store(false)

	account, err := s.venue.GetAccount(ctx)
	if err != nil {
		return sdkmath.ZeroUint(), venueError("get account", err)
	}
	balance := account.ToVenueBalance()
	if balance.Unstaked.IsZero() {
		return balance.Unstaked, nil
	}
	if !balance.CanWithdraw {
		return sdkmath.ZeroUint(), toServiceError(ledger.ErrUnstakedFundsNotAvailable)
	}
	if err := s.venue.WithdrawAll(ctx); err != nil {
		return sdkmath.ZeroUint(), venueError("withdraw all", err)
	}
	log.Ctx(ctx).Info().Str("amount", balance.Unstaked.String()).Msg("withdrew unstaked venue balance")
	return balance.Unstaked, nil
}

type StateView struct {
	State           ledger.ContractState
	AccountCount    int
	LiquidityNeeded bool
	CanRunBatch     bool
	CanUnstake      bool
	StakeInFlight   bool
	RedeemInFlight  bool
}

func (s *Service) GetState(ctx context.Context) (*StateView, error) {
	var view *StateView
	err := s.view(ctx, func(l *ledger.Ledger) error {
		view = &StateView{
			State:           l.State(),
			AccountCount:    l.AccountCount(),
			LiquidityNeeded: l.IsLiquidityNeeded(),
			CanRunBatch:     l.CanRunBatch(),
			CanUnstake:      l.CanUnstake(),
			StakeInFlight:   s.stakeInFlight.Load(),
			RedeemInFlight:  s.redeemInFlight.Load(),
		}
		return nil
	})
	return view, err
}

func (s *Service) GetStakeReceipt(ctx context.Context, id ledger.BatchID) (*ledger.StakeBatchReceipt, error) {
	var receipt *ledger.StakeBatchReceipt
	err := s.view(ctx, func(l *ledger.Ledger) error {
		r, ok := l.StakeReceipt(id)
		if !ok {
			return types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "stake batch receipt not found")
		}
		receipt = r
		return nil
	})
	return receipt, err
}

func (s *Service) GetRedeemReceipt(ctx context.Context, id ledger.BatchID) (*ledger.RedeemBatchReceipt, error) {
	var receipt *ledger.RedeemBatchReceipt
	err := s.view(ctx, func(l *ledger.Ledger) error {
		r, ok := l.RedeemReceipt(id)
		if !ok {
			return types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "redeem batch receipt not found")
		}
		receipt = r
		return nil
	})
	return receipt, err
}

type PendingWithdrawalView struct {
	BatchID           ledger.BatchID
	Receipt           *ledger.RedeemBatchReceipt
	WithdrawableEpoch uint64
	Available         bool
}

// GetPendingWithdrawal returns nil when no withdrawal is pending.
func (s *Service) GetPendingWithdrawal(ctx context.Context) (*PendingWithdrawalView, error) {
	var view *PendingWithdrawalView
	err := s.view(ctx, func(l *ledger.Ledger) error {
		id, receipt, ok := l.PendingWithdrawal()
		if !ok {
			return nil
		}
		delay := l.Config().UnstakeDelayEpochs
		view = &PendingWithdrawalView{
			BatchID:           id,
			Receipt:           receipt,
			WithdrawableEpoch: receipt.WithdrawableEpoch(delay),
			Available:         receipt.UnstakedFundsAvailable(l.Now(), delay),
		}
		return nil
	})
	return view, err
}

// LogState writes a summary of the contract state to the log.
func (s *Service) LogState(ctx context.Context) error {
	view, err := s.GetState(ctx)
	if err != nil {
		return err
	}
	state := view.State
	event := log.Ctx(ctx).Info().
		Int("accounts", view.AccountCount).
		Bool("stake_lock", state.StakeLock).
		Str("redeem_lock", state.RedeemLock.String()).
		Str("share_supply", state.TotalShareSupply.Amount.String()).
		Str("total_reserve", state.TotalReserve.Amount.String()).
		Str("liquidity_pool", state.LiquidityPool.Amount.String()).
		Str("pending_unstaked", state.PendingUnstaked.Amount.String()).
		Bool("liquidity_needed", view.LiquidityNeeded)
	if state.StakeBatch != nil {
		event = event.Uint64("stake_batch_id", uint64(state.StakeBatch.ID)).
			Str("stake_batch_amount", state.StakeBatch.Amount().String())
	}
	if state.RedeemBatch != nil {
		event = event.Uint64("redeem_batch_id", uint64(state.RedeemBatch.ID)).
			Str("redeem_batch_shares", state.RedeemBatch.Amount().String())
	}
	event.Msg("settlement state")
	return nil
}
