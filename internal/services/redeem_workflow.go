package services

import (
	"context"
	"net/http"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stakevault/stake-settlement/internal/clients/venueclient"
	"github.com/stakevault/stake-settlement/internal/ledger"
	"github.com/stakevault/stake-settlement/internal/observability/metrics"
	"github.com/stakevault/stake-settlement/internal/types"
)

// maxWithdrawAttempts bounds how often unstaked venue funds are withdrawn
// before giving up on a run.
const maxWithdrawAttempts = 3

// RunRedeemBatch unstakes the current redeem batch. While a withdrawal is
// pending it performs the withdrawal step instead, and a batch left unstaking
// by an interrupted run is reconciled against the venue first.
func (s *Service) RunRedeemBatch(ctx context.Context) (*ledger.RedeemResult, error) {
	return s.runRedeemBatch(ctx, false)
}

// runRedeemBatch with onlyIfProgress set fails with errNoRedeemProgress,
// before touching the venue, when the ledger reports the run would stall.
func (s *Service) runRedeemBatch(ctx context.Context, onlyIfProgress bool) (result *ledger.RedeemResult, err error) {
	if !s.redeemInFlight.CompareAndSwap(false, true) {
		return nil, toServiceError(ErrChainInFlight)
	}
	defer s.redeemInFlight.Store(false)

	startTime := time.Now()
	defer func() {
		metrics.RecordWorkflowDuration(time.Since(startTime), "redeem", err != nil && !IsPreconditionError(err))
	}()

	var (
		batch     *ledger.Batch
		pending   bool
		resumed   bool
		intent    ledger.UnstakeIntent
		hasIntent bool
	)
	err = s.mutate(ctx, func(st *step) error {
		if onlyIfProgress && !st.CanUnstake() {
			return errNoRedeemProgress
		}
		state := st.State()
		switch state.RedeemLock {
		case ledger.RedeemLockPendingWithdrawal:
			pending = true
			return nil
		case ledger.RedeemLockUnstaking:
			if state.RedeemBatch == nil {
				return types.NewErrorWithMsg(http.StatusInternalServerError, types.InternalServiceError,
					"redeem lock is unstaking without a redeem batch")
			}
			resumed = true
			batch = state.RedeemBatch
			intent, hasIntent = st.UnstakeIntent()
			return nil
		}
		var err error
		batch, err = st.BeginRedeemBatch()
		return err
	})
	if err != nil {
		return nil, err
	}
	if pending {
		_, err = s.processPendingWithdrawal(ctx)
		return nil, err
	}

	logger := log.Ctx(ctx).With().Uint64("redeem_batch_id", uint64(batch.ID)).Logger()
	if resumed {
		logger.Warn().Bool("intent_recorded", hasIntent).Msg("resuming redeem batch left unstaking")
	} else {
		logger.Info().Str("shares", batch.Amount().String()).Msg("redeem batch locked")
	}

	account, err := s.venue.GetAccount(ctx)
	if err != nil {
		s.abortUnstaking(ctx, hasIntent)
		return nil, venueError("get account", err)
	}

	if hasIntent {
		if !account.ToVenueBalance().Unstaked.IsZero() {
			// the interrupted unstake reached the venue
			return s.completeUnstake(ctx, logger)
		}
		logger.Info().Msg("interrupted unstake never reached the venue, retrying")
		err = s.mutate(ctx, func(st *step) error {
			st.DiscardUnstakeIntent()
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	account, err = s.withdrawUnstaked(ctx, account)
	if err != nil {
		s.abortUnstaking(ctx, false)
		return nil, err
	}

	err = s.mutate(ctx, func(st *step) error {
		if err := checkRedeemBatchUnstaking(st.Ledger, batch.ID); err != nil {
			return err
		}
		intent = st.PrepareUnstake(batch.ID, account.ToVenueBalance())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !intent.Amount.IsZero() {
		if err := s.venue.Unstake(ctx, intent.Amount); err != nil {
			// the lock and intent stay so the next run can tell whether the
			// request landed
			logger.Error().Err(err).Str("amount", intent.Amount.String()).Msg("unstake request failed")
			return nil, venueError("unstake", err)
		}
	}
	return s.completeUnstake(ctx, logger)
}

func (s *Service) completeUnstake(ctx context.Context, logger zerolog.Logger) (*ledger.RedeemResult, error) {
	var result *ledger.RedeemResult
	err := s.mutate(ctx, func(st *step) error {
		completed := st.CompleteUnstake()
		result = &completed
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("burned", result.Burned.String()).
		Str("unstaked", result.Unstaked.String()).
		Uint64("withdrawable_epoch", result.WithdrawableEpoch).
		Msg("redeem batch unstaked")
	return result, nil
}

// withdrawUnstaked empties the venue's unstaked balance so a new unstake does
// not restart the delay on funds that are already due.
func (s *Service) withdrawUnstaked(ctx context.Context, account *venueclient.Account) (*venueclient.Account, error) {
	for attempt := 0; ; attempt++ {
		balance := account.ToVenueBalance()
		if balance.Unstaked.IsZero() {
			return account, nil
		}
		if !balance.CanWithdraw {
			return nil, toServiceError(ledger.ErrUnstakingBlocked)
		}
		if attempt == maxWithdrawAttempts {
			return nil, venueError("withdraw all", errUnstakedBalanceRemains(balance.Unstaked))
		}
		if err := s.venue.WithdrawAll(ctx); err != nil {
			return nil, venueError("withdraw all", err)
		}
		var err error
		if account, err = s.venue.GetAccount(ctx); err != nil {
			return nil, venueError("get account", err)
		}
	}
}

// abortUnstaking releases an Unstaking lock that never sent an unstake request.
func (s *Service) abortUnstaking(ctx context.Context, hasIntent bool) {
	if hasIntent {
		return
	}
	err := s.mutate(ctx, func(st *step) error {
		st.ReleaseUnstakingLock()
		return nil
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to release unstaking lock")
	}
}

func checkRedeemBatchUnstaking(l *ledger.Ledger, id ledger.BatchID) error {
	state := l.State()
	if state.RedeemLock != ledger.RedeemLockUnstaking || state.RedeemBatch == nil || state.RedeemBatch.ID != id {
		return types.NewErrorWithMsg(http.StatusConflict, types.Conflict, "unstaking lock was released while the venue call was in flight")
	}
	return nil
}

// ProcessPendingWithdrawal withdraws the unstaked reserve of the batch pending
// withdrawal once it is due, and returns the reserve that left the venue.
func (s *Service) ProcessPendingWithdrawal(ctx context.Context) (sdkmath.Uint, error) {
	if !s.redeemInFlight.CompareAndSwap(false, true) {
		return sdkmath.ZeroUint(), toServiceError(ErrChainInFlight)
	}
	defer s.redeemInFlight.Store(false)

	return s.processPendingWithdrawal(ctx)
}

func (s *Service) processPendingWithdrawal(ctx context.Context) (withdrawn sdkmath.Uint, err error) {
	startTime := time.Now()
	defer func() {
		metrics.RecordWorkflowDuration(time.Since(startTime), "withdrawal", err != nil && !IsPreconditionError(err))
	}()

	var batchID ledger.BatchID
	err = s.mutate(ctx, func(st *step) error {
		var err error
		batchID, err = st.CheckPendingWithdrawal()
		return err
	})
	if err != nil {
		return sdkmath.ZeroUint(), err
	}

	account, err := s.venue.GetAccount(ctx)
	if err != nil {
		return sdkmath.ZeroUint(), venueError("get account", err)
	}
	if !account.ToVenueBalance().Unstaked.IsZero() && !account.CanWithdraw {
		return sdkmath.ZeroUint(), toServiceError(ledger.ErrUnstakedFundsNotAvailable)
	}
	if _, err := s.withdrawUnstaked(ctx, account); err != nil {
		return sdkmath.ZeroUint(), err
	}

	withdrawn = sdkmath.ZeroUint()
	err = s.mutate(ctx, func(st *step) error {
		id, _, ok := st.PendingWithdrawal()
		if !ok || id != batchID {
			// liquidity cleared the batch while the venue call was in flight
			return nil
		}
		withdrawn = st.CompleteWithdrawal(batchID)
		return nil
	})
	if err != nil {
		return sdkmath.ZeroUint(), err
	}
	log.Ctx(ctx).Info().
		Uint64("redeem_batch_id", uint64(batchID)).
		Str("withdrawn", withdrawn.String()).
		Msg("pending withdrawal completed")
	return withdrawn, nil
}
