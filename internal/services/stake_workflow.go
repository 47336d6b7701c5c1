package services

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stakevault/stake-settlement/internal/ledger"
	"github.com/stakevault/stake-settlement/internal/observability/metrics"
	"github.com/stakevault/stake-settlement/internal/types"
)

// RunStakeBatch stakes the current stake batch at the venue and records its
// receipt. The stake lock is held across the venue calls and released on every
// path except a partially applied plan, which needs an operator.
func (s *Service) RunStakeBatch(ctx context.Context) (result *ledger.StakeResult, err error) {
	if !s.stakeInFlight.CompareAndSwap(false, true) {
		return nil, toServiceError(ErrChainInFlight)
	}
	defer s.stakeInFlight.Store(false)

	startTime := time.Now()
	defer func() {
		metrics.RecordWorkflowDuration(time.Since(startTime), "stake", err != nil && !IsPreconditionError(err))
	}()

	var batch *ledger.Batch
	err = s.mutate(ctx, func(st *step) error {
		var err error
		batch, err = st.BeginStakeBatch()
		return err
	})
	if err != nil {
		return nil, err
	}
	logger := log.Ctx(ctx).With().Uint64("stake_batch_id", uint64(batch.ID)).Logger()
	logger.Info().Str("amount", batch.Amount().String()).Msg("stake batch locked")

	account, err := s.venue.GetAccount(ctx)
	if err != nil {
		s.releaseStakeLock(ctx)
		return nil, venueError("get account", err)
	}

	var plan ledger.StakePlan
	err = s.mutate(ctx, func(st *step) error {
		if err := checkStakeBatchRunning(st.Ledger, batch.ID); err != nil {
			return err
		}
		plan = st.PlanStake(batch.ID, account.ToVenueBalance())
		return nil
	})
	if err != nil {
		// nothing reached the venue yet
		s.releaseStakeLock(ctx)
		return nil, err
	}
	logger.Debug().
		Str("deposit", plan.Deposit.String()).
		Str("liquidity", plan.Liquidity.String()).
		Msg("stake plan ready")

	// restaking liquidity first keeps a failure here free of side effects
	if !plan.Liquidity.IsZero() {
		if err := s.venue.Stake(ctx, plan.Liquidity); err != nil {
			s.releaseStakeLock(ctx)
			return nil, venueError("stake", err)
		}
	}
	if !plan.Deposit.IsZero() {
		if err := s.venue.DepositAndStake(ctx, plan.Deposit); err != nil {
			if !plan.Liquidity.IsZero() {
				logger.Error().Err(err).
					Str("restaked_liquidity", plan.Liquidity.String()).
					Msg("deposit failed after liquidity was restaked, stake lock kept for operator review")
				return nil, venueError("deposit and stake", err)
			}
			s.releaseStakeLock(ctx)
			return nil, venueError("deposit and stake", err)
		}
	}

	err = s.mutate(ctx, func(st *step) error {
		if err := checkStakeBatchRunning(st.Ledger, batch.ID); err != nil {
			return err
		}
		settled := st.CompleteStakeBatch(plan)
		result = &settled
		st.ReleaseStakeLock()
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("stake batch was staked at the venue but could not be settled")
		return nil, err
	}

	logger.Info().
		Str("staked", result.Staked.String()).
		Str("minted", result.Minted.String()).
		Bool("pending_withdrawal_cleared", result.PendingCleared).
		Msg("stake batch settled")
	return result, nil
}

// checkStakeBatchRunning re-validates the lock after a venue call, since an
// operator may have released it in the meantime.
func checkStakeBatchRunning(l *ledger.Ledger, id ledger.BatchID) error {
	state := l.State()
	if !state.StakeLock || state.StakeBatch == nil || state.StakeBatch.ID != id {
		return types.NewErrorWithMsg(http.StatusConflict, types.Conflict, "stake batch lock was released while the venue call was in flight")
	}
	return nil
}

func (s *Service) releaseStakeLock(ctx context.Context) {
	err := s.mutate(ctx, func(st *step) error {
		st.ReleaseStakeLock()
		return nil
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to release stake lock")
	}
}
