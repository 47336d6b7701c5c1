package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/stakevault/stake-settlement/internal/observability/metrics"
	"github.com/stakevault/stake-settlement/internal/utils/poller"
)

// StartSchedulers runs the batch pollers until ctx is done.
func (s *Service) StartSchedulers(ctx context.Context) {
	pollers := []*poller.Poller{
		poller.NewPoller("stake-batch", s.cfg.Poller.StakeBatchInterval,
			metrics.RecordPollerDuration("stake-batch", s.pollStakeBatch)),
		poller.NewPoller("redeem-batch", s.cfg.Poller.RedeemBatchInterval,
			metrics.RecordPollerDuration("redeem-batch", s.pollRedeemBatch)),
		poller.NewPoller("pending-withdrawal", s.cfg.Poller.PendingWithdrawalInterval,
			metrics.RecordPollerDuration("pending-withdrawal", s.pollPendingWithdrawal)),
		poller.NewPoller("state-log", s.cfg.Poller.StateLogInterval, s.LogState),
	}

	var wg conc.WaitGroup
	for _, p := range pollers {
		wg.Go(func() {
			p.Start(ctx)
		})
	}
	wg.Wait()
	log.Info().Msg("schedulers stopped")
}

func (s *Service) pollStakeBatch(ctx context.Context) error {
	_, err := s.RunStakeBatch(ctx)
	return skipPrecondition(ctx, err)
}

func (s *Service) pollRedeemBatch(ctx context.Context) error {
	_, err := s.RunRedeemBatch(ctx)
	return skipPrecondition(ctx, err)
}

func (s *Service) pollPendingWithdrawal(ctx context.Context) error {
	_, err := s.ProcessPendingWithdrawal(ctx)
	return skipPrecondition(ctx, err)
}

// skipPrecondition turns "nothing to do yet" into a quiet tick.
func skipPrecondition(ctx context.Context, err error) error {
	if err != nil && IsPreconditionError(err) {
		log.Ctx(ctx).Debug().Err(err).Msg("skipping tick")
		return nil
	}
	return err
}
