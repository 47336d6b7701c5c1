package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/stakevault/stake-settlement/internal/clients/venueclient"
	"github.com/stakevault/stake-settlement/internal/config"
	"github.com/stakevault/stake-settlement/internal/db"
	"github.com/stakevault/stake-settlement/internal/ledger"
	"github.com/stakevault/stake-settlement/internal/observability/metrics"
	"github.com/stakevault/stake-settlement/internal/queue"
	"github.com/stakevault/stake-settlement/internal/types"
)

var redeemLockStates = []string{
	ledger.RedeemLockNone.String(),
	ledger.RedeemLockUnstaking.String(),
	ledger.RedeemLockPendingWithdrawal.String(),
}

// Service owns the ledger. Every step runs to completion under mu and is
// stored before mu is released; venue calls happen with mu released.
type Service struct {
	cfg       *config.Config
	db        db.DbInterface
	venue     venueclient.StakingVenue
	publisher queue.Publisher
	clock     ledger.Clock

	mu     sync.Mutex
	ledger *ledger.Ledger

	// set while a chain is running in this process, as opposed to a lock
	// persisted by a process that died mid-chain
	stakeInFlight  atomic.Bool
	redeemInFlight atomic.Bool
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	venue venueclient.StakingVenue,
	publisher queue.Publisher,
	clock ledger.Clock,
) *Service {
	return &Service{
		cfg:       cfg,
		db:        db,
		venue:     venue,
		publisher: publisher,
		clock:     clock,
	}
}

func (s *Service) ledgerConfig() (ledger.Config, error) {
	escrow, err := s.cfg.Ledger.StorageEscrowAmount()
	if err != nil {
		return ledger.Config{}, err
	}
	return ledger.Config{
		StorageEscrow:      escrow,
		UnstakeDelayEpochs: s.cfg.Ledger.UnstakeDelayEpochs,
	}, nil
}

// Load restores the ledger from storage, initializing the store on first run.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}
	if err := s.saveLocked(ctx); err != nil {
		return err
	}

	state := s.ledger.State()
	if state.StakeLock {
		log.Ctx(ctx).Warn().Msg("stake lock is held by a previous run, release it once the venue has been checked")
	}
	if state.RedeemLock == ledger.RedeemLockUnstaking {
		log.Ctx(ctx).Warn().Msg("redeem batch was left unstaking, the next redeem run reconciles it")
	}
	log.Ctx(ctx).Info().
		Int("accounts", s.ledger.AccountCount()).
		Uint64("stake_batch_seq", uint64(state.StakeBatchSeq)).
		Uint64("redeem_batch_seq", uint64(state.RedeemBatchSeq)).
		Msg("ledger loaded")
	return nil
}

func (s *Service) loadLocked(ctx context.Context) error {
	cfg, err := s.ledgerConfig()
	if err != nil {
		return err
	}
	snap, err := s.db.LoadLedger(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	s.ledger = ledger.Restore(cfg, s.clock, *snap)
	s.recordGauges()
	return nil
}

func (s *Service) saveLocked(ctx context.Context) error {
	changes := s.ledger.PendingChanges()
	if changes == nil {
		return nil
	}
	if err := s.db.SaveLedgerChanges(ctx, changes); err != nil {
		return err
	}
	s.ledger.ClearChanges()
	s.recordGauges()
	return nil
}

// step collects account level events raised while mutating the ledger.
type step struct {
	*ledger.Ledger
	events []*queue.SettlementEvent
}

func (st *step) publish(ev *queue.SettlementEvent) {
	st.events = append(st.events, ev)
}

// mutate runs fn against the ledger and stores whatever it changed, including
// receipts claimed before fn returned an error. Events are published once the
// changes are stored.
func (s *Service) mutate(ctx context.Context, fn func(st *step) error) error {
	events, err := s.mutateLocked(ctx, fn)
	for _, ev := range events {
		if pubErr := s.publisher.Publish(ctx, ev); pubErr != nil {
			metrics.RecordQueueSendError()
			log.Ctx(ctx).Error().Err(pubErr).
				Str("event_type", ev.EventType.String()).
				Msg("failed to publish settlement event")
		}
	}
	return err
}

func (s *Service) mutateLocked(ctx context.Context, fn func(st *step) error) (events []*queue.SettlementEvent, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ledger == nil {
		return nil, types.NewInternalServiceError(fmt.Errorf("ledger is not loaded"))
	}

	st := &step{Ledger: s.ledger}
	fnErr := s.runRecovering(ctx, func() error { return fn(st) })
	if isIllegalState(fnErr) {
		return nil, fnErr
	}

	if saveErr := s.saveLocked(ctx); saveErr != nil {
		log.Ctx(ctx).Error().Err(saveErr).Msg("failed to store ledger changes, reloading")
		s.reloadLocked(ctx)
		return nil, types.NewInternalServiceError(fmt.Errorf("failed to store ledger changes: %w", saveErr))
	}

	for _, ev := range s.ledger.DrainEvents() {
		events = append(events, queue.NewLedgerEvent(ev))
	}
	if fnErr != nil {
		return events, toServiceError(fnErr)
	}
	return append(events, st.events...), nil
}

// runRecovering converts an illegal state panic into an error. The in-memory
// ledger may be half-updated at that point, so it is reloaded from storage.
func (s *Service) runRecovering(ctx context.Context, fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		illegal, ok := r.(*ledger.IllegalStateError)
		if !ok {
			panic(r)
		}
		metrics.IncIllegalState()
		log.Ctx(ctx).Error().Err(illegal).Msg("ledger reached an illegal state")
		s.reloadLocked(ctx)
		err = types.NewInternalServiceError(illegal)
	}()
	return fn()
}

func (s *Service) reloadLocked(ctx context.Context) {
	if err := s.loadLocked(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to reload ledger from storage")
	}
}

// view runs a read-only fn against the ledger.
func (s *Service) view(ctx context.Context, fn func(l *ledger.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ledger == nil {
		return types.NewInternalServiceError(fmt.Errorf("ledger is not loaded"))
	}
	if err := s.runRecovering(ctx, func() error { return fn(s.ledger) }); err != nil {
		return toServiceError(err)
	}
	return nil
}

func (s *Service) recordGauges() {
	state := s.ledger.State()
	metrics.RecordStakeLock(state.StakeLock)
	metrics.RecordRedeemLock(state.RedeemLock.String(), redeemLockStates)
	metrics.RecordLiquidityPool(state.LiquidityPool.Amount.BigInt())
	metrics.RecordShareSupply(state.TotalShareSupply.Amount.BigInt())
}
