package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/stakevault/stake-settlement/internal/clients/venueclient"
	"github.com/stakevault/stake-settlement/internal/config"
	"github.com/stakevault/stake-settlement/internal/db"
	"github.com/stakevault/stake-settlement/internal/ledger"
	"github.com/stakevault/stake-settlement/internal/observability/logging"
	"github.com/stakevault/stake-settlement/internal/queue"
	"github.com/stakevault/stake-settlement/internal/services"
)

func loadConfig() (*config.Config, error) {
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("error while loading config file %s: %w", cfgPath, err)
	}
	if err := logging.Setup(cfg.Log); err != nil {
		return nil, fmt.Errorf("error while setting up logging: %w", err)
	}
	return cfg, nil
}

func newClock(cfg config.ChainConfig) (*ledger.EpochClock, error) {
	genesis, err := cfg.Genesis()
	if err != nil {
		return nil, err
	}
	return ledger.NewEpochClock(genesis, cfg.BlockTime, cfg.EpochLength), nil
}

func newVenue(cfg *config.Config, clock ledger.Clock) venueclient.StakingVenue {
	var venue venueclient.StakingVenue
	switch cfg.Venue.Kind {
	case config.VenueKindMemory:
		log.Warn().Msg("using in-memory staking venue, balances are lost on restart")
		venue = venueclient.NewMemoryVenue(clock, cfg.Ledger.UnstakeDelayEpochs)
	default:
		venue = venueclient.NewHTTPClient(&cfg.Venue)
	}
	return venueclient.NewVenueWithMetrics(venue)
}

func newPublisher(cfg *config.QueueConfig) (queue.Publisher, error) {
	if cfg == nil {
		log.Warn().Msg("no queue configured, settlement events are not published")
		return queue.NoopPublisher{}, nil
	}
	qm, err := queue.NewQueueManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("error while creating queue manager: %w", err)
	}
	return qm, nil
}

// engine holds everything a command needs to drive the settlement service.
type engine struct {
	cfg       *config.Config
	database  *db.Database
	publisher queue.Publisher
	service   *services.Service
}

func (r *engine) Close(ctx context.Context) {
	r.publisher.Shutdown()
	if err := r.database.Close(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while closing db client")
	}
}

// newEngine connects storage, venue and queue and loads the ledger.
func newEngine(ctx context.Context, cfg *config.Config) (*engine, error) {
	database, err := db.New(ctx, cfg.Db)
	if err != nil {
		return nil, fmt.Errorf("error while creating db client: %w", err)
	}
	dbClient := db.NewDbWithMetrics(database)

	clock, err := newClock(cfg.Chain)
	if err != nil {
		_ = database.Close(ctx)
		return nil, err
	}

	publisher, err := newPublisher(cfg.Queue)
	if err != nil {
		_ = database.Close(ctx)
		return nil, err
	}

	service := services.NewService(cfg, dbClient, newVenue(cfg, clock), publisher, clock)
	if err := service.Load(ctx); err != nil {
		publisher.Shutdown()
		_ = database.Close(ctx)
		return nil, fmt.Errorf("error while loading ledger: %w", err)
	}

	return &engine{
		cfg:       cfg,
		database:  database,
		publisher: publisher,
		service:   service,
	}, nil
}
