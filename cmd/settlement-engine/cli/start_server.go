package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/stakevault/stake-settlement/internal/api"
	dbmodel "github.com/stakevault/stake-settlement/internal/db/model"
	"github.com/stakevault/stake-settlement/internal/observability/metrics"
	"github.com/stakevault/stake-settlement/internal/observability/tracing"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the settlement engine with its pollers and api server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	if err := dbmodel.Setup(ctx, &cfg.Db); err != nil {
		return fmt.Errorf("error while setting up settlement db model: %w", err)
	}

	rt, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	// initialize metrics with the metrics port from config
	metrics.Init(cfg.Metrics.GetMetricsPort())

	server := api.New(&cfg.Server, rt.service)

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		rt.service.StartSchedulers(ctx)
		return nil
	})
	p.Go(server.ListenAndServe)

	log.Info().Msg("settlement engine started")
	err = p.Wait()
	log.Info().Msg("settlement engine stopped")
	return err
}
