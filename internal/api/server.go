package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/stakevault/stake-settlement/internal/config"
	"github.com/stakevault/stake-settlement/internal/services"
)

const shutdownTimeout = 10 * time.Second

// Server exposes the settlement service over HTTP.
type Server struct {
	cfg     *config.ServerConfig
	service *services.Service
	router  http.Handler
}

func New(cfg *config.ServerConfig, service *services.Service) *Server {
	s := &Server{
		cfg:     cfg,
		service: service,
	}
	s.router = s.buildRouter()
	return s
}

// Handler exposes the configured HTTP router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(withTraceID)
	r.Use(logRequests)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(api chi.Router) {
		api.Route("/accounts/{id}", func(acc chi.Router) {
			acc.Get("/", s.GetAccount)
			acc.Delete("/", s.UnregisterAccount)
			acc.Post("/register", s.RegisterAccount)
			acc.Post("/claim", s.ClaimReceipts)
			acc.Post("/deposit", s.Deposit)
			acc.Post("/deposit-and-stake", s.DepositAndStake)
			acc.Post("/stake-batch/withdraw", s.WithdrawFromStakeBatch)
			acc.Post("/redeem", s.Redeem)
			acc.Post("/redeem-all", s.RedeemAll)
			acc.Post("/redeem/cancel", s.CancelPendingRedeem)
			acc.Post("/withdraw", s.WithdrawReserve)
		})

		api.Get("/state", s.GetState)
		api.Get("/pending-withdrawal", s.GetPendingWithdrawal)
		api.Get("/receipts/stake/{batchId}", s.GetStakeReceipt)
		api.Get("/receipts/redeem/{batchId}", s.GetRedeemReceipt)

		api.Route("/operator", func(op chi.Router) {
			op.Use(requireOperatorToken(s.cfg.OperatorToken))
			op.Post("/stake", s.RunStakeBatch)
			op.Post("/unstake", s.RunRedeemBatch)
			op.Post("/withdraw", s.ProcessPendingWithdrawal)
			op.Post("/withdraw-all", s.WithdrawAllFromVenue)
			op.Post("/release-stake-lock", s.ReleaseStakeLock)
			op.Post("/release-unstaking-lock", s.ReleaseUnstakingLock)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", srv.Addr).Msg("starting api server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
