package db

import (
	"context"
	"time"

	"github.com/stakevault/stake-settlement/internal/ledger"
	"github.com/stakevault/stake-settlement/internal/observability/metrics"
	"github.com/stakevault/stake-settlement/internal/utils"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) LoadLedger(ctx context.Context) (result *ledger.Snapshot, err error) {
	//nolint:errcheck
	d.run(func() error {
		result, err = d.db.LoadLedger(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) SaveLedgerChanges(ctx context.Context, changes *ledger.Changes) error {
	return d.run(func() error {
		return d.db.SaveLedgerChanges(ctx, changes)
	})
}

func (d *DbWithMetrics) GetContractState(ctx context.Context) (result *ledger.ContractState, err error) {
	//nolint:errcheck
	d.run(func() error {
		result, err = d.db.GetContractState(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) GetAccount(ctx context.Context, id ledger.AccountID) (result *ledger.Account, err error) {
	//nolint:errcheck
	d.run(func() error {
		result, err = d.db.GetAccount(ctx, id)
		return err
	})
	return
}

// run executes f and records its latency under the calling method's name.
func (d *DbWithMetrics) run(f func() error) error {
	method := utils.GetFunctionName(1)
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}
