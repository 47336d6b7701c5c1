package db

import (
	"context"

	"github.com/stakevault/stake-settlement/internal/ledger"
)

type DbInterface interface {
	Ping(ctx context.Context) error
	// LoadLedger reads the full settlement state.
	LoadLedger(ctx context.Context) (*ledger.Snapshot, error)
	// SaveLedgerChanges persists the records modified by a ledger step. A nil
	// changes is a no-op.
	SaveLedgerChanges(ctx context.Context, changes *ledger.Changes) error
	// GetContractState returns a NotFoundError until the first save.
	GetContractState(ctx context.Context) (*ledger.ContractState, error)
	GetAccount(ctx context.Context, id ledger.AccountID) (*ledger.Account, error)
}
