package queue

import (
	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/stakevault/stake-settlement/internal/ledger"
	"github.com/stakevault/stake-settlement/internal/types"
)

// SettlementEvent is the message body published for every settlement fact.
type SettlementEvent struct {
	EventID     string           `json:"event_id"`
	EventType   types.EventTypes `json:"event_type"`
	TraceID     string           `json:"trace_id,omitempty"`
	AccountID   string           `json:"account_id,omitempty"`
	BatchID     uint64           `json:"batch_id,omitempty"`
	Amount      string           `json:"amount"`
	Shares      string           `json:"shares,omitempty"`
	BlockHeight uint64           `json:"block_height"`
	EpochHeight uint64           `json:"epoch_height"`
	Timestamp   int64            `json:"timestamp"`
}

var ledgerEventTypes = map[ledger.EventType]types.EventTypes{
	ledger.EventStaked:                   types.EventStaked,
	ledger.EventUnstaked:                 types.EventUnstaked,
	ledger.EventLiquidityAdded:           types.EventLiquidityAdded,
	ledger.EventPendingWithdrawalCleared: types.EventPendingWithdrawalCleared,
	ledger.EventWithdrawalCompleted:      types.EventWithdrawalCompleted,
}

func NewLedgerEvent(ev ledger.Event) *SettlementEvent {
	msg := newEvent(ledgerEventTypes[ev.Type], ev.Amount, ev.Checkpoint)
	msg.BatchID = uint64(ev.BatchID)
	if !ev.Shares.IsZero() {
		msg.Shares = ev.Shares.String()
	}
	return msg
}

// NewAccountEvent builds an event for a single account's command.
func NewAccountEvent(
	eventType types.EventTypes, account ledger.AccountID, batchID ledger.BatchID,
	amount sdkmath.Uint, cp ledger.Checkpoint,
) *SettlementEvent {
	msg := newEvent(eventType, amount, cp)
	msg.AccountID = string(account)
	msg.BatchID = uint64(batchID)
	return msg
}

func newEvent(eventType types.EventTypes, amount sdkmath.Uint, cp ledger.Checkpoint) *SettlementEvent {
	if amount == (sdkmath.Uint{}) {
		amount = sdkmath.ZeroUint()
	}
	return &SettlementEvent{
		EventID:     uuid.New().String(),
		EventType:   eventType,
		Amount:      amount.String(),
		BlockHeight: cp.BlockHeight,
		EpochHeight: cp.EpochHeight,
		Timestamp:   cp.Timestamp.UnixMilli(),
	}
}
