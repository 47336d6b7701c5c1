package ledger

import (
	sdkmath "cosmossdk.io/math"
)

type EventType string

const (
	EventStaked                   EventType = "STAKED"
	EventUnstaked                 EventType = "UNSTAKED"
	EventLiquidityAdded           EventType = "LIQUIDITY_ADDED"
	EventPendingWithdrawalCleared EventType = "PENDING_WITHDRAWAL_CLEARED"
	EventWithdrawalCompleted      EventType = "WITHDRAWAL_COMPLETED"
)

// Event is a settlement fact raised by a ledger transition.
type Event struct {
	Type    EventType
	BatchID BatchID
	// Amount is in reserve units.
	Amount sdkmath.Uint
	// Shares is set for events that mint or burn shares.
	Shares     sdkmath.Uint
	Checkpoint Checkpoint
}

func (l *Ledger) emit(e Event) {
	if e.Amount == (sdkmath.Uint{}) {
		e.Amount = sdkmath.ZeroUint()
	}
	if e.Shares == (sdkmath.Uint{}) {
		e.Shares = sdkmath.ZeroUint()
	}
	l.events = append(l.events, e)
}

// DrainEvents returns and forgets the events raised since the last call.
func (l *Ledger) DrainEvents() []Event {
	events := l.events
	l.events = nil
	return events
}
