package types

// EventTypes names the settlement events published to the event queue.
type EventTypes string

func (e EventTypes) String() string {
	return string(e)
}

const (
	EventStaked                   EventTypes = "settlement.v1.Staked"
	EventUnstaked                 EventTypes = "settlement.v1.Unstaked"
	EventLiquidityAdded           EventTypes = "settlement.v1.LiquidityAdded"
	EventPendingWithdrawalCleared EventTypes = "settlement.v1.PendingWithdrawalCleared"
	EventWithdrawalCompleted      EventTypes = "settlement.v1.WithdrawalCompleted"
	EventDeposited                EventTypes = "settlement.v1.Deposited"
	EventRedeemRequested          EventTypes = "settlement.v1.RedeemRequested"
	EventReserveWithdrawn         EventTypes = "settlement.v1.ReserveWithdrawn"
	EventAccountUnregistered      EventTypes = "settlement.v1.AccountUnregistered"
)
