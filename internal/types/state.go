package types

// WorkflowStage is the step a stake or redeem run has reached.
type WorkflowStage string

const (
	StageLocked               WorkflowStage = "LOCKED"
	StageAwaitingVenueBalance WorkflowStage = "AWAITING_VENUE_BALANCE"
	StageAwaitingDeposit      WorkflowStage = "AWAITING_DEPOSIT"
	StageAwaitingRestake      WorkflowStage = "AWAITING_RESTAKE"
	StageAwaitingWithdrawal   WorkflowStage = "AWAITING_WITHDRAWAL"
	StageAwaitingUnstake      WorkflowStage = "AWAITING_UNSTAKE"
	StageReconciling          WorkflowStage = "RECONCILING"
	StageSettled              WorkflowStage = "SETTLED"
)

func (s WorkflowStage) String() string {
	return string(s)
}
