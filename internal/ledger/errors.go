package ledger

import (
	"errors"
	"fmt"
)

// Precondition failures. Each is returned before any state is mutated.
var (
	ErrAccountNotRegistered          = errors.New("account is not registered")
	ErrAccountAlreadyRegistered      = errors.New("account is already registered")
	ErrInsufficientStorageEscrow     = errors.New("attached deposit is less than the required storage escrow")
	ErrUnregisterRequiresZeroBalance = errors.New("all funds must be withdrawn from the account in order to unregister")
	ErrZeroDeposit                   = errors.New("deposit is required in order to stake")
	ErrZeroRedeemAmount              = errors.New("redeem amount must not be zero")
	ErrZeroWithdrawAmount            = errors.New("withdraw amount must not be zero")
	ErrInsufficientShares            = errors.New("account share balance is insufficient to fulfill request")
	ErrInsufficientReserve           = errors.New("account reserve balance is insufficient to fulfill request")
	ErrInsufficientBatchBalance      = errors.New("batch balance is insufficient to fulfill request")
	ErrNoFundsInStakeBatch           = errors.New("there are no funds in stake batch")
	ErrBatchRunning                  = errors.New("action is blocked because a batch is running")
	ErrRedeemBlockedByStakeBatch     = errors.New("RedeemStakeBatch is blocked by StakeBatch run")
	ErrNoStakeBatch                  = errors.New("there is no stake batch")
	ErrNoRedeemBatch                 = errors.New("there is no redeem stake batch")
	ErrUnstakingBlocked              = errors.New("unstaking is blocked until all unstaked funds can be withdrawn")
	ErrUnstakedFundsNotAvailable     = errors.New("unstaked funds are not yet available for withdrawal")
	ErrNoPendingWithdrawal           = errors.New("there is no pending withdrawal")
)

// IllegalStateError reports a broken ledger invariant. It is raised with panic,
// never returned: the ledger cannot continue safely once one occurs.
type IllegalStateError struct {
	Msg string
}

func (e *IllegalStateError) Error() string {
	return "illegal state: " + e.Msg
}

func illegalState(format string, args ...any) {
	panic(&IllegalStateError{Msg: fmt.Sprintf(format, args...)})
}
