package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stakevault/stake-settlement/internal/ledger"
	"github.com/stakevault/stake-settlement/internal/types"
)

var (
	ErrVenueCallFailed = errors.New("staking venue call failed")
	ErrChainInFlight   = errors.New("a batch run is already in progress")

	errNoRedeemProgress = errors.New("redeem run would not make progress")
)

var (
	badRequestErrors = []error{
		ledger.ErrInsufficientStorageEscrow,
		ledger.ErrUnregisterRequiresZeroBalance,
		ledger.ErrZeroDeposit,
		ledger.ErrZeroRedeemAmount,
		ledger.ErrZeroWithdrawAmount,
		ledger.ErrInsufficientShares,
		ledger.ErrInsufficientReserve,
		ledger.ErrInsufficientBatchBalance,
	}
	conflictErrors = []error{
		ledger.ErrAccountAlreadyRegistered,
		ledger.ErrNoFundsInStakeBatch,
		ledger.ErrBatchRunning,
		ledger.ErrRedeemBlockedByStakeBatch,
		ledger.ErrNoStakeBatch,
		ledger.ErrNoRedeemBatch,
		ledger.ErrUnstakingBlocked,
		ledger.ErrUnstakedFundsNotAvailable,
		ledger.ErrNoPendingWithdrawal,
		ErrChainInFlight,
		errNoRedeemProgress,
	}
)

// toServiceError maps ledger precondition failures onto API errors.
func toServiceError(err error) error {
	if err == nil {
		return nil
	}
	var typed *types.Error
	if errors.As(err, &typed) {
		return typed
	}
	if errors.Is(err, ledger.ErrAccountNotRegistered) {
		return types.NewError(http.StatusNotFound, types.NotFound, err)
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return types.NewError(http.StatusBadRequest, types.BadRequest, err)
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return types.NewError(http.StatusConflict, types.Conflict, err)
		}
	}
	return types.NewInternalServiceError(err)
}

func venueError(call string, err error) error {
	return types.NewError(
		http.StatusServiceUnavailable,
		types.VenueUnavailable,
		fmt.Errorf("%w: %s: %w", ErrVenueCallFailed, call, err),
	)
}

func errUnstakedBalanceRemains(amount fmt.Stringer) error {
	return fmt.Errorf("%s unstaked reserve is still at the venue after withdrawing", amount)
}

func isIllegalState(err error) bool {
	var illegal *ledger.IllegalStateError
	return errors.As(err, &illegal)
}

// IsPreconditionError reports whether err means a step had nothing to do or was
// not allowed yet. Pollers treat those as a skipped tick.
func IsPreconditionError(err error) bool {
	var typed *types.Error
	return errors.As(err, &typed) && typed.ErrorCode == types.Conflict
}
