package ledger

// RedeemLock is the progress of a running redeem batch.
type RedeemLock string

const (
	RedeemLockNone              RedeemLock = "NONE"
	RedeemLockUnstaking         RedeemLock = "UNSTAKING"
	RedeemLockPendingWithdrawal RedeemLock = "PENDING_WITHDRAWAL"
)

func (l RedeemLock) String() string {
	return string(l)
}

// canTransitionTo allows the forward path None -> Unstaking -> PendingWithdrawal -> None
// plus releasing a failed Unstaking back to None.
func (l RedeemLock) canTransitionTo(next RedeemLock) bool {
	switch l {
	case RedeemLockNone:
		return next == RedeemLockUnstaking
	case RedeemLockUnstaking:
		return next == RedeemLockPendingWithdrawal || next == RedeemLockNone
	case RedeemLockPendingWithdrawal:
		return next == RedeemLockNone
	}
	return false
}

// ParseRedeemLock maps a stored value back to a lock. Empty means none.
func ParseRedeemLock(s string) (RedeemLock, bool) {
	switch RedeemLock(s) {
	case "", RedeemLockNone:
		return RedeemLockNone, true
	case RedeemLockUnstaking:
		return RedeemLockUnstaking, true
	case RedeemLockPendingWithdrawal:
		return RedeemLockPendingWithdrawal, true
	}
	return "", false
}
