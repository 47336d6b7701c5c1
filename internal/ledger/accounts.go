package ledger

import (
	sdkmath "cosmossdk.io/math"
)

// RegisterAccount registers id holding back the storage escrow from the
// attached amount. The excess is returned for refund.
func (l *Ledger) RegisterAccount(id AccountID, attached sdkmath.Uint) (sdkmath.Uint, error) {
	h := HashAccountID(id)
	if _, ok := l.accounts[h]; ok {
		return sdkmath.ZeroUint(), ErrAccountAlreadyRegistered
	}
	if attached.LT(l.cfg.StorageEscrow) {
		return sdkmath.ZeroUint(), ErrInsufficientStorageEscrow
	}
	acc := NewAccount(id, l.cfg.StorageEscrow, l.clock.Now())
	l.accounts[h] = acc
	l.touchAccount(acc)
	return attached.Sub(l.cfg.StorageEscrow), nil
}

// UnregisterAccount removes an account with no funds and returns its escrow.
func (l *Ledger) UnregisterAccount(id AccountID) (sdkmath.Uint, error) {
	acc, err := l.account(id)
	if err != nil {
		return sdkmath.ZeroUint(), err
	}
	l.claimReceipts(acc)
	if acc.HasFunds() {
		return sdkmath.ZeroUint(), ErrUnregisterRequiresZeroBalance
	}
	delete(l.accounts, acc.Hash())
	l.touchAccount(acc)
	return acc.StorageEscrow.Amount, nil
}

func (l *Ledger) IsRegistered(id AccountID) bool {
	_, ok := l.accounts[HashAccountID(id)]
	return ok
}

func (l *Ledger) account(id AccountID) (*Account, error) {
	acc, ok := l.accounts[HashAccountID(id)]
	if !ok {
		return nil, ErrAccountNotRegistered
	}
	return acc, nil
}

// AccountView returns a copy of the account with every claimable receipt applied.
// The ledger is left untouched.
func (l *Ledger) AccountView(id AccountID) (*Account, error) {
	acc, err := l.account(id)
	if err != nil {
		return nil, err
	}
	view := acc.Clone()
	l.previewClaims(view)
	return view, nil
}

// ClaimReceipts applies settled receipts to the account and reports whether
// anything was claimed.
func (l *Ledger) ClaimReceipts(id AccountID) (bool, error) {
	acc, err := l.account(id)
	if err != nil {
		return false, err
	}
	return l.claimReceipts(acc), nil
}

// WithdrawReserve debits the account's available reserve for payout.
func (l *Ledger) WithdrawReserve(id AccountID, amount sdkmath.Uint) error {
	if amount.IsZero() {
		return ErrZeroWithdrawAmount
	}
	acc, err := l.account(id)
	if err != nil {
		return err
	}
	l.claimReceipts(acc)
	if amount.GT(acc.ReserveBalance()) {
		return ErrInsufficientReserve
	}
	l.debitReserve(acc, amount)
	return nil
}

// WithdrawAllReserve debits the account's whole available reserve and returns it.
func (l *Ledger) WithdrawAllReserve(id AccountID) (sdkmath.Uint, error) {
	acc, err := l.account(id)
	if err != nil {
		return sdkmath.ZeroUint(), err
	}
	l.claimReceipts(acc)
	amount := acc.ReserveBalance()
	if amount.IsZero() {
		return amount, nil
	}
	l.debitReserve(acc, amount)
	return amount, nil
}

func (l *Ledger) debitReserve(acc *Account, amount sdkmath.Uint) {
	cp := l.clock.Now()
	acc.DebitReserve(amount, cp)
	l.state.TotalReserve.Debit(amount, cp)
	l.touchAccount(acc)
	l.dirty.state = true
}
