package ledger

import (
	"encoding/hex"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"lukechampine.com/blake3"
)

// AccountID is the external identifier of an account holder.
type AccountID string

// AccountHash is the storage key of an account, a BLAKE3 digest of its id.
type AccountHash [32]byte

func HashAccountID(id AccountID) AccountHash {
	return blake3.Sum256([]byte(id))
}

func (h AccountHash) String() string {
	return hex.EncodeToString(h[:])
}

func ParseAccountHash(s string) (AccountHash, error) {
	var h AccountHash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid account hash %q: %w", s, err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("invalid account hash length %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Account holds one registered account's balances and batch contributions.
type Account struct {
	ID            AccountID
	StorageEscrow TimestampedBalance
	Reserve       *TimestampedBalance
	Shares        *TimestampedBalance

	StakeBatch      *Batch
	NextStakeBatch  *Batch
	RedeemBatch     *Batch
	NextRedeemBatch *Batch
}

func NewAccount(id AccountID, escrow sdkmath.Uint, cp Checkpoint) *Account {
	return &Account{
		ID:            id,
		StorageEscrow: NewTimestampedBalance(escrow, cp),
	}
}

func (a *Account) Hash() AccountHash {
	return HashAccountID(a.ID)
}

func (a *Account) ReserveBalance() sdkmath.Uint {
	return amountOf(a.Reserve)
}

func (a *Account) ShareBalance() sdkmath.Uint {
	return amountOf(a.Shares)
}

// HasFunds reports whether the account holds any balance or batch contribution.
func (a *Account) HasFunds() bool {
	return a.Reserve != nil ||
		a.Shares != nil ||
		a.StakeBatch != nil ||
		a.NextStakeBatch != nil ||
		a.RedeemBatch != nil ||
		a.NextRedeemBatch != nil
}

func (a *Account) CreditReserve(amount sdkmath.Uint, cp Checkpoint) {
	if amount.IsZero() {
		return
	}
	if a.Reserve == nil {
		b := NewTimestampedBalance(amount, cp)
		a.Reserve = &b
		return
	}
	a.Reserve.Credit(amount, cp)
}

// DebitReserve removes the balance entirely once it reaches zero.
func (a *Account) DebitReserve(amount sdkmath.Uint, cp Checkpoint) {
	if a.Reserve == nil {
		illegalState("debit of %s from empty reserve balance", amount)
	}
	a.Reserve.Debit(amount, cp)
	if a.Reserve.IsZero() {
		a.Reserve = nil
	}
}

func (a *Account) CreditShares(amount sdkmath.Uint, cp Checkpoint) {
	if amount.IsZero() {
		return
	}
	if a.Shares == nil {
		b := NewTimestampedBalance(amount, cp)
		a.Shares = &b
		return
	}
	a.Shares.Credit(amount, cp)
}

func (a *Account) DebitShares(amount sdkmath.Uint, cp Checkpoint) {
	if a.Shares == nil {
		illegalState("debit of %s from empty share balance", amount)
	}
	a.Shares.Debit(amount, cp)
	if a.Shares.IsZero() {
		a.Shares = nil
	}
}

// Clone returns a deep copy safe to mutate for views.
func (a *Account) Clone() *Account {
	c := *a
	if a.Reserve != nil {
		r := *a.Reserve
		c.Reserve = &r
	}
	if a.Shares != nil {
		s := *a.Shares
		c.Shares = &s
	}
	c.StakeBatch = a.StakeBatch.clone()
	c.NextStakeBatch = a.NextStakeBatch.clone()
	c.RedeemBatch = a.RedeemBatch.clone()
	c.NextRedeemBatch = a.NextRedeemBatch.clone()
	return &c
}
