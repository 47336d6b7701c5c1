package ledger

import (
	sdkmath "cosmossdk.io/math"
)

// StakeBatchReceipt records a settled stake batch until every contributor has claimed.
type StakeBatchReceipt struct {
	// StakedReserve is the batch reserve not yet claimed.
	StakedReserve sdkmath.Uint
	// UnclaimedShares is what may still be issued against the receipt.
	UnclaimedShares sdkmath.Uint
	ShareValue      ShareValue
}

func NewStakeBatchReceipt(staked sdkmath.Uint, value ShareValue) *StakeBatchReceipt {
	return &StakeBatchReceipt{
		StakedReserve:   staked,
		UnclaimedShares: value.ToShares(staked),
		ShareValue:      value,
	}
}

// Claim consumes a contribution and returns the shares owed for it. The last
// contributor receives whatever is left so the receipt drains exactly.
func (r *StakeBatchReceipt) Claim(contribution sdkmath.Uint) sdkmath.Uint {
	if contribution.GT(r.StakedReserve) {
		illegalState("stake receipt claim %s exceeds remaining %s", contribution, r.StakedReserve)
	}
	shares := r.ShareValue.ToShares(contribution)
	r.StakedReserve = r.StakedReserve.Sub(contribution)
	if r.StakedReserve.IsZero() || shares.GT(r.UnclaimedShares) {
		shares = r.UnclaimedShares
	}
	r.UnclaimedShares = r.UnclaimedShares.Sub(shares)
	return shares
}

func (r *StakeBatchReceipt) AllClaimed() bool {
	return r.StakedReserve.IsZero()
}

func (r *StakeBatchReceipt) clone() *StakeBatchReceipt {
	c := *r
	return &c
}

// RedeemBatchReceipt records a settled redeem batch until every contributor has claimed.
type RedeemBatchReceipt struct {
	// RedeemedShares is the batch shares not yet claimed.
	RedeemedShares sdkmath.Uint
	// UnclaimedReserve is the reserve still owed against the receipt.
	UnclaimedReserve sdkmath.Uint
	ShareValue       ShareValue
}

func NewRedeemBatchReceipt(redeemed, reserve sdkmath.Uint, value ShareValue) *RedeemBatchReceipt {
	return &RedeemBatchReceipt{
		RedeemedShares:   redeemed,
		UnclaimedReserve: reserve,
		ShareValue:       value,
	}
}

// Claim consumes a share contribution and returns the reserve owed for it.
func (r *RedeemBatchReceipt) Claim(contribution sdkmath.Uint) sdkmath.Uint {
	if contribution.GT(r.RedeemedShares) {
		illegalState("redeem receipt claim %s exceeds remaining %s", contribution, r.RedeemedShares)
	}
	reserve := r.ShareValue.ToReserve(contribution)
	r.RedeemedShares = r.RedeemedShares.Sub(contribution)
	if r.RedeemedShares.IsZero() || reserve.GT(r.UnclaimedReserve) {
		reserve = r.UnclaimedReserve
	}
	r.UnclaimedReserve = r.UnclaimedReserve.Sub(reserve)
	return reserve
}

// ClaimReserve claims a share contribution while paying out no more than limit
// reserve. It returns the shares consumed and the reserve paid. Partial claims
// round down against the claimant.
func (r *RedeemBatchReceipt) ClaimReserve(contribution, limit sdkmath.Uint) (sdkmath.Uint, sdkmath.Uint) {
	owed := r.ShareValue.ToReserve(contribution)
	if contribution.Equal(r.RedeemedShares) || owed.GT(r.UnclaimedReserve) {
		owed = r.UnclaimedReserve
	}
	if owed.LTE(limit) {
		return contribution, r.Claim(contribution)
	}

	shares, reserve := limit, limit
	if !r.ShareValue.oneToOne() {
		shares = mulDiv(limit, r.ShareValue.TotalShareSupply, r.ShareValue.TotalStakedReserve)
		reserve = mulDiv(shares, r.ShareValue.TotalStakedReserve, r.ShareValue.TotalShareSupply)
	}
	if shares.GT(contribution) {
		shares = contribution
	}
	if shares.IsZero() {
		return sdkmath.ZeroUint(), sdkmath.ZeroUint()
	}
	r.RedeemedShares = r.RedeemedShares.Sub(shares)
	r.UnclaimedReserve = r.UnclaimedReserve.Sub(reserve)
	return shares, reserve
}

func (r *RedeemBatchReceipt) AllClaimed() bool {
	return r.RedeemedShares.IsZero()
}

// WithdrawableEpoch is the first epoch at which the unstaked reserve can leave the venue.
func (r *RedeemBatchReceipt) WithdrawableEpoch(delayEpochs uint64) uint64 {
	return r.ShareValue.Checkpoint.EpochHeight + delayEpochs
}

func (r *RedeemBatchReceipt) UnstakedFundsAvailable(cp Checkpoint, delayEpochs uint64) bool {
	return cp.EpochHeight >= r.WithdrawableEpoch(delayEpochs)
}

func (r *RedeemBatchReceipt) clone() *RedeemBatchReceipt {
	c := *r
	return &c
}
