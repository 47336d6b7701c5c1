package ledger

import (
	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

const pricePrecision = 18

// ShareValue is the exchange rate between reserve and shares observed at a checkpoint.
type ShareValue struct {
	Checkpoint         Checkpoint
	TotalStakedReserve sdkmath.Uint
	TotalShareSupply   sdkmath.Uint
}

func NewShareValue(cp Checkpoint, totalStakedReserve, totalShareSupply sdkmath.Uint) ShareValue {
	return ShareValue{
		Checkpoint:         cp,
		TotalStakedReserve: totalStakedReserve,
		TotalShareSupply:   totalShareSupply,
	}
}

// EmptyShareValue is the 1:1 rate used before anything has been staked.
func EmptyShareValue(cp Checkpoint) ShareValue {
	return NewShareValue(cp, sdkmath.ZeroUint(), sdkmath.ZeroUint())
}

// oneToOne reports whether conversions fall back to identity. A share is never
// worth less than one reserve unit.
func (v ShareValue) oneToOne() bool {
	return v.TotalStakedReserve.IsZero() ||
		v.TotalShareSupply.IsZero() ||
		v.TotalStakedReserve.LT(v.TotalShareSupply)
}

// ToShares converts reserve to shares, rounding down. The reserve below one
// share stays in the staked total and accrues to every holder, so a round trip
// never returns more than it started with.
func (v ShareValue) ToShares(reserve sdkmath.Uint) sdkmath.Uint {
	if v.oneToOne() {
		return reserve
	}
	return mulDiv(reserve, v.TotalShareSupply, v.TotalStakedReserve)
}

// ToReserve converts shares to reserve, rounding down.
func (v ShareValue) ToReserve(shares sdkmath.Uint) sdkmath.Uint {
	if v.oneToOne() {
		return shares
	}
	return mulDiv(shares, v.TotalStakedReserve, v.TotalShareSupply)
}

// IsCurrent reports whether the value was observed in the epoch of cp.
func (v ShareValue) IsCurrent(cp Checkpoint) bool {
	return v.Checkpoint.EpochHeight == cp.EpochHeight
}

// Price is the reserve value of a single share unit, rounded down to
// pricePrecision decimal places.
func (v ShareValue) Price() decimal.Decimal {
	if v.oneToOne() {
		return decimal.NewFromInt(1)
	}
	staked := decimal.NewFromBigInt(v.TotalStakedReserve.BigInt(), 0)
	supply := decimal.NewFromBigInt(v.TotalShareSupply.BigInt(), 0)
	return staked.DivRound(supply, pricePrecision+1).RoundDown(pricePrecision)
}

// afterStake is the value once amount reserve has been staked for minted shares.
func (v ShareValue) afterStake(cp Checkpoint, amount, minted sdkmath.Uint) ShareValue {
	return NewShareValue(cp, v.TotalStakedReserve.Add(amount), v.TotalShareSupply.Add(minted))
}

// afterUnstake is the value once burned shares have been unstaked for amount reserve.
func (v ShareValue) afterUnstake(cp Checkpoint, amount, burned sdkmath.Uint) ShareValue {
	staked := sdkmath.ZeroUint()
	if v.TotalStakedReserve.GT(amount) {
		staked = v.TotalStakedReserve.Sub(amount)
	}
	supply := sdkmath.ZeroUint()
	if v.TotalShareSupply.GT(burned) {
		supply = v.TotalShareSupply.Sub(burned)
	}
	return NewShareValue(cp, staked, supply)
}
