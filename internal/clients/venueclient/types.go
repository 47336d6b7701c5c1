package venueclient

import (
	sdkmath "cosmossdk.io/math"

	"github.com/stakevault/stake-settlement/internal/ledger"
)

// Account is the engine's position at the venue.
type Account struct {
	Staked      sdkmath.Uint `json:"staked_balance"`
	Unstaked    sdkmath.Uint `json:"unstaked_balance"`
	CanWithdraw bool         `json:"can_withdraw"`
}

func (a *Account) ToVenueBalance() ledger.VenueBalance {
	v := ledger.VenueBalance{
		Staked:      a.Staked,
		Unstaked:    a.Unstaked,
		CanWithdraw: a.CanWithdraw,
	}
	if v.Staked == (sdkmath.Uint{}) {
		v.Staked = sdkmath.ZeroUint()
	}
	if v.Unstaked == (sdkmath.Uint{}) {
		v.Unstaked = sdkmath.ZeroUint()
	}
	return v
}

type amountRequest struct {
	Amount sdkmath.Uint `json:"amount"`
}

type emptyRequest struct{}

type emptyResponse struct{}
