package ledger

import (
	sdkmath "cosmossdk.io/math"
	"github.com/holiman/uint256"
)

// mulDiv returns floor(x*y/d) using a 512-bit intermediate product.
// d must not be zero.
func mulDiv(x, y, d sdkmath.Uint) sdkmath.Uint {
	if d.IsZero() {
		illegalState("division by zero")
	}

	ux := toUint256(x)
	uy := toUint256(y)
	ud := toUint256(d)

	z, overflow := new(uint256.Int).MulDivOverflow(ux, uy, ud)
	if overflow {
		illegalState("mul-div overflow: %s * %s / %s", x, y, d)
	}
	return sdkmath.NewUintFromBigInt(z.ToBig())
}

func toUint256(u sdkmath.Uint) *uint256.Int {
	z, overflow := uint256.FromBig(u.BigInt())
	if overflow {
		illegalState("amount %s exceeds 256 bits", u)
	}
	return z
}

// ParseAmount parses a decimal amount string. Empty input is zero.
func ParseAmount(s string) (sdkmath.Uint, error) {
	if s == "" {
		return sdkmath.ZeroUint(), nil
	}
	return sdkmath.ParseUint(s)
}
