package ledger

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareValue_Conversions(t *testing.T) {
	cp := Checkpoint{EpochHeight: 1}

	t.Run("empty value converts one to one", func(t *testing.T) {
		v := EmptyShareValue(cp)
		requireAmount(t, 123, v.ToShares(u(123)))
		requireAmount(t, 123, v.ToReserve(u(123)))
	})

	t.Run("zero supply converts one to one", func(t *testing.T) {
		v := NewShareValue(cp, u(500), sdkmath.ZeroUint())
		requireAmount(t, 42, v.ToShares(u(42)))
	})

	t.Run("reserve below supply is clamped to one to one", func(t *testing.T) {
		v := NewShareValue(cp, u(50), u(100))
		requireAmount(t, 10, v.ToShares(u(10)))
		requireAmount(t, 10, v.ToReserve(u(10)))
	})

	t.Run("exact division round trips", func(t *testing.T) {
		v := NewShareValue(cp, u(200), u(100))
		requireAmount(t, 5, v.ToShares(u(10)))
		requireAmount(t, 10, v.ToReserve(u(5)))
	})

	t.Run("inexact division rounds against the holder", func(t *testing.T) {
		v := NewShareValue(cp, u(400), u(300))
		shares := v.ToShares(u(10))
		requireAmount(t, 7, shares)
		requireAmount(t, 9, v.ToReserve(shares))
	})

	t.Run("round trips never gain", func(t *testing.T) {
		for _, tc := range []struct{ reserve, staked, supply uint64 }{
			{1, 3, 2},
			{10, 400, 300},
			{7, 1000, 999},
			{3, 4, 3},
			{2, 3, 1},
		} {
			v := NewShareValue(cp, u(tc.staked), u(tc.supply))
			back := v.ToReserve(v.ToShares(u(tc.reserve)))
			assert.True(t, back.LTE(u(tc.reserve)), "%d@(%d,%d) came back as %s", tc.reserve, tc.staked, tc.supply, back)
		}
	})

	t.Run("large amounts do not overflow", func(t *testing.T) {
		e30 := sdkmath.NewUintFromString("1000000000000000000000000000000")
		v := NewShareValue(cp, e30.Mul(u(2)), e30)
		requireAmount(t, 5, v.ToShares(u(10)))
		require.Equal(t, e30.String(), v.ToReserve(v.ToShares(e30)).String())
	})
}

func TestShareValue_RoundTrip(t *testing.T) {
	cp := Checkpoint{EpochHeight: 1}
	for i := 0; i < 500; i++ {
		supply := u(uint64(gofakeit.IntRange(1, 1<<40)))
		staked := supply.Add(u(uint64(gofakeit.IntRange(0, 1<<40))))
		reserve := u(uint64(gofakeit.IntRange(0, 1<<50)))
		v := NewShareValue(cp, staked, supply)

		back := v.ToReserve(v.ToShares(reserve))
		require.True(t, back.LTE(reserve), "%s@(%s,%s) gained: %s", reserve, staked, supply, back)
		// the shortfall stays below the value of one share
		lost := reserve.Sub(back)
		require.True(t, lost.Mul(supply).LT(staked.Add(supply)), "%s@(%s,%s) lost %s", reserve, staked, supply, lost)
		if reserve.Mul(supply).Mod(staked).IsZero() {
			require.Equal(t, reserve.String(), back.String(), "%s@(%s,%s)", reserve, staked, supply)
		}
	}
}

func TestShareValue_IsCurrent(t *testing.T) {
	v := EmptyShareValue(Checkpoint{EpochHeight: 7})
	assert.True(t, v.IsCurrent(Checkpoint{EpochHeight: 7, BlockHeight: 99}))
	assert.False(t, v.IsCurrent(Checkpoint{EpochHeight: 8}))
}

func TestMulDiv_ZeroDivisorPanics(t *testing.T) {
	require.Panics(t, func() {
		mulDiv(u(1), u(1), sdkmath.ZeroUint())
	})
}

func TestShareValue_Price(t *testing.T) {
	cp := Checkpoint{EpochHeight: 1}

	assert.Equal(t, "1", EmptyShareValue(cp).Price().String())
	assert.Equal(t, "1", NewShareValue(cp, u(50), u(100)).Price().String())
	assert.Equal(t, "1.1", NewShareValue(cp, u(110), u(100)).Price().String())
	assert.Equal(t, "1.333333333333333333", NewShareValue(cp, u(400), u(300)).Price().String())
}
