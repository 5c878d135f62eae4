// Package pricemath implements the fixed-point price and liquidity math for
// a concentrated-liquidity curve: tick <-> sqrt-price (Q64.96) conversion and
// the amount <-> liquidity relations over a tick range. All arithmetic is
// integer-only; rounding directions follow the reference curve so results can
// be compared for exact equality.
package pricemath

import "github.com/holiman/uint256"

var (
	Zero = uint256.NewInt(0)
	One  = uint256.NewInt(1)

	// Q96 = 2^96, the fixed-point scale of sqrt prices.
	Q96 = new(uint256.Int).Lsh(One, 96)
	// Q128 = 2^128
	Q128 = new(uint256.Int).Lsh(One, 128)
	// Q192 = 2^192, the scale of squared sqrt prices.
	Q192 = new(uint256.Int).Lsh(One, 192)

	// BpsDenom is the basis-point denominator used for impact bounds.
	BpsDenom = uint256.NewInt(10000)
	// FeeBase is the fee denominator; pool fees are in millionths.
	FeeBase = uint256.NewInt(1000000)

	MaxUint256 = new(uint256.Int).Not(Zero)
	maxUint160 = new(uint256.Int).Sub(new(uint256.Int).Lsh(One, 160), One)
)

// MulDiv computes a * b / denominator with a full 512-bit intermediate.
// Panics on overflow of the 256-bit result; callers operate on u160 prices
// and u128 liquidity, which cannot overflow here.
func MulDiv(a, b, denominator *uint256.Int) *uint256.Int {
	result, overflow := new(uint256.Int).MulDivOverflow(a, b, denominator)
	if overflow {
		panic("pricemath: muldiv overflow")
	}
	return result
}

// MulDivRoundingUp is MulDiv rounding the quotient toward +inf.
func MulDivRoundingUp(a, b, denominator *uint256.Int) *uint256.Int {
	if a.IsZero() || b.IsZero() {
		return uint256.NewInt(0)
	}
	result := MulDiv(a, b, denominator)
	rem := new(uint256.Int).MulMod(a, b, denominator)
	if !rem.IsZero() {
		result.Add(result, One)
	}
	return result
}

// DivRoundingUp divides a by b rounding toward +inf.
func DivRoundingUp(a, b *uint256.Int) *uint256.Int {
	quot := new(uint256.Int).Div(a, b)
	rem := new(uint256.Int).Mod(a, b)
	if !rem.IsZero() {
		quot.Add(quot, One)
	}
	return quot
}
