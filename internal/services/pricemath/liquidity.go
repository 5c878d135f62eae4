package pricemath

import (
	"errors"

	"github.com/holiman/uint256"
)

var ErrEmptyRange = errors.New("tick range is empty")

// LiquidityForAmount0 returns the liquidity the amount of token0 can back
// over the sqrt-price interval [a, b].
func LiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0 *uint256.Int) *uint256.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	intermediate := MulDiv(sqrtRatioAX96, sqrtRatioBX96, Q96)
	return MulDiv(amount0, intermediate, new(uint256.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}

// LiquidityForAmount1 returns the liquidity the amount of token1 can back
// over the sqrt-price interval [a, b].
func LiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1 *uint256.Int) *uint256.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	return MulDiv(amount1, Q96, new(uint256.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}

// LiquidityForAmounts returns the largest liquidity both amounts can back at
// the current price. Below the range only token0 matters, above it only
// token1; inside, the binding side wins.
func LiquidityForAmounts(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 *uint256.Int) *uint256.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	if sqrtRatioX96.Cmp(sqrtRatioAX96) <= 0 {
		return LiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0)
	}
	if sqrtRatioX96.Cmp(sqrtRatioBX96) < 0 {
		liquidity0 := LiquidityForAmount0(sqrtRatioX96, sqrtRatioBX96, amount0)
		liquidity1 := LiquidityForAmount1(sqrtRatioAX96, sqrtRatioX96, amount1)
		if liquidity0.Cmp(liquidity1) < 0 {
			return liquidity0
		}
		return liquidity1
	}
	return LiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1)
}

// AmountsForLiquidity inverts LiquidityForAmounts: the token amounts a
// deposit of the given liquidity consumes at the current price. Rounds up,
// matching what a pool charges on mint.
func AmountsForLiquidity(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int) (amount0, amount1 *uint256.Int) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	switch {
	case sqrtRatioX96.Cmp(sqrtRatioAX96) <= 0:
		amount0 = Amount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity, true)
		amount1 = uint256.NewInt(0)
	case sqrtRatioX96.Cmp(sqrtRatioBX96) < 0:
		amount0 = Amount0Delta(sqrtRatioX96, sqrtRatioBX96, liquidity, true)
		amount1 = Amount1Delta(sqrtRatioAX96, sqrtRatioX96, liquidity, true)
	default:
		amount0 = uint256.NewInt(0)
		amount1 = Amount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity, true)
	}
	return amount0, amount1
}

// RangeRatios resolves a position's tick bounds to sqrt ratios.
func RangeRatios(tickLower, tickUpper int) (lower, upper *uint256.Int, err error) {
	if tickLower >= tickUpper {
		return nil, nil, ErrEmptyRange
	}
	lower, err = SqrtRatioAtTick(tickLower)
	if err != nil {
		return nil, nil, err
	}
	upper, err = SqrtRatioAtTick(tickUpper)
	if err != nil {
		return nil, nil, err
	}
	return lower, upper, nil
}
