package pricemath

import "github.com/holiman/uint256"

// Amount0Delta returns the token0 amount covering the sqrt-price interval
// [a, b] at the given liquidity. Round up when charging, down when crediting.
func Amount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int, roundUp bool) *uint256.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	numerator1 := new(uint256.Int).Lsh(liquidity, 96)
	numerator2 := new(uint256.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)

	if roundUp {
		return DivRoundingUp(MulDivRoundingUp(numerator1, numerator2, sqrtRatioBX96), sqrtRatioAX96)
	}
	res := MulDiv(numerator1, numerator2, sqrtRatioBX96)
	return res.Div(res, sqrtRatioAX96)
}

// Amount1Delta returns the token1 amount covering the sqrt-price interval
// [a, b] at the given liquidity.
func Amount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int, roundUp bool) *uint256.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	diff := new(uint256.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)
	if roundUp {
		return MulDivRoundingUp(liquidity, diff, Q96)
	}
	return MulDiv(liquidity, diff, Q96)
}

// NextSqrtPriceFromInput returns the sqrt price after paying amountIn into
// the pool at the current price and liquidity. Rounds so the pool never
// under-collects: up for token0 input, down for token1 input.
func NextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn *uint256.Int, zeroForOne bool) *uint256.Int {
	if zeroForOne {
		return nextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountIn)
	}
	return nextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountIn)
}

func nextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amount *uint256.Int) *uint256.Int {
	if amount.IsZero() {
		return new(uint256.Int).Set(sqrtPX96)
	}
	numerator1 := new(uint256.Int).Lsh(liquidity, 96)

	product := new(uint256.Int).Mul(amount, sqrtPX96)
	if new(uint256.Int).Div(product, amount).Eq(sqrtPX96) {
		denominator := new(uint256.Int).Add(numerator1, product)
		if denominator.Cmp(numerator1) >= 0 {
			return MulDivRoundingUp(numerator1, sqrtPX96, denominator)
		}
	}
	// Overflow fallback: liquidity / (liquidity/sqrtP + amount), rounded up.
	return DivRoundingUp(numerator1,
		new(uint256.Int).Add(new(uint256.Int).Div(numerator1, sqrtPX96), amount))
}

func nextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amount *uint256.Int) *uint256.Int {
	var quotient *uint256.Int
	if amount.Cmp(maxUint160) <= 0 {
		quotient = new(uint256.Int).Div(new(uint256.Int).Lsh(amount, 96), liquidity)
	} else {
		quotient = new(uint256.Int).Div(new(uint256.Int).Mul(amount, Q96), liquidity)
	}
	return new(uint256.Int).Add(sqrtPX96, quotient)
}
