// Package swap quotes and executes bounded swaps against a single
// concentrated-liquidity pool. A quote is a pure function of a pool snapshot;
// execution runs the same bound against live state and must match.
package swap

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/services/pricemath"
)

var (
	ErrZeroAmount       = errors.New("zero swap amount")
	ErrBadImpactBound   = errors.New("impact bound out of range")
	ErrBadPriceLimit    = errors.New("price limit on wrong side of current price")
	ErrPriceMoved       = errors.New("pool state diverged from quote snapshot")
	ErrExecutionOverrun = errors.New("execution consumed more than authorized")
)

// PriceLimit derives the sqrt-price limit for a bounded swap from a price
// movement cap in basis points. Selling token0 pushes the price down, so the
// limit is sqrtP * sqrt(1 - p); the reverse direction gets sqrt(1 + p).
func PriceLimit(sqrtPriceX96 *uint256.Int, bps uint16, zeroForOne bool) (*uint256.Int, error) {
	if bps == 0 || bps >= 10000 {
		return nil, ErrBadImpactBound
	}

	var ratio uint64
	if zeroForOne {
		ratio = 10000 - uint64(bps)
	} else {
		ratio = 10000 + uint64(bps)
	}
	// sqrt(ratio/10000) in Q96: sqrt((ratio << 192) / 10000).
	factor := new(uint256.Int).Lsh(uint256.NewInt(ratio), 192)
	factor.Div(factor, pricemath.BpsDenom)
	factor.Sqrt(factor)

	limit := pricemath.MulDiv(sqrtPriceX96, factor, pricemath.Q96)
	if zeroForOne && limit.Cmp(pricemath.MinSqrtRatio) <= 0 {
		limit = new(uint256.Int).AddUint64(pricemath.MinSqrtRatio, 1)
	}
	if !zeroForOne && limit.Cmp(pricemath.MaxSqrtRatio) >= 0 {
		limit = new(uint256.Int).SubUint64(pricemath.MaxSqrtRatio, 1)
	}
	return limit, nil
}

// Simulator computes bounded exact-in quotes against a pool snapshot without
// touching any state.
type Simulator struct{}

func NewSimulator() *Simulator {
	return &Simulator{}
}

// Quote walks the curve from the snapshot price toward the limit implied by
// impactBps and returns how much of amountIn the pool absorbs within that
// bound. AmountToPay never exceeds amountIn.
func (s *Simulator) Quote(state domain.PoolState, amountIn *uint256.Int, zeroForOne bool, impactBps uint16) (*domain.SwapQuote, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrZeroAmount
	}
	limit, err := PriceLimit(state.SqrtPriceX96, impactBps, zeroForOne)
	if err != nil {
		return nil, err
	}
	return s.QuoteToLimit(state, amountIn, zeroForOne, limit)
}

// QuoteToLimit is Quote with an explicit absolute sqrt-price limit.
func (s *Simulator) QuoteToLimit(state domain.PoolState, amountIn *uint256.Int, zeroForOne bool, sqrtPriceLimitX96 *uint256.Int) (*domain.SwapQuote, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrZeroAmount
	}
	if zeroForOne {
		if sqrtPriceLimitX96.Cmp(state.SqrtPriceX96) >= 0 ||
			sqrtPriceLimitX96.Cmp(pricemath.MinSqrtRatio) <= 0 {
			return nil, ErrBadPriceLimit
		}
	} else {
		if sqrtPriceLimitX96.Cmp(state.SqrtPriceX96) <= 0 ||
			sqrtPriceLimitX96.Cmp(pricemath.MaxSqrtRatio) >= 0 {
			return nil, ErrBadPriceLimit
		}
	}

	sqrtNext, stepIn, stepOut, feeAmount := computeSwapStep(
		state.SqrtPriceX96, sqrtPriceLimitX96, state.Liquidity, amountIn, state.FeePpm)

	toPay := new(uint256.Int).Add(stepIn, feeAmount)
	// Rounding the fee up can overshoot the request by a unit at the limit
	// boundary; the quote must stay within what was asked for.
	if toPay.Cmp(amountIn) > 0 {
		toPay.Set(amountIn)
	}

	return &domain.SwapQuote{
		AmountToPay:       toPay,
		AmountReceived:    stepOut,
		SqrtPriceAfterX96: sqrtNext,
		FeePaid:           feeAmount,
	}, nil
}

// computeSwapStep advances the price from current toward target, absorbing at
// most amountRemaining (fee-inclusive) at the given liquidity. Exact-in only.
// Rounding always favors the pool: input up, output down.
func computeSwapStep(sqrtCurrentX96, sqrtTargetX96, liquidity, amountRemaining *uint256.Int, feePpm uint32) (sqrtNextX96, amountIn, amountOut, feeAmount *uint256.Int) {
	zeroForOne := sqrtCurrentX96.Cmp(sqrtTargetX96) >= 0
	feeRemainder := uint256.NewInt(1_000_000 - uint64(feePpm))

	amountRemainingLessFee := pricemath.MulDiv(amountRemaining, feeRemainder, pricemath.FeeBase)

	if zeroForOne {
		amountIn = pricemath.Amount0Delta(sqrtTargetX96, sqrtCurrentX96, liquidity, true)
	} else {
		amountIn = pricemath.Amount1Delta(sqrtCurrentX96, sqrtTargetX96, liquidity, true)
	}

	if amountRemainingLessFee.Cmp(amountIn) >= 0 {
		sqrtNextX96 = new(uint256.Int).Set(sqrtTargetX96)
	} else {
		sqrtNextX96 = pricemath.NextSqrtPriceFromInput(sqrtCurrentX96, liquidity, amountRemainingLessFee, zeroForOne)
	}
	hitTarget := sqrtNextX96.Eq(sqrtTargetX96)

	if zeroForOne {
		if !hitTarget {
			amountIn = pricemath.Amount0Delta(sqrtNextX96, sqrtCurrentX96, liquidity, true)
		}
		amountOut = pricemath.Amount1Delta(sqrtNextX96, sqrtCurrentX96, liquidity, false)
	} else {
		if !hitTarget {
			amountIn = pricemath.Amount1Delta(sqrtCurrentX96, sqrtNextX96, liquidity, true)
		}
		amountOut = pricemath.Amount0Delta(sqrtCurrentX96, sqrtNextX96, liquidity, false)
	}

	if !hitTarget {
		// Ran out of input before the limit: everything left is fee.
		feeAmount = new(uint256.Int).Sub(amountRemaining, amountIn)
	} else {
		feeAmount = pricemath.MulDivRoundingUp(amountIn, uint256.NewInt(uint64(feePpm)), feeRemainder)
	}
	return sqrtNextX96, amountIn, amountOut, feeAmount
}
