package strategy

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/services/pricemath"
)

// RangeHeuristic picks a fixed swap fraction from the price's classification
// against the position range. The fraction is always one of 0, 25, 50 or
// 75 percent:
//   - price on the side whose asset the input already is: 0 (position only
//     needs what we hold);
//   - price on the far side, within half a range-width of the boundary: 25;
//   - price on the far side, deeper out: 75;
//   - price in range: 50.
type RangeHeuristic struct{}

func NewRangeHeuristic() *RangeHeuristic {
	return &RangeHeuristic{}
}

func (h *RangeHeuristic) Plan(ctx context.Context, in PlanInput) (*domain.AllocationPlan, error) {
	lower, upper, err := pricemath.RangeRatios(in.Position.TickLower, in.Position.TickUpper)
	if err != nil {
		return nil, err
	}

	pct, err := h.fraction(in, lower, upper)
	if err != nil {
		return nil, err
	}
	amount := pricemath.MulDiv(in.AmountIn, uint256.NewInt(uint64(pct)), uint256.NewInt(100))
	return &domain.AllocationPlan{AmountToSwap: amount}, nil
}

func (h *RangeHeuristic) fraction(in PlanInput, lower, upper *uint256.Int) (uint8, error) {
	cur := in.State.SqrtPriceX96
	switch {
	case cur.Cmp(lower) <= 0:
		// Only token0 is depositable here.
		if in.ZeroForOne {
			return 0, nil
		}
		return h.outsideFraction(in, in.Position.TickLower)
	case cur.Cmp(upper) >= 0:
		// Only token1 is depositable here.
		if !in.ZeroForOne {
			return 0, nil
		}
		return h.outsideFraction(in, in.Position.TickUpper)
	default:
		return 50, nil
	}
}

// outsideFraction distinguishes a price just past a boundary from one deep
// outside: within half the range width, a small swap pulls the price back
// toward usefulness, so most of the input is kept for the deposit.
func (h *RangeHeuristic) outsideFraction(in PlanInput, boundary int) (uint8, error) {
	curTick, err := pricemath.TickAtSqrtRatio(in.State.SqrtPriceX96)
	if err != nil {
		return 0, err
	}
	dist := boundary - curTick
	if dist < 0 {
		dist = -dist
	}
	half := (in.Position.TickUpper - in.Position.TickLower) / 2
	if dist <= half {
		return 25, nil
	}
	return 75, nil
}
