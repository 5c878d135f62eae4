package strategy

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/services/pricemath"
	"github.com/hxuan190/swap-deploy-engine/internal/services/swap"
)

// optimalMaxIter bounds the bisection; 40 halvings collapse any u256-sized
// interval that matters in practice.
const optimalMaxIter = 40

// Optimal binary-searches the swap amount that maximizes the liquidity the
// post-swap balances can back. Every candidate is simulated under the same
// impact bound the real swap will run with, so the chosen amount is
// achievable. The best (amount, liquidity) pair seen is kept even when the
// search direction oscillates near the optimum.
type Optimal struct {
	sim *swap.Simulator
}

func NewOptimal() *Optimal {
	return &Optimal{sim: swap.NewSimulator()}
}

func (o *Optimal) Plan(ctx context.Context, in PlanInput) (*domain.AllocationPlan, error) {
	lower, upper, err := pricemath.RangeRatios(in.Position.TickLower, in.Position.TickUpper)
	if err != nil {
		return nil, err
	}

	cur := in.State.SqrtPriceX96
	// Price fully outside the range: only one asset is depositable, no
	// search needed. Holding the needed asset means swap nothing; holding
	// the other means swap it all.
	if cur.Cmp(lower) <= 0 {
		if in.ZeroForOne {
			return &domain.AllocationPlan{AmountToSwap: uint256.NewInt(0)}, nil
		}
		return &domain.AllocationPlan{AmountToSwap: new(uint256.Int).Set(in.AmountIn)}, nil
	}
	if cur.Cmp(upper) >= 0 {
		if !in.ZeroForOne {
			return &domain.AllocationPlan{AmountToSwap: uint256.NewInt(0)}, nil
		}
		return &domain.AllocationPlan{AmountToSwap: new(uint256.Int).Set(in.AmountIn)}, nil
	}

	best := uint256.NewInt(0)
	bestLiq := uint256.NewInt(0)
	consider := func(s, liq *uint256.Int) {
		if liq.Cmp(bestLiq) > 0 {
			best.Set(s)
			bestLiq.Set(liq)
		}
	}

	// Trivial baselines first; the search result can only improve on them.
	half := new(uint256.Int).Rsh(in.AmountIn, 1)
	for _, s := range []*uint256.Int{uint256.NewInt(0), half, in.AmountIn} {
		liq, _, _ := o.eval(in, s, lower, upper)
		consider(s, liq)
	}

	lo := uint256.NewInt(0)
	hi := new(uint256.Int).Set(in.AmountIn)
	gap := new(uint256.Int)
	for i := 0; i < optimalMaxIter; i++ {
		if gap.Sub(hi, lo).Cmp(pricemath.One) <= 0 {
			break
		}
		mid := new(uint256.Int).Add(lo, hi)
		mid.Rsh(mid, 1)

		liq, liq0, liq1 := o.eval(in, mid, lower, upper)
		consider(mid, liq)

		// liq0 < liq1 means token0 is the binding side. Swapping more of a
		// token0 input makes that worse; swapping more of a token1 input
		// makes it better.
		token0Short := liq0.Cmp(liq1) < 0
		if token0Short == in.ZeroForOne {
			hi = mid
		} else {
			lo = mid
		}
	}

	return &domain.AllocationPlan{AmountToSwap: best}, nil
}

// eval simulates swapping s of the input and converts the post-swap balances
// to implied position liquidity at the post-swap price. The one-sided values
// steer the bisection; a side that cannot be deposited at all reports as
// unbounded.
func (o *Optimal) eval(in PlanInput, s *uint256.Int, lower, upper *uint256.Int) (liq, liq0, liq1 *uint256.Int) {
	priceAfter := in.State.SqrtPriceX96
	swapped := uint256.NewInt(0)
	received := uint256.NewInt(0)

	if !s.IsZero() {
		q, err := o.sim.Quote(in.State, s, in.ZeroForOne, in.ImpactBps)
		if err != nil {
			return uint256.NewInt(0), uint256.NewInt(0), uint256.NewInt(0)
		}
		priceAfter = q.SqrtPriceAfterX96
		swapped = q.AmountToPay
		received = q.AmountReceived
	}

	remaining := new(uint256.Int).Sub(in.AmountIn, swapped)
	var amount0, amount1 *uint256.Int
	if in.ZeroForOne {
		amount0, amount1 = remaining, received
	} else {
		amount0, amount1 = received, remaining
	}

	switch {
	case priceAfter.Cmp(lower) <= 0:
		liq0 = pricemath.LiquidityForAmount0(lower, upper, amount0)
		return liq0, liq0, new(uint256.Int).Set(pricemath.MaxUint256)
	case priceAfter.Cmp(upper) >= 0:
		liq1 = pricemath.LiquidityForAmount1(lower, upper, amount1)
		return liq1, new(uint256.Int).Set(pricemath.MaxUint256), liq1
	default:
		liq0 = pricemath.LiquidityForAmount0(priceAfter, upper, amount0)
		liq1 = pricemath.LiquidityForAmount1(lower, priceAfter, amount1)
		if liq0.Cmp(liq1) < 0 {
			return liq0, liq0, liq1
		}
		return liq1, liq0, liq1
	}
}
