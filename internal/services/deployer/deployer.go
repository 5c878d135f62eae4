// Package deployer turns a pair of post-swap balances into position
// liquidity, under an explicit failure policy.
package deployer

import (
	"context"
	"errors"

	"github.com/holiman/uint256"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/services/pricemath"
)

var ErrDepositMismatch = errors.New("realized deposit diverged from the quoted deposit")

// PositionSession is the position-manager surface the deployer needs.
// Satisfied by the venue session's position manager.
type PositionSession interface {
	Get(id uint64) (domain.Position, error)
	IncreaseLiquidity(ctx context.Context, id uint64, liquidity, amount0Max, amount1Max *uint256.Int) (*domain.DepositResult, error)
}

type Deployer struct{}

func NewDeployer() *Deployer {
	return &Deployer{}
}

// Deploy deposits as much of (amount0, amount1) as the current price ratio
// allows into the position. The expected liquidity and consumed amounts are
// pre-computed from the same math the pool runs; under PolicyStrict any
// divergence from that expectation aborts, under PolicySoft a failed or short
// deposit simply leaves more spare for settlement. A zero-liquidity outcome
// (price outside the range with nothing depositable) is not an error.
func (d *Deployer) Deploy(ctx context.Context, positions PositionSession, state domain.PoolState, positionID uint64, amount0, amount1 *uint256.Int, policy domain.DepositPolicy) (*domain.DepositResult, error) {
	pos, err := positions.Get(positionID)
	if err != nil {
		return nil, err
	}
	lower, upper, err := pricemath.RangeRatios(pos.TickLower, pos.TickUpper)
	if err != nil {
		return nil, err
	}

	liquidity := pricemath.LiquidityForAmounts(state.SqrtPriceX96, lower, upper, amount0, amount1)
	used0, used1 := pricemath.AmountsForLiquidity(state.SqrtPriceX96, lower, upper, liquidity)
	// Charging rounds up while sizing rounds down, so the expectation can
	// overshoot the balances by a unit; shave liquidity until it fits.
	for !liquidity.IsZero() && (used0.Cmp(amount0) > 0 || used1.Cmp(amount1) > 0) {
		liquidity.SubUint64(liquidity, 1)
		used0, used1 = pricemath.AmountsForLiquidity(state.SqrtPriceX96, lower, upper, liquidity)
	}
	if liquidity.IsZero() {
		return emptyDeposit(), nil
	}

	result, err := positions.IncreaseLiquidity(ctx, positionID, liquidity, amount0, amount1)
	if err != nil {
		if policy == domain.PolicySoft {
			return emptyDeposit(), nil
		}
		return nil, err
	}

	if policy == domain.PolicyStrict {
		if !result.LiquidityAdded.Eq(liquidity) ||
			!result.Amount0Used.Eq(used0) ||
			!result.Amount1Used.Eq(used1) {
			return nil, ErrDepositMismatch
		}
	}
	return result, nil
}

func emptyDeposit() *domain.DepositResult {
	return &domain.DepositResult{
		LiquidityAdded: uint256.NewInt(0),
		Amount0Used:    uint256.NewInt(0),
		Amount1Used:    uint256.NewInt(0),
	}
}
