// Package strategy decides how much of the input to swap before depositing
// into the position. Strategies are interchangeable, versioned objects picked
// at configuration time; the orchestrator's contract does not change with
// the strategy.
package strategy

import (
	"context"
	"errors"

	"github.com/holiman/uint256"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
)

var ErrUnknownStrategy = errors.New("unknown strategy mode")

// PlanInput is everything a strategy may look at: a pool snapshot, the target
// position, the swap direction and the sizing bound. Strategies never mutate
// state.
type PlanInput struct {
	State      domain.PoolState
	Position   domain.Position
	ZeroForOne bool
	AmountIn   *uint256.Int
	ImpactBps  uint16
}

type Strategy interface {
	Plan(ctx context.Context, in PlanInput) (*domain.AllocationPlan, error)
}

// ForMode returns the strategy implementation for a mode.
func ForMode(mode domain.StrategyMode) (Strategy, error) {
	switch mode {
	case domain.StrategyGreedy:
		return NewGreedy(), nil
	case domain.StrategyRangeHeuristic:
		return NewRangeHeuristic(), nil
	case domain.StrategyOptimal:
		return NewOptimal(), nil
	default:
		return nil, ErrUnknownStrategy
	}
}
