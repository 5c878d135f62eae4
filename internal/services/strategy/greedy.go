package strategy

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/services/swap"
)

// Greedy maximizes swapped output. If the impact bound lets the pool absorb
// the whole input, everything is swapped and the deposit step is skipped;
// otherwise the absorbable part is swapped and the leftover goes to the
// position.
type Greedy struct {
	sim *swap.Simulator
}

func NewGreedy() *Greedy {
	return &Greedy{sim: swap.NewSimulator()}
}

func (g *Greedy) Plan(ctx context.Context, in PlanInput) (*domain.AllocationPlan, error) {
	q, err := g.sim.Quote(in.State, in.AmountIn, in.ZeroForOne, in.ImpactBps)
	if err != nil {
		return nil, err
	}
	if q.FullyAbsorbed(in.AmountIn) {
		return &domain.AllocationPlan{
			AmountToSwap: new(uint256.Int).Set(in.AmountIn),
			SkipDeposit:  true,
		}, nil
	}
	return &domain.AllocationPlan{AmountToSwap: new(uint256.Int).Set(q.AmountToPay)}, nil
}
