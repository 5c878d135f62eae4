package swap

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
)

// PoolSession is the live-pool surface the executor needs: a state read and
// one bounded swap. Satisfied by the venue session's pool.
type PoolSession interface {
	State() domain.PoolState
	Swap(ctx context.Context, zeroForOne bool, amountIn, sqrtPriceLimitX96 *uint256.Int) (*domain.SwapResult, error)
}

// Executor performs a quoted swap against the live pool under a tighter
// per-swap slippage cap.
type Executor struct {
	sim *Simulator
}

func NewExecutor() *Executor {
	return &Executor{sim: NewSimulator()}
}

// Execute swaps quote.AmountToPay against the live pool. The live state must
// equal the snapshot the quote was computed from; atomic execution makes
// divergence impossible, but it is still checked and surfaced as
// ErrPriceMoved so callers can re-quote. The realized fill never exceeds the
// quoted amount.
func (e *Executor) Execute(ctx context.Context, pool PoolSession, quote *domain.SwapQuote, snapshot domain.PoolState, zeroForOne bool, slippageBps uint16) (*domain.SwapResult, error) {
	live := pool.State()
	if !live.Equal(snapshot) {
		return nil, ErrPriceMoved
	}

	limit, err := PriceLimit(live.SqrtPriceX96, slippageBps, zeroForOne)
	if err != nil {
		return nil, err
	}

	result, err := pool.Swap(ctx, zeroForOne, quote.AmountToPay, limit)
	if err != nil {
		return nil, err
	}
	if result.AmountInUsed.Cmp(quote.AmountToPay) > 0 {
		return nil, ErrExecutionOverrun
	}
	return result, nil
}
