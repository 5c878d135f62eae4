package swap

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/services/pricemath"
)

func poolAtParity(liquidity uint64, feePpm uint32) domain.PoolState {
	return domain.PoolState{
		SqrtPriceX96: new(uint256.Int).Set(pricemath.Q96),
		Liquidity:    uint256.NewInt(liquidity),
		FeePpm:       feePpm,
	}
}

func deepPoolAtParity(feePpm uint32) domain.PoolState {
	return domain.PoolState{
		SqrtPriceX96: new(uint256.Int).Set(pricemath.Q96),
		Liquidity:    new(uint256.Int).Lsh(pricemath.One, 100),
		FeePpm:       feePpm,
	}
}

func TestPriceLimitDirection(t *testing.T) {
	sqrtP := new(uint256.Int).Set(pricemath.Q96)

	down, err := PriceLimit(sqrtP, 100, true)
	if err != nil {
		t.Fatal(err)
	}
	if down.Cmp(sqrtP) >= 0 {
		t.Errorf("zeroForOne limit %s not below current %s", down, sqrtP)
	}

	up, err := PriceLimit(sqrtP, 100, false)
	if err != nil {
		t.Fatal(err)
	}
	if up.Cmp(sqrtP) <= 0 {
		t.Errorf("oneForZero limit %s not above current %s", up, sqrtP)
	}
}

func TestPriceLimitMagnitude(t *testing.T) {
	sqrtP := new(uint256.Int).Set(pricemath.Q96)
	limit, err := PriceLimit(sqrtP, 100, true)
	if err != nil {
		t.Fatal(err)
	}
	// (limit/sqrtP)^2 in bps should be 9900, allowing one unit of rounding.
	sq := new(uint256.Int).Mul(limit, limit)
	bps := new(uint256.Int).Div(
		new(uint256.Int).Mul(new(uint256.Int).Div(sq, pricemath.Q96), pricemath.BpsDenom),
		new(uint256.Int).Lsh(pricemath.One, 96))
	got := bps.Uint64()
	if got < 9899 || got > 9900 {
		t.Errorf("1%% limit squares to %d bps, want ~9900", got)
	}
}

func TestPriceLimitBadBound(t *testing.T) {
	sqrtP := new(uint256.Int).Set(pricemath.Q96)
	if _, err := PriceLimit(sqrtP, 0, true); err != ErrBadImpactBound {
		t.Errorf("bps=0: got %v", err)
	}
	if _, err := PriceLimit(sqrtP, 10000, true); err != ErrBadImpactBound {
		t.Errorf("bps=10000: got %v", err)
	}
}

func TestQuoteZeroAmount(t *testing.T) {
	sim := NewSimulator()
	if _, err := sim.Quote(deepPoolAtParity(3000), uint256.NewInt(0), true, 100); err != ErrZeroAmount {
		t.Errorf("got %v, want ErrZeroAmount", err)
	}
}

func TestQuoteDeepPoolFullyAbsorbed(t *testing.T) {
	sim := NewSimulator()
	state := deepPoolAtParity(3000)
	amountIn := uint256.NewInt(1_000_000)

	q, err := sim.Quote(state, amountIn, true, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !q.FullyAbsorbed(amountIn) {
		t.Errorf("deep pool absorbed %s of %s", q.AmountToPay, amountIn)
	}
	if q.AmountReceived.IsZero() {
		t.Error("no output for absorbed input")
	}
	// Essentially no price movement at this depth.
	if q.SqrtPriceAfterX96.Cmp(state.SqrtPriceX96) >= 0 {
		t.Error("price did not move down on a token0 sale")
	}
}

func TestQuoteShallowPoolHitsLimit(t *testing.T) {
	sim := NewSimulator()
	state := poolAtParity(1_000_000, 3000)
	amountIn := new(uint256.Int).Lsh(pricemath.One, 60)

	q, err := sim.Quote(state, amountIn, true, 100)
	if err != nil {
		t.Fatal(err)
	}
	if q.AmountToPay.Cmp(amountIn) >= 0 {
		t.Errorf("shallow pool absorbed the full %s", amountIn)
	}
	limit, _ := PriceLimit(state.SqrtPriceX96, 100, true)
	if !q.SqrtPriceAfterX96.Eq(limit) {
		t.Errorf("price stopped at %s, want the limit %s", q.SqrtPriceAfterX96, limit)
	}
}

func TestQuoteNeverExceedsRequested(t *testing.T) {
	sim := NewSimulator()
	states := []domain.PoolState{
		poolAtParity(1_000_000, 0),
		poolAtParity(1_000_000, 3000),
		deepPoolAtParity(500),
	}
	amounts := []uint64{1, 999, 1_000_000, 1 << 40}
	for _, state := range states {
		for _, a := range amounts {
			amountIn := uint256.NewInt(a)
			for _, zeroForOne := range []bool{true, false} {
				q, err := sim.Quote(state, amountIn, zeroForOne, 250)
				if err != nil {
					t.Fatalf("amount %d: %v", a, err)
				}
				if q.AmountToPay.Cmp(amountIn) > 0 {
					t.Errorf("quote pays %s for a request of %d", q.AmountToPay, a)
				}
			}
		}
	}
}

func TestQuoteFeeReducesOutput(t *testing.T) {
	sim := NewSimulator()
	amountIn := uint256.NewInt(1_000_000)

	free, err := sim.Quote(deepPoolAtParity(0), amountIn, true, 100)
	if err != nil {
		t.Fatal(err)
	}
	taxed, err := sim.Quote(deepPoolAtParity(3000), amountIn, true, 100)
	if err != nil {
		t.Fatal(err)
	}
	if taxed.AmountReceived.Cmp(free.AmountReceived) >= 0 {
		t.Errorf("fee did not reduce output: %s >= %s", taxed.AmountReceived, free.AmountReceived)
	}
	if taxed.FeePaid.IsZero() {
		t.Error("expected nonzero fee")
	}
}

// fakePool applies quotes from the simulator to a mutable state, standing in
// for the venue session's pool.
type fakePool struct {
	state domain.PoolState
	sim   *Simulator
}

func (p *fakePool) State() domain.PoolState {
	return p.state.Clone()
}

func (p *fakePool) Swap(ctx context.Context, zeroForOne bool, amountIn, sqrtPriceLimitX96 *uint256.Int) (*domain.SwapResult, error) {
	q, err := p.sim.QuoteToLimit(p.state, amountIn, zeroForOne, sqrtPriceLimitX96)
	if err != nil {
		return nil, err
	}
	p.state.SqrtPriceX96 = q.SqrtPriceAfterX96
	return &domain.SwapResult{AmountInUsed: q.AmountToPay, AmountOut: q.AmountReceived}, nil
}

func TestExecutorPriceMoved(t *testing.T) {
	sim := NewSimulator()
	snapshot := deepPoolAtParity(3000)
	amountIn := uint256.NewInt(1_000_000)

	q, err := sim.Quote(snapshot, amountIn, true, 100)
	if err != nil {
		t.Fatal(err)
	}

	moved := snapshot.Clone()
	moved.SqrtPriceX96.AddUint64(moved.SqrtPriceX96, 1)
	pool := &fakePool{state: moved, sim: sim}

	if _, err := NewExecutor().Execute(context.Background(), pool, q, snapshot, true, 50); err != ErrPriceMoved {
		t.Errorf("got %v, want ErrPriceMoved", err)
	}
}

func TestExecutorFillWithinQuote(t *testing.T) {
	sim := NewSimulator()
	snapshot := deepPoolAtParity(3000)
	amountIn := uint256.NewInt(1_000_000)

	q, err := sim.Quote(snapshot, amountIn, true, 100)
	if err != nil {
		t.Fatal(err)
	}
	pool := &fakePool{state: snapshot.Clone(), sim: sim}

	res, err := NewExecutor().Execute(context.Background(), pool, q, snapshot, true, 50)
	if err != nil {
		t.Fatal(err)
	}
	if res.AmountInUsed.Cmp(q.AmountToPay) > 0 {
		t.Errorf("used %s, authorized %s", res.AmountInUsed, q.AmountToPay)
	}
	if res.AmountOut.IsZero() {
		t.Error("no output from executed swap")
	}
}
