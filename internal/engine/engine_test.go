package engine

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/hxuan190/swap-deploy-engine/internal/adapters/venue"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/services/pricemath"
)

var (
	token0   = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	token1   = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	wrapped  = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	burnAddr = common.HexToAddress("0x000000000000000000000000000000000000dead")
	treasury = common.HexToAddress("0x00000000000000000000000000000000000000f0")
)

type memJournal struct {
	receipts []*domain.OperationReceipt
}

func (j *memJournal) Append(rec *domain.OperationReceipt) error {
	j.receipts = append(j.receipts, rec)
	return nil
}

func defaultOptions() Options {
	return Options{
		DepositPolicy:      domain.PolicyStrict,
		DefaultStrategy:    domain.StrategyOptimal,
		DefaultImpactBps:   100,
		DefaultSlippageBps: 50,
	}
}

func newTestVenue(liquidity *uint256.Int, feePpm uint32, position domain.Position) *venue.SimVenue {
	pair := domain.PairInfo{Token0: token0, Token1: token1, FeeTier: 3000, WrappedNative: wrapped}
	pool := domain.PoolState{
		SqrtPriceX96: new(uint256.Int).Set(pricemath.Q96),
		Liquidity:    liquidity,
		FeePpm:       feePpm,
	}
	return venue.NewSimVenue(pair, pool, []domain.Position{position})
}

func deepLiquidity() *uint256.Int {
	return new(uint256.Int).Lsh(pricemath.One, 100)
}

func baseRequest(strategy domain.StrategyMode, amountIn uint64) *domain.DeployRequest {
	return &domain.DeployRequest{
		TokenIn:           token0,
		TokenOut:          token1,
		FeeTier:           3000,
		AmountIn:          uint256.NewInt(amountIn),
		PositionID:        1,
		Strategy:          strategy,
		BatchImpactBps:    100,
		SwapSlippageBps:   50,
		SpareInRecipient:  burnAddr,
		SpareOutRecipient: treasury,
	}
}

func checkResultConservation(t *testing.T, req *domain.DeployRequest, res *domain.DeployResult, zeroForOne bool) {
	t.Helper()
	depIn, depOut := res.Amount0Used, res.Amount1Used
	if !zeroForOne {
		depIn, depOut = res.Amount1Used, res.Amount0Used
	}
	inTotal := new(uint256.Int).Add(res.AmountSwapIn, depIn)
	inTotal.Add(inTotal, res.SpareIn)
	if !inTotal.Eq(req.AmountIn) {
		t.Errorf("input not conserved: swap %s + deposit %s + spare %s != %s",
			res.AmountSwapIn, depIn, res.SpareIn, req.AmountIn)
	}
	outTotal := new(uint256.Int).Add(depOut, res.SpareOut)
	if !outTotal.Eq(res.AmountSwapOut) {
		t.Errorf("output not conserved: deposit %s + spare %s != %s",
			depOut, res.SpareOut, res.AmountSwapOut)
	}
}

func TestSwapAndDeployOptimalConservation(t *testing.T) {
	pos := domain.Position{ID: 1, TickLower: -600, TickUpper: 600}
	v := newTestVenue(deepLiquidity(), 3000, pos)
	v.Fund(token0, uint256.NewInt(1_000_000))
	journal := &memJournal{}
	e := New(v, journal, defaultOptions())

	req := baseRequest(domain.StrategyOptimal, 1_000_000)
	res, err := e.SwapAndDeploy(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.State != domain.StateSettled {
		t.Errorf("state = %s, want settled", res.State)
	}
	if res.LiquidityAdded.IsZero() {
		t.Error("optimal in-range deploy added no liquidity")
	}
	checkResultConservation(t, req, res, true)

	liq, err := v.PositionLiquidity(1)
	if err != nil {
		t.Fatal(err)
	}
	if !liq.Eq(res.LiquidityAdded) {
		t.Errorf("committed position liquidity %s != result %s", liq, res.LiquidityAdded)
	}
	if got := v.Paid(burnAddr, token0); !got.Eq(res.SpareIn) {
		t.Errorf("spare-in payout %s != result %s", got, res.SpareIn)
	}
	if got := v.Paid(treasury, token1); !got.Eq(res.SpareOut) {
		t.Errorf("spare-out payout %s != result %s", got, res.SpareOut)
	}

	if len(journal.receipts) != 1 {
		t.Fatalf("journal has %d receipts, want 1", len(journal.receipts))
	}
	if journal.receipts[0].State != "settled" {
		t.Errorf("journaled state = %q", journal.receipts[0].State)
	}
}

func TestSwapAndDeployBothDirections(t *testing.T) {
	pos := domain.Position{ID: 1, TickLower: -600, TickUpper: 600}
	for _, reverse := range []bool{false, true} {
		v := newTestVenue(deepLiquidity(), 3000, pos)
		e := New(v, nil, defaultOptions())

		req := baseRequest(domain.StrategyOptimal, 500_000)
		if reverse {
			req.TokenIn, req.TokenOut = token1, token0
			v.Fund(token1, req.AmountIn)
		} else {
			v.Fund(token0, req.AmountIn)
		}

		res, err := e.SwapAndDeploy(context.Background(), req)
		if err != nil {
			t.Fatalf("reverse=%v: %v", reverse, err)
		}
		checkResultConservation(t, req, res, !reverse)
	}
}

func TestValidationRejects(t *testing.T) {
	pos := domain.Position{ID: 1, TickLower: -600, TickUpper: 600}
	v := newTestVenue(deepLiquidity(), 3000, pos)
	e := New(v, nil, defaultOptions())
	ctx := context.Background()

	req := baseRequest(domain.StrategyOptimal, 0)
	req.AmountIn = uint256.NewInt(0)
	if _, err := e.SwapAndDeploy(ctx, req); err != ErrZeroAmount {
		t.Errorf("zero amount: got %v", err)
	}

	req = baseRequest(domain.StrategyOptimal, 1000)
	req.TokenIn = common.HexToAddress("0x0000000000000000000000000000000000000099")
	if _, err := e.SwapAndDeploy(ctx, req); err != ErrUnknownToken {
		t.Errorf("foreign token: got %v", err)
	}

	req = baseRequest(domain.StrategyOptimal, 1000)
	req.TokenOut = token0
	if _, err := e.SwapAndDeploy(ctx, req); err != ErrUnknownToken {
		t.Errorf("same-token pair: got %v", err)
	}

	req = baseRequest(domain.StrategyOptimal, 1000)
	req.NativeValue = uint256.NewInt(500)
	if _, err := e.SwapAndDeploy(ctx, req); err != ErrUnknownToken {
		t.Errorf("native value on a token input: got %v", err)
	}
}

func TestGreedyInfiniteDepthSkipsDeposit(t *testing.T) {
	pos := domain.Position{ID: 1, TickLower: -600, TickUpper: 600}
	v := newTestVenue(deepLiquidity(), 3000, pos)
	v.Fund(token0, uint256.NewInt(1_000_000))
	e := New(v, nil, defaultOptions())

	req := baseRequest(domain.StrategyGreedy, 1_000_000)
	res, err := e.SwapAndDeploy(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !res.SpareIn.IsZero() {
		t.Errorf("spareIn = %s, want 0", res.SpareIn)
	}
	if !res.LiquidityAdded.IsZero() {
		t.Errorf("liquidityAdded = %s, want 0", res.LiquidityAdded)
	}
	if !res.AmountSwapIn.Eq(req.AmountIn) {
		t.Errorf("swapped %s of %s", res.AmountSwapIn, req.AmountIn)
	}
	// Everything swapped, everything paid out.
	if got := v.Paid(treasury, token1); !got.Eq(res.AmountSwapOut) {
		t.Errorf("treasury got %s, want the full proceeds %s", got, res.AmountSwapOut)
	}
}

func TestGreedyPartialDepositsLeftover(t *testing.T) {
	pos := domain.Position{ID: 1, TickLower: -600, TickUpper: 600}
	v := newTestVenue(uint256.NewInt(10_000_000), 3000, pos)
	amountIn := new(uint256.Int).Lsh(pricemath.One, 40)
	v.Fund(token0, amountIn)
	e := New(v, nil, defaultOptions())

	req := baseRequest(domain.StrategyGreedy, 0)
	req.AmountIn = amountIn
	res, err := e.SwapAndDeploy(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.AmountSwapIn.Cmp(amountIn) >= 0 {
		t.Errorf("shallow pool absorbed the full input %s", amountIn)
	}
	checkResultConservation(t, req, res, true)
}

func TestHeuristicMidRangeSwapsHalf(t *testing.T) {
	pos := domain.Position{ID: 1, TickLower: -600, TickUpper: 600}
	v := newTestVenue(deepLiquidity(), 0, pos)
	v.Fund(token0, uint256.NewInt(1000))
	e := New(v, nil, defaultOptions())

	req := baseRequest(domain.StrategyRangeHeuristic, 1000)
	res, err := e.SwapAndDeploy(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.AmountSwapIn.Uint64() != 500 {
		t.Errorf("mid-range heuristic swapped %s, want 500", res.AmountSwapIn)
	}
	checkResultConservation(t, req, res, true)
}

func TestAbortLeavesNoTrace(t *testing.T) {
	pos := domain.Position{ID: 1, TickLower: -600, TickUpper: 600}
	v := newTestVenue(deepLiquidity(), 3000, pos)
	// Deliberately unfunded: the swap leg must fail inside the session.
	e := New(v, nil, defaultOptions())

	before := v.Snapshot()
	req := baseRequest(domain.StrategyOptimal, 1_000_000)
	if _, err := e.SwapAndDeploy(context.Background(), req); err == nil {
		t.Fatal("expected the unfunded operation to abort")
	}

	after := v.Snapshot()
	if !after.Equal(before) {
		t.Error("aborted operation left the pool state changed")
	}
	if got := v.Paid(burnAddr, token0); !got.IsZero() {
		t.Errorf("aborted operation paid out %s", got)
	}
	liq, err := v.PositionLiquidity(1)
	if err != nil {
		t.Fatal(err)
	}
	if !liq.IsZero() {
		t.Errorf("aborted operation added %s liquidity", liq)
	}
}

// reentrantJournal re-invokes the engine from inside the operation's own
// record step, standing in for a collaborator calling back into the engine.
type reentrantJournal struct {
	e     *Engine
	inner error
	done  bool
}

func (j *reentrantJournal) Append(rec *domain.OperationReceipt) error {
	if !j.done {
		j.done = true
		_, j.inner = j.e.SwapAndDeploy(context.Background(), baseRequest(domain.StrategyOptimal, 1000))
	}
	return nil
}

func TestReentrantCallRejected(t *testing.T) {
	pos := domain.Position{ID: 1, TickLower: -600, TickUpper: 600}
	v := newTestVenue(deepLiquidity(), 3000, pos)
	v.Fund(token0, uint256.NewInt(2_000_000))

	journal := &reentrantJournal{}
	e := New(v, journal, defaultOptions())
	journal.e = e

	if _, err := e.SwapAndDeploy(context.Background(), baseRequest(domain.StrategyOptimal, 1_000_000)); err != nil {
		t.Fatal(err)
	}
	if journal.inner != ErrReentrantCall {
		t.Errorf("inner call got %v, want ErrReentrantCall", journal.inner)
	}
}

func TestNativeInputWrapsAndSettles(t *testing.T) {
	// token0 is the wrapped-native token; input arrives as native value.
	pair := domain.PairInfo{Token0: wrapped, Token1: token1, FeeTier: 3000, WrappedNative: wrapped}
	pool := domain.PoolState{
		SqrtPriceX96: new(uint256.Int).Set(pricemath.Q96),
		Liquidity:    deepLiquidity(),
		FeePpm:       3000,
	}
	pos := domain.Position{ID: 1, TickLower: -600, TickUpper: 600}
	v := venue.NewSimVenue(pair, pool, []domain.Position{pos})
	v.FundNative(uint256.NewInt(1_000_000))
	e := New(v, nil, defaultOptions())

	req := baseRequest(domain.StrategyOptimal, 1_000_000)
	req.TokenIn = wrapped
	req.NativeValue = uint256.NewInt(1_000_000)

	res, err := e.SwapAndDeploy(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	checkResultConservation(t, req, res, true)
	// Wrapped spare goes out native.
	if got := v.PaidNative(burnAddr); !got.Eq(res.SpareIn) {
		t.Errorf("native spare payout %s != result %s", got, res.SpareIn)
	}
	if got := v.Paid(burnAddr, wrapped); !got.IsZero() {
		t.Errorf("spare-in paid wrapped %s, want native", got)
	}
}

func TestPreviewPlanIsReadOnly(t *testing.T) {
	pos := domain.Position{ID: 1, TickLower: -600, TickUpper: 600}
	v := newTestVenue(deepLiquidity(), 3000, pos)
	e := New(v, nil, defaultOptions())

	before := v.Snapshot()
	plan, quote, err := e.PreviewPlan(context.Background(), baseRequest(domain.StrategyOptimal, 1_000_000))
	if err != nil {
		t.Fatal(err)
	}
	if plan.AmountToSwap.IsZero() {
		t.Error("preview plan swaps nothing for an in-range deploy")
	}
	if quote == nil || quote.AmountToPay.IsZero() {
		t.Error("preview quote is empty")
	}
	if !v.Snapshot().Equal(before) {
		t.Error("preview mutated the pool")
	}
}
