// Package engine orchestrates the single external operation: swap part of
// the input under a price-impact bound, deposit the balanced remainder into a
// fixed-range position, and settle every leftover unit to a configured
// recipient. One invocation is one unit of work; either it commits whole or
// it leaves no trace.
package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/swap-deploy-engine/internal/adapters/venue"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/metrics"
	"github.com/hxuan190/swap-deploy-engine/internal/services/deployer"
	"github.com/hxuan190/swap-deploy-engine/internal/services/native"
	"github.com/hxuan190/swap-deploy-engine/internal/services/settle"
	"github.com/hxuan190/swap-deploy-engine/internal/services/strategy"
	"github.com/hxuan190/swap-deploy-engine/internal/services/swap"
)

var (
	ErrZeroAmount        = errors.New("amount must be positive")
	ErrInsufficientValue = errors.New("provided native value below the input amount")
	ErrUnknownToken      = errors.New("token pair does not match the venue")
	ErrReentrantCall     = errors.New("operation already in progress")
	ErrConservation      = errors.New("conservation invariant violated")
)

// Journal persists operation receipts. Failures are surfaced to the caller
// of Append but never abort an already-committed operation.
type Journal interface {
	Append(rec *domain.OperationReceipt) error
}

// Options carries the engine's configured defaults.
type Options struct {
	DepositPolicy      domain.DepositPolicy
	DefaultStrategy    domain.StrategyMode
	DefaultImpactBps   uint16
	DefaultSlippageBps uint16
}

type Engine struct {
	venue    venue.Venue
	sim      *swap.Simulator
	executor *swap.Executor
	deployer *deployer.Deployer
	native   *native.Adapter
	settler  *settle.Router
	journal  Journal
	opts     Options

	busy  atomic.Bool
	opSeq atomic.Uint64
}

func New(v venue.Venue, journal Journal, opts Options) *Engine {
	wrapped := v.Pair().WrappedNative
	return &Engine{
		venue:    v,
		sim:      swap.NewSimulator(),
		executor: swap.NewExecutor(),
		deployer: deployer.NewDeployer(),
		native:   native.NewAdapter(wrapped),
		settler:  settle.NewRouter(wrapped),
		journal:  journal,
		opts:     opts,
	}
}

func (e *Engine) Pair() domain.PairInfo {
	return e.venue.Pair()
}

func (e *Engine) PoolSnapshot() domain.PoolState {
	return e.venue.Snapshot()
}

// PreviewPlan is the read-only half of the pipeline: the strategy's plan and
// the sizing quote against the current snapshot, touching no state.
func (e *Engine) PreviewPlan(ctx context.Context, req *domain.DeployRequest) (*domain.AllocationPlan, *domain.SwapQuote, error) {
	if err := e.validate(req); err != nil {
		return nil, nil, err
	}
	session, err := e.venue.Begin()
	if err != nil {
		return nil, nil, err
	}
	defer session.Rollback()

	pos, err := session.Positions().Get(req.PositionID)
	if err != nil {
		return nil, nil, err
	}

	snapshot := e.venue.Snapshot()
	zeroForOne := e.venue.Pair().ZeroForOne(req.TokenIn)
	impact := e.impactBps(req)

	strat, err := strategy.ForMode(req.Strategy)
	if err != nil {
		return nil, nil, err
	}
	plan, err := strat.Plan(ctx, strategy.PlanInput{
		State:      snapshot,
		Position:   pos,
		ZeroForOne: zeroForOne,
		AmountIn:   req.AmountIn,
		ImpactBps:  impact,
	})
	if err != nil {
		return nil, nil, err
	}

	var quote *domain.SwapQuote
	if !plan.AmountToSwap.IsZero() {
		quote, err = e.sim.Quote(snapshot, plan.AmountToSwap, zeroForOne, impact)
		if err != nil {
			return nil, nil, err
		}
	}
	return plan, quote, nil
}

// SwapAndDeploy runs the whole pipeline:
// Requested -> Quoted -> Executed -> (Deposited|SkippedDeposit) -> Settled.
// Any violation aborts with the venue session rolled back, so a returned
// result implies every conservation identity held. Invocations are strictly
// serialized; a call arriving while one is in flight is rejected, which also
// covers re-entrant calls made from inside an external collaborator.
func (e *Engine) SwapAndDeploy(ctx context.Context, req *domain.DeployRequest) (*domain.DeployResult, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	defer e.busy.Store(false)

	start := time.Now()
	result, err := e.run(ctx, req)

	status := "ok"
	state := domain.StateAborted
	if err != nil {
		status = "error"
		metrics.Aborts.WithLabelValues(abortReason(err)).Inc()
	} else {
		state = result.State
	}
	metrics.DeployRequests.WithLabelValues(req.Strategy.String(), status).Inc()
	metrics.DeployDuration.WithLabelValues(req.Strategy.String()).Observe(time.Since(start).Seconds())

	e.record(req, result, state, err)
	return result, err
}

func (e *Engine) validate(req *domain.DeployRequest) error {
	if req.AmountIn == nil || req.AmountIn.IsZero() {
		return ErrZeroAmount
	}
	pair := e.venue.Pair()
	in0, in1 := req.TokenIn == pair.Token0, req.TokenIn == pair.Token1
	out0, out1 := req.TokenOut == pair.Token0, req.TokenOut == pair.Token1
	if !(in0 && out1 || in1 && out0) || req.FeeTier != pair.FeeTier {
		return ErrUnknownToken
	}
	if req.NativeValue != nil {
		if req.TokenIn != pair.WrappedNative {
			return ErrUnknownToken
		}
		if req.NativeValue.Cmp(req.AmountIn) < 0 {
			return ErrInsufficientValue
		}
	}
	return nil
}

func (e *Engine) impactBps(req *domain.DeployRequest) uint16 {
	if req.BatchImpactBps != 0 {
		return req.BatchImpactBps
	}
	return e.opts.DefaultImpactBps
}

func (e *Engine) slippageBps(req *domain.DeployRequest) uint16 {
	if req.SwapSlippageBps != 0 {
		return req.SwapSlippageBps
	}
	return e.opts.DefaultSlippageBps
}

func (e *Engine) run(ctx context.Context, req *domain.DeployRequest) (*domain.DeployResult, error) {
	session, err := e.venue.Begin()
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			session.Rollback()
		}
	}()

	pair := e.venue.Pair()
	zeroForOne := pair.ZeroForOne(req.TokenIn)
	ledger := session.Ledger()

	if req.NativeValue != nil {
		if err := e.native.WrapInput(ctx, ledger, req.AmountIn); err != nil {
			return nil, err
		}
	}

	pos, err := session.Positions().Get(req.PositionID)
	if err != nil {
		return nil, err
	}

	// Quoted
	snapshot := session.Pool().State()
	strat, err := strategy.ForMode(req.Strategy)
	if err != nil {
		return nil, err
	}
	planStart := time.Now()
	plan, err := strat.Plan(ctx, strategy.PlanInput{
		State:      snapshot,
		Position:   pos,
		ZeroForOne: zeroForOne,
		AmountIn:   req.AmountIn,
		ImpactBps:  e.impactBps(req),
	})
	if err != nil {
		return nil, err
	}
	metrics.PlanDuration.WithLabelValues(req.Strategy.String()).Observe(time.Since(planStart).Seconds())

	// Executed
	swapIn := uint256.NewInt(0)
	swapOut := uint256.NewInt(0)
	if !plan.AmountToSwap.IsZero() {
		quote, err := e.sim.Quote(snapshot, plan.AmountToSwap, zeroForOne, e.impactBps(req))
		if err != nil {
			return nil, err
		}

		proceedsWrapped := req.TokenOut == pair.WrappedNative
		var wrappedBefore *uint256.Int
		if proceedsWrapped {
			wrappedBefore = e.native.SnapshotWrapped(ledger)
		}

		res, err := e.executor.Execute(ctx, session.Pool(), quote, snapshot, zeroForOne, e.slippageBps(req))
		if err != nil {
			return nil, err
		}
		if proceedsWrapped {
			if err := e.native.ReconcileProceeds(ctx, ledger, wrappedBefore, res.AmountOut); err != nil {
				return nil, err
			}
		}

		swapIn = res.AmountInUsed
		swapOut = res.AmountOut
		metrics.SwapsExecuted.Inc()
		metrics.PriceImpact.Observe(impactOf(snapshot.SqrtPriceX96, session.Pool().State().SqrtPriceX96))
		log.Info().
			Str("event", "swap-executed").
			Str("amount_in", swapIn.Dec()).
			Str("amount_out", swapOut.Dec()).
			Msg("swap leg executed")
	}

	if swapIn.Cmp(req.AmountIn) > 0 {
		return nil, ErrConservation
	}
	lpIn := new(uint256.Int).Sub(req.AmountIn, swapIn)

	// Deposited | SkippedDeposit
	dep := &domain.DepositResult{
		LiquidityAdded: uint256.NewInt(0),
		Amount0Used:    uint256.NewInt(0),
		Amount1Used:    uint256.NewInt(0),
	}
	spareIn := new(uint256.Int).Set(lpIn)
	spareOut := new(uint256.Int).Set(swapOut)

	if plan.SkipDeposit {
		metrics.DepositsSkipped.Inc()
	} else {
		var amount0, amount1 *uint256.Int
		if zeroForOne {
			amount0, amount1 = lpIn, swapOut
		} else {
			amount0, amount1 = swapOut, lpIn
		}

		policy := e.opts.DepositPolicy
		if req.Strategy == domain.StrategyGreedy {
			policy = domain.PolicySoft
		}
		dep, err = e.deployer.Deploy(ctx, session.Positions(), session.Pool().State(),
			req.PositionID, amount0, amount1, policy)
		if err != nil {
			return nil, err
		}
		if dep.Amount0Used.Cmp(amount0) > 0 || dep.Amount1Used.Cmp(amount1) > 0 {
			return nil, ErrConservation
		}

		spare0 := new(uint256.Int).Sub(amount0, dep.Amount0Used)
		spare1 := new(uint256.Int).Sub(amount1, dep.Amount1Used)
		if zeroForOne {
			spareIn, spareOut = spare0, spare1
		} else {
			spareIn, spareOut = spare1, spare0
		}

		if !dep.LiquidityAdded.IsZero() {
			metrics.LiquidityDeposits.Inc()
			log.Info().
				Str("event", "liquidity-added").
				Uint64("position_id", req.PositionID).
				Str("liquidity", dep.LiquidityAdded.Dec()).
				Str("amount0", dep.Amount0Used.Dec()).
				Str("amount1", dep.Amount1Used.Dec()).
				Msg("liquidity deposited")
		}
	}

	if err := checkConservation(req.AmountIn, swapIn, lpIn, dep, spareIn, spareOut, swapOut, zeroForOne); err != nil {
		return nil, err
	}

	// Settled
	inst := &domain.SettlementInstruction{
		SpareIn:           spareIn,
		SpareOut:          spareOut,
		SpareInRecipient:  req.SpareInRecipient,
		SpareOutRecipient: req.SpareOutRecipient,
	}
	if err := e.settler.Settle(ctx, ledger, req.TokenIn, req.TokenOut, inst); err != nil {
		return nil, err
	}
	if !spareIn.IsZero() {
		metrics.SpareSettlements.WithLabelValues("in").Inc()
	}
	if !spareOut.IsZero() {
		metrics.SpareSettlements.WithLabelValues("out").Inc()
	}
	log.Info().
		Str("event", "spare-settled").
		Str("spare_in", spareIn.Dec()).
		Str("spare_out", spareOut.Dec()).
		Msg("spares settled")

	if err := session.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return &domain.DeployResult{
		State:          domain.StateSettled,
		AmountSwapIn:   swapIn,
		AmountSwapOut:  swapOut,
		LiquidityAdded: dep.LiquidityAdded,
		Amount0Used:    dep.Amount0Used,
		Amount1Used:    dep.Amount1Used,
		SpareIn:        spareIn,
		SpareOut:       spareOut,
	}, nil
}

// checkConservation verifies the identities the caller relies on: every
// input unit is swapped, deposited or spare, and every swapped-out unit is
// deposited or spare.
func checkConservation(amountIn, swapIn, lpIn *uint256.Int, dep *domain.DepositResult, spareIn, spareOut, swapOut *uint256.Int, zeroForOne bool) error {
	total := new(uint256.Int).Add(swapIn, lpIn)
	if !total.Eq(amountIn) {
		return ErrConservation
	}

	depIn, depOut := dep.Amount0Used, dep.Amount1Used
	if !zeroForOne {
		depIn, depOut = dep.Amount1Used, dep.Amount0Used
	}
	inSide := new(uint256.Int).Add(depIn, spareIn)
	if !inSide.Eq(lpIn) {
		return ErrConservation
	}
	outSide := new(uint256.Int).Add(depOut, spareOut)
	if !outSide.Eq(swapOut) {
		return ErrConservation
	}
	return nil
}

func (e *Engine) record(req *domain.DeployRequest, result *domain.DeployResult, state domain.OperationState, opErr error) {
	if e.journal == nil {
		return
	}
	rec := &domain.OperationReceipt{
		ID:         e.opSeq.Add(1),
		Timestamp:  time.Now().UTC(),
		State:      state.String(),
		Strategy:   req.Strategy.String(),
		TokenIn:    req.TokenIn,
		TokenOut:   req.TokenOut,
		PositionID: req.PositionID,
		AmountIn:   req.AmountIn,
	}
	if result != nil {
		rec.AmountSwapIn = result.AmountSwapIn
		rec.AmountSwapOut = result.AmountSwapOut
		rec.LiquidityAdded = result.LiquidityAdded
		rec.SpareIn = result.SpareIn
		rec.SpareOut = result.SpareOut
	}
	if opErr != nil {
		rec.Error = opErr.Error()
	}
	if err := e.journal.Append(rec); err != nil {
		metrics.JournalErrors.Inc()
		log.Error().Err(err).Uint64("op_id", rec.ID).Msg("failed to journal operation receipt")
		return
	}
	metrics.JournalWrites.Inc()
}

func abortReason(err error) string {
	switch {
	case errors.Is(err, ErrZeroAmount), errors.Is(err, ErrInsufficientValue), errors.Is(err, ErrUnknownToken):
		return "validation"
	case errors.Is(err, ErrReentrantCall):
		return "reentrancy"
	case errors.Is(err, swap.ErrPriceMoved):
		return "price-moved"
	case errors.Is(err, deployer.ErrDepositMismatch):
		return "deposit-mismatch"
	case errors.Is(err, venue.ErrInsufficientBalance):
		return "ledger-shortfall"
	case errors.Is(err, ErrConservation):
		return "conservation"
	default:
		return "other"
	}
}

// impactOf reports the realized sqrt-price movement in bps, for telemetry
// only.
func impactOf(before, after *uint256.Int) float64 {
	if before.IsZero() {
		return 0
	}
	diff := new(uint256.Int)
	if after.Cmp(before) >= 0 {
		diff.Sub(after, before)
	} else {
		diff.Sub(before, after)
	}
	diff.Mul(diff, uint256.NewInt(10000))
	diff.Div(diff, before)
	return float64(diff.Uint64())
}
