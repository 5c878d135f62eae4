package venue

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/services/pricemath"
)

var (
	token0 = common.HexToAddress("0x0000000000000000000000000000000000000A01")
	token1 = common.HexToAddress("0x0000000000000000000000000000000000000B02")
)

func newVenue(t *testing.T) *SimVenue {
	t.Helper()
	pair := domain.PairInfo{
		Token0:        token0,
		Token1:        token1,
		FeeTier:       3000,
		WrappedNative: token1,
	}
	pool := domain.PoolState{
		SqrtPriceX96: new(uint256.Int).Set(pricemath.Q96),
		Liquidity:    uint256.MustFromDecimal("1000000000000000000000"),
		FeePpm:       3000,
	}
	return NewSimVenue(pair, pool, []domain.Position{{ID: 1, TickLower: -60000, TickUpper: 60000}})
}

func TestSessionCommitPublishesState(t *testing.T) {
	v := newVenue(t)
	amount := uint256.NewInt(1_000_000)
	v.Fund(token0, amount)

	session, err := v.Begin()
	if err != nil {
		t.Fatal(err)
	}
	recipient := common.HexToAddress("0x00000000000000000000000000000000000000AA")
	if err := session.Ledger().Transfer(context.Background(), token0, recipient, uint256.NewInt(400)); err != nil {
		t.Fatal(err)
	}

	// Not visible until commit.
	if got := v.Paid(recipient, token0); !got.IsZero() {
		t.Fatalf("uncommitted transfer visible: %s", got)
	}
	if err := session.Commit(); err != nil {
		t.Fatal(err)
	}
	if got := v.Paid(recipient, token0); got.Uint64() != 400 {
		t.Fatalf("paid = %s, want 400", got)
	}
	if got := v.Balance(token0); got.Uint64() != 1_000_000-400 {
		t.Fatalf("balance = %s", got)
	}
}

func TestSessionRollbackLeavesNoTrace(t *testing.T) {
	v := newVenue(t)
	v.Fund(token0, uint256.NewInt(1_000_000))
	before := v.Snapshot()

	session, err := v.Begin()
	if err != nil {
		t.Fatal(err)
	}
	limit := new(uint256.Int).AddUint64(pricemath.MinSqrtRatio, 1)
	if _, err := session.Pool().Swap(context.Background(), true, uint256.NewInt(500_000), limit); err != nil {
		t.Fatal(err)
	}
	session.Rollback()

	if !v.Snapshot().Equal(before) {
		t.Fatal("rollback left the pool state changed")
	}
	if got := v.Balance(token0); got.Uint64() != 1_000_000 {
		t.Fatalf("rollback left balances changed: %s", got)
	}
	if got := v.Balance(token1); !got.IsZero() {
		t.Fatalf("rollback credited output: %s", got)
	}
}

func TestSessionClosedAfterRollback(t *testing.T) {
	v := newVenue(t)
	session, err := v.Begin()
	if err != nil {
		t.Fatal(err)
	}
	session.Rollback()

	if err := session.Commit(); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Commit after Rollback = %v, want ErrSessionClosed", err)
	}
	if err := session.Ledger().Wrap(context.Background(), uint256.NewInt(1)); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Wrap after Rollback = %v, want ErrSessionClosed", err)
	}
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	v := newVenue(t)
	v.FundNative(uint256.NewInt(1000))

	session, err := v.Begin()
	if err != nil {
		t.Fatal(err)
	}
	ledger := session.Ledger()

	if err := ledger.Wrap(context.Background(), uint256.NewInt(700)); err != nil {
		t.Fatal(err)
	}
	if got := ledger.Balance(token1); got.Uint64() != 700 {
		t.Fatalf("wrapped balance = %s, want 700", got)
	}
	if got := ledger.NativeBalance(); got.Uint64() != 300 {
		t.Fatalf("native balance = %s, want 300", got)
	}

	if err := ledger.Unwrap(context.Background(), uint256.NewInt(700)); err != nil {
		t.Fatal(err)
	}
	if got := ledger.NativeBalance(); got.Uint64() != 1000 {
		t.Fatalf("native after unwrap = %s, want 1000", got)
	}

	if err := ledger.Wrap(context.Background(), uint256.NewInt(2000)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("overdrawn wrap = %v, want ErrInsufficientBalance", err)
	}
}

func TestUnknownPosition(t *testing.T) {
	v := newVenue(t)
	session, err := v.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer session.Rollback()

	if _, err := session.Positions().Get(99); !errors.Is(err, ErrUnknownPosition) {
		t.Fatalf("Get(99) = %v, want ErrUnknownPosition", err)
	}
	if _, err := v.PositionLiquidity(99); !errors.Is(err, ErrUnknownPosition) {
		t.Fatalf("PositionLiquidity(99) = %v, want ErrUnknownPosition", err)
	}
}

func TestIncreaseLiquidityMovesPoolAndBalances(t *testing.T) {
	v := newVenue(t)
	v.Fund(token0, uint256.MustFromDecimal("1000000000000000000"))
	v.Fund(token1, uint256.MustFromDecimal("1000000000000000000"))

	session, err := v.Begin()
	if err != nil {
		t.Fatal(err)
	}
	poolBefore := session.Pool().State()

	liq := uint256.NewInt(1_000_000)
	maxAmt := uint256.MustFromDecimal("1000000000000000000")
	dep, err := session.Positions().IncreaseLiquidity(context.Background(), 1, liq, maxAmt, maxAmt)
	if err != nil {
		t.Fatal(err)
	}
	if !dep.LiquidityAdded.Eq(liq) {
		t.Fatalf("liquidity added = %s, want %s", dep.LiquidityAdded, liq)
	}
	if dep.Amount0Used.IsZero() || dep.Amount1Used.IsZero() {
		t.Fatal("in-range deposit must use both tokens")
	}

	// Price is inside the range, so the pool's active liquidity grows.
	poolAfter := session.Pool().State()
	want := new(uint256.Int).Add(poolBefore.Liquidity, liq)
	if !poolAfter.Liquidity.Eq(want) {
		t.Fatalf("pool liquidity = %s, want %s", poolAfter.Liquidity, want)
	}

	if err := session.Commit(); err != nil {
		t.Fatal(err)
	}
	got, err := v.PositionLiquidity(1)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Eq(liq) {
		t.Fatalf("committed position liquidity = %s, want %s", got, liq)
	}
}
