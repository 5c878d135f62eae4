// Package venue abstracts the external trading venue: the AMM pool, the
// position manager, and the asset ledger the engine settles through. A
// Session is an explicit unit of work; nothing a session does is observable
// until Commit.
package venue

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
)

var (
	ErrUnknownPosition     = errors.New("unknown position")
	ErrInsufficientBalance = errors.New("insufficient ledger balance")
	ErrAmountExceedsMax    = errors.New("deposit needs more than the provided maximum")
	ErrSessionClosed       = errors.New("session already committed or rolled back")
)

// Pool is the bounded-swap surface of the AMM pool.
type Pool interface {
	State() domain.PoolState
	Swap(ctx context.Context, zeroForOne bool, amountIn, sqrtPriceLimitX96 *uint256.Int) (*domain.SwapResult, error)
}

// PositionManager mutates existing fixed-range liquidity positions.
type PositionManager interface {
	Get(id uint64) (domain.Position, error)
	IncreaseLiquidity(ctx context.Context, id uint64, liquidity, amount0Max, amount1Max *uint256.Int) (*domain.DepositResult, error)
}

// AssetLedger holds the engine's working balances and performs payouts.
// Balance reads return copies.
type AssetLedger interface {
	Balance(token common.Address) *uint256.Int
	NativeBalance() *uint256.Int
	Transfer(ctx context.Context, token common.Address, to common.Address, amount *uint256.Int) error
	TransferNative(ctx context.Context, to common.Address, amount *uint256.Int) error
	Wrap(ctx context.Context, amount *uint256.Int) error
	Unwrap(ctx context.Context, amount *uint256.Int) error
}

// Session stages venue effects for one operation. Commit publishes them
// atomically; Rollback discards them. A session is single-use.
type Session interface {
	Pool() Pool
	Positions() PositionManager
	Ledger() AssetLedger
	Commit() error
	Rollback()
}

// Venue is the engine's window onto one pool and its surroundings.
type Venue interface {
	Pair() domain.PairInfo
	Snapshot() domain.PoolState
	Begin() (Session, error)
}
