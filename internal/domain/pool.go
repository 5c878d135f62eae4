package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PoolState is a read-only snapshot of a concentrated-liquidity pool.
// price = (SqrtPriceX96 / 2^96)^2, quoted as token1 per token0.
// The snapshot must not change between quote and execution; the engine
// verifies this defensively before executing.
type PoolState struct {
	SqrtPriceX96 *uint256.Int `json:"sqrtPriceX96"`
	Liquidity    *uint256.Int `json:"liquidity"`
	FeePpm       uint32       `json:"feePpm"` // proportional fee in millionths
}

func (s PoolState) Clone() PoolState {
	return PoolState{
		SqrtPriceX96: new(uint256.Int).Set(s.SqrtPriceX96),
		Liquidity:    new(uint256.Int).Set(s.Liquidity),
		FeePpm:       s.FeePpm,
	}
}

// Equal reports whether two snapshots describe the same pool state.
func (s PoolState) Equal(o PoolState) bool {
	return s.FeePpm == o.FeePpm &&
		s.SqrtPriceX96.Eq(o.SqrtPriceX96) &&
		s.Liquidity.Eq(o.Liquidity)
}

// Position is an existing fixed-range liquidity position. The engine only
// deposits into it; it never creates or destroys positions.
type Position struct {
	ID        uint64 `json:"id"`
	TickLower int    `json:"tickLower"`
	TickUpper int    `json:"tickUpper"`
}

// PairInfo identifies the traded pair. Token0/Token1 follow the pool's
// canonical ordering; WrappedNative is the ERC-20 form of the chain-native
// asset when one leg is native.
type PairInfo struct {
	Token0        common.Address `json:"token0"`
	Token1        common.Address `json:"token1"`
	FeeTier       uint32         `json:"feeTier"`
	WrappedNative common.Address `json:"wrappedNative"`
}

// ZeroForOne reports the canonical swap direction for the given input token.
func (p PairInfo) ZeroForOne(tokenIn common.Address) bool {
	return tokenIn == p.Token0
}
