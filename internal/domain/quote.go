package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SwapQuote is the result of simulating a bounded swap against a pool
// snapshot. AmountToPay <= the requested input, always: the simulator
// absorbs at most what the price limit allows.
type SwapQuote struct {
	AmountToPay       *uint256.Int
	AmountReceived    *uint256.Int
	SqrtPriceAfterX96 *uint256.Int
	FeePaid           *uint256.Int
}

// FullyAbsorbed reports whether the quote consumed the entire requested
// amount (the limit was not the binding constraint).
func (q *SwapQuote) FullyAbsorbed(requested *uint256.Int) bool {
	return q.AmountToPay.Eq(requested)
}

// SwapResult is what a live execution actually did. AmountInUsed is never
// more than the amount the authorizing quote allowed.
type SwapResult struct {
	AmountInUsed *uint256.Int
	AmountOut    *uint256.Int
}

// AllocationPlan is a strategy's decision: how much of the input to swap.
// The remainder of the input is paired with the swap proceeds and deposited,
// unless SkipDeposit is set (greedy full-absorption path).
type AllocationPlan struct {
	AmountToSwap *uint256.Int
	SkipDeposit  bool
}

// DepositResult reports a liquidity deposit against the fixed-range position.
type DepositResult struct {
	LiquidityAdded *uint256.Int
	Amount0Used    *uint256.Int
	Amount1Used    *uint256.Int
}

// SettlementInstruction routes every unit not consumed by swap or deposit.
type SettlementInstruction struct {
	SpareIn           *uint256.Int
	SpareOut          *uint256.Int
	SpareInRecipient  common.Address
	SpareOutRecipient common.Address
}
