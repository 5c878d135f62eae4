package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// StrategyMode selects which allocation strategy sizes the swap leg.
type StrategyMode uint8

const (
	// StrategyGreedy maximizes swapped output; deposits only the
	// unavoidable remainder (buy-and-burn).
	StrategyGreedy StrategyMode = iota
	// StrategyRangeHeuristic picks a fixed swap fraction from the price's
	// classification against the position range.
	StrategyRangeHeuristic
	// StrategyOptimal binary-searches the swap amount that maximizes
	// deposited liquidity.
	StrategyOptimal
)

func (m StrategyMode) String() string {
	switch m {
	case StrategyGreedy:
		return "greedy"
	case StrategyRangeHeuristic:
		return "heuristic"
	case StrategyOptimal:
		return "optimal"
	default:
		return "UNKNOWN"
	}
}

// ParseStrategyMode parses the wire form of a strategy mode.
func ParseStrategyMode(s string) (StrategyMode, error) {
	switch s {
	case "greedy":
		return StrategyGreedy, nil
	case "heuristic":
		return StrategyRangeHeuristic, nil
	case "optimal":
		return StrategyOptimal, nil
	default:
		return 0, fmt.Errorf("unknown strategy mode %q", s)
	}
}

// DepositPolicy decides how a failed or short liquidity deposit is handled.
type DepositPolicy uint8

const (
	// PolicyStrict aborts the whole operation if the realized deposit
	// diverges from the pre-computed quote.
	PolicyStrict DepositPolicy = iota
	// PolicySoft tolerates a short deposit and routes the undeposited
	// remainder to the spare recipient.
	PolicySoft
)

func (p DepositPolicy) String() string {
	if p == PolicySoft {
		return "soft"
	}
	return "strict"
}

// OperationState is the engine's per-operation state machine.
type OperationState uint8

const (
	StateRequested OperationState = iota
	StateQuoted
	StateExecuted
	StateDeposited
	StateSkippedDeposit
	StateSettled
	StateAborted
)

func (s OperationState) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StateQuoted:
		return "quoted"
	case StateExecuted:
		return "executed"
	case StateDeposited:
		return "deposited"
	case StateSkippedDeposit:
		return "skipped-deposit"
	case StateSettled:
		return "settled"
	case StateAborted:
		return "aborted"
	default:
		return "UNKNOWN"
	}
}

// DeployRequest is the single external operation's input.
type DeployRequest struct {
	TokenIn           common.Address
	TokenOut          common.Address
	FeeTier           uint32
	AmountIn          *uint256.Int
	NativeValue       *uint256.Int // caller-provided native amount, nil if token input
	PositionID        uint64
	Strategy          StrategyMode
	BatchImpactBps    uint16 // max price impact for the sizing quote
	SwapSlippageBps   uint16 // max slippage for the live execution
	SpareInRecipient  common.Address
	SpareOutRecipient common.Address
}

// DeployResult is the completed operation's receipt. A returned result
// implies every conservation invariant held.
type DeployResult struct {
	State          OperationState
	AmountSwapIn   *uint256.Int
	AmountSwapOut  *uint256.Int
	LiquidityAdded *uint256.Int
	Amount0Used    *uint256.Int
	Amount1Used    *uint256.Int
	SpareIn        *uint256.Int
	SpareOut       *uint256.Int
}
