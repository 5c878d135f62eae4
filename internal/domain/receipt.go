package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// OperationReceipt is the journaled record of one completed (or aborted)
// operation, kept for off-chain auditing.
type OperationReceipt struct {
	ID             uint64         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	State          string         `json:"state"`
	Strategy       string         `json:"strategy"`
	TokenIn        common.Address `json:"tokenIn"`
	TokenOut       common.Address `json:"tokenOut"`
	PositionID     uint64         `json:"positionId"`
	AmountIn       *uint256.Int   `json:"amountIn"`
	AmountSwapIn   *uint256.Int   `json:"amountSwapIn"`
	AmountSwapOut  *uint256.Int   `json:"amountSwapOut"`
	LiquidityAdded *uint256.Int   `json:"liquidityAdded"`
	SpareIn        *uint256.Int   `json:"spareIn"`
	SpareOut       *uint256.Int   `json:"spareOut"`
	Error          string         `json:"error,omitempty"`
}
