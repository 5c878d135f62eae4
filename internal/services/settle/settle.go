// Package settle routes spare amounts to their configured recipients.
package settle

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
)

// Ledger is the payout surface of the asset ledger.
type Ledger interface {
	Transfer(ctx context.Context, token common.Address, to common.Address, amount *uint256.Int) error
	TransferNative(ctx context.Context, to common.Address, amount *uint256.Int) error
	Unwrap(ctx context.Context, amount *uint256.Int) error
}

// Router pays out spare amounts. Wrapped-native spare is unwrapped at the
// point of payout and sent native; zero amounts are skipped; any transfer
// failure is fatal to the operation.
type Router struct {
	wrapped common.Address
}

func NewRouter(wrappedNative common.Address) *Router {
	return &Router{wrapped: wrappedNative}
}

func (r *Router) Settle(ctx context.Context, ledger Ledger, tokenIn, tokenOut common.Address, inst *domain.SettlementInstruction) error {
	if err := r.pay(ctx, ledger, tokenIn, inst.SpareInRecipient, inst.SpareIn); err != nil {
		return fmt.Errorf("spare-in payout: %w", err)
	}
	if err := r.pay(ctx, ledger, tokenOut, inst.SpareOutRecipient, inst.SpareOut); err != nil {
		return fmt.Errorf("spare-out payout: %w", err)
	}
	return nil
}

func (r *Router) pay(ctx context.Context, ledger Ledger, token common.Address, to common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	if token == r.wrapped {
		if err := ledger.Unwrap(ctx, amount); err != nil {
			return err
		}
		return ledger.TransferNative(ctx, to, amount)
	}
	return ledger.Transfer(ctx, token, to, amount)
}
