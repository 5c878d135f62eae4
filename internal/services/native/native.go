// Package native reconciles the chain-native asset with its wrapped token
// form around swaps and payouts.
package native

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var ErrWrapShortfall = errors.New("wrapped balance short after wrap")

// Wrapper is the ledger surface the adapter needs.
type Wrapper interface {
	Balance(token common.Address) *uint256.Int
	NativeBalance() *uint256.Int
	Wrap(ctx context.Context, amount *uint256.Int) error
	Unwrap(ctx context.Context, amount *uint256.Int) error
}

// Adapter wraps and unwraps against one wrapped-native token. Wrap results
// are verified by balance diff, never by trusting the call's return.
type Adapter struct {
	wrapped common.Address
}

func NewAdapter(wrapped common.Address) *Adapter {
	return &Adapter{wrapped: wrapped}
}

func (a *Adapter) WrappedToken() common.Address {
	return a.wrapped
}

// SnapshotWrapped reads the wrapped balance for a later ReconcileProceeds.
func (a *Adapter) SnapshotWrapped(ledger Wrapper) *uint256.Int {
	return ledger.Balance(a.wrapped)
}

// WrapInput converts native input into wrapped form before the pool consumes
// it, verifying the wrapped balance actually grew by the amount.
func (a *Adapter) WrapInput(ctx context.Context, ledger Wrapper, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	before := ledger.Balance(a.wrapped)
	if err := ledger.Wrap(ctx, amount); err != nil {
		return err
	}
	gained := new(uint256.Int).Sub(ledger.Balance(a.wrapped), before)
	if gained.Cmp(amount) < 0 {
		return ErrWrapShortfall
	}
	return nil
}

// ReconcileProceeds runs after an external call that should have delivered
// `expected` of the wrapped token. The call's return format is not
// guaranteed, so the wrapped balance diff against the pre-call snapshot
// decides whether proceeds arrived wrapped or native; only the native
// shortfall is wrapped.
func (a *Adapter) ReconcileProceeds(ctx context.Context, ledger Wrapper, before, expected *uint256.Int) error {
	if expected == nil || expected.IsZero() {
		return nil
	}
	arrived := new(uint256.Int).Sub(ledger.Balance(a.wrapped), before)
	if arrived.Cmp(expected) >= 0 {
		return nil
	}
	shortfall := new(uint256.Int).Sub(expected, arrived)
	if ledger.NativeBalance().Cmp(shortfall) < 0 {
		return ErrWrapShortfall
	}
	return a.WrapInput(ctx, ledger, shortfall)
}

// UnwrapForPayout converts wrapped spare back to native ahead of a payout.
func (a *Adapter) UnwrapForPayout(ctx context.Context, ledger Wrapper, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	return ledger.Unwrap(ctx, amount)
}
