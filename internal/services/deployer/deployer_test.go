package deployer

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
	token0 = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	token1 = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

func newVenue(t *testing.T, position domain.Position) *venue.SimVenue {
	t.Helper()
	pair := domain.PairInfo{Token0: token0, Token1: token1, FeeTier: 3000}
	pool := domain.PoolState{
		SqrtPriceX96: new(uint256.Int).Set(pricemath.Q96),
		Liquidity:    new(uint256.Int).Lsh(pricemath.One, 100),
		FeePpm:       3000,
	}
	return venue.NewSimVenue(pair, pool, []domain.Position{position})
}

func TestDeployStrictInRange(t *testing.T) {
	pos := domain.Position{ID: 7, TickLower: -600, TickUpper: 600}
	v := newVenue(t, pos)
	v.Fund(token0, uint256.NewInt(1_000_000))
	v.Fund(token1, uint256.NewInt(1_000_000))

	session, err := v.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer session.Rollback()

	state := session.Pool().State()
	res, err := NewDeployer().Deploy(context.Background(), session.Positions(), state, pos.ID,
		uint256.NewInt(1_000_000), uint256.NewInt(1_000_000), domain.PolicyStrict)
	if err != nil {
		t.Fatal(err)
	}
	if res.LiquidityAdded.IsZero() {
		t.Error("no liquidity added for an in-range deposit")
	}
	if res.Amount0Used.CmpUint64(1_000_000) > 0 || res.Amount1Used.CmpUint64(1_000_000) > 0 {
		t.Errorf("deposit consumed more than provided: %s / %s", res.Amount0Used, res.Amount1Used)
	}
}

func TestDeployOutOfRangeNothingDepositable(t *testing.T) {
	// Price below the range and only token1 on hand: nothing can go in.
	pos := domain.Position{ID: 7, TickLower: 100, TickUpper: 300}
	v := newVenue(t, pos)
	v.Fund(token1, uint256.NewInt(1_000_000))

	session, err := v.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer session.Rollback()

	state := session.Pool().State()
	res, err := NewDeployer().Deploy(context.Background(), session.Positions(), state, pos.ID,
		uint256.NewInt(0), uint256.NewInt(1_000_000), domain.PolicyStrict)
	if err != nil {
		t.Fatal(err)
	}
	if !res.LiquidityAdded.IsZero() || !res.Amount0Used.IsZero() || !res.Amount1Used.IsZero() {
		t.Errorf("expected an empty deposit, got %+v", res)
	}
}

func TestDeployPolicyOnLedgerShortfall(t *testing.T) {
	// Balances cover nothing, so the venue rejects the deposit.
	pos := domain.Position{ID: 7, TickLower: -600, TickUpper: 600}

	for _, tc := range []struct {
		policy  domain.DepositPolicy
		wantErr bool
	}{
		{domain.PolicyStrict, true},
		{domain.PolicySoft, false},
	} {
		v := newVenue(t, pos)
		session, err := v.Begin()
		if err != nil {
			t.Fatal(err)
		}

		state := session.Pool().State()
		res, err := NewDeployer().Deploy(context.Background(), session.Positions(), state, pos.ID,
			uint256.NewInt(1_000_000), uint256.NewInt(1_000_000), tc.policy)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected failure on unfunded deposit", tc.policy)
			}
		} else {
			if err != nil {
				t.Errorf("%s: %v", tc.policy, err)
			} else if !res.LiquidityAdded.IsZero() {
				t.Errorf("%s: soft failure should deposit nothing, got %s", tc.policy, res.LiquidityAdded)
			}
		}
		session.Rollback()
	}
}

func TestDeployUnknownPosition(t *testing.T) {
	pos := domain.Position{ID: 7, TickLower: -600, TickUpper: 600}
	v := newVenue(t, pos)
	session, err := v.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer session.Rollback()

	state := session.Pool().State()
	_, err = NewDeployer().Deploy(context.Background(), session.Positions(), state, 999,
		uint256.NewInt(1), uint256.NewInt(1), domain.PolicyStrict)
	if err != venue.ErrUnknownPosition {
		t.Errorf("got %v, want ErrUnknownPosition", err)
	}
}
