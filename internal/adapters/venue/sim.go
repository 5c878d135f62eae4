package venue

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/services/pricemath"
	"github.com/hxuan190/swap-deploy-engine/internal/services/swap"
)

type simPosition struct {
	domain.Position
	Liquidity *uint256.Int
}

type simState struct {
	pool      domain.PoolState
	positions map[uint64]*simPosition
	tokens    map[common.Address]*uint256.Int
	native    *uint256.Int
	paidTok   map[common.Address]map[common.Address]*uint256.Int
	paidNat   map[common.Address]*uint256.Int
}

func (st *simState) clone() *simState {
	c := &simState{
		pool:      st.pool.Clone(),
		positions: make(map[uint64]*simPosition, len(st.positions)),
		tokens:    make(map[common.Address]*uint256.Int, len(st.tokens)),
		native:    new(uint256.Int).Set(st.native),
		paidTok:   make(map[common.Address]map[common.Address]*uint256.Int, len(st.paidTok)),
		paidNat:   make(map[common.Address]*uint256.Int, len(st.paidNat)),
	}
	for id, p := range st.positions {
		c.positions[id] = &simPosition{Position: p.Position, Liquidity: new(uint256.Int).Set(p.Liquidity)}
	}
	for tok, b := range st.tokens {
		c.tokens[tok] = new(uint256.Int).Set(b)
	}
	for to, per := range st.paidTok {
		m := make(map[common.Address]*uint256.Int, len(per))
		for tok, b := range per {
			m[tok] = new(uint256.Int).Set(b)
		}
		c.paidTok[to] = m
	}
	for to, b := range st.paidNat {
		c.paidNat[to] = new(uint256.Int).Set(b)
	}
	return c
}

// SimVenue is an in-process venue over the same curve math the engine quotes
// with. Begin clones the whole venue state; Commit swaps the clone in under
// the lock, so a rolled-back session leaves no trace.
type SimVenue struct {
	mu    sync.Mutex
	pair  domain.PairInfo
	sim   *swap.Simulator
	state *simState
}

func NewSimVenue(pair domain.PairInfo, pool domain.PoolState, positions []domain.Position) *SimVenue {
	st := &simState{
		pool:      pool.Clone(),
		positions: make(map[uint64]*simPosition, len(positions)),
		tokens:    make(map[common.Address]*uint256.Int),
		native:    uint256.NewInt(0),
		paidTok:   make(map[common.Address]map[common.Address]*uint256.Int),
		paidNat:   make(map[common.Address]*uint256.Int),
	}
	for _, p := range positions {
		st.positions[p.ID] = &simPosition{Position: p, Liquidity: uint256.NewInt(0)}
	}
	return &SimVenue{pair: pair, sim: swap.NewSimulator(), state: st}
}

func (v *SimVenue) Pair() domain.PairInfo {
	return v.pair
}

func (v *SimVenue) Snapshot() domain.PoolState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.pool.Clone()
}

func (v *SimVenue) Begin() (Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return &simSession{venue: v, st: v.state.clone()}, nil
}

// Fund credits the engine's working token balance. Stands in for the caller's
// transfer-in, which a live venue would observe on-chain.
func (v *SimVenue) Fund(token common.Address, amount *uint256.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	bal(v.state.tokens, token).Add(bal(v.state.tokens, token), amount)
}

// FundNative credits the engine's native balance.
func (v *SimVenue) FundNative(amount *uint256.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.native.Add(v.state.native, amount)
}

// Balance returns the engine's committed balance of a token.
func (v *SimVenue) Balance(token common.Address) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(uint256.Int).Set(bal(v.state.tokens, token))
}

// Paid returns the total of a token transferred to a recipient so far.
func (v *SimVenue) Paid(recipient, token common.Address) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	per, ok := v.state.paidTok[recipient]
	if !ok {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(bal(per, token))
}

// PaidNative returns the total native amount transferred to a recipient.
func (v *SimVenue) PaidNative(recipient common.Address) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	b, ok := v.state.paidNat[recipient]
	if !ok {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(b)
}

// PositionLiquidity returns a position's committed liquidity.
func (v *SimVenue) PositionLiquidity(id uint64) (*uint256.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.state.positions[id]
	if !ok {
		return nil, ErrUnknownPosition
	}
	return new(uint256.Int).Set(p.Liquidity), nil
}

func bal(m map[common.Address]*uint256.Int, key common.Address) *uint256.Int {
	b, ok := m[key]
	if !ok {
		b = uint256.NewInt(0)
		m[key] = b
	}
	return b
}

type simSession struct {
	venue *SimVenue
	st    *simState
	done  bool
}

func (s *simSession) Pool() Pool                 { return s }
func (s *simSession) Positions() PositionManager { return s }
func (s *simSession) Ledger() AssetLedger        { return s }

func (s *simSession) Commit() error {
	if s.done {
		return ErrSessionClosed
	}
	s.done = true
	s.venue.mu.Lock()
	s.venue.state = s.st
	s.venue.mu.Unlock()
	return nil
}

func (s *simSession) Rollback() {
	s.done = true
}

func (s *simSession) State() domain.PoolState {
	return s.st.pool.Clone()
}

func (s *simSession) Swap(ctx context.Context, zeroForOne bool, amountIn, sqrtPriceLimitX96 *uint256.Int) (*domain.SwapResult, error) {
	if s.done {
		return nil, ErrSessionClosed
	}
	q, err := s.venue.sim.QuoteToLimit(s.st.pool, amountIn, zeroForOne, sqrtPriceLimitX96)
	if err != nil {
		return nil, err
	}

	tokenIn, tokenOut := s.venue.pair.Token0, s.venue.pair.Token1
	if !zeroForOne {
		tokenIn, tokenOut = tokenOut, tokenIn
	}
	if err := s.debit(tokenIn, q.AmountToPay); err != nil {
		return nil, err
	}
	bal(s.st.tokens, tokenOut).Add(bal(s.st.tokens, tokenOut), q.AmountReceived)
	s.st.pool.SqrtPriceX96 = q.SqrtPriceAfterX96

	return &domain.SwapResult{
		AmountInUsed: new(uint256.Int).Set(q.AmountToPay),
		AmountOut:    new(uint256.Int).Set(q.AmountReceived),
	}, nil
}

func (s *simSession) Get(id uint64) (domain.Position, error) {
	p, ok := s.st.positions[id]
	if !ok {
		return domain.Position{}, ErrUnknownPosition
	}
	return p.Position, nil
}

func (s *simSession) IncreaseLiquidity(ctx context.Context, id uint64, liquidity, amount0Max, amount1Max *uint256.Int) (*domain.DepositResult, error) {
	if s.done {
		return nil, ErrSessionClosed
	}
	p, ok := s.st.positions[id]
	if !ok {
		return nil, ErrUnknownPosition
	}
	lower, upper, err := pricemath.RangeRatios(p.TickLower, p.TickUpper)
	if err != nil {
		return nil, err
	}

	amount0, amount1 := pricemath.AmountsForLiquidity(s.st.pool.SqrtPriceX96, lower, upper, liquidity)
	if amount0.Cmp(amount0Max) > 0 || amount1.Cmp(amount1Max) > 0 {
		return nil, ErrAmountExceedsMax
	}
	if err := s.debit(s.venue.pair.Token0, amount0); err != nil {
		return nil, err
	}
	if err := s.debit(s.venue.pair.Token1, amount1); err != nil {
		return nil, err
	}

	p.Liquidity.Add(p.Liquidity, liquidity)
	cur := s.st.pool.SqrtPriceX96
	if cur.Cmp(lower) > 0 && cur.Cmp(upper) < 0 {
		s.st.pool.Liquidity.Add(s.st.pool.Liquidity, liquidity)
	}

	return &domain.DepositResult{
		LiquidityAdded: new(uint256.Int).Set(liquidity),
		Amount0Used:    amount0,
		Amount1Used:    amount1,
	}, nil
}

func (s *simSession) Balance(token common.Address) *uint256.Int {
	return new(uint256.Int).Set(bal(s.st.tokens, token))
}

func (s *simSession) NativeBalance() *uint256.Int {
	return new(uint256.Int).Set(s.st.native)
}

func (s *simSession) Transfer(ctx context.Context, token common.Address, to common.Address, amount *uint256.Int) error {
	if s.done {
		return ErrSessionClosed
	}
	if err := s.debit(token, amount); err != nil {
		return err
	}
	per, ok := s.st.paidTok[to]
	if !ok {
		per = make(map[common.Address]*uint256.Int)
		s.st.paidTok[to] = per
	}
	bal(per, token).Add(bal(per, token), amount)
	return nil
}

func (s *simSession) TransferNative(ctx context.Context, to common.Address, amount *uint256.Int) error {
	if s.done {
		return ErrSessionClosed
	}
	if s.st.native.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	s.st.native.Sub(s.st.native, amount)
	b, ok := s.st.paidNat[to]
	if !ok {
		b = uint256.NewInt(0)
		s.st.paidNat[to] = b
	}
	b.Add(b, amount)
	return nil
}

func (s *simSession) Wrap(ctx context.Context, amount *uint256.Int) error {
	if s.done {
		return ErrSessionClosed
	}
	if s.st.native.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	s.st.native.Sub(s.st.native, amount)
	w := s.venue.pair.WrappedNative
	bal(s.st.tokens, w).Add(bal(s.st.tokens, w), amount)
	return nil
}

func (s *simSession) Unwrap(ctx context.Context, amount *uint256.Int) error {
	if s.done {
		return ErrSessionClosed
	}
	if err := s.debit(s.venue.pair.WrappedNative, amount); err != nil {
		return err
	}
	s.st.native.Add(s.st.native, amount)
	return nil
}

func (s *simSession) debit(token common.Address, amount *uint256.Int) error {
	b := bal(s.st.tokens, token)
	if b.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	b.Sub(b, amount)
	return nil
}
