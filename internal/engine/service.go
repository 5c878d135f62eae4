package engine

import (
	"context"
	"errors"

	ethcommon "github.com/ethereum/go-ethereum/common"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/swap-deploy-engine/internal/adapters/persistence"
	"github.com/hxuan190/swap-deploy-engine/internal/adapters/venue"
	"github.com/hxuan190/swap-deploy-engine/internal/config"
	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/services"
)

const ENGINE_SERVICE = "engine-service"

// nopJournal drops receipts when persistence is disabled.
type nopJournal struct{}

func (nopJournal) Append(*domain.OperationReceipt) error { return nil }

// Service owns the engine, its venue, and the receipt journal for the
// lifetime of the process.
type Service struct {
	container.BaseDIInstance

	logger *services.ServiceLogger
	engine *Engine
	sim    *venue.SimVenue
	store  *persistence.Journal

	conf *config.EngineConfig
}

func (svc *Service) ID() string {
	return ENGINE_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = services.NewServiceLogger(svc)
	svc.conf = c.GetConfig(config.ENGINE_CONFIG_KEY).(*config.EngineConfig)
	venueConf := c.GetConfig(config.VENUE_CONFIG_KEY).(*config.VenueConfig)
	if svc.conf == nil || venueConf == nil {
		return errors.New("engine service is missing its config")
	}

	pair := domain.PairInfo{
		Token0:        ethcommon.HexToAddress(venueConf.Token0),
		Token1:        ethcommon.HexToAddress(venueConf.Token1),
		FeeTier:       venueConf.FeePpm,
		WrappedNative: ethcommon.HexToAddress(venueConf.WrappedNative),
	}
	pool := domain.PoolState{
		SqrtPriceX96: venueConf.InitialSqrtPriceX96,
		Liquidity:    venueConf.InitialLiquidity,
		FeePpm:       venueConf.FeePpm,
	}
	positions := []domain.Position{{
		ID:        venueConf.PositionID,
		TickLower: venueConf.PositionTickLower,
		TickUpper: venueConf.PositionTickUpper,
	}}
	svc.sim = venue.NewSimVenue(pair, pool, positions)

	var journal Journal = nopJournal{}
	if svc.conf.PersistenceEnabled {
		store, err := persistence.NewJournal(svc.conf.JournalDBPath)
		if err != nil {
			return err
		}
		svc.store = store
		journal = store
	}

	svc.engine = New(svc.sim, journal, Options{
		DepositPolicy:      svc.conf.DepositPolicy,
		DefaultStrategy:    svc.conf.DefaultStrategy,
		DefaultImpactBps:   svc.conf.DefaultImpactBps,
		DefaultSlippageBps: svc.conf.DefaultSlippageBps,
	})
	return nil
}

func (svc *Service) Start() error {
	pair := svc.engine.Pair()
	svc.logger.Info().
		Str("token0", pair.Token0.Hex()).
		Str("token1", pair.Token1.Hex()).
		Uint32("feeTier", pair.FeeTier).
		Str("strategy", svc.conf.DefaultStrategy.String()).
		Msg("engine ready")
	return nil
}

func (svc *Service) Stop() error {
	if svc.store != nil {
		return svc.store.Close()
	}
	return nil
}

func (svc *Service) Engine() *Engine {
	return svc.engine
}

func (svc *Service) DefaultStrategy() domain.StrategyMode {
	return svc.conf.DefaultStrategy
}

// History returns journaled receipts, oldest first. Empty when persistence
// is disabled.
func (svc *Service) History() ([]*domain.OperationReceipt, error) {
	if svc.store == nil {
		return nil, nil
	}
	return svc.store.LoadAll()
}

// Deploy credits the request's input to the venue ledger, standing in for
// the caller's transfer, then runs the operation.
func (svc *Service) Deploy(ctx context.Context, req *domain.DeployRequest) (*domain.DeployResult, error) {
	if req.SpareInRecipient == (ethcommon.Address{}) {
		req.SpareInRecipient = ethcommon.HexToAddress(svc.conf.SpareInRecipient)
	}
	if req.SpareOutRecipient == (ethcommon.Address{}) {
		req.SpareOutRecipient = ethcommon.HexToAddress(svc.conf.SpareOutRecipient)
	}

	if req.AmountIn != nil && !req.AmountIn.IsZero() {
		if req.NativeValue != nil {
			svc.sim.FundNative(req.NativeValue)
		} else {
			svc.sim.Fund(req.TokenIn, req.AmountIn)
		}
	}
	return svc.engine.SwapAndDeploy(ctx, req)
}

// Preview runs the read-only plan and sizing quote for the request.
func (svc *Service) Preview(ctx context.Context, req *domain.DeployRequest) (*domain.AllocationPlan, *domain.SwapQuote, error) {
	return svc.engine.PreviewPlan(ctx, req)
}
