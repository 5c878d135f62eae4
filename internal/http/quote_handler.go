package http

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/engine"
	"github.com/hxuan190/swap-deploy-engine/internal/http/httputil"
)

type QuoteHandler struct {
	engineSvc *engine.Service
}

func NewQuoteHandler(engineSvc *engine.Service) *QuoteHandler {
	return &QuoteHandler{engineSvc: engineSvc}
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

func (h *QuoteHandler) SetRoutes(g *gin.RouterGroup) {
	g.GET("", h.getQuote)
}

// QuoteRequest asks for a read-only allocation preview.
type QuoteRequest struct {
	// Input token address (hex)
	TokenIn string `form:"tokenIn" binding:"required" example:"0x0000000000000000000000000000000000000A01"`

	// Output token address (hex)
	TokenOut string `form:"tokenOut" binding:"required" example:"0x0000000000000000000000000000000000000B02"`

	// Pool fee tier in millionths
	FeeTier uint32 `form:"feeTier" binding:"required" example:"3000"`

	// Input amount in base units, decimal string
	Amount string `form:"amount" binding:"required" example:"1000000000000000000"`

	// Target position id
	PositionID uint64 `form:"positionId" binding:"required" example:"1"`

	// Allocation strategy: greedy, heuristic, or optimal
	Strategy string `form:"strategy" enums:"greedy,heuristic,optimal" example:"optimal"`

	// Max price impact for the sizing quote in basis points
	ImpactBps uint16 `form:"impactBps" example:"100"`
}

// QuoteResponse is the strategy's plan plus the sizing quote against the
// current pool snapshot. Nothing is executed.
type QuoteResponse struct {
	// Portion of the input the strategy would swap
	AmountToSwap string `json:"amountToSwap" example:"500000000000000000"`

	// True when the strategy forgoes the liquidity deposit entirely
	SkipDeposit bool `json:"skipDeposit" example:"false"`

	// Input the bounded swap would actually consume
	AmountToPay string `json:"amountToPay" example:"500000000000000000"`

	// Output the bounded swap would produce
	AmountReceived string `json:"amountReceived" example:"498500000000000000"`

	// Pool sqrt price after the simulated swap, Q64.96
	SqrtPriceAfterX96 string `json:"sqrtPriceAfterX96"`

	// Proportional fee charged on the swapped input
	FeePaid string `json:"feePaid" example:"1500000000000000"`

	// True when the impact bound did not truncate the swap
	FullyAbsorbed bool `json:"fullyAbsorbed" example:"true"`
}

// @Summary Preview the allocation plan for an input amount
// @Description Runs the chosen strategy and the impact-bounded sizing quote
// @Description against the current pool snapshot without touching any state.
// @Tags quote
// @Produce json
// @Param tokenIn query string true "Input token address (hex)"
// @Param tokenOut query string true "Output token address (hex)"
// @Param feeTier query int true "Pool fee tier in millionths" example(3000)
// @Param amount query string true "Input amount in base units" example("1000000000000000000")
// @Param positionId query int true "Target position id" example(1)
// @Param strategy query string false "Allocation strategy" Enums(greedy, heuristic, optimal)
// @Param impactBps query int false "Max price impact in basis points" default(100)
// @Success 200 {object} httputil.Response{data=QuoteResponse}
// @Failure 400 {object} httputil.Response "Invalid parameters"
// @Failure 404 {object} httputil.Response "Unknown position"
// @Router /api/v1/quote [get]
func (h *QuoteHandler) getQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	if !ethcommon.IsHexAddress(req.TokenIn) || !ethcommon.IsHexAddress(req.TokenOut) {
		httputil.BadRequest(c, "invalid token address")
		return
	}

	amount, err := uint256.FromDecimal(req.Amount)
	if err != nil || amount.IsZero() {
		httputil.BadRequest(c, "invalid amount: must be a positive integer")
		return
	}

	mode := h.engineSvc.DefaultStrategy()
	if req.Strategy != "" {
		mode, err = domain.ParseStrategyMode(req.Strategy)
		if err != nil {
			httputil.BadRequest(c, err.Error())
			return
		}
	}

	plan, quote, err := h.engineSvc.Preview(c.Request.Context(), &domain.DeployRequest{
		TokenIn:        ethcommon.HexToAddress(req.TokenIn),
		TokenOut:       ethcommon.HexToAddress(req.TokenOut),
		FeeTier:        req.FeeTier,
		AmountIn:       amount,
		PositionID:     req.PositionID,
		Strategy:       mode,
		BatchImpactBps: req.ImpactBps,
	})
	if err != nil {
		respondOperationError(c, err)
		return
	}

	resp := QuoteResponse{
		AmountToSwap: plan.AmountToSwap.Dec(),
		SkipDeposit:  plan.SkipDeposit,
	}
	if quote != nil {
		resp.AmountToPay = quote.AmountToPay.Dec()
		resp.AmountReceived = quote.AmountReceived.Dec()
		resp.SqrtPriceAfterX96 = quote.SqrtPriceAfterX96.Dec()
		resp.FeePaid = quote.FeePaid.Dec()
		resp.FullyAbsorbed = quote.FullyAbsorbed(plan.AmountToSwap)
	}
	httputil.Success(c, resp)
}
