package http

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/engine"
	"github.com/hxuan190/swap-deploy-engine/internal/http/httputil"
)

type DeployHandler struct {
	engineSvc *engine.Service
}

func NewDeployHandler(engineSvc *engine.Service) *DeployHandler {
	return &DeployHandler{engineSvc: engineSvc}
}

func (h *DeployHandler) Root() string {
	return "/deploy"
}

func (h *DeployHandler) SetRoutes(g *gin.RouterGroup) {
	g.POST("", h.deploy)
}

// DeployRequest is the swap-and-deploy operation's wire form.
type DeployRequest struct {
	// Input token address (hex)
	TokenIn string `json:"tokenIn" binding:"required" example:"0x0000000000000000000000000000000000000A01"`

	// Output token address (hex); must be the pair's other leg
	TokenOut string `json:"tokenOut" binding:"required" example:"0x0000000000000000000000000000000000000B02"`

	// Pool fee tier in millionths; must match the venue
	FeeTier uint32 `json:"feeTier" binding:"required" example:"3000"`

	// Input amount in base units, decimal string
	AmountIn string `json:"amountIn" binding:"required" example:"1000000000000000000"`

	// Native amount attached to the call; required iff the input token is
	// the wrapped-native leg and the caller pays in native units
	NativeValue string `json:"nativeValue,omitempty" example:"1000000000000000000"`

	// Target position id; the position must already exist
	PositionID uint64 `json:"positionId" binding:"required" example:"1"`

	// Allocation strategy: greedy, heuristic, or optimal.
	// Defaults to the configured strategy.
	Strategy string `json:"strategy" enums:"greedy,heuristic,optimal" example:"optimal"`

	// Max price impact for the sizing quote in basis points
	ImpactBps uint16 `json:"impactBps" example:"100"`

	// Max slippage for the live swap in basis points
	SlippageBps uint16 `json:"slippageBps" example:"50"`

	// Override for the spare-input recipient (hex address)
	SpareInRecipient string `json:"spareInRecipient,omitempty"`

	// Override for the spare-output recipient (hex address)
	SpareOutRecipient string `json:"spareOutRecipient,omitempty"`
}

// DeployResponse reports what one committed operation did.
type DeployResponse struct {
	State          string `json:"state" example:"settled"`
	AmountSwapIn   string `json:"amountSwapIn" example:"500000000000000000"`
	AmountSwapOut  string `json:"amountSwapOut" example:"498500000000000000"`
	LiquidityAdded string `json:"liquidityAdded" example:"499249812406101549"`
	Amount0Used    string `json:"amount0Used"`
	Amount1Used    string `json:"amount1Used"`
	SpareIn        string `json:"spareIn" example:"0"`
	SpareOut       string `json:"spareOut" example:"3"`
}

func (h *DeployHandler) parseRequest(c *gin.Context) (*domain.DeployRequest, bool) {
	var req DeployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return nil, false
	}

	if !ethcommon.IsHexAddress(req.TokenIn) || !ethcommon.IsHexAddress(req.TokenOut) {
		httputil.BadRequest(c, "invalid token address")
		return nil, false
	}

	amountIn, err := uint256.FromDecimal(req.AmountIn)
	if err != nil || amountIn.IsZero() {
		httputil.BadRequest(c, "invalid amountIn: must be a positive integer")
		return nil, false
	}

	var nativeValue *uint256.Int
	if req.NativeValue != "" {
		nativeValue, err = uint256.FromDecimal(req.NativeValue)
		if err != nil {
			httputil.BadRequest(c, "invalid nativeValue")
			return nil, false
		}
	}

	mode := h.engineSvc.DefaultStrategy()
	if req.Strategy != "" {
		mode, err = domain.ParseStrategyMode(req.Strategy)
		if err != nil {
			httputil.BadRequest(c, err.Error())
			return nil, false
		}
	}

	out := &domain.DeployRequest{
		TokenIn:         ethcommon.HexToAddress(req.TokenIn),
		TokenOut:        ethcommon.HexToAddress(req.TokenOut),
		FeeTier:         req.FeeTier,
		AmountIn:        amountIn,
		NativeValue:     nativeValue,
		PositionID:      req.PositionID,
		Strategy:        mode,
		BatchImpactBps:  req.ImpactBps,
		SwapSlippageBps: req.SlippageBps,
	}
	if req.SpareInRecipient != "" {
		if !ethcommon.IsHexAddress(req.SpareInRecipient) {
			httputil.BadRequest(c, "invalid spareInRecipient")
			return nil, false
		}
		out.SpareInRecipient = ethcommon.HexToAddress(req.SpareInRecipient)
	}
	if req.SpareOutRecipient != "" {
		if !ethcommon.IsHexAddress(req.SpareOutRecipient) {
			httputil.BadRequest(c, "invalid spareOutRecipient")
			return nil, false
		}
		out.SpareOutRecipient = ethcommon.HexToAddress(req.SpareOutRecipient)
	}
	return out, true
}

// @Summary Swap part of the input and deploy the rest as liquidity
// @Description Runs the single-transaction pipeline: size the swap under the
// @Description impact bound with the chosen strategy, execute it, deposit the
// @Description balanced remainder into the fixed-range position, and settle
// @Description every leftover unit to the spare recipients. The operation is
// @Description atomic: on any failure nothing is kept.
// @Tags deploy
// @Accept json
// @Produce json
// @Param request body DeployRequest true "Operation parameters"
// @Success 200 {object} httputil.Response{data=DeployResponse} "Committed operation receipt"
// @Failure 400 {object} httputil.Response "Invalid parameters"
// @Failure 409 {object} httputil.Response "Another operation is in progress"
// @Failure 422 {object} httputil.Response "Operation aborted and rolled back"
// @Router /api/v1/deploy [post]
func (h *DeployHandler) deploy(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	result, err := h.engineSvc.Deploy(c.Request.Context(), req)
	if err != nil {
		respondOperationError(c, err)
		return
	}

	httputil.Success(c, DeployResponse{
		State:          result.State.String(),
		AmountSwapIn:   result.AmountSwapIn.Dec(),
		AmountSwapOut:  result.AmountSwapOut.Dec(),
		LiquidityAdded: result.LiquidityAdded.Dec(),
		Amount0Used:    result.Amount0Used.Dec(),
		Amount1Used:    result.Amount1Used.Dec(),
		SpareIn:        result.SpareIn.Dec(),
		SpareOut:       result.SpareOut.Dec(),
	})
}
