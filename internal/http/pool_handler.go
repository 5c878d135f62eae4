package http

import (
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/swap-deploy-engine/internal/engine"
	"github.com/hxuan190/swap-deploy-engine/internal/http/httputil"
)

type PoolHandler struct {
	engineSvc *engine.Service
}

func NewPoolHandler(engineSvc *engine.Service) *PoolHandler {
	return &PoolHandler{engineSvc: engineSvc}
}

func (h *PoolHandler) Root() string {
	return "/pool"
}

func (h *PoolHandler) SetRoutes(g *gin.RouterGroup) {
	g.GET("", h.getPool)
}

// PoolResponse is the venue's pair and current pool snapshot.
type PoolResponse struct {
	Token0        string `json:"token0"`
	Token1        string `json:"token1"`
	WrappedNative string `json:"wrappedNative"`
	FeeTier       uint32 `json:"feeTier" example:"3000"`

	SqrtPriceX96 string `json:"sqrtPriceX96" example:"79228162514264337593543950336"`
	Liquidity    string `json:"liquidity" example:"1000000000000000000000"`
}

// @Summary Get the traded pair and pool snapshot
// @Tags pool
// @Produce json
// @Success 200 {object} httputil.Response{data=PoolResponse}
// @Router /api/v1/pool [get]
func (h *PoolHandler) getPool(c *gin.Context) {
	eng := h.engineSvc.Engine()
	pair := eng.Pair()
	state := eng.PoolSnapshot()

	httputil.Success(c, PoolResponse{
		Token0:        pair.Token0.Hex(),
		Token1:        pair.Token1.Hex(),
		WrappedNative: pair.WrappedNative.Hex(),
		FeeTier:       pair.FeeTier,
		SqrtPriceX96:  state.SqrtPriceX96.Dec(),
		Liquidity:     state.Liquidity.Dec(),
	})
}
