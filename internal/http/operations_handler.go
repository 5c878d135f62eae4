package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/swap-deploy-engine/internal/domain"
	"github.com/hxuan190/swap-deploy-engine/internal/engine"
	"github.com/hxuan190/swap-deploy-engine/internal/http/httputil"
)

type OperationsHandler struct {
	engineSvc *engine.Service
}

func NewOperationsHandler(engineSvc *engine.Service) *OperationsHandler {
	return &OperationsHandler{engineSvc: engineSvc}
}

func (h *OperationsHandler) Root() string {
	return "/operations"
}

func (h *OperationsHandler) SetRoutes(g *gin.RouterGroup) {
	g.GET("", h.listOperations)
}

// OperationRecord is one journaled operation, committed or aborted.
type OperationRecord struct {
	ID             uint64 `json:"id" example:"42"`
	Timestamp      string `json:"timestamp" example:"2026-01-02T15:04:05Z"`
	State          string `json:"state" example:"settled"`
	Strategy       string `json:"strategy" example:"optimal"`
	TokenIn        string `json:"tokenIn"`
	TokenOut       string `json:"tokenOut"`
	PositionID     uint64 `json:"positionId" example:"1"`
	AmountIn       string `json:"amountIn"`
	AmountSwapIn   string `json:"amountSwapIn"`
	AmountSwapOut  string `json:"amountSwapOut"`
	LiquidityAdded string `json:"liquidityAdded"`
	SpareIn        string `json:"spareIn"`
	SpareOut       string `json:"spareOut"`
	Error          string `json:"error,omitempty"`
}

func recordFromReceipt(rec *domain.OperationReceipt) OperationRecord {
	return OperationRecord{
		ID:             rec.ID,
		Timestamp:      rec.Timestamp.UTC().Format(time.RFC3339Nano),
		State:          rec.State,
		Strategy:       rec.Strategy,
		TokenIn:        rec.TokenIn.Hex(),
		TokenOut:       rec.TokenOut.Hex(),
		PositionID:     rec.PositionID,
		AmountIn:       rec.AmountIn.Dec(),
		AmountSwapIn:   rec.AmountSwapIn.Dec(),
		AmountSwapOut:  rec.AmountSwapOut.Dec(),
		LiquidityAdded: rec.LiquidityAdded.Dec(),
		SpareIn:        rec.SpareIn.Dec(),
		SpareOut:       rec.SpareOut.Dec(),
		Error:          rec.Error,
	}
}

// @Summary List journaled operations
// @Description Returns every journaled operation receipt, oldest first.
// @Description Empty when persistence is disabled.
// @Tags operations
// @Produce json
// @Success 200 {object} httputil.Response{data=[]OperationRecord}
// @Router /api/v1/operations [get]
func (h *OperationsHandler) listOperations(c *gin.Context) {
	receipts, err := h.engineSvc.History()
	if err != nil {
		httputil.InternalError(c, err.Error())
		return
	}

	records := make([]OperationRecord, 0, len(receipts))
	for _, rec := range receipts {
		records = append(records, recordFromReceipt(rec))
	}
	httputil.Success(c, records)
}
