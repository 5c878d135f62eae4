package http

import (
	"errors"
	gohttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/swap-deploy-engine/internal/adapters/venue"
	"github.com/hxuan190/swap-deploy-engine/internal/engine"
	"github.com/hxuan190/swap-deploy-engine/internal/http/httputil"
	"github.com/hxuan190/swap-deploy-engine/internal/services/deployer"
	"github.com/hxuan190/swap-deploy-engine/internal/services/strategy"
	"github.com/hxuan190/swap-deploy-engine/internal/services/swap"
)

// respondOperationError maps engine sentinel errors onto HTTP statuses and
// stable failure codes.
func respondOperationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrZeroAmount),
		errors.Is(err, engine.ErrInsufficientValue),
		errors.Is(err, engine.ErrUnknownToken),
		errors.Is(err, strategy.ErrUnknownStrategy),
		errors.Is(err, swap.ErrBadImpactBound),
		errors.Is(err, swap.ErrBadPriceLimit):
		httputil.BadRequest(c, err.Error())
	case errors.Is(err, engine.ErrReentrantCall):
		httputil.Conflict(c, "busy", err.Error())
	case errors.Is(err, venue.ErrUnknownPosition):
		httputil.NotFound(c, err.Error())
	case errors.Is(err, venue.ErrInsufficientBalance):
		httputil.Unprocessable(c, "insufficient-balance", err.Error())
	case errors.Is(err, swap.ErrPriceMoved):
		httputil.Unprocessable(c, "price-moved", err.Error())
	case errors.Is(err, swap.ErrExecutionOverrun):
		httputil.Unprocessable(c, "execution-overrun", err.Error())
	case errors.Is(err, deployer.ErrDepositMismatch):
		httputil.Unprocessable(c, "deposit-mismatch", err.Error())
	case errors.Is(err, engine.ErrConservation):
		httputil.Error(c, gohttp.StatusInternalServerError, "conservation", err.Error())
	default:
		httputil.InternalError(c, err.Error())
	}
}
