package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/swap-deploy-engine/internal/common"
	"github.com/hxuan190/swap-deploy-engine/internal/config"
	"github.com/hxuan190/swap-deploy-engine/internal/engine"
	"github.com/hxuan190/swap-deploy-engine/internal/http"
)

// @title Swap-Deploy Engine API
// @version 1.0
// @description Single-operation allocation engine for concentrated-liquidity pools.
// @description
// @description One call swaps part of the caller's input under a price-impact
// @description bound, deposits the balanced remainder into a fixed-range
// @description position, and settles every leftover unit to configured
// @description recipients. The whole pipeline is atomic: either it commits
// @description whole or it leaves no trace.
// @description
// @description ## Strategies
// @description | Strategy | Behavior |
// @description |----------|----------|
// @description | **greedy** | Swap as much as the impact bound allows; deposit only the remainder |
// @description | **heuristic** | Fixed swap fraction from the price's position against the range |
// @description | **optimal** | Binary search for the swap amount maximizing deposited liquidity |
// @description
// @description ## Usage Tips
// @description - Amounts are decimal strings in base token units
// @description - Default impact bound is 100 bps, default slippage 50 bps
// @description - Rate limit: 10 requests/second (burst: 20)
// @BasePath /
// @schemes http
// @tag.name deploy
// @tag.description Execute the swap-and-deploy operation
// @tag.name quote
// @tag.description Preview allocation plans without touching state
// @tag.name pool
// @tag.description Inspect the venue pair and pool snapshot
// @tag.name operations
// @tag.description Browse the journaled operation history

func main() {
	common.InitRuntime()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}

	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.EngineConfig{},
		&config.VenueConfig{},
	)

	dic, err := container.New(
		conf,

		&engine.Service{},
		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
