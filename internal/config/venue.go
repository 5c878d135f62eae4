package config

import (
	"fmt"

	"github.com/andrew-solarstorm/go-packages/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type VenueConfig struct {
	Token0        string
	Token1        string
	WrappedNative string
	FeePpm        uint32

	InitialSqrtPriceX96 *uint256.Int
	InitialLiquidity    *uint256.Int

	PositionID        uint64
	PositionTickLower int
	PositionTickUpper int
}

func (c *VenueConfig) Key() string {
	return VENUE_CONFIG_KEY
}

func (c *VenueConfig) Load() error {
	c.Token0 = common.GetEnvOrDefault("VENUE_TOKEN0", "0x0000000000000000000000000000000000000A01")
	c.Token1 = common.GetEnvOrDefault("VENUE_TOKEN1", "0x0000000000000000000000000000000000000B02")
	c.WrappedNative = common.GetEnvOrDefault("VENUE_WRAPPED_NATIVE", "0x0000000000000000000000000000000000000B02")
	c.FeePpm = uint32(common.GetEnvOrDefaultInt("VENUE_FEE_PPM", 3000))

	var err error
	// 2^96: price 1.0 in Q64.96.
	c.InitialSqrtPriceX96, err = uint256.FromDecimal(common.GetEnvOrDefault("VENUE_INITIAL_SQRT_PRICE_X96", "79228162514264337593543950336"))
	if err != nil {
		return fmt.Errorf("invalid initial sqrt price: %w", err)
	}
	c.InitialLiquidity, err = uint256.FromDecimal(common.GetEnvOrDefault("VENUE_INITIAL_LIQUIDITY", "1000000000000000000000"))
	if err != nil {
		return fmt.Errorf("invalid initial liquidity: %w", err)
	}

	c.PositionID = uint64(common.GetEnvOrDefaultInt("VENUE_POSITION_ID", 1))
	c.PositionTickLower = common.GetEnvOrDefaultInt("VENUE_POSITION_TICK_LOWER", -60000)
	c.PositionTickUpper = common.GetEnvOrDefaultInt("VENUE_POSITION_TICK_UPPER", 60000)

	return c.Validate()
}

func (c *VenueConfig) Validate() error {
	for name, addr := range map[string]string{
		"token0":         c.Token0,
		"token1":         c.Token1,
		"wrapped native": c.WrappedNative,
	} {
		if !ethcommon.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s address: %s", name, addr)
		}
	}
	if c.Token0 == c.Token1 {
		return fmt.Errorf("token0 and token1 must differ")
	}
	if c.FeePpm >= 1_000_000 {
		return fmt.Errorf("fee ppm out of range: %d", c.FeePpm)
	}
	if c.InitialSqrtPriceX96.IsZero() {
		return fmt.Errorf("initial sqrt price must be positive")
	}
	if c.PositionTickLower >= c.PositionTickUpper {
		return fmt.Errorf("position tick range is empty: [%d, %d)", c.PositionTickLower, c.PositionTickUpper)
	}
	return nil
}
