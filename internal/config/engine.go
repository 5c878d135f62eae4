package config

import (
	"fmt"

	"github.com/andrew-solarstorm/go-packages/common"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/swap-deploy-engine/internal/domain"
)

type EngineConfig struct {
	DefaultStrategy    domain.StrategyMode
	DepositPolicy      domain.DepositPolicy
	DefaultImpactBps   uint16
	DefaultSlippageBps uint16

	SpareInRecipient  string
	SpareOutRecipient string

	JournalDBPath      string
	PersistenceEnabled bool
}

func (c *EngineConfig) Key() string {
	return ENGINE_CONFIG_KEY
}

func (c *EngineConfig) Load() error {
	mode, err := domain.ParseStrategyMode(common.GetEnvOrDefault("ENGINE_DEFAULT_STRATEGY", "optimal"))
	if err != nil {
		return err
	}
	c.DefaultStrategy = mode

	switch policy := common.GetEnvOrDefault("ENGINE_DEPOSIT_POLICY", "strict"); policy {
	case "strict":
		c.DepositPolicy = domain.PolicyStrict
	case "soft":
		c.DepositPolicy = domain.PolicySoft
	default:
		return fmt.Errorf("unknown deposit policy %q", policy)
	}

	impact := common.GetEnvOrDefaultInt("ENGINE_DEFAULT_IMPACT_BPS", 100)
	slippage := common.GetEnvOrDefaultInt("ENGINE_DEFAULT_SLIPPAGE_BPS", 50)
	if impact < 0 || impact > int(^uint16(0)) || slippage < 0 || slippage > int(^uint16(0)) {
		return fmt.Errorf("bps values must fit in 16 bits")
	}
	c.DefaultImpactBps = uint16(impact)
	c.DefaultSlippageBps = uint16(slippage)

	c.SpareInRecipient = common.GetEnvOrDefault("ENGINE_SPARE_IN_RECIPIENT", "0x000000000000000000000000000000000000dEaD")
	c.SpareOutRecipient = common.GetEnvOrDefault("ENGINE_SPARE_OUT_RECIPIENT", "0x00000000000000000000000000000000DeaDBeef")

	c.JournalDBPath = common.GetEnvOrDefault("ENGINE_JOURNAL_DB_PATH", "./data/swap-deploy-engine.db")
	c.PersistenceEnabled = common.GetEnvOrDefault("ENGINE_PERSISTENCE_ENABLED", "true") == "true"

	return c.Validate()
}

func (c *EngineConfig) Validate() error {
	if c.DefaultImpactBps <= 0 || c.DefaultImpactBps >= 10000 {
		return fmt.Errorf("impact bps out of range: %d", c.DefaultImpactBps)
	}
	if c.DefaultSlippageBps <= 0 || c.DefaultSlippageBps >= 10000 {
		return fmt.Errorf("slippage bps out of range: %d", c.DefaultSlippageBps)
	}
	if !ethcommon.IsHexAddress(c.SpareInRecipient) {
		return fmt.Errorf("invalid spare-in recipient: %s", c.SpareInRecipient)
	}
	if !ethcommon.IsHexAddress(c.SpareOutRecipient) {
		return fmt.Errorf("invalid spare-out recipient: %s", c.SpareOutRecipient)
	}
	if c.PersistenceEnabled && c.JournalDBPath == "" {
		return fmt.Errorf("journal db path is required when persistence is enabled")
	}
	return nil
}
