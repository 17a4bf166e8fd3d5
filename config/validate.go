package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/native/point"
)

// MaxFeePercent bounds the registry fee.
var MaxFeePercent = uint64(100)

// ValidateConfig checks ranges and cross references of a loaded config.
func ValidateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("config: nil config")
	}
	owner, err := c.OwnerAddress()
	if err != nil {
		return err
	}
	if owner == (common.Address{}) {
		return fmt.Errorf("invalid Owner: zero address")
	}
	if _, err := c.OperatorAddresses(); err != nil {
		return err
	}
	if c.Point.Decimal > point.MaxDecimal {
		return fmt.Errorf("point: decimal %d exceeds %d", c.Point.Decimal, point.MaxDecimal)
	}
	tiers, err := c.TierTable()
	if err != nil {
		return err
	}
	for i, row := range tiers {
		if row.Name == "" {
			return fmt.Errorf("tiers[%d]: name must not be empty", i)
		}
		if row.Multiplier == 0 {
			return fmt.Errorf("tiers[%d]: multiplier must be greater than zero", i)
		}
	}
	if err := c.IDOParams().Validate(); err != nil {
		return fmt.Errorf("ido: %w", err)
	}
	if c.Fees.Percent > MaxFeePercent {
		return fmt.Errorf("fees: percent %d exceeds %d", c.Fees.Percent, MaxFeePercent)
	}
	if _, err := c.FeeRecipientAddress(); err != nil {
		return err
	}

	symbols := make(map[string]struct{}, len(c.Tokens))
	for _, tok := range c.Tokens {
		symbol := strings.ToUpper(strings.TrimSpace(tok.Symbol))
		if symbol == "" {
			return fmt.Errorf("tokens: symbol must not be empty")
		}
		if _, dup := symbols[symbol]; dup {
			return fmt.Errorf("tokens: duplicate symbol %s", symbol)
		}
		symbols[symbol] = struct{}{}
		supply, err := tok.SupplyAmount()
		if err != nil {
			return err
		}
		if _, err := tok.OwnerAddress(owner); err != nil {
			return err
		}
		allocations, err := tok.ParsedAllocations()
		if err != nil {
			return err
		}
		total := big.NewInt(0)
		for _, alloc := range allocations {
			total.Add(total, alloc.Amount)
		}
		if total.Cmp(supply) > 0 {
			return fmt.Errorf("tokens.%s: allocations %s exceed supply %s", symbol, total, supply)
		}
	}
	for _, pt := range c.Point.Tokens {
		symbol := strings.ToUpper(strings.TrimSpace(pt.Symbol))
		if _, ok := symbols[symbol]; !ok {
			return fmt.Errorf("point: token %s is not configured", pt.Symbol)
		}
		if _, err := pt.WeightAmount(); err != nil {
			return err
		}
	}
	return nil
}
