package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/crypto"
	nativecommon "launchpad/native/common"
	"launchpad/native/ido"
	"launchpad/native/tier"
)

func parseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(raw, "_", ""))
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("amount %q must not be negative", raw)
	}
	return value, nil
}

// OwnerAddress parses the launchpad owner.
func (c *Config) OwnerAddress() (common.Address, error) {
	addr, err := crypto.ParseAddress(c.Owner)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid Owner: %w", err)
	}
	return addr, nil
}

// OperatorAddresses parses the genesis operators.
func (c *Config) OperatorAddresses() ([]common.Address, error) {
	out := make([]common.Address, 0, len(c.Operators))
	for i, raw := range c.Operators {
		addr, err := crypto.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid Operators[%d]: %w", i, err)
		}
		out = append(out, addr)
	}
	return out, nil
}

// TierTable converts the configured tiers into engine rows.
func (c *Config) TierTable() ([]tier.Tier, error) {
	out := make([]tier.Tier, 0, len(c.Tiers))
	for i, row := range c.Tiers {
		threshold, err := parseAmount(row.Threshold)
		if err != nil {
			return nil, fmt.Errorf("invalid tiers[%d].Threshold: %w", i, err)
		}
		out = append(out, tier.Tier{Name: strings.TrimSpace(row.Name), Threshold: threshold, Multiplier: row.Multiplier, Active: true})
	}
	return out, nil
}

// IDOParams converts the phase windows into engine parameters.
func (c *Config) IDOParams() ido.Params {
	return ido.Params{TierWindow: c.IDO.TierWindowSecs, WhitelistWindow: c.IDO.WhitelistWindowSecs}
}

// FeeRecipientAddress parses the fee recipient. The zero address is
// returned when none is configured.
func (c *Config) FeeRecipientAddress() (common.Address, error) {
	if strings.TrimSpace(c.Fees.Recipient) == "" {
		return common.Address{}, nil
	}
	addr, err := crypto.ParseAddress(c.Fees.Recipient)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid fees.Recipient: %w", err)
	}
	return addr, nil
}

// SupplyAmount parses the token supply.
func (t Token) SupplyAmount() (*big.Int, error) {
	supply, err := parseAmount(t.Supply)
	if err != nil {
		return nil, fmt.Errorf("invalid tokens.%s.Supply: %w", t.Symbol, err)
	}
	return supply, nil
}

// OwnerAddress resolves the token owner, falling back to fallback.
func (t Token) OwnerAddress(fallback common.Address) (common.Address, error) {
	if strings.TrimSpace(t.Owner) == "" {
		return fallback, nil
	}
	addr, err := crypto.ParseAddress(t.Owner)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid tokens.%s.Owner: %w", t.Symbol, err)
	}
	return addr, nil
}

// ParsedAllocation is an Allocation with parsed fields.
type ParsedAllocation struct {
	Address common.Address
	Amount  *big.Int
}

// ParsedAllocations parses the genesis balances of the token.
func (t Token) ParsedAllocations() ([]ParsedAllocation, error) {
	out := make([]ParsedAllocation, 0, len(t.Allocations))
	for i, alloc := range t.Allocations {
		addr, err := crypto.ParseAddress(alloc.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid tokens.%s.Allocations[%d].Address: %w", t.Symbol, i, err)
		}
		amount, err := parseAmount(alloc.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid tokens.%s.Allocations[%d].Amount: %w", t.Symbol, i, err)
		}
		out = append(out, ParsedAllocation{Address: addr, Amount: amount})
	}
	return out, nil
}

// WeightAmount parses the point weight.
func (p PointToken) WeightAmount() (*big.Int, error) {
	weight, err := parseAmount(p.Weight)
	if err != nil {
		return nil, fmt.Errorf("invalid point.Tokens.%s.Weight: %w", p.Symbol, err)
	}
	return weight, nil
}

// Table converts the pause switches into the module pause view.
func (p Pauses) Table() nativecommon.StaticPauses {
	return nativecommon.StaticPauses{
		"point":   p.Point,
		"tier":    p.Tier,
		"ido":     p.IDO,
		"factory": p.Factory,
	}
}
