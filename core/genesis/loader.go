package genesis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/config"
	"launchpad/core/state"
	nativecommon "launchpad/native/common"
	"launchpad/native/factory"
	"launchpad/native/point"
	"launchpad/native/tier"
	"launchpad/native/token"
)

var appliedKey = []byte("genesis/applied")

// Modules are the engines seeded from the genesis section of the config.
type Modules struct {
	Tokens   *token.Ledger
	Points   *point.Engine
	Tiers    *tier.Engine
	Registry *factory.Registry
}

// Applied reports whether genesis has already been written to manager.
func Applied(manager *state.Manager) (bool, error) {
	var done bool
	ok, err := manager.KVGet(appliedKey, &done)
	if err != nil {
		return false, err
	}
	return ok && done, nil
}

// Apply writes the owner roles, token balances, point table, tier table,
// operators and fee policy described by cfg in a single unit. Apply is a
// no-op once genesis has been recorded.
func Apply(manager *state.Manager, mods Modules, cfg *config.Config) error {
	if manager == nil {
		return fmt.Errorf("genesis: state manager must not be nil")
	}
	if cfg == nil {
		return fmt.Errorf("genesis: config must not be nil")
	}
	if mods.Tokens == nil || mods.Points == nil || mods.Tiers == nil || mods.Registry == nil {
		return fmt.Errorf("genesis: modules not configured")
	}
	done, err := Applied(manager)
	if err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	if done {
		return nil
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	owner, err := cfg.OwnerAddress()
	if err != nil {
		return err
	}

	return manager.Atomic(func() error {
		// 1) Owner roles
		for _, role := range []string{nativecommon.RolePointOwner, nativecommon.RoleTierOwner, nativecommon.RoleRegistryOwner} {
			if err := manager.GrantRole(role, owner.Bytes()); err != nil {
				return fmt.Errorf("roles[%q]: %w", role, err)
			}
		}

		// 2) Tokens (sorted by symbol) and their allocations
		tokens := append([]config.Token(nil), cfg.Tokens...)
		sort.Slice(tokens, func(i, j int) bool {
			return strings.ToUpper(tokens[i].Symbol) < strings.ToUpper(tokens[j].Symbol)
		})
		for i := range tokens {
			if err := applyToken(mods.Tokens, &tokens[i], owner); err != nil {
				return err
			}
		}

		// 3) Point table (config order fixes the slot indices)
		if err := mods.Points.SetDecimal(owner, cfg.Point.Decimal); err != nil {
			return fmt.Errorf("point decimal: %w", err)
		}
		for _, pt := range cfg.Point.Tokens {
			weight, err := pt.WeightAmount()
			if err != nil {
				return err
			}
			if _, err := mods.Points.InsertToken(owner, token.AddressForSymbol(pt.Symbol), weight); err != nil {
				return fmt.Errorf("point token %q: %w", pt.Symbol, err)
			}
		}

		// 4) Tier table
		tiers, err := cfg.TierTable()
		if err != nil {
			return err
		}
		for _, row := range tiers {
			if _, err := mods.Tiers.InsertTier(owner, row.Name, row.Threshold, row.Multiplier); err != nil {
				return fmt.Errorf("tier %q: %w", row.Name, err)
			}
		}

		// 5) Operators
		operators, err := cfg.OperatorAddresses()
		if err != nil {
			return err
		}
		for _, op := range operators {
			if _, err := mods.Registry.InsertOperator(owner, op); err != nil {
				return fmt.Errorf("operator %s: %w", op.Hex(), err)
			}
		}

		// 6) Fee policy
		if cfg.Fees.Percent > 0 {
			if err := mods.Registry.SetFeePercent(owner, cfg.Fees.Percent); err != nil {
				return fmt.Errorf("fee percent: %w", err)
			}
		}
		recipient, err := cfg.FeeRecipientAddress()
		if err != nil {
			return err
		}
		if recipient != (common.Address{}) {
			if err := mods.Registry.SetFeeRecipient(owner, recipient); err != nil {
				return fmt.Errorf("fee recipient: %w", err)
			}
		}

		return manager.KVPut(appliedKey, true)
	})
}

func applyToken(ledger *token.Ledger, tok *config.Token, fallback common.Address) error {
	supply, err := tok.SupplyAmount()
	if err != nil {
		return err
	}
	holder, err := tok.OwnerAddress(fallback)
	if err != nil {
		return err
	}
	addr, err := ledger.Register(tok.Symbol, tok.Name, tok.Decimals, holder, supply)
	if err != nil {
		return fmt.Errorf("register token %q: %w", tok.Symbol, err)
	}
	allocations, err := tok.ParsedAllocations()
	if err != nil {
		return err
	}
	// Sorted by address for a deterministic transfer log.
	sort.Slice(allocations, func(i, j int) bool {
		return strings.Compare(allocations[i].Address.Hex(), allocations[j].Address.Hex()) < 0
	})
	for _, alloc := range allocations {
		if alloc.Amount.Sign() == 0 {
			continue
		}
		if err := ledger.Transfer(addr, holder, alloc.Address, alloc.Amount); err != nil {
			return fmt.Errorf("alloc[%s][%s]: %w", alloc.Address.Hex(), tok.Symbol, err)
		}
	}
	return nil
}
