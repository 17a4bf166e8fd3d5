package tier

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultMultiplier applies when no active tier threshold is met.
const DefaultMultiplier uint64 = 1

// Tier is one slot of the threshold table.
type Tier struct {
	Name       string
	Threshold  *big.Int
	Multiplier uint64
	Active     bool
}

func (t *Tier) clone() *Tier {
	if t == nil {
		return nil
	}
	out := *t
	if t.Threshold != nil {
		out.Threshold = new(big.Int).Set(t.Threshold)
	} else {
		out.Threshold = big.NewInt(0)
	}
	return &out
}

// DefaultTiers is the table seeded at genesis when no tiers are configured.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "Bronze", Threshold: big.NewInt(100), Multiplier: 2, Active: true},
		{Name: "Silver", Threshold: big.NewInt(300), Multiplier: 3, Active: true},
		{Name: "Star", Threshold: big.NewInt(500), Multiplier: 5, Active: true},
		{Name: "Legend", Threshold: big.NewInt(1000), Multiplier: 10, Active: true},
	}
}

// PointSource resolves the loyalty score of an address.
type PointSource interface {
	GetPoint(holder common.Address) (*big.Int, error)
}
