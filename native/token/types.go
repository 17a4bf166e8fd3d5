package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Metadata describes a registered ledger token.
type Metadata struct {
	Address  common.Address
	Symbol   string
	Name     string
	Decimals uint8
	Owner    common.Address
	Supply   *big.Int
}

func (m *Metadata) clone() *Metadata {
	if m == nil {
		return nil
	}
	out := *m
	out.Supply = cloneBigInt(m.Supply)
	return &out
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
