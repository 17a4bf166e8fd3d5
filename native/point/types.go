package point

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MaxDecimal bounds the scaling exponent so 10^decimal fits in 256 bits.
const MaxDecimal = 77

// Entry is one slot of the weight table. Removed slots stay in place with
// Active cleared so indices remain stable.
type Entry struct {
	Token  common.Address
	Weight *big.Int
	Active bool
}

func (e *Entry) clone() *Entry {
	if e == nil {
		return nil
	}
	out := *e
	if e.Weight != nil {
		out.Weight = new(big.Int).Set(e.Weight)
	} else {
		out.Weight = big.NewInt(0)
	}
	return &out
}
