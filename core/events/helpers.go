package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/crypto"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func formatAddress(addr common.Address) string {
	return crypto.FormatAddress(addr)
}
