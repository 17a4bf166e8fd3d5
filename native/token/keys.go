package token

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	metadataPrefix  = []byte("token/meta/")
	balancePrefix   = []byte("token/balance/")
	allowancePrefix = []byte("token/allowance/")
	tokenListKey    = []byte("token/list")
)

// AddressForSymbol derives the deterministic ledger address of a token.
func AddressForSymbol(symbol string) common.Address {
	return common.BytesToAddress(ethcrypto.Keccak256([]byte("token/" + strings.ToUpper(strings.TrimSpace(symbol)))))
}

func metadataKey(token common.Address) []byte {
	return append(append([]byte{}, metadataPrefix...), token.Bytes()...)
}

func balanceKey(token, holder common.Address) []byte {
	buf := make([]byte, 0, len(balancePrefix)+2*common.AddressLength)
	buf = append(buf, balancePrefix...)
	buf = append(buf, token.Bytes()...)
	return append(buf, holder.Bytes()...)
}

func allowanceKey(token, owner, spender common.Address) []byte {
	buf := make([]byte, 0, len(allowancePrefix)+3*common.AddressLength)
	buf = append(buf, allowancePrefix...)
	buf = append(buf, token.Bytes()...)
	buf = append(buf, owner.Bytes()...)
	return append(buf, spender.Bytes()...)
}
