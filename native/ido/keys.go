package ido

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	offeringPrefix = []byte("ido/offering/")
	accountPrefix  = []byte("ido/account/")
	fundersPrefix  = []byte("ido/funders/")
	custodyPrefix  = []byte("ido/custody/")
	countKey       = []byte("ido/count")
)

func indexBytes(index uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], index)
	return buf[:]
}

func offeringKey(index uint64) []byte {
	return append(append([]byte{}, offeringPrefix...), indexBytes(index)...)
}

func accountKey(index uint64, addr common.Address) []byte {
	buf := make([]byte, 0, len(accountPrefix)+8+common.AddressLength)
	buf = append(buf, accountPrefix...)
	buf = append(buf, indexBytes(index)...)
	return append(buf, addr.Bytes()...)
}

func fundersKey(index uint64) []byte {
	return append(append([]byte{}, fundersPrefix...), indexBytes(index)...)
}

// CustodyAddress is the ledger account holding an offering's sale deposit
// and raised payment tokens. Funders approve it before funding.
func CustodyAddress(index uint64) common.Address {
	seed := append(append([]byte{}, custodyPrefix...), indexBytes(index)...)
	return common.BytesToAddress(ethcrypto.Keccak256(seed))
}
