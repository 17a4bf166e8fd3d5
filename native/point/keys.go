package point

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

var (
	entryPrefix   = []byte("point/token/")
	presentPrefix = []byte("point/present/")
	countKey      = []byte("point/count")
	decimalKey    = []byte("point/decimal")
)

func entryKey(index uint64) []byte {
	buf := make([]byte, len(entryPrefix)+8)
	copy(buf, entryPrefix)
	binary.BigEndian.PutUint64(buf[len(entryPrefix):], index)
	return buf
}

func presentKey(token common.Address) []byte {
	return append(append([]byte{}, presentPrefix...), token.Bytes()...)
}
