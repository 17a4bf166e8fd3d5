package tier

import "encoding/binary"

var (
	tierPrefix = []byte("tier/slot/")
	countKey   = []byte("tier/count")
)

func tierKey(index uint64) []byte {
	buf := make([]byte, len(tierPrefix)+8)
	copy(buf, tierPrefix)
	binary.BigEndian.PutUint64(buf[len(tierPrefix):], index)
	return buf
}
