package factory

import "encoding/binary"

var (
	operatorPrefix   = []byte("factory/operator/")
	operatorCountKey = []byte("factory/operator-count")
	feeKey           = []byte("factory/fee")
)

func operatorKey(index uint64) []byte {
	buf := make([]byte, len(operatorPrefix)+8)
	copy(buf, operatorPrefix)
	binary.BigEndian.PutUint64(buf[len(operatorPrefix):], index)
	return buf
}
