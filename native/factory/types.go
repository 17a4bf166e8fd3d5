package factory

import "github.com/ethereum/go-ethereum/common"

// FeeConfig is the registry-wide fee policy. It is read at finalization
// time and snapshotted into the offering.
type FeeConfig struct {
	Percent   uint64
	Recipient common.Address
}

// OperatorSlot is one entry of the append-only operator table.
type OperatorSlot struct {
	Operator common.Address
	Active   bool
}
