package events

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/core/types"
)

const (
	TypeOperatorAdded       = "factory.operator_added"
	TypeOperatorRemoved     = "factory.operator_removed"
	TypeFeeUpdated          = "factory.fee_updated"
	TypeTierInserted        = "tier.inserted"
	TypeTierUpdated         = "tier.updated"
	TypeTierRemoved         = "tier.removed"
	TypePointTokenInserted  = "point.token_inserted"
	TypePointTokenRemoved   = "point.token_removed"
	TypePointDecimalUpdated = "point.decimal_updated"
	TypeTokenTransfer       = "token.transfer"
)

// OperatorChanged covers operator insertion and removal.
type OperatorChanged struct {
	Index    uint64
	Operator common.Address
	Removed  bool
}

// EventType satisfies the events.Event interface.
func (e OperatorChanged) EventType() string {
	if e.Removed {
		return TypeOperatorRemoved
	}
	return TypeOperatorAdded
}

// Event converts the payload into a broadcastable event.
func (e OperatorChanged) Event() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"index":    formatUint(e.Index),
		"operator": formatAddress(e.Operator),
	}}
}

// FeeUpdated records a change of the registry fee policy.
type FeeUpdated struct {
	FeePercent   uint64
	FeeRecipient common.Address
}

// EventType satisfies the events.Event interface.
func (FeeUpdated) EventType() string { return TypeFeeUpdated }

// Event converts the payload into a broadcastable event.
func (e FeeUpdated) Event() *types.Event {
	attrs := map[string]string{"feePercent": formatUint(e.FeePercent)}
	if e.FeeRecipient != (common.Address{}) {
		attrs["feeRecipient"] = formatAddress(e.FeeRecipient)
	}
	return &types.Event{Type: TypeFeeUpdated, Attributes: attrs}
}

// TierChanged covers insertion, update and removal of a tier slot.
type TierChanged struct {
	Type       string
	Index      uint64
	Name       string
	Threshold  *big.Int
	Multiplier uint64
}

// EventType satisfies the events.Event interface.
func (e TierChanged) EventType() string { return e.Type }

// Event converts the payload into a broadcastable event.
func (e TierChanged) Event() *types.Event {
	return &types.Event{Type: e.Type, Attributes: map[string]string{
		"index":      formatUint(e.Index),
		"name":       e.Name,
		"threshold":  formatAmount(e.Threshold),
		"multiplier": formatUint(e.Multiplier),
	}}
}

// PointTokenChanged covers insertion and removal of a scored token.
type PointTokenChanged struct {
	Index   uint64
	Token   common.Address
	Weight  *big.Int
	Removed bool
}

// EventType satisfies the events.Event interface.
func (e PointTokenChanged) EventType() string {
	if e.Removed {
		return TypePointTokenRemoved
	}
	return TypePointTokenInserted
}

// Event converts the payload into a broadcastable event.
func (e PointTokenChanged) Event() *types.Event {
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{
		"index":  formatUint(e.Index),
		"token":  formatAddress(e.Token),
		"weight": formatAmount(e.Weight),
	}}
}

// PointDecimalUpdated records a new scaling exponent.
type PointDecimalUpdated struct {
	Decimal uint64
}

// EventType satisfies the events.Event interface.
func (PointDecimalUpdated) EventType() string { return TypePointDecimalUpdated }

// Event converts the payload into a broadcastable event.
func (e PointDecimalUpdated) Event() *types.Event {
	return &types.Event{Type: TypePointDecimalUpdated, Attributes: map[string]string{
		"decimal": formatUint(e.Decimal),
	}}
}

// TokenTransfer records a ledger balance movement.
type TokenTransfer struct {
	Token  common.Address
	Symbol string
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// EventType satisfies the events.Event interface.
func (TokenTransfer) EventType() string { return TypeTokenTransfer }

// Event converts the payload into a broadcastable event.
func (e TokenTransfer) Event() *types.Event {
	attrs := map[string]string{
		"token":  formatAddress(e.Token),
		"from":   formatAddress(e.From),
		"to":     formatAddress(e.To),
		"amount": formatAmount(e.Amount),
	}
	if e.Symbol != "" {
		attrs["symbol"] = e.Symbol
	}
	return &types.Event{Type: TypeTokenTransfer, Attributes: attrs}
}
