package events

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/core/types"
)

const (
	// TypeOfferingCreated is emitted when the registry escrows a new sale.
	TypeOfferingCreated = "ido.created"
	// TypeOfferingConfigured is emitted for every accepted parameter setter.
	TypeOfferingConfigured = "ido.configured"
	// TypeOfferingFunded is emitted when a funder contributes payment tokens.
	TypeOfferingFunded = "ido.funded"
	// TypeOfferingClaimed is emitted when vested sale tokens are released.
	TypeOfferingClaimed = "ido.claimed"
	// TypeOfferingRefunded is emitted when a funder withdraws after failure.
	TypeOfferingRefunded = "ido.refunded"
	// TypeOfferingFinalized is emitted once the sale outcome is committed.
	TypeOfferingFinalized = "ido.finalized"
	// TypeOfferingEmergencyRefund is emitted when the owner aborts a sale.
	TypeOfferingEmergencyRefund = "ido.emergency_refund"
	// TypeOfferingSaleReclaimed is emitted when a failed sale's deposit is
	// returned to the creator.
	TypeOfferingSaleReclaimed = "ido.sale_reclaimed"
)

// OfferingCreated captures the escrow terms of a new offering.
type OfferingCreated struct {
	Offering     uint64
	Creator      common.Address
	SaleToken    common.Address
	PaymentToken common.Address
	SaleAmount   *big.Int
	TargetAmount *big.Int
}

// EventType satisfies the events.Event interface.
func (OfferingCreated) EventType() string { return TypeOfferingCreated }

// Event converts the payload into a broadcastable event.
func (e OfferingCreated) Event() *types.Event {
	return &types.Event{Type: TypeOfferingCreated, Attributes: map[string]string{
		"offering":     formatUint(e.Offering),
		"creator":      formatAddress(e.Creator),
		"saleToken":    formatAddress(e.SaleToken),
		"paymentToken": formatAddress(e.PaymentToken),
		"saleAmount":   formatAmount(e.SaleAmount),
		"targetAmount": formatAmount(e.TargetAmount),
	}}
}

// OfferingConfigured records a single accepted configuration change.
type OfferingConfigured struct {
	Offering uint64
	Caller   common.Address
	Field    string
	Value    string
}

// EventType satisfies the events.Event interface.
func (OfferingConfigured) EventType() string { return TypeOfferingConfigured }

// Event converts the payload into a broadcastable event.
func (e OfferingConfigured) Event() *types.Event {
	return &types.Event{Type: TypeOfferingConfigured, Attributes: map[string]string{
		"offering": formatUint(e.Offering),
		"caller":   formatAddress(e.Caller),
		"field":    e.Field,
		"value":    e.Value,
	}}
}

// OfferingFunded records an accepted contribution.
type OfferingFunded struct {
	Offering    uint64
	Funder      common.Address
	Amount      *big.Int
	Phase       string
	Funded      *big.Int
	TotalFunded *big.Int
}

// EventType satisfies the events.Event interface.
func (OfferingFunded) EventType() string { return TypeOfferingFunded }

// Event converts the payload into a broadcastable event.
func (e OfferingFunded) Event() *types.Event {
	return &types.Event{Type: TypeOfferingFunded, Attributes: map[string]string{
		"offering":    formatUint(e.Offering),
		"funder":      formatAddress(e.Funder),
		"amount":      formatAmount(e.Amount),
		"phase":       e.Phase,
		"funded":      formatAmount(e.Funded),
		"totalFunded": formatAmount(e.TotalFunded),
	}}
}

// OfferingClaimed records a vesting release.
type OfferingClaimed struct {
	Offering uint64
	Funder   common.Address
	Amount   *big.Int
	Claimed  *big.Int
}

// EventType satisfies the events.Event interface.
func (OfferingClaimed) EventType() string { return TypeOfferingClaimed }

// Event converts the payload into a broadcastable event.
func (e OfferingClaimed) Event() *types.Event {
	return &types.Event{Type: TypeOfferingClaimed, Attributes: map[string]string{
		"offering": formatUint(e.Offering),
		"funder":   formatAddress(e.Funder),
		"amount":   formatAmount(e.Amount),
		"claimed":  formatAmount(e.Claimed),
	}}
}

// OfferingRefunded records a failure refund.
type OfferingRefunded struct {
	Offering uint64
	Funder   common.Address
	Amount   *big.Int
}

// EventType satisfies the events.Event interface.
func (OfferingRefunded) EventType() string { return TypeOfferingRefunded }

// Event converts the payload into a broadcastable event.
func (e OfferingRefunded) Event() *types.Event {
	return &types.Event{Type: TypeOfferingRefunded, Attributes: map[string]string{
		"offering": formatUint(e.Offering),
		"funder":   formatAddress(e.Funder),
		"amount":   formatAmount(e.Amount),
	}}
}

// OfferingFinalized records the committed outcome and settlement.
type OfferingFinalized struct {
	Offering      uint64
	State         string
	TotalFunded   *big.Int
	FeePercent    uint64
	Fee           *big.Int
	FeeRecipient  common.Address
	Payout        *big.Int
	PayoutAddress common.Address
}

// EventType satisfies the events.Event interface.
func (OfferingFinalized) EventType() string { return TypeOfferingFinalized }

// Event converts the payload into a broadcastable event.
func (e OfferingFinalized) Event() *types.Event {
	return &types.Event{Type: TypeOfferingFinalized, Attributes: map[string]string{
		"offering":      formatUint(e.Offering),
		"state":         e.State,
		"totalFunded":   formatAmount(e.TotalFunded),
		"feePercent":    formatUint(e.FeePercent),
		"fee":           formatAmount(e.Fee),
		"feeRecipient":  formatAddress(e.FeeRecipient),
		"payout":        formatAmount(e.Payout),
		"payoutAddress": formatAddress(e.PayoutAddress),
	}}
}

// OfferingEmergencyRefund records an owner-forced failure.
type OfferingEmergencyRefund struct {
	Offering uint64
	Caller   common.Address
}

// EventType satisfies the events.Event interface.
func (OfferingEmergencyRefund) EventType() string { return TypeOfferingEmergencyRefund }

// Event converts the payload into a broadcastable event.
func (e OfferingEmergencyRefund) Event() *types.Event {
	return &types.Event{Type: TypeOfferingEmergencyRefund, Attributes: map[string]string{
		"offering": formatUint(e.Offering),
		"caller":   formatAddress(e.Caller),
	}}
}

// OfferingSaleReclaimed records the return of a failed sale's deposit.
type OfferingSaleReclaimed struct {
	Offering  uint64
	Recipient common.Address
	Amount    *big.Int
}

// EventType satisfies the events.Event interface.
func (OfferingSaleReclaimed) EventType() string { return TypeOfferingSaleReclaimed }

// Event converts the payload into a broadcastable event.
func (e OfferingSaleReclaimed) Event() *types.Event {
	return &types.Event{Type: TypeOfferingSaleReclaimed, Attributes: map[string]string{
		"offering":  formatUint(e.Offering),
		"recipient": formatAddress(e.Recipient),
		"amount":    formatAmount(e.Amount),
	}}
}
