package ido

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// State is the lifecycle of an offering. WAITING is the only non-terminal
// state.
type State uint8

const (
	StateWaiting State = iota
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "WAITING"
	case StateSuccess:
		return "SUCCESS"
	case StateFailure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Phase names the funding sub-window active at a given instant.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseTier      Phase = "tier"
	PhaseWhitelist Phase = "whitelist"
	PhasePublic    Phase = "public"
	PhaseClosed    Phase = "closed"
)

// VestInfo describes the release schedule of a successful sale.
type VestInfo struct {
	TGEPercent  uint64
	CliffTime   uint64
	Duration    uint64
	Periodicity uint64
}

// Offering is the persisted record of a single sale.
type Offering struct {
	Index        uint64
	Creator      common.Address
	Custody      common.Address
	SaleToken    common.Address
	PaymentToken common.Address
	SaleAmount   *big.Int
	TargetAmount *big.Int

	StartTime uint64
	EndTime   uint64
	ClaimTime uint64
	Vest      VestInfo

	BaseAmount       *big.Int
	MaxAmountPerUser *big.Int

	TotalFunded *big.Int
	State       State

	FeePercent    uint64
	FeeRecipient  common.Address
	PayoutAddress common.Address
	FinalizedAt   uint64
	SaleReclaimed bool
	CreatedAt     uint64
}

// ConfigLocked reports whether parameter mutation is closed at now.
func (o *Offering) ConfigLocked(now uint64) bool {
	return !timeAllowsConfig(now, o.StartTime)
}

func (o *Offering) clone() *Offering {
	if o == nil {
		return nil
	}
	out := *o
	out.SaleAmount = cloneBigInt(o.SaleAmount)
	out.TargetAmount = cloneBigInt(o.TargetAmount)
	out.BaseAmount = cloneBigInt(o.BaseAmount)
	out.MaxAmountPerUser = cloneBigInt(o.MaxAmountPerUser)
	out.TotalFunded = cloneBigInt(o.TotalFunded)
	return &out
}

// Account holds one address's ledgers for an offering.
type Account struct {
	Whitelist *big.Int
	Funded    *big.Int
	Claimed   *big.Int
	Refunded  bool
}

func newAccount() *Account {
	return &Account{Whitelist: big.NewInt(0), Funded: big.NewInt(0), Claimed: big.NewInt(0)}
}

func (a *Account) normalize() {
	if a.Whitelist == nil {
		a.Whitelist = big.NewInt(0)
	}
	if a.Funded == nil {
		a.Funded = big.NewInt(0)
	}
	if a.Claimed == nil {
		a.Claimed = big.NewInt(0)
	}
}

func (a *Account) clone() *Account {
	if a == nil {
		return nil
	}
	return &Account{
		Whitelist: cloneBigInt(a.Whitelist),
		Funded:    cloneBigInt(a.Funded),
		Claimed:   cloneBigInt(a.Claimed),
		Refunded:  a.Refunded,
	}
}

// Settlement summarises the outcome of a finalization.
type Settlement struct {
	Index         uint64
	State         State
	TotalFunded   *big.Int
	FeePercent    uint64
	Fee           *big.Int
	FeeRecipient  common.Address
	Payout        *big.Int
	PayoutAddress common.Address
}

// Params holds the module parameters shared by every offering.
type Params struct {
	// TierWindow is the length of the tier-only phase, in seconds from
	// the start time.
	TierWindow uint64
	// WhitelistWindow is the end of the whitelist phase, in seconds from
	// the start time.
	WhitelistWindow uint64
}

// DefaultParams returns the standard eight hour tier phase followed by an
// eight hour whitelist phase.
func DefaultParams() Params {
	return Params{TierWindow: 8 * 60 * 60, WhitelistWindow: 16 * 60 * 60}
}

// Validate checks the window ordering.
func (p Params) Validate() error {
	if p.WhitelistWindow < p.TierWindow {
		return ErrInvalidWindows
	}
	return nil
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
