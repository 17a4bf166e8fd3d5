package factory

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/core/events"
	nativecommon "launchpad/native/common"
	"launchpad/native/ido"
	"launchpad/native/tier"
)

const moduleName = "factory"

type registryState interface {
	HasRole(role string, addr []byte) bool
	GrantRole(role string, addr []byte) error
	RevokeRole(role string, addr []byte) error
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	Atomic(fn func() error) error
	AfterCommit(fn func())
}

// BalanceReader checks a creator's sale-token balance before escrow.
type BalanceReader interface {
	BalanceOf(token, holder common.Address) (*big.Int, error)
}

// TierLookup resolves multipliers from a point source.
type TierLookup interface {
	GetMultiplier(points tier.PointSource, holder common.Address) (uint64, error)
}

// Registry creates offerings, manages operators and the fee policy, and
// drives finalization.
type Registry struct {
	st        registryState
	offerings *ido.Engine
	tiers     TierLookup
	points    tier.PointSource
	balances  BalanceReader
	emitter   events.Emitter
	pauses    nativecommon.PauseView
}

// NewRegistry wires the registry to its collaborators and installs itself as
// the multiplier source of the offering engine.
func NewRegistry(st registryState, offerings *ido.Engine, tiers TierLookup, points tier.PointSource, balances BalanceReader) *Registry {
	r := &Registry{
		st:        st,
		offerings: offerings,
		tiers:     tiers,
		points:    points,
		balances:  balances,
		emitter:   events.NoopEmitter{},
	}
	if offerings != nil {
		offerings.SetMultiplierSource(r)
	}
	return r
}

// SetEmitter configures the event emitter used by the registry.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

func (r *Registry) SetPauses(p nativecommon.PauseView) {
	if r == nil {
		return
	}
	r.pauses = p
}

func (r *Registry) guard(caller common.Address, role string, denied error) error {
	if r == nil || r.st == nil || r.offerings == nil {
		return errNilState
	}
	if err := nativecommon.Guard(r.pauses, moduleName); err != nil {
		return err
	}
	return nativecommon.Authorize(r.st, role, caller, denied)
}

func (r *Registry) ownerOnly(caller common.Address) error {
	return r.guard(caller, nativecommon.RoleRegistryOwner, ErrNotOwner)
}

// InsertOperator grants the operator role and returns the operator slot.
func (r *Registry) InsertOperator(caller, operator common.Address) (uint64, error) {
	if err := r.ownerOnly(caller); err != nil {
		return 0, err
	}
	if operator == (common.Address{}) {
		return 0, ErrNullAddress
	}
	if r.IsOperator(operator) {
		return 0, ErrOperatorExists
	}
	var index uint64
	err := r.st.Atomic(func() error {
		count, err := r.operatorCount()
		if err != nil {
			return err
		}
		index = count
		if err := r.st.KVPut(operatorKey(index), &OperatorSlot{Operator: operator, Active: true}); err != nil {
			return err
		}
		if err := r.st.KVPut(operatorCountKey, count+1); err != nil {
			return err
		}
		if err := r.st.GrantRole(nativecommon.RoleOperator, operator.Bytes()); err != nil {
			return err
		}
		r.emit(events.OperatorChanged{Index: index, Operator: operator})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// RemoveOperator revokes the operator held in slot index.
func (r *Registry) RemoveOperator(caller common.Address, index uint64) error {
	if err := r.ownerOnly(caller); err != nil {
		return err
	}
	return r.st.Atomic(func() error {
		slot := new(OperatorSlot)
		ok, err := r.st.KVGet(operatorKey(index), slot)
		if err != nil {
			return err
		}
		if !ok || !slot.Active {
			return ErrOperatorIndex
		}
		slot.Active = false
		if err := r.st.KVPut(operatorKey(index), slot); err != nil {
			return err
		}
		if err := r.st.RevokeRole(nativecommon.RoleOperator, slot.Operator.Bytes()); err != nil {
			return err
		}
		r.emit(events.OperatorChanged{Index: index, Operator: slot.Operator, Removed: true})
		return nil
	})
}

// IsOperator reports whether addr currently holds the operator role.
func (r *Registry) IsOperator(addr common.Address) bool {
	if r == nil || r.st == nil {
		return false
	}
	return r.st.HasRole(nativecommon.RoleOperator, addr.Bytes())
}

// Operators lists the active operators in insertion order.
func (r *Registry) Operators() ([]common.Address, error) {
	if r == nil || r.st == nil {
		return nil, errNilState
	}
	count, err := r.operatorCount()
	if err != nil {
		return nil, err
	}
	out := make([]common.Address, 0, count)
	for i := uint64(0); i < count; i++ {
		slot := new(OperatorSlot)
		if _, err := r.st.KVGet(operatorKey(i), slot); err != nil {
			return nil, err
		}
		if slot.Active {
			out = append(out, slot.Operator)
		}
	}
	return out, nil
}

// CreateIDO escrows saleAmount of saleToken from the calling operator and
// appends a new offering.
func (r *Registry) CreateIDO(caller, saleToken common.Address, saleAmount *big.Int, paymentToken common.Address, targetAmount *big.Int) (uint64, error) {
	if err := r.guard(caller, nativecommon.RoleOperator, ErrNotOperator); err != nil {
		return 0, err
	}
	if saleAmount == nil || saleAmount.Sign() <= 0 || targetAmount == nil || targetAmount.Sign() <= 0 {
		return 0, ErrZeroAmount
	}
	if saleToken == (common.Address{}) || paymentToken == (common.Address{}) {
		return 0, ErrNullAddress
	}
	if r.balances != nil {
		balance, err := r.balances.BalanceOf(saleToken, caller)
		if err != nil {
			return 0, err
		}
		if balance.Cmp(saleAmount) < 0 {
			return 0, ErrBalanceNotEnough
		}
	}
	return r.offerings.Create(caller, saleToken, saleAmount, paymentToken, targetAmount)
}

// SetFeePercent updates the fee applied to future finalizations.
func (r *Registry) SetFeePercent(caller common.Address, percent uint64) error {
	if err := r.ownerOnly(caller); err != nil {
		return err
	}
	if percent == 0 {
		return ErrFeePercentZero
	}
	if percent > 100 {
		return ErrFeePercentTooHigh
	}
	return r.updateFee(func(cfg *FeeConfig) { cfg.Percent = percent })
}

// SetFeeRecipient updates the address receiving finalization fees.
func (r *Registry) SetFeeRecipient(caller, recipient common.Address) error {
	if err := r.ownerOnly(caller); err != nil {
		return err
	}
	if recipient == (common.Address{}) {
		return ErrNullFeeRecipient
	}
	return r.updateFee(func(cfg *FeeConfig) { cfg.Recipient = recipient })
}

func (r *Registry) updateFee(apply func(cfg *FeeConfig)) error {
	return r.st.Atomic(func() error {
		cfg, err := r.FeeConfig()
		if err != nil {
			return err
		}
		apply(cfg)
		if err := r.st.KVPut(feeKey, cfg); err != nil {
			return err
		}
		r.emit(events.FeeUpdated{FeePercent: cfg.Percent, FeeRecipient: cfg.Recipient})
		return nil
	})
}

// FeeConfig returns the current fee policy.
func (r *Registry) FeeConfig() (*FeeConfig, error) {
	if r == nil || r.st == nil {
		return nil, errNilState
	}
	cfg := new(FeeConfig)
	if _, err := r.st.KVGet(feeKey, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Count returns the number of offerings created.
func (r *Registry) Count() (uint64, error) {
	if r == nil || r.offerings == nil {
		return 0, errNilState
	}
	return r.offerings.Count()
}

// GetIDO returns the offering at index.
func (r *Registry) GetIDO(index uint64) (*ido.Offering, error) {
	if err := r.checkIndex(index); err != nil {
		return nil, err
	}
	return r.offerings.Get(index)
}

// FinalizeIDO commits the outcome of an ended offering using the current
// fee policy. payout receives the raise net of fees on success.
func (r *Registry) FinalizeIDO(caller common.Address, index uint64, payout common.Address) (*ido.Settlement, error) {
	if err := r.ownerOnly(caller); err != nil {
		return nil, err
	}
	if err := r.checkIndex(index); err != nil {
		return nil, err
	}
	cfg, err := r.FeeConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Percent == 0 {
		return nil, ErrFeePercentUnset
	}
	if cfg.Recipient == (common.Address{}) {
		return nil, ErrFeeRecipientUnset
	}
	if payout == (common.Address{}) {
		return nil, ErrNullPayout
	}
	return r.offerings.Finalize(index, cfg.Percent, cfg.Recipient, payout)
}

// EmergencyRefund forces a WAITING offering into FAILURE.
func (r *Registry) EmergencyRefund(caller common.Address, index uint64) error {
	if err := r.ownerOnly(caller); err != nil {
		return err
	}
	if err := r.checkIndex(index); err != nil {
		return err
	}
	return r.offerings.ForceFailure(index, caller)
}

// ReclaimSaleTokens returns a failed offering's sale deposit to its creator.
func (r *Registry) ReclaimSaleTokens(caller common.Address, index uint64) (*big.Int, error) {
	if err := r.ownerOnly(caller); err != nil {
		return nil, err
	}
	if err := r.checkIndex(index); err != nil {
		return nil, err
	}
	return r.offerings.ReclaimSale(index)
}

// GetMultiplier resolves the tier multiplier of holder from its point score.
func (r *Registry) GetMultiplier(holder common.Address) (uint64, error) {
	if r == nil || r.tiers == nil || r.points == nil {
		return tier.DefaultMultiplier, nil
	}
	return r.tiers.GetMultiplier(r.points, holder)
}

func (r *Registry) checkIndex(index uint64) error {
	count, err := r.Count()
	if err != nil {
		return err
	}
	if index >= count {
		return ErrIDOIndex
	}
	return nil
}

func (r *Registry) operatorCount() (uint64, error) {
	var count uint64
	if _, err := r.st.KVGet(operatorCountKey, &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Registry) emit(evt events.Event) {
	if r.emitter == nil || evt == nil {
		return
	}
	r.st.AfterCommit(func() { r.emitter.Emit(evt) })
}
