package ido

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/core/events"
	nativecommon "launchpad/native/common"
)

const moduleName = "ido"

type engineState interface {
	HasRole(role string, addr []byte) bool
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVAppend(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
	Atomic(fn func() error) error
	AfterCommit(fn func())
}

// TokenLedger moves sale and payment tokens. A failed move aborts the
// enclosing operation.
type TokenLedger interface {
	BalanceOf(token, holder common.Address) (*big.Int, error)
	Transfer(token, from, to common.Address, amount *big.Int) error
	TransferFrom(token, spender, from, to common.Address, amount *big.Int) error
}

// MultiplierSource resolves the tier multiplier of a funder.
type MultiplierSource interface {
	GetMultiplier(holder common.Address) (uint64, error)
}

// Engine runs the offering state machine for every sale created by the
// registry.
type Engine struct {
	st          engineState
	tokens      TokenLedger
	multipliers MultiplierSource
	emitter     events.Emitter
	pauses      nativecommon.PauseView
	params      Params
	nowFn       func() int64
}

// NewEngine constructs an offering engine with default parameters.
func NewEngine(st engineState, tokens TokenLedger) *Engine {
	return &Engine{
		st:      st,
		tokens:  tokens,
		emitter: events.NoopEmitter{},
		params:  DefaultParams(),
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetMultiplierSource wires the tier lookup consulted during funding.
func (e *Engine) SetMultiplierSource(src MultiplierSource) { e.multipliers = src }

func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetParams replaces the phase windows.
func (e *Engine) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.params = p
	return nil
}

// Params returns the active phase windows.
func (e *Engine) Params() Params { return e.params }

// NowTime exposes the engine clock as unix seconds.
func (e *Engine) NowTime() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) now() uint64 {
	now := e.NowTime()
	if now < 0 {
		return 0
	}
	return uint64(now)
}

func (e *Engine) ready() error {
	if e == nil || e.st == nil {
		return errNilState
	}
	if e.tokens == nil {
		return errNilTokens
	}
	return nil
}

// Create escrows saleAmount of saleToken from creator and appends a new
// WAITING offering with unset timing. Callers authorise creator.
func (e *Engine) Create(creator, saleToken common.Address, saleAmount *big.Int, paymentToken common.Address, targetAmount *big.Int) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if saleAmount == nil || saleAmount.Sign() <= 0 || targetAmount == nil || targetAmount.Sign() <= 0 {
		return 0, ErrZeroAmount
	}
	if saleToken == (common.Address{}) || paymentToken == (common.Address{}) || creator == (common.Address{}) {
		return 0, ErrNullAddress
	}
	var index uint64
	err := e.st.Atomic(func() error {
		count, err := e.count()
		if err != nil {
			return err
		}
		index = count
		offering := &Offering{
			Index:            index,
			Creator:          creator,
			Custody:          CustodyAddress(index),
			SaleToken:        saleToken,
			PaymentToken:     paymentToken,
			SaleAmount:       new(big.Int).Set(saleAmount),
			TargetAmount:     new(big.Int).Set(targetAmount),
			BaseAmount:       big.NewInt(0),
			MaxAmountPerUser: big.NewInt(0),
			TotalFunded:      big.NewInt(0),
			State:            StateWaiting,
			CreatedAt:        e.now(),
		}
		if err := e.tokens.Transfer(saleToken, creator, offering.Custody, saleAmount); err != nil {
			return err
		}
		if err := e.store(offering); err != nil {
			return err
		}
		if err := e.st.KVPut(countKey, count+1); err != nil {
			return err
		}
		e.emit(events.OfferingCreated{
			Offering:     index,
			Creator:      creator,
			SaleToken:    saleToken,
			PaymentToken: paymentToken,
			SaleAmount:   new(big.Int).Set(saleAmount),
			TargetAmount: new(big.Int).Set(targetAmount),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// Fund pulls amount of the payment token from funder into custody. The
// funder must have approved the offering's custody address.
func (e *Engine) Fund(index uint64, funder common.Address, amount *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	return e.st.Atomic(func() error {
		o, err := e.load(index)
		if err != nil {
			return err
		}
		if o.State != StateWaiting {
			return ErrCannotFund
		}
		now := e.now()
		if o.StartTime == 0 || now < o.StartTime {
			return ErrTimeNotYet
		}
		if now >= o.EndTime {
			return ErrTimePassed
		}
		rest := new(big.Int).Sub(o.TargetAmount, o.TotalFunded)
		if amount.Cmp(rest) > 0 {
			return ErrExceedsRest
		}
		acct, err := e.loadAccount(index, funder)
		if err != nil {
			return err
		}
		phase := phaseAt(o, e.params, now)
		multiplier, err := e.multiplierFor(phase, funder)
		if err != nil {
			return err
		}
		if amount.Cmp(remainingCap(o, phase, multiplier, acct)) > 0 {
			return ErrFundTooMuch
		}
		if err := e.tokens.TransferFrom(o.PaymentToken, o.Custody, funder, o.Custody, amount); err != nil {
			return err
		}
		acct.Funded.Add(acct.Funded, amount)
		o.TotalFunded.Add(o.TotalFunded, amount)
		if err := e.storeAccount(index, funder, acct); err != nil {
			return err
		}
		if err := e.store(o); err != nil {
			return err
		}
		if err := e.st.KVAppend(fundersKey(index), funder.Bytes()); err != nil {
			return err
		}
		e.emit(events.OfferingFunded{
			Offering:    index,
			Funder:      funder,
			Amount:      new(big.Int).Set(amount),
			Phase:       string(phase),
			Funded:      new(big.Int).Set(acct.Funded),
			TotalFunded: new(big.Int).Set(o.TotalFunded),
		})
		return nil
	})
}

// Claim releases amount of vested sale tokens to funder.
func (e *Engine) Claim(index uint64, funder common.Address, amount *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	return e.st.Atomic(func() error {
		o, err := e.load(index)
		if err != nil {
			return err
		}
		if o.State != StateSuccess {
			return ErrNotSuccess
		}
		now := e.now()
		if now < o.ClaimTime {
			return ErrClaimNotYet
		}
		if amount == nil || amount.Sign() <= 0 {
			return ErrZeroAmount
		}
		acct, err := e.loadAccount(index, funder)
		if err != nil {
			return err
		}
		available, err := claimable(o, acct, now)
		if err != nil {
			return err
		}
		if amount.Cmp(available) > 0 {
			return ErrClaimExceeds
		}
		if err := e.tokens.Transfer(o.SaleToken, o.Custody, funder, amount); err != nil {
			return err
		}
		acct.Claimed.Add(acct.Claimed, amount)
		if err := e.storeAccount(index, funder, acct); err != nil {
			return err
		}
		e.emit(events.OfferingClaimed{
			Offering: index,
			Funder:   funder,
			Amount:   new(big.Int).Set(amount),
			Claimed:  new(big.Int).Set(acct.Claimed),
		})
		return nil
	})
}

// Refund returns a funder's full contribution after a failed sale. Each
// address is refunded at most once.
func (e *Engine) Refund(index uint64, funder common.Address) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	var refunded *big.Int
	err := e.st.Atomic(func() error {
		o, err := e.load(index)
		if err != nil {
			return err
		}
		if o.State != StateFailure {
			return ErrNotFailure
		}
		acct, err := e.loadAccount(index, funder)
		if err != nil {
			return err
		}
		if acct.Refunded {
			return ErrRefunded
		}
		if acct.Funded.Sign() == 0 {
			return ErrDidNotFund
		}
		if err := e.tokens.Transfer(o.PaymentToken, o.Custody, funder, acct.Funded); err != nil {
			return err
		}
		acct.Refunded = true
		if err := e.storeAccount(index, funder, acct); err != nil {
			return err
		}
		refunded = new(big.Int).Set(acct.Funded)
		e.emit(events.OfferingRefunded{Offering: index, Funder: funder, Amount: new(big.Int).Set(refunded)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refunded, nil
}

// Finalize commits the outcome of an ended offering and, on success, pays
// the fee and the remaining raise out of custody. The fee terms are
// snapshotted into the offering. Callers authorise the registry owner and
// validate the fee configuration.
func (e *Engine) Finalize(index uint64, feePercent uint64, feeRecipient, payout common.Address) (*Settlement, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if payout == (common.Address{}) || feeRecipient == (common.Address{}) {
		return nil, ErrNullAddress
	}
	var settlement *Settlement
	err := e.st.Atomic(func() error {
		o, err := e.load(index)
		if err != nil {
			return err
		}
		now := e.now()
		if now < o.EndTime {
			return ErrNotEnded
		}
		if o.State != StateWaiting {
			return ErrAlreadyEnded
		}
		o.FeePercent = feePercent
		o.FeeRecipient = feeRecipient
		o.PayoutAddress = payout
		o.FinalizedAt = now
		settlement = &Settlement{
			Index:         index,
			TotalFunded:   new(big.Int).Set(o.TotalFunded),
			FeePercent:    feePercent,
			Fee:           big.NewInt(0),
			FeeRecipient:  feeRecipient,
			Payout:        big.NewInt(0),
			PayoutAddress: payout,
		}
		if o.TotalFunded.Cmp(o.TargetAmount) >= 0 {
			o.State = StateSuccess
			cut, err := fee(o.TotalFunded, feePercent)
			if err != nil {
				return err
			}
			remainder := new(big.Int).Sub(o.TotalFunded, cut)
			if err := e.tokens.Transfer(o.PaymentToken, o.Custody, feeRecipient, cut); err != nil {
				return err
			}
			if err := e.tokens.Transfer(o.PaymentToken, o.Custody, payout, remainder); err != nil {
				return err
			}
			settlement.Fee = cut
			settlement.Payout = remainder
		} else {
			o.State = StateFailure
		}
		settlement.State = o.State
		if err := e.store(o); err != nil {
			return err
		}
		e.emit(events.OfferingFinalized{
			Offering:      index,
			State:         o.State.String(),
			TotalFunded:   new(big.Int).Set(settlement.TotalFunded),
			FeePercent:    feePercent,
			Fee:           new(big.Int).Set(settlement.Fee),
			FeeRecipient:  feeRecipient,
			Payout:        new(big.Int).Set(settlement.Payout),
			PayoutAddress: payout,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

// ForceFailure moves a WAITING offering to FAILURE regardless of timing so
// existing funders can refund. Offerings that already left WAITING fail with
// ErrAlreadyEnded.
func (e *Engine) ForceFailure(index uint64, caller common.Address) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.st.Atomic(func() error {
		o, err := e.load(index)
		if err != nil {
			return err
		}
		if o.State != StateWaiting {
			return ErrAlreadyEnded
		}
		o.State = StateFailure
		o.FinalizedAt = e.now()
		if err := e.store(o); err != nil {
			return err
		}
		e.emit(events.OfferingEmergencyRefund{Offering: index, Caller: caller})
		return nil
	})
}

// ReclaimSale returns the sale deposit of a failed offering to its creator.
func (e *Engine) ReclaimSale(index uint64) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	var amount *big.Int
	err := e.st.Atomic(func() error {
		o, err := e.load(index)
		if err != nil {
			return err
		}
		if o.State != StateFailure {
			return ErrNotFailure
		}
		if o.SaleReclaimed {
			return ErrSaleReclaimed
		}
		if err := e.tokens.Transfer(o.SaleToken, o.Custody, o.Creator, o.SaleAmount); err != nil {
			return err
		}
		o.SaleReclaimed = true
		if err := e.store(o); err != nil {
			return err
		}
		amount = new(big.Int).Set(o.SaleAmount)
		e.emit(events.OfferingSaleReclaimed{Offering: index, Recipient: o.Creator, Amount: new(big.Int).Set(amount)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

func (e *Engine) multiplierFor(phase Phase, funder common.Address) (uint64, error) {
	if phase != PhaseTier && phase != PhaseWhitelist {
		return 1, nil
	}
	if e.multipliers == nil {
		return 1, nil
	}
	m, err := e.multipliers.GetMultiplier(funder)
	if err != nil {
		return 0, err
	}
	if m == 0 {
		return 1, nil
	}
	return m, nil
}

func claimable(o *Offering, acct *Account, now uint64) (*big.Int, error) {
	alloc, err := allocation(acct.Funded, o.SaleAmount, o.TotalFunded)
	if err != nil {
		return nil, err
	}
	released, err := unlocked(alloc, o.Vest, o.ClaimTime, now)
	if err != nil {
		return nil, err
	}
	rest := released.Sub(released, acct.Claimed)
	if rest.Sign() < 0 {
		return big.NewInt(0), nil
	}
	return rest, nil
}

func (e *Engine) count() (uint64, error) {
	var count uint64
	if _, err := e.st.KVGet(countKey, &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (e *Engine) load(index uint64) (*Offering, error) {
	o := new(Offering)
	ok, err := e.st.KVGet(offeringKey(index), o)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidIndex
	}
	o.SaleAmount = cloneBigInt(o.SaleAmount)
	o.TargetAmount = cloneBigInt(o.TargetAmount)
	o.BaseAmount = cloneBigInt(o.BaseAmount)
	o.MaxAmountPerUser = cloneBigInt(o.MaxAmountPerUser)
	o.TotalFunded = cloneBigInt(o.TotalFunded)
	return o, nil
}

func (e *Engine) store(o *Offering) error {
	return e.st.KVPut(offeringKey(o.Index), o)
}

func (e *Engine) loadAccount(index uint64, addr common.Address) (*Account, error) {
	acct := newAccount()
	if _, err := e.st.KVGet(accountKey(index, addr), acct); err != nil {
		return nil, err
	}
	acct.normalize()
	return acct, nil
}

func (e *Engine) storeAccount(index uint64, addr common.Address, acct *Account) error {
	return e.st.KVPut(accountKey(index, addr), acct)
}

func (e *Engine) emit(evt events.Event) {
	if e.emitter == nil || evt == nil {
		return
	}
	e.st.AfterCommit(func() { e.emitter.Emit(evt) })
}
