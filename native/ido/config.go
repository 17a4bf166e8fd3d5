package ido

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/core/events"
	nativecommon "launchpad/native/common"
)

// configure is the entry guard shared by every parameter setter: it checks
// pauses and the operator role, loads the offering and enforces the config
// window before apply runs inside one atomic unit.
func (e *Engine) configure(caller common.Address, index uint64, field string, apply func(o *Offering, now uint64) (string, error)) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := nativecommon.Authorize(e.st, nativecommon.RoleOperator, caller, ErrNotOperator); err != nil {
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
		now := e.now()
		if !timeAllowsConfig(now, o.StartTime) {
			return ErrTimeOut
		}
		value, err := apply(o, now)
		if err != nil {
			return err
		}
		if err := e.store(o); err != nil {
			return err
		}
		e.emit(events.OfferingConfigured{Offering: index, Caller: caller, Field: field, Value: value})
		return nil
	})
}

// SetStartTime schedules the opening of funding. The start may not lie in
// the past and must precede a configured end time.
func (e *Engine) SetStartTime(caller common.Address, index uint64, start uint64) error {
	return e.configure(caller, index, "startTime", func(o *Offering, now uint64) (string, error) {
		if start < now {
			return "", ErrStartInPast
		}
		if o.EndTime != 0 && o.EndTime <= start {
			return "", ErrEndBeforeStart
		}
		o.StartTime = start
		return formatUint(start), nil
	})
}

// SetEndTime sets the funding deadline.
func (e *Engine) SetEndTime(caller common.Address, index uint64, end uint64) error {
	return e.configure(caller, index, "endTime", func(o *Offering, _ uint64) (string, error) {
		if end <= o.StartTime {
			return "", ErrEndBeforeStart
		}
		if o.ClaimTime != 0 && o.ClaimTime <= end {
			return "", ErrClaimBeforeEnd
		}
		o.EndTime = end
		return formatUint(end), nil
	})
}

// SetClaimTime sets the TGE instant.
func (e *Engine) SetClaimTime(caller common.Address, index uint64, claim uint64) error {
	return e.configure(caller, index, "claimTime", func(o *Offering, _ uint64) (string, error) {
		if claim <= o.EndTime {
			return "", ErrClaimBeforeEnd
		}
		if o.Vest.CliffTime != 0 && o.Vest.CliffTime <= claim {
			return "", ErrCliffBeforeTGE
		}
		o.ClaimTime = claim
		return formatUint(claim), nil
	})
}

// SetVestInfo sets the release schedule.
func (e *Engine) SetVestInfo(caller common.Address, index uint64, vest VestInfo) error {
	return e.configure(caller, index, "vestInfo", func(o *Offering, _ uint64) (string, error) {
		if vest.TGEPercent > 100 {
			return "", ErrTGETooHigh
		}
		if vest.CliffTime <= o.ClaimTime {
			return "", ErrCliffBeforeTGE
		}
		if vest.Periodicity == 0 {
			return "", ErrZeroPeriodicity
		}
		if vest.Duration%vest.Periodicity != 0 {
			return "", ErrDurationPeriod
		}
		o.Vest = vest
		return fmt.Sprintf("tge=%d cliff=%d duration=%d periodicity=%d",
			vest.TGEPercent, vest.CliffTime, vest.Duration, vest.Periodicity), nil
	})
}

// SetBaseAmount sets the per-user allowance before multiplier scaling.
func (e *Engine) SetBaseAmount(caller common.Address, index uint64, amount *big.Int) error {
	return e.configure(caller, index, "baseAmount", func(o *Offering, _ uint64) (string, error) {
		if amount == nil || amount.Sign() < 0 {
			return "", ErrNegativeAmount
		}
		o.BaseAmount = new(big.Int).Set(amount)
		return amount.String(), nil
	})
}

// SetMaxAmountPerUser sets the hard per-address ceiling across phases.
func (e *Engine) SetMaxAmountPerUser(caller common.Address, index uint64, amount *big.Int) error {
	return e.configure(caller, index, "maxAmountPerUser", func(o *Offering, _ uint64) (string, error) {
		if amount == nil || amount.Sign() < 0 {
			return "", ErrNegativeAmount
		}
		o.MaxAmountPerUser = new(big.Int).Set(amount)
		return amount.String(), nil
	})
}

// SetSaleInfo replaces the sale pool and funding target. Custody follows
// the pool: an increase is pulled from the creator, who must have approved
// the custody address unless they are the caller, and a decrease is
// returned to the creator.
func (e *Engine) SetSaleInfo(caller common.Address, index uint64, saleAmount, targetAmount *big.Int) error {
	return e.configure(caller, index, "saleInfo", func(o *Offering, _ uint64) (string, error) {
		if saleAmount == nil || saleAmount.Sign() <= 0 || targetAmount == nil || targetAmount.Sign() <= 0 {
			return "", ErrZeroAmount
		}
		diff := new(big.Int).Sub(saleAmount, o.SaleAmount)
		switch diff.Sign() {
		case 1:
			var err error
			if caller == o.Creator {
				err = e.tokens.Transfer(o.SaleToken, o.Creator, o.Custody, diff)
			} else {
				err = e.tokens.TransferFrom(o.SaleToken, o.Custody, o.Creator, o.Custody, diff)
			}
			if err != nil {
				return "", err
			}
		case -1:
			if err := e.tokens.Transfer(o.SaleToken, o.Custody, o.Creator, diff.Neg(diff)); err != nil {
				return "", err
			}
		}
		o.SaleAmount = new(big.Int).Set(saleAmount)
		o.TargetAmount = new(big.Int).Set(targetAmount)
		return fmt.Sprintf("sale=%s target=%s", saleAmount, targetAmount), nil
	})
}

// SetWhitelistAmount sets the whitelist-phase allowance of one address.
func (e *Engine) SetWhitelistAmount(caller common.Address, index uint64, addr common.Address, amount *big.Int) error {
	return e.SetWhitelistAmounts(caller, index, []common.Address{addr}, []*big.Int{amount})
}

// SetWhitelistAmounts sets whitelist allowances from parallel slices.
func (e *Engine) SetWhitelistAmounts(caller common.Address, index uint64, addrs []common.Address, amounts []*big.Int) error {
	if len(addrs) != len(amounts) {
		return ErrLengthMismatch
	}
	return e.configure(caller, index, "whitelist", func(o *Offering, _ uint64) (string, error) {
		entries := make([]string, 0, len(addrs))
		for i, addr := range addrs {
			amount := amounts[i]
			if addr == (common.Address{}) {
				return "", ErrNullAddress
			}
			if amount == nil || amount.Sign() < 0 {
				return "", ErrNegativeAmount
			}
			acct, err := e.loadAccount(o.Index, addr)
			if err != nil {
				return "", err
			}
			acct.Whitelist = new(big.Int).Set(amount)
			if err := e.storeAccount(o.Index, addr, acct); err != nil {
				return "", err
			}
			entries = append(entries, addr.Hex()+"="+amount.String())
		}
		return strings.Join(entries, ","), nil
	})
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
