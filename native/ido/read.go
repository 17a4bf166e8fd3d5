package ido

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Get returns a snapshot of the offering at index.
func (e *Engine) Get(index uint64) (*Offering, error) {
	if e == nil || e.st == nil {
		return nil, errNilState
	}
	o, err := e.load(index)
	if err != nil {
		return nil, err
	}
	return o.clone(), nil
}

// Count returns the number of offerings ever created.
func (e *Engine) Count() (uint64, error) {
	if e == nil || e.st == nil {
		return 0, errNilState
	}
	return e.count()
}

// State returns the lifecycle state of the offering.
func (e *Engine) State(index uint64) (State, error) {
	o, err := e.Get(index)
	if err != nil {
		return StateWaiting, err
	}
	return o.State, nil
}

// Account returns the ledgers of addr for the offering.
func (e *Engine) Account(index uint64, addr common.Address) (*Account, error) {
	if _, err := e.Get(index); err != nil {
		return nil, err
	}
	acct, err := e.loadAccount(index, addr)
	if err != nil {
		return nil, err
	}
	return acct.clone(), nil
}

// Funded returns the cumulative contribution of addr.
func (e *Engine) Funded(index uint64, addr common.Address) (*big.Int, error) {
	acct, err := e.Account(index, addr)
	if err != nil {
		return nil, err
	}
	return acct.Funded, nil
}

// Claimed returns the sale tokens already released to addr.
func (e *Engine) Claimed(index uint64, addr common.Address) (*big.Int, error) {
	acct, err := e.Account(index, addr)
	if err != nil {
		return nil, err
	}
	return acct.Claimed, nil
}

// Refunded reports whether addr withdrew its failure refund.
func (e *Engine) Refunded(index uint64, addr common.Address) (bool, error) {
	acct, err := e.Account(index, addr)
	if err != nil {
		return false, err
	}
	return acct.Refunded, nil
}

// Whitelist returns the whitelist-phase allowance of addr.
func (e *Engine) Whitelist(index uint64, addr common.Address) (*big.Int, error) {
	acct, err := e.Account(index, addr)
	if err != nil {
		return nil, err
	}
	return acct.Whitelist, nil
}

// Allocation returns addr's proportional share of the sale pool.
func (e *Engine) Allocation(index uint64, addr common.Address) (*big.Int, error) {
	o, err := e.Get(index)
	if err != nil {
		return nil, err
	}
	acct, err := e.loadAccount(index, addr)
	if err != nil {
		return nil, err
	}
	return allocation(acct.Funded, o.SaleAmount, o.TotalFunded)
}

// Claimable returns the unlocked but unclaimed sale tokens of addr. It is
// zero unless the offering succeeded.
func (e *Engine) Claimable(index uint64, addr common.Address) (*big.Int, error) {
	o, err := e.Get(index)
	if err != nil {
		return nil, err
	}
	if o.State != StateSuccess {
		return big.NewInt(0), nil
	}
	acct, err := e.loadAccount(index, addr)
	if err != nil {
		return nil, err
	}
	return claimable(o, acct, e.now())
}

// Phase returns the funding sub-window active now.
func (e *Engine) Phase(index uint64) (Phase, error) {
	o, err := e.Get(index)
	if err != nil {
		return PhaseClosed, err
	}
	return phaseAt(o, e.params, e.now()), nil
}

// Cap returns how much addr may still fund in the current phase.
func (e *Engine) Cap(index uint64, addr common.Address) (*big.Int, error) {
	o, err := e.Get(index)
	if err != nil {
		return nil, err
	}
	phase := phaseAt(o, e.params, e.now())
	acct, err := e.loadAccount(index, addr)
	if err != nil {
		return nil, err
	}
	multiplier, err := e.multiplierFor(phase, addr)
	if err != nil {
		return nil, err
	}
	return remainingCap(o, phase, multiplier, acct), nil
}

// Funders lists funding addresses in first-fund order.
func (e *Engine) Funders(index uint64) ([]common.Address, error) {
	if _, err := e.Get(index); err != nil {
		return nil, err
	}
	var raw [][]byte
	if err := e.st.KVGetList(fundersKey(index), &raw); err != nil {
		return nil, err
	}
	out := make([]common.Address, 0, len(raw))
	for _, b := range raw {
		out = append(out, common.BytesToAddress(b))
	}
	return out, nil
}
