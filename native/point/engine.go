package point

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/core/events"
	nativecommon "launchpad/native/common"
)

const moduleName = "point"

type engineState interface {
	HasRole(role string, addr []byte) bool
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	Atomic(fn func() error) error
	AfterCommit(fn func())
}

// BalanceReader exposes the token balances the score is computed from.
type BalanceReader interface {
	BalanceOf(token, holder common.Address) (*big.Int, error)
	Exists(token common.Address) bool
}

// Engine maintains the token weight table and computes loyalty scores.
type Engine struct {
	st       engineState
	balances BalanceReader
	emitter  events.Emitter
	pauses   nativecommon.PauseView
}

// NewEngine constructs a point engine over the supplied state and balances.
func NewEngine(st engineState, balances BalanceReader) *Engine {
	return &Engine{st: st, balances: balances, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

func (e *Engine) guard(caller common.Address) error {
	if e == nil || e.st == nil {
		return errNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	return nativecommon.Authorize(e.st, nativecommon.RolePointOwner, caller, ErrNotOwner)
}

// InsertToken appends an active weight entry and returns its index.
func (e *Engine) InsertToken(caller, token common.Address, weight *big.Int) (uint64, error) {
	if err := e.guard(caller); err != nil {
		return 0, err
	}
	if weight == nil || weight.Sign() < 0 {
		return 0, ErrInvalidWeight
	}
	if e.balances != nil && !e.balances.Exists(token) {
		return 0, ErrUnknownToken
	}
	var index uint64
	err := e.st.Atomic(func() error {
		var present bool
		if _, err := e.st.KVGet(presentKey(token), &present); err != nil {
			return err
		}
		if present {
			return ErrTokenPresent
		}
		count, err := e.count()
		if err != nil {
			return err
		}
		index = count
		entry := &Entry{Token: token, Weight: new(big.Int).Set(weight), Active: true}
		if err := e.st.KVPut(entryKey(index), entry); err != nil {
			return err
		}
		if err := e.st.KVPut(countKey, count+1); err != nil {
			return err
		}
		if err := e.st.KVPut(presentKey(token), true); err != nil {
			return err
		}
		e.emit(events.PointTokenChanged{Index: index, Token: token, Weight: new(big.Int).Set(weight)})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// RemoveToken deactivates the entry at index without shifting later slots.
func (e *Engine) RemoveToken(caller common.Address, index uint64) error {
	if err := e.guard(caller); err != nil {
		return err
	}
	return e.st.Atomic(func() error {
		entry, err := e.GetToken(index)
		if err != nil {
			return err
		}
		entry.Active = false
		if err := e.st.KVPut(entryKey(index), entry); err != nil {
			return err
		}
		if err := e.st.KVPut(presentKey(entry.Token), false); err != nil {
			return err
		}
		e.emit(events.PointTokenChanged{Index: index, Token: entry.Token, Weight: entry.Weight, Removed: true})
		return nil
	})
}

// GetToken returns the active entry at index. Removed slots fail with
// ErrTokenRemoved, slots that never existed with ErrInvalidIndex.
func (e *Engine) GetToken(index uint64) (*Entry, error) {
	if e == nil || e.st == nil {
		return nil, errNilState
	}
	entry := new(Entry)
	ok, err := e.st.KVGet(entryKey(index), entry)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidIndex
	}
	if !entry.Active {
		return nil, ErrTokenRemoved
	}
	return entry.clone(), nil
}

// TokenCount returns the number of slots ever allocated.
func (e *Engine) TokenCount() (uint64, error) {
	if e == nil || e.st == nil {
		return 0, errNilState
	}
	return e.count()
}

// Entries returns every slot, removed ones included.
func (e *Engine) Entries() ([]*Entry, error) {
	count, err := e.TokenCount()
	if err != nil {
		return nil, err
	}
	out := make([]*Entry, 0, count)
	for i := uint64(0); i < count; i++ {
		entry := new(Entry)
		if _, err := e.st.KVGet(entryKey(i), entry); err != nil {
			return nil, err
		}
		out = append(out, entry.clone())
	}
	return out, nil
}

// SetDecimal updates the scaling exponent applied to every weighted balance.
func (e *Engine) SetDecimal(caller common.Address, decimal uint64) error {
	if err := e.guard(caller); err != nil {
		return err
	}
	if decimal > MaxDecimal {
		return ErrDecimalTooHigh
	}
	return e.st.Atomic(func() error {
		if err := e.st.KVPut(decimalKey, decimal); err != nil {
			return err
		}
		e.emit(events.PointDecimalUpdated{Decimal: decimal})
		return nil
	})
}

// Decimal returns the scaling exponent.
func (e *Engine) Decimal() (uint64, error) {
	if e == nil || e.st == nil {
		return 0, errNilState
	}
	var decimal uint64
	if _, err := e.st.KVGet(decimalKey, &decimal); err != nil {
		return 0, err
	}
	return decimal, nil
}

// GetPoint sums balance*weight/10^decimal over the active entries.
func (e *Engine) GetPoint(holder common.Address) (*big.Int, error) {
	entries, err := e.Entries()
	if err != nil {
		return nil, err
	}
	if e.balances == nil {
		return nil, errNilState
	}
	decimal, err := e.Decimal()
	if err != nil {
		return nil, err
	}
	scale := new(big.Int).Exp(big.NewInt(10), new(big.Int).SetUint64(decimal), nil)
	total := big.NewInt(0)
	for _, entry := range entries {
		if !entry.Active {
			continue
		}
		balance, err := e.balances.BalanceOf(entry.Token, holder)
		if err != nil {
			return nil, err
		}
		weighted := new(big.Int).Mul(balance, entry.Weight)
		total.Add(total, weighted.Quo(weighted, scale))
	}
	return total, nil
}

func (e *Engine) count() (uint64, error) {
	var count uint64
	if _, err := e.st.KVGet(countKey, &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (e *Engine) emit(evt events.Event) {
	if e.emitter == nil || evt == nil {
		return
	}
	e.st.AfterCommit(func() { e.emitter.Emit(evt) })
}
