package token

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"launchpad/core/events"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,16}$`)

type ledgerState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVAppend(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
	Atomic(fn func() error) error
	AfterCommit(fn func())
}

// Ledger is the in-process fungible token collaborator. Balance moves are
// trusted: callers authorise the holder before calling Transfer.
type Ledger struct {
	st      ledgerState
	emitter events.Emitter
}

// NewLedger creates a ledger backed by the provided state manager.
func NewLedger(st ledgerState) *Ledger {
	return &Ledger{st: st, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the emitter receiving transfer events.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

// Register creates a token and credits the full supply to owner.
func (l *Ledger) Register(symbol, name string, decimals uint8, owner common.Address, supply *big.Int) (common.Address, error) {
	if l == nil || l.st == nil {
		return common.Address{}, errNilState
	}
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(normalized) {
		return common.Address{}, ErrInvalidSymbol
	}
	if owner == (common.Address{}) {
		return common.Address{}, ErrNullAddress
	}
	if supply == nil {
		supply = big.NewInt(0)
	}
	if supply.Sign() < 0 {
		return common.Address{}, ErrInvalidAmount
	}
	if _, overflow := uint256.FromBig(supply); overflow {
		return common.Address{}, ErrBalanceOverflow
	}
	addr := AddressForSymbol(normalized)
	err := l.st.Atomic(func() error {
		exists, err := l.st.KVGet(metadataKey(addr), nil)
		if err != nil {
			return err
		}
		if exists {
			return ErrTokenExists
		}
		meta := &Metadata{
			Address:  addr,
			Symbol:   normalized,
			Name:     strings.TrimSpace(name),
			Decimals: decimals,
			Owner:    owner,
			Supply:   cloneBigInt(supply),
		}
		if err := l.st.KVPut(metadataKey(addr), meta); err != nil {
			return err
		}
		if err := l.st.KVAppend(tokenListKey, addr.Bytes()); err != nil {
			return err
		}
		if err := l.st.KVPut(balanceKey(addr, owner), meta.Supply); err != nil {
			return err
		}
		l.emit(events.TokenTransfer{Token: addr, Symbol: normalized, To: owner, Amount: cloneBigInt(supply)})
		return nil
	})
	if err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

// Metadata returns the registration record of token.
func (l *Ledger) Metadata(token common.Address) (*Metadata, error) {
	if l == nil || l.st == nil {
		return nil, errNilState
	}
	meta := new(Metadata)
	ok, err := l.st.KVGet(metadataKey(token), meta)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownToken
	}
	return meta.clone(), nil
}

// Exists reports whether token is registered.
func (l *Ledger) Exists(token common.Address) bool {
	if l == nil || l.st == nil {
		return false
	}
	ok, err := l.st.KVGet(metadataKey(token), nil)
	return err == nil && ok
}

// Tokens lists every registered token address in registration order.
func (l *Ledger) Tokens() ([]common.Address, error) {
	if l == nil || l.st == nil {
		return nil, errNilState
	}
	var raw [][]byte
	if err := l.st.KVGetList(tokenListKey, &raw); err != nil {
		return nil, err
	}
	out := make([]common.Address, 0, len(raw))
	for _, b := range raw {
		out = append(out, common.BytesToAddress(b))
	}
	return out, nil
}

// BalanceOf returns the balance of holder. Unknown tokens fail.
func (l *Ledger) BalanceOf(token, holder common.Address) (*big.Int, error) {
	if l == nil || l.st == nil {
		return nil, errNilState
	}
	if !l.Exists(token) {
		return nil, ErrUnknownToken
	}
	return l.amount(balanceKey(token, holder))
}

// Allowance returns the amount spender may move on behalf of owner.
func (l *Ledger) Allowance(token, owner, spender common.Address) (*big.Int, error) {
	if l == nil || l.st == nil {
		return nil, errNilState
	}
	if !l.Exists(token) {
		return nil, ErrUnknownToken
	}
	return l.amount(allowanceKey(token, owner, spender))
}

// Approve replaces the allowance owner grants to spender.
func (l *Ledger) Approve(token, owner, spender common.Address, amount *big.Int) error {
	if l == nil || l.st == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if spender == (common.Address{}) {
		return ErrNullAddress
	}
	if !l.Exists(token) {
		return ErrUnknownToken
	}
	return l.st.KVPut(allowanceKey(token, owner, spender), cloneBigInt(amount))
}

// Transfer moves amount from one holder to another.
func (l *Ledger) Transfer(token, from, to common.Address, amount *big.Int) error {
	if l == nil || l.st == nil {
		return errNilState
	}
	return l.st.Atomic(func() error {
		return l.move(token, from, to, amount)
	})
}

// TransferFrom moves amount on behalf of from, consuming spender's
// allowance.
func (l *Ledger) TransferFrom(token, spender, from, to common.Address, amount *big.Int) error {
	if l == nil || l.st == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return l.st.Atomic(func() error {
		if !l.Exists(token) {
			return ErrUnknownToken
		}
		key := allowanceKey(token, from, spender)
		allowance, err := l.amount(key)
		if err != nil {
			return err
		}
		if allowance.Cmp(amount) < 0 {
			return ErrInsufficientAllowance
		}
		if err := l.st.KVPut(key, new(big.Int).Sub(allowance, amount)); err != nil {
			return err
		}
		return l.move(token, from, to, amount)
	})
}

func (l *Ledger) move(token, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if to == (common.Address{}) {
		return ErrNullAddress
	}
	meta := new(Metadata)
	ok, err := l.st.KVGet(metadataKey(token), meta)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownToken
	}
	if amount.Sign() == 0 {
		return nil
	}
	fromBalance, err := l.amount(balanceKey(token, from))
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	toBalance, err := l.amount(balanceKey(token, to))
	if err != nil {
		return err
	}
	credited := new(big.Int).Add(toBalance, amount)
	if _, overflow := uint256.FromBig(credited); overflow {
		return ErrBalanceOverflow
	}
	if err := l.st.KVPut(balanceKey(token, from), new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	if err := l.st.KVPut(balanceKey(token, to), credited); err != nil {
		return err
	}
	l.emit(events.TokenTransfer{Token: token, Symbol: meta.Symbol, From: from, To: to, Amount: cloneBigInt(amount)})
	return nil
}

func (l *Ledger) amount(key []byte) (*big.Int, error) {
	value := new(big.Int)
	ok, err := l.st.KVGet(key, value)
	if err != nil {
		return nil, fmt.Errorf("token: read %x: %w", key, err)
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return value, nil
}

func (l *Ledger) emit(evt events.Event) {
	if l.emitter == nil || evt == nil {
		return
	}
	l.st.AfterCommit(func() { l.emitter.Emit(evt) })
}
