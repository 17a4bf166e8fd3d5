package token

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	coreerrors "launchpad/core/errors"
	"launchpad/core/events"
	"launchpad/core/state"
	"launchpad/storage"
)

type recordingEmitter struct {
	events []events.Event
}

func (r *recordingEmitter) Emit(evt events.Event) { r.events = append(r.events, evt) }

func newTestLedger(t *testing.T) (*Ledger, *state.Manager, *recordingEmitter) {
	t.Helper()
	mgr := state.NewManager(storage.NewMemDB())
	ledger := NewLedger(mgr)
	rec := &recordingEmitter{}
	ledger.SetEmitter(rec)
	return ledger, mgr, rec
}

func mustBalance(t *testing.T, l *Ledger, token, holder common.Address) int64 {
	t.Helper()
	bal, err := l.BalanceOf(token, holder)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return bal.Int64()
}

func TestRegisterCreditsOwner(t *testing.T) {
	ledger, _, rec := newTestLedger(t)
	owner := common.HexToAddress("0x01")

	addr, err := ledger.Register("play", "Play", 18, owner, big.NewInt(10_000))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if addr != AddressForSymbol("PLAY") {
		t.Fatalf("unexpected token address %s", addr.Hex())
	}
	if got := mustBalance(t, ledger, addr, owner); got != 10_000 {
		t.Fatalf("owner balance = %d, want 10000", got)
	}
	meta, err := ledger.Metadata(addr)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.Symbol != "PLAY" || meta.Decimals != 18 || meta.Supply.Int64() != 10_000 {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if len(rec.events) != 1 || rec.events[0].EventType() != events.TypeTokenTransfer {
		t.Fatalf("expected mint transfer event, got %v", rec.events)
	}

	if _, err := ledger.Register("PLAY", "Again", 18, owner, big.NewInt(1)); !errors.Is(err, ErrTokenExists) {
		t.Fatalf("expected duplicate symbol error, got %v", err)
	}
	if _, err := ledger.Register("bad symbol", "x", 0, owner, nil); !errors.Is(err, ErrInvalidSymbol) {
		t.Fatalf("expected invalid symbol error, got %v", err)
	}
	tokens, err := ledger.Tokens()
	if err != nil || len(tokens) != 1 || tokens[0] != addr {
		t.Fatalf("unexpected token list %v (%v)", tokens, err)
	}
}

func TestTransferMovesBalances(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	owner := common.HexToAddress("0x01")
	user := common.HexToAddress("0x02")
	addr, err := ledger.Register("BUSD", "Play BUSD", 18, owner, big.NewInt(500))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := ledger.Transfer(addr, owner, user, big.NewInt(200)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := mustBalance(t, ledger, addr, owner); got != 300 {
		t.Fatalf("owner balance = %d", got)
	}
	if got := mustBalance(t, ledger, addr, user); got != 200 {
		t.Fatalf("user balance = %d", got)
	}

	err = ledger.Transfer(addr, user, owner, big.NewInt(201))
	if !errors.Is(err, ErrInsufficientBalance) || !errors.Is(err, coreerrors.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := ledger.Transfer(common.HexToAddress("0xdead"), owner, user, big.NewInt(1)); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected unknown token, got %v", err)
	}
	if err := ledger.Transfer(addr, owner, common.Address{}, big.NewInt(1)); !errors.Is(err, ErrNullAddress) {
		t.Fatalf("expected null address error, got %v", err)
	}
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	owner := common.HexToAddress("0x01")
	spender := common.HexToAddress("0x0c")
	addr, err := ledger.Register("PLAY", "Play", 18, owner, big.NewInt(1_000))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := ledger.TransferFrom(addr, spender, owner, spender, big.NewInt(1)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected allowance failure, got %v", err)
	}
	if err := ledger.Approve(addr, owner, spender, big.NewInt(300)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := ledger.TransferFrom(addr, spender, owner, spender, big.NewInt(250)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}
	remaining, err := ledger.Allowance(addr, owner, spender)
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if remaining.Int64() != 50 {
		t.Fatalf("allowance = %s, want 50", remaining)
	}
	if got := mustBalance(t, ledger, addr, spender); got != 250 {
		t.Fatalf("spender balance = %d", got)
	}
}

func TestTransferRollsBackWithEnclosingUnit(t *testing.T) {
	ledger, mgr, rec := newTestLedger(t)
	owner := common.HexToAddress("0x01")
	user := common.HexToAddress("0x02")
	addr, err := ledger.Register("PLAY", "Play", 18, owner, big.NewInt(100))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	rec.events = nil

	boom := errors.New("abort")
	err = mgr.Atomic(func() error {
		if err := ledger.Transfer(addr, owner, user, big.NewInt(60)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected abort, got %v", err)
	}
	if got := mustBalance(t, ledger, addr, owner); got != 100 {
		t.Fatalf("owner balance after rollback = %d", got)
	}
	if len(rec.events) != 0 {
		t.Fatalf("events must not be released on rollback: %v", rec.events)
	}
}
