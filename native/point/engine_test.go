package point

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	coreerrors "launchpad/core/errors"
	"launchpad/core/state"
	nativecommon "launchpad/native/common"
	"launchpad/native/token"
	"launchpad/storage"
)

var (
	owner = common.HexToAddress("0x0a")
	user1 = common.HexToAddress("0x11")
	user2 = common.HexToAddress("0x12")
)

type fixture struct {
	engine *Engine
	ledger *token.Ledger
	play   common.Address
	busd   common.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mgr := state.NewManager(storage.NewMemDB())
	if err := mgr.GrantRole(nativecommon.RolePointOwner, owner.Bytes()); err != nil {
		t.Fatalf("grant owner: %v", err)
	}
	ledger := token.NewLedger(mgr)
	play, err := ledger.Register("PLAY", "Play", 18, owner, big.NewInt(10_000))
	if err != nil {
		t.Fatalf("register play: %v", err)
	}
	busd, err := ledger.Register("PLAYBUSD", "Play BUSD", 18, owner, big.NewInt(10_000))
	if err != nil {
		t.Fatalf("register busd: %v", err)
	}
	for _, move := range []struct {
		token  common.Address
		to     common.Address
		amount int64
	}{
		{play, user1, 100},
		{play, user2, 200},
		{busd, user1, 500},
		{busd, user2, 300},
	} {
		if err := ledger.Transfer(move.token, owner, move.to, big.NewInt(move.amount)); err != nil {
			t.Fatalf("seed transfer: %v", err)
		}
	}
	engine := NewEngine(mgr, ledger)
	if err := engine.SetDecimal(owner, 1); err != nil {
		t.Fatalf("set decimal: %v", err)
	}
	return &fixture{engine: engine, ledger: ledger, play: play, busd: busd}
}

func mustPoint(t *testing.T, e *Engine, addr common.Address) int64 {
	t.Helper()
	score, err := e.GetPoint(addr)
	if err != nil {
		t.Fatalf("get point: %v", err)
	}
	return score.Int64()
}

func TestSetAndGetDecimal(t *testing.T) {
	f := newFixture(t)
	if err := f.engine.SetDecimal(owner, 2); err != nil {
		t.Fatalf("set decimal: %v", err)
	}
	decimal, err := f.engine.Decimal()
	if err != nil || decimal != 2 {
		t.Fatalf("decimal = %d (%v), want 2", decimal, err)
	}
	if err := f.engine.SetDecimal(owner, MaxDecimal+1); !errors.Is(err, ErrDecimalTooHigh) {
		t.Fatalf("expected decimal bound error, got %v", err)
	}
}

func TestGetPointWeightsBalances(t *testing.T) {
	f := newFixture(t)
	if score := mustPoint(t, f.engine, user1); score != 0 {
		t.Fatalf("empty table must score 0, got %d", score)
	}
	if _, err := f.engine.InsertToken(owner, f.play, big.NewInt(8)); err != nil {
		t.Fatalf("insert play: %v", err)
	}
	if _, err := f.engine.InsertToken(owner, f.busd, big.NewInt(15)); err != nil {
		t.Fatalf("insert busd: %v", err)
	}
	// 100 * 0.8 + 500 * 1.5
	if score := mustPoint(t, f.engine, user1); score != 830 {
		t.Fatalf("score = %d, want 830", score)
	}
	if err := f.engine.RemoveToken(owner, 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if score := mustPoint(t, f.engine, user1); score != 80 {
		t.Fatalf("score after removal = %d, want 80", score)
	}
	if score := mustPoint(t, f.engine, user2); score != 160 {
		t.Fatalf("user2 score = %d, want 160", score)
	}
}

func TestOwnerOnlyOperations(t *testing.T) {
	f := newFixture(t)
	if _, err := f.engine.InsertToken(user1, f.play, big.NewInt(8)); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected owner error on insert, got %v", err)
	}
	if err := f.engine.RemoveToken(user1, 0); !errors.Is(err, coreerrors.ErrAuthorization) {
		t.Fatalf("expected authorization error on remove, got %v", err)
	}
	if err := f.engine.SetDecimal(user1, 3); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected owner error on decimal, got %v", err)
	}
}

func TestTokenIndexLifecycle(t *testing.T) {
	f := newFixture(t)
	if _, err := f.engine.InsertToken(owner, f.play, big.NewInt(8)); err != nil {
		t.Fatalf("insert play: %v", err)
	}
	index, err := f.engine.InsertToken(owner, f.busd, big.NewInt(15))
	if err != nil || index != 1 {
		t.Fatalf("insert busd index=%d err=%v", index, err)
	}
	if _, err := f.engine.InsertToken(owner, f.busd, big.NewInt(3)); !errors.Is(err, ErrTokenPresent) {
		t.Fatalf("expected duplicate token error, got %v", err)
	}

	if _, err := f.engine.GetToken(2); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected invalid index, got %v", err)
	}
	entry, err := f.engine.GetToken(1)
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if entry.Token != f.busd || entry.Weight.Int64() != 15 {
		t.Fatalf("unexpected entry %+v", entry)
	}

	if err := f.engine.RemoveToken(owner, 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := f.engine.GetToken(1); !errors.Is(err, ErrTokenRemoved) {
		t.Fatalf("expected removed error, got %v", err)
	}
	if err := f.engine.RemoveToken(owner, 1); !errors.Is(err, ErrTokenRemoved) {
		t.Fatalf("expected removed error on second remove, got %v", err)
	}
	if err := f.engine.RemoveToken(owner, 9); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected invalid index on remove, got %v", err)
	}

	// A removed token may be inserted again into a fresh slot.
	index, err = f.engine.InsertToken(owner, f.busd, big.NewInt(15))
	if err != nil || index != 2 {
		t.Fatalf("reinsert index=%d err=%v", index, err)
	}
	count, err := f.engine.TokenCount()
	if err != nil || count != 3 {
		t.Fatalf("count = %d (%v), want 3", count, err)
	}
}

func TestInsertRejectsUnknownToken(t *testing.T) {
	f := newFixture(t)
	if _, err := f.engine.InsertToken(owner, common.HexToAddress("0xbeef"), big.NewInt(1)); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected unknown token error, got %v", err)
	}
}

func TestPausedModuleRejectsMutations(t *testing.T) {
	f := newFixture(t)
	f.engine.SetPauses(nativecommon.StaticPauses{"point": true})
	if _, err := f.engine.InsertToken(owner, f.play, big.NewInt(1)); !errors.Is(err, nativecommon.ErrModulePaused) {
		t.Fatalf("expected paused error, got %v", err)
	}
	if _, err := f.engine.GetPoint(user1); err != nil {
		t.Fatalf("reads must stay available while paused: %v", err)
	}
}
