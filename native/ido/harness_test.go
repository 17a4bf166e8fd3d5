package ido

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/core/events"
	"launchpad/core/state"
	nativecommon "launchpad/native/common"
	"launchpad/native/token"
	"launchpad/storage"
)

const (
	hour = uint64(60 * 60)
	day  = 24 * hour
	week = 7 * day

	genesisTime = uint64(1_661_990_400)
)

var (
	tokenOwner = common.HexToAddress("0x0a")
	operator   = common.HexToAddress("0x0b")
	recipient  = common.HexToAddress("0x0c")
	payout     = common.HexToAddress("0x0d")
	user0      = common.HexToAddress("0x10")
	user1      = common.HexToAddress("0x11")
	user2      = common.HexToAddress("0x12")
	outsider   = common.HexToAddress("0x99")
)

type multiplierTable map[common.Address]uint64

func (m multiplierTable) GetMultiplier(holder common.Address) (uint64, error) {
	return m[holder], nil
}

type harness struct {
	t      *testing.T
	mgr    *state.Manager
	ledger *token.Ledger
	engine *Engine
	mult   multiplierTable
	events []events.Event

	now   uint64
	sale  common.Address
	pay   common.Address
	index uint64

	start uint64
	end   uint64
	claim uint64
	cliff uint64
}

func amt(v int64) *big.Int { return big.NewInt(v) }

// newHarness creates one offering selling 1000 PLAY for a 5000 BUSD target,
// configured ten days ahead with a two week vesting in weekly steps.
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, now: genesisTime, mult: multiplierTable{}}
	h.mgr = state.NewManager(storage.NewMemDB())
	if err := h.mgr.GrantRole(nativecommon.RoleOperator, operator.Bytes()); err != nil {
		t.Fatalf("grant operator: %v", err)
	}
	h.ledger = token.NewLedger(h.mgr)

	var err error
	h.sale, err = h.ledger.Register("PLAY", "Play", 18, operator, amt(10_000))
	if err != nil {
		t.Fatalf("register sale token: %v", err)
	}
	h.pay, err = h.ledger.Register("BUSD", "Play BUSD", 18, tokenOwner, amt(100_000))
	if err != nil {
		t.Fatalf("register payment token: %v", err)
	}

	h.engine = NewEngine(h.mgr, h.ledger)
	h.engine.SetNowFunc(func() int64 { return int64(h.now) })
	h.engine.SetMultiplierSource(h.mult)
	h.engine.SetEmitter(events.EmitterFunc(func(evt events.Event) { h.events = append(h.events, evt) }))

	h.index, err = h.engine.Create(operator, h.sale, amt(1_000), h.pay, amt(5_000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	custody := CustodyAddress(h.index)
	for _, user := range []common.Address{user0, user1, user2} {
		if err := h.ledger.Transfer(h.pay, tokenOwner, user, amt(5_000)); err != nil {
			t.Fatalf("seed %s: %v", user.Hex(), err)
		}
		if err := h.ledger.Approve(h.pay, user, custody, amt(5_000)); err != nil {
			t.Fatalf("approve %s: %v", user.Hex(), err)
		}
	}

	h.start = genesisTime + 10*day
	h.end = h.start + 9*day
	h.claim = h.end + 2*day
	h.cliff = h.claim + 3*day
	h.must(h.engine.SetStartTime(operator, h.index, h.start))
	h.must(h.engine.SetEndTime(operator, h.index, h.end))
	h.must(h.engine.SetClaimTime(operator, h.index, h.claim))
	h.must(h.engine.SetVestInfo(operator, h.index, VestInfo{TGEPercent: 20, CliffTime: h.cliff, Duration: 2 * week, Periodicity: week}))
	h.must(h.engine.SetBaseAmount(operator, h.index, amt(100)))
	h.must(h.engine.SetMaxAmountPerUser(operator, h.index, amt(50)))
	h.must(h.engine.SetSaleInfo(operator, h.index, amt(1_000), amt(5_000)))
	h.must(h.engine.SetWhitelistAmount(operator, h.index, user0, amt(0)))
	h.must(h.engine.SetWhitelistAmounts(operator, h.index, []common.Address{user1, user2}, []*big.Int{amt(200), amt(500)}))
	return h
}

func (h *harness) must(err error) {
	h.t.Helper()
	if err != nil {
		h.t.Fatalf("unexpected error: %v", err)
	}
}

func (h *harness) expect(err, target error) {
	h.t.Helper()
	if !errors.Is(err, target) {
		h.t.Fatalf("expected %v, got %v", target, err)
	}
}

func (h *harness) at(ts uint64) { h.now = ts }

func (h *harness) fund(funder common.Address, amount int64) error {
	return h.engine.Fund(h.index, funder, amt(amount))
}

func (h *harness) balance(tok, holder common.Address) int64 {
	h.t.Helper()
	bal, err := h.ledger.BalanceOf(tok, holder)
	if err != nil {
		h.t.Fatalf("balance: %v", err)
	}
	return bal.Int64()
}

func (h *harness) offering() *Offering {
	h.t.Helper()
	o, err := h.engine.Get(h.index)
	if err != nil {
		h.t.Fatalf("get: %v", err)
	}
	return o
}

// checkTotals asserts totalFunded equals the sum of per-funder ledgers and
// no funder exceeds the per-user ceiling.
func (h *harness) checkTotals() {
	h.t.Helper()
	o := h.offering()
	funders, err := h.engine.Funders(h.index)
	if err != nil {
		h.t.Fatalf("funders: %v", err)
	}
	sum := big.NewInt(0)
	for _, funder := range funders {
		funded, err := h.engine.Funded(h.index, funder)
		if err != nil {
			h.t.Fatalf("funded: %v", err)
		}
		if funded.Cmp(o.MaxAmountPerUser) > 0 {
			h.t.Fatalf("funder %s exceeds max per user: %s > %s", funder.Hex(), funded, o.MaxAmountPerUser)
		}
		sum.Add(sum, funded)
	}
	if sum.Cmp(o.TotalFunded) != 0 {
		h.t.Fatalf("totalFunded %s != sum of funded %s", o.TotalFunded, sum)
	}
}

func (h *harness) claimable(funder common.Address) int64 {
	h.t.Helper()
	v, err := h.engine.Claimable(h.index, funder)
	if err != nil {
		h.t.Fatalf("claimable: %v", err)
	}
	return v.Int64()
}
