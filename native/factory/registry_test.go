package factory

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	coreerrors "launchpad/core/errors"
	"launchpad/core/events"
	"launchpad/core/state"
	nativecommon "launchpad/native/common"
	"launchpad/native/ido"
	"launchpad/native/point"
	"launchpad/native/tier"
	"launchpad/native/token"
	"launchpad/storage"
)

var (
	owner     = common.HexToAddress("0x0a")
	operator  = common.HexToAddress("0x0b")
	recipient = common.HexToAddress("0x0c")
	finalizer = common.HexToAddress("0x0d")
	user0     = common.HexToAddress("0x10")
	user1     = common.HexToAddress("0x11")
)

const startAt = uint64(1_700_000_000)

type fixture struct {
	registry *Registry
	engine   *ido.Engine
	ledger   *token.Ledger
	play     common.Address
	busd     common.Address
	now      uint64
	events   []events.Event
}

func amt(v int64) *big.Int { return big.NewInt(v) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: startAt}
	mgr := state.NewManager(storage.NewMemDB())
	for _, role := range []string{nativecommon.RoleRegistryOwner, nativecommon.RolePointOwner, nativecommon.RoleTierOwner} {
		if err := mgr.GrantRole(role, owner.Bytes()); err != nil {
			t.Fatalf("grant %s: %v", role, err)
		}
	}
	emitter := events.EmitterFunc(func(evt events.Event) { f.events = append(f.events, evt) })

	f.ledger = token.NewLedger(mgr)
	var err error
	if f.play, err = f.ledger.Register("PLAY", "Play", 18, owner, amt(10_000)); err != nil {
		t.Fatalf("register play: %v", err)
	}
	if f.busd, err = f.ledger.Register("PLAYBUSD", "Play BUSD", 18, owner, amt(10_000)); err != nil {
		t.Fatalf("register busd: %v", err)
	}
	for _, move := range []struct {
		token  common.Address
		to     common.Address
		amount int64
	}{
		{f.play, user0, 100},
		{f.play, user1, 200},
		{f.play, operator, 2_000},
		{f.busd, user0, 500},
		{f.busd, user1, 300},
	} {
		if err := f.ledger.Transfer(move.token, owner, move.to, amt(move.amount)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	points := point.NewEngine(mgr, f.ledger)
	if err := points.SetDecimal(owner, 1); err != nil {
		t.Fatalf("decimal: %v", err)
	}
	if _, err := points.InsertToken(owner, f.play, amt(8)); err != nil {
		t.Fatalf("insert play: %v", err)
	}
	if _, err := points.InsertToken(owner, f.busd, amt(15)); err != nil {
		t.Fatalf("insert busd: %v", err)
	}
	tiers := tier.NewEngine(mgr)
	for _, tr := range tier.DefaultTiers() {
		if _, err := tiers.InsertTier(owner, tr.Name, tr.Threshold, tr.Multiplier); err != nil {
			t.Fatalf("seed tier: %v", err)
		}
	}

	f.engine = ido.NewEngine(mgr, f.ledger)
	f.engine.SetNowFunc(func() int64 { return int64(f.now) })
	f.registry = NewRegistry(mgr, f.engine, tiers, points, f.ledger)
	f.registry.SetEmitter(emitter)
	if _, err := f.registry.InsertOperator(owner, operator); err != nil {
		t.Fatalf("insert operator: %v", err)
	}
	return f
}

func expectErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func TestOwnerFunctions(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.InsertOperator(user0, operator)
	expectErr(t, err, ErrNotOwner)
	expectErr(t, f.registry.RemoveOperator(user0, 0), ErrNotOwner)
	expectErr(t, f.registry.SetFeePercent(user0, 10), ErrNotOwner)
	expectErr(t, f.registry.SetFeeRecipient(user0, recipient), coreerrors.ErrAuthorization)
	_, err = f.registry.FinalizeIDO(user1, 0, finalizer)
	expectErr(t, err, ErrNotOwner)
	expectErr(t, f.registry.EmergencyRefund(user1, 0), ErrNotOwner)
	_, err = f.registry.ReclaimSaleTokens(operator, 0)
	expectErr(t, err, ErrNotOwner)
}

func TestOperatorTable(t *testing.T) {
	f := newFixture(t)
	expectErr(t, f.registry.RemoveOperator(owner, 1), ErrOperatorIndex)
	_, err := f.registry.InsertOperator(owner, operator)
	expectErr(t, err, ErrOperatorExists)

	index, err := f.registry.InsertOperator(owner, user1)
	if err != nil || index != 1 {
		t.Fatalf("insert index=%d err=%v", index, err)
	}
	if err := f.registry.RemoveOperator(owner, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if f.registry.IsOperator(operator) {
		t.Fatalf("removed operator still holds the role")
	}
	expectErr(t, f.registry.RemoveOperator(owner, 0), ErrOperatorIndex)
	ops, err := f.registry.Operators()
	if err != nil || len(ops) != 1 || ops[0] != user1 {
		t.Fatalf("operators = %v (%v)", ops, err)
	}
	_, err = f.registry.CreateIDO(operator, f.play, amt(1_000), f.busd, amt(5_000))
	expectErr(t, err, ErrNotOperator)
}

func TestCreateIDO(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.CreateIDO(user0, f.play, amt(1_000), f.busd, amt(5_000))
	expectErr(t, err, ErrNotOperator)
	_, err = f.registry.CreateIDO(operator, f.play, amt(0), f.busd, amt(0))
	expectErr(t, err, ErrZeroAmount)
	_, err = f.registry.CreateIDO(operator, f.play, amt(100_000), f.busd, amt(5_000))
	expectErr(t, err, ErrBalanceNotEnough)
	expectErr(t, err, coreerrors.ErrInsufficientBalance)
	_, err = f.registry.GetIDO(0)
	expectErr(t, err, ErrIDOIndex)

	index, err := f.registry.CreateIDO(operator, f.play, amt(1_000), f.busd, amt(5_000))
	if err != nil || index != 0 {
		t.Fatalf("create index=%d err=%v", index, err)
	}
	o, err := f.registry.GetIDO(0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.State != ido.StateWaiting || o.SaleAmount.Int64() != 1_000 || o.Creator != operator {
		t.Fatalf("unexpected offering %+v", o)
	}
	_, err = f.registry.GetIDO(1)
	expectErr(t, err, ErrIDOIndex)
	bal, _ := f.ledger.BalanceOf(f.play, ido.CustodyAddress(0))
	if bal.Int64() != 1_000 {
		t.Fatalf("custody balance = %s", bal)
	}
}

func TestFeeConfiguration(t *testing.T) {
	f := newFixture(t)
	expectErr(t, f.registry.SetFeeRecipient(owner, common.Address{}), ErrNullFeeRecipient)
	expectErr(t, f.registry.SetFeePercent(owner, 0), ErrFeePercentZero)
	expectErr(t, f.registry.SetFeePercent(owner, 101), ErrFeePercentTooHigh)

	if _, err := f.registry.CreateIDO(operator, f.play, amt(1_000), f.busd, amt(4_200)); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := f.registry.FinalizeIDO(owner, 0, finalizer)
	expectErr(t, err, ErrFeePercentUnset)
	if err := f.registry.SetFeePercent(owner, 10); err != nil {
		t.Fatalf("fee percent: %v", err)
	}
	_, err = f.registry.FinalizeIDO(owner, 0, finalizer)
	expectErr(t, err, ErrFeeRecipientUnset)
	if err := f.registry.SetFeeRecipient(owner, recipient); err != nil {
		t.Fatalf("fee recipient: %v", err)
	}
	_, err = f.registry.FinalizeIDO(owner, 0, common.Address{})
	expectErr(t, err, ErrNullPayout)
	_, err = f.registry.FinalizeIDO(owner, 3, finalizer)
	expectErr(t, err, ErrIDOIndex)

	settlement, err := f.registry.FinalizeIDO(owner, 0, finalizer)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if settlement.State != ido.StateFailure {
		t.Fatalf("unfunded offering must fail, got %s", settlement.State)
	}
	_, err = f.registry.FinalizeIDO(owner, 0, finalizer)
	expectErr(t, err, ido.ErrAlreadyEnded)

	// Later fee changes do not touch a finalized offering.
	if err := f.registry.SetFeePercent(owner, 20); err != nil {
		t.Fatalf("fee percent: %v", err)
	}
	o, _ := f.registry.GetIDO(0)
	if o.FeePercent != 10 || o.FeeRecipient != recipient {
		t.Fatalf("fee snapshot changed: %+v", o)
	}
}

func TestGetMultiplier(t *testing.T) {
	f := newFixture(t)
	// 100 * 0.8 + 500 * 1.5 = 830 meets Star (500).
	m, err := f.registry.GetMultiplier(user0)
	if err != nil || m != 5 {
		t.Fatalf("multiplier = %d (%v), want 5", m, err)
	}
	m, err = f.registry.GetMultiplier(common.HexToAddress("0x77"))
	if err != nil || m != 1 {
		t.Fatalf("unscored multiplier = %d (%v), want 1", m, err)
	}
}

func TestEndToEndSale(t *testing.T) {
	f := newFixture(t)
	if err := f.registry.SetFeePercent(owner, 10); err != nil {
		t.Fatalf("fee percent: %v", err)
	}
	if err := f.registry.SetFeeRecipient(owner, recipient); err != nil {
		t.Fatalf("fee recipient: %v", err)
	}
	index, err := f.registry.CreateIDO(operator, f.play, amt(1_000), f.busd, amt(600))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	start := startAt + 1_000
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	must(f.engine.SetStartTime(operator, index, start))
	must(f.engine.SetEndTime(operator, index, start+24*3600))
	must(f.engine.SetClaimTime(operator, index, start+25*3600))
	must(f.engine.SetVestInfo(operator, index, ido.VestInfo{TGEPercent: 50, CliffTime: start + 26*3600, Duration: 0, Periodicity: 3600}))
	must(f.engine.SetBaseAmount(operator, index, amt(100)))
	must(f.engine.SetMaxAmountPerUser(operator, index, amt(500)))

	custody := ido.CustodyAddress(index)
	must(f.ledger.Approve(f.busd, user0, custody, amt(500)))
	must(f.ledger.Approve(f.busd, user1, custody, amt(300)))

	f.now = start
	// Both funders score above Star (500), so the tier-phase cap is 100 * 5.
	expectErr(t, f.engine.Fund(index, user0, amt(501)), ido.ErrFundTooMuch)
	must(f.engine.Fund(index, user0, amt(500)))
	expectErr(t, f.engine.Fund(index, user1, amt(101)), ido.ErrExceedsRest)
	must(f.engine.Fund(index, user1, amt(100)))

	f.now = start + 24*3600
	settlement, err := f.registry.FinalizeIDO(owner, index, finalizer)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if settlement.State != ido.StateSuccess || settlement.Fee.Int64() != 60 || settlement.Payout.Int64() != 540 {
		t.Fatalf("unexpected settlement %+v", settlement)
	}
	if bal, _ := f.ledger.BalanceOf(f.busd, finalizer); bal.Int64() != 540 {
		t.Fatalf("payout balance = %s", bal)
	}
	expectErr(t, f.registry.EmergencyRefund(owner, index), ido.ErrAlreadyEnded)

	f.now = start + 25*3600
	// 500/600 of 1000 is 833, half of it at TGE.
	must(f.engine.Claim(index, user0, amt(416)))
	expectErr(t, f.engine.Claim(index, user0, amt(1)), ido.ErrClaimExceeds)
	f.now = start + 27*3600
	must(f.engine.Claim(index, user0, amt(417)))
	must(f.engine.Claim(index, user1, amt(166)))
	if bal, _ := f.ledger.BalanceOf(f.play, ido.CustodyAddress(index)); bal.Int64() != 1 {
		t.Fatalf("rounding dust must stay in custody, got %s", bal)
	}
}

func TestEmergencyRefundBlocksFunding(t *testing.T) {
	f := newFixture(t)
	index, err := f.registry.CreateIDO(operator, f.play, amt(1_000), f.busd, amt(5_000))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	start := startAt + 100
	if err := f.engine.SetStartTime(operator, index, start); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.engine.SetEndTime(operator, index, start+3600); err != nil {
		t.Fatalf("end: %v", err)
	}
	if err := f.engine.SetBaseAmount(operator, index, amt(100)); err != nil {
		t.Fatalf("base: %v", err)
	}
	if err := f.engine.SetMaxAmountPerUser(operator, index, amt(1_000)); err != nil {
		t.Fatalf("max: %v", err)
	}
	custody := ido.CustodyAddress(index)
	if err := f.ledger.Approve(f.busd, user0, custody, amt(500)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	f.now = start
	if err := f.engine.Fund(index, user0, amt(200)); err != nil {
		t.Fatalf("fund: %v", err)
	}

	if err := f.registry.EmergencyRefund(owner, index); err != nil {
		t.Fatalf("emergency refund: %v", err)
	}
	expectErr(t, f.engine.Fund(index, user0, amt(1)), ido.ErrCannotFund)
	refunded, err := f.engine.Refund(index, user0)
	if err != nil || refunded.Int64() != 200 {
		t.Fatalf("refund = %v (%v)", refunded, err)
	}
	if bal, _ := f.ledger.BalanceOf(f.busd, user0); bal.Int64() != 500 {
		t.Fatalf("funder balance after refund = %s", bal)
	}
	expectErr(t, f.registry.EmergencyRefund(owner, index), ido.ErrAlreadyEnded)

	reclaimed, err := f.registry.ReclaimSaleTokens(owner, index)
	if err != nil || reclaimed.Int64() != 1_000 {
		t.Fatalf("reclaim = %v (%v)", reclaimed, err)
	}
	if bal, _ := f.ledger.BalanceOf(f.play, operator); bal.Int64() != 2_000 {
		t.Fatalf("creator balance after reclaim = %s", bal)
	}
}
