package events

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestOfferingFundedEvent(t *testing.T) {
	funder := common.HexToAddress("0x0f")
	evt := OfferingFunded{
		Offering:    3,
		Funder:      funder,
		Amount:      big.NewInt(40),
		Phase:       "tier",
		Funded:      big.NewInt(40),
		TotalFunded: big.NewInt(140),
	}.Event()
	if evt.Type != TypeOfferingFunded {
		t.Fatalf("unexpected type: %s", evt.Type)
	}
	if evt.Attributes["offering"] != "3" || evt.Attributes["amount"] != "40" || evt.Attributes["totalFunded"] != "140" {
		t.Fatalf("unexpected attrs: %+v", evt.Attributes)
	}
	if evt.Attributes["funder"] != formatAddress(funder) {
		t.Fatalf("unexpected funder attr: %s", evt.Attributes["funder"])
	}
}

func TestMultiEmitterFanOut(t *testing.T) {
	var first, second []string
	multi := MultiEmitter{
		EmitterFunc(func(e Event) { first = append(first, e.EventType()) }),
		nil,
		EmitterFunc(func(e Event) { second = append(second, e.EventType()) }),
	}
	multi.Emit(OfferingRefunded{Offering: 1, Amount: big.NewInt(1)})
	if len(first) != 1 || len(second) != 1 || first[0] != TypeOfferingRefunded {
		t.Fatalf("unexpected fan-out: %v %v", first, second)
	}
}

func TestFlattenAndOperatorType(t *testing.T) {
	removed := OperatorChanged{Index: 2, Removed: true}
	if removed.EventType() != TypeOperatorRemoved {
		t.Fatalf("unexpected type %s", removed.EventType())
	}
	flat := Flatten(removed)
	if flat.Attributes["index"] != "2" {
		t.Fatalf("unexpected attrs: %+v", flat.Attributes)
	}
	if Flatten(nil) != nil {
		t.Fatalf("nil events flatten to nil")
	}
}
