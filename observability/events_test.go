package observability

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"launchpad/core/events"
)

func TestEventsEmitterCountsByType(t *testing.T) {
	m := Events()
	before := testutil.ToFloat64(m.emitted.WithLabelValues(events.TypeOfferingFunded))
	fundsBefore := testutil.ToFloat64(Launchpad().funds.WithLabelValues("tier"))

	m.Emit(events.OfferingFunded{Offering: 1, Funder: common.HexToAddress("0x01"), Amount: big.NewInt(50), Phase: "tier"})
	require.Equal(t, before+1, testutil.ToFloat64(m.emitted.WithLabelValues(events.TypeOfferingFunded)))
	require.Equal(t, fundsBefore+1, testutil.ToFloat64(Launchpad().funds.WithLabelValues("tier")))

	transfersBefore := testutil.ToFloat64(m.transfers.WithLabelValues("PLAY"))
	m.Emit(events.TokenTransfer{Symbol: "play", Amount: big.NewInt(1)})
	require.Equal(t, transfersBefore+1, testutil.ToFloat64(m.transfers.WithLabelValues("PLAY")))
}

func TestBigToFloat(t *testing.T) {
	require.Equal(t, float64(0), bigToFloat(nil))
	require.Equal(t, float64(42), bigToFloat(big.NewInt(42)))
}
