package launchpadd

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"launchpad/config"
	"launchpad/core/events"
	"launchpad/storage"
)

// gateEmitter blocks every delivery until release is closed once armed.
type gateEmitter struct {
	armed   atomic.Bool
	entered chan uint64
	release chan struct{}

	mu   sync.Mutex
	fees []uint64
}

func (g *gateEmitter) Emit(evt events.Event) {
	if !g.armed.Load() {
		return
	}
	fee, ok := evt.(events.FeeUpdated)
	if !ok {
		return
	}
	g.entered <- fee.FeePercent
	<-g.release
	g.mu.Lock()
	g.fees = append(g.fees, fee.FeePercent)
	g.mu.Unlock()
}

func feePercent(t *testing.T, app *App) uint64 {
	t.Helper()
	var pct uint64
	require.NoError(t, app.View(func(m *Modules) error {
		fee, err := m.Registry.FeeConfig()
		if err != nil {
			return err
		}
		pct = fee.Percent
		return nil
	}))
	return pct
}

func TestUpdateDeliversEventsOutsideWriteLock(t *testing.T) {
	cfg := config.Default()
	owner, err := cfg.OwnerAddress()
	require.NoError(t, err)
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	gate := &gateEmitter{entered: make(chan uint64, 8), release: make(chan struct{})}
	app, err := NewApp(db, cfg, AppOptions{Emitter: gate})
	require.NoError(t, err)
	gate.armed.Store(true)

	setFee := func(pct uint64) error {
		return app.Update(func(m *Modules) error { return m.Registry.SetFeePercent(owner, pct) })
	}

	first := make(chan error, 1)
	go func() { first <- setFee(10) }()
	require.Equal(t, uint64(10), <-gate.entered)

	// The first update is stuck in delivery: reads and the next update's
	// state work still go through.
	require.Equal(t, uint64(10), feePercent(t, app))
	second := make(chan error, 1)
	go func() { second <- setFee(20) }()
	require.Eventually(t, func() bool { return feePercent(t, app) == 20 }, time.Second, 5*time.Millisecond)
	select {
	case pct := <-gate.entered:
		t.Fatalf("fee %d delivered ahead of the pending event", pct)
	default:
	}

	close(gate.release)
	require.NoError(t, <-first)
	require.NoError(t, <-second)
	require.Equal(t, uint64(20), <-gate.entered)
	require.Equal(t, []uint64{10, 20}, gate.fees)

	// A rolled back unit delivers nothing.
	require.Error(t, setFee(0))
	require.Len(t, gate.entered, 0)
	require.Equal(t, uint64(20), feePercent(t, app))
}
