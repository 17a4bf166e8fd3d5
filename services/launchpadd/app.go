package launchpadd

import (
	"fmt"
	"log/slog"
	"sync"

	"launchpad/config"
	"launchpad/core/events"
	"launchpad/core/genesis"
	"launchpad/core/state"
	"launchpad/native/factory"
	"launchpad/native/ido"
	"launchpad/native/point"
	"launchpad/native/tier"
	"launchpad/native/token"
	"launchpad/storage"
)

// AppOptions tune the module wiring.
type AppOptions struct {
	Emitter events.Emitter
	Now     func() int64
	Logger  *slog.Logger
}

// App owns the module engines over one state manager. Every mutation runs
// under the write lock inside a single state unit; reads share the read
// lock. Committed events are delivered after the write lock is released,
// in commit order, so a slow sink such as the event index never holds up
// readers or the next mutation's state work.
type App struct {
	mu     sync.RWMutex
	state  *state.Manager
	logger *slog.Logger

	// emitMu orders delivery across updates. It is taken before mu is
	// released.
	emitMu    sync.Mutex
	out       events.Emitter
	buffering bool
	pending   []events.Event

	tokens    *token.Ledger
	points    *point.Engine
	tiers     *tier.Engine
	offerings *ido.Engine
	registry  *factory.Registry
}

// Modules is the view handed to View and Update callbacks.
type Modules struct {
	Tokens    *token.Ledger
	Points    *point.Engine
	Tiers     *tier.Engine
	Offerings *ido.Engine
	Registry  *factory.Registry
}

// NewApp wires storage, state and the engines, seeds genesis from cfg on
// first start and installs the module pauses.
func NewApp(db storage.Database, cfg *config.Config, opts AppOptions) (*App, error) {
	if db == nil {
		return nil, fmt.Errorf("launchpadd: database required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("launchpadd: module config required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	emitter := opts.Emitter
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}

	manager := state.NewManager(db)
	ledger := token.NewLedger(manager)
	points := point.NewEngine(manager, ledger)
	tiers := tier.NewEngine(manager)
	offerings := ido.NewEngine(manager, ledger)
	if err := offerings.SetParams(cfg.IDOParams()); err != nil {
		return nil, fmt.Errorf("launchpadd: ido params: %w", err)
	}
	if opts.Now != nil {
		offerings.SetNowFunc(opts.Now)
	}
	registry := factory.NewRegistry(manager, offerings, tiers, points, ledger)

	app := &App{
		state:     manager,
		logger:    logger,
		out:       emitter,
		tokens:    ledger,
		points:    points,
		tiers:     tiers,
		offerings: offerings,
		registry:  registry,
	}
	collect := events.EmitterFunc(app.collect)
	ledger.SetEmitter(collect)
	points.SetEmitter(collect)
	tiers.SetEmitter(collect)
	offerings.SetEmitter(collect)
	registry.SetEmitter(collect)

	seeded, err := genesis.Applied(manager)
	if err != nil {
		return nil, fmt.Errorf("launchpadd: genesis: %w", err)
	}
	if err := genesis.Apply(manager, genesis.Modules{Tokens: ledger, Points: points, Tiers: tiers, Registry: registry}, cfg); err != nil {
		return nil, err
	}
	if !seeded {
		logger.Info("genesis applied", slog.Int("tokens", len(cfg.Tokens)), slog.Int("tiers", len(cfg.Tiers)))
	}

	pauses := cfg.Pauses.Table()
	points.SetPauses(pauses)
	tiers.SetPauses(pauses)
	offerings.SetPauses(pauses)
	registry.SetPauses(pauses)
	return app, nil
}

func (a *App) modules() *Modules {
	return &Modules{
		Tokens:    a.tokens,
		Points:    a.points,
		Tiers:     a.tiers,
		Offerings: a.offerings,
		Registry:  a.registry,
	}
}

// View runs fn under the read lock.
func (a *App) View(fn func(m *Modules) error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return fn(a.modules())
}

// Update runs fn as one all-or-nothing unit under the write lock. Events
// emitted by fn are delivered once the unit has committed and the write
// lock is released; Update returns after delivery.
func (a *App) Update(fn func(m *Modules) error) error {
	pending, err := a.apply(fn)
	defer a.emitMu.Unlock()
	for _, evt := range pending {
		a.out.Emit(evt)
	}
	return err
}

// apply commits fn and returns with emitMu held.
func (a *App) apply(fn func(m *Modules) error) (pending []events.Event, err error) {
	a.mu.Lock()
	defer func() {
		pending = a.pending
		a.pending, a.buffering = nil, false
		if r := recover(); r != nil {
			a.mu.Unlock()
			panic(r)
		}
		a.emitMu.Lock()
		a.mu.Unlock()
	}()
	a.buffering = true
	err = a.state.Atomic(func() error {
		return fn(a.modules())
	})
	return pending, err
}

// collect receives events released by committed units. Outside Update
// (genesis) they go straight to the sink.
func (a *App) collect(evt events.Event) {
	if a.buffering {
		a.pending = append(a.pending, evt)
		return
	}
	a.out.Emit(evt)
}

// NowTime returns the offering clock.
func (a *App) NowTime() int64 {
	return a.offerings.NowTime()
}
