package tier

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"launchpad/core/events"
	nativecommon "launchpad/native/common"
)

const moduleName = "tier"

type engineState interface {
	HasRole(role string, addr []byte) bool
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	Atomic(fn func() error) error
	AfterCommit(fn func())
}

// Engine owns the ordered tier table.
type Engine struct {
	st      engineState
	emitter events.Emitter
	pauses  nativecommon.PauseView
}

// NewEngine constructs a tier engine backed by the provided state.
func NewEngine(st engineState) *Engine {
	return &Engine{st: st, emitter: events.NoopEmitter{}}
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
	return nativecommon.Authorize(e.st, nativecommon.RoleTierOwner, caller, ErrNotOwner)
}

func sanitize(name string, threshold *big.Int, multiplier uint64) (*Tier, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrEmptyName
	}
	if threshold == nil || threshold.Sign() < 0 {
		return nil, ErrInvalidThreshold
	}
	if multiplier == 0 {
		return nil, ErrInvalidMultiplier
	}
	return &Tier{Name: trimmed, Threshold: new(big.Int).Set(threshold), Multiplier: multiplier, Active: true}, nil
}

// InsertTier appends an active tier and returns its index.
func (e *Engine) InsertTier(caller common.Address, name string, threshold *big.Int, multiplier uint64) (uint64, error) {
	if err := e.guard(caller); err != nil {
		return 0, err
	}
	tier, err := sanitize(name, threshold, multiplier)
	if err != nil {
		return 0, err
	}
	var index uint64
	err = e.st.Atomic(func() error {
		count, err := e.count()
		if err != nil {
			return err
		}
		index = count
		if err := e.st.KVPut(tierKey(index), tier); err != nil {
			return err
		}
		if err := e.st.KVPut(countKey, count+1); err != nil {
			return err
		}
		e.emitChange(events.TypeTierInserted, index, tier)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// UpdateTier replaces the contents of an active slot.
func (e *Engine) UpdateTier(caller common.Address, index uint64, name string, threshold *big.Int, multiplier uint64) error {
	if err := e.guard(caller); err != nil {
		return err
	}
	tier, err := sanitize(name, threshold, multiplier)
	if err != nil {
		return err
	}
	return e.st.Atomic(func() error {
		if _, err := e.GetTier(index); err != nil {
			return err
		}
		if err := e.st.KVPut(tierKey(index), tier); err != nil {
			return err
		}
		e.emitChange(events.TypeTierUpdated, index, tier)
		return nil
	})
}

// RemoveTier deactivates the slot at index. Later indices are unaffected.
func (e *Engine) RemoveTier(caller common.Address, index uint64) error {
	if err := e.guard(caller); err != nil {
		return err
	}
	return e.st.Atomic(func() error {
		tier, err := e.GetTier(index)
		if err != nil {
			return err
		}
		tier.Active = false
		if err := e.st.KVPut(tierKey(index), tier); err != nil {
			return err
		}
		e.emitChange(events.TypeTierRemoved, index, tier)
		return nil
	})
}

// GetTier returns the active tier at index.
func (e *Engine) GetTier(index uint64) (*Tier, error) {
	if e == nil || e.st == nil {
		return nil, errNilState
	}
	tier := new(Tier)
	ok, err := e.st.KVGet(tierKey(index), tier)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidIndex
	}
	if !tier.Active {
		return nil, ErrTierRemoved
	}
	return tier.clone(), nil
}

// TierCount returns the number of slots ever allocated.
func (e *Engine) TierCount() (uint64, error) {
	if e == nil || e.st == nil {
		return 0, errNilState
	}
	return e.count()
}

// Tiers returns every slot, removed ones included.
func (e *Engine) Tiers() ([]*Tier, error) {
	count, err := e.TierCount()
	if err != nil {
		return nil, err
	}
	out := make([]*Tier, 0, count)
	for i := uint64(0); i < count; i++ {
		tier := new(Tier)
		if _, err := e.st.KVGet(tierKey(i), tier); err != nil {
			return nil, err
		}
		out = append(out, tier.clone())
	}
	return out, nil
}

// GetMultiplier resolves the multiplier of the highest active threshold the
// holder's score meets. On equal thresholds the lowest index wins. Holders
// meeting no threshold get DefaultMultiplier.
func (e *Engine) GetMultiplier(points PointSource, holder common.Address) (uint64, error) {
	if points == nil {
		return 0, errNilState
	}
	score, err := points.GetPoint(holder)
	if err != nil {
		return 0, err
	}
	tiers, err := e.Tiers()
	if err != nil {
		return 0, err
	}
	return Resolve(tiers, score), nil
}

// Resolve applies the threshold rule of GetMultiplier to an explicit table.
func Resolve(tiers []*Tier, score *big.Int) uint64 {
	if score == nil {
		score = big.NewInt(0)
	}
	var best *Tier
	for _, tier := range tiers {
		if tier == nil || !tier.Active || tier.Threshold == nil {
			continue
		}
		if score.Cmp(tier.Threshold) < 0 {
			continue
		}
		if best == nil || tier.Threshold.Cmp(best.Threshold) > 0 {
			best = tier
		}
	}
	if best == nil {
		return DefaultMultiplier
	}
	return best.Multiplier
}

func (e *Engine) count() (uint64, error) {
	var count uint64
	if _, err := e.st.KVGet(countKey, &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (e *Engine) emitChange(kind string, index uint64, tier *Tier) {
	evt := events.TierChanged{
		Type:       kind,
		Index:      index,
		Name:       tier.Name,
		Threshold:  new(big.Int).Set(tier.Threshold),
		Multiplier: tier.Multiplier,
	}
	e.st.AfterCommit(func() { e.emitter.Emit(evt) })
}
