package sim

import (
	"fmt"
	"math"
)

// TestSim is a headless match harness for tests and batch reports. It wraps
// a Driver, applies scripted setup and keeps every snapshot it produced.
type TestSim struct {
	Driver *Driver
	Log    *EventLog
	Last   *Snapshot
	Err    error

	cfg       Config
	opts      []Option
	keepAll   bool
	snapshots []*Snapshot
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // config, seed, verbose, driver options; applied before Start
	simOptWorld                      // units, pylons, scripted input; applied after Start
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.cfg.Seed = seed }}
}

// WithPlayers sets the number of factions.
func WithPlayers(n int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.cfg.PlayerCount = n }}
}

// WithArenaSize sets the arena side length.
func WithArenaSize(size float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.cfg.ArenaSize = size }}
}

// WithSpawnInterval sets seconds between timed spawns.
func WithSpawnInterval(sec float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.cfg.SpawnInterval = sec }}
}

// WithFixedDelta sets the tick length in seconds.
func WithFixedDelta(dt float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.cfg.FixedDelta = dt }}
}

// WithPylonCount sets how many randomly orbiting pylons are created.
func WithPylonCount(n int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.cfg.PylonCount = n }}
}

// WithoutPylons removes the random pylons. Fixed pylons from WithPylonAt are
// still added.
func WithoutPylons() SimOption { return WithPylonCount(0) }

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.Log = NewEventLog(v) }}
}

// WithoutInitialUnits leaves every faction empty at start, so the first unit
// added with WithUnit gets id 1.
func WithoutInitialUnits() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.opts = append(ts.opts, SkipInitialUnits()) }}
}

// WithoutSpawns disables the spawn timers.
func WithoutSpawns() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.opts = append(ts.opts, DisableSpawns()) }}
}

// WithHistory keeps every snapshot, not just the last one.
func WithHistory() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.keepAll = true }}
}

// WithUnit places a unit of faction at (x, y).
func WithUnit(faction FactionID, x, y float64) SimOption {
	return SimOption{simOptWorld, func(ts *TestSim) {
		ts.Driver.store.SpawnUnit(faction, UnitKindLaser, V(x, y))
	}}
}

// WithPylonAt adds a pylon at (x, y) with no angular speed and no swing. A
// lone fixed pylon never moves; several fixed pylons still pull on each
// other's phase.
func WithPylonAt(x, y float64) SimOption {
	return SimOption{simOptWorld, func(ts *TestSim) {
		pos := V(x, y)
		ts.Driver.store.AddPylon(Pylon{Pos: pos, Phase: pos.Angle(), Radius: pos.Len()})
	}}
}

// WithInput queues an input event for the first tick.
func WithInput(ev InputEvent) SimOption {
	return SimOption{simOptWorld, func(ts *TestSim) {
		if err := ts.Driver.Submit(ev); err != nil {
			ts.Err = err
		}
	}}
}

// NewTestSim constructs a TestSim from the given options in two passes:
//  1. Infrastructure (config, seed, verbose, driver options), then Start
//  2. World (units, pylons, scripted input)
//
// It panics if the assembled configuration is invalid.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{cfg: DefaultConfig()}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	if ts.Log == nil {
		ts.Log = NewEventLog(false)
	}
	d, err := New(ts.cfg, append(ts.opts, WithEventLog(ts.Log))...)
	if err != nil {
		panic(fmt.Sprintf("sim: test harness config: %v", err))
	}
	if err := d.Start(); err != nil {
		panic(fmt.Sprintf("sim: test harness start: %v", err))
	}
	ts.Driver = d
	for _, o := range opts {
		if o.kind == simOptWorld {
			o.fn(ts)
		}
	}
	ts.Last = d.Latest()
	return ts
}

// Submit queues an input event for the next tick.
func (ts *TestSim) Submit(ev InputEvent) {
	if err := ts.Driver.Submit(ev); err != nil && ts.Err == nil {
		ts.Err = err
	}
}

// RunTicks advances the simulation n ticks. It stops early if the driver
// halts; the error is kept in ts.Err.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		if !ts.step() {
			return
		}
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		if !ts.step() {
			return -1
		}
		if predicate(ts) {
			return ts.Driver.Tick()
		}
	}
	return -1
}

func (ts *TestSim) step() bool {
	snap, err := ts.Driver.Step()
	if err != nil {
		ts.Err = err
		return false
	}
	ts.Last = snap
	if ts.keepAll {
		ts.snapshots = append(ts.snapshots, snap)
	}
	return true
}

// CurrentTick returns the number of completed ticks.
func (ts *TestSim) CurrentTick() int { return ts.Driver.Tick() }

// Snapshots returns every snapshot kept with WithHistory, oldest first.
func (ts *TestSim) Snapshots() []*Snapshot { return ts.snapshots }

// Unit returns the live unit record for id.
func (ts *TestSim) Unit(id UnitID) (*Unit, bool) { return ts.Driver.store.Unit(id) }

// Store exposes the world for scripted setup and assertions.
func (ts *TestSim) Store() *Store { return ts.Driver.store }

// Centroid returns the mean position of a faction's live units, or NaN
// coordinates when it has none.
func (ts *TestSim) Centroid(f FactionID) Vec2 {
	units := ts.Driver.store.FactionUnits(f)
	if len(units) == 0 {
		return V(math.NaN(), math.NaN())
	}
	var sum Vec2
	for _, u := range units {
		sum = sum.Add(u.Pos)
	}
	return sum.Scale(1 / float64(len(units)))
}
