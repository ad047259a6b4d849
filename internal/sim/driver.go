package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
)

// State is the driver's lifecycle state.
type State int32

const (
	StateUninitialized State = iota // accepts configuration, world not built
	StateRunning                    // Step advances one tick
	StatePaused                     // accepts input, Step refuses to advance
	StateHalted                     // terminal: fatal invariant violation or Stop
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateHalted:
		return "halted"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// spawnEpsilon absorbs float error in tick·dt so that a spawn due exactly on
// an interval boundary is not deferred by one tick.
const spawnEpsilon = 1e-9

// Option customises a Driver at construction.
type Option func(*Driver)

// WithEventLog routes driver events into log instead of a private one.
func WithEventLog(log *EventLog) Option {
	return func(d *Driver) { d.log = log }
}

// SkipInitialUnits starts factions with no units on the field.
func SkipInitialUnits() Option {
	return func(d *Driver) { d.initialUnits = false }
}

// DisableSpawns turns the spawn timers off entirely.
func DisableSpawns() Option {
	return func(d *Driver) { d.spawns = false }
}

// Driver owns one match: the world, its RNG, spawn timers, input queue and
// the latest published snapshot. Step must be called from a single
// goroutine; Submit, Latest and State are safe from any goroutine.
type Driver struct {
	cfg          Config
	initialUnits bool
	spawns       bool

	rng       *rand.Rand
	store     *Store
	index     *SpatialIndex
	selection *SelectionEngine
	log       *EventLog
	tick      int

	state   atomic.Int32
	haltErr error

	inboxMu sync.Mutex
	inbox   []InputEvent

	latest atomic.Pointer[Snapshot]
}

// New validates cfg and returns an uninitialized driver. An invalid
// configuration is reported here; such a driver never exists.
func New(cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Driver{
		cfg:          cfg,
		initialUnits: true,
		spawns:       true,
		selection:    NewSelectionEngine(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = NewEventLog(false)
	}
	return d, nil
}

// Configure replaces the configuration before Start.
func (d *Driver) Configure(cfg Config) error {
	if d.State() != StateUninitialized {
		return fmt.Errorf("configure in state %s: %w", d.State(), ErrNotRunning)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.cfg = cfg
	return nil
}

// Start seeds the RNG, lays out markers, starting units and pylons,
// publishes the tick-0 snapshot and enters Running.
func (d *Driver) Start() error {
	if d.State() != StateUninitialized {
		return fmt.Errorf("start in state %s: %w", d.State(), ErrNotRunning)
	}
	d.rng = rand.New(rand.NewSource(d.cfg.Seed)) // #nosec G404 -- deterministic replays need a seeded PRNG
	d.store = NewStore()
	d.index = NewSpatialIndex(supportRadius)

	n := d.cfg.PlayerCount
	ring := d.cfg.ArenaSize * spawnRingFraction
	for i := 0; i < n; i++ {
		angle := float64(i) / float64(n) * 2 * math.Pi
		f := d.store.AddFaction(FromAngle(angle).Scale(ring))
		if d.initialUnits {
			marker := d.store.factions[f].Marker
			off := Vec2{X: initialUnitOffset}
			d.store.SpawnUnit(f, UnitKindLaser, marker.Add(off))
			d.store.SpawnUnit(f, UnitKindLaser, marker.Sub(off))
		}
	}
	for i := 0; i < d.cfg.PylonCount; i++ {
		d.store.AddPylon(newPylon(d.rng, d.cfg.ArenaSize))
	}
	settlePylons(d.store.Pylons(), d.cfg.PylonBounds())

	d.log.Add(0, "--", "--", "config", "start",
		fmt.Sprintf("seed=%d players=%d size=%.0f interval=%.2fs dt=%.4f pylons=%d",
			d.cfg.Seed, n, d.cfg.ArenaSize, d.cfg.SpawnInterval, d.cfg.FixedDelta, d.cfg.PylonCount),
		float64(d.cfg.Seed))

	d.latest.Store(buildSnapshot(0, d.cfg.FixedDelta, d.cfg.ArenaSize, d.store, d.selection, tickFacts{}))
	d.state.Store(int32(StateRunning))
	return nil
}

// Pause stops tick advancement; queued input is kept.
func (d *Driver) Pause() error {
	if !d.state.CompareAndSwap(int32(StateRunning), int32(StatePaused)) {
		return d.stateErr()
	}
	d.log.Add(d.tick, "--", "--", "config", "pause", "", 0)
	return nil
}

// Resume returns a paused driver to Running.
func (d *Driver) Resume() error {
	if !d.state.CompareAndSwap(int32(StatePaused), int32(StateRunning)) {
		return d.stateErr()
	}
	d.log.Add(d.tick, "--", "--", "config", "resume", "", 0)
	return nil
}

// Stop halts the driver for good without recording a fault.
func (d *Driver) Stop() {
	d.state.Store(int32(StateHalted))
}

// State reports the current lifecycle state.
func (d *Driver) State() State { return State(d.state.Load()) }

// Err returns the fault that halted the driver, or nil.
func (d *Driver) Err() error {
	if d.State() != StateHalted {
		return nil
	}
	return d.haltErr
}

// Config returns the active configuration.
func (d *Driver) Config() Config { return d.cfg }

// Tick returns the number of completed ticks.
func (d *Driver) Tick() int { return d.tick }

// EventLog returns the driver's structured log. It is only safe to read
// from the stepping goroutine.
func (d *Driver) EventLog() *EventLog { return d.log }

// Latest returns the most recently published snapshot, or nil before Start.
// Snapshots are never mutated after publication.
func (d *Driver) Latest() *Snapshot { return d.latest.Load() }

// Submit queues an input event for the next tick.
func (d *Driver) Submit(ev InputEvent) error {
	switch d.State() {
	case StateRunning, StatePaused:
	default:
		return d.stateErr()
	}
	d.inboxMu.Lock()
	d.inbox = append(d.inbox, ev)
	d.inboxMu.Unlock()
	return nil
}

func (d *Driver) drainInput() []InputEvent {
	d.inboxMu.Lock()
	defer d.inboxMu.Unlock()
	events := d.inbox
	d.inbox = nil
	return events
}

func (d *Driver) stateErr() error {
	switch s := d.State(); s {
	case StateHalted:
		if d.haltErr != nil {
			return fmt.Errorf("%w: %w", ErrHalted, d.haltErr)
		}
		return ErrHalted
	default:
		return fmt.Errorf("driver is %s: %w", s, ErrNotRunning)
	}
}

// Step advances exactly one tick and publishes its snapshot. A tick either
// completes or halts the driver; a halted driver never steps again.
func (d *Driver) Step() (*Snapshot, error) {
	if d.State() != StateRunning {
		return nil, d.stateErr()
	}
	snap, err := d.advance()
	if err != nil {
		d.haltErr = err
		d.state.Store(int32(StateHalted))
		d.log.Add(d.tick, "--", "--", "config", "halt", err.Error(), 0)
		return nil, err
	}
	d.latest.Store(snap)
	return snap, nil
}

// advance runs the fixed stage order of one tick.
func (d *Driver) advance() (*Snapshot, error) {
	if err := d.checkWorld(); err != nil {
		return nil, fmt.Errorf("before tick %d: %w", d.tick+1, err)
	}
	d.tick++
	dt := d.cfg.FixedDelta
	var facts tickFacts

	events := d.drainInput()
	d.index.Rebuild(d.store.Units(), d.store.Pylons(), interactionRadius(d.store))
	for _, ev := range events {
		d.applyInput(ev)
	}

	steerUnits(d.store, d.index, d.cfg.Bounds(), dt)
	for _, id := range advancePylons(d.store.Pylons(), d.cfg.PylonBounds(), dt) {
		d.log.AddVerbose(d.tick, pylonLabel(id), "--", "pylon", "reflect", "", 0)
	}
	d.index.Rebuild(d.store.Units(), d.store.Pylons(), 0)

	resolveSupply(d.store, d.index, dt, d.tick, d.log, &facts)
	resolveCombat(d.store, d.index, dt, d.tick, d.log, &facts)
	d.store.RemoveDead()

	if d.spawns {
		d.spawnDue(&facts)
	}

	if err := d.checkWorld(); err != nil {
		return nil, fmt.Errorf("tick %d: %w", d.tick, err)
	}
	return buildSnapshot(d.tick, dt, d.cfg.ArenaSize, d.store, d.selection, facts), nil
}

// interactionRadius is the widest reach any stage queries this tick, used
// as the grid cell size.
func interactionRadius(s *Store) float64 {
	r := math.Max(supportRadius, powerRadius)
	for _, id := range s.UnitIDs() {
		r = math.Max(r, s.units[id].AttackRange)
	}
	return r
}

// applyInput executes one queued command. Commands from players without a
// faction are dropped.
func (d *Driver) applyInput(ev InputEvent) {
	if _, ok := d.store.Faction(ev.Player); !ok {
		d.log.Add(d.tick, "--", "--", "input", "unknown-player",
			fmt.Sprintf("%s from player %d dropped", ev.Kind, ev.Player), float64(ev.Player))
		return
	}
	who := factionLabel(ev.Player)
	switch ev.Kind {
	case InputBeginSelect:
		d.selection.Begin(ev.Player, ev.Point, ev.Shape)
	case InputUpdateSelect:
		d.selection.Update(ev.Player, ev.Point)
	case InputCommitSelect:
		ids := d.selection.Commit(d.store, d.index, ev.Player, ev.Point)
		d.log.Add(d.tick, "--", who, "select", "commit", fmt.Sprintf("%d units", len(ids)), float64(len(ids)))
	case InputIssueMove:
		ids := ev.Units
		if ids == nil {
			ids = SelectedUnits(d.store, ev.Player)
		}
		moved := AssignFormation(d.store, ev.Player, ids, ev.Point)
		d.log.Add(d.tick, "--", who, "move", "order",
			fmt.Sprintf("%d units to (%.0f,%.0f), %d dropped", len(moved), ev.Point.X, ev.Point.Y, len(ids)-len(moved)),
			float64(len(moved)))
	default:
		d.log.Add(d.tick, "--", who, "input", "unknown-kind", ev.Kind.String(), 0)
	}
}

// spawnDue creates every spawn that has come due for each faction. The due
// count is derived from elapsed time, so spawns never drift or double up
// whatever the tick length.
func (d *Driver) spawnDue(facts *tickFacts) {
	elapsed := float64(d.tick) * d.cfg.FixedDelta
	due := int(math.Floor(elapsed/d.cfg.SpawnInterval + spawnEpsilon))
	bounds := d.cfg.Bounds()

	for i := range d.store.factions {
		f := &d.store.factions[i]
		if f.Spawned >= due {
			continue
		}
		rally := d.rallyPoint(f)
		for f.Spawned < due {
			jitter := Vec2{
				X: (d.rng.Float64()*2 - 1) * spawnJitter,
				Y: (d.rng.Float64()*2 - 1) * spawnJitter,
			}
			u := d.store.SpawnUnit(f.ID, UnitKindLaser, bounds.Clamp(f.Marker.Add(jitter)))
			u.HasTarget = true
			u.Target = rally
			f.Spawned++
			facts.spawned = append(facts.spawned, SpawnFact{Unit: u.ID, Faction: f.ID, Pos: u.Pos})
			d.log.Add(d.tick, unitLabel(u.ID), factionLabel(f.ID), "spawn", "timer",
				fmt.Sprintf("at (%.0f,%.0f) rally (%.0f,%.0f)", u.Pos.X, u.Pos.Y, rally.X, rally.Y),
				float64(f.Spawned))
		}
	}
}

// rallyPoint is the mean position of the faction's live units, or its
// marker when it has none.
func (d *Driver) rallyPoint(f *Faction) Vec2 {
	units := d.store.FactionUnits(f.ID)
	if len(units) == 0 {
		return f.Marker
	}
	var sum Vec2
	for _, u := range units {
		sum = sum.Add(u.Pos)
	}
	return sum.Scale(1 / float64(len(units)))
}

// checkWorld verifies the invariants every tick relies on.
func (d *Driver) checkWorld() error {
	if err := d.store.CheckIntegrity(); err != nil {
		return err
	}
	bounds := d.cfg.Bounds()
	for _, u := range d.store.Units() {
		if math.IsNaN(u.Pos.X) || math.IsNaN(u.Pos.Y) || math.IsNaN(u.Health) {
			return fmt.Errorf("%w: unit %d has NaN state", ErrCorruptWorld, u.ID)
		}
		if !bounds.Contains(u.Pos) {
			return fmt.Errorf("%w: unit %d at (%.1f,%.1f) outside arena", ErrCorruptWorld, u.ID, u.Pos.X, u.Pos.Y)
		}
	}
	pb := d.cfg.PylonBounds()
	for _, p := range d.store.Pylons() {
		if !pb.Contains(p.Pos) {
			return fmt.Errorf("%w: pylon %d at (%.1f,%.1f) outside bounds", ErrCorruptWorld, p.ID, p.Pos.X, p.Pos.Y)
		}
	}
	return nil
}

// IsFatal reports whether err came from a corrupted world.
func IsFatal(err error) bool { return errors.Is(err, ErrCorruptWorld) }
