package sim

import "image/color"

// FactionColors is the renderer palette, indexed by FactionID.
var FactionColors = [MaxPlayers]color.RGBA{
	{237, 66, 71, 255},
	{66, 166, 237, 255},
	{240, 194, 41, 255},
	{161, 120, 240, 255},
	{46, 204, 145, 255},
	{240, 112, 41, 255},
	{56, 217, 217, 255},
	{237, 92, 153, 255},
}

// UnitState is the published view of one unit.
type UnitState struct {
	ID          UnitID
	Faction     FactionID
	Kind        UnitKind
	Pos         Vec2
	Vel         Vec2
	Heading     float64
	Health      float64
	MaxHealth   float64
	Selected    bool
	Supplied    bool
	Links       int
	PowerBonus  float64
	DamageMult  float64
	HasTarget   bool
	Destination Vec2
}

// PylonState is the published view of one pylon.
type PylonState struct {
	ID    PylonID
	Pos   Vec2
	Vel   Vec2
	Phase float64
}

// MarkerState is a faction's fixed spawn marker.
type MarkerState struct {
	Faction FactionID
	Pos     Vec2
}

// GestureState is an open selection drag, exposed so renderers can draw it.
type GestureState struct {
	Player FactionID
	Gesture
}

// FactionSupply summarises one faction's support network for a tick.
type FactionSupply struct {
	Faction    FactionID
	Alive      int
	Supplied   int // units in supplied components
	Powered    int // units within power radius of a pylon, supplied components only
	Links      int
	Components int
}

// FireFact records one shot.
type FireFact struct {
	Tick    int
	Source  UnitID
	Target  UnitID
	Faction FactionID
	From    Vec2
	To      Vec2
	Damage  float64
}

// LinkFact records one support link.
type LinkFact struct {
	A, B     UnitID
	Faction  FactionID
	From, To Vec2
	Supplied bool
	Powered  bool
}

// PowerFact records a powered unit drawing from a pylon.
type PowerFact struct {
	Pylon   PylonID
	Unit    UnitID
	Faction FactionID
	From    Vec2
	To      Vec2
}

// SpawnFact records a unit created by a spawn timer.
type SpawnFact struct {
	Unit    UnitID
	Faction FactionID
	Pos     Vec2
}

// DeathFact records a unit removed this tick.
type DeathFact struct {
	Unit          UnitID
	Faction       FactionID
	Pos           Vec2
	Killer        UnitID
	KillerFaction FactionID
}

// Snapshot is the complete, immutable result of one tick. Published
// snapshots share no memory with the live world.
type Snapshot struct {
	Tick      int
	Time      float64 // simulated seconds
	ArenaSize float64
	Units     []UnitState // ascending id
	Pylons    []PylonState
	Markers   []MarkerState
	Gestures  []GestureState
	Supply    []FactionSupply
	Fired     []FireFact
	Links     []LinkFact
	Powered   []PowerFact
	Spawned   []SpawnFact
	Died      []DeathFact
}

// Unit looks up a unit by id with a binary search over the sorted slice.
func (s *Snapshot) Unit(id UnitID) (UnitState, bool) {
	lo, hi := 0, len(s.Units)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.Units[mid].ID < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(s.Units) && s.Units[lo].ID == id {
		return s.Units[lo], true
	}
	return UnitState{}, false
}

// AliveByFaction counts units per faction.
func (s *Snapshot) AliveByFaction() map[FactionID]int {
	out := make(map[FactionID]int, len(s.Markers))
	for _, m := range s.Markers {
		out[m.Faction] = 0
	}
	for _, u := range s.Units {
		out[u.Faction]++
	}
	return out
}

// tickFacts accumulates the transient facts of the tick in progress.
type tickFacts struct {
	fired   []FireFact
	links   []LinkFact
	powered []PowerFact
	spawned []SpawnFact
	died    []DeathFact
	supply  []FactionSupply
}

// buildSnapshot deep-copies the world into a fresh Snapshot. The fact slices
// are handed over, not copied; the driver allocates new ones every tick.
func buildSnapshot(tick int, dt, arenaSize float64, store *Store, sel *SelectionEngine, facts tickFacts) *Snapshot {
	snap := &Snapshot{
		Tick:      tick,
		Time:      float64(tick) * dt,
		ArenaSize: arenaSize,
		Units:     make([]UnitState, 0, store.UnitCount()),
		Gestures:  sel.ActiveGestures(),
		Supply:    facts.supply,
		Fired:     facts.fired,
		Links:     facts.links,
		Powered:   facts.powered,
		Spawned:   facts.spawned,
		Died:      facts.died,
	}
	for _, u := range store.Units() {
		snap.Units = append(snap.Units, UnitState{
			ID:          u.ID,
			Faction:     u.Faction,
			Kind:        u.Kind,
			Pos:         u.Pos,
			Vel:         u.Vel,
			Heading:     u.Heading,
			Health:      u.Health,
			MaxHealth:   u.MaxHealth,
			Selected:    u.Selected,
			Supplied:    u.Supplied,
			Links:       u.Links,
			PowerBonus:  u.PowerBonus,
			DamageMult:  u.DamageMultiplier(),
			HasTarget:   u.HasTarget,
			Destination: u.Destination(),
		})
	}
	for _, p := range store.Pylons() {
		snap.Pylons = append(snap.Pylons, PylonState{ID: p.ID, Pos: p.Pos, Vel: p.Vel, Phase: p.Phase})
	}
	for _, f := range store.Factions() {
		snap.Markers = append(snap.Markers, MarkerState{Faction: f.ID, Pos: f.Marker})
	}
	return snap
}
