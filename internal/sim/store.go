package sim

import (
	"fmt"
	"sort"
)

// UnitID identifies a unit for the lifetime of a match. IDs are never reused.
type UnitID int

// PylonID identifies a pylon.
type PylonID int

// FactionID identifies a player's faction; valid values are 0..PlayerCount-1.
type FactionID int

// UnitKind selects a row of the unit stats table.
type UnitKind int

const (
	UnitKindLaser UnitKind = iota
)

func (k UnitKind) String() string {
	switch k {
	case UnitKindLaser:
		return "laser"
	default:
		return "unknown"
	}
}

// unitStats holds the per-kind combat numbers.
type unitStats struct {
	maxHealth      float64
	damage         float64
	attackRange    float64
	attackCooldown float64 // seconds
}

var unitStatsTable = map[UnitKind]unitStats{
	UnitKindLaser: {maxHealth: 45, damage: 6, attackRange: 260, attackCooldown: 0.7},
}

// Unit is a single combat unit. Only the Store holds *Unit values; every
// other stage refers to units by UnitID and resolves them each tick.
type Unit struct {
	ID          UnitID
	Faction     FactionID
	Kind        UnitKind
	Pos         Vec2
	Vel         Vec2
	Heading     float64 // radians
	Health      float64
	MaxHealth   float64
	BaseDamage  float64
	AttackRange float64
	Cooldown    float64 // seconds until the next shot is allowed
	Selected    bool

	// Movement order state. HasTarget guards Target and Offset; arrival
	// clears all three.
	HasTarget bool
	Target    Vec2
	Offset    Vec2

	// Per-tick supply state written by the supply stage.
	Supplied   bool
	Links      int
	PowerBonus float64
	Component  int // index into the faction's component list, -1 when isolated
}

// Alive reports whether the unit still participates in queries.
func (u *Unit) Alive() bool { return u.Health > 0 }

// Destination returns where the unit is steering to.
func (u *Unit) Destination() Vec2 { return u.Target.Add(u.Offset) }

// DamageMultiplier returns the factor applied to BaseDamage this tick.
func (u *Unit) DamageMultiplier() float64 {
	if !u.Supplied {
		return 1
	}
	return 1 + float64(u.Links)*supportDamagePerLink + u.PowerBonus
}

// Faction is a player's side: a fixed spawn marker plus the spawn timer.
type Faction struct {
	ID      FactionID
	Marker  Vec2
	Spawned int // spawns performed by the timer so far
}

// Pylon is a mobile power source following a bounded three-source orbit.
type Pylon struct {
	ID     PylonID
	Pos    Vec2
	Vel    Vec2
	Phase  float64 // radians
	Omega  float64 // base angular speed, rad/s; sign flips on boundary reflection
	Radius float64 // base orbit radius
	Swing  float64 // radial amplitude driven by the other pylons
}

// Store owns every unit, pylon and faction record of a match.
type Store struct {
	units    map[UnitID]*Unit
	order    []UnitID // ascending, live units only
	nextID   UnitID
	factions []Faction
	pylons   []Pylon
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		units:  make(map[UnitID]*Unit),
		nextID: 1,
	}
}

// AddFaction registers a faction with its spawn marker. Faction IDs are
// assigned densely in registration order.
func (s *Store) AddFaction(marker Vec2) FactionID {
	id := FactionID(len(s.factions))
	s.factions = append(s.factions, Faction{ID: id, Marker: marker})
	return id
}

// Faction returns the faction record, or false if it does not exist.
func (s *Store) Faction(id FactionID) (*Faction, bool) {
	if id < 0 || int(id) >= len(s.factions) {
		return nil, false
	}
	return &s.factions[id], true
}

// Factions returns all faction records in id order.
func (s *Store) Factions() []Faction { return s.factions }

// SpawnUnit creates a unit of the given kind at pos.
func (s *Store) SpawnUnit(faction FactionID, kind UnitKind, pos Vec2) *Unit {
	st := unitStatsTable[kind]
	u := &Unit{
		ID:          s.nextID,
		Faction:     faction,
		Kind:        kind,
		Pos:         pos,
		Health:      st.maxHealth,
		MaxHealth:   st.maxHealth,
		BaseDamage:  st.damage,
		AttackRange: st.attackRange,
		Cooldown:    st.attackCooldown,
		Component:   -1,
	}
	s.nextID++
	s.units[u.ID] = u
	// nextID is monotonic, so appending keeps order sorted.
	s.order = append(s.order, u.ID)
	return u
}

// Unit resolves an id to a live unit.
func (s *Store) Unit(id UnitID) (*Unit, bool) {
	u, ok := s.units[id]
	if !ok || !u.Alive() {
		return nil, false
	}
	return u, true
}

// UnitIDs returns the live unit ids in ascending order. The slice is owned by
// the store and is only valid until the next mutation.
func (s *Store) UnitIDs() []UnitID { return s.order }

// Units returns the live units in ascending id order.
func (s *Store) Units() []*Unit {
	out := make([]*Unit, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.units[id])
	}
	return out
}

// UnitCount returns the number of stored units.
func (s *Store) UnitCount() int { return len(s.order) }

// FactionUnits returns the faction's live units in ascending id order.
func (s *Store) FactionUnits(f FactionID) []*Unit {
	var out []*Unit
	for _, id := range s.order {
		if u := s.units[id]; u.Faction == f && u.Alive() {
			out = append(out, u)
		}
	}
	return out
}

// RemoveDead drops every unit with health <= 0 and returns their ids in
// ascending order.
func (s *Store) RemoveDead() []UnitID {
	var dead []UnitID
	kept := s.order[:0]
	for _, id := range s.order {
		if s.units[id].Alive() {
			kept = append(kept, id)
			continue
		}
		dead = append(dead, id)
		delete(s.units, id)
	}
	s.order = kept
	return dead
}

// AddPylon registers a pylon and returns its id.
func (s *Store) AddPylon(p Pylon) PylonID {
	p.ID = PylonID(len(s.pylons))
	s.pylons = append(s.pylons, p)
	return p.ID
}

// Pylons returns the pylon records for in-place update.
func (s *Store) Pylons() []Pylon { return s.pylons }

// CheckIntegrity verifies the store invariants that later stages rely on.
// It is only meaningful between ticks, once dead units have been removed.
func (s *Store) CheckIntegrity() error {
	if len(s.order) != len(s.units) {
		return fmt.Errorf("%w: %d ordered ids for %d unit records", ErrCorruptWorld, len(s.order), len(s.units))
	}
	if !sort.SliceIsSorted(s.order, func(i, j int) bool { return s.order[i] < s.order[j] }) {
		return fmt.Errorf("%w: unit order is not ascending", ErrCorruptWorld)
	}
	for _, id := range s.order {
		u, ok := s.units[id]
		if !ok {
			return fmt.Errorf("%w: unit %d listed but has no record", ErrCorruptWorld, id)
		}
		if _, ok := s.Faction(u.Faction); !ok {
			return fmt.Errorf("%w: unit %d references missing faction %d", ErrCorruptWorld, id, u.Faction)
		}
		if !u.Alive() {
			return fmt.Errorf("%w: unit %d persisted with health %.3f", ErrCorruptWorld, id, u.Health)
		}
		if u.Health > u.MaxHealth {
			return fmt.Errorf("%w: unit %d health %.3f exceeds max %.3f", ErrCorruptWorld, id, u.Health, u.MaxHealth)
		}
	}
	return nil
}
