package sim

import (
	"math"
	"sort"
)

// FormationOffsets returns count offsets around a move target. Slot 0 is the
// target itself; further slots fill hexagonal rings outward, ring k holding
// 6k slots at radius k × formationSpacing. Adjacent slots are never closer
// than formationSpacing, which is well above two unit radii.
func FormationOffsets(count int) []Vec2 {
	offsets := make([]Vec2, 0, count)
	if count <= 0 {
		return offsets
	}
	offsets = append(offsets, Vec2{})
	for ring := 1; len(offsets) < count; ring++ {
		slots := ring * 6
		radius := float64(ring) * formationSpacing
		for i := 0; i < slots && len(offsets) < count; i++ {
			angle := float64(i) / float64(slots) * 2 * math.Pi
			offsets = append(offsets, FromAngle(angle).Scale(radius))
		}
	}
	return offsets
}

// AssignFormation hands out formation slots around target to the given
// units. Ids are sorted before assignment so the result depends only on the
// id set; ids that no longer resolve to a live unit of player are dropped.
// It returns the ids that actually received an order.
func AssignFormation(store *Store, player FactionID, ids []UnitID, target Vec2) []UnitID {
	sorted := append([]UnitID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	live := sorted[:0]
	var prev UnitID
	for i, id := range sorted {
		if i > 0 && id == prev {
			continue
		}
		prev = id
		if u, ok := store.Unit(id); ok && u.Faction == player {
			live = append(live, id)
		}
	}

	offsets := FormationOffsets(len(live))
	for i, id := range live {
		u, _ := store.Unit(id)
		u.HasTarget = true
		u.Target = target
		u.Offset = offsets[i]
	}
	return live
}
