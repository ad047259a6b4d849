package sim

import "fmt"

// resolveCombat lets every ready unit fire at its nearest enemy. Units are
// evaluated in ascending id order and damage lands immediately, so a unit
// killed earlier in the pass neither fires nor gets targeted afterwards.
// Dead units stay in the store until the driver calls RemoveDead.
func resolveCombat(store *Store, index *SpatialIndex, dt float64, tick int, log *EventLog, facts *tickFacts) {
	for _, id := range store.UnitIDs() {
		u, ok := store.Unit(id)
		if !ok {
			continue
		}
		u.Cooldown -= dt
		if u.Cooldown > 0 {
			continue
		}
		u.Cooldown = 0

		target, ok := nearestEnemy(store, index, u)
		if !ok {
			continue
		}

		damage := u.BaseDamage * u.DamageMultiplier()
		target.Health = clamp(target.Health-damage, 0, target.MaxHealth)
		u.Cooldown = unitStatsTable[u.Kind].attackCooldown
		u.Heading = target.Pos.Sub(u.Pos).Angle()

		facts.fired = append(facts.fired, FireFact{
			Tick:    tick,
			Source:  u.ID,
			Target:  target.ID,
			Faction: u.Faction,
			From:    u.Pos,
			To:      target.Pos,
			Damage:  damage,
		})
		log.AddVerbose(tick, unitLabel(u.ID), factionLabel(u.Faction), "combat", "fired",
			fmt.Sprintf("%s → %s dmg=%.2f", unitLabel(u.ID), unitLabel(target.ID), damage), damage)

		if !target.Alive() {
			facts.died = append(facts.died, DeathFact{
				Unit:          target.ID,
				Faction:       target.Faction,
				Pos:           target.Pos,
				Killer:        u.ID,
				KillerFaction: u.Faction,
			})
			log.Add(tick, unitLabel(target.ID), factionLabel(target.Faction), "death", "killed",
				fmt.Sprintf("by %s", unitLabel(u.ID)), 0)
		}
	}
}

// nearestEnemy returns the closest live unit of another faction within
// attack range. Equal distances resolve to the lower id.
func nearestEnemy(store *Store, index *SpatialIndex, u *Unit) (*Unit, bool) {
	var (
		best     *Unit
		bestDist float64
	)
	for _, e := range index.UnitsInRadius(u.Pos, u.AttackRange) {
		if e.Faction == u.Faction {
			continue
		}
		t, ok := store.Unit(e.UnitID())
		if !ok {
			continue
		}
		d := t.Pos.DistSq(u.Pos)
		if best == nil || d < bestDist || (d == bestDist && t.ID < best.ID) {
			best, bestDist = t, d
		}
	}
	return best, best != nil
}
