package sim

import (
	"fmt"
	"sort"
)

// supplyEdge is one support link between two friendly units, a < b.
type supplyEdge struct {
	a, b UnitID
}

// supplyNetwork is one faction's support graph for a single tick. It is
// rebuilt from scratch every tick and never outlives it.
type supplyNetwork struct {
	faction    FactionID
	units      []*Unit // ascending id
	edges      []supplyEdge
	components [][]*Unit // ordered by lowest member id
	supplied   []bool    // per component
	powered    []int     // per component: units within power radius of a pylon
}

// buildSupplyNetwork links every pair of the faction's live units within
// supportRadius, groups them into components and marks the components that
// touch the spawn marker.
func buildSupplyNetwork(store *Store, index *SpatialIndex, f *Faction) *supplyNetwork {
	net := &supplyNetwork{faction: f.ID, units: store.FactionUnits(f.ID)}
	uf := newUnionFind(len(net.units))

	for _, u := range net.units {
		u.Supplied = false
		u.Links = 0
		u.PowerBonus = 0
		u.Component = -1
		uf.find(u.ID)
	}

	for _, u := range net.units {
		var neighbours []UnitID
		for _, e := range index.UnitsInRadius(u.Pos, supportRadius) {
			if e.Faction != f.ID || e.UnitID() <= u.ID {
				continue
			}
			neighbours = append(neighbours, e.UnitID())
		}
		sort.Slice(neighbours, func(i, j int) bool { return neighbours[i] < neighbours[j] })
		for _, id := range neighbours {
			v, ok := store.Unit(id)
			if !ok {
				continue
			}
			net.edges = append(net.edges, supplyEdge{a: u.ID, b: id})
			u.Links++
			v.Links++
			uf.union(u.ID, id)
		}
	}

	// Components are numbered in order of their lowest id because units are
	// visited ascending.
	byRoot := make(map[UnitID]int)
	for _, u := range net.units {
		root := uf.find(u.ID)
		c, ok := byRoot[root]
		if !ok {
			c = len(net.components)
			byRoot[root] = c
			net.components = append(net.components, nil)
		}
		u.Component = c
		net.components[c] = append(net.components[c], u)
	}

	net.supplied = make([]bool, len(net.components))
	net.powered = make([]int, len(net.components))
	for _, e := range index.UnitsInRadius(f.Marker, supportRadius) {
		if e.Faction != f.ID {
			continue
		}
		if u, ok := store.Unit(e.UnitID()); ok && u.Component >= 0 {
			net.supplied[u.Component] = true
		}
	}
	return net
}

// applyBuffs writes supply state onto the units, regenerates health and
// collects the link and power facts of the tick. Unsupplied components get
// nothing regardless of how densely they are linked.
func (net *supplyNetwork) applyBuffs(index *SpatialIndex, dt float64, facts *tickFacts) FactionSupply {
	sum := FactionSupply{
		Faction:    net.faction,
		Alive:      len(net.units),
		Links:      len(net.edges),
		Components: len(net.components),
	}

	var powerLinks []PowerFact
	for c, members := range net.components {
		if !net.supplied[c] {
			continue
		}
		for _, u := range members {
			pylons := index.PylonsInRadius(u.Pos, powerRadius)
			if len(pylons) == 0 {
				continue
			}
			net.powered[c]++
			sort.Slice(pylons, func(i, j int) bool { return pylons[i].ID < pylons[j].ID })
			for _, p := range pylons {
				powerLinks = append(powerLinks, PowerFact{
					Pylon:   PylonID(p.ID),
					Unit:    u.ID,
					Faction: net.faction,
					From:    p.Pos,
					To:      u.Pos,
				})
			}
		}
		bonus := float64(net.powered[c]) * powerDamagePerUnit
		for _, u := range members {
			u.Supplied = true
			u.PowerBonus = bonus
			if u.Links > 0 {
				regen := float64(u.Links) * supportRegenPerLink * dt
				u.Health = clamp(u.Health+regen, 0, u.MaxHealth)
			}
		}
		sum.Supplied += len(members)
		sum.Powered += net.powered[c]
	}

	units := make(map[UnitID]*Unit, len(net.units))
	for _, u := range net.units {
		units[u.ID] = u
	}
	for _, e := range net.edges {
		a, b := units[e.a], units[e.b]
		c := a.Component
		facts.links = append(facts.links, LinkFact{
			A:        e.a,
			B:        e.b,
			Faction:  net.faction,
			From:     a.Pos,
			To:       b.Pos,
			Supplied: net.supplied[c],
			Powered:  net.powered[c] > 0,
		})
	}
	facts.powered = append(facts.powered, powerLinks...)
	return sum
}

// resolveSupply runs the supply stage for every faction in id order.
func resolveSupply(store *Store, index *SpatialIndex, dt float64, tick int, log *EventLog, facts *tickFacts) {
	for i := range store.Factions() {
		f := &store.Factions()[i]
		net := buildSupplyNetwork(store, index, f)
		sum := net.applyBuffs(index, dt, facts)
		facts.supply = append(facts.supply, sum)
		log.AddVerbose(tick, "--", factionLabel(f.ID), "supply", "network",
			fmt.Sprintf("alive=%d supplied=%d powered=%d links=%d components=%d",
				sum.Alive, sum.Supplied, sum.Powered, sum.Links, sum.Components),
			float64(sum.Supplied))
	}
}
