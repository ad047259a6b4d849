package sim

// unionFind groups unit ids into connected components.
type unionFind struct {
	parent map[UnitID]UnitID
	rank   map[UnitID]int
}

func newUnionFind(size int) *unionFind {
	return &unionFind{
		parent: make(map[UnitID]UnitID, size),
		rank:   make(map[UnitID]int, size),
	}
}

// find returns the root of the set containing id, adding id as a singleton
// the first time it is seen.
func (uf *unionFind) find(id UnitID) UnitID {
	p, ok := uf.parent[id]
	if !ok {
		uf.parent[id] = id
		return id
	}
	if p != id {
		p = uf.find(p)
		uf.parent[id] = p // path compression
	}
	return p
}

// union merges the sets containing a and b.
func (uf *unionFind) union(a, b UnitID) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}
