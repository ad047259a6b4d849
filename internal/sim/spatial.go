package sim

import "math"

// EntityKind tags what a spatial entry refers to.
type EntityKind uint8

const (
	KindUnit EntityKind = iota
	KindPylon
)

// Entry is one indexed entity.
type Entry struct {
	Kind    EntityKind
	ID      int // UnitID or PylonID depending on Kind
	Faction FactionID
	Pos     Vec2
}

// UnitID returns the entry id as a UnitID. Only valid when Kind == KindUnit.
func (e Entry) UnitID() UnitID { return UnitID(e.ID) }

// cellKey uniquely identifies a grid cell.
type cellKey struct {
	cx, cy int
}

// SpatialIndex is a uniform hash grid over the arena. It must be rebuilt
// every tick; positions are copied in at Rebuild and never read back from the
// store, so queries reflect the world as of the last rebuild.
type SpatialIndex struct {
	cells    map[cellKey][]Entry
	cellSize float64
	count    int

	// Occupied cell range since the last rebuild. Queries never walk
	// outside it, whatever area they ask for.
	lo, hi cellKey
}

// NewSpatialIndex creates an empty index with the given cell size.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	if cellSize <= 0 {
		cellSize = supportRadius
	}
	return &SpatialIndex{
		cells:    make(map[cellKey][]Entry),
		cellSize: cellSize,
	}
}

// CellSize returns the current cell edge length.
func (g *SpatialIndex) CellSize() float64 { return g.cellSize }

// Len returns the number of indexed entries.
func (g *SpatialIndex) Len() int { return g.count }

func (g *SpatialIndex) keyFor(p Vec2) cellKey {
	return cellKey{
		cx: int(math.Floor(p.X / g.cellSize)),
		cy: int(math.Floor(p.Y / g.cellSize)),
	}
}

// Rebuild discards all entries and re-inserts the live units and all pylons.
// cellSize <= 0 keeps the previous cell size.
func (g *SpatialIndex) Rebuild(units []*Unit, pylons []Pylon, cellSize float64) {
	if cellSize > 0 {
		g.cellSize = cellSize
	}
	for k := range g.cells {
		delete(g.cells, k)
	}
	g.count = 0
	g.lo, g.hi = cellKey{}, cellKey{}
	for _, u := range units {
		if !u.Alive() {
			continue
		}
		g.insert(Entry{Kind: KindUnit, ID: int(u.ID), Faction: u.Faction, Pos: u.Pos})
	}
	for _, p := range pylons {
		g.insert(Entry{Kind: KindPylon, ID: int(p.ID), Faction: -1, Pos: p.Pos})
	}
}

func (g *SpatialIndex) insert(e Entry) {
	k := g.keyFor(e.Pos)
	g.cells[k] = append(g.cells[k], e)
	if g.count == 0 {
		g.lo, g.hi = k, k
	} else {
		g.lo.cx, g.lo.cy = min(g.lo.cx, k.cx), min(g.lo.cy, k.cy)
		g.hi.cx, g.hi.cy = max(g.hi.cx, k.cx), max(g.hi.cy, k.cy)
	}
	g.count++
}

// span converts a world-space box to the cell range a query must visit,
// clipped to the occupied range. ok is false when the index is empty.
func (g *SpatialIndex) span(from, to Vec2) (lo, hi cellKey, ok bool) {
	if g.count == 0 {
		return cellKey{}, cellKey{}, false
	}
	lo = cellKey{
		cx: clampCell(math.Floor(from.X/g.cellSize), g.lo.cx, g.hi.cx),
		cy: clampCell(math.Floor(from.Y/g.cellSize), g.lo.cy, g.hi.cy),
	}
	hi = cellKey{
		cx: clampCell(math.Floor(to.X/g.cellSize), g.lo.cx, g.hi.cx),
		cy: clampCell(math.Floor(to.Y/g.cellSize), g.lo.cy, g.hi.cy),
	}
	return lo, hi, true
}

// clampCell limits a floored cell coordinate to [lo, hi] before converting
// it, so huge or NaN inputs never reach the int conversion.
func clampCell(v float64, lo, hi int) int {
	if !(v >= float64(lo)) {
		return lo
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}

// QueryRadius returns entries within radius of center (inclusive). Order is
// deterministic for a given rebuild but callers must not rely on it.
func (g *SpatialIndex) QueryRadius(center Vec2, radius float64) []Entry {
	if radius < 0 {
		return nil
	}
	lo, hi, ok := g.span(
		Vec2{X: center.X - radius, Y: center.Y - radius},
		Vec2{X: center.X + radius, Y: center.Y + radius},
	)
	if !ok {
		return nil
	}
	var results []Entry
	r2 := radius * radius
	for cx := lo.cx; cx <= hi.cx; cx++ {
		for cy := lo.cy; cy <= hi.cy; cy++ {
			for _, e := range g.cells[cellKey{cx, cy}] {
				if e.Pos.DistSq(center) <= r2 {
					results = append(results, e)
				}
			}
		}
	}
	return results
}

// QueryRect returns entries inside r (edges included).
func (g *SpatialIndex) QueryRect(r Rect) []Entry {
	lo, hi, ok := g.span(r.Min, r.Max)
	if !ok {
		return nil
	}
	var results []Entry
	for cx := lo.cx; cx <= hi.cx; cx++ {
		for cy := lo.cy; cy <= hi.cy; cy++ {
			for _, e := range g.cells[cellKey{cx, cy}] {
				if r.Contains(e.Pos) {
					results = append(results, e)
				}
			}
		}
	}
	return results
}

// UnitsInRadius is QueryRadius restricted to units.
func (g *SpatialIndex) UnitsInRadius(center Vec2, radius float64) []Entry {
	return filterKind(g.QueryRadius(center, radius), KindUnit)
}

// PylonsInRadius is QueryRadius restricted to pylons.
func (g *SpatialIndex) PylonsInRadius(center Vec2, radius float64) []Entry {
	return filterKind(g.QueryRadius(center, radius), KindPylon)
}

func filterKind(in []Entry, kind EntityKind) []Entry {
	out := in[:0]
	for _, e := range in {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
