package sim

import (
	"sort"
	"testing"
)

func idsOf(entries []Entry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	sort.Ints(out)
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSpatialIndexQueryRadiusInclusive(t *testing.T) {
	units := []*Unit{
		{ID: 1, Pos: V(0, 0), Health: 1},
		{ID: 2, Pos: V(150, 0), Health: 1},
		{ID: 3, Pos: V(151, 0), Health: 1},
		{ID: 4, Pos: V(-100, -100), Health: 1},
	}
	g := NewSpatialIndex(supportRadius)
	g.Rebuild(units, nil, 0)

	got := idsOf(g.QueryRadius(V(0, 0), 150))
	want := []int{1, 2, 4}
	if !equalInts(got, want) {
		t.Fatalf("QueryRadius = %v, want %v", got, want)
	}
	if g.Len() != 4 {
		t.Fatalf("Len = %d, want 4", g.Len())
	}
}

func TestSpatialIndexSkipsDeadUnits(t *testing.T) {
	units := []*Unit{
		{ID: 1, Pos: V(0, 0), Health: 10},
		{ID: 2, Pos: V(5, 0), Health: 0},
	}
	g := NewSpatialIndex(0)
	g.Rebuild(units, nil, 0)
	if got := idsOf(g.QueryRadius(V(0, 0), 50)); !equalInts(got, []int{1}) {
		t.Fatalf("dead unit indexed: got %v", got)
	}
}

func TestSpatialIndexQueryRectAcrossCells(t *testing.T) {
	units := []*Unit{
		{ID: 1, Pos: V(-10, -10), Health: 1},
		{ID: 2, Pos: V(10, 10), Health: 1},
		{ID: 3, Pos: V(299, -299), Health: 1},
		{ID: 4, Pos: V(301, 0), Health: 1},
	}
	g := NewSpatialIndex(100)
	g.Rebuild(units, nil, 0)

	got := idsOf(g.QueryRect(RectFromPoints(V(300, 300), V(-300, -300))))
	if !equalInts(got, []int{1, 2, 3}) {
		t.Fatalf("QueryRect = %v, want [1 2 3]", got)
	}
}

func TestSpatialIndexKindsFiltered(t *testing.T) {
	units := []*Unit{{ID: 7, Faction: 1, Pos: V(0, 0), Health: 1}}
	pylons := []Pylon{{ID: 0, Pos: V(20, 0)}}
	g := NewSpatialIndex(supportRadius)
	g.Rebuild(units, pylons, 0)

	us := g.UnitsInRadius(V(0, 0), 50)
	if len(us) != 1 || us[0].UnitID() != 7 || us[0].Faction != 1 {
		t.Fatalf("UnitsInRadius = %+v", us)
	}
	ps := g.PylonsInRadius(V(0, 0), 50)
	if len(ps) != 1 || ps[0].Kind != KindPylon || ps[0].Faction != -1 {
		t.Fatalf("PylonsInRadius = %+v", ps)
	}
}

func TestSpatialIndexRebuildDropsStalePositions(t *testing.T) {
	u := &Unit{ID: 1, Pos: V(0, 0), Health: 1}
	g := NewSpatialIndex(supportRadius)
	g.Rebuild([]*Unit{u}, nil, 0)

	u.Pos = V(500, 500)
	g.Rebuild([]*Unit{u}, nil, 0)
	if len(g.QueryRadius(V(0, 0), 10)) != 0 {
		t.Fatal("old position still indexed after rebuild")
	}
	if len(g.QueryRadius(V(500, 500), 10)) != 1 {
		t.Fatal("new position missing after rebuild")
	}
}

func TestSpatialIndexQueriesClipToOccupiedCells(t *testing.T) {
	units := []*Unit{
		{ID: 1, Pos: V(-400, -400), Health: 1},
		{ID: 2, Pos: V(400, 400), Health: 1},
	}
	g := NewSpatialIndex(supportRadius)
	g.Rebuild(units, nil, 0)

	if got := idsOf(g.QueryRect(Rect{Min: V(-1e12, -1e12), Max: V(1e12, 1e12)})); !equalInts(got, []int{1, 2}) {
		t.Fatalf("huge QueryRect = %v, want [1 2]", got)
	}
	if got := idsOf(g.QueryRadius(V(0, 0), 1e12)); !equalInts(got, []int{1, 2}) {
		t.Fatalf("huge QueryRadius = %v, want [1 2]", got)
	}
	if got := g.QueryRect(Rect{Min: V(5000, 5000), Max: V(1e9, 1e9)}); len(got) != 0 {
		t.Fatalf("rect beyond every unit returned %v", idsOf(got))
	}

	empty := NewSpatialIndex(supportRadius)
	empty.Rebuild(nil, nil, 0)
	if got := empty.QueryRadius(V(0, 0), 1e12); len(got) != 0 {
		t.Fatalf("empty index returned %v", idsOf(got))
	}
}
