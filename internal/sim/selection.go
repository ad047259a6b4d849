package sim

import "sort"

const (
	// minGestureExtent is the drag length below which a gesture is a click
	// and selects nothing.
	minGestureExtent = 4.0
	// selectionPad grows the gesture so units whose centre sits just outside
	// the box are still picked up.
	selectionPad = 8.0
)

// Gesture is an in-progress drag for one player.
type Gesture struct {
	Active  bool
	Start   Vec2
	Current Vec2
	Shape   SelectShape
}

// Extent returns the drag length of the gesture.
func (g Gesture) Extent() float64 { return g.Start.Dist(g.Current) }

// Rect returns the padded selection rectangle.
func (g Gesture) Rect() Rect { return RectFromPoints(g.Start, g.Current).Pad(selectionPad) }

// SelectionEngine tracks per-player gestures and turns committed gestures
// into selections. Gestures are transient and never part of the world.
type SelectionEngine struct {
	gestures map[FactionID]*Gesture
}

// NewSelectionEngine returns an engine with no active gestures.
func NewSelectionEngine() *SelectionEngine {
	return &SelectionEngine{gestures: make(map[FactionID]*Gesture)}
}

// Begin starts a gesture for player at p, discarding any unfinished one.
func (e *SelectionEngine) Begin(player FactionID, p Vec2, shape SelectShape) {
	e.gestures[player] = &Gesture{Active: true, Start: p, Current: p, Shape: shape}
}

// Update moves the gesture's free corner. Without an active gesture it is a
// no-op.
func (e *SelectionEngine) Update(player FactionID, p Vec2) {
	if g, ok := e.gestures[player]; ok && g.Active {
		g.Current = p
	}
}

// Gesture returns the player's active gesture, if any.
func (e *SelectionEngine) Gesture(player FactionID) (Gesture, bool) {
	g, ok := e.gestures[player]
	if !ok || !g.Active {
		return Gesture{}, false
	}
	return *g, true
}

// Commit closes the player's gesture at p and replaces the player's
// selection with the units it covers. A commit with no preceding Begin is
// treated as a click at p. The returned ids are ascending.
func (e *SelectionEngine) Commit(store *Store, index *SpatialIndex, player FactionID, p Vec2) []UnitID {
	g, ok := e.gestures[player]
	if !ok || !g.Active {
		g = &Gesture{Start: p, Shape: ShapeRect}
	}
	g.Current = p
	delete(e.gestures, player)

	for _, u := range store.FactionUnits(player) {
		u.Selected = false
	}
	if g.Extent() < minGestureExtent {
		return nil
	}

	var hits []Entry
	switch g.Shape {
	case ShapeCircle:
		hits = index.UnitsInRadius(g.Start, g.Extent()+selectionPad)
	default:
		hits = filterKind(index.QueryRect(g.Rect()), KindUnit)
	}

	var selected []UnitID
	for _, h := range hits {
		if h.Faction != player {
			continue
		}
		u, ok := store.Unit(h.UnitID())
		if !ok || u.Faction != player {
			continue
		}
		u.Selected = true
		selected = append(selected, u.ID)
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i] < selected[j] })
	return selected
}

// SelectedUnits returns the player's currently selected live units in
// ascending id order.
func SelectedUnits(store *Store, player FactionID) []UnitID {
	var ids []UnitID
	for _, u := range store.FactionUnits(player) {
		if u.Selected {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

// ActiveGestures returns every open gesture ordered by player.
func (e *SelectionEngine) ActiveGestures() []GestureState {
	out := make([]GestureState, 0, len(e.gestures))
	for player, g := range e.gestures {
		if g.Active {
			out = append(out, GestureState{Player: player, Gesture: *g})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Player < out[j].Player })
	return out
}
