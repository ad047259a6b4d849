package termview

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Supply-Lines/internal/sim"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func TestViewportCorners(t *testing.T) {
	vp := Viewport{W: 80, H: 40, Arena: 1600}
	cases := []struct {
		p    sim.Vec2
		x, y int
	}{
		{sim.V(-800, -800), 0, 0},
		{sim.V(800, 800), 79, 39},
		{sim.V(0, 0), 40, 20},
	}
	for _, c := range cases {
		x, y, ok := vp.ToCell(c.p)
		if !ok || x != c.x || y != c.y {
			t.Errorf("ToCell(%v) = (%d,%d,%v), want (%d,%d,true)", c.p, x, y, ok, c.x, c.y)
		}
	}
	if _, _, ok := vp.ToCell(sim.V(900, 0)); ok {
		t.Error("point outside the arena mapped to a cell")
	}
}

func TestViewportRoundTrip(t *testing.T) {
	vp := Viewport{W: 80, H: 40, Arena: 1600}
	for _, c := range [][2]int{{0, 0}, {12, 7}, {79, 39}} {
		x, y, ok := vp.ToCell(vp.ToArena(c[0], c[1]))
		if !ok || x != c[0] || y != c[1] {
			t.Errorf("cell %v round-tripped to (%d,%d,%v)", c, x, y, ok)
		}
	}
}

func TestDrawPlacesUnitsAndHUD(t *testing.T) {
	screen := newScreen(t, 80, 42)
	v := New(screen, 0)

	snap := &sim.Snapshot{
		Tick:      30,
		Time:      1,
		ArenaSize: 1600,
		Units: []sim.UnitState{
			{ID: 1, Faction: 0, Pos: sim.V(0, 0), Supplied: true},
			{ID: 2, Faction: 1, Pos: sim.V(-800, -800)},
		},
		Pylons:  []sim.PylonState{{ID: 0, Pos: sim.V(400, 0)}},
		Markers: []sim.MarkerState{{Faction: 0, Pos: sim.V(0, 400)}},
		Supply:  []sim.FactionSupply{{Faction: 0, Supplied: 1}, {Faction: 1}},
	}
	v.Draw(snap, "running")

	check := func(x, y int, want rune) {
		t.Helper()
		got, _, _, _ := screen.GetContent(x, y)
		if got != want {
			t.Errorf("cell (%d,%d) = %q, want %q", x, y, got, want)
		}
	}
	check(40, 20, glyphSupplied)
	check(0, 0, glyphUnit)
	check(60, 20, glyphPylon)
	check(40, 30, glyphMarker)

	var hud strings.Builder
	for x := 0; x < 80; x++ {
		r, _, _, _ := screen.GetContent(x, 40)
		hud.WriteRune(r)
	}
	if !strings.Contains(hud.String(), "T=30") {
		t.Errorf("HUD row = %q, want tick counter", hud.String())
	}
}

func TestMouseDragProducesSelectionEvents(t *testing.T) {
	screen := newScreen(t, 80, 42)
	v := New(screen, 2)

	press := tcell.NewEventMouse(10, 10, tcell.Button1, tcell.ModNone)
	drag := tcell.NewEventMouse(20, 15, tcell.Button1, tcell.ModNone)
	release := tcell.NewEventMouse(20, 15, tcell.ButtonNone, tcell.ModNone)

	var kinds []sim.InputKind
	for _, ev := range []tcell.Event{press, drag, release} {
		_, evs := v.Handle(ev, 1600)
		for _, e := range evs {
			if e.Player != 2 {
				t.Errorf("event for player %d, want 2", e.Player)
			}
			kinds = append(kinds, e.Kind)
		}
	}
	want := []sim.InputKind{sim.InputBeginSelect, sim.InputUpdateSelect, sim.InputCommitSelect}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestRightClickIssuesMove(t *testing.T) {
	screen := newScreen(t, 80, 42)
	v := New(screen, 0)
	_, evs := v.Handle(tcell.NewEventMouse(40, 20, tcell.Button2, tcell.ModNone), 1600)
	if len(evs) != 1 || evs[0].Kind != sim.InputIssueMove {
		t.Fatalf("events = %+v, want one move", evs)
	}
	if d := evs[0].Point.Dist(sim.V(0, 0)); d > 40 {
		t.Errorf("move point %v is %.1f from the arena centre", evs[0].Point, d)
	}
}

func TestKeyActions(t *testing.T) {
	screen := newScreen(t, 80, 42)
	v := New(screen, 0)
	cases := map[rune]Action{
		'q': ActionQuit,
		'p': ActionTogglePause,
		'.': ActionFaster,
		',': ActionSlower,
	}
	for r, want := range cases {
		got, _ := v.Handle(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone), 1600)
		if got != want {
			t.Errorf("key %q = %v, want %v", r, got, want)
		}
	}
	_, evs := v.Handle(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), 1600)
	if len(evs) != 2 || evs[0].Kind != sim.InputBeginSelect || evs[1].Kind != sim.InputCommitSelect {
		t.Errorf("select-all produced %+v", evs)
	}
}

func TestCueFrequencyCapped(t *testing.T) {
	if cueFrequency(1) >= cueFrequency(5) {
		t.Error("more shots should raise the pitch")
	}
	if cueFrequency(100) != 2*cueBaseFreq {
		t.Errorf("cap = %v, want %v", cueFrequency(100), 2*cueBaseFreq)
	}
	var c *Cue
	c.Fired(3, time.Now())
}
