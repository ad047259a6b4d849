package game

import (
	"math"
	"strings"
	"testing"

	"github.com/Garsondee/Supply-Lines/internal/sim"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.Seed = 9
	d, err := sim.New(cfg)
	if err != nil {
		t.Fatalf("new driver: %v", err)
	}
	if err := d.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return New(d)
}

func TestCameraRoundTrip(t *testing.T) {
	cam := newCamera(1600, 800, 24, 24)
	for _, p := range []sim.Vec2{sim.V(0, 0), sim.V(-800, -800), sim.V(800, 800), sim.V(123, -456)} {
		x, y := cam.toScreen(p)
		back := cam.toWorld(x, y)
		if back.Dist(p) > 1e-9 {
			t.Errorf("round trip %v -> (%.1f,%.1f) -> %v", p, x, y, back)
		}
	}
	x, y := cam.toScreen(sim.V(-800, -800))
	if x != 24 || y != 24 {
		t.Errorf("arena corner drawn at (%.1f,%.1f), want (24,24)", x, y)
	}
	if got := cam.length(100); got != 50 {
		t.Errorf("length(100) = %v, want 50", got)
	}
}

func TestTicksDueCarriesFraction(t *testing.T) {
	dt := 1.0 / 30.0
	frame := 1.0 / 60.0

	n, rest := ticksDue(0, 1, frame, dt)
	if n != 0 || math.Abs(rest-0.5) > 1e-9 {
		t.Fatalf("first frame: n=%d rest=%v, want 0/0.5", n, rest)
	}
	n, rest = ticksDue(rest, 1, frame, dt)
	if n != 1 || math.Abs(rest) > 1e-9 {
		t.Fatalf("second frame: n=%d rest=%v, want 1/0", n, rest)
	}
	n, _ = ticksDue(0, 4, frame, dt)
	if n != 2 {
		t.Errorf("4x speed: n=%d, want 2", n)
	}
}

func TestBeamsExpireAfterLifetime(t *testing.T) {
	beams := []beam{newBeam(sim.FireFact{Faction: 1}), newBeam(sim.FireFact{Faction: 2})}
	beams[1].ttl = sim.BeamLifetime / 3

	beams = ageBeams(beams, sim.BeamLifetime/2)
	if len(beams) != 1 || beams[0].faction != 1 {
		t.Fatalf("after half a lifetime: %+v, want only faction 1", beams)
	}
	beams = ageBeams(beams, sim.BeamLifetime)
	if len(beams) != 0 {
		t.Errorf("beams outlived their lifetime: %+v", beams)
	}
}

func TestEventPanelWrapsOldestFirst(t *testing.T) {
	p := NewEventPanel()
	for i := 0; i < logMaxEntries+5; i++ {
		p.Add(PanelEntry{Tick: i})
	}
	got := p.Recent()
	if len(got) != logMaxEntries {
		t.Fatalf("len = %d, want %d", len(got), logMaxEntries)
	}
	if got[0].Tick != 5 || got[len(got)-1].Tick != logMaxEntries+4 {
		t.Errorf("window = [%d..%d], want [5..%d]", got[0].Tick, got[len(got)-1].Tick, logMaxEntries+4)
	}
}

func TestParseFaction(t *testing.T) {
	cases := map[string]sim.FactionID{"f0": 0, "f7": 7, "--": -1, "x3": -1, "": -1}
	for in, want := range cases {
		if got := parseFaction(in); got != want {
			t.Errorf("parseFaction(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestTailCopiesPlayerFacingEvents(t *testing.T) {
	log := sim.NewEventLog(false)
	log.Add(0, "--", "--", "config", "start", "seed=1", 1)
	log.Add(3, "--", "f1", "move", "order", "2 units to (0,0), 0 dropped", 2)
	log.Add(4, "U5", "f2", "death", "killed", "by U3", 0)

	p := NewEventPanel()
	seen := p.Tail(log, 0)
	if seen != 3 {
		t.Errorf("seen = %d, want 3", seen)
	}
	got := p.Recent()
	if len(got) != 2 {
		t.Fatalf("entries = %+v, want move and death only", got)
	}
	if got[0].Faction != 1 || !strings.HasPrefix(got[0].Message, "order") {
		t.Errorf("first entry = %+v", got[0])
	}

	// Nothing new: the panel is unchanged.
	if p.Tail(log, seen) != 3 || len(p.Recent()) != 2 {
		t.Error("re-tailing duplicated entries")
	}
}

func TestObserveFeedsBeamsAndReporter(t *testing.T) {
	g := newTestGame(t)
	snap := &sim.Snapshot{
		Tick:    reportSampleTicks,
		Markers: []sim.MarkerState{{Faction: 0}, {Faction: 1}},
		Fired:   []sim.FireFact{{Source: 1, Target: 2, Faction: 0, Damage: 6}},
	}
	g.observe(snap)
	if len(g.beams) != 1 {
		t.Errorf("beams = %d, want 1", len(g.beams))
	}
	if totals := g.reporter.Totals(); len(totals) != 2 || totals[0].Shots != 1 {
		t.Errorf("totals = %+v, want one shot for f0", totals)
	}
	if g.reporter.Latest() == nil {
		t.Error("sample tick was not collected")
	}
}

func TestMatchDebugReportSections(t *testing.T) {
	g := newTestGame(t)
	if err := g.driver.Submit(sim.IssueMove(0, sim.V(10, 10))); err != nil {
		t.Fatalf("submit: %v", err)
	}
	for i := 0; i < 2*reportSampleTicks; i++ {
		snap, err := g.driver.Step()
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		g.observe(snap)
	}
	rep := g.matchDebugReport()
	for _, want := range []string{"--- Supply Lines match report ---", "seed=9", "== SELECTED (0) ==", "== EVENTS ==",
		"last_order: T=1 f0", "== LOG T=0..60 ==", "[T=001] --   f0  move"} {
		if !strings.Contains(rep, want) {
			t.Errorf("report missing %q:\n%s", want, rep)
		}
	}
}

func TestHUDShowsPauseState(t *testing.T) {
	g := newTestGame(t)
	if err := g.driver.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	lines := g.hudLines(g.driver.Latest())
	if !strings.Contains(lines[0], "PAUSED") {
		t.Errorf("first HUD line = %q, want PAUSED", lines[0])
	}
}
