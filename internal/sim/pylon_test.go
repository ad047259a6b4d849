package sim

import (
	"math/rand"
	"testing"
)

func TestPylonsStayInBoundsManyTicks(t *testing.T) {
	cfg := DefaultConfig()
	bounds := cfg.PylonBounds()
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- test
		pylons := make([]Pylon, 3)
		for i := range pylons {
			pylons[i] = newPylon(rng, cfg.ArenaSize)
			pylons[i].ID = PylonID(i)
		}
		settlePylons(pylons, bounds)
		for tick := 0; tick < 20000; tick++ {
			advancePylons(pylons, bounds, cfg.FixedDelta)
			for _, p := range pylons {
				if !bounds.Contains(p.Pos) {
					t.Fatalf("seed %d tick %d: pylon %d at %+v left bounds", seed, tick, p.ID, p.Pos)
				}
			}
		}
	}
}

func TestPylonReflectsAtBoundary(t *testing.T) {
	bounds := DefaultConfig().PylonBounds()
	pylons := []Pylon{{ID: 0, Radius: 1000, Omega: 0.5}}
	reflected := advancePylons(pylons, bounds, 1.0/30)
	if len(reflected) != 1 || reflected[0] != 0 {
		t.Fatalf("reflected = %v, want [0]", reflected)
	}
	p := pylons[0]
	if !bounds.Contains(p.Pos) {
		t.Fatalf("pylon at %+v outside bounds after clamp", p.Pos)
	}
	if p.Omega != -0.5 {
		t.Fatalf("omega = %.2f, want direction reversed", p.Omega)
	}
}

func TestPylonCouplingPullsPhasesTogether(t *testing.T) {
	pylons := []Pylon{
		{ID: 0, Phase: 0, Radius: 200},
		{ID: 1, Phase: 1, Radius: 200},
	}
	bounds := DefaultConfig().PylonBounds()
	advancePylons(pylons, bounds, 1.0/30)
	if !(pylons[0].Phase > 0) || !(pylons[1].Phase < 1) {
		t.Fatalf("phases did not converge: %.4f, %.4f", pylons[0].Phase, pylons[1].Phase)
	}
}

func TestPylonsInSmallArena(t *testing.T) {
	ts := NewTestSim(WithArenaSize(300), WithPylonCount(3), WithoutSpawns(), WithoutInitialUnits())
	ts.RunTicks(3000)
	if ts.Err != nil {
		t.Fatalf("driver halted: %v", ts.Err)
	}
	bounds := ts.Driver.Config().PylonBounds()
	for _, p := range ts.Last.Pylons {
		if !bounds.Contains(p.Pos) {
			t.Fatalf("pylon %d at %+v left bounds", p.ID, p.Pos)
		}
	}
}

func TestPylonSetupIsSeeded(t *testing.T) {
	a := NewTestSim(WithSeed(42))
	b := NewTestSim(WithSeed(42))
	c := NewTestSim(WithSeed(43))
	for i := range a.Last.Pylons {
		if a.Last.Pylons[i] != b.Last.Pylons[i] {
			t.Fatalf("same seed, pylon %d differs: %+v vs %+v", i, a.Last.Pylons[i], b.Last.Pylons[i])
		}
	}
	if a.Last.Pylons[0] == c.Last.Pylons[0] {
		t.Fatal("different seeds produced the same pylon")
	}
}
