package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Supply-Lines/internal/sim"
)

// powerDrawRadius matches the pylon power field reach.
const powerDrawRadius = 180.0

// beam is a fired shot kept on screen for sim.BeamLifetime seconds.
type beam struct {
	from, to sim.Vec2
	faction  sim.FactionID
	ttl      float64
}

func newBeam(f sim.FireFact) beam {
	return beam{from: f.From, to: f.To, faction: f.Faction, ttl: sim.BeamLifetime}
}

// ageBeams advances every beam by dt and drops the expired ones in place.
func ageBeams(beams []beam, dt float64) []beam {
	kept := beams[:0]
	for _, b := range beams {
		b.ttl -= dt
		if b.ttl > 0 {
			kept = append(kept, b)
		}
	}
	return kept
}

func (g *Game) drawBeams(screen *ebiten.Image) {
	for _, b := range g.beams {
		x0, y0 := g.cam.toScreen(b.from)
		x1, y1 := g.cam.toScreen(b.to)
		c := factionColor(b.faction)
		c.A = uint8(math.Round(255 * math.Min(1, b.ttl/sim.BeamLifetime)))
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 2, c, true)
	}
}

// drawPowerField shades each pylon's reach and draws a tether to every unit
// drawing power from it.
func (g *Game) drawPowerField(screen *ebiten.Image, snap *sim.Snapshot) {
	r := float32(g.cam.length(powerDrawRadius))
	for _, p := range snap.Pylons {
		x, y := g.cam.toScreen(p.Pos)
		vector.FillCircle(screen, float32(x), float32(y), r, color.RGBA{R: 250, G: 220, B: 120, A: 18}, true)
	}
	for _, pf := range snap.Powered {
		x0, y0 := g.cam.toScreen(pf.From)
		x1, y1 := g.cam.toScreen(pf.To)
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 1, color.RGBA{R: 250, G: 220, B: 120, A: 90}, true)
	}
}

// drawLinks renders the support network. Links in supplied components are
// solid; isolated ones are faint.
func (g *Game) drawLinks(screen *ebiten.Image, snap *sim.Snapshot) {
	for _, l := range snap.Links {
		x0, y0 := g.cam.toScreen(l.From)
		x1, y1 := g.cam.toScreen(l.To)
		c := factionColor(l.Faction)
		width := float32(1)
		switch {
		case l.Powered:
			c.A, width = 220, 2
		case l.Supplied:
			c.A = 150
		default:
			c.A = 50
		}
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), width, c, true)
	}
}

// drawDestinations draws a faint line from each of the local player's
// selected units to where it is heading.
func (g *Game) drawDestinations(screen *ebiten.Image, snap *sim.Snapshot) {
	for _, u := range snap.Units {
		if u.Faction != g.player || !u.Selected || !u.HasTarget {
			continue
		}
		x0, y0 := g.cam.toScreen(u.Pos)
		x1, y1 := g.cam.toScreen(u.Destination)
		if math.Hypot(x1-x0, y1-y0) < 6 {
			continue
		}
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 1, color.RGBA{R: 220, G: 220, B: 220, A: 60}, true)
		vector.StrokeCircle(screen, float32(x1), float32(y1), 3, 1, color.RGBA{R: 220, G: 220, B: 220, A: 120}, true)
	}
}

// drawGestures outlines open selection drags. Other players' gestures are
// drawn dimmer.
func (g *Game) drawGestures(screen *ebiten.Image, snap *sim.Snapshot) {
	for _, gs := range snap.Gestures {
		c := color.RGBA{R: 255, G: 255, B: 255, A: 200}
		if gs.Player != g.player {
			c = factionColor(gs.Player)
			c.A = 90
		}
		switch gs.Shape {
		case sim.ShapeCircle:
			x, y := g.cam.toScreen(gs.Start)
			r := g.cam.length(gs.Extent())
			vector.StrokeCircle(screen, float32(x), float32(y), float32(r), 1, c, true)
		default:
			rect := sim.RectFromPoints(gs.Start, gs.Current)
			x0, y0 := g.cam.toScreen(rect.Min)
			x1, y1 := g.cam.toScreen(rect.Max)
			vector.StrokeRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), 1, c, false)
		}
	}
}
