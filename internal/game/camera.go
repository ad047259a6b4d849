package game

import (
	"image/color"

	"github.com/Garsondee/Supply-Lines/internal/sim"
)

// unitDrawRadius is the world-space radius units are drawn with.
const unitDrawRadius = 10.0

// camera maps the origin-centred arena onto a square block of pixels.
type camera struct {
	scale      float64 // pixels per arena unit
	half       float64 // half the arena side
	offX, offY float64 // pixel position of the arena's top-left corner
}

func newCamera(arena float64, pixels int, offX, offY int) camera {
	return camera{
		scale: float64(pixels) / arena,
		half:  arena / 2,
		offX:  float64(offX),
		offY:  float64(offY),
	}
}

func (c camera) toScreen(p sim.Vec2) (float64, float64) {
	return c.offX + (p.X+c.half)*c.scale, c.offY + (p.Y+c.half)*c.scale
}

func (c camera) toWorld(x, y float64) sim.Vec2 {
	return sim.Vec2{X: (x-c.offX)/c.scale - c.half, Y: (y-c.offY)/c.scale - c.half}
}

// length converts a world distance to pixels.
func (c camera) length(d float64) float64 { return d * c.scale }

func factionColor(f sim.FactionID) color.RGBA {
	if f < 0 || int(f) >= len(sim.FactionColors) {
		return color.RGBA{R: 200, G: 200, B: 200, A: 255}
	}
	return sim.FactionColors[f]
}
