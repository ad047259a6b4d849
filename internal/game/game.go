package game

import (
	"fmt"
	"image/color"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Supply-Lines/internal/sim"
)

// borderWidth is the pixel gap between the window edge and the arena.
const borderWidth = 24

// fieldPixels is the on-screen side length of the square arena.
const fieldPixels = 864

// hudScale is the integer upscale factor applied to HUD text.
const hudScale = 2

// reportWindowTicks is the sampling window of the match reporter (~10 s).
const reportWindowTicks = 300

// speeds are the selectable simulation speed multipliers.
var speeds = []float64{0.5, 1, 2, 4}

// Game is the ebiten front end of one match. It owns no world state: every
// frame draws the driver's latest snapshot and every click becomes an input
// event for the next tick.
type Game struct {
	width  int
	height int
	cam    camera

	driver   *sim.Driver
	player   sim.FactionID
	reporter *sim.MatchReporter
	events   *EventPanel
	beams    []beam
	logSeen  int // EventLog entries already copied into the panel

	showHUD  bool
	prevKeys map[ebiten.Key]bool
	status   string // last transient message, e.g. clipboard result

	// Drag-select state for the local player.
	dragging  bool
	dragStart sim.Vec2
	dragLast  sim.Vec2
	prevRight bool

	// Simulation speed control.
	speedIdx  int
	tickAccum float64 // fractional ticks carried between frames

	// Offscreen buffer for HUD text, rendered at 1x then blitted at hudScale.
	hudBuf *ebiten.Image
}

// New wraps a started driver. The driver keeps running on the ebiten update
// goroutine; nothing else may step it.
func New(d *sim.Driver) *Game {
	cfg := d.Config()
	g := &Game{
		width:    borderWidth + fieldPixels + borderWidth + logPanelWidth,
		height:   borderWidth + fieldPixels + borderWidth,
		cam:      newCamera(cfg.ArenaSize, fieldPixels, borderWidth, borderWidth),
		driver:   d,
		player:   cfg.LocalPlayer,
		reporter: sim.NewMatchReporter(reportWindowTicks),
		events:   NewEventPanel(),
		showHUD:  true,
		prevKeys: make(map[ebiten.Key]bool),
		speedIdx: 1,
	}
	return g
}

// WindowSize returns the window dimensions the layout expects.
func (g *Game) WindowSize() (int, int) { return g.width, g.height }

func (g *Game) speed() float64 { return speeds[g.speedIdx] }

// ticksDue converts elapsed real time into whole simulation ticks. It
// returns the tick count and the fractional remainder to carry.
func ticksDue(accum, speed, frame, dt float64) (int, float64) {
	accum += speed * frame / dt
	n := int(math.Floor(accum))
	return n, accum - float64(n)
}

func (g *Game) Update() error {
	g.handleInput()

	frame := 1.0 / float64(ebiten.TPS())
	g.beams = ageBeams(g.beams, frame)

	if g.driver.State() != sim.StateRunning {
		return nil
	}
	n, rest := ticksDue(g.tickAccum, g.speed(), frame, g.driver.Config().FixedDelta)
	g.tickAccum = rest
	for i := 0; i < n; i++ {
		snap, err := g.driver.Step()
		if err != nil {
			// A halted match stays on screen; the HUD shows why.
			log.Printf("step: %v", err)
			g.status = err.Error()
			return nil
		}
		g.observe(snap)
	}
	return nil
}

// observe folds one tick's snapshot into the viewer's transient state.
func (g *Game) observe(snap *sim.Snapshot) {
	g.reporter.Observe(snap)
	if snap.Tick%reportSampleTicks == 0 {
		g.reporter.Collect(snap)
	}
	for _, f := range snap.Fired {
		g.beams = append(g.beams, newBeam(f))
	}
	g.logSeen = g.events.Tail(g.driver.EventLog(), g.logSeen)
}

// handleInput processes keys (edge-triggered) and mouse gestures.
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}

	// P: pause/resume the driver.
	if pressed(ebiten.KeyP) {
		switch g.driver.State() {
		case sim.StateRunning:
			_ = g.driver.Pause()
		case sim.StatePaused:
			_ = g.driver.Resume()
		}
	}
	if pressed(ebiten.KeyComma) && g.speedIdx > 0 {
		g.speedIdx--
	}
	if pressed(ebiten.KeyPeriod) && g.speedIdx < len(speeds)-1 {
		g.speedIdx++
	}
	if pressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	// C: copy the match report to the clipboard.
	if pressed(ebiten.KeyC) {
		g.status = g.copyReport()
	}

	mx, my := ebiten.CursorPosition()
	p := g.cam.toWorld(float64(mx), float64(my))

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	switch {
	case left && !g.dragging:
		g.dragging = true
		g.dragStart, g.dragLast = p, p
		shape := sim.ShapeRect
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			shape = sim.ShapeCircle
		}
		g.submit(sim.BeginSelect(g.player, p, shape))
	case left && g.dragging:
		if p != g.dragLast {
			g.dragLast = p
			g.submit(sim.UpdateSelect(g.player, p))
		}
	case !left && g.dragging:
		g.dragging = false
		g.submit(sim.CommitSelect(g.player, p))
	}

	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if right && !g.prevRight {
		g.submit(sim.IssueMove(g.player, p))
	}
	g.prevRight = right

	g.prevKeys = currentKeys
}

func (g *Game) submit(ev sim.InputEvent) {
	if err := g.driver.Submit(ev); err != nil {
		g.status = fmt.Sprintf("%s ignored: %v", ev.Kind, err)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 16, A: 255})

	snap := g.driver.Latest()
	if snap != nil {
		g.drawWorld(screen, snap)
	}

	// Arena border frame.
	ox, oy := float32(g.cam.offX), float32(g.cam.offY)
	fw := float32(fieldPixels)
	vector.StrokeRect(screen, ox-1, oy-1, fw+2, fw+2, 2.0, color.RGBA{R: 70, G: 80, B: 95, A: 255}, false)

	logX := borderWidth + fieldPixels + borderWidth
	g.events.Draw(screen, logX, g.height)

	if g.showHUD {
		g.drawHUD(screen, snap)
	}
}

func (g *Game) drawWorld(screen *ebiten.Image, snap *sim.Snapshot) {
	g.drawPowerField(screen, snap)
	g.drawLinks(screen, snap)
	g.drawBeams(screen)

	for _, m := range snap.Markers {
		x, y := g.cam.toScreen(m.Pos)
		c := factionColor(m.Faction)
		vector.StrokeRect(screen, float32(x)-7, float32(y)-7, 14, 14, 2, c, false)
	}
	for _, p := range snap.Pylons {
		x, y := g.cam.toScreen(p.Pos)
		vector.FillCircle(screen, float32(x), float32(y), 9, color.RGBA{R: 250, G: 240, B: 200, A: 255}, true)
		vector.StrokeCircle(screen, float32(x), float32(y), 13, 1.5, color.RGBA{R: 250, G: 220, B: 120, A: 160}, true)
	}
	g.drawUnits(screen, snap)
	g.drawDestinations(screen, snap)
	g.drawGestures(screen, snap)
}

func (g *Game) drawUnits(screen *ebiten.Image, snap *sim.Snapshot) {
	r := float32(g.cam.length(unitDrawRadius))
	for _, u := range snap.Units {
		x, y := g.cam.toScreen(u.Pos)
		fx, fy := float32(x), float32(y)
		c := factionColor(u.Faction)
		if !u.Supplied {
			c.A = 150
		}
		vector.FillCircle(screen, fx, fy, r, c, true)
		if u.Selected {
			vector.StrokeCircle(screen, fx, fy, r+3, 1.5, color.RGBA{R: 255, G: 255, B: 255, A: 230}, true)
		}
		// Heading tick.
		hx := fx + float32(math.Cos(u.Heading))*(r+4)
		hy := fy + float32(math.Sin(u.Heading))*(r+4)
		vector.StrokeLine(screen, fx, fy, hx, hy, 1.5, color.RGBA{R: 20, G: 20, B: 20, A: 220}, true)

		// Health bar.
		frac := float32(0)
		if u.MaxHealth > 0 {
			frac = float32(u.Health / u.MaxHealth)
		}
		bw := 2 * r
		vector.FillRect(screen, fx-r, fy-r-6, bw, 3, color.RGBA{R: 40, G: 40, B: 40, A: 200}, false)
		vector.FillRect(screen, fx-r, fy-r-6, bw*frac, 3, color.RGBA{R: 90, G: 220, B: 110, A: 230}, false)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
