// Package termview renders match snapshots into a terminal with tcell and
// turns mouse and key events into driver input.
package termview

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Supply-Lines/internal/sim"
)

// hudRows is the number of terminal rows reserved below the arena.
const hudRows = 2

const (
	glyphUnit     = 'o'
	glyphSupplied = '@'
	glyphPylon    = 'P'
	glyphMarker   = '+'
	glyphBeam     = '.'
)

// Viewport maps the square arena onto a W×H cell grid. Cells are not square,
// so x and y scale independently.
type Viewport struct {
	W, H  int
	Arena float64
}

// ToCell returns the cell containing p. ok is false when p falls outside the
// grid.
func (vp Viewport) ToCell(p sim.Vec2) (x, y int, ok bool) {
	if vp.W <= 0 || vp.H <= 0 || vp.Arena <= 0 {
		return 0, 0, false
	}
	h := vp.Arena / 2
	x = int(math.Floor((p.X + h) / vp.Arena * float64(vp.W)))
	y = int(math.Floor((p.Y + h) / vp.Arena * float64(vp.H)))
	// The far edge belongs to the last cell.
	if x == vp.W && p.X <= h {
		x--
	}
	if y == vp.H && p.Y <= h {
		y--
	}
	return x, y, x >= 0 && x < vp.W && y >= 0 && y < vp.H
}

// ToArena returns the arena point at the centre of cell (x, y).
func (vp Viewport) ToArena(x, y int) sim.Vec2 {
	h := vp.Arena / 2
	return sim.Vec2{
		X: (float64(x)+0.5)/float64(vp.W)*vp.Arena - h,
		Y: (float64(y)+0.5)/float64(vp.H)*vp.Arena - h,
	}
}

// Action is a viewer-level command that the host loop handles.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionTogglePause
	ActionFaster
	ActionSlower
)

// View draws snapshots and tracks the local player's mouse gesture.
type View struct {
	screen  tcell.Screen
	player  sim.FactionID
	buttons tcell.ButtonMask
	styles  [sim.MaxPlayers]tcell.Style
}

// New wraps an initialised screen. Mouse reporting is enabled here.
func New(screen tcell.Screen, player sim.FactionID) *View {
	v := &View{screen: screen, player: player}
	for i, c := range sim.FactionColors {
		v.styles[i] = tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
	}
	screen.EnableMouse()
	return v
}

// Viewport returns the grid the arena occupies on the current screen.
func (v *View) Viewport(arena float64) Viewport {
	w, h := v.screen.Size()
	return Viewport{W: w, H: max(h-hudRows, 1), Arena: arena}
}

func (v *View) style(f sim.FactionID) tcell.Style {
	if f < 0 || int(f) >= len(v.styles) {
		return tcell.StyleDefault
	}
	return v.styles[f]
}

func (v *View) put(vp Viewport, p sim.Vec2, r rune, st tcell.Style) {
	if x, y, ok := vp.ToCell(p); ok {
		v.screen.SetContent(x, y, r, nil, st)
	}
}

// Draw renders snap plus a status line and shows the frame.
func (v *View) Draw(snap *sim.Snapshot, status string) {
	v.screen.Clear()
	if snap == nil {
		v.text(0, 0, "waiting for first tick", tcell.StyleDefault)
		v.screen.Show()
		return
	}
	vp := v.Viewport(snap.ArenaSize)

	for _, f := range snap.Fired {
		// A short dotted trail toward the target, drawn under the units.
		for i := 1; i < 4; i++ {
			v.put(vp, f.From.Lerp(f.To, float64(i)/4), glyphBeam, v.style(f.Faction))
		}
	}
	for _, m := range snap.Markers {
		v.put(vp, m.Pos, glyphMarker, v.style(m.Faction).Bold(true))
	}
	for _, p := range snap.Pylons {
		v.put(vp, p.Pos, glyphPylon, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))
	}
	for _, u := range snap.Units {
		r := glyphUnit
		if u.Supplied {
			r = glyphSupplied
		}
		st := v.style(u.Faction)
		if u.Selected {
			st = st.Reverse(true)
		}
		v.put(vp, u.Pos, r, st)
	}
	for _, g := range snap.Gestures {
		if g.Player == v.player {
			v.drawGesture(vp, g.Gesture)
		}
	}

	_, h := v.screen.Size()
	v.text(0, h-2, hudLine(snap, v.player), tcell.StyleDefault)
	v.text(0, h-1, status, tcell.StyleDefault.Dim(true))
	v.screen.Show()
}

func (v *View) drawGesture(vp Viewport, g sim.Gesture) {
	x0, y0, _ := vp.ToCell(g.Start)
	x1, y1, _ := vp.ToCell(g.Current)
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	st := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for x := x0; x <= x1; x++ {
		v.screen.SetContent(x, y0, '-', nil, st)
		v.screen.SetContent(x, y1, '-', nil, st)
	}
	for y := y0; y <= y1; y++ {
		v.screen.SetContent(x0, y, '|', nil, st)
		v.screen.SetContent(x1, y, '|', nil, st)
	}
}

func (v *View) text(x, y int, s string, st tcell.Style) {
	for i, r := range s {
		v.screen.SetContent(x+i, y, r, nil, st)
	}
}

// hudLine summarises the match for the local player.
func hudLine(snap *sim.Snapshot, player sim.FactionID) string {
	alive := snap.AliveByFaction()
	line := fmt.Sprintf("T=%d %.1fs you=f%d", snap.Tick, snap.Time, player)
	for _, s := range snap.Supply {
		line += fmt.Sprintf(" | f%d %d/%d/%d", s.Faction, alive[s.Faction], s.Supplied, s.Powered)
	}
	return line
}

// Handle interprets a terminal event. Left drag selects, right click moves,
// 'a' selects every own unit.
func (v *View) Handle(ev tcell.Event, arena float64) (Action, []sim.InputEvent) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev, arena)
	case *tcell.EventMouse:
		return ActionNone, v.handleMouse(ev, arena)
	}
	return ActionNone, nil
}

func (v *View) handleKey(ev *tcell.EventKey, arena float64) (Action, []sim.InputEvent) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit, nil
	case tcell.KeyRune:
	default:
		return ActionNone, nil
	}
	switch ev.Rune() {
	case 'q':
		return ActionQuit, nil
	case 'p':
		return ActionTogglePause, nil
	case '.':
		return ActionFaster, nil
	case ',':
		return ActionSlower, nil
	case 'a':
		h := arena / 2
		return ActionNone, []sim.InputEvent{
			sim.BeginSelect(v.player, sim.V(-h, -h), sim.ShapeRect),
			sim.CommitSelect(v.player, sim.V(h, h)),
		}
	}
	return ActionNone, nil
}

func (v *View) handleMouse(ev *tcell.EventMouse, arena float64) []sim.InputEvent {
	x, y := ev.Position()
	vp := v.Viewport(arena)
	p := vp.ToArena(x, y)
	prev := v.buttons
	now := ev.Buttons() & (tcell.Button1 | tcell.Button2)
	v.buttons = now

	var out []sim.InputEvent
	switch {
	case prev&tcell.Button1 == 0 && now&tcell.Button1 != 0:
		out = append(out, sim.BeginSelect(v.player, p, sim.ShapeRect))
	case prev&tcell.Button1 != 0 && now&tcell.Button1 != 0:
		out = append(out, sim.UpdateSelect(v.player, p))
	case prev&tcell.Button1 != 0 && now&tcell.Button1 == 0:
		out = append(out, sim.CommitSelect(v.player, p))
	}
	if prev&tcell.Button2 == 0 && now&tcell.Button2 != 0 {
		out = append(out, sim.IssueMove(v.player, p))
	}
	return out
}
