package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Supply-Lines/internal/sim"
)

// hudFace is the fixed 7x13 bitmap font used for all on-screen text.
var hudFace = text.NewGoXFace(basicfont.Face7x13)

const (
	hudLineH = 13
	hudCharW = 7
)

// drawText draws s with its top-left corner at (x, y).
func drawText(dst *ebiten.Image, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, hudFace, op)
}

// hudLines builds the HUD text for the current state.
func (g *Game) hudLines(snap *sim.Snapshot) []string {
	speedStr := fmt.Sprintf("%gx", g.speed())
	switch g.driver.State() {
	case sim.StatePaused:
		speedStr = "PAUSED"
	case sim.StateHalted:
		speedStr = "HALTED"
	}
	lines := []string{
		fmt.Sprintf("SIM: %s  P=pause  ,/. speed", speedStr),
	}
	if snap != nil {
		lines = append(lines, fmt.Sprintf("T=%d  %.1fs  you=f%d", snap.Tick, snap.Time, g.player))
		alive := snap.AliveByFaction()
		for _, s := range snap.Supply {
			mark := " "
			if s.Faction == g.player {
				mark = ">"
			}
			lines = append(lines, fmt.Sprintf("%s f%d  alive=%-3d supplied=%-3d powered=%-3d links=%d",
				mark, s.Faction, alive[s.Faction], s.Supplied, s.Powered, s.Links))
		}
	}
	lines = append(lines, "drag=select  shift+drag=circle  right=move")
	lines = append(lines, "[C] copy report  [H] toggle HUD")
	if g.status != "" {
		lines = append(lines, g.status)
	}
	return lines
}

// drawHUD renders the status box in the bottom-left corner of the arena.
// Text is drawn into hudBuf at 1x then composited at hudScale.
func (g *Game) drawHUD(screen *ebiten.Image, snap *sim.Snapshot) {
	lines := g.hudLines(snap)

	const padX = 5
	const padY = 4
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*hudCharW + padX*2)
	boxH := float32(len(lines)*hudLineH + padY*2)

	if g.hudBuf == nil {
		g.hudBuf = ebiten.NewImage(g.width/hudScale, g.height/hudScale)
	}
	bufH := float32(g.height / hudScale)
	bx := float32(borderWidth / hudScale)
	by := bufH - boxH - float32(borderWidth/hudScale)

	g.hudBuf.Clear()
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 6, G: 8, B: 12, A: 210}, false)
	vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 80, B: 110, A: 180}, false)

	for i, line := range lines {
		drawText(g.hudBuf, line, int(bx)+padX, int(by)+padY+i*hudLineH, color.White)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(hudScale), float64(hudScale))
	screen.DrawImage(g.hudBuf, opts)
}
