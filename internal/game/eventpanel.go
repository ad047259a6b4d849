package game

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Supply-Lines/internal/sim"
)

const (
	logPanelWidth = 360
	logMaxEntries = 80
	logLineHeight = 15
)

// PanelEntry is a single line in the event panel.
type PanelEntry struct {
	Tick    int
	Label   string // e.g. "U12", "--"
	Faction sim.FactionID
	Message string
}

// EventPanel is a ring buffer of match events rendered beside the arena.
type EventPanel struct {
	entries []PanelEntry
	head    int
	count   int
}

// NewEventPanel creates a panel with a fixed capacity.
func NewEventPanel() *EventPanel {
	return &EventPanel{
		entries: make([]PanelEntry, logMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest once full.
func (p *EventPanel) Add(e PanelEntry) {
	p.entries[p.head] = e
	p.head = (p.head + 1) % logMaxEntries
	if p.count < logMaxEntries {
		p.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (p *EventPanel) Recent() []PanelEntry {
	result := make([]PanelEntry, p.count)
	for i := 0; i < p.count; i++ {
		idx := (p.head - p.count + i + logMaxEntries) % logMaxEntries
		result[i] = p.entries[idx]
	}
	return result
}

// panelCategories are the event log categories worth showing to a player.
var panelCategories = map[string]bool{
	"death":  true,
	"move":   true,
	"select": true,
	"input":  true,
	"pylon":  true,
}

// Tail copies log entries from index seen onward into the panel and returns
// the new high-water mark.
func (p *EventPanel) Tail(log *sim.EventLog, seen int) int {
	if log == nil {
		return seen
	}
	entries := log.Entries()
	for _, e := range entries[min(seen, len(entries)):] {
		if !panelCategories[e.Category] {
			continue
		}
		p.Add(PanelEntry{
			Tick:    e.Tick,
			Label:   e.Subject,
			Faction: parseFaction(e.Faction),
			Message: e.Key + " " + e.Value,
		})
	}
	return len(entries)
}

// parseFaction reads the "f3" labels of the event log; anything else is -1.
func parseFaction(label string) sim.FactionID {
	n, err := strconv.Atoi(strings.TrimPrefix(label, "f"))
	if err != nil || !strings.HasPrefix(label, "f") {
		return -1
	}
	return sim.FactionID(n)
}

// Draw renders the panel on the right side of the screen.
func (p *EventPanel) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 14, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 60, B: 75, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 18, color.RGBA{R: 20, G: 26, B: 34, A: 255}, false)
	drawText(screen, "MATCH EVENTS", panelX+8, 2, color.White)
	vector.StrokeLine(screen, float32(panelX), 18, float32(panelX+logPanelWidth), 18, 1.0, color.RGBA{R: 50, G: 70, B: 90, A: 200}, false)

	entries := p.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 26) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	recent := 3

	y := 22
	for i, e := range entries {
		isRecent := i >= len(entries)-recent
		if isRecent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 36, B: 46, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+5), 3, 5, factionColor(e.Faction), false)

		textCol := color.RGBA{R: 170, G: 170, B: 170, A: 255}
		if isRecent {
			textCol = color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		drawText(screen, fmt.Sprintf("%4d [%s] %s", e.Tick, e.Label, e.Message), panelX+12, y, textCol)
		y += logLineHeight
	}
}
