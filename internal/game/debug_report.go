package game

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/Garsondee/Supply-Lines/internal/sim"
)

// reportSampleTicks is how often the reporter takes a sample (~1 s).
const reportSampleTicks = 30

// reportRecentEvents caps the event tail included in a report.
const reportRecentEvents = 20

// reportLogTicks is how far back the raw log excerpt reaches (~3 s).
const reportLogTicks = 90

// matchDebugReport summarises the match so far: config, the reporter's
// window and totals, the local player's selection and the recent events.
func (g *Game) matchDebugReport() string {
	cfg := g.driver.Config()
	var b strings.Builder
	fmt.Fprintf(&b, "--- Supply Lines match report ---\n")
	fmt.Fprintf(&b, "seed=%d players=%d arena=%.0f spawn_interval=%.2fs dt=%.4f\n",
		cfg.Seed, cfg.PlayerCount, cfg.ArenaSize, cfg.SpawnInterval, cfg.FixedDelta)
	fmt.Fprintf(&b, "tick=%d state=%s local=f%d\n", g.driver.Tick(), g.driver.State(), g.player)
	if err := g.driver.Err(); err != nil {
		fmt.Fprintf(&b, "halted: %v\n", err)
	}
	evlog := g.driver.EventLog()
	for _, last := range []struct{ name, category, key string }{
		{"last_select", "select", "commit"},
		{"last_order", "move", "order"},
		{"last_death", "death", "killed"},
	} {
		if e, ok := evlog.LastOf(last.category, last.key); ok {
			fmt.Fprintf(&b, "%s: T=%d %s %s\n", last.name, e.Tick, e.Faction, e.Value)
		}
	}
	b.WriteByte('\n')

	b.WriteString(g.reporter.WindowSummary().Format())
	b.WriteByte('\n')

	if snap := g.driver.Latest(); snap != nil {
		var sel []sim.UnitState
		for _, u := range snap.Units {
			if u.Faction == g.player && u.Selected {
				sel = append(sel, u)
			}
		}
		fmt.Fprintf(&b, "== SELECTED (%d) ==\n", len(sel))
		for _, u := range sel {
			fmt.Fprintf(&b, "  U%d pos=(%.0f,%.0f) hp=%.1f/%.0f supplied=%t links=%d mult=%.2f log=%d",
				u.ID, u.Pos.X, u.Pos.Y, u.Health, u.MaxHealth, u.Supplied, u.Links, u.DamageMult,
				len(evlog.FilterSubject(fmt.Sprintf("U%d", u.ID))))
			if u.HasTarget {
				fmt.Fprintf(&b, " -> (%.0f,%.0f)", u.Destination.X, u.Destination.Y)
			}
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	recent := g.events.Recent()
	if len(recent) > reportRecentEvents {
		recent = recent[len(recent)-reportRecentEvents:]
	}
	b.WriteString("== EVENTS ==\n")
	if len(recent) == 0 {
		b.WriteString("(none yet)\n")
	}
	for _, e := range recent {
		fmt.Fprintf(&b, "  %4d [%s] %s\n", e.Tick, e.Label, e.Message)
	}

	to := g.driver.Tick()
	from := max(to-reportLogTicks+1, 0)
	fmt.Fprintf(&b, "\n== LOG T=%d..%d ==\n", from, to)
	b.WriteString(evlog.FormatRange(from, to))
	return b.String()
}

// copyReport puts the match report on the system clipboard and returns a
// status line for the HUD.
func (g *Game) copyReport() string {
	if err := clipboard.WriteAll(g.matchDebugReport()); err != nil {
		return fmt.Sprintf("clipboard: %v", err)
	}
	return "report copied to clipboard"
}
