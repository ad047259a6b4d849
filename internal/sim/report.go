package sim

import (
	"fmt"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-state reports (~10s at 30TPS).
const reportWindowTicks = 300

// --- Snapshot types ---

// FactionReport captures one faction's state at one tick.
type FactionReport struct {
	Faction    FactionID
	Alive      int
	Injured    int // health < max but > 0
	Supplied   int
	Powered    int
	Links      int
	Components int
	AvgHealth  float64
	AvgBonus   float64 // mean damage multiplier above 1 across supplied units
}

// MatchSample is a full report of the match at one tick.
type MatchSample struct {
	Tick     int
	Factions []FactionReport
}

// FactionTotals are the cumulative counters of one faction since tick 0.
type FactionTotals struct {
	Faction     FactionID
	Spawned     int
	Shots       int
	DamageDealt float64
	Kills       int
	Losses      int
	PeakAlive   int
	PeakLinks   int
	PeakPowered int
}

// --- Reporter ---

// MatchReporter accumulates per-tick facts and periodic samples and can
// summarise them over a sliding window.
type MatchReporter struct {
	history     []MatchSample
	totals      []FactionTotals
	windowTicks int
}

// NewMatchReporter creates a reporter with the given window size.
func NewMatchReporter(windowTicks int) *MatchReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &MatchReporter{windowTicks: windowTicks}
}

func (r *MatchReporter) ensure(n int) {
	for len(r.totals) < n {
		r.totals = append(r.totals, FactionTotals{Faction: FactionID(len(r.totals))})
	}
}

// Observe folds one tick's facts into the cumulative totals. Call it for
// every snapshot so no fact is missed.
func (r *MatchReporter) Observe(snap *Snapshot) {
	r.ensure(len(snap.Markers))
	for _, f := range snap.Spawned {
		r.totals[f.Faction].Spawned++
	}
	for _, f := range snap.Fired {
		t := &r.totals[f.Faction]
		t.Shots++
		t.DamageDealt += f.Damage
	}
	for _, d := range snap.Died {
		r.totals[d.Faction].Losses++
		if int(d.KillerFaction) < len(r.totals) {
			r.totals[d.KillerFaction].Kills++
		}
	}
	for _, s := range snap.Supply {
		t := &r.totals[s.Faction]
		t.PeakAlive = max(t.PeakAlive, s.Alive)
		t.PeakLinks = max(t.PeakLinks, s.Links)
		t.PeakPowered = max(t.PeakPowered, s.Powered)
	}
}

// Collect records a sample of the snapshot. Call this periodically (e.g.
// every 30 ticks / 1s).
func (r *MatchReporter) Collect(snap *Snapshot) {
	sample := MatchSample{Tick: snap.Tick, Factions: make([]FactionReport, len(snap.Markers))}
	for i := range sample.Factions {
		sample.Factions[i].Faction = FactionID(i)
	}
	for _, s := range snap.Supply {
		fr := &sample.Factions[s.Faction]
		fr.Supplied = s.Supplied
		fr.Powered = s.Powered
		fr.Links = s.Links
		fr.Components = s.Components
	}
	for _, u := range snap.Units {
		fr := &sample.Factions[u.Faction]
		fr.Alive++
		fr.AvgHealth += u.Health
		if u.Health < u.MaxHealth {
			fr.Injured++
		}
		if u.Supplied {
			fr.AvgBonus += u.DamageMult - 1
		}
	}
	for i := range sample.Factions {
		fr := &sample.Factions[i]
		if fr.Alive > 0 {
			fr.AvgHealth /= float64(fr.Alive)
		}
		if fr.Supplied > 0 {
			fr.AvgBonus /= float64(fr.Supplied)
		}
	}
	r.history = append(r.history, sample)
}

// Latest returns the most recent sample, or nil if none collected yet.
func (r *MatchReporter) Latest() *MatchSample {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all collected samples.
func (r *MatchReporter) History() []MatchSample { return r.history }

// Totals returns the cumulative counters per faction.
func (r *MatchReporter) Totals() []FactionTotals { return r.totals }

// WindowSummary averages the samples of the recent window.
func (r *MatchReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	latest := r.history[len(r.history)-1].Tick
	cutoff := latest - r.windowTicks

	var window []MatchSample
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick < cutoff {
			break
		}
		window = append(window, r.history[i])
	}

	n := float64(len(window))
	wr := &WindowReport{
		FromTick:    window[len(window)-1].Tick,
		ToTick:      window[0].Tick,
		SampleCount: len(window),
		Factions:    make([]WindowFaction, len(window[0].Factions)),
	}
	for _, s := range window {
		for i, fr := range s.Factions {
			if i >= len(wr.Factions) {
				break
			}
			wf := &wr.Factions[i]
			wf.Faction = fr.Faction
			wf.AvgAlive += float64(fr.Alive)
			wf.AvgSupplied += float64(fr.Supplied)
			wf.AvgPowered += float64(fr.Powered)
			wf.AvgLinks += float64(fr.Links)
			wf.AvgHealth += fr.AvgHealth
		}
	}
	for i := range wr.Factions {
		wf := &wr.Factions[i]
		wf.AvgAlive /= n
		wf.AvgSupplied /= n
		wf.AvgPowered /= n
		wf.AvgLinks /= n
		wf.AvgHealth /= n
	}
	wr.Totals = append([]FactionTotals(nil), r.totals...)
	return wr
}

// WindowFaction is one faction's averages over a window.
type WindowFaction struct {
	Faction     FactionID
	AvgAlive    float64
	AvgSupplied float64
	AvgPowered  float64
	AvgLinks    float64
	AvgHealth   float64
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int
	Factions         []WindowFaction
	Totals           []FactionTotals
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Match Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)

	sb.WriteString("\n--- Window Averages ---\n")
	fmt.Fprintf(&sb, "  %-4s %7s %9s %8s %7s %7s\n", "fac", "alive", "supplied", "powered", "links", "hp")
	for _, f := range wr.Factions {
		fmt.Fprintf(&sb, "  %-4s %7.1f %9.1f %8.1f %7.1f %7.1f\n",
			factionLabel(f.Faction), f.AvgAlive, f.AvgSupplied, f.AvgPowered, f.AvgLinks, f.AvgHealth)
	}

	if len(wr.Totals) > 0 {
		sb.WriteString("\n--- Totals ---\n")
		fmt.Fprintf(&sb, "  %-4s %7s %6s %9s %6s %6s %10s\n", "fac", "spawned", "shots", "damage", "kills", "losses", "peak_links")
		for _, t := range wr.Totals {
			fmt.Fprintf(&sb, "  %-4s %7d %6d %9.1f %6d %6d %10d\n",
				factionLabel(t.Faction), t.Spawned, t.Shots, t.DamageDealt, t.Kills, t.Losses, t.PeakLinks)
		}
	}
	return sb.String()
}

// FormatLatest returns a concise view of the most recent sample.
func (r *MatchReporter) FormatLatest() string {
	s := r.Latest()
	if s == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "T=%d\n", s.Tick)
	for _, f := range s.Factions {
		fmt.Fprintf(&sb, "  %s alive=%d injured=%d supplied=%d powered=%d links=%d comps=%d bonus=+%.0f%%\n",
			factionLabel(f.Faction), f.Alive, f.Injured, f.Supplied, f.Powered, f.Links, f.Components, f.AvgBonus*100)
	}
	return sb.String()
}
