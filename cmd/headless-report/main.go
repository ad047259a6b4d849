package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Garsondee/Supply-Lines/internal/config"
	"github.com/Garsondee/Supply-Lines/internal/sim"
	"github.com/Garsondee/Supply-Lines/internal/telemetry"
)

// sampleEvery is the reporter sampling period in ticks.
const sampleEvery = 30

type runStats struct {
	runIndex int
	seed     int64
	matchID  string
	ticks    int
	digest   string
	haltErr  error

	firstFireTick    int
	firstDeathTick   int
	firstPoweredTick int
	moveOrders       int

	totals    []sim.FactionTotals
	survivors []int

	windowSummary *sim.WindowReport
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var cfgPath string
	var players int
	var verify bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", sim.DefaultSeed, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&cfgPath, "config", "", "optional YAML settings file")
	flag.IntVar(&players, "players", 0, "override the player count (0 keeps config)")
	flag.BoolVar(&verify, "verify", false, "re-run every seed and compare snapshot digests")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	settings, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	base := settings.Sim
	if players > 0 {
		base.PlayerCount = players
	}
	if err := base.Validate(); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Headless Match Report ===\n")
	fmt.Printf("players=%d arena=%.0f interval=%.2fs runs=%d ticks=%d seed_base=%d seed_step=%d\n\n",
		base.PlayerCount, base.ArenaSize, base.SpawnInterval, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	mismatches := 0
	for i := 0; i < runs; i++ {
		cfg := base
		cfg.Seed = seedBase + int64(i)*seedStep
		stats := runMatch(i+1, cfg, ticks)
		all = append(all, stats)
		printRun(stats)

		if verify {
			again := runMatch(i+1, cfg, ticks)
			if again.digest != stats.digest {
				mismatches++
				fmt.Printf("verify: seed=%d MISMATCH %s != %s\n\n", cfg.Seed, stats.digest, again.digest)
			} else {
				fmt.Printf("verify: seed=%d ok\n\n", cfg.Seed)
			}
		}
	}

	printAggregate(all)
	if mismatches > 0 {
		fmt.Printf("\nverify: %d of %d seeds diverged\n", mismatches, runs)
		os.Exit(1)
	}
}

// runMatch plays one match to completion (or until the driver halts) and
// gathers its statistics.
func runMatch(runIndex int, cfg sim.Config, ticks int) runStats {
	rs := runStats{
		runIndex:         runIndex,
		seed:             cfg.Seed,
		matchID:          uuid.New().String(),
		firstFireTick:    -1,
		firstDeathTick:   -1,
		firstPoweredTick: -1,
	}
	log := sim.NewEventLog(false)
	d, err := sim.New(cfg, sim.WithEventLog(log))
	if err != nil {
		rs.haltErr = err
		return rs
	}
	if err := d.Start(); err != nil {
		rs.haltErr = err
		return rs
	}

	reporter := sim.NewMatchReporter(0)
	digest := telemetry.NewDigest()
	last := d.Latest()
	for i := 0; i < ticks; i++ {
		snap, err := d.Step()
		if err != nil {
			rs.haltErr = err
			break
		}
		last = snap
		reporter.Observe(snap)
		if snap.Tick%sampleEvery == 0 {
			reporter.Collect(snap)
		}
		if err := digest.Add(snap); err != nil {
			rs.haltErr = err
			break
		}
		if rs.firstFireTick < 0 && len(snap.Fired) > 0 {
			rs.firstFireTick = snap.Tick
		}
		if rs.firstDeathTick < 0 && len(snap.Died) > 0 {
			rs.firstDeathTick = snap.Tick
		}
		if rs.firstPoweredTick < 0 && len(snap.Powered) > 0 {
			rs.firstPoweredTick = snap.Tick
		}
	}

	rs.ticks = d.Tick()
	rs.digest = digest.Sum()
	rs.moveOrders = log.CountCategory("move", "order")
	rs.totals = reporter.Totals()
	rs.windowSummary = reporter.WindowSummary()
	rs.survivors = survivorCounts(last)
	return rs
}

// survivorCounts returns the live units per faction, indexed by faction id.
func survivorCounts(snap *sim.Snapshot) []int {
	if snap == nil {
		return nil
	}
	out := make([]int, len(snap.Markers))
	for _, u := range snap.Units {
		if int(u.Faction) < len(out) {
			out[u.Faction]++
		}
	}
	return out
}

// detectStalemate reports whether the match ended with several factions
// standing and no clear leader.
func detectStalemate(survivors []int) (bool, string) {
	standing := 0
	best, second := 0, 0
	for _, n := range survivors {
		if n > 0 {
			standing++
		}
		switch {
		case n > best:
			best, second = n, best
		case n > second:
			second = n
		}
	}
	switch {
	case standing == 0:
		return false, "wipe"
	case standing == 1:
		return false, "elimination"
	case float64(best) > 1.5*float64(second):
		return false, fmt.Sprintf("decisive_lead best=%d runner_up=%d", best, second)
	}
	return true, fmt.Sprintf("high_mutual_survival standing=%d best=%d runner_up=%d", standing, best, second)
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d match=%s) ---\n", rs.runIndex, rs.seed, rs.matchID)
	if rs.haltErr != nil {
		fmt.Printf("halted: %v\n", rs.haltErr)
	}
	fmt.Printf("ticks=%d digest=%s\n", rs.ticks, rs.digest)
	fmt.Printf("phase_markers: first_fire=%d first_death=%d first_powered=%d move_orders=%d\n",
		rs.firstFireTick, rs.firstDeathTick, rs.firstPoweredTick, rs.moveOrders)
	for _, t := range rs.totals {
		alive := 0
		if int(t.Faction) < len(rs.survivors) {
			alive = rs.survivors[t.Faction]
		}
		fmt.Printf("  f%d spawned=%d shots=%d damage=%.0f kills=%d losses=%d survivors=%d peak_links=%d peak_powered=%d\n",
			t.Faction, t.Spawned, t.Shots, t.DamageDealt, t.Kills, t.Losses, alive, t.PeakLinks, t.PeakPowered)
	}
	stalemate, reason := detectStalemate(rs.survivors)
	fmt.Printf("outcome: stalemate=%t (%s)\n", stalemate, reason)
	if rs.windowSummary != nil {
		fmt.Printf("window_samples=%d window_tick_range=%d..%d\n",
			rs.windowSummary.SampleCount, rs.windowSummary.FromTick, rs.windowSummary.ToTick)
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	type factionAgg struct {
		kills, losses, shots, spawned int
		damage                        float64
		survivors                     int
	}
	aggs := map[sim.FactionID]*factionAgg{}
	var fireTicks, deathTicks []int
	stalemates := 0
	halted := 0
	for _, rs := range all {
		if rs.haltErr != nil {
			halted++
		}
		if rs.firstFireTick >= 0 {
			fireTicks = append(fireTicks, rs.firstFireTick)
		}
		if rs.firstDeathTick >= 0 {
			deathTicks = append(deathTicks, rs.firstDeathTick)
		}
		if ok, _ := detectStalemate(rs.survivors); ok {
			stalemates++
		}
		for _, t := range rs.totals {
			ag, ok := aggs[t.Faction]
			if !ok {
				ag = &factionAgg{}
				aggs[t.Faction] = ag
			}
			ag.kills += t.Kills
			ag.losses += t.Losses
			ag.shots += t.Shots
			ag.spawned += t.Spawned
			ag.damage += t.DamageDealt
			if int(t.Faction) < len(rs.survivors) {
				ag.survivors += rs.survivors[t.Faction]
			}
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d halted=%d stalemates=%d\n", len(all), halted, stalemates)
	fmt.Printf("phase_marker_avg_ticks: first_fire=%s first_death=%s\n", avgTickString(fireTicks), avgTickString(deathTicks))

	ids := make([]sim.FactionID, 0, len(aggs))
	for id := range aggs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		ag := aggs[id]
		n := len(all)
		fmt.Printf("  f%d avg: kills=%.1f losses=%.1f shots=%.1f spawned=%.1f damage=%.0f survivors=%.1f\n",
			id, avg(ag.kills, n), avg(ag.losses, n), avg(ag.shots, n), avg(ag.spawned, n), ag.damage/float64(max(n, 1)), avg(ag.survivors, n))
	}
	fmt.Printf("digests: %s\n", joinDigests(all))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

// joinDigests lists the short digest prefix of every run, in run order.
func joinDigests(all []runStats) string {
	if len(all) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(all))
	for _, rs := range all {
		d := rs.digest
		if len(d) > 12 {
			d = d[:12]
		}
		parts = append(parts, fmt.Sprintf("%d:%s", rs.seed, d))
	}
	return strings.Join(parts, ",")
}
