package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Supply-Lines/internal/config"
	"github.com/Garsondee/Supply-Lines/internal/game"
	"github.com/Garsondee/Supply-Lines/internal/sim"
)

func main() {
	cfgPath := flag.String("config", "", "optional YAML settings file")
	seed := flag.Int64("seed", 0, "override the match seed (0 keeps config)")
	verbose := flag.Bool("verbose", false, "record per-tick combat and supply events")
	flag.Parse()

	settings, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if *seed != 0 {
		settings.Sim.Seed = *seed
	}

	d, err := sim.New(settings.Sim, sim.WithEventLog(sim.NewEventLog(*verbose || settings.Verbose)))
	if err != nil {
		log.Fatal(err)
	}
	if err := d.Start(); err != nil {
		log.Fatal(err)
	}

	g := game.New(d)
	w, h := g.WindowSize()
	ebiten.SetWindowTitle("Supply Lines")
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
