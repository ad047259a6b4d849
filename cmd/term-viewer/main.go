package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Supply-Lines/internal/config"
	"github.com/Garsondee/Supply-Lines/internal/sim"
	"github.com/Garsondee/Supply-Lines/internal/termview"
)

var speeds = []float64{0.5, 1, 2, 4}

func main() {
	cfgPath := flag.String("config", "", "optional YAML settings file")
	sound := flag.Bool("sound", false, "play a tone when units fire")
	flag.Parse()

	settings, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := run(settings, *sound); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(settings config.Settings, sound bool) error {
	d, err := sim.New(settings.Sim)
	if err != nil {
		return err
	}
	if err := d.Start(); err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	var cue *termview.Cue
	if sound {
		// Non-fatal, the viewer runs without sound.
		if cue, err = termview.NewCue(); err != nil {
			log.Printf("audio initialization failed: %v", err)
		}
	}

	view := termview.New(screen, settings.Sim.LocalPlayer)
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	cfg := d.Config()
	speedIdx := 1
	ticker := time.NewTicker(time.Duration(cfg.FixedDelta * float64(time.Second)))
	defer ticker.Stop()
	accum := 0.0

	for {
		select {
		case ev := <-events:
			if _, ok := ev.(*tcell.EventResize); ok {
				screen.Sync()
				continue
			}
			action, inputs := view.Handle(ev, cfg.ArenaSize)
			for _, in := range inputs {
				_ = d.Submit(in)
			}
			switch action {
			case termview.ActionQuit:
				d.Stop()
				return nil
			case termview.ActionTogglePause:
				if d.State() == sim.StatePaused {
					_ = d.Resume()
				} else {
					_ = d.Pause()
				}
			case termview.ActionFaster:
				speedIdx = min(speedIdx+1, len(speeds)-1)
			case termview.ActionSlower:
				speedIdx = max(speedIdx-1, 0)
			}
		case now := <-ticker.C:
			if d.State() == sim.StateRunning {
				accum += speeds[speedIdx]
				for accum >= 1 {
					accum--
					snap, err := d.Step()
					if err != nil {
						break
					}
					cue.Fired(len(snap.Fired), now)
				}
			}
			status := fmt.Sprintf("%s %gx  drag=select a=all right=move p=pause ,/.=speed q=quit", d.State(), speeds[speedIdx])
			if err := d.Err(); err != nil {
				status = err.Error()
			}
			view.Draw(d.Latest(), status)
		}
	}
}
