package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Garsondee/Supply-Lines/internal/config"
	"github.com/Garsondee/Supply-Lines/internal/sim"
	"github.com/Garsondee/Supply-Lines/internal/telemetry"
)

const wsPath = "/ws"

func main() {
	cfgPath := flag.String("config", "", "optional YAML settings file")
	addr := flag.String("addr", "", "listen address (empty keeps config)")
	flag.Parse()

	settings, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		settings.Telemetry.Addr = *addr
	}

	d, err := sim.New(settings.Sim, sim.WithEventLog(sim.NewEventLog(settings.Verbose)))
	if err != nil {
		log.Fatal(err)
	}
	if err := d.Start(); err != nil {
		log.Fatal(err)
	}

	hub := telemetry.NewHub(telemetry.HubConfig{
		MaxFPS:  settings.Telemetry.MaxFPS,
		Burst:   settings.Telemetry.Burst,
		Players: settings.Sim.PlayerCount,
		OnInput: d.Submit,
	})

	mux := http.NewServeMux()
	mux.HandleFunc(wsPath, hub.ServeWS)
	srv := &http.Server{Addr: settings.Telemetry.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("telemetry: match %s on %s%s", hub.MatchID(), settings.Telemetry.Addr, wsPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("telemetry: serve: %v", err)
			stop()
		}
	}()

	run(ctx, d, hub)

	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	st := hub.Stats()
	log.Printf("telemetry: stopped at tick %d frames=%d sent=%d throttled=%d dropped=%d inputs=%d",
		d.Tick(), st.Frames, st.Sent, st.Throttled, st.Dropped, st.Inputs)
}

// run steps the driver at its fixed rate and broadcasts every snapshot
// until ctx is cancelled or the match halts.
func run(ctx context.Context, d *sim.Driver, hub *telemetry.Hub) {
	period := time.Duration(d.Config().FixedDelta * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	log.Printf("telemetry: loop started at %.1f ticks/sec", 1/d.Config().FixedDelta)

	for {
		select {
		case <-ctx.Done():
			d.Stop()
			return
		case <-ticker.C:
		}
		snap, err := d.Step()
		if err != nil {
			log.Printf("telemetry: %v", err)
			if sim.IsFatal(err) || errors.Is(err, sim.ErrHalted) {
				return
			}
			continue
		}
		if err := hub.Broadcast(snap); err != nil {
			log.Printf("telemetry: broadcast tick %d: %v", snap.Tick, err)
		}
	}
}
