package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Garsondee/Supply-Lines/internal/sim"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParsePartialFileKeepsDefaults(t *testing.T) {
	doc := []byte(`
seed: 7
board:
  player_count: 6
telemetry:
  addr: "127.0.0.1:9000"
`)
	s, err := Parse(doc, Default())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Sim.Seed != 7 || s.Sim.PlayerCount != 6 {
		t.Fatalf("parsed sim = %+v", s.Sim)
	}
	if s.Sim.ArenaSize != sim.DefaultArenaSize || s.Sim.SpawnInterval != sim.DefaultSpawnInterval {
		t.Fatalf("defaults lost: %+v", s.Sim)
	}
	if s.Telemetry.Addr != "127.0.0.1:9000" || s.Telemetry.MaxFPS != 30 {
		t.Fatalf("telemetry = %+v", s.Telemetry)
	}
}

func TestParseZeroIsNotAbsent(t *testing.T) {
	s, err := Parse([]byte("board:\n  spawn_interval: 0\n"), Default())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := s.Validate(); !errors.Is(err, sim.ErrInvalidConfig) {
		t.Fatalf("explicit zero interval accepted: %v", err)
	}
}

func TestParseRejectsBadYAML(t *testing.T) {
	if _, err := Parse([]byte("board: [unclosed"), Default()); !errors.Is(err, sim.ErrInvalidConfig) {
		t.Fatalf("err = %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	s := Default()
	err := ApplyEnv(&s, envMap(map[string]string{
		EnvSeed:          "99",
		EnvFixedDelta:    "0.05",
		EnvPlayerCount:   "3",
		EnvBoardSize:     "900",
		EnvSpawnInterval: "2.5",
		EnvLocalPlayer:   "2",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	want := sim.Config{
		Seed:          99,
		FixedDelta:    0.05,
		ArenaSize:     900,
		PlayerCount:   3,
		SpawnInterval: 2.5,
		LocalPlayer:   2,
		PylonCount:    sim.DefaultPylonCount,
	}
	if s.Sim != want {
		t.Fatalf("sim = %+v, want %+v", s.Sim, want)
	}
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	s := Default()
	err := ApplyEnv(&s, envMap(map[string]string{EnvPlayerCount: "four"}))
	if !errors.Is(err, sim.ErrInvalidConfig) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.yaml")
	if err := os.WriteFile(path, []byte("seed: 5\nboard:\n  size: 1200\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvSeed, "11")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Sim.Seed != 11 || s.Sim.ArenaSize != 1200 {
		t.Fatalf("sim = %+v", s.Sim)
	}
}

func TestLoadRejectsOutOfRangePlayers(t *testing.T) {
	t.Setenv(EnvPlayerCount, "12")
	if _, err := Load(""); !errors.Is(err, sim.ErrInvalidConfig) {
		t.Fatalf("err = %v", err)
	}
}
