// Package config loads match settings from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Supply-Lines/internal/sim"
)

// Environment variables that override file values.
const (
	EnvSeed          = "SIMULATION_SEED"
	EnvFixedDelta    = "SIMULATION_FIXED_DT"
	EnvPlayerCount   = "BOARD_PLAYER_COUNT"
	EnvBoardSize     = "BOARD_SIZE"
	EnvSpawnInterval = "BOARD_SPAWN_INTERVAL"
	EnvLocalPlayer   = "LOCAL_PLAYER_ID"
)

// Telemetry configures the websocket broadcaster.
type Telemetry struct {
	Addr   string  `yaml:"addr"`
	MaxFPS float64 `yaml:"max_fps"` // per-client frame cap
	Burst  int     `yaml:"burst"`
}

// Settings is everything a binary needs to start a match.
type Settings struct {
	Sim       sim.Config
	Telemetry Telemetry
	Verbose   bool
}

// file mirrors the YAML layout. Pointers distinguish "absent" from zero so
// a partial file only overrides what it names.
type file struct {
	Seed       *int64   `yaml:"seed"`
	FixedDelta *float64 `yaml:"fixed_delta"`
	Verbose    *bool    `yaml:"verbose"`
	Board      struct {
		Size          *float64 `yaml:"size"`
		PlayerCount   *int     `yaml:"player_count"`
		SpawnInterval *float64 `yaml:"spawn_interval"`
		Pylons        *int     `yaml:"pylons"`
	} `yaml:"board"`
	Control struct {
		LocalPlayer *int `yaml:"local_player"`
	} `yaml:"control"`
	Telemetry struct {
		Addr   *string  `yaml:"addr"`
		MaxFPS *float64 `yaml:"max_fps"`
		Burst  *int     `yaml:"burst"`
	} `yaml:"telemetry"`
}

// Default returns the stock settings.
func Default() Settings {
	return Settings{
		Sim: sim.DefaultConfig(),
		Telemetry: Telemetry{
			Addr:   ":8080",
			MaxFPS: 30,
			Burst:  3,
		},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("read config: %w", err)
		}
		if s, err = Parse(data, s); err != nil {
			return s, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := ApplyEnv(&s, os.LookupEnv); err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Parse overlays the YAML document in data onto base.
func Parse(data []byte, base Settings) (Settings, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return base, fmt.Errorf("%w: parse yaml: %v", sim.ErrInvalidConfig, err)
	}
	s := base
	setInt64(&s.Sim.Seed, f.Seed)
	setFloat(&s.Sim.FixedDelta, f.FixedDelta)
	setFloat(&s.Sim.ArenaSize, f.Board.Size)
	setInt(&s.Sim.PlayerCount, f.Board.PlayerCount)
	setFloat(&s.Sim.SpawnInterval, f.Board.SpawnInterval)
	setInt(&s.Sim.PylonCount, f.Board.Pylons)
	if f.Control.LocalPlayer != nil {
		s.Sim.LocalPlayer = sim.FactionID(*f.Control.LocalPlayer)
	}
	if f.Telemetry.Addr != nil {
		s.Telemetry.Addr = *f.Telemetry.Addr
	}
	setFloat(&s.Telemetry.MaxFPS, f.Telemetry.MaxFPS)
	setInt(&s.Telemetry.Burst, f.Telemetry.Burst)
	if f.Verbose != nil {
		s.Verbose = *f.Verbose
	}
	return s, nil
}

// ApplyEnv overrides settings from the environment. A variable that is set
// but does not parse is an error rather than silently ignored.
func ApplyEnv(s *Settings, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSeed); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return envErr(EnvSeed, v)
		}
		s.Sim.Seed = n
	}
	floats := []struct {
		key string
		dst *float64
	}{
		{EnvFixedDelta, &s.Sim.FixedDelta},
		{EnvBoardSize, &s.Sim.ArenaSize},
		{EnvSpawnInterval, &s.Sim.SpawnInterval},
	}
	for _, f := range floats {
		if v, ok := lookup(f.key); ok {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return envErr(f.key, v)
			}
			*f.dst = x
		}
	}
	if v, ok := lookup(EnvPlayerCount); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envErr(EnvPlayerCount, v)
		}
		s.Sim.PlayerCount = n
	}
	if v, ok := lookup(EnvLocalPlayer); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envErr(EnvLocalPlayer, v)
		}
		s.Sim.LocalPlayer = sim.FactionID(n)
	}
	return nil
}

// Validate checks the match and telemetry settings.
func (s Settings) Validate() error {
	if err := s.Sim.Validate(); err != nil {
		return err
	}
	if !(s.Telemetry.MaxFPS > 0) {
		return fmt.Errorf("%w: telemetry max_fps %v must be > 0", sim.ErrInvalidConfig, s.Telemetry.MaxFPS)
	}
	if s.Telemetry.Burst < 1 {
		return fmt.Errorf("%w: telemetry burst %d must be >= 1", sim.ErrInvalidConfig, s.Telemetry.Burst)
	}
	return nil
}

func envErr(key, val string) error {
	return fmt.Errorf("%w: %s=%q is not a number", sim.ErrInvalidConfig, key, val)
}

func setInt64(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
