package sim

import (
	"errors"
	"fmt"
	"math"
)

// --- Match defaults ---

// DefaultSeed fixes every stochastic choice of a match unless overridden.
const DefaultSeed int64 = 42

const (
	DefaultFixedDelta    = 1.0 / 30.0
	DefaultArenaSize     = 1600.0
	DefaultPlayerCount   = 4
	DefaultSpawnInterval = 1.0
	DefaultPylonCount    = 3
	MinPlayers           = 2
	MaxPlayers           = 8
)

// --- Interaction radii and tuning ---

const (
	supportRadius = 150.0 // px, support link / spawn-marker reach
	powerRadius   = 180.0 // px, pylon power field

	supportRegenPerLink  = 1.0  // HP/s per incident link
	supportDamagePerLink = 0.05 // damage bonus per incident link
	powerDamagePerUnit   = 0.04 // network-wide damage bonus per powered unit

	unitRadius          = 12.0 // body radius
	unitSpeed           = 120.0
	unitAcceleration    = 8.0
	separationRadius    = 40.0
	separationForce     = 60.0
	separationSpeedCap  = unitSpeed * 1.5
	arrivalRadius       = 4.0
	arrivalGain         = 2.0 // 1/s; desired speed falls off linearly inside unitSpeed/arrivalGain
	formationSpacing    = 60.0
	initialUnitOffset   = 18.0 // starting pair sits at marker ± this on x
	spawnJitter         = 20.0
	spawnRingFraction   = 0.35 // markers sit on a circle of this fraction of arena size
	pylonBoundsFraction = 0.45 // pylons stay within ±this fraction of arena size
)

// BeamLifetime is how long renderers should keep a fired beam on screen (seconds).
const BeamLifetime = 0.15

// Sentinel errors returned by the driver.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrCorruptWorld  = errors.New("corrupt world state")
	ErrHalted        = errors.New("simulation halted")
	ErrNotRunning    = errors.New("simulation not running")
)

// Config is the start-of-match environment supplied by the host.
type Config struct {
	Seed          int64
	FixedDelta    float64 // seconds per tick
	ArenaSize     float64 // side length of the square arena
	PlayerCount   int
	SpawnInterval float64 // seconds between spawns per faction
	LocalPlayer   FactionID
	PylonCount    int
}

// DefaultConfig returns the stock four-player match.
func DefaultConfig() Config {
	return Config{
		Seed:          DefaultSeed,
		FixedDelta:    DefaultFixedDelta,
		ArenaSize:     DefaultArenaSize,
		PlayerCount:   DefaultPlayerCount,
		SpawnInterval: DefaultSpawnInterval,
		PylonCount:    DefaultPylonCount,
	}
}

// Validate rejects configurations the driver must never run with.
func (c Config) Validate() error {
	if c.PlayerCount < MinPlayers || c.PlayerCount > MaxPlayers {
		return fmt.Errorf("%w: player count %d outside [%d,%d]", ErrInvalidConfig, c.PlayerCount, MinPlayers, MaxPlayers)
	}
	if !(c.SpawnInterval > 0) || math.IsInf(c.SpawnInterval, 0) {
		return fmt.Errorf("%w: spawn interval %v must be > 0", ErrInvalidConfig, c.SpawnInterval)
	}
	if !(c.ArenaSize > 0) || math.IsInf(c.ArenaSize, 0) {
		return fmt.Errorf("%w: arena size %v must be > 0", ErrInvalidConfig, c.ArenaSize)
	}
	if !(c.FixedDelta > 0) || math.IsInf(c.FixedDelta, 0) {
		return fmt.Errorf("%w: fixed delta %v must be > 0", ErrInvalidConfig, c.FixedDelta)
	}
	if c.LocalPlayer < 0 || int(c.LocalPlayer) >= c.PlayerCount {
		return fmt.Errorf("%w: local player %d has no faction", ErrInvalidConfig, c.LocalPlayer)
	}
	if c.PylonCount < 0 {
		return fmt.Errorf("%w: pylon count %d is negative", ErrInvalidConfig, c.PylonCount)
	}
	return nil
}

// Bounds returns the playable rectangle, centred on the origin.
func (c Config) Bounds() Rect {
	h := c.ArenaSize / 2
	return Rect{Min: Vec2{-h, -h}, Max: Vec2{h, h}}
}

// PylonBounds returns the rectangle pylons are confined to.
func (c Config) PylonBounds() Rect {
	h := c.ArenaSize * pylonBoundsFraction
	return Rect{Min: Vec2{-h, -h}, Max: Vec2{h, h}}
}
