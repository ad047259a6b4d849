package termview

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	cueRate     = beep.SampleRate(44100)
	cueLength   = 40 * time.Millisecond
	cueMinGap   = 120 * time.Millisecond
	cueBaseFreq = 440.0
)

// Cue plays a short tone when units fire. A nil *Cue is silent, so callers
// can keep going when audio is unavailable.
type Cue struct {
	last time.Time
}

// NewCue initialises the speaker.
func NewCue() (*Cue, error) {
	if err := speaker.Init(cueRate, cueRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Cue{}, nil
}

// cueFrequency pitches the tone up with the number of shots, capped at one
// octave.
func cueFrequency(shots int) float64 {
	if shots > 12 {
		shots = 12
	}
	return cueBaseFreq * (1 + float64(shots)/12)
}

// Fired plays one tone for a tick's shots, rate-limited so a busy match does
// not turn into a drone.
func (c *Cue) Fired(shots int, now time.Time) {
	if c == nil || shots <= 0 || now.Sub(c.last) < cueMinGap {
		return
	}
	sine, err := generators.SineTone(cueRate, cueFrequency(shots))
	if err != nil {
		return
	}
	c.last = now
	speaker.Play(beep.Take(cueRate.N(cueLength), sine))
}
