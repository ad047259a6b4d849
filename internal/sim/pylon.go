package sim

import (
	"math"
	"math/rand"
)

const (
	// pylonCoupling is how strongly each pylon's phase is pulled toward the
	// others (rad/s per unit of sin difference).
	pylonCoupling = 0.35

	pylonMinRadius = 0.15 // orbit radius range as a fraction of arena size
	pylonMaxRadius = 0.30
	pylonMinSpeed  = 20.0 // tangential speed range, px/s
	pylonMaxSpeed  = 60.0
	pylonMaxSwing  = 0.25 // radial amplitude as a fraction of orbit radius
)

// newPylon rolls a pylon's orbit from rng. Each roll consumes the same
// number of values so later draws stay aligned across runs.
func newPylon(rng *rand.Rand, arenaSize float64) Pylon {
	radius := arenaSize * (pylonMinRadius + rng.Float64()*(pylonMaxRadius-pylonMinRadius))
	phase := rng.Float64() * 2 * math.Pi
	speed := pylonMinSpeed + rng.Float64()*(pylonMaxSpeed-pylonMinSpeed)
	swing := radius * rng.Float64() * pylonMaxSwing
	omega := speed / radius
	if rng.Intn(2) == 1 {
		omega = -omega
	}
	return Pylon{
		Pos:    FromAngle(phase).Scale(radius),
		Phase:  phase,
		Omega:  omega,
		Radius: radius,
		Swing:  swing,
	}
}

// advancePylons moves every pylon one tick along its coupled orbit:
//
//	θᵢ += (ωᵢ + κ·Σⱼ sin(θⱼ − θᵢ))·dt
//	rᵢ  = Rᵢ + Aᵢ·mean_j cos(θⱼ − θᵢ)
//
// All pylons read the previous phases. A pylon whose new position leaves
// bounds is clamped onto the edge and its angular direction reversed.
func advancePylons(pylons []Pylon, bounds Rect, dt float64) (reflected []PylonID) {
	n := len(pylons)
	if n == 0 {
		return nil
	}
	phases := make([]float64, n)
	for i := range pylons {
		phases[i] = pylons[i].Phase
	}

	for i := range pylons {
		p := &pylons[i]
		pull, align := coupling(phases, i)
		p.Phase = math.Mod(p.Phase+(p.Omega+pylonCoupling*pull)*dt, 2*math.Pi)

		prev := p.Pos
		next := FromAngle(p.Phase).Scale(p.Radius + p.Swing*align)
		if !bounds.Contains(next) {
			next = bounds.Clamp(next)
			p.Omega = -p.Omega
			reflected = append(reflected, p.ID)
		}
		p.Pos = next
		p.Vel = next.Sub(prev).Scale(1 / dt)
	}
	return reflected
}

// settlePylons places every pylon on its orbit for the current phases
// without advancing time.
func settlePylons(pylons []Pylon, bounds Rect) {
	phases := make([]float64, len(pylons))
	for i := range pylons {
		phases[i] = pylons[i].Phase
	}
	for i := range pylons {
		_, align := coupling(phases, i)
		pylons[i].Pos = bounds.Clamp(FromAngle(phases[i]).Scale(pylons[i].Radius + pylons[i].Swing*align))
	}
}

// coupling returns Σⱼ sin(θⱼ − θᵢ) and mean_j cos(θⱼ − θᵢ) over j ≠ i.
func coupling(phases []float64, i int) (pull, align float64) {
	for j := range phases {
		if j == i {
			continue
		}
		diff := phases[j] - phases[i]
		pull += math.Sin(diff)
		align += math.Cos(diff)
	}
	if n := len(phases); n > 1 {
		align /= float64(n - 1)
	}
	return pull, align
}
