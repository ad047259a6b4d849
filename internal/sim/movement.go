package sim

import "math"

// steerUnits advances every live unit by one tick. Neighbour positions come
// from the spatial index, so all units react to the same start-of-stage
// picture regardless of processing order.
func steerUnits(store *Store, index *SpatialIndex, bounds Rect, dt float64) {
	accel := 1 - math.Exp(-unitAcceleration*dt)
	for _, id := range store.UnitIDs() {
		u, ok := store.Unit(id)
		if !ok {
			continue
		}

		desired := Vec2{}
		if u.HasTarget {
			dest := bounds.Clamp(u.Destination())
			delta := dest.Sub(u.Pos)
			if delta.Len() <= arrivalRadius {
				u.HasTarget = false
				u.Target, u.Offset = Vec2{}, Vec2{}
			} else {
				speed := math.Min(unitSpeed, delta.Len()*arrivalGain)
				desired = delta.Normalize().Scale(speed)
			}
		}
		u.Vel = u.Vel.Lerp(desired, accel)

		if push := separationPush(u, index); push.LenSq() > 0 {
			u.Vel = u.Vel.Add(push.Normalize().Scale(separationForce)).ClampLen(separationSpeedCap)
		}

		next := u.Pos.Add(u.Vel.Scale(dt))
		clamped := bounds.Clamp(next)
		if clamped.X != next.X {
			u.Vel.X = 0
		}
		if clamped.Y != next.Y {
			u.Vel.Y = 0
		}
		u.Pos = clamped
		if u.Vel.LenSq() > 1 {
			u.Heading = u.Vel.Angle()
		}
	}
}

// separationPush sums a falloff push away from every other unit within
// separationRadius, regardless of faction.
func separationPush(u *Unit, index *SpatialIndex) Vec2 {
	var push Vec2
	for _, e := range index.UnitsInRadius(u.Pos, separationRadius) {
		if e.UnitID() == u.ID {
			continue
		}
		away := u.Pos.Sub(e.Pos)
		d := away.Len()
		if d < 0.1 || d >= separationRadius {
			continue
		}
		push = push.Add(away.Scale((separationRadius - d) / (separationRadius * d)))
	}
	return push
}
