package sim

import "math"

// Vec2 is a point or direction in arena space.
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (a Vec2) Add(b Vec2) Vec2      { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2      { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(k float64) Vec2 { return Vec2{a.X * k, a.Y * k} }

// LenSq returns the squared length.
func (a Vec2) LenSq() float64 { return a.X*a.X + a.Y*a.Y }

// Len returns the Euclidean length.
func (a Vec2) Len() float64 { return math.Sqrt(a.LenSq()) }

// DistSq returns the squared distance between a and b.
func (a Vec2) DistSq(b Vec2) float64 { return a.Sub(b).LenSq() }

// Dist returns the Euclidean distance between a and b.
func (a Vec2) Dist(b Vec2) float64 { return math.Sqrt(a.DistSq(b)) }

// Normalize returns the unit vector in the direction of a, or zero.
func (a Vec2) Normalize() Vec2 {
	l := a.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// ClampLen limits the vector length to limit.
func (a Vec2) ClampLen(limit float64) Vec2 {
	l := a.Len()
	if l <= limit || l == 0 {
		return a
	}
	return a.Scale(limit / l)
}

// Lerp moves a toward b by factor t in [0,1].
func (a Vec2) Lerp(b Vec2, t float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Angle returns the heading of a in radians.
func (a Vec2) Angle() float64 { return math.Atan2(a.Y, a.X) }

// FromAngle returns the unit vector at angle rad.
func FromAngle(rad float64) Vec2 { return Vec2{math.Cos(rad), math.Sin(rad)} }

// Rect is an axis-aligned rectangle; Min is inclusive, Max is inclusive.
type Rect struct {
	Min, Max Vec2
}

// RectFromPoints builds the normalized rectangle spanned by two corners.
func RectFromPoints(a, b Vec2) Rect {
	return Rect{
		Min: Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)},
		Max: Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)},
	}
}

// Contains reports whether p lies inside r (edges included).
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Pad grows (pad > 0) or shrinks the rectangle on every side.
func (r Rect) Pad(pad float64) Rect {
	return Rect{
		Min: Vec2{r.Min.X - pad, r.Min.Y - pad},
		Max: Vec2{r.Max.X + pad, r.Max.Y + pad},
	}
}

// Clamp projects p onto r.
func (r Rect) Clamp(p Vec2) Vec2 {
	return Vec2{clamp(p.X, r.Min.X, r.Max.X), clamp(p.Y, r.Min.Y, r.Max.Y)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
