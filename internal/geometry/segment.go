package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// Segment is a directed line segment.
type Segment struct {
	A, B r2.Point
}

// Intersection classifies the relation of two lines or segments.
type Intersection int

const (
	Parallel Intersection = iota
	Coincident
	// Crossing lines meet at a single point inside both segments.
	Crossing
	// Outside lines meet at a single point outside at least one segment.
	Outside
)

func (i Intersection) String() string {
	switch i {
	case Parallel:
		return "parallel"
	case Coincident:
		return "coincident"
	case Crossing:
		return "crossing"
	case Outside:
		return "outside"
	default:
		return "unknown"
	}
}

// Length of the segment.
func (s Segment) Length() float64 {
	return s.B.Sub(s.A).Norm()
}

// Direction is the unit vector from A to B, or zero for a degenerate segment.
func (s Segment) Direction() r2.Point {
	d := s.B.Sub(s.A)
	if d.Norm() == 0 {
		return r2.Point{}
	}
	return d.Normalize()
}

// At returns the point at parameter t along the segment.
func (s Segment) At(t float64) r2.Point {
	return Lerp(s.A, s.B, t)
}

// Midpoint of the segment.
func (s Segment) Midpoint() r2.Point {
	return s.At(0.5)
}

// Translate moves both endpoints by d.
func (s Segment) Translate(d r2.Point) Segment {
	return Segment{A: s.A.Add(d), B: s.B.Add(d)}
}

// DistanceTo returns the distance from p to the closest point of s.
func (s Segment) DistanceTo(p r2.Point) float64 {
	d := s.B.Sub(s.A)
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return p.Sub(s.A).Norm()
	}
	t := p.Sub(s.A).Dot(d) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Sub(s.At(t)).Norm()
}

// Intersect intersects the infinite lines through s and o. The returned
// point is only meaningful for Crossing and Outside.
func (s Segment) Intersect(o Segment) (r2.Point, Intersection) {
	d1 := s.B.Sub(s.A)
	d2 := o.B.Sub(o.A)
	denom := d1.Cross(d2)
	w := o.A.Sub(s.A)
	scale := d1.Norm() * d2.Norm()
	if math.Abs(denom) <= Epsilon*math.Max(scale, 1) {
		if math.Abs(w.Cross(d1)) <= Epsilon*math.Max(d1.Norm()*w.Norm(), 1) {
			return r2.Point{}, Coincident
		}
		return r2.Point{}, Parallel
	}
	ua := w.Cross(d2) / denom
	ub := w.Cross(d1) / denom
	pt := s.At(ua)
	if ua >= 0 && ua <= 1 && ub >= 0 && ub <= 1 {
		return pt, Crossing
	}
	return pt, Outside
}

// ProperlyCrosses reports whether the two segments cross at a single point
// interior to both. Touching at endpoints or collinear overlap do not count.
func (s Segment) ProperlyCrosses(o Segment) bool {
	o1 := Orient(s.A, s.B, o.A)
	o2 := Orient(s.A, s.B, o.B)
	o3 := Orient(o.A, o.B, s.A)
	o4 := Orient(o.A, o.B, s.B)
	return ((o1 > 0 && o2 < 0) || (o1 < 0 && o2 > 0)) &&
		((o3 > 0 && o4 < 0) || (o3 < 0 && o4 > 0))
}
