// Package geometry holds the 2-D primitives shared by the island pipeline.
// Points are r2.Point values; a Polygon is an ordered cyclic ring of them.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Epsilon is the absolute tolerance used by the boundary and collinearity
// predicates.
const Epsilon = 1e-9

var (
	// ErrTooFewVertices reports a ring with fewer than three points.
	ErrTooFewVertices = errors.New("polygon needs at least 3 vertices")
	// ErrDegenerate reports repeated consecutive vertices or a zero area ring.
	ErrDegenerate = errors.New("degenerate polygon")
)

// Polygon is an ordered cyclic sequence of points. Orientation is not
// normalized.
type Polygon []r2.Point

// Len returns the vertex count.
func (p Polygon) Len() int { return len(p) }

// Vertex returns the vertex at i, wrapping around in both directions.
func (p Polygon) Vertex(i int) r2.Point {
	n := len(p)
	return p[((i%n)+n)%n]
}

// Next returns the index following i.
func (p Polygon) Next(i int) int { return (i + 1) % len(p) }

// Prev returns the index preceding i.
func (p Polygon) Prev(i int) int { return (i - 1 + len(p)) % len(p) }

// Edge returns the segment from vertex i to vertex i+1.
func (p Polygon) Edge(i int) Segment {
	return Segment{A: p.Vertex(i), B: p.Vertex(i + 1)}
}

// Clone returns a copy that shares no storage with p.
func (p Polygon) Clone() Polygon {
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// SignedArea is the shoelace area; positive for counter-clockwise rings.
func (p Polygon) SignedArea() float64 {
	if len(p) < 3 {
		return 0
	}
	sum := 0.0
	for i := range p {
		a := p[i]
		b := p[(i+1)%len(p)]
		sum += a.Cross(b)
	}
	return sum * 0.5
}

// Area is the absolute shoelace area.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// IsCounterClockwise reports the ring orientation.
func (p Polygon) IsCounterClockwise() bool {
	return p.SignedArea() > 0
}

// Centroid returns the mean of the vertices.
func (p Polygon) Centroid() r2.Point {
	if len(p) == 0 {
		return r2.Point{}
	}
	var sum r2.Point
	for _, v := range p {
		sum = sum.Add(v)
	}
	return sum.Mul(1 / float64(len(p)))
}

// Bounds returns the axis aligned bounding box.
func (p Polygon) Bounds() r2.Rect {
	return r2.RectFromPoints(p...)
}

// Perimeter returns the summed edge length.
func (p Polygon) Perimeter() float64 {
	total := 0.0
	for i := range p {
		total += p.Edge(i).Length()
	}
	return total
}

// AverageEdgeLength returns Perimeter divided by the edge count.
func (p Polygon) AverageEdgeLength() float64 {
	if len(p) == 0 {
		return 0
	}
	return p.Perimeter() / float64(len(p))
}

// SelfIntersects reports whether two non-adjacent edges cross.
func (p Polygon) SelfIntersects() bool {
	n := len(p)
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if p.Edge(i).ProperlyCrosses(p.Edge(j)) {
				return true
			}
		}
	}
	return false
}

// Validate checks the ring invariants.
func (p Polygon) Validate() error {
	if len(p) < 3 {
		return ErrTooFewVertices
	}
	for i := range p {
		if p.Edge(i).Length() <= Epsilon {
			return fmt.Errorf("%w: vertex %d repeats vertex %d", ErrDegenerate, p.Next(i), i)
		}
	}
	if p.Area() <= Epsilon {
		return fmt.Errorf("%w: zero area", ErrDegenerate)
	}
	return nil
}

// Contains reports whether pt lies inside the ring using the winding number.
// Points exactly on an edge may fall either way; use OnBoundary for those.
func (p Polygon) Contains(pt r2.Point) bool {
	if len(p) < 3 {
		return false
	}
	winding := 0
	for i := range p {
		a := p[i]
		b := p[(i+1)%len(p)]
		if a.Y <= pt.Y {
			if b.Y > pt.Y && Orient(a, b, pt) > 0 {
				winding++
			}
		} else if b.Y <= pt.Y && Orient(a, b, pt) < 0 {
			winding--
		}
	}
	return winding != 0
}

// OnBoundary reports whether pt is within tol of any edge.
func (p Polygon) OnBoundary(pt r2.Point, tol float64) bool {
	for i := range p {
		if p.Edge(i).DistanceTo(pt) <= tol {
			return true
		}
	}
	return false
}

// Compact drops consecutive duplicates, including a closing duplicate of the
// first vertex.
func (p Polygon) Compact(tol float64) Polygon {
	out := make(Polygon, 0, len(p))
	for _, v := range p {
		if len(out) > 0 && v.Sub(out[len(out)-1]).Norm() <= tol {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && out[0].Sub(out[len(out)-1]).Norm() <= tol {
		out = out[:len(out)-1]
	}
	return out
}

// Orient returns twice the signed area of triangle abc: positive when c is
// to the left of a->b.
func Orient(a, b, c r2.Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// Lerp interpolates between a and b.
func Lerp(a, b r2.Point, t float64) r2.Point {
	return a.Add(b.Sub(a).Mul(t))
}
