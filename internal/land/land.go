// Package land builds the island outline that every later stage subdivides.
package land

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"islandgen/internal/geometry"
	"islandgen/internal/rng"
)

var (
	ErrInvalidRange  = errors.New("invalid range")
	ErrInvalidLength = errors.New("side length must be positive")
)

// Generator produces an island outline from the shared random source.
type Generator interface {
	Generate(r *rng.LCG) (geometry.Polygon, error)
}

// Range is a closed interval of radii.
type Range struct {
	Min, Max float64
}

// Elliptical samples vertices on an ellipse whose radii and vertex count are
// drawn from the configured ranges. Vertex i lies at a random angle inside
// the i-th angular sector; AngleJitter scales how much of the sector is used
// (1 spans the full sector, 0 places vertices at the sector start).
type Elliptical struct {
	MinorRadius Range
	MajorRadius Range
	MinVertices int
	MaxVertices int
	AngleJitter float64
}

// Ellipse is an axis aligned ellipse centred on the origin; the major radius
// runs along x and the minor radius along y.
type Ellipse struct {
	Minor, Major float64
}

// RadiusAt returns the polar radius at angle theta.
func (e Ellipse) RadiusAt(theta float64) float64 {
	a := e.Minor * math.Cos(theta)
	b := e.Major * math.Sin(theta)
	return e.Major * e.Minor / math.Sqrt(a*a+b*b)
}

// PointAt returns the boundary point at angle theta.
func (e Ellipse) PointAt(theta float64) r2.Point {
	r := e.RadiusAt(theta)
	return r2.Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

// Area of the ellipse.
func (e Ellipse) Area() float64 {
	return math.Pi * e.Minor * e.Major
}

func (g Elliptical) validate() error {
	for name, rg := range map[string]Range{"minor": g.MinorRadius, "major": g.MajorRadius} {
		if rg.Min <= 0 || rg.Max < rg.Min {
			return fmt.Errorf("%w: %s radius [%g, %g]", ErrInvalidRange, name, rg.Min, rg.Max)
		}
	}
	if g.MinVertices < 3 || g.MaxVertices < g.MinVertices {
		return fmt.Errorf("%w: vertex count [%d, %d]", ErrInvalidRange, g.MinVertices, g.MaxVertices)
	}
	if g.AngleJitter < 0 || g.AngleJitter > 1 {
		return fmt.Errorf("%w: angle jitter %g", ErrInvalidRange, g.AngleJitter)
	}
	return nil
}

// Generate draws the radii, the vertex count and one angle per vertex, in
// that order. The outline is shifted so its bounding ellipse touches the
// axes, keeping every coordinate non-negative.
func (g Elliptical) Generate(r *rng.LCG) (geometry.Polygon, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	e := Ellipse{
		Minor: r.Range(g.MinorRadius.Min, g.MinorRadius.Max),
		Major: r.Range(g.MajorRadius.Min, g.MajorRadius.Max),
	}
	n := r.IntRange(g.MinVertices, g.MaxVertices)
	sector := 2 * math.Pi / float64(n)
	offset := r2.Point{X: e.Major, Y: e.Minor}

	poly := make(geometry.Polygon, 0, n)
	for i := 0; i < n; i++ {
		start := float64(i) * sector
		theta := r.Range(start, start+sector*g.AngleJitter)
		poly = append(poly, e.PointAt(theta).Add(offset))
	}
	return poly, nil
}

// Square produces an axis aligned square with its lower corner at the origin.
type Square struct {
	Side float64
}

func (g Square) Generate(*rng.LCG) (geometry.Polygon, error) {
	if g.Side <= 0 {
		return nil, ErrInvalidLength
	}
	return geometry.Polygon{
		{X: 0, Y: 0},
		{X: g.Side, Y: 0},
		{X: g.Side, Y: g.Side},
		{X: 0, Y: g.Side},
	}, nil
}
