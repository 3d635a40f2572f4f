// Package border insets regions to leave room for the road network.
package border

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"islandgen/internal/geometry"
)

// ErrNegativeWidth rejects negative border widths.
var ErrNegativeWidth = errors.New("border width cannot be negative")

// overflowTolerance is the relative slack allowed when comparing the summed
// core and border area against the region area.
const overflowTolerance = 1e-6

// BorderedRegion is a region split into an inset core and one quad per edge.
type BorderedRegion struct {
	Region  geometry.Polygon
	Core    geometry.Polygon
	Borders []geometry.Polygon
}

// TotalArea sums the absolute areas of the core and the border quads.
func (b BorderedRegion) TotalArea() float64 {
	total := b.Core.Area()
	for _, q := range b.Borders {
		total += q.Area()
	}
	return total
}

// Overflows reports whether the inset folded over itself. A fold shows up
// as the pieces covering more area than the region or as a core whose edges
// cross.
func (b BorderedRegion) Overflows() bool {
	if len(b.Borders) == 0 {
		return false
	}
	area := b.Region.Area()
	return b.TotalArea() > area*(1+overflowTolerance) ||
		b.Core.Validate() != nil ||
		b.Core.SelfIntersects()
}

// Generate insets region by width/2 on every edge. A zero width returns the
// region unchanged with no border quads.
func Generate(region geometry.Polygon, width float64) (BorderedRegion, error) {
	if width < 0 {
		return BorderedRegion{}, fmt.Errorf("%w: %g", ErrNegativeWidth, width)
	}
	if err := region.Validate(); err != nil {
		return BorderedRegion{}, fmt.Errorf("region: %w", err)
	}
	if width == 0 {
		return BorderedRegion{Region: region.Clone(), Core: region.Clone()}, nil
	}

	offset := width / 2
	centroid := region.Centroid()
	n := region.Len()

	lines := make([]geometry.Segment, n)
	normals := make([]r2.Point, n)
	for i := 0; i < n; i++ {
		edge := region.Edge(i)
		normal := edge.Direction().Ortho().Mul(offset)
		if centroid.Sub(edge.A).Dot(normal) < 0 {
			normal = normal.Mul(-1)
		}
		normals[i] = normal
		lines[i] = edge.Translate(normal)
	}

	core := make(geometry.Polygon, n)
	for i := 0; i < n; i++ {
		prev := region.Prev(i)
		pt, kind := lines[prev].Intersect(lines[i])
		if kind == geometry.Parallel || kind == geometry.Coincident || !finite(pt) {
			// Collinear neighbours share the same offset line; move the
			// vertex straight along it.
			pt = region[i].Add(normals[i])
		}
		core[i] = pt
	}

	borders := make([]geometry.Polygon, n)
	for i := 0; i < n; i++ {
		next := region.Next(i)
		borders[i] = geometry.Polygon{region[i], core[i], core[next], region[next]}
	}
	return BorderedRegion{Region: region.Clone(), Core: core, Borders: borders}, nil
}

func finite(p r2.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
