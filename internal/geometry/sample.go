package geometry

import (
	"sort"

	"github.com/golang/geo/r2"

	"islandgen/internal/rng"
)

const maxSampleAttempts = 256

// RandomPoint draws a point uniformly inside p by rejection sampling its
// bounding box. The centroid is returned if no sample lands inside, which
// only happens for slivers.
func RandomPoint(p Polygon, r *rng.LCG) r2.Point {
	b := p.Bounds()
	for i := 0; i < maxSampleAttempts; i++ {
		pt := r2.Point{
			X: r.Range(b.X.Lo, b.X.Hi),
			Y: r.Range(b.Y.Lo, b.Y.Hi),
		}
		if p.Contains(pt) {
			return pt
		}
	}
	return p.Centroid()
}

// InsertBoundaryPoints returns a copy of p in which every point of pts that
// lies on one of its edges (within tol, excluding the edge endpoints) is
// spliced into that edge, sorted along the edge direction.
func InsertBoundaryPoints(p Polygon, pts []r2.Point, tol float64) Polygon {
	out := make(Polygon, 0, len(p)+len(pts))
	for i := range p {
		e := p.Edge(i)
		out = append(out, e.A)

		type hit struct {
			t  float64
			pt r2.Point
		}
		var hits []hit
		d := e.B.Sub(e.A)
		lenSq := d.Dot(d)
		if lenSq == 0 {
			continue
		}
		for _, pt := range pts {
			if pt.Sub(e.A).Norm() <= tol || pt.Sub(e.B).Norm() <= tol {
				continue
			}
			if e.DistanceTo(pt) > tol {
				continue
			}
			hits = append(hits, hit{t: pt.Sub(e.A).Dot(d) / lenSq, pt: pt})
		}
		sort.Slice(hits, func(a, b int) bool { return hits[a].t < hits[b].t })
		for _, h := range hits {
			out = append(out, h.pt)
		}
	}
	return out.Compact(tol)
}
