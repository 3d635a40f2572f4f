package subdivision

import (
	"math"

	"github.com/golang/geo/r2"

	"islandgen/internal/geometry"
)

// adjacencyTolerance bounds the distance of an edge endpoint from the other
// edge's supporting line, and the minimal shared length.
const adjacencyTolerance = 1e-4

// Neighbours returns, per region, the ascending indices of regions that share
// a stretch of boundary with it.
func Neighbours(regions []geometry.Polygon) [][]int {
	out := make([][]int, len(regions))
	for i := range regions {
		out[i] = []int{}
	}
	for i := 0; i < len(regions); i++ {
		for j := i + 1; j < len(regions); j++ {
			if Adjacent(regions[i], regions[j]) {
				out[i] = append(out[i], j)
				out[j] = append(out[j], i)
			}
		}
	}
	return out
}

// Adjacent reports whether a and b have a pair of collinear, overlapping
// edges.
func Adjacent(a, b geometry.Polygon) bool {
	if !a.Bounds().ExpandedByMargin(adjacencyTolerance).Intersects(b.Bounds()) {
		return false
	}
	for i := range a {
		for j := range b {
			if edgesOverlap(a.Edge(i), b.Edge(j)) {
				return true
			}
		}
	}
	return false
}

func edgesOverlap(e, f geometry.Segment) bool {
	length := e.Length()
	if length <= geometry.Epsilon {
		return false
	}
	dir := e.Direction()
	for _, p := range []r2.Point{f.A, f.B} {
		if math.Abs(geometry.Orient(e.A, e.B, p))/length > adjacencyTolerance {
			return false
		}
	}
	t0 := f.A.Sub(e.A).Dot(dir)
	t1 := f.B.Sub(e.A).Dot(dir)
	lo := math.Max(0, math.Min(t0, t1))
	hi := math.Min(length, math.Max(t0, t1))
	return hi-lo > adjacencyTolerance
}
