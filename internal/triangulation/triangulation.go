// Package triangulation builds constrained Delaunay triangulations of a
// boundary ring with optional constraint rings, holes and free points.
package triangulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"islandgen/internal/geometry"
)

var (
	ErrTooFewPoints = errors.New("boundary needs at least 3 points")
	ErrLocate       = errors.New("point outside triangulation")
	ErrConstraint   = errors.New("constraint edge cannot be recovered")
)

const (
	superScale     = 20
	collinearTol   = 1e-12
	maxFlipsFactor = 16
)

// Triangle holds three vertex indices in counter-clockwise order.
type Triangle [3]int

// Triangulation collects input rings and points, then triangulates them.
// Vertex indices are insertion indices across every Add call. Points that
// repeat an earlier coordinate are merged: triangles reference the first
// index at which the coordinate was added.
type Triangulation struct {
	points      []r2.Point
	boundary    []int
	constraints [][]int
	holes       [][]int
	triangles   []Triangle
}

// New returns an empty triangulation.
func New() *Triangulation {
	return &Triangulation{}
}

// Reset clears inputs and results.
func (t *Triangulation) Reset() {
	*t = Triangulation{}
}

// AddBoundaryPoint appends a point to the outer ring.
func (t *Triangulation) AddBoundaryPoint(p r2.Point) int {
	idx := t.push(p)
	t.boundary = append(t.boundary, idx)
	return idx
}

// AddConstraint adds a closed ring whose edges must appear in the output.
// The area it encloses is kept.
func (t *Triangulation) AddConstraint(ring []r2.Point) []int {
	idx := t.pushRing(ring)
	t.constraints = append(t.constraints, idx)
	return idx
}

// AddHole adds a closed ring whose interior is removed from the output.
func (t *Triangulation) AddHole(ring []r2.Point) []int {
	idx := t.pushRing(ring)
	t.holes = append(t.holes, idx)
	return idx
}

// AddPoint adds a free Steiner point.
func (t *Triangulation) AddPoint(p r2.Point) int {
	return t.push(p)
}

func (t *Triangulation) push(p r2.Point) int {
	t.points = append(t.points, p)
	return len(t.points) - 1
}

func (t *Triangulation) pushRing(ring []r2.Point) []int {
	idx := make([]int, len(ring))
	for i, p := range ring {
		idx[i] = t.push(p)
	}
	return idx
}

// Vertices returns every added point in insertion order.
func (t *Triangulation) Vertices() []r2.Point {
	out := make([]r2.Point, len(t.points))
	copy(out, t.points)
	return out
}

// Triangles returns the triangles covering the boundary minus the holes.
// It is empty until Triangulate succeeds.
func (t *Triangulation) Triangles() []Triangle {
	out := make([]Triangle, len(t.triangles))
	copy(out, t.triangles)
	return out
}

// Triangulate runs the triangulation. Input errors such as crossing rings
// are reported as ErrConstraint.
func (t *Triangulation) Triangulate() error {
	t.triangles = nil
	if len(t.boundary) < 3 {
		return ErrTooFewPoints
	}

	canonical := make([]int, len(t.points))
	first := make(map[r2.Point]int, len(t.points))
	for i, p := range t.points {
		if j, ok := first[p]; ok {
			canonical[i] = j
			continue
		}
		first[p] = i
		canonical[i] = i
	}

	n := len(t.points)
	pts := make([]r2.Point, n, n+3)
	copy(pts, t.points)
	pts = append(pts, superTriangle(t.points)...)

	m := newMesh(pts)
	m.add(n, n+1, n+2)
	for i := 0; i < n; i++ {
		if canonical[i] != i {
			continue
		}
		if err := m.insert(i); err != nil {
			return fmt.Errorf("insert point %d %v: %w", i, t.points[i], err)
		}
	}

	rings := append([][]int{t.boundary}, t.constraints...)
	rings = append(rings, t.holes...)
	for _, ring := range rings {
		for k := range ring {
			a := canonical[ring[k]]
			b := canonical[ring[(k+1)%len(ring)]]
			if a == b {
				continue
			}
			if err := m.recover(a, b, n); err != nil {
				return fmt.Errorf("edge %d-%d: %w", a, b, err)
			}
		}
	}
	m.restoreDelaunay()

	outer := t.ring(t.boundary)
	holes := make([]geometry.Polygon, len(t.holes))
	for i, h := range t.holes {
		holes[i] = t.ring(h)
	}
	for i, tri := range m.tris {
		if m.dead[i] || tri[0] >= n || tri[1] >= n || tri[2] >= n {
			continue
		}
		c := pts[tri[0]].Add(pts[tri[1]]).Add(pts[tri[2]]).Mul(1.0 / 3)
		if !outer.Contains(c) || insideAny(holes, c) {
			continue
		}
		t.triangles = append(t.triangles, tri)
	}
	return nil
}

func (t *Triangulation) ring(idx []int) geometry.Polygon {
	out := make(geometry.Polygon, len(idx))
	for i, j := range idx {
		out[i] = t.points[j]
	}
	return out
}

func insideAny(polys []geometry.Polygon, p r2.Point) bool {
	for _, poly := range polys {
		if poly.Contains(p) {
			return true
		}
	}
	return false
}

// superTriangle returns a counter-clockwise triangle enclosing pts with a
// wide margin.
func superTriangle(pts []r2.Point) []r2.Point {
	b := r2.RectFromPoints(pts...)
	c := b.Center()
	size := b.Size()
	d := math.Max(math.Max(size.X, size.Y), 1)
	return []r2.Point{
		{X: c.X - superScale*d, Y: c.Y - d},
		{X: c.X + superScale*d, Y: c.Y - d},
		{X: c.X, Y: c.Y + superScale*d},
	}
}

// insert adds vertex v with the Bowyer-Watson cavity method.
func (m *mesh) insert(v int) error {
	p := m.pts[v]
	start := -1
	for i := range m.tris {
		if !m.dead[i] && m.contains(i, p) {
			start = i
			break
		}
	}
	if start < 0 {
		return ErrLocate
	}

	cavity := map[int]bool{start: true}
	order := []int{start}
	for k := 0; k < len(order); k++ {
		i := order[k]
		for e := 0; e < 3; e++ {
			j, ok := m.across(i, e)
			if !ok || cavity[j] {
				continue
			}
			t := m.tris[j]
			if inCircle(m.pts[t[0]], m.pts[t[1]], m.pts[t[2]], p) > 0 {
				cavity[j] = true
				order = append(order, j)
			}
		}
	}

	var rim []edge
	for {
		rim = rim[:0]
		grown := false
		for _, i := range order {
			t := m.tris[i]
			for e := 0; e < 3; e++ {
				j, ok := m.across(i, e)
				if ok && cavity[j] {
					continue
				}
				a, b := t[e], t[(e+1)%3]
				if geometry.Orient(m.pts[a], m.pts[b], p) <= 0 {
					// The new triangle would be flat or inverted; absorb
					// the neighbour so the cavity stays star shaped.
					if !ok {
						return ErrLocate
					}
					cavity[j] = true
					order = append(order, j)
					grown = true
					break
				}
				rim = append(rim, edge{a, b})
			}
			if grown {
				break
			}
		}
		if !grown {
			break
		}
	}

	for _, i := range order {
		m.remove(i)
	}
	for _, e := range rim {
		m.add(e.a, e.b, v)
	}
	return nil
}

// recover forces a-b into the mesh by flipping the edges that cross it.
// limit is the number of real vertices; higher indices are the super
// triangle.
func (m *mesh) recover(a, b, limit int) error {
	if m.hasEdge(a, b) {
		m.constrain(a, b)
		return nil
	}
	if v, ok := m.vertexOn(a, b, limit); ok {
		if err := m.recover(a, v, limit); err != nil {
			return err
		}
		return m.recover(v, b, limit)
	}

	seg := geometry.Segment{A: m.pts[a], B: m.pts[b]}
	queue, err := m.crossing(seg)
	if err != nil {
		return err
	}
	budget := maxFlipsFactor * (len(queue) + 1) * (len(queue) + 1)
	for len(queue) > 0 {
		if budget--; budget < 0 {
			return ErrConstraint
		}
		e := queue[0]
		queue = queue[1:]
		w1, w2, ok := m.flippable(e.a, e.b)
		if !ok {
			queue = append(queue, e)
			continue
		}
		m.flip(e.a, e.b, w1, w2)
		if w1 == a || w1 == b || w2 == a || w2 == b {
			continue
		}
		if seg.ProperlyCrosses(geometry.Segment{A: m.pts[w1], B: m.pts[w2]}) {
			queue = append(queue, edge{w1, w2})
		}
	}
	if !m.hasEdge(a, b) {
		return ErrConstraint
	}
	m.constrain(a, b)
	return nil
}

// vertexOn returns the real vertex closest to a lying strictly inside
// segment a-b.
func (m *mesh) vertexOn(a, b, limit int) (int, bool) {
	pa, pb := m.pts[a], m.pts[b]
	d := pb.Sub(pa)
	lenSq := d.Dot(d)
	best, bestT := -1, 2.0
	for v := range m.owner {
		u := v.a
		if u >= limit || u == a || u == b {
			continue
		}
		p := m.pts[u]
		if math.Abs(geometry.Orient(pa, pb, p)) > collinearTol*lenSq {
			continue
		}
		tt := p.Sub(pa).Dot(d) / lenSq
		if tt > 0 && tt < 1 && (tt < bestT || (tt == bestT && u < best)) {
			best, bestT = u, tt
		}
	}
	return best, best >= 0
}

// crossing lists the undirected edges that properly cross seg, in triangle
// order. Crossing an existing constraint means the input rings intersect.
func (m *mesh) crossing(seg geometry.Segment) ([]edge, error) {
	var out []edge
	seen := make(map[edge]bool)
	for i, t := range m.tris {
		if m.dead[i] {
			continue
		}
		for k := 0; k < 3; k++ {
			u, v := t[k], t[(k+1)%3]
			key := edge{min(u, v), max(u, v)}
			if seen[key] {
				continue
			}
			seen[key] = true
			if !seg.ProperlyCrosses(geometry.Segment{A: m.pts[u], B: m.pts[v]}) {
				continue
			}
			if m.isConstrained(u, v) {
				return nil, fmt.Errorf("%w: crosses constrained edge %d-%d", ErrConstraint, u, v)
			}
			out = append(out, key)
		}
	}
	return out, nil
}

// restoreDelaunay flips unconstrained edges that fail the empty circle test
// until a full pass makes no change.
func (m *mesh) restoreDelaunay() {
	budget := maxFlipsFactor * (len(m.tris) + 1)
	for budget > 0 {
		flipped := false
		for i := 0; i < len(m.tris) && budget > 0; i++ {
			if !m.dead[i] && m.legalize(i) {
				flipped = true
				budget--
			}
		}
		if !flipped {
			return
		}
	}
}

// legalize flips the first illegal edge of triangle i.
func (m *mesh) legalize(i int) bool {
	t := m.tris[i]
	for k := 0; k < 3; k++ {
		u, v, w := t[k], t[(k+1)%3], t[(k+2)%3]
		if m.isConstrained(u, v) {
			continue
		}
		j, ok := m.owner[edge{v, u}]
		if !ok {
			continue
		}
		opp := third(m.tris[j], v, u)
		if !inCircleStrict(m.pts[u], m.pts[v], m.pts[w], m.pts[opp]) {
			continue
		}
		w1, w2, ok := m.flippable(u, v)
		if !ok {
			continue
		}
		m.flip(u, v, w1, w2)
		return true
	}
	return false
}
