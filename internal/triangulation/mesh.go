package triangulation

import (
	"math"

	"github.com/golang/geo/r2"

	"islandgen/internal/geometry"
)

// edge is a directed edge; every live triangle owns its three edges in
// counter-clockwise order.
type edge struct {
	a, b int
}

type mesh struct {
	pts         []r2.Point
	tris        []Triangle
	dead        []bool
	owner       map[edge]int
	constrained map[edge]bool
}

func newMesh(pts []r2.Point) *mesh {
	return &mesh{
		pts:         pts,
		owner:       make(map[edge]int),
		constrained: make(map[edge]bool),
	}
}

func (m *mesh) add(a, b, c int) int {
	idx := len(m.tris)
	m.tris = append(m.tris, Triangle{a, b, c})
	m.dead = append(m.dead, false)
	m.owner[edge{a, b}] = idx
	m.owner[edge{b, c}] = idx
	m.owner[edge{c, a}] = idx
	return idx
}

func (m *mesh) remove(i int) {
	m.dead[i] = true
	t := m.tris[i]
	for k := 0; k < 3; k++ {
		e := edge{t[k], t[(k+1)%3]}
		if m.owner[e] == i {
			delete(m.owner, e)
		}
	}
}

// across returns the live triangle on the other side of edge k of triangle i.
func (m *mesh) across(i, k int) (int, bool) {
	t := m.tris[i]
	j, ok := m.owner[edge{t[(k+1)%3], t[k]}]
	return j, ok
}

func (m *mesh) hasEdge(a, b int) bool {
	if _, ok := m.owner[edge{a, b}]; ok {
		return true
	}
	_, ok := m.owner[edge{b, a}]
	return ok
}

func (m *mesh) constrain(a, b int) {
	m.constrained[edge{a, b}] = true
	m.constrained[edge{b, a}] = true
}

func (m *mesh) isConstrained(a, b int) bool {
	return m.constrained[edge{a, b}]
}

func third(t Triangle, a, b int) int {
	for _, v := range t {
		if v != a && v != b {
			return v
		}
	}
	return -1
}

// flippable reports whether the two triangles sharing u-v form a strictly
// convex quad, returning the opposite vertices.
func (m *mesh) flippable(u, v int) (int, int, bool) {
	t1, ok1 := m.owner[edge{u, v}]
	t2, ok2 := m.owner[edge{v, u}]
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	w1 := third(m.tris[t1], u, v)
	w2 := third(m.tris[t2], v, u)
	diag := geometry.Segment{A: m.pts[w1], B: m.pts[w2]}
	if !diag.ProperlyCrosses(geometry.Segment{A: m.pts[u], B: m.pts[v]}) {
		return w1, w2, false
	}
	return w1, w2, true
}

// flip replaces edge u-v by w1-w2, where w1 is opposite u->v and w2 is
// opposite v->u.
func (m *mesh) flip(u, v, w1, w2 int) {
	m.remove(m.owner[edge{u, v}])
	m.remove(m.owner[edge{v, u}])
	m.add(u, w2, w1)
	m.add(w2, v, w1)
}

// inCircle is positive when d lies inside the circumcircle of the
// counter-clockwise triangle abc.
func inCircle(a, b, c, d r2.Point) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y
	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy
	return ad*(bdx*cdy-cdx*bdy) - bd*(adx*cdy-cdx*ady) + cd*(adx*bdy-bdx*ady)
}

// inCircleStrict only reports containment above the rounding noise of the
// determinant, so cocircular points never trigger flips in both directions.
func inCircleStrict(a, b, c, d r2.Point) bool {
	scale := math.Max(math.Max(dist2(a, d), dist2(b, d)), dist2(c, d))
	return inCircle(a, b, c, d) > 1e-10*scale*scale
}

func dist2(a, b r2.Point) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

func (m *mesh) contains(i int, p r2.Point) bool {
	t := m.tris[i]
	a, b, c := m.pts[t[0]], m.pts[t[1]], m.pts[t[2]]
	return geometry.Orient(a, b, p) >= 0 && geometry.Orient(b, c, p) >= 0 && geometry.Orient(c, a, p) >= 0
}
