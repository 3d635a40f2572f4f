package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const baryTolerance = 1e-9

type triRef struct {
	mesh, tri int
}

// Locator answers plan-view height queries against a set of meshes using a
// uniform bucket grid. Earlier meshes win where meshes overlap.
type Locator struct {
	meshes  []*Mesh
	originX float64
	originZ float64
	cellX   float64
	cellZ   float64
	cols    int
	rows    int
	buckets [][]triRef
}

// NewLocator indexes every triangle of meshes. The meshes must not change
// afterwards.
func NewLocator(meshes ...*Mesh) *Locator {
	l := &Locator{meshes: meshes}
	total := 0
	minX, minZ := math.Inf(1), math.Inf(1)
	maxX, maxZ := math.Inf(-1), math.Inf(-1)
	for _, m := range meshes {
		total += m.TriangleCount()
		for _, p := range m.Positions {
			minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
			minZ, maxZ = math.Min(minZ, p[2]), math.Max(maxZ, p[2])
		}
	}
	if total == 0 {
		return l
	}

	side := int(math.Max(1, math.Sqrt(float64(total))))
	l.cols, l.rows = side, side
	l.originX, l.originZ = minX, minZ
	l.cellX = math.Max((maxX-minX)/float64(side), 1e-9)
	l.cellZ = math.Max((maxZ-minZ)/float64(side), 1e-9)
	l.buckets = make([][]triRef, side*side)

	for mi, m := range meshes {
		for ti := 0; ti < m.TriangleCount(); ti++ {
			a, b, c := m.Triangle(ti)
			c0, r0 := l.cell(math.Min(a[0], math.Min(b[0], c[0])), math.Min(a[2], math.Min(b[2], c[2])))
			c1, r1 := l.cell(math.Max(a[0], math.Max(b[0], c[0])), math.Max(a[2], math.Max(b[2], c[2])))
			for r := r0; r <= r1; r++ {
				for col := c0; col <= c1; col++ {
					idx := r*l.cols + col
					l.buckets[idx] = append(l.buckets[idx], triRef{mesh: mi, tri: ti})
				}
			}
		}
	}
	return l
}

func (l *Locator) cell(x, z float64) (int, int) {
	col := int((x - l.originX) / l.cellX)
	row := int((z - l.originZ) / l.cellZ)
	return clampInt(col, 0, l.cols-1), clampInt(row, 0, l.rows-1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Height interpolates the surface height at (x, y). ok is false when no
// triangle covers the point.
func (l *Locator) Height(x, y float64) (float64, bool) {
	if len(l.buckets) == 0 {
		return 0, false
	}
	if x < l.originX || y < l.originZ ||
		x > l.originX+l.cellX*float64(l.cols) || y > l.originZ+l.cellZ*float64(l.rows) {
		return 0, false
	}
	col, row := l.cell(x, y)
	best := triRef{mesh: math.MaxInt}
	var height float64
	for _, ref := range l.buckets[row*l.cols+col] {
		if ref.mesh > best.mesh || (ref.mesh == best.mesh && ref.tri > best.tri) {
			continue
		}
		a, b, c := l.meshes[ref.mesh].Triangle(ref.tri)
		if h, ok := barycentricHeight(a, b, c, x, y); ok {
			best, height = ref, h
		}
	}
	return height, best.mesh != math.MaxInt
}

func barycentricHeight(a, b, c mgl64.Vec3, x, z float64) (float64, bool) {
	det := (b[0]-a[0])*(c[2]-a[2]) - (c[0]-a[0])*(b[2]-a[2])
	if det == 0 {
		return 0, false
	}
	wa := ((b[0]-x)*(c[2]-z) - (c[0]-x)*(b[2]-z)) / det
	wb := ((c[0]-x)*(a[2]-z) - (a[0]-x)*(c[2]-z)) / det
	wc := 1 - wa - wb
	if wa < -baryTolerance || wb < -baryTolerance || wc < -baryTolerance {
		return 0, false
	}
	return wa*a[1] + wb*b[1] + wc*c[1], true
}
