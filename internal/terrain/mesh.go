// Package terrain turns regions into height mapped, textured triangle
// meshes: one surface per region and a single road mesh for the space
// between them.
package terrain

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is an indexed triangle list. Positions are (x, height, y).
type Mesh struct {
	Positions []mgl64.Vec3
	UVs       []mgl64.Vec2
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Empty reports whether the mesh has no triangles.
func (m *Mesh) Empty() bool { return len(m.Indices) == 0 }

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(pos mgl64.Vec3, uv mgl64.Vec2) uint32 {
	m.Positions = append(m.Positions, pos)
	m.UVs = append(m.UVs, uv)
	return uint32(len(m.Positions) - 1)
}

// AddTriangle appends one triangle.
func (m *Mesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// Append copies o into m, rebasing its indices.
func (m *Mesh) Append(o Mesh) {
	base := uint32(len(m.Positions))
	m.Positions = append(m.Positions, o.Positions...)
	m.UVs = append(m.UVs, o.UVs...)
	for _, idx := range o.Indices {
		m.Indices = append(m.Indices, idx+base)
	}
}

// Triangle returns the three positions of triangle i.
func (m *Mesh) Triangle(i int) (mgl64.Vec3, mgl64.Vec3, mgl64.Vec3) {
	return m.Positions[m.Indices[3*i]], m.Positions[m.Indices[3*i+1]], m.Positions[m.Indices[3*i+2]]
}

// Area returns the summed plan-view area of the triangles.
func (m *Mesh) Area() float64 {
	total := 0.0
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		total += planArea(a, b, c)
	}
	if total < 0 {
		return -total
	}
	return total
}

func planArea(a, b, c mgl64.Vec3) float64 {
	return ((b[0]-a[0])*(c[2]-a[2]) - (c[0]-a[0])*(b[2]-a[2])) / 2
}
