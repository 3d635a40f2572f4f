package vegetation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"

	"islandgen/internal/atlas"
	"islandgen/internal/terrain"
)

// Shape controls how a skeleton is turned into geometry.
type Shape struct {
	// RadiusUnit is the cone radius per Strahler rank.
	RadiusUnit float64
	// MinRingPoints is the smallest number of points on a cone ring.
	MinRingPoints int
	// FlowerSize scales the petal quads.
	FlowerSize float64
}

// DefaultShape returns the stock cone and flower dimensions.
func DefaultShape() Shape {
	return Shape{RadiusUnit: 0.25, MinRingPoints: 10, FlowerSize: 0.6}
}

// RingPoints returns the number of points on each cone ring for a grammar
// angle in degrees. The count is one point per angle step, multiplied up
// until it reaches least.
func RingPoints(angle float64, least int) int {
	if least < 3 {
		least = 3
	}
	if angle <= 0 {
		return least
	}
	n := int(360 / angle)
	if n <= 0 {
		return least
	}
	if n < least {
		n *= int(math.Ceil(float64(least) / float64(n)))
	}
	return n
}

// petals returns the number of petal quads for a flower kind.
func petals(kind rune) int {
	switch kind {
	case 'X':
		return 3
	case 'P':
		return 1
	case 'T', 'L':
		return 4
	}
	return 0
}

// EmitTrunk appends one cone per grown branch to mesh. The base ring sits
// on the branch start with a radius of RadiusUnit*Strahler; the top ring
// sits on the branch end with RadiusUnit*BiggestChild.
func (s *Skeleton) EmitTrunk(mesh *terrain.Mesh, angle float64, shape Shape, uv r2.Rect) {
	n := RingPoints(angle, shape.MinRingPoints)
	for _, b := range s.Branches {
		if b.Size == 0 {
			continue
		}
		r0 := shape.RadiusUnit * float64(b.Strahler)
		r1 := shape.RadiusUnit * float64(b.BiggestChild)
		base := ring(mesh, b.Start, r0, n, 0, uv)
		top := ring(mesh, b.End, r1, n, 1, uv)
		for k := 0; k < n; k++ {
			mesh.AddTriangle(base+uint32(k), base+uint32(k+1), top+uint32(k+1))
			mesh.AddTriangle(base+uint32(k), top+uint32(k+1), top+uint32(k))
		}
	}
}

// ring emits n+1 points, closing the seam with a duplicate so the texture
// wraps once around the cone.
func ring(mesh *terrain.Mesh, frame mgl64.Mat4, radius float64, n int, v float64, uv r2.Rect) uint32 {
	first := uint32(mesh.VertexCount())
	for k := 0; k <= n; k++ {
		theta := 2 * math.Pi * float64(k) / float64(n)
		local := mgl64.Vec4{radius * math.Sin(theta), 0, radius * math.Cos(theta), 1}
		mesh.AddVertex(frame.Mul4x1(local).Vec3(), atlas.Bilerp(uv, float64(k)/float64(n), v))
	}
	return first
}

// EmitFlowers appends the petals of every flower marker to mesh.
func (s *Skeleton) EmitFlowers(mesh *terrain.Mesh, shape Shape, uv r2.Rect) {
	size := shape.FlowerSize
	corners := [4]mgl64.Vec4{
		{0, 0, 0, 1},
		{size / 2, size / 2, size / 4, 1},
		{0, size, size / 2, 1},
		{-size / 2, size / 2, size / 4, 1},
	}
	uvs := [4]mgl64.Vec2{
		atlas.Bilerp(uv, 0.5, 0),
		atlas.Bilerp(uv, 1, 0.5),
		atlas.Bilerp(uv, 0.5, 1),
		atlas.Bilerp(uv, 0, 0.5),
	}
	for _, b := range s.Branches {
		for _, f := range b.Flowers {
			count := petals(f.Kind)
			for p := 0; p < count; p++ {
				frame := f.Transform.Mul4(mgl64.HomogRotate3DY(2 * math.Pi * float64(p) / float64(count)))
				first := uint32(mesh.VertexCount())
				for c, corner := range corners {
					mesh.AddVertex(frame.Mul4x1(corner).Vec3(), uvs[c])
				}
				mesh.AddTriangle(first, first+1, first+2)
				mesh.AddTriangle(first, first+2, first+3)
			}
		}
	}
}
