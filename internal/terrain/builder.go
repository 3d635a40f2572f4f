package terrain

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"

	"islandgen/internal/atlas"
	"islandgen/internal/biome"
	"islandgen/internal/geometry"
	"islandgen/internal/triangulation"
)

// omegaCorners is the number of leading vertices that belong to the omega
// quad in every region triangulation.
const omegaCorners = 4

// ErrEmptySurface is returned when a region triangulates to nothing.
var ErrEmptySurface = errors.New("region produced no triangles")

// HeightField samples terrain elevation.
type HeightField interface {
	Height(x, y float64) float64
}

// Textures names the atlas keys used for each surface.
type Textures struct {
	Biomes map[biome.Type]string
	Road   string
}

// DefaultTextures returns the stock texture keys.
func DefaultTextures() Textures {
	return Textures{
		Biomes: map[biome.Type]string{
			biome.Rainforest: "grass.gif",
			biome.Taiga:      "wood.gif",
			biome.Shrubland:  "wood.gif",
			biome.Barren:     "rock.gif",
		},
		Road: "water.gif",
	}
}

// Surface is the triangulated terrain of one region.
type Surface struct {
	Region int
	Biome  biome.Type
	// Contour is the ring that bounds the surface, in order. The road
	// triangulation uses it as a hole.
	Contour geometry.Polygon
	Mesh    Mesh
}

// Builder triangulates regions and roads. It is safe for concurrent use.
type Builder struct {
	field    HeightField
	lookup   atlas.Lookup
	textures Textures
	spacing  r2.Point
	logger   *slog.Logger
	warned   sync.Map
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger routes warnings to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder returns a builder sampling field, texturing through lookup and
// seeding interior grid points every spacing.X units along x and spacing.Y
// along y. A non-positive step on either axis disables the grid.
func NewBuilder(field HeightField, lookup atlas.Lookup, textures Textures, spacing r2.Point, opts ...Option) *Builder {
	if lookup == nil {
		lookup = atlas.Full{}
	}
	b := &Builder{
		field:    field,
		lookup:   lookup,
		textures: textures,
		spacing:  spacing,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) uvRect(key string) r2.Rect {
	if rect, ok := b.lookup.UVRegion(key); ok {
		return rect
	}
	if _, seen := b.warned.LoadOrStore(key, true); !seen {
		b.logger.Warn("texture missing from atlas", "key", key)
	}
	return r2.Rect{}
}

// Region triangulates poly inside an omega quad three times its bounding
// box, with grid points strictly inside poly as Steiner points.
func (b *Builder) Region(index int, poly geometry.Polygon, kind biome.Type) (Surface, error) {
	if err := poly.Validate(); err != nil {
		return Surface{}, fmt.Errorf("region %d: %w", index, err)
	}
	bounds := poly.Bounds()
	size := bounds.Size()
	lo := bounds.Lo()

	tr, err := b.triangulate(poly)
	if err != nil {
		return Surface{}, fmt.Errorf("triangulate region %d: %w", index, err)
	}

	verts := tr.Vertices()
	rect := b.uvRect(b.textures.Biomes[kind])
	surface := Surface{Region: index, Biome: kind, Contour: poly.Clone()}
	remap := make(map[int]uint32)
	for _, tri := range tr.Triangles() {
		if touchesOmega(tri) || !poly.Contains(centroid(verts, tri)) {
			continue
		}
		var idx [3]uint32
		for k, v := range tri {
			mapped, ok := remap[v]
			if !ok {
				p := verts[v]
				uv := atlas.Bilerp(rect, (p.X-lo.X)/size.X, (p.Y-lo.Y)/size.Y)
				mapped = surface.Mesh.AddVertex(mgl64.Vec3{p.X, b.field.Height(p.X, p.Y), p.Y}, uv)
				remap[v] = mapped
			}
			idx[k] = mapped
		}
		surface.Mesh.AddTriangle(idx[0], idx[1], idx[2])
	}
	if surface.Mesh.Empty() {
		return Surface{}, fmt.Errorf("region %d: %w", index, ErrEmptySurface)
	}
	return surface, nil
}

func (b *Builder) triangulate(poly geometry.Polygon) (*triangulation.Triangulation, error) {
	bounds := poly.Bounds()
	size := bounds.Size()
	lo, hi := bounds.Lo(), bounds.Hi()

	tr := triangulation.New()
	tr.AddBoundaryPoint(lo.Sub(size))
	tr.AddBoundaryPoint(r2.Point{X: hi.X + size.X, Y: lo.Y - size.Y})
	tr.AddBoundaryPoint(hi.Add(size))
	tr.AddBoundaryPoint(r2.Point{X: lo.X - size.X, Y: hi.Y + size.Y})
	tr.AddConstraint(poly)
	for _, p := range b.grid(poly, bounds) {
		tr.AddPoint(p)
	}
	if err := tr.Triangulate(); err != nil {
		return nil, err
	}
	return tr, nil
}

// grid returns lattice points strictly inside poly and clear of its edges.
func (b *Builder) grid(poly geometry.Polygon, bounds r2.Rect) []r2.Point {
	step := b.spacing
	if step.X <= 0 || step.Y <= 0 {
		return nil
	}
	clearance := math.Min(step.X, step.Y) * 0.05
	var out []r2.Point
	for x := math.Ceil(bounds.X.Lo/step.X) * step.X; x < bounds.X.Hi; x += step.X {
		for y := math.Ceil(bounds.Y.Lo/step.Y) * step.Y; y < bounds.Y.Hi; y += step.Y {
			p := r2.Point{X: x, Y: y}
			if poly.Contains(p) && !poly.OnBoundary(p, clearance) {
				out = append(out, p)
			}
		}
	}
	return out
}

func touchesOmega(tri triangulation.Triangle) bool {
	return tri[0] < omegaCorners || tri[1] < omegaCorners || tri[2] < omegaCorners
}

func centroid(verts []r2.Point, tri triangulation.Triangle) r2.Point {
	return verts[tri[0]].Add(verts[tri[1]]).Add(verts[tri[2]]).Mul(1.0 / 3)
}

// Roads triangulates the island outline minus every contour. Region
// vertices become Steiner points so the road centre lines are part of the
// mesh; vertices on the outline are also spliced into the outer ring.
//
// Heights: outline vertices take the lowest height sampled for the mesh,
// vertices on a region edge are flattened to 0, the rest follow the field.
func (b *Builder) Roads(island geometry.Polygon, regions, contours []geometry.Polygon) (Mesh, error) {
	bounds := island.Bounds()
	size := bounds.Size()
	tol := 1e-9 * math.Max(1, math.Hypot(size.X, size.Y))

	var junctions []r2.Point
	seen := make(map[r2.Point]bool)
	for _, r := range regions {
		for _, v := range r {
			if !seen[v] {
				seen[v] = true
				junctions = append(junctions, v)
			}
		}
	}

	tr := triangulation.New()
	for _, p := range geometry.InsertBoundaryPoints(island, junctions, tol) {
		tr.AddBoundaryPoint(p)
	}
	for _, c := range contours {
		tr.AddHole(c)
	}
	for _, p := range junctions {
		if !island.OnBoundary(p, tol) {
			tr.AddPoint(p)
		}
	}
	if err := tr.Triangulate(); err != nil {
		return Mesh{}, fmt.Errorf("triangulate roads: %w", err)
	}

	verts := tr.Vertices()
	tris := tr.Triangles()

	type sample struct {
		rim    bool
		height float64
	}
	samples := make(map[int]sample)
	lowest := math.Inf(1)
	for _, tri := range tris {
		for _, v := range tri {
			if _, ok := samples[v]; ok {
				continue
			}
			p := verts[v]
			h := b.field.Height(p.X, p.Y)
			lowest = math.Min(lowest, h)
			s := sample{rim: island.OnBoundary(p, tol), height: h}
			if !s.rim && onAnyEdge(regions, p, tol) {
				s.height = 0
			}
			samples[v] = s
		}
	}

	rect := b.uvRect(b.textures.Road)
	var mesh Mesh
	remap := make(map[int]uint32)
	for _, tri := range tris {
		var idx [3]uint32
		for k, v := range tri {
			mapped, ok := remap[v]
			if !ok {
				p := verts[v]
				s := samples[v]
				h := s.height
				if s.rim {
					h = lowest
				}
				uv := atlas.Bilerp(rect, (p.X-bounds.X.Lo)/size.X, (p.Y-bounds.Y.Lo)/size.Y)
				mapped = mesh.AddVertex(mgl64.Vec3{p.X, h, p.Y}, uv)
				remap[v] = mapped
			}
			idx[k] = mapped
		}
		mesh.AddTriangle(idx[0], idx[1], idx[2])
	}
	return mesh, nil
}

func onAnyEdge(regions []geometry.Polygon, p r2.Point, tol float64) bool {
	for _, r := range regions {
		if r.OnBoundary(p, tol) {
			return true
		}
	}
	return false
}
