// Package preview renders generated islands as top-down PNG images.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"

	"islandgen/internal/biome"
	"islandgen/internal/island"
	"islandgen/internal/terrain"
)

const (
	previewMargin     = 8
	previewShadeFloor = 0.55
	previewPlantSize  = 1
)

// Palette holds hex colours for every layer of the preview.
type Palette struct {
	Sea    string
	Road   string
	Plant  string
	Biomes map[biome.Type]string
}

// DefaultPalette returns the stock preview colours.
func DefaultPalette() Palette {
	return Palette{
		Sea:   "#1b3b5a",
		Road:  "#c2b280",
		Plant: "#0b3d0b",
		Biomes: map[biome.Type]string{
			biome.Rainforest: "#2e8b3a",
			biome.Taiga:      "#4f7942",
			biome.Shrubland:  "#9a8f4a",
			biome.Barren:     "#8c8c8c",
		},
	}
}

// Render draws is into a size x size image: roads first, then the terrain
// of every built region tinted by biome and shaded by height, then plants.
func Render(is *island.Island, size int, pal Palette) (*image.NRGBA, error) {
	if is == nil {
		return nil, fmt.Errorf("island is nil")
	}
	if size <= 2*previewMargin {
		return nil, fmt.Errorf("invalid preview size: %d", size)
	}

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{resolveColor(pal.Sea)}, image.Point{}, draw.Src)

	proj := newProjection(is.Bounds(), size)
	lo, hi := heightRange(&is.Terrain, &is.Roads)
	shade := func(h float64) float64 {
		if hi <= lo {
			return 1
		}
		return previewShadeFloor + (1-previewShadeFloor)*(h-lo)/(hi-lo)
	}

	renderMesh(img, proj, &is.Roads, resolveColor(pal.Road), shade)
	for _, s := range is.Surfaces {
		renderMesh(img, proj, &s.Mesh, resolveColor(pal.Biomes[s.Biome]), shade)
	}

	plant := resolveColor(pal.Plant)
	for _, p := range is.Plants {
		c := proj.point(p.Position.X(), p.Position.Z())
		fillPolygon(img, []image.Point{
			{X: c.X - previewPlantSize, Y: c.Y - previewPlantSize},
			{X: c.X + previewPlantSize + 1, Y: c.Y - previewPlantSize},
			{X: c.X + previewPlantSize + 1, Y: c.Y + previewPlantSize + 1},
			{X: c.X - previewPlantSize, Y: c.Y + previewPlantSize + 1},
		}, plant)
	}
	return img, nil
}

// Save renders is and writes it to outputDir as island_<seed>.png,
// returning the file path.
func Save(is *island.Island, outputDir string, size int, pal Palette) (string, error) {
	img, err := Render(is, size, pal)
	if err != nil {
		return "", err
	}
	if err := ensurePreviewDir(outputDir); err != nil {
		return "", err
	}

	path := filepath.Join(outputDir, fmt.Sprintf("island_%d.png", is.Seed))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}
	return path, nil
}

// projection maps island coordinates to pixels, y growing downwards.
type projection struct {
	origin r2.Point
	scale  float64
	size   int
}

func newProjection(bounds r2.Rect, size int) projection {
	extent := math.Max(bounds.X.Length(), bounds.Y.Length())
	scale := 1.0
	if extent > 0 {
		scale = float64(size-2*previewMargin) / extent
	}
	return projection{origin: bounds.Lo(), scale: scale, size: size}
}

func (p projection) point(x, y float64) image.Point {
	px := previewMargin + (x-p.origin.X)*p.scale
	py := float64(p.size) - previewMargin - (y-p.origin.Y)*p.scale
	return image.Point{X: int(math.Round(px)), Y: int(math.Round(py))}
}

// Unproject maps pixel (px, py) of a size x size preview of bounds back to
// island coordinates.
func Unproject(bounds r2.Rect, size, px, py int) (float64, float64) {
	p := newProjection(bounds, size)
	x := p.origin.X + float64(px-previewMargin)/p.scale
	y := p.origin.Y + float64(size-previewMargin-py)/p.scale
	return x, y
}

func heightRange(meshes ...*terrain.Mesh) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, m := range meshes {
		for _, p := range m.Positions {
			lo = math.Min(lo, p.Y())
			hi = math.Max(hi, p.Y())
		}
	}
	return lo, hi
}

func renderMesh(img *image.NRGBA, proj projection, m *terrain.Mesh, base color.NRGBA, shade func(float64) float64) {
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		h := (a.Y() + b.Y() + c.Y()) / 3
		fillPolygon(img, []image.Point{plan(proj, a), plan(proj, b), plan(proj, c)}, applyLighting(base, shade(h)))
	}
}

func plan(proj projection, v mgl64.Vec3) image.Point {
	return proj.point(v.X(), v.Z())
}

func resolveColor(value string) color.NRGBA {
	if col, ok := parseHexColor(value); ok {
		return col
	}
	return color.NRGBA{R: 128, G: 128, B: 128, A: 255}
}

func parseHexColor(value string) (color.NRGBA, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(trimmed) != 6 {
		return color.NRGBA{}, false
	}
	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseUint(trimmed[2*i:2*i+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, false
		}
		rgb[i] = uint8(v)
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, true
}

func applyLighting(base color.NRGBA, factor float64) color.NRGBA {
	factor = math.Max(0, math.Min(1, factor))
	return color.NRGBA{
		R: uint8(math.Round(float64(base.R) * factor)),
		G: uint8(math.Round(float64(base.G) * factor)),
		B: uint8(math.Round(float64(base.B) * factor)),
		A: 255,
	}
}

// fillPolygon scanline fills pts, clipped to the image.
func fillPolygon(img *image.NRGBA, pts []image.Point, col color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	bounds := img.Bounds()
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	minY = max(minY, bounds.Min.Y)
	maxY = min(maxY, bounds.Max.Y-1)

	xs := make([]int, 0, len(pts))
	for y := minY; y <= maxY; y++ {
		xs = xs[:0]
		for i := range pts {
			j := (i + 1) % len(pts)
			x1, y1 := pts[i].X, pts[i].Y
			x2, y2 := pts[j].X, pts[j].Y
			if y1 == y2 || y < min(y1, y2) || y >= max(y1, y2) {
				continue
			}
			xs = append(xs, x1+(y-y1)*(x2-x1)/(y2-y1))
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			xStart := max(xs[i], bounds.Min.X)
			xEnd := min(xs[i+1], bounds.Max.X-1)
			for x := xStart; x <= xEnd; x++ {
				img.SetNRGBA(x, y, col)
			}
		}
	}
}

func ensurePreviewDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("output directory is empty")
	}
	return os.MkdirAll(dir, 0o755)
}
