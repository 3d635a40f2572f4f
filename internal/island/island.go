// Package island runs the full generation pipeline: outline, subdivision,
// borders, biomes, terrain, roads and vegetation.
package island

import (
	"github.com/golang/geo/r2"

	"islandgen/internal/biome"
	"islandgen/internal/border"
	"islandgen/internal/geometry"
	"islandgen/internal/noise"
	"islandgen/internal/terrain"
	"islandgen/internal/vegetation"
)

// Island is the result of one generation run. Regions, Bordered, Biomes and
// Neighbours are parallel slices indexed by region.
type Island struct {
	Seed        uint32
	Outline     geometry.Polygon
	Regions     []geometry.Polygon
	Bordered    []border.BorderedRegion
	Biomes      []biome.Biome
	Neighbours  [][]int
	BorderWidth float64

	// Surfaces holds one entry per built region, in region order. Skipped
	// lists the regions that produced no terrain.
	Surfaces []terrain.Surface
	Skipped  []int

	Terrain terrain.Mesh
	Roads   terrain.Mesh
	Plants  []vegetation.Plant

	field   *noise.Field
	locator *terrain.Locator
}

// HeightAt returns the elevation of the generated surface at (x, y). Points
// outside every mesh fall back to the raw height field.
func (is *Island) HeightAt(x, y float64) float64 {
	if is.locator != nil {
		if h, ok := is.locator.Height(x, y); ok {
			return h
		}
	}
	if is.field == nil {
		return 0
	}
	return is.field.Height(x, y)
}

// Field returns the height field the island was sampled from.
func (is *Island) Field() *noise.Field { return is.field }

// Bounds returns the outline's bounding box.
func (is *Island) Bounds() r2.Rect { return is.Outline.Bounds() }

// Built reports whether region i has a terrain surface.
func (is *Island) Built(i int) bool {
	for _, s := range is.Skipped {
		if s == i {
			return false
		}
	}
	return i >= 0 && i < len(is.Regions)
}

// PlantsIn returns the plants grown in region i.
func (is *Island) PlantsIn(i int) []vegetation.Plant {
	var out []vegetation.Plant
	for _, p := range is.Plants {
		if p.Region == i {
			out = append(out, p)
		}
	}
	return out
}
