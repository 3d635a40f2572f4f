package island

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"islandgen/internal/config"
	"islandgen/internal/subdivision"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Land.MinorRadius = config.Range{Min: 80, Max: 120}
	cfg.Land.MajorRadius = config.Range{Min: 100, Max: 160}
	cfg.Land.MinVertices = 16
	cfg.Land.MaxVertices = 24
	cfg.Subdivision.Passes[0].Count = config.IntRange{Min: 2, Max: 3}
	cfg.Subdivision.Passes[1].Count = config.IntRange{Min: 2, Max: 3}
	cfg.Border.Width = config.Range{Min: 1, Max: 1.5}
	cfg.Terrain.Resolution = 0.05
	cfg.Terrain.AtlasPath = "assets/atlas.xml"
	cfg.Vegetation.MaxPlantsPerRegion = 4
	return cfg
}

func newGenerator(t *testing.T, cfg *config.Config, opts ...Option) *Generator {
	t.Helper()
	opts = append([]Option{WithAssetRoot("../..")}, opts...)
	g, err := NewGenerator(cfg, opts...)
	require.NoError(t, err)
	return g
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := smallConfig()
	cfg.Seed = 12345

	cfg.Workers = 1
	a, err := newGenerator(t, cfg).Generate(context.Background())
	require.NoError(t, err)

	cfg.Workers = 8
	b, err := newGenerator(t, cfg).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Outline, b.Outline)
	assert.Equal(t, a.Regions, b.Regions)
	assert.Equal(t, a.Biomes, b.Biomes)
	assert.Equal(t, a.Skipped, b.Skipped)
	assert.Equal(t, len(a.Plants), len(b.Plants))
	assert.Equal(t, a.Terrain, b.Terrain)
	assert.Equal(t, a.Roads, b.Roads)
	for i := range a.Plants {
		assert.Equal(t, a.Plants[i].Position, b.Plants[i].Position)
		assert.Equal(t, a.Plants[i].Branches, b.Plants[i].Branches)
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	g := newGenerator(t, smallConfig())
	a, err := g.GenerateSeed(context.Background(), 1)
	require.NoError(t, err)
	b, err := g.GenerateSeed(context.Background(), 2)
	require.NoError(t, err)
	assert.NotEqual(t, a.Outline, b.Outline)
}

func TestGenerateProducesConsistentIsland(t *testing.T) {
	g := newGenerator(t, smallConfig())
	is, err := g.Generate(context.Background())
	require.NoError(t, err)

	n := len(is.Regions)
	require.GreaterOrEqual(t, n, 5)
	assert.Len(t, is.Bordered, n)
	assert.Len(t, is.Biomes, n)
	assert.Len(t, is.Neighbours, n)
	assert.Equal(t, n, len(is.Surfaces)+len(is.Skipped))

	total := 0.0
	for _, r := range is.Regions {
		total += r.Area()
	}
	assert.InEpsilon(t, is.Outline.Area(), total, 1e-4)

	assert.False(t, is.Terrain.Empty())
	assert.False(t, is.Roads.Empty())
	assert.Len(t, is.Terrain.UVs, is.Terrain.VertexCount())
	for _, uv := range is.Roads.UVs {
		// water.gif occupies the lower right quarter of the bundled sheet.
		assert.True(t, uv.X() >= 0.5-1e-9 && uv.Y() >= 0.5-1e-9, "road uv %v", uv)
	}

	for _, p := range is.Plants {
		require.True(t, is.Built(p.Region))
		assert.True(t, is.Regions[p.Region].Contains(r2.Point{X: p.Position.X(), Y: p.Position.Z()}))
	}
}

func TestOutlineAndSingleSplit(t *testing.T) {
	cfg := config.Default()
	cfg.Land.MinorRadius = config.Range{Min: 100, Max: 100}
	cfg.Land.MajorRadius = config.Range{Min: 100, Max: 100}
	cfg.Land.MinVertices = 12
	cfg.Land.MaxVertices = 12
	cfg.Land.AngleJitter = 0.1
	cfg.Subdivision.Passes = []config.PassConfig{{
		Strategies: subdivision.Strategies{
			Polygon: subdivision.GreatestArea,
			Edge:    subdivision.LongestEdges,
			Point:   subdivision.Midpoint,
		},
		Count: config.IntRange{Min: 1, Max: 1},
	}}
	cfg.Border.Width = config.Range{}
	cfg.Vegetation.Enabled = false

	is, err := newGenerator(t, cfg).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, is.Outline.Len())
	assert.InEpsilon(t, math.Pi*100*100, is.Outline.Area(), 0.05)

	require.Len(t, is.Regions, 2)
	assert.GreaterOrEqual(t, is.Regions[0].Len(), 3)
	assert.GreaterOrEqual(t, is.Regions[1].Len(), 3)
	assert.InEpsilon(t, is.Outline.Area(), is.Regions[0].Area()+is.Regions[1].Area(), 1e-9)

	assert.Zero(t, is.BorderWidth)
	assert.True(t, is.Roads.Empty())
	assert.Empty(t, is.Plants)
	assert.Equal(t, []int{1}, is.Neighbours[0])
}

func TestHeightAt(t *testing.T) {
	is, err := newGenerator(t, smallConfig()).Generate(context.Background())
	require.NoError(t, err)

	checked := 0
	for i := 0; i < is.Terrain.TriangleCount(); i += 7 {
		a, b, c := is.Terrain.Triangle(i)
		plan := (b.X()-a.X())*(c.Z()-a.Z()) - (c.X()-a.X())*(b.Z()-a.Z())
		if math.Abs(plan) < 1e-6 {
			continue
		}
		centre := a.Add(b).Add(c).Mul(1.0 / 3)
		assert.InDelta(t, centre.Y(), is.HeightAt(centre.X(), centre.Z()), 1e-6)
		checked++
	}
	assert.Positive(t, checked)

	assert.Equal(t, is.Field().Height(-5000, -5000), is.HeightAt(-5000, -5000))
}

func TestOverflowingBordersSkipRegions(t *testing.T) {
	cfg := config.Default()
	cfg.Land.Kind = config.LandSquare
	cfg.Land.Side = 100
	cfg.Subdivision.Passes = cfg.Subdivision.Passes[:1]
	cfg.Subdivision.Passes[0].Count = config.IntRange{Min: 1, Max: 1}
	cfg.Border.Width = config.Range{Min: 500, Max: 500}
	cfg.Vegetation.Enabled = false

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	is, err := newGenerator(t, cfg, WithLogger(logger)).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, is.Skipped)
	assert.Empty(t, is.Surfaces)
	assert.True(t, is.Terrain.Empty())
	assert.False(t, is.Built(0))
	assert.Contains(t, logs.String(), "skip region")
}

func TestGenerateHonoursCancellation(t *testing.T) {
	cfg := smallConfig()
	cfg.Vegetation.Enabled = false
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newGenerator(t, cfg).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGeneratorRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = -1
	_, err := NewGenerator(cfg)
	assert.ErrorContains(t, err, "workers cannot be negative")
}

func TestNewGeneratorReportsMissingGrammar(t *testing.T) {
	cfg := config.Default()
	cfg.Vegetation.Grammars = map[string]string{"taiga": "does/not/exist.txt"}
	_, err := NewGenerator(cfg)
	assert.ErrorContains(t, err, "load taiga grammar")
}
