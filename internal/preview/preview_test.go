package preview

import (
	"context"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"islandgen/internal/config"
	"islandgen/internal/island"
)

func generate(t *testing.T) *island.Island {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = 3
	cfg.Land.Kind = config.LandSquare
	cfg.Land.Side = 100
	cfg.Terrain.Resolution = 0.05
	cfg.Vegetation.Enabled = false

	g, err := island.NewGenerator(cfg)
	require.NoError(t, err)
	is, err := g.Generate(context.Background())
	require.NoError(t, err)
	return is
}

func TestRenderDrawsIslandOverSea(t *testing.T) {
	is := generate(t)
	pal := DefaultPalette()
	img, err := Render(is, 128, pal)
	require.NoError(t, err)

	sea, _ := parseHexColor(pal.Sea)
	assert.Equal(t, sea, img.NRGBAAt(1, 1))
	assert.NotEqual(t, sea, img.NRGBAAt(64, 64))
}

func TestSaveWritesPNG(t *testing.T) {
	is := generate(t)
	dir := filepath.Join(t.TempDir(), "previews")

	path, err := Save(is, dir, 96, DefaultPalette())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "island_3.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 96, img.Bounds().Dx())
	assert.Equal(t, 96, img.Bounds().Dy())
}

func TestRenderRejectsBadInput(t *testing.T) {
	_, err := Render(nil, 128, DefaultPalette())
	assert.Error(t, err)

	_, err = Render(&island.Island{}, 4, DefaultPalette())
	assert.ErrorContains(t, err, "invalid preview size")

	_, err = Save(&island.Island{}, "", 64, DefaultPalette())
	assert.ErrorContains(t, err, "output directory is empty")
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#ff8000", color.NRGBA{R: 255, G: 128, A: 255}, true},
		{" 0a0b0c ", color.NRGBA{R: 10, G: 11, B: 12, A: 255}, true},
		{"#fff", color.NRGBA{}, false},
		{"#gg0000", color.NRGBA{}, false},
	}
	for _, tt := range tests {
		got, ok := parseHexColor(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestApplyLightingClamps(t *testing.T) {
	base := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	assert.Equal(t, base, applyLighting(base, 2))
	assert.Equal(t, color.NRGBA{A: 255}, applyLighting(base, -1))
	assert.Equal(t, color.NRGBA{R: 100, G: 50, B: 25, A: 255}, applyLighting(base, 0.5))
}

func TestUnprojectInvertsProjection(t *testing.T) {
	is := generate(t)
	bounds := is.Bounds()
	proj := newProjection(bounds, 200)

	c := bounds.Center()
	px := proj.point(c.X, c.Y)
	x, y := Unproject(bounds, 200, px.X, px.Y)
	assert.InDelta(t, c.X, x, 1/proj.scale)
	assert.InDelta(t, c.Y, y, 1/proj.scale)
}
