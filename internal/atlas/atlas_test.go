package atlas

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sheet = `<?xml version="1.0" encoding="UTF-8"?>
<TextureAtlas imagePath="jungle.png" width="512" height="256">
	<sprite n="grass.gif" x="0" y="0" w="256" h="128"/>
	<sprite n="rock.gif" x="256" y="128" w="256" h="128"/>
</TextureAtlas>`

func TestParse(t *testing.T) {
	a, err := Parse(strings.NewReader(sheet))
	require.NoError(t, err)
	assert.Equal(t, "jungle.png", a.ImagePath)
	assert.Equal(t, []string{"grass.gif", "rock.gif"}, a.Names())

	grass, ok := a.UVRegion("grass.gif")
	require.True(t, ok)
	assert.Equal(t, r2.Point{X: 0, Y: 0}, grass.Lo())
	assert.Equal(t, r2.Point{X: 0.5, Y: 0.5}, grass.Hi())

	rock, ok := a.UVRegion("rock.gif")
	require.True(t, ok)
	assert.Equal(t, r2.Point{X: 1, Y: 1}, rock.Hi())

	_, ok = a.UVRegion("water.gif")
	assert.False(t, ok)
}

func TestParseRejectsBadSheets(t *testing.T) {
	_, err := Parse(strings.NewReader(`<TextureAtlas imagePath="x" width="0" height="1"></TextureAtlas>`))
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = Parse(strings.NewReader(`<nope`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.xml")
	require.NoError(t, os.WriteFile(path, []byte(sheet), 0o644))
	a, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, a.Names(), 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestBilerp(t *testing.T) {
	rect := r2.RectFromPoints(r2.Point{X: 0.5, Y: 0.25}, r2.Point{X: 1, Y: 0.75})
	assert.Equal(t, mgl64.Vec2{0.75, 0.5}, Bilerp(rect, 0.5, 0.5))
	assert.Equal(t, mgl64.Vec2{0.5, 0.25}, Bilerp(rect, 0, 0))

	full, ok := Full{}.UVRegion("anything")
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec2{0.2, 0.4}, Bilerp(full, 0.2, 0.4))
}

func TestBundledAtlasCoversStockTextures(t *testing.T) {
	a, err := Load(filepath.Join("..", "..", "assets", "atlas.xml"))
	require.NoError(t, err)
	assert.Equal(t, "atlas.gif", a.ImagePath)
	for _, key := range []string{"grass.gif", "rock.gif", "wood.gif", "water.gif", "flower.gif"} {
		rect, ok := a.UVRegion(key)
		require.True(t, ok, key)
		assert.True(t, rect.X.Lo >= 0 && rect.X.Hi <= 1 && rect.Y.Lo >= 0 && rect.Y.Hi <= 1, key)
	}
}
