package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultParams() Params {
	return Params{Persistence: 0.6, Frequency: 0.1, Amplitude: 20, Octaves: 3, Seed: 1, Scale: 5}
}

func TestLatticeIsDeterministicAndBounded(t *testing.T) {
	for x := int32(-50); x < 50; x++ {
		for y := int32(-50); y < 50; y++ {
			v := Lattice(x, y)
			require.Equal(t, v, Lattice(x, y))
			require.Greater(t, v, -1.0)
			require.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestLatticeKnownValue(t *testing.T) {
	// n = 0 hashes to 1376312589.
	assert.InDelta(t, 1-1376312589.0/1073741824.0, Lattice(0, 0), 1e-15)
}

func TestValueMatchesSmoothedLatticeAtIntegers(t *testing.T) {
	for _, p := range [][2]int32{{0, 0}, {3, -7}, {-12, 40}} {
		assert.InDelta(t, smoothed(p[0], p[1]), Value(float64(p[0]), float64(p[1])), 1e-12)
	}
}

func TestValueIsContinuous(t *testing.T) {
	for _, x := range []float64{-3, -1, 0, 1, 2.999} {
		left := Value(x-1e-9, 0.37)
		right := Value(x+1e-9, 0.37)
		assert.InDelta(t, left, right, 1e-6, "x=%v", x)
	}
}

func TestHeightIsDeterministicAndBounded(t *testing.T) {
	a := New(defaultParams())
	b := New(defaultParams())
	limit := 20 * (1 + 0.6 + 0.36)
	for i := 0; i < 500; i++ {
		x := float64(i) * 3.7
		y := float64(i) * 1.3
		h := a.Height(x, y)
		require.Equal(t, h, b.Height(x, y))
		require.False(t, math.IsNaN(h))
		require.LessOrEqual(t, math.Abs(h), limit)
	}
}

func TestSeedChangesField(t *testing.T) {
	p := defaultParams()
	a := New(p)
	p.Seed = 7
	b := New(p)
	differ := false
	for i := 0; i < 20; i++ {
		if a.Height(float64(i)*11, float64(i)*5) != b.Height(float64(i)*11, float64(i)*5) {
			differ = true
			break
		}
	}
	assert.True(t, differ)
}

func TestZeroOctavesIsFlat(t *testing.T) {
	p := defaultParams()
	p.Octaves = 0
	assert.Equal(t, 0.0, New(p).Height(12, 34))
}

func TestScaleDividesCoordinates(t *testing.T) {
	p := defaultParams()
	scaled := New(p)
	p.Scale = 1
	unit := New(p)
	assert.Equal(t, unit.Height(2, 3), scaled.Height(10, 15))
}
