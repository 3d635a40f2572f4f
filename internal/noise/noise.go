// Package noise implements the terrain height field: multi-octave value
// noise over a hashed integer lattice.
package noise

import (
	"math"
)

// Params configures a Field.
type Params struct {
	Persistence float64
	Frequency   float64
	Amplitude   float64
	Octaves     int
	Seed        int
	// Scale divides world coordinates before sampling; values <= 0 mean 1.
	Scale float64
}

// Field is a pure, deterministic height function. It holds no mutable
// state and is safe for concurrent use.
type Field struct {
	params Params
	offset float64
	scale  float64
}

// New prepares a field. The seed is folded into a coordinate offset.
func New(p Params) *Field {
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}
	s := float64(p.Seed)
	return &Field{params: p, offset: 2 + s*s, scale: scale}
}

// Params returns the configuration the field was built with.
func (f *Field) Params() Params { return f.params }

// Height samples the field at world coordinates.
func (f *Field) Height(x, y float64) float64 {
	return f.Total(x/f.scale, y/f.scale)
}

// Total sums every octave at (x, y) in noise space.
func (f *Field) Total(x, y float64) float64 {
	total := 0.0
	frequency := f.params.Frequency
	amplitude := f.params.Amplitude
	for i := 0; i < f.params.Octaves; i++ {
		total += Value(x*frequency+f.offset, y*frequency+f.offset) * amplitude
		amplitude *= f.params.Persistence
		frequency *= 2
	}
	return total
}

// Value interpolates smoothed lattice noise at (x, y).
func Value(x, y float64) float64 {
	fx := math.Floor(x)
	fy := math.Floor(y)
	ix := int32(fx)
	iy := int32(fy)
	tx := smooth(x - fx)
	ty := smooth(y - fy)

	v00 := smoothed(ix, iy)
	v10 := smoothed(ix+1, iy)
	v01 := smoothed(ix, iy+1)
	v11 := smoothed(ix+1, iy+1)

	return lerp(lerp(v00, v10, tx), lerp(v01, v11, tx), ty)
}

// smoothed blends a lattice value with its eight neighbours.
func smoothed(x, y int32) float64 {
	corners := Lattice(x-1, y-1) + Lattice(x+1, y-1) + Lattice(x-1, y+1) + Lattice(x+1, y+1)
	sides := Lattice(x-1, y) + Lattice(x+1, y) + Lattice(x, y-1) + Lattice(x, y+1)
	return corners/16 + sides/8 + Lattice(x, y)/4
}

// Lattice hashes integer coordinates into (-1, 1].
func Lattice(x, y int32) float64 {
	n := x + y*57
	n = (n << 13) ^ n
	t := (n*(n*n*15731+789221) + 1376312589) & 0x7fffffff
	return 1 - float64(t)/1073741824.0
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
