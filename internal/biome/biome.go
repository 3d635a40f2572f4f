// Package biome classifies regions by their distance from the island centre.
package biome

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"islandgen/internal/geometry"
)

// Type is the discrete biome classification.
type Type int

const (
	Rainforest Type = iota
	Taiga
	Shrubland
	Barren
)

// Types lists every biome in threshold order.
var Types = []Type{Rainforest, Taiga, Shrubland, Barren}

func (t Type) String() string {
	switch t {
	case Rainforest:
		return "rainforest"
	case Taiga:
		return "taiga"
	case Shrubland:
		return "shrubland"
	case Barren:
		return "barren"
	default:
		return fmt.Sprintf("biome(%d)", int(t))
	}
}

// MarshalText encodes the biome name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a biome name.
func (t *Type) UnmarshalText(b []byte) error {
	for _, candidate := range Types {
		if candidate.String() == string(b) {
			*t = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown biome %q", string(b))
}

// Upper height bounds (exclusive) of the first three biomes; Barren takes
// everything above the last.
const (
	rainforestCeiling = 0.5
	taigaCeiling      = 0.6
	shrublandCeiling  = 0.75
)

// Classify maps a normalized height to its biome.
func Classify(height float64) Type {
	switch {
	case height < rainforestCeiling:
		return Rainforest
	case height < taigaCeiling:
		return Taiga
	case height < shrublandCeiling:
		return Shrubland
	default:
		return Barren
	}
}

// TreeDensity is the fixed plant density of a biome.
func (t Type) TreeDensity() float64 {
	switch t {
	case Shrubland:
		return 0.05
	case Taiga:
		return 0.2
	case Rainforest:
		return 0.8
	default:
		return 0
	}
}

// Biome is the immutable classification record of one region.
type Biome struct {
	Type            Type
	AverageHeight   float64
	AverageMoisture float64
	TreeDensity     float64
}

// ErrEmptyIsland rejects outlines with no extent.
var ErrEmptyIsland = errors.New("island has no extent")

// Classifier caches the island centroid and its span.
type Classifier struct {
	centroid r2.Point
	landSpan float64
}

// NewClassifier measures island once. The span is the largest distance from
// the centroid to any outline vertex.
func NewClassifier(island geometry.Polygon) (*Classifier, error) {
	c := island.Centroid()
	span := 0.0
	for _, v := range island {
		span = math.Max(span, v.Sub(c).Norm())
	}
	if span == 0 {
		return nil, ErrEmptyIsland
	}
	return &Classifier{centroid: c, landSpan: span}, nil
}

// Centroid of the island.
func (c *Classifier) Centroid() r2.Point { return c.centroid }

// LandSpan is the cached island extent.
func (c *Classifier) LandSpan() float64 { return c.landSpan }

// Height returns the normalized height at pt: 1 at the island centre
// falling linearly to 0 at landSpan, clamped to [0, 1].
func (c *Classifier) Height(pt r2.Point) float64 {
	distance := c.landSpan - pt.Sub(c.centroid).Norm()
	return math.Max(0, math.Min(1, distance/c.landSpan))
}

// Classify builds the biome record for region.
func (c *Classifier) Classify(region geometry.Polygon) Biome {
	h := c.Height(region.Centroid())
	t := Classify(h)
	return Biome{
		Type:            t,
		AverageHeight:   h,
		AverageMoisture: h,
		TreeDensity:     t.TreeDensity(),
	}
}

// Distribute classifies every region, preserving order.
func (c *Classifier) Distribute(regions []geometry.Polygon) []Biome {
	out := make([]Biome, len(regions))
	for i, r := range regions {
		out[i] = c.Classify(r)
	}
	return out
}
