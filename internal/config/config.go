// Package config holds the tunable parameters of the island generator.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"islandgen/internal/biome"
	"islandgen/internal/subdivision"
)

// Config captures every stage of the pipeline.
type Config struct {
	Seed        uint32            `json:"seed" yaml:"seed"`
	Workers     int               `json:"workers" yaml:"workers"` // concurrent region jobs, 0 means one per CPU
	Land        LandConfig        `json:"land" yaml:"land"`
	Subdivision SubdivisionConfig `json:"subdivision" yaml:"subdivision"`
	Border      BorderConfig      `json:"border" yaml:"border"`
	Noise       NoiseConfig       `json:"noise" yaml:"noise"`
	Terrain     TerrainConfig     `json:"terrain" yaml:"terrain"`
	Vegetation  VegetationConfig  `json:"vegetation" yaml:"vegetation"`
}

// Range is a half open interval [Min, Max).
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// IntRange is a closed interval [Min, Max].
type IntRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

const (
	LandEllipse = "ellipse"
	LandSquare  = "square"
)

type LandConfig struct {
	Kind        string  `json:"kind" yaml:"kind"` // "ellipse" or "square"
	MinorRadius Range   `json:"minorRadius" yaml:"minorRadius"`
	MajorRadius Range   `json:"majorRadius" yaml:"majorRadius"`
	MinVertices int     `json:"minVertices" yaml:"minVertices"`
	MaxVertices int     `json:"maxVertices" yaml:"maxVertices"`
	AngleJitter float64 `json:"angleJitter" yaml:"angleJitter"`
	Side        float64 `json:"side" yaml:"side"` // square islands only
}

type SubdivisionConfig struct {
	Passes []PassConfig `json:"passes" yaml:"passes"`
}

// PassConfig runs Count splits, drawn once per pass, with one strategy set.
type PassConfig struct {
	Strategies subdivision.Strategies `json:"strategies" yaml:"strategies"`
	Count      IntRange               `json:"count" yaml:"count"`
}

type BorderConfig struct {
	Width Range `json:"width" yaml:"width"` // drawn once per island
}

type NoiseConfig struct {
	Persistence float64 `json:"persistence" yaml:"persistence"`
	Frequency   float64 `json:"frequency" yaml:"frequency"`
	Amplitude   float64 `json:"amplitude" yaml:"amplitude"`
	Octaves     int     `json:"octaves" yaml:"octaves"`
	Seed        int     `json:"seed" yaml:"seed"`
	Scale       float64 `json:"scale" yaml:"scale"`
}

type TerrainConfig struct {
	// Resolution is the grid spacing as a fraction of the island's larger
	// bounding dimension.
	Resolution float64           `json:"resolution" yaml:"resolution"`
	AtlasPath  string            `json:"atlasPath" yaml:"atlasPath"`
	Textures   map[string]string `json:"textures" yaml:"textures"` // biome name to atlas key
	Road       string            `json:"road" yaml:"road"`
}

type VegetationConfig struct {
	Enabled            bool              `json:"enabled" yaml:"enabled"`
	AreaPerPlant       float64           `json:"areaPerPlant" yaml:"areaPerPlant"`
	MinSpacing         float64           `json:"minSpacing" yaml:"minSpacing"`
	MaxPlantsPerRegion int               `json:"maxPlantsPerRegion" yaml:"maxPlantsPerRegion"`
	Attempts           int               `json:"attempts" yaml:"attempts"`
	SegmentHeight      float64           `json:"segmentHeight" yaml:"segmentHeight"`
	RadiusUnit         float64           `json:"radiusUnit" yaml:"radiusUnit"`
	Grammars           map[string]string `json:"grammars" yaml:"grammars"` // biome name to rule file
	Trunk              string            `json:"trunk" yaml:"trunk"`
	Flower             string            `json:"flower" yaml:"flower"`
}

// Load reads configuration from a JSON or YAML file; the format follows the
// file extension. An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Seed: 1,
		Land: LandConfig{
			Kind:        LandEllipse,
			MinorRadius: Range{Min: 150, Max: 700},
			MajorRadius: Range{Min: 150, Max: 700},
			MinVertices: 60,
			MaxVertices: 120,
			AngleJitter: 1,
			Side:        500,
		},
		Subdivision: SubdivisionConfig{
			Passes: []PassConfig{
				{
					Strategies: subdivision.Strategies{
						Polygon: subdivision.GreatestArea,
						Edge:    subdivision.LongestEdges,
						Point:   subdivision.Midpoint,
					},
					Count: IntRange{Min: 5, Max: 10},
				},
				{
					Strategies: subdivision.Strategies{
						Polygon: subdivision.RandomPolygon,
						Edge:    subdivision.LongestEdges,
						Point:   subdivision.NearMidpoint,
					},
					Count: IntRange{Min: 5, Max: 10},
				},
			},
		},
		Border: BorderConfig{Width: Range{Min: 0, Max: 1.5}},
		Noise: NoiseConfig{
			Persistence: 0.6,
			Frequency:   0.1,
			Amplitude:   20,
			Octaves:     3,
			Seed:        1,
			Scale:       5,
		},
		Terrain: TerrainConfig{
			Resolution: 0.01,
			Textures: map[string]string{
				biome.Rainforest.String(): "grass.gif",
				biome.Taiga.String():      "wood.gif",
				biome.Shrubland.String():  "wood.gif",
				biome.Barren.String():     "rock.gif",
			},
			Road: "water.gif",
		},
		Vegetation: VegetationConfig{
			Enabled:            true,
			AreaPerPlant:       2000,
			MinSpacing:         0.5,
			MaxPlantsPerRegion: 64,
			Attempts:           10,
			SegmentHeight:      3.5,
			RadiusUnit:         0.25,
			Grammars: map[string]string{
				biome.Barren.String():     "assets/grammars/bush.txt",
				biome.Shrubland.String():  "assets/grammars/branch-tree.txt",
				biome.Taiga.String():      "assets/grammars/leaf-tree.txt",
				biome.Rainforest.String(): "assets/grammars/fern.txt",
			},
			Trunk:  "wood.gif",
			Flower: "flower.gif",
		},
	}
}

func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}
	switch c.Land.Kind {
	case LandEllipse:
		if c.Land.MinorRadius.Min <= 0 || c.Land.MinorRadius.Max < c.Land.MinorRadius.Min {
			return errors.New("land.minorRadius must be a positive range")
		}
		if c.Land.MajorRadius.Min <= 0 || c.Land.MajorRadius.Max < c.Land.MajorRadius.Min {
			return errors.New("land.majorRadius must be a positive range")
		}
		if c.Land.MinVertices < 3 {
			return errors.New("land.minVertices must be at least 3")
		}
		if c.Land.MaxVertices < c.Land.MinVertices {
			return errors.New("land.maxVertices must be >= minVertices")
		}
		if c.Land.AngleJitter < 0 || c.Land.AngleJitter > 1 {
			return errors.New("land.angleJitter must be within [0, 1]")
		}
	case LandSquare:
		if c.Land.Side <= 0 {
			return errors.New("land.side must be positive")
		}
	default:
		return fmt.Errorf("land.kind %q is not one of %q, %q", c.Land.Kind, LandEllipse, LandSquare)
	}
	for i, pass := range c.Subdivision.Passes {
		if pass.Count.Min < 0 || pass.Count.Max < pass.Count.Min {
			return fmt.Errorf("subdivision.passes[%d].count must be a non-negative range", i)
		}
	}
	if c.Border.Width.Min < 0 || c.Border.Width.Max < c.Border.Width.Min {
		return errors.New("border.width must be a non-negative range")
	}
	if c.Noise.Octaves < 0 {
		return errors.New("noise.octaves cannot be negative")
	}
	if c.Noise.Scale < 0 {
		return errors.New("noise.scale cannot be negative")
	}
	if c.Terrain.Resolution < 0 {
		return errors.New("terrain.resolution cannot be negative")
	}
	if err := checkBiomeKeys("terrain.textures", c.Terrain.Textures); err != nil {
		return err
	}
	if c.Vegetation.Enabled {
		if c.Vegetation.AreaPerPlant <= 0 {
			return errors.New("vegetation.areaPerPlant must be positive")
		}
		if c.Vegetation.MinSpacing < 0 {
			return errors.New("vegetation.minSpacing cannot be negative")
		}
		if c.Vegetation.MaxPlantsPerRegion < 0 {
			return errors.New("vegetation.maxPlantsPerRegion cannot be negative")
		}
		if c.Vegetation.SegmentHeight <= 0 || c.Vegetation.RadiusUnit <= 0 {
			return errors.New("vegetation segment height and radius unit must be positive")
		}
		if err := checkBiomeKeys("vegetation.grammars", c.Vegetation.Grammars); err != nil {
			return err
		}
	}
	return nil
}

func checkBiomeKeys(field string, m map[string]string) error {
	for name := range m {
		var t biome.Type
		if err := t.UnmarshalText([]byte(name)); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	return nil
}

// BiomeMap resolves biome names to biome types. Unknown names are dropped;
// Validate reports them.
func BiomeMap(m map[string]string) map[biome.Type]string {
	out := make(map[biome.Type]string, len(m))
	for name, v := range m {
		var t biome.Type
		if err := t.UnmarshalText([]byte(name)); err == nil {
			out[t] = v
		}
	}
	return out
}
