package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"islandgen/internal/biome"
	"islandgen/internal/subdivision"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "negative workers",
			mutate:  func(cfg *Config) { cfg.Workers = -1 },
			wantErr: "workers cannot be negative",
		},
		{
			name:    "unknown land kind",
			mutate:  func(cfg *Config) { cfg.Land.Kind = "hexagon" },
			wantErr: `land.kind "hexagon" is not one of "ellipse", "square"`,
		},
		{
			name:    "inverted minor radius",
			mutate:  func(cfg *Config) { cfg.Land.MinorRadius = Range{Min: 10, Max: 5} },
			wantErr: "land.minorRadius must be a positive range",
		},
		{
			name:    "zero major radius",
			mutate:  func(cfg *Config) { cfg.Land.MajorRadius.Min = 0 },
			wantErr: "land.majorRadius must be a positive range",
		},
		{
			name:    "too few vertices",
			mutate:  func(cfg *Config) { cfg.Land.MinVertices = 2 },
			wantErr: "land.minVertices must be at least 3",
		},
		{
			name:    "vertex range inverted",
			mutate:  func(cfg *Config) { cfg.Land.MaxVertices = 10 },
			wantErr: "land.maxVertices must be >= minVertices",
		},
		{
			name:    "jitter out of range",
			mutate:  func(cfg *Config) { cfg.Land.AngleJitter = 1.5 },
			wantErr: "land.angleJitter must be within [0, 1]",
		},
		{
			name: "square without side",
			mutate: func(cfg *Config) {
				cfg.Land.Kind = LandSquare
				cfg.Land.Side = 0
			},
			wantErr: "land.side must be positive",
		},
		{
			name:    "pass count inverted",
			mutate:  func(cfg *Config) { cfg.Subdivision.Passes[1].Count = IntRange{Min: 4, Max: 2} },
			wantErr: "subdivision.passes[1].count must be a non-negative range",
		},
		{
			name:    "negative border",
			mutate:  func(cfg *Config) { cfg.Border.Width.Min = -1 },
			wantErr: "border.width must be a non-negative range",
		},
		{
			name:    "negative octaves",
			mutate:  func(cfg *Config) { cfg.Noise.Octaves = -1 },
			wantErr: "noise.octaves cannot be negative",
		},
		{
			name:    "unknown texture biome",
			mutate:  func(cfg *Config) { cfg.Terrain.Textures["tundra"] = "snow.gif" },
			wantErr: `terrain.textures: unknown biome "tundra"`,
		},
		{
			name:    "zero area per plant",
			mutate:  func(cfg *Config) { cfg.Vegetation.AreaPerPlant = 0 },
			wantErr: "vegetation.areaPerPlant must be positive",
		},
		{
			name:    "zero segment height",
			mutate:  func(cfg *Config) { cfg.Vegetation.SegmentHeight = 0 },
			wantErr: "vegetation segment height and radius unit must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("unexpected error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDisabledVegetationSkipsItsChecks(t *testing.T) {
	cfg := Default()
	cfg.Vegetation.Enabled = false
	cfg.Vegetation.AreaPerPlant = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled vegetation should not be validated: %v", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load default config: %v", err)
	}
	if want := Default(); !reflect.DeepEqual(cfg, want) {
		t.Fatalf("default configuration mismatch:\nwant: %#v\n got: %#v", want, cfg)
	}
}

func TestLoadReadsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "island.json")

	cfg := Default()
	cfg.Seed = 42
	cfg.Border.Width = Range{Min: 1, Max: 2}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("loaded configuration mismatch:\nwant: %#v\n got: %#v", cfg, got)
	}
}

func TestLoadReadsYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "island.yaml")
	doc := `seed: 7
land:
  kind: square
  side: 120
subdivision:
  passes:
    - strategies:
        polygon: greatest-average-edge
        edge: random
        point: near-midpoint
      count:
        min: 3
        max: 3
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if got.Seed != 7 || got.Land.Kind != LandSquare || got.Land.Side != 120 {
		t.Fatalf("yaml values not applied: %+v", got.Land)
	}
	if len(got.Subdivision.Passes) != 1 {
		t.Fatalf("expected a single pass, got %d", len(got.Subdivision.Passes))
	}
	want := subdivision.Strategies{
		Polygon: subdivision.GreatestAverageEdgeLength,
		Edge:    subdivision.RandomEdges,
		Point:   subdivision.NearMidpoint,
	}
	if got.Subdivision.Passes[0].Strategies != want {
		t.Fatalf("strategies mismatch: got %+v want %+v", got.Subdivision.Passes[0].Strategies, want)
	}
	if got.Noise != Default().Noise {
		t.Fatalf("unset sections should keep defaults: %+v", got.Noise)
	}
}

func TestLoadInvalidConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "island.yml")
	if err := os.WriteFile(path, []byte("workers: -3\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected load to fail")
	}
	if !strings.Contains(err.Error(), "validate config: workers cannot be negative") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "island.json")
	doc := `{"subdivision":{"passes":[{"strategies":{"polygon":"smallest"}}]}}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected a parse error, got %v", err)
	}
}

func TestBiomeMap(t *testing.T) {
	got := BiomeMap(map[string]string{"taiga": "a.txt", "swamp": "b.txt"})
	want := map[biome.Type]string{biome.Taiga: "a.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("biome map mismatch: got %v want %v", got, want)
	}
}

func TestBundledConfigMatchesDefaults(t *testing.T) {
	got, err := Load(filepath.Join("..", "..", "configs", "island.yaml"))
	if err != nil {
		t.Fatalf("load bundled config: %v", err)
	}
	want := Default()
	want.Terrain.AtlasPath = "assets/atlas.xml"
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("bundled configuration drifted from defaults:\nwant: %#v\n got: %#v", want, got)
	}
}
