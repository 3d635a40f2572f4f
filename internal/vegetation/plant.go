package vegetation

import (
	"errors"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"

	"islandgen/internal/atlas"
	"islandgen/internal/biome"
	"islandgen/internal/geometry"
	"islandgen/internal/lsystem"
	"islandgen/internal/rng"
	"islandgen/internal/terrain"
)

// ErrInvalidPlacement rejects placement settings that cannot produce plants.
var ErrInvalidPlacement = errors.New("area per plant must be positive")

// boundaryTolerance decides when a plant base lies on its region's edge.
const boundaryTolerance = 1e-6

// Placement controls how many plants a region receives and where.
type Placement struct {
	AreaPerPlant       float64
	MinSpacing         float64
	MaxPlantsPerRegion int
	Attempts           int
	SegmentHeight      float64
}

// DefaultPlacement returns the stock placement settings.
func DefaultPlacement() Placement {
	return Placement{
		AreaPerPlant:       2000,
		MinSpacing:         0.5,
		MaxPlantsPerRegion: 64,
		Attempts:           10,
		SegmentHeight:      3.5,
	}
}

// Count returns the number of plants for a region of the given area and
// tree density.
func (p Placement) Count(area, density float64) int {
	n := int(math.Floor(area*density/p.AreaPerPlant)) + 1
	if p.MaxPlantsPerRegion > 0 && n > p.MaxPlantsPerRegion {
		n = p.MaxPlantsPerRegion
	}
	return n
}

// Plant is one grown plant.
type Plant struct {
	Region   int
	Species  string
	Position mgl64.Vec3
	Branches int
	Flowers  int
	Trunk    terrain.Mesh
	Leaves   terrain.Mesh
}

// Species pairs a grammar with a display name.
type Species struct {
	Name    string
	Grammar *lsystem.Grammar
}

// Textures names the atlas keys for trunks and flowers.
type Textures struct {
	Trunk  string
	Flower string
}

// DefaultTextures returns the stock plant texture keys.
func DefaultTextures() Textures {
	return Textures{Trunk: "wood.gif", Flower: "flower.gif"}
}

// Grower places and grows plants. Grammars without stochastic rules are
// expanded once and the result is shared by every plant of that species.
type Grower struct {
	placement Placement
	shape     Shape
	species   map[biome.Type]Species
	expanded  map[biome.Type]string
	field     terrain.HeightField
	trunkUV   r2.Rect
	flowerUV  r2.Rect
	logger    *slog.Logger
}

// Option configures a Grower.
type Option func(*Grower)

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Grower) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithShape overrides the cone and flower dimensions.
func WithShape(shape Shape) Option {
	return func(g *Grower) { g.shape = shape }
}

// NewGrower prepares a grower. seed drives the shared expansion of
// deterministic grammars.
func NewGrower(placement Placement, species map[biome.Type]Species, field terrain.HeightField, lookup atlas.Lookup, textures Textures, seed uint32, opts ...Option) (*Grower, error) {
	if placement.AreaPerPlant <= 0 {
		return nil, ErrInvalidPlacement
	}
	if placement.Attempts <= 0 {
		placement.Attempts = 1
	}
	if lookup == nil {
		lookup = atlas.Full{}
	}
	g := &Grower{
		placement: placement,
		shape:     DefaultShape(),
		species:   species,
		expanded:  make(map[biome.Type]string),
		field:     field,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.trunkUV = g.uvRect(lookup, textures.Trunk)
	g.flowerUV = g.uvRect(lookup, textures.Flower)
	for _, kind := range biome.Types {
		sp, ok := species[kind]
		if !ok || sp.Grammar == nil || sp.Grammar.Stochastic() {
			continue
		}
		g.expanded[kind] = sp.Grammar.Expand(rng.New(seed).Derive(int(kind)))
	}
	return g, nil
}

func (g *Grower) uvRect(lookup atlas.Lookup, key string) r2.Rect {
	rect, ok := lookup.UVRegion(key)
	if !ok {
		g.logger.Warn("texture missing from atlas", "key", key)
	}
	return rect
}

// Region grows the plants of one region. Candidates closer than the
// minimum spacing on either axis to an existing plant are redrawn; a plant
// that finds no free spot is dropped.
func (g *Grower) Region(index int, region geometry.Polygon, b biome.Biome, r *rng.LCG) []Plant {
	sp, ok := g.species[b.Type]
	if !ok || sp.Grammar == nil {
		g.logger.Debug("no species for biome", "region", index, "biome", b.Type)
		return nil
	}
	want := g.placement.Count(region.Area(), b.TreeDensity)
	plants := make([]Plant, 0, want)
	var taken []r2.Point
	for len(plants) < want {
		pt, ok := g.spot(region, taken, r)
		if !ok {
			g.logger.Debug("plant dropped", "region", index, "placed", len(plants), "wanted", want)
			break
		}
		taken = append(taken, pt)
		plants = append(plants, g.grow(index, sp, b.Type, region, pt, r))
	}
	return plants
}

func (g *Grower) spot(region geometry.Polygon, taken []r2.Point, r *rng.LCG) (r2.Point, bool) {
	for attempt := 0; attempt < g.placement.Attempts; attempt++ {
		pt := geometry.RandomPoint(region, r)
		if g.free(pt, taken) {
			return pt, true
		}
	}
	return r2.Point{}, false
}

func (g *Grower) free(pt r2.Point, taken []r2.Point) bool {
	for _, o := range taken {
		if math.Abs(pt.X-o.X) < g.placement.MinSpacing || math.Abs(pt.Y-o.Y) < g.placement.MinSpacing {
			return false
		}
	}
	return true
}

func (g *Grower) grow(index int, sp Species, kind biome.Type, region geometry.Polygon, pt r2.Point, r *rng.LCG) Plant {
	h := 0.0
	if !region.OnBoundary(pt, boundaryTolerance) && g.field != nil {
		h = g.field.Height(pt.X, pt.Y)
	}
	symbols, shared := g.expanded[kind]
	if !shared {
		symbols = sp.Grammar.Expand(r)
	}
	base := mgl64.Translate3D(pt.X, h, pt.Y)
	sk := Interpret(symbols, sp.Grammar.Angle, g.placement.SegmentHeight, base)
	sk.AssignStrahler()

	p := Plant{
		Region:   index,
		Species:  sp.Name,
		Position: mgl64.Vec3{pt.X, h, pt.Y},
		Branches: sk.Grown(),
		Flowers:  sk.FlowerCount(),
	}
	sk.EmitTrunk(&p.Trunk, sp.Grammar.Angle, g.shape, g.trunkUV)
	sk.EmitFlowers(&p.Leaves, g.shape, g.flowerUV)
	return p
}
