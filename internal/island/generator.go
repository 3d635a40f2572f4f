package island

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"islandgen/internal/atlas"
	"islandgen/internal/biome"
	"islandgen/internal/border"
	"islandgen/internal/config"
	"islandgen/internal/geometry"
	"islandgen/internal/land"
	"islandgen/internal/lsystem"
	"islandgen/internal/noise"
	"islandgen/internal/rng"
	"islandgen/internal/subdivision"
	"islandgen/internal/terrain"
	"islandgen/internal/vegetation"
)

// Generator builds islands from a configuration. It holds no per-run state
// and may be reused.
type Generator struct {
	cfg      config.Config
	lookup   atlas.Lookup
	grammars map[biome.Type]*lsystem.Grammar
	root     string
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger routes pipeline logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithAtlas supplies the texture lookup instead of loading the configured
// atlas file.
func WithAtlas(lookup atlas.Lookup) Option {
	return func(g *Generator) { g.lookup = lookup }
}

// WithGrammars supplies parsed grammars instead of loading rule files.
func WithGrammars(grammars map[biome.Type]*lsystem.Grammar) Option {
	return func(g *Generator) { g.grammars = grammars }
}

// WithAssetRoot resolves relative atlas and grammar paths against dir.
func WithAssetRoot(dir string) Option {
	return func(g *Generator) { g.root = dir }
}

// NewGenerator validates cfg and loads the atlas and grammar files it names.
func NewGenerator(cfg *config.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	g := &Generator{cfg: *cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}

	if g.lookup == nil {
		if cfg.Terrain.AtlasPath == "" {
			g.lookup = atlas.Full{}
		} else {
			a, err := atlas.Load(g.resolve(cfg.Terrain.AtlasPath))
			if err != nil {
				return nil, fmt.Errorf("load atlas: %w", err)
			}
			g.lookup = a
		}
	}

	if g.grammars == nil && cfg.Vegetation.Enabled {
		g.grammars = make(map[biome.Type]*lsystem.Grammar)
		for kind, path := range config.BiomeMap(cfg.Vegetation.Grammars) {
			gr, err := lsystem.Load(g.resolve(path))
			if err != nil {
				return nil, fmt.Errorf("load %s grammar: %w", kind, err)
			}
			g.grammars[kind] = gr
		}
	}
	return g, nil
}

func (g *Generator) resolve(path string) string {
	if g.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(g.root, path)
}

// Config returns a copy of the generator's configuration.
func (g *Generator) Config() config.Config { return g.cfg }

// Generate runs the pipeline with the configured seed.
func (g *Generator) Generate(ctx context.Context) (*Island, error) {
	return g.GenerateSeed(ctx, g.cfg.Seed)
}

// GenerateSeed runs the pipeline with seed. Identical seeds and
// configurations produce identical islands. Regions are built concurrently,
// each with its own random source derived from the seed and region index.
func (g *Generator) GenerateSeed(ctx context.Context, seed uint32) (*Island, error) {
	cfg := g.cfg
	r := rng.New(seed)
	log := g.logger.With("seed", seed)

	outline, err := landGenerator(cfg.Land).Generate(r)
	if err != nil {
		return nil, fmt.Errorf("generate outline: %w", err)
	}
	log.Debug("outline generated", "vertices", outline.Len(), "area", outline.Area())

	regions, err := g.subdivide(outline, r, log)
	if err != nil {
		return nil, err
	}

	width := r.Range(cfg.Border.Width.Min, cfg.Border.Width.Max)
	bordered := make([]border.BorderedRegion, len(regions))
	for i, region := range regions {
		b, err := border.Generate(region, width)
		if err != nil {
			return nil, fmt.Errorf("border region %d: %w", i, err)
		}
		bordered[i] = b
	}

	classifier, err := biome.NewClassifier(outline)
	if err != nil {
		return nil, fmt.Errorf("classify biomes: %w", err)
	}

	is := &Island{
		Seed:        seed,
		Outline:     outline,
		Regions:     regions,
		Bordered:    bordered,
		Biomes:      classifier.Distribute(regions),
		Neighbours:  subdivision.Neighbours(regions),
		BorderWidth: width,
		field: noise.New(noise.Params{
			Persistence: cfg.Noise.Persistence,
			Frequency:   cfg.Noise.Frequency,
			Amplitude:   cfg.Noise.Amplitude,
			Octaves:     cfg.Noise.Octaves,
			Seed:        cfg.Noise.Seed,
			Scale:       cfg.Noise.Scale,
		}),
	}

	if err := g.buildRegions(ctx, is, log); err != nil {
		return nil, err
	}
	is.locator = terrain.NewLocator(&is.Terrain, &is.Roads)

	log.Info("island generated",
		"regions", len(is.Regions),
		"skipped", len(is.Skipped),
		"borderWidth", width,
		"terrainTriangles", is.Terrain.TriangleCount(),
		"roadTriangles", is.Roads.TriangleCount(),
		"plants", len(is.Plants),
	)
	return is, nil
}

func landGenerator(c config.LandConfig) land.Generator {
	if c.Kind == config.LandSquare {
		return land.Square{Side: c.Side}
	}
	return land.Elliptical{
		MinorRadius: land.Range{Min: c.MinorRadius.Min, Max: c.MinorRadius.Max},
		MajorRadius: land.Range{Min: c.MajorRadius.Min, Max: c.MajorRadius.Max},
		MinVertices: c.MinVertices,
		MaxVertices: c.MaxVertices,
		AngleJitter: c.AngleJitter,
	}
}

func (g *Generator) subdivide(outline geometry.Polygon, r *rng.LCG, log *slog.Logger) ([]geometry.Polygon, error) {
	passes := g.cfg.Subdivision.Passes
	var first subdivision.Strategies
	if len(passes) > 0 {
		first = passes[0].Strategies
	}
	sub, err := subdivision.New(outline, r, first, subdivision.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("subdivide outline: %w", err)
	}
	for i, pass := range passes {
		sub.SetStrategies(pass.Strategies)
		count := r.IntRange(pass.Count.Min, pass.Count.Max)
		if err := sub.Subdivide(count); err != nil {
			return nil, fmt.Errorf("subdivision pass %d: %w", i, err)
		}
		log.Debug("subdivision pass done", "pass", i, "splits", count, "regions", sub.Len())
	}
	return sub.Regions(), nil
}

type regionResult struct {
	surface terrain.Surface
	plants  []vegetation.Plant
	built   bool
}

func (g *Generator) buildRegions(ctx context.Context, is *Island, log *slog.Logger) error {
	cfg := g.cfg
	spacing := is.Outline.Bounds().Size().Mul(cfg.Terrain.Resolution)
	textures := terrain.Textures{Biomes: config.BiomeMap(cfg.Terrain.Textures), Road: cfg.Terrain.Road}
	builder := terrain.NewBuilder(is.field, g.lookup, textures, spacing, terrain.WithLogger(log))

	grower, err := g.grower(is)
	if err != nil {
		return err
	}

	results := make([]regionResult, len(is.Regions))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers())
	for i := range is.Regions {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b := is.Bordered[i]
			if b.Overflows() {
				log.Warn("skip region", "region", i, "reason", "border overflows region", "width", is.BorderWidth)
				return nil
			}
			surface, err := builder.Region(i, b.Core, is.Biomes[i].Type)
			if err != nil {
				log.Warn("skip region", "region", i, "err", err)
				return nil
			}
			res := regionResult{surface: surface, built: true}
			if grower != nil {
				res.plants = grower.Region(i, b.Core, is.Biomes[i], rng.ForRegion(is.Seed, i))
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("build regions: %w", err)
	}

	contours := make([]geometry.Polygon, 0, len(results))
	for i, res := range results {
		if !res.built {
			is.Skipped = append(is.Skipped, i)
			continue
		}
		is.Surfaces = append(is.Surfaces, res.surface)
		is.Terrain.Append(res.surface.Mesh)
		is.Plants = append(is.Plants, res.plants...)
		contours = append(contours, res.surface.Contour)
	}

	if is.BorderWidth <= 0 {
		log.Debug("no roads", "reason", "zero border width")
		return nil
	}
	roads, err := builder.Roads(is.Outline, is.Regions, contours)
	if err != nil {
		log.Warn("skip roads", "err", err)
		return nil
	}
	is.Roads = roads
	return nil
}

func (g *Generator) grower(is *Island) (*vegetation.Grower, error) {
	vc := g.cfg.Vegetation
	if !vc.Enabled || len(g.grammars) == 0 {
		return nil, nil
	}
	species := make(map[biome.Type]vegetation.Species, len(g.grammars))
	for kind, gr := range g.grammars {
		species[kind] = vegetation.Species{Name: speciesName(vc.Grammars[kind.String()], kind), Grammar: gr}
	}
	placement := vegetation.Placement{
		AreaPerPlant:       vc.AreaPerPlant,
		MinSpacing:         vc.MinSpacing,
		MaxPlantsPerRegion: vc.MaxPlantsPerRegion,
		Attempts:           vc.Attempts,
		SegmentHeight:      vc.SegmentHeight,
	}
	shape := vegetation.DefaultShape()
	shape.RadiusUnit = vc.RadiusUnit
	grower, err := vegetation.NewGrower(placement, species, is.field, g.lookup,
		vegetation.Textures{Trunk: vc.Trunk, Flower: vc.Flower}, is.Seed,
		vegetation.WithShape(shape), vegetation.WithLogger(g.logger))
	if err != nil {
		return nil, fmt.Errorf("prepare vegetation: %w", err)
	}
	return grower, nil
}

// speciesName is the rule file's base name, or the biome name for grammars
// supplied in memory.
func speciesName(path string, kind biome.Type) string {
	if path == "" {
		return kind.String()
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (g *Generator) workers() int {
	if g.cfg.Workers > 0 {
		return g.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}
