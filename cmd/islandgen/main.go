package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"islandgen/internal/config"
	"islandgen/internal/island"
	"islandgen/internal/preview"
)

func main() {
	var (
		cfgPath     string
		dumpPath    string
		previewDir  string
		previewSize int
		seed        int64
		workers     int
		verbose     bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to island configuration file (JSON or YAML)")
	flag.StringVar(&dumpPath, "dump-config", "", "write the effective configuration to this path and exit")
	flag.StringVar(&previewDir, "preview", "", "directory for a top-down PNG preview")
	flag.IntVar(&previewSize, "size", 1024, "preview image size in pixels")
	flag.Int64Var(&seed, "seed", -1, "override the configured seed")
	flag.IntVar(&workers, "workers", -1, "override the configured region worker count")
	flag.BoolVar(&verbose, "v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if _, err := writeConfigFromEnv(cfgPath); err != nil {
		log.Fatalf("sync config from environment: %v", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if seed >= 0 {
		cfg.Seed = uint32(seed)
	}
	if workers >= 0 {
		cfg.Workers = workers
	}

	if dumpPath != "" {
		if err := writeConfig(cfg, dumpPath); err != nil {
			log.Fatalf("dump config: %v", err)
		}
		logger.Info("configuration written", "path", dumpPath)
		return
	}

	gen, err := island.NewGenerator(cfg, island.WithLogger(logger))
	if err != nil {
		log.Fatalf("initialise generator: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	is, err := gen.Generate(ctx)
	if err != nil {
		log.Fatalf("generate island: %v", err)
	}
	logger.Info("generation finished",
		"seed", is.Seed,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"outlineVertices", is.Outline.Len(),
		"terrainVertices", is.Terrain.VertexCount(),
		"roadVertices", is.Roads.VertexCount(),
		"centreHeight", centreHeight(is),
	)

	if previewDir != "" {
		path, err := preview.Save(is, previewDir, previewSize, preview.DefaultPalette())
		if err != nil {
			log.Fatalf("write preview: %v", err)
		}
		logger.Info("preview written", "path", path)
	}
}

func centreHeight(is *island.Island) float64 {
	c := is.Bounds().Center()
	return is.HeightAt(c.X, c.Y)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
