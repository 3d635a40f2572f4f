//go:build ebiten

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"islandgen/internal/config"
	"islandgen/internal/island"
	"islandgen/internal/preview"
)

// viewer shows a top-down render of the current island. R rolls a new
// seed, N steps to the next one, Esc or Q quits.
type viewer struct {
	gen     *island.Generator
	palette preview.Palette
	size    int
	seed    uint32

	current *island.Island
	image   *ebiten.Image
	elapsed time.Duration
}

func (v *viewer) regenerate(seed uint32) error {
	start := time.Now()
	is, err := v.gen.GenerateSeed(context.Background(), seed)
	if err != nil {
		return fmt.Errorf("generate seed %d: %w", seed, err)
	}
	img, err := preview.Render(is, v.size, v.palette)
	if err != nil {
		return fmt.Errorf("render seed %d: %w", seed, err)
	}
	v.seed, v.current = seed, is
	v.image = ebiten.NewImageFromImage(img)
	v.elapsed = time.Since(start)
	return nil
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		return v.regenerate(uint32(time.Now().UnixNano()))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		return v.regenerate(v.seed + 1)
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	if v.image != nil {
		screen.DrawImage(v.image, nil)
	}
	msg := fmt.Sprintf("seed %d  regions %d  plants %d  (%s)\nR: new seed  N: next  Esc: quit",
		v.seed, len(v.current.Regions), len(v.current.Plants), v.elapsed.Round(time.Millisecond))
	if x, y, ok := v.cursor(); ok {
		msg += fmt.Sprintf("\nheight at (%.1f, %.1f): %.2f", x, y, v.current.HeightAt(x, y))
	}
	ebitenutil.DebugPrint(screen, msg)
}

// cursor converts the mouse position back to island coordinates.
func (v *viewer) cursor() (float64, float64, bool) {
	mx, my := ebiten.CursorPosition()
	if mx < 0 || my < 0 || mx >= v.size || my >= v.size {
		return 0, 0, false
	}
	x, y := preview.Unproject(v.current.Bounds(), v.size, mx, my)
	return x, y, true
}

func (v *viewer) Layout(int, int) (int, int) {
	return v.size, v.size
}

func main() {
	var (
		cfgPath string
		size    int
	)
	flag.StringVar(&cfgPath, "config", "", "path to island configuration file (JSON or YAML)")
	flag.IntVar(&size, "size", 768, "window size in pixels")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	gen, err := island.NewGenerator(cfg, island.WithLogger(logger))
	if err != nil {
		log.Fatalf("initialise generator: %v", err)
	}

	v := &viewer{gen: gen, palette: preview.DefaultPalette(), size: size}
	if err := v.regenerate(cfg.Seed); err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowTitle("islandgen")
	ebiten.SetWindowSize(size, size)
	if err := ebiten.RunGame(v); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
