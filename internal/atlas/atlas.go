// Package atlas maps texture keys to normalized UV rectangles.
package atlas

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"
)

// Lookup resolves a texture key to its UV rectangle.
type Lookup interface {
	UVRegion(key string) (r2.Rect, bool)
}

// ErrInvalidSize rejects atlases without a positive image size.
var ErrInvalidSize = errors.New("atlas size must be positive")

// Atlas is a packed texture sheet.
type Atlas struct {
	ImagePath string
	Width     float64
	Height    float64
	sprites   map[string]r2.Rect
}

// New returns an empty atlas for an image of the given size in pixels.
func New(imagePath string, width, height float64) (*Atlas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %gx%g", ErrInvalidSize, width, height)
	}
	return &Atlas{
		ImagePath: imagePath,
		Width:     width,
		Height:    height,
		sprites:   make(map[string]r2.Rect),
	}, nil
}

// Add registers a sprite given in pixels.
func (a *Atlas) Add(name string, x, y, w, h float64) {
	a.sprites[name] = r2.RectFromPoints(
		r2.Point{X: x / a.Width, Y: y / a.Height},
		r2.Point{X: (x + w) / a.Width, Y: (y + h) / a.Height},
	)
}

// UVRegion implements Lookup.
func (a *Atlas) UVRegion(key string) (r2.Rect, bool) {
	r, ok := a.sprites[key]
	return r, ok
}

// Names returns the sprite names in lexical order.
func (a *Atlas) Names() []string {
	names := make([]string, 0, len(a.sprites))
	for name := range a.sprites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type xmlAtlas struct {
	XMLName   xml.Name    `xml:"TextureAtlas"`
	ImagePath string      `xml:"imagePath,attr"`
	Width     float64     `xml:"width,attr"`
	Height    float64     `xml:"height,attr"`
	Sprites   []xmlSprite `xml:"sprite"`
}

type xmlSprite struct {
	Name string  `xml:"n,attr"`
	X    float64 `xml:"x,attr"`
	Y    float64 `xml:"y,attr"`
	W    float64 `xml:"w,attr"`
	H    float64 `xml:"h,attr"`
}

// Parse reads a TexturePacker style XML sheet.
func Parse(r io.Reader) (*Atlas, error) {
	var doc xmlAtlas
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode atlas: %w", err)
	}
	a, err := New(doc.ImagePath, doc.Width, doc.Height)
	if err != nil {
		return nil, err
	}
	for _, s := range doc.Sprites {
		a.Add(s.Name, s.X, s.Y, s.W, s.H)
	}
	return a, nil
}

// Load parses the atlas file at path.
func Load(path string) (*Atlas, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open atlas: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Full maps every key to the whole texture.
type Full struct{}

func (Full) UVRegion(string) (r2.Rect, bool) {
	return r2.RectFromPoints(r2.Point{}, r2.Point{X: 1, Y: 1}), true
}

// Bilerp maps (u, v) in [0, 1] onto rect.
func Bilerp(rect r2.Rect, u, v float64) mgl64.Vec2 {
	return mgl64.Vec2{
		rect.X.Lo + (rect.X.Hi-rect.X.Lo)*u,
		rect.Y.Lo + (rect.Y.Hi-rect.Y.Lo)*v,
	}
}
