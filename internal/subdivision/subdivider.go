// Package subdivision splits an island outline into regions by repeatedly
// cutting one polygon along a chord between two of its edges.
package subdivision

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/golang/geo/r2"

	"islandgen/internal/geometry"
	"islandgen/internal/rng"
)

const (
	minSplitRatio    = 0.001
	maxSplitAttempts = 16
	maxEdgeRerolls   = 32
)

// ErrNoSplit is returned when no valid chord was found for the target.
var ErrNoSplit = errors.New("no valid split found")

// Subdivider owns the working set of regions.
type Subdivider struct {
	strategies Strategies
	rng        *rng.LCG
	regions    []geometry.Polygon
	logger     *slog.Logger
}

// Option configures a Subdivider.
type Option func(*Subdivider)

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Subdivider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New starts a subdivision of source. The source polygon is copied.
func New(source geometry.Polygon, r *rng.LCG, strategies Strategies, opts ...Option) (*Subdivider, error) {
	if err := source.Validate(); err != nil {
		return nil, fmt.Errorf("source polygon: %w", err)
	}
	s := &Subdivider{
		strategies: strategies,
		rng:        r,
		regions:    []geometry.Polygon{source.Clone()},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SetStrategies replaces the selection strategies for subsequent splits.
func (s *Subdivider) SetStrategies(strategies Strategies) {
	s.strategies = strategies
}

// Strategies returns the active strategies.
func (s *Subdivider) Strategies() Strategies {
	return s.strategies
}

// Len returns the current number of regions.
func (s *Subdivider) Len() int {
	return len(s.regions)
}

// Regions returns copies of the current regions.
func (s *Subdivider) Regions() []geometry.Polygon {
	out := make([]geometry.Polygon, len(s.regions))
	for i, p := range s.regions {
		out[i] = p.Clone()
	}
	return out
}

// Subdivide performs count splits, each adding exactly one region.
func (s *Subdivider) Subdivide(count int) error {
	for i := 0; i < count; i++ {
		if err := s.split(); err != nil {
			return fmt.Errorf("split %d of %d: %w", i+1, count, err)
		}
	}
	return nil
}

func (s *Subdivider) split() error {
	idx := s.selectPolygon()
	target := s.regions[idx]
	edges := s.strategies.Edge

	for attempt := 0; attempt < maxSplitAttempts; attempt++ {
		ea, eb := s.selectEdges(target, edges)
		pa := target.Edge(ea).At(s.splitRatio())
		pb := target.Edge(eb).At(s.splitRatio())

		first, second, ok := cut(target, ea, pa, eb, pb)
		if ok {
			s.regions[idx] = first
			s.regions = append(s.regions, second)
			return nil
		}
		s.logger.Debug("reject split chord", "region", idx, "edgeA", ea, "edgeB", eb, "attempt", attempt)
		// Deterministic edge choices would pick the same chord again.
		edges = RandomEdges
	}
	return fmt.Errorf("%w: region %d with %d vertices", ErrNoSplit, idx, target.Len())
}

func (s *Subdivider) selectPolygon() int {
	if len(s.regions) == 1 {
		return 0
	}
	strategy := s.strategies.Polygon
	if strategy == AnyPolygon {
		strategy = PolygonStrategy(s.rng.Intn(int(AnyPolygon)))
	}
	switch strategy {
	case GreatestAverageEdgeLength:
		return argMax(s.regions, geometry.Polygon.AverageEdgeLength)
	case GreatestArea:
		return argMax(s.regions, geometry.Polygon.Area)
	default:
		return s.rng.Intn(len(s.regions))
	}
}

func argMax(regions []geometry.Polygon, score func(geometry.Polygon) float64) int {
	best, bestScore := 0, math.Inf(-1)
	for i, p := range regions {
		if v := score(p); v > bestScore {
			best, bestScore = i, v
		}
	}
	return best
}

// selectEdges returns two distinct edge indices.
func (s *Subdivider) selectEdges(p geometry.Polygon, strategy EdgeStrategy) (int, int) {
	if strategy == AnyEdges {
		strategy = EdgeStrategy(s.rng.Intn(int(AnyEdges)))
	}
	n := p.Len()
	if strategy == LongestEdges {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return p.Edge(order[a]).Length() > p.Edge(order[b]).Length()
		})
		return order[0], order[1]
	}

	a := s.rng.Intn(n)
	for i := 0; i < maxEdgeRerolls; i++ {
		if b := s.rng.Intn(n); b != a {
			return a, b
		}
	}
	return a, (a + 1) % n
}

func (s *Subdivider) splitRatio() float64 {
	strategy := s.strategies.Point
	if strategy == AnyPoint {
		strategy = PointStrategy(s.rng.Intn(int(AnyPoint)))
	}
	var t float64
	switch strategy {
	case Midpoint:
		t = 0.5
	case NearMidpoint:
		t = 0.5 + (s.rng.Float64()*0.5 - 0.25)
	default:
		t = s.rng.Float64()
	}
	return math.Max(minSplitRatio, math.Min(1-minSplitRatio, t))
}

// cut splits p along the chord pa->pb, where pa lies on edge ea and pb on
// edge eb. The first polygon walks forward from pa to pb, the second from pb
// back to pa. ok is false when the chord leaves p or a half degenerates.
func cut(p geometry.Polygon, ea int, pa r2.Point, eb int, pb r2.Point) (geometry.Polygon, geometry.Polygon, bool) {
	if !chordInside(p, ea, pa, eb, pb) {
		return nil, nil, false
	}
	first := walk(p, pa, ea, eb, pb)
	second := walk(p, pb, eb, ea, pa)

	sign := math.Signbit(p.SignedArea())
	for _, half := range []geometry.Polygon{first, second} {
		if half.Validate() != nil || math.Signbit(half.SignedArea()) != sign {
			return nil, nil, false
		}
	}
	return first, second, true
}

func walk(p geometry.Polygon, from r2.Point, fromEdge, toEdge int, to r2.Point) geometry.Polygon {
	out := geometry.Polygon{from}
	for i := p.Next(fromEdge); ; i = p.Next(i) {
		out = append(out, p[i])
		if i == toEdge {
			break
		}
	}
	out = append(out, to)
	return out.Compact(geometry.Epsilon)
}

func chordInside(p geometry.Polygon, ea int, pa r2.Point, eb int, pb r2.Point) bool {
	chord := geometry.Segment{A: pa, B: pb}
	if chord.Length() <= geometry.Epsilon {
		return false
	}
	if !p.Contains(chord.Midpoint()) {
		return false
	}
	for i := range p {
		if i == ea || i == eb {
			continue
		}
		if chord.ProperlyCrosses(p.Edge(i)) {
			return false
		}
	}
	return true
}
