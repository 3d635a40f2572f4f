package subdivision

import (
	"fmt"
)

// PolygonStrategy picks the region that is split next.
type PolygonStrategy int

const (
	RandomPolygon PolygonStrategy = iota
	GreatestAverageEdgeLength
	GreatestArea
	// AnyPolygon rolls one of the concrete strategies on every call.
	AnyPolygon
)

// EdgeStrategy picks the two edges the split chord connects.
type EdgeStrategy int

const (
	RandomEdges EdgeStrategy = iota
	LongestEdges
	AnyEdges
)

// PointStrategy picks where along each selected edge the chord starts.
type PointStrategy int

const (
	RandomPoint PointStrategy = iota
	Midpoint
	NearMidpoint
	AnyPoint
)

// Strategies bundles the three independent selection knobs.
type Strategies struct {
	Polygon PolygonStrategy `json:"polygon" yaml:"polygon"`
	Edge    EdgeStrategy    `json:"edge" yaml:"edge"`
	Point   PointStrategy   `json:"point" yaml:"point"`
}

var polygonNames = map[PolygonStrategy]string{
	RandomPolygon:             "random",
	GreatestAverageEdgeLength: "greatest-average-edge",
	GreatestArea:              "greatest-area",
	AnyPolygon:                "any",
}

var edgeNames = map[EdgeStrategy]string{
	RandomEdges:  "random",
	LongestEdges: "longest",
	AnyEdges:     "any",
}

var pointNames = map[PointStrategy]string{
	RandomPoint:  "random",
	Midpoint:     "midpoint",
	NearMidpoint: "near-midpoint",
	AnyPoint:     "any",
}

func (s PolygonStrategy) String() string { return nameOf(polygonNames, s) }
func (s EdgeStrategy) String() string    { return nameOf(edgeNames, s) }
func (s PointStrategy) String() string   { return nameOf(pointNames, s) }

func (s PolygonStrategy) MarshalText() ([]byte, error) { return marshalName(polygonNames, s) }
func (s EdgeStrategy) MarshalText() ([]byte, error)    { return marshalName(edgeNames, s) }
func (s PointStrategy) MarshalText() ([]byte, error)   { return marshalName(pointNames, s) }

func (s *PolygonStrategy) UnmarshalText(b []byte) error {
	return unmarshalName(polygonNames, string(b), s, "polygon")
}

func (s *EdgeStrategy) UnmarshalText(b []byte) error {
	return unmarshalName(edgeNames, string(b), s, "edge")
}

func (s *PointStrategy) UnmarshalText(b []byte) error {
	return unmarshalName(pointNames, string(b), s, "point")
}

func nameOf[T ~int](names map[T]string, v T) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(v))
}

func marshalName[T ~int](names map[T]string, v T) ([]byte, error) {
	name, ok := names[v]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %d", int(v))
	}
	return []byte(name), nil
}

func unmarshalName[T ~int](names map[T]string, text string, out *T, kind string) error {
	for v, name := range names {
		if name == text {
			*out = v
			return nil
		}
	}
	return fmt.Errorf("unknown %s strategy %q", kind, text)
}
