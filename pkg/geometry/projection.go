package geometry

import (
	"fmt"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Projection converts coordinates between a registered spatial reference and
// WGS84 longitude/latitude. Routing every conversion through WGS84 lets any
// two registered references be paired without an n×n conversion matrix.
type Projection interface {
	EPSG() int
	ToWGS84(orb.Point) orb.Point
	FromWGS84(orb.Point) orb.Point
}

var (
	projectionsMu sync.RWMutex
	projections   = map[int]Projection{
		SRIDWGS84:       lonLat{},
		SRIDWebMercator: webMercator{},
	}
)

// RegisterProjection makes a custom spatial reference available to ForSRID and
// Transform. Registering an EPSG code twice replaces the earlier entry.
func RegisterProjection(p Projection) error {
	if p == nil {
		return fmt.Errorf("geometry: projection is nil")
	}
	if p.EPSG() <= 0 {
		return fmt.Errorf("geometry: projection EPSG code %d is invalid", p.EPSG())
	}

	projectionsMu.Lock()
	defer projectionsMu.Unlock()
	projections[p.EPSG()] = p
	return nil
}

// ForSRID resolves a registered projection. Unknown references are an error,
// never a guess.
func ForSRID(srid int) (Projection, error) {
	projectionsMu.RLock()
	defer projectionsMu.RUnlock()

	p, ok := projections[srid]
	if !ok {
		return nil, fmt.Errorf("geometry: no projection registered for SRID %d", srid)
	}
	return p, nil
}

// Transform reprojects a value into the target reference. The input is never
// mutated; a same-reference transform returns a plain copy.
func Transform(v Value, srid int) (Value, error) {
	if v.IsZero() {
		return Value{}, fmt.Errorf("geometry: cannot transform empty value")
	}
	if v.SRID == 0 {
		return Value{}, ErrMissingSRID
	}
	if v.SRID == srid {
		return v.Clone(), nil
	}

	src, err := ForSRID(v.SRID)
	if err != nil {
		return Value{}, fmt.Errorf("geometry: transform source: %w", err)
	}
	dst, err := ForSRID(srid)
	if err != nil {
		return Value{}, fmt.Errorf("geometry: transform target: %w", err)
	}

	geom := project.Geometry(orb.Clone(v.Geom), func(p orb.Point) orb.Point {
		return dst.FromWGS84(src.ToWGS84(p))
	})
	return Value{Geom: geom, SRID: srid}, nil
}

// lonLat is the identity projection for EPSG:4326.
type lonLat struct{}

func (lonLat) EPSG() int { return SRIDWGS84 }

func (lonLat) ToWGS84(p orb.Point) orb.Point { return p }

func (lonLat) FromWGS84(p orb.Point) orb.Point { return p }

// webMercator is the spherical mercator projection for EPSG:3857, delegating
// to the orb implementation.
type webMercator struct{}

func (webMercator) EPSG() int { return SRIDWebMercator }

func (webMercator) ToWGS84(p orb.Point) orb.Point {
	return project.Mercator.ToWGS84(p)
}

func (webMercator) FromWGS84(p orb.Point) orb.Point {
	return project.WGS84.ToMercator(p)
}
