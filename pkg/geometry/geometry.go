package geometry

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Kind is the simplified enum for geometry families surfaced to field
// metadata and widget matching.
type Kind string

const (
	KindPoint           Kind = "point"
	KindMultiPoint      Kind = "multipoint"
	KindLineString      Kind = "linestring"
	KindMultiLineString Kind = "multilinestring"
	KindPolygon         Kind = "polygon"
	KindMultiPolygon    Kind = "multipolygon"
	KindCollection      Kind = "collection"
)

// SRID values the module registers projections for out of the box.
const (
	SRIDWGS84       = 4326
	SRIDWebMercator = 3857
)

// ErrMissingSRID reports a value whose spatial reference is unset where one is
// required.
var ErrMissingSRID = errors.New("geometry: value has no SRID")

// Value pairs an orb geometry with the spatial reference identifier its
// coordinates are expressed in. The zero Value represents "no geometry" and is
// what unset model attributes and SQL NULL columns scan into.
type Value struct {
	Geom orb.Geometry
	SRID int
}

// NewValue wraps a geometry with its SRID.
func NewValue(geom orb.Geometry, srid int) Value {
	return Value{Geom: geom, SRID: srid}
}

// IsZero reports whether the value holds no geometry.
func (v Value) IsZero() bool {
	return v.Geom == nil
}

// Kind maps the wrapped geometry onto the simplified Kind enum.
func (v Value) Kind() (Kind, error) {
	if v.Geom == nil {
		return "", errors.New("geometry: value is empty")
	}
	switch v.Geom.(type) {
	case orb.Point:
		return KindPoint, nil
	case orb.MultiPoint:
		return KindMultiPoint, nil
	case orb.LineString:
		return KindLineString, nil
	case orb.MultiLineString:
		return KindMultiLineString, nil
	case orb.Polygon:
		return KindPolygon, nil
	case orb.MultiPolygon:
		return KindMultiPolygon, nil
	case orb.Collection:
		return KindCollection, nil
	case orb.Bound, orb.Ring:
		return KindPolygon, nil
	default:
		return "", fmt.Errorf("geometry: unsupported geometry type %T", v.Geom)
	}
}

// Clone returns a deep copy so callers can mutate coordinates without
// aliasing the source.
func (v Value) Clone() Value {
	if v.Geom == nil {
		return Value{SRID: v.SRID}
	}
	return Value{Geom: orb.Clone(v.Geom), SRID: v.SRID}
}

// Bound returns the bounding box of the wrapped geometry.
func (v Value) Bound() (orb.Bound, error) {
	if v.Geom == nil {
		return orb.Bound{}, errors.New("geometry: value is empty")
	}
	return v.Geom.Bound(), nil
}

// Centroid computes the planar centroid of the wrapped geometry. Map
// renderers use it to pick an initial viewport center.
func (v Value) Centroid() (orb.Point, error) {
	if v.Geom == nil {
		return orb.Point{}, errors.New("geometry: value is empty")
	}
	centroid, _ := planar.CentroidArea(v.Geom)
	return centroid, nil
}

// Collection groups values that already share srid into one value wrapping an
// orb.Collection. Callers are expected to reproject entries first; a value in
// a different reference is rejected rather than silently converted.
func Collection(values []Value, srid int) (Value, error) {
	if srid == 0 {
		return Value{}, ErrMissingSRID
	}
	if len(values) == 0 {
		return Value{}, errors.New("geometry: collection requires at least one value")
	}

	geoms := make(orb.Collection, 0, len(values))
	for i, value := range values {
		if value.IsZero() {
			return Value{}, fmt.Errorf("geometry: collection entry %d is empty", i)
		}
		if value.SRID != srid {
			return Value{}, fmt.Errorf("geometry: collection entry %d has SRID %d, want %d", i, value.SRID, srid)
		}
		geoms = append(geoms, orb.Clone(value.Geom))
	}
	return Value{Geom: geoms, SRID: srid}, nil
}
