package geojson

import (
	"fmt"

	orbjson "github.com/paulmach/orb/geojson"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
)

// Feature pairs one geometry with the identity and properties it exports.
type Feature struct {
	ID         any
	Geometry   geometry.Value
	Properties map[string]any
}

// Collection accumulates features for a single FeatureCollection document.
// Every geometry is reprojected into the collection SRID on the way in, so an
// encoded document is always internally consistent.
type Collection struct {
	srid     int
	features []Feature
}

// NewCollection constructs an empty collection targeting the given SRID.
// Non-positive values fall back to WGS84, the reference GeoJSON specifies.
func NewCollection(srid int) *Collection {
	if srid <= 0 {
		srid = geometry.SRIDWGS84
	}
	return &Collection{srid: srid}
}

// SRID reports the spatial reference encoded features are expressed in.
func (c *Collection) SRID() int {
	if c == nil {
		return 0
	}
	return c.srid
}

// Add appends a feature for the geometry with the given properties. Zero
// geometries are skipped so callers can feed rows without checking for unset
// columns. Values in another reference are reprojected; an unregistered
// reference is an error.
func (c *Collection) Add(value geometry.Value, properties map[string]any) error {
	return c.AddFeature(Feature{Geometry: value, Properties: properties})
}

// AddFeature appends a fully-specified feature, reprojecting its geometry into
// the collection SRID. Zero geometries are skipped.
func (c *Collection) AddFeature(feature Feature) error {
	if c == nil || feature.Geometry.IsZero() {
		return nil
	}

	if feature.Geometry.SRID != c.srid {
		transformed, err := geometry.Transform(feature.Geometry, c.srid)
		if err != nil {
			return fmt.Errorf("geojson: reproject feature %d: %w", len(c.features), err)
		}
		feature.Geometry = transformed
	}

	c.features = append(c.features, feature)
	return nil
}

// Features returns the collected features in insertion order.
func (c *Collection) Features() []Feature {
	if c == nil {
		return nil
	}
	return c.features
}

// Len reports the number of collected features.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.features)
}

// IsEmpty reports whether no feature was collected.
func (c *Collection) IsEmpty() bool {
	return c.Len() == 0
}

// Encode renders the collection as a GeoJSON FeatureCollection document. An
// empty collection encodes as a collection with no features, which keeps
// format negotiation simple for callers serving empty lists.
func (c *Collection) Encode() ([]byte, error) {
	fc := orbjson.NewFeatureCollection()
	for _, feature := range c.Features() {
		encoded := orbjson.NewFeature(feature.Geometry.Geom)
		if feature.ID != nil {
			encoded.ID = feature.ID
		}
		for key, value := range feature.Properties {
			encoded.Properties[key] = value
		}
		fc.Append(encoded)
	}

	payload, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("geojson: encode feature collection: %w", err)
	}
	return payload, nil
}
