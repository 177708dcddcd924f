// Package geojson renders admin resources as GeoJSON FeatureCollection
// documents: the row held by a rendered form becomes one feature per set
// geometry field, and list exports stream aggregated geometries with their
// popup labels patched into feature properties.
package geojson

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/render"
)

// ContentType is the media type registered for GeoJSON.
const ContentType = "application/geo+json"

// Renderer implements render.Renderer, exporting the row carried by
// RenderOptions.Values instead of producing markup.
type Renderer struct {
	displaySRID int
}

// Option configures the renderer.
type Option func(*Renderer)

// WithDisplaySRID sets the spatial reference exported coordinates use.
// Defaults to WGS84.
func WithDisplaySRID(srid int) Option {
	return func(r *Renderer) {
		if srid > 0 {
			r.displaySRID = srid
		}
	}
}

// New constructs a GeoJSON renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{displaySRID: geometry.SRIDWGS84}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

func (r *Renderer) Name() string {
	return "geojson"
}

func (r *Renderer) ContentType() string {
	return ContentType
}

// Render encodes the row in options.Values as a FeatureCollection: one feature
// per geometry field with a set value, carrying the row's non-geometry values
// as properties plus a "field" marker naming the source column. Geometry
// values may arrive as geometry.Value, WKT/EWKT, or GeoJSON text; payloads
// without their own SRID assume the field's declared reference. A row with no
// set geometry encodes as an empty collection.
func (r *Renderer) Render(_ context.Context, resource model.Resource, options render.RenderOptions) ([]byte, error) {
	collection := NewCollection(r.displaySRID)

	properties := rowProperties(resource, options.Values)
	id := rowID(resource, options.Values)

	for _, field := range resource.GeometryFields() {
		value, ok, err := coerceValue(options.Values[field.Name], declaredSRID(field))
		if err != nil {
			return nil, fmt.Errorf("geojson renderer: field %q: %w", field.Name, err)
		}
		if !ok {
			continue
		}

		featureProps := make(map[string]any, len(properties)+1)
		for key, val := range properties {
			featureProps[key] = val
		}
		featureProps["field"] = field.Name

		err = collection.AddFeature(Feature{
			ID:         id,
			Geometry:   value,
			Properties: featureProps,
		})
		if err != nil {
			return nil, fmt.Errorf("geojson renderer: field %q: %w", field.Name, err)
		}
	}

	return collection.Encode()
}

// rowProperties collects the non-geometry values declared by the resource.
// Undeclared keys are dropped so exports never leak transport scaffolding
// (CSRF tokens, method overrides) into feature properties.
func rowProperties(resource model.Resource, values map[string]any) map[string]any {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]any)
	for _, field := range resource.Fields {
		if field.IsGeometry() {
			continue
		}
		if value, ok := values[field.Name]; ok {
			out[field.Name] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func rowID(resource model.Resource, values map[string]any) any {
	if resource.IDField == "" || len(values) == 0 {
		return nil
	}
	return values[resource.IDField]
}

// coerceValue extracts a geometry from the supported value shapes. The second
// return reports whether a geometry was present; parse failures on serialised
// payloads are errors rather than skips so exports never drop rows silently.
func coerceValue(value any, fallbackSRID int) (geometry.Value, bool, error) {
	switch v := value.(type) {
	case nil:
		return geometry.Value{}, false, nil
	case geometry.Value:
		if v.IsZero() {
			return geometry.Value{}, false, nil
		}
		return v, true, nil
	case *geometry.Value:
		if v == nil || v.IsZero() {
			return geometry.Value{}, false, nil
		}
		return *v, true, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return geometry.Value{}, false, nil
		}
		parsed, err := geometry.Parse(v, fallbackSRID)
		if err != nil {
			return geometry.Value{}, false, err
		}
		return parsed, true, nil
	case []byte:
		return coerceValue(string(v), fallbackSRID)
	default:
		return geometry.Value{}, false, fmt.Errorf("unsupported geometry value %T", value)
	}
}

// declaredSRID reads the SRID stamped on field metadata, defaulting to WGS84.
func declaredSRID(field model.Field) int {
	raw := strings.TrimSpace(field.Metadata[model.MetadataGeometrySRID])
	if raw == "" {
		return geometry.SRIDWGS84
	}
	srid, err := strconv.Atoi(raw)
	if err != nil || srid <= 0 {
		return geometry.SRIDWGS84
	}
	return srid
}
