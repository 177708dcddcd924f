package orchestrator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/mapcfg"
	"github.com/goliatone/go-mapadmin/pkg/model"
)

// GeometryConfig supplies the spatial metadata stamped onto a field when the
// schema document itself does not mark it. Zero values are omitted when
// converted to metadata.
type GeometryConfig struct {
	// Kind constrains the drawing tools: point, multipoint, linestring,
	// multilinestring, polygon, multipolygon, or collection. Empty leaves the
	// kind open.
	Kind string
	// SRID records the coordinate reference of stored values. Zero falls back
	// to 4326.
	SRID int
	// Options holds a JSON widget option payload stored alongside the field.
	Options string
	// Group names the map field this source renders into when several
	// geometry columns share one widget.
	Group string
}

// GeometryOverride promotes one field of one operation to a geometry field.
// Useful when an API document predates the extension vocabulary or cannot be
// edited.
type GeometryOverride struct {
	OperationID string
	FieldPath   string
	Config      GeometryConfig
}

// WithGeometryOverrides registers overrides that run after the model builder
// executes. Overrides are scoped per operation and only applied when the
// target field lacks geometry metadata.
func WithGeometryOverrides(overrides []GeometryOverride) Option {
	cloned := append([]GeometryOverride(nil), overrides...)
	return func(o *Orchestrator) {
		if len(cloned) == 0 || o == nil {
			return
		}

		if o.geometryOverrides == nil {
			o.geometryOverrides = make(map[string][]GeometryOverride)
		}

		for _, override := range cloned {
			if err := validateGeometryOverride(override); err != nil {
				o.initialiseErr = appendInitialiseError(o.initialiseErr, err)
				continue
			}
			o.geometryOverrides[override.OperationID] = append(o.geometryOverrides[override.OperationID], override)
		}
	}
}

func validateGeometryOverride(override GeometryOverride) error {
	if strings.TrimSpace(override.OperationID) == "" {
		return errors.New("orchestrator: geometry override missing operation id")
	}
	if strings.TrimSpace(override.FieldPath) == "" {
		return fmt.Errorf("orchestrator: geometry override %q missing field path", override.OperationID)
	}
	if kind := strings.TrimSpace(override.Config.Kind); kind != "" && !knownGeometryKind(kind) {
		return fmt.Errorf("orchestrator: geometry override %q for %s names unknown kind %q", override.OperationID, override.FieldPath, kind)
	}
	if options := strings.TrimSpace(override.Config.Options); options != "" && !gjson.Valid(options) {
		return fmt.Errorf("orchestrator: geometry override %q for %s carries malformed options", override.OperationID, override.FieldPath)
	}
	if override.Config.SRID < 0 {
		return fmt.Errorf("orchestrator: geometry override %q for %s has negative srid", override.OperationID, override.FieldPath)
	}
	return nil
}

func knownGeometryKind(kind string) bool {
	switch geometry.Kind(strings.ToLower(kind)) {
	case geometry.KindPoint, geometry.KindMultiPoint,
		geometry.KindLineString, geometry.KindMultiLineString,
		geometry.KindPolygon, geometry.KindMultiPolygon,
		geometry.KindCollection:
		return true
	}
	return false
}

func appendInitialiseError(existing, next error) error {
	if existing == nil {
		return next
	}
	return fmt.Errorf("%v; %w", existing, next)
}

func (o *Orchestrator) applyGeometryOverrides(operationID string, resource *model.Resource) {
	if resource == nil || len(o.geometryOverrides) == 0 {
		return
	}
	overrides := o.geometryOverrides[operationID]
	if len(overrides) == 0 {
		return
	}

	for _, override := range overrides {
		target := locateField(resource.Fields, strings.Split(override.FieldPath, "."))
		if target == nil {
			continue
		}
		if target.IsGeometry() || hasGeometryMetadata(target.Metadata) {
			continue
		}
		stampGeometryConfig(target, override.Config)
	}
}

func hasGeometryMetadata(metadata map[string]string) bool {
	if len(metadata) == 0 {
		return false
	}
	if _, ok := metadata[model.MetadataGeometryKind]; ok {
		return true
	}
	_, ok := metadata[model.MetadataGeometrySRID]
	return ok
}

func stampGeometryConfig(field *model.Field, cfg GeometryConfig) {
	field.Type = model.FieldTypeGeometry
	if field.Metadata == nil {
		field.Metadata = make(map[string]string)
	}

	if kind := strings.ToLower(strings.TrimSpace(cfg.Kind)); kind != "" {
		field.Metadata[model.MetadataGeometryKind] = kind
	}
	srid := cfg.SRID
	if srid == 0 {
		srid = geometry.SRIDWGS84
	}
	field.Metadata[model.MetadataGeometrySRID] = strconv.Itoa(srid)

	if options := strings.TrimSpace(cfg.Options); options != "" {
		field.Metadata[mapcfg.ComponentConfigMetadataKey] = options
	}
	if group := strings.TrimSpace(cfg.Group); group != "" {
		field.Metadata[model.MetadataGroup] = group
	}
}

// locateField resolves a dotted path inside a field tree. The "items" segment
// descends into array item schemas; other segments match on field name
// through Nested children.
func locateField(fields []model.Field, segments []string) *model.Field {
	if len(segments) == 0 {
		return nil
	}
	head := strings.TrimSpace(segments[0])
	if head == "" {
		return nil
	}
	for i := range fields {
		field := &fields[i]
		if field.Name != head {
			continue
		}
		if len(segments) == 1 {
			return field
		}
		if segments[1] == "items" {
			return locateItemField(field, segments[2:])
		}
		return locateField(field.Nested, segments[1:])
	}
	return nil
}

func locateItemField(field *model.Field, segments []string) *model.Field {
	if field == nil || field.Items == nil {
		return nil
	}
	if len(segments) == 0 {
		return field.Items
	}
	if segments[0] == "items" {
		return locateItemField(field.Items, segments[1:])
	}
	return locateField(field.Items.Nested, segments)
}
