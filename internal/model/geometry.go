package model

import (
	"strconv"
	"strings"
)

// Schema formats that mark a property as spatial. The bare "geometry" format
// leaves the kind open; suffixed variants pin it so widgets can constrain the
// drawing tools they expose.
const (
	geometryFormatPrefix = "geometry"

	MetadataGeometryKind = "geometry.kind"
	MetadataGeometrySRID = "geometry.srid"
	MetadataGroup        = "group"
	MetadataGroupSources = "group.sources"
)

var geometryKinds = map[string]struct{}{
	"point":           {},
	"multipoint":      {},
	"linestring":      {},
	"multilinestring": {},
	"polygon":         {},
	"multipolygon":    {},
	"collection":      {},
}

// IsGeometryFormat reports whether a schema format marks a property as
// spatial.
func IsGeometryFormat(format string) bool {
	_, ok := geometryKindFromFormat(format)
	return ok
}

// geometryKindFromFormat reports whether a schema format marks a geometry
// field and, if so, which kind it constrains the field to. "geometry" and the
// encoding formats ("geojson", "wkt", "ewkt") accept any kind.
func geometryKindFromFormat(format string) (string, bool) {
	normalized := strings.TrimSpace(strings.ToLower(format))
	switch normalized {
	case "", "geojson", "wkt", "ewkt":
		return "", normalized != ""
	}
	if normalized == geometryFormatPrefix {
		return "", true
	}
	if !strings.HasPrefix(normalized, geometryFormatPrefix+"-") {
		return "", false
	}
	kind := strings.TrimPrefix(normalized, geometryFormatPrefix+"-")
	if _, ok := geometryKinds[kind]; !ok {
		return "", false
	}
	return kind, true
}

// applyGeometryMetadata promotes a detected geometry field: it switches the
// type, stamps kind and SRID metadata, and defaults the widget hint so the
// registry resolves a map widget without explicit configuration.
func applyGeometryMetadata(field *Field, kind string, defaultSRID int) {
	if field == nil {
		return
	}
	field.Type = FieldTypeGeometry

	metadata := field.ensureMetadata()
	if kind != "" && metadata[MetadataGeometryKind] == "" {
		metadata[MetadataGeometryKind] = kind
	}
	if metadata[MetadataGeometrySRID] == "" {
		srid := defaultSRID
		if explicit, ok := sridFromMetadata(metadata); ok {
			srid = explicit
		}
		metadata[MetadataGeometrySRID] = strconv.Itoa(srid)
	}
	delete(metadata, "srid")
}

// sridFromMetadata honours an "srid" key lifted from the extension namespace
// before the canonical "geometry.srid" entry exists.
func sridFromMetadata(metadata map[string]string) (int, bool) {
	raw, ok := metadata["srid"]
	if !ok {
		return 0, false
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}
