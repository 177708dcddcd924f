package components

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/model"
)

// Asset locations the map components depend on. OpenLayers loads from its CDN
// build; the widget runtime and stylesheet are served from the embedded asset
// bundle mounted under the default prefix.
const (
	OpenLayersScriptURL     = "https://cdn.jsdelivr.net/npm/ol@9.2.4/dist/ol.js"
	OpenLayersStylesheetURL = "https://cdn.jsdelivr.net/npm/ol@9.2.4/ol.css"

	DefaultAssetPrefix = "/assets/mapadmin/"
	MapStylesheetHref  = DefaultAssetPrefix + "mapadmin-olmap.css"
	MapScriptHref      = DefaultAssetPrefix + "mapadmin-olmap.min.js"
)

func mapAssets() ([]string, []Script) {
	return []string{OpenLayersStylesheetURL, MapStylesheetHref}, []Script{
		{Src: OpenLayersScriptURL},
		{Src: MapScriptHref, Defer: true},
	}
}

func mapDescriptor() Descriptor {
	stylesheets, scripts := mapAssets()
	return Descriptor{
		Renderer:    mapRenderer(),
		Stylesheets: stylesheets,
		Scripts:     scripts,
	}
}

func infoMapDescriptor() Descriptor {
	stylesheets, scripts := mapAssets()
	return Descriptor{
		Renderer:    infoMapRenderer(),
		Stylesheets: stylesheets,
		Scripts:     scripts,
	}
}

// mapRenderer emits the editable geometry widget: a textarea holding the
// serialised geometry the form submits, and a map container the runtime
// upgrades into an OpenLayers editor bound to that textarea. Collapsed field
// groups emit one textarea per member, all submitting under the synthetic
// name in member order, sharing a single map.
func mapRenderer() Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if sources := groupSources(field); len(sources) > 0 {
			return renderGroupedMap(buf, field, data, sources)
		}

		text, err := geometryText(data.Value, field)
		if err != nil {
			return fmt.Errorf("components: encode geometry for %q: %w", field.Name, err)
		}

		payload, err := mapWidgetPayload(field, data.Config)
		if err != nil {
			return err
		}

		id := controlID(field.Name)

		buf.WriteString(`<textarea id="`)
		buf.WriteString(html.EscapeString(id))
		buf.WriteString(`" name="`)
		buf.WriteString(html.EscapeString(field.Name))
		buf.WriteString(`" class="mapadmin-geometry-input" data-mapadmin-role="geometry" rows="3"`)
		if field.Required {
			buf.WriteString(" required")
		}
		buf.WriteString(">")
		buf.WriteString(html.EscapeString(text))
		buf.WriteString("</textarea>\n")

		buf.WriteString(`<div class="mapadmin-map" data-mapadmin-widget="edit" data-mapadmin-target="`)
		buf.WriteString(html.EscapeString(id))
		buf.WriteString(`" data-mapadmin-payload='`)
		buf.WriteString(html.EscapeString(string(payload)))
		buf.WriteString("'></div>\n")
		return nil
	}
}

// renderGroupedMap writes the shared-map variant. Each source geometry keeps
// its own textarea so submissions stay aligned with the group's member order;
// the map container targets every control by id. Required is left to the
// server, where any one member may satisfy it.
func renderGroupedMap(buf *bytes.Buffer, field model.Field, data ComponentData, sources []string) error {
	values := slotValues(data.Value, len(sources))

	payload, err := mapWidgetPayload(field, data.Config)
	if err != nil {
		return err
	}

	ids := make([]string, len(sources))
	for i, source := range sources {
		text, err := geometryText(values[i], field)
		if err != nil {
			return fmt.Errorf("components: encode geometry for %q slot %q: %w", field.Name, source, err)
		}

		id := controlID(field.Name) + "-" + strconv.Itoa(i)
		ids[i] = id

		buf.WriteString(`<textarea id="`)
		buf.WriteString(html.EscapeString(id))
		buf.WriteString(`" name="`)
		buf.WriteString(html.EscapeString(field.Name))
		buf.WriteString(`" class="mapadmin-geometry-input" data-mapadmin-role="geometry" data-mapadmin-slot="`)
		buf.WriteString(html.EscapeString(source))
		buf.WriteString(`" rows="3">`)
		buf.WriteString(html.EscapeString(text))
		buf.WriteString("</textarea>\n")
	}

	buf.WriteString(`<div class="mapadmin-map" data-mapadmin-widget="edit" data-mapadmin-target="`)
	buf.WriteString(html.EscapeString(strings.Join(ids, ",")))
	buf.WriteString(`" data-mapadmin-payload='`)
	buf.WriteString(html.EscapeString(string(payload)))
	buf.WriteString("'></div>\n")
	return nil
}

// infoMapRenderer emits the read-only variant: a single map container whose
// payload carries the geometry inline, with no backing form control.
func infoMapRenderer() Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		payload, err := infoWidgetPayload(field, data)
		if err != nil {
			return err
		}

		buf.WriteString(`<div id="`)
		buf.WriteString(html.EscapeString(controlID(field.Name)))
		buf.WriteString(`" class="mapadmin-map mapadmin-map-info" data-mapadmin-widget="info" data-mapadmin-payload='`)
		buf.WriteString(html.EscapeString(string(payload)))
		buf.WriteString("'></div>\n")
		return nil
	}
}

func mapWidgetPayload(field model.Field, config map[string]any) ([]byte, error) {
	payload := map[string]any{
		"name": field.Name,
		"srid": fieldSRID(field),
	}
	if kind := strings.TrimSpace(field.Metadata[model.MetadataGeometryKind]); kind != "" {
		payload["kind"] = kind
	}
	if sources := groupSources(field); len(sources) > 0 {
		payload["slots"] = sources
	}
	if len(config) > 0 {
		payload["options"] = config
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("components: encode map payload for %q: %w", field.Name, err)
	}
	return encoded, nil
}

// groupSources returns the ordered member names stamped on a collapsed field
// group, or nil for plain geometry fields.
func groupSources(field model.Field) []string {
	raw := strings.TrimSpace(field.Metadata[model.MetadataGroupSources])
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	sources := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			sources = append(sources, part)
		}
	}
	if len(sources) < 2 {
		return nil
	}
	return sources
}

// slotValues pads or truncates a grouped value to the slot count. A scalar
// value lands in the first slot.
func slotValues(value any, count int) []any {
	out := make([]any, count)
	switch v := value.(type) {
	case nil:
	case []any:
		copy(out, v)
	default:
		out[0] = v
	}
	return out
}

func infoWidgetPayload(field model.Field, data ComponentData) ([]byte, error) {
	payload := map[string]any{
		"name": field.Name,
		"srid": fieldSRID(field),
	}
	if len(data.Config) > 0 {
		payload["options"] = data.Config
	}

	if value, ok := coerceGeometry(data.Value, field); ok {
		encoded, err := geometry.EncodeGeoJSON(value.Geom)
		if err != nil {
			return nil, fmt.Errorf("components: encode geometry for %q: %w", field.Name, err)
		}
		payload["geometry"] = json.RawMessage(encoded)
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("components: encode info payload for %q: %w", field.Name, err)
	}
	return encoded, nil
}

// geometryText serialises a field value into the text the geometry textarea
// carries. Geometry values encode as EWKT so the SRID round-trips; strings and
// byte slices pass through untouched.
func geometryText(value any, field model.Field) (string, error) {
	switch v := value.(type) {
	case nil:
		return stringFromAny(field.Default), nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case geometry.Value:
		if v.IsZero() {
			return "", nil
		}
		return geometry.EncodeEWKT(v)
	case *geometry.Value:
		if v == nil || v.IsZero() {
			return "", nil
		}
		return geometry.EncodeEWKT(*v)
	}
	return stringFromAny(value), nil
}

// coerceGeometry extracts a geometry.Value from the supported value shapes,
// parsing serialised text with the field SRID as fallback.
func coerceGeometry(value any, field model.Field) (geometry.Value, bool) {
	switch v := value.(type) {
	case geometry.Value:
		if v.IsZero() {
			return geometry.Value{}, false
		}
		return v, true
	case *geometry.Value:
		if v == nil || v.IsZero() {
			return geometry.Value{}, false
		}
		return *v, true
	case string:
		if strings.TrimSpace(v) == "" {
			return geometry.Value{}, false
		}
		parsed, err := geometry.Parse(v, fieldSRID(field))
		if err != nil {
			return geometry.Value{}, false
		}
		return parsed, true
	case []byte:
		return coerceGeometry(string(v), field)
	}
	return geometry.Value{}, false
}

// fieldSRID reads the SRID stamped on geometry field metadata, defaulting to
// WGS84 when unset or malformed.
func fieldSRID(field model.Field) int {
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
