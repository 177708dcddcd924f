package changelist

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/mapcfg"
	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/renderers/olmap"
	"github.com/goliatone/go-mapadmin/pkg/store"
)

// mapEntry is one row's contribution to the list map: the row itself plus its
// geometries combined into a single collection in the display SRID.
type mapEntry struct {
	Row   store.Row
	Value geometry.Value
}

// aggregateRows collects the configured geometry fields from every row. Each
// value is reprojected into the display SRID and the row's values are wrapped
// in one collection, so a row shows up as a single selectable unit on the map.
// Rows without a usable geometry contribute nothing; a value that fails to
// parse or reproject is logged and skipped rather than failing the page, since
// the list is where a broken row gets fixed.
func aggregateRows(opts Options, rows []store.Row) []mapEntry {
	fields := mapFields(opts)
	if len(fields) == 0 {
		return nil
	}

	accessor := opts.Geometry
	if accessor == nil {
		accessor = defaultGeometryAccessor
	}

	var entries []mapEntry
	for _, row := range rows {
		values := make([]geometry.Value, 0, len(fields))
		for _, field := range fields {
			value, err := accessor(row, field)
			if err != nil {
				opts.Logger.Warn("changelist: read geometry",
					"resource", opts.Resource.Name,
					"field", field.Name,
					"error", err)
				continue
			}
			if value.IsZero() {
				continue
			}
			transformed, err := geometry.Transform(value, opts.DisplaySRID)
			if err != nil {
				opts.Logger.Warn("changelist: reproject geometry",
					"resource", opts.Resource.Name,
					"field", field.Name,
					"srid", value.SRID,
					"error", err)
				continue
			}
			values = append(values, transformed)
		}
		if len(values) == 0 {
			continue
		}
		combined, err := geometry.Collection(values, opts.DisplaySRID)
		if err != nil {
			opts.Logger.Warn("changelist: combine geometries",
				"resource", opts.Resource.Name,
				"error", err)
			continue
		}
		entries = append(entries, mapEntry{Row: row, Value: combined})
	}
	return entries
}

// buildInfoMap turns the aggregated entries into the shared list map, one
// popup per row linking back to its edit page.
func buildInfoMap(opts Options, entries []mapEntry) *olmap.InfoMap {
	infoMap := olmap.NewInfoMap(opts.Resource.Name, opts.DisplaySRID)
	infoMap.Options = mapOptions(opts)
	for _, entry := range entries {
		popup := olmap.PopupLink(editURL(opts, entry.Row), popupLabel(opts, entry.Row))
		infoMap.Add(entry.Value, popup)
	}
	return infoMap
}

// mapFields resolves which geometry fields feed the list map: the explicit
// option first, then the resource's admin.listFields metadata, then every
// top-level geometry field. Names not declared on the resource become
// synthetic geometry descriptors so an accessor hook can derive their values.
func mapFields(opts Options) []model.Field {
	names := opts.MapFields
	if len(names) == 0 {
		names = metadataListFields(opts.Resource)
	}
	if len(names) == 0 {
		return opts.Resource.GeometryFields()
	}

	fields := make([]model.Field, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if field, ok := opts.Resource.Field(name); ok {
			fields = append(fields, field)
			continue
		}
		fields = append(fields, model.Field{Name: name, Type: model.FieldTypeGeometry})
	}
	return fields
}

func metadataListFields(resource model.Resource) []string {
	raw := strings.TrimSpace(resource.Metadata[mapcfg.ListFieldsMetadataKey])
	if raw == "" {
		return nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil
	}
	return names
}

// mapOptions resolves the widget options forwarded to the map: the explicit
// option wins over the resource's admin.listOptions metadata.
func mapOptions(opts Options) map[string]any {
	if len(opts.MapOptions) > 0 {
		return opts.MapOptions
	}
	raw := strings.TrimSpace(opts.Resource.Metadata[mapcfg.ListOptionsMetadataKey])
	if raw == "" {
		return nil
	}
	var options map[string]any
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		opts.Logger.Warn("changelist: decode list options",
			"resource", opts.Resource.Name,
			"error", err)
		return nil
	}
	if len(options) == 0 {
		return nil
	}
	return options
}

// defaultGeometryAccessor reads a geometry straight from the row column.
// Missing and nil columns are not an error, they just contribute nothing;
// serialised payloads parse with the field's declared SRID as fallback.
func defaultGeometryAccessor(row store.Row, field model.Field) (geometry.Value, error) {
	value, ok := row[field.Name]
	if !ok || value == nil {
		return geometry.Value{}, nil
	}
	switch v := value.(type) {
	case geometry.Value:
		return v, nil
	case *geometry.Value:
		if v == nil {
			return geometry.Value{}, nil
		}
		return *v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return geometry.Value{}, nil
		}
		return geometry.Parse(v, fieldSRID(field))
	case []byte:
		if len(v) == 0 {
			return geometry.Value{}, nil
		}
		return geometry.Parse(string(v), fieldSRID(field))
	default:
		return geometry.Value{}, fmt.Errorf("changelist: field %q holds %T, not a geometry", field.Name, value)
	}
}

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
