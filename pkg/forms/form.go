package forms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/model"
)

// Form couples a resource's rewritten field list with the keymap needed to
// move data in and out of grouped map widgets.
type Form struct {
	resource model.Resource
	fields   []model.Field
	keymap   Keymap
}

// New builds a Form for the resource, collapsing grouped geometry fields.
func New(resource model.Resource) (*Form, error) {
	fields, keymap, err := ApplyMapFields(resource.Fields)
	if err != nil {
		return nil, fmt.Errorf("forms: apply map fields for %q: %w", resource.Name, err)
	}
	return &Form{
		resource: resource,
		fields:   fields,
		keymap:   keymap,
	}, nil
}

// Resource returns the resource the form was built from.
func (f *Form) Resource() model.Resource {
	return f.resource
}

// Fields returns the rewritten field list, grouped geometry fields collapsed.
func (f *Form) Fields() []model.Field {
	return append([]model.Field(nil), f.fields...)
}

// Keymap returns a copy of the grouping keymap.
func (f *Form) Keymap() Keymap {
	return f.keymap.Clone()
}

// BindInitial regroups per-field initial values for the form's widgets.
func (f *Form) BindInitial(initial map[string]any) map[string]any {
	return BindInitial(f.keymap, initial)
}

// Clean parses a raw submission (url.Values shaped) into typed values keyed
// by the ORIGINAL field names: geometry inputs are decoded from GeoJSON,
// EWKT, or WKT with the field's SRID as fallback, grouped submissions are
// split back into their source fields, and scalar fields pass through as
// strings. Empty geometry entries clean to nil. A required geometry field
// with no usable value fails.
func (f *Form) Clean(raw map[string][]string) (map[string]any, error) {
	cleaned := make(map[string]any, len(raw))

	for _, field := range f.fields {
		values, ok := raw[field.Name]
		if !ok {
			if field.Required && field.IsGeometry() {
				return nil, fmt.Errorf("forms: field %q is required", field.Name)
			}
			continue
		}

		if !field.IsGeometry() {
			if len(values) > 0 {
				cleaned[field.Name] = values[0]
			}
			continue
		}

		fallbackSRID := fieldSRID(field)
		if _, grouped := f.keymap[field.Name]; grouped {
			parsed := make([]any, len(values))
			empty := true
			for i, entry := range values {
				value, err := cleanGeometryEntry(entry, fallbackSRID)
				if err != nil {
					return nil, fmt.Errorf("forms: parse %q entry %d: %w", field.Name, i, err)
				}
				parsed[i] = value
				if value != nil {
					empty = false
				}
			}
			if field.Required && empty {
				return nil, fmt.Errorf("forms: field %q is required", field.Name)
			}
			cleaned[field.Name] = parsed
			continue
		}

		var entry string
		if len(values) > 0 {
			entry = values[0]
		}
		value, err := cleanGeometryEntry(entry, fallbackSRID)
		if err != nil {
			return nil, fmt.Errorf("forms: parse %q: %w", field.Name, err)
		}
		if value == nil && field.Required {
			return nil, fmt.Errorf("forms: field %q is required", field.Name)
		}
		cleaned[field.Name] = value
	}

	return ExtractCleaned(f.keymap, cleaned), nil
}

// cleanGeometryEntry returns nil for blank input, a geometry.Value otherwise.
func cleanGeometryEntry(entry string, fallbackSRID int) (any, error) {
	trimmed := strings.TrimSpace(entry)
	if trimmed == "" {
		return nil, nil
	}
	value, err := geometry.Parse(trimmed, fallbackSRID)
	if err != nil {
		return nil, err
	}
	return value, nil
}

func fieldSRID(field model.Field) int {
	raw := field.Metadata[model.MetadataGeometrySRID]
	if raw == "" {
		return geometry.SRIDWGS84
	}
	srid, err := strconv.Atoi(raw)
	if err != nil || srid <= 0 {
		return geometry.SRIDWGS84
	}
	return srid
}
