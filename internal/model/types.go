package model

import (
	"fmt"
	"strings"
)

// FieldType is the simplified enum for admin-friendly field kinds.
type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeInteger  FieldType = "integer"
	FieldTypeNumber   FieldType = "number"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeArray    FieldType = "array"
	FieldTypeObject   FieldType = "object"
	FieldTypeGeometry FieldType = "geometry"
)

const (
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
)

// ValidationRule represents a single validation constraint applied to a field.
// Use the ValidationRule* constants to reference canonical OpenAPI-derived
// constraints (min/max, minLength/maxLength, pattern). Numeric bounds and length
// limits encode their threshold in Params["value"] while pattern rules preserve
// the original expression in Params["pattern"]. Boolean flags such as
// exclusivity are encoded as string values to keep JSON snapshots stable.
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Field models an individual input inside an admin edit form. Geometry fields
// carry their kind and SRID in Metadata under "geometry.kind"/"geometry.srid"
// and may name a widget group in Metadata["group"] so several fields share one
// map. Struct fields are annotated so renderers can serialise them directly.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Format      string            `json:"format,omitempty"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Default     any               `json:"default,omitempty"`
	Enum        []any             `json:"enum,omitempty"`
	Nested      []Field           `json:"nested,omitempty"`
	Items       *Field            `json:"items,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UIHints     map[string]string `json:"uiHints,omitempty"`
}

// IsGeometry reports whether the field holds spatial data.
func (f Field) IsGeometry() bool {
	return f.Type == FieldTypeGeometry
}

// Group returns the widget group the field belongs to, or its own name when
// no group was declared. Grouped geometry fields render on a shared map.
func (f Field) Group() string {
	if group := f.Metadata["group"]; group != "" {
		return group
	}
	return f.Name
}

// Resource is the top-level representation the admin consumes: one editable
// resource derived from a schema operation, with enough identity metadata to
// drive list pages, edit links, and map widgets.
type Resource struct {
	Name        string            `json:"name"`
	Title       string            `json:"title,omitempty"`
	OperationID string            `json:"operationId"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	IDField     string            `json:"idField"`
	LabelField  string            `json:"labelField,omitempty"`
	EditPath    string            `json:"editPath,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UIHints     map[string]string `json:"uiHints,omitempty"`
}

// Field returns the top-level field with the given name.
func (r Resource) Field(name string) (Field, bool) {
	for _, field := range r.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// GeometryFields returns the top-level geometry fields in declaration order.
func (r Resource) GeometryFields() []Field {
	var fields []Field
	for _, field := range r.Fields {
		if field.IsGeometry() {
			fields = append(fields, field)
		}
	}
	return fields
}

// FieldNames returns the top-level field names in order.
func (r Resource) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for _, field := range r.Fields {
		names = append(names, field.Name)
	}
	return names
}

// LabelFor returns the text one row of this resource is listed under: the
// label field's value when set, then the identifier, then the resource title,
// then its name. Values print the way fmt renders them.
func (r Resource) LabelFor(row map[string]any) string {
	for _, key := range []string{r.LabelField, r.IDField} {
		if key == "" {
			continue
		}
		if text := printValue(row[key]); text != "" {
			return text
		}
	}
	if title := strings.TrimSpace(r.Title); title != "" {
		return title
	}
	return r.Name
}

func printValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
