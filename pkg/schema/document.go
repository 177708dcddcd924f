package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Document wraps the raw schema payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a defensive copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Operation models the subset of OpenAPI operation metadata the admin needs
// to describe a resource: the request body schema carries the editable
// fields, the extensions carry the x-mapadmin configuration. The JSON tags
// keep serialized operation fixtures free of empty members.
type Operation struct {
	ID          string            `json:"ID"`
	Method      string            `json:"Method"`
	Path        string            `json:"Path"`
	Summary     string            `json:"Summary,omitempty"`
	Description string            `json:"Description,omitempty"`
	RequestBody Schema            `json:"RequestBody"`
	Responses   map[string]Schema `json:"Responses"`
	Extensions  map[string]any    `json:"Extensions,omitempty"`
}

// NewOperation validates core fields and initialises response maps.
func NewOperation(id, method, path string, request Schema, responses map[string]Schema) (Operation, error) {
	if id == "" {
		return Operation{}, errors.New("schema: operation id is required")
	}
	if method == "" {
		return Operation{}, errors.New("schema: operation method is required")
	}
	if path == "" {
		return Operation{}, errors.New("schema: operation path is required")
	}
	if responses == nil {
		responses = make(map[string]Schema)
	}

	return Operation{
		ID:          id,
		Method:      strings.ToUpper(method),
		Path:        path,
		RequestBody: request,
		Responses:   responses,
	}, nil
}

// MustNewOperation panics when construction fails, assisting fixtures/tests.
func MustNewOperation(id, method, path string, request Schema, responses map[string]Schema) Operation {
	op, err := NewOperation(id, method, path, request, responses)
	if err != nil {
		panic(err)
	}
	return op
}

// HasResponse reports whether a response code has a schema registered.
func (op Operation) HasResponse(code string) bool {
	_, ok := op.Responses[code]
	return ok
}

// Schema represents request/response bodies and nested fields within an
// operation.
type Schema struct {
	Ref              string            `json:"Ref,omitempty"`
	Type             string            `json:"Type,omitempty"`
	Format           string            `json:"Format,omitempty"`
	Title            string            `json:"Title,omitempty"`
	Description      string            `json:"Description,omitempty"`
	Default          any               `json:"Default,omitempty"`
	Enum             []any             `json:"Enum,omitempty"`
	Required         []string          `json:"Required,omitempty"`
	Properties       map[string]Schema `json:"Properties,omitempty"`
	Items            *Schema           `json:"Items,omitempty"`
	Minimum          *float64          `json:"Minimum,omitempty"`
	Maximum          *float64          `json:"Maximum,omitempty"`
	ExclusiveMinimum bool              `json:"ExclusiveMinimum,omitempty"`
	ExclusiveMaximum bool              `json:"ExclusiveMaximum,omitempty"`
	MinLength        *int              `json:"MinLength,omitempty"`
	MaxLength        *int              `json:"MaxLength,omitempty"`
	Pattern          string            `json:"Pattern,omitempty"`
	Extensions       map[string]any    `json:"Extensions,omitempty"`
}

// Clone creates a deep copy of the schema tree to avoid accidental mutation.
func (s Schema) Clone() Schema {
	cloned := s
	if len(s.Required) > 0 {
		cloned.Required = append([]string(nil), s.Required...)
	}
	if len(s.Enum) > 0 {
		cloned.Enum = append([]any(nil), s.Enum...)
	}
	if len(s.Properties) > 0 {
		cloned.Properties = make(map[string]Schema, len(s.Properties))
		for k, v := range s.Properties {
			cloned.Properties[k] = v.Clone()
		}
	}
	if s.Items != nil {
		items := s.Items.Clone()
		cloned.Items = &items
	}
	if s.Minimum != nil {
		min := *s.Minimum
		cloned.Minimum = &min
	}
	if s.Maximum != nil {
		max := *s.Maximum
		cloned.Maximum = &max
	}
	if s.MinLength != nil {
		length := *s.MinLength
		cloned.MinLength = &length
	}
	if s.MaxLength != nil {
		length := *s.MaxLength
		cloned.MaxLength = &length
	}
	if len(s.Extensions) > 0 {
		cloned.Extensions = make(map[string]any, len(s.Extensions))
		for k, v := range s.Extensions {
			cloned.Extensions[k] = v
		}
	}
	return cloned
}

// Validate performs basic sanity checks useful for callers before building
// resource models.
func (s Schema) Validate() error {
	if s.Type == "" && s.Ref == "" {
		return errors.New("schema: schema requires either type or ref")
	}
	if s.Type == "array" && s.Items == nil {
		return errors.New("schema: array schema must define items")
	}
	return nil
}

// DebugString renders the schema for logging without dumping the whole tree.
func (s Schema) DebugString() string {
	summary := fmt.Sprintf("type=%s", s.Type)
	if s.Ref != "" {
		summary += fmt.Sprintf(",ref=%s", s.Ref)
	}
	if s.Format != "" {
		summary += fmt.Sprintf(",format=%s", s.Format)
	}
	if len(s.Required) > 0 {
		summary += fmt.Sprintf(",required=%d", len(s.Required))
	}
	if len(s.Properties) > 0 {
		summary += fmt.Sprintf(",properties=%d", len(s.Properties))
	}
	if s.Items != nil {
		summary += ",items=true"
	}
	return summary
}
