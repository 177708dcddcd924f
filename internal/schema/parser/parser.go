package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-mapadmin/pkg/schema"
)

// Parser implements schema.Parser using kin-openapi.
type Parser struct {
	options schema.ParserOptions
}

// Ensure the implementation satisfies the public interface.
var _ schema.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options schema.ParserOptions) schema.Parser {
	return &Parser{options: options}
}

// Operations converts a Document into a map keyed by operationId.
func (p *Parser) Operations(ctx context.Context, doc schema.Document) (map[string]schema.Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("schema parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: p.options.ResolveReferences,
	}

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("schema parser: load document: %w", err)
	}

	if spec.Paths == nil || spec.Paths.Len() == 0 {
		if !p.options.AllowPartialDocuments {
			return nil, errors.New("schema parser: document does not contain any paths")
		}
	}

	if err := p.resolveReferences(ctx, spec); err != nil {
		return nil, err
	}

	operations := make(map[string]schema.Operation)
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			p.collectOperation(ctx, operations, "GET", path, item.Get)
			p.collectOperation(ctx, operations, "PUT", path, item.Put)
			p.collectOperation(ctx, operations, "POST", path, item.Post)
			p.collectOperation(ctx, operations, "DELETE", path, item.Delete)
			p.collectOperation(ctx, operations, "PATCH", path, item.Patch)
		}
	}

	if len(operations) == 0 && !p.options.AllowPartialDocuments {
		return nil, errors.New("schema parser: no operations extracted")
	}

	return operations, nil
}

func (p *Parser) resolveReferences(ctx context.Context, spec *openapi3.T) error {
	if !p.options.ResolveReferences {
		return nil
	}
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return fmt.Errorf("schema parser: validate: %w", err)
	}
	return nil
}

func (p *Parser) collectOperation(ctx context.Context, target map[string]schema.Operation, method, path string, operation *openapi3.Operation) {
	if ctx.Err() != nil {
		return
	}
	if operation == nil {
		return
	}
	opID := operation.OperationID
	if opID == "" {
		opID = strings.ToLower(method) + ":" + path
	}
	requestSchema := p.extractRequestSchema(operation.RequestBody)
	responseSchemas := p.extractResponseSchemas(operation.Responses)

	op, err := schema.NewOperation(opID, method, path, requestSchema, responseSchemas)
	if err != nil {
		// Invalid operations are skipped but noted by leaving them out.
		return
	}
	op.Summary = operation.Summary
	op.Description = operation.Description
	op.Extensions = extractExtensions(operation.Extensions)
	target[opID] = op
}

func (p *Parser) extractRequestSchema(requestBody *openapi3.RequestBodyRef) schema.Schema {
	if requestBody == nil {
		return schema.Schema{}
	}
	if requestBody.Value == nil {
		return schema.Schema{Ref: requestBody.Ref}
	}
	content := requestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok {
			return convertSchema(mt.Schema)
		}
	}
	for _, mt := range content {
		return convertSchema(mt.Schema)
	}
	return schema.Schema{}
}

func (p *Parser) extractResponseSchemas(responses *openapi3.Responses) map[string]schema.Schema {
	if responses == nil || responses.Len() == 0 {
		return nil
	}
	result := make(map[string]schema.Schema)
	for status, ref := range responses.Map() {
		if ref == nil {
			continue
		}
		var converted schema.Schema
		if ref.Value == nil {
			converted = schema.Schema{Ref: ref.Ref}
		} else {
			content := ref.Value.Content
			if len(content) == 0 {
				continue
			}
			if mt, ok := content["application/json"]; ok {
				converted = convertSchema(mt.Schema)
			} else {
				for _, mt := range content {
					converted = convertSchema(mt.Schema)
					break
				}
			}
			if converted.Description == "" && ref.Value.Description != nil {
				converted.Description = *ref.Value.Description
			}
		}
		if converted.Ref == "" && converted.Type == "" && converted.Items == nil && len(converted.Properties) == 0 {
			continue
		}
		result[status] = converted
	}
	return result
}

func convertSchema(ref *openapi3.SchemaRef) schema.Schema {
	return convertSchemaGuarded(ref, make(map[*openapi3.Schema]bool))
}

// convertSchemaGuarded walks a resolved schema tree. The visited set holds
// the schemas on the current descent path so cyclic references collapse to
// a bare Ref instead of recursing forever.
func convertSchemaGuarded(ref *openapi3.SchemaRef, visited map[*openapi3.Schema]bool) schema.Schema {
	if ref == nil {
		return schema.Schema{}
	}
	if ref.Value == nil {
		return schema.Schema{Ref: ref.Ref}
	}
	if visited[ref.Value] {
		return schema.Schema{Ref: ref.Ref}
	}
	visited[ref.Value] = true
	defer delete(visited, ref.Value)

	src := ref.Value
	converted := schema.Schema{
		Ref:         ref.Ref,
		Type:        firstSchemaType(src.Type),
		Format:      src.Format,
		Title:       src.Title,
		Description: src.Description,
		Default:     src.Default,
	}

	if len(src.Required) > 0 {
		converted.Required = append([]string(nil), src.Required...)
	}
	if len(src.Enum) > 0 {
		converted.Enum = append([]any(nil), src.Enum...)
	}
	if len(src.Properties) > 0 {
		properties := make(map[string]schema.Schema, len(src.Properties))
		for name, property := range src.Properties {
			properties[name] = convertSchemaGuarded(property, visited)
		}
		converted.Properties = properties
	}
	if src.Items != nil {
		items := convertSchemaGuarded(src.Items, visited)
		converted.Items = &items
	}
	if src.Min != nil {
		value := *src.Min
		converted.Minimum = &value
	}
	if src.Max != nil {
		value := *src.Max
		converted.Maximum = &value
	}
	converted.ExclusiveMinimum = src.ExclusiveMin
	converted.ExclusiveMaximum = src.ExclusiveMax
	if src.MinLength != 0 {
		value := int(src.MinLength)
		converted.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		converted.MaxLength = &value
	}
	if src.Pattern != "" {
		converted.Pattern = src.Pattern
	}
	converted.Extensions = extractExtensions(src.Extensions)
	mergeAllOf(&converted, src.AllOf, visited)
	return converted
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return strings.Join(values, ",")
	}
}

// extensionNamespace is the block-form extension carrying map-admin
// configuration; single values may travel as x-mapadmin-<key> instead.
const extensionNamespace = "x-mapadmin"

func extractExtensions(raw map[string]any) map[string]any {
	if len(raw) == 0 {
		return nil
	}

	result := make(map[string]any)
	for key, value := range raw {
		switch {
		case key == extensionNamespace:
			if mapped, ok := cloneMap(value); ok && len(mapped) > 0 {
				result[key] = mapped
			}
		case strings.HasPrefix(key, extensionNamespace+"-"):
			result[key] = value
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// mergeAllOf folds allOf members into the target so composed request
// schemas surface a single flat set of properties. Earlier entries win on
// property collisions; required names and extensions accumulate.
func mergeAllOf(target *schema.Schema, refs openapi3.SchemaRefs, visited map[*openapi3.Schema]bool) {
	if target == nil || len(refs) == 0 {
		return
	}
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		member := convertSchemaGuarded(ref, visited)
		if target.Type == "" {
			target.Type = member.Type
		}
		if target.Format == "" {
			target.Format = member.Format
		}
		if len(member.Properties) > 0 {
			if target.Properties == nil {
				target.Properties = make(map[string]schema.Schema, len(member.Properties))
			}
			for name, property := range member.Properties {
				if _, exists := target.Properties[name]; !exists {
					target.Properties[name] = property
				}
			}
		}
		target.Required = appendMissing(target.Required, member.Required...)
		if len(member.Extensions) > 0 {
			if target.Extensions == nil {
				target.Extensions = make(map[string]any, len(member.Extensions))
			}
			for key, value := range member.Extensions {
				target.Extensions[key] = value
			}
		}
	}
}

func appendMissing(existing []string, values ...string) []string {
	for _, value := range values {
		seen := false
		for _, have := range existing {
			if have == value {
				seen = true
				break
			}
		}
		if !seen {
			existing = append(existing, value)
		}
	}
	return existing
}

func cloneMap(value any) (map[string]any, bool) {
	mapped, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	cloned := make(map[string]any, len(mapped))
	for k, v := range mapped {
		cloned[k] = v
	}
	return cloned, true
}
