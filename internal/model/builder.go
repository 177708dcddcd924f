package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-mapadmin/pkg/schema"
)

const (
	extensionNamespace = "x-mapadmin"

	// adminExtensionNamespace carries generic admin hints shared with other
	// tooling. Its keys land twice: prefixed as "admin.<key>" and, when not
	// already claimed by the primary namespace, unprefixed.
	adminExtensionNamespace = "x-admin"
)

// Metadata keys the builder lifts from the extension namespace into Resource
// identity fields instead of leaving them in the metadata map.
const (
	metadataKeyName       = "name"
	metadataKeyTitle      = "title"
	metadataKeyIDField    = "id-field"
	metadataKeyLabelField = "label-field"
	metadataKeyEditPath   = "edit-path"
)

// Builder converts schema operations into admin resources.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	if options.DefaultSRID > 0 {
		opts.DefaultSRID = options.DefaultSRID
	}
	if options.IDField != "" {
		opts.IDField = options.IDField
	}
	return &Builder{opts: opts}
}

// Build transforms a schema operation into a Resource suitable for admin
// pages. The request body supplies the editable fields; the x-mapadmin
// extensions supply resource identity (name, title, label field, edit path).
func (b *Builder) Build(op schema.Operation) (Resource, error) {
	if err := validateOperation(op); err != nil {
		return Resource{}, err
	}

	resource := Resource{
		OperationID: op.ID,
		Endpoint:    op.Path,
		Method:      strings.ToUpper(op.Method),
		Summary:     op.Summary,
		Description: op.Description,
		IDField:     b.opts.IDField,
	}

	if resource.Metadata == nil {
		resource.Metadata = make(map[string]string)
	}
	if op.Summary != "" {
		resource.Metadata["summary"] = op.Summary
	}
	if op.Description != "" {
		resource.Metadata["description"] = op.Description
	}
	opExt := metadataFromExtensions(op.Extensions)
	bodyExt := metadataFromExtensions(op.RequestBody.Extensions)
	mergeMetadata(resource.Metadata, opExt)
	mergeMetadata(resource.Metadata, bodyExt)
	resource.UIHints = mergeUIHints(resource.UIHints, filterUIHints(opExt))
	resource.UIHints = mergeUIHints(resource.UIHints, filterUIHints(bodyExt))

	fields, err := b.fieldsFromSchema("", op.RequestBody, true)
	if err != nil {
		return Resource{}, err
	}
	resource.Fields = fields

	b.applyIdentity(&resource)

	if len(resource.Metadata) == 0 {
		resource.Metadata = nil
	}
	if len(resource.UIHints) == 0 {
		resource.UIHints = nil
	}

	return resource, nil
}

// applyIdentity resolves the resource name, title, label field, and edit
// path: explicit extension metadata wins, then conventions over the path and
// field set fill the gaps.
func (b *Builder) applyIdentity(resource *Resource) {
	if name := resource.Metadata[metadataKeyName]; name != "" {
		resource.Name = name
		delete(resource.Metadata, metadataKeyName)
	}
	if resource.Name == "" {
		resource.Name = resourceNameFromPath(resource.Endpoint)
	}
	if resource.Name == "" {
		resource.Name = resource.OperationID
	}

	if title := resource.Metadata[metadataKeyTitle]; title != "" {
		resource.Title = title
		delete(resource.Metadata, metadataKeyTitle)
	}
	if resource.Title == "" {
		resource.Title = b.opts.Labeler(resource.Name)
	}

	if idField := resource.Metadata[metadataKeyIDField]; idField != "" {
		resource.IDField = idField
		delete(resource.Metadata, metadataKeyIDField)
	}

	if labelField := resource.Metadata[metadataKeyLabelField]; labelField != "" {
		resource.LabelField = labelField
		delete(resource.Metadata, metadataKeyLabelField)
	}
	if resource.LabelField == "" {
		resource.LabelField = defaultLabelField(resource.Fields, resource.IDField)
	}

	if editPath := resource.Metadata[metadataKeyEditPath]; editPath != "" {
		resource.EditPath = editPath
		delete(resource.Metadata, metadataKeyEditPath)
	}
}

// resourceNameFromPath takes the last concrete path segment, skipping
// parameter placeholders: "/districts/{id}" yields "districts".
func resourceNameFromPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		segment := segments[i]
		if segment == "" || strings.ContainsAny(segment, "{}:") {
			continue
		}
		return segment
	}
	return ""
}

// defaultLabelField prefers a conventional display field over the id.
func defaultLabelField(fields []Field, idField string) string {
	for _, candidate := range []string{"name", "title", "label"} {
		for _, field := range fields {
			if field.Name == candidate && field.Type == FieldTypeString {
				return candidate
			}
		}
	}
	return idField
}

func (b *Builder) fieldsFromSchema(name string, s schema.Schema, required bool) ([]Field, error) {
	if s.Ref != "" && s.Type == "" && len(s.Properties) == 0 {
		// Unresolved reference; capture metadata for consumers to handle.
		field := Field{
			Name:        name,
			Type:        FieldTypeObject,
			Required:    required,
			Label:       b.opts.Labeler(name),
			Description: s.Description,
			Metadata:    map[string]string{},
		}
		field.Metadata["$ref"] = s.Ref
		refExt := metadataFromExtensions(s.Extensions)
		mergeMetadata(field.Metadata, refExt)
		field.UIHints = mergeUIHints(field.UIHints, filterUIHints(refExt))
		field.applyUIHintAttributes()
		field.normalizeMetadata()
		field.normalizeUIHints()
		return []Field{field}, nil
	}

	if kind, ok := geometryKindFromFormat(s.Format); ok {
		field := b.fieldFromPrimitive(name, s, required)
		applyGeometryMetadata(&field, kind, b.opts.DefaultSRID)
		return []Field{field}, nil
	}

	switch s.Type {
	case "object", "":
		return b.fieldsFromObject(name, s, required)
	case "array":
		field, err := b.fieldFromArray(name, s, required)
		if err != nil {
			return nil, err
		}
		return []Field{field}, nil
	default:
		field := b.fieldFromPrimitive(name, s, required)
		return []Field{field}, nil
	}
}

func (b *Builder) fieldsFromObject(name string, s schema.Schema, required bool) ([]Field, error) {
	var fields []Field
	requiredSet := make(map[string]struct{}, len(s.Required))
	for _, item := range s.Required {
		requiredSet[item] = struct{}{}
	}

	propNames := make([]string, 0, len(s.Properties))
	for propName := range s.Properties {
		propNames = append(propNames, propName)
	}
	sort.Strings(propNames)

	for _, propName := range propNames {
		propSchema := s.Properties[propName]
		_, isRequired := requiredSet[propName]
		converted, err := b.fieldsFromSchema(propName, propSchema, isRequired)
		if err != nil {
			return nil, err
		}
		fields = append(fields, converted...)
	}

	if name != "" {
		// Wrap nested properties inside a parent object field.
		parent := Field{
			Name:        name,
			Type:        FieldTypeObject,
			Label:       b.opts.Labeler(name),
			Description: s.Description,
			Required:    required,
			Nested:      fields,
		}
		if s.Default != nil {
			parent.Default = s.Default
		}
		if len(s.Enum) > 0 {
			parent.Enum = append([]any(nil), s.Enum...)
		}
		applyValidations(&parent, s)
		parentExt := metadataFromExtensions(s.Extensions)
		mergeMetadata(parent.ensureMetadata(), parentExt)
		parent.UIHints = mergeUIHints(parent.UIHints, filterUIHints(parentExt))
		parent.applyUIHintAttributes()
		parent.normalizeMetadata()
		parent.normalizeUIHints()
		return []Field{parent}, nil
	}

	return fields, nil
}

func (b *Builder) fieldFromArray(name string, s schema.Schema, required bool) (Field, error) {
	if s.Items == nil {
		return Field{}, fmt.Errorf("model builder: array field %q missing items", name)
	}
	var itemField *Field
	nested, err := b.fieldsFromSchema(name+"Item", *s.Items, false)
	if err != nil {
		return Field{}, err
	}
	if len(nested) > 0 {
		item := nested[0]
		itemField = &item
	}

	field := Field{
		Name:        name,
		Type:        FieldTypeArray,
		Label:       b.opts.Labeler(name),
		Description: s.Description,
		Required:    required,
		Items:       itemField,
	}
	if s.Default != nil {
		field.Default = s.Default
	}
	if len(s.Enum) > 0 {
		field.Enum = append([]any(nil), s.Enum...)
	}
	applyValidations(&field, s)
	arrayExt := metadataFromExtensions(s.Extensions)
	mergeMetadata(field.ensureMetadata(), arrayExt)
	field.UIHints = mergeUIHints(field.UIHints, filterUIHints(arrayExt))
	field.applyUIHintAttributes()
	field.normalizeMetadata()
	field.normalizeUIHints()
	return field, nil
}

func (b *Builder) fieldFromPrimitive(name string, s schema.Schema, required bool) Field {
	field := Field{
		Name:        name,
		Type:        mapType(s.Type),
		Format:      s.Format,
		Label:       b.opts.Labeler(name),
		Description: s.Description,
		Required:    required,
		Default:     s.Default,
	}
	if len(s.Enum) > 0 {
		field.Enum = append([]any(nil), s.Enum...)
	}
	applyValidations(&field, s)
	primitiveExt := metadataFromExtensions(s.Extensions)
	mergeMetadata(field.ensureMetadata(), primitiveExt)
	field.UIHints = mergeUIHints(field.UIHints, filterUIHints(primitiveExt))
	field.UIHints = mergeUIHints(field.UIHints, mapHintsFromExtensions(s.Extensions))
	applyFormatHints(&field)
	field.applyUIHintAttributes()
	field.normalizeMetadata()
	field.normalizeUIHints()
	return field
}

func mapType(schemaType string) FieldType {
	switch schemaType {
	case "integer":
		return FieldTypeInteger
	case "number":
		return FieldTypeNumber
	case "boolean":
		return FieldTypeBoolean
	case "array":
		return FieldTypeArray
	case "object":
		return FieldTypeObject
	default:
		return FieldTypeString
	}
}

func applyValidations(field *Field, s schema.Schema) {
	if field == nil {
		return
	}

	if s.Minimum != nil {
		params := map[string]string{
			"value": formatFloat(*s.Minimum),
		}
		if s.ExclusiveMinimum {
			params["exclusive"] = "true"
		}
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRuleMin,
			Params: params,
		})
	}

	if s.Maximum != nil {
		params := map[string]string{
			"value": formatFloat(*s.Maximum),
		}
		if s.ExclusiveMaximum {
			params["exclusive"] = "true"
		}
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRuleMax,
			Params: params,
		})
	}

	if s.MinLength != nil {
		field.Validations = append(field.Validations, ValidationRule{
			Kind: ValidationRuleMinLength,
			Params: map[string]string{
				"value": formatInt(*s.MinLength),
			},
		})
	}

	if s.MaxLength != nil {
		field.Validations = append(field.Validations, ValidationRule{
			Kind: ValidationRuleMaxLength,
			Params: map[string]string{
				"value": formatInt(*s.MaxLength),
			},
		})
	}

	if s.Pattern != "" {
		field.Validations = append(field.Validations, ValidationRule{
			Kind: ValidationRulePattern,
			Params: map[string]string{
				"pattern": s.Pattern,
			},
		})
	}

	if len(field.Validations) == 0 {
		field.Validations = nil
	}
}

func metadataFromExtensions(ext map[string]any) map[string]string {
	if len(ext) == 0 {
		return nil
	}

	result := make(map[string]string)

	if nested := toAnyMap(ext[extensionNamespace]); len(nested) > 0 {
		for _, nestedKey := range sortedAnyKeys(nested) {
			if nestedKey == "map" {
				// Map blocks are handled by mapHintsFromExtensions.
				continue
			}
			if str, ok := CanonicalizeExtensionValue(nested[nestedKey]); ok {
				result[nestedKey] = str
			}
		}
	}

	for _, key := range sortedAnyKeys(ext) {
		if !strings.HasPrefix(key, extensionNamespace+"-") {
			continue
		}
		trimmed := strings.TrimPrefix(key, extensionNamespace+"-")
		if trimmed == "map" {
			continue
		}
		if str, ok := CanonicalizeExtensionValue(ext[key]); ok {
			result[trimmed] = str
		}
	}

	if nested := toAnyMap(ext[adminExtensionNamespace]); len(nested) > 0 {
		for _, nestedKey := range sortedAnyKeys(nested) {
			str, ok := CanonicalizeExtensionValue(nested[nestedKey])
			if !ok {
				continue
			}
			camel := camelizeHintKey(nestedKey)
			result["admin."+camel] = str
			if _, exists := result[camel]; !exists {
				result[camel] = str
			}
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

func sortedAnyKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// camelizeHintKey folds dashed/underscored hint keys into the camelCase form
// the curated UI hint list uses: "visibility-rule" becomes "visibilityRule".
func camelizeHintKey(key string) string {
	words := splitWords(key)
	if len(words) == 0 {
		return key
	}
	var out strings.Builder
	for i, word := range words {
		if i == 0 {
			out.WriteString(strings.ToLower(word))
			continue
		}
		out.WriteString(titleCase(word))
	}
	return out.String()
}

func mergeMetadata(target map[string]string, updates map[string]string) {
	if len(updates) == 0 {
		return
	}
	if target == nil {
		return
	}

	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		target[key] = updates[key]
	}
}

func mergeUIHints(target map[string]string, updates map[string]string) map[string]string {
	if len(updates) == 0 {
		return target
	}
	if target == nil {
		target = make(map[string]string, len(updates))
	}
	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		target[key] = updates[key]
	}
	return target
}

func applyFormatHints(field *Field) {
	if field == nil {
		return
	}

	format := strings.TrimSpace(strings.ToLower(field.Format))
	if format == "" {
		return
	}

	if field.UIHints != nil {
		if current := strings.TrimSpace(field.UIHints["inputType"]); current != "" {
			return
		}
	}

	var inputType string
	switch format {
	case "date":
		inputType = "date"
	case "time":
		inputType = "time"
	case "date-time", "datetime", "datetime-local":
		inputType = "datetime-local"
	case "email":
		inputType = "email"
	case "uri", "iri", "uri-reference", "iri-reference", "url":
		inputType = "url"
	case "tel", "phone":
		inputType = "tel"
	case "password":
		inputType = "password"
	case "byte", "binary":
		inputType = "file"
	default:
		return
	}

	if field.UIHints == nil {
		field.UIHints = make(map[string]string, 1)
	}
	field.UIHints["inputType"] = inputType
}

func (f *Field) ensureMetadata() map[string]string {
	if f.Metadata == nil {
		f.Metadata = make(map[string]string)
	}
	return f.Metadata
}

func (f *Field) normalizeMetadata() {
	if f.Metadata != nil && len(f.Metadata) == 0 {
		f.Metadata = nil
	}
}

func (f *Field) normalizeUIHints() {
	if f.UIHints != nil && len(f.UIHints) == 0 {
		f.UIHints = nil
	}
}

func (f *Field) applyUIHintAttributes() {
	if len(f.UIHints) == 0 {
		return
	}
	if f.Placeholder == "" {
		if placeholder, ok := f.UIHints["placeholder"]; ok && placeholder != "" {
			f.Placeholder = placeholder
		}
	}
	if label, ok := f.UIHints["label"]; ok && label != "" {
		f.Label = label
	}
	if hint, ok := f.UIHints["hint"]; ok && hint != "" && f.Description == "" {
		f.Description = hint
	}
	if help, ok := f.UIHints["helpText"]; ok && help != "" {
		// Attach as an additional metadata entry so renderers without dedicated
		// UI hint support can still surface the string.
		if f.Metadata == nil {
			f.Metadata = make(map[string]string)
		}
		f.Metadata["helpText"] = help
	}
}

func toAnyMap(value any) map[string]any {
	switch mapped := value.(type) {
	case map[string]any:
		cloned := make(map[string]any, len(mapped))
		for key, val := range mapped {
			cloned[key] = val
		}
		return cloned
	case map[string]string:
		cloned := make(map[string]any, len(mapped))
		for key, val := range mapped {
			cloned[key] = val
		}
		return cloned
	default:
		return nil
	}
}

func toString(value any) string {
	str, ok := toStringValue(value)
	if !ok {
		return ""
	}
	return str
}

func toStringValue(value any) (string, bool) {
	if value == nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func filterUIHints(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	result := make(map[string]string)
	for key, value := range metadata {
		if value == "" {
			continue
		}
		if IsAllowedUIHintKey(key) {
			result[key] = value
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatInt(value int) string {
	return strconv.Itoa(value)
}
