package components

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-mapadmin/pkg/model"
)

const templatePrefix = "templates/components/"

const (
	inputTemplate    = templatePrefix + "input.tmpl"
	textareaTemplate = templatePrefix + "textarea.tmpl"
	selectTemplate   = templatePrefix + "select.tmpl"
	checkboxTemplate = templatePrefix + "checkbox.tmpl"
)

const (
	inputPartial    = "forms.input"
	textareaPartial = "forms.textarea"
	selectPartial   = "forms.select"
	checkboxPartial = "forms.checkbox"
)

// controlIDPrefix namespaces generated control ids so page scripts and labels
// can address them without clashing with host-page ids.
const controlIDPrefix = "ma-"

// NewDefaultRegistry returns a registry with the built-in component set:
// template-backed scalar controls, hand-built object/array containers, and the
// map widgets.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameInput, Descriptor{
		Renderer: templateComponentRenderer(inputPartial, inputTemplate),
	})
	registry.MustRegister(NameTextarea, Descriptor{
		Renderer: templateComponentRenderer(textareaPartial, textareaTemplate),
	})
	registry.MustRegister(NameSelect, Descriptor{
		Renderer: selectRenderer(),
	})
	registry.MustRegister(NameBoolean, Descriptor{
		Renderer: checkboxRenderer(),
	})
	registry.MustRegister(NameHidden, Descriptor{
		Renderer: hiddenRenderer(),
	})
	registry.MustRegister(NameObject, Descriptor{
		Renderer: objectRenderer(),
	})
	registry.MustRegister(NameArray, Descriptor{
		Renderer: arrayRenderer(),
	})
	registry.MustRegister(NameMap, mapDescriptor())
	registry.MustRegister(NameInfoMap, infoMapDescriptor())

	return registry
}

// basePayload assembles the template context every template-backed component
// shares. Value coercion happens here so templates stay declarative: they
// compare strings and booleans instead of re-deriving types.
func basePayload(field model.Field, data ComponentData) map[string]any {
	return map[string]any{
		"field":      field,
		"config":     data.Config,
		"theme":      data.Theme,
		"value":      data.Value,
		"value_text": valueText(field, data.Value),
		"errors":     data.Errors,
		"invalid":    len(data.Errors) > 0,
		"control_id": controlID(field.Name),
		"input_type": htmlInputType(field),
	}
}

func renderComponentTemplate(buf *bytes.Buffer, data ComponentData, partialKey, templateName string, payload map[string]any) error {
	if data.Template == nil {
		return fmt.Errorf("components: template renderer not configured for %q", templateName)
	}

	target := data.PartialOverride(partialKey, templateName)

	rendered, err := data.Template.RenderTemplate(target, payload)
	if err != nil {
		return fmt.Errorf("components: render template %q: %w", target, err)
	}

	buf.WriteString(rendered)
	return nil
}

// templateComponentRenderer renders a control through an embedded template,
// honouring theme partial overrides.
func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		return renderComponentTemplate(buf, data, partialKey, templateName, basePayload(field, data))
	}
}

func selectRenderer() Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		payload := basePayload(field, data)
		multiple := field.Type == model.FieldTypeArray
		payload["multiple"] = multiple
		payload["options"] = selectOptions(field, data.Value, multiple)
		return renderComponentTemplate(buf, data, selectPartial, selectTemplate, payload)
	}
}

func checkboxRenderer() Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		value := data.Value
		if value == nil {
			value = field.Default
		}
		payload := basePayload(field, data)
		payload["checked"] = truthy(value)
		return renderComponentTemplate(buf, data, checkboxPartial, checkboxTemplate, payload)
	}
}

func hiddenRenderer() Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		value := data.Value
		if value == nil {
			value = field.Default
		}
		buf.WriteString(`<input type="hidden" id="`)
		buf.WriteString(html.EscapeString(controlID(field.Name)))
		buf.WriteString(`" name="`)
		buf.WriteString(html.EscapeString(field.Name))
		buf.WriteString(`"`)
		if value != nil {
			buf.WriteString(` value="`)
			buf.WriteString(html.EscapeString(stringFromAny(value)))
			buf.WriteString(`"`)
		}
		buf.WriteString(">\n")
		return nil
	}
}

// objectRenderer groups nested fields inside a fieldset. The children run
// through the full component pipeline via RenderChild so overrides and theme
// partials apply at every depth.
func objectRenderer() Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if data.RenderChild == nil {
			return fmt.Errorf("components: object %q requires a child renderer", field.Name)
		}

		buf.WriteString(`<fieldset class="mapadmin-object" data-mapadmin-object="`)
		buf.WriteString(html.EscapeString(field.Name))
		buf.WriteString("\">\n")

		if legend := strings.TrimSpace(field.Label); legend != "" {
			buf.WriteString(`    <legend class="mapadmin-object-legend">`)
			buf.WriteString(html.EscapeString(legend))
			buf.WriteString("</legend>\n")
		}

		for _, nested := range field.Nested {
			rendered, err := data.RenderChild(nested)
			if err != nil {
				return fmt.Errorf("components: render nested field %q: %w", nested.Name, err)
			}
			writeIndented(buf, rendered)
		}

		buf.WriteString("</fieldset>\n")
		return nil
	}
}

// arrayRenderer emits a repeating-group container: the item control rendered
// once inside a <template> element the runtime clones per entry, plus an add
// button. Arrays without an item schema render nothing.
func arrayRenderer() Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if field.Items == nil {
			return nil
		}
		if data.RenderChild == nil {
			return fmt.Errorf("components: array %q requires a child renderer", field.Name)
		}

		item, err := data.RenderChild(*field.Items)
		if err != nil {
			return fmt.Errorf("components: render array item for %q: %w", field.Name, err)
		}

		buf.WriteString(`<div class="mapadmin-array" data-mapadmin-array="`)
		buf.WriteString(html.EscapeString(field.Name))
		buf.WriteString("\">\n")
		buf.WriteString("    <template data-mapadmin-array-item>\n")
		writeIndented(buf, item)
		buf.WriteString("    </template>\n")
		buf.WriteString("    <div data-mapadmin-array-items></div>\n")
		buf.WriteString(`    <button type="button" class="mapadmin-array-add" data-mapadmin-array-add>Add</button>` + "\n")
		buf.WriteString("</div>\n")
		return nil
	}
}

func writeIndented(buf *bytes.Buffer, markup string) {
	for _, line := range strings.Split(markup, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		buf.WriteString("    ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
}

func controlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return controlIDPrefix + trimmed
}

// htmlInputType maps field types and formats onto HTML input type attributes.
func htmlInputType(field model.Field) string {
	switch field.Type {
	case model.FieldTypeInteger, model.FieldTypeNumber:
		return "number"
	case model.FieldTypeBoolean:
		return "checkbox"
	}
	switch field.Format {
	case "email":
		return "email"
	case "uri", "url":
		return "url"
	case "date":
		return "date"
	case "date-time", "datetime":
		return "datetime-local"
	case "time":
		return "time"
	case "password":
		return "password"
	}
	return "text"
}

// selectOptions folds the field enum into option contexts with selection
// state resolved against the current value. Optional single selects lead with
// a blank option so the control can submit "unset".
func selectOptions(field model.Field, value any, multiple bool) []map[string]any {
	selected := selectedSet(value)
	if len(selected) == 0 {
		selected = selectedSet(field.Default)
	}

	options := make([]map[string]any, 0, len(field.Enum)+1)
	if !field.Required && !multiple {
		options = append(options, map[string]any{
			"value":    "",
			"label":    "",
			"selected": false,
		})
	}
	for _, option := range field.Enum {
		text := stringFromAny(option)
		_, isSelected := selected[text]
		options = append(options, map[string]any{
			"value":    text,
			"label":    text,
			"selected": isSelected,
		})
	}
	return options
}

func selectedSet(value any) map[string]struct{} {
	out := make(map[string]struct{})
	switch v := value.(type) {
	case nil:
	case string:
		if v != "" {
			out[v] = struct{}{}
		}
	case []string:
		for _, item := range v {
			out[item] = struct{}{}
		}
	case []any:
		for _, item := range v {
			out[stringFromAny(item)] = struct{}{}
		}
	default:
		out[stringFromAny(v)] = struct{}{}
	}
	return out
}

// valueText renders a field value as the string a text control displays,
// falling back to the schema default when the value is unset.
func valueText(field model.Field, value any) string {
	if value == nil {
		value = field.Default
	}
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return stringFromAny(v)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(strings.ToLower(v))
		return trimmed == "true" || trimmed == "1" || trimmed == "yes" || trimmed == "on"
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

func stringFromAny(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		// JSON decoding yields float64 for integral values; trim the decimal.
		if v == float64(int64(v)) {
			return fmt.Sprint(int64(v))
		}
		return fmt.Sprint(v)
	default:
		return fmt.Sprint(v)
	}
}
