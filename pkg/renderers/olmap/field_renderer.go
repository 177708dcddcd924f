package olmap

import (
	"bytes"
	"fmt"
	"html"
	"slices"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/render/template"
	"github.com/goliatone/go-mapadmin/pkg/renderers/olmap/components"
)

// rendererTheme carries the subset of the resolved theme the component
// pipeline consumes: partial overrides, design tokens, and the asset resolver.
type rendererTheme struct {
	Partials map[string]string
	Tokens   map[string]string
	CSSVars  map[string]string
	AssetURL func(string) string
}

// fieldState resolves submitted values and validation errors by dotted field
// path. A nil state renders every control empty and error-free.
type fieldState struct {
	values map[string]any
	errors map[string][]string
}

func newFieldState(values map[string]any, errors map[string][]string) *fieldState {
	if len(values) == 0 && len(errors) == 0 {
		return nil
	}
	return &fieldState{values: values, errors: errors}
}

func (s *fieldState) valueFor(path string) any {
	if s == nil || len(s.values) == 0 {
		return nil
	}
	if value, ok := s.values[path]; ok {
		return value
	}
	return lookupNested(s.values, path)
}

func (s *fieldState) errorsFor(path string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[path]
}

// lookupNested walks dotted paths through nested maps so callers can supply
// either flat dotted keys or structured value trees.
func lookupNested(values map[string]any, path string) any {
	segments := strings.Split(path, ".")
	if len(segments) < 2 {
		return nil
	}
	var current any = values
	for _, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = node[segment]
		if !ok {
			return nil
		}
	}
	return current
}

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	overrides map[string]string
	theme     rendererTheme
	state     *fieldState

	usedComponents map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, overrides map[string]string, theme rendererTheme, state *fieldState) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates:      templates,
		registry:       registry,
		overrides:      cloneStringMap(overrides),
		theme:          theme,
		state:          state,
		usedComponents: make(map[string]struct{}),
	}
}

func (r *componentRenderer) render(field model.Field, path string) (string, error) {
	componentName := r.overrideFor(path, field.Name)
	if componentName == "" {
		componentName = resolveComponentName(field)
	}
	if componentName == "" {
		componentName = components.NameInput
	}

	descriptor, ok := r.registry.Descriptor(componentName)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", componentName, path)
	}

	config, err := parseComponentConfig(stringFromMap(field.Metadata, componentConfigMetadataKey))
	if err != nil {
		return "", fmt.Errorf("parse component config for field %q: %w", path, err)
	}

	data := components.ComponentData{
		Template:      r.templates,
		Config:        config,
		RenderChild:   r.childRenderer(path),
		Value:         r.state.valueFor(path),
		Errors:        r.state.errorsFor(path),
		Theme:         r.theme.Tokens,
		ThemePartials: r.theme.Partials,
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", componentName, path, err)
	}

	r.usedComponents[componentName] = struct{}{}

	return buildFieldMarkup(field, componentName, control.String(), data.Errors), nil
}

func (r *componentRenderer) childRenderer(parentPath string) func(any) (string, error) {
	return func(value any) (string, error) {
		field, err := coerceField(value)
		if err != nil {
			return "", err
		}
		path := joinPath(parentPath, field.Name)
		return r.render(field, path)
	}
}

func (r *componentRenderer) assets() (stylesheets []string, scripts []components.Script) {
	if r.registry == nil || len(r.usedComponents) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Assets(names)
}

func (r *componentRenderer) overrideFor(path, name string) string {
	if len(r.overrides) == 0 {
		return ""
	}
	if value := r.overrides[path]; value != "" {
		return value
	}
	return r.overrides[name]
}

// buildFieldMarkup wraps a rendered control in field chrome: wrapper div,
// label, inline errors, description, and help text. Components that build
// their own chrome (or fields flagged to skip it) pass through untouched.
func buildFieldMarkup(field model.Field, componentName, control string, errors []string) string {
	if stringFromMap(field.Metadata, componentChromeMetadataKey) == componentChromeSkipKeyword {
		return control
	}
	if componentHandlesChrome(componentName) {
		return control
	}

	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="mapadmin-field`)
	if cls := sanitizeClassList(field.UIHints["cssClass"]); cls != "" {
		builder.WriteByte(' ')
		builder.WriteString(html.EscapeString(cls))
	} else if cls := sanitizeClassList(field.UIHints["class"]); cls != "" {
		builder.WriteByte(' ')
		builder.WriteString(html.EscapeString(cls))
	}
	builder.WriteString(`"`)

	if componentName != "" {
		builder.WriteString(` data-component="`)
		builder.WriteString(html.EscapeString(componentName))
		builder.WriteString(`"`)
	}

	if config := stringFromMap(field.Metadata, componentConfigMetadataKey); config != "" {
		builder.WriteString(` data-component-config='`)
		builder.WriteString(html.EscapeString(config))
		builder.WriteString(`'`)
	}

	if len(errors) > 0 {
		builder.WriteString(` data-invalid="true"`)
	}

	builder.WriteString(">\n")

	if shouldRenderLabel(field) {
		if labelSupportsFor(componentName) {
			builder.WriteString(`    <label for="`)
			builder.WriteString(html.EscapeString(componentControlID(field.Name)))
			builder.WriteString(`" class="mapadmin-label">`)
		} else {
			builder.WriteString(`    <span id="`)
			builder.WriteString(html.EscapeString(componentLabelID(field.Name)))
			builder.WriteString(`" class="mapadmin-label">`)
		}
		builder.WriteString(html.EscapeString(field.Label))
		if field.Required {
			builder.WriteString(` *`)
		}
		if labelSupportsFor(componentName) {
			builder.WriteString("</label>\n")
		} else {
			builder.WriteString("</span>\n")
		}
	}

	if control != "" {
		for _, line := range strings.Split(control, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			builder.WriteString("    ")
			builder.WriteString(line)
			builder.WriteByte('\n')
		}
	}

	if len(errors) > 0 {
		builder.WriteString(`    <ul class="mapadmin-field-errors">` + "\n")
		for _, message := range errors {
			builder.WriteString(`        <li>`)
			builder.WriteString(html.EscapeString(message))
			builder.WriteString("</li>\n")
		}
		builder.WriteString("    </ul>\n")
	}

	if desc := strings.TrimSpace(field.Description); desc != "" {
		builder.WriteString(`    <small class="mapadmin-description">`)
		builder.WriteString(html.EscapeString(desc))
		builder.WriteString("</small>\n")
	}

	if hint := strings.TrimSpace(field.UIHints["helpText"]); hint != "" {
		builder.WriteString(`    <small class="mapadmin-help">`)
		builder.WriteString(html.EscapeString(hint))
		builder.WriteString("</small>\n")
	}

	builder.WriteString("</div>\n")
	return builder.String()
}

func shouldRenderLabel(field model.Field) bool {
	if strings.TrimSpace(field.Label) == "" {
		return false
	}
	return strings.TrimSpace(field.UIHints["hideLabel"]) != "true"
}

func parseComponentConfig(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var cfg map[string]any
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func coerceField(value any) (model.Field, error) {
	switch v := value.(type) {
	case nil:
		return model.Field{}, fmt.Errorf("nil field value")
	case model.Field:
		return v, nil
	case *model.Field:
		if v == nil {
			return model.Field{}, fmt.Errorf("nil field pointer")
		}
		return *v, nil
	case map[string]any:
		var field model.Field
		payload, err := json.Marshal(v)
		if err != nil {
			return model.Field{}, fmt.Errorf("marshal field map: %w", err)
		}
		if err := json.Unmarshal(payload, &field); err != nil {
			return model.Field{}, fmt.Errorf("unmarshal field map: %w", err)
		}
		return field, nil
	default:
		return model.Field{}, fmt.Errorf("unsupported field type %T", value)
	}
}

func cloneStringMap(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func joinPath(parent, child string) string {
	parent = strings.TrimSpace(parent)
	child = strings.TrimSpace(child)
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}
