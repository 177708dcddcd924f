package olmap

import (
	"io"
	"strings"
	"testing"

	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/renderers/olmap/components"
)

func TestComponentRendererUnknownComponent(t *testing.T) {
	renderer := newComponentRenderer(nil, components.NewDefaultRegistry(), map[string]string{
		"field": "missing",
	}, rendererTheme{}, nil)

	_, err := renderer.render(model.Field{Name: "field"}, "field")
	if err == nil {
		t.Fatalf("expected error when component is missing")
	}

	if got := err.Error(); got != `component "missing" not registered for field "field"` {
		t.Fatalf("unexpected error: %s", got)
	}
}

func TestComponentRendererUsesThemePartial(t *testing.T) {
	template := &recordingTemplateRenderer{}
	renderer := newComponentRenderer(
		template,
		components.NewDefaultRegistry(),
		nil,
		rendererTheme{Partials: map[string]string{
			"forms.input": "themes/custom/input.tmpl",
		}},
		nil,
	)

	_, err := renderer.render(model.Field{Name: "name"}, "name")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if len(template.calls) == 0 {
		t.Fatalf("expected template renderer to be called")
	}
	if got := template.calls[0]; got != "themes/custom/input.tmpl" {
		t.Fatalf("theme partial not applied, got %q", got)
	}
}

func TestComponentRendererResolvesStateByPath(t *testing.T) {
	template := &recordingTemplateRenderer{output: "<input>"}
	state := newFieldState(
		map[string]any{
			"office": map[string]any{"city": "Lisbon"},
		},
		map[string][]string{
			"office.city": {"City is required"},
		},
	)
	renderer := newComponentRenderer(template, components.NewDefaultRegistry(), nil, rendererTheme{}, state)

	markup, err := renderer.render(model.Field{Name: "city", Label: "City"}, "office.city")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(markup, `data-invalid="true"`) {
		t.Fatalf("expected invalid marker, got: %s", markup)
	}
	if !strings.Contains(markup, "<li>City is required</li>") {
		t.Fatalf("expected inline error, got: %s", markup)
	}
	if got := template.lastPayload("value_text"); got != "Lisbon" {
		t.Fatalf("expected nested value to resolve, got %q", got)
	}
}

func TestComponentRendererChromeSkip(t *testing.T) {
	template := &recordingTemplateRenderer{output: "<input>"}
	renderer := newComponentRenderer(template, components.NewDefaultRegistry(), nil, rendererTheme{}, nil)

	markup, err := renderer.render(model.Field{
		Name:  "name",
		Label: "Name",
		Metadata: map[string]string{
			"component.chrome": "skip",
		},
	}, "name")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if markup != "<input>" {
		t.Fatalf("expected bare control when chrome is skipped, got: %s", markup)
	}
}

func TestBuildFieldMarkupLabelForReadOnlyMap(t *testing.T) {
	field := model.Field{Name: "boundary", Label: "Boundary"}

	markup := buildFieldMarkup(field, components.NameInfoMap, "<div></div>", nil)
	if !strings.Contains(markup, `<span id="ma-boundary-label"`) {
		t.Fatalf("expected span label for display-only widget, got: %s", markup)
	}
	if strings.Contains(markup, "<label") {
		t.Fatalf("display-only widgets have no focusable control to label, got: %s", markup)
	}
}

func TestComponentRendererCollectsAssets(t *testing.T) {
	renderer := newComponentRenderer(nil, components.NewDefaultRegistry(), nil, rendererTheme{}, nil)

	_, err := renderer.render(model.Field{Name: "boundary", Type: "geometry"}, "boundary")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	styles, scripts := renderer.assets()
	if len(styles) == 0 || len(scripts) == 0 {
		t.Fatalf("expected map component assets, got styles=%v scripts=%v", styles, scripts)
	}
	if styles[0] != components.OpenLayersStylesheetURL {
		t.Fatalf("unexpected stylesheet order: %v", styles)
	}
}

type recordingTemplateRenderer struct {
	calls    []string
	payloads []any
	output   string
}

func (r *recordingTemplateRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

func (r *recordingTemplateRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	r.calls = append(r.calls, name)
	r.payloads = append(r.payloads, data)
	return r.output, nil
}

func (r *recordingTemplateRenderer) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	return r.output, nil
}

func (r *recordingTemplateRenderer) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	return nil
}

func (r *recordingTemplateRenderer) GlobalContext(data any) error {
	return nil
}

func (r *recordingTemplateRenderer) lastPayload(key string) any {
	if len(r.payloads) == 0 {
		return nil
	}
	payload, ok := r.payloads[len(r.payloads)-1].(map[string]any)
	if !ok {
		return nil
	}
	return payload[key]
}
