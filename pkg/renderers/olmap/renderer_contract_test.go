package olmap_test

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/paulmach/orb"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/render"
	"github.com/goliatone/go-mapadmin/pkg/renderers/olmap"
	"github.com/goliatone/go-mapadmin/pkg/testsupport"
)

func TestRenderer_RenderContract(t *testing.T) {
	resource := testsupport.MustLoadResource(t, filepath.Join("testdata", "district_resource.json"))

	renderer, err := olmap.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	output, err := renderer.Render(testsupport.Context(), resource, render.RenderOptions{
		Action: "/admin/districts/7/change/",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	goldenPath := filepath.Join("testdata", "form_output.golden.html")
	if testsupport.WriteMaybeGolden(t, goldenPath, output) {
		return
	}

	want := testsupport.MustReadGolden(t, goldenPath)
	if diff := testsupport.CompareGolden(string(want), string(output)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_RenderPrefilledForm(t *testing.T) {
	resource := testsupport.MustLoadResource(t, filepath.Join("testdata", "district_resource.json"))

	renderer, err := olmap.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	options := render.RenderOptions{
		Action: "/admin/districts/7/change/",
		Values: map[string]any{
			"name":     "Riverside",
			"boundary": geometry.NewValue(orb.Point{-122.42, 37.77}, geometry.SRIDWGS84),
		},
		Errors: map[string][]string{
			"name": {"Name already taken"},
			"":     {"Fix the errors below"},
		},
		Hidden: []render.HiddenField{
			render.CSRFToken("csrfmiddlewaretoken", "token123"),
		},
	}

	output, err := renderer.Render(testsupport.Context(), resource, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	goldenPath := filepath.Join("testdata", "form_output_prefilled.golden.html")
	if testsupport.WriteMaybeGolden(t, goldenPath, output) {
		return
	}

	want := testsupport.MustReadGolden(t, goldenPath)
	if diff := testsupport.CompareGolden(string(want), string(output)); diff != "" {
		t.Fatalf("prefilled output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_RenderWithDefaultStyles(t *testing.T) {
	resource := testsupport.MustLoadResource(t, filepath.Join("testdata", "district_resource.json"))

	renderer, err := olmap.New(olmap.WithDefaultStyles())
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	output, err := renderer.Render(testsupport.Context(), resource, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	got := string(output)
	if !strings.Contains(got, "<style>") {
		t.Fatalf("expected inline style block, got:\n%s", got)
	}
	if !strings.Contains(got, ".mapadmin-map {") {
		t.Fatalf("expected embedded stylesheet contents, got:\n%s", got)
	}
}

func TestRenderer_ChromeClassOverride(t *testing.T) {
	resource := testsupport.MustLoadResource(t, filepath.Join("testdata", "district_resource.json"))

	renderer, err := olmap.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	output, err := renderer.Render(testsupport.Context(), resource, render.RenderOptions{
		ChromeClasses: &render.ChromeClasses{
			Form: "space-y-6",
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	got := string(output)
	if !strings.Contains(got, `<form class="space-y-6"`) {
		t.Fatalf("expected form class override, got: %s", got)
	}
	if strings.Contains(got, `<form class="`+olmap.DefaultFormClass+`"`) {
		t.Fatalf("expected default form class to be replaced")
	}
	if !strings.Contains(got, `class="`+olmap.DefaultGridClass+`"`) {
		t.Fatalf("expected untouched chrome classes to keep their defaults")
	}
}

func TestRenderer_ThemeStyleAndAssets(t *testing.T) {
	resource := testsupport.MustLoadResource(t, filepath.Join("testdata", "district_resource.json"))

	renderer, err := olmap.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	output, err := renderer.Render(testsupport.Context(), resource, render.RenderOptions{
		Theme: &theme.RendererConfig{
			Theme:   "acme",
			Variant: "dark",
			CSSVars: map[string]string{
				"--brand": "#123456",
			},
			AssetURL: func(key string) string {
				if key == "olmap.stylesheet" {
					return "/themes/acme/olmap.css"
				}
				return ""
			},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	got := string(output)
	if !strings.Contains(got, ` style="--brand: #123456"`) {
		t.Fatalf("expected css vars on the form element, got: %s", got)
	}
	if !strings.Contains(got, `<link rel="stylesheet" href="/themes/acme/olmap.css">`) {
		t.Fatalf("expected theme stylesheet link, got: %s", got)
	}
}

func TestRenderer_WithTemplateRenderer(t *testing.T) {
	stub := &stubTemplateRenderer{
		renderTemplateFunc: func(name string, data any, out ...io.Writer) (string, error) {
			if name == "templates/form.tmpl" {
				return "custom-output", nil
			}
			return "<component />", nil
		},
	}

	renderer, err := olmap.New(olmap.WithTemplateRenderer(stub))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	resource := testsupport.MustLoadResource(t, filepath.Join("testdata", "district_resource.json"))
	out, err := renderer.Render(testsupport.Context(), resource, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "custom-output" {
		t.Fatalf("unexpected output: %s", out)
	}
	if !stub.called {
		t.Fatalf("expected render template to be called")
	}
}

type stubTemplateRenderer struct {
	called             bool
	renderTemplateFunc func(name string, data any, out ...io.Writer) (string, error)
}

func (s *stubTemplateRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return s.RenderTemplate(name, data, out...)
}

func (s *stubTemplateRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	s.called = true
	if s.renderTemplateFunc != nil {
		return s.renderTemplateFunc(name, data, out...)
	}
	return "", nil
}

func (s *stubTemplateRenderer) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	return "", nil
}

func (s *stubTemplateRenderer) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	return nil
}

func (s *stubTemplateRenderer) GlobalContext(data any) error {
	return nil
}
