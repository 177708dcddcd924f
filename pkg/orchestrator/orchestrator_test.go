package orchestrator_test

import (
	"context"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/goliatone/go-mapadmin/pkg/mapcfg"
	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/orchestrator"
	"github.com/goliatone/go-mapadmin/pkg/render"
	"github.com/goliatone/go-mapadmin/pkg/schema"
	"github.com/goliatone/go-mapadmin/pkg/visibility"
	"github.com/goliatone/go-mapadmin/pkg/visibility/expr"
)

const districtDocument = `{
  "openapi": "3.0.3",
  "info": {"title": "Districts", "version": "1.0.0"},
  "paths": {
    "/districts": {
      "post": {
        "operationId": "createDistrict",
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["name"],
                "properties": {
                  "name": {"type": "string"},
                  "boundary": {"type": "string", "format": "geometry-polygon"}
                }
              }
            }
          }
        },
        "responses": {"201": {"description": "created"}}
      }
    }
  }
}`

func districtDoc(t *testing.T) schema.Document {
	t.Helper()

	doc, err := schema.NewDocument(schema.SourceFromFile("inline.json"), []byte(districtDocument))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func TestGenerateRequiresOperationID(t *testing.T) {
	t.Parallel()

	orch := orchestrator.New(orchestrator.WithMapConfigFS(nil))
	doc := districtDoc(t)

	_, err := orch.Generate(context.Background(), orchestrator.Request{Document: &doc})
	if err == nil || !strings.Contains(err.Error(), "operation id") {
		t.Fatalf("expected operation id error, got %v", err)
	}
}

func TestGenerateOperationNotFound(t *testing.T) {
	t.Parallel()

	orch := orchestrator.New(orchestrator.WithMapConfigFS(nil))
	doc := districtDoc(t)

	_, err := orch.Generate(context.Background(), orchestrator.Request{
		Document:    &doc,
		OperationID: "deleteDistrict",
	})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected missing operation error, got %v", err)
	}
}

func TestGenerateBuildsResourceFromDocument(t *testing.T) {
	t.Parallel()

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(renderer.Name()),
	)

	doc := districtDoc(t)
	output, err := orch.Generate(context.Background(), orchestrator.Request{
		Document:    &doc,
		OperationID: "createDistrict",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(output) != "ok" {
		t.Fatalf("unexpected renderer output: %s", output)
	}

	resource := renderer.last
	if resource.Name != "districts" {
		t.Fatalf("resource name = %q, want districts", resource.Name)
	}

	boundary, ok := resource.Field("boundary")
	if !ok {
		t.Fatalf("boundary field missing: %v", resource.FieldNames())
	}
	if boundary.Type != model.FieldTypeGeometry {
		t.Fatalf("boundary type = %q, want geometry", boundary.Type)
	}
	if boundary.Metadata[model.MetadataGeometryKind] != "polygon" {
		t.Fatalf("geometry kind = %q", boundary.Metadata[model.MetadataGeometryKind])
	}
	if boundary.Metadata[model.MetadataGeometrySRID] != "4326" {
		t.Fatalf("geometry srid = %q", boundary.Metadata[model.MetadataGeometrySRID])
	}

	// The embedded map configuration and the built-in widget matchers apply
	// without any explicit wiring.
	config := boundary.Metadata[mapcfg.ComponentConfigMetadataKey]
	if config == "" {
		t.Fatalf("embedded map defaults not stamped: %#v", boundary.Metadata)
	}
	if zoom := gjson.Get(config, "defaultZoom"); zoom.Int() != 4 {
		t.Fatalf("defaultZoom = %s, want 4", zoom.Raw)
	}
	if boundary.Metadata["widget"] != "map" {
		t.Fatalf("widget = %q, want map", boundary.Metadata["widget"])
	}
}

func TestGenerateAppliesDecoratorsInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	first := model.DecoratorFunc(func(resource *model.Resource) error {
		order = append(order, "first")
		return nil
	})
	second := model.DecoratorFunc(func(resource *model.Resource) error {
		order = append(order, "second")
		if resource.Metadata == nil {
			resource.Metadata = make(map[string]string)
		}
		resource.Metadata["decorated"] = "true"
		return nil
	})

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(renderer.Name()),
		orchestrator.WithMapConfigFS(nil),
		orchestrator.WithDecorators(first, second),
	)

	doc := districtDoc(t)
	if _, err := orch.Generate(context.Background(), orchestrator.Request{
		Document:    &doc,
		OperationID: "createDistrict",
	}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected decorator order: %v", order)
	}
	if renderer.last.Metadata["decorated"] != "true" {
		t.Fatalf("decorator mutation missing: %#v", renderer.last.Metadata)
	}
}

func TestGenerateUnknownRendererErrors(t *testing.T) {
	t.Parallel()

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithMapConfigFS(nil),
	)

	doc := districtDoc(t)
	_, err := orch.Generate(context.Background(), orchestrator.Request{
		Document:    &doc,
		OperationID: "createDistrict",
		Renderer:    "missing",
	})
	if err == nil || !strings.Contains(err.Error(), `renderer "missing"`) {
		t.Fatalf("expected renderer lookup error, got %v", err)
	}
}

func TestGenerateFallsBackToRegisteredRenderer(t *testing.T) {
	t.Parallel()

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	// The configured default names a renderer that is not registered; the
	// orchestrator settles on the only available one instead of failing.
	orch := orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer("absent"),
		orchestrator.WithMapConfigFS(nil),
	)

	doc := districtDoc(t)
	output, err := orch.Generate(context.Background(), orchestrator.Request{
		Document:    &doc,
		OperationID: "createDistrict",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(output) != "ok" {
		t.Fatalf("unexpected output: %s", output)
	}
}

func TestGenerateGeometryOverridePromotesField(t *testing.T) {
	t.Parallel()

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(renderer.Name()),
		orchestrator.WithMapConfigFS(nil),
		orchestrator.WithGeometryOverrides([]orchestrator.GeometryOverride{
			{
				OperationID: "createDistrict",
				FieldPath:   "name",
				Config: orchestrator.GeometryConfig{
					Kind:    "point",
					SRID:    3857,
					Options: `{"defaultZoom": 9}`,
				},
			},
			{
				// Boundary already carries geometry metadata; the override
				// must not disturb it.
				OperationID: "createDistrict",
				FieldPath:   "boundary",
				Config:      orchestrator.GeometryConfig{Kind: "point"},
			},
		}),
	)

	doc := districtDoc(t)
	if _, err := orch.Generate(context.Background(), orchestrator.Request{
		Document:    &doc,
		OperationID: "createDistrict",
	}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	name, ok := renderer.last.Field("name")
	if !ok {
		t.Fatalf("name field missing")
	}
	if name.Type != model.FieldTypeGeometry {
		t.Fatalf("override did not promote field: %q", name.Type)
	}
	if name.Metadata[model.MetadataGeometryKind] != "point" {
		t.Fatalf("kind = %q", name.Metadata[model.MetadataGeometryKind])
	}
	if name.Metadata[model.MetadataGeometrySRID] != "3857" {
		t.Fatalf("srid = %q", name.Metadata[model.MetadataGeometrySRID])
	}
	if gjson.Get(name.Metadata[mapcfg.ComponentConfigMetadataKey], "defaultZoom").Int() != 9 {
		t.Fatalf("options not stamped: %#v", name.Metadata)
	}

	boundary, _ := renderer.last.Field("boundary")
	if boundary.Metadata[model.MetadataGeometryKind] != "polygon" {
		t.Fatalf("existing geometry metadata overwritten: %#v", boundary.Metadata)
	}
}

func TestGenerateInvalidOverrideSurfacesOnGenerate(t *testing.T) {
	t.Parallel()

	orch := orchestrator.New(
		orchestrator.WithMapConfigFS(nil),
		orchestrator.WithGeometryOverrides([]orchestrator.GeometryOverride{
			{OperationID: "createDistrict", FieldPath: "name", Config: orchestrator.GeometryConfig{Kind: "hexagon"}},
		}),
	)

	doc := districtDoc(t)
	_, err := orch.Generate(context.Background(), orchestrator.Request{
		Document:    &doc,
		OperationID: "createDistrict",
	})
	if err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Fatalf("expected kind validation error, got %v", err)
	}
}

const campusDocument = `{
  "openapi": "3.0.3",
  "info": {"title": "Campuses", "version": "1.0.0"},
  "paths": {
    "/campuses": {
      "post": {
        "operationId": "createCampus",
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "name": {"type": "string"},
                  "entrance": {"type": "string", "format": "geometry-point", "x-mapadmin": {"group": "site"}},
                  "grounds": {"type": "string", "format": "geometry-polygon", "x-mapadmin": {"group": "site"}}
                }
              }
            }
          }
        },
        "responses": {"201": {"description": "created"}}
      }
    }
  }
}`

func TestGenerateCollapsesGroupedGeometry(t *testing.T) {
	t.Parallel()

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(renderer.Name()),
		orchestrator.WithMapConfigFS(nil),
	)

	doc, err := schema.NewDocument(schema.SourceFromFile("inline.json"), []byte(campusDocument))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	if _, err := orch.Generate(context.Background(), orchestrator.Request{
		Document:    &doc,
		OperationID: "createCampus",
		RenderOptions: render.RenderOptions{Values: map[string]any{
			"name":     "North Campus",
			"entrance": "SRID=4326;POINT(1 2)",
		}},
	}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	resource := renderer.last
	if _, ok := resource.Field("entrance"); ok {
		t.Fatalf("entrance should collapse into the group field: %v", resource.FieldNames())
	}
	merged, ok := resource.Field("entrance_grounds")
	if !ok {
		t.Fatalf("merged group field missing: %v", resource.FieldNames())
	}
	if merged.Metadata[model.MetadataGroupSources] != "entrance,grounds" {
		t.Fatalf("merged sources = %q", merged.Metadata[model.MetadataGroupSources])
	}
	if merged.Metadata[model.MetadataGeometryKind] != "collection" {
		t.Fatalf("merged kind = %q", merged.Metadata[model.MetadataGeometryKind])
	}

	// Prefill values regroup to match the collapsed field list.
	bound, ok := renderer.options.Values["entrance_grounds"].([]any)
	if !ok || len(bound) != 2 {
		t.Fatalf("grouped values = %#v", renderer.options.Values["entrance_grounds"])
	}
	if bound[0] != "SRID=4326;POINT(1 2)" || bound[1] != nil {
		t.Fatalf("grouped values out of order: %#v", bound)
	}
	if _, ok := renderer.options.Values["entrance"]; ok {
		t.Fatalf("member value should have been regrouped: %#v", renderer.options.Values)
	}
	if renderer.options.Values["name"] != "North Campus" {
		t.Fatalf("scalar values disturbed: %#v", renderer.options.Values)
	}
}

func TestGenerateVisibilityFilterRemovesFields(t *testing.T) {
	t.Parallel()

	hideBoundary := model.DecoratorFunc(func(resource *model.Resource) error {
		for i := range resource.Fields {
			if resource.Fields[i].Name != "boundary" {
				continue
			}
			if resource.Fields[i].Metadata == nil {
				resource.Fields[i].Metadata = make(map[string]string)
			}
			resource.Fields[i].Metadata["visibilityRule"] = `extras.role == "editor"`
		}
		return nil
	})

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(renderer.Name()),
		orchestrator.WithMapConfigFS(nil),
		orchestrator.WithDecorators(hideBoundary),
		orchestrator.WithVisibilityEvaluator(expr.New()),
	)

	doc := districtDoc(t)

	if _, err := orch.Generate(context.Background(), orchestrator.Request{
		Document:    &doc,
		OperationID: "createDistrict",
		Visibility:  visibility.Context{Extras: map[string]any{"role": "viewer"}},
	}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, ok := renderer.last.Field("boundary"); ok {
		t.Fatalf("boundary should be hidden for viewers: %v", renderer.last.FieldNames())
	}

	if _, err := orch.Generate(context.Background(), orchestrator.Request{
		Document:    &doc,
		OperationID: "createDistrict",
		Visibility:  visibility.Context{Extras: map[string]any{"role": "editor"}},
	}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, ok := renderer.last.Field("boundary"); !ok {
		t.Fatalf("boundary should be visible for editors: %v", renderer.last.FieldNames())
	}
}

type captureRenderer struct {
	last    model.Resource
	options render.RenderOptions
}

func (r *captureRenderer) Name() string {
	return "capture"
}

func (r *captureRenderer) ContentType() string {
	return "text/plain"
}

func (r *captureRenderer) Render(_ context.Context, resource model.Resource, opts render.RenderOptions) ([]byte, error) {
	r.last = resource
	r.options = opts
	return []byte("ok"), nil
}
