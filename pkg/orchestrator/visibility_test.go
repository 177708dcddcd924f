package orchestrator

import (
	"sort"
	"strings"
	"testing"

	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/render"
	"github.com/goliatone/go-mapadmin/pkg/visibility"
	"github.com/goliatone/go-mapadmin/pkg/visibility/expr"
)

func guardedResource() model.Resource {
	return model.Resource{
		Name: "districts",
		Fields: []model.Field{
			{Name: "name", Type: model.FieldTypeString},
			{Name: "draft", Type: model.FieldTypeBoolean, Metadata: map[string]string{
				"visibilityRule": "published",
			}},
			{Name: "office", Type: model.FieldTypeObject, Nested: []model.Field{
				{Name: "address", Type: model.FieldTypeString},
				{Name: "fax", Type: model.FieldTypeString, UIHints: map[string]string{
					"visibilityRule": `extras.role == "admin"`,
				}},
			}},
			{Name: "attachments", Type: model.FieldTypeArray, Items: &model.Field{
				Name: "attachment", Type: model.FieldTypeString, Metadata: map[string]string{
					"admin.visibilityRule": "published",
				},
			}},
		},
	}
}

func TestApplyVisibilityFiltersFieldTree(t *testing.T) {
	t.Parallel()

	resource := guardedResource()
	ctx := visibility.Context{
		Values: map[string]any{"published": false},
		Extras: map[string]any{"role": "clerk"},
	}
	if err := applyVisibility(&resource, expr.New(), ctx); err != nil {
		t.Fatalf("apply visibility: %v", err)
	}

	if _, ok := resource.Field("draft"); ok {
		t.Fatalf("draft should be hidden: %v", resource.FieldNames())
	}
	office, ok := resource.Field("office")
	if !ok {
		t.Fatalf("office should survive: %v", resource.FieldNames())
	}
	if len(office.Nested) != 1 || office.Nested[0].Name != "address" {
		t.Fatalf("fax should be hidden for clerks: %+v", office.Nested)
	}
	attachments, _ := resource.Field("attachments")
	if attachments.Items != nil {
		t.Fatalf("item schema should be hidden: %+v", attachments.Items)
	}

	resource = guardedResource()
	ctx = visibility.Context{
		Values: map[string]any{"published": true},
		Extras: map[string]any{"role": "admin"},
	}
	if err := applyVisibility(&resource, expr.New(), ctx); err != nil {
		t.Fatalf("apply visibility: %v", err)
	}

	if _, ok := resource.Field("draft"); !ok {
		t.Fatalf("draft should be visible when published: %v", resource.FieldNames())
	}
	office, _ = resource.Field("office")
	if len(office.Nested) != 2 {
		t.Fatalf("fax should be visible for admins: %+v", office.Nested)
	}
	attachments, _ = resource.Field("attachments")
	if attachments.Items == nil {
		t.Fatalf("item schema should be visible when published")
	}
}

func TestApplyVisibilityHandsPathsToEvaluator(t *testing.T) {
	t.Parallel()

	var paths []string
	recorder := visibility.EvaluatorFunc(func(fieldPath, rule string, _ visibility.Context) (bool, error) {
		paths = append(paths, fieldPath)
		return true, nil
	})

	resource := guardedResource()
	if err := applyVisibility(&resource, recorder, visibility.Context{}); err != nil {
		t.Fatalf("apply visibility: %v", err)
	}

	sort.Strings(paths)
	want := []string{"attachments[]", "draft", "office.fax"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths = %v, want %v", paths, want)
		}
	}
}

func TestApplyVisibilityRuleErrorPropagates(t *testing.T) {
	t.Parallel()

	resource := guardedResource()
	err := applyVisibility(&resource, expr.New(), visibility.Context{})
	// "published" is truthy-evaluated against a missing value, which is fine;
	// force a malformed rule instead.
	if err != nil {
		t.Fatalf("baseline should pass: %v", err)
	}

	resource = guardedResource()
	resource.Fields[1].Metadata["visibilityRule"] = "published =="
	err = applyVisibility(&resource, expr.New(), visibility.Context{})
	if err == nil || !strings.Contains(err.Error(), "apply visibility") {
		t.Fatalf("expected wrapped evaluator error, got %v", err)
	}
}

func TestVisibilityRulePrecedence(t *testing.T) {
	t.Parallel()

	field := model.Field{
		Metadata: map[string]string{
			"visibilityRule":       "metadata-rule",
			"admin.visibilityRule": "admin-rule",
		},
		UIHints: map[string]string{"visibilityRule": "hint-rule"},
	}
	if got := visibilityRule(field); got != "metadata-rule" {
		t.Fatalf("rule precedence: got %q", got)
	}

	field.Metadata["visibilityRule"] = " "
	if got := visibilityRule(field); got != "admin-rule" {
		t.Fatalf("rule precedence: got %q", got)
	}

	delete(field.Metadata, "admin.visibilityRule")
	if got := visibilityRule(field); got != "hint-rule" {
		t.Fatalf("rule precedence: got %q", got)
	}
}

func TestVisibilityContextFallsBackToRenderValues(t *testing.T) {
	t.Parallel()

	values := map[string]any{"published": true}
	req := Request{RenderOptions: render.RenderOptions{Values: values}}
	ctx := visibilityContext(req)
	if ctx.Values["published"] != true {
		t.Fatalf("prefill values not adopted: %#v", ctx.Values)
	}

	explicit := map[string]any{"published": false}
	req.Visibility = visibility.Context{Values: explicit, Extras: map[string]any{"role": "admin"}}
	ctx = visibilityContext(req)
	if ctx.Values["published"] != false {
		t.Fatalf("explicit values replaced: %#v", ctx.Values)
	}
	if ctx.Extras["role"] != "admin" {
		t.Fatalf("extras dropped: %#v", ctx.Extras)
	}
}
