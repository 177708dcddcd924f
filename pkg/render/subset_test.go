package render

import (
	"reflect"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-mapadmin/pkg/model"
)

func TestApplySubset_ByGroup(t *testing.T) {
	resource := sampleResource()

	ApplySubset(&resource, FieldSubset{
		Groups: []string{"territory"},
	})

	if got := fieldNames(resource.Fields); !reflect.DeepEqual(got, []string{"boundary", "office"}) {
		t.Fatalf("expected territory fields to remain, got %v", got)
	}

	sections := parseSectionIDs(t, resource.Metadata[layoutSectionsKey])
	if !reflect.DeepEqual(sections, []string{"map"}) {
		t.Fatalf("expected map section metadata, got %v", sections)
	}
	if _, ok := resource.Metadata["layout.fieldOrder.map"]; !ok {
		t.Fatalf("expected layout.fieldOrder.map to remain")
	}
	if _, ok := resource.Metadata["layout.fieldOrder.overview"]; ok {
		t.Fatalf("unexpected layout.fieldOrder.overview after filtering")
	}
}

func TestApplySubset_ByTags(t *testing.T) {
	resource := sampleResource()

	ApplySubset(&resource, FieldSubset{
		Tags: []string{"display"},
	})

	if got := fieldNames(resource.Fields); !reflect.DeepEqual(got, []string{"name"}) {
		t.Fatalf("expected only name field to remain, got %v", got)
	}

	sections := parseSectionIDs(t, resource.Metadata[layoutSectionsKey])
	if !reflect.DeepEqual(sections, []string{"overview"}) {
		t.Fatalf("expected overview section metadata, got %v", sections)
	}
	if _, ok := resource.Metadata["layout.fieldOrder.overview"]; !ok {
		t.Fatalf("expected layout.fieldOrder.overview to remain")
	}
	if _, ok := resource.Metadata["layout.fieldOrder.advanced"]; ok {
		t.Fatalf("unexpected layout.fieldOrder.advanced after filtering")
	}
}

func TestApplySubset_BySection(t *testing.T) {
	resource := sampleResource()

	ApplySubset(&resource, FieldSubset{
		Sections: []string{"advanced"},
	})

	if got := fieldNames(resource.Fields); !reflect.DeepEqual(got, []string{"settings"}) {
		t.Fatalf("expected only advanced section fields to remain, got %v", got)
	}

	sections := parseSectionIDs(t, resource.Metadata[layoutSectionsKey])
	if !reflect.DeepEqual(sections, []string{"advanced"}) {
		t.Fatalf("expected advanced section metadata, got %v", sections)
	}
}

func TestApplySubset_GeometryFieldsOnly(t *testing.T) {
	resource := sampleResource()

	ApplySubset(&resource, FieldSubset{Geometry: true})

	if got := fieldNames(resource.Fields); !reflect.DeepEqual(got, []string{"boundary", "office"}) {
		t.Fatalf("expected geometry fields to remain, got %v", got)
	}

	sections := parseSectionIDs(t, resource.Metadata[layoutSectionsKey])
	if !reflect.DeepEqual(sections, []string{"map"}) {
		t.Fatalf("expected map section metadata, got %v", sections)
	}
}

func TestApplySubset_EmptyTokensNoop(t *testing.T) {
	resource := sampleResource()

	ApplySubset(&resource, FieldSubset{
		Groups: []string{"   "},
	})

	if len(resource.Fields) != len(sampleResource().Fields) {
		t.Fatalf("expected no filtering when subset tokens empty, got %d fields", len(resource.Fields))
	}
}

func sampleResource() model.Resource {
	metadata := map[string]string{
		layoutSectionsKey:            `[{"id":"overview","title":"Overview","order":0},{"id":"map","title":"Territory","order":1},{"id":"advanced","title":"Advanced","order":2}]`,
		"layout.fieldOrder.overview": `["name"]`,
		"layout.fieldOrder.map":      `["boundary","office"]`,
		"layout.fieldOrder.advanced": `["settings"]`,
		"submitLabel":                "Save",
		"admin.group":                "details",
	}

	fields := []model.Field{
		{
			Name: "name",
			Type: model.FieldTypeString,
			Metadata: map[string]string{
				"group":               "core",
				"tags":                `["display"]`,
				layoutSectionFieldKey: "overview",
			},
		},
		{
			Name: "boundary",
			Type: model.FieldTypeGeometry,
			Metadata: map[string]string{
				"group":               "territory",
				layoutSectionFieldKey: "map",
			},
		},
		{
			Name: "office",
			Type: model.FieldTypeGeometry,
			Metadata: map[string]string{
				"group":               "territory",
				layoutSectionFieldKey: "map",
			},
		},
		{
			Name: "settings",
			Type: model.FieldTypeObject,
			Metadata: map[string]string{
				"group":               "advanced",
				"tags":                `["behavior"]`,
				layoutSectionFieldKey: "advanced",
			},
		},
		{
			Name: "untagged",
			Type: model.FieldTypeString,
		},
	}

	return model.Resource{
		Name:     "districts",
		Endpoint: "/districts",
		Method:   "POST",
		Metadata: metadata,
		Fields:   fields,
	}
}

func parseSectionIDs(t *testing.T, raw string) []string {
	t.Helper()
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var sections []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(raw), &sections); err != nil {
		t.Fatalf("unmarshal sections: %v", err)
	}
	out := make([]string, 0, len(sections))
	for _, section := range sections {
		out = append(out, section.ID)
	}
	return out
}

func fieldNames(fields []model.Field) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.Name)
	}
	return out
}
