package components

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/model"
)

func TestGeometryText(t *testing.T) {
	t.Parallel()

	point := geometry.NewValue(orb.Point{-122.42, 37.77}, geometry.SRIDWGS84)

	cases := []struct {
		name  string
		value any
		field model.Field
		want  string
	}{
		{
			name:  "nil value falls back to field default",
			value: nil,
			field: model.Field{Default: "POINT(1 2)"},
			want:  "POINT(1 2)",
		},
		{
			name:  "string passes through",
			value: "SRID=3857;POINT(0 0)",
			want:  "SRID=3857;POINT(0 0)",
		},
		{
			name:  "geometry value encodes as ewkt",
			value: point,
			want:  "SRID=4326;POINT(-122.42 37.77)",
		},
		{
			name:  "geometry pointer encodes as ewkt",
			value: &point,
			want:  "SRID=4326;POINT(-122.42 37.77)",
		},
		{
			name:  "zero geometry renders empty",
			value: geometry.Value{},
			want:  "",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := geometryText(tc.value, tc.field)
			if err != nil {
				t.Fatalf("geometryText: %v", err)
			}
			if got != tc.want {
				t.Fatalf("geometryText = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMapRendererEmitsTextareaAndContainer(t *testing.T) {
	field := model.Field{
		Name:     "boundary",
		Type:     model.FieldTypeGeometry,
		Required: true,
		Metadata: map[string]string{
			model.MetadataGeometryKind: "polygon",
			model.MetadataGeometrySRID: "4326",
		},
	}

	var buf bytes.Buffer
	renderer := mapRenderer()
	if err := renderer(&buf, field, ComponentData{}); err != nil {
		t.Fatalf("render map: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, `<textarea id="ma-boundary" name="boundary" class="mapadmin-geometry-input" data-mapadmin-role="geometry" rows="3" required>`) {
		t.Fatalf("unexpected textarea markup: %s", got)
	}
	if !strings.Contains(got, `data-mapadmin-widget="edit"`) {
		t.Fatalf("expected edit widget container: %s", got)
	}
	if !strings.Contains(got, `data-mapadmin-target="ma-boundary"`) {
		t.Fatalf("container should target the textarea: %s", got)
	}
	if !strings.Contains(got, `&#34;kind&#34;:&#34;polygon&#34;`) {
		t.Fatalf("payload should carry the geometry kind: %s", got)
	}
	if !strings.Contains(got, `&#34;srid&#34;:4326`) {
		t.Fatalf("payload should carry the srid: %s", got)
	}
}

func TestMapRendererGroupedEmitsSlotControls(t *testing.T) {
	field := model.Field{
		Name: "location_grounds",
		Type: model.FieldTypeGeometry,
		Metadata: map[string]string{
			model.MetadataGroup:        "site",
			model.MetadataGeometryKind: "collection",
			model.MetadataGroupSources: "location,grounds",
			model.MetadataGeometrySRID: "4326",
		},
	}

	point := geometry.NewValue(orb.Point{2.295, 48.8738}, geometry.SRIDWGS84)

	var buf bytes.Buffer
	renderer := mapRenderer()
	err := renderer(&buf, field, ComponentData{
		Value: []any{point, nil},
	})
	if err != nil {
		t.Fatalf("render grouped map: %v", err)
	}

	got := buf.String()
	if count := strings.Count(got, "<textarea"); count != 2 {
		t.Fatalf("expected one textarea per source, got %d: %s", count, got)
	}
	if !strings.Contains(got, `id="ma-location_grounds-0"`) || !strings.Contains(got, `id="ma-location_grounds-1"`) {
		t.Fatalf("expected indexed control ids: %s", got)
	}
	if count := strings.Count(got, `name="location_grounds"`); count != 2 {
		t.Fatalf("every control should submit under the synthetic name: %s", got)
	}
	if !strings.Contains(got, `data-mapadmin-slot="location"`) || !strings.Contains(got, `data-mapadmin-slot="grounds"`) {
		t.Fatalf("controls should carry their source names: %s", got)
	}
	if !strings.Contains(got, `data-mapadmin-target="ma-location_grounds-0,ma-location_grounds-1"`) {
		t.Fatalf("container should target every control: %s", got)
	}
	if !strings.Contains(got, "SRID=4326;POINT(2.295 48.8738)") {
		t.Fatalf("first slot should carry the bound geometry: %s", got)
	}
	if !strings.Contains(got, `&#34;slots&#34;:[&#34;location&#34;,&#34;grounds&#34;]`) {
		t.Fatalf("payload should list the slots: %s", got)
	}
	if strings.Contains(got, " required") {
		t.Fatalf("grouped controls must not be individually required: %s", got)
	}
}

func TestMapRendererForwardsComponentConfig(t *testing.T) {
	field := model.Field{Name: "boundary", Type: model.FieldTypeGeometry}

	var buf bytes.Buffer
	renderer := mapRenderer()
	err := renderer(&buf, field, ComponentData{
		Config: map[string]any{"zoom": 12},
	})
	if err != nil {
		t.Fatalf("render map: %v", err)
	}

	if got := buf.String(); !strings.Contains(got, `&#34;options&#34;:{&#34;zoom&#34;:12}`) {
		t.Fatalf("expected options in payload: %s", got)
	}
}

func TestInfoMapRendererInlinesGeometry(t *testing.T) {
	field := model.Field{
		Name: "boundary",
		Type: model.FieldTypeGeometry,
		Metadata: map[string]string{
			model.MetadataGeometrySRID: "4326",
		},
	}

	var buf bytes.Buffer
	renderer := infoMapRenderer()
	err := renderer(&buf, field, ComponentData{
		Value: geometry.NewValue(orb.Point{2.35, 48.85}, geometry.SRIDWGS84),
	})
	if err != nil {
		t.Fatalf("render info map: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, `data-mapadmin-widget="info"`) {
		t.Fatalf("expected info widget container: %s", got)
	}
	if strings.Contains(got, "<textarea") {
		t.Fatalf("info map must not emit a form control: %s", got)
	}
	if !strings.Contains(got, `&#34;geometry&#34;:`) {
		t.Fatalf("payload should inline the geometry: %s", got)
	}
	if !strings.Contains(got, `&#34;type&#34;:&#34;Point&#34;`) {
		t.Fatalf("geometry should encode as GeoJSON: %s", got)
	}
}

func TestFieldSRIDDefaultsToWGS84(t *testing.T) {
	if got := fieldSRID(model.Field{}); got != geometry.SRIDWGS84 {
		t.Fatalf("fieldSRID() = %d, want %d", got, geometry.SRIDWGS84)
	}
	field := model.Field{Metadata: map[string]string{model.MetadataGeometrySRID: "3857"}}
	if got := fieldSRID(field); got != 3857 {
		t.Fatalf("fieldSRID() = %d, want 3857", got)
	}
	malformed := model.Field{Metadata: map[string]string{model.MetadataGeometrySRID: "not-a-number"}}
	if got := fieldSRID(malformed); got != geometry.SRIDWGS84 {
		t.Fatalf("fieldSRID() = %d, want fallback %d", got, geometry.SRIDWGS84)
	}
}
