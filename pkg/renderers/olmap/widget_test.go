package olmap

import (
	"testing"

	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/widgets"
)

func TestResolveComponentNameHonorsWidgetHint(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   model.Field
		want string
	}{
		{
			name: "map widget maps to map",
			in: model.Field{
				Type: model.FieldTypeGeometry,
				Metadata: map[string]string{
					"widget": widgets.WidgetMap,
				},
			},
			want: "map",
		},
		{
			name: "info-map widget maps to info-map",
			in: model.Field{
				Type: model.FieldTypeGeometry,
				Metadata: map[string]string{
					"widget": widgets.WidgetInfoMap,
				},
			},
			want: "info-map",
		},
		{
			name: "admin widget metadata wins over widget metadata",
			in: model.Field{
				Type: model.FieldTypeGeometry,
				Metadata: map[string]string{
					"admin.widget": widgets.WidgetInfoMap,
					"widget":       widgets.WidgetMap,
				},
			},
			want: "info-map",
		},
		{
			name: "toggle widget maps to boolean",
			in: model.Field{
				Type: model.FieldTypeBoolean,
				Metadata: map[string]string{
					"widget": widgets.WidgetToggle,
				},
			},
			want: "boolean",
		},
		{
			name: "chips widget maps to select",
			in: model.Field{
				Type: model.FieldTypeArray,
				Metadata: map[string]string{
					"widget": widgets.WidgetChips,
				},
			},
			want: "select",
		},
		{
			name: "code editor widget maps to textarea",
			in: model.Field{
				Type: model.FieldTypeString,
				Metadata: map[string]string{
					"widget": widgets.WidgetCodeEditor,
				},
			},
			want: "textarea",
		},
		{
			name: "key-value widget maps to textarea",
			in: model.Field{
				Type: model.FieldTypeObject,
				Metadata: map[string]string{
					"widget": widgets.WidgetKeyValue,
				},
			},
			want: "textarea",
		},
		{
			name: "hidden widget maps to hidden",
			in: model.Field{
				Type: model.FieldTypeString,
				Metadata: map[string]string{
					"widget": "hidden",
				},
			},
			want: "hidden",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveComponentName(tc.in); got != tc.want {
				t.Fatalf("resolveComponentName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveComponentNameTypeFallbacks(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   model.Field
		want string
	}{
		{
			name: "geometry defaults to map",
			in:   model.Field{Type: model.FieldTypeGeometry},
			want: "map",
		},
		{
			name: "readonly geometry defaults to info-map",
			in: model.Field{
				Type:     model.FieldTypeGeometry,
				Metadata: map[string]string{"readonly": "true"},
			},
			want: "info-map",
		},
		{
			name: "display-only geometry defaults to info-map",
			in: model.Field{
				Type:    model.FieldTypeGeometry,
				UIHints: map[string]string{"input": "display"},
			},
			want: "info-map",
		},
		{
			name: "boolean defaults to boolean",
			in:   model.Field{Type: model.FieldTypeBoolean},
			want: "boolean",
		},
		{
			name: "object defaults to object",
			in:   model.Field{Type: model.FieldTypeObject},
			want: "object",
		},
		{
			name: "array defaults to array",
			in:   model.Field{Type: model.FieldTypeArray},
			want: "array",
		},
		{
			name: "enum values default to select",
			in: model.Field{
				Type: model.FieldTypeString,
				Enum: []any{"draft", "published"},
			},
			want: "select",
		},
		{
			name: "multiline hint defaults to textarea",
			in: model.Field{
				Type:    model.FieldTypeString,
				UIHints: map[string]string{"multiline": "true"},
			},
			want: "textarea",
		},
		{
			name: "plain string falls through to renderer default",
			in:   model.Field{Type: model.FieldTypeString},
			want: "",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveComponentName(tc.in); got != tc.want {
				t.Fatalf("resolveComponentName() = %q, want %q", got, tc.want)
			}
		})
	}
}
