package olmap

import (
	"strings"

	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/renderers/olmap/components"
	"github.com/goliatone/go-mapadmin/pkg/widgets"
)

// Metadata keys the component pipeline reads off individual fields.
const (
	componentConfigMetadataKey = "component.config"
	componentChromeMetadataKey = "component.chrome"
	componentChromeSkipKeyword = "skip"
)

// resolveComponentName picks the component a field renders through. Explicit
// widget hints (admin.widget metadata, widget metadata, widget UI hint) win;
// otherwise the field type decides format-appropriate defaults.
func resolveComponentName(field model.Field) string {
	if hint := widgetHint(field); hint != "" {
		if name := componentForWidget(hint); name != "" {
			return name
		}
	}

	switch field.Type {
	case model.FieldTypeGeometry:
		if readOnlyGeometry(field) {
			return components.NameInfoMap
		}
		return components.NameMap
	case model.FieldTypeBoolean:
		return components.NameBoolean
	case model.FieldTypeObject:
		return components.NameObject
	case model.FieldTypeArray:
		return components.NameArray
	}

	if len(field.Enum) > 0 {
		return components.NameSelect
	}
	if field.Format == "textarea" || field.UIHints["multiline"] == "true" {
		return components.NameTextarea
	}
	return ""
}

func widgetHint(field model.Field) string {
	if field.Metadata != nil {
		if hint := strings.TrimSpace(field.Metadata["admin.widget"]); hint != "" {
			return hint
		}
		if hint := strings.TrimSpace(field.Metadata["widget"]); hint != "" {
			return hint
		}
	}
	return strings.TrimSpace(field.UIHints["widget"])
}

// componentForWidget folds widget registry names onto the component set. The
// richer editor widgets degrade to a textarea so their payloads stay editable
// even when no dedicated component ships.
func componentForWidget(widget string) string {
	switch strings.ToLower(strings.TrimSpace(widget)) {
	case widgets.WidgetMap, "geometry", "olmap":
		return components.NameMap
	case widgets.WidgetInfoMap, "info_map":
		return components.NameInfoMap
	case widgets.WidgetToggle, "checkbox", "boolean":
		return components.NameBoolean
	case widgets.WidgetSelect, widgets.WidgetChips:
		return components.NameSelect
	case widgets.WidgetCodeEditor, widgets.WidgetJSONEditor, widgets.WidgetKeyValue, "json_editor", "textarea":
		return components.NameTextarea
	case "input", "text":
		return components.NameInput
	case "hidden":
		return components.NameHidden
	default:
		return ""
	}
}

func readOnlyGeometry(field model.Field) bool {
	if field.Metadata != nil && field.Metadata["readonly"] == "true" {
		return true
	}
	return field.UIHints["input"] == "display"
}

func stringFromMap(values map[string]string, key string) string {
	if len(values) == 0 {
		return ""
	}
	return values[key]
}
