package mapcfg

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-mapadmin/pkg/model"
)

// Decorator applies map configuration overlays to resource models. Widget
// options build up in layers: registry defaults, then the resource overlay,
// then per-field map hints lifted from the schema document, then any config
// already stamped on the field. Grouping and changelist settings come from
// the resource overlay alone.
type Decorator struct {
	registry *Registry
}

// NewDecorator builds a Decorator backed by the provided registry. When the
// registry is nil or empty the decorator becomes a no-op.
func NewDecorator(registry *Registry) *Decorator {
	return &Decorator{registry: registry}
}

var _ model.Decorator = (*Decorator)(nil)

// Decorate augments the resource with map configuration. Resources without
// geometry fields and without a matching overlay are left untouched.
func (d *Decorator) Decorate(resource *model.Resource) error {
	if d == nil || d.registry == nil || d.registry.Empty() || resource == nil {
		return nil
	}

	config, matched := d.lookup(resource)

	defaultsJSON, err := OptionsJSON(d.registry.Defaults())
	if err != nil {
		return err
	}
	baseJSON := defaultsJSON
	if matched {
		overlay, err := OptionsJSON(config.Options)
		if err != nil {
			return err
		}
		baseJSON, err = MergeOptions(defaultsJSON, overlay)
		if err != nil {
			return err
		}
	}

	for i := range resource.Fields {
		field := &resource.Fields[i]
		if !field.IsGeometry() {
			continue
		}
		if err := stampFieldConfig(field, baseJSON); err != nil {
			return fmt.Errorf("mapcfg: resource %q field %q: %w", resource.Name, field.Name, err)
		}
	}

	if !matched {
		return nil
	}
	if err := applyGroups(resource, config); err != nil {
		return err
	}
	return applyListConfig(resource, config, defaultsJSON)
}

func (d *Decorator) lookup(resource *model.Resource) (ResourceConfig, bool) {
	if config, ok := d.registry.Resource(resource.Name); ok {
		return config, true
	}
	return d.registry.Resource(resource.OperationID)
}

// stampFieldConfig merges the option layers for one geometry field and writes
// the result into component config metadata. Nothing is stamped when every
// layer is empty.
func stampFieldConfig(field *model.Field, baseJSON []byte) error {
	hints, err := hintOptionsJSON(*field)
	if err != nil {
		return err
	}
	merged, err := MergeOptions(baseJSON, hints)
	if err != nil {
		return err
	}
	if existing := strings.TrimSpace(field.Metadata[ComponentConfigMetadataKey]); existing != "" {
		merged, err = MergeOptions(merged, []byte(existing))
		if err != nil {
			return err
		}
	}
	if string(merged) == "{}" {
		return nil
	}
	setFieldMetadata(field, ComponentConfigMetadataKey, string(merged))
	return nil
}

// hintOptionsJSON lifts the flat map.* metadata the builder stamps from
// schema extensions into widget option keys.
func hintOptionsJSON(field model.Field) ([]byte, error) {
	options := map[string]any{}
	if lat, ok := floatHint(field, "map.lat"); ok {
		options["defaultLat"] = lat
	}
	if lon, ok := floatHint(field, "map.lon"); ok {
		options["defaultLon"] = lon
	}
	if zoom, ok := intHint(field, "map.zoom"); ok {
		options["defaultZoom"] = zoom
	}
	if height, ok := intHint(field, "map.height"); ok {
		options["height"] = height
	}
	if style := strings.TrimSpace(field.Metadata["map.style"]); style != "" {
		options["style"] = style
	}
	if raw := strings.TrimSpace(field.Metadata["map.layers"]); raw != "" {
		layers := make([]string, 0)
		for _, layer := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(layer); trimmed != "" {
				layers = append(layers, trimmed)
			}
		}
		if len(layers) > 0 {
			options["layers"] = layers
		}
	}
	if len(options) == 0 {
		return []byte("{}"), nil
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encode map hints: %w", err)
	}
	return encoded, nil
}

// applyGroups stamps group membership so the fields of each group render on
// one shared map. The first member names the group.
func applyGroups(resource *model.Resource, config ResourceConfig) error {
	for _, group := range config.Groups {
		leader := strings.TrimSpace(group[0])
		for _, member := range group {
			name := strings.TrimSpace(member)
			field := findField(resource, name)
			if field == nil {
				return fmt.Errorf("mapcfg: resource %q groups unknown field %q", resource.Name, name)
			}
			if !field.IsGeometry() {
				return fmt.Errorf("mapcfg: resource %q groups non-geometry field %q", resource.Name, name)
			}
			setFieldMetadata(field, model.MetadataGroup, leader)
		}
	}
	return nil
}

// applyListConfig stamps changelist settings onto resource metadata: the
// geometry fields the list map aggregates, the merged list map options, and
// the popup configuration. Popup link text is sanitised on the way in so
// config files cannot inject markup.
func applyListConfig(resource *model.Resource, config ResourceConfig, defaultsJSON []byte) error {
	if len(config.ListFields) > 0 {
		for _, name := range config.ListFields {
			field := findField(resource, strings.TrimSpace(name))
			if field == nil {
				return fmt.Errorf("mapcfg: resource %q lists unknown field %q", resource.Name, name)
			}
			if !field.IsGeometry() {
				return fmt.Errorf("mapcfg: resource %q lists non-geometry field %q", resource.Name, name)
			}
		}
		payload, err := json.Marshal(config.ListFields)
		if err != nil {
			return fmt.Errorf("mapcfg: encode list fields for %q: %w", resource.Name, err)
		}
		setResourceMetadata(resource, ListFieldsMetadataKey, string(payload))
	}

	if !config.ListOptions.IsZero() || !gjsonEmpty(defaultsJSON) {
		overlay, err := OptionsJSON(config.ListOptions)
		if err != nil {
			return err
		}
		merged, err := MergeOptions(defaultsJSON, overlay)
		if err != nil {
			return err
		}
		if string(merged) != "{}" {
			setResourceMetadata(resource, ListOptionsMetadataKey, string(merged))
		}
	}

	if path := strings.TrimSpace(config.Popup.LabelPath); path != "" {
		setResourceMetadata(resource, PopupLabelMetadataKey, path)
	}
	if text := SanitizeLabel(config.Popup.LinkText); text != "" {
		setResourceMetadata(resource, PopupTextMetadataKey, text)
	}
	return nil
}

func floatHint(field model.Field, key string) (float64, bool) {
	raw := strings.TrimSpace(field.Metadata[key])
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func intHint(field model.Field, key string) (int, bool) {
	raw := strings.TrimSpace(field.Metadata[key])
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

func findField(resource *model.Resource, name string) *model.Field {
	for i := range resource.Fields {
		if resource.Fields[i].Name == name {
			return &resource.Fields[i]
		}
	}
	return nil
}

func setFieldMetadata(field *model.Field, key, value string) {
	if field.Metadata == nil {
		field.Metadata = make(map[string]string)
	}
	field.Metadata[key] = value
}

func setResourceMetadata(resource *model.Resource, key, value string) {
	if resource.Metadata == nil {
		resource.Metadata = make(map[string]string)
	}
	resource.Metadata[key] = value
}

func gjsonEmpty(doc []byte) bool {
	return len(doc) == 0 || string(doc) == "{}"
}
