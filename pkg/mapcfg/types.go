package mapcfg

import "strings"

// Metadata keys the decorator writes. Field-level widget options travel under
// the component config key the renderers already read; changelist settings
// land on the resource so the HTTP layer can pick them up without holding a
// registry of its own.
const (
	ComponentConfigMetadataKey = "component.config"

	ListFieldsMetadataKey  = "admin.listFields"
	ListOptionsMetadataKey = "admin.listOptions"
	PopupLabelMetadataKey  = "admin.popup.labelPath"
	PopupTextMetadataKey   = "admin.popup.linkText"
)

// MapOptions mirrors the option surface the map widgets understand. Pointer
// fields distinguish "unset" from zero so overlays only replace what they
// declare.
type MapOptions struct {
	Layers           []string          `json:"layers,omitempty" yaml:"layers,omitempty"`
	DefaultLat       *float64          `json:"defaultLat,omitempty" yaml:"defaultLat,omitempty"`
	DefaultLon       *float64          `json:"defaultLon,omitempty" yaml:"defaultLon,omitempty"`
	DefaultZoom      *int              `json:"defaultZoom,omitempty" yaml:"defaultZoom,omitempty"`
	ZoomToDataExtent *bool             `json:"zoomToDataExtent,omitempty" yaml:"zoomToDataExtent,omitempty"`
	OverlayStyle     map[string]any    `json:"overlayStyle,omitempty" yaml:"overlayStyle,omitempty"`
	Controls         []string          `json:"controls,omitempty" yaml:"controls,omitempty"`
	MapDivClass      string            `json:"mapDivClass,omitempty" yaml:"mapDivClass,omitempty"`
	MapDivStyle      map[string]string `json:"mapDivStyle,omitempty" yaml:"mapDivStyle,omitempty"`
	HideTextarea     *bool             `json:"hideTextarea,omitempty" yaml:"hideTextarea,omitempty"`
	Cluster          *bool             `json:"cluster,omitempty" yaml:"cluster,omitempty"`
	MapOptions       map[string]any    `json:"mapOptions,omitempty" yaml:"mapOptions,omitempty"`
}

// IsZero reports whether no option has been set.
func (o MapOptions) IsZero() bool {
	return len(o.Layers) == 0 &&
		o.DefaultLat == nil &&
		o.DefaultLon == nil &&
		o.DefaultZoom == nil &&
		o.ZoomToDataExtent == nil &&
		len(o.OverlayStyle) == 0 &&
		len(o.Controls) == 0 &&
		o.MapDivClass == "" &&
		len(o.MapDivStyle) == 0 &&
		o.HideTextarea == nil &&
		o.Cluster == nil &&
		len(o.MapOptions) == 0
}

// PopupConfig drives the changelist popup bubble: LabelPath names the row
// value used as the link label and LinkText overrides it with fixed text.
type PopupConfig struct {
	LabelPath string `json:"labelPath,omitempty" yaml:"labelPath,omitempty"`
	LinkText  string `json:"linkText,omitempty" yaml:"linkText,omitempty"`
}

// ResourceConfig is the per-resource overlay: widget options for the edit
// form, the geometry fields and options of the changelist map, field grouping
// onto shared maps, and popup configuration.
type ResourceConfig struct {
	Options     MapOptions  `json:"options,omitempty" yaml:"options,omitempty"`
	ListFields  []string    `json:"listFields,omitempty" yaml:"listFields,omitempty"`
	ListOptions MapOptions  `json:"listOptions,omitempty" yaml:"listOptions,omitempty"`
	Groups      [][]string  `json:"groups,omitempty" yaml:"groups,omitempty"`
	Popup       PopupConfig `json:"popup,omitempty" yaml:"popup,omitempty"`
}

// Registry keeps the parsed configuration documents. It is safe for
// concurrent readers when treated as immutable after construction.
type Registry struct {
	defaults  MapOptions
	resources map[string]ResourceConfig
}

// Defaults returns the options applied to every geometry widget before
// resource overlays.
func (r *Registry) Defaults() MapOptions {
	if r == nil {
		return MapOptions{}
	}
	return r.defaults
}

// Resource returns the overlay for the named resource. Lookup is
// case-insensitive so config keys match either the resource name or its
// operation id.
func (r *Registry) Resource(name string) (ResourceConfig, bool) {
	if r == nil {
		return ResourceConfig{}, false
	}
	config, ok := r.resources[normaliseKey(name)]
	return config, ok
}

// Empty reports whether the registry holds neither defaults nor resource
// overlays.
func (r *Registry) Empty() bool {
	return r == nil || (r.defaults.IsZero() && len(r.resources) == 0)
}

func normaliseKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
