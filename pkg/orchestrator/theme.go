package orchestrator

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// WithThemeSelector registers a selector consulted per request. The resolved
// configuration lands on RenderOptions.Theme unless the caller already set
// one.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeDefaults sets the theme and variant names applied when a request
// does not specify them.
func WithThemeDefaults(name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeName = name
		o.themeVariant = variant
	}
}

// WithThemeFallbacks overrides the partial paths merged into resolved theme
// configurations when the manifest leaves them unset.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		if len(fallbacks) == 0 {
			return
		}
		copied := make(map[string]string, len(fallbacks))
		for key, value := range fallbacks {
			copied[key] = value
		}
		o.themeFallbacks = copied
	}
}

// defaultThemeFallbacks names the embedded component partials so themed pages
// keep working when a manifest only overrides a subset.
func defaultThemeFallbacks() map[string]string {
	return map[string]string{
		"forms.input":    "templates/components/input.tmpl",
		"forms.textarea": "templates/components/textarea.tmpl",
		"forms.checkbox": "templates/components/checkbox.tmpl",
	}
}

// resolveThemeConfig selects a theme for the request and flattens it into the
// renderer configuration. A nil selector resolves to no theme.
func (o *Orchestrator) resolveThemeConfig(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}

	targetName := name
	if targetName == "" {
		targetName = o.themeName
	}
	targetVariant := variant
	if targetVariant == "" {
		targetVariant = o.themeVariant
	}

	selection, err := o.themeSelector.Select(targetName, targetVariant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	if selection == nil {
		return nil, nil
	}

	fallbacks := o.themeFallbacks
	if fallbacks == nil {
		fallbacks = defaultThemeFallbacks()
	}
	return rendererConfigFromSelection(selection, fallbacks), nil
}

// rendererConfigFromSelection merges fallback partials, manifest templates,
// and variant overrides into the flat structure renderers consume. Tokens are
// mirrored into CSS custom properties so templates can emit them directly.
func rendererConfigFromSelection(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: make(map[string]string),
		Tokens:   make(map[string]string),
		CSSVars:  make(map[string]string),
	}
	for key, value := range fallbacks {
		cfg.Partials[key] = value
	}

	manifest := selection.Manifest
	var variantSpec theme.Variant
	hasVariant := false
	if manifest != nil {
		for key, value := range manifest.Templates {
			cfg.Partials[key] = value
		}
		for key, value := range manifest.Tokens {
			cfg.Tokens[key] = value
		}
		if selection.Variant != "" {
			variantSpec, hasVariant = manifest.Variants[selection.Variant]
		}
	}
	if hasVariant {
		for key, value := range variantSpec.Templates {
			cfg.Partials[key] = value
		}
		for key, value := range variantSpec.Tokens {
			cfg.Tokens[key] = value
		}
	}

	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+key] = value
	}

	cfg.AssetURL = themeAssetResolver(manifest, variantSpec, hasVariant)
	return cfg
}

// themeAssetResolver maps logical asset keys onto served URLs. Variant files
// shadow the base manifest; the manifest prefix anchors both.
func themeAssetResolver(manifest *theme.Manifest, variant theme.Variant, hasVariant bool) func(string) string {
	return func(key string) string {
		if key == "" || manifest == nil {
			return ""
		}

		file := ""
		if hasVariant {
			if name, ok := variant.Assets.Files[key]; ok && name != "" {
				file = name
			}
		}
		if file == "" {
			if name, ok := manifest.Assets.Files[key]; ok {
				file = name
			}
		}
		if file == "" {
			return ""
		}

		prefix := strings.TrimRight(manifest.Assets.Prefix, "/")
		if prefix == "" {
			return file
		}
		return prefix + "/" + file
	}
}
