package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions carry per-request data that renderers can use to customise
// their output without mutating the resource pipeline.
type RenderOptions struct {
	// Method overrides the HTTP method declared by the resource. Renderers are
	// responsible for translating unsupported verbs (PATCH/PUT/DELETE) into
	// browser-friendly POST submissions plus a hidden _method input when needed.
	Method string
	// Action overrides the form action URL. Admin handlers point edit forms at
	// the object's change URL instead of the API endpoint recorded on the
	// resource.
	Action string
	// Values pre-populates rendered controls using dotted field paths (e.g.
	// "office.address"). Geometry fields accept geometry.Value, WKT/EWKT
	// strings, or GeoJSON payloads; renderers normalise before embedding.
	Values map[string]any
	// Errors surfaces server-side validation feedback keyed by field path.
	// Renderers map these into inline chrome and data-validation attributes.
	Errors map[string][]string
	// Hidden lists extra hidden inputs (CSRF tokens, method overrides, row
	// versions) the rendered form must submit. Use the hidden-field helpers to
	// assemble the slice.
	Hidden []HiddenField
	// Media is merged with the renderer's own asset set so pages can carry
	// extra stylesheets or scripts declared by the caller.
	Media Media
	// ChromeClasses replaces the renderer's default chrome class names. A nil
	// pointer keeps the defaults; individual empty fields also keep theirs.
	ChromeClasses *ChromeClasses
	// Theme holds the resolved theme configuration (partials, tokens, CSS
	// variables, asset resolver) when a theme selector is configured upstream.
	Theme *theme.RendererConfig
	// Locale selects the translation locale for *Key hints and pluralised
	// strings. Empty locale falls back to the translator's default.
	Locale string
	// Translator resolves translation keys. Nil leaves fallback text in place.
	Translator Translator
	// OnMissing controls the string produced when a translation cannot be
	// resolved. Nil uses the package default (fallback text, then the key).
	OnMissing MissingTranslationHandler
}

// ChromeClasses overrides the structural CSS classes a renderer applies to its
// form chrome. Fields left empty fall back to the renderer defaults.
type ChromeClasses struct {
	Form     string
	Header   string
	Section  string
	Fieldset string
	Actions  string
	Errors   string
	Grid     string
}
