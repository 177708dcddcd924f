package mapadmin

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-mapadmin/pkg/orchestrator"
	"github.com/goliatone/go-mapadmin/pkg/render"
	"github.com/goliatone/go-mapadmin/pkg/schema"
)

// GeometryConfig describes the spatial metadata stamped onto a field; alias
// exported via the root package for convenience.
type GeometryConfig = orchestrator.GeometryConfig

// GeometryOverride promotes one field of one operation to a geometry field.
type GeometryOverride = orchestrator.GeometryOverride

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// FieldSubset aliases render.FieldSubset for callers configuring partial
// rendering by group/tag/section.
type FieldSubset = render.FieldSubset

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module so the common construction path needs a single import.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML loads the schema source, builds a resource model for the
// requested operation, and renders it using the named renderer. It is the
// simplest entry point for callers that just want HTML output.
func GenerateHTML(ctx context.Context, source schema.Source, operationID, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Source:      source,
		OperationID: operationID,
		Renderer:    rendererName,
	})
}

// GenerateHTMLFromDocument renders an admin surface using a pre-loaded
// document, bypassing the loader stage while still delegating to the
// orchestrator.
func GenerateHTMLFromDocument(ctx context.Context, doc schema.Document, operationID, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Document:    &doc,
		OperationID: operationID,
		Renderer:    rendererName,
	})
}

// WithGeometryOverrides registers geometry overrides that can be passed to
// GenerateHTML alongside other orchestrator options.
func WithGeometryOverrides(overrides []GeometryOverride) orchestrator.Option {
	return orchestrator.WithGeometryOverrides(overrides)
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemeDefaults sets the theme and variant applied when a request does not
// name its own.
func WithThemeDefaults(name, variant string) orchestrator.Option {
	return orchestrator.WithThemeDefaults(name, variant)
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) orchestrator.Option {
	return orchestrator.WithThemeFallbacks(fallbacks)
}
