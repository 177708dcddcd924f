package olmap

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/render"
	rendertemplate "github.com/goliatone/go-mapadmin/pkg/render/template"
	gotemplate "github.com/goliatone/go-mapadmin/pkg/render/template/gotemplate"
	"github.com/goliatone/go-mapadmin/pkg/renderers/olmap/components"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	overrides        map[string]string
	stylesheets      []string
	inlineStyles     bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default component set. The registry is
// cloned so later registrations do not leak into the renderer.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry.Clone()
		}
	}
}

// WithComponentOverrides forces specific fields onto components by dotted
// path or field name, e.g. {"office.location": "info-map"}.
func WithComponentOverrides(overrides map[string]string) Option {
	return func(cfg *config) {
		cfg.overrides = overrides
	}
}

// WithDefaultStyles inlines the embedded stylesheet into the rendered page so
// forms look right without serving the asset bundle.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// WithStylesheet appends an extra stylesheet link to the rendered page media.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if href = strings.TrimSpace(href); href != "" {
			cfg.stylesheets = append(cfg.stylesheets, href)
		}
	}
}

// Theme asset keys the renderer resolves through the theme's AssetURL hook.
const (
	themeAssetStylesheet = "olmap.stylesheet"
	themeAssetScript     = "olmap.script"
)

// Renderer produces the admin edit form as HTML with OpenLayers-backed
// geometry widgets. It satisfies both render.Renderer and
// render.MediaProvider.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	registry     *components.Registry
	overrides    map[string]string
	stylesheets  []string
	inlineStyles bool
}

// New constructs the olmap renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("olmap renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	registry := cfg.registry
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}

	return &Renderer{
		templates:    renderer,
		registry:     registry,
		overrides:    cfg.overrides,
		stylesheets:  cfg.stylesheets,
		inlineStyles: cfg.inlineStyles,
	}, nil
}

func (r *Renderer) Name() string {
	return "olmap"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Media returns the base asset set pages hosting olmap output need: the
// OpenLayers build, the widget runtime, and any extra stylesheets configured
// on the renderer.
func (r *Renderer) Media() render.Media {
	media := render.Media{
		Stylesheets: []string{
			components.OpenLayersStylesheetURL,
			components.MapStylesheetHref,
		},
		Scripts: []render.Script{
			{Src: components.OpenLayersScriptURL},
			{Src: components.MapScriptHref, Defer: true},
		},
	}
	for _, href := range r.stylesheets {
		media = media.AddStylesheet(href)
	}
	return media
}

// Render produces the edit form for a resource. Values and errors resolve by
// dotted field path, theme partials reroute component templates, and
// non-browser methods emit a hidden _method input alongside a POST form.
func (r *Renderer) Render(_ context.Context, resource model.Resource, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("olmap renderer: template renderer is nil")
	}

	render.LocalizeResource(&resource, options)

	rendererTheme := themeFromOptions(options.Theme)
	state := newFieldState(options.Values, options.Errors)
	fields := newComponentRenderer(r.templates, r.registry, r.overrides, rendererTheme, state)

	layout, err := buildLayoutContext(resource, fields)
	if err != nil {
		return nil, fmt.Errorf("olmap renderer: build layout: %w", err)
	}

	formMethod, hidden := submissionPlan(resource, options)

	media := render.MergeMedia(r.Media(), options.Media)
	compStyles, compScripts := fields.assets()
	for _, href := range compStyles {
		media = media.AddStylesheet(href)
	}
	var inlineScripts []string
	for _, script := range compScripts {
		if script.Src != "" {
			media = media.AddScript(render.Script{Src: script.Src, Defer: script.Defer})
			continue
		}
		if script.Inline != "" {
			inlineScripts = append(inlineScripts, script.Inline)
		}
	}

	if rendererTheme.AssetURL != nil {
		if href := rendererTheme.AssetURL(themeAssetStylesheet); href != "" {
			media = media.AddStylesheet(href)
		}
		if src := rendererTheme.AssetURL(themeAssetScript); src != "" {
			media = media.AddScript(render.Script{Src: src, Defer: true})
		}
	}

	action := strings.TrimSpace(options.Action)
	if action == "" {
		action = resource.Endpoint
	}

	data := map[string]any{
		"form":           formContext(resource),
		"method":         formMethod,
		"action":         action,
		"hidden_fields":  hiddenContext(hidden),
		"form_errors":    render.FormMessages(options.Errors),
		"sections":       sectionsContext(layout),
		"chrome":         chromeContext(options.ChromeClasses),
		"media":          mediaContext(media),
		"inline_scripts": inlineScripts,
		"inline_style":   r.inlineStyleBlock(),
		"theme_style":    cssVarsStyle(rendererTheme.CSSVars),
		"submit_label":   submitLabel(resource),
	}

	result, err := r.templates.RenderTemplate("templates/form.tmpl", data)
	if err != nil {
		return nil, fmt.Errorf("olmap renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) inlineStyleBlock() string {
	if !r.inlineStyles {
		return ""
	}
	return strings.TrimSpace(defaultStylesheet())
}

// submissionPlan decides the browser-safe form method and the hidden inputs
// the form submits. Non-GET/POST verbs become POST plus a _method override
// unless the caller already supplied one.
func submissionPlan(resource model.Resource, options render.RenderOptions) (string, []render.HiddenField) {
	method := strings.ToUpper(strings.TrimSpace(options.Method))
	if method == "" {
		method = strings.ToUpper(strings.TrimSpace(resource.Method))
	}
	if method == "" {
		method = "POST"
	}

	merged := render.MergeHiddenFields(nil, options.Hidden...)

	formMethod := "post"
	switch method {
	case "GET":
		formMethod = "get"
	case "POST":
	default:
		if _, ok := merged["_method"]; !ok {
			merged = render.MergeHiddenFields(merged, render.MethodOverride(method))
		}
	}
	return formMethod, render.SortedHiddenFields(merged)
}

func themeFromOptions(cfg *theme.RendererConfig) rendererTheme {
	if cfg == nil {
		return rendererTheme{}
	}
	return rendererTheme{
		Partials: cfg.Partials,
		Tokens:   cfg.Tokens,
		CSSVars:  cfg.CSSVars,
		AssetURL: cfg.AssetURL,
	}
}

// cssVarsStyle flattens CSS variables into a style attribute value with
// deterministic ordering.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}

func formContext(resource model.Resource) map[string]any {
	return map[string]any{
		"name":         resource.Name,
		"title":        resource.Title,
		"operation_id": resource.OperationID,
		"summary":      resource.Summary,
		"description":  resource.Description,
	}
}

func hiddenContext(fields []render.HiddenField) []map[string]string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]map[string]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, map[string]string{
			"name":  field.Name,
			"value": field.Value,
		})
	}
	return out
}

func sectionsContext(layout layoutContext) []map[string]any {
	if len(layout.Sections) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(layout.Sections))
	for _, section := range layout.Sections {
		fields := make([]map[string]string, 0, len(section.Fields))
		for _, field := range section.Fields {
			fields = append(fields, map[string]string{
				"name": field.Name,
				"html": field.HTML,
			})
		}
		out = append(out, map[string]any{
			"id":          section.ID,
			"title":       section.Title,
			"description": section.Description,
			"fieldset":    section.Fieldset,
			"fields":      fields,
		})
	}
	return out
}

func chromeContext(overrides *render.ChromeClasses) map[string]string {
	chrome := map[string]string{
		"form":     DefaultFormClass,
		"header":   DefaultHeaderClass,
		"section":  DefaultSectionClass,
		"fieldset": DefaultFieldsetClass,
		"actions":  DefaultActionsClass,
		"errors":   DefaultErrorsClass,
		"grid":     DefaultGridClass,
	}
	if overrides == nil {
		return chrome
	}
	apply := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			chrome[key] = value
		}
	}
	apply("form", overrides.Form)
	apply("header", overrides.Header)
	apply("section", overrides.Section)
	apply("fieldset", overrides.Fieldset)
	apply("actions", overrides.Actions)
	apply("errors", overrides.Errors)
	apply("grid", overrides.Grid)
	return chrome
}

func mediaContext(media render.Media) map[string]any {
	scripts := make([]map[string]any, 0, len(media.Scripts))
	for _, script := range media.Scripts {
		scripts = append(scripts, map[string]any{
			"src":   script.Src,
			"defer": script.Defer,
		})
	}
	return map[string]any{
		"stylesheets": media.Stylesheets,
		"scripts":     scripts,
	}
}

func submitLabel(resource model.Resource) string {
	if label := strings.TrimSpace(resource.Metadata["submitLabel"]); label != "" {
		return label
	}
	return "Save"
}
