package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	theme "github.com/goliatone/go-theme"

	internalloader "github.com/goliatone/go-mapadmin/internal/schema/loader"
	internalparser "github.com/goliatone/go-mapadmin/internal/schema/parser"
	"github.com/goliatone/go-mapadmin/pkg/forms"
	"github.com/goliatone/go-mapadmin/pkg/mapcfg"
	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/render"
	"github.com/goliatone/go-mapadmin/pkg/renderers/olmap"
	"github.com/goliatone/go-mapadmin/pkg/schema"
	"github.com/goliatone/go-mapadmin/pkg/visibility"
	"github.com/goliatone/go-mapadmin/pkg/widgets"
)

const defaultRendererName = "olmap"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom schema loader.
func WithLoader(loader schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithParser injects a custom schema parser.
func WithParser(parser schema.Parser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// WithModelBuilder injects a custom resource builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers a Transformer that can mutate resources after
// building but before decorators run.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDecorators registers decorators that run against the built resource
// before rendering. Caller decorators run ahead of the map configuration
// decorator so their metadata participates in overlay resolution.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithMapConfigFS supplies an fs.FS holding map configuration documents. Pass
// nil to disable the embedded defaults.
func WithMapConfigFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.mapConfigFS = fsys
		o.mapConfigSpecified = true
	}
}

// WithWidgetRegistry replaces the widget registry consulted after decoration.
// Pass nil to disable widget resolution entirely.
func WithWidgetRegistry(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		o.widgetRegistry = registry
		o.widgetsSpecified = true
	}
}

// WithVisibilityEvaluator registers an evaluator consulted for fields whose
// metadata declares a visibility rule. Fields whose rule evaluates false are
// removed from the resource before rendering.
func WithVisibilityEvaluator(evaluator visibility.Evaluator) Option {
	return func(o *Orchestrator) {
		o.visibilityEvaluator = evaluator
	}
}

// Orchestrator coordinates the full pipeline from an API document to rendered
// admin output. It applies sensible defaults (olmap renderer, embedded map
// configuration, built-in widget matchers) while remaining open to dependency
// injection for advanced callers.
type Orchestrator struct {
	loader          schema.Loader
	parser          schema.Parser
	builder         model.Builder
	registry        *render.Registry
	defaultRenderer string

	decorators          []model.Decorator
	mapConfigFS         fs.FS
	mapConfigSpecified  bool
	mapDecoratorWired   bool
	widgetRegistry      *widgets.Registry
	widgetsSpecified    bool
	geometryOverrides   map[string][]GeometryOverride
	transformer         Transformer
	visibilityEvaluator visibility.Evaluator

	themeSelector  theme.ThemeSelector
	themeName      string
	themeVariant   string
	themeFallbacks map[string]string

	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations so callers
// can start with a single constructor call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs required to render an admin surface from a
// schema operation.
type Request struct {
	// Source identifies where the schema document lives. Optional when
	// Document is supplied.
	Source schema.Source

	// Document allows callers to bypass the loader when they already hold a
	// loaded payload.
	Document *schema.Document

	// OperationID selects which operation to build a resource from.
	OperationID string

	// Renderer names the renderer to use. If empty, the orchestrator falls
	// back to the configured default renderer.
	Renderer string

	// RenderOptions carries per-request instructions such as method overrides,
	// prefilled values, or server-side errors that renderers can surface. When
	// omitted, renderers receive the zero-value struct.
	RenderOptions render.RenderOptions

	// ThemeName and ThemeVariant select the theme resolved for this request.
	// Empty values fall back to the defaults configured on the orchestrator.
	ThemeName    string
	ThemeVariant string

	// Visibility supplies evaluation context for visibility rules. When its
	// Values map is nil the prefill values from RenderOptions are used.
	Visibility visibility.Context
}

// Generate executes the loader, parser, builder, decorator, form assembly,
// and renderer sequence, returning the rendered bytes (HTML for the default
// olmap renderer).
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if !o.defaultsApplied {
		o.applyDefaults()
		if err := o.initialiseErr; err != nil {
			return nil, err
		}
	}

	if req.OperationID == "" {
		return nil, errors.New("orchestrator: operation id is required")
	}

	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return nil, err
	}

	operations, err := o.parser.Operations(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse operations: %w", err)
	}

	op, ok := operations[req.OperationID]
	if !ok {
		return nil, fmt.Errorf("orchestrator: operation %q not found", req.OperationID)
	}

	resource, err := o.builder.Build(op)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build resource: %w", err)
	}

	o.applyGeometryOverrides(req.OperationID, &resource)
	if err := o.applyTransformer(ctx, &resource); err != nil {
		return nil, err
	}
	if err := o.applyDecorators(&resource); err != nil {
		return nil, err
	}
	if o.widgetRegistry != nil {
		if err := o.widgetRegistry.Decorate(&resource); err != nil {
			return nil, fmt.Errorf("orchestrator: resolve widgets: %w", err)
		}
	}
	if o.visibilityEvaluator != nil {
		if err := applyVisibility(&resource, o.visibilityEvaluator, visibilityContext(req)); err != nil {
			return nil, err
		}
	}

	// Form assembly runs last: grouped geometry fields collapse onto shared
	// map widgets, and prefill values are regrouped to match.
	form, err := forms.New(resource)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: assemble form: %w", err)
	}
	resource.Fields = form.Fields()

	options := req.RenderOptions
	if len(options.Values) > 0 {
		options.Values = form.BindInitial(options.Values)
	}
	if options.Theme == nil {
		cfg, err := o.resolveThemeConfig(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return nil, err
		}
		options.Theme = cfg
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, resource, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}

	return output, nil
}

// RegisterWidget adds a matcher to the widget registry at the given priority,
// initialising the registry when absent. Higher priorities win over the
// built-in matchers.
func (o *Orchestrator) RegisterWidget(name string, priority int, matcher widgets.Matcher) {
	if o.widgetRegistry == nil {
		o.widgetRegistry = widgets.NewRegistry()
	}
	o.widgetRegistry.Register(name, priority, matcher)
}

// WidgetRegistry exposes the registry consulted during decoration so callers
// can inspect or extend the matcher set.
func (o *Orchestrator) WidgetRegistry() *widgets.Registry {
	return o.widgetRegistry
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req Request) (schema.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return schema.Document{}, errors.New("orchestrator: source or document is required")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDecorators(resource *model.Resource) error {
	if len(o.decorators) == 0 {
		return nil
	}
	if err := model.ApplyDecorators(resource, o.decorators...); err != nil {
		return fmt.Errorf("orchestrator: decorate resource: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, resource *model.Resource) error {
	if o.transformer == nil || resource == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, resource); err != nil {
		return fmt.Errorf("orchestrator: transform resource: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.loader == nil {
		o.loader = internalloader.New(schema.NewLoaderOptions())
	}
	if o.parser == nil {
		o.parser = internalparser.New(schema.NewParserOptions())
	}
	if o.builder == nil {
		o.builder = model.NewBuilder()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := olmap.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.widgetRegistry == nil && !o.widgetsSpecified {
		o.widgetRegistry = widgets.NewRegistry()
	}

	o.ensureMapDecorator()

	o.defaultsApplied = true
}

// ensureMapDecorator appends the map configuration decorator after any caller
// supplied decorators. The embedded defaults apply unless WithMapConfigFS was
// used, including WithMapConfigFS(nil) to opt out.
func (o *Orchestrator) ensureMapDecorator() {
	if o.mapDecoratorWired {
		return
	}
	o.mapDecoratorWired = true

	if !o.mapConfigSpecified && o.mapConfigFS == nil {
		o.mapConfigFS = mapcfg.EmbeddedFS()
	}
	if o.mapConfigFS == nil {
		return
	}

	registry, err := mapcfg.LoadFS(o.mapConfigFS)
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: load map config: %w", err)
		return
	}
	if registry.Empty() {
		return
	}

	o.decorators = append(o.decorators, mapcfg.NewDecorator(registry))
}
