package changelist

import (
	"log/slog"
	"net/http"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/render"
	rendertemplate "github.com/goliatone/go-mapadmin/pkg/render/template"
	"github.com/goliatone/go-mapadmin/pkg/store"
)

type GuardFunc func(r *http.Request) error

// URLFunc builds the edit-page link for a row. Returning an empty string falls
// back to the resource edit path.
type URLFunc func(resource model.Resource, row store.Row) string

// LabelFunc produces a row's display label: the table link text and the
// default popup text on the list map.
type LabelFunc func(resource model.Resource, row store.Row) string

// GeometryAccessor resolves one map field's geometry from a row. Custom
// accessors can derive values that are not stored columns; the default reads
// the row column and parses serialised payloads against the field's SRID.
type GeometryAccessor func(row store.Row, field model.Field) (geometry.Value, error)

type Options struct {
	RoutePath      string
	PageParam      string
	PerPageParam   string
	SearchParam    string
	OrderParam     string
	ErrorFlagParam string
	FormatParam    string

	PageSize    int
	MaxPageSize int
	DisplaySRID int

	// Columns names extra table columns shown after the row link. Empty keeps
	// the table down to the linked label column.
	Columns []string
	// MapFields names the geometry fields aggregated onto the list map. Empty
	// falls back to the resource's admin.listFields metadata, then to every
	// top-level geometry field.
	MapFields []string
	// MapOptions is forwarded verbatim to the map widget. Empty falls back to
	// the resource's admin.listOptions metadata.
	MapOptions map[string]any

	Resource model.Resource
	Store    store.Store

	Templates rendertemplate.TemplateRenderer
	BaseMedia render.Media

	URLFor   URLFunc
	Label    LabelFunc
	Geometry GeometryAccessor
	Guard    GuardFunc

	Locale     string
	Translator render.Translator
	Logger     *slog.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:      "/",
		PageParam:      "p",
		PerPageParam:   "per_page",
		SearchParam:    "q",
		OrderParam:     "o",
		ErrorFlagParam: "e",
		FormatParam:    "format",
		PageSize:       100,
		MaxPageSize:    500,
		DisplaySRID:    geometry.SRIDWGS84,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/"
	}
	if opts.PageParam == "" {
		opts.PageParam = "p"
	}
	if opts.PerPageParam == "" {
		opts.PerPageParam = "per_page"
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if opts.OrderParam == "" {
		opts.OrderParam = "o"
	}
	if opts.ErrorFlagParam == "" {
		opts.ErrorFlagParam = "e"
	}
	if opts.FormatParam == "" {
		opts.FormatParam = "format"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 500
	}
	if opts.MaxPageSize < opts.PageSize {
		opts.MaxPageSize = opts.PageSize
	}
	if opts.DisplaySRID <= 0 {
		opts.DisplaySRID = geometry.SRIDWGS84
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Columns != nil {
		opts.Columns = append([]string{}, opts.Columns...)
	}
	if opts.MapFields != nil {
		opts.MapFields = append([]string{}, opts.MapFields...)
	}
	if opts.MapOptions != nil {
		copied := make(map[string]any, len(opts.MapOptions))
		for key, value := range opts.MapOptions {
			copied[key] = value
		}
		opts.MapOptions = copied
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithPageParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PageParam = name
	}
}

func WithPerPageParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PerPageParam = name
	}
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchParam = name
	}
}

func WithOrderParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.OrderParam = name
	}
}

func WithErrorFlagParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ErrorFlagParam = name
	}
}

func WithFormatParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.FormatParam = name
	}
}

func WithPageSize(size int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PageSize = size
	}
}

func WithMaxPageSize(size int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxPageSize = size
	}
}

func WithDisplaySRID(srid int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DisplaySRID = srid
	}
}

func WithColumns(names []string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		if names == nil {
			o.Columns = nil
			return
		}
		o.Columns = append([]string{}, names...)
	}
}

func WithMapFields(names []string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		if names == nil {
			o.MapFields = nil
			return
		}
		o.MapFields = append([]string{}, names...)
	}
}

func WithMapOptions(options map[string]any) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		if options == nil {
			o.MapOptions = nil
			return
		}
		copied := make(map[string]any, len(options))
		for key, value := range options {
			copied[key] = value
		}
		o.MapOptions = copied
	}
}

func WithResource(resource model.Resource) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Resource = resource
	}
}

func WithStore(s store.Store) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = s
	}
}

func WithTemplates(templates rendertemplate.TemplateRenderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Templates = templates
	}
}

func WithBaseMedia(media render.Media) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BaseMedia = media
	}
}

func WithURLFor(fn URLFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.URLFor = fn
	}
}

func WithLabel(fn LabelFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Label = fn
	}
}

func WithGeometryAccessor(fn GeometryAccessor) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Geometry = fn
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLocale(locale string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Locale = locale
	}
}

func WithTranslator(translator render.Translator) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Translator = translator
	}
}

func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func clampPageSize(size int, opts Options) int {
	if size <= 0 {
		return opts.PageSize
	}
	if opts.MaxPageSize > 0 && size > opts.MaxPageSize {
		return opts.MaxPageSize
	}
	return size
}
